package eventbus

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/trivia-ledger/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRoutesByMetadataTopic(t *testing.T) {
	bus := NewInMemory(slog.Default())
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := bus.Subscribe(ctx, "reward.claimed.v1")
	require.NoError(t, err)

	msg := message.NewMessage("", []byte(`{"amount":700}`))
	msg.Metadata.Set(handlerwrapper.MetadataTopic, "reward.claimed.v1")
	require.NoError(t, bus.Publish("", msg))

	select {
	case got := <-ch:
		assert.JSONEq(t, `{"amount":700}`, string(got.Payload))
		assert.NotEmpty(t, got.UUID)
		got.Ack()
	case <-ctx.Done():
		t.Fatal("message not delivered")
	}
}

func TestPublishWithoutTopicFails(t *testing.T) {
	bus := NewInMemory(slog.Default())
	defer bus.Close()

	err := bus.Publish("", message.NewMessage("x", []byte(`{}`)))
	assert.ErrorIs(t, err, ErrNoTopic)
	assert.NoError(t, bus.EnsureStream(context.Background(), "TRIVIA", "reward.>"))
}
