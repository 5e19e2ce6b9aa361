package handlerwrapper

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/trivia-ledger/internal/signing"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type pingPayload struct {
	N int `json:"n"`
}

type pongPayload struct {
	N      int    `json:"n"`
	Signer string `json:"signer"`
}

func pingHandler(ctx context.Context, p *pingPayload) ([]Result, error) {
	signer, _ := SignerFromContext(ctx)
	return []Result{{Topic: "pong.v1", Payload: &pongPayload{N: p.N + 1, Signer: signer}}}, nil
}

func TestWrapTransformingTyped(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("test")

	kp, addr, err := signing.NewSigner()
	require.NoError(t, err)

	signed := func(body string) *message.Message {
		m := message.NewMessage("m-1", []byte(body))
		sig, err := signing.Sign(kp, m.Payload)
		require.NoError(t, err)
		m.Metadata.Set(MetadataSigner, addr)
		m.Metadata.Set(MetadataSignature, sig)
		m.Metadata.Set(MetadataCorrelationID, "corr-1")
		return m
	}

	tests := []struct {
		name       string
		opts       Options
		msg        func() *message.Message
		handler    func(context.Context, *pingPayload) ([]Result, error)
		wantOut    int
		wantErr    bool
		wantN      int
		wantSigner string
	}{
		{
			name:       "signed message transforms",
			opts:       Options{RequireSignature: true},
			msg:        func() *message.Message { return signed(`{"n":1}`) },
			handler:    pingHandler,
			wantOut:    1,
			wantN:      2,
			wantSigner: addr,
		},
		{
			name: "tampered payload dropped",
			opts: Options{RequireSignature: true},
			msg: func() *message.Message {
				m := signed(`{"n":1}`)
				m.Payload = []byte(`{"n":100}`)
				return m
			},
			handler: pingHandler,
			wantOut: 0,
		},
		{
			name:    "unsigned allowed when not required",
			msg:     func() *message.Message { return message.NewMessage("m-2", []byte(`{"n":5}`)) },
			handler: pingHandler,
			wantOut: 1,
			wantN:   6,
		},
		{
			name:    "bad json dropped",
			msg:     func() *message.Message { return message.NewMessage("m-3", []byte(`{`)) },
			handler: pingHandler,
			wantOut: 0,
		},
		{
			name: "handler error propagates",
			msg:  func() *message.Message { return message.NewMessage("m-4", []byte(`{"n":1}`)) },
			handler: func(context.Context, *pingPayload) ([]Result, error) {
				return nil, errors.New("db down")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := WrapTransformingTyped("test.ping", slog.Default(), tracer, tt.opts, tt.handler)
			out, err := fn(tt.msg())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, out, tt.wantOut)
			if tt.wantOut == 0 {
				return
			}
			assert.Equal(t, "pong.v1", out[0].Metadata.Get(MetadataTopic))
			assert.NotEmpty(t, out[0].Metadata.Get(MetadataCorrelationID))

			var pong pongPayload
			require.NoError(t, json.Unmarshal(out[0].Payload, &pong))
			assert.Equal(t, tt.wantN, pong.N)
			assert.Equal(t, tt.wantSigner, pong.Signer)
		})
	}
}
