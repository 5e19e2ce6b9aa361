package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	authcallout "github.com/Black-And-White-Club/trivia-ledger/app/modules/authcallout/application"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type fakeService struct {
	got  *authcallout.AuthRequest
	resp *authcallout.AuthResponse
	err  error
}

func (f *fakeService) HandleAuthRequest(_ context.Context, req *authcallout.AuthRequest) (*authcallout.AuthResponse, error) {
	f.got = req
	return f.resp, f.err
}

func TestAuthHandler_Decide(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		service *fakeService
		want    authcallout.AuthResponse
		wantReq bool
	}{
		{
			name:    "approved",
			data:    `{"user_nkey":"UCONN","connect_opts":{"pass":"tok"}}`,
			service: &fakeService{resp: &authcallout.AuthResponse{Jwt: "signed"}},
			want:    authcallout.AuthResponse{Jwt: "signed"},
			wantReq: true,
		},
		{
			name:    "denied",
			data:    `{"user_nkey":"UCONN"}`,
			service: &fakeService{resp: &authcallout.AuthResponse{Error: "missing authentication token"}},
			want:    authcallout.AuthResponse{Error: "missing authentication token"},
			wantReq: true,
		},
		{
			name:    "malformed request",
			data:    `{`,
			service: &fakeService{},
			want:    authcallout.AuthResponse{Error: "invalid request format"},
		},
		{
			name:    "service failure",
			data:    `{}`,
			service: &fakeService{err: errors.New("sign failed")},
			want:    authcallout.AuthResponse{Error: "internal error"},
			wantReq: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(tt.service, slog.New(slog.NewTextHandler(io.Discard, nil)), noop.NewTracerProvider().Tracer("test"))
			out := h.Decide(context.Background(), []byte(tt.data))

			var got authcallout.AuthResponse
			require.NoError(t, json.Unmarshal(out, &got))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantReq, tt.service.got != nil)
		})
	}
}
