package authhandlers

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	authservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/auth/application"
	"github.com/Black-And-White-Club/trivia-ledger/internal/handlerwrapper"
	"github.com/Black-And-White-Club/trivia-ledger/internal/httpapi"
	"golang.org/x/time/rate"
)

const (
	// cleanupThreshold is the minimum map size before a cleanup pass runs.
	cleanupThreshold = 500
	// maxIdleAge is the duration after which an idle entry is eligible for cleanup.
	maxIdleAge = 10 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter hands out one token bucket per key and prunes stale entries inline.
type KeyedRateLimiter struct {
	keys map[string]*limiterEntry
	mu   sync.Mutex
	r    rate.Limit
	b    int
}

// NewKeyedRateLimiter creates a new KeyedRateLimiter.
func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		keys: make(map[string]*limiterEntry),
		r:    r,
		b:    b,
	}
}

// GetLimiter returns a rate.Limiter for key, pruning stale entries when the map exceeds
// cleanupThreshold.
func (l *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.keys) > cleanupThreshold {
		cutoff := time.Now().Add(-maxIdleAge)
		for k, e := range l.keys {
			if e.lastSeen.Before(cutoff) {
				delete(l.keys, k)
			}
		}
	}

	e, exists := l.keys[key]
	if !exists {
		e = &limiterEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.keys[key] = e
	}
	e.lastSeen = time.Now()

	return e.limiter
}

// RateLimitMiddleware rate limits requests per authenticated signer. Requests without a
// signer are limited per client IP.
func RateLimitMiddleware(limiter *KeyedRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := handlerwrapper.SignerFromContext(r.Context())
			if !ok {
				ip, _, err := net.SplitHostPort(r.RemoteAddr)
				if err != nil {
					ip = r.RemoteAddr
				}
				key = "ip:" + ip
			}

			if !limiter.GetLimiter(key).Allow() {
				httpapi.WriteJSON(w, http.StatusTooManyRequests, httpapi.ErrorBody{
					Name:    "RateLimited",
					Message: http.StatusText(http.StatusTooManyRequests),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware returns a middleware that sets CORS headers for the configured origins.
// When allowedOrigins is empty, no CORS headers are added.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" {
				if _, ok := origins[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
					w.Header().Add("Vary", "Origin")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// BearerMiddleware requires an Authorization bearer token and places its subject in the
// request context as the signer.
func BearerMiddleware(service authservice.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found {
				token = ""
			}

			claims, err := service.ValidateToken(r.Context(), strings.TrimSpace(token))
			if err != nil {
				logger.DebugContext(r.Context(), "Rejected bearer token", slog.String("error", err.Error()))
				httpapi.WriteJSON(w, http.StatusUnauthorized, httpapi.ErrorBody{Name: "Unauthorized", Message: err.Error()})
				return
			}

			ctx := handlerwrapper.WithSigner(r.Context(), claims.Signer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
