package auth

import (
	"net/http"
	"time"

	"github.com/eygar/payment-service/internal"
	"github.com/eygar/payment-service/internal/transport"
	"github.com/eygar/payment-service/pkg/logger"
)

// Middleware authenticates requests by resolving the bearer token to an
// identity and stamping it into the request context.
type Middleware struct {
	*transport.BaseHandler
	verifier Verifier
	timeout  time.Duration
}

func NewMiddleware(verifier Verifier, timeout time.Duration) *Middleware {
	return &Middleware{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		verifier:    verifier,
		timeout:     timeout,
	}
}

func (m *Middleware) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.ExtractTokenFromHeader(r)
		if token == "" {
			m.Logger.Warn("auth middleware: missing bearer token", "path", r.URL.Path)
			m.HandleServiceError(w, internal.ErrMissingToken)
			return
		}

		ctx, cancel := internal.WithTimeout(r.Context(), m.timeout)
		defer cancel()

		identity, err := m.verifier.Verify(ctx, token)
		if err != nil {
			m.Logger.Warn("auth middleware: token verification failed", "error", err)
			m.HandleServiceError(w, err)
			return
		}

		if !identity.IsActive {
			m.Logger.Warn("auth middleware: inactive user", "user_id", identity.ID)
			m.HandleServiceError(w, internal.ErrInactiveUser)
			return
		}

		next.ServeHTTP(w, r.WithContext(internal.ContextWithIdentity(r.Context(), identity)))
	})
}
