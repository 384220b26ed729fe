package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/eygar/payment-service/pkg/logger"
)

// RequestID propagates X-Trace-ID from the caller, or mints one, and makes
// it available to every logger pulled from the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "traceID", traceID)

		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
