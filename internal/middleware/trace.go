package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"klvcli/internal/infrastructure"
)

// TraceID copies the chi request ID into the logging trace context, so every
// slog record emitted while serving the request carries a trace_id attribute.
// Must be mounted after chi's RequestID middleware.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := chimiddleware.GetReqID(r.Context()); reqID != "" {
			r = r.WithContext(infrastructure.WithTraceID(r.Context(), reqID))
		}
		next.ServeHTTP(w, r)
	})
}
