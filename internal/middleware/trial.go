// Package middleware carries the HTTP middleware chain: trial gating and
// request rate limiting. Everything else comes stock from chi.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	apierrors "klvcli/internal/errors"
)

// TrialChecker is the slice of the trial manager the gate needs.
type TrialChecker interface {
	IsExpired() bool
}

// TrialGate blocks API traffic once the trial has expired. A fixed set of
// paths stays open so the user can still see the countdown, activate, and
// probe health.
type TrialGate struct {
	checker         TrialChecker
	logger          *slog.Logger
	excludePaths    map[string]bool
	excludePrefixes []string
}

// NewTrialGate creates the trial gating middleware.
func NewTrialGate(checker TrialChecker, logger *slog.Logger) *TrialGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrialGate{
		checker: checker,
		logger:  logger.With(slog.String("component", "trial_gate")),
		excludePaths: map[string]bool{
			"/api/health": true,
			"/healthz":    true,
			"/metrics":    true,
		},
		excludePrefixes: []string{
			"/api/trial",
		},
	}
}

// Handler returns the middleware handler function.
func (g *TrialGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.exempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if g.checker.IsExpired() {
			g.logger.WarnContext(r.Context(), "request blocked by expired trial",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path))
			render.Render(w, r, apierrors.ErrTrialExpired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *TrialGate) exempt(path string) bool {
	if g.excludePaths[path] {
		return true
	}
	for _, prefix := range g.excludePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
