package guard

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/confhub/backoffice/internal/session"
	"github.com/confhub/backoffice/internal/telemetry"
)

// StateSource provides the session state the guard evaluates.
type StateSource interface {
	State() session.State
}

// Middleware gates every page behind Decide. Redirects carry no body so
// protected content is never written before the browser follows them.
func Middleware(source StateSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := Decide(source.State(), r.URL.Path)

			telemetry.GetMetrics().RecordGuardDecision(r.Context(), decision.Outcome.String())

			log.Debug().
				Str("path", r.URL.Path).
				Str("outcome", decision.Outcome.String()).
				Str("target", decision.Target).
				Str("reason", decision.Reason).
				Msg("route guard decision")

			switch decision.Outcome {
			case Loading:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Loading...", http.StatusServiceUnavailable)
			case Redirect:
				w.Header().Set("Location", decision.Target)
				w.WriteHeader(http.StatusFound)
			case Forbidden:
				http.Error(w, "Forbidden", http.StatusForbidden)
			default:
				ctx := context.WithValue(r.Context(), decisionContextKey, decision)
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}

type contextKey string

const decisionContextKey contextKey = "guard_decision"

// DecisionFromContext returns the decision that let the request through.
func DecisionFromContext(ctx context.Context) (Decision, bool) {
	decision, ok := ctx.Value(decisionContextKey).(Decision)
	return decision, ok
}
