// Package guard decides, for every navigation, whether the current session may
// see the requested page and where to send it otherwise.
package guard

import (
	"slices"

	"github.com/confhub/backoffice/internal/session"
)

// LoginPath is the only page reachable without a session.
const LoginPath = "/login"

var publicPaths = []string{LoginPath}

// Outcome is what the console should do with a navigation.
type Outcome int

const (
	// Render shows the requested page.
	Render Outcome = iota
	// Redirect sends the navigation to Decision.Target.
	Redirect
	// Loading shows a neutral placeholder; the session is not bootstrapped yet.
	Loading
	// Forbidden is returned when the redirect target is the page itself, which
	// only happens for a role without a route table entry.
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case Loading:
		return "loading"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decision is the result of Decide.
type Decision struct {
	Outcome Outcome
	Target  string
	Reason  string
}

// IsPublic reports whether path is reachable without a session.
func IsPublic(path string) bool {
	return slices.Contains(publicPaths, path)
}

// Decide evaluates a navigation to path against the session state.
func Decide(state session.State, path string) Decision {
	if state.Loading {
		return Decision{Outcome: Loading, Reason: "session loading"}
	}

	if state.Identity == nil {
		if IsPublic(path) {
			return Decision{Outcome: Render, Reason: "public page"}
		}
		return Decision{Outcome: Redirect, Target: LoginPath, Reason: "not authenticated"}
	}

	landing := session.LandingPath(state.Identity.Role)

	if path == LoginPath {
		return redirect(path, landing, "already authenticated")
	}

	if !session.RoleCanOpen(state.Identity.Role, path) {
		return redirect(path, landing, "role not allowed")
	}

	return Decision{Outcome: Render, Reason: "allowed"}
}

func redirect(path, target, reason string) Decision {
	if target == path {
		return Decision{Outcome: Forbidden, Reason: reason}
	}
	return Decision{Outcome: Redirect, Target: target, Reason: reason}
}
