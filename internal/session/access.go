package session

import (
	"slices"
	"strings"

	"github.com/confhub/backoffice/internal/models"
)

// routeAccess describes what a role may open: either every path or the listed
// path prefixes.
type routeAccess struct {
	all      bool
	prefixes []string
}

// roleAccess maps every role in the closed set to its allowed pages.
var roleAccess = map[models.Role]routeAccess{
	models.RoleAdmin:     {all: true},
	models.RoleOrganizer: {prefixes: []string{"/reports", "/registrations", "/members", "/payments"}},
	models.RoleReviewer:  {prefixes: []string{"/abstracts"}},
	models.RoleStaff:     {prefixes: []string{"/checkin"}},
	models.RoleVerifier:  {prefixes: []string{"/verification"}},
}

// landingPaths is where each role is sent when it lands somewhere it may not be.
var landingPaths = map[models.Role]string{
	models.RoleVerifier:  "/verification",
	models.RoleReviewer:  "/abstracts",
	models.RoleOrganizer: "/reports",
	models.RoleStaff:     "/checkin",
}

// HomePath is the landing page for admins and for any role without an entry.
const HomePath = "/"

// LandingPath returns the page a role is redirected to.
func LandingPath(role models.Role) string {
	if path, ok := landingPaths[role]; ok {
		return path
	}
	return HomePath
}

// AllowedPrefixes returns the path prefixes a role may open. all is true for the
// wildcard entry. ok is false when the role has no entry.
func AllowedPrefixes(role models.Role) (prefixes []string, all bool, ok bool) {
	access, ok := roleAccess[role]
	if !ok {
		return nil, false, false
	}
	return slices.Clone(access.prefixes), access.all, true
}

// RoleCanOpen reports whether role may open path.
func RoleCanOpen(role models.Role, path string) bool {
	access, ok := roleAccess[role]
	if !ok {
		return false
	}
	if access.all {
		return true
	}
	return slices.ContainsFunc(access.prefixes, func(prefix string) bool {
		return strings.HasPrefix(path, prefix)
	})
}

// EventScope is the set of events an identity may see. Unrestricted means every
// event; otherwise only IDs, which may be empty.
type EventScope struct {
	Unrestricted bool
	IDs          []int
}

// Allows reports whether the scope includes eventID.
func (e EventScope) Allows(eventID int) bool {
	return e.Unrestricted || slices.Contains(e.IDs, eventID)
}

// None reports whether the scope grants no event at all.
func (e EventScope) None() bool {
	return !e.Unrestricted && len(e.IDs) == 0
}
