package models

import (
	"strings"
)

// Role is the backoffice role of a signed-in identity.
type Role string

const (
	RoleAdmin     Role = "admin"     // Platform administrator, unrestricted
	RoleOrganizer Role = "organizer" // Event organizer, reports and attendee lists
	RoleReviewer  Role = "reviewer"  // Abstract reviewer
	RoleStaff     Role = "staff"     // On-site check-in staff
	RoleVerifier  Role = "verifier"  // Payment/registration verifier
)

// Roles returns the closed set of roles known to the console.
func Roles() []Role {
	return []Role{RoleAdmin, RoleOrganizer, RoleReviewer, RoleStaff, RoleVerifier}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOrganizer, RoleReviewer, RoleStaff, RoleVerifier:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// EventRef is a reference to a conference event assigned to an identity.
type EventRef struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// Identity is the signed-in principal as returned by the login exchange.
// Admins carry no assigned events; they implicitly see every event.
type Identity struct {
	ID                int        `json:"id"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	Email             string     `json:"email"`
	Role              Role       `json:"role"`
	AssignedEvents    []EventRef `json:"assignedEvents"`
	ReviewCategories  []string   `json:"assignedCategories,omitempty"`
	PresentationTypes []string   `json:"assignedPresentationTypes,omitempty"`
}

// IsAdmin returns true for the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// FullName joins first and last name, skipping empty parts.
func (i *Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// EventIDs returns the ids of the assigned events in assignment order.
func (i *Identity) EventIDs() []int {
	ids := make([]int, 0, len(i.AssignedEvents))
	for _, ev := range i.AssignedEvents {
		ids = append(ids, ev.ID)
	}
	return ids
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	clone := *i
	clone.AssignedEvents = append([]EventRef(nil), i.AssignedEvents...)
	clone.ReviewCategories = append([]string(nil), i.ReviewCategories...)
	clone.PresentationTypes = append([]string(nil), i.PresentationTypes...)
	return &clone
}
