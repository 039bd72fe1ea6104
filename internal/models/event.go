package models

import "time"

// Event is a conference event as listed by the remote API.
type Event struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Venue     string    `json:"venue,omitempty"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	IsActive  bool      `json:"isActive"`
}

// Ref converts the event into an assignment reference.
func (e Event) Ref() EventRef {
	return EventRef{ID: e.ID, Name: e.Name, Slug: e.Slug}
}
