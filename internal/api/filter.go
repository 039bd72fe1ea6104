package api

import (
	"strings"

	"github.com/confhub/backoffice/internal/models"
)

// Filter narrows an already fetched result set. Search is a case-insensitive
// substring match and Status an exact match; empty fields match everything.
type Filter struct {
	Search string
	Status string
}

func (f Filter) matches(status string, fields ...string) bool {
	if f.Status != "" && !strings.EqualFold(f.Status, status) {
		return false
	}

	needle := strings.ToLower(strings.TrimSpace(f.Search))
	if needle == "" {
		return true
	}

	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func FilterMembers(members []models.Member, f Filter) []models.Member {
	out := []models.Member{}
	for _, m := range members {
		if f.matches(m.Status, m.FirstName+" "+m.LastName, m.Email, m.Organization) {
			out = append(out, m)
		}
	}
	return out
}

func FilterRegistrations(registrations []models.Registration, f Filter) []models.Registration {
	out := []models.Registration{}
	for _, r := range registrations {
		if f.matches(r.Status, r.FirstName+" "+r.LastName, r.Email, r.RegistrationCode) {
			out = append(out, r)
		}
	}
	return out
}

func FilterPayments(payments []models.Payment, f Filter) []models.Payment {
	out := []models.Payment{}
	for _, p := range payments {
		if f.matches(p.Status, p.PayerName, p.PayerEmail, p.Reference) {
			out = append(out, p)
		}
	}
	return out
}

// ScopeRegistrations drops registrations for events canAccess rejects. Rows
// without an event id are kept.
func ScopeRegistrations(registrations []models.Registration, canAccess func(eventID int) bool) []models.Registration {
	out := []models.Registration{}
	for _, r := range registrations {
		if r.EventID == 0 || canAccess(r.EventID) {
			out = append(out, r)
		}
	}
	return out
}
