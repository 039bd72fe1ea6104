package api

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/confhub/backoffice/internal/models"
)

func TestFilterMembers(t *testing.T) {
	members := []models.Member{
		{ID: 1, FirstName: "Ana", LastName: "Silva", Email: "ana@example.com", Status: "active"},
		{ID: 2, FirstName: "Bruno", LastName: "Costa", Email: "bruno@example.com", Organization: "Hospital Sul", Status: "inactive"},
		{ID: 3, FirstName: "Carla", LastName: "Dias", Email: "carla@example.com", Status: "active"},
	}

	tests := []struct {
		name     string
		filter   Filter
		expected []int
	}{
		{name: "no filter", filter: Filter{}, expected: []int{1, 2, 3}},
		{name: "full name", filter: Filter{Search: "ana silva"}, expected: []int{1}},
		{name: "case insensitive email", filter: Filter{Search: "BRUNO@"}, expected: []int{2}},
		{name: "organization", filter: Filter{Search: "hospital"}, expected: []int{2}},
		{name: "status", filter: Filter{Status: "active"}, expected: []int{1, 3}},
		{name: "status and search", filter: Filter{Search: "carla", Status: "inactive"}, expected: []int{}},
		{name: "no match", filter: Filter{Search: "zzz"}, expected: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := []int{}
			for _, m := range FilterMembers(members, tt.filter) {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestFilterRegistrations(t *testing.T) {
	registrations := []models.Registration{
		{ID: 1, RegistrationCode: "REG-001", FirstName: "Ana", Status: "confirmed"},
		{ID: 2, RegistrationCode: "REG-002", FirstName: "Bruno", Status: "pending"},
	}

	got := FilterRegistrations(registrations, Filter{Search: "reg-002"})
	assert.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ID)

	got = FilterRegistrations(registrations, Filter{Status: "Confirmed"})
	assert.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)
}

func TestFilterPayments(t *testing.T) {
	payments := []models.Payment{
		{ID: 1, Reference: "PAY-9", PayerName: "Ana Silva", Status: "paid"},
		{ID: 2, Reference: "PAY-10", PayerEmail: "bruno@example.com", Status: "pending"},
	}

	got := FilterPayments(payments, Filter{Search: "pay-1"})
	assert.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ID)

	assert.Empty(t, FilterPayments(nil, Filter{}))
	assert.NotNil(t, FilterPayments(nil, Filter{}))
}

func TestScopeRegistrations(t *testing.T) {
	registrations := []models.Registration{
		{ID: 1, EventID: 7},
		{ID: 2, EventID: 9},
		{ID: 3},
	}

	got := ScopeRegistrations(registrations, func(id int) bool { return id == 7 })
	ids := []int{}
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int{1, 3}, ids)

	assert.Empty(t, ScopeRegistrations(nil, func(int) bool { return true }))
}
