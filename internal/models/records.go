package models

import "time"

// Pagination is the envelope returned alongside every paged collection.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Member is a registered platform member.
type Member struct {
	ID           int       `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Organization string    `json:"organization,omitempty"`
	MemberType   string    `json:"memberType,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Registration is an event registration.
type Registration struct {
	ID               int        `json:"id"`
	EventID          int        `json:"eventId"`
	RegistrationCode string     `json:"registrationCode"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Email            string     `json:"email"`
	TicketName       string     `json:"ticketName,omitempty"`
	Status           string     `json:"status"`
	CheckedInAt      *time.Time `json:"checkedInAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Payment is a payment attached to a registration.
type Payment struct {
	ID             int        `json:"id"`
	RegistrationID int        `json:"registrationId"`
	Reference      string     `json:"reference"`
	PayerName      string     `json:"payerName"`
	PayerEmail     string     `json:"payerEmail"`
	Amount         float64    `json:"amount"`
	Currency       string     `json:"currency"`
	Method         string     `json:"method"`
	Status         string     `json:"status"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
}

// DashboardStats backs the home dashboard counters.
type DashboardStats struct {
	TotalMembers        int     `json:"totalMembers"`
	TotalRegistrations  int     `json:"totalRegistrations"`
	PendingPayments     int     `json:"pendingPayments"`
	TotalRevenue        float64 `json:"totalRevenue"`
	CheckedIn           int     `json:"checkedIn"`
	RecentRegistrations int     `json:"recentRegistrations"`
}

// ReportSummary is the per-event breakdown shown on the reports page.
type ReportSummary struct {
	EventID            int            `json:"eventId"`
	RegistrationsByDay []DailyCount   `json:"registrationsByDay"`
	ByStatus           map[string]int `json:"byStatus"`
	ByTicket           map[string]int `json:"byTicket"`
	Revenue            float64        `json:"revenue"`
	Currency           string         `json:"currency"`
}

// DailyCount is one point of a per-day series.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
