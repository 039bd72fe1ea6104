package console

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"

	"github.com/confhub/backoffice/internal/api"
)

const timeLayout = "2006-01-02 15:04"

// listParams reads paging and search parameters, scoped to the selected event.
func listParams(r *http.Request, eventID int) api.ListParams {
	q := r.URL.Query()
	pageNum, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return api.ListParams{
		Page:    pageNum,
		Limit:   limit,
		Search:  q.Get("search"),
		Status:  q.Get("status"),
		EventID: eventID,
	}
}

// listFilter narrows fetched rows the same way the CLI lists do.
func listFilter(r *http.Request) api.Filter {
	q := r.URL.Query()
	return api.Filter{Search: q.Get("search"), Status: q.Get("status")}
}

func (p *page) eventID() int {
	if p.Event == nil {
		return 0
	}
	return p.Event.ID
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	p := s.newPage("Dashboard")

	stats, err := s.api.DashboardStats(r.Context(), s.store.Token(), p.eventID())
	if err != nil {
		toast(r, p, err)
	} else {
		p.Stats = []stat{
			{Label: "Members", Value: stats.TotalMembers},
			{Label: "Registrations", Value: stats.TotalRegistrations},
			{Label: "Recent registrations", Value: stats.RecentRegistrations},
			{Label: "Checked in", Value: stats.CheckedIn},
			{Label: "Pending payments", Value: stats.PendingPayments},
			{Label: "Revenue", Value: fmt.Sprintf("%.2f", stats.TotalRevenue)},
		}
	}

	s.render(w, r, http.StatusOK, p)
}

func (s *Server) members(w http.ResponseWriter, r *http.Request) {
	p := s.newPage("Members")
	p.Columns = []string{"ID", "Name", "Email", "Organization", "Type", "Status"}

	// membership is platform wide, not per event
	result, err := s.api.ListMembers(r.Context(), s.store.Token(), listParams(r, 0))
	if err != nil {
		toast(r, p, err)
		s.render(w, r, http.StatusOK, p)
		return
	}

	for _, m := range api.FilterMembers(result.Items, listFilter(r)) {
		p.Rows = append(p.Rows, []string{
			strconv.Itoa(m.ID), m.FirstName + " " + m.LastName, m.Email, m.Organization, m.MemberType, m.Status,
		})
	}
	p.Pagination = &result.Pagination

	s.render(w, r, http.StatusOK, p)
}

func (s *Server) registrations(w http.ResponseWriter, r *http.Request) {
	p := s.newPage("Registrations")
	p.Columns = []string{"Code", "Name", "Email", "Ticket", "Status", "Checked in"}

	result, err := s.api.ListRegistrations(r.Context(), s.store.Token(), listParams(r, p.eventID()))
	if err != nil {
		toast(r, p, err)
		s.render(w, r, http.StatusOK, p)
		return
	}

	registrations := api.ScopeRegistrations(api.FilterRegistrations(result.Items, listFilter(r)), s.store.CanAccessEvent)
	for _, reg := range registrations {
		checkedIn := ""
		if reg.CheckedInAt != nil {
			checkedIn = reg.CheckedInAt.Format(timeLayout)
		}
		p.Rows = append(p.Rows, []string{
			reg.RegistrationCode, reg.FirstName + " " + reg.LastName, reg.Email, reg.TicketName, reg.Status, checkedIn,
		})
	}
	p.Pagination = &result.Pagination

	s.render(w, r, http.StatusOK, p)
}

func (s *Server) payments(w http.ResponseWriter, r *http.Request) {
	p := s.newPage("Payments")
	p.Columns = []string{"Reference", "Payer", "Amount", "Method", "Status", "Paid"}

	result, err := s.api.ListPayments(r.Context(), s.store.Token(), listParams(r, p.eventID()))
	if err != nil {
		toast(r, p, err)
		s.render(w, r, http.StatusOK, p)
		return
	}

	for _, pay := range api.FilterPayments(result.Items, listFilter(r)) {
		paid := ""
		if pay.PaidAt != nil {
			paid = pay.PaidAt.Format(timeLayout)
		}
		p.Rows = append(p.Rows, []string{
			pay.Reference, pay.PayerName, fmt.Sprintf("%.2f %s", pay.Amount, pay.Currency), pay.Method, pay.Status, paid,
		})
	}
	p.Pagination = &result.Pagination

	s.render(w, r, http.StatusOK, p)
}

func (s *Server) reports(w http.ResponseWriter, r *http.Request) {
	p := s.newPage("Reports")

	if p.Event == nil {
		p.Toast = "Select an event to view its reports"
		s.render(w, r, http.StatusOK, p)
		return
	}

	summary, err := s.api.ReportSummary(r.Context(), s.store.Token(), p.Event.ID)
	if err != nil {
		toast(r, p, err)
		s.render(w, r, http.StatusOK, p)
		return
	}

	p.Stats = []stat{{Label: "Revenue", Value: fmt.Sprintf("%.2f %s", summary.Revenue, summary.Currency)}}
	for _, status := range sortedKeys(summary.ByStatus) {
		p.Stats = append(p.Stats, stat{Label: "Status " + status, Value: summary.ByStatus[status]})
	}
	for _, ticket := range sortedKeys(summary.ByTicket) {
		p.Stats = append(p.Stats, stat{Label: "Ticket " + ticket, Value: summary.ByTicket[ticket]})
	}

	p.Columns = []string{"Date", "Registrations"}
	for _, day := range summary.RegistrationsByDay {
		p.Rows = append(p.Rows, []string{day.Date, strconv.Itoa(day.Count)})
	}

	s.render(w, r, http.StatusOK, p)
}

// placeholder serves pages whose workflows live in the remote platform.
func (s *Server) placeholder(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, s.newPage(title))
	}
}

func sortedKeys(m map[string]int) []string {
	return slices.Sorted(maps.Keys(m))
}
