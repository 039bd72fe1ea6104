package commands

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"
)

// ReportsCmd prints the dashboard counters and the selected event's report.
type ReportsCmd struct{}

func (c *ReportsCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, a, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	store, err := requirePage(ctx, "/reports")
	if err != nil {
		return err
	}

	eventID := selectedEventID(a)

	stats, err := a.api.DashboardStats(ctx, store.Token(), eventID)
	if err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Members\t%d\n", stats.TotalMembers)
	fmt.Fprintf(w, "Registrations\t%d\n", stats.TotalRegistrations)
	fmt.Fprintf(w, "Recent registrations\t%d\n", stats.RecentRegistrations)
	fmt.Fprintf(w, "Checked in\t%d\n", stats.CheckedIn)
	fmt.Fprintf(w, "Pending payments\t%d\n", stats.PendingPayments)
	fmt.Fprintf(w, "Revenue\t%.2f\n", stats.TotalRevenue)
	if err := w.Flush(); err != nil {
		return err
	}

	if eventID == 0 {
		fmt.Fprintln(a.out, "\nSelect an event with --event to see its report.")
		return nil
	}

	summary, err := a.api.ReportSummary(ctx, store.Token(), eventID)
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}

	fmt.Fprintf(a.out, "\nEvent %d revenue: %.2f %s\n\n", eventID, summary.Revenue, summary.Currency)

	w = tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tCOUNT")
	for _, status := range slices.Sorted(maps.Keys(summary.ByStatus)) {
		fmt.Fprintf(w, "%s\t%d\n", status, summary.ByStatus[status])
	}
	fmt.Fprintln(w, "\nTICKET\tCOUNT")
	for _, ticket := range slices.Sorted(maps.Keys(summary.ByTicket)) {
		fmt.Fprintf(w, "%s\t%d\n", ticket, summary.ByTicket[ticket])
	}
	fmt.Fprintln(w, "\nDATE\tREGISTRATIONS")
	for _, day := range summary.RegistrationsByDay {
		fmt.Fprintf(w, "%s\t%d\n", day.Date, day.Count)
	}

	return w.Flush()
}
