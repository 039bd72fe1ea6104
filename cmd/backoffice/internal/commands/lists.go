package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/confhub/backoffice/internal/api"
	"github.com/confhub/backoffice/internal/models"
)

// ListFlags are shared by the paged list commands.
type ListFlags struct {
	Page   int    `help:"Page number" default:"1"`
	Limit  int    `help:"Rows per page" default:"20"`
	Search string `help:"Match name, email or reference"`
	Status string `help:"Only rows with this status"`
}

func (f ListFlags) params(eventID int) api.ListParams {
	return api.ListParams{
		Page:    f.Page,
		Limit:   f.Limit,
		Search:  f.Search,
		Status:  f.Status,
		EventID: eventID,
	}
}

func (f ListFlags) filter() api.Filter {
	return api.Filter{Search: f.Search, Status: f.Status}
}

func printPagination(out io.Writer, shown int, p models.Pagination) {
	fmt.Fprintf(out, "\nShowing %d of %d (page %d/%d)\n", shown, p.Total, p.Page, p.TotalPages)
	if p.Page < p.TotalPages {
		fmt.Fprintf(out, "Use --page=%d to see next page\n", p.Page+1)
	}
}

func selectedEventID(a *app) int {
	if ev := a.store.State().CurrentEvent; ev != nil {
		return ev.ID
	}
	return 0
}

// MembersCmd groups member commands.
type MembersCmd struct {
	List MembersListCmd `cmd:"" default:"withargs" help:"List members"`
}

type MembersListCmd struct {
	ListFlags `embed:""`
}

func (c *MembersListCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, a, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	store, err := requirePage(ctx, "/members")
	if err != nil {
		return err
	}

	page, err := a.api.ListMembers(ctx, store.Token(), c.params(0))
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}

	members := api.FilterMembers(page.Items, c.filter())
	if len(members) == 0 {
		fmt.Fprintln(a.out, "No members found.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tORGANIZATION\tSTATUS")
	for _, m := range members {
		fmt.Fprintf(w, "%d\t%s %s\t%s\t%s\t%s\n", m.ID, m.FirstName, m.LastName, m.Email, m.Organization, m.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	printPagination(a.out, len(members), page.Pagination)
	return nil
}

// RegistrationsCmd groups registration commands.
type RegistrationsCmd struct {
	List RegistrationsListCmd `cmd:"" default:"withargs" help:"List registrations for the selected event"`
}

type RegistrationsListCmd struct {
	ListFlags `embed:""`
}

func (c *RegistrationsListCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, a, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	store, err := requirePage(ctx, "/registrations")
	if err != nil {
		return err
	}

	page, err := a.api.ListRegistrations(ctx, store.Token(), c.params(selectedEventID(a)))
	if err != nil {
		return fmt.Errorf("failed to list registrations: %w", err)
	}

	registrations := api.ScopeRegistrations(api.FilterRegistrations(page.Items, c.filter()), store.CanAccessEvent)
	if len(registrations) == 0 {
		fmt.Fprintln(a.out, "No registrations found.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tEMAIL\tTICKET\tSTATUS\tCHECKED IN")
	for _, r := range registrations {
		checkedIn := ""
		if r.CheckedInAt != nil {
			checkedIn = r.CheckedInAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\t%s\n", r.RegistrationCode, r.FirstName, r.LastName, r.Email, r.TicketName, r.Status, checkedIn)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	printPagination(a.out, len(registrations), page.Pagination)
	return nil
}

// PaymentsCmd groups payment commands.
type PaymentsCmd struct {
	List PaymentsListCmd `cmd:"" default:"withargs" help:"List payments for the selected event"`
}

type PaymentsListCmd struct {
	ListFlags `embed:""`
}

func (c *PaymentsListCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, a, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	store, err := requirePage(ctx, "/payments")
	if err != nil {
		return err
	}

	page, err := a.api.ListPayments(ctx, store.Token(), c.params(selectedEventID(a)))
	if err != nil {
		return fmt.Errorf("failed to list payments: %w", err)
	}

	payments := api.FilterPayments(page.Items, c.filter())
	if len(payments) == 0 {
		fmt.Fprintln(a.out, "No payments found.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REFERENCE\tPAYER\tAMOUNT\tMETHOD\tSTATUS")
	for _, p := range payments {
		fmt.Fprintf(w, "%s\t%s\t%.2f %s\t%s\t%s\n", p.Reference, p.PayerName, p.Amount, p.Currency, p.Method, p.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	printPagination(a.out, len(payments), page.Pagination)
	return nil
}
