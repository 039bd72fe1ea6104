package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/confhub/backoffice/internal/models"
)

// EventsCmd groups event commands.
type EventsCmd struct {
	List EventsListCmd `cmd:"" default:"withargs" help:"List the events you can access"`
}

type EventsListCmd struct{}

func (c *EventsListCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, a, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	state := a.store.State()
	if !state.Authenticated() {
		return fmt.Errorf("events: run `backoffice login` first")
	}

	var events []models.EventRef
	if state.Identity.IsAdmin() {
		remote, err := a.api.ListEvents(ctx, state.Token)
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}
		for _, ev := range remote {
			events = append(events, ev.Ref())
		}
	} else {
		events = state.Identity.AssignedEvents
	}

	if len(events) == 0 {
		fmt.Fprintln(a.out, "No events found.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSLUG\tSELECTED")
	for _, ev := range events {
		if !a.store.CanAccessEvent(ev.ID) {
			continue
		}
		selected := ""
		if state.CurrentEvent != nil && state.CurrentEvent.ID == ev.ID {
			selected = "*"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", ev.ID, ev.Name, ev.Slug, selected)
	}

	return w.Flush()
}
