package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/confhub/backoffice/internal/guard"
)

// OpenCmd runs the route guard for a navigation without rendering anything.
type OpenCmd struct {
	Path string `arg:"" help:"Console path, e.g. /reports"`
}

func (c *OpenCmd) Run(ctx context.Context, globals *Globals) error {
	_, a, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	path := c.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	decision := guard.Decide(a.store.State(), path)
	switch decision.Outcome {
	case guard.Redirect:
		fmt.Fprintf(a.out, "%s -> %s (%s)\n", path, decision.Target, decision.Reason)
	default:
		fmt.Fprintf(a.out, "%s: %s (%s)\n", path, decision.Outcome, decision.Reason)
	}
	return nil
}
