package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/confhub/backoffice/internal/session"
)

// LoginCmd exchanges credentials for a session.
type LoginCmd struct {
	Email    string `help:"Account email" required:""`
	Password string `help:"Account password" env:"BACKOFFICE_PASSWORD" required:""`
	Remember bool   `help:"Keep the session after the login session ends"`
}

func (c *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, a, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	resp, err := a.api.Login(ctx, c.Email, c.Password)
	if err != nil {
		return fmt.Errorf("sign in failed: %w", err)
	}

	if err := a.store.Login(resp.User, resp.Token, c.Remember); err != nil {
		return err
	}

	where := "until you log out of this machine"
	if c.Remember {
		where = "until you sign out"
	}

	fmt.Fprintf(a.out, "Signed in as %s (%s), remembered %s.\n", resp.User.Email, resp.User.Role, where)
	fmt.Fprintf(a.out, "Landing page: %s\n", session.LandingPath(resp.User.Role))
	return nil
}

// LogoutCmd clears the session from both storage areas.
type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	_, a, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.store.Logout(); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// WhoamiCmd prints the restored session.
type WhoamiCmd struct {
	Verify bool `help:"Confirm the token with the API"`
}

func (c *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, a, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	state := a.store.State()
	if !state.Authenticated() {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}

	identity := state.Identity
	if c.Verify {
		remote, err := a.api.Me(ctx, state.Token)
		if err != nil {
			return fmt.Errorf("token check failed: %w", err)
		}
		identity = remote
	}

	storage := "ephemeral"
	if state.Remembered {
		storage = "durable"
	}

	fmt.Fprintf(a.out, "Name:     %s\n", identity.FullName())
	fmt.Fprintf(a.out, "Email:    %s\n", identity.Email)
	fmt.Fprintf(a.out, "Role:     %s\n", identity.Role)
	fmt.Fprintf(a.out, "Landing:  %s\n", session.LandingPath(identity.Role))
	fmt.Fprintf(a.out, "Session:  %s\n", storage)

	scope := a.store.EventScope()
	switch {
	case scope.Unrestricted:
		fmt.Fprintln(a.out, "Events:   all")
	case scope.None():
		fmt.Fprintln(a.out, "Events:   none assigned")
	default:
		fmt.Fprintf(a.out, "Events:   %v\n", scope.IDs)
	}

	if state.CurrentEvent != nil {
		fmt.Fprintf(a.out, "Selected: %d %s\n", state.CurrentEvent.ID, state.CurrentEvent.Name)
	}

	fmt.Fprintf(a.out, "Token:    %s\n", session.Fingerprint(state.Token))
	if exp, ok := session.TokenExpiry(state.Token); ok {
		status := "valid"
		if time.Now().After(exp) {
			status = "expired"
		}
		fmt.Fprintf(a.out, "Expires:  %s (%s)\n", exp.Format(time.RFC3339), status)
	}

	return nil
}
