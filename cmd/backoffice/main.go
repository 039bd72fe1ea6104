package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/confhub/backoffice/cmd/backoffice/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		commands.Flags `embed:""`

		Login         commands.LoginCmd         `cmd:"" help:"Sign in to the backoffice"`
		Logout        commands.LogoutCmd        `cmd:"" help:"Sign out and forget the stored session"`
		Whoami        commands.WhoamiCmd        `cmd:"" help:"Show the signed-in identity"`
		Events        commands.EventsCmd        `cmd:"" help:"Conference events"`
		Members       commands.MembersCmd       `cmd:"" help:"Platform members"`
		Registrations commands.RegistrationsCmd `cmd:"" help:"Event registrations"`
		Payments      commands.PaymentsCmd      `cmd:"" help:"Registration payments"`
		Reports       commands.ReportsCmd       `cmd:"" help:"Dashboard and report summary for the selected event"`
		Open          commands.OpenCmd          `cmd:"" help:"Check where navigating to a console page would lead"`
		Serve         commands.ServeCmd         `cmd:"" help:"Serve the console over HTTP"`
		Version       kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("backoffice"),
		kong.Description("Conference platform backoffice console."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Flags: cli.Flags, Version: version})
	cmd.FatalIfErrorf(err)
}
