package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/confhub/backoffice/internal/api"
	"github.com/confhub/backoffice/internal/console"
	"github.com/confhub/backoffice/internal/storage"
)

// ServeCmd serves the console over HTTP.
type ServeCmd struct {
	Listen      string   `help:"Address to listen on" default:"localhost:8080" env:"BACKOFFICE_LISTEN"`
	CORSOrigins []string `name:"cors-origins" help:"Origins allowed to call the /api/ routes" env:"BACKOFFICE_CORS_ORIGINS"`
	// sign-ins without "remember me" end with the server process
	EphemeralMemory bool `name:"ephemeral-memory" help:"Keep non-remembered sessions in memory only"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	var ephemeral storage.Storage
	if c.EphemeralMemory {
		ephemeral = storage.NewMemoryStorage("ephemeral")
	}

	ctx, a, err := globals.setupWith(ctx, ephemeral)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, apiURL, err := c.handler(a)
	if err != nil {
		return err
	}

	srv := console.ConfigureHTTPServer(c.Listen, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Str("api", apiURL).Msg("Starting console")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("console server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down console")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// handler builds the console for a, returning it with the API base URL.
func (c *ServeCmd) handler(a *app) (http.Handler, string, error) {
	// identities change while serving, so responses are never cached here
	apiClient, err := newClient(a.settings, "")
	if err != nil {
		return nil, "", err
	}

	handler := console.New(a.store, api.New(apiClient), console.Options{
		CORSOrigins: c.CORSOrigins,
		Logger:      log.Logger,
	}).Handler()

	return handler, apiClient.BaseURL(), nil
}
