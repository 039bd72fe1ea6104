package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/confhub/backoffice/internal/api"
	"github.com/confhub/backoffice/internal/client"
	"github.com/confhub/backoffice/internal/config"
	"github.com/confhub/backoffice/internal/guard"
	"github.com/confhub/backoffice/internal/logger"
	"github.com/confhub/backoffice/internal/session"
	"github.com/confhub/backoffice/internal/storage"
	"github.com/confhub/backoffice/internal/telemetry"
)

// Flags are accepted by every command.
type Flags struct {
	Debug      *bool  `help:"Enable debug mode." negatable:""`
	APIURL     string `name:"api-url" help:"Base URL of the platform API" env:"BACKOFFICE_API_URL"`
	Config     string `help:"Config file (default ~/.backoffice/config.yaml)" env:"BACKOFFICE_CONFIG"`
	StateDir   string `help:"Directory for remembered sessions and cached responses" env:"BACKOFFICE_STATE_DIR"`
	RuntimeDir string `help:"Directory for sessions that end with the login session" env:"BACKOFFICE_RUNTIME_DIR"`
	Event      int    `help:"Event to scope this invocation to"`
	Tracing    *bool  `help:"Export traces and metrics over OTLP" env:"BACKOFFICE_TRACING" negatable:""`
	NoCache    bool   `help:"Disable response caching"`
}

type Globals struct {
	Flags
	Version string

	// Stdout receives command output, os.Stdout when nil.
	Stdout io.Writer
}

func (g *Globals) out() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// app is the per-invocation wiring shared by commands.
type app struct {
	settings config.Settings
	store    *session.Store
	api      *api.API
	out      io.Writer
	shutdown telemetry.ShutdownFunc
}

func (g *Globals) overrides() config.Settings {
	s := config.Settings{
		APIURL:     g.APIURL,
		StateDir:   g.StateDir,
		RuntimeDir: g.RuntimeDir,
		Debug:      g.Debug,
		Tracing:    g.Tracing,
	}
	if g.NoCache {
		disabled := false
		s.Cache = &disabled
	}
	return s
}

func (g *Globals) configPath() (string, error) {
	if g.Config != "" {
		return g.Config, nil
	}
	if g.StateDir != "" {
		return filepath.Join(g.StateDir, config.FileName), nil
	}
	return config.DefaultPath()
}

// setup resolves configuration, restores the session and builds the API
// client. The returned context carries the session store.
func (g *Globals) setup(ctx context.Context) (context.Context, *app, error) {
	return g.setupWith(ctx, nil)
}

// setupWith is setup with ephemeral replacing the runtime directory area.
func (g *Globals) setupWith(ctx context.Context, ephemeral storage.Storage) (context.Context, *app, error) {
	path, err := g.configPath()
	if err != nil {
		return ctx, nil, err
	}

	settings, err := config.Resolve(path, g.overrides())
	if err != nil {
		return ctx, nil, err
	}

	log.Logger = logger.Setup(settings.DebugEnabled())

	shutdown := telemetry.ShutdownFunc(func(context.Context) error { return nil })
	if settings.TracingEnabled() {
		log.Debug().Msg("Tracing is enabled")
		shutdown, err = telemetry.InitTelemetry(ctx, telemetry.Options{
			ServiceName: "backoffice",
			Version:     g.Version,
			SampleRatio: 1,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
			shutdown = func(context.Context) error { return nil }
		}
	}

	durable, err := storage.NewFileStorage("durable", settings.StateDir)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to open durable storage: %w", err)
	}
	if ephemeral == nil {
		ephemeral, err = storage.NewFileStorage("ephemeral", settings.RuntimeDir)
		if err != nil {
			return ctx, nil, fmt.Errorf("failed to open ephemeral storage: %w", err)
		}
	}

	store := session.New(durable, ephemeral)
	store.Bootstrap()

	if g.Event > 0 {
		if err := store.SetCurrentEvent(g.Event); err != nil {
			return ctx, nil, fmt.Errorf("cannot select event %d: %w", g.Event, err)
		}
	}

	// cached responses are per identity, so only a restored session gets a cache
	var cacheDir string
	if state := store.State(); settings.CacheEnabled() && state.Authenticated() {
		cacheDir = filepath.Join(settings.StateDir, "cache", strconv.Itoa(state.Identity.ID))
	}

	c, err := newClient(settings, cacheDir)
	if err != nil {
		return ctx, nil, err
	}

	log.Debug().
		Str("api", settings.APIURL).
		Str("config", path).
		Bool("authenticated", store.State().Authenticated()).
		Msg("console ready")

	return session.WithStore(ctx, store), &app{
		settings: settings,
		store:    store,
		api:      api.New(c),
		out:      g.out(),
		shutdown: shutdown,
	}, nil
}

// newClient builds an API client. An empty cacheDir disables caching.
func newClient(settings config.Settings, cacheDir string) (*client.Client, error) {
	cfg := client.DefaultConfig()
	cfg.BaseURL = settings.APIURL
	cfg.Timeout = settings.Timeout
	cfg.Debug = settings.DebugEnabled()
	cfg.Cache = cacheDir != ""
	cfg.CacheDir = cacheDir
	return client.New(cfg)
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown telemetry")
	}
}

// requirePage runs the route guard for path as if it were navigated to and
// fails unless the page would render.
func requirePage(ctx context.Context, path string) (*session.Store, error) {
	store, ok := session.FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("no session available")
	}

	decision := guard.Decide(store.State(), path)
	switch decision.Outcome {
	case guard.Render:
		return store, nil
	case guard.Redirect:
		if decision.Target == guard.LoginPath {
			return nil, fmt.Errorf("%s: %w, run `backoffice login` first", path, session.ErrNotAuthenticated)
		}
		return nil, fmt.Errorf("%s is not available to your role, try %s", path, decision.Target)
	default:
		return nil, fmt.Errorf("%s is not available: %s", path, decision.Reason)
	}
}
