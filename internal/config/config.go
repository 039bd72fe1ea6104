// Package config loads the optional console configuration file and layers
// command line values over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/confhub/backoffice/internal/client"
	"github.com/confhub/backoffice/internal/storage"
)

// FileName is the config file inside the durable state directory.
const FileName = "config.yaml"

// Settings is the resolved configuration.
type Settings struct {
	APIURL     string        `yaml:"api_url"`
	Timeout    time.Duration `yaml:"timeout"`
	StateDir   string        `yaml:"state_dir"`
	RuntimeDir string        `yaml:"runtime_dir"`
	Cache      *bool         `yaml:"cache"`
	Debug      *bool         `yaml:"debug"`
	Tracing    *bool         `yaml:"tracing"`
}

// CacheEnabled reports whether response caching is on. Unset means on.
func (s Settings) CacheEnabled() bool {
	return s.Cache == nil || *s.Cache
}

// DebugEnabled reports whether debug output is on. Unset means off.
func (s Settings) DebugEnabled() bool {
	return s.Debug != nil && *s.Debug
}

// TracingEnabled reports whether OTLP export is on. Unset means off.
func (s Settings) TracingEnabled() bool {
	return s.Tracing != nil && *s.Tracing
}

// Defaults returns the built-in settings.
func Defaults() (Settings, error) {
	durable, err := storage.DefaultDurableDir()
	if err != nil {
		return Settings{}, err
	}

	clientCfg := client.DefaultConfig()

	return Settings{
		APIURL:     clientCfg.BaseURL,
		Timeout:    clientCfg.Timeout,
		StateDir:   durable,
		RuntimeDir: storage.DefaultEphemeralDir(),
	}, nil
}

// DefaultPath returns the config file path for the default state directory.
func DefaultPath() (string, error) {
	durable, err := storage.DefaultDurableDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(durable, FileName), nil
}

// Load reads path. A missing file yields empty settings.
func Load(path string) (Settings, error) {
	var settings Settings

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", path).Msg("no config file")
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	log.Debug().Str("path", path).Msg("loaded config file")

	return settings, nil
}

// Merge overlays the non-zero fields of each layer onto base, in order.
// Switches are pointers so a later layer can turn them off again.
func Merge(base Settings, layers ...Settings) Settings {
	out := base
	for _, l := range layers {
		if l.APIURL != "" {
			out.APIURL = l.APIURL
		}
		if l.Timeout > 0 {
			out.Timeout = l.Timeout
		}
		if l.StateDir != "" {
			out.StateDir = l.StateDir
		}
		if l.RuntimeDir != "" {
			out.RuntimeDir = l.RuntimeDir
		}
		out.Cache = overlay(out.Cache, l.Cache)
		out.Debug = overlay(out.Debug, l.Debug)
		out.Tracing = overlay(out.Tracing, l.Tracing)
	}
	return out
}

func overlay(base, layer *bool) *bool {
	if layer == nil {
		return base
	}
	v := *layer
	return &v
}

// Resolve loads path and returns defaults < file < overrides.
func Resolve(path string, overrides Settings) (Settings, error) {
	defaults, err := Defaults()
	if err != nil {
		return Settings{}, err
	}

	file, err := Load(path)
	if err != nil {
		return Settings{}, err
	}

	return Merge(defaults, file, overrides), nil
}
