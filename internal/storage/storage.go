// Package storage provides the two key/value areas the console persists its
// session into: a durable area surviving restarts and an ephemeral area scoped to
// the operating-system login session.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var (
	// ErrCorrupt is returned when a backing document cannot be parsed.
	ErrCorrupt = errors.New("storage document corrupt")
)

// Storage is a string key/value area.
type Storage interface {
	// Read returns the value for key and whether it was present.
	Read(key string) (string, bool, error)
	Write(key, value string) error
	// Remove deletes key; removing a missing key is not an error.
	Remove(key string) error
	// Clear deletes every key in the area.
	Clear() error
	// Name identifies the area in logs.
	Name() string
}

// DefaultDurableDir returns ~/.backoffice.
func DefaultDurableDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".backoffice"), nil
}

// DefaultEphemeralDir returns a directory that does not outlive the user's
// login session: $XDG_RUNTIME_DIR/backoffice when set, otherwise a per-user
// directory under the system temp dir.
func DefaultEphemeralDir() string {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, "backoffice")
	}
	return filepath.Join(os.TempDir(), "backoffice-"+strconv.Itoa(os.Getuid()))
}
