// Package session holds the console's single authenticated session: who is
// signed in, with which bearer token, and which event is selected. The session
// is persisted to exactly one of two storage areas and rehydrated at startup.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/confhub/backoffice/internal/models"
	"github.com/confhub/backoffice/internal/storage"
)

// Persisted keys, identical in both storage areas.
const (
	TokenKey = "backoffice_token"
	UserKey  = "backoffice_user"
)

var (
	// ErrNotAuthenticated is returned by mutators that need a signed-in identity.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrEventNotAssigned is returned when selecting an event outside the identity's assignments.
	ErrEventNotAssigned = errors.New("event not assigned to identity")

	// ErrInvalidLogin is returned when Login is called without an identity or token.
	ErrInvalidLogin = errors.New("login requires an identity and a token")
)

// State is a read-only snapshot of the session.
type State struct {
	Identity     *models.Identity
	Token        string
	CurrentEvent *models.EventRef
	// Remembered is true when the session lives in durable storage.
	Remembered bool
	// Loading is true until Bootstrap has completed.
	Loading bool
}

// Authenticated reports whether an identity is signed in.
func (s State) Authenticated() bool {
	return s.Identity != nil
}

// Store owns the session. It is created once per process and bootstrapped
// before any access decision is made.
type Store struct {
	durable   storage.Storage
	ephemeral storage.Storage

	mu           sync.RWMutex
	identity     *models.Identity
	token        string
	currentEvent *models.EventRef
	remembered   bool
	loading      bool

	bootstrapOnce sync.Once
}

// New creates a store over the durable and ephemeral storage areas. The store
// starts in the loading state.
func New(durable, ephemeral storage.Storage) *Store {
	return &Store{
		durable:   durable,
		ephemeral: ephemeral,
		loading:   true,
	}
}

// Bootstrap rehydrates the session from durable storage, then ephemeral
// storage. Malformed persisted state wipes both areas and leaves the session
// empty. Only the first call has any effect.
func (s *Store) Bootstrap() {
	s.bootstrapOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		defer func() { s.loading = false }()

		for _, area := range []storage.Storage{s.durable, s.ephemeral} {
			token, identity, found, err := readSession(area)
			if err != nil {
				log.Warn().Err(err).Str("area", area.Name()).Msg("discarding corrupt persisted session")
				s.clearAreas()
				return
			}
			if !found {
				continue
			}

			s.identity = identity
			s.token = token
			s.remembered = area == s.durable
			s.currentEvent = defaultEvent(identity)

			log.Debug().
				Str("area", area.Name()).
				Int("user_id", identity.ID).
				Str("role", identity.Role.String()).
				Str("token", Fingerprint(token)).
				Msg("session restored")
			return
		}

		log.Debug().Msg("no persisted session")
	})
}

// readSession reads the token/identity pair from one area. A pair with a
// missing half counts as absent. A pair that cannot be decoded is an error.
func readSession(area storage.Storage) (string, *models.Identity, bool, error) {
	token, hasToken, err := area.Read(TokenKey)
	if err != nil {
		if errors.Is(err, storage.ErrCorrupt) {
			return "", nil, false, err
		}
		log.Warn().Err(err).Str("area", area.Name()).Msg("failed to read persisted session")
		return "", nil, false, nil
	}

	rawUser, hasUser, err := area.Read(UserKey)
	if err != nil {
		if errors.Is(err, storage.ErrCorrupt) {
			return "", nil, false, err
		}
		log.Warn().Err(err).Str("area", area.Name()).Msg("failed to read persisted session")
		return "", nil, false, nil
	}

	if !hasToken || !hasUser {
		return "", nil, false, nil
	}

	var identity *models.Identity
	if err := json.Unmarshal([]byte(rawUser), &identity); err != nil {
		return "", nil, false, fmt.Errorf("failed to parse persisted identity: %w", err)
	}
	if identity == nil || token == "" {
		return "", nil, false, errors.New("persisted session is incomplete")
	}

	return token, identity, true, nil
}

// clearAreas wipes both storage areas. Callers hold s.mu.
func (s *Store) clearAreas() {
	s.identity = nil
	s.token = ""
	s.currentEvent = nil
	s.remembered = false

	for _, area := range []storage.Storage{s.durable, s.ephemeral} {
		if err := area.Clear(); err != nil {
			log.Error().Err(err).Str("area", area.Name()).Msg("failed to clear storage")
		}
	}
}

// Login replaces the session with identity and token. rememberMe selects the
// durable area; the other area loses any stale copy so at most one persisted
// session exists.
func (s *Store) Login(identity *models.Identity, token string, rememberMe bool) error {
	if identity == nil || token == "" {
		return ErrInvalidLogin
	}

	if !identity.Role.Valid() {
		log.Warn().Str("role", identity.Role.String()).Msg("login with unmapped role")
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target, stale := s.ephemeral, s.durable
	if rememberMe {
		target, stale = s.durable, s.ephemeral
	}

	if err := writeSession(target, token, string(data)); err != nil {
		return err
	}

	// the new session is persisted, only now does it replace the old one
	s.identity = identity.Clone()
	s.token = token
	s.remembered = rememberMe
	s.currentEvent = defaultEvent(s.identity)

	if err := errors.Join(stale.Remove(TokenKey), stale.Remove(UserKey)); err != nil {
		return fmt.Errorf("failed to remove stale session: %w", err)
	}

	log.Info().
		Int("user_id", identity.ID).
		Str("role", identity.Role.String()).
		Str("area", target.Name()).
		Str("token", Fingerprint(token)).
		Msg("signed in")

	return nil
}

// writeSession stores the token/identity pair in area. When the identity
// cannot be written the previous token is put back so the area never pairs
// the new token with an older identity.
func writeSession(area storage.Storage, token, identity string) error {
	prevToken, hadToken, err := area.Read(TokenKey)
	if err != nil && !errors.Is(err, storage.ErrCorrupt) {
		return fmt.Errorf("failed to read stored token: %w", err)
	}

	if err := area.Write(TokenKey, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	if err := area.Write(UserKey, identity); err != nil {
		restore := area.Remove(TokenKey)
		if hadToken {
			restore = area.Write(TokenKey, prevToken)
		}
		if restore != nil {
			log.Error().Err(restore).Str("area", area.Name()).Msg("failed to roll back token")
		}
		return fmt.Errorf("failed to persist identity: %w", err)
	}

	return nil
}

// Logout clears the session in memory and in both storage areas.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = nil
	s.token = ""
	s.currentEvent = nil
	s.remembered = false

	var errs []error
	for _, area := range []storage.Storage{s.durable, s.ephemeral} {
		errs = append(errs, area.Remove(TokenKey), area.Remove(UserKey))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to remove persisted session: %w", err)
	}

	log.Info().Msg("signed out")

	return nil
}

// SetCurrentEvent selects the event the console is scoped to. Non-admins may
// only select one of their assigned events.
func (s *Store) SetCurrentEvent(eventID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return ErrNotAuthenticated
	}

	if s.identity.IsAdmin() {
		s.currentEvent = &models.EventRef{ID: eventID}
		return nil
	}

	for _, ev := range s.identity.AssignedEvents {
		if ev.ID == eventID {
			ref := ev
			s.currentEvent = &ref
			return nil
		}
	}

	return fmt.Errorf("%w: event %d", ErrEventNotAssigned, eventID)
}

// State returns a snapshot of the session.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := State{
		Identity:   s.identity.Clone(),
		Token:      s.token,
		Remembered: s.remembered,
		Loading:    s.loading,
	}
	if s.currentEvent != nil {
		ref := *s.currentEvent
		state.CurrentEvent = &ref
	}
	return state
}

// Token returns the bearer token, empty when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// CanAccessEvent reports whether the identity may see eventID.
func (s *Store) CanAccessEvent(eventID int) bool {
	return s.EventScope().Allows(eventID)
}

// AccessibleEventIDs returns the assigned event ids. It returns nil both for
// admins (unrestricted) and when signed out; use EventScope to tell them apart.
func (s *Store) AccessibleEventIDs() []int {
	scope := s.EventScope()
	if scope.Unrestricted {
		return nil
	}
	return scope.IDs
}

// EventScope returns the events the identity may see.
func (s *Store) EventScope() EventScope {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return EventScope{}
	}
	if s.identity.IsAdmin() {
		return EventScope{Unrestricted: true}
	}
	return EventScope{IDs: s.identity.EventIDs()}
}

// HasAccess reports whether the identity may open path.
func (s *Store) HasAccess(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return false
	}
	return RoleCanOpen(s.identity.Role, path)
}

// defaultEvent picks the first assigned event for non-admins.
func defaultEvent(identity *models.Identity) *models.EventRef {
	if identity == nil || identity.IsAdmin() || len(identity.AssignedEvents) == 0 {
		return nil
	}
	ref := identity.AssignedEvents[0]
	return &ref
}
