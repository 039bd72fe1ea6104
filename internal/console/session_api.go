package console

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/confhub/backoffice/internal/models"
	"github.com/confhub/backoffice/internal/session"
)

// sessionView is the JSON shape of the session. The bearer token never leaves
// the process.
type sessionView struct {
	Authenticated bool             `json:"authenticated"`
	Loading       bool             `json:"loading"`
	Remembered    bool             `json:"remembered"`
	User          *models.Identity `json:"user"`
	CurrentEvent  *models.EventRef `json:"currentEvent"`
	LandingPath   string           `json:"landingPath,omitempty"`
	// AccessibleEventIDs is null for admins, who see every event.
	AccessibleEventIDs []int `json:"accessibleEventIds"`
}

func (s *Server) sessionState(w http.ResponseWriter, r *http.Request) {
	state := s.store.State()

	view := sessionView{
		Authenticated: state.Authenticated(),
		Loading:       state.Loading,
		Remembered:    state.Remembered,
		User:          state.Identity,
		CurrentEvent:  state.CurrentEvent,
	}
	if state.Authenticated() {
		view.LandingPath = session.LandingPath(state.Identity.Role)
		scope := s.store.EventScope()
		if !scope.Unrestricted {
			view.AccessibleEventIDs = scope.IDs
		}
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) selectEvent(w http.ResponseWriter, r *http.Request) {
	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mediaType != "application/json" {
		writeJSONError(w, http.StatusUnsupportedMediaType, errors.New("content type must be application/json"))
		return
	}

	var body struct {
		EventID int `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.EventID <= 0 {
		writeJSONError(w, http.StatusBadRequest, errors.New("eventId is required"))
		return
	}

	err := s.store.SetCurrentEvent(body.EventID)
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		writeJSONError(w, http.StatusUnauthorized, err)
		return
	case errors.Is(err, session.ErrEventNotAssigned):
		writeJSONError(w, http.StatusForbidden, err)
		return
	case err != nil:
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}

	s.sessionState(w, r)
}
