package console

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/confhub/backoffice/internal/api"
	"github.com/confhub/backoffice/internal/client"
	"github.com/confhub/backoffice/internal/session"
)

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	p := s.newPage("Sign in")
	p.Login = true
	s.render(w, r, http.StatusOK, p)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	p := s.newPage("Sign in")
	p.Login = true

	if err := r.ParseForm(); err != nil {
		p.Toast = "Invalid form submission"
		s.render(w, r, http.StatusBadRequest, p)
		return
	}

	email := r.PostFormValue("email")
	p.Email = email

	logger := zerolog.Ctx(r.Context()).With().
		Str("email", email).
		Str("client_ip", ExtractClientIP(r)).
		Logger()

	resp, err := s.api.Login(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		logger.Warn().Err(err).Msg("sign in failed")

		status := http.StatusBadGateway
		var apiErr *client.APIError
		switch {
		case errors.Is(err, api.ErrMissingCredentials):
			status = http.StatusBadRequest
		case errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError:
			status = http.StatusUnauthorized
		}

		p.Toast = err.Error()
		s.render(w, r, status, p)
		return
	}

	remember := r.PostFormValue("remember") != ""
	if err := s.store.Login(resp.User, resp.Token, remember); err != nil {
		logger.Error().Err(err).Msg("failed to store session")
		p.Toast = "Could not save the session"
		s.render(w, r, http.StatusInternalServerError, p)
		return
	}

	logger.Info().Str("role", resp.User.Role.String()).Bool("remember", remember).Msg("signed in")

	http.Redirect(w, r, session.LandingPath(resp.User.Role), http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.store.Logout(); err != nil {
		// the in-memory session is gone either way
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to clear persisted session")
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
