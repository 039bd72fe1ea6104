package console

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confhub/backoffice/internal/api"
	"github.com/confhub/backoffice/internal/client"
	"github.com/confhub/backoffice/internal/models"
	"github.com/confhub/backoffice/internal/session"
	"github.com/confhub/backoffice/internal/storage"
)

const organizerUser = `{"id":2,"firstName":"Olga","lastName":"Reis","email":"olga@example.com","role":"organizer","assignedEvents":[{"id":7,"name":"Congress 2026"},{"id":8,"name":"Summit"}]}`

type fixture struct {
	store     *session.Store
	durable   *storage.MemoryStorage
	ephemeral *storage.MemoryStorage
	handler   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	remote := http.NewServeMux()
	remote.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok-organizer","user":` + organizerUser + `}`))
	})
	remote.HandleFunc("GET /api/members", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-organizer", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"members":[` +
			`{"id":1,"firstName":"Ana","lastName":"Silva","email":"ana@example.com","status":"active"},` +
			`{"id":2,"firstName":"Bruno","lastName":"Costa","email":"bruno@example.com","status":"inactive"}` +
			`],"pagination":{"page":1,"limit":20,"total":2,"totalPages":1}}`))
	})
	remote.HandleFunc("GET /api/registrations", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search") == "boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"registrations":[` +
			`{"id":1,"eventId":7,"registrationCode":"REG-0701","firstName":"Ana","lastName":"Silva","status":"confirmed"},` +
			`{"id":2,"eventId":8,"registrationCode":"REG-0802","firstName":"Rui","lastName":"Lopes","status":"cancelled"},` +
			`{"id":3,"eventId":9,"registrationCode":"REG-0903","firstName":"Zita","lastName":"Mota","status":"confirmed"}` +
			`],"pagination":{"page":1,"limit":20,"total":3,"totalPages":1}}`))
	})
	remote.HandleFunc("GET /api/reports/summary", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("eventId"))
		_, _ = w.Write([]byte(`{"eventId":7,"byStatus":{"confirmed":3},"revenue":120,"currency":"EUR","registrationsByDay":[{"date":"2026-05-01","count":2}]}`))
	})

	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	c, err := client.New(client.Config{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second})
	require.NoError(t, err)

	f := &fixture{
		durable:   storage.NewMemoryStorage("durable"),
		ephemeral: storage.NewMemoryStorage("ephemeral"),
	}
	f.store = session.New(f.durable, f.ephemeral)
	f.store.Bootstrap()
	f.handler = New(f.store, api.New(c), Options{
		CORSOrigins: []string{"https://admin.example.com"},
		Logger:      zerolog.Nop(),
	}).Handler()

	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func loginRequest(password string, remember bool) *http.Request {
	form := url.Values{"email": {"olga@example.com"}, "password": {password}}
	if remember {
		form.Set("remember", "on")
	}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func (f *fixture) signIn(t *testing.T) {
	t.Helper()
	rec := f.do(loginRequest("secret", true))
	require.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/members", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password"`)
}

func TestLogin(t *testing.T) {
	t.Run("rejected credentials show a toast", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(loginRequest("wrong", false))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid credentials")
		assert.False(t, f.store.State().Authenticated())
	})

	t.Run("remembered sign in lands on role page", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(loginRequest("secret", true))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/reports", rec.Header().Get("Location"))

		state := f.store.State()
		require.True(t, state.Authenticated())
		assert.True(t, state.Remembered)
		assert.Equal(t, 2, f.durable.Len())
		assert.Equal(t, 0, f.ephemeral.Len())
	})

	t.Run("session sign in uses ephemeral storage", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(loginRequest("secret", false))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, 0, f.durable.Len())
		assert.Equal(t, 2, f.ephemeral.Len())
	})

	t.Run("cross site post is rejected", func(t *testing.T) {
		f := newFixture(t)

		req := loginRequest("secret", true)
		req.Header.Set("Sec-Fetch-Site", "cross-site")
		rec := f.do(req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, f.store.State().Authenticated())
	})
}

func TestPages(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	t.Run("members listed", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/members", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Ana Silva")
		assert.Contains(t, rec.Body.String(), "Congress 2026")
	})

	t.Run("members filtered by status", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/members?status=active", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Ana Silva")
		assert.NotContains(t, rec.Body.String(), "Bruno Costa")
	})

	t.Run("registrations outside assigned events hidden", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/registrations", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "REG-0701")
		assert.Contains(t, rec.Body.String(), "REG-0802")
		assert.NotContains(t, rec.Body.String(), "REG-0903")

		rec = f.do(httptest.NewRequest(http.MethodGet, "/registrations?status=confirmed", nil))
		assert.Contains(t, rec.Body.String(), "REG-0701")
		assert.NotContains(t, rec.Body.String(), "REG-0802")
		assert.NotContains(t, rec.Body.String(), "REG-0903")
	})

	t.Run("remote failure renders a toast", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/registrations?search=boom", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "API Error: 500")
		assert.Contains(t, rec.Body.String(), "No results")
	})

	t.Run("reports for selected event", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/reports", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "120.00 EUR")
		assert.Contains(t, rec.Body.String(), "2026-05-01")
	})

	t.Run("pages outside the role redirect to landing", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/checkin", nil))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/reports", rec.Header().Get("Location"))
	})

	t.Run("login page redirects once signed in", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/login", nil))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/reports", rec.Header().Get("Location"))
	})
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/logout", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.True(t, f.store.State().Authenticated())

	rec = f.do(httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.False(t, f.store.State().Authenticated())
	assert.Equal(t, 0, f.durable.Len())
	assert.Equal(t, 0, f.ephemeral.Len())

	rec = f.do(httptest.NewRequest(http.MethodGet, "/members", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func eventRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/session/event", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSessionAPI(t *testing.T) {
	f := newFixture(t)

	decode := func(t *testing.T, rec *httptest.ResponseRecorder) sessionView {
		t.Helper()
		var view sessionView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		return view
	}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/session", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode(t, rec).Authenticated)

	rec = f.do(eventRequest(`{"eventId":7}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.signIn(t)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/session", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode(t, rec)
	assert.True(t, view.Authenticated)
	assert.Equal(t, "/reports", view.LandingPath)
	assert.Equal(t, []int{7, 8}, view.AccessibleEventIDs)
	assert.Equal(t, &models.EventRef{ID: 7, Name: "Congress 2026"}, view.CurrentEvent)
	assert.NotContains(t, rec.Body.String(), "tok-organizer")

	rec = f.do(eventRequest(`{"eventId":8}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 8, decode(t, rec).CurrentEvent.ID)

	rec = f.do(eventRequest(`{"eventId":99}`))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 8, f.store.State().CurrentEvent.ID)

	rec = f.do(eventRequest(`nope`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectEvent_CrossSiteRejected(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	t.Run("cross site json post", func(t *testing.T) {
		req := eventRequest(`{"eventId":8}`)
		req.Header.Set("Origin", "https://evil.example.com")
		req.Header.Set("Sec-Fetch-Site", "cross-site")
		rec := f.do(req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, 7, f.store.State().CurrentEvent.ID)
	})

	t.Run("cross site form style post", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/session/event", strings.NewReader(`{"eventId":8}`))
		req.Header.Set("Origin", "https://evil.example.com")
		req.Header.Set("Sec-Fetch-Site", "cross-site")
		req.Header.Set("Content-Type", "text/plain")
		rec := f.do(req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, 7, f.store.State().CurrentEvent.ID)
	})

	t.Run("non json body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/session/event", strings.NewReader(`{"eventId":8}`))
		req.Header.Set("Content-Type", "text/plain")
		rec := f.do(req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		assert.Equal(t, 7, f.store.State().CurrentEvent.ID)
	})

	t.Run("configured origin", func(t *testing.T) {
		req := eventRequest(`{"eventId":8}`)
		req.Header.Set("Origin", "https://admin.example.com")
		req.Header.Set("Sec-Fetch-Site", "cross-site")
		rec := f.do(req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 8, f.store.State().CurrentEvent.ID)
	})
}

func TestSessionAPI_CORS(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/session", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := f.do(req)
	assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = f.do(req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{name: "forwarded for first hop", headers: map[string]string{"X-Forwarded-For": "203.0.113.1 , 198.51.100.1"}, expected: "203.0.113.1"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "192.168.1.100"}, expected: "192.168.1.100"},
		{name: "forwarded wins over real ip", headers: map[string]string{"X-Forwarded-For": "10.0.0.1", "X-Real-IP": "10.0.0.2"}, expected: "10.0.0.1"},
		{name: "remote addr ipv4", remote: "192.0.2.1:1234", expected: "192.0.2.1"},
		{name: "remote addr ipv6", remote: "[2001:db8::1]:8080", expected: "2001:db8::1"},
		{name: "remote addr without port", remote: "192.0.2.1", expected: "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.remote != "" {
				r.RemoteAddr = tt.remote
			}
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, ExtractClientIP(r))
		})
	}
}
