// Package api binds the remote platform endpoints used by the console onto
// the typed request client.
package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/confhub/backoffice/internal/client"
	"github.com/confhub/backoffice/internal/models"
)

// ErrMissingCredentials is returned by Login before any request is sent.
var ErrMissingCredentials = errors.New("email and password are required")

// API wraps a client with the platform's endpoints.
type API struct {
	client *client.Client
}

// New returns an API bound to c.
func New(c *client.Client) *API {
	return &API{client: c}
}

// LoginResponse is the result of a credential exchange.
type LoginResponse struct {
	Token string           `json:"token"`
	User  *models.Identity `json:"user"`
}

// ListParams are the query parameters shared by the paged collections.
// Zero values are omitted.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Status  string
	EventID int
}

// Values encodes p as query parameters.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if s := strings.TrimSpace(p.Search); s != "" {
		v.Set("search", s)
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	if p.EventID > 0 {
		v.Set("eventId", strconv.Itoa(p.EventID))
	}
	return v
}

// Login exchanges credentials for a token and identity.
func (a *API) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	resp, err := client.Do[LoginResponse](ctx, a.client, client.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body: map[string]string{
			"email":    email,
			"password": password,
		},
	})
	if err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, errors.New("login response is missing token or user")
	}

	return &resp, nil
}

// Me returns the identity owning token.
func (a *API) Me(ctx context.Context, token string) (*models.Identity, error) {
	identity, err := client.Do[models.Identity](ctx, a.client, client.Request{
		Path:  "/auth/me",
		Token: token,
	})
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

func (a *API) ListMembers(ctx context.Context, token string, params ListParams) (*client.Page[models.Member], error) {
	return client.DoPage[models.Member](ctx, a.client, client.Request{
		Path:  "/members",
		Query: params.Values(),
		Token: token,
	}, "members")
}

func (a *API) ListRegistrations(ctx context.Context, token string, params ListParams) (*client.Page[models.Registration], error) {
	return client.DoPage[models.Registration](ctx, a.client, client.Request{
		Path:  "/registrations",
		Query: params.Values(),
		Token: token,
	}, "registrations")
}

func (a *API) ListPayments(ctx context.Context, token string, params ListParams) (*client.Page[models.Payment], error) {
	return client.DoPage[models.Payment](ctx, a.client, client.Request{
		Path:  "/payments",
		Query: params.Values(),
		Token: token,
	}, "payments")
}

// ListEvents returns every event visible to token.
func (a *API) ListEvents(ctx context.Context, token string) ([]models.Event, error) {
	events, err := client.Do[[]models.Event](ctx, a.client, client.Request{
		Path:  "/events",
		Token: token,
	})
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

// DashboardStats returns the dashboard counters, scoped to eventID when set.
func (a *API) DashboardStats(ctx context.Context, token string, eventID int) (*models.DashboardStats, error) {
	stats, err := client.Do[models.DashboardStats](ctx, a.client, client.Request{
		Path:  "/dashboard/stats",
		Query: ListParams{EventID: eventID}.Values(),
		Token: token,
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ReportSummary returns the report breakdown for eventID.
func (a *API) ReportSummary(ctx context.Context, token string, eventID int) (*models.ReportSummary, error) {
	summary, err := client.Do[models.ReportSummary](ctx, a.client, client.Request{
		Path:  "/reports/summary",
		Query: ListParams{EventID: eventID}.Values(),
		Token: token,
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
