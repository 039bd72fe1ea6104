package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/confhub/backoffice/internal/models"
)

// Page is one page of a paginated collection.
type Page[T any] struct {
	Items      []T
	Pagination models.Pagination
}

// DoPage sends req and decodes a {<resource>: [...], pagination: {...}} body.
// A missing resource key yields an empty page.
func DoPage[T any](ctx context.Context, c *Client, req Request, resource string) (*Page[T], error) {
	raw, err := Do[map[string]json.RawMessage](ctx, c, req)
	if err != nil {
		return nil, err
	}

	page := &Page[T]{Items: []T{}}

	if data, ok := raw[resource]; ok && string(data) != "null" {
		if err := json.Unmarshal(data, &page.Items); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", resource, err)
		}
	}

	if data, ok := raw["pagination"]; ok && string(data) != "null" {
		if err := json.Unmarshal(data, &page.Pagination); err != nil {
			return nil, fmt.Errorf("failed to decode pagination: %w", err)
		}
	}

	return page, nil
}

// HasNext reports whether a later page exists.
func (p *Page[T]) HasNext() bool {
	return p.Pagination.Page < p.Pagination.TotalPages
}
