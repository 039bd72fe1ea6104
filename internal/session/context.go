package session

import "context"

type contextKey string

const storeContextKey contextKey = "session_store"

// WithStore returns a context carrying the process-wide store.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeContextKey, s)
}

// FromContext extracts the store placed by WithStore.
func FromContext(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(storeContextKey).(*Store)
	return s, ok && s != nil
}
