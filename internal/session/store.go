package session

import "context"

// Store keeps values by id. Get reports ok=false for a missing id rather than
// an error.
type Store[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	Put(ctx context.Context, id string, v T) error
	Delete(ctx context.Context, id string) error
	NewID() string
}
