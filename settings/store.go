package settings

import "context"

// Store persists setting values grouped by scope.
// Values of one scope never collide with another scope's keys.
type Store interface {
	// Returns the identifier name defined for this store
	Name() string

	Open(ctx context.Context) error
	Close(ctx context.Context) error

	// Get returns the value of key, with ok=false when it was never set.
	Get(ctx context.Context, scope, key string) (Value, bool, error)
	Set(ctx context.Context, scope, key string, value Value) error
	Delete(ctx context.Context, scope, key string) error

	// List returns every value stored in scope.
	List(ctx context.Context, scope string) (map[string]Value, error)
}
