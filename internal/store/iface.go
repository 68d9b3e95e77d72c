package store

import "context"

// Store persists client-side data between runs: a per-origin key/value area for the
// session token and user, and the last project snapshot for warm starts.
// Origin is the backend base URL, so two servers never share credentials.
type Store interface {
	// Key/value
	Get(ctx context.Context, origin, key string) (string, bool, error)
	Set(ctx context.Context, origin, key, value string) error
	Delete(ctx context.Context, origin string, keys ...string) error

	// Snapshots
	SaveSnapshot(ctx context.Context, origin string, snap Snapshot) error
	LoadSnapshot(ctx context.Context, origin string) (*Snapshot, error)
	DeleteSnapshot(ctx context.Context, origin string) error

	Close() error
}

// Bucket scopes a Store to one origin.
type Bucket struct {
	Store  Store
	Origin string
}

func (b Bucket) Get(ctx context.Context, key string) (string, bool, error) {
	return b.Store.Get(ctx, b.Origin, key)
}

func (b Bucket) Set(ctx context.Context, key, value string) error {
	return b.Store.Set(ctx, b.Origin, key, value)
}

func (b Bucket) Delete(ctx context.Context, keys ...string) error {
	return b.Store.Delete(ctx, b.Origin, keys...)
}
