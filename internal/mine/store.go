package mine

import (
	"context"
	"time"
)

// Filter is the single query contract for mine listings. Zero values mean "no
// constraint"; the handler layer normalizes the "all" convention before a
// filter reaches a store.
type Filter struct {
	// Search is an untrusted, case-insensitive substring matched against the
	// name and description fields. Stores must escape it before building
	// regex-style queries.
	Search   string
	Type     *Type
	License  *License
	Verified *bool
}

// Update is a partial mutation applied through compare-and-set. Nil fields are
// left untouched. UpdatedAt always replaces the stored value and the stored
// version is bumped; a write whose ExpectedVersion is stale fails with
// sentinel.ErrConflict.
type Update struct {
	Name        *string
	Type        *Type
	Description *string
	Verified    *bool
	License     *License

	UpdatedAt       time.Time
	ExpectedVersion int64
}

// Store is the persistence boundary for mine records. Implementations return
// sentinel errors (sentinel.ErrNotFound, sentinel.ErrConflict); the service
// translates them into domain errors.
type Store interface {
	// Insert persists a new record and assigns its identifier.
	Insert(ctx context.Context, m *Mine) error

	// FindByID fetches one record. The id is assumed well-formed; callers
	// validate shape first.
	FindByID(ctx context.Context, id string) (*Mine, error)

	// Find returns all records matching every supplied predicate, in
	// insertion order. An empty filter returns everything.
	Find(ctx context.Context, f Filter) ([]*Mine, error)

	// Update applies a partial mutation and returns the updated record.
	Update(ctx context.Context, id string, upd Update) (*Mine, error)

	// Delete removes a record.
	Delete(ctx context.Context, id string) error
}
