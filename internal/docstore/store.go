// Package docstore provides a hierarchical document database scoped by
// collection paths (e.g. "users/{uid}/categories"), with ordered queries,
// merge writes, atomic field increments and live query subscriptions.
package docstore

import "context"

// Document is a raw stored record: an id plus a JSON payload.
type Document struct {
	ID   string
	Data []byte
}

// Increment marks a field in an Update call as an atomic increment-by-delta
// instead of a plain assignment.
type Increment int

// Unsubscribe cancels a live subscription. Safe to call more than once.
type Unsubscribe func()

// Store is the persistence contract consumed by the planner core.
// All not-found conditions surface as apperr.ErrNotFound.
type Store interface {
	// Get fetches a single document.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// GetAll fetches every document in a collection. When orderBy names a
	// JSON field, documents are ordered by that field ascending.
	GetAll(ctx context.Context, collection, orderBy string) ([]Document, error)

	// Set writes a document under a known id. With merge, fields of value
	// are overlaid on the existing document instead of replacing it.
	Set(ctx context.Context, collection, id string, value any, merge bool) error

	// Update applies field changes to an existing document. Values of type
	// Increment are added to the current numeric value atomically.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// Delete removes a document. Deleting an absent document is a no-op.
	Delete(ctx context.Context, collection, id string) error

	// Add creates a document with a generated id and returns the id.
	Add(ctx context.Context, collection string, value any) (string, error)

	// Subscribe registers fn to receive the full ordered result of the
	// collection query on every change to that collection. fn fires once
	// immediately with the current snapshot.
	Subscribe(collection, orderBy string, fn func([]Document)) (Unsubscribe, error)

	// Close releases the underlying database handle.
	Close() error
}
