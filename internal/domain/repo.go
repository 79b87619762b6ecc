package domain

import "context"

// ProductRepo is the boundary to the external document collection. All
// operations hit the network; failures are reported once, never retried here.
type ProductRepo interface {
	// ListAll fetches every record in the collection.
	ListAll(ctx context.Context) ([]Product, error)
	// Create persists a new record and returns the store-assigned id. The
	// id on the given product is ignored.
	Create(ctx context.Context, p Product) (string, error)
	// Update overwrites the whole identified document (no partial patch).
	Update(ctx context.Context, id string, p Product) error
	// Delete removes the identified document. Deleting a missing id is an
	// error, not a no-op.
	Delete(ctx context.Context, id string) error
}
