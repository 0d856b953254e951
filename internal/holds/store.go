// Package holds tracks quantities sitting in open carts and distribution
// queues. Held stock is not yet committed to the ledger but must not be
// offered for sale a second time.
package holds

import "context"

// Store tracks per-variant held quantities, keyed by location and the owner
// (a cart or workflow id) that placed the hold.
type Store interface {
	// Add places a hold of qty units; negative qty reduces the hold.
	Add(ctx context.Context, location, variantCode, owner string, qty int) error
	// Held returns the total quantity held across all owners.
	Held(ctx context.Context, location, variantCode string) (int, error)
	// ReleaseOwner drops every hold the owner placed, at any location.
	ReleaseOwner(ctx context.Context, owner string) error
}
