package correlation

import "context"

// Store defines the persistence contract for correlation entries.
type Store interface {
	// GetCorrelation returns the entry for entityID, or an error wrapping
	// herald.ErrCorrelationNotFound when there is none.
	GetCorrelation(ctx context.Context, entityID string) (*Entry, error)

	// PutCorrelation inserts or replaces the entry for e.EntityID.
	PutCorrelation(ctx context.Context, e *Entry) error

	// DeleteCorrelation removes the entry for entityID.
	DeleteCorrelation(ctx context.Context, entityID string) error
}
