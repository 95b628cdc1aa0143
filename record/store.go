package record

import (
	"context"

	"github.com/xraph/herald/id"
)

// Store defines the persistence contract for dispatch records.
type Store interface {
	// CreateRecord persists a new record.
	CreateRecord(ctx context.Context, r *Record) error

	// UpdateRecord replaces an existing record.
	UpdateRecord(ctx context.Context, r *Record) error

	// GetRecord returns a record by ID, or an error wrapping
	// herald.ErrRecordNotFound.
	GetRecord(ctx context.Context, recID id.ID) (*Record, error)

	// ListRecords returns records newest first.
	ListRecords(ctx context.Context, opts ListOpts) ([]*Record, error)
}
