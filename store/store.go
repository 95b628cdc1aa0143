// Package store defines the composite Store interface for all herald
// persistence.
//
// Each subsystem defines its own store interface and the aggregate Store
// composes them.
package store

import (
	"context"

	"github.com/xraph/herald/correlation"
	"github.com/xraph/herald/record"
)

// Store is the aggregate persistence interface.
type Store interface {
	correlation.Store
	record.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
