// Package correlation maps a producer entity to the forum thread created for it.
package correlation

import (
	"github.com/xraph/herald/internal/entity"
)

// Entry links an entity to its thread. There is at most one entry per
// EntityID; writing again replaces it.
type Entry struct {
	entity.Entity

	// EntityID is the producer's item identifier.
	EntityID string `json:"entity_id"`

	// ThreadID is the destination thread created for the entity.
	ThreadID string `json:"thread_id"`

	// Source names the producer that owns EntityID.
	Source string `json:"source,omitempty"`
}
