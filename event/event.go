// Package event defines the inbound event handed to the dispatch engine.
package event

import (
	"time"

	"github.com/xraph/herald/id"
)

// Event is a single lifecycle notification extracted from an inbound request.
// It is built once by a source and is not modified afterwards.
type Event struct {
	// ID is assigned at extraction and reused for the dispatch record.
	ID id.ID `json:"id"`

	// Source names the producer that sent the event (e.g. "workshop", "github").
	Source string `json:"source"`

	// Kind is the lifecycle stage used for rule lookup (e.g. "created", "issues.opened").
	Kind string `json:"kind"`

	// EntityID identifies the entity the event reports on.
	EntityID string `json:"entity_id"`

	// Data is the parsed domain item. Its concrete type is owned by the source.
	Data any `json:"data"`

	// ReceivedAt is when the request was extracted.
	ReceivedAt time.Time `json:"received_at"`
}

// New returns an Event with a fresh ID and ReceivedAt set to now.
func New(source, kind, entityID string, data any) *Event {
	return &Event{
		ID:         id.NewDispatchID(),
		Source:     source,
		Kind:       kind,
		EntityID:   entityID,
		Data:       data,
		ReceivedAt: time.Now().UTC(),
	}
}
