// Package record keeps the history of dispatches.
package record

import (
	"github.com/xraph/herald/id"
	"github.com/xraph/herald/internal/entity"
)

// State is the outcome of a dispatch.
type State string

const (
	// StateDelivered indicates the primary post succeeded.
	StateDelivered State = "delivered"

	// StateNoRule indicates no rule matched the event kind.
	StateNoRule State = "no_rule"

	// StateCancelled indicates the rule's mutation cancelled the dispatch.
	StateCancelled State = "cancelled"

	// StateFailed indicates the mutation, the post, or the acknowledgement failed.
	StateFailed State = "failed"
)

// ContinuationState tracks the post-acknowledgement follow-up of a dispatch.
type ContinuationState string

const (
	ContinuationNone      ContinuationState = "none"
	ContinuationPending   ContinuationState = "pending"
	ContinuationCompleted ContinuationState = "completed"
	ContinuationFailed    ContinuationState = "failed"
)

// Record is one dispatch.
type Record struct {
	entity.Entity

	// ID equals the dispatched event's ID.
	ID id.ID `json:"id"`

	Source   string `json:"source"`
	Kind     string `json:"kind"`
	EntityID string `json:"entity_id"`

	State State  `json:"state"`
	Error string `json:"error,omitempty"`

	// MessageID and ThreadID come from the acknowledgement or the resolved target.
	MessageID string `json:"message_id,omitempty"`
	ThreadID  string `json:"thread_id,omitempty"`

	// Backfill is set when an update created the entity's thread.
	Backfill bool `json:"backfill,omitempty"`

	Continuation      ContinuationState `json:"continuation"`
	ContinuationError string            `json:"continuation_error,omitempty"`
}

// ListOpts configures filtering and pagination for record listing.
// Results are ordered newest first.
type ListOpts struct {
	Offset   int
	Limit    int
	Source   string
	EntityID string
	State    *State
}

// Matches reports whether r passes the filters in opts.
func (o ListOpts) Matches(r *Record) bool {
	if o.Source != "" && r.Source != o.Source {
		return false
	}
	if o.EntityID != "" && r.EntityID != o.EntityID {
		return false
	}
	if o.State != nil && r.State != *o.State {
		return false
	}
	return true
}
