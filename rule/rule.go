// Package rule defines dispatch rules and the table that maps event kinds to
// them.
//
// A Rule is a template built once at startup and shared by every dispatch.
// Per-dispatch changes (attaching a thread, cancelling) go to a Resolved
// overlay, never to the Rule itself.
package rule

import (
	"context"

	"github.com/xraph/herald/destination"
	"github.com/xraph/herald/event"
	"github.com/xraph/herald/message"
)

// ComposeFunc builds the outbound message for an event.
type ComposeFunc func(evt *event.Event) (*message.Message, error)

// MutateFunc runs before the post and may retarget or cancel the dispatch.
type MutateFunc func(ctx context.Context, evt *event.Event, r *Resolved) error

// AckFunc runs after a successful wait-mode post.
type AckFunc func(ctx context.Context, evt *event.Event, ack destination.Ack) error

// Rule describes how one kind of event is relayed.
type Rule struct {
	// Name is the event kind or glob pattern the rule is registered under.
	Name string

	// Target is the default destination.
	Target destination.Target

	// Compose builds the message. Required.
	Compose ComposeFunc

	// Wait requests destination identifiers for the post.
	Wait bool

	// Mutate is optional.
	Mutate MutateFunc

	// OnAcknowledged is optional and only runs when Wait is set.
	OnAcknowledged AckFunc
}

// Resolve returns a fresh per-dispatch overlay of r.
func (r *Rule) Resolve() *Resolved {
	return &Resolved{Rule: r, Target: r.Target}
}

// Resolved is the per-dispatch view of a Rule.
type Resolved struct {
	// Rule is the shared template. Do not modify it.
	Rule *Rule

	// Target is this dispatch's destination, initially a copy of Rule.Target.
	Target destination.Target

	Cancelled bool
	Reason    string

	// Backfilled is set by a mutation that had to create the destination
	// thread itself.
	Backfilled bool
}

// Cancel stops the dispatch before anything is posted.
func (r *Resolved) Cancel(reason string) {
	r.Cancelled = true
	r.Reason = reason
}

// AttachThread scopes the dispatch's target to threadID.
func (r *Resolved) AttachThread(threadID string) {
	r.Target = r.Target.InThread(threadID)
}
