// Package destination defines the contract for posting composed messages to a
// chat platform.
package destination

import (
	"context"
	"errors"

	"github.com/xraph/herald/message"
)

// ErrNoWebhook is returned when a post is attempted against an empty Target.
var ErrNoWebhook = errors.New("destination: target has no webhook")

// Target addresses a webhook, optionally scoped to a thread under it.
type Target struct {
	WebhookID string `json:"webhook_id" yaml:"webhook_id"`
	Token     string `json:"-"          yaml:"token"`
	ThreadID  string `json:"thread_id,omitempty" yaml:"thread_id,omitempty"`
}

// InThread returns a copy of t scoped to threadID.
func (t Target) InThread(threadID string) Target {
	t.ThreadID = threadID
	return t
}

// IsZero reports whether t has no webhook configured.
func (t Target) IsZero() bool {
	return t.WebhookID == "" || t.Token == ""
}

// Ack carries the identifiers the destination assigned to a wait-mode post.
// Missing fields are left empty; callers decide which ones they require.
type Ack struct {
	MessageID string `json:"message_id,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
	ThreadID  string `json:"thread_id,omitempty"`
}

// Client posts messages to a destination.
type Client interface {
	// Post sends msg without waiting for identifiers.
	Post(ctx context.Context, to Target, msg *message.Message) error

	// PostWait sends msg and returns the identifiers the destination assigned.
	// ThreadID is filled when msg opened a thread or to was thread scoped.
	PostWait(ctx context.Context, to Target, msg *message.Message) (Ack, error)

	// Publish promotes a posted message's visibility (announcement crosspost).
	Publish(ctx context.Context, channelID, messageID string) error
}
