// Package recorder provides an in-memory destination.Client that records
// every call. It backs tests and the binary's dry-run mode.
package recorder

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/xraph/herald/destination"
	"github.com/xraph/herald/message"
)

// Op names a recorded client operation.
type Op string

// Recorded operations.
const (
	OpPost     Op = "post"
	OpPostWait Op = "post_wait"
	OpPublish  Op = "publish"
)

// Call is one recorded client invocation.
type Call struct {
	Op        Op
	Target    destination.Target
	Message   *message.Message
	ChannelID string
	MessageID string
}

// AckFunc scripts the acknowledgement returned for a wait-mode post.
type AckFunc func(to destination.Target, msg *message.Message) (destination.Ack, error)

// Recorder is a concurrency-safe recording destination.Client.
type Recorder struct {
	mu      sync.Mutex
	calls   []Call
	ack     AckFunc
	postErr error
	pubErr  error
	seq     int
}

// compile-time interface check
var _ destination.Client = (*Recorder)(nil)

// New returns a Recorder whose wait-mode posts succeed with generated identifiers.
func New() *Recorder {
	r := &Recorder{}
	r.ack = r.generatedAck
	return r
}

// SetAck replaces the acknowledgement script.
func (r *Recorder) SetAck(fn AckFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ack = fn
}

// FailPosts makes every Post and PostWait return err. Pass nil to reset.
func (r *Recorder) FailPosts(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.postErr = err
}

// FailPublish makes every Publish return err. Pass nil to reset.
func (r *Recorder) FailPublish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pubErr = err
}

// Post records a fire-and-forget post.
func (r *Recorder) Post(_ context.Context, to destination.Target, msg *message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: OpPost, Target: to, Message: msg})
	return r.postErr
}

// PostWait records a wait-mode post and returns the scripted acknowledgement.
func (r *Recorder) PostWait(_ context.Context, to destination.Target, msg *message.Message) (destination.Ack, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: OpPostWait, Target: to, Message: msg})
	if r.postErr != nil {
		return destination.Ack{}, r.postErr
	}
	return r.ack(to, msg)
}

// Publish records a publish call.
func (r *Recorder) Publish(_ context.Context, channelID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: OpPublish, ChannelID: channelID, MessageID: messageID})
	return r.pubErr
}

// Calls returns a snapshot of the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Ops returns the recorded operation names in order.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]Op, len(r.calls))
	for i, c := range r.calls {
		ops[i] = c.Op
	}
	return ops
}

// Reset clears recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// generatedAck must be called with mu held.
func (r *Recorder) generatedAck(to destination.Target, msg *message.Message) (destination.Ack, error) {
	r.seq++
	n := strconv.Itoa(r.seq)
	ack := destination.Ack{
		MessageID: "msg-" + n,
		ChannelID: "chan-" + to.WebhookID,
	}
	switch {
	case to.ThreadID != "":
		ack.ChannelID = to.ThreadID
		ack.ThreadID = to.ThreadID
	case msg != nil && msg.ThreadName != "":
		ack.ThreadID = fmt.Sprintf("thread-%s", n)
		ack.ChannelID = ack.ThreadID
	}
	return ack, nil
}
