// Package source defines producers of inbound events.
//
// A Source recognises its own HTTP requests, turns them into events, and
// contributes the rules that relay those events.
package source

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xraph/herald/event"
	"github.com/xraph/herald/rule"
)

var (
	// ErrMissingKind is returned when a request does not name its event kind.
	ErrMissingKind = errors.New("source: missing event kind")

	// ErrBadPayload is returned when a request body cannot be parsed.
	ErrBadPayload = errors.New("source: bad payload")

	// ErrBadSignature is returned when a request fails signature verification.
	ErrBadSignature = errors.New("source: bad signature")

	// ErrBodyTooLarge is returned when a request body exceeds the read limit.
	ErrBodyTooLarge = errors.New("source: body too large")
)

// DefaultMaxBody bounds inbound request bodies.
const DefaultMaxBody = 1 << 20

// Source is a producer of inbound events.
type Source interface {
	// Name identifies the source on events and records.
	Name() string

	// Accepts reports whether r belongs to this source.
	Accepts(r *http.Request) bool

	// Extract builds an event from r.
	Extract(r *http.Request) (*event.Event, error)

	// Rules returns the rules relaying this source's events.
	Rules() []*rule.Rule
}

// ReadBody reads at most limit bytes of r's body. A body longer than limit
// is an error rather than silently truncated.
func ReadBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, fmt.Errorf("%w: empty body", ErrBadPayload)
	}
	if limit <= 0 {
		limit = DefaultMaxBody
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrBadPayload, err)
	}
	if int64(len(body)) > limit {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

// PathHasPrefix reports whether r's path is prefix or lies beneath it.
func PathHasPrefix(r *http.Request, prefix string) bool {
	p := r.URL.Path
	return p == prefix || strings.HasPrefix(p, strings.TrimSuffix(prefix, "/")+"/")
}
