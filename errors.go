package herald

import "errors"

// Sentinel errors returned by herald operations.
var (
	// ErrNoStore is returned when a Herald is created without a store.
	ErrNoStore = errors.New("herald: store is required")

	// ErrNoDestination is returned when a Herald is created without a destination client.
	ErrNoDestination = errors.New("herald: destination client is required")

	// ErrNoRule is returned when no rule matches the event kind.
	ErrNoRule = errors.New("herald: no rule for event kind")

	// ErrMutateFailed is returned when a rule's mutation fails.
	ErrMutateFailed = errors.New("herald: rule mutation failed")

	// ErrDispatchCancelled is returned when a rule's mutation cancels the dispatch.
	ErrDispatchCancelled = errors.New("herald: dispatch cancelled")

	// ErrDispatchFailed is returned when composing or posting the message fails.
	ErrDispatchFailed = errors.New("herald: dispatch failed")

	// ErrMissingAcknowledgement is returned when a wait-mode post returns no
	// message id, or a thread creation returns no thread id.
	ErrMissingAcknowledgement = errors.New("herald: destination acknowledgement missing")

	// ErrExtractFailed is returned when an inbound request cannot be turned into an event.
	ErrExtractFailed = errors.New("herald: extract event failed")

	// ErrNoSource is returned when no registered source accepts a request.
	ErrNoSource = errors.New("herald: no source accepts request")

	// ErrCorrelationNotFound is returned when an entity has no correlation entry.
	ErrCorrelationNotFound = errors.New("herald: correlation not found")

	// ErrRecordNotFound is returned when a dispatch record cannot be found.
	ErrRecordNotFound = errors.New("herald: record not found")

	// ErrStoreClosed is returned when a store operation is attempted after the store is closed.
	ErrStoreClosed = errors.New("herald: store is closed")

	// ErrMigrationFailed is returned when a database migration fails.
	ErrMigrationFailed = errors.New("herald: migration failed")

	// ErrStopped is returned when Process is called after Stop.
	ErrStopped = errors.New("herald: engine stopped")
)

// ErrShutdownTimeout is returned by Stop when continuations outlive the shutdown timeout.
var ErrShutdownTimeout = errors.New("herald: shutdown timed out waiting for continuations")
