package herald

import "time"

// Config holds the configuration for a Herald instance.
type Config struct {
	// ShutdownTimeout is the maximum time Stop waits for running continuations.
	ShutdownTimeout time.Duration

	// ContinuationTimeout bounds a single continuation. Zero leaves timeouts
	// to the destination client and the store.
	ContinuationTimeout time.Duration

	// RecordDispatches enables the dispatch history.
	RecordDispatches bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ShutdownTimeout:  30 * time.Second,
		RecordDispatches: true,
	}
}
