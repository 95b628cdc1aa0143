package herald

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/herald/destination"
	"github.com/xraph/herald/observability"
	"github.com/xraph/herald/rule"
	"github.com/xraph/herald/source"
	"github.com/xraph/herald/store"
)

// Herald is the root relay engine.
type Herald struct {
	config   Config
	store    store.Store
	client   destination.Client
	rules    *rule.Table
	bySource map[string]*rule.Table
	sources  []source.Source
	extra    []*rule.Rule
	metrics  *observability.Metrics
	tracer   *observability.Tracer
	logger   *slog.Logger

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// Option configures a Herald instance.
type Option func(*Herald) error

// New creates a new Herald with the given options. A store and a
// destination client are required. Each source's rules form their own table
// so a source's catch-all never sees another source's events; WithRules
// rules apply to every source. A duplicate rule name within a table is an
// error.
func New(opts ...Option) (*Herald, error) {
	h := &Herald{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	if h.store == nil {
		return nil, ErrNoStore
	}
	if h.client == nil {
		return nil, ErrNoDestination
	}

	h.bySource = make(map[string]*rule.Table, len(h.sources))
	for _, src := range h.sources {
		t, ok := h.bySource[src.Name()]
		if !ok {
			t = &rule.Table{}
			h.bySource[src.Name()] = t
		}
		for _, r := range src.Rules() {
			if err := t.Add(r); err != nil {
				return nil, fmt.Errorf("source %s: %w", src.Name(), err)
			}
		}
	}

	rules, err := rule.NewTable(h.extra...)
	if err != nil {
		return nil, err
	}
	h.rules = rules
	return h, nil
}

// WithStore sets the persistence backend.
func WithStore(s store.Store) Option {
	return func(h *Herald) error {
		h.store = s
		return nil
	}
}

// WithDestination sets the destination client used for primary posts.
func WithDestination(c destination.Client) Option {
	return func(h *Herald) error {
		h.client = c
		return nil
	}
}

// WithSource registers an event source and its rules. Sources are tried in
// registration order by HandleRequest.
func WithSource(s source.Source) Option {
	return func(h *Herald) error {
		h.sources = append(h.sources, s)
		return nil
	}
}

// WithRules registers rules that belong to no source.
func WithRules(rules ...*rule.Rule) Option {
	return func(h *Herald) error {
		h.extra = append(h.extra, rules...)
		return nil
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Herald) error {
		if logger != nil {
			h.logger = logger
		}
		return nil
	}
}

// WithMetrics enables metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(h *Herald) error {
		h.metrics = m
		return nil
	}
}

// WithTracer enables tracing.
func WithTracer(t *observability.Tracer) Option {
	return func(h *Herald) error {
		h.tracer = t
		return nil
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(h *Herald) error {
		h.config = cfg
		return nil
	}
}

// WithShutdownTimeout sets the maximum time Stop waits for continuations.
func WithShutdownTimeout(d time.Duration) Option {
	return func(h *Herald) error {
		h.config.ShutdownTimeout = d
		return nil
	}
}

// WithContinuationTimeout bounds each continuation.
func WithContinuationTimeout(d time.Duration) Option {
	return func(h *Herald) error {
		h.config.ContinuationTimeout = d
		return nil
	}
}

// WithoutRecords disables the dispatch history.
func WithoutRecords() Option {
	return func(h *Herald) error {
		h.config.RecordDispatches = false
		return nil
	}
}
