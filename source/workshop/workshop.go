// Package workshop relays workshop item lifecycle events.
//
// A "created" item is announced, published to followers, and given a forum
// thread; the thread is recorded in the correlation store. An "updated" item
// is posted into its recorded thread, creating the thread first when none is
// recorded.
package workshop

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/xraph/herald/correlation"
	"github.com/xraph/herald/destination"
	"github.com/xraph/herald/event"
	"github.com/xraph/herald/rule"
	"github.com/xraph/herald/schema"
	"github.com/xraph/herald/signature"
	"github.com/xraph/herald/source"
)

// Name identifies workshop events and records.
const Name = "workshop"

// Event kinds.
const (
	KindCreated = "created"
	KindUpdated = "updated"
)

// Request headers.
const (
	HeaderEvent     = "workshop-event"
	HeaderSignature = "X-Herald-Signature"
	HeaderTimestamp = "X-Herald-Timestamp"
)

const schemaName = "workshop.item"

// ErrNoWebhooks is returned by New when a target is not configured.
var ErrNoWebhooks = errors.New("workshop: announcement and forum webhooks are required")

// Config configures the workshop source.
type Config struct {
	// Announcement receives "created" announcements. It is expected to be an
	// announcement channel so the post can be published.
	Announcement destination.Target `json:"announcement" yaml:"announcement"`

	// Forum receives one thread per item.
	Forum destination.Target `json:"forum" yaml:"forum"`

	Composer Composer `json:"composer" yaml:"composer"`

	// PathPrefix selects requests for this source. Default "/workshop".
	PathPrefix string `json:"path_prefix" yaml:"path_prefix"`

	// Secret enables signature verification when set.
	Secret string `json:"-" yaml:"secret"`

	// SignatureTolerance bounds the signed timestamp's age. Zero disables the check.
	SignatureTolerance time.Duration `json:"signature_tolerance" yaml:"signature_tolerance"`

	// MaxBody bounds request bodies. Default source.DefaultMaxBody.
	MaxBody int64 `json:"max_body" yaml:"max_body"`
}

// Source is the workshop event source.
type Source struct {
	cfg       Config
	client    destination.Client
	corr      correlation.Store
	validator *schema.Validator
	logger    *slog.Logger
	rules     []*rule.Rule
}

// compile-time interface check
var _ source.Source = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Source) { s.logger = l }
}

// WithValidator shares a schema validator; the item schema is registered on it.
func WithValidator(v *schema.Validator) Option {
	return func(s *Source) { s.validator = v }
}

// New creates the workshop source. The client and store must be the ones the
// engine dispatches with.
func New(cfg Config, client destination.Client, corr correlation.Store, opts ...Option) (*Source, error) {
	if cfg.Announcement.IsZero() || cfg.Forum.IsZero() {
		return nil, ErrNoWebhooks
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "/workshop"
	}
	if cfg.Composer.ItemURL == "" {
		cfg.Composer.ItemURL = DefaultItemURL
	}
	if cfg.Composer.CreatorURL == "" {
		cfg.Composer.CreatorURL = DefaultCreatorURL
	}

	s := &Source{
		cfg:    cfg,
		client: client,
		corr:   corr,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = schema.New()
	}
	if err := s.validator.Register(schemaName, itemSchema); err != nil {
		return nil, err
	}

	if cfg.Composer.GuildID == "" {
		s.logger.Warn("workshop: no guild id configured; thread posts will omit the View post link")
	}

	s.rules = s.buildRules()
	return s, nil
}

// Name returns "workshop".
func (s *Source) Name() string { return Name }

// Accepts selects requests under the configured path prefix.
func (s *Source) Accepts(r *http.Request) bool {
	return source.PathHasPrefix(r, s.cfg.PathPrefix)
}

// Rules returns the created and updated rules.
func (s *Source) Rules() []*rule.Rule { return s.rules }

// Composer returns the configured composer.
func (s *Source) Composer() Composer { return s.cfg.Composer }

// Extract reads the kind from the workshop-event header and the item from
// the JSON body.
func (s *Source) Extract(r *http.Request) (*event.Event, error) {
	kind := r.Header.Get(HeaderEvent)
	if kind == "" {
		return nil, fmt.Errorf("%w: %s header", source.ErrMissingKind, HeaderEvent)
	}

	body, err := source.ReadBody(r, s.cfg.MaxBody)
	if err != nil {
		return nil, err
	}

	if s.cfg.Secret != "" {
		err := signature.Verify(body, s.cfg.Secret,
			r.Header.Get(HeaderTimestamp), r.Header.Get(HeaderSignature),
			s.cfg.SignatureTolerance)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", source.ErrBadSignature, err)
		}
	}

	if err := s.validator.Validate(schemaName, body); err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrBadPayload, err)
	}

	var item Item
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrBadPayload, err)
	}

	return event.New(Name, kind, item.ID, &item), nil
}
