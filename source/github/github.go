// Package github forwards GitHub repository webhooks as embeds.
//
// Every delivery becomes one fire-and-forget post; no state is kept between
// events.
package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/herald/destination"
	"github.com/xraph/herald/event"
	"github.com/xraph/herald/rule"
	"github.com/xraph/herald/schema"
	"github.com/xraph/herald/signature"
	"github.com/xraph/herald/source"
)

// Name identifies GitHub events and records.
const Name = "github"

// Request headers.
const (
	HeaderEvent     = "X-GitHub-Event"
	HeaderSignature = "X-Hub-Signature-256"
)

// DefaultBodyLimit caps embed descriptions.
const DefaultBodyLimit = 997

const schemaName = "github.payload"

// ErrNoWebhook is returned by New without a target webhook.
var ErrNoWebhook = errors.New("github: webhook is required")

// Config configures the GitHub source.
type Config struct {
	Webhook destination.Target `json:"webhook" yaml:"webhook"`

	// PathPrefix selects requests for this source. Default "/github".
	PathPrefix string `json:"path_prefix" yaml:"path_prefix"`

	// Secret enables X-Hub-Signature-256 verification when set.
	Secret string `json:"-" yaml:"secret"`

	// DefaultEvents forwards event types without a dedicated rule as a
	// generic embed.
	DefaultEvents bool `json:"default_events" yaml:"default_events"`

	// BodyLimit caps embed descriptions. Default DefaultBodyLimit.
	BodyLimit int `json:"body_limit" yaml:"body_limit"`

	MaxBody int64 `json:"max_body" yaml:"max_body"`
}

// Source is the GitHub event source.
type Source struct {
	cfg       Config
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

// WithValidator shares a schema validator.
func WithValidator(v *schema.Validator) Option {
	return func(s *Source) { s.validator = v }
}

// New creates the GitHub source.
func New(cfg Config, opts ...Option) (*Source, error) {
	if cfg.Webhook.IsZero() {
		return nil, ErrNoWebhook
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "/github"
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = DefaultBodyLimit
	}

	s := &Source{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = schema.New()
	}
	if err := s.validator.Register(schemaName, payloadSchema); err != nil {
		return nil, err
	}
	s.rules = s.buildRules()
	return s, nil
}

func (s *Source) Name() string { return Name }

func (s *Source) Accepts(r *http.Request) bool {
	return source.PathHasPrefix(r, s.cfg.PathPrefix)
}

func (s *Source) Rules() []*rule.Rule { return s.rules }

// Extract builds an event whose kind is the X-GitHub-Event header, suffixed
// with the payload's action when present ("issues.opened").
func (s *Source) Extract(r *http.Request) (*event.Event, error) {
	name := r.Header.Get(HeaderEvent)
	if name == "" {
		return nil, fmt.Errorf("%w: %s header", source.ErrMissingKind, HeaderEvent)
	}

	body, err := source.ReadBody(r, s.cfg.MaxBody)
	if err != nil {
		return nil, err
	}

	if s.cfg.Secret != "" {
		if err := signature.VerifyGitHub(body, s.cfg.Secret, r.Header.Get(HeaderSignature)); err != nil {
			return nil, fmt.Errorf("%w: %w", source.ErrBadSignature, err)
		}
	}

	if err := s.validator.Validate(schemaName, body); err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrBadPayload, err)
	}

	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrBadPayload, err)
	}

	kind := name
	if p.Action != "" {
		kind = name + "." + p.Action
	}
	return event.New(Name, kind, p.Repository.FullName, &p), nil
}
