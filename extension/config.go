package extension

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/xraph/herald"
	"github.com/xraph/herald/internal/logger"
)

// Config holds everything needed to run herald as a service. It is read
// from an optional YAML file and then overridden by environment variables.
type Config struct {
	// Listen is the HTTP listen address (default ":8080").
	Listen string `json:"listen" yaml:"listen" env:"HERALD_LISTEN"`

	// BasePath is the URL prefix for all routes (default: none).
	BasePath string `json:"base_path" yaml:"base_path" env:"HERALD_BASE_PATH"`

	// Store selects the persistence backend: "memory" or "redis". Embedding
	// applications pass any other store (postgres, sqlite, mongo) with WithStore.
	Store string `json:"store" yaml:"store" env:"HERALD_STORE"`

	// DryRun records posts in memory instead of sending them to Discord.
	DryRun bool `json:"dry_run" yaml:"dry_run" env:"HERALD_DRY_RUN"`

	ShutdownTimeout     time.Duration `json:"shutdown_timeout"     yaml:"shutdown_timeout"     env:"HERALD_SHUTDOWN_TIMEOUT"`
	ContinuationTimeout time.Duration `json:"continuation_timeout" yaml:"continuation_timeout" env:"HERALD_CONTINUATION_TIMEOUT"`
	DisableRecords      bool          `json:"disable_records"      yaml:"disable_records"      env:"HERALD_DISABLE_RECORDS"`

	Log      logger.Config  `json:"log"      yaml:"log"`
	Redis    RedisConfig    `json:"redis"    yaml:"redis"`
	Discord  DiscordConfig  `json:"discord"  yaml:"discord"`
	Workshop WorkshopConfig `json:"workshop" yaml:"workshop"`
	GitHub   GitHubConfig   `json:"github"   yaml:"github"`
}

// RedisConfig configures the redis store.
type RedisConfig struct {
	// URL is a redis:// or rediss:// connection URL.
	URL string `json:"-" yaml:"url" env:"HERALD_REDIS_URL"`

	// Namespace prefixes every key. Default "herald".
	Namespace string `json:"namespace" yaml:"namespace" env:"HERALD_REDIS_NAMESPACE"`

	// RecordTTL expires dispatch records. Zero keeps them; correlations never expire.
	RecordTTL time.Duration `json:"record_ttl" yaml:"record_ttl" env:"HERALD_RECORD_TTL"`
}

// DiscordConfig configures the destination client.
type DiscordConfig struct {
	// BotToken authorises announcement publishing. Webhook posts need no token.
	BotToken string `json:"-" yaml:"bot_token" env:"DISCORD_BOT_TOKEN"`

	// RateLimit caps posts per second per webhook. Zero is unlimited.
	RateLimit int `json:"rate_limit" yaml:"rate_limit" env:"DISCORD_RATE_LIMIT"`
}

// WorkshopConfig enables the workshop source when Webhook is set.
type WorkshopConfig struct {
	Webhook      string `json:"-" yaml:"webhook"       env:"WORKSHOP_WEBHOOK"`
	ForumWebhook string `json:"-" yaml:"forum_webhook" env:"WORKSHOP_FORUM_WEBHOOK"`

	ItemURL     string `json:"item_url"     yaml:"item_url"     env:"WORKSHOP_ITEM_URL"`
	DownloadURL string `json:"download_url" yaml:"download_url" env:"WEBHOOK_DOWNLOAD_URL"`
	CreatorURL  string `json:"creator_url"  yaml:"creator_url"  env:"WORKSHOP_CREATOR_URL"`
	GuildID     string `json:"guild_id"     yaml:"guild_id"     env:"DISCORD_GUILD_ID"`

	Secret             string        `json:"-"                   yaml:"secret"              env:"WORKSHOP_SECRET"`
	SignatureTolerance time.Duration `json:"signature_tolerance" yaml:"signature_tolerance" env:"WORKSHOP_SIGNATURE_TOLERANCE"`
}

// GitHubConfig enables the GitHub source when Webhook is set.
type GitHubConfig struct {
	Webhook       string `json:"-"              yaml:"webhook"        env:"GITHUB_WEBHOOK"`
	Secret        string `json:"-"              yaml:"secret"         env:"GITHUB_SECRET"`
	DefaultEvents bool   `json:"default_events" yaml:"default_events" env:"GITHUB_DEFAULT_EVENTS"`
	BodyLimit     int    `json:"body_limit"     yaml:"body_limit"     env:"GITHUB_BODY_LIMIT"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	hc := herald.DefaultConfig()
	return Config{
		Listen:              ":8080",
		Store:               StoreMemory,
		ShutdownTimeout:     hc.ShutdownTimeout,
		ContinuationTimeout: hc.ContinuationTimeout,
		DisableRecords:      !hc.RecordDispatches,
		Log:                 logger.Config{Format: "text", Level: "info"},
		GitHub:              GitHubConfig{DefaultEvents: true},
	}
}

// Load returns DefaultConfig overlaid with the YAML file at path (skipped
// when path is empty) and then with the process environment, validated.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment; nil means the process
// environment.
func LoadWithEnv(path string, environ map[string]string) (Config, error) {
	cfg, err := Read(path, environ)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Read is LoadWithEnv without validation, for callers that apply their own
// overrides (command-line flags) before calling Validate.
func Read(path string, environ map[string]string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

// Validate reports configuration that cannot produce a working service.
func (c Config) Validate() error {
	var errs []error
	if c.Workshop.Webhook == "" && c.GitHub.Webhook == "" {
		errs = append(errs, ErrNoSources)
	}
	if c.Workshop.Webhook != "" && c.Workshop.ForumWebhook == "" {
		errs = append(errs, errors.New("workshop: forum_webhook is required with webhook"))
	}
	// Without a token every announcement publish fails, so no thread is
	// ever opened or recorded.
	if c.Workshop.Webhook != "" && c.Discord.BotToken == "" && !c.DryRun {
		errs = append(errs, ErrNoBotToken)
	}
	switch strings.ToLower(strings.TrimSpace(c.Store)) {
	case "", StoreMemory:
	case StoreRedis:
		if c.Redis.URL == "" {
			errs = append(errs, ErrNoRedisURL)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnsupportedStore, c.Store))
	}
	if c.Discord.RateLimit < 0 {
		errs = append(errs, errors.New("discord: rate_limit must not be negative"))
	}
	return errors.Join(errs...)
}

// HeraldOptions converts the engine settings into herald options.
func (c Config) HeraldOptions() []herald.Option {
	var opts []herald.Option
	if c.ShutdownTimeout > 0 {
		opts = append(opts, herald.WithShutdownTimeout(c.ShutdownTimeout))
	}
	if c.ContinuationTimeout > 0 {
		opts = append(opts, herald.WithContinuationTimeout(c.ContinuationTimeout))
	}
	if c.DisableRecords {
		opts = append(opts, herald.WithoutRecords())
	}
	return opts
}
