// Package extension assembles a runnable herald service from Config.
//
// It builds the store, the Discord client, the enabled sources and the
// engine, and mounts the HTTP handler under the configured base path:
//
//	cfg, _ := extension.Load("herald.yaml")
//	app, err := extension.New(cfg, extension.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(cfg.Listen, app.Handler())
//
// Config.Store selects the memory or redis store. Embedding applications can
// supply any other store (postgres, sqlite or mongo over grove) with WithStore.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gu "github.com/xraph/go-utils/metrics"
	"github.com/xraph/grove/kv"
	"github.com/xraph/grove/kv/drivers/redisdriver"

	"github.com/xraph/herald"
	"github.com/xraph/herald/api"
	"github.com/xraph/herald/destination"
	"github.com/xraph/herald/destination/discord"
	"github.com/xraph/herald/destination/recorder"
	"github.com/xraph/herald/observability"
	"github.com/xraph/herald/ratelimit"
	"github.com/xraph/herald/schema"
	"github.com/xraph/herald/source/github"
	"github.com/xraph/herald/source/workshop"
	"github.com/xraph/herald/store"
	"github.com/xraph/herald/store/memory"
	heraldredis "github.com/xraph/herald/store/redis"
)

// Store names accepted by Config.Store.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// storeDialTimeout bounds connecting to a networked store.
const storeDialTimeout = 10 * time.Second

var (
	// ErrNoSources is returned when neither the workshop nor the GitHub webhook is configured.
	ErrNoSources = errors.New("extension: no source webhooks configured")

	// ErrUnsupportedStore is returned for a store name the binary cannot build.
	ErrUnsupportedStore = errors.New("extension: unsupported store")

	// ErrNoRedisURL is returned when the redis store has no connection URL.
	ErrNoRedisURL = errors.New("extension: redis store requires redis.url")

	// ErrNoBotToken is returned when the workshop source is enabled without a
	// bot token outside dry-run mode.
	ErrNoBotToken = errors.New("extension: workshop requires discord.bot_token to publish announcements")
)

// App is an assembled herald service.
type App struct {
	config  Config
	herald  *herald.Herald
	store   store.Store
	client  destination.Client
	metrics *observability.Metrics
	handler http.Handler
	logger  *slog.Logger
}

// ExtOption configures New.
type ExtOption func(*App)

// WithStore supplies the persistence backend, overriding Config.Store.
func WithStore(s store.Store) ExtOption {
	return func(a *App) { a.store = s }
}

// WithDestination supplies the destination client, e.g. a recorder for dry runs.
func WithDestination(c destination.Client) ExtOption {
	return func(a *App) { a.client = c }
}

// WithMetrics supplies the metric instruments, e.g. built on fapp.Metrics().
// By default New builds them on a standalone go-utils collector.
func WithMetrics(m *observability.Metrics) ExtOption {
	return func(a *App) { a.metrics = m }
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) ExtOption {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// New builds the service described by cfg.
func New(cfg Config, opts ...ExtOption) (*App, error) {
	a := &App{config: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}

	if a.store == nil {
		s, err := openStore(cfg)
		if err != nil {
			return nil, err
		}
		a.store = s
	}

	if a.client == nil && cfg.DryRun {
		a.logger.Warn("dry run: posts are recorded, not sent")
		a.client = recorder.New()
	}
	if a.client == nil {
		c, err := discord.New(cfg.Discord.BotToken,
			discord.WithLimiter(ratelimit.New(cfg.Discord.RateLimit)),
			discord.WithLogger(a.logger),
		)
		if err != nil {
			return nil, err
		}
		a.client = c
	}

	if a.metrics == nil {
		a.metrics = observability.NewMetrics(gu.NewMetricsCollector("herald"))
	}

	hopts := []herald.Option{
		herald.WithStore(a.store),
		herald.WithDestination(a.client),
		herald.WithLogger(a.logger),
		herald.WithTracer(observability.NewTracer()),
		herald.WithMetrics(a.metrics),
	}
	sources, err := a.buildSources()
	if err != nil {
		return nil, err
	}
	hopts = append(hopts, sources...)
	hopts = append(hopts, cfg.HeraldOptions()...)

	h, err := herald.New(hopts...)
	if err != nil {
		return nil, err
	}
	a.herald = h

	var handler http.Handler = api.NewHandler(h, a.store, a.logger)
	if base := strings.TrimSuffix(cfg.BasePath, "/"); base != "" {
		mux := http.NewServeMux()
		mux.Handle(base+"/", http.StripPrefix(base, handler))
		handler = mux
	}
	a.handler = handler

	return a, nil
}

func (a *App) buildSources() ([]herald.Option, error) {
	var opts []herald.Option
	validator := schema.New()

	if w := a.config.Workshop; w.Webhook != "" {
		ann, err := discord.ParseWebhookURL(w.Webhook)
		if err != nil {
			return nil, fmt.Errorf("workshop webhook: %w", err)
		}
		forum, err := discord.ParseWebhookURL(w.ForumWebhook)
		if err != nil {
			return nil, fmt.Errorf("workshop forum webhook: %w", err)
		}
		src, err := workshop.New(workshop.Config{
			Announcement: ann,
			Forum:        forum,
			Composer: workshop.Composer{
				ItemURL:     w.ItemURL,
				DownloadURL: w.DownloadURL,
				CreatorURL:  w.CreatorURL,
				GuildID:     w.GuildID,
			},
			Secret:             w.Secret,
			SignatureTolerance: w.SignatureTolerance,
		}, a.client, a.store,
			workshop.WithLogger(a.logger.With("source", workshop.Name)),
			workshop.WithValidator(validator),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, herald.WithSource(src))
	}

	if g := a.config.GitHub; g.Webhook != "" {
		hook, err := discord.ParseWebhookURL(g.Webhook)
		if err != nil {
			return nil, fmt.Errorf("github webhook: %w", err)
		}
		src, err := github.New(github.Config{
			Webhook:       hook,
			Secret:        g.Secret,
			DefaultEvents: g.DefaultEvents,
			BodyLimit:     g.BodyLimit,
		},
			github.WithLogger(a.logger.With("source", github.Name)),
			github.WithValidator(validator),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, herald.WithSource(src))
	}

	if len(opts) == 0 {
		return nil, ErrNoSources
	}
	return opts, nil
}

func openStore(cfg Config) (store.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "", StoreMemory:
		return memory.New(), nil
	case StoreRedis:
		return openRedis(cfg.Redis)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStore, cfg.Store)
	}
}

// openRedis dials the redis driver and wraps it in a grove KV store.
func openRedis(rc RedisConfig) (store.Store, error) {
	if rc.URL == "" {
		return nil, ErrNoRedisURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeDialTimeout)
	defer cancel()

	drv := redisdriver.New()
	if err := drv.Open(ctx, rc.URL); err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("open redis: %w", err)
	}
	kvs, err := kv.Open(drv)
	if err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("open redis: %w", err)
	}

	return heraldredis.New(kvs,
		heraldredis.WithNamespace(rc.Namespace),
		heraldredis.WithRecordTTL(rc.RecordTTL),
	), nil
}

// Handler returns the HTTP handler mounted under the base path.
func (a *App) Handler() http.Handler { return a.handler }

// Herald returns the engine.
func (a *App) Herald() *herald.Herald { return a.herald }

// Metrics returns the engine's metric instruments.
func (a *App) Metrics() *observability.Metrics { return a.metrics }

// Store returns the persistence backend.
func (a *App) Store() store.Store { return a.store }

// Migrate runs the store's migrations.
func (a *App) Migrate(ctx context.Context) error {
	if err := a.store.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %w", herald.ErrMigrationFailed, err)
	}
	return nil
}

// Shutdown waits for running continuations and closes the store.
func (a *App) Shutdown(ctx context.Context) error {
	stopErr := a.herald.Stop(ctx)
	if stopErr != nil {
		a.logger.Warn("continuations still running at shutdown", "error", stopErr.Error())
	}
	return errors.Join(stopErr, a.store.Close())
}
