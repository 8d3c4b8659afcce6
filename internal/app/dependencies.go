package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/planet-pizzaria/internal/catalog"
	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/config"
	"github.com/noah-isme/planet-pizzaria/internal/customer"
	"github.com/noah-isme/planet-pizzaria/internal/events"
	"github.com/noah-isme/planet-pizzaria/internal/export"
	"github.com/noah-isme/planet-pizzaria/internal/lock"
	"github.com/noah-isme/planet-pizzaria/internal/obs"
	"github.com/noah-isme/planet-pizzaria/internal/order"
	"github.com/noah-isme/planet-pizzaria/internal/pricing"
	"github.com/noah-isme/planet-pizzaria/internal/receipt"
	"github.com/noah-isme/planet-pizzaria/internal/reports"
	"github.com/noah-isme/planet-pizzaria/internal/shell"
	"github.com/noah-isme/planet-pizzaria/internal/store"
)

// Options overrides process-level collaborators, mostly for tests.
type Options struct {
	In      io.Reader
	Out     io.Writer
	Logger  *zerolog.Logger
	Now     func() time.Time
	NoPause bool
	// Redis replaces the client built from REDIS_URL.
	Redis *redis.Client
}

// App holds the wired services of one session.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Registry  *prometheus.Registry
	Validator *validator.Validate
	Redis     *redis.Client
	Store     *store.Store
	Bus       *events.Bus
	Customers *customer.Service
	Products  *catalog.Service
	Orders    *order.Service
	Reports   *reports.Service
	Exporter  *export.Exporter
	Receipts  *receipt.Writer
	Shell     *shell.Shell

	ownsRedis bool
}

// New opens the store, seeds the default menu when it is empty and wires every service.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	registry := prometheus.NewRegistry()
	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, registry)

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Registry:  registry,
		Validator: common.Validator(),
		Redis:     opts.Redis,
	}
	if a.Redis == nil && cfg.CacheEnabled() {
		a.Redis = connectRedis(ctx, cfg.RedisURL, logger)
		a.ownsRedis = a.Redis != nil
	}

	storeOpts := store.Options{Logger: *obs.Component(logger, "store"), Now: now}
	if a.Redis != nil {
		storeOpts.Locker = &lock.Redis{Client: a.Redis, Logger: *obs.Component(logger, "lock")}
	}
	a.Store = store.Open(cfg.StorePath, storeOpts)
	a.Bus = &events.Bus{Now: now}

	a.Customers = &customer.Service{
		Repo:      a.Store,
		Store:     a.Store,
		Validator: a.Validator,
		Events:    a.Bus,
		Logger:    *obs.Component(logger, "customer"),
	}
	a.Products = &catalog.Service{
		Repo:      a.Store,
		Store:     a.Store,
		Validator: a.Validator,
		Events:    a.Bus,
		Logger:    *obs.Component(logger, "catalog"),
	}
	a.Orders = &order.Service{
		Repo:      a.Store,
		Store:     a.Store,
		Customers: a.Customers,
		Pricing: &pricing.Engine{
			Now:      now,
			Location: cfg.Location,
			Logger:   *obs.Component(logger, "pricing"),
		},
		Events: a.Bus,
		Now:    now,
		Logger: *obs.Component(logger, "order"),
	}

	var cache *reports.Cache
	if a.Redis != nil {
		cache = reports.NewCache(a.Redis, cfg.ReportCacheTTL)
	}
	a.Reports = &reports.Service{
		Orders:    a.Orders,
		Customers: a.Customers,
		Cache:     cache,
		Location:  cfg.Location,
		Logger:    *obs.Component(logger, "reports"),
		Scope:     storeScope(cfg.StorePath),
	}

	dir, desktop := export.ResolveDir(cfg.ExportDir)
	if !desktop {
		logger.Warn().Str("dir", dir).Msg("desktop folder not found, writing files to the working directory")
	}
	a.Exporter = &export.Exporter{
		Dir:      dir,
		Now:      now,
		Location: cfg.Location,
		Logger:   *obs.Component(logger, "export"),
	}
	a.Receipts = &receipt.Writer{
		Dir:       dir,
		Out:       out,
		Customers: a.Customers,
		Location:  cfg.Location,
		Logger:    *obs.Component(logger, "receipt"),
	}

	a.Bus.Subscribe(events.LogNotifier(*obs.Component(logger, "events")))
	a.Bus.Subscribe(order.MetricsNotifier())
	a.Bus.Subscribe(a.Receipts)

	if n, err := a.Products.SeedDefaults(ctx); err != nil {
		logger.Warn().Err(err).Msg("default menu not saved")
	} else if n > 0 {
		logger.Info().Int("products", n).Msg("default menu loaded")
	}

	a.Shell = shell.New(shell.Config{
		In:        in,
		Out:       out,
		Customers: a.Customers,
		Products:  a.Products,
		Orders:    a.Orders,
		Reports:   a.Reports,
		Exporter:  a.Exporter,
		Store:     a.Store,
		Location:  cfg.Location,
		Now:       now,
		NoPause:   opts.NoPause,
		Logger:    *obs.Component(logger, "shell"),
	})
	return a, nil
}

// Close saves the store, flushes the metrics textfile and releases Redis. Every step runs;
// failures are joined.
func (a *App) Close(ctx context.Context) error {
	var joined error
	if err := a.Store.Save(ctx); err != nil {
		joined = errors.Join(joined, err)
	}
	if err := obs.FlushTextfile(a.Config.MetricsTextfile, a.Registry); err != nil {
		joined = errors.Join(joined, err)
	}
	if a.ownsRedis {
		if err := a.Redis.Close(); err != nil {
			joined = errors.Join(joined, err)
		}
	}
	return joined
}

func storeScope(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func connectRedis(ctx context.Context, url string, logger zerolog.Logger) *redis.Client {
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn().Err(err).Msg("parse redis url, report cache disabled")
		return nil
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Msg("ping redis, report cache disabled")
		_ = client.Close()
		return nil
	}
	return client
}
