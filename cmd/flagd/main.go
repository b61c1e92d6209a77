// Command flagd serves feature flag decisions over HTTP from a flag file
// kept fresh in the background. The file may live on disk, in S3 or in Redis.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/featurekit/pkg/config"
	"github.com/dmitrymomot/featurekit/pkg/feature"
	"github.com/dmitrymomot/featurekit/pkg/featurehttp"
	"github.com/dmitrymomot/featurekit/pkg/flagconfig"
	"github.com/dmitrymomot/featurekit/pkg/httpserver"
	"github.com/dmitrymomot/featurekit/pkg/logger"
	"github.com/dmitrymomot/featurekit/pkg/reload"
	"github.com/dmitrymomot/featurekit/pkg/resource"
)

var errNotLoaded = errors.New("flag config not loaded yet")

func main() {
	if files := envFiles(os.Getenv(envFileVar)); len(files) > 0 {
		config.MustLoadEnv(files...)
	}

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "flagd"),
		logger.WithContextExtractors(requestIDExtractor),
	)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("flagd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := reload.NewMetrics(reg, "featurekit")
	if err != nil {
		return err
	}

	loader, closeSource, err := newLoader(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	reloader, err := reload.NewManual(loader, flagconfig.Empty(), cfg.Reload,
		reload.WithLogger(log),
		reload.WithName(cfg.Source),
		reload.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}
	reloader.Init()
	// load now rather than one interval after start
	reloader.Trigger()

	deciders := flagconfig.NewDeciders(flagconfig.WithRoot(cfg.Root), flagconfig.WithLogger(log))
	checker := feature.ForReloader(reloader, defaultDecider(deciders))

	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))
	router := newRouter(log, reg, checker, reloader)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx, router) })
	g.Go(func() error {
		<-ctx.Done()
		reloader.Shutdown()
		return nil
	})
	if cfg.Source == sourceFile && cfg.Watch {
		g.Go(func() error {
			return resource.WatchFile(ctx, cfg.File, reloader.Trigger, resource.WithWatchLogger(log))
		})
	}

	log.Info("flagd started",
		slog.String("source", cfg.Source),
		slog.Duration("reload_interval", cfg.Reload.ReloadInterval),
	)
	return g.Wait()
}

// defaultDecider enables a feature for listed users, for the configured
// share of users, or for everyone.
func defaultDecider(d *flagconfig.Deciders) feature.Decider[*flagconfig.Config] {
	return feature.AnyOf(
		d.EnabledUsers(),
		d.WhitelistedUsers(),
		d.ProportionOfUsers(),
		d.FeatureEnabled(),
	)
}

// newLoader returns the loader for the configured source and a func that
// releases its connections.
func newLoader(ctx context.Context, cfg appConfig) (reload.Loader[*flagconfig.Config], func(), error) {
	parse, err := cfg.reader()
	if err != nil {
		return nil, nil, err
	}

	var (
		raw     resource.Supplier[string]
		closeFn = func() {}
	)
	switch cfg.Source {
	case sourceFile:
		raw = resource.File(cfg.File)
	case sourceS3:
		loc, err := resource.ParseS3Location(cfg.S3URI)
		if err != nil {
			return nil, nil, err
		}
		client, err := resource.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		raw = resource.NewCachingS3Loader(client, loc).Supplier()
	case sourceRedis:
		client, err := resource.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		raw = resource.RedisLoader(client, cfg.Redis.Key)
		closeFn = func() { _ = client.Close() }
	}

	return resource.AsyncLoader(resource.AndThen(raw, parse)), closeFn, nil
}

func newRouter(
	log *slog.Logger,
	gatherer prometheus.Gatherer,
	checker feature.Checker,
	reloader *reload.Reloader[*flagconfig.Config],
) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/healthz", httpserver.Liveness())
	r.Get("/readyz", httpserver.Readiness(log, map[string]httpserver.Check{
		"flags": func(context.Context) error {
			if _, ok := reloader.LastSuccess(); !ok {
				return errNotLoaded
			}
			return nil
		},
	}))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Mount("/features", featurehttp.Handler(checker, featurehttp.WithLogger(log)))
	return r
}

func requestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id := middleware.GetReqID(ctx); id != "" {
		return slog.String("request_id", id), true
	}
	return slog.Attr{}, false
}
