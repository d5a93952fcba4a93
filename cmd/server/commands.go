package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/club-booking/internal/config"
	"github.com/iliyamo/club-booking/internal/handler"
	"github.com/iliyamo/club-booking/internal/metrics"
	"github.com/iliyamo/club-booking/internal/middleware"
	"github.com/iliyamo/club-booking/internal/queue"
	"github.com/iliyamo/club-booking/internal/report"
	"github.com/iliyamo/club-booking/internal/repository"
	"github.com/iliyamo/club-booking/internal/router"
	"github.com/iliyamo/club-booking/internal/service"
	"github.com/iliyamo/club-booking/internal/view"
)

// setup loads the configuration and installs the JSON logger as default.
func setup(c *cli.Context) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func storeOptions(cfg config.Config) repository.StoreOptions {
	return repository.StoreOptions{
		Driver:           cfg.StoreDriver,
		ClubsPath:        cfg.ClubsPath,
		CompetitionsPath: cfg.CompetitionsPath,
		BoltPath:         cfg.BoltPath,
		MySQL:            cfg.DB.Options(),
	}
}

func openRepository(ctx context.Context, cfg config.Config) (*repository.Repository, error) {
	store, err := repository.OpenStore(ctx, storeOptions(cfg))
	if err != nil {
		return nil, err
	}
	repo, err := repository.New(ctx, store)
	if err != nil {
		store.Close()
		return nil, err
	}
	return repo, nil
}

func serveAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	var publisher service.Publisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		publisher = service.NewAMQPPublisher(cfg.AMQPURL)
	}
	bookingMetrics := metrics.NewBooking()
	limits := service.Limits{PerBooking: cfg.PerBookingCap, ClubTotal: cfg.ClubTotalCap}
	svc := service.NewBookingService(repo, limits, publisher, bookingMetrics, logger)

	rdb := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	} else {
		logger.Info("redis unavailable, points cache off and rate limiting in-process")
	}
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, logger)
	flash := middleware.NewFlasher(cfg.SessionSecret, logger)
	renderer, err := view.New()
	if err != nil {
		return err
	}

	e := router.New(router.Deps{
		Booking:   handler.NewBookingHandler(svc, flash, cache, logger),
		Flash:     flash,
		Cache:     cache,
		RateLimit: middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb, logger),
		Metrics:   bookingMetrics.Handler(),
		Renderer:  renderer,
		Logger:    logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Info("listening", "addr", addr, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	if cfg.EventsEnabled && cfg.ConsumerEnabled {
		consumer := &queue.Consumer{URL: cfg.AMQPURL, LogPath: cfg.BookingLogPath, Logger: logger}
		g.Go(func() error { return ignoreCanceled(consumer.Run(gctx)) })
	}
	return g.Wait()
}

func consumeAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := &queue.Consumer{URL: cfg.AMQPURL, LogPath: cfg.BookingLogPath, Logger: logger}
	logger.Info("consuming booking events", "queue", queue.BookingQueueName, "log", cfg.BookingLogPath)
	return ignoreCanceled(consumer.Run(ctx))
}

func pointsAction(c *cli.Context) error {
	cfg, _, err := setup(c)
	if err != nil {
		return err
	}
	repo, err := openRepository(c.Context, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(service.ListPoints(repo.Clubs()))
}

func exportAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	repo, err := openRepository(c.Context, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	out := c.String("out")
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := report.Write(f, repo.Snapshot()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("workbook written", "path", out)
	return nil
}

// seedAction copies clubs.json and competitions.json into the bolt or mysql
// store so a deployment can switch drivers without retyping data.
func seedAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if driver == "" || driver == repository.DriverFile {
		return fmt.Errorf("seed needs STORE_DRIVER=%s or %s", repository.DriverBolt, repository.DriverMySQL)
	}

	src := repository.NewFileStore(cfg.ClubsPath, cfg.CompetitionsPath)
	snap, err := src.Load(c.Context)
	if err != nil {
		return fmt.Errorf("load json documents: %w", err)
	}
	dst, err := repository.OpenStore(c.Context, storeOptions(cfg))
	if err != nil {
		return err
	}
	defer dst.Close()
	if err := dst.Save(c.Context, snap); err != nil {
		return fmt.Errorf("seed %s store: %w", driver, err)
	}
	logger.Info("store seeded", "driver", driver, "clubs", len(snap.Clubs), "competitions", len(snap.Competitions))
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
