package bootstrap

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	bookingsvc "buffr-host/internal/application/booking"
	"buffr-host/internal/config"
	"buffr-host/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// New creates the Fiber app for serverless hosts (the api handler imports this package, not internal).
// The underlying connections live for the lifetime of the process.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	a, err := router.CreateApp(cfg)
	if err != nil {
		return nil, err
	}
	return a.Fiber, nil
}

// Serve runs the HTTP API and the booking hold sweeper until ctx is done or
// the process receives SIGINT or SIGTERM, then shuts both down.
func Serve(ctx context.Context, cfg *config.Config) error {
	a, err := router.CreateApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("close resources")
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		return a.Fiber.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		sweeper := &bookingsvc.Sweeper{Service: a.Bookings, Interval: cfg.SweepInterval}
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return a.Fiber.ShutdownWithContext(sctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
