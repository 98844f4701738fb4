package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/minu803/redis-chatbot/internal/agent"
	"github.com/minu803/redis-chatbot/internal/api"
	"github.com/minu803/redis-chatbot/internal/api/middleware"
	"github.com/minu803/redis-chatbot/internal/config"
	"github.com/minu803/redis-chatbot/internal/logging"
	"github.com/minu803/redis-chatbot/internal/scheduler"
	"github.com/minu803/redis-chatbot/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New(false, "info")
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := logging.New(cfg.IsDevelopment(), cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL, cfg.PollTimeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisStore.Close()
	logger.Info().Msg("connected to Redis")

	bot := agent.New(redisStore, logger, agent.Options{HistoryLimit: cfg.HistoryLimit})

	if cfg.SeedOnStart {
		if err := bot.Content.SeedDefaults(ctx); err != nil {
			logger.Fatal().Err(err).Msg("seeding failed")
		}
	}

	sched, err := scheduler.New(logger.With().Str("component", "scheduler").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler setup failed")
	}
	if err := sched.ScheduleWeatherReseed(ctx, bot.Content, cfg.WeatherReseedCron); err != nil {
		logger.Fatal().Err(err).Msg("invalid WEATHER_RESEED_CRON")
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRequests > 0 {
		limiter = middleware.NewRateLimiter(redisStore.Client(), logger, middleware.RateLimit{
			Requests: cfg.RateLimitRequests,
			Window:   cfg.RateLimitWindow,
		})
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(logger, bot, limiter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting chatbot server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sched.Start()
		<-gctx.Done()

		logger.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return errors.Join(srv.Shutdown(shutdownCtx), sched.Stop())
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}

	logger.Info().Msg("server stopped")
}
