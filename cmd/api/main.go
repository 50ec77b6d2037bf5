package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workmarket_sdr/internal/adapters"
	"workmarket_sdr/internal/conversation"
	"workmarket_sdr/internal/crm"
	"workmarket_sdr/internal/email"
	"workmarket_sdr/internal/events"
	apphttp "workmarket_sdr/internal/http"
	"workmarket_sdr/internal/http/router"
	"workmarket_sdr/internal/notification"
	"workmarket_sdr/internal/scheduler"
	"workmarket_sdr/platform/config"
	"workmarket_sdr/platform/logger"
	"workmarket_sdr/platform/validator"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "llmProvider", cfg.LLMProvider, "llmModel", cfg.LLMModel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	completion, err := adapters.NewCompletionClient(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize completion client", "error", err)
		panic("failed to initialize completion client: " + err.Error())
	}

	leadSyncQueue, closeQueue := initLeadSyncQueue(ctx, cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	// ========================================================================
	// Domain Modules
	// ========================================================================

	conversationModule := conversation.NewModule(completion, eventBus, val, cfg, log)

	// Side channels subscribe to conversation events; a failure there never
	// reaches the chat response.
	crmService := crm.NewService(crm.NewClient(cfg, log), leadSyncQueue, log)
	crmService.RegisterHandlers(eventBus)

	notification.New(email.NewSender(cfg), log).RegisterHandlers(eventBus)

	sessionCleanup := scheduler.NewSessionCleanup(conversationModule.Store(), log, cfg.GetSessionSweepInterval(), cfg.GetSessionTTL())

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Sessions: conversationModule,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			conversationModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		sessionCleanup.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}

	eventBus.Wait()
	crmService.Wait()
	log.Info("server stopped")
}

// initLeadSyncQueue returns the asynq client used for CRM deliveries, or nil
// when Redis is not configured or unreachable.
func initLeadSyncQueue(ctx context.Context, cfg config.SchedulerConfig, log *logger.Logger) (crm.Enqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; CRM sync runs in-process without retries")
		return nil, nil
	}

	if err := withRetry(ctx, log, "redis connection", 3, time.Second, func() error {
		return scheduler.Ping(ctx, cfg)
	}); err != nil {
		log.Error("redis unreachable; CRM sync runs in-process without retries", "error", err)
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize lead sync queue", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
