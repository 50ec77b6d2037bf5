package scheduler

import (
	"context"
	"fmt"

	"workmarket_sdr/internal/crm"
	"workmarket_sdr/platform/config"
	"workmarket_sdr/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	crm    crm.Pusher
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pusher crm.Pusher, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		crm:    pusher,
		log:    log,
	}

	mux.HandleFunc(TaskLeadSync, w.handleLeadSync)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleLeadSync(ctx context.Context, task *asynq.Task) error {
	card, err := ParseLeadSyncPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := w.crm.Push(ctx, card); err != nil {
		w.log.Warn("crm lead sync attempt failed", "sessionId", card.SessionID, "syncId", card.SyncID, "error", err)
		return err
	}
	return nil
}
