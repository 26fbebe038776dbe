package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/volunteerhub/backend/internal/config"
	"github.com/volunteerhub/backend/pkg/logger"
)

// Worker consumes email tasks from Redis
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor func(context.Context, *EmailTask) error
	running   bool
	mu        sync.Mutex
}

// NewWorker returns nil when Redis is disabled.
func NewWorker(cfg *config.RedisConfig) *Worker {
	if !cfg.Enabled {
		return nil
	}

	server := asynq.NewServer(
		redisClientOpt(cfg),
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Warn().Err(err).Str("type", task.Type()).Msg("[Worker] Error processing task")
			}),
		},
	)

	return &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
	}
}

func (w *Worker) SetProcessor(processor func(context.Context, *EmailTask) error) {
	w.processor = processor
}

func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.mux.HandleFunc(TaskTypeEmail, w.handleEmailTask)

	// Start returns immediately; signals are handled by the HTTP server's
	// shutdown path which calls Stop.
	logger.Info().Msg("[Worker] Starting async worker")
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	w.running = true
	return nil
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	logger.Info().Msg("[Worker] Shutting down")
	w.server.Shutdown()
	w.running = false
}

func (w *Worker) handleEmailTask(ctx context.Context, t *asynq.Task) error {
	var task EmailTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		// A malformed payload will never succeed, do not retry it.
		return asynq.SkipRetry
	}

	if w.processor == nil {
		logger.Warn().Msg("[Worker] no processor set")
		return nil
	}

	return w.processor(ctx, &task)
}
