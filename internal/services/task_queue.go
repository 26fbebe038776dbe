package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/volunteerhub/backend/internal/config"
	"github.com/volunteerhub/backend/pkg/logger"
)

const (
	TaskTypeEmail = "email:send"
	emailMaxRetry = 3
)

// EmailTask is an outbound email waiting for delivery.
type EmailTask struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// TaskQueue defines the interface for background email delivery
type TaskQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(task *EmailTask) error
	// IsAsync returns true if queue processes tasks asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// NewTaskQueue picks the Redis backed queue when Redis is enabled and
// reachable, otherwise an in-process queue.
func NewTaskQueue(cfg *config.Config) TaskQueue {
	if cfg.Redis.Enabled {
		queue, err := NewAsyncQueue(&cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("[TaskQueue] Redis unavailable, falling back to sync mode")
			return NewSyncQueue()
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("[TaskQueue] Async queue initialized with Redis")
		return queue
	}
	logger.Info().Msg("[TaskQueue] Sync queue initialized (Redis disabled)")
	return NewSyncQueue()
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

func redisClientOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewAsyncQueue creates a new Redis-based async queue
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := redisClientOpt(cfg)
	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async mode
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

func (q *AsyncQueue) Enqueue(task *EmailTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	info, err := q.client.Enqueue(asynq.NewTask(TaskTypeEmail, payload),
		asynq.Queue("default"),
		asynq.MaxRetry(emailMaxRetry),
	)
	if err != nil {
		return err
	}

	logger.Debug().Str("id", info.ID).Str("queue", info.Queue).Msg("[AsyncQueue] Task enqueued")
	return nil
}

func (q *AsyncQueue) IsAsync() bool {
	return true
}

func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue delivers in a goroutine of this process (no Redis). Failed
// deliveries are retried a few times with a growing delay, the way asynq
// would retry them.
type SyncQueue struct {
	processor  func(context.Context, *EmailTask) error
	maxRetry   int
	retryDelay time.Duration
	wg         sync.WaitGroup
}

func NewSyncQueue() *SyncQueue {
	return &SyncQueue{maxRetry: emailMaxRetry, retryDelay: 2 * time.Second}
}

// SetProcessor sets the function that delivers tasks
func (q *SyncQueue) SetProcessor(processor func(context.Context, *EmailTask) error) {
	q.processor = processor
}

// Enqueue hands the task to a goroutine so the request is never blocked by SMTP.
func (q *SyncQueue) Enqueue(task *EmailTask) error {
	if q.processor == nil {
		logger.Warn().Str("to", task.To).Msg("[SyncQueue] no processor set, task dropped")
		return nil
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.deliver(task)
	}()

	return nil
}

func (q *SyncQueue) deliver(task *EmailTask) {
	var err error
	for attempt := 0; attempt <= q.maxRetry; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * q.retryDelay)
		}
		if err = q.processor(context.Background(), task); err == nil {
			return
		}
		logger.Warn().Err(err).Str("to", task.To).Int("attempt", attempt+1).Msg("[SyncQueue] Task processing failed")
	}
	logger.Error().Err(err).Str("to", task.To).Str("subject", task.Subject).Msg("[SyncQueue] giving up on email")
}

func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close waits for in-flight deliveries.
func (q *SyncQueue) Close() error {
	q.wg.Wait()
	return nil
}
