package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/internal/infrastructure/outbox"
	"github.com/tasksnap/backend/usecase"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// SyncMessage is the envelope published on the replication feed. Origin is
// the publishing device; subscribers skip their own messages.
type SyncMessage struct {
	Origin    string      `json:"origin"`
	Operation string      `json:"operation"`
	Task      domain.Task `json:"task"`
}

// PublisherConfig controls how the outbox drains onto the feed.
type PublisherConfig struct {
	Channel    string
	DeviceID   string
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// SyncPublisher pushes committed local mutations onto the replication feed.
// While the feed is unreachable, mutations wait in the Bolt outbox and a
// cron job retries them, so no local edit is ever silently dropped.
type SyncPublisher struct {
	client  *redislib.Client
	store   *outbox.Store
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     PublisherConfig
}

func NewSyncPublisher(
	client *redislib.Client,
	store *outbox.Store,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg PublisherConfig,
) *SyncPublisher {
	if cfg.Channel == "" {
		cfg.Channel = "tasksnap:feed"
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sp := &SyncPublisher{
		client:  client,
		store:   store,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = sp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := sp.Drain(ctx); err != nil {
			sp.logger.Error("outbox drain failed", zap.Error(err))
		}
	})

	if cfg.Retention > 0 {
		_, _ = sp.cron.AddFunc("@every 1h0m0s", func() {
			if err := sp.store.Cleanup(time.Now().Add(-cfg.Retention)); err != nil {
				sp.logger.Warn("outbox cleanup failed", zap.Error(err))
			}
		})
	}

	return sp
}

// Start launches the cron scheduler.
func (sp *SyncPublisher) Start() {
	if sp == nil || sp.cron == nil {
		return
	}
	sp.cron.Start()
	sp.logger.Info("sync publisher started", zap.String("channel", sp.cfg.Channel))
}

// Stop gracefully stops the scheduler.
func (sp *SyncPublisher) Stop(ctx context.Context) {
	if sp == nil || sp.cron == nil {
		return
	}
	stopCtx := sp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	sp.logger.Info("sync publisher stopped")
}

// QueueTask implements usecase.SyncOutbox: publish immediately when online,
// fall back to the persistent outbox otherwise.
func (sp *SyncPublisher) QueueTask(ctx context.Context, operation string, task *domain.Task) error {
	if sp == nil || task == nil {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	item := outbox.Item{
		ID:        task.ID + ":" + operation,
		UserID:    task.UserID,
		Operation: operation,
		Task:      payload,
	}

	if sp.monitor == nil || sp.monitor.IsOnline() {
		if err := sp.publishItem(ctx, item); err == nil {
			return nil
		} else {
			sp.logger.Warn("immediate publish failed, queueing", zap.Error(err))
		}
	}
	return sp.store.Enqueue(item)
}

// Drain publishes pending outbox items in replay order.
func (sp *SyncPublisher) Drain(ctx context.Context) error {
	if sp == nil || sp.store == nil {
		return nil
	}
	if sp.monitor != nil && !sp.monitor.IsOnline() {
		sp.logger.Debug("skipping outbox drain (offline)")
		return nil
	}

	items, err := sp.store.GetBatch(sp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := sp.publishItem(ctx, item); err != nil {
			sp.logger.Error("failed to publish outbox item",
				zap.String("item_id", item.ID),
				zap.String("operation", item.Operation),
				zap.Error(err))

			item.Retries++
			if item.Retries >= sp.cfg.MaxRetries {
				sp.logger.Warn("dropping outbox item (max retries reached)", zap.String("item_id", item.ID))
				_ = sp.store.Remove(item)
				continue
			}

			if err := sp.store.Remove(item); err != nil {
				sp.logger.Warn("failed to remove outbox item", zap.Error(err))
			}
			if err := sp.store.Requeue(item); err != nil {
				sp.logger.Error("failed to requeue outbox item", zap.Error(err))
			}
			continue
		}

		if err := sp.store.Remove(item); err != nil {
			sp.logger.Warn("failed to purge published outbox item", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of pending outbox items.
func (sp *SyncPublisher) Size() int {
	if sp == nil || sp.store == nil {
		return 0
	}
	size, err := sp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (sp *SyncPublisher) publishItem(ctx context.Context, item outbox.Item) error {
	if sp.client == nil {
		return fmt.Errorf("sync feed not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var task domain.Task
	if err := json.Unmarshal(item.Task, &task); err != nil {
		return err
	}

	msg := SyncMessage{
		Origin:    sp.cfg.DeviceID,
		Operation: item.Operation,
		Task:      task,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return sp.client.Publish(ctx, sp.cfg.Channel, payload).Err()
}

var _ usecase.SyncOutbox = (*SyncPublisher)(nil)
