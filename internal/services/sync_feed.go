package services

import (
	"context"
	"encoding/json"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tasksnap/backend/domain"
	"github.com/tasksnap/backend/usecase"
)

// RemoteApplier is the board-side contract the feed delivers into.
type RemoteApplier interface {
	ApplyRemote(ctx context.Context, incoming []domain.Task) int
	RemoveRemote(ctx context.Context, taskID string) bool
}

// SyncFeed subscribes to the replication channel and applies changes from
// the user's other devices through the board's last-writer-wins merge.
type SyncFeed struct {
	client   *redislib.Client
	board    RemoteApplier
	channel  string
	deviceID string
	logger   *zap.Logger

	pubsub *redislib.PubSub
	done   chan struct{}
}

func NewSyncFeed(client *redislib.Client, board RemoteApplier, channel, deviceID string, logger *zap.Logger) *SyncFeed {
	if channel == "" {
		channel = "tasksnap:feed"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncFeed{
		client:   client,
		board:    board,
		channel:  channel,
		deviceID: deviceID,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start opens the subscription and consumes it until Stop is called.
func (sf *SyncFeed) Start(ctx context.Context) {
	if sf == nil || sf.client == nil || sf.board == nil {
		return
	}
	sf.pubsub = sf.client.Subscribe(ctx, sf.channel)
	go sf.loop(ctx)
	sf.logger.Info("sync feed started", zap.String("channel", sf.channel))
}

// Stop closes the subscription and waits for the consumer to exit.
func (sf *SyncFeed) Stop(ctx context.Context) {
	if sf == nil || sf.pubsub == nil {
		return
	}
	_ = sf.pubsub.Close()
	select {
	case <-sf.done:
	case <-ctx.Done():
	}
	sf.logger.Info("sync feed stopped")
}

func (sf *SyncFeed) loop(ctx context.Context) {
	defer close(sf.done)
	for msg := range sf.pubsub.Channel() {
		sf.handle(ctx, []byte(msg.Payload))
	}
}

func (sf *SyncFeed) handle(ctx context.Context, payload []byte) {
	var msg SyncMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		sf.logger.Warn("malformed sync message", zap.Error(err))
		return
	}
	if msg.Origin != "" && msg.Origin == sf.deviceID {
		// Our own echo.
		return
	}

	switch msg.Operation {
	case usecase.OperationDelete:
		sf.board.RemoveRemote(ctx, msg.Task.ID)
	default:
		sf.board.ApplyRemote(ctx, []domain.Task{msg.Task})
	}
}
