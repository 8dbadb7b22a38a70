package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/tasksnap/backend/api/handler"
	"github.com/tasksnap/backend/internal/config"
	"github.com/tasksnap/backend/internal/infrastructure/monitor"
	"github.com/tasksnap/backend/internal/infrastructure/outbox"
	pgInfra "github.com/tasksnap/backend/internal/infrastructure/postgres"
	redisInfra "github.com/tasksnap/backend/internal/infrastructure/redis"
	"github.com/tasksnap/backend/internal/middleware"
	"github.com/tasksnap/backend/internal/router"
	"github.com/tasksnap/backend/internal/services"
	"github.com/tasksnap/backend/internal/services/lifecycle"
	"github.com/tasksnap/backend/pkg/httpcontext"
	"github.com/tasksnap/backend/pkg/logger"
	"github.com/tasksnap/backend/repository/postgres"
	redisRepo "github.com/tasksnap/backend/repository/redis"
	achievementUC "github.com/tasksnap/backend/usecase/achievement"
	authUC "github.com/tasksnap/backend/usecase/auth"
	"github.com/tasksnap/backend/usecase/board"
	focusUC "github.com/tasksnap/backend/usecase/focus"
	profileUC "github.com/tasksnap/backend/usecase/profile"
	spaceUC "github.com/tasksnap/backend/usecase/space"
	streakUC "github.com/tasksnap/backend/usecase/streak"
	tierUC "github.com/tasksnap/backend/usecase/tier"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	outboxStore, err := outbox.Open(cfg.Sync.OutboxPath, "outbox")
	if err != nil {
		zapLogger.Fatal("failed to open sync outbox", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	mon := monitor.New(pool, redisClient, outboxStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	achievementRepo := postgres.NewAchievementRepository(pool)
	spaceRepo := postgres.NewSpaceRepository(pool)
	focusRepo := postgres.NewFocusRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, 24*time.Hour)
	streakRepo := redisRepo.NewStreakRepository(redisClient)

	deviceID := cfg.Sync.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
		zapLogger.Info("generated device id", zap.String("device_id", deviceID))
	}

	publisher := services.NewSyncPublisher(redisClient, outboxStore, mon, zapLogger, services.PublisherConfig{
		Channel:    cfg.Sync.Channel,
		DeviceID:   deviceID,
		Interval:   cfg.Sync.Interval,
		BatchSize:  50,
		MaxRetries: cfg.Sync.MaxRetry,
		Retention:  cfg.Sync.Retention,
	})
	publisher.Start()
	manager.Register("sync_publisher", func(ctx context.Context) error {
		publisher.Stop(ctx)
		return nil
	})

	tracker := streakUC.New(streakRepo, zapLogger,
		streakUC.WithLocation(cfg.StreakLocation()))
	evaluator := achievementUC.New(achievementRepo, zapLogger)
	tierProvider := tierUC.New(userRepo, cfg.Tier.FreeLimit, cfg.Tier.ProLimit, zapLogger)
	focusUseCase := focusUC.New(focusRepo, cfg.Focus.DefaultMinutes, zapLogger)

	boardStore := board.New(taskRepo, tierProvider, tracker, evaluator, zapLogger,
		board.WithOutbox(publisher),
		board.WithFocusStats(focusUseCase),
		board.WithHooks(board.NewLogHooks(zapLogger)),
	)
	if err := boardStore.Load(appCtx); err != nil {
		zapLogger.Fatal("board load failed", zap.Error(err))
	}

	feed := services.NewSyncFeed(redisClient, boardStore, cfg.Sync.Channel, deviceID, zapLogger)
	feed.Start(appCtx)
	manager.Register("sync_feed", func(ctx context.Context) error {
		feed.Stop(ctx)
		return nil
	})

	authUseCase := authUC.New(userRepo, sessionRepo, cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	profileUseCase := profileUC.New(userRepo, zapLogger)
	spaceUseCase := spaceUC.New(spaceRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:        apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, time.Hour),
		Profile:     apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:        apiHandler.NewTaskHandler(boardStore, ctxAdapter, zapLogger),
		Streak:      apiHandler.NewStreakHandler(tracker, ctxAdapter, zapLogger),
		Achievement: apiHandler.NewAchievementHandler(evaluator, boardStore, tracker, ctxAdapter, zapLogger),
		Space:       apiHandler.NewSpaceHandler(spaceUseCase, ctxAdapter, zapLogger),
		Focus:       apiHandler.NewFocusHandler(focusUseCase, ctxAdapter, zapLogger),
		Health:      apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
