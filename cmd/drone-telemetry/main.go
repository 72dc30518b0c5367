package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drone-telemetry/internal/config"
	"drone-telemetry/internal/feed"
	"drone-telemetry/internal/httpapi"
	"drone-telemetry/internal/hub"
	"drone-telemetry/internal/ingest"
	"drone-telemetry/internal/logger"
	"drone-telemetry/internal/rating"
	"drone-telemetry/internal/service"
	"drone-telemetry/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.Load()

	// 2. 初始化日志
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "drone-telemetry")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. 核心组件（单实例，显式传递，不使用全局状态）
	telemetryStore := store.NewTelemetryStore(cfg.Telemetry.StoreCapacity)
	alertLog := store.NewAlertLog(cfg.Telemetry.AlertCapacity)
	broadcastHub := hub.NewHub(log)
	monitor := ingest.NewInclinationMonitor(cfg.Monitor.MaxInclination, alertLog, broadcastHub, log)
	relay := service.NewRelay(telemetryStore, alertLog, broadcastHub, monitor, log)

	// 4. 外部数据源（配置了 Redis 地址时启用外部轮询模式）
	var redisClient *redis.Client
	var external feed.Source
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		// 外部缓存不可用属于非致命情况：记录后继续，轮询时按 tick 重试
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("External cache unreachable at startup, polling will retry", zap.Error(err))
		}
		pingCancel()

		external = feed.NewRedisSource(store.NewRedisKV(redisClient), cfg.Feed.LiveKey)
		log.Info("External feed configured",
			zap.String("redis_addr", cfg.Redis.Addr),
			zap.String("live_key", cfg.Feed.LiveKey),
		)
	}

	controller := feed.NewController(
		feed.NewSimulator(),
		external,
		cfg.Feed.SimInterval,
		cfg.Feed.PollInterval,
		relay,
		log,
	)

	// 5. HTTP 路由
	ratingClient := rating.NewClient(cfg.Rating.BaseURL, cfg.Rating.Timeout, log)

	router := httpapi.NewRouter(log)
	router.RegisterTelemetryRoutes(httpapi.NewTelemetryHandler(relay, log))
	router.RegisterAlertRoutes(httpapi.NewAlertHandler(relay, log))
	router.RegisterFeedRoutes(httpapi.NewFeedHandler(controller, log))
	router.RegisterRatingRoutes(httpapi.NewRatingHandler(ratingClient, log))
	router.RegisterWSRoute(httpapi.NewWSHandler(broadcastHub, log))
	router.RegisterStatusRoute(relay, controller)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	// 6. 启动服务
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// 7. 等待信号（优雅关闭）
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("HTTP server error", zap.Error(err))
	}

	// 8. 按依赖顺序收尾：停 feed → 关推送连接 → 关 HTTP → 关 Redis
	if controller.Running() {
		_ = controller.Stop()
	}
	broadcastHub.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop HTTP server", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close redis", zap.Error(err))
		}
	}

	log.Info("Telemetry relay stopped")
}
