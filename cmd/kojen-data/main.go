package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"kojen-data/internal/config"
	"kojen-data/internal/domain"
	"kojen-data/internal/httpapi"
	"kojen-data/internal/logger"
	"kojen-data/internal/service"
	"kojen-data/internal/sheets"
	"kojen-data/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "kojen-data")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Redis is the shared record cache. When it is disabled or unreachable the
	// service degrades to an in-process cache rather than refusing to start.
	var kv store.KV
	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("redis unreachable, using in-process cache", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
			kv = store.NewMemoryKV()
		} else {
			kv = store.NewRedisKV(redisClient)
		}
	} else {
		kv = store.NewMemoryKV()
	}

	client := sheets.NewClient(cfg.Sheets.URLs, cfg.Sheets.Timeout, log)

	services := make(map[domain.Kind]httpapi.RecordOps, len(domain.AllKinds))
	var configured []domain.Kind
	for _, kind := range domain.AllKinds {
		services[kind] = service.NewRecordService(kind, client, kv, cfg.Window, cfg.BatchDelay, log)
		if cfg.Sheets.URLs[kind] != "" {
			configured = append(configured, kind)
		}
	}

	router := httpapi.NewRouter(log)
	router.RegisterRecordRoutes(httpapi.NewRecordHandler(services, log))
	router.RegisterReportRoutes(httpapi.NewReportHandler(services, log))
	router.RegisterHealthRoutes(httpapi.NewHealthHandler(client, configured, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
