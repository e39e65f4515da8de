package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcmexdev/grubdash/internal/config"
	"github.com/jcmexdev/grubdash/internal/dish"
	"github.com/jcmexdev/grubdash/internal/httpx"
	"github.com/jcmexdev/grubdash/internal/idgen"
	"github.com/jcmexdev/grubdash/internal/order"
	"github.com/jcmexdev/grubdash/internal/pipeline"
	"github.com/jcmexdev/grubdash/internal/pipeline/runlog/sqlite"
	"github.com/jcmexdev/grubdash/internal/pkg/telemetry"
	"github.com/jcmexdev/grubdash/internal/seed"
)

func main() {
	if err := run(); err != nil {
		slog.Error("grubdash stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	telemetry.InitLogger(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	dishIDs, orderIDs, closeIDs, err := allocators(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeIDs()

	var seedDishes []dish.Dish
	var seedOrders []order.Order
	if cfg.SeedData {
		if seedDishes, err = seed.Dishes(); err != nil {
			return err
		}
		if seedOrders, err = seed.Orders(); err != nil {
			return err
		}
	}

	dishStore, err := dish.NewStore(dishIDs, seedDishes...)
	if err != nil {
		return err
	}
	orderStore, err := order.NewStore(orderIDs, seedOrders...)
	if err != nil {
		return err
	}

	var opts []pipeline.Option
	if cfg.RunLogDBPath != "" {
		runLog, err := sqlite.Open(cfg.RunLogDBPath)
		if err != nil {
			return err
		}
		defer runLog.Close()
		opts = append(opts, pipeline.WithRunLog(runLog))
		slog.Info("pipeline run log enabled", "path", cfg.RunLogDBPath)
	}

	handler := httpx.NewHandler(
		dish.NewPipelines(dishStore, opts...),
		order.NewPipelines(orderStore, opts...),
	)
	router := httpx.NewRouter(handler, httpx.RouterOptions{AllowedOrigins: cfg.AllowedOrigins})

	slog.Info("grubdash running",
		"addr", cfg.HTTPAddr,
		"dishes", dishStore.Len(),
		"orders", orderStore.Len(),
	)
	return httpx.NewServer(cfg.HTTPAddr, router, cfg.ShutdownTimeout).Run(ctx)
}

// allocators picks Redis sequences when REDIS_ADDR is set and random UUIDs
// otherwise.
func allocators(ctx context.Context, cfg config.Config) (dishIDs, orderIDs idgen.Allocator, closeFn func(), err error) {
	if cfg.RedisAddr == "" {
		return idgen.NewUUID(), idgen.NewUUID(), func() {}, nil
	}
	client, err := idgen.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, nil, err
	}
	slog.Info("using redis id sequences", "addr", cfg.RedisAddr)
	return idgen.NewRedisSequence(client, idgen.Key(cfg.ServiceName, "dishes")),
		idgen.NewRedisSequence(client, idgen.Key(cfg.ServiceName, "orders")),
		func() { _ = client.Close() },
		nil
}
