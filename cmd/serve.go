package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mavmaso/ficherors/internal/db"
	httpSrv "github.com/mavmaso/ficherors/internal/http"
	"github.com/mavmaso/ficherors/internal/logger"
	"github.com/mavmaso/ficherors/internal/pipeline"
	"github.com/mavmaso/ficherors/internal/repository"
	"github.com/mavmaso/ficherors/internal/service/queue"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps := httpSrv.Deps{
			Pipeline: pipeline.New(nil, nil,
				pipeline.WithWorkers(cfg.Pipeline.Workers),
				pipeline.WithChunkSize(cfg.Pipeline.ChunkSize),
			),
		}

		// every backend is optional: without it the matching routes answer 503
		mysqlDB, err := db.NewMySQLConnection(cfg.MySQL)
		switch {
		case errors.Is(err, db.ErrNoDSN):
			logger.Log.Warn("mysql not configured, jobs disabled")
		case err != nil:
			return fmt.Errorf("mysql connect: %w", err)
		default:
			defer mysqlDB.Close()
			deps.Queue = queue.New(
				mysqlDB,
				repository.NewJobsRepository(mysqlDB),
				repository.NewOutboxRepository(mysqlDB),
				cfg.Kafka.Topic,
			)
		}

		redisClient, err := db.NewRedisClient(cfg.Redis)
		switch {
		case errors.Is(err, db.ErrNoDSN):
			logger.Log.Warn("redis not configured, rate limit disabled")
		case err != nil:
			return fmt.Errorf("redis connect: %w", err)
		default:
			defer func() { _ = redisClient.Close() }()
			deps.Redis = redisClient
		}

		chDB, err := db.NewClickHouseConnection(cfg.ClickHouse)
		switch {
		case errors.Is(err, db.ErrNoDSN):
			logger.Log.Warn("clickhouse not configured, reports disabled")
		case err != nil:
			return fmt.Errorf("clickhouse connect: %w", err)
		default:
			defer func() { _ = chDB.Close() }()
			deps.Reports = repository.NewCHJobsRepository(chDB)
		}

		server := httpSrv.NewServer(cfg, deps)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			logger.Log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Error("http server exited", zap.Error(err))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)

		return nil
	},
}
