package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mavmaso/ficherors/internal/config"
	"github.com/mavmaso/ficherors/internal/db"
	"github.com/mavmaso/ficherors/internal/kafka"
	"github.com/mavmaso/ficherors/internal/logger"
	"github.com/mavmaso/ficherors/internal/metrics"
	"github.com/mavmaso/ficherors/internal/pipeline"
	"github.com/mavmaso/ficherors/internal/repository"
	"github.com/mavmaso/ficherors/internal/worker"
)

var metricsAddr string

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Run the list processing worker (Kafka → pipeline → MySQL)",
	RunE:  runJobs,
}

func init() {
	jobsCmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9102", "address for /metrics (empty disables)")
}

func runJobs(cmd *cobra.Command, args []string) error {
	// 1) load config
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	// 2) DB connection (MySQL)
	dbx, err := db.NewMySQLConnection(cfg.MySQL)
	if err != nil {
		return fmt.Errorf("mysql connect: %w", err)
	}
	defer dbx.Close()

	// 3) job history (ClickHouse), optional
	var stats repository.CHJobsRepository
	chDB, err := db.NewClickHouseConnection(cfg.ClickHouse)
	switch {
	case errors.Is(err, db.ErrNoDSN):
		logger.Log.Warn("clickhouse not configured, job history disabled")
	case err != nil:
		return fmt.Errorf("clickhouse connect: %w", err)
	default:
		defer chDB.Close()
		stats = repository.NewCHJobsRepository(chDB)
	}

	// 4) kafka consumer
	consumer := kafka.NewConsumer(cfg.Kafka)
	defer consumer.Close()

	p := pipeline.New(nil, nil,
		pipeline.WithWorkers(cfg.Pipeline.Workers),
		pipeline.WithChunkSize(cfg.Pipeline.ChunkSize),
	)

	w := worker.NewJobsKafka(consumer, repository.NewJobsRepository(dbx), stats, p)
	w.Workers = cfg.Worker.Count
	w.JobTimeout = cfg.Worker.JobTimeout

	// 5) graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Warn("metrics server exited", zap.Error(err))
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	logger.Log.Info("jobs worker started",
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group", cfg.Kafka.GroupID),
		zap.Int("workers", w.Workers),
		zap.Duration("job_timeout", w.JobTimeout),
	)

	return w.Run(ctx)
}
