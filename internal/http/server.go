package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/bytes"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mavmaso/ficherors/internal/config"
	"github.com/mavmaso/ficherors/internal/http/middleware"
	"github.com/mavmaso/ficherors/internal/logger"
	"github.com/mavmaso/ficherors/internal/metrics"
	"github.com/mavmaso/ficherors/internal/pipeline"
	"github.com/mavmaso/ficherors/internal/repository"
)

// Deps are the optional backends of the API. A nil Queue or Reports answers
// the matching routes with 503; a nil Redis disables rate limiting.
type Deps struct {
	Pipeline *pipeline.Transformer
	Queue    JobQueue
	Reports  repository.CHJobsRepository
	Redis    *redis.Client
}

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, deps Deps) *Server {
	if deps.Pipeline == nil {
		deps.Pipeline = pipeline.New(nil, nil)
	}

	// echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(logLevel(cfg.Log.Level))
	log.SetLevel(logLevel(cfg.Log.Level))
	e.Use(
		echoMid.Recover(),
		echoMid.Logger(),
		echoMid.BodyLimit(bytes.Format(cfg.HTTP.MaxBodyBytes)),
	)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	authMW := middleware.APIKeyMiddleware(cfg.HTTP.APIKeys)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          deps.Redis,
		RPS:            cfg.RateLimit.RPS,
		KeyPrefix:      "rl:client:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	country := cfg.Pipeline.DefaultCountry

	// routes
	v1 := e.Group("/v1", authMW, rlMW)
	v1.POST("/lists/process", processListHandler(deps.Pipeline, country))
	v1.POST("/lists/verify", verifyListHandler())
	v1.POST("/lists/read", readListHandler())
	v1.GET("/countries", countriesHandler(deps.Pipeline))
	v1.POST("/jobs", createJobHandler(deps.Queue, country))
	v1.GET("/jobs/:id", getJobHandler(deps.Queue))
	v1.GET("/reports/jobs", listJobsReportHandler(deps.Reports))

	return &Server{e: e}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Start(addr string) error {
	logger.Log.Info("http: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

func logLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}
