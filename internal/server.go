package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fitquest/internal/config"
	"github.com/2beens/fitquest/internal/events"
	"github.com/2beens/fitquest/internal/maintenance"
	"github.com/2beens/fitquest/internal/mcp"
	"github.com/2beens/fitquest/internal/middleware"
	"github.com/2beens/fitquest/internal/misc"
	"github.com/2beens/fitquest/internal/telemetry/metrics"
	"github.com/2beens/fitquest/internal/telemetry/tracing"
	"github.com/2beens/fitquest/internal/workout"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

const eventsWriteTimeout = 5 * time.Second

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	apiToken          string
	mcpSecret         string
	versionInfo       string

	config    *config.Config
	storage   *Storage
	publisher events.Publisher
	service   *workout.Service
	scheduler *maintenance.Scheduler

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	APIToken                string
	MCPSecret               string
	VersionInfo             string
	RedisPassword           string
	DBPassword              string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fitquest")
	if err != nil {
		return nil, err
	}

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("fitquest", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	storage, err := NewStorage(ctx, StorageParams{
		Config:         cfg,
		RedisPassword:  params.RedisPassword,
		DBPassword:     params.DBPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
		MetricsManager: metricsManager,
	})
	if err != nil {
		otelShutdown()
		return nil, fmt.Errorf("new storage: %w", err)
	}

	if storage.DBPool != nil {
		promRegistry.MustRegister(pgxpoolprometheus.NewCollector(
			storage.DBPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
	}

	var publisher events.Publisher
	if cfg.KafkaEnabled {
		publisher = events.NewKafkaPublisher(events.KafkaPublisherParams{
			Brokers:        cfg.KafkaBrokers,
			Topic:          cfg.KafkaTopic,
			WriteTimeout:   eventsWriteTimeout,
			MetricsManager: metricsManager,
		})
		log.Infof("publishing workout events to kafka topic [%s]", cfg.KafkaTopic)
	} else {
		publisher = events.NewLogPublisher()
	}

	service := NewWorkoutService(cfg, storage.Store, publisher, metricsManager)

	scheduler, err := maintenance.NewScheduler(cfg.MaintenanceSchedule, storage.Store, maintenance.DefaultRunTimeout)
	if err != nil {
		otelShutdown()
		_ = storage.Close()
		return nil, fmt.Errorf("new maintenance scheduler: %w", err)
	}

	return &Server{
		config:      cfg,
		apiToken:    params.APIToken,
		mcpSecret:   params.MCPSecret,
		versionInfo: params.VersionInfo,

		storage:   storage,
		publisher: publisher,
		service:   service,
		scheduler: scheduler,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	miscHandler := misc.NewHandler(s.versionInfo, s.storage.HealthCheck)
	miscHandler.SetupRoutes(r)

	var regenerateMiddleware []mux.MiddlewareFunc
	if s.storage.RedisClient != nil {
		reqRateLimiter := redis_rate.NewLimiter(s.storage.RedisClient)
		regenerateMiddleware = append(regenerateMiddleware, middleware.RateLimit(
			reqRateLimiter,
			"regenerate",
			s.config.RegenerateRateLimitPerMin,
			s.metricsManager,
		))
	} else {
		log.Debugf("no redis client, plan regeneration is not rate limited")
	}

	workoutHandler := workout.NewHandler(s.service)
	workoutHandler.RegisterRoutes(r, regenerateMiddleware...)

	if s.config.MCPEnabled {
		mcpServer := mcp.NewServer(s.service, s.versionInfo)
		r.PathPrefix("/mcp").Handler(mcp.NewHTTPHandler(mcpServer)).Name("mcp")
		log.Infof("mcp endpoint enabled at /mcp")
	}

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.apiToken, s.mcpSecret)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	// first prune right away, then on schedule
	go func() {
		if _, err := s.scheduler.RunOnce(ctx); err != nil {
			log.Errorf("initial maintenance run: %s", err)
		}
	}()
	s.scheduler.Start()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)
	s.scheduler.Stop()

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	if err := s.publisher.Close(); err != nil {
		log.Errorf("failed to close events publisher: %s", err)
	}

	if err := s.storage.Close(); err != nil {
		log.Errorf("failed to close storage: %s", err)
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}
