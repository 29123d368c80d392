package main

import (
	"context"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/NeuralTrust/LearnGate/pkg/config"
	"github.com/NeuralTrust/LearnGate/pkg/domain/security_event"
	domainTelemetry "github.com/NeuralTrust/LearnGate/pkg/domain/telemetry"
	handlers "github.com/NeuralTrust/LearnGate/pkg/handlers/http"
	"github.com/NeuralTrust/LearnGate/pkg/infra/auth/jwt"
	"github.com/NeuralTrust/LearnGate/pkg/infra/cache"
	"github.com/NeuralTrust/LearnGate/pkg/infra/database"
	"github.com/NeuralTrust/LearnGate/pkg/infra/httpx"
	infraLogger "github.com/NeuralTrust/LearnGate/pkg/infra/logger"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics"
	_ "github.com/NeuralTrust/LearnGate/pkg/infra/migrations"
	"github.com/NeuralTrust/LearnGate/pkg/infra/prometheus"
	"github.com/NeuralTrust/LearnGate/pkg/infra/ratelimit"
	"github.com/NeuralTrust/LearnGate/pkg/infra/repository"
	"github.com/NeuralTrust/LearnGate/pkg/infra/telemetry"
	"github.com/NeuralTrust/LearnGate/pkg/infra/telemetry/kafka"
	"github.com/NeuralTrust/LearnGate/pkg/infra/telemetry/postgres"
	redisExporter "github.com/NeuralTrust/LearnGate/pkg/infra/telemetry/redis"
	"github.com/NeuralTrust/LearnGate/pkg/middleware"
	"github.com/NeuralTrust/LearnGate/pkg/pipeline"
	"github.com/NeuralTrust/LearnGate/pkg/policy"
	"github.com/NeuralTrust/LearnGate/pkg/server"
	"github.com/NeuralTrust/LearnGate/pkg/server/router"
	"github.com/NeuralTrust/LearnGate/pkg/version"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	serverTypeAll   = "all"
	serverTypeProxy = "proxy"
	serverTypeAdmin = "admin"
)

// @title LearnGate Admin API
// @version 0.1.0
// @description Security events and policy of the LearnGate sanitization gateway.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	cfg, err := config.Load("../../config")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	serverType := getServerType(cfg)

	logger, logCloser, err := infraLogger.NewLogger(infraLogger.Options{
		ServerType: serverType,
		Level:      cfg.Logging.Level,
		Dir:        cfg.Logging.Dir,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logCloser.Close()

	logger.WithFields(logrus.Fields{
		"version": version.Version,
		"server":  serverType,
	}).Info("starting " + version.AppName)

	pol, err := cfg.BuildPolicy()
	if err != nil {
		logger.Fatalf("failed to build security policy: %v", err)
	}
	prometheus.Initialize()

	// storage
	var eventRepo security_event.Repository = repository.NewDisabledRepository()
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.NewDB(logger, &database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,

			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			logger.Fatalf("failed to initialize database: %v", err)
		}
		defer db.Close()
		eventRepo = repository.NewSecurityEventRepository(db.DB)
	}

	var redisClient cache.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewClient(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			logger.Fatalf("failed to initialize redis: %v", err)
		}
		defer redisClient.Close()
	}

	// telemetry
	exporters, err := buildExporters(cfg.Telemetry.Exporters, db, eventRepo, redisClient)
	if err != nil {
		logger.Fatalf("failed to configure exporters: %v", err)
	}
	worker := metrics.NewWorker(logger, exporters, metrics.WorkerOptions{
		QueueSize:   cfg.Metrics.QueueSize,
		StageTraces: cfg.Metrics.StageTraces,
	})
	worker.StartWorkers(cfg.Metrics.Workers)

	// middleware
	middlewareTransport := middleware.Transport{
		SecurityHeadersMiddleware: middleware.NewSecurityMiddleware(logger),
		PanicRecoverMiddleware:    middleware.NewPanicRecoverMiddleware(logger),
		MetricsMiddleware:         middleware.NewMetricsMiddleware(logger, worker),
		SecurityFilterMiddleware:  middleware.NewSecurityFilterMiddleware(logger, pipeline.New(logger, pol)),
	}
	if cfg.RateLimit.Enabled {
		middlewareTransport.RateLimitMiddleware = middleware.NewRateLimitMiddleware(
			logger, newLimiter(cfg.RateLimit, redisClient), cfg.RateLimit.Prefixes,
		)
	}
	if cfg.Auth.Enabled {
		middlewareTransport.AuthMiddleware = middleware.NewAuthMiddleware(
			logger, jwt.NewJwtManager(cfg.Auth.Secret), cfg.Auth.PublicPrefixes,
		)
	}
	adminSecret := cfg.Auth.AdminSecret
	if adminSecret == "" {
		adminSecret = cfg.Auth.Secret
	}
	if adminSecret == "" {
		logger.Warn("no admin secret configured, the admin api will reject every request")
	}
	adminAuth := middleware.NewAdminAuthMiddleware(logger, jwt.NewJwtManager(adminSecret))

	// handlers
	upstreamClient := httpx.NewFastHTTPClient(
		httpx.WithTimeout(cfg.Upstream.Timeout),
		httpx.WithMaxConnsPerHost(cfg.Upstream.MaxConnsPerHost),
		httpx.WithUserAgent(version.AppName+"/"+version.Version),
	)
	handlerTransport := handlers.HandlerTransport{
		ForwardedHandler: handlers.NewForwardedHandler(handlers.ForwardedHandlerDeps{
			Logger:      logger,
			Client:      upstreamClient,
			UpstreamURL: cfg.Upstream.URL,
		}),
		ListSecurityEventsHandler:   handlers.NewListSecurityEventsHandler(logger, eventRepo),
		SecurityEventSummaryHandler: handlers.NewSecurityEventSummaryHandler(logger, eventRepo),
		GetPolicyHandler:            handlers.NewGetPolicyHandler(logger, pol),
		GetVersionHandler:           handlers.NewGetVersionHandler(logger),
		HealthHandler:               handlers.NewHealthHandler(),
	}

	servers := initializeServers(serverType, cfg, logger, pol, middlewareTransport, adminAuth, handlerTransport)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(srv.Run)
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")
		for _, srv := range servers {
			if err := srv.Shutdown(); err != nil {
				logger.WithError(err).Error("error shutting down server")
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server stopped with error")
	}
	worker.Shutdown()
	logger.Info("server gracefully stopped")
}

func getServerType(cfg *config.Config) string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	if cfg.Server.Type != "" {
		return cfg.Server.Type
	}
	return serverTypeAll
}

// buildExporters registers the exporters whose backing store is available
// and configures the ones listed in the telemetry settings.
func buildExporters(
	configs []domainTelemetry.ExporterConfig,
	db *database.DB,
	repo security_event.Repository,
	redisClient cache.Client,
) ([]domainTelemetry.Exporter, error) {
	opts := []telemetry.ExporterLocatorOption{
		telemetry.WithExporter(kafka.NewKafkaExporter()),
	}
	if db != nil {
		opts = append(opts, telemetry.WithExporter(postgres.NewPostgresExporter(repo)))
	}
	if redisClient != nil {
		opts = append(opts, telemetry.WithExporter(redisExporter.NewRedisExporter(redisClient)))
	}
	return telemetry.NewExporterLocator(opts...).Build(configs)
}

func newLimiter(cfg config.RateLimitConfig, redisClient cache.Client) ratelimit.Limiter {
	if redisClient != nil {
		return ratelimit.NewRedisLimiter(redisClient.RedisClient(), cfg.Limit, cfg.Window, nil)
	}
	return ratelimit.NewMemoryLimiter(cfg.Limit, cfg.Window)
}

// proxyBodyLimit leaves room above the policy ceiling so oversized bodies
// reach the limit stage and are recorded as security events.
func proxyBodyLimit(pol *policy.Policy) int {
	limit := pol.Limits().MaxBodyBytes * 2
	if limit > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(limit)
}

func initializeServers(
	serverType string,
	cfg *config.Config,
	logger *logrus.Logger,
	pol *policy.Policy,
	middlewareTransport middleware.Transport,
	adminAuth middleware.Middleware,
	handlerTransport handlers.HandlerTransport,
) []server.Server {
	var servers []server.Server

	if serverType == serverTypeAll || serverType == serverTypeProxy {
		servers = append(servers, server.NewProxyServer(server.ProxyServerDI{
			Config:    cfg,
			Logger:    logger,
			BodyLimit: proxyBodyLimit(pol),
			Routers: []router.ServerRouter{
				router.NewProxyRouter(middlewareTransport, handlerTransport, cfg.Routes),
			},
		}))
	}

	if serverType == serverTypeAll || serverType == serverTypeAdmin {
		servers = append(servers, server.NewAdminServer(server.AdminServerDI{
			Config: cfg,
			Logger: logger,
			Routers: []router.ServerRouter{
				router.NewAdminRouter(middlewareTransport.SecurityHeadersMiddleware, adminAuth, handlerTransport, router.DefaultDocsURL),
			},
		}))
	}

	if cfg.Metrics.Enabled && (serverType == serverTypeAll || serverType == serverTypeProxy) {
		servers = append(servers, server.NewMetricsServer(cfg, logger))
	}

	if len(servers) == 0 {
		logger.Fatalf("unknown server type %q", serverType)
	}
	return servers
}
