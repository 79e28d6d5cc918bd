package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"storefront/internal/storefront/adapters/ai"
	"storefront/internal/storefront/adapters/api"
	"storefront/internal/storefront/adapters/jar"
	"storefront/internal/storefront/adapters/transport"
	"storefront/internal/storefront/app/credentials"
	"storefront/internal/storefront/app/generator"
	httpServer "storefront/internal/storefront/app/http"
	"storefront/internal/storefront/app/querycache"
	"storefront/internal/storefront/app/refresh"
	"storefront/internal/storefront/app/services"
	"storefront/internal/storefront/app/session"
	"storefront/internal/storefront/config"
	"storefront/internal/storefront/metrics"
	ports "storefront/internal/storefront/ports/credentials"
	"storefront/internal/storefront/resilience"
	"storefront/pkg/db/redis"
	"storefront/pkg/logger"
	"storefront/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "STOREFRONT_LOGGER_MODE"
	EnvLoggerLevel = "STOREFRONT_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrCreateRedisClient    = "failed to create Redis client"
	ErrCreateTransport      = "failed to create transport"
	ErrUnknownJarBackend    = "unknown jar backend"
	ErrStartHTTPServer      = "failed to start HTTP server"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "storefront client started"
	LogServiceShutdownDone = "storefront client shutdown complete"
	LogInitJar             = "initializing credential jar"
	LogInitSession         = "initializing session"
	LogInitTransport       = "initializing transport"
	LogInitCache           = "initializing query cache"
	LogInitAI              = "initializing AI clients"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
	LogStoppingHTTP        = "stopping HTTP server"
	LogClosingCache        = "closing query cache"
	LogClosingRedis        = "closing Redis connection"
	LogSessionRestored     = "session restored"
)

// MetricsNamespace - префикс имен метрик.
const MetricsNamespace = "storefront"

func main() {
	envPath := flag.String("env", ".env", "path to .env file")
	flag.Parse()

	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}
	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx, *envPath)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		if err := run(ctx, log, cfg); err != nil {
			exitCode = 1
			return
		}

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func run(ctx context.Context, log *logger.Logger, cfg *config.Config) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(MetricsNamespace, registry)

	log.Info(ctx, LogInitJar, zap.String("backend", cfg.Jar.Backend))
	cookieJar, redisClient, err := newJar(ctx, cfg)
	if err != nil {
		log.Error(ctx, ErrCreateRedisClient, zap.Error(err))
		return err
	}

	log.Info(ctx, LogInitSession)
	store := credentials.NewStore(cookieJar, time.Now)
	sess := session.New(store, &session.RouteRecorder{}, cfg.Auth.LandingRoute)
	state := sess.Init(ctx)
	log.Info(ctx, LogSessionRestored, zap.Bool("is_logged", state.IsLogged), zap.Bool("is_admin", state.IsAdmin))

	log.Info(ctx, LogInitTransport, zap.String("base_url", cfg.API.BaseURL))
	backend, err := transport.NewClient("backend", transport.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
	}, nil)
	if err != nil {
		log.Error(ctx, ErrCreateTransport, zap.Error(err))
		return err
	}
	authAPI := api.NewAuthAPI(backend)
	authorized := refresh.New(backend, sess, authAPI,
		refresh.WithCoalescing(cfg.Auth.CoalesceRefresh),
		refresh.WithMetrics(m))
	storeAPI := api.NewStoreAPI(authorized)

	log.Info(ctx, LogInitCache, zap.Duration("retention", cfg.Cache.Retention))
	engine := querycache.New(ctx, querycache.Options{
		Retention:   cfg.Cache.Retention,
		MaxRetained: cfg.Cache.MaxRetained,
		Metrics:     m,
	})
	sess.OnTeardown(engine.Reset)

	log.Info(ctx, LogInitAI)
	chatTransport, err := transport.NewClient(ai.ServiceChat, transport.Config{BaseURL: cfg.AI.ChatURL, Timeout: cfg.AI.Timeout}, nil)
	if err != nil {
		log.Error(ctx, ErrCreateTransport, zap.Error(err))
		return err
	}
	imageTransport, err := transport.NewClient(ai.ServiceImage, transport.Config{BaseURL: cfg.AI.ImageURL, Timeout: cfg.AI.Timeout}, nil)
	if err != nil {
		log.Error(ctx, ErrCreateTransport, zap.Error(err))
		return err
	}
	policy := resilience.FromAIConfig(cfg.AI)
	chat := ai.NewChatClient(chatTransport, cfg.AI.ChatKey, policy, m)
	images := ai.NewImageClient(imageTransport, cfg.AI.ImageKey, policy, m)

	authService := services.NewAuthService(authAPI, sess)
	catalogService := services.NewCatalogService(engine, storeAPI)
	gen := generator.New(chat, images, catalogService.DecodeImage, m)
	generationService := services.NewGenerationService(gen, catalogService)

	log.Info(ctx, LogInitHTTPServer)
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	})
	httpServer.SetupRouter(app, httpServer.Dependencies{
		Auth:         authService,
		Catalog:      catalogService,
		Generation:   generationService,
		Gatherer:     registry,
		Logger:       log,
		LandingRoute: cfg.Auth.LandingRoute,
	})

	log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
	go func() {
		if err := app.Listen(cfg.HTTP.GetAddress()); err != nil {
			log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
		}
	}()

	hooks := []func(context.Context) error{
		func(ctx context.Context) error {
			log.Info(ctx, LogStoppingHTTP)
			return app.ShutdownWithContext(ctx)
		},
		func(ctx context.Context) error {
			log.Info(ctx, LogClosingCache)
			return engine.Close()
		},
	}
	if redisClient != nil {
		hooks = append(hooks, func(ctx context.Context) error {
			log.Info(ctx, LogClosingRedis)
			return redisClient.Close()
		})
	}
	shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(), hooks...)
	return nil
}

// newJar создает хранилище учетных данных. Для Redis возвращается и клиент, который нужно закрыть.
func newJar(ctx context.Context, cfg *config.Config) (ports.Jar, *redis.Client, error) {
	switch cfg.Jar.Backend {
	case config.JarBackendMemory, "":
		return jar.NewMemoryJar(time.Now), nil, nil
	case config.JarBackendRedis:
		client, err := redis.NewClient(ctx, cfg.Redis.ClientConfig())
		if err != nil {
			return nil, nil, err
		}
		return jar.NewRedisJar(client, cfg.Jar.KeyPrefix, time.Now), client, nil
	default:
		return nil, nil, fmt.Errorf("%s: %q", ErrUnknownJarBackend, cfg.Jar.Backend)
	}
}

