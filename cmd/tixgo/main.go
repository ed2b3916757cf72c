package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	"tixgo/cfg"
	"tixgo/internal/flight"
	"tixgo/internal/storage"
	"tixgo/pkg/aviationstack"
	"tixgo/pkg/cache"
	"tixgo/pkg/db"
	"tixgo/pkg/httpmw"
	"tixgo/pkg/idgen"
	"tixgo/pkg/logger"
	"tixgo/pkg/metrics"
	"tixgo/pkg/telemetry"

	_ "tixgo/cmd/tixgo/docs" // swagger docs

	_ "github.com/lib/pq"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
)

// @title           TixGo Flight API
// @version         1.0
// @description     Flight search over aviationstack with a 30 minute search cache.
// @BasePath        /
// @schemes         http
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ============
	// config
	// ============
	config, errCfg := cfg.Load()
	if errCfg != nil {
		log.Fatal(errCfg)
	}

	// ============
	// logger
	// ============
	zlogger := logger.NewZeroLog(config.AppEnv)

	// ============
	// Otel
	// ============
	if config.Observability.Enabled {
		shutdownOtel, err := telemetry.Init(ctx, telemetry.Config{
			OTLPEndpoint: config.Observability.OTLPEndpoint,
			ServiceName:  config.Observability.ServiceName,
			Environment:  config.Observability.Environment,
		}, zlogger)
		if err != nil {
			log.Fatalf("failed to initialize OpenTelemetry: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOtel(ctx); err != nil {
				zlogger.Error("failed to shutdown OpenTelemetry", logger.Field{Key: "err", Value: err})
			}
		}()
	}

	// ============
	// Metrics
	// ============
	promMetrics := metrics.NewMetrics("tixgo")
	otelRecorder, err := telemetry.NewRecorder(otel.Meter("tixgo/internal/flight"))
	if err != nil {
		log.Fatal(err)
	}

	// ============
	// Cache store
	// ============
	store, closeStore, err := openStore(ctx, config, zlogger)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	// ============
	// External Service
	// ============
	aviationClient := aviationstack.NewClient(nil, aviationstack.Options{
		BaseURL:   config.AviationStack.BaseURL,
		AccessKey: config.AviationStack.AccessKey,
		Timeout:   time.Duration(config.AviationStack.TimeoutSeconds) * time.Second,
		RateLimit: config.AviationStack.RateLimitRPS,
		Burst:     config.AviationStack.RateLimitBurst,
	}, zlogger)
	adapter := flight.NewAdapter(
		aviationClient,
		flight.NewRouteHashPricer(),
		flight.NewSeatAllocator(config.Search.AvailabilityMode),
		zlogger,
	)

	// ============
	// Internal Service
	// ============
	flightSvc := flight.NewService(adapter, store, config.Cache.TTLMinutes, zlogger,
		flight.WithMetrics(metrics.Fanout(promMetrics, otelRecorder)),
		flight.WithCoalescing(config.Search.Coalesce),
	)
	flightHandler := flight.NewFlightHandler(flightSvc)

	janitor := flight.NewJanitor(flightSvc, time.Duration(config.Cache.CleanupIntervalMinutes)*time.Minute, zlogger)
	go janitor.Run(ctx)

	// ============
	// ID generator
	// ============
	idGen, err := idgen.NewSnowflakeGenerator(config.SnowflakeNodeID)
	if err != nil {
		log.Fatal(err)
	}

	// ============
	// HTTP
	// ============
	if config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(config.Observability.ServiceName))
	r.Use(httpmw.RequestID(idGen))
	r.Use(httpmw.TraceLogger(zlogger))
	r.Use(httpmw.Metrics(promMetrics))

	flightHandler.RegisterRoutes(r)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cacheBackend": config.Cache.Backend})
	})
	r.GET("/metrics", gin.WrapH(promMetrics.Handler()))
	initSwagger(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.AppPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlogger.Info("http server listening", logger.Field{Key: "addr", Value: srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	zlogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlogger.Error("http server shutdown failed", logger.Field{Key: "err", Value: err})
	}
}

// openStore builds the configured cache backend and a func releasing it.
func openStore(ctx context.Context, config *cfg.Config, log logger.Logger) (flight.Store, func(), error) {
	switch config.Cache.Backend {
	case cfg.CacheBackendRedis:
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     config.Redis.Host + ":" + config.Redis.Port,
			Password: config.Redis.Password,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info("cache backend ready", logger.Field{Key: "backend", Value: "redis"})
		return storage.NewRedisStore(redisCache), func() { _ = redisCache.Close() }, nil

	default:
		pg := config.Postgres
		dsn := db.PostgresDSN(pg.User, pg.Password, pg.Host, pg.Port, pg.DBName, pg.SSLMode)
		client, err := db.NewSQLClient(ctx, "postgres", dsn, db.DefaultPoolConfig())
		if err != nil {
			return nil, nil, err
		}
		gdb, err := db.OpenGorm(client, log, config.AppEnv != "production")
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		log.Info("cache backend ready", logger.Field{Key: "backend", Value: "postgres"})
		return storage.NewGormStore(gdb), func() { _ = client.Close() }, nil
	}
}

func initSwagger(r *gin.Engine) {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		html := `<!DOCTYPE html>
<html>
<head>
    <title>TixGo API Documentation</title>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
    <script id="api-reference" data-url="/swagger/doc.json"></script>
    <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
		c.String(http.StatusOK, html)
	})
}
