package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/faizi-7/graveyard-back/config"
	"github.com/faizi-7/graveyard-back/internal/application"
	"github.com/faizi-7/graveyard-back/internal/container"
	pginfra "github.com/faizi-7/graveyard-back/internal/infrastructure/postgres"
	"github.com/faizi-7/graveyard-back/internal/interface/middleware"
	"github.com/faizi-7/graveyard-back/internal/router"
	"github.com/faizi-7/graveyard-back/pkg/helpers"
	"github.com/faizi-7/graveyard-back/pkg/mailer"
	"github.com/faizi-7/graveyard-back/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetTokens(helpers.NewTokenAuthority(cfg.Tokens))

	// Postgres, or in-memory storage when STORAGE_DRIVER=memory
	if cfg.StorageDriver != "memory" {
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		container.SetPGPool(pool)
	}

	// Redis backs rate limits and the identity cache
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("redis unavailable, rate limits and identity cache disabled")
	} else {
		container.SetRedis(rdb)
	}

	// GCS for profile pictures and donation QR codes
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		container.SetObjectStore(helpers.NewGCSObjectStore(gcsClient, cfg.GCSBucket))
	}

	// Elasticsearch for idea search
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("failed to init elasticsearch client: %v", err)
		}
		container.SetES(es)
	}

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		log.Fatalf("failed to init mail queue: %v", err)
	}
	container.SetNotifier(notifier)
	if cfg.MetricsEnabled {
		container.SetMetrics(middleware.NewMetrics("ideas"))
	}

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RealIP())
	r.Use(middleware.RequestIDMiddleware())
	if m := container.GetMetrics(); m != nil {
		r.Use(m.Middleware())
	}
	// CORS
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))
	if cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	if p := container.GetRabbitPub(); p != nil {
		p.Close()
	}
	logger.Info("server exited properly")
}

// buildNotifier queues mail for the worker when sending is enabled. With
// sending disabled mail is only logged, and links only in development.
func buildNotifier(cfg *config.Config, logger *logrus.Logger) (application.Notifier, error) {
	if !cfg.MailSendEnabled {
		return mailer.NewLogNotifier(logger, cfg.Env == "development"), nil
	}
	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		return nil, err
	}
	container.SetRabbitPub(pub)
	return mailer.NewQueueNotifier(cfg, pub, logger), nil
}
