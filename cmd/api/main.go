package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/trustlens/trustlens/internal/application"
	appanalysis "github.com/trustlens/trustlens/internal/application/analysis"
	"github.com/trustlens/trustlens/internal/cache"
	"github.com/trustlens/trustlens/internal/config"
	domain "github.com/trustlens/trustlens/internal/domain/analysis"
	aiopenai "github.com/trustlens/trustlens/internal/infra/ai/openai"
	redisstore "github.com/trustlens/trustlens/internal/infra/cache/redis"
	mysqlp "github.com/trustlens/trustlens/internal/infra/db/mysql"
	postgresp "github.com/trustlens/trustlens/internal/infra/db/postgres"
	"github.com/trustlens/trustlens/internal/infra/fetch"
	"github.com/trustlens/trustlens/internal/infra/httpserver"
	minioStore "github.com/trustlens/trustlens/internal/infra/storage"
	"github.com/trustlens/trustlens/internal/middleware"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	store, checkers := buildStore(ctx, cfg)

	aiClient, err := aiopenai.NewClient(aiopenai.Config{
		APIKey:        cfg.OpenAI.APIKey,
		Model:         cfg.OpenAI.Model,
		VisionModel:   cfg.OpenAI.VisionModel,
		AzureEndpoint: cfg.OpenAI.AzureEndpoint,
		BaseURL:       cfg.OpenAI.BaseURL,
		Timeout:       time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		log.Fatalf("openai client error: %v", err)
	}

	fetcher := fetch.NewClient(
		time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second,
		cfg.Fetch.UserAgent,
		cfg.Fetch.MaxBytes,
	)

	var archiver domain.Archiver
	if cfg.Minio.Enabled {
		archive, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		archiver = archive
	}

	svc := &appanalysis.Service{
		Cache:   cache.New(store, cfg.MemoryTTL()),
		Text:    aiClient,
		Image:   aiClient,
		Fetcher: fetcher,
		Archive: archiver,
		Clock:   application.SystemClock{},
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpserver.NewRouter(svc, checkers),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s (cache driver: %s)", addr, cfg.Cache.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// buildStore connects the configured backing store. A store that fails
// to come up degrades the process to the in-memory layer rather than
// refusing to start; the health endpoint surfaces the gap.
func buildStore(ctx context.Context, cfg *config.Config) (domain.Store, map[string]middleware.HealthChecker) {
	checkers := make(map[string]middleware.HealthChecker)

	switch cfg.Cache.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Printf("mysql connect error, continuing with memory cache only: %v", err)
			return nil, checkers
		}
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
		return mysqlp.NewAnalysisRepository(db), checkers

	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Printf("postgres connect error, continuing with memory cache only: %v", err)
			return nil, checkers
		}
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
		return postgresp.NewAnalysisRepository(db), checkers

	case "redis":
		rs, err := redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("redis connect error, continuing with memory cache only: %v", err)
			return nil, checkers
		}
		checkers["redis"] = &middleware.PingHealthChecker{Pinger: rs}
		return rs, checkers

	case "none", "":
		return nil, checkers

	default:
		log.Printf("unknown cache driver %q, continuing with memory cache only", cfg.Cache.Driver)
		return nil, checkers
	}
}
