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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/Buontempo-Raul/Resurface/internal/application/batch"
	"github.com/Buontempo-Raul/Resurface/internal/config"
	"github.com/Buontempo-Raul/Resurface/internal/domain/analysis"
	"github.com/Buontempo-Raul/Resurface/internal/infra/httpserver"
	"github.com/Buontempo-Raul/Resurface/internal/infra/preview"
	mockprovider "github.com/Buontempo-Raul/Resurface/internal/infra/provider/mock"
	openaiprovider "github.com/Buontempo-Raul/Resurface/internal/infra/provider/openai"
	minioStore "github.com/Buontempo-Raul/Resurface/internal/infra/storage"
	"github.com/Buontempo-Raul/Resurface/internal/middleware"
)

const version = "1.0.0"

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config, fall back to defaults when no file exists
	cfg, err := config.Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("config load error: %v", err)
		}
		log.Printf("no config file at %s, using defaults", path)
		cfg = config.Default()
	}

	ctx := context.Background()

	// pick the analysis provider
	var provider analysis.Provider
	switch cfg.Provider.Mode {
	case "openai":
		key := cfg.Provider.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			log.Fatalf("provider mode is openai but no API key configured")
		}
		provider = openaiprovider.NewClient(key, cfg.Provider.Model)
	default:
		provider = mockprovider.NewDetector()
	}

	// optional preview storage
	var store analysis.ArtifactStore
	if cfg.Minio.Enabled {
		s, err := minioStore.New(ctx,
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
		store = s
	}

	policy := analysis.Policy{
		AllowedFormats: cfg.Policy.AllowedFormats,
		MaxBytes:       cfg.Policy.MaxBytes,
	}

	orch := batch.New(policy, provider, batch.Options{
		Previews:  preview.NewBuilder(),
		Artifacts: store,
		Timeout:   cfg.ProviderTimeout(),
	})

	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(cfg.Server.RateLimit))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	mux.Mount("/", httpserver.NewRouter(orch, provider, version, policy.MaxBytes))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s provider=%s model=%s", addr, cfg.Provider.Mode, provider.Version())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	orch.WaitForPreparations()
}
