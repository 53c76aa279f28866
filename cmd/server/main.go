package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/farfield/internal/api"
	"github.com/RMahshie/farfield/internal/config"
	"github.com/RMahshie/farfield/internal/observability"
	"github.com/RMahshie/farfield/internal/processing"
	"github.com/RMahshie/farfield/internal/repository"
	"github.com/RMahshie/farfield/internal/repository/memory"
	"github.com/RMahshie/farfield/internal/repository/postgres"
	"github.com/RMahshie/farfield/internal/storage"
	"github.com/RMahshie/farfield/pkg/ffe"
	"github.com/RMahshie/farfield/pkg/models"
)

func main() {
	// Configure zerolog for structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	zerolog.SetGlobalLevel(cfg.Server.LogLevel)

	ctx := context.Background()

	// Dataset catalogue
	var repo repository.DatasetRepository
	if cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open database")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		repo = postgres.NewPostgresDatasetRepository(db)
		log.Info().Msg("Dataset catalogue backed by PostgreSQL")
	} else {
		repo = memory.NewDatasetRepository()
		log.Warn().Msg("DATABASE_URL not set, dataset catalogue is in memory")
	}

	// Object storage is optional; without it s3:// paths and uploads are rejected
	var s3Service storage.S3Service
	source := ffe.MultiSource{Files: ffe.FileSource{}}
	if cfg.AWS.S3Bucket != "" {
		svc, err := storage.NewS3Service(ctx, storage.S3Config{
			Bucket:    cfg.AWS.S3Bucket,
			Endpoint:  cfg.AWS.S3Endpoint,
			Region:    cfg.AWS.Region,
			AccessKey: cfg.AWS.AccessKeyID,
			SecretKey: cfg.AWS.SecretAccessKey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 service")
		}
		if err := svc.EnsureBucket(ctx); err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.AWS.S3Bucket).Msg("Failed to prepare bucket")
		}
		s3Service = svc
		source.Objects = ffe.ObjectSource{Fetcher: svc}
	}

	collector, err := observability.NewParserCollector(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	parser := ffe.NewParser(
		ffe.WithSource(source),
		ffe.WithDuplicatePolicy(cfg.Parser.DuplicatePolicy),
		ffe.WithWorkers(cfg.Parser.Workers),
		ffe.WithLogger(log.Logger),
		ffe.WithRecorder(collector),
	)
	cache, err := ffe.NewCache(parser, cfg.Parser.CacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create parse cache")
	}
	datasetSvc := processing.NewDatasetService(cache, repo, cfg.Parser.DataDir, cfg.Parser.DuplicatePolicy)

	// Create Chi router
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(zerologLogger())
	router.Use(middleware.Recoverer)
	router.Use(collector.Middleware)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Create Huma API
	humaConfig := huma.DefaultConfig("Farfield API", "1.0.0")
	humaConfig.DocsPath = "/api/docs"
	humaAPI := humachi.New(router, humaConfig)

	// Register health endpoint
	huma.Register(humaAPI, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service",
	}, func(ctx context.Context, input *struct{}) (*models.HealthResponse, error) {
		resp := &models.HealthResponse{}
		resp.Body.Status = "healthy"
		resp.Body.Version = "1.0.0"
		resp.Body.Time = time.Now()
		return resp, nil
	})

	api.RegisterRoutes(router, humaAPI, datasetSvc, s3Service, collector.Handler())

	// Start server
	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().
			Str("addr", addr).
			Str("env", cfg.Server.Env).
			Str("dataDir", cfg.Parser.DataDir).
			Msg("Starting Farfield API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologLogger returns a Chi middleware that logs HTTP requests using zerolog
func zerologLogger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("remote_ip", r.RemoteAddr).
					Int("status", ww.Status()).
					Dur("latency", time.Since(start)).
					Str("user_agent", r.UserAgent()).
					Msg("HTTP request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
