package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/itgovern/carga/internal/config"
	"github.com/itgovern/carga/internal/db"
	"github.com/itgovern/carga/internal/logging"
	"github.com/itgovern/carga/internal/middleware"
	"github.com/itgovern/carga/internal/pipeline"
	"github.com/itgovern/carga/internal/repository"
	"github.com/itgovern/carga/internal/samples"
	"github.com/itgovern/carga/internal/submit"
	"github.com/itgovern/carga/internal/techid"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logging.Setup(os.Getenv("CARGA_LOG_LEVEL"), os.Getenv("CARGA_LOG_FORMAT"))

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Run history persistence is optional; without a database the
	// pipeline still works, runs are just not stored.
	var runRepo repository.RunRepository
	if cfg.DatabaseEnabled {
		conn, err := db.NewConnection(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer conn.Close()

		if err := db.RunMigrations(cfg.Database, cfg.MigrationsPath); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		runRepo = repository.NewRunRepository(conn)
	}

	client := &http.Client{Timeout: cfg.RequestTimeout}

	var opts []submit.Option
	if cfg.SubmitWorkers > 1 {
		opts = append(opts, submit.WithStrategy(submit.Pooled{Workers: cfg.SubmitWorkers}))
	}
	driver := submit.NewDriver(cfg.BackendURL, client, opts...)

	loader := pipeline.NewService(driver, runRepo)
	identifier := techid.NewService(cfg.BackendURL, client)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.LoggingMiddleware)
	router.Use(corsHandler.Handler)

	history := pipeline.NewHistoryHandler(runRepo)

	router.Method(http.MethodPost, "/api/ingest", pipeline.NewHTTPHandler(loader))
	router.Method(http.MethodPost, "/api/identify", techid.NewHTTPHandler(identifier))
	router.Get("/api/runs", history.List)
	router.Get("/api/runs/{id}", history.Get)
	router.Get("/api/entities", samples.EntitiesHandler())
	router.Get("/api/samples/{tipo}", samples.CSVHandler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
