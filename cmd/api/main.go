package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-chat/internal/api"
	"github.com/dvloznov/finance-chat/internal/api/handlers"
	"github.com/dvloznov/finance-chat/internal/assistant"
	"github.com/dvloznov/finance-chat/internal/babilonia"
	"github.com/dvloznov/finance-chat/internal/chat"
	"github.com/dvloznov/finance-chat/internal/config"
	"github.com/dvloznov/finance-chat/internal/jobs/inmemory"
	"github.com/dvloznov/finance-chat/internal/logger"
	"github.com/dvloznov/finance-chat/internal/reports"
	"github.com/dvloznov/finance-chat/internal/session"
)

func main() {
	bootLog := logger.New()

	// Environment first so flags can default to it
	if err := config.LoadDotEnv(); err != nil {
		bootLog.Fatal().Err(err).Msg("Failed to load .env file")
	}
	cfg := config.Load(bootLog)

	var (
		port    = flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
		backend = flag.String("backend", cfg.Backend, "Assistant backend: ollama, gemini, anthropic or none")
		seed    = flag.Bool("seed", false, "Start new sessions with demo data")
	)
	flag.Parse()
	cfg.Port = *port
	cfg.Backend = *backend

	log := logger.NewFromConfig(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// Initialize assistant backends
	opts := cfg.AssistantOptions()
	completer, err := assistant.NewChatCompleter(ctx, opts)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("Failed to create assistant backend")
	}

	var classifier assistant.Classifier
	if cfg.ClassifierEnabled && cfg.Backend != assistant.BackendNone {
		classifier, err = assistant.NewClassifier(ctx, opts, cfg.ClassifyCacheTTL)
		if err != nil {
			log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("Failed to create category classifier")
		}
		if closer, ok := classifier.(io.Closer); ok {
			defer closer.Close()
		}
	}

	engine := chat.NewEngine(chat.Config{
		Classifier:       classifier,
		Completer:        completer,
		ClassifyTimeout:  cfg.ClassifyTimeout,
		AssistantTimeout: cfg.AssistantTimeout,
		Log:              log,
	})

	sessions := session.NewManager(*seed, time.Now)
	profiles := babilonia.NewStore()

	// Initialize month-close export
	var reportPublisher reports.Publisher
	if cfg.ReportBucket == "" {
		log.Warn().Msg("No report bucket configured - month-close export will return reports inline")
	} else {
		gcsPublisher, err := reports.NewGCSPublisher(ctx, cfg.ReportBucket, cfg.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create report publisher")
		}
		defer gcsPublisher.Close()
		reportPublisher = gcsPublisher
	}

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.JobBuffer, cfg.JobWorkers, jobStore, log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	log.Info().Int("workers", cfg.JobWorkers).Msg("Starting job workers")
	if err := jobQueue.Start(workerCtx, handlers.AssistantJobHandler(sessions, engine, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	handler := api.NewRouter(api.Deps{
		Sessions:  sessions,
		Profiles:  profiles,
		Engine:    engine,
		Publisher: jobQueue,
		Jobs:      jobStore,
		Reports:   reportPublisher,
		Log:       log,
	})

	server := newServer(cfg, handler)

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("backend", cfg.Backend).
			Bool("classifier", classifier != nil).
			Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdown(log, server, jobQueue, cancelWorker)
}

func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// Inline assistant answers may take the whole assistant timeout.
		WriteTimeout: cfg.AssistantTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func shutdown(log zerolog.Logger, server *http.Server, queue *inmemory.Queue, cancelWorker context.CancelFunc) {
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := queue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
