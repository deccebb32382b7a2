// Command judgequeue runs the LLM judge evaluation pipeline: the HTTP API,
// the background worker pool, or both in a single process depending on the
// --role flag.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/judgequeue/judgequeue/pkg/api"
	"github.com/judgequeue/judgequeue/pkg/config"
	"github.com/judgequeue/judgequeue/pkg/database"
	"github.com/judgequeue/judgequeue/pkg/enqueue"
	"github.com/judgequeue/judgequeue/pkg/evalwriter"
	"github.com/judgequeue/judgequeue/pkg/ingest"
	"github.com/judgequeue/judgequeue/pkg/judgerunner"
	"github.com/judgequeue/judgequeue/pkg/providers"
	"github.com/judgequeue/judgequeue/pkg/queue"
	"github.com/judgequeue/judgequeue/pkg/status"
	"github.com/judgequeue/judgequeue/pkg/store"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	role := flag.String("role", getEnv("ROLE", "all"), "Process role: api, worker, or all")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("warning: could not load %s: %v", envPath, err)
		log.Printf("continuing with existing environment variables")
	} else {
		log.Printf("loaded environment from %s", envPath)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	slog.SetLogLoggerLevel(parseLogLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("failed to load database config: %v", err)
	}

	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			slog.Error("error closing database client", "error", err)
		}
	}()
	slog.Info("connected to postgres")

	st := store.New(dbClient.DB())
	registry := providers.BuildFromEnv()

	ingester := ingest.New(st.Submissions)
	ingester.BatchSize = cfg.UploadBatchSize

	materializer := enqueue.New(st.Submissions, st.Assignments, st.Jobs)
	materializer.SubmissionPage = cfg.RunJudgesPage
	materializer.JobBatch = cfg.JobBatchSize

	reporter := status.New(st.Jobs)

	var pool *queue.Pool
	if *role == "worker" || *role == "all" {
		writer := evalwriter.New(st.Evaluations)
		workerCfg := queue.Config{
			Concurrency:     cfg.WorkerConcurrency,
			BatchSize:       cfg.WorkerBatch,
			PollInterval:    cfg.WorkerPoll,
			JudgesRefresh:   cfg.WorkerJudgeRefresh,
			OrphanInterval:  cfg.OrphanScanInterval,
			OrphanThreshold: cfg.OrphanThreshold,
		}.WithDefaults()

		pool = queue.NewPool("judgequeue-worker-1", st.Jobs, st.Judges, writer, registry, judgerunner.Run, workerCfg)
		pool.Start(ctx)
		defer pool.Stop()
		slog.Info("worker pool started", "concurrency", workerCfg.Concurrency, "batch_size", workerCfg.BatchSize)
	}

	if *role == "api" || *role == "all" {
		server := api.NewServer(dbClient, st, ingester, materializer, reporter, pool, cfg.CORSAllowOrigins, cfg.EvaluationsPageLimit)

		go func() {
			slog.Info("http server listening", "addr", cfg.HTTPAddr)
			if err := server.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
				log.Fatalf("http server failed: %v", err)
			}
		}()

		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during server shutdown", "error", err)
		}
		return
	}

	<-ctx.Done()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
