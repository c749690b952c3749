package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"equiprent-backend/internal/config"
	"equiprent-backend/internal/events"
	"equiprent-backend/internal/jobs"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository/postgres"
	"equiprent-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'cancel-stale-pending', 'flag-overdue', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Equiprent Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Event publisher: RabbitMQ when configured, no-op otherwise
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Queue.URL != "" {
		publisher = events.NewAMQPPublisher(cfg.Queue.URL)
	}

	jobRunner := jobs.NewJobRunner(store, publisher, cfg)

	// One-shot mode for manual runs and container cron
	if *runOnce != "" {
		switch *runOnce {
		case "cancel-stale-pending":
			jobRunner.CancelStalePendingBookings()
		case "flag-overdue":
			jobRunner.FlagOverdueReturns()
		case "all-nightly":
			jobRunner.RunAllNightlyJobs()
		default:
			log.Fatalf("Unknown job: %s", *runOnce)
		}
		logger.Info("One-shot job finished", "job", *runOnce)
		return
	}

	// Long-running mode with the cron scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cronScheduler.Stop()
	logger.Info("Cronjob runner stopped")
}
