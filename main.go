package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance-reporter/bot"
	"attendance-reporter/config"
	"attendance-reporter/internal/handlers"
	"attendance-reporter/internal/logging"
	"attendance-reporter/internal/mailer"
	"attendance-reporter/internal/metrics"
	"attendance-reporter/internal/pipeline"
	"attendance-reporter/internal/report"
	"attendance-reporter/internal/repository"
	"attendance-reporter/internal/scheduler"
	"attendance-reporter/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()
	log.Println("Config loaded successfully")

	// Create application context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, initiating graceful shutdown...")
		cancel()
	}()

	db, err := repository.OpenDB(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to event database: %v", err)
	}
	defer db.Close()

	m := metrics.New()

	// Initialize application dependencies
	reportService, recipients, err := initApplication(cfg, db, m)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Initialize Telegram Bot
	if err := initBot(cfg, reportService, recipients); err != nil {
		log.Printf("Warning: Failed to init Telegram Bot: %v", err)
	}
	defer bot.StopPolling()

	sched, err := initScheduler(cfg, reportService)
	if err != nil {
		log.Fatalf("Failed to register schedules: %v", err)
	}
	sched.Start()

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handlers.NewRouter(handlers.NewReportHandler(reportService, cfg.Location), m.Handler()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	sched.Stop(shutdownCtx)

	log.Println("Server stopped gracefully")
}

// initBot initializes the Telegram bot
func initBot(cfg *config.Config, gen services.ReportGenerator, recipients repository.RecipientRepository) error {
	if cfg.TelegramBotToken == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, bot disabled")
		return nil
	}
	if err := bot.Init(cfg.TelegramBotToken, cfg.AuthorizedChatID); err != nil {
		return err
	}

	bot.SetReportGenerator(gen, cfg.Location)
	bot.SetRecipientRepository(recipients)
	bot.StartPolling()

	log.Println("Telegram Bot Initialized")
	return nil
}

// initApplication initializes all application dependencies
func initApplication(cfg *config.Config, db *sql.DB, m *metrics.Metrics) (*services.ReportService, repository.RecipientRepository, error) {
	events, err := repository.NewSQLEventSource(db, cfg.DB.Driver, cfg.Source, cfg.Location)
	if err != nil {
		return nil, nil, err
	}

	// Recipients come from PocketBase when it is configured, otherwise from RECIPIENTS
	var recipients repository.RecipientRepository
	if cfg.PocketBaseURL != "" {
		recipients = repository.NewPocketBaseRESTRecipientRepository(cfg.PocketBaseURL, cfg.PocketBaseToken)
		log.Printf("Using recipient directory at %s", cfg.PocketBaseURL)
	} else {
		recipients = repository.NewStaticRecipientRepository(cfg.Recipients)
		log.Printf("Using %d recipients from RECIPIENTS", len(cfg.Recipients))
	}

	p := pipeline.New(pipeline.Config{
		SuccessStatuses:  cfg.Pipeline.SuccessStatuses,
		InnerZones:       cfg.Pipeline.InnerZones,
		OuterZones:       cfg.Pipeline.OuterZones,
		DebounceWindowMs: cfg.Pipeline.DebounceWindowMs,
	})

	reportService := services.NewReportService(
		events,
		recipients,
		p,
		report.NewWriter(cfg.ReportDir),
		mailer.NewSMTPSender(cfg.SMTP),
		bot.NewNotifier(),
		m,
	)

	return reportService, recipients, nil
}

// initScheduler registers the daily, weekly and monthly runs
func initScheduler(cfg *config.Config, gen services.ReportGenerator) (*scheduler.Scheduler, error) {
	sched := scheduler.New(gen, cfg.Location)

	schedules := []struct {
		spec   string
		period services.Period
	}{
		{cfg.DailySchedule, services.PeriodDaily},
		{cfg.WeeklySchedule, services.PeriodWeekly},
		{cfg.MonthlySchedule, services.PeriodMonthly},
	}
	for _, s := range schedules {
		if err := sched.Register(s.spec, s.period); err != nil {
			return nil, err
		}
	}

	return sched, nil
}
