package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/database"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/email"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/handlers"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/notify"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/posting"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/quota"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/reconciler"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/routes"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/store"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/subscription"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		// Fine in production, where the environment is set by the host.
	}

	logger := internal.NewLogger(os.Stdout, os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))

	// 1. --- Database Connection & Schema ---
	db, err := database.OpenDB()
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	st := store.New(db)
	if err := st.EnsureSchema(context.Background()); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	// 2. --- Email Transport ---
	var mailer email.Sender
	if host := os.Getenv("SMTP_HOST"); host != "" {
		port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
		if port == 0 {
			port = 587
		}
		mailer = email.NewSMTPSender(email.SMTPConfig{
			Host:     host,
			Port:     port,
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("SMTP_FROM"),
		})
	} else {
		logger.Warn("SMTP_HOST not set, emails will be logged instead of delivered")
		mailer = email.NewLogSender(logger)
	}

	// 3. --- Core Services ---
	notifier := notify.New(st, mailer, logger)
	engine := quota.NewEngine(st, st)
	lifecycle := subscription.NewLifecycle(st, st, st, notifier, logger)
	guard := posting.NewGuard(engine, st, st, notifier)

	// 4. --- Background Reconciler ---
	rec := reconciler.New(st, lifecycle, logger)
	rec.Start(context.Background())
	defer rec.Stop()

	app := &handlers.Handlers{
		DB:        db,
		Store:     st,
		Quota:     engine,
		Lifecycle: lifecycle,
		Guard:     guard,
		Notifier:  notifier,
		Logger:    logger,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// --- Start Server ---
	// Run blocks until the process is told to stop; a shutdown signal
	// lets the deferred reconciler Stop drain any in-flight sweep.
	go func() {
		logger.Info("starting StudentWorkHub API server", "port", port)
		if err := router.Run(":" + port); err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")
}
