package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/enrollment-verifier/internal/api"
	"github.com/enrollment-verifier/internal/config"
	"github.com/enrollment-verifier/internal/database"
	"github.com/enrollment-verifier/internal/discord"
	"github.com/enrollment-verifier/internal/intake"
	"github.com/enrollment-verifier/internal/repository"
	"github.com/enrollment-verifier/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New("enrollment-bot")
	log.Info().Msg("Starting enrollment intake bot...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories and the intake service
	repos := repository.New(db)
	tracker := intake.NewTracker()
	intakeSvc := intake.NewService(repos.Student, tracker, log)

	// Connect to Discord
	bot, err := discord.NewBot(&cfg.Discord, intakeSvc, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Discord session")
	}
	if err := bot.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Discord")
	}

	// Serve the read-only status API
	router := api.NewRouter(repos, log)
	srv := &http.Server{
		Addr:    ":" + cfg.Status.Port,
		Handler: router,
	}
	go func() {
		log.Info().Str("port", cfg.Status.Port).Msg("Status API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Status API failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Status.ShutdownTimeout)
	defer cancel()

	if err := bot.Stop(); err != nil {
		log.Warn().Err(err).Msg("Discord session close failed")
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Status API forced to shutdown")
	}

	log.Info().Msg("Bot exited gracefully")
}
