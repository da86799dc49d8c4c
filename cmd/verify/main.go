package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/enrollment-verifier/internal/config"
	"github.com/enrollment-verifier/internal/database"
	"github.com/enrollment-verifier/internal/discord"
	"github.com/enrollment-verifier/internal/models"
	"github.com/enrollment-verifier/internal/repository"
	"github.com/enrollment-verifier/internal/roster"
	"github.com/enrollment-verifier/internal/verify"
	"github.com/enrollment-verifier/pkg/logger"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  verify             # Interactive verification")
	fmt.Println("  verify --all       # Show all students")
	fmt.Println("  verify --auto      # Auto-verify from the roster")
	fmt.Println("  verify --reverify  # Re-assign role to ALL eligible students")
}

func main() {
	var (
		listAll  = flag.Bool("all", false, "show all students, read-only")
		auto     = flag.Bool("auto", false, "auto-verify roster matches without prompting")
		reverify = flag.Bool("reverify", false, "re-grant roles to every roster-eligible student")
		help     = flag.Bool("help", false, "show usage")
	)
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		return
	}

	mode := models.RunModeInteractive
	switch {
	case *listAll:
		mode = models.RunModeList
	case *auto:
		mode = models.RunModeAuto
	case *reverify:
		mode = models.RunModeReverify
	}

	log := logger.New("enrollment-verify")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.Existing(&cfg.Database, log)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			fmt.Printf("Database not found at %s\n", cfg.Database.Path)
			fmt.Println("Make sure the bot has run at least once to create the database.")
			return
		}
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	repos := repository.New(db)
	loader := roster.NewLoader(&cfg.Roster, log)

	roles, err := discord.NewRoleClient(&cfg.Discord, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Discord")
	}
	defer roles.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	if err := roles.WaitReady(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("Discord session never became ready")
	}
	cancel()

	svc := verify.NewService(repos, loader, roles, os.Stdout, os.Stdin, log)
	if err := svc.Run(context.Background(), mode); err != nil {
		log.Fatal().Err(err).Msg("Verification run failed")
	}
}
