// Command createadmin creates the admin account, or resets its password and
// role if the email is already registered.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/Eursukkul/eventsphere/config"
	"github.com/Eursukkul/eventsphere/internal/auth"
	"github.com/Eursukkul/eventsphere/internal/logging"
	"github.com/Eursukkul/eventsphere/internal/repository"
	"github.com/Eursukkul/eventsphere/internal/service"
	"github.com/Eursukkul/eventsphere/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	name := flag.String("name", cfg.AdminName, "admin display name")
	email := flag.String("email", cfg.AdminEmail, "admin email")
	password := flag.String("password", cfg.AdminPassword, "admin password (defaults to ADMIN_PASSWORD)")
	flag.Parse()

	if len(*password) < 6 {
		logging.Fatal().Msg("admin password must be at least 6 characters")
	}

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create token manager")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := service.NewAuthService(repository.NewUserRepository(db), tokens)
	user, created, err := svc.EnsureAdmin(ctx, *name, *email, *password)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to ensure admin")
	}

	if created {
		logging.Info().Uint("id", user.ID).Str("email", user.Email).Msg("admin created")
		return
	}
	logging.Info().Uint("id", user.ID).Str("email", user.Email).Msg("admin updated")
}
