// Command seedadmin creates a superadmin account, or promotes an existing
// account to superadmin. Role updates go through the API with a strict
// hierarchy check, so the very first admin has to be seeded out of band.
package main

import (
	"context"
	"os"
	"time"

	"github.com/a-novel/service-authentication/config"
	"github.com/a-novel/service-authentication/internal/app/credentials"
	credentialsrepo "github.com/a-novel/service-authentication/internal/app/credentials/repo/gorm"
	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
	infradb "github.com/a-novel/service-authentication/internal/infrastructure/db"
	"github.com/a-novel/service-authentication/internal/infrastructure/secure"
	"github.com/a-novel/service-authentication/internal/infrastructure/system"
	"github.com/a-novel/service-authentication/internal/migrations"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	err := godotenv.Overload(".env")
	if err != nil {
		log.Debug().Err(err).Msg("failed to load .env file, using environment variables")
	}

	dsn := os.Getenv("DATABASE_DSN")
	email := os.Getenv("ADMIN_EMAIL")
	pass := os.Getenv("ADMIN_PASSWORD")

	if dsn == "" || email == "" || pass == "" {
		panic("DATABASE_DSN, ADMIN_EMAIL and ADMIN_PASSWORD environment variables are required")
	}

	_ = config.LoadConfig()
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	db, err := infradb.OpenPostgres(dsn)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	if err = migrations.Up(ctx, sqlDB); err != nil {
		panic(err)
	}

	core := credentials.NewCore(credentialsrepo.NewRepository(db), secure.NewPasswordHasher(),
		&system.UUIDv7Generator{}, &system.TimeGenerator{}, config.GetCredentialsConfig())

	account, err := core.Create(ctx, email, []byte(pass))
	switch {
	case err == nil:
		log.Info().Msgf("created account %s", account.ID)
	case apperr.CodeOf(err) == credentials.CodeEmailDuplicate:
		// Promote the existing account instead, without touching its password.
		account, _, err = core.GetByEmail(ctx, email)
		if err != nil {
			panic(err)
		}
		log.Info().Msgf("account %s already exists, promoting", account.ID)
	default:
		panic(err)
	}

	if account.Role == session.RoleSuperAdmin {
		log.Warn().Msg("account already has the superadmin role, nothing to do")
		return
	}

	if _, err = core.UpdateRole(ctx, account.ID, session.RoleSuperAdmin); err != nil {
		panic(err)
	}

	log.Info().Msgf("superadmin role granted to account %s", account.ID)
}
