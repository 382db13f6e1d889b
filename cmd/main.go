package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/a-novel/service-authentication/config"
	"github.com/a-novel/service-authentication/internal/api"
	"github.com/a-novel/service-authentication/internal/app/credentials"
	credentialsrepo "github.com/a-novel/service-authentication/internal/app/credentials/repo/gorm"
	credentialshttp "github.com/a-novel/service-authentication/internal/app/credentials/transport/http"
	credentialsusecase "github.com/a-novel/service-authentication/internal/app/credentials/usecase"
	"github.com/a-novel/service-authentication/internal/app/session"
	sessionrepo "github.com/a-novel/service-authentication/internal/app/session/repo/gorm"
	sessionhttp "github.com/a-novel/service-authentication/internal/app/session/transport/http"
	sessionusecase "github.com/a-novel/service-authentication/internal/app/session/usecase"
	"github.com/a-novel/service-authentication/internal/app/shortcode"
	shortcoderepo "github.com/a-novel/service-authentication/internal/app/shortcode/repo/redis"
	shortcodehttp "github.com/a-novel/service-authentication/internal/app/shortcode/transport/http"
	shortcodeusecase "github.com/a-novel/service-authentication/internal/app/shortcode/usecase"
	infradb "github.com/a-novel/service-authentication/internal/infrastructure/db"
	"github.com/a-novel/service-authentication/internal/infrastructure/mailer"
	"github.com/a-novel/service-authentication/internal/infrastructure/secure"
	"github.com/a-novel/service-authentication/internal/infrastructure/system"
	"github.com/a-novel/service-authentication/internal/migrations"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.LoadConfig()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(cfg.LogLevel.ZeroLog())
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	err := godotenv.Overload(".env")
	if err != nil {
		log.Debug().Err(err).Msg("failed to load .env file, using environment variables")
	}

	password := os.Getenv("DB_PASSWORD")
	dsn := cfg.DatabaseDSN
	if password != "" {
		dsn = fmt.Sprintf("%s password=%s", cfg.DatabaseDSN, password)
	}
	gormDB, err := infradb.OpenPostgres(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to access sql db")
	}
	if err = migrations.Up(ctx, sqlDB); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := infradb.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal().Msg("JWT_SECRET environment variable is required")
	}
	jwtCodec := secure.NewTokenCodec([]byte(jwtSecret))

	idGen := &system.UUIDv7Generator{}
	timeGen := &system.TimeGenerator{}
	rndGen := &system.RNDGenerator{}
	passwordHasher := secure.NewPasswordHasher()

	sessionRepo := sessionrepo.NewRepository(gormDB)
	sessionCore := session.NewCore(sessionRepo, jwtCodec, passwordHasher,
		idGen, rndGen, timeGen, config.GetSessionConfig())

	credentialsRepo := credentialsrepo.NewRepository(gormDB)
	credentialsCore := credentials.NewCore(credentialsRepo, passwordHasher,
		idGen, timeGen, config.GetCredentialsConfig())

	shortCodeRepo := shortcoderepo.NewRepository(redisClient)
	shortCodeCore := shortcode.NewCore(shortCodeRepo, passwordHasher,
		rndGen, timeGen, config.GetShortCodeConfig())

	smtpCfg := config.GetSMTPConfig()
	if !smtpCfg.Sandbox {
		smtpCfg.Password = os.Getenv("SMTP_PASSWORD")
	}
	smtpMailer := mailer.NewSMTPMailer(smtpCfg)

	sessionService := sessionusecase.NewService(sessionCore, credentialsCore, passwordHasher)
	sessionHandler := sessionhttp.NewHandler(sessionService)

	shortCodeService := shortcodeusecase.NewService(shortCodeCore, smtpMailer, credentialsCore, config.GetURLs())
	shortCodeHandler := shortcodehttp.NewHandler(shortCodeService)

	credentialsService := credentialsusecase.NewService(credentialsCore, shortCodeCore, sessionCore)
	credentialsHandler := credentialshttp.NewHandler(credentialsService)

	// Expired refresh tokens are only dead weight, cleaning them up is not
	// part of any request path.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := sessionRepo.DeleteExpired(ctx, timeGen.Now()); err != nil {
					log.Warn().Err(err).Msg("failed to delete expired refresh tokens")
				}
			}
		}
	}()

	router := api.NewRouter(api.Dependencies{
		SessionHandler:     sessionHandler,
		ShortCodeHandler:   shortCodeHandler,
		CredentialsHandler: credentialsHandler,
		ClaimsParser:       sessionService,
		MaxBodySize:        cfg.MaxBodySize,
		Pingers: map[string]api.Pinger{
			"postgres": sqlDB.PingContext,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Msg(fmt.Sprintf("starting server on :%s", cfg.Port))
	if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}

	// Mails are sent outside the request lifecycle, drain them before exiting.
	shortCodeService.Wait()
}
