package config

import (
	"fmt"

	"github.com/a-novel/service-authentication/internal/app/credentials"
	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/a-novel/service-authentication/internal/app/shortcode"
	shortcodeusecase "github.com/a-novel/service-authentication/internal/app/shortcode/usecase"
	"github.com/a-novel/service-authentication/internal/infrastructure/mailer"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"port" json:"port"`
	DatabaseDSN string   `mapstructure:"database_dsn" json:"database_dsn"`
	RedisAddr   string   `mapstructure:"redis_addr" json:"redis_addr"`
	RedisDB     int      `mapstructure:"redis_db" json:"redis_db"`
	LogLevel    LogLevel `mapstructure:"log_level" json:"log_level"`
	MaxBodySize int64    `mapstructure:"max_body_size" json:"max_body_size"`
}

func LoadConfig() Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("config")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	var Cfg Config
	if err := viper.Unmarshal(&Cfg); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	return Cfg
}

func GetSessionConfig() session.Config {
	var sessionCfg session.Config
	if err := viper.Sub("session").Unmarshal(&sessionCfg); err != nil {
		panic(fmt.Errorf("fatal error session config: %w", err))
	}

	return sessionCfg
}

func GetCredentialsConfig() credentials.Config {
	var credentialsCfg credentials.Config
	if err := viper.Sub("credentials").Unmarshal(&credentialsCfg); err != nil {
		panic(fmt.Errorf("fatal error credentials config: %w", err))
	}

	return credentialsCfg
}

func GetShortCodeConfig() shortcode.Config {
	var shortCodeCfg shortcode.Config
	if err := viper.Sub("short_code").Unmarshal(&shortCodeCfg); err != nil {
		panic(fmt.Errorf("fatal error short code config: %w", err))
	}

	return shortCodeCfg
}

func GetSMTPConfig() mailer.Config {
	var smtpCfg mailer.Config
	if err := viper.Sub("smtp").Unmarshal(&smtpCfg); err != nil {
		panic(fmt.Errorf("fatal error smtp config: %w", err))
	}

	return smtpCfg
}

func GetURLs() shortcodeusecase.URLs {
	var urls shortcodeusecase.URLs
	if err := viper.Sub("urls").Unmarshal(&urls); err != nil {
		panic(fmt.Errorf("fatal error urls config: %w", err))
	}

	return urls
}

type LogLevel string

const (
	logLevelDebug LogLevel = "debug"
	logLevelInfo  LogLevel = "info"
	logLevelWarn  LogLevel = "warn"
	logLevelError LogLevel = "error"
)

func (l LogLevel) ZeroLog() zerolog.Level {
	switch l {
	case logLevelDebug:
		return zerolog.DebugLevel
	case logLevelInfo:
		return zerolog.InfoLevel
	case logLevelWarn:
		return zerolog.WarnLevel
	case logLevelError:
		return zerolog.ErrorLevel

	default:
		return zerolog.InfoLevel
	}
}
