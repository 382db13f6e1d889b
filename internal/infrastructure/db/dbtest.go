//go:build e2e

package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/a-novel/service-authentication/internal/migrations"
	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultUser     = "postgres"
	defaultPassword = "postgres"
	defaultDB       = "postgres"
)

type TestDB struct {
	Container tc.Container
	Host      string
	Port      string
	User      string
	Password  string
}

func StartPostgres() (td *TestDB, cleanup func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     defaultUser,
				"POSTGRES_PASSWORD": defaultPassword,
				"POSTGRES_DB":       defaultDB,
			},
			WaitingFor: wait.ForSQL(nat.Port("5432/tcp"), "pgx",
				func(host string, port nat.Port) string {
					return fmt.Sprintf(
						"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable timezone=UTC",
						host, port.Port(), defaultUser, defaultPassword, defaultDB,
					)
				},
			).WithStartupTimeout(60 * time.Second).
				WithPollInterval(200 * time.Millisecond).
				WithQuery("SELECT 1"),
		},
		Started: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to start postgres container: %v", err))
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(context.Background()) //nolint:errcheck
		panic(fmt.Sprintf("get container host: %v", err))
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = container.Terminate(context.Background()) //nolint:errcheck
		panic(fmt.Sprintf("get mapped port: %v", err))
	}

	td = &TestDB{
		Container: container,
		Host:      host,
		Port:      port.Port(),
		User:      defaultUser,
		Password:  defaultPassword,
	}

	cleanup = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = container.Terminate(ctx) //nolint:errcheck
	}

	return td, cleanup
}

// CreateIsolatedDB provisions a throwaway database with the full schema,
// so tests never share state.
func (td *TestDB) CreateIsolatedDB(t *testing.T) (*gorm.DB, *sql.DB, func()) {
	t.Helper()

	admin, err := sql.Open("pgx", td.dsn(defaultDB))
	if err != nil {
		t.Fatalf("sql open (admin): %v", err)
	}
	defer admin.Close()

	dbName := fmt.Sprintf("test_%s", uuid.New().String())

	if _, err = admin.Exec(fmt.Sprintf(`CREATE DATABASE "%s"`, dbName)); err != nil {
		t.Fatalf("fail to create database %s: %v", dbName, err)
	}

	sqlDB, err := sql.Open("pgx", td.dsn(dbName))
	if err != nil {
		t.Fatalf("sql open (test db): %v", err)
	}

	if err = migrations.Up(t.Context(), sqlDB); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(2 * time.Minute)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}

	once := &sync.Once{}
	cleanup := func() {
		once.Do(func() {
			_, _ = admin.Exec(fmt.Sprintf(`DROP DATABASE IF EXISTS "%s"`, dbName)) //nolint:errcheck
			_ = sqlDB.Close()
		})
	}
	return gdb, sqlDB, cleanup
}

func (td *TestDB) DSN(dbname string) string {
	return td.dsn(dbname)
}

func (td *TestDB) dsn(dbname string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable timezone=UTC",
		td.Host, td.Port, td.User, td.Password, dbname)
}

type TestRedis struct {
	Container tc.Container
	Addr      string
}

func StartRedis() (tr *TestRedis, cleanup func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForListeningPort("6379/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to start redis container: %v", err))
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(context.Background()) //nolint:errcheck
		panic(fmt.Sprintf("get container host: %v", err))
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		_ = container.Terminate(context.Background()) //nolint:errcheck
		panic(fmt.Sprintf("get mapped port: %v", err))
	}

	tr = &TestRedis{
		Container: container,
		Addr:      fmt.Sprintf("%s:%s", host, port.Port()),
	}

	cleanup = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = container.Terminate(ctx) //nolint:errcheck
	}

	return tr, cleanup
}

// TestMailpit runs a catch-all SMTP server with an HTTP API, used as the
// delivery oracle in end to end tests.
type TestMailpit struct {
	Container tc.Container
	SMTPAddr  string
	APIURL    string
}

func StartMailpit() (tm *TestMailpit, cleanup func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "axllent/mailpit:latest",
			ExposedPorts: []string{"1025/tcp", "8025/tcp"},
			WaitingFor: wait.ForHTTP("/livez").WithPort("8025/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to start mailpit container: %v", err))
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(context.Background()) //nolint:errcheck
		panic(fmt.Sprintf("get container host: %v", err))
	}
	smtpPort, err := container.MappedPort(ctx, "1025/tcp")
	if err != nil {
		_ = container.Terminate(context.Background()) //nolint:errcheck
		panic(fmt.Sprintf("get mapped smtp port: %v", err))
	}
	apiPort, err := container.MappedPort(ctx, "8025/tcp")
	if err != nil {
		_ = container.Terminate(context.Background()) //nolint:errcheck
		panic(fmt.Sprintf("get mapped api port: %v", err))
	}

	tm = &TestMailpit{
		Container: container,
		SMTPAddr:  fmt.Sprintf("%s:%s", host, smtpPort.Port()),
		APIURL:    fmt.Sprintf("http://%s:%s", host, apiPort.Port()),
	}

	cleanup = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = container.Terminate(ctx) //nolint:errcheck
	}

	return tm, cleanup
}
