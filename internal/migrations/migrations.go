// Package migrations embeds the database schema and applies it with
// goose. Migrations run at server startup.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

func Up(ctx context.Context, db *sql.DB) error {
	sqlFS, err := fs.Sub(migrationsFS, "sql")
	if err != nil {
		return fmt.Errorf("migrations.Up: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, sqlFS)
	if err != nil {
		return fmt.Errorf("migrations.Up: %w", err)
	}

	if _, err = provider.Up(ctx); err != nil {
		return fmt.Errorf("migrations.Up: %w", err)
	}

	return nil
}
