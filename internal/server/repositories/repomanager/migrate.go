package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// gooseUp is a seam for testing the goose provider.
var gooseUp = func(ctx context.Context, dialect goose.Dialect, db *sql.DB, fsys fs.FS) error {
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}

func runMigrations(ctx context.Context, dialect goose.Dialect, db *sql.DB, fsys fs.FS) error {
	if err := gooseUp(ctx, dialect, db, fsys); err != nil {
		return fmt.Errorf("migrations (%s): %w", dialect, err)
	}
	return nil
}
