// Package repomanager vends repository implementations for a database
// backend and owns its schema migrations (goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}

// dbOpen is a seam for tests.
var dbOpen = dbx.Open

// Open picks the backend from the DSN, opens a verified pool and returns the
// matching manager. postgres:// and postgresql:// select PostgreSQL; sqlite:,
// file: and :memory: select SQLite.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		db, err := dbOpen(ctx, "pgx", dsn)
		if err != nil {
			return nil, nil, err
		}
		return db, NewPostgresRepositoryManager(), nil

	case strings.HasPrefix(dsn, "sqlite:"), strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		db, err := dbOpen(ctx, "sqlite", strings.TrimPrefix(dsn, "sqlite:"))
		if err != nil {
			return nil, nil, err
		}
		if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
			// every pooled connection would otherwise see its own empty database
			db.SetMaxOpenConns(1)
		}
		return db, NewSQLiteRepositoryManager(), nil
	}
	return nil, nil, fmt.Errorf("unsupported database dsn scheme: %q", redact(dsn))
}

// redact keeps the scheme only, DSNs may carry credentials.
func redact(dsn string) string {
	if i := strings.Index(dsn, ":"); i >= 0 {
		return dsn[:i+1] + "..."
	}
	return "..."
}
