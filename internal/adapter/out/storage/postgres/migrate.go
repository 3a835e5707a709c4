package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"barefoot/pkg/logger"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = "schema_migrations"

// Migrate applies every embedded migration not yet recorded in schema_migrations.
// Each file runs in its own transaction.
func Migrate(ctx context.Context, db trmpgx.Tr) error {
	return migrate(ctx, db, migrationsFS)
}

func migrate(ctx context.Context, db trmpgx.Tr, fsys fs.FS) error {
	log := logger.FromContext(ctx)

	if _, err := db.Exec(ctx, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (version TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT now())",
		migrationsTable,
	)); err != nil {
		return fmt.Errorf("creating %s: %w", migrationsTable, err)
	}

	names, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		version := strings.TrimSuffix(name[strings.LastIndex(name, "/")+1:], ".sql")

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}

		applied, err := applyMigration(ctx, db, version, string(body))
		if err != nil {
			return fmt.Errorf("migration %s: %w", version, err)
		}
		if applied {
			log.Info("migration applied", "version", version)
		}
	}
	return nil
}

func applyMigration(ctx context.Context, db trmpgx.Tr, version, body string) (bool, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query, args, err := sq.
		Insert(migrationsTable).
		Columns("version").
		Values(version).
		Suffix("ON CONFLICT DO NOTHING RETURNING version").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	var recorded string
	if err := tx.QueryRow(ctx, query, args...).Scan(&recorded); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("record version: %w", err)
	}

	if _, err := tx.Exec(ctx, body); err != nil {
		return false, fmt.Errorf("exec: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}
