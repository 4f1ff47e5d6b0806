package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PgExecer is the subset of pgxpool.Pool needed to apply migrations.
// Kept as a local interface so store packages can depend on migrations
// without an import cycle.
type PgExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// RunPostgres applies all embedded PostgreSQL migrations in lexical order.
// Migrations are expected to be idempotent.
func RunPostgres(ctx context.Context, exec PgExecer) error {
	files, err := listSQLFiles(PostgresFS, "postgres")
	if err != nil {
		return fmt.Errorf("read embedded postgres migrations: %w", err)
	}

	for _, file := range files {
		sql, err := readSQLFile(PostgresFS, "postgres/"+file)
		if err != nil {
			return err
		}
		if sql == "" {
			continue
		}
		if _, err := exec.Exec(ctx, sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}

	return nil
}
