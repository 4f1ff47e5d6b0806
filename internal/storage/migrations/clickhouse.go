package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// ChExecer is the subset of the ClickHouse driver connection needed to
// apply migrations.
type ChExecer interface {
	Exec(ctx context.Context, query string, args ...any) error
}

// RunClickhouse applies all embedded ClickHouse migrations in lexical order.
// Statements are split on ";" because the native protocol executes one
// statement per call.
func RunClickhouse(ctx context.Context, exec ChExecer) error {
	files, err := listSQLFiles(ClickhouseFS, "clickhouse")
	if err != nil {
		return fmt.Errorf("read embedded clickhouse migrations: %w", err)
	}

	for _, file := range files {
		sql, err := readSQLFile(ClickhouseFS, "clickhouse/"+file)
		if err != nil {
			return err
		}

		for _, stmt := range strings.Split(sql, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if err := exec.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", file, err)
			}
		}
	}

	return nil
}

// listSQLFiles returns sorted .sql file names in the embedded directory.
func listSQLFiles(fsys embed.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// readSQLFile reads an embedded SQL file, trimmed.
func readSQLFile(fsys embed.FS, path string) (string, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return "", fmt.Errorf("read migration %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
