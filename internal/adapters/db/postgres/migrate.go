package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// migrationLockKey guards schema changes across server instances.
const migrationLockKey = 42

type migration struct {
	version int
	path    string
}

// RunMigrations applies the *.sql files in dir whose numeric prefix (the part
// before the first underscore) is not yet recorded in schema_migrations.
// Files run in version order, each in its own transaction.
func RunMigrations(ctx context.Context, db *sql.DB, dir string) error {
	if _, err := db.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, migrationLockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer db.ExecContext(ctx, `SELECT pg_advisory_unlock($1)`, migrationLockKey)

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}
	pending, err := listMigrations(dir)
	if err != nil {
		return err
	}

	for _, m := range pending {
		if applied[m.version] {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return err
		}
		log.Info().Int("version", m.version).Str("file", filepath.Base(m.path)).Msg("migration applied")
	}
	return nil
}

// appliedVersions reads schema_migrations. A missing table means nothing
// has run yet; the first migration creates it.
func appliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	applied := map[int]bool{}
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return applied, nil
	}
	defer rows.Close()
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func listMigrations(dir string) ([]migration, error) {
	var out []migration
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".sql") {
			return nil
		}
		prefix, _, _ := strings.Cut(d.Name(), "_")
		version, err := strconv.Atoi(strings.TrimLeft(prefix, "0"))
		if err != nil {
			log.Warn().Str("file", d.Name()).Msg("skipping migration without numeric prefix")
			return nil
		}
		out = append(out, migration{version: version, path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func apply(ctx context.Context, db *sql.DB, m migration) error {
	base := filepath.Base(m.path)
	sqlBytes, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", base, err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err = tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		tx.Rollback()
		return fmt.Errorf("exec migration %s: %w", base, err)
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.version); err != nil {
		tx.Rollback()
		return fmt.Errorf("record migration %s: %w", base, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", base, err)
	}
	return nil
}
