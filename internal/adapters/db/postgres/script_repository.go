package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// DefaultScriptName names the row holding the server's filter list.
const DefaultScriptName = "listip"

// ScriptRepository is a Postgres implementation of filter.ScriptRepository.
// Each named script is one row; lines are kept in a text[] column.
type ScriptRepository struct {
	db    *sql.DB
	name  string
	locks *LockManager
}

// NewScriptRepository constructs a ScriptRepository. locks may be nil when
// only one server writes the script.
func NewScriptRepository(db *sql.DB, name string, locks *LockManager) *ScriptRepository {
	if name == "" {
		name = DefaultScriptName
	}
	return &ScriptRepository{db: db, name: name, locks: locks}
}

func (r *ScriptRepository) Load(ctx context.Context) ([]string, error) {
	var lines []string
	err := r.db.QueryRowContext(ctx, `SELECT lines FROM filter_scripts WHERE name=$1`, r.name).Scan(pq.Array(&lines))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load filter script %s: %w", r.name, err)
	}
	return lines, nil
}

func (r *ScriptRepository) Save(ctx context.Context, lines []string) error {
	if r.locks != nil {
		release, err := r.locks.Acquire(ctx, r.name)
		if err != nil {
			return err
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				log.Warn().Err(err).Str("script", r.name).Msg("advisory unlock failed")
			}
		}()
	}
	if lines == nil {
		lines = []string{}
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO filter_scripts (name, lines, revision, updated_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (name) DO UPDATE SET lines=EXCLUDED.lines, revision=filter_scripts.revision+1, updated_at=NOW()`,
		r.name, pq.Array(lines))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("save filter script %s (code %s): %w", r.name, pqErr.Code, err)
		}
		return fmt.Errorf("save filter script %s: %w", r.name, err)
	}
	return nil
}
