package leveldb

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gamefilter/internal/domain/filter"

	"github.com/syndtr/goleveldb/leveldb"
)

var (
	scriptKey  = []byte("filter:script")
	savedAtKey = []byte("filter:saved_at")
)

// ScriptRepository stores the filter script as a single LevelDB value.
type ScriptRepository struct {
	db *leveldb.DB
}

// NewScriptRepository opens (or creates) a LevelDB database at path.
func NewScriptRepository(path string) (*ScriptRepository, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("leveldb filter store path required")
	}
	db, err := leveldb.OpenFile(filepath.Clean(trimmed), nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb filter store: %w", err)
	}
	return &ScriptRepository{db: db}, nil
}

// Close releases the underlying LevelDB resources.
func (r *ScriptRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *ScriptRepository) Load(_ context.Context) ([]string, error) {
	data, err := r.db.Get(scriptKey, nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("load filter script: %w", err)
	}
	return filter.DecodeScript(data), nil
}

func (r *ScriptRepository) Save(_ context.Context, lines []string) error {
	batch := new(leveldb.Batch)
	batch.Put(scriptKey, filter.EncodeScript(lines))
	batch.Put(savedAtKey, encodeUnixNano(time.Now().UnixNano()))
	if err := r.db.Write(batch, nil); err != nil {
		return fmt.Errorf("save filter script: %w", err)
	}
	return nil
}

// SavedAt reports when the script was last written.
func (r *ScriptRepository) SavedAt() (time.Time, bool, error) {
	v, err := r.db.Get(savedAtKey, nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return time.Time{}, false, nil
	case err != nil:
		return time.Time{}, false, fmt.Errorf("load saved_at: %w", err)
	case len(v) != 8:
		return time.Time{}, false, fmt.Errorf("corrupt saved_at value")
	}
	return time.Unix(0, int64(binary.BigEndian.Uint64(v))), true, nil
}

func encodeUnixNano(n int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return buf
}
