package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gamefilter/internal/domain/filter"
)

// ScriptRepository keeps the filter script in a plain text file, one
// CRLF-terminated admin command per line.
type ScriptRepository struct {
	Path string
}

// NewScriptRepository returns a repository backed by path.
func NewScriptRepository(path string) *ScriptRepository {
	if path == "" {
		path = "listip.cfg"
	}
	return &ScriptRepository{Path: path}
}

// Load reads the script. A missing file is an empty list.
func (r *ScriptRepository) Load(_ context.Context) ([]string, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", r.Path, err)
	}
	return filter.DecodeScript(data), nil
}

// Save replaces the script atomically.
func (r *ScriptRepository) Save(_ context.Context, lines []string) error {
	if err := r.writeAtomic(filter.EncodeScript(lines)); err != nil {
		return fmt.Errorf("write %s: %w", r.Path, err)
	}
	return nil
}

func (r *ScriptRepository) writeAtomic(data []byte) error {
	dir := filepath.Dir(r.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp := fmt.Sprintf("%s.tmp-%d", r.Path, time.Now().UnixNano())
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, r.Path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
