package memory

import (
	"context"
	"sync"
)

// ScriptRepository holds the filter script in memory. Nothing survives a
// restart; it serves tests and FILTER_STORE=memory.
type ScriptRepository struct {
	mu    sync.RWMutex
	lines []string
}

// NewScriptRepository creates an empty in-memory repository.
func NewScriptRepository(lines ...string) *ScriptRepository {
	return &ScriptRepository{lines: append([]string(nil), lines...)}
}

func (r *ScriptRepository) Load(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.lines...), nil
}

func (r *ScriptRepository) Save(_ context.Context, lines []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append([]string(nil), lines...)
	return nil
}
