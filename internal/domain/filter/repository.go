package filter

import "context"

// ScriptRepository persists the serialized filter list. Save replaces the
// whole script; Load returns nil lines when nothing was saved yet.
type ScriptRepository interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, lines []string) error
}
