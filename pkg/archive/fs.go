package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FSTarget stores snapshots under a local directory.
type FSTarget struct {
	root string
}

func NewFSTarget(root string) (*FSTarget, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &FSTarget{root: root}, nil
}

func (t *FSTarget) Put(ctx context.Context, key string, data []byte) error {
	path := filepath.Join(t.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
