// Package archive periodically snapshots the record files to a backup
// target, either a local directory or an S3-compatible bucket. Snapshots are
// plain copies of the data files; restoring one is copying the files back.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ashokCh-dev/Academia-Portal/internal/logger"
)

// Target receives snapshot objects keyed by a relative path.
type Target interface {
	Put(ctx context.Context, key string, data []byte) error
}

// Snapshotter copies every regular file in the data directory to the target
// on a fixed interval.
type Snapshotter struct {
	dataDir  string
	target   Target
	interval time.Duration
}

func NewSnapshotter(dataDir string, target Target, interval time.Duration) *Snapshotter {
	return &Snapshotter{dataDir: dataDir, target: target, interval: interval}
}

// Run blocks taking snapshots until ctx is cancelled. A failed snapshot is
// logged and retried on the next tick.
func (s *Snapshotter) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Snapshot(ctx); err != nil {
				logger.Error("snapshot failed: %v", err)
			}
		}
	}
}

// Snapshot uploads one copy of every data file under a timestamped prefix.
func (s *Snapshotter) Snapshot(ctx context.Context) error {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return fmt.Errorf("read data dir: %w", err)
	}

	prefix := time.Now().UTC().Format("20060102T150405Z")
	n := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dataDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		key := prefix + "/" + entry.Name()
		if err := s.target.Put(ctx, key, data); err != nil {
			return fmt.Errorf("put %s: %w", key, err)
		}
		n++
	}

	logger.Info("snapshot %s archived %d files", prefix, n)
	return nil
}
