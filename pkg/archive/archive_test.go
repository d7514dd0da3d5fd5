package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFSTargetPut(t *testing.T) {
	root := t.TempDir()
	target, err := NewFSTarget(root)
	if err != nil {
		t.Fatalf("NewFSTarget: %v", err)
	}

	if err := target.Put(context.Background(), "snap/students.dat", []byte("payload")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "snap", "students.dat"))
	if err != nil {
		t.Fatalf("read archived file: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("archived content = %q", data)
	}
}

func TestSnapshotCopiesDataFiles(t *testing.T) {
	dataDir := t.TempDir()
	for _, name := range []string{"students.dat", "courses.dat"} {
		if err := os.WriteFile(filepath.Join(dataDir, name), []byte(name), 0o644); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	// Subdirectories are not part of a snapshot.
	if err := os.Mkdir(filepath.Join(dataDir, "badger"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	root := t.TempDir()
	target, err := NewFSTarget(root)
	if err != nil {
		t.Fatalf("NewFSTarget: %v", err)
	}

	snap := NewSnapshotter(dataDir, target, 0)
	if err := snap.Snapshot(context.Background()); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	prefixes, err := os.ReadDir(root)
	if err != nil || len(prefixes) != 1 {
		t.Fatalf("snapshot prefixes = %v, err %v", prefixes, err)
	}
	snapDir := filepath.Join(root, prefixes[0].Name())
	files, err := os.ReadDir(snapDir)
	if err != nil {
		t.Fatalf("read snapshot dir: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("snapshot holds %d files, want 2", len(files))
	}
}
