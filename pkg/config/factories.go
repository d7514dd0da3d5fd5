package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"

	"github.com/ashokCh-dev/Academia-Portal/internal/logger"
	"github.com/ashokCh-dev/Academia-Portal/internal/portal"
	"github.com/ashokCh-dev/Academia-Portal/pkg/archive"
	"github.com/ashokCh-dev/Academia-Portal/pkg/records"
	badgerstore "github.com/ashokCh-dev/Academia-Portal/pkg/store/badger"
	filestore "github.com/ashokCh-dev/Academia-Portal/pkg/store/file"
)

// Record file names inside the data directory. Credentials carry a tighter
// mode than the public record files.
const (
	studentsFile    = "students.dat"
	facultyFile     = "faculty.dat"
	coursesFile     = "courses.dat"
	enrollmentsFile = "enrollments.dat"
	credentialsFile = "credentials.dat"
)

// CreateStores builds the five record stores for the configured backend and
// returns a close function releasing backend resources.
func CreateStores(ctx context.Context, cfg *StorageConfig) (portal.Stores, func() error, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return portal.Stores{}, nil, fmt.Errorf("create data dir: %w", err)
	}

	switch cfg.Backend {
	case "file":
		return createFileStores(cfg), func() error { return nil }, nil
	case "badger":
		return createBadgerStores(cfg)
	default:
		return portal.Stores{}, nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

func createFileStores(cfg *StorageConfig) portal.Stores {
	dir := cfg.DataDir
	logger.Info("file store initialized: dir=%s", dir)
	return portal.Stores{
		Students:    filestore.New[records.Student](filepath.Join(dir, studentsFile), 0o644),
		Faculty:     filestore.New[records.Faculty](filepath.Join(dir, facultyFile), 0o644),
		Courses:     filestore.New[records.Course](filepath.Join(dir, coursesFile), 0o644),
		Enrollments: filestore.New[records.Enrollment](filepath.Join(dir, enrollmentsFile), 0o644),
		Credentials: filestore.New[records.Credential](filepath.Join(dir, credentialsFile), 0o600),
	}
}

func createBadgerStores(cfg *StorageConfig) (portal.Stores, func() error, error) {
	type badgerConfig struct {
		Path     string `mapstructure:"path"`
		InMemory bool   `mapstructure:"in_memory"`
	}

	var storeCfg badgerConfig
	if cfg.Badger != nil {
		if err := mapstructure.Decode(cfg.Badger, &storeCfg); err != nil {
			return portal.Stores{}, nil, fmt.Errorf("failed to decode badger config: %w", err)
		}
	}
	if storeCfg.Path == "" {
		storeCfg.Path = filepath.Join(cfg.DataDir, "badger")
	}

	db, err := badgerstore.Open(storeCfg.Path, storeCfg.InMemory)
	if err != nil {
		return portal.Stores{}, nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	logger.Info("badger store initialized: path=%s, in_memory=%v", storeCfg.Path, storeCfg.InMemory)

	stores := portal.Stores{
		Students:    badgerstore.New[records.Student](db, "students"),
		Faculty:     badgerstore.New[records.Faculty](db, "faculty"),
		Courses:     badgerstore.New[records.Course](db, "courses"),
		Enrollments: badgerstore.New[records.Enrollment](db, "enrollments"),
		Credentials: badgerstore.New[records.Credential](db, "credentials"),
	}
	return stores, db.Close, nil
}

// CreateArchiveTarget builds the snapshot target named by the configuration.
// Returns nil when archiving is disabled.
func CreateArchiveTarget(ctx context.Context, cfg *ArchiveConfig) (archive.Target, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Target {
	case "fs":
		type fsConfig struct {
			Dir string `mapstructure:"dir"`
		}
		var targetCfg fsConfig
		if cfg.FS != nil {
			if err := mapstructure.Decode(cfg.FS, &targetCfg); err != nil {
				return nil, fmt.Errorf("failed to decode fs archive config: %w", err)
			}
		}
		if targetCfg.Dir == "" {
			targetCfg.Dir = "archive"
		}
		return archive.NewFSTarget(targetCfg.Dir)

	case "s3":
		var targetCfg archive.S3Config
		if err := mapstructure.Decode(cfg.S3, &targetCfg); err != nil {
			return nil, fmt.Errorf("failed to decode s3 archive config: %w", err)
		}
		return archive.NewS3Target(ctx, targetCfg)

	default:
		return nil, fmt.Errorf("unknown archive target: %s", cfg.Target)
	}
}
