package runstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/theory-engine/internal/models"
)

const (
	artifactFileName  = "artifact.json"
	microRowsFileName = "micro_rows.csv"
)

// FileStore keeps each run in its own directory under a root path.
type FileStore struct {
	root string
	log  *logrus.Entry
}

// NewFileStore creates the root directory if needed.
func NewFileStore(root string, log *logrus.Entry) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("run store root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run store root: %w", err)
	}
	return &FileStore{root: root, log: log}, nil
}

// SaveArtifact writes the artifact JSON exactly once per run id.
func (s *FileStore) SaveArtifact(ctx context.Context, runID string, data []byte) error {
	if runID == "" {
		return models.ErrInvalidID
	}
	dir := filepath.Join(s.root, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}
	path := filepath.Join(dir, artifactFileName)

	// O_EXCL is the write-once guarantee.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return models.ErrRunExists
		}
		return fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	s.log.WithFields(logrus.Fields{"run_id": runID, "bytes": len(data)}).Debug("Persisted run artifact")
	return nil
}

// LoadArtifact returns models.ErrRunNotFound for unknown run ids.
func (s *FileStore) LoadArtifact(ctx context.Context, runID string) ([]byte, error) {
	if runID == "" {
		return nil, models.ErrInvalidID
	}
	data, err := os.ReadFile(filepath.Join(s.root, runID, artifactFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}

// ListRuns returns run ids sorted ascending.
func (s *FileStore) ListRuns(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list run store: %w", err)
	}
	runs := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, entry.Name(), artifactFileName)); err == nil {
			runs = append(runs, entry.Name())
		}
	}
	sort.Strings(runs)
	return runs, nil
}

// SaveMicroRows writes the micro-row CSV once and returns its path.
func (s *FileStore) SaveMicroRows(ctx context.Context, runID string, data []byte) (string, error) {
	if runID == "" {
		return "", models.ErrInvalidID
	}
	dir := filepath.Join(s.root, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}
	path := filepath.Join(dir, microRowsFileName)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return "", models.ErrRunExists
		}
		return "", fmt.Errorf("failed to create micro-row file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("failed to write micro-rows: %w", err)
	}
	return path, nil
}

func (s *FileStore) LoadMicroRows(ctx context.Context, runID string) ([]byte, error) {
	if runID == "" {
		return nil, models.ErrInvalidID
	}
	data, err := os.ReadFile(filepath.Join(s.root, runID, microRowsFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to read micro-rows: %w", err)
	}
	return data, nil
}
