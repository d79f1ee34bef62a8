package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"qa-paper-be/internal/apperr"
	"qa-paper-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// Store persists rendered answer documents on disk, one file per artifact id.
// Artifacts outlive their session's TTL until the retention sweep removes
// them, so a downloaded result link keeps working for a while after the
// session itself expires.
type Store interface {
	Save(data []byte, extension string) (string, error)
	Open(id string) ([]byte, error)
	Delete(id string) error
	CleanupExpired(retentionDays int) (int, error)
}

type FileStore struct {
	baseDir string
	log     logger.ILogger
}

func NewFileStore(baseDir string, log logger.ILogger) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &FileStore{baseDir: baseDir, log: log}, nil
}

var _ Store = (*FileStore)(nil)

// Save writes data under a fresh uuid and returns the artifact id
// (uuid plus extension).
func (s *FileStore) Save(data []byte, extension string) (string, error) {
	id := uuid.New().String() + normalizeExtension(extension)
	path, err := s.resolve(id)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact %s: %w", id, err)
	}
	return id, nil
}

func (s *FileStore) Open(id string) ([]byte, error) {
	path, err := s.resolve(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("artifact %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", id, err)
	}
	return data, nil
}

func (s *FileStore) Delete(id string) error {
	path, err := s.resolve(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete artifact %s: %w", id, err)
	}
	return nil
}

// CleanupExpired removes artifacts older than retentionDays and reports how
// many were deleted. Meant to run periodically from the worker process.
func (s *FileStore) CleanupExpired(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, fmt.Errorf("failed to scan artifact directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, entry.Name())); err != nil {
			s.log.Warn("artifact", "failed to remove expired artifact", map[string]interface{}{
				"artifact": entry.Name(),
				"error":    err.Error(),
			})
			continue
		}
		removed++
	}
	return removed, nil
}

// resolve maps an artifact id to its on-disk path, rejecting ids that would
// escape the base directory.
func (s *FileStore) resolve(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("artifact id %q: %w", id, apperr.ErrNotFound)
	}
	return filepath.Join(s.baseDir, id), nil
}

func normalizeExtension(ext string) string {
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}
