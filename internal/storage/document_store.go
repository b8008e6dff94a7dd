package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// DocumentStore persists uploaded evidence documents. Paths handed back by
// DerivePath are relative to the store root and safe to keep in the DB.
type DocumentStore interface {
	Save(path string, data []byte) error
	Remove(paths ...string) error
	Resolve(path string) (string, error)
}

// DiskStore keeps documents as flat files under RootDir.
type DiskStore struct {
	RootDir string
}

func NewDiskStore(rootDir string) *DiskStore {
	return &DiskStore{RootDir: filepath.Clean(rootDir)}
}

// DerivePath builds a collision-free storage path for a fresh upload:
// org_<id>_<unixnano>_<rand>_<sanitized-name>.pdf. The original filename is
// reduced to its base and slugged, so traversal sequences and non-portable
// characters never reach the filesystem.
func DerivePath(organizationID int64, originalName string, now time.Time) string {
	name := filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = slug.Make(name)
	if name == "" {
		name = "document"
	}
	return fmt.Sprintf("org_%d_%d_%s_%s.pdf",
		organizationID, now.UnixNano(), uuid.NewString()[:8], name)
}

func (s *DiskStore) Save(path string, data []byte) error {
	if err := os.MkdirAll(s.RootDir, 0o755); err != nil {
		return fmt.Errorf("create files dir: %w", err)
	}
	abs, err := s.Resolve(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func (s *DiskStore) Remove(paths ...string) error {
	var firstErr error
	for _, p := range paths {
		abs, err := s.Resolve(p)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove document: %w", err)
			}
		}
	}
	return firstErr
}

// Resolve maps a stored path to an absolute one, refusing anything that
// would escape the root.
func (s *DiskStore) Resolve(path string) (string, error) {
	rel := strings.TrimSpace(path)
	rel = strings.ReplaceAll(rel, "\\", "/")
	rel = strings.TrimPrefix(rel, "/")
	rel = filepath.Base(rel) // no nesting under the root
	if rel == "" || rel == "." {
		return "", fmt.Errorf("bad document path %q", path)
	}
	return filepath.Join(s.RootDir, rel), nil
}
