package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"klvcli/internal/config"
)

// Manager keeps the on-disk file inventory: archived uploads under the
// uploads directory and exported report CSVs under the reports directory.
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance.
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		paths:  paths,
		logger: logger.With(slog.String("component", "files")),
	}
}

// FileInfo describes one stored file.
type FileInfo struct {
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}

// UploadArchive is an in-progress archived copy of an upload. Commit keeps
// it, Discard removes it; one of the two must be called.
type UploadArchive struct {
	path string
	file *os.File
}

// Writer returns the destination to tee the upload into.
func (a *UploadArchive) Writer() io.Writer {
	return a.file
}

// Path returns the archive's final location.
func (a *UploadArchive) Path() string {
	return a.path
}

// Commit finalizes the archive.
func (a *UploadArchive) Commit() error {
	return a.file.Close()
}

// Discard removes the partial archive after a failed upload.
func (a *UploadArchive) Discard() error {
	a.file.Close()
	return os.Remove(a.path)
}

// NewUploadArchive creates the destination file for an upload copy. The
// stored name keeps the original base name behind a timestamp and a short
// unique prefix, so repeated uploads of the same file never collide.
func (m *Manager) NewUploadArchive(filename string) (*UploadArchive, error) {
	if err := os.MkdirAll(m.paths.UploadsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	base := filepath.Base(filename)
	stamped := fmt.Sprintf("%s_%s_%s",
		time.Now().Format("20060102T150405"),
		uuid.NewString()[:8],
		sanitizeName(base))
	path := m.paths.GetUploadPath(stamped)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload archive: %w", err)
	}

	m.logger.Debug("archiving upload",
		slog.String("original", base),
		slog.String("path", path))

	return &UploadArchive{path: path, file: f}, nil
}

// ListUploads returns the archived uploads, newest first.
func (m *Manager) ListUploads() ([]FileInfo, error) {
	return m.listDir(m.paths.UploadsDir)
}

// ListExports returns the exported report CSVs, newest first.
func (m *Manager) ListExports() ([]FileInfo, error) {
	return m.listDir(m.paths.ReportsDir)
}

func (m *Manager) listDir(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	infos := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, FileInfo{
			Name:       entry.Name(),
			SizeBytes:  fi.Size(),
			ModifiedAt: fi.ModTime(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ModifiedAt.After(infos[j].ModifiedAt)
	})
	return infos, nil
}

// sanitizeName strips path separators and control characters from a client
// supplied filename.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':':
			return '_'
		case r < 0x20:
			return -1
		}
		return r
	}, name)
}
