package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths centralizes every directory the application touches. All path
// construction goes through these helpers so relocating the data directory is
// a single-field change.
type Paths struct {
	DataDir    string
	UploadsDir string
	ReportsDir string
	LogsDir    string
}

// DefaultPaths returns paths rooted at the working directory.
func DefaultPaths() *Paths {
	return &Paths{
		DataDir:    "data",
		UploadsDir: filepath.Join("data", "uploads"),
		ReportsDir: filepath.Join("data", "reports"),
		LogsDir:    "logs",
	}
}

// GetReportPath returns the full path of an exported report file.
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetUploadPath returns the full path of a stored upload.
func (p *Paths) GetUploadPath(filename string) string {
	return filepath.Join(p.UploadsDir, filename)
}

// GetLogPath returns the full path of a log file.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// EnsureDirectories creates every configured directory that does not exist.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.UploadsDir, p.ReportsDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
