package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Extensions accepted for campaign exports, both on disk and over HTTP.
var allowedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// FileValidator checks campaign export files before they enter the pipeline.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator.
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateUpload checks an HTTP upload's declared filename and size without
// touching its content. limit <= 0 means unlimited.
func (v *FileValidator) ValidateUpload(filename string, size, limit int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		v.logger.Warn("upload with unsupported extension rejected",
			slog.String("filename", filename),
			slog.String("extension", ext))
		return fmt.Errorf("unsupported file type %q, expected .csv or .xlsx", ext)
	}
	if strings.HasPrefix(filepath.Base(filename), "~$") {
		return fmt.Errorf("%s is a spreadsheet temp file", filename)
	}
	if limit > 0 && size > limit {
		v.logger.Warn("oversized upload rejected",
			slog.String("filename", filename),
			slog.Int64("size", size),
			slog.Int64("limit", limit))
		return fmt.Errorf("file is %d bytes, limit is %d", size, limit)
	}
	return nil
}

// ValidateInputFile checks that a local campaign export exists, is readable,
// and carries a supported extension.
func (v *FileValidator) ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("input file does not exist",
			slog.String("file", path))
		return fmt.Errorf("input file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	if err := v.ValidateUpload(path, info.Size(), 0); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		v.logger.Error("input file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("input file %s is not readable: %w", path, err)
	}
	f.Close()

	v.logger.Debug("input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures the report output directory exists and is
// writable, creating it if needed.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	f.Close()
	os.Remove(testFile)

	return nil
}
