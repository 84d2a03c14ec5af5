package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload(t *testing.T) {
	v := NewFileValidator(nil)

	tests := []struct {
		name     string
		filename string
		size     int64
		limit    int64
		wantErr  string
	}{
		{
			name:     "csv within limit",
			filename: "campaigns.csv",
			size:     1024,
			limit:    10 << 20,
		},
		{
			name:     "xlsx uppercase extension",
			filename: "Campaigns.XLSX",
			size:     2048,
			limit:    10 << 20,
		},
		{
			name:     "unsupported extension",
			filename: "campaigns.pdf",
			size:     100,
			limit:    10 << 20,
			wantErr:  "unsupported file type",
		},
		{
			name:     "no extension",
			filename: "campaigns",
			size:     100,
			limit:    10 << 20,
			wantErr:  "unsupported file type",
		},
		{
			name:     "excel temp file",
			filename: "~$campaigns.xlsx",
			size:     100,
			limit:    10 << 20,
			wantErr:  "temp file",
		},
		{
			name:     "over the size limit",
			filename: "campaigns.csv",
			size:     11 << 20,
			limit:    10 << 20,
			wantErr:  "limit",
		},
		{
			name:     "zero limit means unlimited",
			filename: "campaigns.csv",
			size:     500 << 20,
			limit:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpload(tt.filename, tt.size, tt.limit)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateInputFile(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()

	path := filepath.Join(dir, "campaigns.csv")
	require.NoError(t, os.WriteFile(path, []byte("Send Time,Campaign Name\n"), 0644))
	assert.NoError(t, v.ValidateInputFile(path))

	assert.Error(t, v.ValidateInputFile(filepath.Join(dir, "missing.csv")))
	assert.Error(t, v.ValidateInputFile(dir), "directories are rejected")

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0644))
	assert.Error(t, v.ValidateInputFile(txt))
}

func TestValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)
	dir := filepath.Join(t.TempDir(), "reports", "nested")

	require.NoError(t, v.ValidateOutputDirectory(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Leftover probe files must not survive validation.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
