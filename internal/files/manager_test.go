package files

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klvcli/internal/config"
)

func newTestManager(t *testing.T) (*Manager, *config.Paths) {
	t.Helper()
	dir := t.TempDir()
	paths := &config.Paths{
		DataDir:    dir,
		UploadsDir: filepath.Join(dir, "uploads"),
		ReportsDir: filepath.Join(dir, "reports"),
		LogsDir:    filepath.Join(dir, "logs"),
	}
	return NewManager(paths, nil), paths
}

func TestArchiveUploadCommit(t *testing.T) {
	m, paths := newTestManager(t)

	archive, err := m.NewUploadArchive("campaigns.csv")
	require.NoError(t, err)

	_, err = io.Copy(archive.Writer(), strings.NewReader("Send Time,Campaign Name\n"))
	require.NoError(t, err)
	require.NoError(t, archive.Commit())

	uploads, err := m.ListUploads()
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Contains(t, uploads[0].Name, "campaigns.csv")
	assert.Equal(t, int64(24), uploads[0].SizeBytes)
	assert.Equal(t, paths.UploadsDir, filepath.Dir(archive.Path()))
}

func TestArchiveUploadDiscard(t *testing.T) {
	m, _ := newTestManager(t)

	archive, err := m.NewUploadArchive("campaigns.csv")
	require.NoError(t, err)
	require.NoError(t, archive.Discard())

	uploads, err := m.ListUploads()
	require.NoError(t, err)
	assert.Empty(t, uploads)
}

func TestArchiveNamesNeverCollide(t *testing.T) {
	m, _ := newTestManager(t)

	a, err := m.NewUploadArchive("campaigns.csv")
	require.NoError(t, err)
	b, err := m.NewUploadArchive("campaigns.csv")
	require.NoError(t, err)

	assert.NotEqual(t, a.Path(), b.Path())
	require.NoError(t, a.Commit())
	require.NoError(t, b.Commit())
}

func TestSanitizeName(t *testing.T) {
	m, _ := newTestManager(t)

	archive, err := m.NewUploadArchive("../../etc/evil.csv")
	require.NoError(t, err)
	require.NoError(t, archive.Commit())

	// The archive stays inside the uploads directory.
	rel, err := filepath.Rel(m.paths.UploadsDir, archive.Path())
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(rel, ".."))
}

func TestListExportsEmptyAndMissing(t *testing.T) {
	m, paths := newTestManager(t)

	exports, err := m.ListExports()
	require.NoError(t, err)
	assert.Empty(t, exports, "missing directory reads as empty")

	require.NoError(t, os.MkdirAll(paths.ReportsDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(paths.ReportsDir, "daily_data.csv"), []byte("x"), 0644))

	exports, err = m.ListExports()
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, "daily_data.csv", exports[0].Name)
}
