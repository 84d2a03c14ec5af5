package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApplication builds a full application against a temp data root. The
// OTel prometheus exporter registers globally, so tests share one instance.
func newTestApplication(t *testing.T) *Application {
	t.Helper()
	dir := t.TempDir()

	t.Setenv("KLV_CONFIG", filepath.Join(dir, "nonexistent.yaml"))
	t.Setenv("KLV_PATHS_DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("KLV_PATHS_UPLOADS_DIR", filepath.Join(dir, "data", "uploads"))
	t.Setenv("KLV_PATHS_REPORTS_DIR", filepath.Join(dir, "data", "reports"))
	t.Setenv("KLV_PATHS_LOGS_DIR", filepath.Join(dir, "logs"))
	t.Setenv("KLV_TRIAL_STATE_FILE", filepath.Join(dir, "data", "trial.json"))
	t.Setenv("KLV_LOGGING_OUTPUT", "stdout")

	application, err := NewApplication()
	require.NoError(t, err)
	return application
}

func TestApplicationRoutes(t *testing.T) {
	application := newTestApplication(t)

	t.Run("health endpoint", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		application.Router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	})

	t.Run("trial status endpoint", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/trial", nil)
		application.Router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "countdown")
	})

	t.Run("report read before any upload", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/reports/daily", nil)
		application.Router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NO_REPORT_SET")
	})

	t.Run("unknown report name", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/reports/quarterly", nil)
		application.Router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "REPORT_NOT_FOUND")
	})

	t.Run("run without dataset", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/reports/run", strings.NewReader(`{}`))
		r.Header.Set("Content-Type", "application/json")
		application.Router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NO_DATASET")
	})

	t.Run("unknown route", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/nonsense", nil)
		application.Router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_FOUND")
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		application.Router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
