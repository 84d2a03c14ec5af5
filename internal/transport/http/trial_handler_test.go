package http

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klvcli/internal/config"
	apierrors "klvcli/internal/errors"
	"klvcli/internal/trial"
)

func newTestTrialHandler(t *testing.T, code string) *TrialHandler {
	t.Helper()
	cfg := config.TrialConfig{
		Duration:  7 * 24 * time.Hour,
		StateFile: filepath.Join(t.TempDir(), "trial.json"),
	}
	if code != "" {
		cfg.ActivationSalt = "pepper"
		cfg.ActivationDigest = trial.DeriveDigest(code, cfg.ActivationSalt)
	}
	manager, err := trial.NewManager(cfg, nil)
	require.NoError(t, err)
	return NewTrialHandler(manager, nil, apierrors.NewErrorHandler(nil))
}

func TestTrialStatus(t *testing.T) {
	h := newTestTrialHandler(t, "")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	h.Routes().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"activated":false`)
	assert.Contains(t, w.Body.String(), "countdown")
}

func TestActivateWithValidCode(t *testing.T) {
	h := newTestTrialHandler(t, "KLV-1234-SECRET")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/activate",
		strings.NewReader(`{"code":"KLV-1234-SECRET"}`))
	r.Header.Set("Content-Type", "application/json")
	h.Routes().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"activated":true`)
}

func TestActivateWithWrongCode(t *testing.T) {
	h := newTestTrialHandler(t, "KLV-1234-SECRET")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/activate",
		strings.NewReader(`{"code":"guess"}`))
	r.Header.Set("Content-Type", "application/json")
	h.Routes().ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ACTIVATION_INVALID")
}

func TestActivateWithoutConfiguredDigest(t *testing.T) {
	h := newTestTrialHandler(t, "")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/activate",
		strings.NewReader(`{"code":"anything"}`))
	r.Header.Set("Content-Type", "application/json")
	h.Routes().ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActivateRequiresCode(t *testing.T) {
	h := newTestTrialHandler(t, "KLV-1234-SECRET")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/activate", strings.NewReader(`{}`))
	r.Header.Set("Content-Type", "application/json")
	h.Routes().ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
