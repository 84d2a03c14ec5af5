package errors

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorImplementsError(t *testing.T) {
	err := New(http.StatusNotFound, "NOT_FOUND", "thing not found")
	assert.Equal(t, "thing not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "NOT_FOUND", err.ErrorCode)
}

func TestErrValidationDetails(t *testing.T) {
	err := ErrValidation("from", "must be an ISO date")
	require.NotNil(t, err.Details)
	detail, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "from", detail.Field)
	assert.Equal(t, "must be an ISO date", detail.Message)
}

func TestUploadFailedCarriesCause(t *testing.T) {
	err := UploadFailed(fmt.Errorf("failed to read csv header: unexpected EOF"))
	assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode)
	assert.Contains(t, err.Details, "unexpected EOF")
}

func TestHandleErrorRendersAPIError(t *testing.T) {
	h := NewErrorHandler(nil)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/reports/daily", nil)

	h.HandleError(w, r, ErrNoDataset)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NO_DATASET")
}

func TestHandleErrorWrapsPlainError(t *testing.T) {
	h := NewErrorHandler(nil)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	h.HandleError(w, r, fmt.Errorf("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
}
