package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/relay/internal/errors"
)

func TestHandleErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		err        error
		statusCode int
		errorCode  string
	}{
		{"NotFound", apperrors.Wrap(apperrors.ErrNotFound, "source not found"), http.StatusNotFound, "not_found"},
		{"Conflict", apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{"InvalidInput", apperrors.Wrap(apperrors.ErrInvalidInput, "name: cannot be blank"),
			http.StatusUnprocessableEntity, "invalid_input"},
		{"AuthenticationFailed", apperrors.Wrap(apperrors.ErrAuthenticationFailed, "invalid source key"),
			http.StatusUnauthorized, "unauthorized"},
		{"Forbidden", apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"TooManyRequests", apperrors.ErrTooManyRequests, http.StatusTooManyRequests, "rate_limit_exceeded"},
		{"StrandedClaim", apperrors.Wrap(apperrors.ErrStrandedClaim, "claim no longer held"),
			http.StatusLocked, "locked"},
		{"DispatchFailedIsInternal", apperrors.ErrDispatchFailed, http.StatusInternalServerError, "internal_error"},
		{"Unknown", errors.New("driver: bad connection"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			HandleErrorGin(c, tt.err, logger)

			assert.Equal(t, tt.statusCode, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.errorCode, body.Error)
			assert.NotContains(t, body.Message, "driver")
		})
	}
}

func TestHandleErrorGin_NilErrorWritesNothing(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleErrorGin(c, nil, nil)

	assert.Empty(t, w.Body.String())
}

func TestHandleValidationErrorGin(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleValidationErrorGin(c, errors.New("limit: must be between 1 and 100"), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}
