package controller

import (
	"errors"
	"net/http"
	"testing"

	"breaktime-service/src/models"

	"github.com/stretchr/testify/assert"
)

func TestTranslateLifecycleError(t *testing.T) {
	resp := translateLifecycleError(&models.AlreadyOnBreakError{ActiveTypeCode: "B", ActiveTypeName: "Break"}, "/api/breaks/start")
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, "Already On Break", resp.Title)
	assert.Contains(t, resp.Detail, "Break")

	resp = translateLifecycleError(&models.TypeMismatchError{RequestedCode: "W", ActiveCode: "B", ActiveName: "Break"}, "/api/breaks/end")
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, "Break Type Mismatch", resp.Title)

	resp = translateLifecycleError(models.ErrNoActiveBreak, "/api/breaks/end")
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, "No Active Break", resp.Title)

	resp = translateLifecycleError(models.ErrReasonRequired, "/api/breaks/start")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)

	resp = translateLifecycleError(models.ErrUnknownBreakType, "/api/breaks/start")
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = translateLifecycleError(errors.New("pq: connection reset"), "/api/breaks/start")
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	// Store failures must not leak driver details to callers.
	assert.NotContains(t, resp.Detail, "pq:")
}
