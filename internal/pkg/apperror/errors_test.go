package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeToHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeValidation:    http.StatusBadRequest,
		ErrCodeForbidden:     http.StatusForbidden,
		ErrCodeInvalidState:  http.StatusConflict,
		ErrCodeDatabaseError: http.StatusServiceUnavailable,
		ErrCodeNotFound:      http.StatusNotFound,
		ErrCodeInternal:      http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, New(code, "x").HTTPStatus, code)
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("submit: %w", Persistence(cause, "не удалось сохранить"))

	assert.True(t, IsPersistence(err))
	assert.False(t, IsValidation(err))
	assert.ErrorIs(t, err, cause)

	assert.True(t, IsInvalidState(ErrAppealAlreadyClosed))
	assert.True(t, IsNotFound(ErrAppealNotFound))
	assert.True(t, IsForbidden(ErrForbidden))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrap(errors.New("boom"), ErrCodeInternal, "сбой")
	assert.Equal(t, "INTERNAL_ERROR: сбой (caused by: boom)", err.Error())
	assert.Equal(t, "VALIDATION_ERROR: плохо", New(ErrCodeValidation, "плохо").Error())
}
