package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrUnauthorized, ErrForbidden,
		ErrMedia, ErrPersistence, ErrInternal,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("db connection lost")
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: inner}
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "something broke")
	assert.Contains(t, appErr.Error(), "db connection lost")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "item not found"}
	assert.Equal(t, "NOT_FOUND: item not found", appErr.Error())
}

// --- Constructor functions ---

func TestNotFound(t *testing.T) {
	err := NotFound("item", "abc-123")
	require.NotNil(t, err)
	assert.Equal(t, KindNotFound, err.Kind)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Message, "abc-123")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestValidation_JoinsViolations(t *testing.T) {
	err := Validation([]string{"title is required", "location is required"})
	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, "title is required, location is required", err.Message)
	assert.Len(t, err.Fields, 2)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestForbidden(t *testing.T) {
	err := Forbidden("not yours")
	assert.Equal(t, KindForbidden, err.Kind)
	assert.Equal(t, http.StatusForbidden, err.Status)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestMedia_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("upload timeout")
	err := Media(cause)
	assert.Equal(t, KindMedia, err.Kind)
	assert.True(t, errors.Is(err, ErrMedia))
	assert.True(t, errors.Is(err, cause))
	assert.NotContains(t, err.Message, "timeout")
}

func TestPersistence_HidesCause(t *testing.T) {
	err := Persistence(fmt.Errorf("pq: relation items does not exist"))
	assert.Equal(t, KindPersistence, err.Kind)
	assert.Equal(t, "an internal error occurred", err.Message)
	assert.True(t, errors.Is(err, ErrPersistence))
}

// --- KindOf / HTTPStatus ---

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"app error", Forbidden("x"), KindForbidden},
		{"wrapped app error", fmt.Errorf("ctx: %w", NotFound("item", "1")), KindNotFound},
		{"bare sentinel", ErrNotFound, KindNotFound},
		{"wrapped sentinel", fmt.Errorf("get: %w", ErrPersistence), KindPersistence},
		{"plain error", errors.New("boom"), KindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidInput("bad")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(fmt.Errorf("x: %w", ErrForbidden)))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrUnauthorized))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Media(errors.New("x"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unknown")))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "media", KindMedia.String())
	assert.Equal(t, "unexpected", Kind(99).String())
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFoundMessage("Item not found")
	assert.Equal(t, "Item not found", err.Message)
	assert.Equal(t, KindNotFound, KindOf(err))
}
