package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError_UsesTemplate(t *testing.T) {
	err := NewError(ErrUserNotFound)

	assert.Equal(t, ErrUserNotFound, err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Equal(t, "User not found.", err.Message)
}

func TestNewError_ReturnsCopies(t *testing.T) {
	a := NewError(ErrInvalidParams)
	a.Message = "changed"

	assert.Equal(t, "Invalid request parameters.", NewError(ErrInvalidParams).Message)
}

func TestNewError_FormatsDetails(t *testing.T) {
	err := NewError(ErrRoomNameInvalid, 64)
	assert.Equal(t, "Room name must be 1-64 bytes.", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status, "realtime-only codes default to 400")
}

func TestNewError_UnknownCodeFallsBack(t *testing.T) {
	err := NewError(424242)
	assert.Equal(t, ErrUnknown, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestNewError_UnknownHidesCause(t *testing.T) {
	err := NewError(ErrUnknown, fmt.Errorf("db password is hunter2"))
	assert.NotContains(t, err.Message, "hunter2")
}

func TestIs(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", NewError(ErrUserNotFound))

	assert.True(t, errors.Is(wrapped, NewError(ErrUserNotFound)))
	assert.False(t, errors.Is(wrapped, NewError(ErrInvalidParams)))
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	original := NewError(ErrKeywordRequired)
	assert.Same(t, original, From(fmt.Errorf("wrapped: %w", original)))

	converted := From(errors.New("boom"))
	require.NotNil(t, converted)
	assert.Equal(t, ErrUnknown, converted.Code)
}
