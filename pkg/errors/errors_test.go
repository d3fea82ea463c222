package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrNotFound, "student not found")
	assert.Equal(t, "student not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestFromErrorWrapsPlainErrors(t *testing.T) {
	appErr := FromError(fmt.Errorf("disk full"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.EqualError(t, appErr.Unwrap(), "disk full")

	wrapped := fmt.Errorf("outer: %w", Clone(ErrValidation, "bad month"))
	assert.Equal(t, ErrValidation.Code, FromError(wrapped).Code)
	assert.Nil(t, FromError(nil))
}
