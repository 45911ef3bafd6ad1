package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrAlreadyEnrolled, "You are already enrolled in this course.")
	assert.True(t, errors.Is(err, ErrAlreadyEnrolled))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, http.StatusConflict, err.Status)
}

func TestPersistenceHidesCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Persistence(cause, "create enrollment")

	appErr := FromError(err)
	assert.Equal(t, ErrPersistence.Code, appErr.Code)
	assert.Equal(t, ErrPersistence.Message, appErr.Message)
	assert.ErrorIs(t, err, cause)
}

func TestFromErrorPlain(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Nil(t, FromError(nil))
}
