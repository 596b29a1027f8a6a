package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindClassification(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("gone")))
	assert.Equal(t, KindValidation, KindOf(Validation("mileage", "must be 0 or greater")))
	assert.Equal(t, KindConflict, KindOf(Conflict("already registered")))
	assert.Equal(t, KindInternal, KindOf(Internal("query failed", errors.New("boom"))))

	// Unclassified errors default to internal.
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", Validation("nickname", "too long"))
	assert.True(t, IsValidation(err))
	assert.Equal(t, "nickname", FieldOf(err))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("error listing bikes", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "", FieldOf(err))
	assert.Equal(t, "INTERNAL_ERROR: error listing bikes", err.Error())
}

func TestErrorMessageIncludesField(t *testing.T) {
	err := Validation("amount", "must be greater than 0")
	assert.Equal(t, "VALIDATION_ERROR: amount: must be greater than 0", err.Error())
}
