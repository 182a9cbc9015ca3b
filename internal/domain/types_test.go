package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEditionType(t *testing.T) {
	valid := []EditionType{
		EditionTypeUnlimited,
		EditionTypeLimited,
		EditionTypeTimed,
		EditionTypeChallenge,
		EditionTypeContest,
	}
	for _, et := range valid {
		assert.True(t, IsValidEditionType(et), "expected %s to be valid", et)
	}

	assert.False(t, IsValidEditionType(EditionType("")))
	assert.False(t, IsValidEditionType(EditionType("open")))
	assert.False(t, IsValidEditionType(EditionType("Limited")))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("title", "is required")
	assert.Equal(t, "title: is required", err.Error())
	assert.True(t, IsValidationError(err))
	assert.True(t, IsValidationError(errors.Join(errors.New("outer"), err)))
	assert.False(t, IsValidationError(errors.New("plain")))

	bare := NewValidationError("", "missing required card fields")
	assert.Equal(t, "missing required card fields", bare.Error())
}

func TestPaymentError(t *testing.T) {
	cause := errors.New("insufficient funds")
	err := NewPaymentError("primary purchase", cause)

	assert.True(t, IsPaymentError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insufficient funds")

	noCause := NewPaymentError("resale", nil)
	assert.True(t, IsPaymentError(noCause))
	assert.Equal(t, "payment failed: resale", noCause.Error())
}

func TestPolicyViolationErrors(t *testing.T) {
	assert.ErrorIs(t, ErrCreatorCopyNotTradable, ErrPolicyViolation)
	assert.ErrorIs(t, ErrUnlimitedNotTradable, ErrPolicyViolation)
	assert.NotErrorIs(t, ErrNotForSale, ErrPolicyViolation)
}
