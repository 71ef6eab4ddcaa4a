package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("Customer", "id", 42)
	assert.Equal(t, "Customer not found with id : '42'", err.Error())
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := InvalidCoupon("Invalid or expired coupon code: %s", "NOPE")
	wrapped := fmt.Errorf("resolve discount: %w", base)

	assert.True(t, Is(wrapped, KindInvalidCoupon))
	assert.False(t, Is(wrapped, KindInvalidOrder))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestFromLookup(t *testing.T) {
	assert.NoError(t, FromLookup(nil, "Order", "id", "x"))

	err := FromLookup(gorm.ErrRecordNotFound, "Order", "id", "abc")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "Order not found with id : 'abc'", err.Error())

	dbErr := errors.New("connection reset")
	err = FromLookup(dbErr, "Order", "id", "abc")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.ErrorIs(t, err, dbErr)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("stale row")
	err := Wrap(KindConflict, cause, "cart %d was modified concurrently", 7)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "cart 7 was modified concurrently", err.Error())
	assert.Equal(t, "Conflict", err.Kind.String())
}
