package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/ordersystem/apperrors"
)

func TestPercentageRoundsHalfUp(t *testing.T) {
	assert.Equal(t, "2.60", FormatMoney(Percentage(decimal.RequireFromString("25.98"), 10)))
	assert.Equal(t, "0.13", FormatMoney(Percentage(decimal.RequireFromString("1.25"), 10)))
	assert.Equal(t, "20.00", FormatMoney(Percentage(decimal.NewFromInt(100), 20)))
}

func TestMinMoney(t *testing.T) {
	a := decimal.NewFromInt(15)
	b := decimal.RequireFromString("20.00")
	assert.True(t, MinMoney(a, b).Equal(a))
	assert.True(t, MinMoney(b, a).Equal(a))
}

func TestHashPhoneNumberIgnoresFormatting(t *testing.T) {
	assert.Equal(t, HashPhoneNumber("+91 98765-43210"), HashPhoneNumber("919876543210"))
	assert.NotEqual(t, HashPhoneNumber("919876543210"), HashPhoneNumber("919876543211"))
	assert.Empty(t, HashPhoneNumber("n/a"))
}

func TestParseTimestamp(t *testing.T) {
	local, err := ParseTimestamp("2026-10-20T12:00:00")
	require.NoError(t, err)
	assert.Equal(t, 12, local.Hour())
	assert.Equal(t, time.Local, local.Location())

	zoned, err := ParseTimestamp("2026-10-20T12:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.October, zoned.Month())

	_, err = ParseTimestamp("20/10/2026")
	assert.Error(t, err)
}

func TestRespondAppErrorMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err   error
		code  int
		label string
	}{
		{apperrors.NotFound("Order", "id", "x"), http.StatusNotFound, "Not Found"},
		{apperrors.InvalidOrder("Cart is empty"), http.StatusBadRequest, "Bad Request"},
		{apperrors.InvalidCoupon("Invalid or expired coupon code: X"), http.StatusBadRequest, "Bad Request"},
		{apperrors.Conflict("try again"), http.StatusConflict, "Conflict"},
		{errors.New("disk full"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/orders/x", nil)

		RespondAppError(c, tc.err)

		assert.Equal(t, tc.code, w.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body.Status)
		assert.Equal(t, tc.label, body.Error)
		assert.Equal(t, tc.err.Error(), body.Message)
		assert.Equal(t, "/api/orders/x", body.Path)
	}
}

func TestRespondValidationErrorListsFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/orders", nil)

	RespondValidationError(c, &FieldError{Field: "orderDate", Message: "must be an ISO-8601 timestamp"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Validation Error", body.Error)
	assert.Equal(t, "must be an ISO-8601 timestamp", body.FieldErrors["orderDate"])
}
