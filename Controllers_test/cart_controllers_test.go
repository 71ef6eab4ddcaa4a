package Controllers_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/ordersystem/models"
)

func TestCartEndpoints(t *testing.T) {
	s := setupTestServer(t)
	cartPath := "/api/cart/customer/" + strconv.Itoa(ashaID)

	w := s.do(t, http.MethodGet, cartPath, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/cart/add", map[string]interface{}{
		"customerId":          ashaID,
		"menuItemId":          paneerID,
		"variantId":           paneerLarge,
		"quantity":            1,
		"specialInstructions": "extra butter",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cart models.Cart
	decode(t, w, &cart)
	assert.Equal(t, models.CartActive, cart.Status)
	assert.Equal(t, "15.49", cart.TotalAmount.StringFixed(2))
	require.Len(t, cart.CartItems, 1)
	assert.Equal(t, "15.49", cart.CartItems[0].Price.StringFixed(2))

	s.addToCart(t, ashaID, lassiID, 2)
	w = s.do(t, http.MethodGet, cartPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &cart)
	assert.Equal(t, "24.00", cart.TotalAmount.StringFixed(2))
	require.Len(t, cart.CartItems, 2)

	lassiLine := cart.CartItems[1].ID
	w = s.do(t, http.MethodPut, "/api/cart/item/"+strconv.Itoa(int(lassiLine)), map[string]interface{}{"quantity": 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &cart)
	assert.Equal(t, "32.49", cart.TotalAmount.StringFixed(2))

	w = s.do(t, http.MethodDelete, "/api/cart/item/"+strconv.Itoa(int(lassiLine)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &cart)
	assert.Equal(t, "15.49", cart.TotalAmount.StringFixed(2))
	assert.Len(t, cart.CartItems, 1)

	w = s.do(t, http.MethodPost, "/api/cart/"+strconv.Itoa(ashaID), []map[string]interface{}{
		{"menuItemId": dalID, "quantity": 2},
		{"menuItemId": lassiID, "quantity": 1},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &cart)
	assert.Equal(t, "23.25", cart.TotalAmount.StringFixed(2))
	assert.Len(t, cart.CartItems, 2)

	w = s.do(t, http.MethodDelete, cartPath, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, cartPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &cart)
	assert.True(t, cart.TotalAmount.IsZero())
	assert.Empty(t, cart.CartItems)
}

func TestCartRejectsBadRequests(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodPost, "/api/cart/add", map[string]interface{}{
		"customerId": ashaID,
		"menuItemId": paneerID,
		"quantity":   0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Validation Error", resp.Error)
	assert.Contains(t, resp.FieldErrors, "quantity")

	w = s.do(t, http.MethodPost, "/api/cart/add", map[string]interface{}{
		"menuItemId": paneerID,
		"quantity":   1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must not be empty", decodeError(t, w).FieldErrors["customerId"])

	w = s.do(t, http.MethodPost, "/api/cart/add", map[string]interface{}{
		"customerId": ashaID,
		"menuItemId": 999,
		"quantity":   1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPut, "/api/cart/item/999", map[string]interface{}{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/cart/item/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be a positive integer", decodeError(t, w).FieldErrors["cartItemId"])
}
