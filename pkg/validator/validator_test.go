package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=99"`
	Method    string `json:"payment_method" validate:"omitempty,oneof=credit-card paypal"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(addItemRequest{ProductID: "1", Quantity: 2}))
}

func TestValidate_Messages(t *testing.T) {
	tests := []struct {
		name  string
		req   addItemRequest
		field string
		want  string
	}{
		{"missing product", addItemRequest{Quantity: 1}, "product_id", "is required"},
		{"long product id", addItemRequest{ProductID: strings.Repeat("x", 65), Quantity: 1}, "product_id", "must be at most 64 characters"},
		{"zero quantity", addItemRequest{ProductID: "1"}, "quantity", "must be greater than or equal to 1"},
		{"huge quantity", addItemRequest{ProductID: "1", Quantity: 100}, "quantity", "must be less than or equal to 99"},
		{"bad method", addItemRequest{ProductID: "1", Quantity: 1, Method: "cash"}, "payment_method", "must be one of: credit-card paypal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := fieldsOf(t, Validate(tt.req))
			assert.Equal(t, tt.want, fields[tt.field])
		})
	}
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(addItemRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'product_id' is required")
	assert.Contains(t, err.Error(), "field 'quantity'")
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantInput bool
		wantField string
	}{
		{name: "valid", body: `{"product_id":"3","quantity":2}`},
		{name: "malformed json", body: `{"product_id":`, wantInput: true},
		{name: "unknown field", body: `{"product_id":"3","quantity":1,"price":1}`, wantInput: true},
		{name: "fails validation", body: `{"quantity":1}`, wantField: "product_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var dst addItemRequest
			err := DecodeAndValidate(w, r, &dst)

			switch {
			case tt.wantInput:
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			case tt.wantField != "":
				assert.Contains(t, fieldsOf(t, err), tt.wantField)
			default:
				require.NoError(t, err)
				assert.Equal(t, "3", dst.ProductID)
				assert.Equal(t, 2, dst.Quantity)
			}
		})
	}
}

func TestDecodeAndValidate_BodyTooLarge(t *testing.T) {
	body := `{"product_id":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))

	var dst addItemRequest
	err := DecodeAndValidate(httptest.NewRecorder(), r, &dst)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
