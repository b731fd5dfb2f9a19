package dto

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stylesync-backend/internal/errors"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		dst        interface{}
		allowEmpty bool
		code       apperrors.ErrorCode
	}{
		{name: "add item", body: `{"productId":"p-1"}`, dst: &AddCartItemRequest{}},
		{name: "missing product", body: `{}`, dst: &AddCartItemRequest{}, code: apperrors.CodeValidationFailed},
		{name: "unknown field", body: `{"productId":"p-1","x":1}`, dst: &AddCartItemRequest{}, code: apperrors.CodeInvalidInput},
		{name: "not json", body: `productId=p-1`, dst: &AddCartItemRequest{}, code: apperrors.CodeInvalidInput},
		{name: "quantity zero allowed", body: `{"quantity":0}`, dst: &UpdateCartItemRequest{}},
		{name: "quantity missing", body: `{}`, dst: &UpdateCartItemRequest{}, code: apperrors.CodeValidationFailed},
		{name: "empty save body", body: ``, dst: &SaveOutfitRequest{}, allowEmpty: true},
		{name: "empty body not allowed", body: ``, dst: &GenerateOutfitRequest{}, code: apperrors.CodeInvalidInput},
		{name: "product invalid category", body: `{"name":"Tee","price":10,"category":"hats","image_url":"https://x/y.png"}`, dst: &ProductRequest{}, code: apperrors.CodeValidationFailed},
		{name: "product ok", body: `{"name":"Tee","price":10,"category":"tops","image_url":"https://x/y.png"}`, dst: &ProductRequest{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			err := Decode(req, tt.dst, tt.allowEmpty)
			if tt.code == "" {
				require.NoError(t, err)
				return
			}
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}
