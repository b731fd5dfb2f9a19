package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifiedError_Creation(t *testing.T) {
	tests := []struct {
		name      string
		build     func() *UnifiedError
		errType   ErrorType
		code      ErrorCode
		retryable bool
		status    int
	}{
		{
			name: "validation error",
			build: func() *UnifiedError {
				return Validation(CodeOccasionInvalid, "unknown occasion").WithDetails("picnic").Build()
			},
			errType: ErrorTypeValidation,
			code:    CodeOccasionInvalid,
			status:  http.StatusBadRequest,
		},
		{
			name: "decode error",
			build: func() *UnifiedError {
				return Decode(CodeImageDecodeFailed, "garment", errors.New("bad header")).Build()
			},
			errType:   ErrorTypeDecode,
			code:      CodeImageDecodeFailed,
			retryable: true,
			status:    http.StatusUnprocessableEntity,
		},
		{
			name: "transport error",
			build: func() *UnifiedError {
				return Transport(CodeSupabaseError, "ListProducts", errors.New("dial tcp")).Build()
			},
			errType:   ErrorTypeTransport,
			code:      CodeSupabaseError,
			retryable: true,
			status:    http.StatusServiceUnavailable,
		},
		{
			name:    "unauthorized error",
			build:   func() *UnifiedError { return Unauthorized("login required").Build() },
			errType: ErrorTypeUnauthorized,
			code:    CodeUserUnauthorized,
			status:  http.StatusUnauthorized,
		},
		{
			name:    "forbidden error",
			build:   func() *UnifiedError { return Forbidden("admins only").Build() },
			errType: ErrorTypeForbidden,
			code:    CodeUserForbidden,
			status:  http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()

			assert.Equal(t, tt.errType, err.Type)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.retryable, err.Retryable)
			assert.Equal(t, tt.status, err.HTTPStatus())
		})
	}
}

func TestUnifiedError_Chain(t *testing.T) {
	cause := errors.New("connection reset")
	err := Transport(CodeGatewayError, "CreateOrder", cause).Build()

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, "CreateOrder", err.Operation)

	wrapped := fmt.Errorf("checkout: %w", err)
	assert.True(t, IsTransport(wrapped))
	assert.True(t, IsRetryable(wrapped))
	assert.False(t, IsDecode(wrapped))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(wrapped))
}

func TestWrap(t *testing.T) {
	t.Run("preserves unified type", func(t *testing.T) {
		inner := NotFound(CodeProductNotFound, "product not found").WithResource("indian-1").Build()
		outer := Wrap(inner, "AddItem", "cannot add to cart")

		require.NotNil(t, outer)
		assert.Equal(t, ErrorTypeNotFound, outer.Type)
		assert.Equal(t, "indian-1", outer.Resource)
		assert.Equal(t, "product not found", outer.Details)
		assert.True(t, HasCode(outer, CodeProductNotFound))
		assert.Equal(t, "AddItem", outer.Operation)
		assert.Equal(t, "product not found", inner.Message)
	})

	t.Run("plain errors become internal", func(t *testing.T) {
		outer := Wrap(errors.New("boom"), "Compose", "try-on failed")

		assert.Equal(t, ErrorTypeInternal, outer.Type)
		assert.Equal(t, http.StatusInternalServerError, outer.HTTPStatus())
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "op", "msg"))
	})
}

func TestHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("x")))
}

func TestPredicates(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Forbidden("admins only").Build())

	assert.True(t, IsType(wrapped, ErrorTypeForbidden))
	assert.False(t, IsUnauthorized(wrapped))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeForbidden))
	assert.False(t, IsRetryable(wrapped))
	assert.True(t, HasCode(wrapped, CodeUserForbidden))
}
