// Package errors provides standardized error codes for consistent error handling.
package errors

import "net/http"

// ErrorCode represents a unique error code for specific error scenarios
type ErrorCode string

// Domain error codes
const (
	// Catalog errors
	CodeProductNotFound ErrorCode = "PRODUCT_NOT_FOUND"
	CodeProductInvalid  ErrorCode = "PRODUCT_INVALID"
	CodeCategoryInvalid ErrorCode = "CATEGORY_INVALID"

	// Cart and checkout errors
	CodeCartEmpty      ErrorCode = "CART_EMPTY"
	CodeCheckoutFailed ErrorCode = "CHECKOUT_FAILED"

	// Stylist errors
	CodeOccasionInvalid  ErrorCode = "OCCASION_INVALID"
	CodeOutfitMissing    ErrorCode = "OUTFIT_MISSING"
	CodeOutfitSaveFailed ErrorCode = "OUTFIT_SAVE_FAILED"
	CodeOutfitNotFound   ErrorCode = "OUTFIT_NOT_FOUND"
	CodeMessageEmpty     ErrorCode = "MESSAGE_EMPTY"

	// Try-on errors
	CodeImageDecodeFailed ErrorCode = "IMAGE_DECODE_FAILED"
	CodeImageLoadFailed   ErrorCode = "IMAGE_LOAD_FAILED"
	CodeImageTooLarge     ErrorCode = "IMAGE_TOO_LARGE"

	// User errors
	CodeUserUnauthorized ErrorCode = "USER_UNAUTHORIZED"
	CodeUserForbidden    ErrorCode = "USER_FORBIDDEN"

	// Validation errors
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeInvalidInput     ErrorCode = "INVALID_INPUT"
	CodeMissingField     ErrorCode = "MISSING_FIELD"

	// Infrastructure errors
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodeTimeout            ErrorCode = "TIMEOUT"
	CodeEventPublishFailed ErrorCode = "EVENT_PUBLISH_FAILED"

	// External service errors
	CodeGatewayError     ErrorCode = "GATEWAY_ERROR"
	CodeSupabaseError    ErrorCode = "SUPABASE_ERROR"
	CodeDynamoDBError    ErrorCode = "DYNAMODB_ERROR"
	CodeEventBridgeError ErrorCode = "EVENTBRIDGE_ERROR"
)

// HTTPStatusCode returns the appropriate HTTP status code for an error code
func (c ErrorCode) HTTPStatusCode() int {
	switch c {
	case CodeProductInvalid, CodeCategoryInvalid, CodeCartEmpty, CodeOccasionInvalid,
		CodeOutfitMissing, CodeMessageEmpty, CodeValidationFailed, CodeInvalidInput, CodeMissingField:
		return http.StatusBadRequest

	case CodeUserUnauthorized:
		return http.StatusUnauthorized

	case CodeUserForbidden:
		return http.StatusForbidden

	case CodeProductNotFound, CodeOutfitNotFound:
		return http.StatusNotFound

	case CodeImageTooLarge:
		return http.StatusRequestEntityTooLarge

	// Decode failures are the shopper's upload or a broken product image; both are retryable
	case CodeImageDecodeFailed, CodeImageLoadFailed:
		return http.StatusUnprocessableEntity

	case CodeServiceUnavailable, CodeTimeout, CodeGatewayError, CodeSupabaseError, CodeDynamoDBError:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// String returns the string representation of the error code
func (c ErrorCode) String() string {
	return string(c)
}

// IsRetryable returns whether an error with this code should be retried
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case CodeTimeout, CodeServiceUnavailable, CodeGatewayError, CodeSupabaseError,
		CodeDynamoDBError, CodeEventBridgeError, CodeEventPublishFailed,
		CodeImageDecodeFailed, CodeImageLoadFailed, CodeCheckoutFailed, CodeOutfitSaveFailed:
		return true
	default:
		return false
	}
}
