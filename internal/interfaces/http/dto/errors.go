package dto

import "net/http"

// Error codes returned in the response envelope. Domain codes pass through
// unchanged; the rest are produced by the HTTP layer itself.
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeRequestTooLarge     = "REQUEST_TOO_LARGE"
	ErrCodeStorage             = "STORAGE_ERROR"
	ErrCodeInternal            = "INTERNAL_ERROR"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodeAlreadyExists: http.StatusConflict,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	ErrCodeStorage:             http.StatusInternalServerError,
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeUpstreamUnavailable: http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ExposesMessage reports whether the domain message for code may be shown to
// clients. Internal failures get a generic message instead.
func ExposesMessage(code string) bool {
	return code == ErrCodeUpstreamUnavailable || GetHTTPStatus(code) < http.StatusInternalServerError
}
