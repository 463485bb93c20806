package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeRateLimited        ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeStorageError       ErrorCode = "COMMON_015"
	ErrCodeMessageQueueError  ErrorCode = "COMMON_016"
)

// Aliases
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Ingestion Error Codes
const (
	// ErrCodeSchema: the uploaded table lacks one or more required columns.
	ErrCodeSchema     ErrorCode = "ING_001"
	ErrCodeReadFailed ErrorCode = "ING_002"
	ErrCodeEmptyInput ErrorCode = "ING_003"
)

// Filter Error Codes
const (
	ErrCodeFilterInvalid ErrorCode = "FLT_001"
)

// Zone Error Codes
const (
	// ErrCodeNoZone: no drawn geometry is present. Callers treat it as "no report".
	ErrCodeNoZone   ErrorCode = "ZON_001"
	ErrCodeGeometry ErrorCode = "ZON_002"
)

// Geocoding Error Codes
const (
	ErrCodeGeocodeTimeout  ErrorCode = "GEO_001"
	ErrCodeGeocodeNotFound ErrorCode = "GEO_002"
)

// Report Error Codes
const (
	ErrCodeRender           ErrorCode = "RPT_001"
	ErrCodeReportMissing    ErrorCode = "RPT_002"
	ErrCodeEventTypeInvalid ErrorCode = "RPT_003"
)

// Configuration / Session Error Codes
const (
	ErrCodeFacilityConfig  ErrorCode = "CFG_001"
	ErrCodeSessionNotFound ErrorCode = "SES_001"
)

// Infrastructure aliases
const (
	CodeCacheError        = ErrCodeCacheError
	CodeMessageQueueError = ErrCodeMessageQueueError
	CodeStorageError      = ErrCodeStorageError
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeStorageError:       http.StatusBadGateway,
	ErrCodeMessageQueueError:  http.StatusBadGateway,

	ErrCodeSchema:     http.StatusUnprocessableEntity,
	ErrCodeReadFailed: http.StatusBadRequest,
	ErrCodeEmptyInput: http.StatusBadRequest,

	ErrCodeFilterInvalid: http.StatusBadRequest,

	ErrCodeNoZone:   http.StatusUnprocessableEntity,
	ErrCodeGeometry: http.StatusUnprocessableEntity,

	ErrCodeGeocodeTimeout:  http.StatusGatewayTimeout,
	ErrCodeGeocodeNotFound: http.StatusNotFound,

	ErrCodeRender:           http.StatusInternalServerError,
	ErrCodeReportMissing:    http.StatusConflict,
	ErrCodeEventTypeInvalid: http.StatusBadRequest,

	ErrCodeFacilityConfig:  http.StatusInternalServerError,
	ErrCodeSessionNotFound: http.StatusNotFound,
}

// ErrorCodeMessage maps ErrorCodes to default user-facing messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization error",
	ErrCodeRateLimited:        "rate limit exceeded, please retry later",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeMessageQueueError:  "message queue error",

	ErrCodeSchema:     "uploaded table is missing required columns",
	ErrCodeReadFailed: "uploaded table could not be read",
	ErrCodeEmptyInput: "uploaded table is empty",

	ErrCodeFilterInvalid: "filter value not present in dataset",

	ErrCodeNoZone:   "no zone drawn",
	ErrCodeGeometry: "drawn zone is not a valid shape",

	ErrCodeGeocodeTimeout:  "geocoding timed out",
	ErrCodeGeocodeNotFound: "address not found",

	ErrCodeRender:           "document rendering failed",
	ErrCodeReportMissing:    "no report has been generated",
	ErrCodeEventTypeInvalid: "unknown event type",

	ErrCodeFacilityConfig:  "facility configuration is invalid",
	ErrCodeSessionNotFound: "session not found",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
