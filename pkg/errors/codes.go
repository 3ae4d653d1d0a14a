package errors

import "net/http"

type Code string

const (
	CodeUnknown         Code = "UNKNOWN"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodePermission      Code = "PERMISSION_DENIED"
	CodeConflict        Code = "CONFLICT"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeBadResponse     Code = "BAD_RESPONSE"
	CodeSyncFailed      Code = "SYNC_FAILED"
	CodeInternal        Code = "INTERNAL"
)

// HTTPStatus maps an error code to the status the API surfaces it with.
func HTTPStatus(code Code) int {
	switch code {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermission:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable, CodeBadResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
