// Package serviceerr defines the errors surfaced by the views of the client.
// Every error carries a stable code and maps to an HTTP status.
package serviceerr

import "net/http"

type Code string

const (
	CodeInvalidRequest     Code = "invalid_request"
	CodeValidationFailed   Code = "validation_failed"
	CodeUnauthorized       Code = "unauthorized"
	CodeAccessDenied       Code = "access_denied"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeBackendUnavailable Code = "backend_unavailable"
	CodeBackendError       Code = "backend_error"
	CodeSessionLoading     Code = "session_loading"
	CodeUnknown            Code = "unknown"
)

type Error struct {
	Err         Code
	Description string
}

func (e *Error) Error() string {
	if e.Description == "" {
		return string(e.Err)
	}

	return string(e.Err) + ": " + e.Description
}

// Is matches on the code so that wrapped copies with another description
// still compare equal to the predefined errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Err == e.Err
}

func (e Error) HTTPStatus() int {
	switch e.Err {
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeValidationFailed:
		return http.StatusUnprocessableEntity
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeAccessDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeBackendUnavailable:
		return http.StatusBadGateway
	case CodeBackendError:
		return http.StatusBadGateway
	case CodeSessionLoading:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WithDescription returns a copy of e carrying the given description.
func (e *Error) WithDescription(description string) *Error {
	return &Error{Err: e.Err, Description: description}
}

var (
	ErrInvalidRequest     = &Error{Err: CodeInvalidRequest}
	ErrValidationFailed   = &Error{Err: CodeValidationFailed, Description: "form validation failed"}
	ErrUnauthorized       = &Error{Err: CodeUnauthorized, Description: "unauthorized"}
	ErrAccessDenied       = &Error{Err: CodeAccessDenied, Description: "access denied"}
	ErrNotFound           = &Error{Err: CodeNotFound, Description: "not found"}
	ErrConflict           = &Error{Err: CodeConflict, Description: "already exists"}
	ErrBackendUnavailable = &Error{Err: CodeBackendUnavailable, Description: "blog backend is unreachable"}
	ErrBackendError       = &Error{Err: CodeBackendError, Description: "blog backend returned an error"}
	ErrSessionLoading     = &Error{Err: CodeSessionLoading, Description: "session is loading"}
	ErrUnknown            = &Error{Err: CodeUnknown, Description: "unknown error"}
)
