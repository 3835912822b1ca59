package errors

import "net/http"

// Kind is the stable caller-facing error classification. Handlers serialize
// it next to the message so clients can branch without parsing text.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindReplay         Kind = "replay"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindInternal       Kind = "internal"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Kind       Kind
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func Validation(msg string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{msg, http.StatusBadRequest, KindValidation}
}

func Authentication(msg string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{msg, http.StatusUnauthorized, KindAuthentication}
}

func Authorization(msg string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{msg, http.StatusForbidden, KindAuthorization}
}

func Replay(msg string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{msg, http.StatusBadRequest, KindReplay}
}

func NotFound(msg string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{msg, http.StatusNotFound, KindNotFound}
}

func Conflict(msg string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{msg, http.StatusConflict, KindConflict}
}

func Internal(msg string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{msg, http.StatusInternalServerError, KindInternal}
}

// KindOf classifies any error; unknown errors are internal.
func KindOf(err error) Kind {
	if e, ok := err.(*ErrorWithStatusCode); ok {
		return e.Kind
	}
	return KindInternal
}

// StatusOf returns the HTTP status for any error; unknown errors are 500.
func StatusOf(err error) int {
	if e, ok := err.(*ErrorWithStatusCode); ok {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}
