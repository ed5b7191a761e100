package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// ErrorKind is the closed set of upstream failure classifications.
type ErrorKind string

const (
	KindAuthentication       ErrorKind = "authentication"
	KindRateLimited          ErrorKind = "rate_limited"
	KindConnectionFailure    ErrorKind = "connection_failure"
	KindTimeout              ErrorKind = "timeout"
	KindBadRequest           ErrorKind = "bad_request"
	KindServerError          ErrorKind = "server_error"
	KindResourceNotFound     ErrorKind = "resource_not_found"
	KindPermissionDenied     ErrorKind = "permission_denied"
	KindUnprocessableContent ErrorKind = "unprocessable_content"
	KindUnknown              ErrorKind = "unknown"
)

var sentinels = map[ErrorKind]string{
	KindAuthentication:       "[AI service error: API key validation failed, please check your API key settings]",
	KindRateLimited:          "[AI service error: too many requests, please try again later]",
	KindConnectionFailure:    "[AI service error: unable to reach the AI service, please check your network connection]",
	KindTimeout:              "[AI service error: request timed out, please try again later]",
	KindBadRequest:           "[AI service error: malformed request, please check your input]",
	KindServerError:          "[AI service error: upstream server error, please try again later]",
	KindResourceNotFound:     "[AI service error: requested resource does not exist]",
	KindPermissionDenied:     "[AI service error: permission denied, please check your API key permissions]",
	KindUnprocessableContent: "[AI service error: the request content could not be processed]",
	KindUnknown:              "[AI service error: an unexpected error occurred, please try again later]",
}

// Sentinel returns the fixed user-facing marker for this kind. Sentinels
// are delivered in-band as a final stream fragment, never as transport
// failures.
func (k ErrorKind) Sentinel() string {
	if s, ok := sentinels[k]; ok {
		return s
	}
	return sentinels[KindUnknown]
}

// Error is a classified upstream failure.
type Error struct {
	Kind    ErrorKind
	Status  int // HTTP status when the upstream answered, 0 otherwise
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s error [%d]: %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("upstream %s error: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause so callers can still match it with
// errors.Is, in particular context cancellation.
func (e *Error) Unwrap() error {
	return e.cause
}

// classifyStatus maps an upstream HTTP status to an error kind.
func classifyStatus(status int, message string) *Error {
	var kind ErrorKind
	switch {
	case status == http.StatusUnauthorized:
		kind = KindAuthentication
	case status == http.StatusForbidden:
		kind = KindPermissionDenied
	case status == http.StatusNotFound:
		kind = KindResourceNotFound
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status == http.StatusUnprocessableEntity:
		kind = KindUnprocessableContent
	case status == http.StatusBadRequest:
		kind = KindBadRequest
	case status >= 500:
		kind = KindServerError
	default:
		kind = KindUnknown
	}
	return &Error{Kind: kind, Status: status, Message: message}
}

// Classify wraps an arbitrary failure into a classified *Error. Already
// classified errors pass through untouched.
func Classify(err error) *Error {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: err.Error(), cause: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &Error{Kind: KindTimeout, Message: err.Error(), cause: err}
		}
		return &Error{Kind: KindConnectionFailure, Message: err.Error(), cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: KindTimeout, Message: err.Error(), cause: err}
		}
		return &Error{Kind: KindConnectionFailure, Message: err.Error(), cause: err}
	}

	return &Error{Kind: KindUnknown, Message: err.Error(), cause: err}
}
