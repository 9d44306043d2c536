package apiclient

import (
	"errors"
	"fmt"
)

// Kind discriminates the ways a call can fail. Every failure the client
// returns is an *APIError carrying exactly one Kind.
type Kind int

const (
	KindNone       Kind = iota // success; only seen by observers
	KindNetwork                // backend unreachable
	KindTimeout                // request deadline exceeded
	KindCanceled               // caller cancelled the context
	KindHTTP                   // non-2xx response
	KindValidation             // rejected locally before any request
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindHTTP:
		return "http"
	case KindValidation:
		return "validation"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Messages for failures that carry no server-provided text.
const (
	MsgTimeout  = "request timed out"
	MsgNetwork  = "network error: unable to reach backend"
	MsgCanceled = "request canceled"
)

// Sentinels matched by errors.Is against an *APIError of the same Kind.
var (
	ErrNetwork    = errors.New(MsgNetwork)
	ErrTimeout    = errors.New(MsgTimeout)
	ErrCanceled   = errors.New(MsgCanceled)
	ErrHTTP       = errors.New("http error")
	ErrValidation = errors.New("validation failed")
)

// APIError is the one error shape callers display. StatusCode is 0 for
// anything that did not produce an HTTP response.
type APIError struct {
	Kind       Kind
	Message    string
	StatusCode int
	Details    any   // decoded error body, if any
	Err        error // underlying transport error, if any
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrCanceled:
		return e.Kind == KindCanceled
	case ErrHTTP:
		return e.Kind == KindHTTP
	case ErrValidation:
		return e.Kind == KindValidation
	}
	return false
}

// NewValidationError reports a local input problem in the same shape as API
// failures so callers keep a single display path.
func NewValidationError(message string) *APIError {
	return &APIError{Kind: KindValidation, Message: message}
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func httpError(status int, body any) *APIError {
	msg := fmt.Sprintf("request failed with status %d", status)
	if m, ok := body.(map[string]any); ok {
		if s, ok := m["error"].(string); ok && s != "" {
			msg = s
		} else if s, ok := m["message"].(string); ok && s != "" {
			msg = s
		}
	}
	return &APIError{
		Kind:       KindHTTP,
		Message:    msg,
		StatusCode: status,
		Details:    body,
	}
}
