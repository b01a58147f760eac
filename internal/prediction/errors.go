package prediction

import (
	"errors"
	"fmt"
)

// Messages shown when nothing more specific is available.
const (
	UnexpectedResponseMessage = "Received an unexpected response from the server."
	UnreachableMessage        = "Failed to get prediction. Is the backend running?"
)

// Kind classifies why a prediction could not be obtained.
type Kind int

const (
	// KindServerRejection is a delivered response carrying an "error" field.
	KindServerRejection Kind = iota + 1
	// KindMalformedResponse is a delivered response with neither a salary nor
	// an error.
	KindMalformedResponse
	// KindTransportFailure covers network errors, timeouts and non-2xx
	// statuses.
	KindTransportFailure
)

func (k Kind) String() string {
	switch k {
	case KindServerRejection:
		return "server_rejection"
	case KindMalformedResponse:
		return "malformed_response"
	case KindTransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Error is returned by Predict for every failed exchange. Message is safe to
// show to the user; Cause carries the underlying error, if any.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("prediction %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("prediction %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Message returns the text to display for err.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var predErr *Error
	if errors.As(err, &predErr) {
		if predErr.Message != "" {
			return predErr.Message
		}
		if predErr.Kind == KindMalformedResponse {
			return UnexpectedResponseMessage
		}
		return UnreachableMessage
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnreachableMessage
}

// KindOf reports the Kind of err, or 0 when err did not come from Predict.
func KindOf(err error) Kind {
	var predErr *Error
	if errors.As(err, &predErr) {
		return predErr.Kind
	}
	return 0
}
