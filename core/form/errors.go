package form

import (
	"errors"
	"fmt"
)

// User facing messages shared by the controller and the HTTP client.
const (
	MsgSelectModel   = "Please select a model"
	MsgRequestFailed = "Prediction failed. Please try again."
	MsgNetwork       = "Network error. Please check your connection and try again."
)

// ValidationError reports a local input problem. Field is "model" or one of
// the measurement field identifiers.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// RequestError reports a failed prediction call. Status is zero when no HTTP
// response was received.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Unwrap() error { return e.Err }

// Detail returns the message with the underlying cause for logs.
func (e *RequestError) Detail() string {
	if e.Err == nil {
		return fmt.Sprintf("status=%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("status=%d: %s: %v", e.Status, e.Message, e.Err)
}

// Message extracts the text to show to the user for err.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var re *RequestError
	if errors.As(err, &re) {
		return re.Message
	}
	return MsgRequestFailed
}
