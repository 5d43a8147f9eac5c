package upstream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors carried inside *Error for errors.Is checks.
var (
	// ErrCircuitOpen indicates the circuit breaker rejected the call.
	ErrCircuitOpen = errors.New("upstream circuit breaker is open")

	// ErrResponseTooLarge indicates the upstream body exceeded the size limit.
	ErrResponseTooLarge = errors.New("upstream response too large")

	// ErrInvalidResponse indicates a successful upstream status with a body
	// that is not valid JSON.
	ErrInvalidResponse = errors.New("upstream returned an invalid JSON body")
)

const unknownErrorMessage = "unknown error"

// Error is a normalized upstream failure.
type Error struct {
	// StatusCode is the HTTP status to answer the client with.
	StatusCode int
	// Message is always a JSON object.
	Message json.RawMessage
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("upstream error %d: %s", e.StatusCode, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same status.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// ResponseError is returned when the upstream answered with a non-2xx status.
type ResponseError struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("upstream responded with status %d %s",
		e.StatusCode, http.StatusText(e.StatusCode))
}

// Normalize converts any failure into an *Error. It never returns nil.
//
// An *Error is returned unchanged. A *ResponseError keeps the upstream status
// and uses the body's nested "error" object when present. Any other error or
// value becomes a 500 whose message is its text.
func Normalize(v any) *Error {
	switch err := v.(type) {
	case *Error:
		return err
	case *ResponseError:
		return &Error{
			StatusCode: err.StatusCode,
			Message:    responseMessage(err),
			Err:        err,
		}
	case error:
		var upErr *Error
		if errors.As(err, &upErr) {
			return upErr
		}
		var respErr *ResponseError
		if errors.As(err, &respErr) {
			n := Normalize(respErr)
			n.Err = err
			return n
		}
		return &Error{
			StatusCode: http.StatusInternalServerError,
			Message:    messageObject(err.Error()),
			Err:        err,
		}
	case nil:
		return &Error{
			StatusCode: http.StatusInternalServerError,
			Message:    messageObject(unknownErrorMessage),
		}
	default:
		return &Error{
			StatusCode: http.StatusInternalServerError,
			Message:    messageObject(fmt.Sprint(v)),
		}
	}
}

// newError builds an *Error with a {"message": ...} body around a cause.
func newError(status int, message string, cause error) *Error {
	return &Error{
		StatusCode: status,
		Message:    messageObject(message),
		Err:        cause,
	}
}

func responseMessage(err *ResponseError) json.RawMessage {
	if nested, ok := nestedErrorObject(err.Body); ok {
		return nested
	}

	body := bytes.TrimSpace(err.Body)
	switch {
	case len(body) == 0:
		return messageObject(err.Error())
	case json.Valid(body):
		return messageObject(json.RawMessage(body))
	default:
		return messageObject(string(body))
	}
}

// messageObject encodes {"message": v}.
func messageObject(v any) json.RawMessage {
	b, err := json.Marshal(map[string]any{"message": v})
	if err != nil {
		// v is a string or already-validated JSON.
		return json.RawMessage(`{"message":"unknown error"}`)
	}
	return b
}
