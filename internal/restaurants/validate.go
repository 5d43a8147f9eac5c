package restaurants

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// Fixed client-facing validation messages.
const (
	MsgAuthorizationInvalid = "Authorization header is missing or invalid"
	MsgLocationRequired     = "Location query parameter is required and must be of type string"
)

// ErrValidation matches any *ValidationError.
var ErrValidation = errors.New("request validation failed")

// ValidationError is a rejected inbound request. Message is returned to the
// client as is, Reason is only logged.
type ValidationError struct {
	Field   string
	Reason  string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidateAuthorization returns the single Authorization header value. The
// header must be present exactly once and not blank.
func ValidateAuthorization(header http.Header) (string, error) {
	values := header.Values("Authorization")
	switch {
	case len(values) == 0:
		return "", authorizationError("header is missing")
	case len(values) > 1:
		return "", authorizationError("header is repeated")
	case strings.TrimSpace(values[0]) == "":
		return "", authorizationError("header is empty")
	}
	return values[0], nil
}

// ValidateSearchParams checks the search query. location must be present
// exactly once; an empty value is accepted.
func ValidateSearchParams(query url.Values) error {
	values, ok := query["location"]
	switch {
	case !ok || len(values) == 0:
		return locationError("parameter is missing")
	case len(values) > 1:
		return locationError("parameter is repeated")
	}
	return nil
}

func authorizationError(reason string) *ValidationError {
	return &ValidationError{Field: "Authorization", Reason: reason, Message: MsgAuthorizationInvalid}
}

func locationError(reason string) *ValidationError {
	return &ValidationError{Field: "location", Reason: reason, Message: MsgLocationRequired}
}
