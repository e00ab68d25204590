package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"tupperstock/pkg/shopify"
)

var (
	// ErrNotFound is returned when the record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPhoneInUse means the platform refused a new customer because the
	// phone number belongs to someone else.
	ErrPhoneInUse = errors.New("phone number already in use")
)

// PlatformError is a failed call to the commerce platform. Body is the raw
// response when the platform answered.
type PlatformError struct {
	Op     string
	Status int
	Body   json.RawMessage
	Err    error
}

func (e *PlatformError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: platform status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error { return e.Err }

// platformError classifies err from the shopify transport. A 404 becomes
// ErrNotFound so callers can branch on it.
func platformError(op string, err error) error {
	var apiErr *shopify.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return &PlatformError{Op: op, Status: apiErr.StatusCode, Body: rawBody(apiErr.Body), Err: err}
	}
	return &PlatformError{Op: op, Err: err}
}

// rawBody keeps a JSON body as it is and quotes anything else.
func rawBody(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	if json.Valid(b) {
		return json.RawMessage(b)
	}
	quoted, _ := json.Marshal(string(b))
	return quoted
}
