package evalclient

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrInvalidSelection is returned when a selection holds out-of-range values.
// No request is sent in that case.
var ErrInvalidSelection = errors.New("invalid selection")

// HTTPError reports a non-success status from the evaluation endpoint.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return "evaluation endpoint returned " + status
}

// NetworkError reports a transport failure: the request could not be sent
// or the response body could not be read.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "evaluation request failed: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError reports a success response whose body does not match the
// expected evaluation result shape.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "malformed evaluation response: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Kind returns a short name for the failure class of err, for log fields.
func Kind(err error) string {
	var httpErr *HTTPError
	var netErr *NetworkError
	var parseErr *ParseError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &httpErr):
		return "http"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &parseErr):
		return "parse"
	}
	return "other"
}
