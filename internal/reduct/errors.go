package reduct

import (
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// errorHeader carries the server-side error message on failed requests.
const errorHeader = "x-reduct-error"

// APIError is a non-2xx response from the ReductStore API.
type APIError struct {
	// Status is the HTTP status code
	Status int

	// Message is the server message from the x-reduct-error header
	Message string

	// Op is the attempted operation, for context
	Op string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: store returned %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: store returned %d", e.Op, e.Status)
}

// IsConflict reports whether the error is an HTTP 409 (bucket already
// exists, duplicate record timestamp).
func (e *APIError) IsConflict() bool {
	return e.Status == http.StatusConflict
}

// IsNotFound reports whether the error is an HTTP 404.
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// apiError builds an APIError from a resty response.
func apiError(op string, resp *resty.Response) *APIError {
	return &APIError{
		Status:  resp.StatusCode(),
		Message: resp.Header().Get(errorHeader),
		Op:      op,
	}
}
