package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches (via errors.Is) any HTTPError with status 404.
var ErrNotFound = errors.New("resource not found")

// HTTPError is returned for every non-2xx response.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
	Fields     map[string]string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets callers test for ErrNotFound.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// DecodeError is returned when a response body is not a valid serialized entity.
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// errorEnvelope mirrors the API's error response.
type errorEnvelope struct {
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func newHTTPError(method, path string, status int, body []byte) *HTTPError {
	httpErr := &HTTPError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Body:       string(body),
	}

	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		httpErr.Code = env.Error.Code
		httpErr.Message = env.Error.Message
		httpErr.Fields = env.Error.Fields
	}
	return httpErr
}
