package xano

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// RemoteError is a 4xx/5xx response from the Metadata API.
type RemoteError struct {
	Status  int
	Code    string
	Message string
	Body    string
	// Payload is the decoded JSON error body, nil when the body is not JSON.
	Payload any
	Method  string
	URL     string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("xano API error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("xano API error %d: %s", e.Status, e.Message)
}

// Retryable reports whether repeating the request may succeed.
func (e *RemoteError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

func newRemoteError(method, url string, status int, body []byte) *RemoteError {
	e := &RemoteError{
		Status: status,
		Method: method,
		URL:    url,
		Body:   truncate(string(body), 2048),
	}

	if err := json.Unmarshal(body, &e.Payload); err != nil {
		e.Payload = nil
	}
	if obj, ok := e.Payload.(map[string]any); ok {
		if code, ok := obj["code"]; ok && code != nil {
			e.Code = fmt.Sprint(code)
		}
		e.Message, _ = obj["message"].(string)
		if e.Message == "" {
			e.Message, _ = obj["error"].(string)
		}
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(truncate(string(body), 512))
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// InputError is an argument the client refuses to send.
type InputError struct {
	Parameter string
	Reason    string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Parameter, e.Reason)
}

// TransportError is a failure to reach the Metadata API or read its reply.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("xano transport error: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transport failure or a retryable
// remote error.
func IsRetryable(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return true
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Retryable()
	}
	return false
}
