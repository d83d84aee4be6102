package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies a failed call so callers never inspect message text.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindTransport
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindValidation
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// GenericTransportMessage is used when the backend could not be reached at all.
const GenericTransportMessage = "unable to reach the server"

// APIError is the rejected result of a call to the retail API.
type APIError struct {
	Kind   ErrorKind
	Status int
	Method string
	Path   string
	// Message is the server supplied error text, or a generic description.
	Message string
	// ServerMessage reports whether Message came from the response body.
	ServerMessage bool
	Body          []byte
	Err           error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func newStatusError(method, path string, status int, body []byte) *APIError {
	msg, fromServer := extractMessage(body)
	if !fromServer {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &APIError{
		Kind:          classify(status, msg),
		Status:        status,
		Method:        method,
		Path:          path,
		Message:       msg,
		ServerMessage: fromServer,
		Body:          body,
	}
}

func newTransportError(method, path string, err error) *APIError {
	return &APIError{
		Kind:    KindTransport,
		Method:  method,
		Path:    path,
		Message: GenericTransportMessage,
		Err:     err,
	}
}

// extractMessage pulls the error text out of bodies shaped like
// {"error":"..."}, {"error":{"message":"..."}} or {"message":"..."}.
func extractMessage(body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	switch v := payload["error"].(type) {
	case string:
		if v != "" {
			return v, true
		}
	case map[string]any:
		if m, ok := v["message"].(string); ok && m != "" {
			return m, true
		}
	}
	if m, ok := payload["message"].(string); ok && m != "" {
		return m, true
	}
	return "", false
}

func classify(status int, msg string) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	}
	// some backend routes report duplicates as plain 400s
	if mentionsDuplicate(msg) {
		return KindConflict
	}
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindValidation
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// KindOf returns the classification of err, or KindUnknown for foreign errors.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsUnauthorized reports whether the backend rejected the credential token.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// IsConflict reports whether the backend refused a duplicate resource.
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}

// IsDuplicate reports whether the backend refused a record because one with
// the same identity already exists. A conflict carrying any other message is
// not a duplicate.
func IsDuplicate(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindConflict {
		return false
	}
	return apiErr.ServerMessage && mentionsDuplicate(apiErr.Message)
}

func mentionsDuplicate(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "already exists")
}

// IsNotFound reports whether the requested resource does not exist.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// MessageOr returns the server provided message carried by err, or fallback.
func MessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.ServerMessage {
		return apiErr.Message
	}
	return fallback
}
