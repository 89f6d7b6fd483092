package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrorKind is the fixed client-side failure taxonomy. Every failure
// leaving the gateway carries exactly one of these.
type ErrorKind string

const (
	// ErrAuth covers bad credentials and missing or expired tokens
	// (HTTP 401/403).
	ErrAuth ErrorKind = "auth"
	// ErrValidation covers malformed or duplicate input (HTTP 4xx with
	// field errors).
	ErrValidation ErrorKind = "validation"
	// ErrNotFound covers unknown resource ids (HTTP 404).
	ErrNotFound ErrorKind = "not_found"
	// ErrNetwork covers transport failures where no response arrived.
	ErrNetwork ErrorKind = "network"
	// ErrServer covers 5xx responses: the server answered but could
	// not process the request.
	ErrServer ErrorKind = "server"
)

// Error is the normalized failure returned by every gateway operation.
// Status and Body preserve the raw response for caller inspection.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Fields  map[string]string
	Body    []byte
	Cause   error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage returns a display-ready line for the error banner.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case ErrAuth:
		if e.Message != "" {
			return e.Message
		}
		return "Authentication failed. Please log in again."
	case ErrValidation:
		if e.Message != "" {
			return e.Message
		}
		return "The server rejected the submitted data."
	case ErrNotFound:
		return "The requested record no longer exists."
	case ErrNetwork:
		return "Could not reach the Logbook server. Check your connection."
	case ErrServer:
		return "The Logbook server reported an internal error. Try again."
	default:
		return "An unexpected error occurred."
	}
}

func NewNetworkError(message string, cause error) *Error {
	return &Error{Kind: ErrNetwork, Message: message, Cause: cause}
}

func NewAuthError(status int, message string) *Error {
	return &Error{Kind: ErrAuth, Status: status, Message: message}
}

// serverErrorBody is the shape FastAPI-style servers report failures
// in. Older revisions used "error" instead of "detail"; both are read
// here so the rest of the client never sees the difference.
type serverErrorBody struct {
	Detail json.RawMessage   `json:"detail"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// classifyResponse maps a non-2xx response into the taxonomy. The raw
// body is always preserved on the error.
func classifyResponse(status int, body []byte) *Error {
	message, fields := parseServerError(body)

	apiErr := &Error{
		Status:  status,
		Message: message,
		Fields:  fields,
		Body:    body,
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		apiErr.Kind = ErrAuth
	case status == http.StatusNotFound:
		apiErr.Kind = ErrNotFound
	case status >= 400 && status < 500:
		apiErr.Kind = ErrValidation
	default:
		apiErr.Kind = ErrServer
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func parseServerError(body []byte) (string, map[string]string) {
	if len(body) == 0 {
		return "", nil
	}

	var parsed serverErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return strings.TrimSpace(string(body)), nil
	}

	if parsed.Error != "" {
		return parsed.Error, parsed.Fields
	}
	if len(parsed.Detail) > 0 {
		// detail is usually a string, but FastAPI validation errors
		// send structured lists; fall back to the raw form for those.
		var detail string
		if err := json.Unmarshal(parsed.Detail, &detail); err == nil {
			return detail, parsed.Fields
		}
		return string(parsed.Detail), parsed.Fields
	}
	return "", parsed.Fields
}

// classifyTransport wraps a failure from the HTTP round trip itself.
func classifyTransport(err error) *Error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewNetworkError("request timed out", err)
	}
	return NewNetworkError("request failed", err)
}

// AsError extracts the gateway error from an error chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func isKind(err error, kind ErrorKind) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Kind == kind
}

func IsAuth(err error) bool       { return isKind(err, ErrAuth) }
func IsValidation(err error) bool { return isKind(err, ErrValidation) }
func IsNotFound(err error) bool   { return isKind(err, ErrNotFound) }
func IsNetwork(err error) bool    { return isKind(err, ErrNetwork) }
