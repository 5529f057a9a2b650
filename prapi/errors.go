package prapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/buger/jsonparser"
)

// Error kinds produced locally. Errors from the API carry the payload's own
// type string, e.g. "invalid_api_key".
const (
	KindNetwork = "network_error"
	KindTimeout = "timeout"
	KindParse   = "parse_error"
	KindUnknown = "unknown_error"
)

// ForbiddenHint explains the usual causes of a 403
const ForbiddenHint = `This might be an API key issue. Please check:
   - Your API key is valid and active
   - You're using the correct key type (sandbox/live)
   - Your account has the necessary permissions`

// Error is the single shape every failed API call is reported in
type Error struct {
	Message    string // Display text, e.g. "Forbidden: invalid key (auth_error)"
	StatusCode int    // HTTP status; 0 when no response was received
	Kind       string
	Detail     string
}

func (e *Error) Error() string {
	return e.Message
}

// Forbidden reports a 403 response
func (e *Error) Forbidden() bool {
	return e.StatusCode == 403
}

// AsError extracts an *Error from err
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

func statusText(status int) string {
	switch status {
	case 400:
		return "Bad Request"
	case 402:
		return "Payment Required"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 429:
		return "Rate Limited"
	case 500:
		return "Server Error"
	default:
		return fmt.Sprintf("HTTP %d", status)
	}
}

// firstString returns the first string found at any of the key paths
func firstString(data []byte, paths ...[]string) string {
	for _, path := range paths {
		if v, err := jsonparser.GetString(data, path...); err == nil && v != "" {
			return v
		}
	}
	return ""
}

// normalizeError maps an error response body, JSON or not, to an *Error.
// The API nests its payload under "error" on some endpoints and not others.
func normalizeError(status int, body []byte) *Error {
	e := &Error{StatusCode: status}

	if _, dataType, _, err := jsonparser.Get(body); err == nil && dataType == jsonparser.Object {
		e.Detail = firstString(body,
			[]string{"error", "detail"},
			[]string{"error", "message"},
			[]string{"detail"},
			[]string{"message"},
		)
		e.Kind = firstString(body, []string{"error", "type"}, []string{"type"})

		// A plain string under "error"
		if e.Detail == "" {
			if v, err := jsonparser.GetString(body, "error"); err == nil {
				e.Detail = v
			}
		}
		if code, err := jsonparser.GetInt(body, "error", "status_code"); err == nil && code > 0 {
			e.StatusCode = int(code)
		} else if code, err := jsonparser.GetInt(body, "status_code"); err == nil && code > 0 {
			e.StatusCode = int(code)
		}
	}

	if e.Detail == "" {
		if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") {
			e.Detail = truncate(text, 200)
		} else {
			e.Detail = "Unknown error occurred"
		}
	}
	if e.Kind == "" {
		e.Kind = KindUnknown
	}

	e.Message = fmt.Sprintf("%s: %s (%s)", statusText(status), e.Detail, e.Kind)
	return e
}

// transportError wraps a failure to get any response
func transportError(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{
			Message: fmt.Sprintf("Request timed out: %v", err),
			Kind:    KindTimeout,
			Detail:  err.Error(),
		}
	}
	return &Error{
		Message: fmt.Sprintf("Request failed: %v", err),
		Kind:    KindNetwork,
		Detail:  err.Error(),
	}
}

func parseError(detail string, status int) *Error {
	return &Error{
		Message:    "Invalid response: " + detail,
		StatusCode: status,
		Kind:       KindParse,
		Detail:     detail,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
