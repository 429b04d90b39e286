package places

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMalformedResponse is returned when the provider payload cannot be decoded.
	ErrMalformedResponse = errors.New("malformed geocoding response")
	// ErrTransport is returned when the request never produced an HTTP response.
	ErrTransport = errors.New("geocoding request failed")
)

// User-facing messages stored in SearchState.Error.
const (
	MsgBadQuery       = "Invalid search query"
	MsgRateLimited    = "Too many requests, please try again later"
	MsgMalformed      = "Unexpected response from location service"
	MsgNetwork        = "Network error, please check your connection"
	msgClientErrorFmt = "Request failed (%d)"
	msgServerErrorFmt = "Server error (%d)"
)

// StatusError is a non-2xx response from the provider.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geocoding provider returned status %d", e.Code)
}

// StatusCode extracts the provider HTTP status from err, if any.
func StatusCode(err error) (int, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code, true
	}
	return 0, false
}

// IsTransient reports whether err is worth one retry (429 or 503).
func IsTransient(err error) bool {
	code, ok := StatusCode(err)
	return ok && (code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable)
}

// ErrorMessage maps a search failure to the text shown under the field.
func ErrorMessage(err error) string {
	if code, ok := StatusCode(err); ok {
		switch {
		case code == http.StatusBadRequest:
			return MsgBadQuery
		case code == http.StatusTooManyRequests:
			return MsgRateLimited
		case code >= 400 && code < 500:
			return fmt.Sprintf(msgClientErrorFmt, code)
		default:
			return fmt.Sprintf(msgServerErrorFmt, code)
		}
	}

	if errors.Is(err, ErrMalformedResponse) {
		return MsgMalformed
	}
	// transport failures, timeouts and anything unexpected
	return MsgNetwork
}
