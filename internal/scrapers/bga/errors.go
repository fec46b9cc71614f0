package bga

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// RateLimitSignature is the text BGA puts in error payloads when it throttles an
// account. No status code distinguishes it, the text is the only signal.
const RateLimitSignature = "You have reached a limit"

var ErrNotAuthenticated = errors.New("bga: not authenticated")

// AuthError is returned for any failure while establishing the session. BGA
// answers wrong credentials and server trouble the same way, so neither is
// distinguished here.
type AuthError struct {
	Stage string
	Err   error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("bga: login failed (%s): %s", e.Stage, e.Err.Error())
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// PlatformError is a well formed response that reports failure through its status
// field, usually alongside a successful http status.
type PlatformError struct {
	Endpoint string
	Message  string
	Code     int64
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("bga: %s: platform error (code %d): %s", e.Endpoint, e.Code, e.Message)
}

func (e *PlatformError) RateLimited() bool {
	return strings.Contains(e.Message, RateLimitSignature)
}

// TransportError covers network failures, non-2xx statuses and bodies that could
// not be decoded. Body holds the start of the response when there was one.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	var out strings.Builder
	out.WriteString("bga: ")
	out.WriteString(e.Endpoint)
	out.WriteString(": ")
	if e.StatusCode != 0 {
		out.WriteString(fmt.Sprintf("http %d", e.StatusCode))
	} else {
		out.WriteString("transport")
	}
	if e.Err != nil {
		out.WriteString(": ")
		out.WriteString(e.Err.Error())
	}
	if e.Body != "" {
		out.WriteString(": ")
		out.WriteString(e.Body)
	}
	return out.String()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err carries BGA's rate limit text anywhere in its
// chain.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var platformErr *PlatformError
	if errors.As(err, &platformErr) && platformErr.RateLimited() {
		return true
	}
	return strings.Contains(err.Error(), RateLimitSignature)
}

const maxBodySnippet = 256

// bodySnippet keeps the start of a body, or the part around the rate limit text
// if the body has it, so IsRateLimited still works on the error.
func bodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if idx := strings.Index(s, RateLimitSignature); idx >= 0 && idx+len(RateLimitSignature) > maxBodySnippet {
		return "..." + truncate(s[idx:], maxBodySnippet)
	}
	if len(s) > maxBodySnippet {
		return truncate(s, maxBodySnippet) + "..."
	}
	return s
}

// truncate cuts s to at most n bytes without splitting a character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
