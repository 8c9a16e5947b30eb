package genai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorKind is the closed classification assigned to provider failures at the
// point they originate. Downstream code branches on kinds instead of
// re-parsing message text.
type ErrorKind string

const (
	KindRateLimited ErrorKind = "rate_limited"
	KindTimeout     ErrorKind = "timeout"
	KindUnavailable ErrorKind = "unavailable"
	KindNetwork     ErrorKind = "network"
	KindAuth        ErrorKind = "auth"
	KindSafety      ErrorKind = "safety"
	KindInvalid     ErrorKind = "invalid"
	KindInternal    ErrorKind = "internal"
)

// ErrMissingAPIKey is returned when a remote call is attempted without
// credentials configured.
var ErrMissingAPIKey = &Error{Kind: KindAuth, Message: "genai: api key not configured"}

// Error is a classified provider failure.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("genai: %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("genai: %s: %s", e.Kind, e.Message)
}

// KindOf extracts the classification from an error. Errors that did not
// originate in this package are sniffed by message text, since upstream
// services only expose unstructured strings.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		if nerr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	return sniffKind(err.Error())
}

// Token lists mirror the upstream providers' error vocabulary; matching stays
// case-insensitive because the text is not under our control.
var (
	rateLimitTokens   = []string{"rate limit", "ratelimiterror", "quota"}
	timeoutTokens     = []string{"timeout", "timeouterror", "etimedout"}
	networkTokens     = []string{"connection", "connectionerror", "econnreset", "network", "networkerror", "fetcherror"}
	unavailableTokens = []string{"service unavailable", "serviceunavailable", "server unavailable"}
	authTokens        = []string{"permission", "authentication", "unauthorized", "forbidden", "credential"}
	safetyTokens      = []string{"safety"}
)

func sniffKind(message string) ErrorKind {
	lower := strings.ToLower(message)
	matches := func(tokens []string) bool {
		for _, token := range tokens {
			if strings.Contains(lower, token) {
				return true
			}
		}
		return false
	}
	switch {
	case matches(rateLimitTokens):
		return KindRateLimited
	case matches(timeoutTokens):
		return KindTimeout
	case matches(unavailableTokens):
		return KindUnavailable
	case matches(networkTokens):
		return KindNetwork
	case matches(authTokens):
		return KindAuth
	case matches(safetyTokens):
		return KindSafety
	default:
		return KindInternal
	}
}

// ClassifyHTTP maps an HTTP response code plus message into an Error.
func ClassifyHTTP(status int, message string) *Error {
	kind := KindInternal
	switch {
	case status == 429:
		kind = KindRateLimited
	case status == 401 || status == 403:
		kind = KindAuth
	case status == 408:
		kind = KindTimeout
	case status == 503:
		kind = KindUnavailable
	case status >= 500:
		kind = KindInternal
	case status == 400:
		if sniffKind(message) == KindSafety {
			kind = KindSafety
		} else {
			kind = KindInvalid
		}
	default:
		kind = sniffKind(message)
	}
	return &Error{Kind: kind, Status: status, Message: message}
}

// Classify maps a transport-level error into an Error.
func Classify(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: err.Error()}
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &Error{Kind: KindTimeout, Message: err.Error()}
	}
	return &Error{Kind: KindNetwork, Message: err.Error()}
}
