// Package failure classifies errors from external calls so callers can
// decide per cause whether to degrade or surface them.
package failure

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/mmcdole/gofeed"
	"google.golang.org/api/googleapi"
)

// Kind is the cause of a failed external call.
type Kind string

const (
	Network   Kind = "network"
	Auth      Kind = "auth"
	RateLimit Kind = "rate_limit"
	Malformed Kind = "malformed"
	Config    Kind = "config"
	Other     Kind = "other"
)

// Error carries a classified failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusError is returned by plain HTTP clients for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

// New wraps err with an explicit kind.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Wrap classifies err and wraps it. Already classified errors keep their kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: Classify(err), Op: op, Err: err}
}

// Classify returns the kind of err, or "" for a nil error.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}

	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}

	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return fromStatus(httpErr.StatusCode)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return fromStatus(apiErr.Code)
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fromStatus(statusErr.StatusCode)
	}

	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		return Malformed
	}
	var syntaxErr *xml.SyntaxError
	var jsonErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.As(err, &jsonErr) {
		return Malformed
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Network
	}
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return Network
	}

	return Other
}

func fromStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return Auth
	case code == http.StatusTooManyRequests:
		return RateLimit
	case code == http.StatusNotFound || code == http.StatusBadRequest:
		return Config
	case code >= 500:
		return Network
	}
	return Other
}
