package ipfsapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	oaerrors "github.com/go-openapi/errors"
	"github.com/go-openapi/runtime"
)

// maxErrorBodySize limits the size of error response bodies read from the daemon.
const maxErrorBodySize = 4096

// Error represents an IPFS API error.
//
// Code is one of the upper-case identifiers listed with the sentinel errors.
// Status is the HTTP status returned by the daemon, or 0 when the failure
// happened before a response was received.
type Error struct {
	Code    string
	Message string
	Status  int
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ipfsapi: %s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("ipfsapi: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
//
// This lets callers match against the sentinel errors:
//
//	if errors.Is(err, ipfsapi.ErrNotFound) { ... }
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinel errors.
var (
	ErrNotFound         = &Error{Code: "NOT_FOUND", Message: "resource not found", Status: 404}
	ErrTimeout          = &Error{Code: "TIMEOUT", Message: "request timed out", Status: 408}
	ErrUnauthorized     = &Error{Code: "UNAUTHORIZED", Message: "invalid credentials", Status: 401}
	ErrBadRequest       = &Error{Code: "BAD_REQUEST", Message: "invalid request", Status: 400}
	ErrMethodNotAllowed = &Error{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed", Status: 405}
	ErrInternal         = &Error{Code: "INTERNAL", Message: "internal server error", Status: 500}
	ErrUnavailable      = &Error{Code: "UNAVAILABLE", Message: "daemon unavailable", Status: 503}
)

func newError(code, message string, status int, cause error) *Error {
	return &Error{Code: code, Message: message, Status: status, Cause: cause}
}

// daemonError is the body the daemon sends with failed commands, and
// inside streams when a command fails part way through.
type daemonError struct {
	Message string `json:"Message"`
	Code    int    `json:"Code"`
	Type    string `json:"Type"`
}

// codeForStatus maps an HTTP status to an error code.
func codeForStatus(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return "BAD_REQUEST"
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return "UNAUTHORIZED"
	case status == http.StatusNotFound:
		return "NOT_FOUND"
	case status == http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return "TIMEOUT"
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable:
		return "UNAVAILABLE"
	case status >= 500:
		return "INTERNAL"
	default:
		return "REQUEST_FAILED"
	}
}

// decodeResponseError builds an *Error from a non-2xx response.
// The body is read up to maxErrorBodySize and left for the caller to close.
func decodeResponseError(resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	code := codeForStatus(resp.StatusCode)

	var de daemonError
	if err := runtime.JSONConsumer().Consume(bytes.NewReader(body), &de); err == nil && de.Message != "" {
		return newError(code, strings.TrimSpace(de.Message), resp.StatusCode, nil)
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return newError(code, msg, resp.StatusCode, nil)
}

// handleError converts a transport error into an *Error.
func (c *Client) handleError(err error, msg string) error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newError("TIMEOUT", msg, 0, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError("TIMEOUT", msg, 0, err)
	}
	if errors.Is(err, context.Canceled) {
		return newError("REQUEST_FAILED", msg, 0, err)
	}
	return newError("CONNECTION_FAILED", msg, 0, err)
}

// validationError converts go-openapi validation failures into a BAD_REQUEST.
func validationError(errs ...error) error {
	if len(errs) == 0 {
		return nil
	}
	composite := oaerrors.CompositeValidationError(errs...)
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return newError("BAD_REQUEST", strings.Join(msgs, "; "), 400, composite)
}
