// Copyright 2025 The Flagon Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package httperr defines the HTTP-classified error values that the
// dispatcher translates into responses.
//
// An *Error carries a status code, the canonical reason phrase, and a short
// human-readable description that becomes the default response body when no
// application error handler claims the failure. Handlers and hooks return
// these values (directly or wrapped) to produce a specific status:
//
//	func show(c *flagon.Context) (any, error) {
//		item, ok := store.Get(c.Param("id"))
//		if !ok {
//			return nil, httperr.NotFound("")
//		}
//		return flagon.JSON(item)
//	}
//
// Constructors accept a description; the empty string selects the default
// text for that status.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error is an HTTP-classified failure. It satisfies the error interface so
// it can travel through ordinary error returns and be recovered with
// errors.As at the translation boundary.
type Error struct {
	// Code is the HTTP status code this failure maps to.
	Code int

	// Reason is the canonical reason phrase, e.g. "Not Found".
	Reason string

	// Description is the human-readable default body text.
	Description string

	// Allowed lists the permitted methods for 405 responses. Rendered as
	// the Allow header, sorted and comma-joined.
	Allowed []string
}

// defaultDescriptions holds the default body text per status code. Codes
// without an entry fall back to the reason phrase alone.
var defaultDescriptions = map[int]string{
	http.StatusBadRequest:                   "The server could not understand the request.",
	http.StatusUnauthorized:                 "The server could not verify that you are authorized to access the requested URL.",
	http.StatusForbidden:                    "You don't have permission to access the requested resource.",
	http.StatusNotFound:                     "The requested URL was not found on the server.",
	http.StatusMethodNotAllowed:             "The method is not allowed for the requested URL.",
	http.StatusNotAcceptable:                "The resource cannot be returned in the format acceptable to your client.",
	http.StatusRequestTimeout:               "The server closed the connection because the request took too long.",
	http.StatusConflict:                     "The request conflicts with the current state of the resource.",
	http.StatusGone:                         "The requested URL is no longer available on this server.",
	http.StatusLengthRequired:               "A request with this method requires a valid Content-Length header.",
	http.StatusPreconditionFailed:           "A precondition on the request evaluated to false.",
	http.StatusRequestEntityTooLarge:        "The submitted data exceeds the size the server is willing to accept.",
	http.StatusRequestURITooLong:            "The requested URL exceeds the length the server is willing to interpret.",
	http.StatusUnsupportedMediaType:         "The server does not support the media type of the submitted data.",
	http.StatusRequestedRangeNotSatisfiable: "The server cannot provide the requested range.",
	http.StatusExpectationFailed:            "The server could not meet the requirements of the Expect header.",
	http.StatusTeapot:                       "This server is a teapot, not a coffee machine.",
	http.StatusUnprocessableEntity:          "The request was well-formed but could not be processed.",
	http.StatusPreconditionRequired:         "This request must be conditional.",
	http.StatusTooManyRequests:              "The rate limit for this resource has been exceeded.",
	http.StatusRequestHeaderFieldsTooLarge:  "A header field in the request exceeds the server's limit.",
	http.StatusInternalServerError:          "The server encountered an internal error and was unable to complete your request.",
	http.StatusNotImplemented:               "The server does not support the action requested.",
	http.StatusBadGateway:                   "The proxy server received an invalid response from an upstream server.",
	http.StatusServiceUnavailable:           "The server is temporarily unable to service your request.",
	http.StatusGatewayTimeout:               "The connection to an upstream server timed out.",
	http.StatusHTTPVersionNotSupported:      "The server does not support the HTTP protocol version used in the request.",
}

// New returns an Error for an arbitrary status code. The reason phrase is
// taken from the status code; description may be empty to select the
// default text for that code.
func New(code int, description string) *Error {
	reason := http.StatusText(code)
	if reason == "" {
		reason = "Unknown Error"
	}
	if description == "" {
		description = defaultDescriptions[code]
		if description == "" {
			description = reason + "."
		}
	}
	return &Error{Code: code, Reason: reason, Description: description}
}

// Error renders as "404 Not Found: The requested URL was not found on the
// server." so wrapped chains stay readable in logs.
func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Code, e.Reason, e.Description)
}

// Body returns the default plain-text response body for this failure.
func (e *Error) Body() string {
	return fmt.Sprintf("%d %s: %s\n", e.Code, e.Reason, e.Description)
}

// Headers returns the response headers this failure mandates beyond the
// status line. For 405 that includes Allow with the sorted permitted
// method set.
func (e *Error) Headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "text/plain; charset=utf-8")
	if e.Code == http.StatusMethodNotAllowed && len(e.Allowed) > 0 {
		allowed := make([]string, len(e.Allowed))
		copy(allowed, e.Allowed)
		sort.Strings(allowed)
		h.Set("Allow", strings.Join(allowed, ", "))
	}
	return h
}

// StatusCode extracts the HTTP status from err if it is (or wraps) an
// *Error. It returns 0 when err carries no HTTP classification.
func StatusCode(err error) int {
	if e := From(err); e != nil {
		return e.Code
	}
	return 0
}

// From unwraps err to an *Error, or nil when err has no HTTP
// classification anywhere in its chain.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// BadRequest returns a 400 error.
func BadRequest(description string) *Error {
	return New(http.StatusBadRequest, description)
}

// Unauthorized returns a 401 error.
func Unauthorized(description string) *Error {
	return New(http.StatusUnauthorized, description)
}

// Forbidden returns a 403 error.
func Forbidden(description string) *Error {
	return New(http.StatusForbidden, description)
}

// NotFound returns a 404 error.
func NotFound(description string) *Error {
	return New(http.StatusNotFound, description)
}

// MethodNotAllowed returns a 405 error carrying the permitted method set.
func MethodNotAllowed(allowed []string, description string) *Error {
	e := New(http.StatusMethodNotAllowed, description)
	e.Allowed = append([]string(nil), allowed...)
	return e
}

// NotAcceptable returns a 406 error.
func NotAcceptable(description string) *Error {
	return New(http.StatusNotAcceptable, description)
}

// RequestTimeout returns a 408 error.
func RequestTimeout(description string) *Error {
	return New(http.StatusRequestTimeout, description)
}

// Conflict returns a 409 error.
func Conflict(description string) *Error {
	return New(http.StatusConflict, description)
}

// Gone returns a 410 error.
func Gone(description string) *Error {
	return New(http.StatusGone, description)
}

// UnprocessableEntity returns a 422 error.
func UnprocessableEntity(description string) *Error {
	return New(http.StatusUnprocessableEntity, description)
}

// TooManyRequests returns a 429 error.
func TooManyRequests(description string) *Error {
	return New(http.StatusTooManyRequests, description)
}

// InternalServerError returns a 500 error.
func InternalServerError(description string) *Error {
	return New(http.StatusInternalServerError, description)
}

// NotImplemented returns a 501 error.
func NotImplemented(description string) *Error {
	return New(http.StatusNotImplemented, description)
}

// BadGateway returns a 502 error.
func BadGateway(description string) *Error {
	return New(http.StatusBadGateway, description)
}

// ServiceUnavailable returns a 503 error.
func ServiceUnavailable(description string) *Error {
	return New(http.StatusServiceUnavailable, description)
}

// GatewayTimeout returns a 504 error.
func GatewayTimeout(description string) *Error {
	return New(http.StatusGatewayTimeout, description)
}
