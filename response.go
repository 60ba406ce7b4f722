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

package flagon

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/flagon-dev/flagon/httperr"
)

// Response is the buffered response a request resolves to: status, headers
// and body are assembled during dispatch and emitted once at the end.
type Response struct {
	status int
	header http.Header
	body   []byte
}

// NewResponse creates a Response with the given status and body and no
// preset headers.
func NewResponse(status int, body []byte) *Response {
	return &Response{
		status: status,
		header: http.Header{},
		body:   body,
	}
}

// Text builds a plain-text response.
func Text(status int, body string) *Response {
	r := NewResponse(status, []byte(body))
	r.header.Set("Content-Type", "text/plain; charset=utf-8")
	return r
}

// HTML builds an HTML response.
func HTML(status int, body string) *Response {
	r := NewResponse(status, []byte(body))
	r.header.Set("Content-Type", "text/html; charset=utf-8")
	return r
}

// JSON builds a 200 JSON response from v. Combine with WithStatus for
// other codes. The (value, error) shape matches the handler signature, so
// a handler can end with:
//
//	return flagon.JSON(payload)
func JSON(v any) (*Response, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding JSON response: %w", err)
	}
	r := NewResponse(http.StatusOK, b)
	r.header.Set("Content-Type", "application/json")
	return r, nil
}

// YAML builds a 200 YAML response from v.
func YAML(v any) (*Response, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding YAML response: %w", err)
	}
	r := NewResponse(http.StatusOK, b)
	r.header.Set("Content-Type", "application/yaml")
	return r, nil
}

// Redirect builds a redirect to location. The code defaults to 302 and
// must be a 3xx status when given.
func Redirect(location string, code ...int) *Response {
	status := http.StatusFound
	if len(code) > 0 {
		status = code[0]
	}
	body := fmt.Sprintf("<a href=%q>%s</a>\n", location, http.StatusText(status))
	r := NewResponse(status, []byte(body))
	r.header.Set("Content-Type", "text/html; charset=utf-8")
	r.header.Set("Location", location)
	return r
}

// NoContent builds an empty 204 response.
func NoContent() *Response {
	return NewResponse(http.StatusNoContent, nil)
}

// errorResponse renders an HTTP-classified error with its default body and
// mandated headers.
func errorResponse(e *httperr.Error) *Response {
	r := NewResponse(e.Code, []byte(e.Body()))
	for k, vs := range e.Headers() {
		for _, v := range vs {
			r.header.Add(k, v)
		}
	}
	return r
}

// Status returns the response status code.
func (r *Response) Status() int { return r.status }

// WithStatus sets the status code and returns the response for chaining.
func (r *Response) WithStatus(status int) *Response {
	r.status = status
	return r
}

// Header returns the response headers for direct manipulation.
func (r *Response) Header() http.Header { return r.header }

// SetHeader sets a header, replacing existing values, and returns the
// response for chaining.
func (r *Response) SetHeader(key, value string) *Response {
	r.header.Set(key, value)
	return r
}

// AddHeader appends a header value and returns the response for chaining.
func (r *Response) AddHeader(key, value string) *Response {
	r.header.Add(key, value)
	return r
}

// SetCookie appends a Set-Cookie header for cookie.
func (r *Response) SetCookie(cookie *http.Cookie) *Response {
	if v := cookie.String(); v != "" {
		r.header.Add("Set-Cookie", v)
	}
	return r
}

// Body returns the response body bytes.
func (r *Response) Body() []byte { return r.body }

// SetBody replaces the response body and returns the response for
// chaining.
func (r *Response) SetBody(body []byte) *Response {
	r.body = body
	return r
}

// WriteTo emits the response on w: headers, status line, then body.
func (r *Response) WriteTo(w http.ResponseWriter) error {
	h := w.Header()
	for k, vs := range r.header {
		h[k] = vs
	}
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(r.body) == 0 || status == http.StatusNoContent {
		return nil
	}
	if _, err := w.Write(r.body); err != nil {
		return fmt.Errorf("writing response body: %w", err)
	}
	return nil
}
