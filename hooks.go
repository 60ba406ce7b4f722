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

import "errors"

// HandlerFunc is the endpoint handler signature. The returned value is
// normalized into a Response: a string or []byte becomes a 200, a
// *Response passes through, and an *httperr.Error becomes its error
// response. A non-nil error flows through the registered error handlers.
type HandlerFunc func(c *Context) (any, error)

// BeforeRequestFunc runs before the handler. The first hook returning a
// non-nil value short-circuits: the value is normalized into the response
// and the handler is skipped.
type BeforeRequestFunc func(c *Context) (any, error)

// AfterRequestFunc runs after the handler with the normalized Response and
// returns the response to continue with, replaced or not.
type AfterRequestFunc func(c *Context, res *Response) (*Response, error)

// TeardownFunc runs when the request context is popped, always, even when
// the request failed. err is the unhandled failure, or nil when the
// request succeeded or its failure was handled.
type TeardownFunc func(c *Context, err error)

// URLValuePreprocessorFunc runs before any before-request hook and may
// mutate the extracted path parameters in place.
type URLValuePreprocessorFunc func(c *Context, endpoint string, params map[string]any)

// ErrorHandlerFunc turns a classified failure into a handler-style return
// value, which is then normalized like any handler result.
type ErrorHandlerFunc func(c *Context, err error) (any, error)

// ErrorMatcher pairs a guard with a handler for type-based error
// dispatch. Build one with ErrorAs.
type ErrorMatcher struct {
	match  func(error) bool
	handle ErrorHandlerFunc
}

// ErrorAs builds an ErrorMatcher claiming any error that errors.As-matches
// E, wrapped errors included. The handler receives the unwrapped value.
//
// Example:
//
//	app.OnError(flagon.ErrorAs(func(c *flagon.Context, err *pg.Error) (any, error) {
//		return flagon.Text(http.StatusServiceUnavailable, "database down"), nil
//	}))
func ErrorAs[E error](fn func(c *Context, err E) (any, error)) ErrorMatcher {
	return ErrorMatcher{
		match: func(err error) bool {
			var target E
			return errors.As(err, &target)
		},
		handle: func(c *Context, err error) (any, error) {
			var target E
			errors.As(err, &target)
			return fn(c, target)
		},
	}
}

// hookTable holds every hook registry, keyed by scope: the empty string is
// application scope, anything else a blueprint name.
type hookTable struct {
	before        map[string][]BeforeRequestFunc
	after         map[string][]AfterRequestFunc
	teardown      map[string][]TeardownFunc
	urlPreprocess map[string][]URLValuePreprocessorFunc
	status        map[string]map[int]ErrorHandlerFunc
	typed         map[string][]ErrorMatcher
}

func newHookTable() *hookTable {
	return &hookTable{
		before:        make(map[string][]BeforeRequestFunc),
		after:         make(map[string][]AfterRequestFunc),
		teardown:      make(map[string][]TeardownFunc),
		urlPreprocess: make(map[string][]URLValuePreprocessorFunc),
		status:        make(map[string]map[int]ErrorHandlerFunc),
		typed:         make(map[string][]ErrorMatcher),
	}
}

// setStatus records a status-code error handler for scope, replacing any
// earlier handler for the same code.
func (t *hookTable) setStatus(scope string, code int, fn ErrorHandlerFunc) {
	byCode, ok := t.status[scope]
	if !ok {
		byCode = make(map[int]ErrorHandlerFunc)
		t.status[scope] = byCode
	}
	byCode[code] = fn
}

// statusHandler resolves a status-code handler, blueprint scope first.
func (t *hookTable) statusHandler(blueprint string, code int) ErrorHandlerFunc {
	if blueprint != "" {
		if fn, ok := t.status[blueprint][code]; ok {
			return fn
		}
	}
	return t.status[""][code]
}

// typedHandler resolves the first type-based handler whose guard claims
// err, blueprint scope first, in registration order.
func (t *hookTable) typedHandler(blueprint string, err error) ErrorHandlerFunc {
	if blueprint != "" {
		for _, m := range t.typed[blueprint] {
			if m.match(err) {
				return m.handle
			}
		}
	}
	for _, m := range t.typed[""] {
		if m.match(err) {
			return m.handle
		}
	}
	return nil
}
