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
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/flagon-dev/flagon/httperr"
)

// panicError carries a recovered panic value through the error-handling
// chain together with the stack captured at recovery time.
type panicError struct {
	value any
	stack []byte
}

func newPanicError(rec any) *panicError {
	return &panicError{value: rec, stack: debug.Stack()}
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// Unwrap exposes a panic value that was itself an error, so errors.As can
// still route it through typed and status handlers.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}

// scopeChain returns the hook scopes for a request in global-first order:
// the application scope, then the owning blueprint when there is one.
func scopeChain(blueprint string) []string {
	if blueprint == "" {
		return []string{""}
	}
	return []string{"", blueprint}
}

// ServeHTTP drives one request through the full lifecycle: push a fresh
// request context, dispatch, translate errors, emit the response, then
// tear the context down. It never lets a handler error or panic escape to
// the HTTP server.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := a.NewContext(r)
	c.Push()

	// unhandled holds an error only when it escaped every registered
	// handler; teardown hooks receive it, or nil for handled requests.
	var unhandled error
	defer func() { c.Pop(unhandled) }()

	resp, err := a.fullDispatch(c)
	if err != nil {
		unhandled = err
		resp = a.handleUncaught(c, err)
	}
	c.response = resp
	if werr := resp.WriteTo(w); werr != nil {
		a.logger.Error("writing response",
			"method", r.Method,
			"path", r.URL.Path,
			"error", werr,
		)
	}
}

// fullDispatch runs steps three through six of the request lifecycle:
// preprocess, invoke, normalize, postprocess. Errors from hooks and the
// handler are translated through the registered status and typed error
// handlers; an error is returned only when nothing claimed it.
func (a *App) fullDispatch(c *Context) (*Response, error) {
	rv, err := a.dispatchRequest(c)
	if err != nil {
		rv, err = a.handleUserError(c, err)
		if err != nil {
			return nil, err
		}
	}
	resp, err := a.makeResponse(rv)
	if err != nil {
		return nil, err
	}
	return a.processResponse(c, resp)
}

// dispatchRequest covers preprocess and invoke. The returned value is the
// handler's (or a short-circuiting hook's) raw return value, not yet
// normalized. Panics are captured as errors.
func (a *App) dispatchRequest(c *Context) (rv any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			rv, err = nil, newPanicError(rec)
		}
	}()

	req := c.Request
	if a.immediateRoutingErrors && req.routingErr != nil {
		return nil, req.routingErr
	}

	chain := scopeChain(req.Blueprint())

	if req.routingErr == nil {
		for _, scope := range chain {
			for _, fn := range a.hooks.urlPreprocess[scope] {
				fn(c, req.endpoint, req.params)
			}
		}
	}
	for _, scope := range chain {
		for _, fn := range a.hooks.before[scope] {
			hrv, herr := fn(c)
			if herr != nil {
				return nil, herr
			}
			if hrv != nil {
				return hrv, nil
			}
		}
	}

	if req.routingErr != nil {
		return nil, req.routingErr
	}
	handler, ok := a.handlers[req.endpoint]
	if !ok {
		return nil, fmt.Errorf("flagon: no handler registered for endpoint %q", req.endpoint)
	}
	return handler(c)
}

// handleUserError resolves an error raised during dispatch through the
// two-phase handler lookup: HTTP-status errors consult the status handler
// for their code (blueprint scope first, then application), falling back
// to the error's own default rendering; other errors consult type-based
// matchers the same way. The returned error is non-nil only when nothing
// matched, or when the matched handler itself failed.
func (a *App) handleUserError(c *Context, err error) (any, error) {
	blueprint := c.Request.Blueprint()
	if httpErr := httperr.From(err); httpErr != nil {
		if fn := a.hooks.statusHandler(blueprint, httpErr.Code); fn != nil {
			return a.callErrorHandler(c, fn, err)
		}
		return httpErr, nil
	}
	if fn := a.hooks.typedHandler(blueprint, err); fn != nil {
		return a.callErrorHandler(c, fn, err)
	}
	return nil, err
}

func (a *App) callErrorHandler(c *Context, fn ErrorHandlerFunc, cause error) (rv any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			rv, err = nil, newPanicError(rec)
		}
	}()
	return fn(c, cause)
}

// makeResponse normalizes a handler return value into a Response. Strings
// and byte slices become 200 responses, an httperr.Error renders its own
// status and body, a *Response passes through. Anything else is a
// programming error.
func (a *App) makeResponse(rv any) (*Response, error) {
	switch v := rv.(type) {
	case nil:
		return nil, ErrNilResponse
	case *Response:
		if v == nil {
			return nil, ErrNilResponse
		}
		return v, nil
	case string:
		return Text(http.StatusOK, v), nil
	case []byte:
		return NewResponse(http.StatusOK, v), nil
	case *httperr.Error:
		return errorResponse(v), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrResponseType, rv)
	}
}

// processResponse runs the after-request hooks, blueprint scope before
// application scope, most recently registered first within each scope.
// Each hook may replace the response; returning neither a response nor an
// error is rejected.
func (a *App) processResponse(c *Context, resp *Response) (out *Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, newPanicError(rec)
		}
	}()

	chain := scopeChain(c.Request.Blueprint())
	for i := len(chain) - 1; i >= 0; i-- {
		fns := a.hooks.after[chain[i]]
		for j := len(fns) - 1; j >= 0; j-- {
			next, herr := fns[j](c, resp)
			if herr != nil {
				return nil, herr
			}
			if next == nil {
				return nil, fmt.Errorf("%w: after-request hook returned no response", ErrNilResponse)
			}
			resp = next
		}
	}
	return resp, nil
}

// handleUncaught is the outer catch: the error escaped every registered
// handler. It is logged, then a registered 500 handler may shape the
// response; otherwise, or when that handler fails too, the client gets
// the generic 500 body. Internal details never reach the client.
func (a *App) handleUncaught(c *Context, err error) *Response {
	attrs := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err,
	}
	var pe *panicError
	if errors.As(err, &pe) {
		attrs = append(attrs, "stack", string(pe.stack))
	}
	a.logger.Error("unhandled error in request", attrs...)

	if fn := a.hooks.statusHandler(c.Request.Blueprint(), http.StatusInternalServerError); fn != nil {
		rv, herr := a.callErrorHandler(c, fn, err)
		if herr == nil {
			resp, merr := a.makeResponse(rv)
			if merr == nil {
				return resp
			}
			herr = merr
		}
		a.logger.Error("500 handler failed", "error", herr)
	}
	return errorResponse(httperr.InternalServerError(""))
}

// doTeardown runs teardown hooks at context pop time, blueprint scope
// first, most recently registered first within each scope. err is the
// unhandled dispatch error, or nil when the request was handled.
func (a *App) doTeardown(c *Context, err error) {
	chain := scopeChain(c.Request.Blueprint())
	for i := len(chain) - 1; i >= 0; i-- {
		fns := a.hooks.teardown[chain[i]]
		for j := len(fns) - 1; j >= 0; j-- {
			fns[j](c, err)
		}
	}
}
