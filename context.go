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
	"fmt"
	"log/slog"
	"net/http"
	"sort"
)

// contextState tracks the one-way lifecycle of a Context.
type contextState uint8

const (
	ctxUnpushed contextState = iota
	ctxPushed
	ctxPopped
)

// contextStack is the LIFO of pushed contexts for one request chain. It is
// owned by a single goroutine for the lifetime of the chain and needs no
// locking; contexts are never shared across requests.
type contextStack struct {
	frames []*Context
}

func (s *contextStack) push(c *Context) {
	s.frames = append(s.frames, c)
}

func (s *contextStack) top() *Context {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

func (s *contextStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// Context is the request-scoped state threaded through every hook and
// handler: the wrapped Request, the per-request value namespace, and the
// push/pop lifecycle that drives teardown.
//
// A Context is created per request by the dispatcher (or explicitly via
// App.NewContext in tests), pushed exactly once, and popped exactly once,
// in LIFO order with any contexts derived from it. It is not reusable and
// must not be shared across requests.
type Context struct {
	app     *App
	Request *Request

	state    contextState
	stack    *contextStack
	g        map[string]any
	response *Response
}

// NewContext builds an unpushed Context for r with the route already
// resolved, starting a fresh context chain. The dispatcher does this for
// every request; call it directly only to drive requests by hand:
//
//	c := app.NewContext(httptest.NewRequest("GET", "/hello/world", nil))
//	c.Push()
//	defer c.Pop(nil)
func (a *App) NewContext(r *http.Request) *Context {
	req := newRequest(r)
	a.resolveRoute(req)
	return &Context{
		app:     a,
		Request: req,
		stack:   &contextStack{},
	}
}

// Derive builds an unpushed Context for r sharing this context's chain,
// for nested dispatch (for example an internal sub-request). Derived
// contexts must be popped before the context they were derived from.
func (c *Context) Derive(r *http.Request) *Context {
	req := newRequest(r)
	c.app.resolveRoute(req)
	return &Context{
		app:     c.app,
		Request: req,
		stack:   c.stack,
	}
}

// Push enters the context: it becomes the top of its chain and receives a
// fresh value namespace. Pushing a context twice, or after it was popped,
// is a programming error and panics.
func (c *Context) Push() {
	switch c.state {
	case ctxPushed:
		panic("flagon: context already pushed")
	case ctxPopped:
		panic("flagon: context reused after pop")
	}
	c.g = make(map[string]any)
	c.state = ctxPushed
	c.stack.push(c)
}

// Pop leaves the context: teardown hooks fire with err (nil when the
// request succeeded or its failure was handled), then the context is
// removed from its chain. Popping a context that is not the top of its
// chain is a programming error and panics; so is popping twice or popping
// an unpushed context. The transition to the popped state is unconditional
// even when a teardown hook panics.
func (c *Context) Pop(err error) {
	switch c.state {
	case ctxUnpushed:
		panic("flagon: popped context that was never pushed")
	case ctxPopped:
		panic("flagon: context already popped")
	}
	if top := c.stack.top(); top != c {
		panic(fmt.Sprintf("flagon: popped wrong request context (%p is not the top of its chain)", c))
	}
	defer func() {
		c.stack.pop()
		c.state = ctxPopped
	}()
	c.app.doTeardown(c, err)
}

// App returns the application that created this context.
func (c *Context) App() *App { return c.app }

// Logger returns the application logger.
func (c *Context) Logger() *slog.Logger { return c.app.logger }

// Endpoint returns the matched endpoint identifier.
func (c *Context) Endpoint() string { return c.Request.Endpoint() }

// Blueprint returns the blueprint owning the matched endpoint, or the
// empty string.
func (c *Context) Blueprint() string { return c.Request.Blueprint() }

// Params returns the typed path parameters.
func (c *Context) Params() map[string]any { return c.Request.Params() }

// Param returns one path parameter, or nil when absent.
func (c *Context) Param(name string) any { return c.Request.Param(name) }

// Response returns the finalized response during teardown, and nil before
// the response exists.
func (c *Context) Response() *Response { return c.response }

// URLFor builds the URL for endpoint through the application router.
func (c *Context) URLFor(endpoint string, params map[string]any) (string, error) {
	return c.app.URLFor(endpoint, params)
}

// Set stores a value in the per-request namespace. The namespace is
// created fresh at push time and discarded at pop; it never outlives the
// request.
func (c *Context) Set(key string, value any) {
	if c.g == nil {
		panic("flagon: context value set before push")
	}
	c.g[key] = value
}

// Get reads a value from the per-request namespace.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.g[key]
	return v, ok
}

// MustGet reads a value from the per-request namespace and panics when the
// key is absent.
func (c *Context) MustGet(key string) any {
	v, ok := c.g[key]
	if !ok {
		panic(fmt.Sprintf("flagon: key %q does not exist in request namespace", key))
	}
	return v
}

// Keys returns the sorted keys currently set in the per-request namespace.
func (c *Context) Keys() []string {
	if len(c.g) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.g))
	for k := range c.g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
