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
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/flagon-dev/flagon/router"
)

// Default configuration values.
const (
	DefaultServiceName     = "flagon-app"
	DefaultVersion         = "0.1.0"
	DefaultEnvironment     = "development"
	DefaultReadTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second

	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

// noopLogger is a singleton no-op logger used when no logger is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// App is the central application object: it owns the router, the endpoint
// handler table, the hook registries, and the per-request dispatch. Create
// one with New or MustNew, register routes and hooks, then serve it — App
// satisfies http.Handler — or call Run.
type App struct {
	router     *router.Router
	handlers   map[string]HandlerFunc
	hooks      *hookTable
	blueprints map[string]*Blueprint
	config     *Config
	logger     *slog.Logger

	serviceName string
	version     string
	environment string

	strictRouting          bool
	immediateRoutingErrors bool
	showBanner             bool
	converters             map[string]router.ConverterFunc
	server                 *serverConfig

	startHooks    []func(ctx context.Context) error
	shutdownHooks []func(ctx context.Context)
}

// New creates an App with the given options.
//
// Example:
//
//	app, err := flagon.New(
//		flagon.WithServiceName("orders"),
//		flagon.WithLogger(logger),
//	)
func New(opts ...Option) (*App, error) {
	a := &App{
		handlers:    make(map[string]HandlerFunc),
		hooks:       newHookTable(),
		blueprints:  make(map[string]*Blueprint),
		config:      NewConfig(),
		logger:      noopLogger,
		serviceName: DefaultServiceName,
		version:     DefaultVersion,
		environment: DefaultEnvironment,
		showBanner:  true,
		server:      defaultServerConfig(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	if err := a.server.validate(); err != nil {
		return nil, err
	}

	routerOpts := []router.Option{router.WithLogger(a.logger)}
	if a.strictRouting {
		routerOpts = append(routerOpts, router.WithStrictOrder())
	}
	for name, fn := range a.converters {
		routerOpts = append(routerOpts, router.WithConverter(name, fn))
	}
	rt, err := router.New(routerOpts...)
	if err != nil {
		return nil, err
	}
	a.router = rt
	return a, nil
}

// MustNew creates an App and panics if an option fails. Intended for main
// functions and tests where a configuration error should abort startup.
func MustNew(opts ...Option) *App {
	a, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("flagon: %v", err))
	}
	return a
}

// Router returns the underlying router, for diagnostics such as route
// listings. Routes should be added through Handle and the verb helpers so
// the handler table stays consistent.
func (a *App) Router() *router.Router { return a.router }

// Config returns the application's key/value configuration store.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// ServiceName returns the configured service name.
func (a *App) ServiceName() string { return a.serviceName }

// Version returns the configured service version.
func (a *App) Version() string { return a.version }

// Environment returns the configured environment name.
func (a *App) Environment() string { return a.environment }

// RegisterConverter binds a converter name on the underlying router.
// Rules added afterwards may use <name:var>.
func (a *App) RegisterConverter(name string, fn router.ConverterFunc) error {
	return a.router.RegisterConverter(name, fn)
}

// Handle registers fn under endpoint for rule. Methods default to GET;
// pass router.WithMethods and router.WithDefaults to adjust. Returns the
// compiled rule handle used for URL building.
//
// Endpoint names must be non-empty and, at application level, contain no
// dot (dots namespace blueprint endpoints). Registering the same endpoint
// twice is allowed only with the identical handler function, so a
// blueprint can be mounted under several prefixes.
func (a *App) Handle(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) (*router.Rule, error) {
	if strings.Contains(endpoint, ".") {
		return nil, fmt.Errorf("%w: %q", ErrEndpointDot, endpoint)
	}
	return a.addRoute(rule, endpoint, fn, opts...)
}

// addRoute is Handle without the dot restriction; blueprint registration
// goes through it with namespaced endpoints.
func (a *App) addRoute(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) (*router.Rule, error) {
	if endpoint == "" {
		return nil, ErrEndpointEmpty
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: endpoint %q", ErrNilHandler, endpoint)
	}
	if old, ok := a.handlers[endpoint]; ok {
		if reflect.ValueOf(old).Pointer() != reflect.ValueOf(fn).Pointer() {
			return nil, fmt.Errorf("%w: %q", ErrEndpointReuse, endpoint)
		}
	}
	compiled, err := a.router.Add(rule, endpoint, opts...)
	if err != nil {
		return nil, err
	}
	a.handlers[endpoint] = fn
	return compiled, nil
}

// GET registers a GET route and panics on registration errors; use Handle
// when an error return is preferred.
func (a *App) GET(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) *router.Rule {
	return a.mustHandle(rule, endpoint, fn, http.MethodGet, opts)
}

// POST registers a POST route and panics on registration errors.
func (a *App) POST(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) *router.Rule {
	return a.mustHandle(rule, endpoint, fn, http.MethodPost, opts)
}

// PUT registers a PUT route and panics on registration errors.
func (a *App) PUT(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) *router.Rule {
	return a.mustHandle(rule, endpoint, fn, http.MethodPut, opts)
}

// DELETE registers a DELETE route and panics on registration errors.
func (a *App) DELETE(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) *router.Rule {
	return a.mustHandle(rule, endpoint, fn, http.MethodDelete, opts)
}

// PATCH registers a PATCH route and panics on registration errors.
func (a *App) PATCH(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) *router.Rule {
	return a.mustHandle(rule, endpoint, fn, http.MethodPatch, opts)
}

// HEAD registers a HEAD route and panics on registration errors.
func (a *App) HEAD(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) *router.Rule {
	return a.mustHandle(rule, endpoint, fn, http.MethodHead, opts)
}

// OPTIONS registers an OPTIONS route and panics on registration errors.
func (a *App) OPTIONS(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) *router.Rule {
	return a.mustHandle(rule, endpoint, fn, http.MethodOptions, opts)
}

func (a *App) mustHandle(rule, endpoint string, fn HandlerFunc, method string, opts []router.RuleOption) *router.Rule {
	compiled, err := a.Handle(rule, endpoint, fn, append(opts, router.WithMethods(method))...)
	if err != nil {
		panic(fmt.Sprintf("flagon: registering %s %s: %v", method, rule, err))
	}
	return compiled
}

// BeforeRequest registers an application-scope hook that runs before every
// handler. The first hook returning a non-nil value short-circuits the
// handler.
func (a *App) BeforeRequest(fn BeforeRequestFunc) {
	a.hooks.before[""] = append(a.hooks.before[""], fn)
}

// AfterRequest registers an application-scope hook that runs after every
// handler with the outgoing Response. Hooks run most recently registered
// first and may replace the response.
func (a *App) AfterRequest(fn AfterRequestFunc) {
	a.hooks.after[""] = append(a.hooks.after[""], fn)
}

// TeardownRequest registers an application-scope hook that runs when the
// request context is popped, whether the request succeeded or not.
func (a *App) TeardownRequest(fn TeardownFunc) {
	a.hooks.teardown[""] = append(a.hooks.teardown[""], fn)
}

// URLValuePreprocessor registers an application-scope preprocessor that
// may mutate extracted path parameters before any before-request hook
// sees them.
func (a *App) URLValuePreprocessor(fn URLValuePreprocessorFunc) {
	a.hooks.urlPreprocess[""] = append(a.hooks.urlPreprocess[""], fn)
}

// OnStatus registers an application-scope error handler for an HTTP
// status code, replacing any previous handler for that code.
func (a *App) OnStatus(code int, fn ErrorHandlerFunc) {
	a.hooks.setStatus("", code, fn)
}

// OnError registers an application-scope type-based error handler. Build
// the matcher with ErrorAs. Matchers are consulted in registration order;
// the first whose guard claims the error wins.
func (a *App) OnError(m ErrorMatcher) {
	a.hooks.typed[""] = append(a.hooks.typed[""], m)
}

// URLFor builds the URL for endpoint, filling wildcards from params;
// leftover params become the query string.
func (a *App) URLFor(endpoint string, params map[string]any) (string, error) {
	return a.router.Build(endpoint, params)
}

// resolveRoute matches the request against the router and stores either
// the result or the routing failure on the request. The failure is acted
// on during dispatch, per the configured routing-error policy.
func (a *App) resolveRoute(req *Request) {
	m, err := a.router.Match(req.URL.Path, req.Method)
	if err != nil {
		req.routingErr = err
		return
	}
	req.endpoint = m.Endpoint
	req.params = m.Params
	req.rule = m.Rule
}
