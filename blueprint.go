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
	"net/http"
	"strings"

	"github.com/flagon-dev/flagon/router"
)

// Blueprint is a named, reusable group of routes and hooks. Its methods
// only record declarations; nothing is validated or compiled until the
// blueprint is mounted with App.RegisterBlueprint, so a blueprint built
// in an init path can be mounted on several apps, or on one app under
// several URL prefixes.
//
// Endpoints declared on a blueprint are namespaced as "name.local".
type Blueprint struct {
	name        string
	prefix      string
	urlDefaults map[string]any

	routes []blueprintRoute

	before        []BeforeRequestFunc
	after         []AfterRequestFunc
	teardown      []TeardownFunc
	urlPreprocess []URLValuePreprocessorFunc
	status        map[int]ErrorHandlerFunc
	typed         []ErrorMatcher

	appBefore        []BeforeRequestFunc
	appAfter         []AfterRequestFunc
	appTeardown      []TeardownFunc
	appURLPreprocess []URLValuePreprocessorFunc
	appStatus        map[int]ErrorHandlerFunc
	appTyped         []ErrorMatcher
}

type blueprintRoute struct {
	rule     string
	endpoint string
	fn       HandlerFunc
	opts     []router.RuleOption
}

// BlueprintOption configures a Blueprint during NewBlueprint.
type BlueprintOption func(*Blueprint) error

// WithURLPrefix sets the prefix concatenated onto every route rule when
// the blueprint is mounted. RegisterBlueprint may override it per mount.
func WithURLPrefix(prefix string) BlueprintOption {
	return func(b *Blueprint) error {
		b.prefix = prefix
		return nil
	}
}

// WithURLDefaults sets parameter defaults merged into every route of the
// blueprint. Route-level defaults win on key conflicts.
func WithURLDefaults(defaults map[string]any) BlueprintOption {
	return func(b *Blueprint) error {
		if b.urlDefaults == nil {
			b.urlDefaults = make(map[string]any, len(defaults))
		}
		for k, v := range defaults {
			b.urlDefaults[k] = v
		}
		return nil
	}
}

// NewBlueprint creates a blueprint. The name namespaces the blueprint's
// endpoints and hook scope, so it must be non-empty and contain no dot.
func NewBlueprint(name string, opts ...BlueprintOption) (*Blueprint, error) {
	if name == "" || strings.Contains(name, ".") {
		return nil, fmt.Errorf("%w: %q", ErrBlueprintName, name)
	}
	b := &Blueprint{
		name:      name,
		status:    make(map[int]ErrorHandlerFunc),
		appStatus: make(map[int]ErrorHandlerFunc),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// MustNewBlueprint is NewBlueprint panicking on error.
func MustNewBlueprint(name string, opts ...BlueprintOption) *Blueprint {
	b, err := NewBlueprint(name, opts...)
	if err != nil {
		panic(fmt.Sprintf("flagon: %v", err))
	}
	return b
}

// Name returns the blueprint name.
func (b *Blueprint) Name() string { return b.name }

// Handle records a route under the blueprint's namespace. The endpoint is
// the local name; the mounted endpoint becomes "name.endpoint". Recording
// never fails — validation happens at RegisterBlueprint.
func (b *Blueprint) Handle(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) {
	b.routes = append(b.routes, blueprintRoute{rule: rule, endpoint: endpoint, fn: fn, opts: opts})
}

// GET records a GET route.
func (b *Blueprint) GET(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) {
	b.Handle(rule, endpoint, fn, append(opts, router.WithMethods(http.MethodGet))...)
}

// POST records a POST route.
func (b *Blueprint) POST(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) {
	b.Handle(rule, endpoint, fn, append(opts, router.WithMethods(http.MethodPost))...)
}

// PUT records a PUT route.
func (b *Blueprint) PUT(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) {
	b.Handle(rule, endpoint, fn, append(opts, router.WithMethods(http.MethodPut))...)
}

// DELETE records a DELETE route.
func (b *Blueprint) DELETE(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) {
	b.Handle(rule, endpoint, fn, append(opts, router.WithMethods(http.MethodDelete))...)
}

// PATCH records a PATCH route.
func (b *Blueprint) PATCH(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) {
	b.Handle(rule, endpoint, fn, append(opts, router.WithMethods(http.MethodPatch))...)
}

// HEAD records a HEAD route.
func (b *Blueprint) HEAD(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) {
	b.Handle(rule, endpoint, fn, append(opts, router.WithMethods(http.MethodHead))...)
}

// OPTIONS records an OPTIONS route.
func (b *Blueprint) OPTIONS(rule, endpoint string, fn HandlerFunc, opts ...router.RuleOption) {
	b.Handle(rule, endpoint, fn, append(opts, router.WithMethods(http.MethodOptions))...)
}

// BeforeRequest records a before-request hook that runs only for requests
// routed to this blueprint's endpoints.
func (b *Blueprint) BeforeRequest(fn BeforeRequestFunc) {
	b.before = append(b.before, fn)
}

// AfterRequest records an after-request hook scoped to this blueprint.
func (b *Blueprint) AfterRequest(fn AfterRequestFunc) {
	b.after = append(b.after, fn)
}

// TeardownRequest records a teardown hook scoped to this blueprint.
func (b *Blueprint) TeardownRequest(fn TeardownFunc) {
	b.teardown = append(b.teardown, fn)
}

// URLValuePreprocessor records a parameter preprocessor scoped to this
// blueprint.
func (b *Blueprint) URLValuePreprocessor(fn URLValuePreprocessorFunc) {
	b.urlPreprocess = append(b.urlPreprocess, fn)
}

// OnStatus records an error handler for an HTTP status code, consulted
// before the application-scope handler for requests routed to this
// blueprint. Status 500 cannot be scoped to a blueprint; registration
// will fail with ErrScopedServerError.
func (b *Blueprint) OnStatus(code int, fn ErrorHandlerFunc) {
	b.status[code] = fn
}

// OnError records a type-based error handler scoped to this blueprint.
func (b *Blueprint) OnError(m ErrorMatcher) {
	b.typed = append(b.typed, m)
}

// BeforeAppRequest records an application-scope before-request hook. It
// runs for every request once the blueprint is mounted, not only for the
// blueprint's own endpoints.
func (b *Blueprint) BeforeAppRequest(fn BeforeRequestFunc) {
	b.appBefore = append(b.appBefore, fn)
}

// AfterAppRequest records an application-scope after-request hook.
func (b *Blueprint) AfterAppRequest(fn AfterRequestFunc) {
	b.appAfter = append(b.appAfter, fn)
}

// TeardownAppRequest records an application-scope teardown hook.
func (b *Blueprint) TeardownAppRequest(fn TeardownFunc) {
	b.appTeardown = append(b.appTeardown, fn)
}

// AppURLValuePreprocessor records an application-scope parameter
// preprocessor.
func (b *Blueprint) AppURLValuePreprocessor(fn URLValuePreprocessorFunc) {
	b.appURLPreprocess = append(b.appURLPreprocess, fn)
}

// OnAppStatus records an application-scope status handler. Unlike
// OnStatus it may register 500.
func (b *Blueprint) OnAppStatus(code int, fn ErrorHandlerFunc) {
	b.appStatus[code] = fn
}

// OnAppError records an application-scope type-based error handler.
func (b *Blueprint) OnAppError(m ErrorMatcher) {
	b.appTyped = append(b.appTyped, m)
}

// mountConfig collects per-mount overrides for RegisterBlueprint.
type mountConfig struct {
	prefix string
}

// MountOption adjusts a single RegisterBlueprint call.
type MountOption func(*mountConfig)

// WithMountPrefix overrides the blueprint's URL prefix for this mount, so
// one blueprint can serve several URL subtrees.
func WithMountPrefix(prefix string) MountOption {
	return func(m *mountConfig) {
		m.prefix = prefix
	}
}

// RegisterBlueprint mounts a blueprint: every recorded route is added to
// the router under the mount prefix with "name.local" endpoints, and the
// recorded hooks are installed. All validation deferred by the recording
// methods happens here.
//
// Mounting the same blueprint again (for another prefix) re-adds its
// routes but installs its hooks only once. A different blueprint under an
// already-used name is rejected with ErrBlueprintNameTaken. Registration
// stops at the first invalid route; routes mounted before it stay.
func (a *App) RegisterBlueprint(bp *Blueprint, opts ...MountOption) error {
	if bp == nil {
		return fmt.Errorf("flagon: nil blueprint")
	}
	if existing, ok := a.blueprints[bp.name]; ok && existing != bp {
		return fmt.Errorf("%w: %q", ErrBlueprintNameTaken, bp.name)
	}
	if _, ok := bp.status[http.StatusInternalServerError]; ok {
		return fmt.Errorf("%w: blueprint %q", ErrScopedServerError, bp.name)
	}

	mount := mountConfig{prefix: bp.prefix}
	for _, opt := range opts {
		opt(&mount)
	}

	_, again := a.blueprints[bp.name]

	for _, r := range bp.routes {
		if strings.Contains(r.endpoint, ".") {
			return fmt.Errorf("%w: blueprint %q endpoint %q", ErrEndpointDot, bp.name, r.endpoint)
		}
		if r.endpoint == "" {
			return fmt.Errorf("%w: blueprint %q", ErrEndpointEmpty, bp.name)
		}
		ruleOpts := r.opts
		if len(bp.urlDefaults) > 0 {
			ruleOpts = append([]router.RuleOption{router.WithDefaults(bp.urlDefaults)}, ruleOpts...)
		}
		endpoint := bp.name + "." + r.endpoint
		if _, err := a.addRoute(joinPrefix(mount.prefix, r.rule), endpoint, r.fn, ruleOpts...); err != nil {
			return fmt.Errorf("blueprint %q: %w", bp.name, err)
		}
	}

	if !again {
		scope := bp.name
		a.hooks.before[scope] = append(a.hooks.before[scope], bp.before...)
		a.hooks.after[scope] = append(a.hooks.after[scope], bp.after...)
		a.hooks.teardown[scope] = append(a.hooks.teardown[scope], bp.teardown...)
		a.hooks.urlPreprocess[scope] = append(a.hooks.urlPreprocess[scope], bp.urlPreprocess...)
		for code, fn := range bp.status {
			a.hooks.setStatus(scope, code, fn)
		}
		a.hooks.typed[scope] = append(a.hooks.typed[scope], bp.typed...)

		a.hooks.before[""] = append(a.hooks.before[""], bp.appBefore...)
		a.hooks.after[""] = append(a.hooks.after[""], bp.appAfter...)
		a.hooks.teardown[""] = append(a.hooks.teardown[""], bp.appTeardown...)
		a.hooks.urlPreprocess[""] = append(a.hooks.urlPreprocess[""], bp.appURLPreprocess...)
		for code, fn := range bp.appStatus {
			a.hooks.setStatus("", code, fn)
		}
		a.hooks.typed[""] = append(a.hooks.typed[""], bp.appTyped...)
	}

	a.blueprints[bp.name] = bp
	return nil
}

// Blueprints returns the registered blueprints keyed by name.
func (a *App) Blueprints() map[string]*Blueprint {
	out := make(map[string]*Blueprint, len(a.blueprints))
	for k, v := range a.blueprints {
		out[k] = v
	}
	return out
}

// joinPrefix concatenates a mount prefix and a route rule, normalizing
// the slash between them.
func joinPrefix(prefix, rule string) string {
	if prefix == "" {
		return rule
	}
	p := strings.TrimRight(prefix, "/")
	if !strings.HasPrefix(rule, "/") {
		rule = "/" + rule
	}
	return p + rule
}
