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

package router

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/flagon-dev/flagon/httperr"
)

// noopLogger is a singleton no-op logger used when no logger is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Match is a successful route resolution: the winning rule, its endpoint,
// and the typed parameters extracted from the path (defaults already
// merged).
type Match struct {
	Rule     *Rule
	Endpoint string
	Params   map[string]any
}

// Router resolves request paths to endpoints. Wildcard-free rules live in
// an exact-path map; rules with wildcards keep one compiled expression
// each and are tried in registration order.
//
// Add routes before serving. Match performs no locking; the router is
// read-only once requests flow (see package documentation).
type Router struct {
	static     map[string]map[string]*Rule
	dynamic    []*Rule
	byEndpoint map[string]*Rule
	converters map[string]ConverterFunc

	strictOrder bool
	logger      *slog.Logger
}

// New creates a Router with the given options.
//
// Example:
//
//	r, err := router.New(router.WithStrictOrder())
//	if err != nil {
//		return err
//	}
func New(opts ...Option) (*Router, error) {
	r := &Router{
		static:     make(map[string]map[string]*Rule),
		byEndpoint: make(map[string]*Rule),
		converters: defaultConverters(),
		logger:     noopLogger,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNew creates a Router and panics if an option fails. Intended for
// setup code where a configuration error should abort startup.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("router: %v", err))
	}
	return r
}

// RegisterConverter binds name to a converter factory. Rules added after
// registration may reference the converter as <name:var>. Re-registering
// a name replaces the previous factory; rules already compiled keep the
// converter they were built with.
func (r *Router) RegisterConverter(name string, fn ConverterFunc) error {
	if name == "" {
		return ErrConverterName
	}
	if fn == nil {
		return fmt.Errorf("%w: %q", ErrNilConverter, name)
	}
	r.converters[name] = fn
	return nil
}

// ruleConfig collects per-rule options before compilation.
type ruleConfig struct {
	methods  []string
	defaults map[string]any
}

// RuleOption configures a single route registration.
type RuleOption func(*ruleConfig)

// WithMethods sets the HTTP methods the rule allows. Method names are
// upper-cased. The default is GET only.
func WithMethods(methods ...string) RuleOption {
	return func(c *ruleConfig) {
		c.methods = append(c.methods, methods...)
	}
}

// WithDefaults sets default parameter values merged into the extracted
// parameters for any key the path did not capture.
func WithDefaults(defaults map[string]any) RuleOption {
	return func(c *ruleConfig) {
		if c.defaults == nil {
			c.defaults = make(map[string]any, len(defaults))
		}
		for k, v := range defaults {
			c.defaults[k] = v
		}
	}
}

// normalizeMethods upper-cases, dedupes and sorts a method list, falling
// back to GET when none are given.
func normalizeMethods(methods []string) []string {
	set := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		set[m] = struct{}{}
	}
	if len(set) == 0 {
		set["GET"] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Add compiles a rule and registers it under endpoint.
//
// The returned Rule is the handle later used for URL building. Add fails
// with ErrUnknownConverter or ErrRouteSyntax when the rule cannot be
// compiled; these are setup-time errors and must abort startup rather
// than be deferred to request handling.
//
// Re-adding a wildcard-free rule for a (path, method) pair already
// registered silently replaces the earlier rule for that pair.
func (r *Router) Add(rule, endpoint string, opts ...RuleOption) (*Rule, error) {
	cfg := &ruleConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	compiled, err := compileRule(rule, endpoint, normalizeMethods(cfg.methods), cfg.defaults, r.converters, r.strictOrder)
	if err != nil {
		return nil, err
	}

	if compiled.static {
		path := compiled.staticPath()
		byMethod, ok := r.static[path]
		if !ok {
			byMethod = make(map[string]*Rule, len(compiled.methods))
			r.static[path] = byMethod
		}
		for _, m := range compiled.methods {
			byMethod[m] = compiled
		}
	} else {
		r.dynamic = append(r.dynamic, compiled)
	}
	r.byEndpoint[endpoint] = compiled

	r.logger.Debug("route added",
		"rule", rule,
		"endpoint", endpoint,
		"methods", compiled.methods,
		"static", compiled.static,
	)
	return compiled, nil
}

// Match resolves path and method to an endpoint with typed parameters.
//
// Failures are *httperr.Error values: 404 when no rule's pattern matches
// the path, 405 when a pattern matches but never with this method (the
// error carries the sorted union of methods allowed by every rule whose
// pattern matched), and 400 when a converter rejects captured text.
func (r *Router) Match(path, method string) (*Match, error) {
	method = strings.ToUpper(method)

	var allowed map[string]struct{}
	remember := func(methods []string) {
		if allowed == nil {
			allowed = make(map[string]struct{}, len(methods))
		}
		for _, m := range methods {
			allowed[m] = struct{}{}
		}
	}

	if byMethod, ok := r.static[path]; ok {
		if rule, ok := byMethod[method]; ok {
			params, err := rule.params(nil)
			if err != nil {
				return nil, httperr.BadRequest("The path has the wrong format.")
			}
			return &Match{Rule: rule, Endpoint: rule.endpoint, Params: params}, nil
		}
		for m := range byMethod {
			remember([]string{m})
		}
	}

	for _, rule := range r.dynamic {
		groups := rule.re.FindStringSubmatch(path)
		if groups == nil {
			continue
		}
		if !rule.allows(method) {
			remember(rule.methods)
			continue
		}
		params, err := rule.params(groups)
		if err != nil {
			r.logger.Debug("parameter decode rejected", "rule", rule.pattern, "path", path, "error", err)
			return nil, httperr.BadRequest("The path has the wrong format.")
		}
		return &Match{Rule: rule, Endpoint: rule.endpoint, Params: params}, nil
	}

	if len(allowed) > 0 {
		methods := make([]string, 0, len(allowed))
		for m := range allowed {
			methods = append(methods, m)
		}
		sort.Strings(methods)
		return nil, httperr.MethodNotAllowed(methods, "")
	}
	return nil, httperr.NotFound(fmt.Sprintf("The requested URL %q was not found on the server.", path))
}

// Build renders the URL for endpoint, filling wildcards from params (rule
// defaults cover absent keys). Parameters not consumed by a wildcard
// become the query string. The inverse of Match for registered rules.
func (r *Router) Build(endpoint string, params map[string]any) (string, error) {
	rule, ok := r.byEndpoint[endpoint]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEndpoint, endpoint)
	}

	used := make(map[string]struct{}, len(rule.wilds))
	var b strings.Builder
	wi := 0
	for _, tk := range rule.tokens {
		if !tk.wild {
			b.WriteString(tk.literal)
			continue
		}
		w := rule.wilds[wi]
		wi++
		v, ok := params[w.name]
		if !ok {
			v, ok = rule.defaults[w.name]
		}
		if !ok {
			return "", fmt.Errorf("%w: %q for endpoint %q", ErrMissingParameter, w.name, endpoint)
		}
		seg, err := w.conv.encodeValue(v)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrEncodeParameter, w.name, err)
		}
		b.WriteString(seg)
		used[w.name] = struct{}{}
	}

	if extra := len(params) - len(used); extra > 0 {
		q := url.Values{}
		for k, v := range params {
			if _, ok := used[k]; ok {
				continue
			}
			s, err := cast.ToStringE(v)
			if err != nil {
				return "", fmt.Errorf("%w: %q: %v", ErrEncodeParameter, k, err)
			}
			q.Set(k, s)
		}
		b.WriteString("?")
		b.WriteString(q.Encode())
	}
	return b.String(), nil
}

// Rules returns every registered rule: static rules first (map order),
// then dynamic rules in registration order. Intended for diagnostics and
// route listings.
func (r *Router) Rules() []*Rule {
	seen := make(map[*Rule]struct{})
	var out []*Rule
	for _, byMethod := range r.static {
		for _, rule := range byMethod {
			if _, ok := seen[rule]; ok {
				continue
			}
			seen[rule] = struct{}{}
			out = append(out, rule)
		}
	}
	out = append(out, r.dynamic...)
	return out
}
