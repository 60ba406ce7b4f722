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
	"regexp"
	"strings"
)

// wildcardSyntax recognizes <name> and <converter:name> tokens inside a
// rule. Text that looks like a wildcard but does not fit this shape (for
// example <123>) is kept as a literal, matching the original rule grammar.
var wildcardSyntax = regexp.MustCompile(`<(?:([a-zA-Z_][a-zA-Z_0-9]*):)?([a-zA-Z_][a-zA-Z_0-9]*)>`)

// token is one tokenized piece of a rule: either literal text or a
// wildcard with its converter name.
type token struct {
	wild      bool
	literal   string
	converter string
	name      string
}

// tokenize splits a rule string into alternating literal and wildcard
// tokens, preserving order. Wildcards without an explicit converter get
// the string converter.
func tokenize(rule string) []token {
	var toks []token
	last := 0
	for _, m := range wildcardSyntax.FindAllStringSubmatchIndex(rule, -1) {
		if m[0] > last {
			toks = append(toks, token{literal: rule[last:m[0]]})
		}
		conv := "string"
		if m[2] >= 0 {
			conv = rule[m[2]:m[3]]
		}
		toks = append(toks, token{wild: true, converter: conv, name: rule[m[4]:m[5]]})
		last = m[1]
	}
	if last < len(rule) {
		toks = append(toks, token{literal: rule[last:]})
	}
	return toks
}

// wildcard is one compiled wildcard of a rule: its variable name, its
// converter, and the index of its capture group in the rule's expression.
type wildcard struct {
	name  string
	conv  Converter
	group int
}

// Rule is one compiled route registration. Rules are built by Router.Add
// and are read-only afterwards.
type Rule struct {
	pattern  string
	endpoint string
	methods  []string
	defaults map[string]any

	static bool
	re     *regexp.Regexp
	tokens []token
	wilds  []wildcard
}

// Pattern returns the rule string the route was registered with.
func (r *Rule) Pattern() string { return r.pattern }

// Endpoint returns the endpoint identifier this rule resolves to.
func (r *Rule) Endpoint() string { return r.endpoint }

// Methods returns the allowed HTTP methods, sorted.
func (r *Rule) Methods() []string {
	return append([]string(nil), r.methods...)
}

// IsStatic reports whether the rule matches by exact string equality.
func (r *Rule) IsStatic() bool { return r.static }

// Defaults returns a copy of the rule's default parameter values.
func (r *Rule) Defaults() map[string]any {
	if len(r.defaults) == 0 {
		return nil
	}
	out := make(map[string]any, len(r.defaults))
	for k, v := range r.defaults {
		out[k] = v
	}
	return out
}

// String renders the rule for logs and debugging.
func (r *Rule) String() string {
	return fmt.Sprintf("%s %s -> %s", strings.Join(r.methods, ","), r.pattern, r.endpoint)
}

// allows reports whether method is in the rule's method set. Methods are
// stored upper-cased and sorted; the set is small, so a scan beats a map.
func (r *Rule) allows(method string) bool {
	for _, m := range r.methods {
		if m == method {
			return true
		}
	}
	return false
}

// params decodes the capture groups of a successful regexp match into the
// typed parameter map, then merges defaults for absent keys. Captured
// values always win over defaults.
func (r *Rule) params(groups []string) (map[string]any, error) {
	out := make(map[string]any, len(r.wilds)+len(r.defaults))
	for _, w := range r.wilds {
		v, err := w.conv.decodeValue(groups[w.group])
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", w.name, err)
		}
		out[w.name] = v
	}
	for k, v := range r.defaults {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out, nil
}

// compileRule assembles and compiles the rule's expression from its
// tokens, resolving converter names against the registry. When
// forceDynamic is set, wildcard-free rules are compiled too instead of
// being classified static, which preserves pure registration-order
// matching.
func compileRule(rule, endpoint string, methods []string, defaults map[string]any, converters map[string]ConverterFunc, forceDynamic bool) (*Rule, error) {
	toks := tokenize(rule)

	var expr strings.Builder
	expr.WriteString("^")
	var wilds []wildcard
	for _, tk := range toks {
		if !tk.wild {
			expr.WriteString(regexp.QuoteMeta(tk.literal))
			continue
		}
		factory, ok := converters[tk.converter]
		if !ok {
			return nil, fmt.Errorf("%w %q in rule %q", ErrUnknownConverter, tk.converter, rule)
		}
		conv := factory()
		fmt.Fprintf(&expr, "(?P<%s>%s)", tk.name, conv.Pattern)
		wilds = append(wilds, wildcard{name: tk.name, conv: conv})
	}
	expr.WriteString("$")

	compiled := &Rule{
		pattern:  rule,
		endpoint: endpoint,
		methods:  methods,
		defaults: defaults,
		tokens:   toks,
		static:   len(wilds) == 0 && !forceDynamic,
	}
	if compiled.static {
		return compiled, nil
	}

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("%w: rule %q: %v", ErrRouteSyntax, rule, err)
	}

	// Resolve each wildcard to its capture group index by name, so
	// converter fragments that introduce their own unnamed groups cannot
	// shift positions.
	groupByName := make(map[string]int)
	for i, n := range re.SubexpNames() {
		if n != "" {
			if _, seen := groupByName[n]; !seen {
				groupByName[n] = i
			}
		}
	}
	for i := range wilds {
		wilds[i].group = groupByName[wilds[i].name]
	}

	compiled.re = re
	compiled.wilds = wilds
	return compiled, nil
}

// staticPath returns the literal path a wildcard-free rule matches. For
// rules with wildcards it returns the empty string.
func (r *Rule) staticPath() string {
	if !r.static {
		return ""
	}
	var b strings.Builder
	for _, tk := range r.tokens {
		b.WriteString(tk.literal)
	}
	return b.String()
}
