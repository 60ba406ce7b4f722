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
	"net/http"
	"strings"

	"github.com/flagon-dev/flagon/router"
)

// Request wraps the inbound *http.Request with the routing result: the
// matched endpoint, the typed path parameters, and, when resolution
// failed, the routing error held for the dispatch step.
type Request struct {
	*http.Request

	endpoint   string
	params     map[string]any
	rule       *router.Rule
	routingErr error
}

func newRequest(r *http.Request) *Request {
	return &Request{Request: r}
}

// Endpoint returns the matched endpoint identifier, or the empty string
// when routing failed or has not run.
func (r *Request) Endpoint() string { return r.endpoint }

// Params returns the typed path parameters with rule defaults merged in.
// URL-value preprocessors mutate this map in place; handlers should treat
// it as read-only.
func (r *Request) Params() map[string]any { return r.params }

// Param returns one path parameter, or nil when absent.
func (r *Request) Param(name string) any {
	return r.params[name]
}

// Rule returns the matched routing rule, or nil when routing failed. The
// rule's pattern is a stable, low-cardinality label for telemetry.
func (r *Request) Rule() *router.Rule { return r.rule }

// Blueprint returns the blueprint owning the matched endpoint: the part
// before the first dot of the endpoint identifier, or the empty string
// for endpoints outside any blueprint.
func (r *Request) Blueprint() string {
	if i := strings.IndexByte(r.endpoint, '.'); i >= 0 {
		return r.endpoint[:i]
	}
	return ""
}

// RoutingError returns the captured routing failure (404/405/400), or nil
// when the request matched. With the default deferred policy the error is
// raised during dispatch, after before-request hooks had their chance to
// short-circuit.
func (r *Request) RoutingError() error { return r.routingErr }
