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

// Package flagon is a minimalist HTTP microframework: declare URL rules,
// and requests are dispatched to your handlers with typed path parameters,
// before/after/teardown hooks, and error handlers.
//
// # Quick Start
//
//	app := flagon.MustNew(flagon.WithServiceName("hello"))
//	app.GET("/hello/<name>", "greet", func(c *flagon.Context) (any, error) {
//		return "hi " + c.Param("name").(string), nil
//	})
//	if err := app.Run(context.Background(), ":8080"); err != nil {
//		log.Fatal(err)
//	}
//
// App satisfies http.Handler, so it also mounts directly on any
// http.Server or mux.
//
// # Routing
//
// Rules use <name> and <converter:name> wildcards (string, int, float,
// path built in; more via RegisterConverter). Wildcard-free rules match by
// exact path in O(1); wildcard rules are tried in registration order,
// first match wins. A miss is a 404, a method mismatch a 405 with the
// Allow header filled in, and a converter rejection a 400. See the router
// package for the matching rules in detail.
//
// # Request Lifecycle
//
// Each request gets a Context: it is pushed, url-value preprocessors and
// before-request hooks run (a non-nil hook return short-circuits the
// handler), the handler runs, its return value is normalized into a
// Response, after-request hooks may replace the Response, the Response is
// emitted, and teardown hooks always run, even on panic. Errors flow
// through status-code handlers and type-based handlers (blueprint scope
// first, then application scope); anything unhandled is logged and becomes
// a generic 500 that never leaks details.
//
// # Blueprints
//
// A Blueprint records routes and hooks under a shared name and URL prefix,
// and is merged into an App by RegisterBlueprint. Endpoints are namespaced
// as "blueprint.local". Registration is two-phase: the blueprint only
// records declarations, and all validation happens at apply time.
//
// # Construction
//
// New returns (*App, error); MustNew panics on error. All configuration
// uses With-prefixed functional options. Handle returns registration
// errors; the verb helpers (GET, POST, ...) panic on them, which suits
// setup code where a bad rule should abort startup.
package flagon
