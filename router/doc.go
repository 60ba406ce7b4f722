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

// Package router compiles declarative path patterns into matchers and
// resolves incoming (path, method) pairs to endpoints with typed parameters.
//
// Patterns mix literal segments with wildcards. A wildcard is written
// <name> for a single path segment, or <converter:name> to constrain and
// coerce the captured text:
//
//	/users/<name>           string converter, one segment
//	/posts/<int:id>         signed integer, decoded to int
//	/price/<float:amount>   signed decimal, decoded to float64
//	/files/<path:rest>      spans segments, slashes included
//
// # Matching Rules
//
//   - Rules without wildcards are static: matched by exact string equality
//     in O(1), checked before any dynamic rule.
//   - Rules with wildcards are dynamic: each keeps its own compiled
//     expression and is tried in registration order. The first pattern
//     that matches with an allowed method wins; there is no
//     specificity-based precedence.
//   - A path that matches some rule but never with the requested method
//     resolves to 405 carrying the union of allowed methods. A path no
//     rule matches resolves to 404. A wildcard whose converter rejects the
//     captured text resolves to 400.
//
// # Constructor Pattern
//
// New returns (*Router, error) and MustNew panics on error, matching the
// convention used across this repository. Routes are added at setup time;
// once serving begins the router is read-only, so Match requires no
// locking. Adding routes concurrently with in-flight matches is not
// supported.
//
// Converters are an open extension point: RegisterConverter binds a name
// to a factory, and rules added afterwards may use it. Each converter
// supplies a pattern fragment, a decoder applied to captured text, and an
// encoder used when building URLs from endpoint names.
package router
