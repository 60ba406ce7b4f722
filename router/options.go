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

import "log/slog"

// Option configures a Router during construction.
type Option func(*Router) error

// WithStrictOrder disables the exact-path shortcut: wildcard-free rules
// are compiled and tried in registration order together with dynamic
// rules. Use it when rule priority must be purely registration order,
// trading away O(1) static lookup.
//
// Example:
//
//	r := router.MustNew(router.WithStrictOrder())
func WithStrictOrder() Option {
	return func(r *Router) error {
		r.strictOrder = true
		return nil
	}
}

// WithLogger sets the structured logger used for registration and match
// diagnostics. Without it the router is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) error {
		if logger != nil {
			r.logger = logger
		}
		return nil
	}
}

// WithConverter registers an additional converter during construction.
// Equivalent to calling RegisterConverter before adding rules.
//
// Example:
//
//	r, err := router.New(router.WithConverter("hex", func() router.Converter {
//		return router.Converter{Pattern: `[0-9a-f]+`}
//	}))
func WithConverter(name string, fn ConverterFunc) Option {
	return func(r *Router) error {
		return r.RegisterConverter(name, fn)
	}
}
