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

package tracing

import (
	"errors"

	"go.opentelemetry.io/otel/trace"
)

// config collects the options applied by New.
type config struct {
	provider trace.TracerProvider
	filter   *pathFilter
}

// Option configures a Tracer during New.
type Option func(*config) error

// WithTracerProvider sets the provider spans are created from.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *config) error {
		if provider == nil {
			return errors.New("tracer provider cannot be nil")
		}
		c.provider = provider
		return nil
	}
}

// WithExcludePaths skips tracing for exact request paths.
func WithExcludePaths(paths ...string) Option {
	return func(c *config) error {
		c.filter.addPaths(paths...)
		return nil
	}
}

// WithExcludePrefixes skips tracing for whole path subtrees.
func WithExcludePrefixes(prefixes ...string) Option {
	return func(c *config) error {
		c.filter.addPrefixes(prefixes...)
		return nil
	}
}
