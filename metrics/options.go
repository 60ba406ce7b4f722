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

package metrics

import "github.com/prometheus/client_golang/prometheus"

// config collects the options applied by New.
type config struct {
	namespace string
	registry  *prometheus.Registry
	buckets   []float64
	filter    *pathFilter
}

// Option configures a Recorder during New.
type Option func(*config)

// WithNamespace prefixes every metric name, typically with the service
// name.
func WithNamespace(namespace string) Option {
	return func(c *config) { c.namespace = namespace }
}

// WithRegistry uses an existing registry instead of a fresh one, so the
// request instruments share exposition with other collectors.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *config) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithDurationBuckets replaces the duration histogram boundaries.
func WithDurationBuckets(buckets []float64) Option {
	return func(c *config) {
		if len(buckets) > 0 {
			c.buckets = buckets
		}
	}
}

// WithExcludePaths skips recording for exact request paths, typically
// health checks and the scrape endpoint itself.
func WithExcludePaths(paths ...string) Option {
	return func(c *config) { c.filter.addPaths(paths...) }
}

// WithExcludePrefixes skips recording for whole path subtrees.
func WithExcludePrefixes(prefixes ...string) Option {
	return func(c *config) { c.filter.addPrefixes(prefixes...) }
}
