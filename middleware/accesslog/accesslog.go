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

package accesslog

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/flagon-dev/flagon"
)

// startTimeKey is the request-namespace key the start timestamp is stored
// under.
const startTimeKey = "accesslog.start"

// config collects the options applied by Install.
type config struct {
	logger        *slog.Logger
	sampleRate    uint64
	slowThreshold time.Duration
	filter        *pathFilter
}

// Option configures Install.
type Option func(*config)

// WithLogger routes access records to logger instead of the application
// logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSampleRate logs one in every n successful requests. Failed and slow
// requests are always logged. A rate of zero or one disables sampling.
func WithSampleRate(n uint64) Option {
	return func(c *config) {
		c.sampleRate = n
	}
}

// WithSlowThreshold forces a record for any request slower than d, even
// when sampling would drop it. Zero disables the check.
func WithSlowThreshold(d time.Duration) Option {
	return func(c *config) {
		c.slowThreshold = d
	}
}

// WithExcludePaths disables logging for the given paths. Health and
// readiness probes are typical candidates.
func WithExcludePaths(paths ...string) Option {
	return func(c *config) {
		c.filter.addPaths(paths...)
	}
}

// WithExcludePrefixes disables logging for paths under the given prefixes.
func WithExcludePrefixes(prefixes ...string) Option {
	return func(c *config) {
		c.filter.addPrefixes(prefixes...)
	}
}

// Install registers the access-log hooks on app: a before-request hook
// stamping the start time and a teardown hook emitting the record.
// Teardown hooks run even when the handler fails or panics, so every
// request that reaches dispatch produces a record.
func Install(app *flagon.App, opts ...Option) {
	cfg := &config{
		filter: newPathFilter(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var seen atomic.Uint64

	app.BeforeRequest(func(c *flagon.Context) (any, error) {
		if !cfg.filter.excluded(c.Request.URL.Path) {
			c.Set(startTimeKey, time.Now())
		}
		return nil, nil
	})
	app.TeardownRequest(func(c *flagon.Context, err error) {
		start, ok := c.Get(startTimeKey)
		if !ok {
			return
		}
		elapsed := time.Since(start.(time.Time))

		status := 0
		if res := c.Response(); res != nil {
			status = res.Status()
		}
		failed := err != nil || status >= 500
		slow := cfg.slowThreshold > 0 && elapsed >= cfg.slowThreshold

		if !failed && !slow && cfg.sampleRate > 1 {
			if seen.Add(1)%cfg.sampleRate != 1 {
				return
			}
		}

		logger := cfg.logger
		if logger == nil {
			logger = c.Logger()
		}

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", elapsed),
		}
		if rule := c.Request.Rule(); rule != nil {
			attrs = append(attrs, slog.String("rule", rule.Pattern()))
		}

		switch {
		case failed:
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			logger.Error("request", attrs...)
		case slow:
			attrs = append(attrs, slog.Bool("slow", true))
			logger.Warn("request", attrs...)
		default:
			logger.Info("request", attrs...)
		}
	})
}
