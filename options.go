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
	"log/slog"
	"time"

	"github.com/flagon-dev/flagon/router"
)

// Option configures an App during New.
type Option func(*App) error

// WithServiceName sets the service name used in startup logs and the
// banner.
//
// Example:
//
//	app, err := flagon.New(flagon.WithServiceName("orders"))
func WithServiceName(name string) Option {
	return func(a *App) error {
		if name == "" {
			return fmt.Errorf("service name cannot be empty")
		}
		a.serviceName = name
		return nil
	}
}

// WithVersion sets the service version reported at startup.
func WithVersion(version string) Option {
	return func(a *App) error {
		if version == "" {
			return fmt.Errorf("version cannot be empty")
		}
		a.version = version
		return nil
	}
}

// WithEnvironment sets the environment name (for example "development" or
// "production"). The banner is only rendered in development.
func WithEnvironment(env string) Option {
	return func(a *App) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		a.environment = env
		return nil
	}
}

// WithLogger sets the application logger. Without it the App stays
// silent.
//
// Example:
//
//	logger := logging.MustNew(logging.WithLevel(slog.LevelDebug))
//	app, err := flagon.New(flagon.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		a.logger = logger
		return nil
	}
}

// WithConfigValues seeds the application's configuration store.
func WithConfigValues(values map[string]any) Option {
	return func(a *App) error {
		for k, v := range values {
			a.config.Set(k, v)
		}
		return nil
	}
}

// WithStrictRouting makes the router honor pure registration order: rules
// without wildcards are no longer indexed for O(1) lookup and compete with
// dynamic rules in the order they were added.
func WithStrictRouting() Option {
	return func(a *App) error {
		a.strictRouting = true
		return nil
	}
}

// WithImmediateRoutingErrors raises routing failures (404, 405, 400) as
// soon as dispatch starts, skipping URL-value preprocessors and
// before-request hooks for unroutable requests. The default keeps the
// failure deferred so hooks may still short-circuit with their own
// response.
func WithImmediateRoutingErrors() Option {
	return func(a *App) error {
		a.immediateRoutingErrors = true
		return nil
	}
}

// WithConverter registers a custom wildcard converter before any routes
// are added.
//
// Example:
//
//	app, err := flagon.New(flagon.WithConverter("hex", hexConverter))
//	app.GET("/blob/<hex:id>", "blob", getBlob)
func WithConverter(name string, fn router.ConverterFunc) Option {
	return func(a *App) error {
		if name == "" {
			return fmt.Errorf("converter name cannot be empty")
		}
		if fn == nil {
			return fmt.Errorf("converter %q cannot be nil", name)
		}
		if a.converters == nil {
			a.converters = make(map[string]router.ConverterFunc)
		}
		a.converters[name] = fn
		return nil
	}
}

// WithoutBanner suppresses the startup banner regardless of environment.
func WithoutBanner() Option {
	return func(a *App) error {
		a.showBanner = false
		return nil
	}
}

// WithReadTimeout sets the server's maximum duration for reading an
// entire request.
func WithReadTimeout(d time.Duration) Option {
	return func(a *App) error {
		if d <= 0 {
			return fmt.Errorf("read timeout must be positive")
		}
		a.server.readTimeout = d
		return nil
	}
}

// WithWriteTimeout sets the server's maximum duration before timing out
// response writes.
func WithWriteTimeout(d time.Duration) Option {
	return func(a *App) error {
		if d <= 0 {
			return fmt.Errorf("write timeout must be positive")
		}
		a.server.writeTimeout = d
		return nil
	}
}

// WithIdleTimeout sets how long the server keeps idle keep-alive
// connections open.
func WithIdleTimeout(d time.Duration) Option {
	return func(a *App) error {
		if d <= 0 {
			return fmt.Errorf("idle timeout must be positive")
		}
		a.server.idleTimeout = d
		return nil
	}
}

// WithShutdownTimeout bounds how long Run waits for in-flight requests
// when the app is stopped.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) error {
		if d <= 0 {
			return fmt.Errorf("shutdown timeout must be positive")
		}
		a.server.shutdownTimeout = d
		return nil
	}
}

// WithH2C enables HTTP/2 over cleartext TCP, for serving gRPC-adjacent or
// proxied traffic without TLS.
func WithH2C() Option {
	return func(a *App) error {
		a.server.h2c = true
		return nil
	}
}
