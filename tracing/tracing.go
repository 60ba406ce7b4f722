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
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flagon-dev/flagon"
)

// tracerName identifies this instrumentation to the tracer provider.
const tracerName = "github.com/flagon-dev/flagon/tracing"

// spanKey is the context-namespace key the request span is stored under.
const spanKey = "tracing.span"

// Tracer opens request spans on an app. Create one with New, wire it
// with Install.
type Tracer struct {
	tracer trace.Tracer
	filter *pathFilter
}

// New creates a Tracer. Without WithTracerProvider it uses the global
// provider, which is a no-op until the application configures one.
func New(opts ...Option) (*Tracer, error) {
	cfg := &config{
		provider: otel.GetTracerProvider(),
		filter:   newPathFilter(),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return &Tracer{
		tracer: cfg.provider.Tracer(tracerName),
		filter: cfg.filter,
	}, nil
}

// MustNew is New panicking on error.
func MustNew(opts ...Option) *Tracer {
	t, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("tracing: %v", err))
	}
	return t
}

// Install registers the span hooks on app: a before-request hook that
// opens the span and rebinds the request context, and a teardown hook
// that closes it with the final status.
func (t *Tracer) Install(app *flagon.App) {
	app.BeforeRequest(func(c *flagon.Context) (any, error) {
		if t.filter.excluded(c.Request.URL.Path) {
			return nil, nil
		}
		ctx, span := t.tracer.Start(c.Request.Context(), spanName(c),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("url.path", c.Request.URL.Path),
			),
		)
		if rule := c.Request.Rule(); rule != nil {
			span.SetAttributes(attribute.String("http.route", rule.Pattern()))
		}
		c.Request.Request = c.Request.WithContext(ctx)
		c.Set(spanKey, span)
		return nil, nil
	})

	app.TeardownRequest(func(c *flagon.Context, err error) {
		v, ok := c.Get(spanKey)
		if !ok {
			return
		}
		span := v.(trace.Span)
		status := 0
		if resp := c.Response(); resp != nil {
			status = resp.Status()
			span.SetAttributes(attribute.Int("http.response.status_code", status))
		}
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case status >= 500:
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		default:
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	})
}

// spanName builds the low-cardinality span name: the method plus the
// matched rule pattern, or just the method when nothing matched.
func spanName(c *flagon.Context) string {
	if rule := c.Request.Rule(); rule != nil {
		return c.Request.Method + " " + rule.Pattern()
	}
	return c.Request.Method
}
