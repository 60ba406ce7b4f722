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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/flagon-dev/flagon"
)

// newRecordingTracer builds a Tracer backed by an in-memory span
// recorder, so tests can inspect finished spans.
func newRecordingTracer(t *testing.T, opts ...Option) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(t.Context()) })

	tracer, err := New(append([]Option{WithTracerProvider(provider)}, opts...)...)
	require.NoError(t, err)
	return tracer, recorder
}

func serve(t *testing.T, a *flagon.App, method, path string) *http.Response {
	t.Helper()
	resp, err := a.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func attrValue(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestSpanPerRequest(t *testing.T) {
	t.Parallel()

	tracer, recorder := newRecordingTracer(t)
	app := flagon.MustNew()
	tracer.Install(app)
	app.GET("/hello/<name>", "greet", func(c *flagon.Context) (any, error) {
		return "hi", nil
	})

	serve(t, app, http.MethodGet, "/hello/world")

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /hello/<name>", span.Name(), "span named by rule pattern")
	assert.Equal(t, trace.SpanKindServer, span.SpanKind())
	assert.Equal(t, codes.Ok, span.Status().Code)

	status, ok := attrValue(span, "http.response.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusOK), status.AsInt64())

	route, ok := attrValue(span, "http.route")
	require.True(t, ok)
	assert.Equal(t, "/hello/<name>", route.AsString())
}

func TestSpanRecordsUnhandledError(t *testing.T) {
	t.Parallel()

	tracer, recorder := newRecordingTracer(t)
	app := flagon.MustNew()
	tracer.Install(app)
	app.GET("/fail", "fail", func(c *flagon.Context) (any, error) {
		return nil, errors.New("boom")
	})

	serve(t, app, http.MethodGet, "/fail")

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, codes.Error, span.Status().Code)
	require.NotEmpty(t, span.Events(), "the error is recorded as a span event")
}

func TestSpanForUnroutedRequest(t *testing.T) {
	t.Parallel()

	tracer, recorder := newRecordingTracer(t)
	app := flagon.MustNew()
	tracer.Install(app)

	serve(t, app, http.MethodGet, "/nowhere")

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET", span.Name(), "no rule pattern to name the span by")
	assert.Equal(t, codes.Ok, span.Status().Code, "a handled 404 is not a trace error")
}

func TestHandlerSeesSpanContext(t *testing.T) {
	t.Parallel()

	tracer, _ := newRecordingTracer(t)
	app := flagon.MustNew()
	tracer.Install(app)

	var inSpan bool
	app.GET("/traced", "traced", func(c *flagon.Context) (any, error) {
		inSpan = trace.SpanContextFromContext(c.Request.Context()).IsValid()
		return "ok", nil
	})

	serve(t, app, http.MethodGet, "/traced")
	assert.True(t, inSpan, "the request context carries the span")
}

func TestExcludedPathsAreNotTraced(t *testing.T) {
	t.Parallel()

	tracer, recorder := newRecordingTracer(t, WithExcludePaths("/health"))
	app := flagon.MustNew()
	tracer.Install(app)
	app.GET("/health", "health", func(c *flagon.Context) (any, error) { return "up", nil })

	serve(t, app, http.MethodGet, "/health")
	assert.Empty(t, recorder.Ended())
}

func TestNilProviderRejected(t *testing.T) {
	t.Parallel()

	_, err := New(WithTracerProvider(nil))
	assert.Error(t, err)
	assert.Panics(t, func() { MustNew(WithTracerProvider(nil)) })
}
