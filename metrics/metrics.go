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

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flagon-dev/flagon"
)

// DefaultDurationBuckets are the histogram boundaries for request
// duration in seconds, covering sub-millisecond to ten-second responses.
var DefaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// startTimeKey is the context-namespace key the before hook stores the
// request start under.
const startTimeKey = "metrics.start"

// unroutedLabel is the rule label for requests that matched no route.
const unroutedLabel = "unrouted"

// Recorder owns the Prometheus instruments for one app. Create one with
// New, wire it with Install, expose it with Handler or Endpoint. All
// methods are safe for concurrent use once Install has run.
type Recorder struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge

	filter *pathFilter
}

// New creates a Recorder and registers its instruments.
func New(opts ...Option) (*Recorder, error) {
	cfg := &config{
		registry: prometheus.NewRegistry(),
		buckets:  DefaultDurationBuckets,
		filter:   newPathFilter(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := &Recorder{
		registry: cfg.registry,
		filter:   cfg.filter,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "http_requests_total",
			Help:      "Requests served, by method, rule pattern and status code.",
		}, []string{"method", "rule", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Request duration from dispatch start to teardown.",
			Buckets:   cfg.buckets,
		}, []string{"method", "rule"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being dispatched.",
		}),
	}

	for _, c := range []prometheus.Collector{r.requests, r.duration, r.inflight} {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}
	return r, nil
}

// MustNew is New panicking on error.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("metrics: %v", err))
	}
	return r
}

// Install registers the recording hooks on app: a before-request hook
// that stamps the start time, and a teardown hook that observes the
// instruments. Teardown-driven recording means failed and panicking
// requests are counted with the status they were answered with.
func (r *Recorder) Install(app *flagon.App) {
	app.BeforeRequest(func(c *flagon.Context) (any, error) {
		if r.filter.excluded(c.Request.URL.Path) {
			return nil, nil
		}
		c.Set(startTimeKey, time.Now())
		r.inflight.Inc()
		return nil, nil
	})
	app.TeardownRequest(func(c *flagon.Context, err error) {
		v, ok := c.Get(startTimeKey)
		if !ok {
			return
		}
		start := v.(time.Time)
		r.inflight.Dec()

		rule := unroutedLabel
		if matched := c.Request.Rule(); matched != nil {
			rule = matched.Pattern()
		}
		status := 0
		if resp := c.Response(); resp != nil {
			status = resp.Status()
		}
		r.requests.WithLabelValues(c.Request.Method, rule, strconv.Itoa(status)).Inc()
		r.duration.WithLabelValues(c.Request.Method, rule).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the scrape handler for the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Endpoint adapts Handler into a flagon handler, so the scrape endpoint
// can be registered as an ordinary route.
func (r *Recorder) Endpoint() flagon.HandlerFunc {
	h := r.Handler()
	return func(c *flagon.Context) (any, error) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, c.Request.Request)
		resp := flagon.NewResponse(rec.Code, rec.Body.Bytes())
		for k, vs := range rec.Header() {
			for _, v := range vs {
				resp.AddHeader(k, v)
			}
		}
		return resp, nil
	}
}

// Registry exposes the underlying registry, for registering additional
// application collectors next to the request instruments.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }
