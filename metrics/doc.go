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

// Package metrics records Prometheus request metrics for a flagon app.
//
// A Recorder owns three instruments: a request counter and a duration
// histogram labeled by method, rule pattern and status class, and an
// in-flight gauge. Install wires them in through the app's hook points,
// and Handler exposes the registry for scraping:
//
//	recorder := metrics.MustNew(metrics.WithNamespace("orders"))
//	recorder.Install(app)
//	app.GET("/metrics", "metrics", recorder.Endpoint())
//
// Labels use the matched rule's pattern, not the raw request path, so
// cardinality stays bounded by the number of registered routes. Requests
// that match no route are labeled "unrouted".
package metrics
