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

// Package tracing opens one OpenTelemetry span per dispatched request.
//
//	tracer := tracing.MustNew(tracing.WithTracerProvider(tp))
//	tracer.Install(app)
//
// Spans are named "GET /hello/<name>" from the matched rule pattern, so
// trace names stay bounded by the route table. The span covers the whole
// lifecycle from before-request to teardown; an unhandled error marks
// the span failed and records the error event. Handlers reach the span's
// context through the request context, so downstream clients join the
// trace.
package tracing
