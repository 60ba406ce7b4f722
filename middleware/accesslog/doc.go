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

// Package accesslog emits one structured log record per request.
//
// Records carry the method, path, matched rule, status, and duration.
// Failed requests are always logged at error level; successful ones can
// be sampled down on high-traffic services:
//
//	accesslog.Install(app,
//		accesslog.WithLogger(logger),
//		accesslog.WithSampleRate(100),
//		accesslog.WithSlowThreshold(500*time.Millisecond),
//	)
//
// Slow requests also bypass sampling, so latency outliers stay visible
// at any sample rate.
package accesslog
