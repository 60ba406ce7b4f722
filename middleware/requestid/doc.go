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

// Package requestid tags every request with a correlation identifier.
//
// The identifier is taken from the inbound X-Request-ID header when the
// client sent one, generated otherwise, stored in the request namespace,
// and echoed on the response:
//
//	requestid.Install(app, requestid.WithULID())
//
//	app.GET("/work", "work", func(c *flagon.Context) (any, error) {
//		c.Logger().Info("working", "request_id", requestid.Get(c))
//		return "done", nil
//	})
//
// The default generator produces sixteen random bytes, hex encoded.
// WithUUID and WithULID switch to UUIDv4 or ULID identifiers, and
// WithGenerator accepts anything else.
package requestid
