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

package requestid

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/flagon-dev/flagon"
)

// DefaultHeader is the header the identifier is read from and written to.
const DefaultHeader = "X-Request-ID"

// contextKey is the request-namespace key the identifier is stored under.
const contextKey = "requestid"

// Generator produces a fresh request identifier.
type Generator func() string

// config collects the options applied by Install.
type config struct {
	header    string
	generator Generator
}

// Option configures Install.
type Option func(*config)

// WithHeader changes the header the identifier travels in.
func WithHeader(header string) Option {
	return func(c *config) {
		if header != "" {
			c.header = header
		}
	}
}

// WithGenerator replaces the identifier generator.
func WithGenerator(fn Generator) Option {
	return func(c *config) {
		if fn != nil {
			c.generator = fn
		}
	}
}

// WithUUID generates UUIDv4 identifiers.
func WithUUID() Option {
	return WithGenerator(uuid.NewString)
}

// WithULID generates ULID identifiers, which sort by creation time.
func WithULID() Option {
	return WithGenerator(func() string {
		return ulid.Make().String()
	})
}

// hexID is the default generator: sixteen random bytes, hex encoded.
func hexID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// Install registers the identifier hooks on app: a before-request hook
// that adopts or generates the identifier, and an after-request hook
// that echoes it on the response.
func Install(app *flagon.App, opts ...Option) {
	cfg := &config{
		header:    DefaultHeader,
		generator: hexID,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	app.BeforeRequest(func(c *flagon.Context) (any, error) {
		id := c.Request.Header.Get(cfg.header)
		if id == "" {
			id = cfg.generator()
		}
		c.Set(contextKey, id)
		return nil, nil
	})
	app.AfterRequest(func(c *flagon.Context, res *flagon.Response) (*flagon.Response, error) {
		if id, ok := c.Get(contextKey); ok {
			res.SetHeader(cfg.header, id.(string))
		}
		return res, nil
	})
}

// Get returns the request's identifier, or the empty string before
// Install's hook has run.
func Get(c *flagon.Context) string {
	if id, ok := c.Get(contextKey); ok {
		return id.(string)
	}
	return ""
}
