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
	"context"
	"net/http"
	"net/http/httptest"
	"time"
)

// TestOption configures Test execution.
type TestOption func(*testConfig)

type testConfig struct {
	timeout time.Duration
}

// WithTestTimeout bounds how long Test waits for the dispatch to finish.
// Use -1 for no timeout.
func WithTestTimeout(d time.Duration) TestOption {
	return func(cfg *testConfig) {
		cfg.timeout = d
	}
}

// Test drives req through the full request lifecycle without a server and
// returns the recorded response. It exists for unit tests of handlers,
// hooks and blueprints:
//
//	req := httptest.NewRequest(http.MethodGet, "/hello/world", nil)
//	resp, err := app.Test(req)
//	require.NoError(t, err)
//	assert.Equal(t, http.StatusOK, resp.StatusCode)
//
// The default timeout is one second; the dispatch goroutine is not killed
// on timeout, it only stops being waited for.
func (a *App) Test(req *http.Request, opts ...TestOption) (*http.Response, error) {
	cfg := &testConfig{timeout: time.Second}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx := req.Context()
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}
	req = req.WithContext(ctx)

	recorder := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.ServeHTTP(recorder, req)
	}()

	select {
	case <-done:
		return recorder.Result(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
