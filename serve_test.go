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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := defaultServerConfig()
	assert.NoError(t, cfg.validate())

	cfg.readTimeout = 0
	assert.Error(t, cfg.validate())
}

func TestNewServerAppliesConfig(t *testing.T) {
	t.Parallel()

	a := MustNew(
		WithReadTimeout(3*time.Second),
		WithWriteTimeout(4*time.Second),
		WithIdleTimeout(5*time.Second),
	)
	srv := a.newServer(":8080", a)
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 3*time.Second, srv.ReadTimeout)
	assert.Equal(t, 4*time.Second, srv.WriteTimeout)
	assert.Equal(t, 5*time.Second, srv.IdleTimeout)
	assert.Equal(t, DefaultReadHeaderTimeout, srv.ReadHeaderTimeout)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("FLAGON_ADDR", ":9999")
	t.Setenv("FLAGON_ENV", "production")
	t.Setenv("FLAGON_READ_TIMEOUT", "42s")

	a := MustNew()
	addr, err := a.applyEnvOverrides(":8080")
	require.NoError(t, err)
	assert.Equal(t, ":9999", addr)
	assert.Equal(t, "production", a.Environment())
	assert.Equal(t, 42*time.Second, a.server.readTimeout)
	assert.Equal(t, DefaultWriteTimeout, a.server.writeTimeout, "unset variables leave values untouched")
}

func TestApplyEnvOverridesNoEnv(t *testing.T) {
	t.Setenv("FLAGON_ADDR", "")

	a := MustNew()
	addr, err := a.applyEnvOverrides(":8080")
	require.NoError(t, err)
	assert.Equal(t, ":8080", addr)
}

func TestRunStartHookFailureAbortsStartup(t *testing.T) {
	t.Setenv("FLAGON_ADDR", "")

	a := MustNew(WithoutBanner())
	boom := errors.New("migrations failed")
	a.OnStart(func(ctx context.Context) error { return boom })

	err := a.Run(context.Background(), "127.0.0.1:0")
	assert.ErrorIs(t, err, boom)
}

func TestRunGracefulShutdown(t *testing.T) {
	t.Setenv("FLAGON_ADDR", "")

	a := MustNew(
		WithoutBanner(),
		WithShutdownTimeout(2*time.Second),
	)
	a.GET("/ping", "ping", okHandler)

	var started, stopped bool
	a.OnStart(func(ctx context.Context) error {
		started = true
		return nil
	})
	a.OnShutdown(func(ctx context.Context) {
		stopped = true
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	err := a.Run(ctx, "127.0.0.1:0")
	assert.NoError(t, err)
	assert.True(t, started)
	assert.True(t, stopped)
}

func TestOnShutdownReverseOrder(t *testing.T) {
	t.Setenv("FLAGON_ADDR", "")

	a := MustNew(WithoutBanner())
	var order []string
	a.OnShutdown(func(ctx context.Context) { order = append(order, "first") })
	a.OnShutdown(func(ctx context.Context) { order = append(order, "second") })

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	require.NoError(t, a.Run(ctx, "127.0.0.1:0"))
	assert.Equal(t, []string{"second", "first"}, order)
}
