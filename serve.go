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
	"fmt"
	"net/http"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// serverConfig holds the HTTP server settings applied by Run and RunTLS.
type serverConfig struct {
	readTimeout       time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	readHeaderTimeout time.Duration
	maxHeaderBytes    int
	shutdownTimeout   time.Duration
	h2c               bool
}

func defaultServerConfig() *serverConfig {
	return &serverConfig{
		readTimeout:       DefaultReadTimeout,
		writeTimeout:      DefaultWriteTimeout,
		idleTimeout:       DefaultIdleTimeout,
		readHeaderTimeout: DefaultReadHeaderTimeout,
		maxHeaderBytes:    http.DefaultMaxHeaderBytes,
		shutdownTimeout:   DefaultShutdownTimeout,
	}
}

func (s *serverConfig) validate() error {
	if s.readTimeout <= 0 || s.writeTimeout <= 0 || s.idleTimeout <= 0 || s.shutdownTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	return nil
}

// envOverrides are the FLAGON_* environment variables consulted by Run,
// letting deployments adjust the listen address and timeouts without a
// rebuild. Unset variables leave the configured values untouched.
type envOverrides struct {
	Addr            string        `envconfig:"ADDR"`
	Environment     string        `envconfig:"ENV"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT"`
}

func (a *App) applyEnvOverrides(addr string) (string, error) {
	var env envOverrides
	if err := envconfig.Process("flagon", &env); err != nil {
		return addr, fmt.Errorf("reading FLAGON_ environment: %w", err)
	}
	if env.Addr != "" {
		addr = env.Addr
	}
	if env.Environment != "" {
		a.environment = env.Environment
	}
	if env.ReadTimeout > 0 {
		a.server.readTimeout = env.ReadTimeout
	}
	if env.WriteTimeout > 0 {
		a.server.writeTimeout = env.WriteTimeout
	}
	if env.IdleTimeout > 0 {
		a.server.idleTimeout = env.IdleTimeout
	}
	if env.ShutdownTimeout > 0 {
		a.server.shutdownTimeout = env.ShutdownTimeout
	}
	return addr, nil
}

// OnStart registers a hook that runs before the server starts accepting
// connections. Hooks run sequentially in registration order; the first
// error aborts startup.
func (a *App) OnStart(fn func(ctx context.Context) error) {
	a.startHooks = append(a.startHooks, fn)
}

// OnShutdown registers a hook that runs during graceful shutdown, before
// the listener closes. Hooks run in reverse registration order within the
// shutdown deadline.
func (a *App) OnShutdown(fn func(ctx context.Context)) {
	a.shutdownHooks = append(a.shutdownHooks, fn)
}

func (a *App) newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       a.server.readTimeout,
		WriteTimeout:      a.server.writeTimeout,
		IdleTimeout:       a.server.idleTimeout,
		ReadHeaderTimeout: a.server.readHeaderTimeout,
		MaxHeaderBytes:    a.server.maxHeaderBytes,
	}
}

// Run serves the application on addr until ctx is canceled, then shuts
// down gracefully within the shutdown timeout. FLAGON_* environment
// variables override the address and timeouts. Signal handling belongs to
// the caller.
//
// Example:
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer cancel()
//
//	if err := app.Run(ctx, ":8080"); err != nil {
//		log.Fatal(err)
//	}
func (a *App) Run(ctx context.Context, addr string) error {
	addr, err := a.applyEnvOverrides(addr)
	if err != nil {
		return err
	}
	if err := a.runStartHooks(ctx); err != nil {
		return err
	}

	var handler http.Handler = a
	protocol := "HTTP"
	if a.server.h2c {
		handler = h2c.NewHandler(a, &http2.Server{})
		protocol = "H2C"
	}
	server := a.newServer(addr, handler)
	return a.runServer(ctx, server, server.ListenAndServe, protocol)
}

// RunTLS serves the application over HTTPS until ctx is canceled. HTTP/2
// is negotiated through ALPN.
func (a *App) RunTLS(ctx context.Context, addr, certFile, keyFile string) error {
	addr, err := a.applyEnvOverrides(addr)
	if err != nil {
		return err
	}
	if err := a.runStartHooks(ctx); err != nil {
		return err
	}

	server := a.newServer(addr, a)
	return a.runServer(ctx, server, func() error {
		return server.ListenAndServeTLS(certFile, keyFile)
	}, "HTTPS")
}

func (a *App) runStartHooks(ctx context.Context) error {
	for _, fn := range a.startHooks {
		if err := fn(ctx); err != nil {
			return fmt.Errorf("startup failed: %w", err)
		}
	}
	return nil
}

// runServer handles the shared start/shutdown lifecycle. The context
// signals when to shut down; a fresh context bounds how long shutdown
// may take, since the triggering one is already canceled.
func (a *App) runServer(ctx context.Context, server *http.Server, start func() error, protocol string) error {
	serverErr := make(chan error, 1)
	ready := make(chan struct{})
	go func() {
		a.printStartupBanner(server.Addr, protocol)
		a.logger.Info("server starting",
			"address", server.Addr,
			"environment", a.environment,
			"protocol", protocol,
		)
		close(ready)
		if err := start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("%s server failed: %w", protocol, err)
		}
	}()
	<-ready

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		a.logger.Info("server shutting down", "protocol", protocol, "reason", ctx.Err())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.server.shutdownTimeout)
	defer cancel()

	for i := len(a.shutdownHooks) - 1; i >= 0; i-- {
		a.shutdownHooks[i](shutdownCtx)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s server forced to shutdown: %w", protocol, err)
	}
	a.logger.Info("server exited", "protocol", protocol)
	return nil
}
