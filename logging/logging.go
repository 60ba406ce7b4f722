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

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format selects the log output encoding.
type Format string

const (
	// FormatJSON emits structured JSON records, one per line.
	FormatJSON Format = "json"
	// FormatText emits key=value text records.
	FormatText Format = "text"
)

// config collects the options applied by New.
type config struct {
	format      Format
	level       slog.Leveler
	output      io.Writer
	addSource   bool
	serviceName string
	version     string
	environment string
	replaceAttr func(groups []string, a slog.Attr) slog.Attr
}

// Option configures the logger built by New.
type Option func(*config)

// WithFormat sets the output encoding. The default is JSON.
func WithFormat(f Format) Option {
	return func(c *config) { c.format = f }
}

// WithLevel sets the minimum level that is logged. The default is Info.
func WithLevel(level slog.Leveler) Option {
	return func(c *config) { c.level = level }
}

// WithOutput sets the destination writer. The default is stderr.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.output = w }
}

// WithSource includes the logging call site in every record.
func WithSource() Option {
	return func(c *config) { c.addSource = true }
}

// WithServiceName attaches a service attribute to every record.
func WithServiceName(name string) Option {
	return func(c *config) { c.serviceName = name }
}

// WithVersion attaches a version attribute to every record.
func WithVersion(version string) Option {
	return func(c *config) { c.version = version }
}

// WithEnvironment attaches an environment attribute to every record.
func WithEnvironment(env string) Option {
	return func(c *config) { c.environment = env }
}

// WithReplaceAttr installs a slog attribute rewriter, for dropping or
// renaming attributes before they are encoded.
func WithReplaceAttr(fn func(groups []string, a slog.Attr) slog.Attr) Option {
	return func(c *config) { c.replaceAttr = fn }
}

// New builds a slog logger from the options.
func New(opts ...Option) (*slog.Logger, error) {
	cfg := &config{
		format: FormatJSON,
		level:  slog.LevelInfo,
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       cfg.level,
		AddSource:   cfg.addSource,
		ReplaceAttr: cfg.replaceAttr,
	}

	var handler slog.Handler
	switch cfg.format {
	case FormatJSON:
		handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	case FormatText:
		handler = slog.NewTextHandler(cfg.output, handlerOpts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.format)
	}

	logger := slog.New(handler)
	var attrs []any
	if cfg.serviceName != "" {
		attrs = append(attrs, slog.String("service", cfg.serviceName))
	}
	if cfg.version != "" {
		attrs = append(attrs, slog.String("version", cfg.version))
	}
	if cfg.environment != "" {
		attrs = append(attrs, slog.String("environment", cfg.environment))
	}
	if len(attrs) > 0 {
		logger = logger.With(attrs...)
	}
	return logger, nil
}

// MustNew is New panicking on error, for main functions and tests.
func MustNew(opts ...Option) *slog.Logger {
	logger, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("logging: %v", err))
	}
	return logger
}

// Nop returns a logger that discards every record.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
