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
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"dario.cat/mergo"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Config is the application's key/value configuration store. Keys are
// case-insensitive and dotted keys address nested maps, so "server.port"
// reads the "port" entry of the "server" map. Values set from YAML files
// or the environment stay loosely typed; the typed getters convert on
// read.
//
// Config is safe for concurrent use by multiple goroutines.
type Config struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfig returns an empty configuration store.
func NewConfig() *Config {
	return &Config{values: make(map[string]any)}
}

// Set stores a value under a dotted key, creating intermediate maps as
// needed. An intermediate key holding a non-map value is overwritten.
func (c *Config) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	parts := strings.Split(strings.ToLower(key), ".")
	m := c.values
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

func (c *Config) lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var cur any = c.values
	for _, p := range strings.Split(strings.ToLower(key), ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Get returns the raw value for key, or nil when absent.
func (c *Config) Get(key string) any {
	v, _ := c.lookup(key)
	return v
}

// GetOr returns the raw value for key, or def when absent.
func (c *Config) GetOr(key string, def any) any {
	if v, ok := c.lookup(key); ok {
		return v
	}
	return def
}

// Has reports whether key is set.
func (c *Config) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

// GetString returns the value for key converted to a string.
func (c *Config) GetString(key string) string {
	return cast.ToString(c.Get(key))
}

// GetInt returns the value for key converted to an int.
func (c *Config) GetInt(key string) int {
	return cast.ToInt(c.Get(key))
}

// GetBool returns the value for key converted to a bool.
func (c *Config) GetBool(key string) bool {
	return cast.ToBool(c.Get(key))
}

// GetFloat64 returns the value for key converted to a float64.
func (c *Config) GetFloat64(key string) float64 {
	return cast.ToFloat64(c.Get(key))
}

// GetDuration returns the value for key converted to a time.Duration.
// String values use time.ParseDuration syntax.
func (c *Config) GetDuration(key string) time.Duration {
	return cast.ToDuration(c.Get(key))
}

// GetStringSlice returns the value for key converted to a string slice.
func (c *Config) GetStringSlice(key string) []string {
	return cast.ToStringSlice(c.Get(key))
}

// GetStringMap returns the value for key converted to a map.
func (c *Config) GetStringMap(key string) map[string]any {
	return cast.ToStringMap(c.Get(key))
}

// All returns a deep copy of the stored values.
func (c *Config) All() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyValueMap(c.values)
}

// Merge folds values into the store. Incoming values win on conflicts;
// nested maps are merged recursively.
func (c *Config) Merge(values map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mergo.Merge(&c.values, lowerKeys(values), mergo.WithOverride)
}

// LoadYAMLFile reads a YAML document and merges it into the store, file
// values winning over existing ones. The path supports ${VAR}
// environment expansion.
func (c *Config) LoadYAMLFile(path string) error {
	raw, err := os.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return c.Merge(values)
}

// LoadEnv merges environment variables carrying the given prefix into the
// store. The prefix is stripped, the rest is lowercased, and underscores
// become nesting separators, so with prefix "APP_" the variable
// APP_SERVER_PORT is stored as "server.port".
func (c *Config) LoadEnv(prefix string) {
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, prefix))
		if key == "" {
			continue
		}
		c.Set(strings.ReplaceAll(key, "_", "."), value)
	}
}

func lowerKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = lowerKeys(nested)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}

func copyValueMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = copyValueMap(nested)
		}
		out[k] = v
	}
	return out
}
