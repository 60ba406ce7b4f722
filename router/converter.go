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

package router

import (
	"strconv"

	"github.com/spf13/cast"
)

// Converter constrains and coerces one wildcard segment.
//
// Pattern is a regular-expression fragment without anchors. It must not
// define named capture groups; the router wraps it in one named after the
// wildcard. Decode coerces the captured text into its typed value; nil
// keeps the raw string. Encode renders a typed value back into path text
// for URL building; nil uses the value's string form.
type Converter struct {
	Pattern string
	Decode  func(raw string) (any, error)
	Encode  func(v any) (string, error)
}

// ConverterFunc builds a fresh Converter. A factory is invoked once per
// wildcard at rule-compilation time, so converters may carry per-rule
// state if they need it.
type ConverterFunc func() Converter

// StringConverter matches a single path segment and keeps it as a string.
// It is the default for wildcards written without a converter name.
func StringConverter() Converter {
	return Converter{Pattern: `[^/]+`}
}

// IntConverter matches an optionally signed integer and decodes it to an
// int. Values outside the int range fail decoding and resolve to a 400.
func IntConverter() Converter {
	return Converter{
		Pattern: `-?\d+`,
		Decode: func(raw string) (any, error) {
			return strconv.Atoi(raw)
		},
		Encode: func(v any) (string, error) {
			n, err := cast.ToIntE(v)
			if err != nil {
				return "", err
			}
			return strconv.Itoa(n), nil
		},
	}
}

// FloatConverter matches an optionally signed decimal (no exponent
// notation) and decodes it to a float64.
func FloatConverter() Converter {
	return Converter{
		Pattern: `-?[\d.]+`,
		Decode: func(raw string) (any, error) {
			return strconv.ParseFloat(raw, 64)
		},
		Encode: func(v any) (string, error) {
			f, err := cast.ToFloat64E(v)
			if err != nil {
				return "", err
			}
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		},
	}
}

// PathConverter matches across path segments, slashes included, and keeps
// the captured text as a string. The fragment is non-greedy so trailing
// literals in the rule still anchor.
func PathConverter() Converter {
	return Converter{Pattern: `.+?`}
}

// defaultConverters returns the built-in converter registry for a new
// Router.
func defaultConverters() map[string]ConverterFunc {
	return map[string]ConverterFunc{
		"string": StringConverter,
		"int":    IntConverter,
		"float":  FloatConverter,
		"path":   PathConverter,
	}
}

// encodeValue renders v using the converter's encoder, falling back to the
// value's string form when no encoder is set.
func (c Converter) encodeValue(v any) (string, error) {
	if c.Encode != nil {
		return c.Encode(v)
	}
	return cast.ToStringE(v)
}

// decodeValue coerces raw using the converter's decoder, keeping the raw
// string when no decoder is set.
func (c Converter) decodeValue(raw string) (any, error) {
	if c.Decode != nil {
		return c.Decode(raw)
	}
	return raw, nil
}
