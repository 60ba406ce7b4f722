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

import "errors"

var (
	// ErrRouteSyntax indicates that a rule's assembled pattern failed to
	// compile. It surfaces from Add at setup time, never at request time.
	ErrRouteSyntax = errors.New("route pattern failed to compile")

	// ErrUnknownConverter indicates that a rule references a converter name
	// with no registered factory.
	ErrUnknownConverter = errors.New("unknown converter")

	// ErrConverterName indicates an empty or malformed converter name passed
	// to RegisterConverter.
	ErrConverterName = errors.New("converter name must not be empty")

	// ErrNilConverter indicates a nil converter factory passed to
	// RegisterConverter.
	ErrNilConverter = errors.New("converter factory must not be nil")

	// ErrUnknownEndpoint indicates a URL build request for an endpoint with
	// no registered rule.
	ErrUnknownEndpoint = errors.New("no route registered for endpoint")

	// ErrMissingParameter indicates a URL build request lacking a value for
	// a wildcard with no default.
	ErrMissingParameter = errors.New("missing required route parameter")

	// ErrEncodeParameter indicates a URL build value the wildcard's
	// converter could not encode.
	ErrEncodeParameter = errors.New("route parameter cannot be encoded")
)
