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

import "errors"

var (
	// ErrNilHandler indicates a route registration without a handler
	// function.
	ErrNilHandler = errors.New("handler must not be nil")

	// ErrEndpointDot indicates an application-level endpoint containing a
	// dot. Dots namespace blueprint endpoints and are reserved.
	ErrEndpointDot = errors.New("endpoint name must not contain a dot")

	// ErrEndpointEmpty indicates a route registration without an endpoint
	// identifier.
	ErrEndpointEmpty = errors.New("endpoint name must not be empty")

	// ErrEndpointReuse indicates two different handlers registered under
	// the same endpoint. Re-registering the same handler is allowed.
	ErrEndpointReuse = errors.New("endpoint already registered with a different handler")

	// ErrNilResponse indicates a handler or hook produced neither a value
	// nor an error.
	ErrNilResponse = errors.New("handler returned no response")

	// ErrResponseType indicates a handler return value of a type the
	// dispatcher cannot normalize into a Response.
	ErrResponseType = errors.New("handler returned an unsupported type")

	// ErrBlueprintName indicates a blueprint name that is empty or
	// contains a dot.
	ErrBlueprintName = errors.New("blueprint name must be non-empty and contain no dot")

	// ErrBlueprintNameTaken indicates an attempt to register a different
	// blueprint under a name that is already in use.
	ErrBlueprintNameTaken = errors.New("a different blueprint is already registered under this name")

	// ErrScopedServerError indicates a 500 handler registered on a
	// blueprint. Internal errors escape blueprint scope, so their handler
	// must live on the application.
	ErrScopedServerError = errors.New("500 handler must be registered on the application, not a blueprint")
)
