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

// Package logging builds the slog loggers the framework components take
// through their WithLogger options.
//
//	logger := logging.MustNew(
//		logging.WithFormat(logging.FormatJSON),
//		logging.WithLevel(slog.LevelDebug),
//	)
//	app := flagon.MustNew(flagon.WithLogger(logger))
//
// Nop returns a logger that discards everything; it is what components
// default to when no logger is configured.
package logging
