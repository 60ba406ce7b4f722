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

package accesslog

import "strings"

// pathFilter decides which request paths are never logged. It is
// populated during option application and read-only afterwards.
type pathFilter struct {
	paths    map[string]struct{}
	prefixes []string
}

func newPathFilter() *pathFilter {
	return &pathFilter{paths: make(map[string]struct{})}
}

func (f *pathFilter) addPaths(paths ...string) {
	for _, p := range paths {
		f.paths[p] = struct{}{}
	}
}

func (f *pathFilter) addPrefixes(prefixes ...string) {
	f.prefixes = append(f.prefixes, prefixes...)
}

func (f *pathFilter) excluded(path string) bool {
	if _, ok := f.paths[path]; ok {
		return true
	}
	for _, prefix := range f.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
