// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scene

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/golang/glog"
)

// GizmoPathEnv names the colon-separated (os.PathListSeparator-separated)
// search path environment variable the gizmo registry walks, per spec.md
// §4.5/§6.
const GizmoPathEnv = "NKSCENE_GIZMO_PATH"

// gizmoRegistry is process-wide memoised state, per spec.md §5: populated
// on first use and never invalidated for the lifetime of the process. It
// holds owning references to gizmo subgraphs; consumers always get a deep
// copy (see beginNode/closeNode in parser.go), so mutating a consumer's
// graph can never affect the registry or any other consumer.
type gizmoRegistry struct {
	byName map[string]*Node
}

var (
	registryOnce sync.Once
	registry     *gizmoRegistry
)

// getGizmoRegistry returns the process-wide gizmo registry, populating it
// on first call. Concurrent first-use calls serialise on the sync.Once so
// only one directory walk and parse pass ever runs, per spec.md §5.
func getGizmoRegistry() *gizmoRegistry {
	registryOnce.Do(func() {
		registry = loadGizmoRegistry()
	})
	return registry
}

// loadGizmoRegistry walks GizmoPathEnv and parses every ".gizmo" file it
// finds. Each file is parsed against a nil registry: a gizmo referencing
// another gizmo class by name during registry population would both
// re-enter getGizmoRegistry while its sync.Once is still running (a
// deadlock) and is not a case the format needs to support, matching the
// original parser building each prototype against an empty gizmo table.
func loadGizmoRegistry() *gizmoRegistry {
	reg := &gizmoRegistry{byName: make(map[string]*Node)}
	searchPath := os.Getenv(GizmoPathEnv)
	if searchPath == "" {
		return reg
	}
	for _, dir := range strings.Split(searchPath, string(os.PathListSeparator)) {
		if dir == "" {
			continue
		}
		for _, path := range gizmoFilesUnder(dir) {
			root, err := parseFile(path, nil)
			if err != nil {
				log.Warningf("gizmo registry: could not parse %q, skipping: %s", path, err)
				continue
			}
			for _, child := range root.Children() {
				name := child.Name()
				if name == "" {
					continue
				}
				reg.byName[name] = child
				reg.byName[name+".gizmo"] = child
			}
		}
	}
	return reg
}

// gizmoFilesUnder walks dir (recursively, matching the original's os.walk)
// and returns every regular file ending in ".gizmo". It tolerates
// unreadable directories by skipping them rather than aborting the whole
// registry population.
func gizmoFilesUnder(dir string) []string {
	var paths []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(path, ".gizmo") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	return paths
}

// lookup returns the registered gizmo prototype for class, if any. The
// returned node must never be mutated directly by callers; use
// deepCopyForest to obtain an independent copy.
func (r *gizmoRegistry) lookup(class string) (*Node, bool) {
	if r == nil {
		return nil, false
	}
	n, ok := r.byName[class]
	return n, ok
}

// resetGizmoRegistryForTest clears the process-wide memo so package tests
// can exercise different NKSCENE_GIZMO_PATH values in isolation. Never
// called from production code: spec.md §5 requires the registry to stay
// populated for the lifetime of the process once built.
func resetGizmoRegistryForTest() {
	registryOnce = sync.Once{}
	registry = nil
}
