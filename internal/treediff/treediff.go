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

// Package treediff compares two scene graphs structurally and reports a
// human-readable list of differences, for use in golden-fixture tests. It
// is a retargeting of the teacher's tree.Diff (tree/diff.go), which
// performed the same comparison over PEG parse trees keyed by Label and
// Annotations; here the comparison is keyed by a node's Class and Knobs.
package treediff

import (
	"fmt"
	"sort"

	"github.com/mwiklund/nkscene/scene"
)

// Diff compares got against want and returns a list of human-readable
// mismatch descriptions, empty when the two graphs are equivalent. The
// comparison checks class, knobs, and recursively the children in order;
// it does not follow inputs/outputs/clone links, since those are exercised
// directly by the invariant checks in scene's own tests.
func Diff(got, want *scene.Node) (diff []string) {
	if got == nil && want == nil {
		return nil
	}
	if got == nil {
		return []string{fmt.Sprintf("expected (%s), got nil", want.Class())}
	}
	if want == nil {
		return []string{fmt.Sprintf("expected nil, got (%s)", got.Class())}
	}
	if got.Class() != want.Class() {
		diff = append(diff, fmt.Sprintf("expected class %q, got %q", want.Class(), got.Class()))
	}

	wantKnobs, gotKnobs := want.Knobs(), got.Knobs()
	checked := make(map[string]bool)
	for k, wv := range wantKnobs {
		gv, ok := gotKnobs[k]
		if !ok {
			diff = append(diff, fmt.Sprintf("%s: expected knob %s=%q, not found", want.Class(), k, wv))
			continue
		}
		if gv.String() != wv.String() {
			diff = append(diff, fmt.Sprintf("%s: expected knob %s=%q, got %q", want.Class(), k, wv, gv))
		}
		checked[k] = true
	}
	var extra []string
	for k := range gotKnobs {
		if !checked[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		diff = append(diff, fmt.Sprintf("%s: extra knob %s=%q, not expected", got.Class(), k, gotKnobs[k]))
	}

	gotChildren, wantChildren := got.Children(), want.Children()
	if len(gotChildren) != len(wantChildren) {
		diff = append(diff, fmt.Sprintf("%s: expected %d children, got %d", want.Class(), len(wantChildren), len(gotChildren)))
	}
	n := len(gotChildren)
	if len(wantChildren) < n {
		n = len(wantChildren)
	}
	for i := 0; i < n; i++ {
		diff = append(diff, Diff(gotChildren[i], wantChildren[i])...)
	}
	return diff
}
