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

import "testing"

func TestNewNodeDefaultArity(t *testing.T) {
	n := NewNode("Blur", map[string]KnobValue{})
	if len(n.InputSlots()) != 1 {
		t.Fatalf("default arity = %d, want 1", len(n.InputSlots()))
	}
}

func TestNewNodeArityClamping(t *testing.T) {
	tests := []struct {
		name  string
		inputs KnobValue
		want  int
	}{
		{"explicit", KnobValue{Kind: KindInt, Int: 3}, 3},
		{"negative clamps to zero", KnobValue{Kind: KindInt, Int: -2}, 0},
		{"unparseable falls back to one", rawValue("banana"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNode("Merge2", map[string]KnobValue{"inputs": tt.inputs})
			if got := len(n.InputSlots()); got != tt.want {
				t.Errorf("arity = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSetInputRewiresOutputs(t *testing.T) {
	a := NewNode("Read", map[string]KnobValue{"inputs": {Kind: KindInt, Int: 0}})
	b := NewNode("Read", map[string]KnobValue{"inputs": {Kind: KindInt, Int: 0}})
	merge := NewNode("Merge2", map[string]KnobValue{"inputs": {Kind: KindInt, Int: 2}})

	merge.setInput(0, a)
	merge.setInput(1, b)
	if got := merge.Inputs(); len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("Inputs() = %v, want [a b]", got)
	}
	if got := a.Outputs(); len(got) != 1 || got[0] != merge {
		t.Fatalf("a.Outputs() = %v, want [merge]", got)
	}

	merge.setInput(0, b)
	if got := a.Outputs(); len(got) != 0 {
		t.Errorf("a.Outputs() after rewire = %v, want empty", got)
	}
	if got := b.Outputs(); len(got) != 1 || got[0] != merge {
		t.Fatalf("b.Outputs() = %v, want [merge]", got)
	}
}

func TestNodeNameIsAlwaysRootForRootClass(t *testing.T) {
	root := NewNode("Root", map[string]KnobValue{"name": {Kind: KindString, Str: "/tmp/scene.nk"}})
	if got := root.nodeName(); got != "Root" {
		t.Errorf("nodeName() = %q, want %q", got, "Root")
	}
}

func TestPathAndFullName(t *testing.T) {
	root := NewNode("Root", nil)
	group := NewNode("Group", map[string]KnobValue{"name": {Kind: KindString, Str: "Group1"}})
	blur := NewNode("Blur", map[string]KnobValue{"name": {Kind: KindString, Str: "Blur1"}})
	root.addChild(group)
	group.addChild(blur)

	if got, want := blur.Path(), "/Root/Group1/Blur1"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
	if got, want := blur.FullName(), "Group1.Blur1"; got != want {
		t.Errorf("FullName() = %q, want %q", got, want)
	}
}

func TestDisablePropagatesAcrossCloneFamily(t *testing.T) {
	source := NewNode("Blur", map[string]KnobValue{"inputs": {Kind: KindInt, Int: 0}})
	clone1 := NewNode("Blur", map[string]KnobValue{"inputs": {Kind: KindInt, Int: 0}})
	clone2 := NewNode("Blur", map[string]KnobValue{"inputs": {Kind: KindInt, Int: 0}})
	clone1.source = source
	clone2.source = source
	source.clones = []*Node{clone1, clone2}

	clone1.SetDisable(true)

	if !source.Disable() {
		t.Errorf("source.Disable() = false, want true after clone1.SetDisable(true)")
	}
	if !clone2.Disable() {
		t.Errorf("clone2.Disable() = false, want true after clone1.SetDisable(true)")
	}
	if !source.IsClone() || !clone1.IsClone() || !clone2.IsClone() {
		t.Errorf("IsClone() should be true on every member of the clone family")
	}
}

func TestDumpIncludesSortedKnobsAndChildren(t *testing.T) {
	root := NewNode("Root", nil)
	blur := NewNode("Blur", map[string]KnobValue{
		"name":   {Kind: KindString, Str: "B1"},
		"size":   {Kind: KindFloat, Float: 2.5},
		"inputs": {Kind: KindInt, Int: 0},
	})
	root.addChild(blur)

	got := root.Dump()
	want := "(Root inputs=1\n  (Blur \"B1\" inputs=0 size=2.5\n"
	if got[:len(want)] != want {
		t.Errorf("Dump() = %q, want prefix %q", got, want)
	}
}

func TestAllNodesFiltersByClass(t *testing.T) {
	root := NewNode("Root", nil)
	blur := NewNode("Blur", nil)
	merge := NewNode("Merge2", map[string]KnobValue{"inputs": {Kind: KindInt, Int: 2}})
	root.addChild(blur)
	root.addChild(merge)

	got := root.AllNodes("Merge2")
	if len(got) != 1 || got[0] != merge {
		t.Fatalf("AllNodes(\"Merge2\") = %v, want [merge]", got)
	}
	if got := root.AllNodes(); len(got) != 2 {
		t.Fatalf("AllNodes() = %v, want 2 entries", got)
	}
}
