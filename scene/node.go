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

// Package scene implements the scene-script parser: a stack-machine reader
// that turns a compositing application's textual scene description into an
// in-memory node DAG.
package scene

import (
	"fmt"
	"sort"
	"strings"
)

// rootClasses mark top-of-scope boundaries; they may appear more than once
// and are pushed onto the scope stack.
var rootClasses = map[string]bool{
	"Root":          true,
	"LiveGroupInfo": true,
}

// groupClasses open a new scope for their children on close.
var groupClasses = map[string]bool{
	"Group": true,
	"Gizmo": true,
}

// Node is one entry in the scene DAG. See spec.md §3 for the full
// description of each field's semantics.
type Node struct {
	class    string
	knobs    map[string]KnobValue
	inputs   []*Node
	outputs  []*Node
	children []*Node
	parent   *Node

	cloneSuffix string
	source      *Node
	clones      []*Node
	isGizmo     bool
}

// NewNode constructs a node of the given class with the given knobs. The
// knobs map is adopted, not copied; callers that still hold a reference to
// it must not mutate it afterward. knobs["inputs"] defaults to 1 when
// absent, and the input slice is sized to match it.
func NewNode(class string, knobs map[string]KnobValue) *Node {
	if knobs == nil {
		knobs = make(map[string]KnobValue)
	}
	if _, ok := knobs["inputs"]; !ok {
		knobs["inputs"] = KnobValue{Kind: KindInt, Int: 1, Raw: "1"}
	}
	n := &Node{
		class: class,
		knobs: knobs,
	}
	n.inputs = make([]*Node, n.arity())
	return n
}

// arity returns the declared input count, clamped per spec.md §9: strict
// integer parsing with a fallback of 1, negative results clamped to 0.
func (n *Node) arity() int {
	v, ok := n.knobs["inputs"]
	if !ok {
		return 1
	}
	i, ok := v.AsInt()
	if !ok {
		return 1
	}
	if i < 0 {
		return 0
	}
	return int(i)
}

// Class returns the node's class tag (e.g. "Merge2", "Group", "Root").
func (n *Node) Class() string { return n.class }

// nodeName is the name reported for path construction: the name knob for
// ordinary nodes, but the literal "Root" for root-class nodes regardless of
// their name knob (which, for a top scene root, holds the source file path
// rather than a user-facing name).
func (n *Node) nodeName() string {
	if n.class == "Root" {
		return "Root"
	}
	return n.Name()
}

// Name returns the name knob, or empty if unset.
func (n *Node) Name() string {
	if v, ok := n.knobs["name"]; ok {
		return v.String()
	}
	return ""
}

// Parent returns the enclosing node, or nil for the top root.
func (n *Node) Parent() *Node { return n.parent }

// Root ascends parents until parent is nil.
func (n *Node) Root() *Node {
	node := n
	for node.parent != nil {
		node = node.parent
	}
	return node
}

// Children returns a stable snapshot of the node's children.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

func (n *Node) addChild(child *Node) {
	n.children = append(n.children, child)
	child.parent = n
}

// Inputs returns a stable snapshot of the connected inputs, in slot order,
// skipping unconnected slots -- matching the original's tuple(filter(None,
// self._inputs)).
func (n *Node) Inputs() []*Node {
	var out []*Node
	for _, in := range n.inputs {
		if in != nil {
			out = append(out, in)
		}
	}
	return out
}

// InputSlots returns every input slot including unconnected ones as nil,
// preserving arity per spec.md's invariant |inputs| == knobs.inputs.
func (n *Node) InputSlots() []*Node {
	out := make([]*Node, len(n.inputs))
	copy(out, n.inputs)
	return out
}

// Outputs returns a stable snapshot of the nodes that reference n as an
// input.
func (n *Node) Outputs() []*Node {
	var out []*Node
	for _, o := range n.outputs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

// setInput wires input slot i of n to m, per spec.md §4.3's setInput
// semantics: unless another slot of n still holds it, the node previously
// in slot i has its back-reference to n removed (marked empty rather than
// shrinking the slice, so other indices into its outputs stay stable), then
// n is added to m's outputs if not already there, so outputs lists each
// referencing node once.
func (n *Node) setInput(i int, m *Node) {
	holds := func(list []*Node, x *Node) bool {
		for _, e := range list {
			if e == x {
				return true
			}
		}
		return false
	}
	old := n.inputs[i]
	n.inputs[i] = m
	if old != nil && !holds(n.inputs, old) {
		for idx, o := range old.outputs {
			if o == n {
				old.outputs[idx] = nil
				break
			}
		}
	}
	if m != nil && !holds(m.outputs, n) {
		m.outputs = append(m.outputs, n)
	}
}

// Knobs returns a deep copy of the node's knob map.
func (n *Node) Knobs() map[string]KnobValue {
	return cloneKnobs(n.knobs)
}

// Knob returns the named knob's value, or def if absent.
func (n *Node) Knob(name string, def KnobValue) KnobValue {
	if v, ok := n.knobs[name]; ok {
		return v
	}
	return def
}

// HasKnob reports whether the named knob is present.
func (n *Node) HasKnob(name string) bool {
	_, ok := n.knobs[name]
	return ok
}

// Xpos returns the xpos knob, if set.
func (n *Node) Xpos() (int64, bool) {
	v, ok := n.knobs["xpos"]
	if !ok {
		return 0, false
	}
	i, ok := v.AsInt()
	return i, ok
}

// Ypos returns the ypos knob, if set.
func (n *Node) Ypos() (int64, bool) {
	v, ok := n.knobs["ypos"]
	if !ok {
		return 0, false
	}
	i, ok := v.AsInt()
	return i, ok
}

// SetXpos sets the xpos knob.
func (n *Node) SetXpos(x int64) {
	n.knobs["xpos"] = KnobValue{Kind: KindInt, Int: x}
}

// SetYpos sets the ypos knob.
func (n *Node) SetYpos(y int64) {
	n.knobs["ypos"] = KnobValue{Kind: KindInt, Int: y}
}

// Disable returns the disable knob's truthiness.
func (n *Node) Disable() bool {
	v, ok := n.knobs["disable"]
	if !ok {
		return false
	}
	return v.AsBool()
}

// SetDisable writes the disable knob on n and propagates it to the rest of
// n's clone family (source first, then every clone), per spec.md §4.4.
func (n *Node) SetDisable(value bool) {
	n.setDisableLocal(value)
	if n.source != nil {
		n.source.setDisableLocal(value)
		for _, c := range n.source.clones {
			c.setDisableLocal(value)
		}
		return
	}
	for _, c := range n.clones {
		c.setDisableLocal(value)
	}
}

func (n *Node) setDisableLocal(value bool) {
	iv := int64(0)
	if value {
		iv = 1
	}
	n.knobs["disable"] = KnobValue{Kind: KindInt, Int: iv}
}

// IsClone reports whether n participates in a clone family, either as the
// source or as one of its clones -- both sides report true.
func (n *Node) IsClone() bool {
	return n.source != nil || len(n.clones) > 0
}

// Source returns the node this is a clone of, or nil.
func (n *Node) Source() *Node { return n.source }

// Clones returns a stable snapshot of the clones made of n.
func (n *Node) Clones() []*Node {
	out := make([]*Node, len(n.clones))
	copy(out, n.clones)
	return out
}

// IsGizmo reports whether n was materialised from a gizmo file, or whether
// its class is literally "gizmo".
func (n *Node) IsGizmo() bool {
	return n.class == "gizmo" || n.isGizmo
}

// Path returns the slash-delimited path from the top root, suffixed with
// the clone tag if n is a clone instance.
func (n *Node) Path() string {
	var segs []string
	for node := n; node != nil; node = node.parent {
		segs = append(segs, node.nodeName())
	}
	var b strings.Builder
	for i := len(segs) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(segs[i])
	}
	b.WriteString(n.cloneSuffix)
	return b.String()
}

// FullName returns a dotted path from the nearest enclosing non-Root
// ancestor, used for gizmo/group-relative addressing.
func (n *Node) FullName() string {
	var segs []string
	for node := n; node != nil && node.class != "Root"; node = node.parent {
		segs = append([]string{node.Name()}, segs...)
	}
	return strings.Join(segs, ".")
}

// allNodesInto performs the depth-first traversal shared by AllNodes.
func (n *Node) allNodesInto(out *[]*Node) {
	for _, child := range n.children {
		*out = append(*out, child)
		child.allNodesInto(out)
	}
}

// AllNodes returns a depth-first flattened enumeration of n's descendants,
// optionally restricted to the given classes.
func (n *Node) AllNodes(classes ...string) []*Node {
	var all []*Node
	n.allNodesInto(&all)
	if len(classes) == 0 {
		return all
	}
	want := make(map[string]bool, len(classes))
	for _, c := range classes {
		want[c] = true
	}
	var out []*Node
	for _, node := range all {
		if want[node.class] {
			out = append(out, node)
		}
	}
	return out
}

// String renders a compact human-readable form for logging, grounded on the
// teacher's Node.toString shape in parser/node.go.
func (n *Node) String() string {
	if n == nil {
		return "(nil)"
	}
	return fmt.Sprintf("%s(name=%q)", n.class, n.Name())
}

// Dump renders the full subtree rooted at n as an indented, deterministic
// tree, grounded on the teacher's Node.toString(indent, full) in
// parser/node.go: sorted knob keys so output is stable across runs, one
// child per indented line.
func (n *Node) Dump() string {
	if n == nil {
		return "(nil)"
	}
	var b strings.Builder
	n.dumpInto(&b, "")
	return b.String()
}

func (n *Node) dumpInto(b *strings.Builder, indent string) {
	fmt.Fprintf(b, "%s(%s", indent, n.class)
	if name := n.Name(); name != "" {
		fmt.Fprintf(b, " %q", name)
	}
	keys := make([]string, 0, len(n.knobs))
	for k := range n.knobs {
		if k == "name" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%s", k, n.knobs[k].String())
	}
	if n.IsClone() {
		fmt.Fprintf(b, " clone%s", n.cloneSuffix)
	}
	b.WriteString("\n")
	for _, child := range n.children {
		child.dumpInto(b, indent+"  ")
	}
}
