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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/golang/glog"

	"github.com/mwiklund/nkscene/compat/file"
)

// ExperimentalEnv gates the addUserKnob decoder (spec.md §4.1/§4.2): the
// scene-script format encodes UI metadata in these blocks that most
// consumers never need, so they are parsed only when this variable is set.
const ExperimentalEnv = "NKSCENE_EXPERIMENTAL"

// Parse reads the scene or gizmo file at path and returns its root node.
// The gizmo registry is populated on first call (process-wide, see
// gizmo.go) before the file itself is read.
func Parse(path string) (*Node, error) {
	return parseFile(path, getGizmoRegistry())
}

// parseFile runs the stack machine over a single file, recursing into
// gizmo/live-group references as they are encountered. reg is threaded
// through explicitly rather than fetched via getGizmoRegistry: the
// registry's own population walk calls parseFile with reg == nil (a gizmo
// file's own node-opens never resolve other gizmo classes, matching the
// original parser's behaviour of building each prototype against an empty
// gizmo table) and must not re-enter getGizmoRegistry while it is still
// running, which would deadlock on its own sync.Once.
func parseFile(path string, reg *gizmoRegistry) (*Node, error) {
	data, err := file.ReadFile(context.Background(), path)
	if err != nil {
		return nil, ioError(path, err)
	}
	st := &parseState{
		path:         path,
		lines:        strings.Split(string(data), "\n"),
		branchTable:  map[string]*Node{},
		cloneCounts:  map[string]int{},
		experimental: os.Getenv(ExperimentalEnv) != "",
		gizmos:       reg,
	}
	if strings.HasSuffix(path, ".gizmo") {
		root := NewNode("Root", nil)
		st.scopeStack.push(root)
		st.valueStack.push(root)
	}
	for {
		line, ok := st.nextLine()
		if !ok {
			break
		}
		if err := st.dispatch(line); err != nil {
			return nil, err
		}
	}
	if !st.scopeStack.empty() {
		return st.scopeStack[0], nil
	}
	return NewNode("Root", nil), nil
}

// parseState holds everything the stack machine needs for one file; it is
// discarded at the end of parseFile, per spec.md §3's "discarded at end of
// parse" note on the stacks and tables.
type parseState struct {
	path  string
	lines []string
	idx   int

	valueStack  nodeStack
	scopeStack  nodeStack
	branchTable map[string]*Node
	cloneCounts map[string]int
	gizmos      *gizmoRegistry

	// class/knobs accumulate the node currently being read, between a
	// node-open/clone-open line and its matching close.
	class string
	knobs map[string]KnobValue

	// set by beginClone, consumed by closeNode.
	cloneSource *Node
	cloneSuffix string

	experimental bool
}

func (st *parseState) nextLine() (string, bool) {
	if st.idx >= len(st.lines) {
		return "", false
	}
	line := st.lines[st.idx]
	st.idx++
	return line, true
}

func (st *parseState) dispatch(line string) error {
	lk := classify(line, st.class != "")
	switch lk.kind {
	case lineStackNullPush:
		st.valueStack.push(nil)
	case lineBranchSave:
		return st.saveBranch(lk.key)
	case lineStackRestore:
		n, ok := st.branchTable[lk.key]
		if !ok {
			log.V(1).Infof("%s: push $%s referenced undefined branch, pushing empty", st.path, lk.key)
		}
		st.valueStack.push(n)
	case lineEndGroup:
		return st.endGroup()
	case lineCloneOpen:
		return st.beginClone(lk.key)
	case lineNodeOpen:
		st.beginNode(lk.typ)
	case lineNodeClose:
		return st.closeNode()
	case lineKnobAssign:
		return st.assignKnob(lk.knob, lk.value)
	}
	return nil
}

// saveBranch implements spec.md §4.1's "Branch save" recognizer, including
// the cut_paste_input special case that opens a throwaway Root scope to
// isolate clipboard fragments.
func (st *parseState) saveBranch(key string) error {
	if key == "cut_paste_input" {
		root := NewNode("Root", nil)
		st.scopeStack.push(root)
		return nil
	}
	st.branchTable[key] = st.valueStack.peek()
	return nil
}

// endGroup implements spec.md §4.1's "End of group": pop the value stack
// until its top equals the current scope-stack top, re-push that top, then
// pop the scope stack once.
func (st *parseState) endGroup() error {
	if st.scopeStack.empty() {
		return internalError("%s: end_group with no open scope", st.path)
	}
	target := st.scopeStack.peek()
	node := st.valueStack.pop()
	for node != target && !st.valueStack.empty() {
		node = st.valueStack.pop()
	}
	st.valueStack.push(target)
	st.scopeStack.pop()
	return nil
}

// beginClone implements spec.md §4.1's "Clone open": it starts a node block
// whose class/knobs/source are taken from the named branch, less the
// inputs knob (a clone's arity comes from its own file block).
func (st *parseState) beginClone(key string) error {
	src, ok := st.branchTable[key]
	if !ok || src == nil {
		return referenceError(key)
	}
	st.cloneCounts[key]++
	knobs := cloneKnobs(src.knobs)
	delete(knobs, "inputs")
	st.class = src.class
	st.knobs = knobs
	st.cloneSource = src
	st.cloneSuffix = fmt.Sprintf("_%d", st.cloneCounts[key])
	return nil
}

// beginNode implements spec.md §4.1's "Node open": a class token followed
// by "{" starts a fresh node block, merged with the class's gizmo
// prototype knobs when one is registered.
func (st *parseState) beginNode(class string) {
	knobs := map[string]KnobValue{}
	if giz, ok := st.gizmos.lookup(class); ok {
		for k, v := range cloneKnobs(giz.knobs) {
			knobs[k] = v
		}
	}
	if class == "Gizmo" {
		knobs["name"] = KnobValue{Kind: KindString, Str: gizmoBaseName(st.path)}
	}
	st.class = class
	st.knobs = knobs
}

// closeNode implements spec.md §4.3 steps 1-7: build the node, wire its
// inputs from the value stack, expand gizmo children and live-group
// references, link clone bookkeeping, and push/attach/scope the result.
func (st *parseState) closeNode() error {
	class, knobs := st.class, st.knobs
	st.class, st.knobs = "", nil

	node := NewNode(class, knobs)
	for i := range node.inputs {
		node.setInput(i, st.valueStack.pop())
	}

	if giz, ok := st.gizmos.lookup(class); ok {
		for _, child := range deepCopyForest(giz.children) {
			node.addChild(child)
		}
		node.isGizmo = true
	}

	if class == "LiveGroup" {
		if fileKnob, ok := node.knobs["file"]; ok && fileKnob.String() != "" {
			if err := st.expandLiveGroup(node, fileKnob.String()); err != nil {
				return err
			}
		}
	}

	if st.cloneSource != nil {
		node.source = st.cloneSource
		node.source.clones = append(node.source.clones, node)
		node.cloneSuffix = st.cloneSuffix
		st.cloneSource = nil
		st.cloneSuffix = ""
	}

	st.valueStack.push(node)

	if rootClasses[class] {
		st.scopeStack.push(node)
		return nil
	}

	parent := st.scopeStack.peek()
	if parent == nil {
		return internalError("%s: node %q closed with no enclosing scope", st.path, class)
	}
	parent.addChild(node)

	if groupClasses[class] || (class == "LiveGroup" && node.Knob("modified", KnobValue{}).AsBool()) {
		st.scopeStack.push(node)
	}
	return nil
}

// expandLiveGroup recursively parses the file referenced by a LiveGroup's
// file knob and reattaches its root's children under node, per spec.md
// §4.3/§4.5. The temporary root produced by the nested parse is discarded;
// its children are simply reparented.
func (st *parseState) expandLiveGroup(node *Node, path string) error {
	root, err := parseFile(path, st.gizmos)
	if err != nil {
		return err
	}
	for _, child := range root.Children() {
		node.addChild(child)
	}
	return nil
}

// assignKnob implements spec.md §4.1/§4.2's knob-assignment handling,
// including the multi-line quote/brace continuation rule: a value opening
// with `"` or `{` keeps reading lines until its quotes/braces balance.
func (st *parseState) assignKnob(key, value string) error {
	switch {
	case strings.HasPrefix(value, `"`):
		full := st.readQuoted(value)
		if len(full) > 1 {
			full = full[1 : len(full)-1]
		}
		st.knobs[key] = DecodeKnob(full)
		return nil

	case strings.HasPrefix(value, "{"):
		full := st.readBraced(value)
		if key == "addUserKnob" {
			if st.experimental {
				parseUserKnob(st.knobs, full)
			}
			return nil
		}
		if len(full) > 1 && strings.HasSuffix(full, "}") {
			full = full[1 : len(full)-1]
		}
		st.knobs[key] = DecodeKnob(full)
		return nil

	default:
		st.knobs[key] = DecodeKnob(value)
		return nil
	}
}

// readQuoted accumulates value plus as many subsequent lines as needed
// until the count of unescaped quotes is even, joining lines with "\n" so
// embedded newlines survive into the decoded knob. Running out of input
// first (a truncation, per spec.md §7) returns the partial text
// accumulated so far; DecodeKnob then falls back to raw text.
func (st *parseState) readQuoted(value string) string {
	full := value
	count := strings.Count(value, `"`) - strings.Count(value, `\"`)
	for count%2 != 0 {
		line, ok := st.nextLine()
		if !ok {
			break
		}
		count += strings.Count(line, `"`) - strings.Count(line, `\"`)
		full += "\n" + line
	}
	return full
}

// readBraced is readQuoted's brace counterpart, extending value until its
// "{"/"}" count balances (spec.md §8's multi-line message-knob scenario).
func (st *parseState) readBraced(value string) string {
	full := value
	count := strings.Count(value, "{") - strings.Count(value, "}")
	for count != 0 {
		line, ok := st.nextLine()
		if !ok {
			break
		}
		count += strings.Count(line, "{") - strings.Count(line, "}")
		full += "\n" + line
	}
	return full
}

func gizmoBaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func cloneKnobs(src map[string]KnobValue) map[string]KnobValue {
	out := make(map[string]KnobValue, len(src))
	for k, v := range src {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v KnobValue) KnobValue {
	if v.Kind == KindList {
		list := make([]KnobValue, len(v.List))
		for i, item := range v.List {
			list[i] = cloneValue(item)
		}
		v.List = list
	}
	return v
}

// deepCopyForest deep-copies a forest of nodes (as found under a gizmo
// prototype's children), remapping every internal input/output/parent/
// clone cross-reference to the corresponding copy so the result is fully
// independent of the prototype and of any other instantiation of it.
func deepCopyForest(roots []*Node) []*Node {
	old2new := map[*Node]*Node{}
	var order []*Node
	var collect func(n *Node)
	collect = func(n *Node) {
		if n == nil {
			return
		}
		if _, ok := old2new[n]; ok {
			return
		}
		old2new[n] = &Node{}
		order = append(order, n)
		for _, c := range n.children {
			collect(c)
		}
		for _, in := range n.inputs {
			collect(in)
		}
		for _, out := range n.outputs {
			collect(out)
		}
		collect(n.source)
		for _, c := range n.clones {
			collect(c)
		}
	}
	for _, r := range roots {
		collect(r)
	}

	for _, old := range order {
		nn := old2new[old]
		nn.class = old.class
		nn.knobs = cloneKnobs(old.knobs)
		nn.isGizmo = old.isGizmo
		nn.cloneSuffix = old.cloneSuffix

		nn.inputs = make([]*Node, len(old.inputs))
		for i, in := range old.inputs {
			if in != nil {
				nn.inputs[i] = old2new[in]
			}
		}
		for _, out := range old.outputs {
			if out != nil {
				nn.outputs = append(nn.outputs, old2new[out])
			}
		}
		for _, c := range old.children {
			nc := old2new[c]
			nn.children = append(nn.children, nc)
			nc.parent = nn
		}
		if old.source != nil {
			nn.source = old2new[old.source]
		}
		for _, c := range old.clones {
			if nc, ok := old2new[c]; ok {
				nn.clones = append(nn.clones, nc)
			}
		}
	}

	out := make([]*Node, len(roots))
	for i, r := range roots {
		if r != nil {
			out[i] = old2new[r]
		}
	}
	return out
}
