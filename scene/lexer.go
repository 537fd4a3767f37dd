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
	"regexp"
	"strings"

	"github.com/mwiklund/nkscene/internal/charclass"
)

// Lexical recognizer patterns, per spec.md §4.1/§6. Only one may apply per
// line; classify tries them in its own fixed order, not the order listed
// here.
var (
	nodeOpenRe     = regexp.MustCompile(`^(?P<type>[\w.]+) \{$`)
	nodeCloseRe    = regexp.MustCompile(`^\}$`)
	branchStackRe  = regexp.MustCompile(`set (?P<key>\w+) \[stack \d+\]`)
	pushRe         = regexp.MustCompile(`push \$(?P<key>\w+)`)
	cloneRe        = regexp.MustCompile(`clone \$(?P<key>\w+) \{`)
	nodeKnobRe = regexp.MustCompile(`^\s*(?P<key>[\w_.]+)[ \t]+(?P<value>("|\{|-|/|\w).*)`)
)

// identifierAlphabet validates the node-type/knob-key alphabet used by the
// scene-script flavour of the grammar (spec.md §6: "[A-Za-z0-9_.]+ (the
// scene script flavour; the companion parser variant accepts
// [A-Za-z0-9_]+ only)"). Built once via internal/charclass rather than
// duplicating the rune ranges the regexps above already encode loosely.
var identifierAlphabet = charclass.MustParse(`A-Za-z0-9_.`)

// looksLikeIdentifier is a defence-in-depth check applied to identifiers
// already captured by a regexp above: it rejects anything the scene-script
// alphabet would not accept, using the charclass package the teacher built
// for exactly this kind of membership test.
func looksLikeIdentifier(s string) bool {
	return len(s) > 0 && identifierAlphabet.ContainsAll(s)
}

// lineKind enumerates which recognizer matched a line.
type lineKind int

const (
	lineIgnored lineKind = iota
	lineStackNullPush
	lineBranchSave
	lineStackRestore
	lineEndGroup
	lineCloneOpen
	lineNodeOpen
	lineNodeClose
	lineKnobAssign
)

// lexedLine is the classification of a single input line.
type lexedLine struct {
	kind  lineKind
	key   string // branch key for save/restore/clone
	typ   string // node type for node-open
	knob  string // knob key for assignment
	value string // raw (possibly partial) knob value token for assignment
}

// classify applies the fixed ordered recognizer set to one line. Only the
// first matching recognizer applies; a line the stack machine is actively
// mid-node-block on (class != "") never reaches the clone/node-open
// recognizers, per spec.md §4.1's "Clone open ... starts a new node block"
// and "Node open ... starts a new node block" -- both guard on no block
// currently open, mirrored by the caller checking its own class state.
func classify(line string, inBlock bool) lexedLine {
	if strings.Contains(line, "push 0") {
		return lexedLine{kind: lineStackNullPush}
	}
	if m := branchStackRe.FindStringSubmatch(line); m != nil {
		return lexedLine{kind: lineBranchSave, key: m[branchStackRe.SubexpIndex("key")]}
	}
	if m := pushRe.FindStringSubmatch(line); m != nil {
		return lexedLine{kind: lineStackRestore, key: m[pushRe.SubexpIndex("key")]}
	}
	if strings.Contains(line, "end_group") {
		return lexedLine{kind: lineEndGroup}
	}
	if !inBlock {
		if m := cloneRe.FindStringSubmatch(line); m != nil {
			return lexedLine{kind: lineCloneOpen, key: m[cloneRe.SubexpIndex("key")]}
		}
		if m := nodeOpenRe.FindStringSubmatch(line); m != nil {
			typ := m[nodeOpenRe.SubexpIndex("type")]
			if looksLikeIdentifier(typ) {
				return lexedLine{kind: lineNodeOpen, typ: typ}
			}
		}
	}
	if inBlock && nodeCloseRe.MatchString(strings.TrimRight(line, " \t")) {
		return lexedLine{kind: lineNodeClose}
	}
	if inBlock {
		if m := nodeKnobRe.FindStringSubmatch(line); m != nil {
			key := m[nodeKnobRe.SubexpIndex("key")]
			if looksLikeIdentifier(key) {
				return lexedLine{
					kind:  lineKnobAssign,
					knob:  key,
					value: m[nodeKnobRe.SubexpIndex("value")],
				}
			}
		}
	}
	return lexedLine{kind: lineIgnored}
}
