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
	"strconv"
	"strings"

	log "github.com/golang/glog"
)

// userKnobRe mirrors the original's _USER_KNOB_RE: it pulls the type,
// name, and (when present) the enum-items/value fields out of an
// addUserKnob { ... } block, per spec.md §4.2.
var userKnobRe = regexp.MustCompile(
	`\{\s*(?P<type>\d+)\s+(?P<name>[\w_]+)` +
		`(?:\s+l\s+(?:"([^"]+)"|([\w_:;]+)))?` +
		`(?:\s+t\s+"[^"]*")?` +
		`(?:\s+\+DISABLED)?` +
		`(?:\s+\+INVISIBLE)?` +
		`(?:\s+-STARTLINE)?` +
		`(?:\s+M\s+\{\s*(?P<enum_items>[^}]+)\s*\})?` +
		`(?:\s+-STARTLINE)?` +
		`(?:\s+\+INVISIBLE)?` +
		`(?:\s+T\s+(?P<value>[\w_.]+))?` +
		`\s*\}`,
)

// supportedUserKnobTypes lists the user-knob types that get installed on
// the node's knob map; everything else is silently skipped per spec.md
// §4.2/§4.6.
var supportedUserKnobTypes = map[int]bool{
	1: true, 2: true, 3: true, 4: true, 6: true, 7: true, 8: true, 26: true,
}

// parseUserKnob scans s (the brace-delimited addUserKnob value) and,
// if it matches a supported user-knob definition, installs the decoded
// value into knobs under the knob's name. Malformed or unsupported
// definitions are silently skipped -- never an error.
func parseUserKnob(knobs map[string]KnobValue, s string) {
	m := userKnobRe.FindStringSubmatch(s)
	if m == nil {
		log.V(2).Infof("addUserKnob block %q did not match the user-knob grammar, skipping", s)
		return
	}
	get := func(name string) string {
		idx := userKnobRe.SubexpIndex(name)
		if idx < 0 || idx >= len(m) {
			return ""
		}
		return m[idx]
	}
	knobType, err := strconv.Atoi(get("type"))
	if err != nil {
		return
	}
	name := get("name")
	if name == "" || !supportedUserKnobTypes[knobType] {
		log.V(2).Infof("addUserKnob type %d for %q is unsupported, skipping", knobType, name)
		return
	}
	switch knobType {
	case 1, 2, 26:
		knobs[name] = KnobValue{Kind: KindString, Str: get("value")}
	case 3, 6:
		v, _ := strconv.ParseInt(get("value"), 10, 64)
		knobs[name] = KnobValue{Kind: KindInt, Int: v}
	case 4:
		items := get("enum_items")
		first := strings.Fields(items)
		first0 := ""
		if len(first) > 0 {
			first0 = first[0]
		}
		knobs[name] = KnobValue{Kind: KindString, Str: first0}
	case 7, 8:
		v, _ := strconv.ParseFloat(get("value"), 64)
		knobs[name] = KnobValue{Kind: KindFloat, Float: v}
	}
}
