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
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	log "github.com/golang/glog"
)

// Kind identifies which alternative of a KnobValue is populated.
type Kind int

const (
	// KindRaw marks a value kept verbatim, either because JSON decoding
	// failed (Truncation/Decode recovery, see spec ErrKind) or because the
	// parsed JSON value was a mapping, which the scene language never uses
	// for a knob and so is treated as opaque text instead.
	KindRaw Kind = iota
	KindInt
	KindFloat
	KindString
	KindList
)

// KnobValue is the typed variant a decoded knob token maps to. Exactly one
// of the typed fields is meaningful, selected by Kind. Raw holds a text form
// of the value: the cleaned source text for KindRaw, the number's text for
// KindInt/KindFloat, and the decoded string for KindString. It is empty for
// KindList and for values built without it (e.g. by SetXpos).
type KnobValue struct {
	Kind  Kind
	Raw   string
	Int   int64
	Float float64
	Str   string
	List  []KnobValue
}

func rawValue(s string) KnobValue { return KnobValue{Kind: KindRaw, Raw: s, Str: s} }

// String returns the most specific string rendering of the value: the
// decoded string for KindString, a formatted number for KindInt/KindFloat,
// and the raw text otherwise.
func (v KnobValue) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return v.Raw
	}
}

// AsInt returns the integer value: KindInt as is, KindFloat truncated, and
// any other kind by parsing its raw text (e.g. a KindString holding "5").
// ok is false when that parse fails.
func (v KnobValue) AsInt() (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.Int, true
	case KindFloat:
		return int64(v.Float), true
	default:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Raw), 10, 64)
		return n, err == nil
	}
}

// AsBool reports the knob's truthiness the way the scene script does: a
// present knob is true unless it decodes to the literal false/0/"" values.
func (v KnobValue) AsBool() bool {
	switch v.Kind {
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindString:
		return v.Str != "" && v.Str != "0"
	default:
		s := strings.TrimSpace(v.Raw)
		return s != "" && s != "0" && s != "false"
	}
}

// DecodeKnob decodes a raw knob value token per spec.md §4.2: escaped
// newlines become real newlines, remaining backslash escapes are stripped,
// and the result is attempted as JSON. A decoded object/mapping is never
// meaningful for a scene knob, so it is returned as KindRaw instead -- the
// value was really a brace-delimited block that should stay textual.
func DecodeKnob(value string) KnobValue {
	cleaned := strings.ReplaceAll(value, `\n`, "\n")
	cleaned = stripBackslashes(cleaned)

	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		log.V(2).Infof("knob value %q is not JSON-like (%s), storing raw", cleaned, err)
		return rawValue(cleaned)
	}
	// json.Decoder.Decode stops after the first value and tolerates
	// trailing bytes; the scene decoder wants the whole token to be valid
	// JSON (mirroring Python's json.loads), so reject partial matches.
	if _, err := dec.Token(); err != io.EOF {
		return rawValue(cleaned)
	}
	kv, ok := fromJSON(decoded)
	if !ok {
		return rawValue(cleaned)
	}
	return kv
}

func fromJSON(v any) (KnobValue, bool) {
	switch t := v.(type) {
	case map[string]any:
		// The scene language never uses nested mapping knobs; this almost
		// always means the source was a brace block that must stay textual.
		return KnobValue{}, false
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return KnobValue{Kind: KindInt, Raw: t.String(), Int: i}, true
		}
		f, _ := t.Float64()
		return KnobValue{Kind: KindFloat, Raw: t.String(), Float: f}, true
	case string:
		return KnobValue{Kind: KindString, Raw: t, Str: t}, true
	case []any:
		list := make([]KnobValue, 0, len(t))
		for _, item := range t {
			kv, ok := fromJSON(item)
			if !ok {
				return KnobValue{}, false
			}
			list = append(list, kv)
		}
		return KnobValue{Kind: KindList, List: list}, true
	case bool:
		if t {
			return KnobValue{Kind: KindInt, Raw: "1", Int: 1}, true
		}
		return KnobValue{Kind: KindInt, Raw: "0", Int: 0}, true
	case nil:
		return rawValue(""), true
	default:
		return KnobValue{}, false
	}
}

// stripBackslashes removes single backslashes that are not part of the
// \n-to-newline substitution already performed, matching the original
// decoder's `value.replace("\\", "")` pass.
func stripBackslashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\\' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
