//
// Copyright (c) 2011-2019 Canonical Ltd
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

// Package resolve implements the YAML core schema tag ladder (spec.md
// §4.3 "Tag resolution"): given a plain scalar's literal text and the
// document's version mode, decide whether it denotes null, a bool, an
// int, a float, a timestamp, or falls through to str.
package resolve

import (
	"encoding/base64"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fyyaml/fy/internal/token"
)

type resolveMapItem struct {
	value interface{}
	tag   string
}

var (
	resolveTable = make([]byte, 256)
	resolveMap   = make(map[string]resolveMapItem)
)

var initResolveOnce sync.Once

func initResolve() {
	t := resolveTable
	t[int('+')] = 'S'
	t[int('-')] = 'S'
	for _, c := range "0123456789" {
		t[int(c)] = 'D'
	}
	for _, c := range "yYnNtTfFoO~" {
		t[int(c)] = 'M'
	}
	t[int('.')] = '.'

	resolveMapList := []struct {
		v   interface{}
		tag string
		l   []string
	}{
		{v: true, tag: token.BoolTag, l: []string{"true", "True", "TRUE", "yes", "Yes", "YES", "on", "On", "ON"}},
		{v: false, tag: token.BoolTag, l: []string{"false", "False", "FALSE", "no", "No", "NO", "off", "Off", "OFF"}},
		{tag: token.NullTag, l: []string{"", "~", "null", "Null", "NULL"}},
		{v: math.NaN(), tag: token.FloatTag, l: []string{".nan", ".NaN", ".NAN"}},
		{v: math.Inf(+1), tag: token.FloatTag, l: []string{".inf", ".Inf", ".INF"}},
		{v: math.Inf(+1), tag: token.FloatTag, l: []string{"+.inf", "+.Inf", "+.INF"}},
		{v: math.Inf(-1), tag: token.FloatTag, l: []string{"-.inf", "-.Inf", "-.INF"}},
		{v: "<<", tag: token.MergeTag, l: []string{"<<"}},
	}

	m := resolveMap
	for _, item := range resolveMapList {
		for _, s := range item.l {
			m[s] = resolveMapItem{value: item.v, tag: item.tag}
		}
	}
}

// core12BoolWords restricts the 1.2+ core schema's boolean vocabulary
// to true/false; 1.1's yes/no/on/off forms fall back to !!str in that
// mode, matching the 1.2 spec's narrower bool regex.
var core12BoolWords = map[string]bool{
	"true": true, "True": true, "TRUE": true,
	"false": true, "False": true, "FALSE": true,
}

func resolvableTag(tag string) bool {
	switch tag {
	case "", token.StrTag, token.BoolTag, token.IntTag, token.FloatTag, token.NullTag, token.TimestampTag:
		return true
	}
	return false
}

var yamlStyleFloat = regexp.MustCompile(`^[-+]?(\.\d+|\d+(\.\d*)?)([eE][-+]?\d+)?$`)

// sexagesimalInt matches YAML 1.1's base-60 "1:30:00" integers, which
// the 1.2 core schema dropped; recognised here only when mode is
// token.ModeYAML11.
var sexagesimalInt = regexp.MustCompile(`^[-+]?[0-9][0-9_]*(:[0-5]?[0-9])+$`)

// Error reports a scalar whose explicit tag could not be satisfied by
// its literal form (spec.md §7: resolution errors carry the offending
// tag and literal).
type Error struct {
	Tag     string
	Literal string
}

func (e *Error) Error() string {
	return "fy: cannot decode `" + e.Literal + "` as " + token.ShortTag(e.Tag)
}

// Resolve determines the core-schema tag and decoded Go value for a
// scalar's literal text. tag is any explicit tag already carried by
// the node ("" for untagged/implicit resolution); mode selects between
// the 1.1 and 1.2+ int/float/bool ladders.
//
//nolint:gocyclo
func Resolve(mode token.Mode, tag, in string) (rtag string, out interface{}, errOut error) {
	initResolveOnce.Do(initResolve)
	short := token.LongTag(tag)
	if !resolvableTag(short) {
		return tag, in, nil
	}

	defer func() {
		switch short {
		case "", rtag, token.StrTag, token.BinaryTag:
			return
		case token.FloatTag:
			if rtag == token.IntTag {
				switch v := out.(type) {
				case int64:
					rtag = token.FloatTag
					out = float64(v)
					return
				case int:
					rtag = token.FloatTag
					out = float64(v)
					return
				}
			}
		}
		errOut = &Error{Tag: short, Literal: in}
	}()

	hint := byte('N')
	if in != "" {
		hint = resolveTable[in[0]]
	}
	if hint != 0 && short != token.StrTag && short != token.BinaryTag {
		if item, ok := resolveMap[in]; ok {
			if item.tag == token.BoolTag && mode != token.ModeYAML11 && !core12BoolWords[in] {
				return token.StrTag, in, nil
			}
			return item.tag, item.value, nil
		}

		switch hint {
		case 'M':
			// already checked the literal map above

		case '.':
			floatv, err := strconv.ParseFloat(in, 64)
			if err == nil {
				return token.FloatTag, floatv, nil
			}

		case 'D', 'S':
			if short == "" || short == token.TimestampTag {
				if t, ok := parseTimestamp(in); ok {
					return token.TimestampTag, t, nil
				}
			}
			if mode == token.ModeYAML11 && sexagesimalInt.MatchString(in) {
				if v, ok := parseSexagesimal(in); ok {
					return token.IntTag, v, nil
				}
			}

			plain := strings.ReplaceAll(in, "_", "")
			intv, err := strconv.ParseInt(plain, 0, 64)
			if err == nil {
				if intv == int64(int(intv)) {
					return token.IntTag, int(intv), nil
				}
				return token.IntTag, intv, nil
			}
			uintv, err := strconv.ParseUint(plain, 0, 64)
			if err == nil {
				return token.IntTag, uintv, nil
			}
			if yamlStyleFloat.MatchString(plain) {
				floatv, err := strconv.ParseFloat(plain, 64)
				if err == nil {
					return token.FloatTag, floatv, nil
				}
			}
			if strings.HasPrefix(plain, "0b") {
				if intv, err := strconv.ParseInt(plain[2:], 2, 64); err == nil {
					return token.IntTag, int(intv), nil
				}
			} else if strings.HasPrefix(plain, "-0b") {
				if intv, err := strconv.ParseInt("-"+plain[3:], 2, 64); err == nil {
					return token.IntTag, int(intv), nil
				}
			}
			if strings.HasPrefix(plain, "0o") {
				if intv, err := strconv.ParseInt(plain[2:], 8, 64); err == nil {
					return token.IntTag, int(intv), nil
				}
			} else if strings.HasPrefix(plain, "-0o") {
				if intv, err := strconv.ParseInt("-"+plain[3:], 8, 64); err == nil {
					return token.IntTag, int(intv), nil
				}
			} else if mode == token.ModeYAML11 && len(plain) > 1 && plain[0] == '0' && allOctalDigits(plain[1:]) {
				// YAML 1.1's bare-leading-zero octal form ("0777"),
				// replaced in 1.2 by the explicit "0o" prefix.
				if intv, err := strconv.ParseInt(plain[1:], 8, 64); err == nil {
					return token.IntTag, int(intv), nil
				}
			}
		default:
			panic("fy: missing resolver handler for table entry " + string(rune(hint)) + " (with " + in + ")")
		}
	}
	return token.StrTag, in, nil
}

func allOctalDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '7' {
			return false
		}
	}
	return true
}

func parseSexagesimal(s string) (int64, bool) {
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	parts := strings.Split(strings.ReplaceAll(s, "_", ""), ":")
	var v int64
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, false
		}
		v = v*60 + n
	}
	if neg {
		v = -v
	}
	return v, true
}

// EncodeBase64 encodes s as base64 wrapped at 70 columns, the
// convention most YAML emitters use for !!binary scalars.
func EncodeBase64(s string) string {
	const lineLen = 70
	encLen := base64.StdEncoding.EncodedLen(len(s))
	lines := encLen/lineLen + 1
	buf := make([]byte, encLen*2+lines)
	in := buf[0:encLen]
	out := buf[encLen:]
	base64.StdEncoding.Encode(in, []byte(s))
	k := 0
	for i := 0; i < len(in); i += lineLen {
		j := i + lineLen
		if j > len(in) {
			j = len(in)
		}
		k += copy(out[k:], in[i:j])
		if lines > 1 {
			out[k] = '\n'
			k++
		}
	}
	return string(out[:k])
}

// This is a subset of the formats allowed by the regular expression
// defined at http://yaml.org/type/timestamp.html.
var allowedTimestampFormats = []string{
	"2006-1-2T15:4:5.999999999Z07:00",
	"2006-1-2t15:4:5.999999999Z07:00",
	"2006-1-2 15:4:5.999999999",
	"2006-1-2",
}

// parseTimestamp parses s as a timestamp string and reports whether it
// succeeded. Formats are a practical subset of
// http://yaml.org/type/timestamp.html.
func parseTimestamp(s string) (time.Time, bool) {
	i := 0
	for ; i < len(s); i++ {
		if c := s[i]; c < '0' || c > '9' {
			break
		}
	}
	if i != 4 || i == len(s) || s[i] != '-' {
		return time.Time{}, false
	}
	for _, format := range allowedTimestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
