// Copyright © 2021 Rak Laptudirm <raklaptudirm@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package emit renders a bencode Value in the alternative output
// formats the tree editor and verifier CLIs expose: JSON, an indented
// pretty-print, and a raw "atom" form for scalar leaves.
package emit

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"laptudirm.com/x/bbit/pkg/bencode"
)

// EncodingError reports a Value that cannot be represented in the
// requested output format, e.g. a non-UTF-8 byte string for JSON.
type EncodingError struct {
	Reason string
}

func (e *EncodingError) Error() string { return "emit: " + e.Reason }

// JSON renders v as JSON text: dict keys sorted ascending (already
// guaranteed by Value's canonical storage order) and emitted as JSON
// strings, lists as arrays, integers as JSON numbers, byte strings
// decoded as UTF-8. A byte string that isn't valid UTF-8 fails hard.
func JSON(v bencode.Value) (string, error) {
	var sb strings.Builder
	if err := writeJSON(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeJSON(sb *strings.Builder, v bencode.Value) error {
	switch v.Kind() {
	case bencode.String:
		b, _ := v.Bytes()
		if !utf8.Valid(b) {
			return &EncodingError{Reason: "byte string is not valid UTF-8"}
		}
		writeJSONString(sb, string(b))
		return nil
	case bencode.Integer:
		n, _ := v.BigInt()
		sb.WriteString(n.String())
		return nil
	case bencode.List:
		items, _ := v.Items()
		sb.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := writeJSON(sb, item); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
		return nil
	case bencode.Dict:
		entries, _ := v.Entries()
		sb.WriteByte('{')
		for i, e := range entries {
			if i > 0 {
				sb.WriteByte(',')
			}
			if !utf8.Valid(e.Key) {
				return &EncodingError{Reason: fmt.Sprintf("dict key %q is not valid UTF-8", e.Key)}
			}
			writeJSONString(sb, string(e.Key))
			sb.WriteByte(':')
			if err := writeJSON(sb, e.Value); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
		return nil
	default:
		return &EncodingError{Reason: "unrecognized value kind"}
	}
}

func writeJSONString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			switch {
			case r < 0x20:
				fmt.Fprintf(sb, `\u%04x`, r)
			case r < 0x80:
				sb.WriteRune(r)
			default:
				writeJSONUnicodeEscape(sb, r)
			}
		}
	}
	sb.WriteByte('"')
}

// writeJSONUnicodeEscape emits r as one or two \uXXXX escapes,
// surrogate-pairing code points outside the basic multilingual plane.
func writeJSONUnicodeEscape(sb *strings.Builder, r rune) {
	if r <= 0xFFFF {
		fmt.Fprintf(sb, `\u%04x`, r)
		return
	}
	r -= 0x10000
	hi := 0xD800 + (r >> 10)
	lo := 0xDC00 + (r & 0x3FF)
	fmt.Fprintf(sb, `\u%04x\u%04x`, hi, lo)
}
