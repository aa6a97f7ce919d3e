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

package emit

import (
	"fmt"
	"strings"

	"laptudirm.com/x/bbit/pkg/bencode"
)

const prettyStringTruncateAt = 50

// Pretty renders v as an indented human-readable dump: dict headers
// with "key": value lines, list headers with numeric indices, byte
// strings in a printable-escape form truncated past 50 bytes at the
// top level, and integers in decimal.
func Pretty(v bencode.Value) string {
	var sb strings.Builder
	writePretty(&sb, v, 0, true)
	return sb.String()
}

func writePretty(sb *strings.Builder, v bencode.Value, depth int, topLevel bool) {
	indent := strings.Repeat("  ", depth)
	switch v.Kind() {
	case bencode.String:
		b, _ := v.Bytes()
		sb.WriteString(prettyString(b, topLevel))
	case bencode.Integer:
		n, _ := v.BigInt()
		sb.WriteString(n.String())
	case bencode.List:
		items, _ := v.Items()
		sb.WriteString("list\n")
		for i, item := range items {
			fmt.Fprintf(sb, "%s  %d: ", indent, i)
			writePretty(sb, item, depth+1, false)
			sb.WriteByte('\n')
		}
	case bencode.Dict:
		entries, _ := v.Entries()
		sb.WriteString("dict\n")
		for _, e := range entries {
			fmt.Fprintf(sb, "%s  %q: ", indent, string(e.Key))
			writePretty(sb, e.Value, depth+1, false)
			sb.WriteByte('\n')
		}
	}
}

// prettyString renders b as a double-quoted, escaped string,
// truncating with "..." past 50 bytes when topLevel is set.
func prettyString(b []byte, topLevel bool) string {
	truncated := false
	if topLevel && len(b) > prettyStringTruncateAt {
		b = b[:prettyStringTruncateAt]
		truncated = true
	}

	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range b {
		switch {
		case c == '"' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c >= 0x20 && c < 0x7f:
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, "\\x%02x", c)
		}
	}
	if truncated {
		sb.WriteString("...")
	}
	sb.WriteByte('"')
	return sb.String()
}
