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

package bencode

import (
	"strconv"
)

// Encode produces the unique canonical bencode encoding of v.
// Encode(Decode(b)) == b for every canonical b, and Decode(Encode(v))
// == v for every Value v.
func Encode(v Value) []byte {
	var buf []byte
	return appendValue(buf, v)
}

// Encode is Value's method form of the package-level Encode.
func (v Value) Encode() []byte {
	return Encode(v)
}

func appendValue(buf []byte, v Value) []byte {
	switch v.kind {
	case String:
		return appendString(buf, v.str)
	case Integer:
		buf = append(buf, 'i')
		buf = append(buf, v.integer.String()...)
		return append(buf, 'e')
	case List:
		buf = append(buf, 'l')
		for _, item := range v.list {
			buf = appendValue(buf, item)
		}
		return append(buf, 'e')
	case Dict:
		buf = append(buf, 'd')
		for _, e := range v.dict {
			buf = appendString(buf, e.Key)
			buf = appendValue(buf, e.Value)
		}
		return append(buf, 'e')
	default:
		panic("bencode: encoding a zero Value")
	}
}

func appendString(buf []byte, s []byte) []byte {
	buf = strconv.AppendInt(buf, int64(len(s)), 10)
	buf = append(buf, ':')
	return append(buf, s...)
}
