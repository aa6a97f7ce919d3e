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
	"time"

	"laptudirm.com/x/bbit/pkg/bencode"
)

const isoLayout = "2006-01-02T15:04:05"

// Atom renders a scalar leaf value with no surrounding structure: a
// byte string as its raw bytes (no trailing newline), an integer as
// decimal, or, when timestamp is set, an integer reinterpreted as
// Unix seconds and formatted as ISO-8601 UTC. Any other value kind
// fails.
func Atom(v bencode.Value, timestamp bool) ([]byte, error) {
	switch v.Kind() {
	case bencode.String:
		b, _ := v.Bytes()
		return b, nil
	case bencode.Integer:
		n, ok := v.Int64()
		if timestamp {
			if !ok {
				return nil, &EncodingError{Reason: "integer does not fit a Unix timestamp"}
			}
			return []byte(time.Unix(n, 0).UTC().Format(isoLayout)), nil
		}
		big, _ := v.BigInt()
		return []byte(big.String()), nil
	default:
		return nil, &EncodingError{Reason: "atom output requires a byte string or integer"}
	}
}
