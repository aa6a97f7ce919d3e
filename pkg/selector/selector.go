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

// Package selector addresses and mutates locations inside a bencode
// tree using small path expressions, e.g. "info files 0 length".
package selector

import (
	"fmt"
	"strconv"
	"strings"

	"laptudirm.com/x/bbit/pkg/bencode"
)

// Selector is an ordered sequence of path steps.
type Selector []string

// Parse splits expr on runs of whitespace into steps. An expr that is
// empty or all whitespace parses to the null selector, which selects
// the root.
func Parse(expr string) Selector {
	return Selector(strings.Fields(expr))
}

// IsNull reports whether s is the null (empty) selector.
func (s Selector) IsNull() bool { return len(s) == 0 }

// MissError is a hard failure resolving step Step (1-indexed) of a
// selector.
type MissError struct {
	Step int
	Key  string
}

func (e *MissError) Error() string {
	return fmt.Sprintf("selector: step %d (%q) did not resolve", e.Step, e.Key)
}

// ScalarError is a hard failure from attempting to descend into or
// mutate a string or integer value as though it were a container.
type ScalarError struct {
	Step int
}

func (e *ScalarError) Error() string {
	return fmt.Sprintf("selector: step %d addresses a scalar value", e.Step)
}

// resolveStep looks up step against v, returning the child and ok. It
// never mutates v.
func resolveStep(v bencode.Value, step string) (bencode.Value, bool) {
	switch v.Kind() {
	case bencode.Dict:
		return v.Get(step)
	case bencode.List:
		items, _ := v.Items()
		idx, ok := listIndex(step, len(items))
		if !ok {
			return bencode.Value{}, false
		}
		return items[idx], true
	default:
		return bencode.Value{}, false
	}
}

// addressStep returns an addressable pointer to step's child within v,
// or nil on a miss. v must be addressable itself (a pointer obtained
// from the caller's own storage).
func addressStep(v *bencode.Value, step string) *bencode.Value {
	switch v.Kind() {
	case bencode.Dict:
		return v.Field(step)
	case bencode.List:
		idx, ok := listIndex(step, v.Len())
		if !ok {
			return nil
		}
		return v.Index(idx)
	default:
		return nil
	}
}

// listIndex resolves step ("first", "last", or a decimal index)
// against a list of the given length.
func listIndex(step string, length int) (int, bool) {
	switch step {
	case "first":
		if length == 0 {
			return 0, false
		}
		return 0, true
	case "last":
		if length == 0 {
			return 0, false
		}
		return length - 1, true
	default:
		n, err := strconv.Atoi(step)
		if err != nil || n < 0 || n >= length {
			return 0, false
		}
		return n, true
	}
}

// Select folds every step of s against root, returning the resolved
// value. A miss at step k is a hard failure reporting step k+1 (1-indexed).
func Select(root bencode.Value, s Selector) (bencode.Value, error) {
	cur := root
	for i, step := range s {
		next, ok := resolveStep(cur, step)
		if !ok {
			return bencode.Value{}, &MissError{Step: i + 1, Key: step}
		}
		cur = next
	}
	return cur, nil
}

// Set attaches value at the location addressed by s within root, which
// must be a non-null selector. root is mutated in place.
func Set(root *bencode.Value, s Selector, value bencode.Value) error {
	if s.IsNull() {
		return fmt.Errorf("selector: set requires a non-empty selector")
	}

	cur := root
	for i := 0; i < len(s)-1; i++ {
		next := addressStep(cur, s[i])
		if next == nil {
			if cur.Kind() != bencode.Dict && cur.Kind() != bencode.List {
				return &ScalarError{Step: i + 1}
			}
			return &MissError{Step: i + 1, Key: s[i]}
		}
		cur = next
	}

	last := s[len(s)-1]
	switch cur.Kind() {
	case bencode.Dict:
		cur.Put(last, value)
		return nil
	case bencode.List:
		return setListStep(cur, last, len(s), value)
	default:
		return &ScalarError{Step: len(s)}
	}
}

func setListStep(cur *bencode.Value, step string, stepNum int, value bencode.Value) error {
	switch step {
	case "first":
		if cur.Len() == 0 {
			cur.ListAppend(value)
			return nil
		}
		cur.ListSet(0, value)
		return nil
	case "last":
		if cur.Len() == 0 {
			cur.ListAppend(value)
			return nil
		}
		cur.ListSet(cur.Len()-1, value)
		return nil
	default:
		n, err := strconv.Atoi(step)
		if err != nil || n < 0 || n >= cur.Len() {
			return &MissError{Step: stepNum, Key: step}
		}
		cur.ListSet(n, value)
		return nil
	}
}

// Delete removes the location addressed by s within root, which must
// be a non-null selector. A miss at the final step is a hard failure.
func Delete(root *bencode.Value, s Selector) error {
	if s.IsNull() {
		return fmt.Errorf("selector: delete requires a non-empty selector")
	}

	cur := root
	for i := 0; i < len(s)-1; i++ {
		next := addressStep(cur, s[i])
		if next == nil {
			return &MissError{Step: i + 1, Key: s[i]}
		}
		cur = next
	}

	last := s[len(s)-1]
	switch cur.Kind() {
	case bencode.Dict:
		if !cur.Delete(last) {
			return &MissError{Step: len(s), Key: last}
		}
		return nil
	case bencode.List:
		idx, ok := listIndex(last, cur.Len())
		if !ok {
			return &MissError{Step: len(s), Key: last}
		}
		cur.ListDeleteAt(idx)
		return nil
	default:
		return &MissError{Step: len(s), Key: last}
	}
}
