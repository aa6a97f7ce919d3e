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

// Package bencode implements the bencoding wire format as a tagged
// variant tree (Value) with a canonical decoder and encoder, rather
// than the reflect-based struct (un)marshaling of a typical Go codec.
// A Value always re-encodes to exactly the bytes it was decoded from,
// which a struct destination cannot guarantee once fields it doesn't
// know about are dropped.
package bencode

import (
	"bytes"
	"math/big"
	"sort"
)

// Kind discriminates the four bencode value shapes.
type Kind int

const (
	String Kind = iota
	Integer
	List
	Dict
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Integer:
		return "integer"
	case List:
		return "list"
	case Dict:
		return "dict"
	default:
		return "invalid"
	}
}

// DictEntry is one key/value pair of a Dict value. Entries of a Dict
// are always stored sorted ascending by Key, raw byte order, which is
// both bencode's canonical order and what makes Encode deterministic.
type DictEntry struct {
	Key   []byte
	Value Value
}

// Value is a bencode value: exactly one of a byte string, an
// arbitrary-precision integer, an ordered list of values, or an
// ordered (by key) dictionary of byte-string keys to values.
//
// The zero Value is not meaningful; use one of the constructors.
type Value struct {
	kind Kind

	str     []byte
	integer *big.Int
	list    []Value
	dict    []DictEntry
}

// Str builds a String value from raw bytes. The bytes are not assumed
// to be UTF-8 text; bencode byte strings are binary-safe.
func Str(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: String, str: cp}
}

// StrText is a convenience for building a String value from a Go
// string.
func StrText(s string) Value {
	return Str([]byte(s))
}

// Int builds an Integer value from an int64.
func Int(n int64) Value {
	return Value{kind: Integer, integer: big.NewInt(n)}
}

// BigInt builds an Integer value from an arbitrary-precision integer.
func BigInt(n *big.Int) Value {
	return Value{kind: Integer, integer: new(big.Int).Set(n)}
}

// NewList builds a List value from items, copied into the Value.
func NewList(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: List, list: cp}
}

// NewDict builds an empty Dict value. Populate it with Put.
func NewDict() Value {
	return Value{kind: Dict}
}

// Kind reports which of the four bencode shapes v holds.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsString() bool  { return v.kind == String }
func (v Value) IsInteger() bool { return v.kind == Integer }
func (v Value) IsList() bool    { return v.kind == List }
func (v Value) IsDict() bool    { return v.kind == Dict }

// Bytes returns the raw payload of a String value.
func (v Value) Bytes() ([]byte, bool) {
	if v.kind != String {
		return nil, false
	}
	return v.str, true
}

// Text is Bytes with the result interpreted as a Go string, making no
// claim about its encoding.
func (v Value) Text() (string, bool) {
	b, ok := v.Bytes()
	if !ok {
		return "", false
	}
	return string(b), true
}

// Int64 returns the payload of an Integer value narrowed to int64. It
// fails (returns ok=false) if the value does not fit.
func (v Value) Int64() (int64, bool) {
	n, ok := v.BigInt()
	if !ok || !n.IsInt64() {
		return 0, false
	}
	return n.Int64(), true
}

// BigInt returns the arbitrary-precision payload of an Integer value.
func (v Value) BigInt() (*big.Int, bool) {
	if v.kind != Integer {
		return nil, false
	}
	return v.integer, true
}

// Items returns the elements of a List value. The returned slice
// aliases the Value's storage; callers must not mutate it directly —
// use ListAppend/ListSet/ListDeleteAt.
func (v Value) Items() ([]Value, bool) {
	if v.kind != List {
		return nil, false
	}
	return v.list, true
}

// Len returns the number of list elements or dict entries. It is 0 for
// String and Integer values.
func (v Value) Len() int {
	switch v.kind {
	case List:
		return len(v.list)
	case Dict:
		return len(v.dict)
	default:
		return 0
	}
}

// Entries returns the key-sorted entries of a Dict value. The returned
// slice aliases the Value's storage; use Put/Delete to mutate.
func (v Value) Entries() ([]DictEntry, bool) {
	if v.kind != Dict {
		return nil, false
	}
	return v.dict, true
}

// Get looks up key in a Dict value.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Dict {
		return Value{}, false
	}
	i := v.dictIndex([]byte(key))
	if i < 0 {
		return Value{}, false
	}
	return v.dict[i].Value, true
}

// dictIndex returns the index of key in v.dict, or -1.
func (v Value) dictIndex(key []byte) int {
	i := sort.Search(len(v.dict), func(i int) bool {
		return bytes.Compare(v.dict[i].Key, key) >= 0
	})
	if i < len(v.dict) && bytes.Equal(v.dict[i].Key, key) {
		return i
	}
	return -1
}

// Put inserts or replaces the value at key in a Dict, keeping entries
// in canonical ascending order. It panics if v is not a Dict; callers
// that might hold a non-dict should check IsDict first.
func (v *Value) Put(key string, val Value) {
	if v.kind != Dict {
		panic("bencode: Put on non-dict value")
	}
	k := []byte(key)
	i := sort.Search(len(v.dict), func(i int) bool {
		return bytes.Compare(v.dict[i].Key, k) >= 0
	})
	if i < len(v.dict) && bytes.Equal(v.dict[i].Key, k) {
		v.dict[i].Value = val
		return
	}
	v.dict = append(v.dict, DictEntry{})
	copy(v.dict[i+1:], v.dict[i:])
	v.dict[i] = DictEntry{Key: k, Value: val}
}

// Delete removes key from a Dict, reporting whether it was present.
func (v *Value) Delete(key string) bool {
	if v.kind != Dict {
		return false
	}
	i := v.dictIndex([]byte(key))
	if i < 0 {
		return false
	}
	v.dict = append(v.dict[:i], v.dict[i+1:]...)
	return true
}

// ListAppend appends item to a List value.
func (v *Value) ListAppend(item Value) {
	if v.kind != List {
		panic("bencode: ListAppend on non-list value")
	}
	v.list = append(v.list, item)
}

// ListSet replaces the element at index i of a List value. i must be
// in [0, Len()).
func (v *Value) ListSet(i int, item Value) bool {
	if v.kind != List || i < 0 || i >= len(v.list) {
		return false
	}
	v.list[i] = item
	return true
}

// ListDeleteAt removes the element at index i of a List value.
func (v *Value) ListDeleteAt(i int) bool {
	if v.kind != List || i < 0 || i >= len(v.list) {
		return false
	}
	v.list = append(v.list[:i], v.list[i+1:]...)
	return true
}

// Index returns an addressable pointer to the i'th list element, or
// nil if v is not a list or i is out of range. Used by the selector
// engine to descend into a list element without copying the tree.
func (v *Value) Index(i int) *Value {
	if v.kind != List || i < 0 || i >= len(v.list) {
		return nil
	}
	return &v.list[i]
}

// Field returns an addressable pointer to the value bound to key in a
// dict, or nil. Used by the selector engine to descend without
// copying the tree.
func (v *Value) Field(key string) *Value {
	if v.kind != Dict {
		return nil
	}
	i := v.dictIndex([]byte(key))
	if i < 0 {
		return nil
	}
	return &v.dict[i].Value
}

// Equal reports whether v and o are structurally identical.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case String:
		return bytes.Equal(v.str, o.str)
	case Integer:
		return v.integer.Cmp(o.integer) == 0
	case List:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case Dict:
		if len(v.dict) != len(o.dict) {
			return false
		}
		for i := range v.dict {
			if !bytes.Equal(v.dict[i].Key, o.dict[i].Key) || !v.dict[i].Value.Equal(o.dict[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
