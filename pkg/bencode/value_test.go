package bencode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"laptudirm.com/x/bbit/pkg/bencode"
)

func TestDictPutKeepsCanonicalOrder(t *testing.T) {
	d := bencode.NewDict()
	d.Put("zebra", bencode.Int(1))
	d.Put("apple", bencode.Int(2))
	d.Put("mango", bencode.Int(3))

	entries, ok := d.Entries()
	assert.True(t, ok)
	var keys []string
	for _, e := range entries {
		keys = append(keys, string(e.Key))
	}
	assert.Equal(t, []string{"apple", "mango", "zebra"}, keys)
}

func TestDictPutReplacesExisting(t *testing.T) {
	d := bencode.NewDict()
	d.Put("a", bencode.Int(1))
	d.Put("a", bencode.Int(2))

	assert.Equal(t, 1, d.Len())
	v, ok := d.Get("a")
	assert.True(t, ok)
	n, _ := v.Int64()
	assert.Equal(t, int64(2), n)
}

func TestDictDelete(t *testing.T) {
	d := bencode.NewDict()
	d.Put("a", bencode.Int(1))
	d.Put("b", bencode.Int(2))

	assert.True(t, d.Delete("a"))
	assert.False(t, d.Delete("a"))
	_, ok := d.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, d.Len())
}

func TestFieldAddressability(t *testing.T) {
	d := bencode.NewDict()
	d.Put("info", bencode.NewDict())

	info := d.Field("info")
	info.Put("name", bencode.Str([]byte("x")))

	got, ok := d.Get("info")
	assert.True(t, ok)
	name, ok := got.Get("name")
	assert.True(t, ok)
	text, _ := name.Text()
	assert.Equal(t, "x", text)
}

func TestIndexAddressability(t *testing.T) {
	l := bencode.NewList(bencode.Int(1), bencode.Int(2))
	elem := l.Index(1)
	*elem = bencode.Int(99)

	items, _ := l.Items()
	n, _ := items[1].Int64()
	assert.Equal(t, int64(99), n)
}

func TestEqual(t *testing.T) {
	a := bencode.NewDict()
	a.Put("x", bencode.Int(1))
	b := bencode.NewDict()
	b.Put("x", bencode.Int(1))

	assert.True(t, a.Equal(b))

	b.Put("x", bencode.Int(2))
	assert.False(t, a.Equal(b))
}
