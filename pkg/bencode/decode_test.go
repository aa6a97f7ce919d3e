package bencode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"laptudirm.com/x/bbit/pkg/bencode"
)

func TestDecodeBasic(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bencode.Value
	}{
		{"zero int", "i0e", bencode.Int(0)},
		{"positive int", "i123e", bencode.Int(123)},
		{"negative int", "i-123e", bencode.Int(-123)},
		{"empty string", "0:", bencode.Str(nil)},
		{"string", "3:cat", bencode.Str([]byte("cat"))},
		{"empty list", "le", bencode.NewList()},
		{"list", "li1e3:cate", bencode.NewList(bencode.Int(1), bencode.Str([]byte("cat")))},
		{"nested list", "lli1e3:catee", bencode.NewList(bencode.NewList(bencode.Int(1), bencode.Str([]byte("cat"))))},
		{"empty dict", "de", bencode.NewDict()},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := bencode.Decode([]byte(test.in))
			require.NoError(t, err)
			assert.True(t, test.want.Equal(got), "Decode(%q) = %#v, want %#v", test.in, got, test.want)
		})
	}
}

func TestDecodeDict(t *testing.T) {
	got, err := bencode.Decode([]byte("d3:cow3:moo4:spam4:eggse"))
	require.NoError(t, err)

	require.True(t, got.IsDict())
	cow, ok := got.Get("cow")
	require.True(t, ok)
	text, _ := cow.Text()
	assert.Equal(t, "moo", text)

	spam, ok := got.Get("spam")
	require.True(t, ok)
	text, _ = spam.Text()
	assert.Equal(t, "eggs", text)
}

func TestDecodeRejects(t *testing.T) {
	tests := []string{
		"",
		"d",
		"l",
		"i",
		"i01e",        // leading zero
		"i-0e",        // negative zero
		"i+1e",        // explicit plus sign
		"01:a",        // leading zero length
		"d4:spam4:eggs3:cow3:mooe", // descending keys
		"d3:cow3:moo3:cow3:mooe",   // duplicate keys
		"i1ei2e",      // trailing bytes
		"3:ab",        // length overrun
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := bencode.Decode([]byte(in))
			assert.Error(t, err, "Decode(%q) should fail", in)
		})
	}
}

func TestDecodeEncodeIdentity(t *testing.T) {
	in := []byte("d3:cow3:moo4:spam4:eggse")
	v, err := bencode.Decode(in)
	require.NoError(t, err)
	assert.Equal(t, in, bencode.Encode(v))
}
