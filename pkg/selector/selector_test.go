package selector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"laptudirm.com/x/bbit/pkg/bencode"
	"laptudirm.com/x/bbit/pkg/selector"
)

func sampleTree() bencode.Value {
	info := bencode.NewDict()
	info.Put("name", bencode.Str([]byte("x.bin")))
	info.Put("length", bencode.Int(4))

	f1 := bencode.NewDict()
	f1.Put("path", bencode.NewList(bencode.Str([]byte("a"))))
	files := bencode.NewList(f1)
	info.Put("files", files)

	root := bencode.NewDict()
	root.Put("info", info)
	return root
}

func TestSelectNullSelectsRoot(t *testing.T) {
	root := sampleTree()
	v, err := selector.Select(root, selector.Parse("  "))
	require.NoError(t, err)
	assert.True(t, v.Equal(root))
}

func TestSelectDictPath(t *testing.T) {
	root := sampleTree()
	v, err := selector.Select(root, selector.Parse("info name"))
	require.NoError(t, err)
	text, ok := v.Text()
	require.True(t, ok)
	assert.Equal(t, "x.bin", text)
}

func TestSelectListFirstLastIndex(t *testing.T) {
	root := sampleTree()

	v, err := selector.Select(root, selector.Parse("info files first path first"))
	require.NoError(t, err)
	text, _ := v.Text()
	assert.Equal(t, "a", text)

	v, err = selector.Select(root, selector.Parse("info files last path 0"))
	require.NoError(t, err)
	text, _ = v.Text()
	assert.Equal(t, "a", text)
}

func TestSelectMissReportsStepNumber(t *testing.T) {
	root := sampleTree()
	_, err := selector.Select(root, selector.Parse("info bogus name"))
	require.Error(t, err)
	var miss *selector.MissError
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, 2, miss.Step)
}

func TestSelectNegativeListIndexIsMiss(t *testing.T) {
	root := sampleTree()
	_, err := selector.Select(root, selector.Parse("info files -1"))
	assert.Error(t, err)
}

func TestSelectScalarStepIsMiss(t *testing.T) {
	root := sampleTree()
	_, err := selector.Select(root, selector.Parse("info length whatever"))
	assert.Error(t, err)
}

func TestSetDictCreatesOrReplaces(t *testing.T) {
	root := sampleTree()
	err := selector.Set(&root, selector.Parse("info comment"), bencode.Str([]byte("hi")))
	require.NoError(t, err)

	v, err := selector.Select(root, selector.Parse("info comment"))
	require.NoError(t, err)
	text, _ := v.Text()
	assert.Equal(t, "hi", text)
}

func TestSetListFirstOnEmptyListExtends(t *testing.T) {
	root := bencode.NewDict()
	root.Put("list", bencode.NewList())

	err := selector.Set(&root, selector.Parse("list first"), bencode.Int(1))
	require.NoError(t, err)

	v, _ := selector.Select(root, selector.Parse("list first"))
	n, _ := v.Int64()
	assert.Equal(t, int64(1), n)
}

func TestSetOutOfBoundsDecimalIndexFails(t *testing.T) {
	root := bencode.NewDict()
	root.Put("list", bencode.NewList(bencode.Int(1)))

	err := selector.Set(&root, selector.Parse("list 5"), bencode.Int(2))
	assert.Error(t, err)
}

func TestSetOnScalarFails(t *testing.T) {
	root := sampleTree()
	err := selector.Set(&root, selector.Parse("info length extra"), bencode.Int(1))
	require.Error(t, err)
	var se *selector.ScalarError
	assert.ErrorAs(t, err, &se)
}

func TestSetNullSelectorForbidden(t *testing.T) {
	root := sampleTree()
	err := selector.Set(&root, selector.Parse(""), bencode.Int(1))
	assert.Error(t, err)
}

func TestDeleteRemovesKey(t *testing.T) {
	root := sampleTree()
	err := selector.Delete(&root, selector.Parse("info name"))
	require.NoError(t, err)

	_, err = selector.Select(root, selector.Parse("info name"))
	assert.Error(t, err)
}

func TestDeleteMissIsHardFailure(t *testing.T) {
	root := sampleTree()
	err := selector.Delete(&root, selector.Parse("info bogus"))
	assert.Error(t, err)
}

func TestDeleteNullSelectorForbidden(t *testing.T) {
	root := sampleTree()
	err := selector.Delete(&root, selector.Parse(""))
	assert.Error(t, err)
}
