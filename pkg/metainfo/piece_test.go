package metainfo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"laptudirm.com/x/bbit/pkg/bencode"
	"laptudirm.com/x/bbit/pkg/metainfo"
)

// buildTorrent assembles a multi-file torrent directly from file
// lengths, with piece hashes that don't need to be correct since
// these tests only exercise fragmentation, not verification.
func buildTorrent(t *testing.T, pieceLength int64, lengths []int64) *metainfo.Torrent {
	t.Helper()

	var total int64
	files := make([]bencode.Value, len(lengths))
	for i, l := range lengths {
		f := bencode.NewDict()
		f.Put("path", bencode.NewList(bencode.Str([]byte(string(rune('a'+i))))))
		f.Put("length", bencode.Int(l))
		files[i] = f
		total += l
	}

	pieceCount := (total + pieceLength - 1) / pieceLength
	if total == 0 {
		pieceCount = 0
	}

	info := bencode.NewDict()
	info.Put("piece length", bencode.Int(pieceLength))
	info.Put("pieces", bencode.Str(make([]byte, pieceCount*20)))
	info.Put("name", bencode.Str([]byte("root")))
	info.Put("files", bencode.NewList(files...))

	root := bencode.NewDict()
	root.Put("info", info)

	tr, err := metainfo.FromValue(root)
	require.NoError(t, err)
	return tr
}

func collectPieces(tr *metainfo.Torrent) []metainfo.Piece {
	var out []metainfo.Piece
	it := tr.Pieces()
	for {
		p, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, p)
	}
	return out
}

func TestPieceFragmentation(t *testing.T) {
	// piece length 4, files of size 3 and 5: length=8, piece_count=2.
	// piece 0: [(a, 0..3, 3), (b, 0..1, 5)]; piece 1: [(b, 1..5, 5)].
	tr := buildTorrent(t, 4, []int64{3, 5})
	pieces := collectPieces(tr)
	require.Len(t, pieces, 2)

	require.Len(t, pieces[0].Fragments, 2)
	assert.Equal(t, metainfo.Fragment{Path: "a", Begin: 0, End: 3, FileSize: 3}, pieces[0].Fragments[0])
	assert.Equal(t, metainfo.Fragment{Path: "b", Begin: 0, End: 1, FileSize: 5}, pieces[0].Fragments[1])

	require.Len(t, pieces[1].Fragments, 1)
	assert.Equal(t, metainfo.Fragment{Path: "b", Begin: 1, End: 5, FileSize: 5}, pieces[1].Fragments[0])
}

func TestPieceIteratorTotality(t *testing.T) {
	tr := buildTorrent(t, 7, []int64{1, 0, 20, 3})
	pieces := collectPieces(tr)

	var total int64
	for _, p := range pieces {
		for _, f := range p.Fragments {
			total += f.Len()
		}
	}
	assert.Equal(t, tr.Length(), total)
}

func TestLastPieceSize(t *testing.T) {
	tr := buildTorrent(t, 4, []int64{3, 5}) // length 8, piece_count 2
	pieces := collectPieces(tr)
	last := pieces[len(pieces)-1]

	var lastSize int64
	for _, f := range last.Fragments {
		lastSize += f.Len()
	}
	want := tr.Length() - int64(tr.PieceCount()-1)*tr.PieceLength()
	assert.Equal(t, want, lastSize)
}

func TestPieceBoundaryOnFileBoundary(t *testing.T) {
	// piece length 4, files exactly 4 and 4: each piece is one whole file.
	tr := buildTorrent(t, 4, []int64{4, 4})
	pieces := collectPieces(tr)
	require.Len(t, pieces, 2)
	require.Len(t, pieces[0].Fragments, 1)
	require.Len(t, pieces[1].Fragments, 1)
	assert.True(t, pieces[0].Fragments[0].Complete())
	assert.True(t, pieces[1].Fragments[0].Complete())
}

func TestFileSpanningSeveralPieces(t *testing.T) {
	// one file of 20 bytes with piece length 4: 5 pieces, all within the
	// same file.
	tr := buildTorrent(t, 4, []int64{20})
	pieces := collectPieces(tr)
	require.Len(t, pieces, 5)
	for _, p := range pieces {
		require.Len(t, p.Fragments, 1)
		assert.Equal(t, "a", p.Fragments[0].Path)
	}
}

func TestZeroLengthFileFragment(t *testing.T) {
	tr := buildTorrent(t, 4, []int64{2, 0, 2})
	pieces := collectPieces(tr)
	require.Len(t, pieces, 1)
	require.Len(t, pieces[0].Fragments, 3)
	assert.Equal(t, metainfo.Fragment{Path: "b", Begin: 0, End: 0, FileSize: 0}, pieces[0].Fragments[1])
}
