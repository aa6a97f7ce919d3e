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

package metainfo

// Fragment is the portion of a piece that lies within a single file:
// its relative path, the half-open byte range [Begin, End) within
// that file, and the file's declared total size.
type Fragment struct {
	Path     string
	Begin    int64
	End      int64
	FileSize int64
}

// Len is End - Begin, the number of bytes this fragment contributes
// to its piece.
func (f Fragment) Len() int64 { return f.End - f.Begin }

// Complete reports whether this fragment spans the entire file (used
// by CLI progress lines to decide whether to decorate a fragment
// descriptor with leading/trailing "...").
func (f Fragment) Complete() bool {
	return f.Begin == 0 && f.End == f.FileSize
}

// Piece is one piece of a torrent's content, described as an ordered,
// non-empty list of file fragments that, concatenated, reconstruct
// the piece's byte image.
type Piece struct {
	Index     int
	Fragments []Fragment
}

// PieceIterator yields a torrent's pieces lazily, in order, by walking
// a (file index, file offset) cursor across the torrent's file list.
// It borrows its Torrent; its lifetime is bounded by that Torrent's.
type PieceIterator struct {
	t *Torrent

	index      int
	fileIndex  int
	fileOffset int64
	consumed   int64 // total content bytes already yielded across prior pieces
}

// Pieces returns a fresh iterator over t's pieces, starting at piece 0.
func (t *Torrent) Pieces() *PieceIterator {
	return &PieceIterator{t: t}
}

// Next yields the next piece and advances the iterator, or returns
// ok=false once every piece has been yielded.
//
// Algorithm (per piece): maintain a cursor (fileIndex, fileOffset).
// Consume up to PieceLength bytes of quota. If the file's remaining
// bytes are <= the quota left in this piece, emit a fragment spanning
// to the file's end, subtract that many bytes from the quota, and
// advance to the next file at offset 0. Otherwise emit a fragment of
// exactly the remaining quota and stop — the file isn't exhausted.
func (it *PieceIterator) Next() (Piece, bool) {
	if it.index >= it.t.pieceCount {
		return Piece{}, false
	}

	quota := it.t.pieceLength
	if remaining := it.t.length - it.consumed; remaining < quota {
		quota = remaining
	}

	var fragments []Fragment
	for quota > 0 {
		f := it.t.files[it.fileIndex]
		available := f.Length - it.fileOffset

		if available <= quota {
			fragments = append(fragments, Fragment{
				Path:     f.RelPath(),
				Begin:    it.fileOffset,
				End:      f.Length,
				FileSize: f.Length,
			})
			quota -= available
			it.fileIndex++
			it.fileOffset = 0
		} else {
			fragments = append(fragments, Fragment{
				Path:     f.RelPath(),
				Begin:    it.fileOffset,
				End:      it.fileOffset + quota,
				FileSize: f.Length,
			})
			it.fileOffset += quota
			quota = 0
		}
	}

	piece := Piece{Index: it.index, Fragments: fragments}
	it.consumed += it.t.pieceLength
	if it.consumed > it.t.length {
		it.consumed = it.t.length
	}
	it.index++

	// The quota loop above only visits a zero-length file once some
	// later, nonzero-length file still owes quota; a zero-length file
	// (or run of them) trailing the very last piece never gets visited
	// that way, since there is no following piece to pull it in. Drain
	// them here so the final piece still accounts for every file.
	if it.index == it.t.pieceCount {
		for it.fileIndex < len(it.t.files) && it.t.files[it.fileIndex].Length == 0 {
			f := it.t.files[it.fileIndex]
			piece.Fragments = append(piece.Fragments, Fragment{
				Path:     f.RelPath(),
				Begin:    0,
				End:      0,
				FileSize: 0,
			})
			it.fileIndex++
		}
	}

	if it.index == it.t.pieceCount && (it.fileIndex != len(it.t.files) || it.fileOffset != 0) {
		panic("metainfo: piece iterator finished without consuming every file exactly")
	}

	return piece, true
}
