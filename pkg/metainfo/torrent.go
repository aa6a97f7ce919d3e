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

// Package metainfo builds a validated, immutable Torrent from decoded
// bencode and enumerates its pieces and files. Construction performs
// decode, type validation of the info sub-tree, filename checks,
// length summation, and a piece-count cross-check in one pass;
// anything a caller gets back from New has already passed every
// invariant in this package's doc comments.
package metainfo

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"

	"laptudirm.com/x/bbit/pkg/bencode"
)

// InvalidTorrentError reports a metainfo document that decoded fine
// as bencode but fails the torrent schema: a missing or ill-typed
// field, a negative length, a pieces-length mismatch, an invalid
// filename component, or info.files/info.length both present.
type InvalidTorrentError struct {
	Path   string // dotted path, e.g. ".info.files[3].length"
	Reason string
}

func (e *InvalidTorrentError) Error() string {
	return fmt.Sprintf("invalid torrent at %s: %s", e.Path, e.Reason)
}

func invalid(path, reason string) error {
	return &InvalidTorrentError{Path: path, Reason: reason}
}

// File describes one content file of a torrent, in the order it
// appears in the metainfo (or the single synthesized entry for a
// single-file torrent).
type File struct {
	// Path is the file's path components relative to the torrent's
	// content root: []string{name} for a single-file torrent, or the
	// stored info.files[i].path for a multi-file torrent.
	Path   []string
	Length int64

	md5sum string
	hasMD5 bool
}

// RelPath joins Path with the OS path separator.
func (f File) RelPath() string {
	return strings.Join(f.Path, pathSeparator)
}

// MD5Sum returns the file's declared info.files[i].md5sum, if any.
// §4.5 has the verifier ignore it; it is still exposed here for
// callers that want to surface it (e.g. the tree editor).
func (f File) MD5Sum() (string, bool) {
	return f.md5sum, f.hasMD5
}

// Torrent is a validated, read-only view of a metainfo document. It
// owns the decoded bencode tree exclusively; Data returns a borrowed
// reference whose lifetime is bounded by the Torrent.
type Torrent struct {
	data bencode.Value // root dict
	info bencode.Value // data["info"]

	name        string
	pieceLength int64
	pieces      []byte
	pieceCount  int
	length      int64
	multifile   bool
	files       []File
	infoHash    [20]byte
}

const pathSeparator = "/"

// New decodes data and validates it as a torrent metainfo document.
func New(data []byte) (*Torrent, error) {
	v, err := bencode.Decode(data)
	if err != nil {
		return nil, err
	}
	return FromValue(v)
}

// FromValue validates an already-decoded bencode tree as a torrent
// metainfo document. The tree is not copied; the returned Torrent
// owns it from this point on.
func FromValue(v bencode.Value) (*Torrent, error) {
	if !v.IsDict() {
		return nil, invalid("", "root value must be a dictionary")
	}

	info, ok := v.Get("info")
	if !ok {
		return nil, invalid(".info", "required field is missing")
	}
	if !info.IsDict() {
		return nil, invalid(".info", "must be a dictionary")
	}

	t := &Torrent{data: v, info: info}

	if err := t.validatePieces(); err != nil {
		return nil, err
	}
	if err := t.validateName(); err != nil {
		return nil, err
	}
	if err := t.validateFiles(); err != nil {
		return nil, err
	}
	if err := t.validatePieceCount(); err != nil {
		return nil, err
	}

	t.infoHash = sha1.Sum(bencode.Encode(info))
	return t, nil
}

func (t *Torrent) validatePieces() error {
	pl, ok := t.info.Get("piece length")
	if !ok {
		return invalid(".info.piece length", "required field is missing")
	}
	n, ok := pl.Int64()
	if !ok {
		return invalid(".info.piece length", "must be an integer")
	}
	if n <= 0 {
		return invalid(".info.piece length", "must be positive")
	}
	t.pieceLength = n

	pieces, ok := t.info.Get("pieces")
	if !ok {
		return invalid(".info.pieces", "required field is missing")
	}
	b, ok := pieces.Bytes()
	if !ok {
		return invalid(".info.pieces", "must be a byte string")
	}
	if len(b)%20 != 0 {
		return invalid(".info.pieces", "length must be a multiple of 20")
	}
	t.pieces = b
	return nil
}

func (t *Torrent) validateName() error {
	name, ok := t.info.Get("name")
	if !ok {
		return invalid(".info.name", "required field is missing")
	}
	s, ok := name.Text()
	if !ok {
		return invalid(".info.name", "must be a byte string")
	}
	if !isValidFilenameComponent(s) {
		return invalid(".info.name", "must be a valid filename component")
	}
	t.name = s
	return nil
}

func (t *Torrent) validateFiles() error {
	filesVal, hasFiles := t.info.Get("files")
	_, hasLength := t.info.Get("length")

	if hasFiles && hasLength {
		return invalid(".info", "files and length must not both be present")
	}

	switch {
	case hasFiles:
		return t.validateMultiFile(filesVal)
	case hasLength:
		return t.validateSingleFile()
	default:
		return invalid(".info", "exactly one of files or length is required")
	}
}

func (t *Torrent) validateMultiFile(filesVal bencode.Value) error {
	if !filesVal.IsList() {
		return invalid(".info.files", "must be a list")
	}
	items, _ := filesVal.Items()
	if len(items) == 0 {
		return invalid(".info.files", "must be non-empty when present")
	}

	t.multifile = true
	var total int64
	files := make([]File, 0, len(items))

	for i, item := range items {
		base := fmt.Sprintf(".info.files[%d]", i)
		if !item.IsDict() {
			return invalid(base, "must be a dictionary")
		}

		pathVal, ok := item.Get("path")
		if !ok {
			return invalid(base+".path", "required field is missing")
		}
		if !pathVal.IsList() {
			return invalid(base+".path", "must be a list")
		}
		pathItems, _ := pathVal.Items()
		if len(pathItems) == 0 {
			return invalid(base+".path", "must be non-empty")
		}

		components := make([]string, len(pathItems))
		for j, c := range pathItems {
			s, ok := c.Text()
			if !ok {
				return invalid(fmt.Sprintf("%s.path[%d]", base, j), "must be a byte string")
			}
			if !isValidFilenameComponent(s) {
				return invalid(fmt.Sprintf("%s.path[%d]", base, j), "must be a valid filename component")
			}
			components[j] = s
		}

		lengthVal, ok := item.Get("length")
		if !ok {
			return invalid(base+".length", "required field is missing")
		}
		length, ok := lengthVal.Int64()
		if !ok {
			return invalid(base+".length", "must be an integer")
		}
		if length < 0 {
			return invalid(base+".length", "must be non-negative")
		}

		f := File{Path: components, Length: length}
		if md5, ok := item.Get("md5sum"); ok {
			if s, ok := md5.Text(); ok {
				f.md5sum, f.hasMD5 = s, true
			}
		}

		files = append(files, f)
		total += length
	}

	t.files = files
	t.length = total
	return nil
}

func (t *Torrent) validateSingleFile() error {
	lengthVal, _ := t.info.Get("length")
	length, ok := lengthVal.Int64()
	if !ok {
		return invalid(".info.length", "must be an integer")
	}
	if length < 0 {
		return invalid(".info.length", "must be non-negative")
	}

	t.multifile = false
	t.length = length
	t.files = []File{{Path: []string{t.name}, Length: length}}
	return nil
}

func (t *Torrent) validatePieceCount() error {
	count := ceilDiv(t.length, t.pieceLength)
	if int64(len(t.pieces)) != count*20 {
		return invalid(".info.pieces", fmt.Sprintf(
			"length %d does not match piece count %d derived from length %d and piece length %d",
			len(t.pieces), count, t.length, t.pieceLength))
	}
	t.pieceCount = int(count)
	return nil
}

func ceilDiv(a, b int64) int64 {
	if a == 0 {
		return 0
	}
	return (a + b - 1) / b
}

func isValidFilenameComponent(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.Contains(s, "/")
}

// Data returns the whole decoded metainfo tree. The returned Value
// aliases the Torrent's storage and must be treated as read-only;
// mutate a copy via the selector package instead.
func (t *Torrent) Data() bencode.Value { return t.data }

// Info returns data["info"].
func (t *Torrent) Info() bencode.Value { return t.info }

// Name is info["name"].
func (t *Torrent) Name() string { return t.name }

// PieceLength is info["piece length"].
func (t *Torrent) PieceLength() int64 { return t.pieceLength }

// Length is the total content length: the sum of each file's length.
func (t *Torrent) Length() int64 { return t.length }

// PieceCount is ceil(Length / PieceLength).
func (t *Torrent) PieceCount() int { return t.pieceCount }

// Multifile reports whether info.files is present.
func (t *Torrent) Multifile() bool { return t.multifile }

// Files enumerates this torrent's content files. In single-file mode
// it is a single synthesized entry with Path == []string{Name()}.
func (t *Torrent) Files() []File { return t.files }

// PieceHash returns the 20-byte SHA-1 digest expected for piece i.
func (t *Torrent) PieceHash(i int) [20]byte {
	var h [20]byte
	copy(h[:], t.pieces[i*20:(i+1)*20])
	return h
}

// InfoHash is SHA1(Encode(Info())), the identifier BitTorrent trackers
// and peers use for this torrent. bbit does no networking, but every
// consumer of a validated torrent needs this derived quantity, and it
// is a pure function of already-validated data.
func (t *Torrent) InfoHash() [20]byte { return t.infoHash }

// Private is info["private"] != 0, defaulting to false when the key
// is absent or not an integer.
func (t *Torrent) Private() bool {
	v, ok := t.info.Get("private")
	if !ok {
		return false
	}
	n, ok := v.Int64()
	return ok && n != 0
}

// Announce is data["announce"], if present.
func (t *Torrent) Announce() (string, bool) {
	v, ok := t.data.Get("announce")
	if !ok {
		return "", false
	}
	return v.Text()
}

// Comment is data["comment"], if present.
func (t *Torrent) Comment() (string, bool) {
	v, ok := t.data.Get("comment")
	if !ok {
		return "", false
	}
	return v.Text()
}

// CreatedBy is data["created by"], if present.
func (t *Torrent) CreatedBy() (string, bool) {
	v, ok := t.data.Get("created by")
	if !ok {
		return "", false
	}
	return v.Text()
}

// CreatedAt is data["creation date"] interpreted as Unix seconds, if
// present and integral.
func (t *Torrent) CreatedAt() (time.Time, bool) {
	v, ok := t.data.Get("creation date")
	if !ok {
		return time.Time{}, false
	}
	n, ok := v.Int64()
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(n, 0).UTC(), true
}

// MD5Sum is info["md5sum"], the single-file-mode counterpart of
// File.MD5Sum. §4.5 has the verifier ignore it regardless of mode.
func (t *Torrent) MD5Sum() (string, bool) {
	v, ok := t.info.Get("md5sum")
	if !ok {
		return "", false
	}
	return v.Text()
}
