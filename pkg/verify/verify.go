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

// Package verify checks a content root against a torrent's pieces,
// one piece at a time, without buffering the whole content in memory.
package verify

import (
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"laptudirm.com/x/bbit/pkg/metainfo"
)

// Status is the verification outcome of a single piece.
type Status int

const (
	Ok Status = iota
	HashMismatch
	AcquisitionFailed
)

func (s Status) String() string {
	switch s {
	case Ok:
		return "ok"
	case HashMismatch:
		return "hash mismatch"
	case AcquisitionFailed:
		return "acquisition failed"
	default:
		return "unknown"
	}
}

// PieceReport describes the outcome of verifying a single piece, handed
// to Options.OnPiece as the run progresses.
type PieceReport struct {
	Index      int
	PieceCount int
	Status     Status
	Fragments  []metainfo.Fragment
	Err        error // non-nil on AcquisitionFailed or a non-fatal write/size error
}

// Options configures a verification run.
type Options struct {
	// Quiet suppresses OnPiece callbacks; callers that only want the
	// final Summary can leave OnPiece nil regardless of this flag.
	Quiet bool

	// FailFast terminates the run as soon as any error is reported for
	// a piece, instead of continuing to the end.
	FailFast bool

	// ExtractDir, if non-empty, receives one file per valid piece,
	// named by its piece index.
	ExtractDir string

	// OnPiece, if non-nil, is invoked after every piece is verified.
	OnPiece func(PieceReport)
}

// Summary is the outcome of a full verification run.
type Summary struct {
	Valid      int
	Total      int
	Errors     bool
	ExtraFiles []string
}

// openFile is a cached read-only handle plus the size observed when it
// was opened, so repeated fragments against the same file only pay for
// one os.Open and one os.Stat.
type openFile struct {
	path string
	f    *os.File
	size int64
}

// Run verifies every piece of t against the content rooted at root. If
// root is empty, it defaults to t.Name() resolved relative to the
// current working directory; callers that need torrent-directory-
// relative resolution should pass an already-joined root.
func Run(ctx context.Context, t *metainfo.Torrent, root string, opts Options) (Summary, error) {
	if root == "" {
		root = t.Name()
	}

	var cur openFile
	defer func() {
		if cur.f != nil {
			cur.f.Close()
		}
	}()

	open := func(relPath string) (*openFile, error) {
		full := relPath
		if t.Multifile() {
			full = filepath.Join(root, relPath)
		} else if root != "" {
			full = root
		}

		if cur.f != nil && cur.path == full {
			return &cur, nil
		}
		if cur.f != nil {
			cur.f.Close()
			cur = openFile{}
		}

		f, err := os.Open(full)
		if err != nil {
			return nil, err
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, err
		}
		cur = openFile{path: full, f: f, size: info.Size()}
		return &cur, nil
	}

	summary := Summary{Total: t.PieceCount()}

	if opts.ExtractDir != "" {
		if err := os.MkdirAll(opts.ExtractDir, 0o755); err != nil {
			return summary, fmt.Errorf("verify: creating extract dir: %w", err)
		}
	}

	it := t.Pieces()
	for {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		piece, ok := it.Next()
		if !ok {
			break
		}

		buf := make([]byte, 0, t.PieceLength())
		var acquisitionFailed, pieceHasError bool
		var firstErr error

		for _, frag := range piece.Fragments {
			of, err := open(frag.Path)
			if err != nil {
				acquisitionFailed = true
				pieceHasError = true
				if firstErr == nil {
					firstErr = fmt.Errorf("opening %s: %w", frag.Path, err)
				}
				continue
			}

			if of.size != frag.FileSize {
				pieceHasError = true
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: size %d does not match declared %d", frag.Path, of.size, frag.FileSize)
				}
			}

			chunk := make([]byte, frag.Len())
			n, err := of.f.ReadAt(chunk, frag.Begin)
			if err != nil && err != io.EOF {
				acquisitionFailed = true
				pieceHasError = true
				if firstErr == nil {
					firstErr = fmt.Errorf("reading %s: %w", frag.Path, err)
				}
				continue
			} else if int64(n) != frag.Len() {
				acquisitionFailed = true
				pieceHasError = true
			}
			buf = append(buf, chunk[:n]...)
		}

		report := PieceReport{
			Index:      piece.Index,
			PieceCount: t.PieceCount(),
			Fragments:  piece.Fragments,
			Err:        firstErr,
		}

		switch {
		case acquisitionFailed:
			report.Status = AcquisitionFailed
			summary.Errors = true
		default:
			sum := sha1.Sum(buf)
			want := t.PieceHash(piece.Index)
			if sum != want {
				report.Status = HashMismatch
				summary.Errors = true
			} else {
				report.Status = Ok
				summary.Valid++
				if opts.ExtractDir != "" {
					dst := filepath.Join(opts.ExtractDir, fmt.Sprint(piece.Index))
					if err := os.WriteFile(dst, buf, 0o644); err != nil {
						report.Err = fmt.Errorf("writing extracted piece: %w", err)
						summary.Errors = true
					}
				}
			}
			if pieceHasError {
				summary.Errors = true
			}
		}

		if !opts.Quiet && opts.OnPiece != nil {
			opts.OnPiece(report)
		}

		if opts.FailFast && (pieceHasError || report.Status != Ok) {
			break
		}
	}

	if t.Multifile() {
		extra, err := extraFiles(root, t)
		if err == nil {
			summary.ExtraFiles = extra
		}
	}

	return summary, nil
}

// extraFiles walks root and returns every regular file not declared by
// t, relative to root. Extra files never set Summary.Errors.
func extraFiles(root string, t *metainfo.Torrent) ([]string, error) {
	declared := make(map[string]bool, len(t.Files()))
	for _, f := range t.Files() {
		declared[f.RelPath()] = true
	}

	var extra []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if !declared[filepath.ToSlash(rel)] {
			extra = append(extra, filepath.ToSlash(rel))
		}
		return nil
	})
	return extra, err
}
