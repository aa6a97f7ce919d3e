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

// Package atomicfile replaces a file's contents such that readers of
// the path never observe a partial write: the new content lands in a
// staging file first, which is only renamed over the destination once
// it is fully written and closed.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write stages data and renames it over path. On any error before the
// rename, path is left untouched; the staging file may survive a crash
// and is tolerated by the retry loop of the next Write against the
// same path.
func Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	f, stagingPath, err := createStaging(dir, base)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("atomicfile: writing staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("atomicfile: closing staging file: %w", err)
	}

	if err := os.Rename(stagingPath, path); err != nil {
		return fmt.Errorf("atomicfile: renaming staging file over %s: %w", path, err)
	}
	return nil
}

// createStaging finds the smallest positive n such that
// dir/.base#n does not exist, and exclusively creates it.
func createStaging(dir, base string) (*os.File, string, error) {
	for n := 1; ; n++ {
		staging := filepath.Join(dir, fmt.Sprintf(".%s#%d", base, n))
		f, err := os.OpenFile(staging, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, staging, nil
		}
		if !os.IsExist(err) {
			return nil, "", fmt.Errorf("atomicfile: creating staging file: %w", err)
		}
	}
}

// Unlink removes path, for the null-selector delete case where the
// whole torrent file is discarded rather than rewritten.
func Unlink(path string) error {
	return os.Remove(path)
}
