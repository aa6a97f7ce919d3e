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

// Package cli holds plumbing shared by the bbit-* command binaries:
// torrent loading and uniformly colored error reporting.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"laptudirm.com/x/bbit/pkg/metainfo"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
)

// LoadTorrent reads and validates the metainfo document at path.
func LoadTorrent(path string) (*metainfo.Torrent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	t, err := metainfo.New(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return t, nil
}

// Fatal prints err in red to stderr and exits with status 1.
func Fatal(err error) {
	errColor.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// Warn prints msg in yellow to stderr.
func Warn(msg string) {
	warnColor.Fprintln(os.Stderr, "warning: "+msg)
}
