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

// Command bbit-touch creates zero-length placeholder files (and their
// ancestor directories) for every torrent file whose declared length
// is zero.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"laptudirm.com/x/bbit/internal/cli"
)

func main() {
	root := &cobra.Command{
		Use:   "bbit-touch <torrent> [content-root]",
		Short: "create empty placeholder files for zero-length torrent entries",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  run,
	}
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	t, err := cli.LoadTorrent(args[0])
	if err != nil {
		cli.Fatal(err)
	}

	contentRoot := t.Name()
	if len(args) == 2 {
		contentRoot = args[1]
	}

	for _, f := range t.Files() {
		if f.Length != 0 {
			continue
		}

		path := f.RelPath()
		if t.Multifile() {
			path = filepath.Join(contentRoot, path)
		} else {
			path = contentRoot
		}

		if _, err := os.Stat(path); err == nil {
			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			cli.Fatal(fmt.Errorf("creating directory for %s: %w", path, err))
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			cli.Fatal(fmt.Errorf("creating %s: %w", path, err))
		}
		fmt.Println("created", path)
	}
	return nil
}
