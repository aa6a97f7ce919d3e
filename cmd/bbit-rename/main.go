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

// Command bbit-rename renames torrent files to match their declared
// name, <info.name>.torrent, in the same directory.
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
		Use:   "bbit-rename <torrent>...",
		Short: "rename torrent files to <info.name>.torrent",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run,
	}
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	errored := false
	for _, path := range args {
		if err := renameOne(path); err != nil {
			cli.Warn(err.Error())
			errored = true
		}
	}
	if errored {
		os.Exit(1)
	}
	return nil
}

func renameOne(path string) error {
	t, err := cli.LoadTorrent(path)
	if err != nil {
		return err
	}

	target := filepath.Join(filepath.Dir(path), t.Name()+".torrent")
	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("%s: target %s already exists", path, target)
	}

	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("renaming %s: %w", path, err)
	}
	fmt.Printf("%s -> %s\n", path, target)
	return nil
}
