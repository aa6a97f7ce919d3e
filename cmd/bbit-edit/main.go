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

// Command bbit-edit reads, selects, and mutates locations inside a
// torrent's bencode tree.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"laptudirm.com/x/bbit/internal/cli"
	"laptudirm.com/x/bbit/pkg/atomicfile"
	"laptudirm.com/x/bbit/pkg/bencode"
	"laptudirm.com/x/bbit/pkg/emit"
	"laptudirm.com/x/bbit/pkg/selector"
)

var (
	selectExpr  string
	setInteger  string
	asTimestamp bool
	setString   string
	createDict  bool
	createList  bool
	remove      bool
	outputPath  string
	jsonOutput  bool
	atomOutput  bool
)

func main() {
	root := &cobra.Command{
		Use:   "bbit-edit <torrent>",
		Short: "select, inspect, or mutate a torrent's bencode tree",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}

	f := root.Flags()
	f.StringVar(&selectExpr, "select", "", "path expression addressing a location in the tree")
	f.StringVar(&setInteger, "set-integer", "", "set the selected location to this integer")
	f.BoolVar(&asTimestamp, "timestamp", false, "interpret set-integer/atom output as a Unix timestamp")
	f.StringVar(&setString, "set-string", "", "set the selected location to this string")
	f.BoolVar(&createDict, "create-dict", false, "set the selected location to an empty dict")
	f.BoolVar(&createList, "create-list", false, "set the selected location to an empty list")
	f.BoolVar(&remove, "remove", false, "remove the selected location")
	f.StringVar(&outputPath, "output", "", "write the result to this path instead of the source torrent")
	f.BoolVar(&jsonOutput, "json", false, "print the selected value as JSON")
	f.BoolVar(&atomOutput, "atom", false, "print the selected value as a raw atom")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	path := args[0]
	t, err := cli.LoadTorrent(path)
	if err != nil {
		cli.Fatal(err)
	}

	sel := selector.Parse(selectExpr)
	mutating := setInteger != "" || setString != "" || createDict || createList || remove

	if mutating && (jsonOutput || atomOutput) {
		cli.Fatal(fmt.Errorf("bbit-edit: mutators and json/atom output are mutually exclusive"))
	}

	if !mutating {
		printSelection(t.Data(), sel)
		return nil
	}

	dst := outputPath
	if dst == "" {
		dst = path
	}

	// The null selector addresses the root itself, which selector.Set
	// and selector.Delete both refuse: there is no parent container to
	// mutate a child of. The atomic-writer layer handles these two
	// cases directly instead: removing the null selector unlinks the
	// source file, and setting it replaces the torrent's contents
	// wholesale rather than rewriting a location inside them.
	if sel.IsNull() {
		if remove {
			if err := atomicfile.Unlink(path); err != nil {
				cli.Fatal(err)
			}
			return nil
		}

		value, err := mutationValue()
		if err != nil {
			cli.Fatal(err)
		}
		if err := atomicfile.Write(dst, bencode.Encode(value)); err != nil {
			cli.Fatal(err)
		}
		return nil
	}

	root := t.Data()
	if err := applyMutation(&root, sel); err != nil {
		cli.Fatal(err)
	}

	if err := atomicfile.Write(dst, bencode.Encode(root)); err != nil {
		cli.Fatal(err)
	}
	return nil
}

func printSelection(root bencode.Value, sel selector.Selector) {
	v, err := selector.Select(root, sel)
	if err != nil {
		cli.Fatal(err)
	}

	switch {
	case jsonOutput:
		out, err := emit.JSON(v)
		if err != nil {
			cli.Fatal(err)
		}
		fmt.Println(out)
	case atomOutput:
		out, err := emit.Atom(v, asTimestamp)
		if err != nil {
			cli.Fatal(err)
		}
		fmt.Print(string(out))
	default:
		fmt.Println(emit.Pretty(v))
	}
}

func applyMutation(root *bencode.Value, sel selector.Selector) error {
	if remove {
		return selector.Delete(root, sel)
	}

	value, err := mutationValue()
	if err != nil {
		return err
	}
	return selector.Set(root, sel, value)
}

// mutationValue builds the replacement value named by the set-integer/
// set-string/create-dict/create-list flags. It is shared by applyMutation
// (which plants the value at a selected location) and the null-selector
// case in run (which uses it as the whole replacement tree).
func mutationValue() (bencode.Value, error) {
	switch {
	case setInteger != "":
		n, err := parseInteger(setInteger)
		if err != nil {
			return bencode.Value{}, err
		}
		return bencode.Int(n), nil
	case setString != "":
		return bencode.StrText(setString), nil
	case createDict:
		return bencode.NewDict(), nil
	case createList:
		return bencode.NewList(), nil
	default:
		return bencode.Value{}, fmt.Errorf("bbit-edit: no mutator specified")
	}
}

func parseInteger(s string) (int64, error) {
	if asTimestamp {
		ts, err := time.Parse("2006-01-02T15:04:05", s)
		if err != nil {
			return 0, fmt.Errorf("bbit-edit: parsing timestamp %q: %w", s, err)
		}
		return ts.Unix(), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bbit-edit: parsing integer %q: %w", s, err)
	}
	return n, nil
}
