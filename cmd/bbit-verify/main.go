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

// Command bbit-verify checks a content root against a torrent's
// pieces, reporting hash mismatches and missing data.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"laptudirm.com/x/bbit/internal/cli"
	"laptudirm.com/x/bbit/pkg/metainfo"
	"laptudirm.com/x/bbit/pkg/verify"
)

var (
	quiet       bool
	failFast    bool
	relativeDir bool
	titleProg   bool
	extractDir  string
)

func main() {
	root := &cobra.Command{
		Use:   "bbit-verify <torrent> [checkee]",
		Short: "verify a torrent's content against its declared pieces",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  run,
	}

	root.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress per-piece progress output")
	root.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first piece with an error")
	root.Flags().BoolVar(&relativeDir, "relative", false, "resolve the checkee relative to the torrent's directory")
	root.Flags().BoolVar(&titleProg, "title-progress", false, "report progress in the terminal title")
	root.Flags().StringVar(&extractDir, "extract", "", "write every valid piece to this directory")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	torrentPath := args[0]
	t, err := cli.LoadTorrent(torrentPath)
	if err != nil {
		cli.Fatal(err)
	}

	checkee := t.Name()
	if len(args) == 2 {
		checkee = args[1]
	}
	if relativeDir {
		checkee = filepath.Join(filepath.Dir(torrentPath), checkee)
	}

	bar := newProgressBar(t, quiet)

	summary, err := verify.Run(context.Background(), t, checkee, verify.Options{
		Quiet:      quiet,
		FailFast:   failFast,
		ExtractDir: extractDir,
		OnPiece: func(r verify.PieceReport) {
			reportPiece(bar, r, titleProg)
		},
	})
	if err != nil {
		cli.Fatal(err)
	}

	if bar != nil {
		bar.Finish()
	}

	fmt.Printf("%d/%d pieces valid (%s checked)\n", summary.Valid, summary.Total, humanize.Bytes(uint64(t.Length())))
	for _, extra := range summary.ExtraFiles {
		cli.Warn("extra file not declared by torrent: " + extra)
	}

	if summary.Errors {
		os.Exit(1)
	}
	return nil
}

func newProgressBar(t *metainfo.Torrent, quiet bool) *progressbar.ProgressBar {
	if quiet {
		return nil
	}
	return progressbar.NewOptions(t.PieceCount(),
		progressbar.OptionSetDescription("verifying"),
		progressbar.OptionShowCount(),
	)
}

func reportPiece(bar *progressbar.ProgressBar, r verify.PieceReport, titleProgress bool) {
	if bar != nil {
		bar.Add(1)
	}
	if titleProgress {
		fmt.Printf("\033]0;bbit-verify: piece %d/%d\007", r.Index+1, r.PieceCount)
	}

	switch r.Status {
	case verify.HashMismatch:
		color.New(color.FgRed).Printf("piece %d/%d [%s]: hash mismatch\n", r.Index+1, r.PieceCount, fragmentDescriptors(r.Fragments))
	case verify.AcquisitionFailed:
		color.New(color.FgRed).Printf("piece %d/%d [%s]: acquisition failed: %v\n", r.Index+1, r.PieceCount, fragmentDescriptors(r.Fragments), r.Err)
	}
}

// fragmentDescriptors renders a piece's fragments as a comma-separated
// list, decorating a fragment that doesn't cover its file completely
// with leading/trailing "...".
func fragmentDescriptors(fragments []metainfo.Fragment) string {
	descs := make([]string, len(fragments))
	for i, frag := range fragments {
		if frag.Complete() {
			descs[i] = frag.Path
		} else {
			descs[i] = "..." + frag.Path + "..."
		}
	}
	out := ""
	for i, d := range descs {
		if i > 0 {
			out += ", "
		}
		out += d
	}
	return out
}
