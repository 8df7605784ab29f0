package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/llehouerou/id3map/internal/metadata"
)

// maxKeyWidth caps the key column so one long TXXX description does not
// push every value off screen.
const maxKeyWidth = 32

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>...",
		Short: "Print the tags of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec := a.codec()
			for i, path := range args {
				res, err := a.load(codec, path)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				printMetadata(cmd.OutOrStdout(), path, res.Metadata)
			}
			return nil
		},
	}
}

func printMetadata(w io.Writer, path string, md *metadata.Metadata) {
	fmt.Fprintln(w, path)

	keys := slices.Sorted(slices.Values(md.Keys()))
	width := 0
	for _, key := range keys {
		width = max(width, runewidth.StringWidth(key))
	}
	width = min(width, maxKeyWidth)

	for _, key := range keys {
		label := runewidth.FillRight(runewidth.Truncate(key, width, "…"), width)
		for _, value := range md.GetAll(key) {
			fmt.Fprintf(w, "  %s  %s\n", label, indentLines(value, width+4))
			label = strings.Repeat(" ", width)
		}
	}

	for i, img := range md.Images {
		fmt.Fprintf(w, "  image %d: %s\n", i+1, describeImage(img))
	}
	fmt.Fprintf(w, "  %d keys, %d images\n", md.Len(), len(md.Images))
}

// indentLines aligns the continuation lines of multi-line values.
func indentLines(s string, n int) string {
	return strings.ReplaceAll(s, "\n", "\n"+strings.Repeat(" ", n))
}

func describeImage(img metadata.Image) string {
	parts := []string{strings.Join(img.Types, ","), img.MimeType}
	if img.Width > 0 && img.Height > 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", img.Width, img.Height))
	}
	parts = append(parts, humanize.Bytes(uint64(len(img.Data))))
	if img.Comment != "" {
		parts = append(parts, fmt.Sprintf("%q", img.Comment))
	}
	return strings.Join(parts, " ")
}
