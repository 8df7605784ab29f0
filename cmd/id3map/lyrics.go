package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/llehouerou/id3map/internal/errmsg"
	"github.com/llehouerou/id3map/internal/lyrics"
	"github.com/llehouerou/id3map/internal/metadata"
)

type lyricsOptions struct {
	importPath string
	sidecar    bool
	lang       string
	desc       string
	at         time.Duration
}

func newLyricsCmd(a *app) *cobra.Command {
	var opts lyricsOptions

	cmd := &cobra.Command{
		Use:   "lyrics <file>",
		Short: "Show or import synchronised lyrics",
		Long: `Without flags, lyrics prints the synchronised lyrics of a file line by
line. With --import or --sidecar, an LRC file is stored as synchronised
lyrics under syncedlyrics:<lang>[:<desc>].`,
		Example: `  id3map lyrics song.mp3 --at 1m12s
  id3map lyrics song.mp3 --import song.lrc --lang eng`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if opts.importPath == "" && !opts.sidecar {
				return a.showLyrics(cmd.OutOrStdout(), path, opts)
			}
			return a.importLyrics(cmd.OutOrStdout(), path, opts)
		},
	}

	cmd.Flags().StringVar(&opts.importPath, "import", "", "LRC file to import")
	cmd.Flags().BoolVar(&opts.sidecar, "sidecar", false, "import the .lrc file next to the audio file")
	cmd.Flags().StringVar(&opts.lang, "lang", "eng", "language of imported lyrics")
	cmd.Flags().StringVar(&opts.desc, "desc", "", "description of imported lyrics")
	cmd.Flags().DurationVar(&opts.at, "at", -1, "mark the line sung at this position")
	cmd.MarkFlagsMutuallyExclusive("import", "sidecar")
	return cmd
}

func (o lyricsOptions) key() string {
	key := "syncedlyrics:" + o.lang
	if o.desc != "" {
		key += ":" + o.desc
	}
	return key
}

func (a *app) showLyrics(w io.Writer, path string, opts lyricsOptions) error {
	res, err := a.load(a.codec(), path)
	if err != nil {
		return err
	}

	found := false
	for key, values := range res.Metadata.All() {
		if !isLyricsKey(key) {
			continue
		}
		for _, v := range values {
			found = true
			fmt.Fprintf(w, "%s:\n", key)
			if !strings.HasPrefix(key, "syncedlyrics") {
				fmt.Fprintln(w, v)
				continue
			}
			if err := printSynced(w, v, opts.at); err != nil {
				return errmsg.Wrap(errmsg.OpLyricsShow, key, err)
			}
		}
	}
	if !found {
		fmt.Fprintln(w, "no lyrics")
	}
	return nil
}

func isLyricsKey(key string) bool {
	for _, prefix := range []string{"lyrics", "syncedlyrics"} {
		if key == prefix || strings.HasPrefix(key, prefix+":") {
			return true
		}
	}
	return false
}

func printSynced(w io.Writer, text string, at time.Duration) error {
	parsed, err := lyrics.ParseLRC(strings.NewReader(text))
	if err != nil {
		return err
	}
	current := -1
	if at >= 0 {
		current = parsed.LineAt(at)
	}
	for i, line := range parsed.Lines {
		marker := " "
		if i == current {
			marker = ">"
		}
		ts := lyrics.FormatTimestamp(uint32(line.Time.Milliseconds()))
		fmt.Fprintf(w, "%s [%s] %s\n", marker, ts, line.Text)
	}
	return nil
}

func (a *app) importLyrics(w io.Writer, path string, opts lyricsOptions) error {
	var (
		src *lyrics.Source
		err error
	)
	if opts.sidecar {
		src, err = lyrics.LoadSidecar(path)
	} else {
		src, err = lyrics.LoadFile(opts.importPath)
	}
	if err != nil {
		return errmsg.Wrap(errmsg.OpLyricsImport, lrcSource(path, opts), err)
	}

	codec := a.codec()
	res, err := a.load(codec, path)
	if err != nil {
		return err
	}
	storeLyrics(res.Metadata, opts.key(), src)
	if err := codec.Save(path, res.Metadata, res.CaseMap); err != nil {
		return errmsg.Wrap(errmsg.OpTagsSave, path, err)
	}

	fmt.Fprintf(w, "imported %d lines into %s\n", len(src.Lyrics.Lines), opts.key())
	return nil
}

func lrcSource(path string, opts lyricsOptions) string {
	if opts.sidecar {
		return lyrics.SidecarPath(path)
	}
	return opts.importPath
}

// storeLyrics replaces the lyrics under key with the LRC source.
func storeLyrics(md *metadata.Metadata, key string, src *lyrics.Source) {
	md.Set(key, src.Raw)
}
