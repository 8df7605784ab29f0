package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llehouerou/id3map/internal/config"
	"github.com/llehouerou/id3map/internal/errmsg"
	"github.com/llehouerou/id3map/internal/metadata"
	"github.com/llehouerou/id3map/internal/tags"
)

var errNoFolderArt = errors.New("no cover art file in folder")

type setOptions struct {
	cover      string
	folderArt  bool
	coverTypes []string
	coverDesc  string
}

func newSetCmd(a *app) *cobra.Command {
	var opts setOptions

	cmd := &cobra.Command{
		Use:   "set <file> key=value...",
		Short: "Set tag values",
		Long: `Set replaces the values of each key given. Repeating a key adds
values: "artist=A artist=B" stores two artists.`,
		Example: `  id3map set song.mp3 title=Intro tracknumber=1 totaltracks=12
  id3map set song.mp3 performer:guitar=Jimmy --cover cover.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]
			assignments, err := parseAssignments(args[1:])
			if err != nil {
				return errmsg.Wrap(errmsg.OpParseValue, "", err)
			}

			codec := a.codec()
			res, err := a.load(codec, path)
			if err != nil {
				return err
			}
			applyAssignments(res.Metadata, assignments)

			if err := opts.addCover(res.Metadata, path); err != nil {
				return err
			}
			return errmsg.Wrap(errmsg.OpTagsSave, path, codec.Save(path, res.Metadata, res.CaseMap))
		},
	}

	cmd.Flags().StringVar(&opts.cover, "cover", "", "image file to add as a picture")
	cmd.Flags().BoolVar(&opts.folderArt, "folder-art", false, "add the cover art file found next to the audio file")
	cmd.Flags().StringSliceVar(&opts.coverTypes, "cover-type", []string{"front"}, "picture types of the added image")
	cmd.Flags().StringVar(&opts.coverDesc, "cover-desc", "", "description of the added image")
	cmd.MarkFlagsMutuallyExclusive("cover", "folder-art")
	return cmd
}

// addCover adds the requested image in front of the existing ones.
func (o setOptions) addCover(md *metadata.Metadata, audioPath string) error {
	src := o.cover
	if o.folderArt {
		var ok bool
		src, ok = tags.FindFolderArt(filepath.Dir(audioPath))
		if !ok {
			return errmsg.Wrap(errmsg.OpCoverLoad, filepath.Dir(audioPath), errNoFolderArt)
		}
	}
	if src == "" {
		return nil
	}

	img, err := tags.LoadImageFile(src, o.coverTypes, o.coverDesc)
	if err != nil {
		return errmsg.Wrap(errmsg.OpCoverLoad, src, err)
	}
	// A new front cover replaces the old ones
	if img.IsFront() {
		md.Images = slices.DeleteFunc(md.Images, metadata.Image.IsFront)
	}
	md.Images = append([]metadata.Image{img}, md.Images...)
	return nil
}

type assignment struct {
	key, value string
}

func parseAssignments(args []string) ([]assignment, error) {
	out := make([]assignment, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%q is not key=value", arg)
		}
		out = append(out, assignment{key: key, value: value})
	}
	return out, nil
}

// applyAssignments replaces the values of every key on its first
// assignment and appends on the following ones.
func applyAssignments(md *metadata.Metadata, assignments []assignment) {
	seen := make(map[string]bool, len(assignments))
	for _, as := range assignments {
		if seen[as.key] {
			md.Add(as.key, as.value)
			continue
		}
		seen[as.key] = true
		md.Set(as.key, as.value)
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <file> key...",
		Short:   "Remove tag values",
		Long:    `Delete removes keys and the frames holding them.`,
		Example: `  id3map delete song.mp3 comment:iTunNORM performer:guitar`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]
			codec := a.codec()
			res, err := a.load(codec, path)
			if err != nil {
				return err
			}
			for _, key := range args[1:] {
				res.Metadata.Delete(key)
			}
			return errmsg.Wrap(errmsg.OpTagsDelete, path, codec.Save(path, res.Metadata, res.CaseMap))
		},
	}
}

func newCopyCmd(a *app) *cobra.Command {
	var clearTags bool

	cmd := &cobra.Command{
		Use:   "copy <src> <dst>",
		Short: "Copy the tags of one file to another",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			src, dst := args[0], args[1]
			res, err := a.load(a.codec(), src)
			if err != nil {
				return err
			}

			codec := a.codec(func(s *config.Settings) {
				if clearTags {
					s.ClearExistingTags = true
				}
			})
			return errmsg.Wrap(errmsg.OpTagsCopy, dst, codec.Save(dst, res.Metadata, res.CaseMap))
		},
	}

	cmd.Flags().BoolVar(&clearTags, "clear", false, "drop the existing tags of the destination first")
	return cmd
}
