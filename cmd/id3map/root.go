package main

import (
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/llehouerou/id3map/internal/config"
	"github.com/llehouerou/id3map/internal/errmsg"
	"github.com/llehouerou/id3map/internal/tags"
)

// app is the state shared by all subcommands.
type app struct {
	configPath string
	verbose    bool

	cfg    config.Settings
	logger hclog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "id3map",
		Short: "Read and edit ID3v2 tags with Picard key names",
		Long: `id3map loads the ID3v2 tag of MP3 files into a flat list of keys
(title, artist, performer:guitar, musicbrainz_albumid, ...) and writes edits
back, keeping every frame it has no key for.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/id3map/config.toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log dropped frames and values")

	root.AddCommand(
		newShowCmd(a),
		newSetCmd(a),
		newDeleteCmd(a),
		newLyricsCmd(a),
		newCopyCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	level := hclog.Warn
	if a.verbose {
		level = hclog.Debug
	}
	a.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "id3map",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return errmsg.Wrap(errmsg.OpConfigLoad, a.configPath, err)
	}
	a.cfg = *cfg
	return nil
}

// codec returns a codec for the loaded settings, changed by configure.
func (a *app) codec(configure ...func(*config.Settings)) *tags.Codec {
	cfg := a.cfg
	for _, fn := range configure {
		fn(&cfg)
	}
	return tags.New(cfg, tags.WithLogger(a.logger))
}

// load reads the tags of path, wrapping errors for display.
func (a *app) load(codec *tags.Codec, path string) (*tags.Result, error) {
	res, err := codec.Load(path)
	if err != nil {
		return nil, errmsg.Wrap(errmsg.OpTagsLoad, path, err)
	}
	return res, nil
}
