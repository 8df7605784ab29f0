package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "id3map"

// Settings are the tagging options read by the ID3 codec.
type Settings struct {
	ITunesCompatibleGrouping bool   `koanf:"itunes_compatible_grouping"` // grouping in GRP1, work in TIT1
	ID3v2Encoding            string `koanf:"id3v2_encoding"`             // "utf-8", "utf-16" or "latin1"
	WriteID3v23              bool   `koanf:"write_id3v23"`
	ID3v23JoinWith           string `koanf:"id3v23_join_with"` // separator for multi-values in v2.3
	WriteID3v1               bool   `koanf:"write_id3v1"`
	RatingUserEmail          string `koanf:"rating_user_email"` // POPM owner
	RatingSteps              int    `koanf:"rating_steps"`      // rating range is 0..steps-1
	ClearExistingTags        bool   `koanf:"clear_existing_tags"`
	PreserveImages           bool   `koanf:"preserve_images"` // keep images when clearing tags
	RemoveAPEFromMP3         bool   `koanf:"remove_ape_from_mp3"`
}

// Default returns the settings used when no config file sets a value.
func Default() Settings {
	return Settings{
		ID3v2Encoding:   "utf-8",
		ID3v23JoinWith:  "/",
		RatingUserEmail: "users@musicbrainz.org",
		RatingSteps:     6,
	}
}

// Load reads settings from the standard config locations. If explicit is
// not empty, only that file is read and it must exist.
func Load(explicit string) (*Settings, error) {
	k := koanf.New(".")

	paths := getConfigPaths()
	if explicit != "" {
		path := expandPath(explicit)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		paths = []string{path}
	}

	// Last wins
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Normalize brings out-of-range values back to something the codec can use.
func (s *Settings) Normalize() {
	s.ID3v2Encoding = strings.ToLower(strings.TrimSpace(s.ID3v2Encoding))
	if s.RatingSteps < 2 {
		s.RatingSteps = 2
	}
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. system dirs, least specific first
	for _, dir := range slices.Backward(xdg.ConfigDirs) {
		paths = append(paths, filepath.Join(dir, appName, "config.toml"))
	}

	// 2. $XDG_CONFIG_HOME/id3map/config.toml
	paths = append(paths, filepath.Join(xdg.ConfigHome, appName, "config.toml"))

	// 3. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
