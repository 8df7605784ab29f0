package tags

import (
	"strings"

	"github.com/llehouerou/id3map/internal/config"
	"github.com/llehouerou/id3map/internal/metadata"
)

// SupportsTag reports whether values of key can be written to an ID3 tag.
// Internal keys (starting with "~") are not, except ~rating and ~id3:*.
func SupportsTag(key string) bool {
	if key == keyRating || strings.HasPrefix(key, "~id3") {
		return true
	}
	return key != "" && !strings.HasPrefix(key, "~") && !unsupportedKeys[key]
}

// FormatSpecific returns the values of key the way they end up in the tag
// with the given settings. ID3v2.3 keeps only the year of originaldate and
// of partial dates. It has no multi-valued text frames either, so values are
// joined with id3v23_join_with, except for credits which IPLS keeps as a list.
func FormatSpecific(md *metadata.Metadata, key string, cfg config.Settings) []string {
	values := md.GetAll(key)
	if !cfg.WriteID3v23 || len(values) == 0 {
		return values
	}

	switch key {
	case "originaldate":
		for i, v := range values {
			values[i] = truncate(v, 4)
		}
	case "date":
		for i, v := range values {
			if len(v) < 10 {
				values[i] = truncate(v, 4)
			}
		}
	}

	if len(values) > 1 && roleKeys[key] == "" && !strings.HasPrefix(key, "performer:") {
		values = []string{strings.Join(values, cfg.ID3v23JoinWith)}
	}
	return values
}

// flattens reports whether the saver passes values of key through
// FormatSpecific. Keys that map to one frame per value keep their values.
func flattens(key string) bool {
	switch {
	case key == "lyrics", strings.HasPrefix(key, "lyrics:"),
		key == "syncedlyrics", strings.HasPrefix(key, "syncedlyrics:"),
		key == "performer",
		key == keyRating, key == keyRecordingID,
		key == "license", key == "website":
		return false
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
