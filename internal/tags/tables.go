package tags

import (
	"fmt"
	"maps"
	"regexp"
	"strings"
)

// standardFrames maps frame ids to metadata keys for frames whose meaning is
// carried by the frame id alone. TIT1 is missing on purpose: it means work
// or grouping depending on itunes_compatible_grouping.
var standardFrames = map[string]string{
	"TIT2": "title",
	"TIT3": "subtitle",
	"TALB": "album",
	"TSST": "discsubtitle",
	"TSRC": "isrc",
	"TPE1": "artist",
	"TPE2": "albumartist",
	"TPE3": "conductor",
	"TPE4": "remixer",
	"TEXT": "lyricist",
	"TCOM": "composer",
	"TENC": "encodedby",
	"TBPM": "bpm",
	"TKEY": "key",
	"TLAN": "language",
	"TCON": "genre",
	"TMED": "media",
	"TMOO": "mood",
	"TCOP": "copyright",
	"TPUB": "label",
	"TDOR": "originaldate",
	"TDRC": "date",
	"TDRL": "releasedate",
	"TSSE": "encodersettings",
	"TSOA": "albumsort",
	"TSOP": "artistsort",
	"TSOT": "titlesort",
	"WCOP": "license",
	"WOAR": "website",
	"COMM": "comment",
	"TOAL": "originalalbum",
	"TOPE": "originalartist",
	"TOFN": "originalfilename",

	// iTunes extensions
	"TCMP": "compilation",
	"TSOC": "composersort",
	"TSO2": "albumartistsort",
	"MVNM": "movement",
}

// freetextFrames maps TXXX descriptions to metadata keys.
var freetextFrames = map[string]string{
	"MusicBrainz Artist Id":             "musicbrainz_artistid",
	"MusicBrainz Album Id":              "musicbrainz_albumid",
	"MusicBrainz Album Artist Id":       "musicbrainz_albumartistid",
	"MusicBrainz Album Type":            "releasetype",
	"MusicBrainz Album Status":          "releasestatus",
	"MusicBrainz TRM Id":                "musicbrainz_trmid",
	"MusicBrainz Release Track Id":      "musicbrainz_trackid",
	"MusicBrainz Disc Id":               "musicbrainz_discid",
	"MusicBrainz Work Id":               "musicbrainz_workid",
	"MusicBrainz Release Group Id":      "musicbrainz_releasegroupid",
	"MusicBrainz Original Album Id":     "musicbrainz_originalalbumid",
	"MusicBrainz Original Artist Id":    "musicbrainz_originalartistid",
	"MusicBrainz Album Release Country": "releasecountry",
	"MusicIP PUID":                      "musicip_puid",
	"Acoustid Fingerprint":              "acoustid_fingerprint",
	"Acoustid Id":                       "acoustid_id",
	"SCRIPT":                            "script",
	"LICENSE":                           "license",
	"CATALOGNUMBER":                     "catalognumber",
	"BARCODE":                           "barcode",
	"ASIN":                              "asin",
	"MusicMagic Fingerprint":            "musicip_fingerprint",
	"ARTISTS":                           "artists",
	"DIRECTOR":                          "director",
	"WORK":                              "work",
	"Writer":                            "writer",
	"SHOWMOVEMENT":                      "showmovement",
}

// replayGainFrames maps metadata keys to the canonical TXXX description of
// freetext frames that are matched case-insensitively on load.
var replayGainFrames = map[string]string{
	"replaygain_album_gain":         "REPLAYGAIN_ALBUM_GAIN",
	"replaygain_album_peak":         "REPLAYGAIN_ALBUM_PEAK",
	"replaygain_album_range":        "REPLAYGAIN_ALBUM_RANGE",
	"replaygain_track_gain":         "REPLAYGAIN_TRACK_GAIN",
	"replaygain_track_peak":         "REPLAYGAIN_TRACK_PEAK",
	"replaygain_track_range":        "REPLAYGAIN_TRACK_RANGE",
	"replaygain_reference_loudness": "REPLAYGAIN_REFERENCE_LOUDNESS",
}

// renamedFreetext maps obsolete TXXX descriptions to their current spelling.
var renamedFreetext = map[string]string{
	"Artists": "ARTISTS",
	"Work":    "WORK",
}

// involvedRoles maps TIPL roles to metadata keys. Any other role is a
// performer credit.
var involvedRoles = map[string]string{
	"engineer": "engineer",
	"arranger": "arranger",
	"producer": "producer",
	"DJ-mix":   "djmixer",
	"mix":      "mixer",
}

// legacyFrames maps v2.3 era frames (by hash key) to their v2.4 replacement.
var legacyFrames = []struct{ from, to string }{
	{"XSOP", "TSOP"},
	{"TXXX:ALBUMARTISTSORT", "TSO2"},
	{"TXXX:COMPOSERSORT", "TSOC"},
	{"TXXX:mood", "TMOO"},
	{"TXXX:RELEASEDATE", "TDRL"},
}

// numberFrames holds the "N" or "N/M" frames and the keys they carry.
var numberFrames = []struct {
	id, number, total string
}{
	{"TRCK", "tracknumber", "totaltracks"},
	{"TPOS", "discnumber", "totaldiscs"},
	{"MVIN", "movementnumber", "movementtotal"},
}

var numberRe = regexp.MustCompile(`^(\d+)(?:/(\d+))?$`)

// unsupportedKeys are never written to ID3 tags.
var unsupportedKeys = map[string]bool{
	"r128_album_gain": true,
	"r128_track_gain": true,
}

// Keys with dedicated handling that must not fall back to TXXX.
var numberKeys = map[string]bool{
	"discnumber":     true,
	"tracknumber":    true,
	"totaldiscs":     true,
	"totaltracks":    true,
	"movementnumber": true,
	"movementtotal":  true,
}

const (
	recordingOwner = "http://musicbrainz.org"
	keyRecordingID = "musicbrainz_recordingid"
	keyRating      = "~rating"
	keyLength      = "~length"
	keyFormat      = "~format"
	escapePrefix   = "~id3:"
)

// Reverse tables, built in init.
var (
	// frameKeys is standardFrames plus aliases that are read but never
	// written under that id.
	frameKeys        map[string]string
	keyFrames        map[string]string
	keyFreetext      map[string]string
	freetextKeys     map[string]string
	replayGainKeys   map[string]string
	obsoleteFreetext map[string]string
	roleKeys         map[string]string
)

func init() {
	keyFrames = invert(standardFrames)
	frameKeys = maps.Clone(standardFrames)
	frameKeys["GRP1"] = "grouping"

	keyFreetext = invert(freetextFrames)
	freetextKeys = maps.Clone(freetextFrames)
	freetextKeys["writer"] = "writer"

	replayGainKeys = make(map[string]string, len(replayGainFrames))
	for key, desc := range replayGainFrames {
		replayGainKeys[strings.ToLower(desc)] = key
	}

	obsoleteFreetext = invert(renamedFreetext)
	roleKeys = invert(involvedRoles)
}

// invert returns the reverse of m and panics if m is not injective.
func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if prev, ok := out[v]; ok {
			panic(fmt.Sprintf("tags: %q and %q both map to %q", prev, k, v))
		}
		out[v] = k
	}
	return out
}

