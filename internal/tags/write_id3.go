package tags

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/llehouerou/id3map/internal/id3frame"
	"github.com/llehouerou/id3map/internal/lyrics"
	"github.com/llehouerou/id3map/internal/metadata"
)

const (
	// defaultLyricsLanguage is used for new USLT frames.
	defaultLyricsLanguage = "XXX"
	itunesCommentPrefix   = "itun"
)

var commentLangRe = regexp.MustCompile(`^([a-zA-Z]{3}):(.*)$`)

// SaveFrames updates set to hold the content of md. Frames without a
// metadata mapping are kept, frames of deleted keys are removed. cm is the
// case map of the load md came from, or nil.
func (c *Codec) SaveFrames(set *id3frame.Set, md *metadata.Metadata, cm CaseMap) {
	s := &saver{Codec: c, set: set, md: md, casemap: cm}
	s.save()
}

// saver holds the state of one SaveFrames call.
type saver struct {
	*Codec
	set     *id3frame.Set
	md      *metadata.Metadata
	casemap CaseMap

	// credits collected over all keys, flushed as one frame each
	tmcl []id3frame.Credit
	tipl []id3frame.Credit
}

func (s *saver) save() {
	if s.cfg.ClearExistingTags {
		var covers []id3frame.Frame
		if s.cfg.PreserveImages {
			covers = s.set.GetAll("APIC")
		}
		s.set.Clear()
		for _, f := range covers {
			s.set.Add(f)
		}
	}
	if len(s.md.Images) > 0 {
		s.set.DelAll("APIC")
	}

	s.saveNumbers()
	s.saveImages()

	for key, values := range s.md.All() {
		s.saveKey(key, values)
	}

	if len(s.tmcl) > 0 {
		s.set.Add(&id3frame.PeopleFrame{FrameID: "TMCL", Encoding: s.encoding, People: s.tmcl})
	}
	if len(s.tipl) > 0 {
		s.set.Add(&id3frame.PeopleFrame{FrameID: "TIPL", Encoding: s.encoding, People: s.tipl})
	}

	s.removeDeleted()
}

// saveNumbers writes TRCK, TPOS and MVIN. They are always Latin-1.
func (s *saver) saveNumbers() {
	for _, nf := range numberFrames {
		if !s.md.Contains(nf.number) {
			continue
		}
		text := s.md.Get(nf.number)
		if s.md.Contains(nf.total) {
			text += "/" + s.md.Get(nf.total)
		}
		s.set.Add(&id3frame.TextFrame{
			FrameID:  nf.id,
			Encoding: id3frame.EncodingLatin1,
			Text:     []string{id3frame.Text(text, id3frame.EncodingLatin1)},
		})
	}
}

func (s *saver) saveImages() {
	descs := imageDescriptions(s.md.Images)
	for i, img := range s.md.Images {
		s.set.Add(&id3frame.PictureFrame{
			Encoding:    id3frame.EncodingLatin1,
			MimeType:    img.MimeType,
			PictureType: img.ID3Type,
			Description: id3frame.Text(descs[i], id3frame.EncodingLatin1),
			Data:        img.Data,
		})
	}
}

// imageDescriptions returns the APIC description of every image. Two APIC
// frames with the same description cannot coexist, so repeated descriptions
// get a " (n)" suffix.
func imageDescriptions(images []metadata.Image) []string {
	seen := make(map[string]int, len(images))
	descs := make([]string, len(images))
	for i, img := range images {
		desc := img.Comment
		if n := seen[desc]; n > 0 {
			if desc != "" {
				descs[i] = fmt.Sprintf("%s (%d)", desc, n)
			} else {
				descs[i] = fmt.Sprintf("(%d)", n)
			}
		} else {
			descs[i] = desc
		}
		seen[desc]++
	}
	return descs
}

func (s *saver) saveKey(name string, values []string) {
	if s.cfg.WriteID3v23 && flattens(name) {
		values = FormatSpecific(s.md, name, s.cfg)
	}
	values = id3frame.Texts(values, s.encoding)
	name = id3frame.Text(name, s.encoding)
	lower := strings.ToLower(name)

	switch {
	case !SupportsTag(name):
	case name == "performer" || strings.HasPrefix(name, "performer:"):
		role := id3frame.RolePerformer
		if _, r, ok := strings.Cut(name, ":"); ok {
			role = r
		}
		for _, v := range values {
			credit := id3frame.Credit{Role: role, Name: v}
			if s.cfg.WriteID3v23 {
				// IPLS holds every credit in v2.3
				s.tipl = append(s.tipl, credit)
			} else {
				s.tmcl = append(s.tmcl, credit)
			}
		}
	case name == "comment" || strings.HasPrefix(name, "comment:"):
		s.saveComment(name, values)
	case name == "lyrics" || strings.HasPrefix(name, "lyrics:"):
		_, desc, _ := strings.Cut(name, ":")
		lang := s.lyricsLanguage(desc)
		for _, v := range values {
			s.set.Add(&id3frame.LyricsFrame{Encoding: s.encoding, Language: lang, Description: desc, Text: v})
		}
	case name == "syncedlyrics" || strings.HasPrefix(name, "syncedlyrics:"):
		lang, desc := parseSubkey(name)
		for _, v := range values {
			text := lyrics.ParseSynced(v)
			if len(text) == 0 {
				continue
			}
			s.set.Add(&id3frame.SyncedLyricsFrame{
				Encoding:    s.encoding,
				Language:    lang,
				Description: desc,
				Format:      id3frame.SyncFormatMilliseconds,
				Type:        id3frame.SyncTypeLyrics,
				Text:        text,
			})
		}
	case roleKeys[name] != "":
		for _, v := range values {
			s.tipl = append(s.tipl, id3frame.Credit{Role: roleKeys[name], Name: v})
		}
	case name == keyRecordingID:
		s.set.Add(&id3frame.IdentifierFrame{Owner: recordingOwner, Data: []byte(values[0])})
	case name == keyRating:
		s.saveRating(values[0])
	case name == "grouping":
		id := "TIT1"
		if s.cfg.ITunesCompatibleGrouping {
			id = "GRP1"
		}
		s.set.Add(&id3frame.TextFrame{FrameID: id, Encoding: s.encoding, Text: values})
	case name == "work" && s.cfg.ITunesCompatibleGrouping:
		s.set.Add(&id3frame.TextFrame{FrameID: "TIT1", Encoding: s.encoding, Text: values})
		s.set.DelAll("TXXX:Work")
		s.set.DelAll("TXXX:WORK")
	case keyFrames[name] != "":
		s.saveStandard(name, keyFrames[name], values)
	case replayGainFrames[lower] != "":
		desc, ok := s.casemap[lower]
		if !ok {
			desc = replayGainFrames[lower]
		}
		s.set.DelAllCI("TXXX:" + desc)
		s.set.Add(s.userText(desc, values))
	case keyFreetext[name] != "":
		desc := keyFreetext[name]
		if old, ok := obsoleteFreetext[desc]; ok {
			s.set.DelAll("TXXX:" + old)
		}
		s.set.Add(s.userText(desc, values))
	case strings.HasPrefix(name, escapePrefix):
		s.saveEscaped(strings.TrimPrefix(name, escapePrefix), values)
	case !strings.HasPrefix(name, "~") && !numberKeys[name]:
		s.set.Add(s.userText(name, values))
	}
}

func (s *saver) userText(desc string, values []string) *id3frame.UserTextFrame {
	return &id3frame.UserTextFrame{Encoding: s.encoding, Description: desc, Text: values}
}

// saveComment writes COMM frames. Descriptions starting with "iTun" belong
// to iTunes, which only reads them as NUL terminated Latin-1 in English.
func (s *saver) saveComment(name string, values []string) {
	lang, desc := parseCommentKey(name)
	if !strings.HasPrefix(strings.ToLower(desc), itunesCommentPrefix) {
		s.set.Add(&id3frame.CommentFrame{Encoding: s.encoding, Language: lang, Description: desc, Text: values})
		return
	}

	text := make([]string, len(values))
	for i, v := range values {
		text[i] = v + "\x00"
	}
	s.set.DelAll("COMM:" + desc)
	s.set.Add(&id3frame.CommentFrame{
		Encoding:    id3frame.EncodingLatin1,
		Language:    "eng",
		Description: desc,
		Text:        text,
	})
}

// lyricsLanguage keeps the language of an existing USLT frame with the same
// description so the new frame replaces it.
func (s *saver) lyricsLanguage(desc string) string {
	for _, f := range s.set.GetAll("USLT") {
		if uslt, ok := f.(*id3frame.LyricsFrame); ok && uslt.Description == desc {
			return uslt.Language
		}
	}
	return defaultLyricsLanguage
}

// saveRating rescales the rating to 0-255, keeping the play count of the
// frame being replaced.
func (s *saver) saveRating(value string) {
	var count uint64
	if f, ok := s.set.Get("POPM:" + s.ratingEmail); ok {
		if popm, ok := f.(*id3frame.RatingFrame); ok {
			count = popm.Count
		}
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		s.logger.Error("invalid rating skipped", "value", value, "error", err)
		return
	}
	rating := math.RoundToEven(v * 255 / float64(s.cfg.RatingSteps-1))
	rating = min(max(rating, 0), 255)

	s.set.Add(&id3frame.RatingFrame{Email: s.ratingEmail, Rating: byte(rating), Count: count})
}

func (s *saver) saveStandard(name, id string, values []string) {
	switch {
	case id == "WCOP":
		// WCOP holds a single URL, anything else goes to TXXX:LICENSE
		desc := keyFreetext[name]
		if len(values) > 1 || !allURLs(values) {
			s.set.DelAll("WCOP")
			s.set.Add(s.userText(desc, values))
		} else {
			s.set.DelAll("TXXX:" + desc)
			s.set.Add(&id3frame.URLFrame{FrameID: id, URL: values[0]})
		}
	case id == "WOAR":
		if !allURLs(values) {
			s.logger.Warn("invalid website URL not saved", "values", values)
			return
		}
		s.set.DelAll("WOAR")
		for _, v := range values {
			s.set.Add(&id3frame.URLFrame{FrameID: id, URL: v})
		}
	case strings.HasPrefix(id, "T") || id == "MVNM":
		if s.cfg.WriteID3v23 {
			// v2.3 has no TMOO and TDRL
			switch id {
			case "TMOO":
				s.set.Add(s.userText("mood", values))
			case "TDRL":
				s.set.Add(s.userText("RELEASEDATE", values))
			}
		}
		s.set.Add(&id3frame.TextFrame{FrameID: id, Encoding: s.encoding, Text: values})
		switch id {
		case "TSOA":
			s.set.DelAll("XSOA")
		case "TSOP":
			s.set.DelAll("XSOP")
		case "TSO2":
			s.set.DelAll("TXXX:ALBUMARTISTSORT")
		}
	}
}

// saveEscaped writes a ~id3: key. rest is "TXXX:<desc>" or a text frame id.
func (s *saver) saveEscaped(rest string, values []string) {
	if desc, ok := strings.CutPrefix(rest, "TXXX:"); ok {
		s.set.Add(s.userText(desc, values))
		return
	}

	id := rest
	if len(id) > 4 {
		id = id[:4]
	}
	if !id3frame.IsTextID(id) {
		s.logger.Warn("not a text frame, value not saved", "frame", rest)
		return
	}
	s.set.Add(&id3frame.TextFrame{FrameID: id, Encoding: s.encoding, Text: values})
}

func allURLs(values []string) bool {
	for _, v := range values {
		u, err := url.Parse(v)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
	}
	return true
}

// parseCommentKey splits comment[:lang]:desc. The language defaults to
// "eng" and must be three letters.
func parseCommentKey(key string) (lang, desc string) {
	_, desc, _ = strings.Cut(key, ":")
	if m := commentLangRe.FindStringSubmatch(desc); m != nil {
		return m[1], m[2]
	}
	return "eng", desc
}

// parseSubkey splits name[:lang[:desc]].
func parseSubkey(key string) (lang, desc string) {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) > 1 {
		lang = parts[1]
	}
	if len(parts) > 2 {
		desc = parts[2]
	}
	return lang, desc
}
