package tags

import (
	"math"
	"strconv"
	"strings"

	"github.com/llehouerou/id3map/internal/id3frame"
	"github.com/llehouerou/id3map/internal/lyrics"
	"github.com/llehouerou/id3map/internal/metadata"
)

// LoadFrames converts a frame set into a metadata record. Frames without a
// metadata mapping are skipped; set itself is left untouched.
func (c *Codec) LoadFrames(set *id3frame.Set, info FileInfo) *Result {
	frames := set.Clone()
	upgradeLegacy(frames)

	l := &loader{
		Codec:   c,
		info:    info,
		md:      metadata.New(),
		casemap: CaseMap{},
	}
	for _, f := range frames.Frames() {
		l.load(f)
	}

	l.fixDate()
	if info.Length > 0 {
		l.md.Set(keyLength, strconv.FormatInt(info.Length.Milliseconds(), 10))
	}
	if info.Format != "" {
		l.md.Set(keyFormat, info.Format)
	}

	return &Result{Metadata: l.md, CaseMap: l.casemap}
}

// upgradeLegacy replaces frames written by old taggers with their v2.4
// equivalent unless that one is already present.
func upgradeLegacy(set *id3frame.Set) {
	for _, u := range legacyFrames {
		if !set.Has(u.from) || set.Has(u.to) {
			continue
		}
		f, _ := set.Get(u.from)
		enc, text, ok := textOf(f)
		if !ok {
			continue
		}
		set.Delete(u.from)
		set.Add(&id3frame.TextFrame{FrameID: u.to, Encoding: enc, Text: text})
	}
}

func textOf(f id3frame.Frame) (id3frame.Encoding, []string, bool) {
	switch f := f.(type) {
	case *id3frame.TextFrame:
		return f.Encoding, f.Text, true
	case *id3frame.UserTextFrame:
		return f.Encoding, f.Text, true
	}
	return 0, nil, false
}

// loader holds the state of one LoadFrames call.
type loader struct {
	*Codec
	info    FileInfo
	md      *metadata.Metadata
	casemap CaseMap
}

func (l *loader) load(f id3frame.Frame) {
	switch f := f.(type) {
	case *id3frame.TextFrame:
		l.loadText(f)
	case *id3frame.CommentFrame:
		l.loadComment(f)
	case *id3frame.URLFrame:
		if key, ok := frameKeys[f.FrameID]; ok {
			l.md.Add(key, f.URL)
		}
	case *id3frame.PeopleFrame:
		l.loadPeople(f)
	case *id3frame.UserTextFrame:
		l.loadFreetext(f)
	case *id3frame.LyricsFrame:
		key := "lyrics"
		if f.Description != "" {
			key += ":" + f.Description
		}
		l.md.Add(key, f.Text)
	case *id3frame.SyncedLyricsFrame:
		l.loadSyncedLyrics(f)
	case *id3frame.IdentifierFrame:
		if f.Owner == recordingOwner {
			l.md.Set(keyRecordingID, asciiOnly(f.Data))
		}
	case *id3frame.PictureFrame:
		l.loadPicture(f)
	case *id3frame.RatingFrame:
		if f.Email == l.ratingEmail {
			steps := float64(l.cfg.RatingSteps - 1)
			rating := math.RoundToEven(float64(f.Rating) / 255 * steps)
			l.md.Add(keyRating, strconv.Itoa(int(rating)))
		}
	case *id3frame.RawFrame:
		// no mapping, stays on disk
	}
}

func (l *loader) loadText(f *id3frame.TextFrame) {
	if key, ok := frameKeys[f.FrameID]; ok {
		l.addNonEmpty(key, f.Text)
		return
	}

	switch f.FrameID {
	case "TIT1":
		key := "grouping"
		if l.cfg.ITunesCompatibleGrouping {
			key = "work"
		}
		l.addNonEmpty(key, f.Text)
	case "TRCK", "TPOS", "MVIN":
		l.loadNumber(f)
	}
}

func (l *loader) addNonEmpty(key string, values []string) {
	for _, v := range values {
		if v != "" {
			l.md.Add(key, v)
		}
	}
}

func (l *loader) loadComment(f *id3frame.CommentFrame) {
	key := "comment"
	switch {
	case f.Language != "eng":
		key += ":" + f.Language + ":" + f.Description
	case f.Description != "":
		key += ":" + f.Description
	}
	l.addNonEmpty(key, f.Text)
}

// loadNumber splits "N" or "N/M". Anything else drops the whole frame.
func (l *loader) loadNumber(f *id3frame.TextFrame) {
	var text string
	if len(f.Text) > 0 {
		text = f.Text[0]
	}

	for _, nf := range numberFrames {
		if nf.id != f.FrameID {
			continue
		}
		m := numberRe.FindStringSubmatch(text)
		if m == nil {
			l.logger.Warn("invalid value dropped", "path", l.info.Path, "frame", f.FrameID, "value", text)
			return
		}
		l.md.Set(nf.number, m[1])
		if m[2] != "" {
			l.md.Set(nf.total, m[2])
		}
	}
}

// loadPeople maps TMCL credits to performers. TIPL and IPLS carry the
// involved people roles, but old files put performers there as well.
func (l *loader) loadPeople(f *id3frame.PeopleFrame) {
	for _, p := range f.People {
		if f.FrameID != "TMCL" {
			if key, ok := involvedRoles[p.Role]; ok && p.Name != "" {
				l.md.Add(key, p.Name)
				continue
			}
		}

		role := p.Role
		if role == id3frame.RolePerformer {
			role = ""
		}
		if role != "" {
			l.md.Add("performer:"+role, p.Name)
		} else {
			l.md.Add("performer", p.Name)
		}
	}
}

func (l *loader) loadFreetext(f *id3frame.UserTextFrame) {
	name := f.Description
	lower := strings.ToLower(name)
	if renamed, ok := renamedFreetext[name]; ok {
		name = renamed
	}

	if key, ok := replayGainKeys[lower]; ok {
		l.casemap[key] = name
		name = key
	} else if key, ok := freetextKeys[name]; ok {
		name = key
	} else if _, std := keyFrames[name]; std != isFreetextKey(name) {
		// would be saved to another frame
		name = escapePrefix + "TXXX:" + name
	}

	for _, v := range f.Text {
		l.md.Add(name, v)
	}
}

func isFreetextKey(key string) bool {
	_, ok := keyFreetext[key]
	return ok
}

func (l *loader) loadSyncedLyrics(f *id3frame.SyncedLyricsFrame) {
	if f.Type != id3frame.SyncTypeLyrics {
		l.logger.Warn("unsupported SYLT type, only lyrics are read", "path", l.info.Path, "type", f.Type)
		return
	}
	if f.Format != id3frame.SyncFormatMilliseconds {
		l.logger.Warn("unsupported SYLT format, only milliseconds are read", "path", l.info.Path, "format", f.Format)
		return
	}
	if len(f.Text) == 0 {
		return
	}

	key := "syncedlyrics"
	switch {
	case f.Language != "":
		key += ":" + f.Language
		if f.Description != "" {
			key += ":" + f.Description
		}
	case f.Description != "":
		key += "::" + f.Description
	}
	l.md.Add(key, lyrics.FormatSynced(f.Text, l.info.Length))
}

func (l *loader) loadPicture(f *id3frame.PictureFrame) {
	img, err := l.covers.Build(l.info.Path, f.ID(), f.PictureType, f.Description, f.Data)
	if err != nil {
		l.logger.Error("cannot load image", "path", l.info.Path, "description", f.Description, "error", err)
		return
	}
	l.md.Images = append(l.md.Images, img)
}

// fixDate replaces the first date with its sanitized form.
func (l *loader) fixDate() {
	dates := l.md.GetAll("date")
	if len(dates) == 0 || l.sanitizeDate == nil {
		return
	}
	if date := l.sanitizeDate(dates[0]); date != "" && date != dates[0] {
		dates[0] = date
		l.md.Set("date", dates...)
	}
}

// asciiOnly decodes b as ASCII, skipping other bytes.
func asciiOnly(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c < 0x80 {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
