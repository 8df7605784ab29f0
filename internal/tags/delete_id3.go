package tags

import (
	"slices"
	"strings"

	"github.com/llehouerou/id3map/internal/id3frame"
)

// removeDeleted drops the frames of every key deleted from the record.
// Keys without a frame on disk are ignored.
func (s *saver) removeDeleted() {
	for _, name := range s.md.Deleted() {
		s.removeKey(name)
	}
}

func (s *saver) removeKey(name string) {
	lower := strings.ToLower(name)

	switch {
	case name == "performer":
		s.removeCredits(func(role string) bool {
			return role == id3frame.RolePerformer || role == ""
		}, "TMCL", "TIPL", "IPLS")
	case strings.HasPrefix(name, "performer:"):
		_, role, _ := strings.Cut(name, ":")
		s.removeCredits(func(r string) bool { return r == role }, "TMCL", "TIPL", "IPLS")
	case name == "comment" || strings.HasPrefix(name, "comment:"):
		lang, desc := parseCommentKey(name)
		s.set.DeleteFunc(func(f id3frame.Frame) bool {
			c, ok := f.(*id3frame.CommentFrame)
			return ok && c.Description == desc && c.Language == lang
		})
	case name == "lyrics" || strings.HasPrefix(name, "lyrics:"):
		_, desc, _ := strings.Cut(name, ":")
		s.set.DeleteFunc(func(f id3frame.Frame) bool {
			l, ok := f.(*id3frame.LyricsFrame)
			return ok && l.Description == desc
		})
	case name == "syncedlyrics" || strings.HasPrefix(name, "syncedlyrics:"):
		lang, desc := parseSubkey(name)
		s.set.DeleteFunc(func(f id3frame.Frame) bool {
			l, ok := f.(*id3frame.SyncedLyricsFrame)
			return ok && l.Description == desc && l.Language == lang && l.Type == id3frame.SyncTypeLyrics
		})
	case roleKeys[name] != "":
		role := roleKeys[name]
		s.removeCredits(func(r string) bool { return r == role }, "TIPL", "IPLS")
	case name == keyRecordingID:
		s.set.Delete("UFID:" + recordingOwner)
	case name == "license":
		s.set.DelAll(keyFrames[name])
		s.set.DelAll("TXXX:" + keyFreetext[name])
	case name == keyRating:
		s.set.Delete("POPM:" + s.ratingEmail)
	case name == "grouping":
		s.set.DelAll("GRP1")
		if !s.cfg.ITunesCompatibleGrouping {
			s.set.DelAll("TIT1")
		}
	case name == "work" && s.cfg.ITunesCompatibleGrouping:
		s.set.DelAll("TIT1")
		s.set.DelAll("TXXX:WORK")
		s.set.DelAll("TXXX:Work")
	case keyFrames[name] != "":
		s.set.DelAll(keyFrames[name])
	case replayGainFrames[lower] != "":
		s.set.DelAllCI("TXXX:" + replayGainFrames[lower])
	case keyFreetext[name] != "":
		desc := keyFreetext[name]
		s.set.DelAll("TXXX:" + desc)
		if old, ok := obsoleteFreetext[desc]; ok {
			s.set.DelAll("TXXX:" + old)
		}
	case strings.HasPrefix(name, escapePrefix):
		s.set.DelAll(strings.TrimPrefix(name, escapePrefix))
	case numberKeys[name]:
		// totals are dropped by rewriting the number frame
		for _, nf := range numberFrames {
			if nf.number == name {
				s.set.Delete(nf.id)
			}
		}
	default:
		s.set.DelAll("TXXX:" + name)
	}
}

// removeCredits drops the credits whose role matches from the people list
// frames with the given ids. Frames left without credits are removed.
func (s *saver) removeCredits(match func(role string) bool, ids ...string) {
	for _, f := range s.set.Frames() {
		p, ok := f.(*id3frame.PeopleFrame)
		if !ok || !slices.Contains(ids, p.FrameID) {
			continue
		}
		people := slices.DeleteFunc(slices.Clone(p.People), func(c id3frame.Credit) bool {
			return match(c.Role)
		})
		if len(people) == len(p.People) {
			continue
		}
		if len(people) == 0 {
			s.set.Delete(p.HashKey())
			continue
		}
		updated := *p
		updated.People = people
		s.set.Add(&updated)
	}
}
