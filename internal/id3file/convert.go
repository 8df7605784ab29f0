package id3file

import (
	"bytes"
	"slices"
	"strings"

	"github.com/bogem/id3v2/v2"

	"github.com/llehouerou/id3map/internal/id3frame"
)

// framesOf converts every frame of tag. Frame ids are visited in sorted
// order; frames sharing an id keep their order in the tag.
func framesOf(tag *id3v2.Tag) *id3frame.Set {
	all := tag.AllFrames()
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	set := id3frame.NewSet()
	for _, id := range ids {
		for _, f := range all[id] {
			set.Add(fromFramer(id, f))
		}
	}
	return set
}

func fromFramer(id string, f id3v2.Framer) id3frame.Frame {
	switch f := f.(type) {
	case id3v2.TextFrame:
		enc := encodingOf(f.Encoding)
		if id == "TIPL" || id == "TMCL" {
			return &id3frame.PeopleFrame{FrameID: id, Encoding: enc, People: pairCredits(splitValues(f.Text))}
		}
		return &id3frame.TextFrame{FrameID: id, Encoding: enc, Text: splitValues(f.Text)}
	case id3v2.UserDefinedTextFrame:
		return &id3frame.UserTextFrame{
			Encoding:    encodingOf(f.Encoding),
			Description: clean(f.Description),
			Text:        splitValues(f.Value),
		}
	case id3v2.CommentFrame:
		return &id3frame.CommentFrame{
			Encoding:    encodingOf(f.Encoding),
			Language:    clean(f.Language),
			Description: clean(f.Description),
			Text:        splitValues(f.Text),
		}
	case id3v2.UnsynchronisedLyricsFrame:
		return &id3frame.LyricsFrame{
			Encoding:    encodingOf(f.Encoding),
			Language:    clean(f.Language),
			Description: clean(f.ContentDescriptor),
			Text:        clean(f.Lyrics),
		}
	case id3v2.UFIDFrame:
		return &id3frame.IdentifierFrame{Owner: clean(f.OwnerIdentifier), Data: bytes.Clone(f.Identifier)}
	case id3v2.PictureFrame:
		return &id3frame.PictureFrame{
			Encoding:    encodingOf(f.Encoding),
			MimeType:    clean(f.MimeType),
			PictureType: f.PictureType,
			Description: clean(f.Description),
			Data:        bytes.Clone(f.Picture),
		}
	case id3v2.PopularimeterFrame:
		var count uint64
		if f.Counter != nil && f.Counter.IsUint64() {
			count = f.Counter.Uint64()
		}
		return &id3frame.RatingFrame{Email: clean(f.Email), Rating: f.Rating, Count: count}
	case id3v2.UnknownFrame:
		return decodeBody(id, f.Body)
	}

	// Anything else the reader decoded (chapters and the like) is kept as
	// its serialized body.
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return &id3frame.RawFrame{FrameID: id}
	}
	return decodeBody(id, buf.Bytes())
}

func encodingOf(e id3v2.Encoding) id3frame.Encoding {
	return id3frame.Encoding(e.Key)
}

// clean strips byte order marks and trailing terminators left in
// single-valued strings.
func clean(s string) string {
	return strings.TrimRight(strings.ReplaceAll(s, bom, ""), "\x00")
}
