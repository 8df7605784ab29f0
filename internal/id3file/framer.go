package id3file

import (
	"io"
	"math/big"
	"strings"

	"github.com/bogem/id3v2/v2"

	"github.com/llehouerou/id3map/internal/id3frame"
)

var tagEncodings = [...]id3v2.Encoding{
	id3frame.EncodingLatin1:  id3v2.EncodingISO,
	id3frame.EncodingUTF16:   id3v2.EncodingUTF16,
	id3frame.EncodingUTF16BE: id3v2.EncodingUTF16BE,
	id3frame.EncodingUTF8:    id3v2.EncodingUTF8,
}

// newFramer returns the tag writer frame for f in the given major version.
// Frames the tag writer does not model, and text frames it reads back as
// unknown frames, are handed over as an encoded body.
func newFramer(f id3frame.Frame, version byte) id3v2.Framer {
	switch f := f.(type) {
	case *id3frame.TextFrame:
		if !strings.HasPrefix(f.FrameID, "T") {
			break
		}
		enc := targetEncoding(f.Encoding, version)
		return id3v2.TextFrame{Encoding: tagEncoding(enc), Text: joinText(f.Text, enc)}
	case *id3frame.UserTextFrame:
		enc := targetEncoding(f.Encoding, version)
		return id3v2.UserDefinedTextFrame{
			Encoding:    tagEncoding(enc),
			Description: id3frame.Text(f.Description, enc),
			Value:       joinText(f.Text, enc),
		}
	case *id3frame.CommentFrame:
		enc := targetEncoding(f.Encoding, version)
		return id3v2.CommentFrame{
			Encoding:    tagEncoding(enc),
			Language:    string(language(f.Language)),
			Description: id3frame.Text(f.Description, enc),
			Text:        joinText(f.Text, enc),
		}
	case *id3frame.LyricsFrame:
		enc := targetEncoding(f.Encoding, version)
		return id3v2.UnsynchronisedLyricsFrame{
			Encoding:          tagEncoding(enc),
			Language:          string(language(f.Language)),
			ContentDescriptor: id3frame.Text(f.Description, enc),
			Lyrics:            id3frame.Text(f.Text, enc),
		}
	case *id3frame.PictureFrame:
		enc := targetEncoding(f.Encoding, version)
		return id3v2.PictureFrame{
			Encoding:    tagEncoding(enc),
			MimeType:    f.MimeType,
			PictureType: f.PictureType,
			Description: id3frame.Text(f.Description, enc),
			Picture:     f.Data,
		}
	case *id3frame.RatingFrame:
		return id3v2.PopularimeterFrame{
			Email:   f.Email,
			Rating:  f.Rating,
			Counter: new(big.Int).SetUint64(f.Count),
		}
	case *id3frame.IdentifierFrame:
		return id3v2.UFIDFrame{OwnerIdentifier: f.Owner, Identifier: f.Data}
	}
	return bodyFramer{key: f.HashKey(), body: encodeBody(f, version)}
}

func tagEncoding(enc id3frame.Encoding) id3v2.Encoding {
	if int(enc) < len(tagEncodings) {
		return tagEncodings[enc]
	}
	return id3v2.EncodingUTF8
}

// joinText joins values with NUL. The tag writer fails on runes Latin-1
// cannot hold, so those become '?' first.
func joinText(values []string, enc id3frame.Encoding) string {
	return strings.Join(id3frame.Texts(values, enc), "\x00")
}

// bodyFramer hands an already encoded frame body to the tag writer.
type bodyFramer struct {
	key  string
	body []byte
}

var _ id3v2.Framer = bodyFramer{}

func (bf bodyFramer) Size() int {
	return len(bf.body)
}

// UniqueIdentifier keeps frames that may repeat apart inside one sequence.
func (bf bodyFramer) UniqueIdentifier() string {
	return bf.key
}

func (bf bodyFramer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bf.body)
	return int64(n), err
}
