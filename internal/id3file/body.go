package id3file

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/llehouerou/id3map/internal/id3frame"
	"github.com/llehouerou/id3map/internal/lyrics"
)

var errShortBody = errors.New("frame body too short")

// decodeBody turns the raw body of a frame the tag reader left undecoded
// into a typed frame. Bodies that cannot be decoded are kept as RawFrame.
func decodeBody(id string, body []byte) id3frame.Frame {
	var (
		f   id3frame.Frame
		err error
	)
	switch {
	case id == "SYLT":
		f, err = decodeSyncedLyrics(body)
	case id == "IPLS" || id == "TIPL" || id == "TMCL":
		f, err = decodePeople(id, body)
	case id3frame.IsURLID(id):
		f = &id3frame.URLFrame{FrameID: id, URL: latin1(body)}
	case id3frame.IsTextID(id):
		f, err = decodeTextBody(id, body)
	default:
		err = errors.ErrUnsupported
	}
	if err != nil {
		return &id3frame.RawFrame{FrameID: id, Data: bytes.Clone(body)}
	}
	return f
}

func readEncoding(body []byte) (id3frame.Encoding, error) {
	if len(body) < 1 {
		return 0, errShortBody
	}
	enc := id3frame.Encoding(body[0])
	if enc > id3frame.EncodingUTF8 {
		return 0, fmt.Errorf("unknown text encoding %d", body[0])
	}
	return enc, nil
}

func decodeTextBody(id string, body []byte) (*id3frame.TextFrame, error) {
	enc, err := readEncoding(body)
	if err != nil {
		return nil, err
	}
	return &id3frame.TextFrame{FrameID: id, Encoding: enc, Text: decodeStrings(body[1:], enc)}, nil
}

func decodePeople(id string, body []byte) (*id3frame.PeopleFrame, error) {
	enc, err := readEncoding(body)
	if err != nil {
		return nil, err
	}
	return &id3frame.PeopleFrame{FrameID: id, Encoding: enc, People: pairCredits(decodeStrings(body[1:], enc))}, nil
}

// pairCredits reads alternating role and name values. A missing final name
// is empty.
func pairCredits(values []string) []id3frame.Credit {
	credits := make([]id3frame.Credit, 0, (len(values)+1)/2)
	for i := 0; i < len(values); i += 2 {
		c := id3frame.Credit{Role: values[i]}
		if i+1 < len(values) {
			c.Name = values[i+1]
		}
		credits = append(credits, c)
	}
	return credits
}

func decodeSyncedLyrics(body []byte) (*id3frame.SyncedLyricsFrame, error) {
	// encoding(1) language(3) format(1) type(1) description
	if len(body) < 6 {
		return nil, errShortBody
	}
	enc, err := readEncoding(body)
	if err != nil {
		return nil, err
	}
	f := &id3frame.SyncedLyricsFrame{
		Encoding: enc,
		Language: latin1(body[1:4]),
		Format:   body[4],
		Type:     body[5],
	}
	desc, rest, ok := splitTerminated(body[6:], enc)
	if !ok {
		return nil, errShortBody
	}
	f.Description = decodeText(desc, enc)

	for len(rest) > 0 {
		text, after, ok := splitTerminated(rest, enc)
		if !ok || len(after) < 4 {
			return nil, fmt.Errorf("SYLT: %w", errShortBody)
		}
		f.Text = append(f.Text, lyrics.Sync{
			Text:   decodeText(text, enc),
			Offset: binary.BigEndian.Uint32(after[:4]),
		})
		rest = after[4:]
	}
	return f, nil
}

// encodeBody serializes the frames the tag writer has no type for. v2.3
// has no UTF-8 or UTF-16BE, so those are written as UTF-16.
func encodeBody(f id3frame.Frame, version byte) []byte {
	var buf bytes.Buffer
	switch f := f.(type) {
	case *id3frame.TextFrame:
		enc := targetEncoding(f.Encoding, version)
		buf.WriteByte(byte(enc))
		buf.Write(encodeStrings(f.Text, enc))
	case *id3frame.PeopleFrame:
		enc := targetEncoding(f.Encoding, version)
		values := make([]string, 0, 2*len(f.People))
		for _, c := range f.People {
			values = append(values, c.Role, c.Name)
		}
		buf.WriteByte(byte(enc))
		buf.Write(encodeStrings(values, enc))
	case *id3frame.SyncedLyricsFrame:
		enc := targetEncoding(f.Encoding, version)
		buf.WriteByte(byte(enc))
		buf.Write(language(f.Language))
		buf.WriteByte(f.Format)
		buf.WriteByte(f.Type)
		buf.Write(encodeText(f.Description, enc))
		buf.Write(terminator(enc))
		for _, s := range f.Text {
			buf.Write(encodeText(s.Text, enc))
			buf.Write(terminator(enc))
			buf.Write(binary.BigEndian.AppendUint32(nil, s.Offset))
		}
	case *id3frame.URLFrame:
		buf.Write(encodeText(f.URL, id3frame.EncodingLatin1))
	case *id3frame.RawFrame:
		buf.Write(f.Data)
	}
	return buf.Bytes()
}

func targetEncoding(enc id3frame.Encoding, version byte) id3frame.Encoding {
	if version == 3 && (enc == id3frame.EncodingUTF8 || enc == id3frame.EncodingUTF16BE) {
		return id3frame.EncodingUTF16
	}
	return enc
}

// language returns a three byte language code, padded with NUL.
func language(lang string) []byte {
	b := []byte{0, 0, 0}
	copy(b, encodeText(lang, id3frame.EncodingLatin1))
	return b
}
