package id3file

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/llehouerou/id3map/internal/id3frame"
)

const bom = "\uFEFF"

func textEncoding(enc id3frame.Encoding) encoding.Encoding {
	switch enc {
	case id3frame.EncodingUTF16:
		// BOM decides on read; written with a little endian BOM
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case id3frame.EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case id3frame.EncodingUTF8:
		return unicode.UTF8
	}
	return charmap.ISO8859_1
}

func terminator(enc id3frame.Encoding) []byte {
	if enc == id3frame.EncodingUTF16 || enc == id3frame.EncodingUTF16BE {
		return []byte{0, 0}
	}
	return []byte{0}
}

// decodeText converts one encoded string to UTF-8. Invalid input is decoded
// as far as possible.
func decodeText(b []byte, enc id3frame.Encoding) string {
	if len(b) == 0 {
		return ""
	}
	out, err := textEncoding(enc).NewDecoder().Bytes(b)
	if err != nil {
		out = b
	}
	return strings.ReplaceAll(string(out), bom, "")
}

// encodeText converts s for enc. Runes Latin-1 cannot hold become '?'.
func encodeText(s string, enc id3frame.Encoding) []byte {
	if enc == id3frame.EncodingLatin1 {
		s = id3frame.Text(s, enc)
	}
	if enc == id3frame.EncodingUTF8 {
		return []byte(s)
	}
	out, err := encoding.ReplaceUnsupported(textEncoding(enc).NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	if enc == id3frame.EncodingUTF16 && len(out) == 0 {
		out = []byte{0xFF, 0xFE}
	}
	return out
}

// splitTerminated returns the bytes before the first terminator of enc and
// the bytes after it. ok is false when no terminator was found, in which case
// field is all of b.
func splitTerminated(b []byte, enc id3frame.Encoding) (field, rest []byte, ok bool) {
	if len(terminator(enc)) == 1 {
		i := bytes.IndexByte(b, 0)
		if i < 0 {
			return b, nil, false
		}
		return b[:i], b[i+1:], true
	}
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			return b[:i], b[i+2:], true
		}
	}
	return b, nil, false
}

// decodeStrings decodes a run of terminated strings. A trailing empty
// string left by a final terminator is dropped.
func decodeStrings(b []byte, enc id3frame.Encoding) []string {
	var out []string
	for len(b) > 0 {
		field, rest, _ := splitTerminated(b, enc)
		out = append(out, decodeText(field, enc))
		b = rest
	}
	return out
}

// encodeStrings joins values with the terminator of enc. No terminator
// follows the last value.
func encodeStrings(values []string, enc id3frame.Encoding) []byte {
	var buf bytes.Buffer
	for i, v := range values {
		if i > 0 {
			buf.Write(terminator(enc))
		}
		buf.Write(encodeText(v, enc))
	}
	return buf.Bytes()
}

// splitValues splits text already decoded by the tag reader into its NUL
// separated values.
func splitValues(s string) []string {
	s = strings.ReplaceAll(s, bom, "")
	s = strings.TrimRight(s, "\x00")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\x00")
}

func latin1(b []byte) string {
	return decodeText(bytes.TrimRight(b, "\x00"), id3frame.EncodingLatin1)
}
