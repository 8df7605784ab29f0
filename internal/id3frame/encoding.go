package id3frame

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Encoding is the text encoding byte of an ID3v2 frame.
type Encoding byte

// Text encodings defined by ID3v2.4. UTF16BE and UTF8 are not valid in v2.3.
const (
	EncodingLatin1  Encoding = 0
	EncodingUTF16   Encoding = 1
	EncodingUTF16BE Encoding = 2
	EncodingUTF8    Encoding = 3
)

// Replacement for runes Latin-1 cannot represent.
const latin1Substitute = '?'

// EncodingFromConfig maps the id3v2_encoding setting to an Encoding.
// Anything other than "utf-8" or "utf-16" selects Latin-1.
func EncodingFromConfig(name string) Encoding {
	switch strings.ToLower(name) {
	case "utf-8":
		return EncodingUTF8
	case "utf-16":
		return EncodingUTF16
	}
	return EncodingLatin1
}

func (e Encoding) String() string {
	switch e {
	case EncodingLatin1:
		return "latin1"
	case EncodingUTF16:
		return "utf-16"
	case EncodingUTF16BE:
		return "utf-16be"
	case EncodingUTF8:
		return "utf-8"
	}
	return "unknown"
}

// Text returns s reduced to the code points representable in enc.
// Only Latin-1 is lossy; every other encoding returns s unchanged.
func Text(s string, enc Encoding) string {
	if enc != EncodingLatin1 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if _, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			b.WriteRune(r)
		} else {
			b.WriteRune(latin1Substitute)
		}
	}
	return b.String()
}

// Texts applies Text to every value.
func Texts(values []string, enc Encoding) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = Text(v, enc)
	}
	return out
}
