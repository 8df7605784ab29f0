package id3file

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/llehouerou/id3map/internal/id3frame"
)

const (
	id3v1Size      = 128
	id3v1Magic     = "TAG"
	apeFooterSize  = 32
	apeMagic       = "APETAGEX"
	apeHasHeader   = 1 << 31
	id3v1NoGenre   = 255
	id3v1MaxGenres = 192
)

// buildID3v1 renders the ID3v1.1 trailer for a frame set.
func buildID3v1(set *id3frame.Set) []byte {
	b := make([]byte, id3v1Size)
	copy(b, id3v1Magic)
	copy(b[3:33], v1Field(textOf(set, "TIT2"), 30))
	copy(b[33:63], v1Field(textOf(set, "TPE1"), 30))
	copy(b[63:93], v1Field(textOf(set, "TALB"), 30))
	copy(b[93:97], v1Field(textOf(set, "TDRC"), 4))
	copy(b[97:125], v1Field(commentOf(set), 28))

	if track := textOf(set, "TRCK"); track != "" {
		track, _, _ = strings.Cut(track, "/")
		if n, err := strconv.Atoi(track); err == nil && n > 0 && n < 256 {
			b[126] = byte(n)
		}
	}

	b[127] = id3v1NoGenre
	genre := strings.Trim(textOf(set, "TCON"), "()")
	if n, err := strconv.Atoi(genre); err == nil && n >= 0 && n < id3v1MaxGenres {
		b[127] = byte(n)
	}
	return b
}

func v1Field(s string, size int) []byte {
	b := encodeText(s, id3frame.EncodingLatin1)
	if len(b) > size {
		b = b[:size]
	}
	return b
}

func textOf(set *id3frame.Set, id string) string {
	if f, ok := set.Get(id); ok {
		return firstText(f)
	}
	return ""
}

func commentOf(set *id3frame.Set) string {
	for _, f := range set.GetAll("COMM") {
		if c, ok := f.(*id3frame.CommentFrame); ok && c.Description == "" && len(c.Text) > 0 {
			return c.Text[0]
		}
	}
	return ""
}

// updateID3v1 drops any ID3v1 trailer of the file at path and, when v1 is
// not nil, appends it instead.
func updateID3v1(path string, v1 []byte) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if end, ok := id3v1Start(f, size); ok {
		size = end
		if err := f.Truncate(size); err != nil {
			return fmt.Errorf("truncate ID3v1: %w", err)
		}
	}
	if v1 == nil {
		return nil
	}
	if _, err := f.WriteAt(v1, size); err != nil {
		return fmt.Errorf("write ID3v1: %w", err)
	}
	return nil
}

// id3v1Start returns the offset of an ID3v1 trailer ending at size.
func id3v1Start(r io.ReaderAt, size int64) (int64, bool) {
	if size < id3v1Size {
		return 0, false
	}
	magic := make([]byte, len(id3v1Magic))
	if _, err := r.ReadAt(magic, size-id3v1Size); err != nil {
		return 0, false
	}
	return size - id3v1Size, string(magic) == id3v1Magic
}

var errNoAPE = errors.New("no APEv2 tag")

// StripAPE removes an APEv2 tag found at the end of the file or right before
// its ID3v1 trailer.
func StripAPE(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	end := int64(len(data))
	if start, ok := id3v1Start(bytes.NewReader(data), end); ok {
		end = start
	}
	if end < apeFooterSize {
		return errNoAPE
	}
	footer := data[end-apeFooterSize : end]
	if string(footer[:8]) != apeMagic {
		return errNoAPE
	}

	// size covers items and footer, the header is extra
	tagSize := int64(binary.LittleEndian.Uint32(footer[12:16]))
	if binary.LittleEndian.Uint32(footer[20:24])&apeHasHeader != 0 {
		tagSize += apeFooterSize
	}
	start := end - tagSize
	if start < 0 {
		return fmt.Errorf("APEv2 tag size (%d) exceeds file size (%d)", tagSize, len(data))
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	out := append(data[:start:start], data[end:]...)
	if err := os.WriteFile(path, out, info.Mode()); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
