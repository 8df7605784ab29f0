package id3file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/llehouerou/go-mp3"
)

// streamLength returns the decoded duration of an MP3 stream.
func streamLength(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, err
	}

	sampleRate := decoder.SampleRate()
	if sampleRate == 0 {
		return 0, errors.New("mp3: invalid sample rate")
	}

	sampleCount := max(decoder.SampleCount(), 0)

	return time.Duration(float64(sampleCount) / float64(sampleRate) * float64(time.Second)), nil
}

// containerType identifies the audio container, falling back to the file
// extension when the content is not recognized.
func containerType(path string) tag.FileType {
	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		if _, ft, err := tag.Identify(f); err == nil && ft != tag.UnknownFileType {
			return ft
		}
	}
	return tag.FileType(strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), ".")))
}

// describeFormat renders a short format description such as
// "MPEG-1 Layer 3 - ID3v2.4".
func describeFormat(ft tag.FileType, version byte, hasTag bool) string {
	name := string(ft)
	if ft == tag.MP3 {
		name = "MPEG-1 Layer 3"
	}
	if hasTag {
		name += fmt.Sprintf(" - ID3v2.%d", version)
	}
	return name
}
