// Package id3file reads and writes the ID3v2 frames of audio files.
//
// Frames are exchanged as an id3frame.Set in their v2.4 form: v2.3 tags are
// upgraded on read and converted back on write when v2.3 output is asked
// for. The ID3v1 trailer and APEv2 tags are handled here too.
package id3file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/bogem/id3v2/v2"

	"github.com/llehouerou/id3map/internal/id3frame"
)

// ErrUnsupported is returned for tags that cannot be read, such as ID3v2.2
// or a corrupt header.
var ErrUnsupported = errors.New("unsupported ID3 tag")

const id3Magic = "ID3"

// File is the tag content and stream properties of an audio file.
type File struct {
	Frames *id3frame.Set
	// Version is the major version of the tag on disk (3 or 4).
	Version byte
	// HasTag is false when the file carries no ID3v2 frames.
	HasTag bool
	Length time.Duration
	Format string
}

// WriteOptions control how a frame set is stored.
type WriteOptions struct {
	// Version is 3 or 4. Anything else writes v2.4.
	Version byte
	// JoinWith joins multi-valued text frames in v2.3.
	JoinWith  string
	WriteV1   bool
	RemoveAPE bool
}

// Read returns the frames of the file at path. The stream length is zero
// when the audio cannot be decoded.
func Read(path string) (*File, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, openError(path, err)
	}
	defer tag.Close()

	file := &File{
		Frames:  framesOf(tag),
		Version: tag.Version(),
		HasTag:  tag.Count() > 0,
	}
	if file.Version == 3 {
		upgradeToV24(file.Frames)
	}

	ft := containerType(path)
	file.Format = describeFormat(ft, file.Version, file.HasTag)
	if length, err := streamLength(path); err == nil {
		file.Length = length
	}
	return file, nil
}

func openError(path string, err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("open file: %w", err)
	}
	return fmt.Errorf("%s: %w: %w", path, ErrUnsupported, err)
}

// Write replaces all ID3v2 frames of the file at path with set.
func Write(path string, set *id3frame.Set, opts WriteOptions) error {
	version := opts.Version
	if version != 3 {
		version = 4
	}

	// Built from the v2.4 frames, before TDRC becomes TYER
	var v1 []byte
	if opts.WriteV1 {
		v1 = buildID3v1(set)
	}

	frames := set.Clone()
	if version == 3 {
		downgradeToV23(frames, opts.JoinWith)
	}

	if err := saveTag(path, frames, version); err != nil {
		return err
	}

	if opts.RemoveAPE {
		// Best effort
		_ = StripAPE(path)
	}

	return updateID3v1(path, v1)
}

func saveTag(path string, frames *id3frame.Set, version byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: false})
	if errors.Is(err, id3v2.ErrUnsupportedVersion) {
		// ID3v2.2 or older tags - strip them and retry
		if stripErr := stripID3v2Tag(path); stripErr != nil {
			return fmt.Errorf("strip unsupported ID3v2.2 tag: %w", stripErr)
		}
		tag, err = id3v2.Open(path, id3v2.Options{Parse: false})
	}
	if err != nil {
		return openError(path, err)
	}
	defer tag.Close()

	tag.SetVersion(version)
	tag.DeleteAllFrames()
	for _, f := range frames.Frames() {
		tag.AddFrame(f.ID(), newFramer(f, version))
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}

// stripID3v2Tag removes the ID3v2 tag from the start of a file.
func stripID3v2Tag(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	if len(data) < 10 || string(data[:3]) != id3Magic {
		return nil
	}

	// synchsafe size, header not included
	size := int(data[6])<<21 | int(data[7])<<14 | int(data[8])<<7 | int(data[9])
	tagSize := size + 10

	if data[5]&0x10 != 0 {
		tagSize += 10
	}

	if tagSize > len(data) {
		return fmt.Errorf("ID3v2 tag size (%d) exceeds file size (%d)", tagSize, len(data))
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	if err := os.WriteFile(path, data[tagSize:], info.Mode()); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
