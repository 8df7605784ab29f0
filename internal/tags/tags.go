// Package tags translates between ID3v2 frames and the format independent
// metadata record.
//
// A Codec loads the frames of a file into a metadata.Metadata and saves a
// record back, keeping everything it has no mapping for. The translation
// tables follow the MusicBrainz Picard conventions so files tagged by either
// tool read the same.
package tags

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/id3map/internal/config"
	"github.com/llehouerou/id3map/internal/id3file"
	"github.com/llehouerou/id3map/internal/id3frame"
	"github.com/llehouerou/id3map/internal/metadata"
)

// File extensions handled by the tags package.
const (
	ExtMP3 = ".mp3"
	ExtMP2 = ".mp2"
	ExtM2A = ".m2a"
)

// Extensions lists every supported file extension.
var Extensions = []string{ExtMP3, ExtMP2, ExtM2A}

// IsSupported reports whether path has a supported extension.
func IsSupported(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// CaseMap maps a metadata key to the TXXX description it was loaded from,
// for descriptions matched case-insensitively.
type CaseMap map[string]string

// Result is the outcome of a load.
type Result struct {
	Metadata *metadata.Metadata
	// CaseMap must be handed back to Save to keep the on-disk casing.
	CaseMap CaseMap
}

// FileInfo describes the file a frame set was read from.
type FileInfo struct {
	Path   string
	Length time.Duration
	// Format is a short description such as "MPEG-1 Layer 3 - ID3v2.4".
	Format string
}

// Codec converts between frame sets and metadata records.
// It is immutable and safe for concurrent use.
type Codec struct {
	cfg          config.Settings
	encoding     id3frame.Encoding
	ratingEmail  string
	logger       hclog.Logger
	covers       CoverArtBuilder
	sanitizeDate func(string) string
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger used for dropped frames and values.
func WithLogger(logger hclog.Logger) Option {
	return func(c *Codec) {
		c.logger = logger
	}
}

// WithCoverArtBuilder replaces the default ImageDecoder.
func WithCoverArtBuilder(b CoverArtBuilder) Option {
	return func(c *Codec) {
		c.covers = b
	}
}

// WithDateSanitizer replaces SanitizeDate. The function returns an empty
// string for dates it cannot make sense of.
func WithDateSanitizer(fn func(string) string) Option {
	return func(c *Codec) {
		c.sanitizeDate = fn
	}
}

// New returns a Codec for the given settings.
func New(cfg config.Settings, opts ...Option) *Codec {
	cfg.Normalize()
	c := &Codec{
		cfg:          cfg,
		encoding:     id3frame.EncodingFromConfig(cfg.ID3v2Encoding),
		ratingEmail:  id3frame.Text(cfg.RatingUserEmail, id3frame.EncodingLatin1),
		logger:       hclog.NewNullLogger(),
		covers:       ImageDecoder{},
		sanitizeDate: SanitizeDate,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the tags of the file at path.
func (c *Codec) Load(path string) (*Result, error) {
	c.logger.Debug("loading file", "path", path)

	file, err := id3file.Read(path)
	if err != nil {
		return nil, err
	}

	return c.LoadFrames(file.Frames, FileInfo{
		Path:   path,
		Length: file.Length,
		Format: file.Format,
	}), nil
}

// Save writes md to the file at path. cm is the case map returned by the
// Load of the same file, or nil.
//
// Frames without a metadata mapping are kept. The record is validated
// before the file is touched.
func (c *Codec) Save(path string, md *metadata.Metadata, cm CaseMap) error {
	c.logger.Debug("saving file", "path", path)

	if err := md.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	frames := &id3frame.Set{}
	file, err := id3file.Read(path)
	switch {
	case errors.Is(err, id3file.ErrUnsupported):
		c.logger.Warn("existing tag cannot be read, replacing it", "path", path, "error", err)
	case err != nil:
		return err
	default:
		frames = file.Frames
	}

	c.SaveFrames(frames, md, cm)

	opts := id3file.WriteOptions{
		Version:   4,
		JoinWith:  c.cfg.ID3v23JoinWith,
		WriteV1:   c.cfg.WriteID3v1,
		RemoveAPE: c.cfg.RemoveAPEFromMP3 && IsSupported(path),
	}
	if c.cfg.WriteID3v23 {
		opts.Version = 3
	}
	return id3file.Write(path, frames, opts)
}
