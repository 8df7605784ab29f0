package tags

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/llehouerou/id3map/internal/metadata"
)

// ErrInvalidImage is returned for picture data that is not a known image.
var ErrInvalidImage = errors.New("invalid image")

// MIME types of supported images.
const (
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
	mimeGIF  = "image/gif"
)

// ID3 picture types with a name of their own. Every other type is "other".
var pictureTypes = map[byte]string{
	3: "front",
	4: "back",
	5: "booklet",
	6: "medium",
}

// CoverArtBuilder turns the content of an APIC frame into an image.
type CoverArtBuilder interface {
	Build(path, frameID string, id3Type byte, desc string, data []byte) (metadata.Image, error)
}

// ImageDecoder is the default CoverArtBuilder. It accepts JPEG, PNG and
// GIF data and reads the image dimensions.
type ImageDecoder struct{}

// Build validates data and returns the image it holds.
func (ImageDecoder) Build(path, frameID string, id3Type byte, desc string, data []byte) (metadata.Image, error) {
	if len(data) == 0 {
		return metadata.Image{}, fmt.Errorf("%w: no data", ErrInvalidImage)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return metadata.Image{}, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	return metadata.Image{
		Source:   path,
		FrameID:  frameID,
		Types:    TypesFromID3(id3Type),
		ID3Type:  id3Type,
		Comment:  desc,
		MimeType: detectMimeType(data, format),
		Width:    cfg.Width,
		Height:   cfg.Height,
		Data:     data,
	}, nil
}

// TypesFromID3 returns the picture type names of an ID3 picture type.
func TypesFromID3(id3Type byte) []string {
	if name, ok := pictureTypes[id3Type]; ok {
		return []string{name}
	}
	return []string{"other"}
}

// ID3FromTypes returns the ID3 picture type for a list of type names.
// The first named type wins; anything else is 0 (other).
func ID3FromTypes(types []string) byte {
	for _, t := range types {
		for id3Type, name := range pictureTypes {
			if name == t {
				return id3Type
			}
		}
	}
	return 0
}

func detectMimeType(data []byte, format string) string {
	switch contentType := http.DetectContentType(data); contentType {
	case mimeJPEG, mimePNG, mimeGIF:
		return contentType
	}
	return "image/" + format
}

// Common cover art filenames to look for in album folders.
var coverArtFilenames = []string{
	"cover.jpg", "cover.jpeg", "cover.png",
	"folder.jpg", "folder.jpeg", "folder.png",
	"album.jpg", "album.jpeg", "album.png",
	"front.jpg", "front.jpeg", "front.png",
	"artwork.jpg", "artwork.jpeg", "artwork.png",
}

// FindFolderArt returns the path of the first common cover art file in dir.
func FindFolderArt(dir string) (string, bool) {
	for _, filename := range coverArtFilenames {
		for _, name := range []string{filename, strings.ToUpper(filename)} {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
				return p, true
			}
		}
	}
	return "", false
}

// LoadImageFile reads an image file to be attached as a picture of the
// given types.
func LoadImageFile(path string, types []string, desc string) (metadata.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return metadata.Image{}, fmt.Errorf("read image: %w", err)
	}
	img, err := ImageDecoder{}.Build("", "APIC", ID3FromTypes(types), desc, data)
	if err != nil {
		return metadata.Image{}, fmt.Errorf("%s: %w", path, err)
	}
	if len(types) > 0 {
		img.Types = types
	}
	return img, nil
}
