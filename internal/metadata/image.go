package metadata

// Image is a picture attached to a record.
type Image struct {
	// Source is the file the image was read from, empty for new images.
	Source string
	// FrameID is the tag frame the image came from (APIC for ID3).
	FrameID string
	// Types are the named picture types, e.g. "front" or "booklet".
	Types    []string
	ID3Type  byte
	Comment  string
	MimeType string
	Width    int
	Height   int
	Data     []byte
}

// IsFront reports whether the image is marked as front cover.
func (img Image) IsFront() bool {
	for _, t := range img.Types {
		if t == "front" {
			return true
		}
	}
	return false
}
