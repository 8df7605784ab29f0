// Package id3frame models decoded ID3v2 frames as a closed set of typed kinds
// and keeps them in an ordered set with hash-key semantics.
//
// A frame's hash key identifies which frames may coexist in one tag: adding a
// frame whose hash key is already present replaces the old frame. Text frames
// are keyed by frame id alone, comment and lyrics frames by description and
// language, pictures by description, and so on.
package id3frame

import (
	"fmt"
	"hash/fnv"

	"github.com/llehouerou/id3map/internal/lyrics"
)

// Frame is one decoded ID3v2 frame. The set of implementations is closed.
type Frame interface {
	// ID returns the four character frame identifier.
	ID() string
	// HashKey returns the key under which the frame is stored in a Set.
	HashKey() string

	frame()
}

// Credit is one (role, name) pair of a people list frame.
type Credit struct {
	Role string
	Name string
}

// RolePerformer is the reserved role meaning "no specific role".
const RolePerformer = "performer"

// SYLT discriminants accepted by this package's consumers.
const (
	SyncFormatMilliseconds byte = 2
	SyncTypeLyrics         byte = 1
)

// TextFrame is a T*** text information frame (also GRP1, MVNM, MVIN and the
// iTunes X*** sort frames).
type TextFrame struct {
	FrameID  string
	Encoding Encoding
	Text     []string
}

// UserTextFrame is a TXXX user defined text frame.
type UserTextFrame struct {
	Encoding    Encoding
	Description string
	Text        []string
}

// PeopleFrame is a TMCL, TIPL or IPLS people list frame.
type PeopleFrame struct {
	FrameID  string
	Encoding Encoding
	People   []Credit
}

// CommentFrame is a COMM frame.
type CommentFrame struct {
	Encoding    Encoding
	Language    string
	Description string
	Text        []string
}

// LyricsFrame is a USLT unsynchronised lyrics frame.
type LyricsFrame struct {
	Encoding    Encoding
	Language    string
	Description string
	Text        string
}

// SyncedLyricsFrame is a SYLT synchronised lyrics frame.
type SyncedLyricsFrame struct {
	Encoding    Encoding
	Language    string
	Description string
	Format      byte
	Type        byte
	Text        []lyrics.Sync
}

// IdentifierFrame is a UFID unique file identifier frame.
type IdentifierFrame struct {
	Owner string
	Data  []byte
}

// PictureFrame is an APIC attached picture frame.
type PictureFrame struct {
	Encoding    Encoding
	MimeType    string
	PictureType byte
	Description string
	Data        []byte
}

// RatingFrame is a POPM popularimeter frame.
type RatingFrame struct {
	Email  string
	Rating byte
	Count  uint64
}

// URLFrame is a W*** URL link frame (WXXX excluded).
type URLFrame struct {
	FrameID string
	URL     string
}

// RawFrame is any frame without a dedicated kind. Its body is kept verbatim.
type RawFrame struct {
	FrameID string
	Data    []byte
}

func (f *TextFrame) ID() string         { return f.FrameID }
func (f *UserTextFrame) ID() string     { return "TXXX" }
func (f *PeopleFrame) ID() string       { return f.FrameID }
func (f *CommentFrame) ID() string      { return "COMM" }
func (f *LyricsFrame) ID() string       { return "USLT" }
func (f *SyncedLyricsFrame) ID() string { return "SYLT" }
func (f *IdentifierFrame) ID() string   { return "UFID" }
func (f *PictureFrame) ID() string      { return "APIC" }
func (f *RatingFrame) ID() string       { return "POPM" }
func (f *URLFrame) ID() string          { return f.FrameID }
func (f *RawFrame) ID() string          { return f.FrameID }

func (f *TextFrame) HashKey() string     { return f.FrameID }
func (f *UserTextFrame) HashKey() string { return "TXXX:" + f.Description }
func (f *PeopleFrame) HashKey() string   { return f.FrameID }
func (f *CommentFrame) HashKey() string {
	return "COMM:" + f.Description + ":" + f.Language
}

func (f *LyricsFrame) HashKey() string {
	return "USLT:" + f.Description + ":" + f.Language
}

func (f *SyncedLyricsFrame) HashKey() string {
	return "SYLT:" + f.Description + ":" + f.Language
}
func (f *IdentifierFrame) HashKey() string { return "UFID:" + f.Owner }
func (f *PictureFrame) HashKey() string    { return "APIC:" + f.Description }
func (f *RatingFrame) HashKey() string     { return "POPM:" + f.Email }

// HashKey of WCOM and WOAR includes the URL since both may repeat.
func (f *URLFrame) HashKey() string {
	if f.FrameID == "WCOM" || f.FrameID == "WOAR" {
		return f.FrameID + ":" + f.URL
	}
	return f.FrameID
}

func (f *RawFrame) HashKey() string {
	h := fnv.New32a()
	_, _ = h.Write(f.Data)
	return fmt.Sprintf("%s:%08x", f.FrameID, h.Sum32())
}

func (*TextFrame) frame()         {}
func (*UserTextFrame) frame()     {}
func (*PeopleFrame) frame()       {}
func (*CommentFrame) frame()      {}
func (*LyricsFrame) frame()       {}
func (*SyncedLyricsFrame) frame() {}
func (*IdentifierFrame) frame()   {}
func (*PictureFrame) frame()      {}
func (*RatingFrame) frame()       {}
func (*URLFrame) frame()          {}
func (*RawFrame) frame()          {}

// IsTextID reports whether id names a frame carried as a plain text frame.
func IsTextID(id string) bool {
	if !ValidID(id) {
		return false
	}
	switch id {
	case "TXXX", "TIPL", "TMCL":
		return false
	case "GRP1", "MVNM", "MVIN":
		return true
	}
	return id[0] == 'T' || id[0] == 'X'
}

// IsURLID reports whether id names a URL link frame with a single URL body.
func IsURLID(id string) bool {
	return ValidID(id) && id[0] == 'W' && id != "WXXX"
}

// ValidID reports whether id is a well formed four character frame id.
func ValidID(id string) bool {
	if len(id) != 4 {
		return false
	}
	for i := range 4 {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
