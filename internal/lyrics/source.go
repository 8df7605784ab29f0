package lyrics

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotSynced is returned when LRC content carries no timestamps.
var ErrNotSynced = errors.New("lyrics have no timestamps")

// Source is LRC content read from disk, kept both raw and parsed.
type Source struct {
	Path   string
	Raw    string
	Lyrics *Lyrics
}

// SidecarPath returns the expected .lrc file path for an audio file.
func SidecarPath(audioPath string) string {
	ext := filepath.Ext(audioPath)
	return audioPath[:len(audioPath)-len(ext)] + ".lrc"
}

// LoadFile reads an LRC file. Files without any timestamped line are
// rejected with ErrNotSynced, since they cannot become a SYLT frame.
func LoadFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(path, f)
}

// Load reads LRC content from r. path is only recorded.
func Load(path string, r io.Reader) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read lyrics: %w", err)
	}
	raw := strings.ReplaceAll(string(data), "\r\n", "\n")

	parsed, err := ParseLRC(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse lyrics: %w", err)
	}
	if len(parsed.Lines) == 0 {
		return nil, ErrNotSynced
	}

	return &Source{Path: path, Raw: stripMetadata(raw), Lyrics: parsed}, nil
}

// LoadSidecar loads the .lrc file next to an audio file.
func LoadSidecar(audioPath string) (*Source, error) {
	return LoadFile(SidecarPath(audioPath))
}

// stripMetadata drops [ar:..] style header lines, which would otherwise end
// up as text of the first fragment.
func stripMetadata(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if metadataRe.MatchString(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// IsSynced returns true if the lyrics have timestamps (synced).
func (l *Lyrics) IsSynced() bool {
	if len(l.Lines) == 0 {
		return false
	}
	// Check if any line has a non-zero timestamp
	for _, line := range l.Lines {
		if line.Time > 0 {
			return true
		}
	}
	return false
}
