package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/id3map/internal/metadata"
)

// createMinimalMP3 creates a minimal valid MP3 file for testing.
func createMinimalMP3(t *testing.T, path string) {
	t.Helper()
	// MP3 frame header (MPEG1 Layer3, 128kbps, 44100Hz, stereo) + padding
	mp3Frame := make([]byte, 417)
	mp3Frame[0] = 0xff
	mp3Frame[1] = 0xfb
	mp3Frame[2] = 0x90
	if err := os.WriteFile(path, mp3Frame, 0o600); err != nil {
		t.Fatalf("failed to create test MP3: %v", err)
	}
}

// run executes the CLI with an empty config file and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func newMP3(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.mp3")
	createMinimalMP3(t, path)
	return path
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		args    []string
		want    []assignment
		wantErr bool
	}{
		{[]string{"title=Intro"}, []assignment{{"title", "Intro"}}, false},
		{[]string{"comment:eng:note=a=b"}, []assignment{{"comment:eng:note", "a=b"}}, false},
		{[]string{"title="}, []assignment{{"title", ""}}, false},
		{[]string{"title"}, nil, true},
		{[]string{"=value"}, nil, true},
	}

	for _, tt := range tests {
		got, err := parseAssignments(tt.args)
		if tt.wantErr {
			assert.Error(t, err, "%v", tt.args)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestApplyAssignments(t *testing.T) {
	md := metadata.New()
	md.Set("artist", "Old")
	md.Set("album", "Kept")

	applyAssignments(md, []assignment{{"artist", "A"}, {"artist", "B"}, {"title", "T"}})

	assert.Equal(t, []string{"A", "B"}, md.GetAll("artist"))
	assert.Equal(t, []string{"T"}, md.GetAll("title"))
	assert.Equal(t, []string{"Kept"}, md.GetAll("album"))
}

func TestSetAndShow(t *testing.T) {
	path := newMP3(t)

	_, err := run(t, "set", path, "title=Intro", "artist=A", "artist=B",
		"tracknumber=1", "totaltracks=12", "performer:guitar=Jimmy")
	require.NoError(t, err)

	out, err := run(t, "show", path)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, path, lines[0])
	assert.Contains(t, out, "Intro")
	assert.Contains(t, out, "performer:guitar  Jimmy")
	assert.Contains(t, out, "~format")
	assert.Regexp(t, `(?m)^  artist\s+A$`, out)
	assert.Regexp(t, `(?m)^\s+B$`, out)
	assert.Regexp(t, `(?m)^  totaltracks\s+12$`, out)
	assert.Regexp(t, `(?m)^  \d+ keys, 0 images$`, out)
}

func TestSetCover(t *testing.T) {
	path := newMP3(t)
	cover := filepath.Join(filepath.Dir(path), "cover.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 2))))
	require.NoError(t, os.WriteFile(cover, buf.Bytes(), 0o600))

	_, err := run(t, "set", path, "--folder-art")
	require.NoError(t, err)

	out, err := run(t, "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, "image 1: front image/png 3x2")
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func TestSetCoverReplacesFront(t *testing.T) {
	path := newMP3(t)
	dir := filepath.Dir(path)
	writePNG(t, filepath.Join(dir, "old.png"), 3, 2)
	writePNG(t, filepath.Join(dir, "back.png"), 4, 4)
	writePNG(t, filepath.Join(dir, "new.png"), 5, 5)

	_, err := run(t, "set", path, "--cover", filepath.Join(dir, "old.png"))
	require.NoError(t, err)
	_, err = run(t, "set", path, "--cover", filepath.Join(dir, "back.png"), "--cover-type", "back")
	require.NoError(t, err)
	_, err = run(t, "set", path, "--cover", filepath.Join(dir, "new.png"))
	require.NoError(t, err)

	out, err := run(t, "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, "image 1: front image/png 5x5")
	assert.Contains(t, out, "image 2: back image/png 4x4")
	assert.NotContains(t, out, "3x2")
	assert.Contains(t, out, " 2 images\n")
}

func TestSetCoverMissing(t *testing.T) {
	path := newMP3(t)

	_, err := run(t, "set", path, "--folder-art")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to load cover art")
}

func TestSetInvalidAssignment(t *testing.T) {
	path := newMP3(t)

	_, err := run(t, "set", path, "title")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to parse value")
}

func TestSetInvalidValue(t *testing.T) {
	path := newMP3(t)

	_, err := run(t, "set", path, "tracknumber=three")

	require.ErrorIs(t, err, metadata.ErrInvalidValue)
	assert.Contains(t, err.Error(), "Failed to write tags")
}

func TestDelete(t *testing.T) {
	path := newMP3(t)
	_, err := run(t, "set", path, "title=Intro", "album=Album", "comment:note=hello")
	require.NoError(t, err)

	_, err = run(t, "delete", path, "album", "comment:note")
	require.NoError(t, err)

	out, err := run(t, "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Intro")
	assert.NotContains(t, out, "Album")
	assert.NotContains(t, out, "hello")
}

func TestCopy(t *testing.T) {
	src := newMP3(t)
	dst := newMP3(t)
	_, err := run(t, "set", src, "title=Source", "musicbrainz_albumid=abc")
	require.NoError(t, err)
	_, err = run(t, "set", dst, "album=Destination")
	require.NoError(t, err)

	_, err = run(t, "copy", src, dst)
	require.NoError(t, err)
	out, err := run(t, "show", dst)
	require.NoError(t, err)
	assert.Contains(t, out, "Source")
	assert.Contains(t, out, "musicbrainz_albumid")
	assert.Contains(t, out, "Destination")

	_, err = run(t, "copy", "--clear", src, dst)
	require.NoError(t, err)
	out, err = run(t, "show", dst)
	require.NoError(t, err)
	assert.NotContains(t, out, "Destination")
}

func TestLyricsImportAndShow(t *testing.T) {
	path := newMP3(t)
	lrc := filepath.Join(filepath.Dir(path), "song.lrc")
	require.NoError(t, os.WriteFile(lrc, []byte("[ar:Someone]\n[00:01.00]First line\n[00:04.50]Second line\n"), 0o600))

	out, err := run(t, "lyrics", path, "--sidecar", "--lang", "fre")
	require.NoError(t, err)
	assert.Equal(t, "imported 2 lines into syncedlyrics:fre\n", out)

	out, err = run(t, "lyrics", path, "--at", "5s")
	require.NoError(t, err)
	assert.Contains(t, out, "syncedlyrics:fre:")
	assert.Contains(t, out, "  [00:01.000] First line")
	assert.Contains(t, out, "> [00:04.500] Second line")
}

func TestLyricsNone(t *testing.T) {
	path := newMP3(t)

	out, err := run(t, "lyrics", path)

	require.NoError(t, err)
	assert.Equal(t, "no lyrics\n", out)
}

func TestLyricsImportUnsynced(t *testing.T) {
	path := newMP3(t)
	lrc := filepath.Join(t.TempDir(), "plain.lrc")
	require.NoError(t, os.WriteFile(lrc, []byte("just words\n"), 0o600))

	_, err := run(t, "lyrics", path, "--import", lrc)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to import lyrics")
}

func TestLyricsSidecarMissing(t *testing.T) {
	path := newMP3(t)

	_, err := run(t, "lyrics", path, "--sidecar")

	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "Failed to import lyrics '"+strings.TrimSuffix(path, ".mp3")+".lrc'")
}

func TestShowMissingFile(t *testing.T) {
	_, err := run(t, "show", filepath.Join(t.TempDir(), "missing.mp3"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read tags")
}

func TestMissingConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "none.toml"), "show", "x.mp3"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to load configuration")
}
