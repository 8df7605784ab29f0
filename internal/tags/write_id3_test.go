package tags

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/id3map/internal/config"
	"github.com/llehouerou/id3map/internal/id3frame"
	"github.com/llehouerou/id3map/internal/lyrics"
	"github.com/llehouerou/id3map/internal/metadata"
)

func frameOf[T id3frame.Frame](t *testing.T, set *id3frame.Set, key string) T {
	t.Helper()
	f, ok := set.Get(key)
	require.True(t, ok, "missing frame %s", key)
	typed, ok := f.(T)
	require.True(t, ok, "frame %s is %T", key, f)
	return typed
}

// standardRecord holds one value for every key with a frame of its own.
func standardRecord() *metadata.Metadata {
	md := metadata.New()
	for key := range keyFrames {
		md.Set(key, "value of "+key)
	}
	md.Set("date", "2004-03-21")
	md.Set("originaldate", "1999-05-01")
	md.Set("releasedate", "2001-02-03")
	md.Set("license", "https://creativecommons.org/licenses/by/4.0/")
	md.Set("website", "https://artist.example")
	md.Set("grouping", "Group")
	md.Set("tracknumber", "3")
	md.Set("totaltracks", "12")
	md.Set("discnumber", "1")
	md.Set("musicbrainz_albumid", "a6b5e0d9-1b7e-4e5f-8ff3-0c4f8a3b3e55")
	md.Set("replaygain_track_gain", "-6.50 dB")
	md.Set("performer:guitar", "G")
	md.Set("producer", "P")
	return md
}

func TestSaveFrames_RoundTrip(t *testing.T) {
	codec, _ := newTestCodec(t, nil)
	md := standardRecord()

	set := &id3frame.Set{}
	codec.SaveFrames(set, md, nil)
	got := codec.LoadFrames(set, FileInfo{}).Metadata

	for key, values := range md.All() {
		assert.Equal(t, values, got.GetAll(key), key)
	}
	assert.Equal(t, md.Len(), got.Len())
}

func TestSaveFrames_Idempotent(t *testing.T) {
	codec, _ := newTestCodec(t, nil)
	md := standardRecord()
	md.Set("comment:iTunNORM", "0000")
	md.Set("~rating", "3")
	md.Set("syncedlyrics:eng", "[00:01.000]Hello\n[00:02.000]World")
	md.Images = []metadata.Image{
		{Comment: "cover", ID3Type: 3, MimeType: mimePNG, Data: []byte{1}},
		{Comment: "cover", ID3Type: 4, MimeType: mimePNG, Data: []byte{2}},
	}

	first := &id3frame.Set{}
	codec.SaveFrames(first, md, nil)
	second := first.Clone()
	codec.SaveFrames(second, md, nil)

	assert.ElementsMatch(t, first.Frames(), second.Frames())
}

func TestImageDescriptions(t *testing.T) {
	images := []metadata.Image{{Comment: "cover"}, {Comment: "cover"}, {Comment: ""}, {Comment: ""}, {Comment: "cover"}}

	got := imageDescriptions(images)

	assert.Equal(t, []string{"cover", "cover (1)", "", "(1)", "cover (2)"}, got)
}

func TestSaveFrames_ImagesReplaceExisting(t *testing.T) {
	codec, _ := newTestCodec(t, nil)
	set := id3frame.NewSet(
		&id3frame.PictureFrame{Description: "old", Data: []byte{9}},
		text("TIT2", "Title"),
	)
	md := metadata.New()
	md.Images = []metadata.Image{
		{Comment: "cover", ID3Type: 3, MimeType: mimeJPEG, Data: []byte{1}},
		{Comment: "cover", ID3Type: 4, MimeType: mimeJPEG, Data: []byte{2}},
		{Comment: "", ID3Type: 5, MimeType: mimeJPEG, Data: []byte{3}},
	}

	codec.SaveFrames(set, md, nil)

	var descs []string
	for _, f := range set.GetAll("APIC") {
		descs = append(descs, f.(*id3frame.PictureFrame).Description)
	}
	assert.Equal(t, []string{"cover", "cover (1)", ""}, descs)
	assert.Equal(t, byte(4), frameOf[*id3frame.PictureFrame](t, set, "APIC:cover (1)").PictureType)
	assert.True(t, set.Has("TIT2"))
}

func TestSaveFrames_KeepsImagesWithoutNewOnes(t *testing.T) {
	codec, _ := newTestCodec(t, nil)
	set := id3frame.NewSet(&id3frame.PictureFrame{Description: "old", Data: []byte{9}})

	codec.SaveFrames(set, metadata.New(), nil)

	assert.True(t, set.Has("APIC:old"))
}

func TestSaveFrames_NumbersAreLatin1(t *testing.T) {
	codec, _ := newTestCodec(t, func(s *config.Settings) { s.ID3v2Encoding = "utf-16" })
	md := metadata.New()
	md.Set("tracknumber", "3")
	md.Set("totaltracks", "12")
	md.Set("discnumber", "2")
	md.Set("movementnumber", "1")
	md.Set("movementtotal", "4")

	set := &id3frame.Set{}
	codec.SaveFrames(set, md, nil)

	trck := frameOf[*id3frame.TextFrame](t, set, "TRCK")
	assert.Equal(t, []string{"3/12"}, trck.Text)
	assert.Equal(t, id3frame.EncodingLatin1, trck.Encoding)
	assert.Equal(t, []string{"2"}, frameOf[*id3frame.TextFrame](t, set, "TPOS").Text)
	assert.Equal(t, []string{"1/4"}, frameOf[*id3frame.TextFrame](t, set, "MVIN").Text)
	assert.False(t, set.Has("TXXX:totaltracks"))
}

func TestSaveFrames_Encoding(t *testing.T) {
	codec, _ := newTestCodec(t, func(s *config.Settings) { s.ID3v2Encoding = "latin1" })
	md := metadata.New()
	md.Set("title", "東京 café")
	md.Set("Ключ", "значение")

	set := &id3frame.Set{}
	codec.SaveFrames(set, md, nil)

	tit2 := frameOf[*id3frame.TextFrame](t, set, "TIT2")
	assert.Equal(t, []string{"?? café"}, tit2.Text)
	assert.Equal(t, id3frame.EncodingLatin1, tit2.Encoding)
	assert.True(t, set.Has("TXXX:????"))
}

func TestSaveFrames_Performers(t *testing.T) {
	tests := []struct {
		name  string
		v23   bool
		frame string
	}{
		{"v2.4 uses TMCL", false, "TMCL"},
		{"v2.3 uses TIPL", true, "TIPL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, _ := newTestCodec(t, func(s *config.Settings) { s.WriteID3v23 = tt.v23 })
			md := metadata.New()
			md.Set("performer:guitar", "G1", "G2")
			md.Set("performer", "P")
			md.Set("producer", "Prod")
			md.Set("djmixer", "DJ")

			set := &id3frame.Set{}
			codec.SaveFrames(set, md, nil)

			people := frameOf[*id3frame.PeopleFrame](t, set, tt.frame).People
			assert.Contains(t, people, id3frame.Credit{Role: "guitar", Name: "G1"})
			assert.Contains(t, people, id3frame.Credit{Role: "guitar", Name: "G2"})
			assert.Contains(t, people, id3frame.Credit{Role: "performer", Name: "P"})

			tipl := frameOf[*id3frame.PeopleFrame](t, set, "TIPL").People
			assert.Contains(t, tipl, id3frame.Credit{Role: "producer", Name: "Prod"})
			assert.Contains(t, tipl, id3frame.Credit{Role: "DJ-mix", Name: "DJ"})
		})
	}
}

func TestSaveFrames_Comments(t *testing.T) {
	codec, _ := newTestCodec(t, nil)
	set := id3frame.NewSet(
		&id3frame.CommentFrame{Encoding: id3frame.EncodingUTF8, Language: "XXX", Description: "iTunNORM", Text: []string{"old"}},
	)
	md := metadata.New()
	md.Set("comment", "plain")
	md.Set("comment:notes", "described")
	md.Set("comment:fre:notes", "bien")
	md.Set("comment:iTunNORM", "0000 0001")

	codec.SaveFrames(set, md, nil)

	assert.Equal(t, []string{"plain"}, frameOf[*id3frame.CommentFrame](t, set, "COMM::eng").Text)
	assert.Equal(t, []string{"described"}, frameOf[*id3frame.CommentFrame](t, set, "COMM:notes:eng").Text)
	assert.Equal(t, []string{"bien"}, frameOf[*id3frame.CommentFrame](t, set, "COMM:notes:fre").Text)

	itunes := frameOf[*id3frame.CommentFrame](t, set, "COMM:iTunNORM:eng")
	assert.Equal(t, id3frame.EncodingLatin1, itunes.Encoding)
	assert.Equal(t, []string{"0000 0001\x00"}, itunes.Text)
	assert.False(t, set.Has("COMM:iTunNORM:XXX"))
}

func TestSaveFrames_Lyrics(t *testing.T) {
	codec, _ := newTestCodec(t, nil)
	set := id3frame.NewSet(&id3frame.LyricsFrame{Language: "eng", Text: "old"})
	md := metadata.New()
	md.Set("lyrics", "new")
	md.Set("lyrics:verse", "other")

	codec.SaveFrames(set, md, nil)

	assert.Equal(t, "new", frameOf[*id3frame.LyricsFrame](t, set, "USLT::eng").Text)
	assert.Equal(t, "other", frameOf[*id3frame.LyricsFrame](t, set, "USLT:verse:XXX").Text)
	assert.Len(t, set.GetAll("USLT"), 2)
}

func TestSaveFrames_SyncedLyrics(t *testing.T) {
	codec, _ := newTestCodec(t, nil)
	md := metadata.New()
	md.Set("syncedlyrics:eng:karaoke", "[00:01.000]Hello\n[00:03.000]World")
	md.Set("syncedlyrics:fre", "no timestamps here")

	set := &id3frame.Set{}
	codec.SaveFrames(set, md, nil)

	sylt := frameOf[*id3frame.SyncedLyricsFrame](t, set, "SYLT:karaoke:eng")
	assert.Equal(t, id3frame.SyncFormatMilliseconds, sylt.Format)
	assert.Equal(t, id3frame.SyncTypeLyrics, sylt.Type)
	require.Len(t, sylt.Text, 2)
	assert.Equal(t, lyrics.Sync{Text: "Hello\n", Offset: 1000}, sylt.Text[0])
	assert.Equal(t, uint32(3000), sylt.Text[1].Offset)
	assert.False(t, set.Has("SYLT::fre"))
}

func TestSaveFrames_SyncedLyricsRoundTrip(t *testing.T) {
	codec, _ := newTestCodec(t, nil)
	set := id3frame.NewSet(&id3frame.SyncedLyricsFrame{
		Encoding: id3frame.EncodingUTF8,
		Language: "eng",
		Format:   id3frame.SyncFormatMilliseconds,
		Type:     id3frame.SyncTypeLyrics,
		Text:     []lyrics.Sync{{Text: "Hello\nWorld", Offset: 1000}},
	})
	info := FileInfo{Length: 5 * time.Second}

	res := codec.LoadFrames(set, info)
	require.Equal(t, []string{"[00:01.000]<00:01.000>Hello\n[00:03.000]World"}, res.Metadata.GetAll("syncedlyrics:eng"))
	out := &id3frame.Set{}
	codec.SaveFrames(out, res.Metadata, res.CaseMap)

	// Syllable marks win over the interpolated line marks.
	sylt := frameOf[*id3frame.SyncedLyricsFrame](t, out, "SYLT::eng")
	assert.Equal(t, []lyrics.Sync{{Text: "Hello\nWorld", Offset: 1000}}, sylt.Text)
}

func TestSaveFrames_RecordingID(t *testing.T) {
	codec, _ := newTestCodec(t, nil)
	md := metadata.New()
	md.Set("musicbrainz_recordingid", "b1a9c0e9")

	set := &id3frame.Set{}
	codec.SaveFrames(set, md, nil)

	ufid := frameOf[*id3frame.IdentifierFrame](t, set, "UFID:http://musicbrainz.org")
	assert.Equal(t, []byte("b1a9c0e9"), ufid.Data)
}

func TestSaveFrames_Rating(t *testing.T) {
	tests := []struct {
		value string
		steps int
		want  byte
	}{
		{"5", 6, 255},
		{"0", 6, 0},
		{"3", 6, 153},
		{"2.5", 6, 128},
		{"10", 6, 255},
		{"1", 2, 255},
	}

	for _, tt := range tests {
		codec, _ := newTestCodec(t, func(s *config.Settings) { s.RatingSteps = tt.steps })
		set := id3frame.NewSet(&id3frame.RatingFrame{Email: "users@musicbrainz.org", Rating: 1, Count: 42})
		md := metadata.New()
		md.Set("~rating", tt.value)

		codec.SaveFrames(set, md, nil)

		popm := frameOf[*id3frame.RatingFrame](t, set, "POPM:users@musicbrainz.org")
		assert.Equal(t, tt.want, popm.Rating, "value=%s steps=%d", tt.value, tt.steps)
		assert.Equal(t, uint64(42), popm.Count)
	}
}

func TestSaveFrames_RatingNewFrame(t *testing.T) {
	codec, _ := newTestCodec(t, func(s *config.Settings) { s.RatingUserEmail = "me@example.org" })
	md := metadata.New()
	md.Set("~rating", "5")

	set := &id3frame.Set{}
	codec.SaveFrames(set, md, nil)

	popm := frameOf[*id3frame.RatingFrame](t, set, "POPM:me@example.org")
	assert.Equal(t, byte(255), popm.Rating)
	assert.Equal(t, uint64(0), popm.Count)
}

func TestSaveFrames_Grouping(t *testing.T) {
	tests := []struct {
		name     string
		itunes   bool
		grouping string
		work     string
	}{
		{"default", false, "TIT1", "TXXX:WORK"},
		{"itunes", true, "GRP1", "TIT1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, _ := newTestCodec(t, func(s *config.Settings) { s.ITunesCompatibleGrouping = tt.itunes })
			set := id3frame.NewSet(userText("Work", "old"))
			md := metadata.New()
			md.Set("grouping", "G")
			md.Set("work", "W")

			codec.SaveFrames(set, md, nil)

			_, grouping, _ := textOf(frameOf[id3frame.Frame](t, set, tt.grouping))
			assert.Equal(t, []string{"G"}, grouping)
			_, work, _ := textOf(frameOf[id3frame.Frame](t, set, tt.work))
			assert.Equal(t, []string{"W"}, work)
			assert.False(t, set.Has("TXXX:Work"))
		})
	}
}

func TestSaveFrames_License(t *testing.T) {
	const url = "https://creativecommons.org/licenses/by/4.0/"
	tests := []struct {
		name   string
		values []string
		wcop   bool
	}{
		{"single url", []string{url}, true},
		{"two urls", []string{url, "https://example.org/l"}, false},
		{"not a url", []string{"All rights reserved"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, _ := newTestCodec(t, nil)
			set := id3frame.NewSet(
				&id3frame.URLFrame{FrameID: "WCOP", URL: "https://old.example"},
				userText("LICENSE", "old"),
			)
			md := metadata.New()
			md.Set("license", tt.values...)

			codec.SaveFrames(set, md, nil)

			if tt.wcop {
				assert.Equal(t, url, frameOf[*id3frame.URLFrame](t, set, "WCOP").URL)
				assert.False(t, set.Has("TXXX:LICENSE"))
			} else {
				assert.Equal(t, tt.values, frameOf[*id3frame.UserTextFrame](t, set, "TXXX:LICENSE").Text)
				assert.False(t, set.Has("WCOP"))
			}
		})
	}
}

func TestSaveFrames_Website(t *testing.T) {
	codec, _ := newTestCodec(t, nil)
	set := id3frame.NewSet(&id3frame.URLFrame{FrameID: "WOAR", URL: "https://old.example"})
	md := metadata.New()
	md.Set("website", "https://a.example", "https://b.example")

	codec.SaveFrames(set, md, nil)

	assert.Len(t, set.GetAll("WOAR"), 2)
	assert.True(t, set.Has("WOAR:https://a.example"))
	assert.False(t, set.Has("WOAR:https://old.example"))

	md.Set("website", "not a url")
	codec.SaveFrames(set, md, nil)
	assert.Len(t, set.GetAll("WOAR"), 2)
}

func TestSaveFrames_ID3v23Shadows(t *testing.T) {
	codec, _ := newTestCodec(t, func(s *config.Settings) { s.WriteID3v23 = true })
	md := metadata.New()
	md.Set("mood", "calm")
	md.Set("releasedate", "2001-02-03")
	md.Set("artist", "A", "B")

	set := &id3frame.Set{}
	codec.SaveFrames(set, md, nil)

	assert.Equal(t, []string{"calm"}, frameOf[*id3frame.UserTextFrame](t, set, "TXXX:mood").Text)
	assert.Equal(t, []string{"2001-02-03"}, frameOf[*id3frame.UserTextFrame](t, set, "TXXX:RELEASEDATE").Text)
	assert.True(t, set.Has("TMOO"))
	assert.Equal(t, []string{"A/B"}, frameOf[*id3frame.TextFrame](t, set, "TPE1").Text)
}

func TestSaveFrames_RemovesSupersededFrames(t *testing.T) {
	codec, _ := newTestCodec(t, nil)
	set := id3frame.NewSet(
		text("XSOA", "old album sort"),
		text("XSOP", "old artist sort"),
		userText("ALBUMARTISTSORT", "old album artist sort"),
		userText("Artists", "old artists"),
	)
	md := metadata.New()
	md.Set("albumsort", "a")
	md.Set("artistsort", "b")
	md.Set("albumartistsort", "c")
	md.Set("artists", "d")

	codec.SaveFrames(set, md, nil)

	for _, key := range []string{"XSOA", "XSOP", "TXXX:ALBUMARTISTSORT", "TXXX:Artists"} {
		assert.False(t, set.Has(key), key)
	}
	for _, key := range []string{"TSOA", "TSOP", "TSO2", "TXXX:ARTISTS"} {
		assert.True(t, set.Has(key), key)
	}
}

func TestSaveFrames_ReplayGainKeepsCase(t *testing.T) {
	codec, _ := newTestCodec(t, nil)
	set := id3frame.NewSet(userText("replaygain_Track_Gain", "-6.50 dB"))

	res := codec.LoadFrames(set, FileInfo{})
	codec.SaveFrames(set, res.Metadata, res.CaseMap)

	assert.True(t, set.Has("TXXX:replaygain_Track_Gain"))
	assert.False(t, set.Has("TXXX:REPLAYGAIN_TRACK_GAIN"))
	assert.Equal(t, 1, set.Len())

	// Without the case map the canonical spelling replaces the old frame.
	codec.SaveFrames(set, res.Metadata, nil)

	assert.True(t, set.Has("TXXX:REPLAYGAIN_TRACK_GAIN"))
	assert.False(t, set.Has("TXXX:replaygain_Track_Gain"))
}

func TestSaveFrames_Escapes(t *testing.T) {
	codec, buf := newTestCodec(t, nil)
	md := metadata.New()
	md.Set("~id3:TXXX:title", "not the title")
	md.Set("~id3:TFLT", "MPG/3")
	md.Set("~id3:APIC", "nope")
	md.Set("my own tag", "mine")
	md.Set("~length", "1000")
	md.Set("r128_track_gain", "0")

	set := &id3frame.Set{}
	codec.SaveFrames(set, md, nil)

	assert.Equal(t, []string{"not the title"}, frameOf[*id3frame.UserTextFrame](t, set, "TXXX:title").Text)
	assert.Equal(t, []string{"MPG/3"}, frameOf[*id3frame.TextFrame](t, set, "TFLT").Text)
	assert.Equal(t, []string{"mine"}, frameOf[*id3frame.UserTextFrame](t, set, "TXXX:my own tag").Text)
	assert.False(t, set.Has("APIC"))
	assert.Equal(t, 3, set.Len())
	assert.Contains(t, buf.String(), "not a text frame")
}

func TestSaveFrames_ClearExistingTags(t *testing.T) {
	tests := []struct {
		name     string
		preserve bool
		images   int
	}{
		{"drop images", false, 0},
		{"preserve images", true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, _ := newTestCodec(t, func(s *config.Settings) {
				s.ClearExistingTags = true
				s.PreserveImages = tt.preserve
			})
			set := id3frame.NewSet(
				text("TALB", "Album"),
				&id3frame.RawFrame{FrameID: "PRIV", Data: []byte("x")},
				&id3frame.PictureFrame{Description: "cover", Data: []byte{1}},
			)
			md := metadata.New()
			md.Set("title", "T")

			codec.SaveFrames(set, md, nil)

			assert.Len(t, set.GetAll("APIC"), tt.images)
			assert.False(t, set.Has("TALB"))
			assert.Empty(t, set.GetAll("PRIV"))
			assert.True(t, set.Has("TIT2"))
		})
	}
}
