package id3file

import (
	"strings"

	"github.com/llehouerou/id3map/internal/id3frame"
)

// Frames defined only by ID3v2.4. TSOA, TSOP and TSOT are kept in v2.3 tags
// since most players read them there too.
var v24Only = []string{
	"ASPI", "EQU2", "RVA2", "SEEK", "SIGN", "TDEN",
	"TDRL", "TDTG", "TMOO", "TPRO", "TSST",
}

// Frames defined only by ID3v2.3 that have no v2.4 counterpart.
var v23Only = []string{"EQUA", "RVAD", "TRDA", "TSIZ"}

// upgradeToV24 rewrites v2.3 date and people frames in their v2.4 form.
func upgradeToV24(set *id3frame.Set) {
	year := popText(set, "TYER")
	date := popText(set, "TDAT")
	tm := popText(set, "TIME")
	if year != "" && !set.Has("TDRC") {
		v := year
		if len(date) == 4 {
			// TDAT is DDMM
			v += "-" + date[2:4] + "-" + date[0:2]
			if len(tm) == 4 {
				// TIME is HHMM
				v += "T" + tm[0:2] + ":" + tm[2:4]
			}
		}
		set.Add(&id3frame.TextFrame{FrameID: "TDRC", Encoding: id3frame.EncodingUTF8, Text: []string{v}})
	}

	if orig := popText(set, "TORY"); orig != "" && !set.Has("TDOR") {
		set.Add(&id3frame.TextFrame{FrameID: "TDOR", Encoding: id3frame.EncodingUTF8, Text: []string{orig}})
	}

	for _, f := range set.GetAll("IPLS") {
		set.Delete(f.HashKey())
		p, ok := f.(*id3frame.PeopleFrame)
		if !ok || set.Has("TIPL") {
			continue
		}
		set.Add(&id3frame.PeopleFrame{FrameID: "TIPL", Encoding: p.Encoding, People: p.People})
	}

	for _, id := range v23Only {
		set.DelAll(id)
	}
}

// downgradeToV23 converts a v2.4 frame set for writing as v2.3. Multi-valued
// text is joined with sep.
func downgradeToV23(set *id3frame.Set, sep string) {
	if f, ok := set.Pop("TDRC"); ok {
		if v := firstText(f); len(v) >= 4 {
			set.Add(&id3frame.TextFrame{FrameID: "TYER", Encoding: id3frame.EncodingLatin1, Text: []string{v[:4]}})
			if len(v) >= 10 {
				// YYYY-MM-DD to DDMM
				set.Add(&id3frame.TextFrame{FrameID: "TDAT", Encoding: id3frame.EncodingLatin1, Text: []string{v[8:10] + v[5:7]}})
			}
			if len(v) >= 16 {
				// YYYY-MM-DDTHH:MM to HHMM
				set.Add(&id3frame.TextFrame{FrameID: "TIME", Encoding: id3frame.EncodingLatin1, Text: []string{v[11:13] + v[14:16]}})
			}
		}
	}

	if f, ok := set.Pop("TDOR"); ok {
		if v := firstText(f); len(v) >= 4 {
			set.Add(&id3frame.TextFrame{FrameID: "TORY", Encoding: id3frame.EncodingLatin1, Text: []string{v[:4]}})
		}
	}

	var people []id3frame.Credit
	enc := id3frame.EncodingUTF16
	for _, id := range []string{"TIPL", "TMCL"} {
		f, _ := set.Pop(id)
		if p, ok := f.(*id3frame.PeopleFrame); ok {
			people = append(people, p.People...)
			enc = p.Encoding
		}
	}
	if len(people) > 0 {
		set.Add(&id3frame.PeopleFrame{FrameID: "IPLS", Encoding: enc, People: people})
	}

	for _, id := range v24Only {
		set.DelAll(id)
	}

	// Frames are shared with the caller's set, so joined values go into copies.
	for _, f := range set.Frames() {
		switch f := f.(type) {
		case *id3frame.TextFrame:
			c := *f
			c.Text = joinValues(f.Text, sep)
			set.Add(&c)
		case *id3frame.UserTextFrame:
			c := *f
			c.Text = joinValues(f.Text, sep)
			set.Add(&c)
		case *id3frame.CommentFrame:
			c := *f
			c.Text = joinValues(f.Text, sep)
			set.Add(&c)
		}
	}
}

func joinValues(values []string, sep string) []string {
	if len(values) <= 1 {
		return values
	}
	return []string{strings.Join(values, sep)}
}

func popText(set *id3frame.Set, id string) string {
	f, ok := set.Pop(id)
	if !ok {
		return ""
	}
	return firstText(f)
}

func firstText(f id3frame.Frame) string {
	if t, ok := f.(*id3frame.TextFrame); ok && len(t.Text) > 0 {
		return t.Text[0]
	}
	return ""
}
