package id3frame

import (
	"slices"
	"strings"
)

// Set is an ordered collection of frames with unique hash keys.
// The zero value is an empty set ready to use.
type Set struct {
	frames []Frame
}

// NewSet returns a set holding frames, added in order.
func NewSet(frames ...Frame) *Set {
	s := &Set{}
	for _, f := range frames {
		s.Add(f)
	}
	return s
}

// Add stores f. A frame with the same hash key is replaced in place.
func (s *Set) Add(f Frame) {
	key := f.HashKey()
	if i := s.index(key); i >= 0 {
		s.frames[i] = f
		return
	}
	s.frames = append(s.frames, f)
}

// Frames returns the frames in set order.
func (s *Set) Frames() []Frame {
	return slices.Clone(s.frames)
}

// Len returns the number of frames.
func (s *Set) Len() int {
	return len(s.frames)
}

// Has reports whether a frame with exactly this hash key exists.
func (s *Set) Has(key string) bool {
	return s.index(key) >= 0
}

// Get returns the frame stored under exactly this hash key.
func (s *Set) Get(key string) (Frame, bool) {
	if i := s.index(key); i >= 0 {
		return s.frames[i], true
	}
	return nil, false
}

// GetAll returns the frame stored under key if there is one, otherwise every
// frame whose hash key starts with key followed by a colon. Passing a frame
// id therefore returns all frames of that id.
func (s *Set) GetAll(key string) []Frame {
	if f, ok := s.Get(key); ok {
		return []Frame{f}
	}
	var out []Frame
	for _, f := range s.frames {
		if matchKey(f.HashKey(), key) {
			out = append(out, f)
		}
	}
	return out
}

// DelAll removes what GetAll(key) would return and reports how many frames
// were removed.
func (s *Set) DelAll(key string) int {
	if s.Delete(key) {
		return 1
	}
	return s.DeleteFunc(func(f Frame) bool { return matchKey(f.HashKey(), key) })
}

// DelAllCI is DelAll with case-insensitive key comparison.
func (s *Set) DelAllCI(key string) int {
	lower := strings.ToLower(key)
	return s.DeleteFunc(func(f Frame) bool {
		k := strings.ToLower(f.HashKey())
		return k == lower || matchKey(k, lower)
	})
}

// Delete removes the frame stored under exactly this hash key.
func (s *Set) Delete(key string) bool {
	_, ok := s.Pop(key)
	return ok
}

// Pop removes and returns the frame stored under exactly this hash key.
func (s *Set) Pop(key string) (Frame, bool) {
	i := s.index(key)
	if i < 0 {
		return nil, false
	}
	f := s.frames[i]
	s.frames = slices.Delete(s.frames, i, i+1)
	return f, true
}

// DeleteFunc removes every frame for which del returns true.
func (s *Set) DeleteFunc(del func(Frame) bool) int {
	before := len(s.frames)
	s.frames = slices.DeleteFunc(s.frames, del)
	return before - len(s.frames)
}

// Clear removes all frames.
func (s *Set) Clear() {
	s.frames = nil
}

// Clone returns a shallow copy of the set.
func (s *Set) Clone() *Set {
	return &Set{frames: slices.Clone(s.frames)}
}

func (s *Set) index(key string) int {
	return slices.IndexFunc(s.frames, func(f Frame) bool { return f.HashKey() == key })
}

func matchKey(hashKey, key string) bool {
	return strings.HasPrefix(hashKey, key+":")
}
