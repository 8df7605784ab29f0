// Package metadata holds the format independent tag record: an ordered
// multi-map of string values, the set of keys the user deleted, and the
// attached images.
//
// Keys are flat names with colon separated qualifiers (performer:guitar,
// comment:fre:notes, syncedlyrics:eng:desc). Keys starting with "~" are
// internal; only ~rating and ~id3:* are ever written back to a file.
package metadata

import (
	"iter"
	"slices"
	"strings"
)

// ValueSeparator joins multiple values in Get.
const ValueSeparator = "; "

// Metadata is an ordered multi-map with a deleted-key side set.
// The zero value is not usable; use New.
type Metadata struct {
	order   []string
	values  map[string][]string
	deleted []string

	Images []Image
}

// New returns an empty record.
func New() *Metadata {
	return &Metadata{values: make(map[string][]string)}
}

// Add appends value to key. Adding clears a pending deletion of key.
func (m *Metadata) Add(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.order = append(m.order, key)
	}
	m.values[key] = append(m.values[key], value)
	m.Undelete(key)
}

// Set replaces all values of key. An empty values list removes the key
// without marking it deleted.
func (m *Metadata) Set(key string, values ...string) {
	if len(values) == 0 {
		m.remove(key)
		return
	}
	if _, ok := m.values[key]; !ok {
		m.order = append(m.order, key)
	}
	m.values[key] = slices.Clone(values)
	m.Undelete(key)
}

// GetAll returns the values of key in insertion order.
func (m *Metadata) GetAll(key string) []string {
	return slices.Clone(m.values[key])
}

// Get returns the values of key joined with ValueSeparator.
func (m *Metadata) Get(key string) string {
	return strings.Join(m.values[key], ValueSeparator)
}

// Contains reports whether key holds at least one value.
func (m *Metadata) Contains(key string) bool {
	return len(m.values[key]) > 0
}

// Keys returns the keys in the order they were first added.
func (m *Metadata) Keys() []string {
	return slices.Clone(m.order)
}

// Len returns the number of keys.
func (m *Metadata) Len() int {
	return len(m.order)
}

// All iterates keys and their values in insertion order.
func (m *Metadata) All() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, k := range m.order {
			if !yield(k, slices.Clone(m.values[k])) {
				return
			}
		}
	}
}

// Delete removes key and marks it deleted, so that saving removes the
// matching frames from the file.
func (m *Metadata) Delete(key string) {
	m.remove(key)
	if !m.IsDeleted(key) {
		m.deleted = append(m.deleted, key)
	}
}

// Deleted returns the keys marked deleted, in deletion order.
func (m *Metadata) Deleted() []string {
	return slices.Clone(m.deleted)
}

// IsDeleted reports whether key is marked deleted.
func (m *Metadata) IsDeleted(key string) bool {
	return slices.Contains(m.deleted, key)
}

// Undelete clears the deleted mark of key.
func (m *Metadata) Undelete(key string) {
	m.deleted = slices.DeleteFunc(m.deleted, func(k string) bool { return k == key })
}

func (m *Metadata) remove(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	m.order = slices.DeleteFunc(m.order, func(k string) bool { return k == key })
}
