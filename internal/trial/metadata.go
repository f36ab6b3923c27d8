package trial

import "sort"

// Metadata is the key-value store attached to a trial. A Trial holds it by
// reference and never inspects its contents.
type Metadata interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
	Range(fn func(key, value string) bool)
}

// MetadataCloner is implemented by Metadata that can copy itself. Trial.Clone
// copies such metadata and shares any other implementation.
type MetadataCloner interface {
	Metadata
	Clone() Metadata
}

// MapMetadata is an in-memory Metadata. Range visits keys in sorted order.
type MapMetadata struct {
	items map[string]string
}

var _ MetadataCloner = (*MapMetadata)(nil)

// NewMetadata returns an empty MapMetadata.
func NewMetadata() *MapMetadata {
	return &MapMetadata{items: make(map[string]string)}
}

func (m *MapMetadata) Get(key string) (string, bool) {
	v, ok := m.items[key]
	return v, ok
}

func (m *MapMetadata) Set(key, value string) {
	if m.items == nil {
		m.items = make(map[string]string)
	}
	m.items[key] = value
}

func (m *MapMetadata) Delete(key string) {
	delete(m.items, key)
}

func (m *MapMetadata) Range(fn func(key, value string) bool) {
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !fn(k, m.items[k]) {
			return
		}
	}
}

// Len returns the number of entries.
func (m *MapMetadata) Len() int { return len(m.items) }

// Clone returns an independent copy.
func (m *MapMetadata) Clone() Metadata {
	out := NewMetadata()
	for k, v := range m.items {
		out.items[k] = v
	}
	return out
}

func cloneMetadata(md Metadata) Metadata {
	if c, ok := md.(MetadataCloner); ok {
		return c.Clone()
	}
	return md
}
