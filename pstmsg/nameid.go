package pstmsg

import "github.com/google/uuid"

// NamedPropertyKey identifies a named property by its property set GUID
// and either a string name or a numeric ID, [MS-PST] §2.4.7.1.
type NamedPropertyKey struct {
	GUID   uuid.UUID
	Name   string // used when Name != ""
	Number uint32 // used otherwise
}

// NameIDMap assigns sequential 16-bit property IDs (starting at 0x8000,
// [MS-PST] §2.4.7) to named properties on first reference, grounded on
// spec.md §4.7's "Name-to-ID Map" bullet.
type NameIDMap struct {
	next     uint16
	assigned map[NamedPropertyKey]uint16
	order    []NamedPropertyKey
}

// NewNameIDMap creates an empty map.
func NewNameIDMap() *NameIDMap {
	return &NameIDMap{next: 0x8000, assigned: make(map[NamedPropertyKey]uint16)}
}

// IDFor returns the property ID for key, assigning the next free ID if this
// is the first time key has been seen.
func (m *NameIDMap) IDFor(key NamedPropertyKey) uint16 {
	if id, ok := m.assigned[key]; ok {
		return id
	}
	id := m.next
	m.next++
	m.assigned[key] = id
	m.order = append(m.order, key)
	return id
}

// Entries returns every assigned named property in assignment order, for
// serializing the NID_NAME_TO_ID_MAP's GUID stream / entry stream / string
// stream property context.
func (m *NameIDMap) Entries() []NamedPropertyKey {
	return m.order
}
