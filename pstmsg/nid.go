// Package pstmsg implements the PST Messaging layer: well-known node IDs,
// the Store object, the Name-to-ID map, folder hierarchy/contents tables,
// and message/recipient/attachment objects — assembled on top of the ndb
// and ltp layers per spec.md §4.7. Grounded on the teacher's
// mapi/constants.go PidTagXxx/NID-style var-block convention, applied here
// to PST's well-known node identifiers instead of MAPI ROP property IDs.
package pstmsg

// NID is a 32-bit node identifier: the low 5 bits select a node type, the
// remaining bits are an index unique within that type.
type NID uint32

// Node type values occupying NID's low 5 bits, [MS-PST] §2.3.4.1.
const (
	NIDTypeNormalFolder    = 0x02
	NIDTypeSearchFolder    = 0x03
	NIDTypeNormalMessage   = 0x04
	NIDTypeAttachment      = 0x05
	NIDTypeRecipientTable  = 0x07
	NIDTypeAttachmentTable = 0x08
	NIDTypeHierarchyTable  = 0x09
	NIDTypeContentsTable   = 0x0A
	NIDTypeMessageStore    = 0x06 // reserved/special, used for the well-known NIDs below
)

// Well-known NIDs, [MS-PST] §2.4.1.
const (
	NIDMessageStore          NID = 0x21
	NIDNameToIDMap           NID = 0x61
	NIDRootFolder            NID = 0x122
	NIDSearchManagementQueue NID = 0x1E1
	NIDSearchActivityList    NID = 0x201
	NIDSearchDomainObject    NID = 0x261
	NIDSearchStatusFolder    NID = 0x281
)

// MakeNID packs a node type and a 1-based index into an allocated NID.
func MakeNID(nodeType uint32, index uint32) NID {
	return NID(index<<5 | nodeType)
}

// nidAllocator hands out sequential NIDs per node type, starting above the
// well-known NID range so dynamically-created folders/messages never
// collide with them.
type nidAllocator struct {
	counters map[uint32]uint32
}

func newNIDAllocator() *nidAllocator {
	return &nidAllocator{counters: make(map[uint32]uint32)}
}

func (a *nidAllocator) next(nodeType uint32) NID {
	a.counters[nodeType]++
	return MakeNID(nodeType, a.counters[nodeType]+0x20) // +0x20 clears the well-known low range
}
