// Package ltp implements the PST Lists-Tables-Properties layer: the
// Heap-on-Node allocator, BTree-on-Heap, Property Context, and Table
// Context that sit on top of the ndb layer's blocks, grounded on spec.md
// §4.6's verbatim layout. It follows the same explicit-struct-field binary
// cursor idiom as ndb rather than the teacher's reflective BodyToBytes,
// since these structures have fixed, spec-mandated field order.
package ltp

import "github.com/sensepost/edbxtract/bytesx"

// HID identifies one heap allocation: a 1-based block index (low 5 bits are
// reserved as the heap's type marker in a real HID, but this writer only
// ever emits single-block heaps, so the encoding here is a plain
// (blockIndex, allocIndex) pair packed as [MS-PST] §2.3.1.3 describes).
type HID uint32

// NewHID packs a block index (always 1 for a single-block heap) and a
// 1-based allocation index into an HID.
func NewHID(blockIndex, allocIndex uint16) HID {
	return HID(uint32(allocIndex)<<16 | uint32(blockIndex)<<5 | 0 /*hidType=0*/)
}

// heapHeaderSize is the HNHDR: bSig(1)+bClientSig(1)+hidUserRoot(4)+
// rgbFillLevel(4) = 10, then padded by callers as needed.
const heapHeaderSize = 10
const heapPageMapEntrySize = 2

// clientSignature values from [MS-PST] §2.3.1.1, distinguishing what the
// heap holds.
const (
	ClientSigPropertyContext = 0xBC
	ClientSigTableContext    = 0x7C
)

// Heap is a single-block Heap-on-Node: a sequence of variably-sized
// allocations addressed by HID, with a trailing page map of allocation
// offsets. This writer never spills a heap across multiple blocks, which is
// sufficient for the property and row counts this tool's synthesized PSTs
// produce.
type Heap struct {
	ClientSig byte
	allocs    [][]byte
	userRoot  HID
}

// NewHeap creates an empty heap for the given client signature.
func NewHeap(clientSig byte) *Heap {
	return &Heap{ClientSig: clientSig}
}

// Alloc appends data as a new heap allocation and returns its HID.
func (h *Heap) Alloc(data []byte) HID {
	h.allocs = append(h.allocs, data)
	hid := NewHID(1, uint16(len(h.allocs)))
	return hid
}

// SetUserRoot records the HID the HNHDR's hidUserRoot field should point
// to (the BTH or TC header allocation).
func (h *Heap) SetUserRoot(hid HID) {
	h.userRoot = hid
}

// Encode serializes the heap's single data block: HNHDR, every allocation
// back to back, and the trailing page map (count + per-allocation end
// offsets), per [MS-PST] §2.3.1.2/2.3.1.5.
func (h *Heap) Encode() []byte {
	w := bytesx.NewWriter()
	w.PutUint8(0xEC) // bSig: HN signature
	w.PutUint8(h.ClientSig)
	w.PutUint32(uint32(h.userRoot))
	w.PutUint32(0) // rgbFillLevel, unused by single-block heaps

	offsets := make([]uint16, 0, len(h.allocs)+1)
	offsets = append(offsets, uint16(w.Len()))
	for _, a := range h.allocs {
		w.PutBytes(a)
		offsets = append(offsets, uint16(w.Len()))
	}

	// HNPAGEMAP: cAlloc, cFree=0, then cAlloc+1 offsets.
	w.PutUint16(uint16(len(h.allocs)))
	w.PutUint16(0)
	for _, off := range offsets {
		w.PutUint16(off)
	}
	return w.Bytes()
}

// Get returns the raw bytes previously stored at hid, or nil if hid is out
// of range. Used by readers reconstructing a heap this package wrote.
func (h *Heap) Get(hid HID) []byte {
	idx := int(hid>>16) - 1
	if idx < 0 || idx >= len(h.allocs) {
		return nil
	}
	return h.allocs[idx]
}
