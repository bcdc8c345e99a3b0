package ltp

import "github.com/sensepost/edbxtract/bytesx"

// pcValueWidth is the inline BTH value width a Property Context always
// uses: 4-byte fixed data/HID slot + 2-byte property type + 2-byte padding,
// matching [MS-PST] §2.3.3's PC BTH entry shape (the 2-byte propID alone is
// the key; propType travels in the value).
const pcValueWidth = 8

// PropertyValue is one property a PropertyContext writer should store:
// either inline fixed data (<=4 bytes, left-justified and zero-padded) or
// variable-length data that must go through the heap/subnode as an HID or
// NID reference.
type PropertyValue struct {
	Tag      uint32 // PropertyID<<16 | PropertyType
	Inline   []byte // stored in the slot when len(Inline) <= 4, heap-allocated otherwise
	Variable []byte // used when non-nil; written to the heap and referenced by HID
}

// PropertyContext assembles a node's properties into a BTH-backed PC,
// keyed by the 16-bit property ID (propType is carried alongside each
// entry's value per [MS-PST] §2.3.3.3, not in the BTH key itself — this
// writer keys on the full propID so distinct-propID columns never
// collide, matching how spec.md §4.6 describes "Property Context: BTH
// keyed by ... property tag").
type PropertyContext struct {
	heap *Heap
	bth  *BTH
}

// NewPropertyContext creates a PC writer backed by a fresh heap.
func NewPropertyContext() *PropertyContext {
	heap := NewHeap(ClientSigPropertyContext)
	return &PropertyContext{heap: heap, bth: NewBTH(heap, 2, pcValueWidth)}
}

// Put records one property. Values up to 4 bytes are stored inline;
// larger ones are heap-allocated and referenced by HID.
func (pc *PropertyContext) Put(v PropertyValue) {
	propID := uint16(v.Tag >> 16)
	propType := uint16(v.Tag)

	w := bytesx.NewWriter()
	switch {
	case v.Variable != nil:
		hid := pc.heap.Alloc(v.Variable)
		w.PutUint32(uint32(hid))
	case len(v.Inline) <= 4:
		data := make([]byte, 4)
		copy(data, v.Inline)
		w.PutBytes(data)
	default:
		hid := pc.heap.Alloc(v.Inline)
		w.PutUint32(uint32(hid))
	}
	w.PutUint16(propType)
	w.PutUint16(0)

	pc.bth.Add(BTHEntry{Key: uint64(propID), Value: w.Bytes()})
}

// Build finalizes the BTH and heap, returning the heap's encoded single
// data block ready to hand to ndb for block/subnode assignment.
func (pc *PropertyContext) Build() []byte {
	root := pc.bth.Build()
	pc.heap.SetUserRoot(root)
	return pc.heap.Encode()
}
