package ndb

import "github.com/sensepost/edbxtract/bytesx"

const pageSize = 512
const pageTrailerSize = 16

// PageType distinguishes the six page kinds spec.md §4.5 names.
type PageType uint8

const (
	PageTypeNBT   PageType = 0x80
	PageTypeBBT   PageType = 0x81
	PageTypeAMap  PageType = 0x83
	PageTypePMap  PageType = 0x84
	PageTypeFMap  PageType = 0x89
	PageTypeFPMap PageType = 0x8A
	PageTypeDList PageType = 0x8B
)

// Page is a 512-byte NDB page: a content area padded to 496 bytes, followed
// by the 16-byte trailer { ptype, ptypeRepeat, wSig, dwCRC, bid }.
type Page struct {
	Type PageType
	BID  BID
	Data []byte // content, must be <= 496 bytes
}

// Encode serializes the page to its fixed 512-byte on-disk form.
func (p Page) Encode() []byte {
	content := make([]byte, pageSize-pageTrailerSize)
	copy(content, p.Data)

	w := bytesx.NewWriter()
	w.PutBytes(content)
	w.PutUint8(uint8(p.Type))
	w.PutUint8(uint8(p.Type))
	w.PutUint16(0) // wSig: zero for NBT/BBT/AMap pages per [MS-PST] §2.2.2.7.1
	w.PutUint32(bytesx.NDBCrc(content))
	w.PutUint64(uint64(p.BID))
	return w.Bytes()
}

// ZeroPage returns a page of the given type with all-zero content, used for
// the unused-but-present PMap/FMap/FPMap pages spec.md §4.5 requires.
func ZeroPage(t PageType, bid BID) Page {
	return Page{Type: t, BID: bid, Data: make([]byte, pageSize-pageTrailerSize)}
}
