// Package ndb implements the PST Node Database (NDB) layer: blocks and
// pages with their trailers, the NBT/BBT B-trees, the AMap, XBLOCK/SLBLOCK
// indirection, and the 564-byte PST file header — grounded on spec.md
// §4.5's verbatim layout, with the binary-cursor marshal idiom ported from
// the teacher's sensepost-ruler/mapi/datastructs.go readUintN/BodyToBytes
// functions (adapted to explicit struct-field writes, since PST structures
// have fixed spec-mandated byte layouts rather than teacher's dynamic ROP
// buffers).
package ndb

import (
	"github.com/sensepost/edbxtract/bytesx"
)

// BID is a block identifier. Bit 0 marks an internal (metadata) block; bit
// 1 marks an externally-referenced block (spec.md §4.5).
type BID uint64

const (
	bidInternalFlag = 1 << 0
	bidExternalFlag = 1 << 1
)

// MaxBlockData is the largest data payload a single block may hold before
// the writer must split across an XBLOCK chain (8192 total - 16 trailer
// bytes = 8176, per spec.md §4.5's XBLOCK threshold).
const MaxBlockData = 8176

const blockTrailerSize = 16
const blockSignature = 0xEC // wSig for data blocks, [MS-PST] §2.2.2.8

// Block is one framed NDB block: data padded to a multiple of 8 bytes plus
// its 16-byte trailer.
type Block struct {
	BID  BID
	Data []byte // raw, unpadded payload
}

// Encode serializes the block as it appears on disk: data, zero-padding to
// an 8-byte boundary, then the trailer { cb, wSig, dwCRC, bid }.
func (b Block) Encode() []byte {
	w := bytesx.NewWriter()
	w.PutBytes(b.Data)

	padded := padLen(len(b.Data))
	w.PutZeros(padded - len(b.Data))

	w.PutUint16(uint16(len(b.Data)))
	w.PutUint16(blockSignature)
	w.PutUint32(bytesx.NDBCrc(b.Data))
	w.PutUint64(uint64(b.BID))
	return w.Bytes()
}

// TotalSize returns the on-disk size of the encoded block (padded data +
// trailer).
func (b Block) TotalSize() int {
	return padLen(len(b.Data)) + blockTrailerSize
}

func padLen(n int) int {
	if n%8 == 0 {
		return n
	}
	return n + (8 - n%8)
}

// NewExternalBID builds a BID for a data block (bit 1 set, bit 0 clear)
// from a monotonic allocation counter.
func NewExternalBID(counter uint64) BID {
	return BID(counter<<2 | bidExternalFlag)
}

// NewInternalBID builds a BID for a B-tree/metadata page (bit 0 set) from a
// monotonic allocation counter.
func NewInternalBID(counter uint64) BID {
	return BID(counter<<2 | bidInternalFlag)
}
