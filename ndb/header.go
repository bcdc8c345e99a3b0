package ndb

import "github.com/sensepost/edbxtract/bytesx"

// HeaderSize is the fixed on-disk PST header size.
const HeaderSize = 564

const (
	headerMagic     = "!BDN"
	headerWVer      = 0x17
	headerVersion   = 23
	headerUnicode   = 0x01
	headerCryptNone = 0
	offMagic        = 0
	offWVer         = 10
	offVersion      = 12
	offUnicodeFlag  = 14
	offNBTRootBID   = 224
	offBBTRootBID   = 240
	offNextBID      = 352
	offNextPage     = 368
	offFileSize     = 184
	offCryptMethod  = 513
	offTrailerCRC   = 524
)

// Header is the 564-byte PST file header, built per spec.md §6's exact
// byte-offset table. Reserved fields not named there are left zero. The
// root B-trees are located by a BREF (bid + file offset), 16 bytes each,
// at offsets 224 and 240.
type Header struct {
	NBTRootBID    BID
	NBTRootOffset uint64
	BBTRootBID    BID
	BBTRootOffset uint64
	NextBID       uint64
	NextPage      uint32
	FileSize      uint64
}

// Encode renders the header to its fixed 564-byte form. The trailing CRC at
// offset 524 covers bytes [0, 524) per [MS-PST]'s header layout.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[offMagic:], []byte(headerMagic))
	putUint16At(buf, offWVer, headerWVer)
	putUint16At(buf, offVersion, headerVersion)
	putUint16At(buf, offUnicodeFlag, headerUnicode)
	putUint64At(buf, offNBTRootBID, uint64(h.NBTRootBID))
	putUint64At(buf, offNBTRootBID+8, h.NBTRootOffset)
	putUint64At(buf, offBBTRootBID, uint64(h.BBTRootBID))
	putUint64At(buf, offBBTRootBID+8, h.BBTRootOffset)
	putUint64At(buf, offNextBID, h.NextBID)
	putUint32At(buf, offNextPage, h.NextPage)
	putUint64At(buf, offFileSize, h.FileSize)
	buf[offCryptMethod] = headerCryptNone

	crc := bytesx.NDBCrc(buf[:offTrailerCRC])
	putUint32At(buf, offTrailerCRC, crc)
	return buf
}

func putUint16At(buf []byte, off int, v uint16) {
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
}

func putUint32At(buf []byte, off int, v uint32) {
	for i := 0; i < 4; i++ {
		buf[off+i] = byte(v >> (8 * uint(i)))
	}
}

func putUint64At(buf []byte, off int, v uint64) {
	for i := 0; i < 8; i++ {
		buf[off+i] = byte(v >> (8 * uint(i)))
	}
}
