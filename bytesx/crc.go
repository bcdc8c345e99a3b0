package bytesx

import "hash/crc32"

// NDBCrc computes the CRC-32 used for PST block trailers ([MS-PST] section
// 5.3), over the block's data bytes (never including the trailer itself).
//
// The variant is the reflected CRC-32/ISO-HDLC polynomial (0xEDB88320,
// LSB-first) with no initial/final complement, using the table Go's stdlib
// already exposes as crc32.IEEETable. crc32.Update complements the register
// on entry and on exit, so the raw table loop starting from 0 is obtained by
// complementing both its input and its result.
func NDBCrc(data []byte) uint32 {
	return ^crc32.Update(^uint32(0), crc32.IEEETable, data)
}
