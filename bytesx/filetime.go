// Package bytesx provides the byte-primitive utilities shared by the EDB
// reader and PST writer: FILETIME conversion, the ndb CRC-32 variant,
// codepage decoding and little-endian cursor helpers.
package bytesx

import "time"

// filetimeEpochDelta is the number of 100ns ticks between the FILETIME
// epoch (1601-01-01 UTC) and the Unix epoch (1970-01-01 UTC).
const filetimeEpochDelta = 116444736000000000

// ticksPerSecond is the number of 100ns FILETIME ticks in one second.
const ticksPerSecond = 10000000

// FromFileTime converts a Windows FILETIME (100ns ticks since 1601-01-01
// UTC) into a time.Time. A zero FILETIME has no canonical meaning in MAPI
// and is reported as the zero time.Time with ok=false.
//
// The conversion is done as a seconds/ticks-remainder split rather than a
// single ticks*100 nanosecond value: FILETIME covers dates out to
// 9999-12-31, whose tick count overflows int64 once multiplied by 100, and
// time.Time.UnixNano is undefined outside roughly [1678, 2262] for the same
// reason. time.Unix's seconds argument carries no such limit.
func FromFileTime(ft uint64) (t time.Time, ok bool) {
	if ft == 0 {
		return time.Time{}, false
	}
	deltaTicks := int64(ft) - filetimeEpochDelta
	sec := deltaTicks / ticksPerSecond
	nsec := (deltaTicks % ticksPerSecond) * 100
	return time.Unix(sec, nsec).UTC(), true
}

// ToFileTime converts a time.Time into a Windows FILETIME. Times before the
// FILETIME epoch saturate at 0. See FromFileTime for why this avoids
// UnixNano.
func ToFileTime(t time.Time) uint64 {
	u := t.UTC()
	ticks := u.Unix()*ticksPerSecond + int64(u.Nanosecond())/100 + filetimeEpochDelta
	if ticks < 0 {
		return 0
	}
	return uint64(ticks)
}
