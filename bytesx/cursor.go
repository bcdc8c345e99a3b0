package bytesx

import "encoding/binary"

// Cursor is a little-endian read cursor over a byte slice, in the same
// (value, nextPos) style the teacher's mapi/datastructs.go readUint32/
// readUint16/readBytes helpers use. It is intentionally a plain position
// counter rather than an io.Reader/bytes.Reader, because several callers
// (notably the LZXPRESS decoder) need to seek backward into bytes already
// consumed to resolve overlapping back-references.
type Cursor struct {
	Buf []byte
	Pos int
}

// NewCursor wraps buf for sequential little-endian reads starting at 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{Buf: buf}
}

// Remaining reports how many unread bytes are left.
func (c *Cursor) Remaining() int {
	return len(c.Buf) - c.Pos
}

// Uint8 reads one byte and advances the cursor.
func (c *Cursor) Uint8() (byte, bool) {
	if c.Remaining() < 1 {
		return 0, false
	}
	v := c.Buf[c.Pos]
	c.Pos++
	return v, true
}

// Uint16 reads a little-endian uint16 and advances the cursor.
func (c *Cursor) Uint16() (uint16, bool) {
	if c.Remaining() < 2 {
		return 0, false
	}
	v := binary.LittleEndian.Uint16(c.Buf[c.Pos:])
	c.Pos += 2
	return v, true
}

// Uint32 reads a little-endian uint32 and advances the cursor.
func (c *Cursor) Uint32() (uint32, bool) {
	if c.Remaining() < 4 {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(c.Buf[c.Pos:])
	c.Pos += 4
	return v, true
}

// Uint64 reads a little-endian uint64 and advances the cursor.
func (c *Cursor) Uint64() (uint64, bool) {
	if c.Remaining() < 8 {
		return 0, false
	}
	v := binary.LittleEndian.Uint64(c.Buf[c.Pos:])
	c.Pos += 8
	return v, true
}

// Bytes reads n raw bytes and advances the cursor.
func (c *Cursor) Bytes(n int) ([]byte, bool) {
	if c.Remaining() < n {
		return nil, false
	}
	v := c.Buf[c.Pos : c.Pos+n]
	c.Pos += n
	return v, true
}

// Writer accumulates little-endian fields the same way the teacher builds
// request bodies with bytes.Buffer + encoding/binary.Write, used by the
// NDB/LTP marshalers.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// PutUint8 appends a single byte.
func (w *Writer) PutUint8(v uint8) *Writer {
	w.buf = append(w.buf, v)
	return w
}

// PutUint16 appends a little-endian uint16.
func (w *Writer) PutUint16(v uint16) *Writer {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return w
}

// PutUint32 appends a little-endian uint32.
func (w *Writer) PutUint32(v uint32) *Writer {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return w
}

// PutUint64 appends a little-endian uint64.
func (w *Writer) PutUint64(v uint64) *Writer {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return w
}

// PutBytes appends raw bytes verbatim.
func (w *Writer) PutBytes(v []byte) *Writer {
	w.buf = append(w.buf, v...)
	return w
}

// PutZeros appends n zero bytes, used for reserved/padding fields.
func (w *Writer) PutZeros(n int) *Writer {
	w.buf = append(w.buf, make([]byte, n)...)
	return w
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len reports the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }
