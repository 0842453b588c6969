package bitstream

// Reader consumes an LSB-first bit-packed stream produced by Writer.
// All methods report short reads by returning ok=false; the reader state is
// undefined after a failed read and callers are expected to abort.
type Reader struct {
	data       []byte
	byteOffset int
	bitOffset  uint // bits consumed in data[byteOffset], 0..7
}

// NewReader creates a Reader over data. The Reader does not copy data; the
// slice must remain valid while the Reader is in use.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of whole unread bytes, not counting a
// partially consumed byte.
func (r *Reader) Remaining() int {
	n := len(r.data) - r.byteOffset
	if r.bitOffset > 0 {
		n--
	}
	if n < 0 {
		return 0
	}

	return n
}

// GetValue reads the next numBits bits as an unsigned value.
func (r *Reader) GetValue(numBits uint) (uint64, bool) {
	if numBits == 0 {
		return 0, true
	}
	if numBits > 64 {
		return 0, false
	}

	var v uint64
	var got uint
	for got < numBits {
		if r.byteOffset >= len(r.data) {
			return 0, false
		}
		avail := 8 - r.bitOffset
		take := numBits - got
		if take > avail {
			take = avail
		}
		bits := (uint64(r.data[r.byteOffset]) >> r.bitOffset) & ((1 << take) - 1)
		v |= bits << got
		got += take
		r.bitOffset += take
		if r.bitOffset == 8 {
			r.bitOffset = 0
			r.byteOffset++
		}
	}

	return v, true
}

// alignUp advances to the next byte boundary, discarding any partially
// consumed byte.
func (r *Reader) alignUp() {
	if r.bitOffset > 0 {
		r.bitOffset = 0
		r.byteOffset++
	}
}

// GetAligned advances to the next byte boundary and reads numBytes bytes as
// a little-endian unsigned value.
func (r *Reader) GetAligned(numBytes int) (uint64, bool) {
	r.alignUp()
	if numBytes < 0 || numBytes > 8 || r.byteOffset+numBytes > len(r.data) {
		return 0, false
	}

	var v uint64
	for i := 0; i < numBytes; i++ {
		v |= uint64(r.data[r.byteOffset+i]) << (8 * i)
	}
	r.byteOffset += numBytes

	return v, true
}

// GetVlqInt advances to the next byte boundary and reads an unsigned LEB128
// varint of at most MaxVlqByteLength bytes.
func (r *Reader) GetVlqInt() (uint64, bool) {
	r.alignUp()

	var v uint64
	var shift uint
	for i := 0; i < MaxVlqByteLength; i++ {
		if r.byteOffset >= len(r.data) {
			return 0, false
		}
		b := r.data[r.byteOffset]
		r.byteOffset++
		v |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return v, true
		}
		shift += 7
	}

	return 0, false
}

// GetZigZagVlqInt reads a zigzag-mapped VLQ integer.
func (r *Reader) GetZigZagVlqInt() (int64, bool) {
	u, ok := r.GetVlqInt()
	if !ok {
		return 0, false
	}

	return ZigZagDecode(u), true
}
