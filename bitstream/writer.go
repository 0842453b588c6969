// Package bitstream implements LSB-first bit-level reading and writing over
// byte buffers, plus the unsigned VLQ (ULEB128) and zigzag integer layouts
// shared by the run-length and delta block codecs.
//
// A Writer operates over a caller-provided fixed-capacity buffer and reports
// exhaustion through boolean returns rather than growing, so encoders can
// surface capacity errors without partial commits. A Reader reports short
// reads the same way; callers translate them into end-of-stream errors.
package bitstream

// MaxVlqByteLength is the maximum encoded size of a 64-bit VLQ integer.
const MaxVlqByteLength = 10

// Writer packs values bit by bit into a fixed-capacity byte buffer.
// Bits fill each byte starting from the least significant bit.
type Writer struct {
	buf        []byte
	byteOffset int
	bitOffset  uint // bits used in buf[byteOffset], 0..7
}

// NewWriter creates a Writer over buf. The Writer never grows buf; once
// capacity is exhausted all Put methods return false.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// BufferLen returns the total capacity of the underlying buffer in bytes.
func (w *Writer) BufferLen() int {
	return len(w.buf)
}

// BytesWritten returns the number of bytes occupied so far, counting a
// partially filled trailing byte as one byte.
func (w *Writer) BytesWritten() int {
	if w.bitOffset > 0 {
		return w.byteOffset + 1
	}

	return w.byteOffset
}

func (w *Writer) remainingBits() int {
	return (len(w.buf)-w.byteOffset)*8 - int(w.bitOffset)
}

// PutValue writes the numBits low bits of v. It returns false without
// writing anything if the buffer cannot hold numBits more bits.
func (w *Writer) PutValue(v uint64, numBits uint) bool {
	if numBits == 0 {
		return true
	}
	if numBits > 64 || w.remainingBits() < int(numBits) {
		return false
	}
	if numBits < 64 {
		v &= (uint64(1) << numBits) - 1
	}

	var put uint
	for put < numBits {
		avail := 8 - w.bitOffset
		take := numBits - put
		if take > avail {
			take = avail
		}
		bits := byte((v >> put) & ((1 << take) - 1))
		if w.bitOffset == 0 {
			w.buf[w.byteOffset] = bits
		} else {
			w.buf[w.byteOffset] |= bits << w.bitOffset
		}
		put += take
		w.bitOffset += take
		if w.bitOffset == 8 {
			w.bitOffset = 0
			w.byteOffset++
		}
	}

	return true
}

// alignUp advances to the next byte boundary, abandoning any partial byte.
func (w *Writer) alignUp() {
	if w.bitOffset > 0 {
		w.bitOffset = 0
		w.byteOffset++
	}
}

// PutAligned advances to the next byte boundary and writes the numBytes low
// bytes of v in little-endian order.
func (w *Writer) PutAligned(v uint64, numBytes int) bool {
	w.alignUp()
	if w.byteOffset+numBytes > len(w.buf) {
		return false
	}
	for i := 0; i < numBytes; i++ {
		w.buf[w.byteOffset+i] = byte(v >> (8 * i))
	}
	w.byteOffset += numBytes

	return true
}

// PutVlqInt advances to the next byte boundary and writes v as an unsigned
// LEB128 varint.
func (w *Writer) PutVlqInt(v uint64) bool {
	w.alignUp()
	for v >= 0x80 {
		if w.byteOffset >= len(w.buf) {
			return false
		}
		w.buf[w.byteOffset] = byte(v&0x7F) | 0x80
		w.byteOffset++
		v >>= 7
	}
	if w.byteOffset >= len(w.buf) {
		return false
	}
	w.buf[w.byteOffset] = byte(v)
	w.byteOffset++

	return true
}

// PutZigZagVlqInt writes v zigzag-mapped then VLQ-encoded, so small-magnitude
// negative and positive values both encode compactly.
func (w *Writer) PutZigZagVlqInt(v int64) bool {
	return w.PutVlqInt(ZigZagEncode(v))
}

// ReserveByte advances to the next byte boundary, zeroes one byte, and
// returns its index for later patching via PatchByte. Run-length encoding
// uses this for literal run indicator bytes whose final value is only known
// once the run ends.
func (w *Writer) ReserveByte() (int, bool) {
	w.alignUp()
	if w.byteOffset >= len(w.buf) {
		return 0, false
	}
	idx := w.byteOffset
	w.buf[idx] = 0
	w.byteOffset++

	return idx, true
}

// PatchByte overwrites a previously reserved byte.
func (w *Writer) PatchByte(idx int, v byte) {
	w.buf[idx] = v
}

// Flush advances to the next byte boundary and returns the number of bytes
// written in total.
func (w *Writer) Flush() int {
	w.alignUp()
	return w.byteOffset
}

// ZigZagEncode maps a signed integer onto an unsigned one, interleaving
// positive and negative values: 0, -1, 1, -2, 2, ...
func ZigZagEncode(v int64) uint64 {
	return (uint64(v) << 1) ^ uint64(v>>63)
}

// ZigZagDecode reverses ZigZagEncode.
func ZigZagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// VlqSize returns the encoded byte length of v as an unsigned LEB128 varint.
func VlqSize(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}

	return n
}
