// Package bitmap provides helpers for dense little-endian validity
// bitmaps: bit i of the bitmap is set when value i is non-null.
package bitmap

import "math/bits"

// IsSet reports whether bit i is set. A nil bitmap means all-valid.
func IsSet(bm []byte, i int) bool {
	if bm == nil {
		return true
	}

	return bm[i/8]&(1<<(i%8)) != 0
}

// SetBit sets bit i.
func SetBit(bm []byte, i int) {
	bm[i/8] |= 1 << (i % 8)
}

// CountSetBits counts set bits in bm[offset : offset+length] (bit indices).
func CountSetBits(bm []byte, offset, length int) int {
	if bm == nil {
		return length
	}

	count := 0
	i := offset
	end := offset + length

	for ; i < end && i%8 != 0; i++ {
		if IsSet(bm, i) {
			count++
		}
	}
	for ; i+8 <= end; i += 8 {
		count += bits.OnesCount8(bm[i/8])
	}
	for ; i < end; i++ {
		if IsSet(bm, i) {
			count++
		}
	}

	return count
}

// BytesFor returns the byte size of a bitmap holding n bits.
func BytesFor(n int) int {
	return (n + 7) / 8
}

// Reader iterates the bits of a validity bitmap from a starting offset.
type Reader struct {
	bm  []byte
	pos int
}

// NewReader creates a reader positioned at bit offset.
func NewReader(bm []byte, offset int) *Reader {
	return &Reader{bm: bm, pos: offset}
}

// IsSet reports the bit at the current position.
func (r *Reader) IsSet() bool {
	return IsSet(r.bm, r.pos)
}

// Next advances to the next bit.
func (r *Reader) Next() {
	r.pos++
}
