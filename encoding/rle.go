package encoding

import (
	"github.com/colenc/colenc/bitstream"
)

// Hybrid run-length/bit-packing codec for dictionary codes, at one fixed
// bit width per stream.
//
// The stream is a sequence of runs, each introduced by a VLQ header:
//
//	header & 1 == 0: repeated run. header>>1 copies of one value stored in
//	                 ceil(bitWidth/8) little-endian bytes.
//	header & 1 == 1: literal run. header>>1 groups of 8 values, each packed
//	                 at bitWidth bits, LSB first.
//
// Repeats of 8 or more buffered values flush as a repeated run; everything
// else is bit-packed in groups of 8 (the final group zero-padded).

// minRepeatedRunLength is the shortest repetition worth a repeated run.
// Shorter repeats bit-pack with their neighbors.
const minRepeatedRunLength = 8

// maxLiteralGroups caps one literal run at what its reserved single-byte
// indicator can express.
const maxLiteralGroups = 1<<6 - 1

// MaxRleBufferSize returns a conservative upper bound on the encoded size
// of numValues values at the given bit width, not counting the worst-case
// trailing padding covered by MinRleBufferSize.
func MaxRleBufferSize(bitWidth, numValues int) int {
	// Literal worst case: one indicator byte per 8-value group plus the
	// packed group itself.
	numGroups := ceilDiv(numValues, 8)
	literalMax := numGroups + numGroups*bitWidth

	// Repeated worst case: runs of exactly 8 values.
	repeatedMax := ceilDiv(numValues, 8) * (1 + ceilDiv(bitWidth, 8))

	return max(literalMax, repeatedMax)
}

// MinRleBufferSize returns the smallest buffer headroom at which any single
// run at the given bit width is guaranteed to fit: the larger of one full
// literal group and one maximal repeated-run header plus value.
func MinRleBufferSize(bitWidth int) int {
	literalRun := 1 + ceilDiv(8*bitWidth, 8)
	repeatedRun := bitstream.MaxVlqByteLength + ceilDiv(bitWidth, 8)

	return max(literalRun, repeatedRun)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// RleEncoder encodes values into a caller-provided fixed-capacity buffer.
// Put reports false once the buffer cannot be guaranteed to hold another
// run; no partial run is ever committed.
type RleEncoder struct {
	w        *bitstream.Writer
	bitWidth int

	// 8-value staging buffer for literal groups.
	buffered    [8]uint64
	numBuffered int

	// Current repetition tracking.
	currentValue uint64
	repeatCount  int

	// Pending literal run: values already packed whose indicator byte is
	// reserved but not yet patched.
	literalCount  int
	indicatorIdx  int
	haveIndicator bool

	maxRunSize int
	full       bool
}

// NewRleEncoder creates an encoder at the given fixed bit width writing
// into buf.
func NewRleEncoder(buf []byte, bitWidth int) *RleEncoder {
	return &RleEncoder{
		w:          bitstream.NewWriter(buf),
		bitWidth:   bitWidth,
		maxRunSize: MinRleBufferSize(bitWidth),
	}
}

// Put encodes one value. It returns false if the buffer is out of space;
// the encoder then rejects all further values and Flush reflects only the
// runs committed so far.
func (e *RleEncoder) Put(value uint64) bool {
	if e.full {
		return false
	}

	if e.repeatCount > 0 && e.currentValue == value {
		e.repeatCount++
		if e.repeatCount > minRepeatedRunLength {
			// Continuation of a committed repeated run; nothing to buffer.
			return !e.full
		}
	} else {
		if e.repeatCount >= minRepeatedRunLength {
			e.flushRepeatedRun()
		}
		e.repeatCount = 1
		e.currentValue = value
	}

	e.buffered[e.numBuffered] = value
	e.numBuffered++
	if e.numBuffered == 8 {
		e.flushBufferedValues(false)
	}

	return !e.full
}

// Flush commits any pending run and returns the total number of bytes
// written.
func (e *RleEncoder) Flush() int {
	if e.literalCount > 0 || e.repeatCount > 0 || e.numBuffered > 0 {
		allRepeat := e.literalCount == 0 &&
			(e.repeatCount == e.numBuffered || e.numBuffered == 0)
		if e.repeatCount > 0 && allRepeat {
			e.flushRepeatedRun()
		} else {
			// Zero-pad the trailing group to 8 values.
			for e.numBuffered != 0 && e.numBuffered < 8 {
				e.buffered[e.numBuffered] = 0
				e.numBuffered++
			}
			e.literalCount += e.numBuffered
			e.flushLiteralRun(true)
			e.repeatCount = 0
		}
	}

	return e.w.Flush()
}

// flushBufferedValues commits the 8-value staging buffer when it fills.
func (e *RleEncoder) flushBufferedValues(done bool) {
	if e.repeatCount >= minRepeatedRunLength {
		// The staged values are all part of the active repeated run; drop
		// them from the literal staging buffer before closing anything.
		e.numBuffered = 0
		if e.literalCount != 0 {
			// A literal run was open; its values are already packed, only
			// its indicator byte needs patching before the repeated run.
			e.flushLiteralRun(true)
		}
		if done {
			e.flushRepeatedRun()
		}

		return
	}

	e.literalCount += e.numBuffered
	numGroups := e.literalCount / 8
	if numGroups+1 >= maxLiteralGroups {
		// The reserved indicator byte is about to overflow; close this
		// literal run and start a fresh one.
		e.flushLiteralRun(true)
	} else {
		e.flushLiteralRun(false)
	}
	e.repeatCount = 0
}

// flushLiteralRun packs the staged values and, when closing the run,
// patches the reserved indicator byte.
func (e *RleEncoder) flushLiteralRun(closeRun bool) {
	if !e.haveIndicator {
		idx, ok := e.w.ReserveByte()
		if !ok {
			e.full = true
			return
		}
		e.indicatorIdx = idx
		e.haveIndicator = true
	}

	for i := 0; i < e.numBuffered; i++ {
		if !e.w.PutValue(e.buffered[i], uint(e.bitWidth)) {
			e.full = true
			return
		}
	}
	e.numBuffered = 0

	if closeRun {
		numGroups := e.literalCount / 8
		e.w.PatchByte(e.indicatorIdx, byte(numGroups<<1|1))
		e.haveIndicator = false
		e.literalCount = 0
		e.checkFull()
	}
}

// flushRepeatedRun commits the active repetition as one repeated run.
func (e *RleEncoder) flushRepeatedRun() {
	ok := e.w.PutVlqInt(uint64(e.repeatCount) << 1)
	ok = ok && e.w.PutAligned(e.currentValue, ceilDiv(e.bitWidth, 8))
	if !ok {
		e.full = true
		return
	}
	e.numBuffered = 0
	e.repeatCount = 0
	e.checkFull()
}

// checkFull marks the encoder full once the next worst-case run might not
// fit, so Put never commits a partial run.
func (e *RleEncoder) checkFull() {
	if e.w.BytesWritten()+e.maxRunSize > e.w.BufferLen() {
		e.full = true
	}
}

// RleDecoder decodes a stream produced by RleEncoder at the same bit width.
type RleDecoder struct {
	r        *bitstream.Reader
	bitWidth int

	currentValue uint64
	repeatCount  int
	literalCount int
}

// NewRleDecoder creates a decoder over data at the given fixed bit width.
func NewRleDecoder(data []byte, bitWidth int) *RleDecoder {
	return &RleDecoder{
		r:        bitstream.NewReader(data),
		bitWidth: bitWidth,
	}
}

// GetBatch decodes up to len(out) values and returns how many were
// produced. A short return means the stream ended.
func (d *RleDecoder) GetBatch(out []int32) int {
	n := 0
	for n < len(out) {
		switch {
		case d.repeatCount > 0:
			out[n] = int32(d.currentValue)
			d.repeatCount--
			n++
		case d.literalCount > 0:
			v, ok := d.r.GetValue(uint(d.bitWidth))
			if !ok {
				return n
			}
			out[n] = int32(v)
			d.literalCount--
			n++
		default:
			if !d.nextCounts() {
				return n
			}
		}
	}

	return n
}

// nextCounts parses the next run header.
func (d *RleDecoder) nextCounts() bool {
	header, ok := d.r.GetVlqInt()
	if !ok {
		return false
	}
	if header&1 == 1 {
		d.literalCount = int(header>>1) * 8
		return d.literalCount > 0
	}

	d.repeatCount = int(header >> 1)
	if d.repeatCount == 0 {
		return false
	}
	d.currentValue, ok = d.r.GetAligned(ceilDiv(d.bitWidth, 8))

	return ok
}
