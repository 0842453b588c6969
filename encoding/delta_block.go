package encoding

import (
	"fmt"
	"math/bits"

	"github.com/colenc/colenc/bitstream"
	"github.com/colenc/colenc/errs"
	"github.com/colenc/colenc/format"
)

// Delta block stream layout, repeated per block:
//
//	[varint block_size][varint num_mini_blocks][varint value_count]
//	[zigzag-varint first_value][zigzag-varint min_delta]
//	[1 byte per mini-block: delta bit width]
//	[packed deltas per mini-block at each declared width]
//
// The block's first value is stored in the header and emitted directly;
// each following value is previous + min_delta + packed delta. A block
// therefore carries 1 + block_size values. block_size must divide evenly
// by num_mini_blocks; anything else is a corrupt stream.

// DefaultBlockSize and DefaultMiniBlocks are the encoder defaults: four
// mini-blocks of 32 values per block.
const (
	DefaultBlockSize  = 128
	DefaultMiniBlocks = 4
)

// DeltaBlockDecoder decodes block/mini-block delta-packed integers.
// It applies to integer physical types only; byte arrays reuse it for
// their length and prefix-length sections.
type DeltaBlockDecoder[T format.Integer] struct {
	r         *bitstream.Reader
	numValues int

	valuesPerMini int
	valuesCurMini int
	miniIdx       int
	bitWidths     []byte
	deltaBitWidth uint
	minDelta      int64
	lastValue     int64
}

// NewDeltaBlockDecoder creates a decoder with no data attached; call
// SetData before Decode.
func NewDeltaBlockDecoder[T format.Integer]() *DeltaBlockDecoder[T] {
	return &DeltaBlockDecoder[T]{}
}

// SetData attaches an encoded stream holding numValues values. Any state
// from a previous stream is discarded.
func (d *DeltaBlockDecoder[T]) SetData(numValues int, data []byte) {
	d.r = bitstream.NewReader(data)
	d.numValues = numValues
	d.valuesCurMini = 0
	d.miniIdx = 0
	d.bitWidths = nil
}

// ValuesLeft returns the number of values not yet decoded.
func (d *DeltaBlockDecoder[T]) ValuesLeft() int {
	return d.numValues
}

// initBlock parses one block header and positions the decoder at the
// block's first mini-block. The header's first value becomes lastValue.
func (d *DeltaBlockDecoder[T]) initBlock() error {
	blockSize, ok := d.r.GetVlqInt()
	if !ok {
		return fmt.Errorf("%w: delta block header", errs.ErrEndOfStream)
	}
	numMini, ok := d.r.GetVlqInt()
	if !ok {
		return fmt.Errorf("%w: delta block header", errs.ErrEndOfStream)
	}
	if _, ok = d.r.GetVlqInt(); !ok { // block value count, unused
		return fmt.Errorf("%w: delta block header", errs.ErrEndOfStream)
	}
	first, ok := d.r.GetZigZagVlqInt()
	if !ok {
		return fmt.Errorf("%w: delta block first value", errs.ErrEndOfStream)
	}
	d.lastValue = first

	minDelta, ok := d.r.GetZigZagVlqInt()
	if !ok {
		return fmt.Errorf("%w: delta block min delta", errs.ErrEndOfStream)
	}
	d.minDelta = minDelta

	if numMini == 0 || blockSize%numMini != 0 {
		return fmt.Errorf("%w: block size %d not divisible by %d mini-blocks",
			errs.ErrInvalidData, blockSize, numMini)
	}

	widths := make([]byte, numMini)
	for i := range widths {
		b, ok := d.r.GetAligned(1)
		if !ok {
			return fmt.Errorf("%w: delta block bit widths", errs.ErrEndOfStream)
		}
		widths[i] = byte(b)
	}

	d.bitWidths = widths
	d.valuesPerMini = int(blockSize / numMini)
	d.miniIdx = 0
	d.deltaBitWidth = uint(widths[0])
	d.valuesCurMini = d.valuesPerMini

	return nil
}

// Decode produces min(len(out), ValuesLeft()) values into out. Any short
// read in the underlying stream fails with ErrEndOfStream; no partial
// result is reported as success.
func (d *DeltaBlockDecoder[T]) Decode(out []T) (int, error) {
	n := min(len(out), d.numValues)

	for i := 0; i < n; i++ {
		if d.valuesCurMini == 0 {
			d.miniIdx++
			if d.miniIdx < len(d.bitWidths) {
				d.deltaBitWidth = uint(d.bitWidths[d.miniIdx])
				d.valuesCurMini = d.valuesPerMini
			} else {
				if err := d.initBlock(); err != nil {
					return i, err
				}
				// The header carries the block's first value directly.
				out[i] = T(d.lastValue)
				continue
			}
		}

		delta, ok := d.r.GetValue(d.deltaBitWidth)
		if !ok {
			return i, fmt.Errorf("%w: delta mini-block values", errs.ErrEndOfStream)
		}
		d.lastValue += int64(delta) + d.minDelta
		out[i] = T(d.lastValue)
		d.valuesCurMini--
	}

	d.numValues -= n

	return n, nil
}

// DeltaBlockEncoder produces the stream DeltaBlockDecoder consumes. Values
// are buffered on Put and laid out in blocks on FlushData.
type DeltaBlockEncoder[T format.Integer] struct {
	blockSize     int
	numMiniBlocks int
	valuesPerMini int
	values        []int64
}

// NewDeltaBlockEncoder creates an encoder with the given block geometry.
// blockSize must divide evenly by numMiniBlocks.
func NewDeltaBlockEncoder[T format.Integer](blockSize, numMiniBlocks int) (*DeltaBlockEncoder[T], error) {
	if blockSize <= 0 || numMiniBlocks <= 0 || blockSize%numMiniBlocks != 0 {
		return nil, fmt.Errorf("%w: block size %d, mini-blocks %d",
			errs.ErrInvalidBlockConfig, blockSize, numMiniBlocks)
	}

	return &DeltaBlockEncoder[T]{
		blockSize:     blockSize,
		numMiniBlocks: numMiniBlocks,
		valuesPerMini: blockSize / numMiniBlocks,
	}, nil
}

// NewDefaultDeltaBlockEncoder creates an encoder with the default block
// geometry.
func NewDefaultDeltaBlockEncoder[T format.Integer]() *DeltaBlockEncoder[T] {
	enc, err := NewDeltaBlockEncoder[T](DefaultBlockSize, DefaultMiniBlocks)
	if err != nil {
		panic(err) // defaults always divide evenly
	}

	return enc
}

// Put buffers one value.
func (e *DeltaBlockEncoder[T]) Put(v T) {
	e.values = append(e.values, int64(v))
}

// PutSlice buffers a slice of values.
func (e *DeltaBlockEncoder[T]) PutSlice(vs []T) {
	for _, v := range vs {
		e.values = append(e.values, int64(v))
	}
}

// Len returns the number of buffered values.
func (e *DeltaBlockEncoder[T]) Len() int {
	return len(e.values)
}

// Reset discards all buffered values.
func (e *DeltaBlockEncoder[T]) Reset() {
	e.values = e.values[:0]
}

// maxBlockBytes bounds the encoded size of one block.
func (e *DeltaBlockEncoder[T]) maxBlockBytes() int {
	headerMax := 3*bitstream.MaxVlqByteLength + 2*bitstream.MaxVlqByteLength
	return headerMax + e.numMiniBlocks + e.blockSize*8 + 8
}

// FlushData encodes every buffered value and returns the stream bytes. The
// returned slice is freshly allocated and owned by the caller; the encoder
// keeps its buffered values until Reset.
func (e *DeltaBlockEncoder[T]) FlushData() []byte {
	if len(e.values) == 0 {
		return nil
	}

	numBlocks := ceilDiv(len(e.values), e.blockSize+1)
	buf := make([]byte, numBlocks*e.maxBlockBytes())
	w := bitstream.NewWriter(buf)

	pos := 0
	for pos < len(e.values) {
		pos += e.writeBlock(w, e.values[pos:])
	}

	return buf[:w.Flush()]
}

// writeBlock lays out one block starting at vals[0] and returns how many
// values it consumed.
func (e *DeltaBlockEncoder[T]) writeBlock(w *bitstream.Writer, vals []int64) int {
	first := vals[0]
	deltas := vals[1:]
	if len(deltas) > e.blockSize {
		deltas = deltas[:e.blockSize]
	}
	consumed := 1 + len(deltas)

	var minDelta int64
	diffs := make([]uint64, len(deltas))
	prev := first
	for i, v := range deltas {
		d := v - prev
		prev = v
		if i == 0 || d < minDelta {
			minDelta = d
		}
		diffs[i] = uint64(d)
	}

	w.PutVlqInt(uint64(e.blockSize))
	w.PutVlqInt(uint64(e.numMiniBlocks))
	w.PutVlqInt(uint64(consumed))
	w.PutZigZagVlqInt(first)
	w.PutZigZagVlqInt(minDelta)

	// Per mini-block bit widths; unused trailing mini-blocks get width 0.
	usedMini := ceilDiv(len(deltas), e.valuesPerMini)
	widths := make([]byte, e.numMiniBlocks)
	for mb := 0; mb < usedMini; mb++ {
		start := mb * e.valuesPerMini
		end := min(start+e.valuesPerMini, len(deltas))
		var maxBits int
		for _, diff := range diffs[start:end] {
			adjusted := diff - uint64(minDelta)
			maxBits = max(maxBits, bits.Len64(adjusted))
		}
		widths[mb] = byte(maxBits)
	}
	for _, width := range widths {
		w.PutAligned(uint64(width), 1)
	}

	// Packed deltas; partially filled mini-blocks pad with zeros so the
	// decoder's fixed-width reads stay in bounds.
	for mb := 0; mb < usedMini; mb++ {
		width := uint(widths[mb])
		start := mb * e.valuesPerMini
		for i := 0; i < e.valuesPerMini; i++ {
			var adjusted uint64
			if start+i < len(diffs) {
				adjusted = diffs[start+i] - uint64(minDelta)
			}
			w.PutValue(adjusted, width)
		}
	}

	return consumed
}
