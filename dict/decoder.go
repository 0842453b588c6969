package dict

import (
	"fmt"
	"math"

	"github.com/colenc/colenc/column/bitmap"
	"github.com/colenc/colenc/encoding"
	"github.com/colenc/colenc/endian"
	"github.com/colenc/colenc/errs"
	"github.com/colenc/colenc/format"
	"github.com/colenc/colenc/internal/pool"
)

// decoderCore reads the index section: one bit-width byte followed by the
// hybrid run-length/bit-packed code stream.
type decoderCore struct {
	engine    endian.EndianEngine
	rle       *encoding.RleDecoder
	numValues int
}

// SetData attaches an index section holding numValues codes. An empty
// section means zero values.
func (c *decoderCore) SetData(numValues int, data []byte) error {
	if len(data) == 0 {
		c.rle = nil
		c.numValues = 0

		return nil
	}

	bitWidth := int(data[0])
	if bitWidth > 32 {
		return fmt.Errorf("%w: index bit width %d", errs.ErrInvalidData, bitWidth)
	}

	c.rle = encoding.NewRleDecoder(data[1:], bitWidth)
	c.numValues = numValues

	return nil
}

// ValuesLeft returns the number of codes not yet decoded.
func (c *decoderCore) ValuesLeft() int {
	return c.numValues
}

// getCodes fills codes from the index stream, failing with ErrEndOfStream
// when the stream runs short.
func (c *decoderCore) getCodes(codes []int32) error {
	if len(codes) == 0 {
		return nil
	}
	if c.rle == nil {
		return fmt.Errorf("%w: no index data", errs.ErrEndOfStream)
	}
	if got := c.rle.GetBatch(codes); got < len(codes) {
		return fmt.Errorf("%w: %d codes, want %d", errs.ErrEndOfStream, got, len(codes))
	}

	return nil
}

// Decoder expands dictionary codes back into fixed-width scalar values.
type Decoder[T format.Scalar] struct {
	decoderCore
	dict []T
}

// NewDecoder creates a scalar dictionary decoder.
func NewDecoder[T format.Scalar](engine endian.EndianEngine) *Decoder[T] {
	d := &Decoder[T]{}
	d.engine = engine

	return d
}

// SetDict installs the decoded dictionary. The entries are copied, so the
// caller's slice may be reused afterwards.
func (d *Decoder[T]) SetDict(values []T) {
	d.dict = append(d.dict[:0], values...)
}

// SetDictBytes installs a dictionary from its serialized payload: the raw
// concatenation of numEntries values at their native width.
func (d *Decoder[T]) SetDictBytes(numEntries int, payload []byte) error {
	var zero T
	width := scalarWidth(zero)
	if len(payload) < numEntries*width {
		return fmt.Errorf("%w: dict payload %d bytes, need %d",
			errs.ErrEndOfStream, len(payload), numEntries*width)
	}

	d.dict = d.dict[:0]
	for i := 0; i < numEntries; i++ {
		d.dict = append(d.dict, getScalar[T](d.engine, payload[i*width:]))
	}

	return nil
}

// Decode expands min(len(out), ValuesLeft()) values into out.
func (d *Decoder[T]) Decode(out []T) (int, error) {
	n := min(len(out), d.numValues)
	if n == 0 {
		return 0, nil
	}

	codes, release := pool.GetInt32Slice(n)
	defer release()

	if err := d.getCodes(codes); err != nil {
		return 0, err
	}

	for i, code := range codes[:n] {
		if int(code) >= len(d.dict) {
			return i, fmt.Errorf("%w: code %d outside dictionary of %d entries",
				errs.ErrInvalidData, code, len(d.dict))
		}
		out[i] = d.dict[code]
	}
	d.numValues -= n

	return n, nil
}

// DecodeSpaced expands len(out)-nullCount codes into out, leaving the
// zero value at positions whose validity bit (at offset) is clear.
func (d *Decoder[T]) DecodeSpaced(out []T, nullCount int, validity []byte, offset int) (int, error) {
	numValues := len(out) - nullCount
	if _, err := d.Decode(out[:numValues]); err != nil {
		return 0, err
	}

	spaceValues(out, numValues, validity, offset)

	return len(out), nil
}

// BinaryDecoder expands dictionary codes back into byte array values. The
// dictionary bytes are held in a decoder-owned arena, so decoded views
// outlive the buffers passed to SetDict.
type BinaryDecoder struct {
	decoderCore
	arena   *pool.ByteBuffer
	offsets []int32
}

// NewBinaryDecoder creates a byte array dictionary decoder.
func NewBinaryDecoder(engine endian.EndianEngine) *BinaryDecoder {
	d := &BinaryDecoder{
		arena:   pool.GetArenaBuffer(),
		offsets: []int32{0},
	}
	d.engine = engine

	return d
}

// SetDict installs the decoded dictionary, copying every entry's bytes
// into the decoder's arena.
func (d *BinaryDecoder) SetDict(values []format.ByteArray) {
	d.arena.Reset()
	d.offsets = append(d.offsets[:0], 0)
	for _, v := range values {
		d.arena.MustWrite(v)
		d.offsets = append(d.offsets, int32(d.arena.Len()))
	}
}

// SetDictBytes installs a dictionary from its serialized payload:
// numEntries [uint32 length][bytes] pairs.
func (d *BinaryDecoder) SetDictBytes(numEntries int, payload []byte) error {
	d.arena.Reset()
	d.offsets = append(d.offsets[:0], 0)

	pos := 0
	for i := 0; i < numEntries; i++ {
		if pos+4 > len(payload) {
			return fmt.Errorf("%w: dict entry length", errs.ErrEndOfStream)
		}
		length := int(d.engine.Uint32(payload[pos:]))
		pos += 4
		if pos+length > len(payload) {
			return fmt.Errorf("%w: dict entry %d bytes, %d available",
				errs.ErrEndOfStream, length, len(payload)-pos)
		}
		d.arena.MustWrite(payload[pos : pos+length])
		d.offsets = append(d.offsets, int32(d.arena.Len()))
		pos += length
	}

	return nil
}

// SetFixedDictBytes installs a dictionary from its serialized payload:
// the raw concatenation of numEntries width-byte values.
func (d *BinaryDecoder) SetFixedDictBytes(numEntries, width int, payload []byte) error {
	if len(payload) < numEntries*width {
		return fmt.Errorf("%w: dict payload %d bytes, need %d",
			errs.ErrEndOfStream, len(payload), numEntries*width)
	}

	d.arena.Reset()
	d.offsets = append(d.offsets[:0], 0)
	for i := 0; i < numEntries; i++ {
		d.arena.MustWrite(payload[i*width : (i+1)*width])
		d.offsets = append(d.offsets, int32(d.arena.Len()))
	}

	return nil
}

// NumEntries returns the installed dictionary size.
func (d *BinaryDecoder) NumEntries() int {
	return len(d.offsets) - 1
}

func (d *BinaryDecoder) at(code int32) format.ByteArray {
	return d.arena.Slice(int(d.offsets[code]), int(d.offsets[code+1]))
}

// Decode expands min(len(out), ValuesLeft()) values into out. The views
// point into the decoder's arena and stay valid until the next SetDict or
// Release.
func (d *BinaryDecoder) Decode(out []format.ByteArray) (int, error) {
	n := min(len(out), d.numValues)
	if n == 0 {
		return 0, nil
	}

	codes, release := pool.GetInt32Slice(n)
	defer release()

	if err := d.getCodes(codes); err != nil {
		return 0, err
	}

	for i, code := range codes[:n] {
		if int(code) >= d.NumEntries() {
			return i, fmt.Errorf("%w: code %d outside dictionary of %d entries",
				errs.ErrInvalidData, code, d.NumEntries())
		}
		out[i] = d.at(code)
	}
	d.numValues -= n

	return n, nil
}

// DecodeSpaced expands len(out)-nullCount codes into out, leaving nil at
// positions whose validity bit (at offset) is clear.
func (d *BinaryDecoder) DecodeSpaced(out []format.ByteArray, nullCount int, validity []byte, offset int) (int, error) {
	numValues := len(out) - nullCount
	if _, err := d.Decode(out[:numValues]); err != nil {
		return 0, err
	}

	spaceValues(out, numValues, validity, offset)

	return len(out), nil
}

// Release returns the decoder's arena to the pool, invalidating every
// value it produced. The decoder must not be used afterwards.
func (d *BinaryDecoder) Release() {
	if d.arena != nil {
		pool.PutArenaBuffer(d.arena)
		d.arena = nil
	}
	d.offsets = nil
}

func scalarWidth[T format.Scalar](v T) int {
	switch any(v).(type) {
	case int32, float32:
		return 4
	default:
		return 8
	}
}

func getScalar[T format.Scalar](engine endian.EndianEngine, buf []byte) T {
	var zero T
	switch any(zero).(type) {
	case int32:
		return T(int32(engine.Uint32(buf)))
	case int64:
		return T(int64(engine.Uint64(buf)))
	case float32:
		return T(math.Float32frombits(engine.Uint32(buf)))
	case float64:
		return T(math.Float64frombits(engine.Uint64(buf)))
	default:
		panic("dict: unreachable scalar type")
	}
}

// spaceValues spreads the numValues decoded entries at the front of out
// across the full slice, back to front, placing the zero value at null
// positions.
func spaceValues[T any](out []T, numValues int, validity []byte, offset int) {
	var zero T
	j := numValues - 1
	for i := len(out) - 1; i >= 0; i-- {
		if bitmap.IsSet(validity, offset+i) {
			out[i] = out[j]
			j--
		} else {
			out[i] = zero
		}
	}
}
