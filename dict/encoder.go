// Package dict implements dictionary coding: values are interned into a
// memo table, and the column is serialized as a dictionary payload plus a
// stream of bit-packed/run-length-hybrid codes.
package dict

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/colenc/colenc/column/bitmap"
	"github.com/colenc/colenc/encoding"
	"github.com/colenc/colenc/endian"
	"github.com/colenc/colenc/errs"
	"github.com/colenc/colenc/format"
	"github.com/colenc/colenc/memo"
)

// Supported reports whether the physical type supports dictionary coding.
// Boolean does not: two distinct values never pay for a dictionary.
func Supported(p format.PhysicalType) bool {
	switch p {
	case format.TypeInt32, format.TypeInt64, format.TypeFloat, format.TypeDouble,
		format.TypeByteArray, format.TypeFixedLenByteArray:
		return true
	default:
		return false
	}
}

// encoderCore carries the parts shared by the scalar and binary encoders:
// the pending code buffer and the index stream serialization.
type encoderCore struct {
	engine          endian.EndianEngine
	indices         []int32
	numEntries      int
	dictEncodedSize int
}

// BitWidth returns the bit width needed to represent every assigned code:
// 0 for an empty dictionary, 1 for a single entry, ceil(log2(n)) otherwise.
func (c *encoderCore) BitWidth() int {
	n := c.numEntries
	switch {
	case n == 0:
		return 0
	case n == 1:
		return 1
	default:
		return bits.Len(uint(n - 1))
	}
}

// NumEntries returns the number of distinct values interned so far.
func (c *encoderCore) NumEntries() int {
	return c.numEntries
}

// DictEncodedSize returns the byte size of the dictionary payload. It is
// tracked incrementally on insertions, so it is O(1).
func (c *encoderCore) DictEncodedSize() int {
	return c.dictEncodedSize
}

// EstimatedDataEncodedSize bounds the size WriteIndices can produce for
// the currently pending codes.
func (c *encoderCore) EstimatedDataEncodedSize() int {
	bw := c.BitWidth()
	return 1 + encoding.MaxRleBufferSize(bw, len(c.indices)) + encoding.MinRleBufferSize(bw)
}

// WriteIndices serializes the pending codes into buf as one bit-width byte
// followed by the hybrid run-length/bit-packed stream, then clears the
// pending buffer. A too-small buf fails with ErrCapacityExceeded and
// leaves the pending codes untouched.
func (c *encoderCore) WriteIndices(buf []byte) (int, error) {
	if len(buf) < 1 {
		return 0, fmt.Errorf("%w: index buffer empty", errs.ErrCapacityExceeded)
	}

	bw := c.BitWidth()
	buf[0] = byte(bw)

	enc := encoding.NewRleEncoder(buf[1:], bw)
	for _, code := range c.indices {
		if !enc.Put(uint64(code)) {
			return 0, fmt.Errorf("%w: index buffer %d bytes", errs.ErrCapacityExceeded, len(buf))
		}
	}

	c.indices = c.indices[:0]

	return 1 + enc.Flush(), nil
}

// FlushValues serializes the pending codes into a freshly allocated buffer
// sized by EstimatedDataEncodedSize and truncated to the bytes written.
func (c *encoderCore) FlushValues() ([]byte, error) {
	buf := make([]byte, c.EstimatedDataEncodedSize())
	n, err := c.WriteIndices(buf)
	if err != nil {
		return nil, err
	}

	return buf[:n], nil
}

// Encoder dictionary-encodes fixed-width scalar values.
type Encoder[T format.Scalar] struct {
	encoderCore
	table *memo.Table[T]
}

// NewEncoder creates a scalar dictionary encoder.
func NewEncoder[T format.Scalar](engine endian.EndianEngine, opts ...memo.Option) (*Encoder[T], error) {
	table, err := memo.NewScalar[T](opts...)
	if err != nil {
		return nil, err
	}

	e := &Encoder[T]{table: table}
	e.engine = engine

	return e, nil
}

// Put interns v and appends its code to the pending index stream.
func (e *Encoder[T]) Put(v T) {
	code, found := e.table.GetOrInsert(v)
	if !found {
		e.numEntries++
		e.dictEncodedSize += e.table.Store().EncodedSize(v)
	}
	e.indices = append(e.indices, code)
}

// PutSpaced puts the non-null values of a spaced slice: validity bit
// offset+i set means values[i] is non-null. Null positions contribute no
// code.
func (e *Encoder[T]) PutSpaced(values []T, validity []byte, offset int) {
	for i, v := range values {
		if bitmap.IsSet(validity, offset+i) {
			e.Put(v)
		}
	}
}

// WriteDict serializes the dictionary payload into buf as the raw
// concatenation of the entries at their native width, in code order.
func (e *Encoder[T]) WriteDict(buf []byte) error {
	if len(buf) < e.dictEncodedSize {
		return fmt.Errorf("%w: dict buffer %d bytes, need %d",
			errs.ErrCapacityExceeded, len(buf), e.dictEncodedSize)
	}

	pos := 0
	e.table.VisitValues(0, func(v T) {
		pos += putScalar(e.engine, buf[pos:], v)
	})

	return nil
}

// Release returns the table's pooled resources.
func (e *Encoder[T]) Release() {
	e.table.Release()
	e.indices = nil
}

func putScalar[T format.Scalar](engine endian.EndianEngine, buf []byte, v T) int {
	switch val := any(v).(type) {
	case int32:
		engine.PutUint32(buf, uint32(val))
		return 4
	case int64:
		engine.PutUint64(buf, uint64(val))
		return 8
	case float32:
		engine.PutUint32(buf, math.Float32bits(val))
		return 4
	case float64:
		engine.PutUint64(buf, math.Float64bits(val))
		return 8
	default:
		panic("dict: unreachable scalar type")
	}
}

// BinaryEncoder dictionary-encodes variable-length or fixed-width byte
// string values.
type BinaryEncoder struct {
	encoderCore
	table *memo.Table[format.ByteArray]
	width int
}

// NewBinaryEncoder creates an encoder for variable-length byte arrays.
func NewBinaryEncoder(engine endian.EndianEngine, opts ...memo.Option) (*BinaryEncoder, error) {
	table, err := memo.NewBinary(opts...)
	if err != nil {
		return nil, err
	}

	e := &BinaryEncoder{table: table, width: format.VariableWidth}
	e.engine = engine

	return e, nil
}

// NewFixedBinaryEncoder creates an encoder for fixed-width byte arrays of
// the given width.
func NewFixedBinaryEncoder(engine endian.EndianEngine, width int, opts ...memo.Option) (*BinaryEncoder, error) {
	table, err := memo.NewFixedBinary(width, opts...)
	if err != nil {
		return nil, err
	}

	e := &BinaryEncoder{table: table, width: width}
	e.engine = engine

	return e, nil
}

// Put interns v and appends its code to the pending index stream. Bytes
// are copied; the caller's buffer may be reused afterwards.
func (e *BinaryEncoder) Put(v format.ByteArray) {
	code, found := e.table.GetOrInsert(v)
	if !found {
		e.numEntries++
		e.dictEncodedSize += e.table.Store().EncodedSize(v)
	}
	e.indices = append(e.indices, code)
}

// PutSpaced puts the non-null values of a spaced slice; see
// Encoder.PutSpaced.
func (e *BinaryEncoder) PutSpaced(values []format.ByteArray, validity []byte, offset int) {
	for i, v := range values {
		if bitmap.IsSet(validity, offset+i) {
			e.Put(v)
		}
	}
}

// WriteDict serializes the dictionary payload into buf: fixed-width
// entries as a raw concatenation, variable-length entries as
// [uint32 length][bytes] pairs, in code order.
func (e *BinaryEncoder) WriteDict(buf []byte) error {
	if len(buf) < e.dictEncodedSize {
		return fmt.Errorf("%w: dict buffer %d bytes, need %d",
			errs.ErrCapacityExceeded, len(buf), e.dictEncodedSize)
	}

	pos := 0
	e.table.VisitValues(0, func(v format.ByteArray) {
		if e.width == format.VariableWidth {
			e.engine.PutUint32(buf[pos:], uint32(len(v)))
			pos += 4
		}
		pos += copy(buf[pos:], v)
	})

	return nil
}

// Release returns the table's pooled resources.
func (e *BinaryEncoder) Release() {
	e.table.Release()
	e.indices = nil
}
