package encoding

import (
	"fmt"

	"github.com/colenc/colenc/endian"
	"github.com/colenc/colenc/errs"
	"github.com/colenc/colenc/format"
	"github.com/colenc/colenc/internal/pool"
)

// Delta byte array stream layout:
//
//	[uint32 prefix_lengths_section_byte_size]
//	[delta block stream of int32 prefix lengths]
//	[delta-length byte array stream of suffixes]
//
// Each value is previous[:prefix] ++ suffix. Values are rebuilt in order
// into a decoder-owned arena, so each decoded value stays valid until the
// decoder is released or reattached with SetData.

// DeltaByteArrayDecoder decodes prefix-compressed byte array values. The
// reconstruction is strictly sequential: every value depends on the one
// before it, so the decoder cannot resume from an arbitrary offset.
type DeltaByteArrayDecoder struct {
	engine   endian.EndianEngine
	prefixes *DeltaBlockDecoder[int32]
	suffixes *DeltaLengthByteArrayDecoder

	arena     *pool.ByteBuffer
	lastValue format.ByteArray
	numValues int
}

// NewDeltaByteArrayDecoder creates a decoder with no data attached; call
// SetData before Decode.
func NewDeltaByteArrayDecoder(engine endian.EndianEngine) *DeltaByteArrayDecoder {
	return &DeltaByteArrayDecoder{
		engine:   engine,
		prefixes: NewDeltaBlockDecoder[int32](),
		suffixes: NewDeltaLengthByteArrayDecoder(engine),
		arena:    pool.GetArenaBuffer(),
	}
}

// SetData attaches an encoded stream holding numValues values. State from
// any previous stream, including reconstructed values, is discarded.
func (d *DeltaByteArrayDecoder) SetData(numValues int, data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("%w: delta byte array header", errs.ErrEndOfStream)
	}

	prefixSize := int(d.engine.Uint32(data))
	if prefixSize > len(data)-4 {
		return fmt.Errorf("%w: prefix lengths section %d bytes, %d available",
			errs.ErrEndOfStream, prefixSize, len(data)-4)
	}

	d.prefixes.SetData(numValues, data[4:4+prefixSize])
	if err := d.suffixes.SetData(numValues, data[4+prefixSize:]); err != nil {
		return err
	}

	d.arena.Reset()
	d.lastValue = nil
	d.numValues = numValues

	return nil
}

// ValuesLeft returns the number of values not yet decoded.
func (d *DeltaByteArrayDecoder) ValuesLeft() int {
	return d.numValues
}

// Decode produces min(len(out), ValuesLeft()) values into out. The values
// point into the decoder's arena and stay valid until the next SetData or
// Release.
func (d *DeltaByteArrayDecoder) Decode(out []format.ByteArray) (int, error) {
	n := min(len(out), d.numValues)
	if n == 0 {
		return 0, nil
	}

	prefixLengths, release := pool.GetInt32Slice(n)
	defer release()

	got, err := d.prefixes.Decode(prefixLengths)
	if err != nil {
		return 0, err
	}
	if got < n {
		return 0, fmt.Errorf("%w: %d prefix lengths, want %d", errs.ErrEndOfStream, got, n)
	}

	suffixes := make([]format.ByteArray, n)
	if _, err := d.suffixes.Decode(suffixes); err != nil {
		return 0, err
	}

	for i := 0; i < n; i++ {
		prefix := int(prefixLengths[i])
		if prefix < 0 || prefix > len(d.lastValue) {
			return i, fmt.Errorf("%w: prefix length %d exceeds previous value length %d",
				errs.ErrEndOfStream, prefix, len(d.lastValue))
		}

		start := d.arena.Len()
		d.arena.MustWrite(d.lastValue[:prefix])
		d.arena.MustWrite(suffixes[i])
		value := d.arena.Slice(start, d.arena.Len())

		out[i] = value
		d.lastValue = value
	}
	d.numValues -= n

	return n, nil
}

// Release returns the decoder's arena to the pool, invalidating every
// value it produced. The decoder must not be used afterwards.
func (d *DeltaByteArrayDecoder) Release() {
	if d.arena != nil {
		pool.PutArenaBuffer(d.arena)
		d.arena = nil
	}
	d.lastValue = nil
}

// DeltaByteArrayEncoder produces the stream DeltaByteArrayDecoder
// consumes, splitting each value into the longest prefix shared with the
// previous value and the remaining suffix.
type DeltaByteArrayEncoder struct {
	engine   endian.EndianEngine
	prefixes *DeltaBlockEncoder[int32]
	suffixes *DeltaLengthByteArrayEncoder

	lastValue []byte
}

// NewDeltaByteArrayEncoder creates an empty encoder.
func NewDeltaByteArrayEncoder(engine endian.EndianEngine) *DeltaByteArrayEncoder {
	enc, err := NewDeltaBlockEncoder[int32](DefaultBlockSize, DefaultMiniBlocks)
	if err != nil {
		panic(err) // defaults always divide evenly
	}

	return &DeltaByteArrayEncoder{
		engine:   engine,
		prefixes: enc,
		suffixes: NewDeltaLengthByteArrayEncoder(engine),
	}
}

// Put buffers one value; bytes are copied.
func (e *DeltaByteArrayEncoder) Put(v format.ByteArray) {
	prefix := sharedPrefixLen(e.lastValue, v)
	e.prefixes.Put(int32(prefix))
	e.suffixes.Put(v[prefix:])
	e.lastValue = append(e.lastValue[:0], v...)
}

// Len returns the number of buffered values.
func (e *DeltaByteArrayEncoder) Len() int {
	return e.prefixes.Len()
}

// FlushData encodes every buffered value and returns the stream bytes.
// The returned slice is freshly allocated and owned by the caller.
func (e *DeltaByteArrayEncoder) FlushData() []byte {
	prefixData := e.prefixes.FlushData()
	suffixData := e.suffixes.FlushData()

	out := make([]byte, 0, 4+len(prefixData)+len(suffixData))
	out = e.engine.AppendUint32(out, uint32(len(prefixData)))
	out = append(out, prefixData...)
	out = append(out, suffixData...)

	e.prefixes.Reset()
	e.lastValue = e.lastValue[:0]

	return out
}

// Release returns the suffix encoder's arena to the pool. The encoder
// must not be used afterwards.
func (e *DeltaByteArrayEncoder) Release() {
	e.suffixes.Release()
}

func sharedPrefixLen(a, b []byte) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}

	return i
}
