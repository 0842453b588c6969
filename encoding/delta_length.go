package encoding

import (
	"fmt"

	"github.com/colenc/colenc/endian"
	"github.com/colenc/colenc/errs"
	"github.com/colenc/colenc/format"
	"github.com/colenc/colenc/internal/pool"
)

// Delta-length byte array stream layout:
//
//	[uint32 lengths_section_byte_size]
//	[delta block stream of int32 value lengths]
//	[concatenated value bytes]
//
// Decoded values are views into the payload section; the caller must keep
// the input bytes alive while the views are in use.

// DeltaLengthByteArrayDecoder decodes variable-length values whose
// lengths are delta-block-encoded ahead of the concatenated payload.
type DeltaLengthByteArrayDecoder struct {
	engine  endian.EndianEngine
	lengths *DeltaBlockDecoder[int32]

	data         []byte
	offset       int
	lastRemBytes int
	numValues    int
}

// NewDeltaLengthByteArrayDecoder creates a decoder with no data attached;
// call SetData before Decode.
func NewDeltaLengthByteArrayDecoder(engine endian.EndianEngine) *DeltaLengthByteArrayDecoder {
	return &DeltaLengthByteArrayDecoder{
		engine:  engine,
		lengths: NewDeltaBlockDecoder[int32](),
	}
}

// SetData attaches an encoded stream holding numValues values.
func (d *DeltaLengthByteArrayDecoder) SetData(numValues int, data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("%w: delta-length header", errs.ErrEndOfStream)
	}

	lengthsSize := int(d.engine.Uint32(data))
	if lengthsSize > len(data)-4 {
		return fmt.Errorf("%w: lengths section %d bytes, %d available",
			errs.ErrEndOfStream, lengthsSize, len(data)-4)
	}

	d.lengths.SetData(numValues, data[4:4+lengthsSize])
	d.data = data[4+lengthsSize:]
	d.offset = 0
	d.lastRemBytes = len(d.data)
	d.numValues = numValues

	return nil
}

// ValuesLeft returns the number of values not yet decoded.
func (d *DeltaLengthByteArrayDecoder) ValuesLeft() int {
	return d.numValues
}

// Decode produces min(len(out), ValuesLeft()) byte array views into out.
// The views alias the payload passed to SetData.
func (d *DeltaLengthByteArrayDecoder) Decode(out []format.ByteArray) (int, error) {
	n := min(len(out), d.numValues)
	if n == 0 {
		return 0, nil
	}

	lengths, release := pool.GetInt32Slice(n)
	defer release()

	got, err := d.lengths.Decode(lengths)
	if err != nil {
		return 0, err
	}
	if got < n {
		return 0, fmt.Errorf("%w: %d value lengths, want %d", errs.ErrEndOfStream, got, n)
	}

	for i, length := range lengths[:n] {
		if length < 0 || int(length) > d.lastRemBytes {
			return i, fmt.Errorf("%w: value length %d exceeds %d remaining payload bytes",
				errs.ErrEndOfStream, length, d.lastRemBytes)
		}
		out[i] = d.data[d.offset : d.offset+int(length)]
		d.offset += int(length)
		d.lastRemBytes -= int(length)
	}
	d.numValues -= n

	return n, nil
}

// DeltaLengthByteArrayEncoder produces the stream
// DeltaLengthByteArrayDecoder consumes.
type DeltaLengthByteArrayEncoder struct {
	engine  endian.EndianEngine
	lengths *DeltaBlockEncoder[int32]
	payload *pool.ByteBuffer
}

// NewDeltaLengthByteArrayEncoder creates an empty encoder.
func NewDeltaLengthByteArrayEncoder(engine endian.EndianEngine) *DeltaLengthByteArrayEncoder {
	enc, err := NewDeltaBlockEncoder[int32](DefaultBlockSize, DefaultMiniBlocks)
	if err != nil {
		panic(err) // defaults always divide evenly
	}

	return &DeltaLengthByteArrayEncoder{
		engine:  engine,
		lengths: enc,
		payload: pool.GetArenaBuffer(),
	}
}

// Put buffers one value; bytes are copied.
func (e *DeltaLengthByteArrayEncoder) Put(v format.ByteArray) {
	e.lengths.Put(int32(len(v)))
	e.payload.MustWrite(v)
}

// Len returns the number of buffered values.
func (e *DeltaLengthByteArrayEncoder) Len() int {
	return e.lengths.Len()
}

// FlushData encodes every buffered value and returns the stream bytes.
// The returned slice is freshly allocated and owned by the caller.
func (e *DeltaLengthByteArrayEncoder) FlushData() []byte {
	lengthsData := e.lengths.FlushData()
	payload := e.payload.Bytes()

	out := make([]byte, 0, 4+len(lengthsData)+len(payload))
	out = e.engine.AppendUint32(out, uint32(len(lengthsData)))
	out = append(out, lengthsData...)
	out = append(out, payload...)

	e.lengths.Reset()
	e.payload.Reset()

	return out
}

// Release returns the encoder's arena to the pool. The encoder must not
// be used afterwards.
func (e *DeltaLengthByteArrayEncoder) Release() {
	if e.payload != nil {
		pool.PutArenaBuffer(e.payload)
		e.payload = nil
	}
}
