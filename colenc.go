// Package colenc implements the value-encoding core of a columnar file
// format: typed column values in, compact byte sequences out, and back.
//
// Columns are dictionary-encoded through a value-interning memo table and
// serialized as a dictionary payload plus a hybrid run-length/bit-packed
// index stream. Integer columns can alternatively be delta-packed into
// block/mini-block streams, and byte array columns support delta-length
// and shared-prefix delta layouts. An in-memory hash kernel performs
// "unique" and "dictionary-encode" over whole column chunks with null
// handling.
//
// # Core Features
//
//   - Value interning with dense, stable codes (xxHash64, open addressing)
//   - Dictionary encoding with bit-packed/run-length hybrid index streams
//   - Block/mini-block delta packing for integers
//   - Delta-length and prefix-delta layouts for byte arrays
//   - Whole-array unique / dictionary-encode kernels with null bitmaps
//   - Explicit little/big-endian control for every serialized layout
//
// # Basic Usage
//
// Dictionary-encoding a column of strings:
//
//	import (
//	    "github.com/colenc/colenc/dict"
//	    "github.com/colenc/colenc/endian"
//	)
//
//	engine := endian.GetLittleEndianEngine()
//	enc, _ := dict.NewBinaryEncoder(engine)
//	defer enc.Release()
//
//	enc.Put([]byte("north"))
//	enc.Put([]byte("south"))
//	enc.Put([]byte("north"))
//
//	dictBuf := make([]byte, enc.DictEncodedSize())
//	_ = enc.WriteDict(dictBuf)
//	indexBuf, _ := enc.FlushValues()
//
// Decoding it back:
//
//	dec := dict.NewBinaryDecoder(engine)
//	defer dec.Release()
//	_ = dec.SetDictBytes(2, dictBuf)
//	_ = dec.SetData(3, indexBuf)
//
//	out := make([]format.ByteArray, 3)
//	_, _ = dec.Decode(out)
//
// Deduplicating a column chunk in memory:
//
//	dictArr, codes, _ := colenc.DictionaryEncode(chunk)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the kernel,
// dict and encoding packages, simplifying the most common use cases. For
// fine-grained control, use those packages directly.
package colenc

import (
	"fmt"

	"github.com/colenc/colenc/column"
	"github.com/colenc/colenc/dict"
	"github.com/colenc/colenc/encoding"
	"github.com/colenc/colenc/endian"
	"github.com/colenc/colenc/errs"
	"github.com/colenc/colenc/format"
	"github.com/colenc/colenc/kernel"
)

// ByteArrayDecoder is the common surface of the byte array value decoders.
// SetData attaches an encoded stream holding numValues values; Decode
// fills out with up to ValuesLeft() values.
type ByteArrayDecoder interface {
	SetData(numValues int, data []byte) error
	Decode(out []format.ByteArray) (int, error)
	ValuesLeft() int
}

// IntDecoder is the common surface of the integer value decoders.
type IntDecoder[T format.Integer] interface {
	SetData(numValues int, data []byte)
	Decode(out []T) (int, error)
	ValuesLeft() int
}

// NewByteArrayDecoder creates a decoder for byte array columns stored with
// the given encoding. TypeRLEDictionary decoders additionally need a
// dictionary installed via dict.BinaryDecoder before decoding.
//
// Returns ErrTypeMismatch for encodings that do not apply to byte arrays.
func NewByteArrayDecoder(enc format.EncodingType, engine endian.EndianEngine) (ByteArrayDecoder, error) {
	switch enc {
	case format.TypeDeltaLengthByteArray:
		return encoding.NewDeltaLengthByteArrayDecoder(engine), nil
	case format.TypeDeltaByteArray:
		return encoding.NewDeltaByteArrayDecoder(engine), nil
	case format.TypeRLEDictionary:
		return dict.NewBinaryDecoder(engine), nil
	default:
		return nil, fmt.Errorf("%w: encoding %s for byte arrays", errs.ErrTypeMismatch, enc)
	}
}

// NewIntDecoder creates a decoder for integer columns stored with the
// given encoding. Dictionary-coded integers are handled by dict.Decoder,
// which needs a dictionary installed first.
//
// Returns ErrTypeMismatch for encodings that do not apply to integers.
func NewIntDecoder[T format.Integer](enc format.EncodingType) (IntDecoder[T], error) {
	switch enc {
	case format.TypeDeltaBinaryPacked:
		return encoding.NewDeltaBlockDecoder[T](), nil
	default:
		return nil, fmt.Errorf("%w: encoding %s for integers", errs.ErrTypeMismatch, enc)
	}
}

// CheckDictionarySupport reports whether the physical type can be
// dictionary-encoded, returning ErrUnsupportedDictionary when it cannot.
func CheckDictionarySupport(p format.PhysicalType) error {
	if !dict.Supported(p) {
		return fmt.Errorf("%w: physical type %s", errs.ErrUnsupportedDictionary, p)
	}

	return nil
}

// Unique deduplicates chunked column input into a dictionary column of
// the chunks' type, in first-seen order.
func Unique(chunks ...*column.Data) (*column.Data, error) {
	return kernel.Unique(chunks...)
}

// DictionaryEncode dictionary-encodes chunked column input, returning the
// shared dictionary plus one int32 code chunk per input chunk. Null
// positions carry a cleared validity bit in the code chunks.
func DictionaryEncode(chunks ...*column.Data) (*column.Data, []*column.Data, error) {
	return kernel.DictionaryEncode(chunks...)
}
