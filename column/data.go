// Package column holds the in-memory typed-column representation the
// hash kernels and the facade operate on: a contiguous value buffer, an
// optional validity bitmap, and offset-based layout for variable-length
// values. It mirrors what a surrounding file format hands the encoders.
package column

import (
	"github.com/colenc/colenc/column/bitmap"
	"github.com/colenc/colenc/format"
)

// Data is one contiguous column chunk.
//
// Fixed-width values live packed in Values at Type.ByteWidth() bytes each.
// Variable-length values use the offsets layout: value i spans
// Bytes[ValueOffsets[i]:ValueOffsets[i+1]] and ValueOffsets holds Len+1
// entries. Validity bit Offset+i set means value i is non-null; a nil
// Validity means all values are valid.
type Data struct {
	Type      format.ColumnType
	Len       int
	Offset    int
	NullCount int

	Validity     []byte
	Values       []byte
	ValueOffsets []int32
	Bytes        []byte
}

// IsValid reports whether value i is non-null.
func (d *Data) IsValid(i int) bool {
	return bitmap.IsSet(d.Validity, d.Offset+i)
}

// FixedWidthAt returns the raw bytes of fixed-width value i.
func (d *Data) FixedWidthAt(i int) []byte {
	w := d.Type.ByteWidth()
	start := (d.Offset + i) * w

	return d.Values[start : start+w]
}

// ByteArrayAt returns variable-length value i as a view into Bytes.
func (d *Data) ByteArrayAt(i int) format.ByteArray {
	j := d.Offset + i
	return d.Bytes[d.ValueOffsets[j]:d.ValueOffsets[j+1]]
}

// ValidityReader returns a bitmap reader positioned at the chunk's first
// value.
func (d *Data) ValidityReader() *bitmap.Reader {
	return bitmap.NewReader(d.Validity, d.Offset)
}
