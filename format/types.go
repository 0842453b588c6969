package format

type (
	PhysicalType uint8
	EncodingType uint8
)

const (
	TypeBoolean           PhysicalType = 0x1 // TypeBoolean represents 1-bit boolean values.
	TypeInt32             PhysicalType = 0x2 // TypeInt32 represents 32-bit signed integers.
	TypeInt64             PhysicalType = 0x3 // TypeInt64 represents 64-bit signed integers.
	TypeFloat             PhysicalType = 0x4 // TypeFloat represents IEEE 754 32-bit floats.
	TypeDouble            PhysicalType = 0x5 // TypeDouble represents IEEE 754 64-bit floats.
	TypeByteArray         PhysicalType = 0x6 // TypeByteArray represents variable-length byte strings.
	TypeFixedLenByteArray PhysicalType = 0x7 // TypeFixedLenByteArray represents fixed-width byte strings.
	TypeNull              PhysicalType = 0x8 // TypeNull represents columns containing only nulls.

	TypeRLEDictionary        EncodingType = 0x1 // TypeRLEDictionary represents dictionary codes in the hybrid RLE/bit-packed format.
	TypeDeltaBinaryPacked    EncodingType = 0x2 // TypeDeltaBinaryPacked represents block/mini-block delta-packed integers.
	TypeDeltaLengthByteArray EncodingType = 0x3 // TypeDeltaLengthByteArray represents byte arrays with delta-packed lengths.
	TypeDeltaByteArray       EncodingType = 0x4 // TypeDeltaByteArray represents byte arrays with shared-prefix delta compression.
)

// VariableWidth is the ByteWidth result for variable-length physical types.
const VariableWidth = -1

// ByteArray is a view over the bytes of one variable-length value.
// It is not null-terminated; equality is byte-content equality.
type ByteArray []byte

// Scalar constrains the fixed-width value types that are compared and
// hashed by bit pattern.
type Scalar interface {
	int32 | int64 | float32 | float64
}

// Integer constrains the physical types delta block coding applies to.
type Integer interface {
	int32 | int64
}

// ColumnType describes the physical shape of one column's values: the
// physical type plus the value width for fixed-length byte arrays.
// It is the encoding context supplied by the surrounding file format.
type ColumnType struct {
	Physical PhysicalType
	// TypeLength is the value width in bytes for TypeFixedLenByteArray.
	// It is ignored for all other physical types.
	TypeLength int
}

// ByteWidth returns the fixed width in bytes of values of this type,
// or VariableWidth for variable-length types.
func (t ColumnType) ByteWidth() int {
	if t.Physical == TypeFixedLenByteArray {
		return t.TypeLength
	}

	return t.Physical.ByteWidth()
}

// ByteWidth returns the fixed width in bytes of the physical type, or
// VariableWidth for TypeByteArray and TypeFixedLenByteArray (whose width
// lives on the ColumnType).
func (p PhysicalType) ByteWidth() int {
	switch p {
	case TypeBoolean:
		return 1
	case TypeInt32, TypeFloat:
		return 4
	case TypeInt64, TypeDouble:
		return 8
	case TypeNull:
		return 0
	default:
		return VariableWidth
	}
}

// IsInteger reports whether the physical type is a signed integer type.
func (p PhysicalType) IsInteger() bool {
	return p == TypeInt32 || p == TypeInt64
}

func (p PhysicalType) String() string {
	switch p {
	case TypeBoolean:
		return "Boolean"
	case TypeInt32:
		return "Int32"
	case TypeInt64:
		return "Int64"
	case TypeFloat:
		return "Float"
	case TypeDouble:
		return "Double"
	case TypeByteArray:
		return "ByteArray"
	case TypeFixedLenByteArray:
		return "FixedLenByteArray"
	case TypeNull:
		return "Null"
	default:
		return "Unknown"
	}
}

func (e EncodingType) String() string {
	switch e {
	case TypeRLEDictionary:
		return "RLEDictionary"
	case TypeDeltaBinaryPacked:
		return "DeltaBinaryPacked"
	case TypeDeltaLengthByteArray:
		return "DeltaLengthByteArray"
	case TypeDeltaByteArray:
		return "DeltaByteArray"
	default:
		return "Unknown"
	}
}
