// Package hash computes the 64-bit hashes used for value interning.
//
// Fixed-width scalars hash by bit pattern, variable-length values by byte
// content, both through xxHash64. Two values that compare equal under the
// memo table's equality rule always produce the same hash.
package hash

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// Bytes computes the xxHash64 of the given byte slice.
func Bytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Uint64 computes the xxHash64 of a 64-bit pattern in little-endian order.
func Uint64(v uint64) uint64 {
	var b [8]byte
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)

	return xxhash.Sum64(b[:])
}

// Uint32 computes the xxHash64 of a 32-bit pattern in little-endian order.
func Uint32(v uint32) uint64 {
	var b [4]byte
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)

	return xxhash.Sum64(b[:])
}

// Scalar computes the hash of a fixed-width scalar by its bit pattern.
// Distinct NaN payloads hash as distinct values, matching the memo table's
// bitwise equality rule for floats.
func Scalar[T int32 | int64 | float32 | float64](v T) uint64 {
	switch val := any(v).(type) {
	case int32:
		return Uint32(uint32(val))
	case int64:
		return Uint64(uint64(val))
	case float32:
		return Uint32(math.Float32bits(val))
	case float64:
		return Uint64(math.Float64bits(val))
	default:
		panic("hash: unreachable scalar type")
	}
}
