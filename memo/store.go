package memo

import (
	"bytes"
	"math"

	"github.com/colenc/colenc/format"
	"github.com/colenc/colenc/internal/pool"
)

// Store is the value-storage strategy behind a Table. It keeps the dense
// insertion-ordered dictionary: code i holds the i-th distinct value seen.
//
// Implementations differ only in physical layout; probing, growth and code
// assignment live in Table.
type Store[T any] interface {
	// Len returns the number of stored values.
	Len() int
	// Append stores v under the next code. Variable-length implementations
	// copy v's bytes into owned storage.
	Append(v T)
	// At returns the value stored under code. For arena-backed stores the
	// returned view is valid until the next Append.
	At(code int32) T
	// Equal reports whether the value under code equals v under the store's
	// equality rule (bit pattern for scalars, byte content for binary).
	Equal(code int32, v T) bool
	// EncodedSize returns the logical on-disk size of v in a dictionary
	// payload section.
	EncodedSize(v T) int
	// Release returns pooled resources. The store is unusable afterwards.
	Release()
}

// scalarBits returns the bit pattern of a fixed-width scalar widened to 64
// bits. Comparing patterns instead of values keeps NaN payloads distinct and
// -0.0 distinct from +0.0, matching the hash function.
func scalarBits[T format.Scalar](v T) uint64 {
	switch val := any(v).(type) {
	case int32:
		return uint64(uint32(val))
	case int64:
		return uint64(val)
	case float32:
		return uint64(math.Float32bits(val))
	case float64:
		return math.Float64bits(val)
	default:
		panic("memo: unreachable scalar type")
	}
}

// ScalarStore stores fixed-width scalars by value.
type ScalarStore[T format.Scalar] struct {
	values []T
}

// NewScalarStore creates an empty scalar store.
func NewScalarStore[T format.Scalar]() *ScalarStore[T] {
	return &ScalarStore[T]{}
}

func (s *ScalarStore[T]) Len() int        { return len(s.values) }
func (s *ScalarStore[T]) Append(v T)      { s.values = append(s.values, v) }
func (s *ScalarStore[T]) At(code int32) T { return s.values[code] }
func (s *ScalarStore[T]) Release()        { s.values = nil }

func (s *ScalarStore[T]) Equal(code int32, v T) bool {
	return scalarBits(s.values[code]) == scalarBits(v)
}

func (s *ScalarStore[T]) EncodedSize(T) int {
	var zero T
	return int(sizeOf(zero))
}

// Values returns the dense insertion-ordered value slice. The caller must
// not modify it.
func (s *ScalarStore[T]) Values() []T { return s.values }

func sizeOf[T format.Scalar](v T) uintptr {
	switch any(v).(type) {
	case int32, float32:
		return 4
	default:
		return 8
	}
}

// BinaryStore stores variable-length values in a contiguous byte arena with
// a parallel offset list, so interned values stay valid after the caller's
// input buffer is released.
type BinaryStore struct {
	arena   *pool.ByteBuffer
	offsets []int32
}

// NewBinaryStore creates an empty binary store backed by a pooled arena.
func NewBinaryStore() *BinaryStore {
	return &BinaryStore{
		arena:   pool.GetArenaBuffer(),
		offsets: []int32{0},
	}
}

func (s *BinaryStore) Len() int { return len(s.offsets) - 1 }

func (s *BinaryStore) Append(v format.ByteArray) {
	s.arena.MustWrite(v)
	s.offsets = append(s.offsets, int32(s.arena.Len()))
}

func (s *BinaryStore) At(code int32) format.ByteArray {
	return s.arena.Slice(int(s.offsets[code]), int(s.offsets[code+1]))
}

func (s *BinaryStore) Equal(code int32, v format.ByteArray) bool {
	return bytes.Equal(s.At(code), v)
}

// EncodedSize counts the 4-byte length prefix plus the value bytes.
func (s *BinaryStore) EncodedSize(v format.ByteArray) int { return 4 + len(v) }

func (s *BinaryStore) Release() {
	pool.PutArenaBuffer(s.arena)
	s.arena = nil
	s.offsets = nil
}

// ValuesSize returns the total number of value bytes in the arena.
func (s *BinaryStore) ValuesSize() int { return s.arena.Len() }

// FixedBinaryStore stores fixed-width byte strings in a contiguous arena,
// addressing value i at byte offset i*width.
type FixedBinaryStore struct {
	arena *pool.ByteBuffer
	width int
}

// NewFixedBinaryStore creates an empty fixed-width binary store.
func NewFixedBinaryStore(width int) *FixedBinaryStore {
	return &FixedBinaryStore{
		arena: pool.GetArenaBuffer(),
		width: width,
	}
}

func (s *FixedBinaryStore) Len() int {
	if s.width == 0 {
		return 0
	}

	return s.arena.Len() / s.width
}

func (s *FixedBinaryStore) Append(v format.ByteArray) {
	s.arena.MustWrite(v[:s.width])
}

func (s *FixedBinaryStore) At(code int32) format.ByteArray {
	start := int(code) * s.width
	return s.arena.Slice(start, start+s.width)
}

func (s *FixedBinaryStore) Equal(code int32, v format.ByteArray) bool {
	return bytes.Equal(s.At(code), v[:s.width])
}

func (s *FixedBinaryStore) EncodedSize(format.ByteArray) int { return s.width }

func (s *FixedBinaryStore) Release() {
	pool.PutArenaBuffer(s.arena)
	s.arena = nil
}

// Width returns the fixed value width in bytes.
func (s *FixedBinaryStore) Width() int { return s.width }
