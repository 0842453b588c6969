// Package memo implements value interning: a hash table that assigns dense
// integer codes to distinct values in first-seen order.
//
// One generic probing core (Table) serves every physical layout through a
// Store strategy: fixed-width scalars by bit pattern, variable-length and
// fixed-width byte strings by byte content. The dictionary encoder and the
// array hash kernels both build on this package.
//
// Codes are stable: once a value is assigned a code, the code never changes
// for the lifetime of the table, and codes are always the dense range
// 0..Len()-1 with no gaps.
package memo

import (
	"github.com/colenc/colenc/format"
	"github.com/colenc/colenc/internal/hash"
	"github.com/colenc/colenc/internal/options"
)

// DefaultInitialSlots is the initial slot array size used when no
// WithInitialSlots option is given.
const DefaultInitialSlots = 1 << 10

// maxLoadFactor is the highest occupied-slot ratio allowed after any
// insertion; the table doubles before an insert would exceed it.
const maxLoadFactor = 0.7

// slotEmpty marks an unoccupied slot. Codes are non-negative, so any
// negative sentinel is unambiguous.
const slotEmpty int32 = -1

type config struct {
	initialSlots int
}

// Option configures table construction.
type Option = options.Option[*config]

// WithInitialSlots sets the initial slot array size. The value is rounded
// up to the next power of two.
func WithInitialSlots(n int) Option {
	return options.NoError(func(c *config) {
		c.initialSlots = n
	})
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}

// Table is an open-addressing hash table mapping values to dense codes.
// It owns its slot array; the dictionary itself lives in the Store.
//
// Table is not safe for concurrent use; callers that share a table across
// goroutines must serialize access externally.
type Table[T any] struct {
	store  Store[T]
	hashFn func(T) uint64
	slots  []int32
	mask   uint64
}

// New creates a table over the given store and hash function.
func New[T any](store Store[T], hashFn func(T) uint64, opts ...Option) (*Table[T], error) {
	cfg := &config{initialSlots: DefaultInitialSlots}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	size := nextPowerOfTwo(cfg.initialSlots)
	slots := make([]int32, size)
	for i := range slots {
		slots[i] = slotEmpty
	}

	return &Table[T]{
		store:  store,
		hashFn: hashFn,
		slots:  slots,
		mask:   uint64(size - 1),
	}, nil
}

// NewScalar creates a table interning fixed-width scalars by bit pattern.
func NewScalar[T format.Scalar](opts ...Option) (*Table[T], error) {
	return New[T](NewScalarStore[T](), hash.Scalar[T], opts...)
}

// NewBinary creates a table interning variable-length byte strings by
// content. Inserted values are copied into an internal arena.
func NewBinary(opts ...Option) (*Table[format.ByteArray], error) {
	return New[format.ByteArray](NewBinaryStore(), hashByteArray, opts...)
}

// NewFixedBinary creates a table interning fixed-width byte strings of the
// given width.
func NewFixedBinary(width int, opts ...Option) (*Table[format.ByteArray], error) {
	store := NewFixedBinaryStore(width)
	hashFn := func(v format.ByteArray) uint64 {
		return hash.Bytes(v[:width])
	}

	return New[format.ByteArray](store, hashFn, opts...)
}

func hashByteArray(v format.ByteArray) uint64 {
	return hash.Bytes(v)
}

// Len returns the number of distinct values interned so far.
func (t *Table[T]) Len() int {
	return t.store.Len()
}

// SlotCount returns the current slot array size. Exposed for load-factor
// verification.
func (t *Table[T]) SlotCount() int {
	return len(t.slots)
}

// At returns the value assigned the given code.
func (t *Table[T]) At(code int32) T {
	return t.store.At(code)
}

// Store returns the underlying value store.
func (t *Table[T]) Store() Store[T] {
	return t.store
}

// probe finds the slot index holding a code for v, or the first empty slot
// if v is absent.
func (t *Table[T]) probe(slots []int32, mask uint64, v T) uint64 {
	j := t.hashFn(v) & mask
	for {
		code := slots[j]
		if code == slotEmpty || t.store.Equal(code, v) {
			return j
		}
		j++
		if j > mask {
			j = 0
		}
	}
}

// Get returns the code assigned to v without inserting. The second return
// reports whether v is present.
func (t *Table[T]) Get(v T) (int32, bool) {
	j := t.probe(t.slots, t.mask, v)
	code := t.slots[j]
	if code == slotEmpty {
		return 0, false
	}

	return code, true
}

// GetOrInsert returns the code for v, interning it first if absent. The
// second return reports whether v was already present; a fresh insert
// always receives code Len()-1.
func (t *Table[T]) GetOrInsert(v T) (int32, bool) {
	j := t.probe(t.slots, t.mask, v)
	if code := t.slots[j]; code != slotEmpty {
		return code, true
	}

	// Double before the insertion would push the load factor past the
	// limit, so the invariant holds after every insert.
	if float64(t.store.Len()+1) > maxLoadFactor*float64(len(t.slots)) {
		t.doubleSize()
		j = t.probe(t.slots, t.mask, v)
	}

	code := int32(t.store.Len())
	t.store.Append(v)
	t.slots[j] = code

	return code, false
}

// doubleSize rehashes every assigned code into a slot array twice the size.
// Codes and the value store are untouched; only slot placement changes.
func (t *Table[T]) doubleSize() {
	newSize := len(t.slots) * 2
	newSlots := make([]int32, newSize)
	for i := range newSlots {
		newSlots[i] = slotEmpty
	}
	newMask := uint64(newSize - 1)

	for _, code := range t.slots {
		if code == slotEmpty {
			continue
		}
		j := t.hashFn(t.store.At(code)) & newMask
		for newSlots[j] != slotEmpty {
			j++
			if j > newMask {
				j = 0
			}
		}
		newSlots[j] = code
	}

	t.slots = newSlots
	t.mask = newMask
}

// VisitValues calls fn for every value with code >= start, in code order.
func (t *Table[T]) VisitValues(start int32, fn func(T)) {
	for code := start; code < int32(t.store.Len()); code++ {
		fn(t.store.At(code))
	}
}

// Release returns pooled resources held by the store. The table is
// unusable afterwards.
func (t *Table[T]) Release() {
	t.store.Release()
	t.slots = nil
}
