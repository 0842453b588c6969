package pool

import "sync"

// Slice pools for efficient reuse of typed scratch slices.
// Decoders use these for per-call intermediate results, e.g. the int32
// length batch pulled from a delta block stream before slicing payload bytes.
var (
	int32SlicePool = sync.Pool{
		New: func() any { return &[]int32{} },
	}
)

// GetInt32Slice retrieves and resizes an int32 slice from the pool.
//
// The returned slice will have the exact length specified by the size parameter.
// If the pooled slice has insufficient capacity, a new slice will be allocated.
// The caller must call the returned cleanup function to return the slice to the pool.
//
// Parameters:
//   - size: The desired length of the slice
//
// Returns:
//   - []int32: A slice with length equal to size
//   - func(): Cleanup function that must be called (typically with defer) to return the slice to the pool
//
// Example:
//
//	lengths, cleanup := pool.GetInt32Slice(1000)
//	defer cleanup()
//	// Use lengths slice...
func GetInt32Slice(size int) ([]int32, func()) {
	ptr, _ := int32SlicePool.Get().(*[]int32)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]int32, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { int32SlicePool.Put(ptr) }
}
