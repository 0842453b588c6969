package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInt32Slice_ExactLength(t *testing.T) {
	slice, cleanup := GetInt32Slice(100)
	defer cleanup()

	require.Len(t, slice, 100)
	for i := range slice {
		slice[i] = int32(i)
	}
	require.Equal(t, int32(99), slice[99])
}

func TestGetInt32Slice_ZeroLength(t *testing.T) {
	slice, cleanup := GetInt32Slice(0)
	defer cleanup()

	require.Len(t, slice, 0)
}

func TestGetInt32Slice_ReuseAfterCleanup(t *testing.T) {
	slice, cleanup := GetInt32Slice(64)
	for i := range slice {
		slice[i] = -1
	}
	cleanup()

	// A fresh request may reuse the pooled backing array; it must still
	// come back with the requested length.
	again, cleanup2 := GetInt32Slice(32)
	defer cleanup2()
	require.Len(t, again, 32)
}
