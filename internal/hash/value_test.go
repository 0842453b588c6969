package hash

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytes_Deterministic(t *testing.T) {
	a := Bytes([]byte("apple"))
	b := Bytes([]byte("apple"))
	c := Bytes([]byte("application"))

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

func TestScalar_BitPattern(t *testing.T) {
	// Integer hashes match the hash of their little-endian bytes.
	require.Equal(t, Uint32(42), Scalar(int32(42)))
	require.Equal(t, Uint64(42), Scalar(int64(42)))

	// Floats hash by IEEE bit pattern, not numeric value.
	require.Equal(t, Uint64(math.Float64bits(1.5)), Scalar(1.5))
	require.Equal(t, Uint32(math.Float32bits(1.5)), Scalar(float32(1.5)))
}

func TestScalar_NegativeZeroDistinctFromZero(t *testing.T) {
	// -0.0 and +0.0 have different bit patterns and intern separately.
	negZero := math.Copysign(0, -1)
	require.NotEqual(t, Scalar(0.0), Scalar(negZero))
}

func TestScalar_WidthMatters(t *testing.T) {
	// The same numeric value hashes differently at 4 and 8 byte widths.
	require.NotEqual(t, Scalar(int32(7)), Scalar(int64(7)))
}
