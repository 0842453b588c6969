package endian

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestCheckEndianness(t *testing.T) {
	result := CheckEndianness()

	var probe uint16 = 0x0102
	probeBytes := (*[2]byte)(unsafe.Pointer(&probe))

	if probeBytes[0] == 0x01 {
		require.Equal(t, binary.BigEndian, result)
	} else {
		require.Equal(t, binary.LittleEndian, result)
	}
}

func TestNativeChecksAreInverse(t *testing.T) {
	require.NotEqual(t, IsNativeLittleEndian(), IsNativeBigEndian())
	require.True(t, IsNativeLittleEndian() || IsNativeBigEndian())
}

func TestCompareNativeEndian(t *testing.T) {
	if IsNativeLittleEndian() {
		require.True(t, CompareNativeEndian(GetLittleEndianEngine()))
		require.False(t, CompareNativeEndian(GetBigEndianEngine()))
	} else {
		require.False(t, CompareNativeEndian(GetLittleEndianEngine()))
		require.True(t, CompareNativeEndian(GetBigEndianEngine()))
	}
}

func TestEngineByteOrder(t *testing.T) {
	little := GetLittleEndianEngine()
	big := GetBigEndianEngine()

	require.Implements(t, (*EndianEngine)(nil), little)
	require.Implements(t, (*EndianEngine)(nil), big)

	// A dictionary entry length serialized by each engine.
	buf := make([]byte, 4)
	little.PutUint32(buf, 0x01020304)
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf)

	big.PutUint32(buf, 0x01020304)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buf)
}

func TestEngineRoundTrip(t *testing.T) {
	for _, engine := range []EndianEngine{GetLittleEndianEngine(), GetBigEndianEngine()} {
		buf := make([]byte, 8)

		engine.PutUint64(buf, 0x0102030405060708)
		require.Equal(t, uint64(0x0102030405060708), engine.Uint64(buf))

		engine.PutUint32(buf, 0xdeadbeef)
		require.Equal(t, uint32(0xdeadbeef), engine.Uint32(buf))

		out := engine.AppendUint32(nil, 42)
		require.Len(t, out, 4)
		require.Equal(t, uint32(42), engine.Uint32(out))
	}
}
