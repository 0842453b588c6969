package column

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colenc/colenc/column/bitmap"
	"github.com/colenc/colenc/format"
)

func TestBitmapHelpers(t *testing.T) {
	bm := make([]byte, bitmap.BytesFor(20))
	for _, i := range []int{0, 3, 8, 15, 19} {
		bitmap.SetBit(bm, i)
	}

	require.True(t, bitmap.IsSet(bm, 0))
	require.False(t, bitmap.IsSet(bm, 1))
	require.True(t, bitmap.IsSet(bm, 15))
	require.True(t, bitmap.IsSet(bm, 19))

	require.Equal(t, 5, bitmap.CountSetBits(bm, 0, 20))
	require.Equal(t, 3, bitmap.CountSetBits(bm, 1, 15))
	require.Equal(t, 0, bitmap.CountSetBits(bm, 16, 3))
}

func TestBitmapNilMeansAllValid(t *testing.T) {
	require.True(t, bitmap.IsSet(nil, 7))
	require.Equal(t, 12, bitmap.CountSetBits(nil, 3, 12))
}

func TestBitmapReader(t *testing.T) {
	bm := make([]byte, 2)
	bitmap.SetBit(bm, 2)
	bitmap.SetBit(bm, 9)

	r := bitmap.NewReader(bm, 1)
	var got []bool
	for i := 0; i < 10; i++ {
		got = append(got, r.IsSet())
		r.Next()
	}

	require.Equal(t, []bool{false, true, false, false, false, false, false, false, true, false}, got)
}

func TestDataFixedWidthAt(t *testing.T) {
	d := &Data{
		Type:   format.ColumnType{Physical: format.TypeInt32},
		Len:    3,
		Values: []byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0},
	}

	require.Equal(t, []byte{2, 0, 0, 0}, d.FixedWidthAt(1))
}

func TestDataFixedWidthAtWithOffset(t *testing.T) {
	d := &Data{
		Type:   format.ColumnType{Physical: format.TypeInt32},
		Len:    2,
		Offset: 1,
		Values: []byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0},
	}

	require.Equal(t, []byte{2, 0, 0, 0}, d.FixedWidthAt(0))
	require.Equal(t, []byte{3, 0, 0, 0}, d.FixedWidthAt(1))
}

func TestDataByteArrayAt(t *testing.T) {
	d := &Data{
		Type:         format.ColumnType{Physical: format.TypeByteArray},
		Len:          3,
		ValueOffsets: []int32{0, 3, 3, 8},
		Bytes:        []byte("abcdefgh"),
	}

	require.Equal(t, format.ByteArray("abc"), d.ByteArrayAt(0))
	require.Empty(t, d.ByteArrayAt(1))
	require.Equal(t, format.ByteArray("defgh"), d.ByteArrayAt(2))
}

func TestDataValidity(t *testing.T) {
	bm := make([]byte, 1)
	bitmap.SetBit(bm, 0)
	bitmap.SetBit(bm, 2)

	d := &Data{
		Type:      format.ColumnType{Physical: format.TypeInt64},
		Len:       3,
		NullCount: 1,
		Validity:  bm,
		Values:    make([]byte, 24),
	}

	require.True(t, d.IsValid(0))
	require.False(t, d.IsValid(1))
	require.True(t, d.IsValid(2))
}
