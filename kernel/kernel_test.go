package kernel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/colenc/colenc/column"
	"github.com/colenc/colenc/column/bitmap"
	"github.com/colenc/colenc/endian"
	"github.com/colenc/colenc/errs"
	"github.com/colenc/colenc/format"
)

var engine = endian.GetLittleEndianEngine()

// int64Chunk builds a column chunk from values; nulls lists the null
// positions, nil meaning no validity bitmap at all.
func int64Chunk(values []int64, nulls []int) *column.Data {
	d := &column.Data{
		Type:   format.ColumnType{Physical: format.TypeInt64},
		Len:    len(values),
		Values: make([]byte, 8*len(values)),
	}
	for i, v := range values {
		engine.PutUint64(d.Values[8*i:], uint64(v))
	}

	if nulls != nil {
		d.Validity = make([]byte, bitmap.BytesFor(len(values)))
		for i := range values {
			bitmap.SetBit(d.Validity, i)
		}
		for _, i := range nulls {
			d.Validity[i/8] &^= 1 << (i % 8)
			d.NullCount++
		}
	}

	return d
}

func byteArrayChunk(values []string) *column.Data {
	d := &column.Data{
		Type:         format.ColumnType{Physical: format.TypeByteArray},
		Len:          len(values),
		ValueOffsets: make([]int32, 1, len(values)+1),
	}
	for _, v := range values {
		d.Bytes = append(d.Bytes, v...)
		d.ValueOffsets = append(d.ValueOffsets, int32(len(d.Bytes)))
	}

	return d
}

func dictInt64s(t *testing.T, d *column.Data) []int64 {
	t.Helper()

	out := make([]int64, d.Len)
	for i := range out {
		out[i] = int64(engine.Uint64(d.FixedWidthAt(i)))
	}

	return out
}

func codeInt32s(t *testing.T, d *column.Data) []int32 {
	t.Helper()
	require.Equal(t, format.TypeInt32, d.Type.Physical)

	out := make([]int32, d.Len)
	for i := range out {
		out[i] = int32(engine.Uint32(d.Values[4*i:]))
	}

	return out
}

func TestUniqueInt64WithNull(t *testing.T) {
	dict, err := Unique(int64Chunk([]int64{1, 0, 2, 1}, []int{1}))
	require.NoError(t, err)

	require.Equal(t, 2, dict.Len)
	require.Equal(t, []int64{1, 2}, dictInt64s(t, dict))
}

func TestDictionaryEncodeInt64WithNull(t *testing.T) {
	dict, codes, err := DictionaryEncode(int64Chunk([]int64{1, 0, 2, 1}, []int{1}))
	require.NoError(t, err)
	require.Len(t, codes, 1)

	require.Equal(t, []int64{1, 2}, dictInt64s(t, dict))

	chunk := codes[0]
	require.Equal(t, 4, chunk.Len)
	require.Equal(t, 1, chunk.NullCount)
	require.True(t, chunk.IsValid(0))
	require.False(t, chunk.IsValid(1))
	require.True(t, chunk.IsValid(2))
	require.True(t, chunk.IsValid(3))

	got := codeInt32s(t, chunk)
	require.Equal(t, int32(0), got[0])
	require.Equal(t, int32(1), got[2])
	require.Equal(t, int32(0), got[3])
}

func TestDictionaryEncodeChunked(t *testing.T) {
	// The dictionary grows across chunks; later chunks reference codes
	// introduced by earlier ones.
	dict, codes, err := DictionaryEncode(
		int64Chunk([]int64{10, 20, 10}, nil),
		int64Chunk([]int64{20, 30}, nil),
	)
	require.NoError(t, err)
	require.Len(t, codes, 2)

	require.Equal(t, []int64{10, 20, 30}, dictInt64s(t, dict))
	require.Equal(t, []int32{0, 1, 0}, codeInt32s(t, codes[0]))
	require.Equal(t, []int32{1, 2}, codeInt32s(t, codes[1]))
	require.Equal(t, 0, codes[0].NullCount)
	require.Nil(t, codes[0].Validity)
}

func TestUniqueByteArray(t *testing.T) {
	dict, err := Unique(byteArrayChunk([]string{"b", "a", "b", "c", "a"}))
	require.NoError(t, err)

	require.Equal(t, 3, dict.Len)
	require.Equal(t, format.ByteArray("b"), dict.ByteArrayAt(0))
	require.Equal(t, format.ByteArray("a"), dict.ByteArrayAt(1))
	require.Equal(t, format.ByteArray("c"), dict.ByteArrayAt(2))
}

func TestDictionaryEncodeByteArray(t *testing.T) {
	dict, codes, err := DictionaryEncode(byteArrayChunk([]string{"x", "y", "x", "", "x"}))
	require.NoError(t, err)

	require.Equal(t, 3, dict.Len)
	require.Equal(t, []int32{0, 1, 0, 2, 0}, codeInt32s(t, codes[0]))
	require.Empty(t, dict.ByteArrayAt(2))
}

func TestUniqueFixedLenByteArray(t *testing.T) {
	typ := format.ColumnType{Physical: format.TypeFixedLenByteArray, TypeLength: 2}
	d := &column.Data{Type: typ, Len: 4, Values: []byte("abcdabef")}

	k, err := NewUniqueKernel(typ)
	require.NoError(t, err)
	defer k.Release()

	require.NoError(t, k.Append(d))

	dict, err := k.GetDictionary()
	require.NoError(t, err)
	require.Equal(t, 3, dict.Len)
	require.Equal(t, []byte("abcdef"), dict.Values)
}

func TestNullOnlyColumn(t *testing.T) {
	typ := format.ColumnType{Physical: format.TypeNull}
	d := &column.Data{Type: typ, Len: 3, NullCount: 3}

	dict, codes, err := DictionaryEncode(d)
	require.NoError(t, err)

	require.Equal(t, 0, dict.Len)
	require.Equal(t, 3, codes[0].Len)
	require.Equal(t, 3, codes[0].NullCount)
	for i := 0; i < 3; i++ {
		require.False(t, codes[0].IsValid(i))
	}
}

func TestClosedDictionaryRejectsNewValues(t *testing.T) {
	k, err := NewUniqueKernel(format.ColumnType{Physical: format.TypeInt64})
	require.NoError(t, err)
	defer k.Release()

	require.NoError(t, k.Append(int64Chunk([]int64{1, 2, 3}, nil)))
	k.Close()

	// Known values still resolve.
	require.NoError(t, k.Append(int64Chunk([]int64{3, 1}, nil)))

	err = k.Append(int64Chunk([]int64{4}, nil))
	require.ErrorIs(t, err, errs.ErrNewValueRejected)

	// The rejected value must not have grown the dictionary.
	dict, err := k.GetDictionary()
	require.NoError(t, err)
	require.Equal(t, 3, dict.Len)
}

func TestClosedFromConstruction(t *testing.T) {
	k, err := NewUniqueKernel(
		format.ColumnType{Physical: format.TypeInt64},
		WithClosedDictionary(),
	)
	require.NoError(t, err)
	defer k.Release()

	err = k.Append(int64Chunk([]int64{1}, nil))
	require.ErrorIs(t, err, errs.ErrNewValueRejected)
}

func TestKernelGrowth(t *testing.T) {
	k, err := NewUniqueKernel(
		format.ColumnType{Physical: format.TypeInt64},
		WithInitialSlots(16),
	)
	require.NoError(t, err)
	defer k.Release()

	values := make([]int64, 5000)
	for i := range values {
		values[i] = int64(i % 1200)
	}
	require.NoError(t, k.Append(int64Chunk(values, nil)))

	dict, err := k.GetDictionary()
	require.NoError(t, err)
	require.Equal(t, 1200, dict.Len)
	require.Equal(t, []int64{0, 1, 2}, dictInt64s(t, dict)[:3])
}

func TestUnsupportedType(t *testing.T) {
	_, err := NewUniqueKernel(format.ColumnType{Physical: format.PhysicalType(0x7f)})
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	_, err = NewUniqueKernel(format.ColumnType{Physical: format.TypeFixedLenByteArray})
	require.ErrorIs(t, err, errs.ErrTypeMismatch)
}

func TestConcurrentAppend(t *testing.T) {
	// Chunks land in nondeterministic order, so codes vary run to run;
	// the dictionary must still hold exactly the distinct input values.
	k, err := NewUniqueKernel(format.ColumnType{Physical: format.TypeByteArray})
	require.NoError(t, err)
	defer k.Release()

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		values := make([]string, 500)
		for i := range values {
			values[i] = fmt.Sprintf("shard-%d", (w*500+i)%100)
		}
		chunk := byteArrayChunk(values)
		g.Go(func() error {
			return k.Append(chunk)
		})
	}
	require.NoError(t, g.Wait())

	dict, err := k.GetDictionary()
	require.NoError(t, err)
	require.Equal(t, 100, dict.Len)

	seen := make(map[string]bool, dict.Len)
	for i := 0; i < dict.Len; i++ {
		seen[string(dict.ByteArrayAt(i))] = true
	}
	for i := 0; i < 100; i++ {
		require.True(t, seen[fmt.Sprintf("shard-%d", i)])
	}
}
