package encoding

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colenc/colenc/endian"
	"github.com/colenc/colenc/errs"
	"github.com/colenc/colenc/format"
)

func byteArrays(values ...string) []format.ByteArray {
	out := make([]format.ByteArray, len(values))
	for i, v := range values {
		out[i] = format.ByteArray(v)
	}

	return out
}

func TestDeltaLengthByteArrayRoundTrip(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	tests := []struct {
		name   string
		values []format.ByteArray
	}{
		{name: "basic", values: byteArrays("hello", "world", "a", "", "columnar")},
		{name: "all empty", values: byteArrays("", "", "")},
		{name: "single", values: byteArrays("only")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewDeltaLengthByteArrayEncoder(engine)
			defer enc.Release()
			for _, v := range tt.values {
				enc.Put(v)
			}
			require.Equal(t, len(tt.values), enc.Len())
			data := enc.FlushData()

			dec := NewDeltaLengthByteArrayDecoder(engine)
			require.NoError(t, dec.SetData(len(tt.values), data))

			out := make([]format.ByteArray, len(tt.values))
			n, err := dec.Decode(out)
			require.NoError(t, err)
			require.Equal(t, len(tt.values), n)
			require.Equal(t, tt.values, out)
			require.Equal(t, 0, dec.ValuesLeft())
		})
	}
}

func TestDeltaLengthByteArrayViewsAliasInput(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	enc := NewDeltaLengthByteArrayEncoder(engine)
	defer enc.Release()
	enc.Put(format.ByteArray("abc"))
	enc.Put(format.ByteArray("defg"))
	data := enc.FlushData()

	dec := NewDeltaLengthByteArrayDecoder(engine)
	require.NoError(t, dec.SetData(2, data))

	out := make([]format.ByteArray, 2)
	_, err := dec.Decode(out)
	require.NoError(t, err)

	// The payload sits at the tail of the stream; decoded views point
	// straight into it.
	require.Equal(t, &data[len(data)-7], &out[0][0])
}

func TestDeltaLengthByteArrayChunkedDecode(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	values := make([]format.ByteArray, 200)
	for i := range values {
		values[i] = format.ByteArray(fmt.Sprintf("value-%04d", i))
	}

	enc := NewDeltaLengthByteArrayEncoder(engine)
	defer enc.Release()
	for _, v := range values {
		enc.Put(v)
	}
	data := enc.FlushData()

	dec := NewDeltaLengthByteArrayDecoder(engine)
	require.NoError(t, dec.SetData(len(values), data))

	var got []format.ByteArray
	chunk := make([]format.ByteArray, 33)
	for dec.ValuesLeft() > 0 {
		n, err := dec.Decode(chunk)
		require.NoError(t, err)
		got = append(got, chunk[:n]...)
	}

	require.Equal(t, values, got)
}

func TestDeltaLengthByteArrayTruncated(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	enc := NewDeltaLengthByteArrayEncoder(engine)
	defer enc.Release()
	enc.Put(format.ByteArray("alpha"))
	enc.Put(format.ByteArray("beta"))
	data := enc.FlushData()

	// Header shorter than 4 bytes.
	dec := NewDeltaLengthByteArrayDecoder(engine)
	require.ErrorIs(t, dec.SetData(2, data[:3]), errs.ErrEndOfStream)

	// Lengths section size exceeds what remains.
	require.ErrorIs(t, dec.SetData(2, data[:5]), errs.ErrEndOfStream)

	// Payload cut short: lengths decode but the byte slicing runs dry.
	short := data[:len(data)-3]
	require.NoError(t, dec.SetData(2, short))
	out := make([]format.ByteArray, 2)
	_, err := dec.Decode(out)
	require.ErrorIs(t, err, errs.ErrEndOfStream)
}

func TestDeltaByteArrayRoundTrip(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	tests := []struct {
		name   string
		values []format.ByteArray
	}{
		{name: "shared prefixes", values: byteArrays("apple", "app", "application")},
		{name: "sorted keys", values: byteArrays("aaa", "aab", "aac", "abc", "b")},
		{name: "no sharing", values: byteArrays("xyz", "123", "qrs")},
		{name: "repeats", values: byteArrays("same", "same", "same")},
		{name: "with empty", values: byteArrays("", "abc", "", "abd")},
		{name: "single", values: byteArrays("lonely")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewDeltaByteArrayEncoder(engine)
			defer enc.Release()
			for _, v := range tt.values {
				enc.Put(v)
			}
			data := enc.FlushData()

			dec := NewDeltaByteArrayDecoder(engine)
			defer dec.Release()
			require.NoError(t, dec.SetData(len(tt.values), data))

			out := make([]format.ByteArray, len(tt.values))
			n, err := dec.Decode(out)
			require.NoError(t, err)
			require.Equal(t, len(tt.values), n)
			require.Equal(t, tt.values, out)
		})
	}
}

func TestDeltaByteArraySequentialChunks(t *testing.T) {
	// Prefix reconstruction carries the previous value across Decode
	// calls, so chunked decoding must agree with one-shot decoding.
	engine := endian.GetLittleEndianEngine()

	values := make([]format.ByteArray, 150)
	for i := range values {
		values[i] = format.ByteArray(fmt.Sprintf("metric.cpu.core%03d.usage", i))
	}

	enc := NewDeltaByteArrayEncoder(engine)
	defer enc.Release()
	for _, v := range values {
		enc.Put(v)
	}
	data := enc.FlushData()

	dec := NewDeltaByteArrayDecoder(engine)
	defer dec.Release()
	require.NoError(t, dec.SetData(len(values), data))

	var got []format.ByteArray
	chunk := make([]format.ByteArray, 7)
	for dec.ValuesLeft() > 0 {
		n, err := dec.Decode(chunk)
		require.NoError(t, err)
		got = append(got, chunk[:n]...)
	}

	require.Equal(t, values, got)
}

func TestDeltaByteArrayValuesSurviveFurtherDecodes(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	values := make([]format.ByteArray, 5000)
	for i := range values {
		values[i] = format.ByteArray(fmt.Sprintf("key/%d/payload-with-some-extra-width-%d", i%10, i))
	}

	enc := NewDeltaByteArrayEncoder(engine)
	defer enc.Release()
	for _, v := range values {
		enc.Put(v)
	}
	data := enc.FlushData()

	dec := NewDeltaByteArrayDecoder(engine)
	defer dec.Release()
	require.NoError(t, dec.SetData(len(values), data))

	first := make([]format.ByteArray, 10)
	_, err := dec.Decode(first)
	require.NoError(t, err)

	rest := make([]format.ByteArray, len(values)-10)
	_, err = dec.Decode(rest)
	require.NoError(t, err)

	// Early values must still read back correctly after the arena grew.
	require.Equal(t, values[:10], first)
	require.Equal(t, values[10:], rest)
}

func TestDeltaByteArrayTruncated(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	enc := NewDeltaByteArrayEncoder(engine)
	defer enc.Release()
	enc.Put(format.ByteArray("prefix-one"))
	enc.Put(format.ByteArray("prefix-two"))
	data := enc.FlushData()

	dec := NewDeltaByteArrayDecoder(engine)
	defer dec.Release()

	require.ErrorIs(t, dec.SetData(2, data[:2]), errs.ErrEndOfStream)
	require.ErrorIs(t, dec.SetData(2, data[:4]), errs.ErrEndOfStream)

	short := data[:len(data)-4]
	if err := dec.SetData(2, short); err == nil {
		out := make([]format.ByteArray, 2)
		_, err = dec.Decode(out)
		require.ErrorIs(t, err, errs.ErrEndOfStream)
	} else {
		require.ErrorIs(t, err, errs.ErrEndOfStream)
	}
}
