package compression

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in      string
		want    Algorithm
		wantErr bool
	}{
		{in: "", want: None},
		{in: "none", want: None},
		{in: "Snappy", want: Snappy},
		{in: "zstd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.ToLower(got.String()), got.String())
		})
	}
}

func TestGetCompressor(t *testing.T) {
	data := bytes.Repeat([]byte("quantile,0.5,101.25\n"), 200)

	for _, algo := range []Algorithm{None, Snappy} {
		t.Run(algo.String(), func(t *testing.T) {
			c, err := GetCompressor(algo)
			require.NoError(t, err)
			assert.Equal(t, algo, c.Algorithm())

			packed, err := c.Compress(data)
			require.NoError(t, err)
			if algo == Snappy {
				assert.Less(t, len(packed), len(data))
			}

			unpacked, err := c.Decompress(packed)
			require.NoError(t, err)
			assert.Equal(t, data, unpacked)

			empty, err := c.Compress(nil)
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}

	_, err := GetCompressor(Algorithm(9))
	assert.Error(t, err)
}

func TestSnappyCompressor_CorruptInput(t *testing.T) {
	_, err := NewSnappyCompressor().Decompress([]byte{0xff, 0xff, 0xff})
	assert.ErrorContains(t, err, "snappy decompress failed")
}

func TestStreamRoundTrip(t *testing.T) {
	payload := strings.Repeat("draw,step,value\n0,1,99.5\n", 500)

	for _, algo := range []Algorithm{None, Snappy} {
		t.Run(algo.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(&buf, algo)
			require.NoError(t, err)
			_, err = io.WriteString(w, payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := NewReader(&buf, algo)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, payload, string(got))
		})
	}
}

func TestEncodeFloats_RoundTrip(t *testing.T) {
	walk := make([]float64, 500)
	for i := range walk {
		walk[i] = 100 + math.Sin(float64(i)/10)*5
	}

	tests := []struct {
		name   string
		values []float64
	}{
		{name: "empty", values: []float64{}},
		{name: "single", values: []float64{3.25}},
		{name: "constant", values: []float64{7, 7, 7, 7, 7}},
		{name: "walk", values: walk},
		{name: "special values", values: []float64{0, math.Copysign(0, -1), math.Inf(1), math.Inf(-1), math.MaxFloat64, math.SmallestNonzeroFloat64, -1.5}},
		{name: "alternating", values: []float64{1, -1, 1, -1, 1e300, 1e-300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeFloats(EncodeFloats(tt.values))
			require.NoError(t, err)
			require.Len(t, got, len(tt.values))
			for i := range tt.values {
				assert.Equal(t, math.Float64bits(tt.values[i]), math.Float64bits(got[i]), "value %d", i)
			}
		})
	}
}

func TestEncodeFloats_NaN(t *testing.T) {
	got, err := DecodeFloats(EncodeFloats([]float64{1, math.NaN(), 2}))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got[1]))
	assert.Equal(t, 2.0, got[2])
}

func TestEncodeFloats_Compresses(t *testing.T) {
	values := make([]float64, 1000)
	for i := range values {
		values[i] = 42
	}
	assert.Less(t, len(EncodeFloats(values)), 8*len(values)/10)
}

func TestDecodeFloats_Corrupt(t *testing.T) {
	valid := EncodeFloats([]float64{1, 2.5, 3.75, 1e10})

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "bad magic", data: append([]byte{0x00}, valid[1:]...)},
		{name: "missing first value", data: valid[:4]},
		{name: "truncated stream", data: valid[:11]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFloats(tt.data)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestBlocks(t *testing.T) {
	var buf bytes.Buffer
	blocks := [][]float64{{1, 2, 3}, {}, {4.5}}
	for _, b := range blocks {
		require.NoError(t, WriteBlock(&buf, b))
	}

	r := NewBlockReader(&buf)
	for _, want := range blocks {
		got, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestBitStream(t *testing.T) {
	w := newBitWriter(nil)
	w.writeBit(true)
	w.writeBits(0b101, 3)
	w.writeBits(math.MaxUint64, 64)
	w.writeBit(false)
	data := w.bytes()
	assert.Len(t, data, 9) // 69 bits

	r := newBitReader(data)
	bit, ok := r.readBit()
	assert.True(t, ok)
	assert.True(t, bit)
	v, ok := r.readBits(3)
	assert.True(t, ok)
	assert.Equal(t, uint64(0b101), v)
	v, ok = r.readBits(64)
	assert.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), v)
	bit, ok = r.readBit()
	assert.True(t, ok)
	assert.False(t, bit)

	_, ok = r.readBits(8)
	assert.False(t, ok)
}
