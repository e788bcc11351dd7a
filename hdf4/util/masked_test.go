package util

import (
	"bytes"
	"testing"

	"github.com/batchatco/go-thrower"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskedArrayShape(t *testing.T) {
	_, err := NewMaskedArray([]float32{1, 2, 3}, []int64{2, 2})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewMaskedArray(3, nil)
	assert.ErrorIs(t, err, ErrNotSlice)

	ma, err := NewMaskedArray([]float32{1, 2, 3, 4, 5, 6}, []int64{2, 3})
	require.NoError(t, err)
	assert.Equal(t, 6, ma.Len())
	assert.Equal(t, [][]float32{{1, 2, 3}, {4, 5, 6}}, ma.Nested())
}

func TestMaskedArrayNestedEdges(t *testing.T) {
	scalar, err := NewMaskedArray([]int16{7}, nil)
	require.NoError(t, err)
	assert.Equal(t, int16(7), scalar.Nested())

	empty, err := NewMaskedArray([]int32{}, []int64{0, 4})
	require.NoError(t, err)
	assert.Equal(t, [][]int32{}, empty.Nested())

	cube, err := NewMaskedArray([]uint8{1, 2, 3, 4, 5, 6, 7, 8}, []int64{2, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, [][][]uint8{{{1, 2}, {3, 4}}, {{5, 6}, {7, 8}}}, cube.Nested())
}

func TestMaskEqual(t *testing.T) {
	ma, err := NewMaskedArray([]float32{-999, 1, -999, 2}, []int64{4})
	require.NoError(t, err)

	// the fill may be stored with a different Go type than the data
	require.True(t, ma.MaskEqual([]float64{-999}))
	assert.Equal(t, []bool{true, false, true, false}, ma.Mask)
	assert.Equal(t, 2, ma.Count())
	assert.True(t, ma.IsMasked(0))
	assert.False(t, ma.IsMasked(1))
	assert.Equal(t, float64(-999), ma.Fill)
}

func TestMaskEqualNoMatch(t *testing.T) {
	ma, err := NewMaskedArray([]int32{1, 2, 3}, []int64{3})
	require.NoError(t, err)
	require.True(t, ma.MaskEqual(int32(0)))
	assert.Nil(t, ma.Mask)
	assert.Equal(t, 3, ma.Count())

	assert.False(t, ma.MaskEqual([]int32{1, 2}))
	assert.False(t, ma.MaskEqual(nil))
}

func TestEqualValues(t *testing.T) {
	assert.True(t, EqualValues(int8(3), float64(3)))
	assert.True(t, EqualValues("n/a", "n/a"))
	assert.False(t, EqualValues("3", 3))
	assert.False(t, EqualValues(uint16(1), int32(2)))
}

func TestMustReadBE(t *testing.T) {
	r := bytes.NewReader([]byte{0x12, 0x34, 0xde, 0xad, 0xbe, 0xef, 'h', 'i'})
	var err error
	func() {
		defer thrower.RecoverError(&err)
		assert.Equal(t, uint16(0x1234), MustRead16(r))
		assert.Equal(t, uint32(0xdeadbeef), MustRead32(r))
		assert.Equal(t, []byte("hi"), MustReadBytes(r, 2))
		MustRead16(r)
	}()
	assert.Error(t, err, "reading past the end should throw")
}

func TestMustWriteBE(t *testing.T) {
	var buf bytes.Buffer
	MustWriteBE(&buf, uint32(0xDEADBEEF))
	MustWriteRaw(&buf, []byte{1})
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef, 1}, buf.Bytes())
}
