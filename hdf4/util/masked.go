package util

import (
	"errors"
	"reflect"
)

// MaskedArray is a flat, row-major array together with its shape and a mask
// of missing elements.  Values holds a slice such as []float32, []string or
// []any.  Mask is nil when no element is missing.
type MaskedArray struct {
	Values any
	Shape  []int64
	Mask   []bool
	Fill   any
}

var (
	ErrNotSlice      = errors.New("masked array values must be a slice")
	ErrShapeMismatch = errors.New("shape does not match number of values")
)

// NewMaskedArray wraps values, which must be a slice whose length is the
// product of shape.
func NewMaskedArray(values any, shape []int64) (*MaskedArray, error) {
	v := reflect.ValueOf(values)
	if v.Kind() != reflect.Slice {
		return nil, ErrNotSlice
	}
	n := int64(1)
	for _, s := range shape {
		n *= s
	}
	if int64(v.Len()) != n {
		return nil, ErrShapeMismatch
	}
	return &MaskedArray{Values: values, Shape: shape}, nil
}

// Len is the total number of elements.
func (ma *MaskedArray) Len() int {
	return reflect.ValueOf(ma.Values).Len()
}

// At returns element i of the flat array.
func (ma *MaskedArray) At(i int) any {
	return reflect.ValueOf(ma.Values).Index(i).Interface()
}

// IsMasked returns true if element i is missing.
func (ma *MaskedArray) IsMasked(i int) bool {
	return ma.Mask != nil && ma.Mask[i]
}

// Count is the number of elements that are not masked.
func (ma *MaskedArray) Count() int {
	n := ma.Len()
	for _, m := range ma.Mask {
		if m {
			n--
		}
	}
	return n
}

// MaskEqual marks every element equal to fill as missing.  A fill given as a
// one-element slice is unwrapped; any other non-scalar fill leaves the array
// unmasked and returns false.
func (ma *MaskedArray) MaskEqual(fill any) bool {
	fill, ok := Scalar(fill)
	if !ok {
		return false
	}
	n := ma.Len()
	mask := make([]bool, n)
	found := false
	for i := 0; i < n; i++ {
		if EqualValues(ma.At(i), fill) {
			mask[i] = true
			found = true
		}
	}
	ma.Fill = fill
	if found {
		ma.Mask = mask
	}
	return true
}

// Scalar unwraps one-element slices.  It returns false for nil and for longer
// slices.
func Scalar(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Slice {
		if val.Len() != 1 {
			return nil, false
		}
		return val.Index(0).Interface(), true
	}
	return v, true
}

// EqualValues compares two scalars.  Numbers of different Go types compare by
// value, strings compare as strings.
func EqualValues(a, b any) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && bNum {
		return fa == fb
	}
	if aNum || bNum {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int8:
		return float64(x), true
	case uint8:
		return float64(x), true
	case int16:
		return float64(x), true
	case uint16:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// Nested reshapes the flat values into nested slices following Shape,
// e.g. [][]float32 for a two-dimensional array.  Rank 0 returns the scalar.
func (ma *MaskedArray) Nested() any {
	return nest(reflect.ValueOf(ma.Values), ma.Shape)
}

func nest(v reflect.Value, shape []int64) any {
	if len(shape) == 0 {
		if v.Len() == 0 {
			return nil
		}
		return v.Index(0).Interface()
	}
	if len(shape) == 1 {
		return v.Slice(0, int(shape[0])).Interface()
	}
	stride := 1
	for _, s := range shape[1:] {
		stride *= int(s)
	}
	length := int(shape[0])
	if length == 0 {
		t := v.Type()
		for range shape[1:] {
			t = reflect.SliceOf(t)
		}
		return reflect.MakeSlice(t, 0, 0).Interface()
	}
	first := nest(v.Slice(0, stride), shape[1:])
	ret := reflect.MakeSlice(reflect.SliceOf(reflect.TypeOf(first)), length, length)
	ret.Index(0).Set(reflect.ValueOf(first))
	for i := 1; i < length; i++ {
		sub := nest(v.Slice(i*stride, (i+1)*stride), shape[1:])
		ret.Index(i).Set(reflect.ValueOf(sub))
	}
	return ret.Interface()
}
