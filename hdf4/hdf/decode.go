package hdf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
	"strings"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/util"
)

func byteOrder(nt int32) binary.ByteOrder {
	if api.IsLittleEndian(nt) {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// makeSlice allocates a Go slice for n elements of number type nt.
func makeSlice(nt int32, n int) any {
	switch api.BaseType(nt) {
	case api.NTChar8, api.NTUChar8, api.NTUInt8:
		return make([]uint8, n)
	case api.NTInt8:
		return make([]int8, n)
	case api.NTInt16:
		return make([]int16, n)
	case api.NTUInt16:
		return make([]uint16, n)
	case api.NTInt32:
		return make([]int32, n)
	case api.NTUInt32:
		return make([]uint32, n)
	case api.NTInt64:
		return make([]int64, n)
	case api.NTUInt64:
		return make([]uint64, n)
	case api.NTFloat32:
		return make([]float32, n)
	case api.NTFloat64:
		return make([]float64, n)
	}
	failError(ErrUnknownType, fmt.Sprint("unknown number type ", nt))
	panic("never gets here")
}

// decodeValues decodes n elements of number type nt from b.
func decodeValues(nt int32, b []byte, n int) any {
	data := makeSlice(nt, n)
	assertError(len(b) >= n*api.TypeSize(nt), ErrTruncated,
		fmt.Sprintf("need %d values of type %d, have %d bytes", n, nt, len(b)))
	util.MustRead(bytes.NewReader(b), byteOrder(nt), data)
	return data
}

// encodeValue encodes a scalar as number type nt.  It returns nil if the
// value cannot be represented.
func encodeValue(nt int32, val any) []byte {
	val, ok := util.Scalar(val)
	if !ok {
		return nil
	}
	dst := reflect.ValueOf(makeSlice(nt, 1))
	src := reflect.ValueOf(val)
	elem := dst.Index(0)
	if !src.Type().ConvertibleTo(elem.Type()) {
		return nil
	}
	switch src.Kind() {
	case reflect.String, reflect.Slice, reflect.Bool:
		return nil
	}
	elem.Set(src.Convert(elem.Type()))
	var buf bytes.Buffer
	util.MustWrite(&buf, byteOrder(nt), dst.Interface())
	return buf.Bytes()
}

// charString turns a char8 buffer into a string, dropping trailing NULs.
func charString(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}

// attrValue converts decoded attribute values the way they are presented:
// char8 becomes a string, and a single value becomes a scalar.
func attrValue(nt int32, b []byte, n int) any {
	if api.BaseType(nt) == api.NTChar8 {
		if n > len(b) {
			n = len(b)
		}
		return charString(b[:n])
	}
	values := decodeValues(nt, b, n)
	val := reflect.ValueOf(values)
	if val.Len() == 1 {
		return val.Index(0).Interface()
	}
	return values
}

// toCells spreads a typed slice into individual values.
func toCells(values any) []any {
	val := reflect.ValueOf(values)
	ret := make([]any, val.Len())
	for i := range ret {
		ret[i] = val.Index(i).Interface()
	}
	return ret
}

// uniform returns cells as a typed slice when they all share one Go type,
// and as []any otherwise.
func uniform(cells []any) any {
	if len(cells) == 0 {
		return cells
	}
	t := reflect.TypeOf(cells[0])
	for _, c := range cells[1:] {
		if reflect.TypeOf(c) != t {
			return cells
		}
	}
	ret := reflect.MakeSlice(reflect.SliceOf(t), len(cells), len(cells))
	for i, c := range cells {
		ret.Index(i).Set(reflect.ValueOf(c))
	}
	return ret.Interface()
}
