package hdf

import (
	"bytes"
	"fmt"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/util"
)

type field struct {
	name  string
	nt    int32
	order int
}

// size is the number of bytes the field takes in one record.
func (f field) size() int {
	return api.TypeSize(f.nt) * f.order
}

type vdataAttr struct {
	findex int32
	ref    uint16
}

type vdata struct {
	ref       uint16
	name      string
	class     string
	interlace int16
	nrecords  int
	ivsize    int
	fields    []field
	attrs     []vdataAttr
	version   int16
}

func (h *HDF4) loadVdata(ref uint16) *vdata {
	r := bytes.NewReader(h.readElement(tagVH, ref))
	vd := &vdata{ref: ref}
	vd.interlace = int16(util.MustRead16(r))
	vd.nrecords = int(int32(util.MustRead32(r)))
	vd.ivsize = int(util.MustRead16(r))
	nfields := int(int16(util.MustRead16(r)))
	assert(vd.nrecords >= 0, fmt.Sprint("vdata ", ref, " has a negative record count"))
	assert(nfields >= 0 && nfields*8 <= r.Len(), fmt.Sprint("vdata ", ref, " has a bad field count"))

	types := make([]int16, nfields)
	isize := make([]uint16, nfields)
	offsets := make([]uint16, nfields)
	orders := make([]uint16, nfields)
	util.MustReadBE(r, types)
	util.MustReadBE(r, isize)
	util.MustReadBE(r, offsets)
	util.MustReadBE(r, orders)
	vd.fields = make([]field, nfields)
	for i := range vd.fields {
		vd.fields[i] = field{
			name:  readString(r),
			nt:    int32(types[i]),
			order: int(orders[i]),
		}
		if size := api.TypeSize(vd.fields[i].nt); size > 0 {
			warnAssert(int(isize[i]) == size*vd.fields[i].order,
				fmt.Sprintf("vdata %d field %q size %d disagrees with its type", ref, vd.fields[i].name, isize[i]))
		}
	}
	vd.name = readString(r)
	vd.class = readString(r)
	util.MustRead16(r) // extension tag
	util.MustRead16(r) // extension ref
	if r.Len() >= 8 {
		flags := util.MustRead32(r)
		if flags&attrSet != 0 {
			nattrs := int(int32(util.MustRead32(r)))
			assertError(nattrs >= 0 && nattrs*8 <= r.Len(), ErrTruncated,
				fmt.Sprint("vdata ", ref, " lists too many attributes"))
			for i := 0; i < nattrs; i++ {
				findex := int32(util.MustRead32(r))
				atag := util.MustRead16(r)
				aref := util.MustRead16(r)
				if atag == tagVH {
					vd.attrs = append(vd.attrs, vdataAttr{findex: findex, ref: aref})
				}
			}
		}
	}
	if r.Len() >= 2 {
		vd.version = int16(util.MustRead16(r))
	}
	logger.Infof("vdata %d %q class %q, %d fields, %d records", ref, vd.name, vd.class, nfields, vd.nrecords)
	return vd
}

// recordSize is the number of bytes of one record, computed from the
// field types.
func (vd *vdata) recordSize() int {
	size := 0
	for _, f := range vd.fields {
		size += f.size()
	}
	return size
}

func (vd *vdata) info() *api.VdataInfo {
	vi := &api.VdataInfo{
		Name:        vd.name,
		Class:       vd.class,
		NRecords:    vd.nrecords,
		NFields:     len(vd.fields),
		RecordSize:  vd.recordSize(),
		FieldNames:  make([]string, len(vd.fields)),
		FieldTypes:  make([]int32, len(vd.fields)),
		FieldOrders: make([]int, len(vd.fields)),
	}
	for i, f := range vd.fields {
		vi.FieldNames[i] = f.name
		vi.FieldTypes[i] = f.nt
		vi.FieldOrders[i] = f.order
	}
	return vi
}

// readTable decodes all records: one row per record, one column per field
// component, except char8 fields which give one string column.
func (h *HDF4) readTable(vd *vdata) (any, []int64) {
	shape := vd.info().TableShape()
	if vd.nrecords == 0 || len(vd.fields) == 0 {
		return []any{}, shape
	}
	for _, f := range vd.fields {
		assertError(api.TypeSize(f.nt) > 0, ErrUnknownType,
			fmt.Sprintf("vdata %d field %q has number type %d", vd.ref, f.name, f.nt))
	}
	recSize := vd.recordSize()
	data := h.readElement(tagVS, vd.ref)
	assertError(len(data) >= vd.nrecords*recSize, ErrTruncated,
		fmt.Sprintf("vdata %d has %d bytes for %d records of %d", vd.ref, len(data), vd.nrecords, recSize))

	// Where field f of record rec starts.
	var start func(rec, f int) int
	fieldOff := make([]int, len(vd.fields))
	off := 0
	for i, f := range vd.fields {
		fieldOff[i] = off
		off += f.size()
	}
	switch vd.interlace {
	case interlaceNo:
		start = func(rec, f int) int {
			return fieldOff[f]*vd.nrecords + rec*vd.fields[f].size()
		}
	default:
		warnAssert(vd.interlace == interlaceFull, fmt.Sprint("vdata ", vd.ref, " interlace ", vd.interlace))
		start = func(rec, f int) int {
			return rec*recSize + fieldOff[f]
		}
	}

	cells := make([]any, 0, vd.nrecords*vd.info().TableColumns())
	for rec := 0; rec < vd.nrecords; rec++ {
		for i, f := range vd.fields {
			b := data[start(rec, i) : start(rec, i)+f.size()]
			if api.BaseType(f.nt) == api.NTChar8 {
				cells = append(cells, charString(b))
				continue
			}
			cells = append(cells, toCells(decodeValues(f.nt, b, f.order))...)
		}
	}
	return uniform(cells), shape
}
