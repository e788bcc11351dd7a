package hdf

import (
	"bytes"
	"fmt"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/util"
	"github.com/mmf1982/QTnetCDF-sub000/internal"
)

const maxRank = 32

// sds is a scientific data set, addressed by the ref of its numeric data
// group.
type sds struct {
	ref      uint16
	name     string
	dims     []int64
	dimNames []string
	nt       int32
	width    int // element size from the NT element
	dataRef  uint16
	hasData  bool
	attrs    *util.OrderedMap
}

func (h *HDF4) loadSDS(ref uint16) *sds {
	s := &sds{ref: ref}
	r := bytes.NewReader(h.readElement(tagNDG, ref))
	var sddRef, sdlRef uint16
	var hasSDD, hasSDL bool
	for r.Len() >= 4 {
		tag := baseTag(util.MustRead16(r))
		tref := util.MustRead16(r)
		switch tag {
		case tagSDD:
			sddRef, hasSDD = tref, true
		case tagSD:
			s.dataRef, s.hasData = tref, true
		case tagSDL:
			sdlRef, hasSDL = tref, true
		}
	}
	assert(hasSDD, fmt.Sprint("data set ", ref, " has no dimension record"))

	d := bytes.NewReader(h.readElement(tagSDD, sddRef))
	rank := int(int16(util.MustRead16(d)))
	assert(rank >= 0 && rank <= maxRank, fmt.Sprint("data set ", ref, " has rank ", rank))
	s.dims = make([]int64, rank)
	for i := range s.dims {
		s.dims[i] = int64(int32(util.MustRead32(d)))
		assert(s.dims[i] >= 0, fmt.Sprint("data set ", ref, " has a negative dimension"))
	}
	ntTag := util.MustRead16(d)
	ntRef := util.MustRead16(d)
	assertError(ntTag == tagNT, ErrBadTag, fmt.Sprint("data set ", ref, " number type tag ", ntTag))
	s.nt, s.width = h.readNumberType(ntRef)

	var attrRefs []uint16
	if vgRef, has := h.varGroups[ref]; has {
		vg := h.vgroups[vgRef]
		s.name = vg.name
		for _, m := range vg.members {
			switch m.Tag {
			case api.TagVG:
				dv := h.vgroups[uint16(m.Ref)]
				if dv != nil && (dv.class == classDim || dv.class == classUDim) {
					s.dimNames = append(s.dimNames, dv.name)
				}
			case api.TagVH:
				vd := h.vdatas[uint16(m.Ref)]
				if vd != nil && vd.class == classAttr {
					attrRefs = append(attrRefs, vd.ref)
				}
			}
		}
	} else if hasSDL {
		s.name = h.readLabel(sdlRef)
	}
	if len(s.dimNames) > rank {
		s.dimNames = s.dimNames[:rank]
	}
	for i := len(s.dimNames); i < rank; i++ {
		s.dimNames = append(s.dimNames, internal.FakeDimName(i))
	}
	s.attrs = h.attrMap(attrRefs)
	logger.Infof("data set %d %q, dims %v, type %d", ref, s.name, s.dims, s.nt)
	return s
}

// readNumberType decodes an NT element: version, type, width in bits,
// class.
func (h *HDF4) readNumberType(ref uint16) (int32, int) {
	b := h.readElement(tagNT, ref)
	assert(len(b) >= 4, fmt.Sprint("number type ", ref, " is short"))
	nt := int32(b[1])
	if b[3] == ntClassPC {
		nt |= api.NTLitEnd
	}
	return nt, int(b[2]) / 8
}

// readLabel returns the first label of an SDL element.
func (h *HDF4) readLabel(ref uint16) string {
	var label string
	err := catch(func() {
		b := h.readElement(tagSDL, ref)
		if i := bytes.IndexByte(b, 0); i >= 0 {
			b = b[:i]
		}
		label = string(b)
	})
	if err != nil {
		logger.Warnf("label %d unreadable: %v", ref, err)
	}
	return label
}

func (s *sds) info() *api.SDSInfo {
	return &api.SDSInfo{
		Name:       s.name,
		Rank:       len(s.dims),
		DimNames:   append([]string{}, s.dimNames...),
		DimSizes:   append([]int64{}, s.dims...),
		NumberType: s.nt,
		Attributes: s.attrs,
	}
}

// fillPattern is the byte pattern that stands in for data never written:
// the encoded _FillValue if there is one, otherwise zeros.
func (s *sds) fillPattern() []byte {
	size := api.TypeSize(s.nt)
	if size == 0 {
		return make([]byte, s.width)
	}
	for _, key := range s.attrs.Keys() {
		if !internal.IsFillValueName(key) {
			continue
		}
		val, _ := s.attrs.Get(key)
		if b := encodeValue(s.nt, val); b != nil {
			return b
		}
		logger.Warnf("data set %q fill value %v does not fit type %d", s.name, val, s.nt)
		break
	}
	return make([]byte, size)
}

// readData reads the data set, padding data never written with the fill
// value.  Elements of unknown number types are returned as raw bytes.
func (h *HDF4) readData(s *sds) (any, []int64) {
	size := api.TypeSize(s.nt)
	if size == 0 {
		size = s.width
	}
	assertError(size > 0, ErrUnknownType, fmt.Sprintf("data set %q has number type %d", s.name, s.nt))
	total := 1
	for _, d := range s.dims {
		total *= int(d)
	}
	want := total * size
	var data []byte
	if s.hasData && want > 0 {
		data = h.readElement(tagSD, s.dataRef)
	}
	if len(data) > want {
		data = data[:want]
	}
	if len(data) < want {
		logger.Infof("data set %q has %d of %d bytes, rest is fill", s.name, len(data), want)
		missing := internal.FillBytes(s.fillPattern(), want-len(data))
		data = append(append([]byte{}, data...), missing...)
	}
	shape := append([]int64{}, s.dims...)
	if api.TypeSize(s.nt) == 0 {
		logger.Warnf("data set %q has unknown number type %d, read as raw bytes", s.name, s.nt)
		raw := make([][]byte, total)
		for i := range raw {
			raw[i] = data[i*size : (i+1)*size]
		}
		return raw, shape
	}
	return decodeValues(s.nt, data, total), shape
}
