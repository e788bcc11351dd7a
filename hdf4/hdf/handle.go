package hdf

import (
	"fmt"

	"github.com/batchatco/go-thrower"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/util"
)

var _ api.Handle = (*HDF4)(nil)

// FileName is the name the file was opened with, if known.
func (h *HDF4) FileName() string {
	return h.fname
}

func (h *HDF4) getVgroup(ref api.Ref) *vgroup {
	tr := api.TagRef{Tag: api.TagVG, Ref: ref}
	if err, has := h.broken[tr]; has {
		thrower.Throw(err)
	}
	vg := h.vgroups[uint16(ref)]
	assertError(vg != nil, ErrNotFound, fmt.Sprint("no vgroup ", ref))
	return vg
}

func (h *HDF4) getVdata(ref api.Ref) *vdata {
	tr := api.TagRef{Tag: api.TagVH, Ref: ref}
	if err, has := h.broken[tr]; has {
		thrower.Throw(err)
	}
	vd := h.vdatas[uint16(ref)]
	assertError(vd != nil, ErrNotFound, fmt.Sprint("no vdata ", ref))
	return vd
}

func (h *HDF4) getSDS(ref api.Ref) *sds {
	tr := api.TagRef{Tag: api.TagSDS, Ref: ref}
	if err, has := h.broken[tr]; has {
		thrower.Throw(err)
	}
	s := h.sdss[uint16(ref)]
	assertError(s != nil, ErrNotFound, fmt.Sprint("no data set ", ref))
	return s
}

// Vdatas lists Vdata refs in file order, optionally without the Vdatas of
// class Attr0.0.
func (h *HDF4) Vdatas(withAttrs bool) ([]api.Ref, error) {
	ret := make([]api.Ref, 0, len(h.vdOrder))
	for _, ref := range h.vdOrder {
		vd := h.vdatas[ref]
		if !withAttrs && vd != nil && vd.class == classAttr {
			continue
		}
		ret = append(ret, api.Ref(ref))
	}
	return ret, nil
}

// SDSs lists data set refs in file order.
func (h *HDF4) SDSs() ([]api.Ref, error) {
	ret := make([]api.Ref, len(h.sdsOrder))
	for i, ref := range h.sdsOrder {
		ret[i] = api.Ref(ref)
	}
	return ret, nil
}

// NextRoot returns the root object after prev, or the first one when prev
// is the zero TagRef.
func (h *HDF4) NextRoot(prev api.TagRef) (api.TagRef, bool, error) {
	next := 0
	if prev != (api.TagRef{}) {
		i, has := h.rootIndex[prev]
		if !has {
			return api.TagRef{}, false, fmt.Errorf("%w: %v is not a root object", ErrNotFound, prev)
		}
		next = i + 1
	}
	if next >= len(h.roots) {
		return api.TagRef{}, false, nil
	}
	return h.roots[next], true, nil
}

func (h *HDF4) Name(tr api.TagRef) (name string, err error) {
	defer thrower.RecoverError(&err)
	switch tr.Tag {
	case api.TagVG:
		return h.getVgroup(tr.Ref).name, nil
	case api.TagVH:
		return h.getVdata(tr.Ref).name, nil
	case api.TagSDS:
		return h.getSDS(tr.Ref).name, nil
	}
	return "", fmt.Errorf("%w: name of %v", ErrBadTag, tr)
}

func (h *HDF4) Class(tr api.TagRef) (class string, err error) {
	defer thrower.RecoverError(&err)
	switch tr.Tag {
	case api.TagVG:
		return h.getVgroup(tr.Ref).class, nil
	case api.TagVH:
		return h.getVdata(tr.Ref).class, nil
	}
	return "", fmt.Errorf("%w: class of %v", ErrBadTag, tr)
}

func (h *HDF4) TagRefs(ref api.Ref) (members []api.TagRef, err error) {
	defer thrower.RecoverError(&err)
	vg := h.getVgroup(ref)
	return append([]api.TagRef{}, vg.members...), nil
}

func (h *HDF4) SDSInfo(ref api.Ref) (info *api.SDSInfo, err error) {
	defer thrower.RecoverError(&err)
	return h.getSDS(ref).info(), nil
}

func (h *HDF4) VdataInfo(ref api.Ref) (info *api.VdataInfo, err error) {
	defer thrower.RecoverError(&err)
	vd := h.getVdata(ref)
	info = vd.info()
	general, fields := h.vdataAttrs(vd)
	info.Attributes = general
	info.FieldAttributes = fields
	return info, nil
}

func (h *HDF4) Attributes(tr api.TagRef) (attrs api.AttributeMap, err error) {
	defer thrower.RecoverError(&err)
	switch tr.Tag {
	case api.TagVG:
		return h.attrMap(h.vgroupAttrRefs(h.getVgroup(tr.Ref))), nil
	case api.TagVH:
		general, _ := h.vdataAttrs(h.getVdata(tr.Ref))
		return general, nil
	case api.TagSDS:
		return h.getSDS(tr.Ref).attrs, nil
	}
	return nil, fmt.Errorf("%w: attributes of %v", ErrBadTag, tr)
}

// FileAttributes returns the attributes stored in the CDF0.0 Vgroup, empty
// if the file has none.
func (h *HDF4) FileAttributes() (attrs api.AttributeMap, err error) {
	defer thrower.RecoverError(&err)
	if h.cdf == nil {
		return util.EmptyMap(), nil
	}
	return h.attrMap(h.vgroupAttrRefs(h.cdf)), nil
}

func (h *HDF4) ReadSDS(ref api.Ref) (values any, shape []int64, err error) {
	defer thrower.RecoverError(&err)
	values, shape = h.readData(h.getSDS(ref))
	return values, shape, nil
}

func (h *HDF4) ReadVdata(ref api.Ref) (values any, shape []int64, err error) {
	defer thrower.RecoverError(&err)
	values, shape = h.readTable(h.getVdata(ref))
	return values, shape, nil
}
