package hdf

import (
	"fmt"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/util"
)

// readAttr decodes an attribute Vdata.  The attribute is named after the
// Vdata, and its values are the single field of its records.
func (h *HDF4) readAttr(ref uint16) (string, any) {
	vd := h.vdatas[ref]
	assertError(vd != nil, ErrNotFound, fmt.Sprint("attribute vdata ", ref, " not found"))
	assert(len(vd.fields) == 1, fmt.Sprintf("attribute %q has %d fields", vd.name, len(vd.fields)))
	f := vd.fields[0]
	size := api.TypeSize(f.nt)
	assertError(size > 0, ErrUnknownType, fmt.Sprintf("attribute %q has number type %d", vd.name, f.nt))
	n := f.order * vd.nrecords
	var data []byte
	if n > 0 {
		data = h.readElement(tagVS, ref)
	}
	assertError(len(data) >= n*size, ErrTruncated, fmt.Sprintf("attribute %q is short", vd.name))
	return vd.name, attrValue(f.nt, data, n)
}

// attrMap decodes attribute Vdatas into a map.  Attributes that cannot be
// decoded are logged and left out, and the first of two equal names wins.
func (h *HDF4) attrMap(refs []uint16) *util.OrderedMap {
	om := util.EmptyMap()
	for _, ref := range refs {
		var name string
		var val any
		err := catch(func() { name, val = h.readAttr(ref) })
		if err != nil {
			logger.Warnf("attribute vdata %d skipped: %v", ref, err)
			continue
		}
		if !om.AddFirst(name, val) {
			logger.Infof("duplicate attribute %q ignored", name)
		}
	}
	return om
}

// vgroupAttrRefs lists the attribute Vdatas of vg: its attribute list
// followed by member Vdatas of class Attr0.0.
func (h *HDF4) vgroupAttrRefs(vg *vgroup) []uint16 {
	refs := append([]uint16{}, vg.attrRefs...)
	for _, m := range vg.members {
		if m.Tag != api.TagVH {
			continue
		}
		if vd := h.vdatas[uint16(m.Ref)]; vd != nil && vd.class == classAttr {
			refs = append(refs, vd.ref)
		}
	}
	return refs
}

// vdataAttrs splits the attribute list of vd into Vdata-level attributes
// and one map per field.
func (h *HDF4) vdataAttrs(vd *vdata) (*util.OrderedMap, []api.AttributeMap) {
	var general []uint16
	perField := make([][]uint16, len(vd.fields))
	for _, a := range vd.attrs {
		switch {
		case a.findex == vdataIndex:
			general = append(general, a.ref)
		case a.findex >= 0 && int(a.findex) < len(vd.fields):
			perField[a.findex] = append(perField[a.findex], a.ref)
		default:
			logger.Warnf("vdata %d attribute for field %d ignored", vd.ref, a.findex)
		}
	}
	fields := make([]api.AttributeMap, len(vd.fields))
	for i := range fields {
		fields[i] = h.attrMap(perField[i])
	}
	return h.attrMap(general), fields
}
