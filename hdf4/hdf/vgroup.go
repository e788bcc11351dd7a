package hdf

import (
	"bytes"
	"fmt"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/util"
)

type vgroup struct {
	ref      uint16
	name     string
	class    string
	members  []api.TagRef
	attrRefs []uint16 // Vdatas holding the Vgroup's attributes
	version  uint16
}

// readString reads a uint16 length followed by that many bytes.
func readString(r *bytes.Reader) string {
	n := int(util.MustRead16(r))
	assertError(n <= r.Len(), ErrTruncated, fmt.Sprint("string of ", n, " bytes past end of header"))
	return charString(util.MustReadBytes(r, n))
}

func (h *HDF4) loadVgroup(ref uint16) *vgroup {
	r := bytes.NewReader(h.readElement(tagVG, ref))
	vg := &vgroup{ref: ref}
	n := int(util.MustRead16(r))
	assertError(n*4 <= r.Len(), ErrTruncated, fmt.Sprint("vgroup ", ref, " lists too many members"))
	tags := make([]uint16, n)
	refs := make([]uint16, n)
	util.MustReadBE(r, tags)
	util.MustReadBE(r, refs)
	vg.members = make([]api.TagRef, n)
	for i := range tags {
		vg.members[i] = api.TagRef{Tag: api.Tag(baseTag(tags[i])), Ref: api.Ref(refs[i])}
	}
	vg.name = readString(r)
	vg.class = readString(r)
	util.MustRead16(r) // extension tag
	util.MustRead16(r) // extension ref
	if r.Len() >= 8 {
		flags := util.MustRead32(r)
		if flags&attrSet != 0 {
			nattrs := int(util.MustRead32(r))
			assertError(nattrs*4 <= r.Len(), ErrTruncated, fmt.Sprint("vgroup ", ref, " lists too many attributes"))
			for i := 0; i < nattrs; i++ {
				atag := util.MustRead16(r)
				aref := util.MustRead16(r)
				if atag == tagVH {
					vg.attrRefs = append(vg.attrRefs, aref)
				}
			}
		}
	}
	if r.Len() >= 2 {
		vg.version = util.MustRead16(r)
	}
	logger.Infof("vgroup %d %q class %q, %d members", ref, vg.name, vg.class, n)
	return vg
}

// indexVarGroups maps each data set to the Var0.0 Vgroup wrapping it.
func (h *HDF4) indexVarGroups() {
	for _, d := range h.dds {
		if baseTag(d.tag) != tagVG {
			continue
		}
		vg := h.vgroups[d.ref]
		if vg == nil || vg.class != classVar {
			continue
		}
		for _, m := range vg.members {
			if m.Tag != api.TagSDS {
				continue
			}
			if _, has := h.varGroups[uint16(m.Ref)]; !has {
				h.varGroups[uint16(m.Ref)] = d.ref
			}
		}
	}
}
