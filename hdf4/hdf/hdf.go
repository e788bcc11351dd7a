// Package hdf is a native reader for HDF4 files.  It decodes the data
// descriptor blocks, special elements, Vgroups, Vdatas and scientific data
// sets, and presents them through api.Handle.
//
// Objects with corrupt headers do not stop the file from opening.  They are
// remembered, and asking for them returns the decoding error.
package hdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/batchatco/go-thrower"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/util"
	"github.com/mmf1982/QTnetCDF-sub000/internal"
)

var (
	logger = internal.NewLogger("hdf")
	log    = "don't use the log package" // prevents usage of standard log package
)

// Magic is the signature every HDF4 file starts with.
var Magic = []byte{0x0e, 0x03, 0x13, 0x01}

const (
	ddHeaderSize = 6  // ndds, next block offset
	ddSize       = 12 // tag, ref, offset, length
)

// descriptor is one data descriptor: where an element lives.
type descriptor struct {
	tag    uint16
	ref    uint16
	offset uint32
	length uint32
}

type key struct {
	tag uint16 // base tag, without the special flag
	ref uint16
}

// HDF4 is an opened HDF4 file.
type HDF4 struct {
	fname string
	file  *raFile

	dds   []descriptor
	index map[key]int // base tag/ref to position in dds

	vgroups   map[uint16]*vgroup
	vdatas    map[uint16]*vdata
	sdss      map[uint16]*sds
	vdOrder   []uint16
	sdsOrder  []uint16
	varGroups map[uint16]uint16 // NDG ref to the Var0.0 Vgroup naming it
	broken    map[api.TagRef]error

	roots     []api.TagRef
	rootIndex map[api.TagRef]int
	cdf       *vgroup
}

// Open opens the named file.
func Open(fname string) (*HDF4, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	h, err := New(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	h.fname = fname
	return h, nil
}

// New reads the file structure from file.  The file is closed by Close.
func New(file api.ReadSeekerCloser) (h *HDF4, err error) {
	defer thrower.RecoverError(&err)
	f, err := newRaFile(file)
	thrower.ThrowIfError(err)
	h = &HDF4{
		file:      f,
		index:     map[key]int{},
		vgroups:   map[uint16]*vgroup{},
		vdatas:    map[uint16]*vdata{},
		sdss:      map[uint16]*sds{},
		varGroups: map[uint16]uint16{},
		broken:    map[api.TagRef]error{},
		rootIndex: map[api.TagRef]int{},
	}
	if f, ok := file.(*os.File); ok {
		h.fname = f.Name()
	}
	h.readHeader()
	h.loadObjects()
	h.findRoots()
	return h, nil
}

// SetLogLevel sets the logging level to the given level, and returns
// the old level. This is for internal debugging use. The log messages
// are not expected to make much sense to anyone but the developers.
// The lowest level is 0 (no error logs at all) and the highest level is
// 3 (errors, warnings and debug messages).
func SetLogLevel(level int) int {
	return int(logger.SetLogLevel(internal.LevelFromInt(level)))
}

// Close closes the underlying file.  Closing twice is harmless.
func (h *HDF4) Close() error {
	return h.file.Close()
}

func (h *HDF4) readHeader() {
	head := h.file.readAt(0, int64(len(Magic)))
	assertError(bytes.Equal(head, Magic), ErrBadMagic, "not an HDF4 file")

	offset := int64(len(Magic))
	seen := map[int64]bool{}
	for offset != 0 {
		assert(!seen[offset], fmt.Sprint("DD block chain loops at ", offset))
		seen[offset] = true
		r := bytes.NewReader(h.file.readAt(offset, ddHeaderSize))
		ndds := util.MustRead16(r)
		next := util.MustRead32(r)
		block := bytes.NewReader(h.file.readAt(offset+ddHeaderSize, int64(ndds)*ddSize))
		for i := 0; i < int(ndds); i++ {
			var d descriptor
			d.tag = util.MustRead16(block)
			d.ref = util.MustRead16(block)
			d.offset = util.MustRead32(block)
			d.length = util.MustRead32(block)
			h.addDescriptor(d)
		}
		offset = int64(next)
	}
	logger.Info("descriptors:", len(h.dds))
}

func (h *HDF4) addDescriptor(d descriptor) {
	if d.tag == tagNull || d.tag == 0 {
		return
	}
	k := key{baseTag(d.tag), d.ref}
	if _, has := h.index[k]; has {
		logger.Warnf("duplicate descriptor %d/%d ignored", k.tag, k.ref)
		return
	}
	h.index[k] = len(h.dds)
	h.dds = append(h.dds, d)
}

func (h *HDF4) has(tag, ref uint16) bool {
	_, has := h.index[key{tag, ref}]
	return has
}

// readElement returns the contents of an element, following special
// element indirections.
func (h *HDF4) readElement(tag, ref uint16) []byte {
	return h.readElementDepth(tag, ref, 0)
}

const maxSpecialDepth = 4

func (h *HDF4) readElementDepth(tag, ref uint16, depth int) []byte {
	i, has := h.index[key{tag, ref}]
	assertError(has, ErrNotFound, fmt.Sprintf("no element %d/%d", tag, ref))
	d := h.dds[i]
	raw := h.file.readAt(int64(d.offset), int64(d.length))
	if !isSpecial(d.tag) {
		return raw
	}
	assert(depth < maxSpecialDepth, fmt.Sprintf("special element %d/%d nests too deep", tag, ref))
	return h.readSpecial(raw, depth+1)
}

// catch runs f, turning a thrown error into a returned one.
func catch(f func()) (err error) {
	defer thrower.RecoverError(&err)
	f()
	return nil
}

// loadObjects decodes every Vgroup, Vdata and data set header in
// descriptor order.
func (h *HDF4) loadObjects() {
	for _, d := range h.dds {
		ref := d.ref
		switch baseTag(d.tag) {
		case tagVG:
			tr := api.TagRef{Tag: api.TagVG, Ref: api.Ref(ref)}
			h.record(tr, catch(func() { h.vgroups[ref] = h.loadVgroup(ref) }))
		case tagVH:
			tr := api.TagRef{Tag: api.TagVH, Ref: api.Ref(ref)}
			h.vdOrder = append(h.vdOrder, ref)
			h.record(tr, catch(func() { h.vdatas[ref] = h.loadVdata(ref) }))
		case tagNDG:
			h.sdsOrder = append(h.sdsOrder, ref)
		}
	}
	h.indexVarGroups()
	for _, ref := range h.sdsOrder {
		ref := ref
		tr := api.TagRef{Tag: api.TagSDS, Ref: api.Ref(ref)}
		h.record(tr, catch(func() { h.sdss[ref] = h.loadSDS(ref) }))
	}
}

func (h *HDF4) record(tr api.TagRef, err error) {
	if err == nil {
		return
	}
	if !errors.Is(err, api.ErrCorrupted) && !errors.Is(err, api.ErrUnsupported) {
		err = fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	logger.Warnf("%s %v cannot be decoded: %v", tr.Kind(), tr, err)
	h.broken[tr] = err
}

// findRoots collects the objects no Vgroup lists as a member, in
// descriptor order.  The CDF0.0 Vgroup of the SD interface is replaced by
// its members.
func (h *HDF4) findRoots() {
	member := map[api.TagRef]bool{}
	for _, vg := range h.vgroups {
		for _, m := range vg.members {
			member[m] = true
		}
	}
	add := func(tr api.TagRef) {
		if _, has := h.rootIndex[tr]; has {
			return
		}
		h.rootIndex[tr] = len(h.roots)
		h.roots = append(h.roots, tr)
	}
	for _, d := range h.dds {
		var tr api.TagRef
		switch baseTag(d.tag) {
		case tagVG:
			tr = api.TagRef{Tag: api.TagVG, Ref: api.Ref(d.ref)}
		case tagVH:
			tr = api.TagRef{Tag: api.TagVH, Ref: api.Ref(d.ref)}
		default:
			continue
		}
		if member[tr] {
			continue
		}
		vg := h.vgroups[d.ref]
		if tr.Tag == api.TagVG && vg != nil && vg.class == classCDF {
			if h.cdf == nil {
				h.cdf = vg
			}
			for _, m := range vg.members {
				if m.Tag == api.TagVG || m.Tag == api.TagVH {
					add(m)
				}
			}
			continue
		}
		add(tr)
	}
	logger.Info("root objects:", len(h.roots))
}
