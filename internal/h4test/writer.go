// Package h4test builds HDF4 test inputs: real file bytes through Writer,
// and an in-memory api.Handle through Fake.
package h4test

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"sort"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/util"
)

// Tags written by Writer.
const (
	TagLinked     = 20
	TagCompressed = 40
	TagNT         = 106
	TagSDD        = 701
	TagSD         = 702
	TagSDL        = 704
	TagNDG        = 720
	TagVH         = 1962
	TagVS         = 1963
	TagVG         = 1965

	SpecialFlag = 0x4000
)

// Storage selects how an element's data is laid out in the file.
type Storage int

const (
	StorePlain   Storage = iota // a single contiguous element
	StoreLinked                 // linked blocks
	StoreNone                   // compressed element with the "none" coder
	StoreRLE                    // run length encoded
	StoreDeflate                // zlib deflate
)

type element struct {
	tag  uint16
	ref  uint16
	data []byte
}

// Writer assembles an HDF4 file in memory.  Elements are laid out in the
// order they are added, and so are their descriptors.
type Writer struct {
	// DDsPerBlock splits the descriptors into blocks of this many; zero
	// puts them all in one block.
	DDsPerBlock int
	// LinkedBlockSize is the block length used for StoreLinked.
	LinkedBlockSize int

	elems []element
	refs  map[uint16]uint16
}

func NewWriter() *Writer {
	return &Writer{LinkedBlockSize: 16, refs: map[uint16]uint16{}}
}

// NextRef allocates the next ref for tag.  Refs start at 1.
func (w *Writer) NextRef(tag uint16) uint16 {
	w.refs[tag]++
	return w.refs[tag]
}

// Add appends a raw element.
func (w *Writer) Add(tag, ref uint16, data []byte) {
	w.elems = append(w.elems, element{tag: tag, ref: ref, data: data})
}

// AddStored appends an element, storing its data as asked.
func (w *Writer) AddStored(tag, ref uint16, data []byte, how Storage) {
	switch how {
	case StoreLinked:
		w.addLinked(tag, ref, data)
	case StoreNone:
		w.addCompressed(tag, ref, data, data, 0)
	case StoreRLE:
		w.addCompressed(tag, ref, data, EncodeRLE(data), 1)
	case StoreDeflate:
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		util.MustWriteRaw(zw, data)
		if err := zw.Close(); err != nil {
			panic(err)
		}
		w.addCompressed(tag, ref, data, buf.Bytes(), 4)
	default:
		w.Add(tag, ref, data)
	}
}

func (w *Writer) addLinked(tag, ref uint16, data []byte) {
	blockLen := w.LinkedBlockSize
	var blocks []uint16
	for off := 0; off < len(data); off += blockLen {
		end := off + blockLen
		if end > len(data) {
			end = len(data)
		}
		bref := w.NextRef(TagLinked)
		w.Add(TagLinked, bref, data[off:end])
		blocks = append(blocks, bref)
	}
	// Two blocks per table, so longer data chains several tables.
	const perTable = 2
	tableRefs := make([]uint16, (len(blocks)+perTable-1)/perTable)
	for i := range tableRefs {
		tableRefs[i] = w.NextRef(TagLinked)
	}
	for i, tref := range tableRefs {
		var next uint16
		if i+1 < len(tableRefs) {
			next = tableRefs[i+1]
		}
		var buf bytes.Buffer
		util.MustWriteBE(&buf, next)
		for j := 0; j < perTable; j++ {
			var bref uint16
			if k := i*perTable + j; k < len(blocks) {
				bref = blocks[k]
			}
			util.MustWriteBE(&buf, bref)
		}
		w.Add(TagLinked, tref, buf.Bytes())
	}
	var first uint16
	if len(tableRefs) > 0 {
		first = tableRefs[0]
	}
	var head bytes.Buffer
	util.MustWriteBE(&head, uint16(1)) // linked
	util.MustWriteBE(&head, int32(len(data)))
	util.MustWriteBE(&head, int32(blockLen))
	util.MustWriteBE(&head, int32(blockLen))
	util.MustWriteBE(&head, int32(perTable))
	util.MustWriteBE(&head, first)
	w.Add(tag|SpecialFlag, ref, head.Bytes())
}

func (w *Writer) addCompressed(tag, ref uint16, data, payload []byte, coder uint16) {
	cref := w.NextRef(TagCompressed)
	w.Add(TagCompressed, cref, payload)
	var head bytes.Buffer
	util.MustWriteBE(&head, uint16(3)) // compressed
	util.MustWriteBE(&head, uint16(0)) // version
	util.MustWriteBE(&head, int32(len(data)))
	util.MustWriteBE(&head, cref)
	util.MustWriteBE(&head, uint16(0)) // model
	util.MustWriteBE(&head, coder)
	w.Add(tag|SpecialFlag, ref, head.Bytes())
}

// EncodeRLE run length encodes src the way HDF4 does: runs of three or more
// equal bytes become a control byte 0x80|(n-3) and the byte, anything else
// goes out as literal runs of at most 128 bytes.
func EncodeRLE(src []byte) []byte {
	var dst []byte
	var lit []byte
	flush := func() {
		for len(lit) > 0 {
			n := len(lit)
			if n > 128 {
				n = 128
			}
			dst = append(dst, byte(n-1))
			dst = append(dst, lit[:n]...)
			lit = lit[n:]
		}
	}
	for i := 0; i < len(src); {
		j := i
		for j < len(src) && src[j] == src[i] && j-i < 130 {
			j++
		}
		if n := j - i; n >= 3 {
			flush()
			dst = append(dst, byte(0x80|(n-3)), src[i])
			i = j
			continue
		}
		lit = append(lit, src[i])
		i++
	}
	flush()
	return dst
}

// Bytes lays out the file: magic, descriptor blocks, then element data.
func (w *Writer) Bytes() []byte {
	n := len(w.elems)
	per := w.DDsPerBlock
	if per <= 0 || per > n {
		per = n
	}
	nblocks := 1
	if n > 0 {
		nblocks = (n + per - 1) / per
	}
	headerSize := 4 + nblocks*6 + n*12
	offsets := make([]uint32, n)
	off := uint32(headerSize)
	for i, e := range w.elems {
		offsets[i] = off
		off += uint32(len(e.data))
	}

	var buf bytes.Buffer
	util.MustWriteRaw(&buf, []byte{0x0e, 0x03, 0x13, 0x01})
	blockStart := 4
	for b := 0; b < nblocks; b++ {
		lo := b * per
		hi := lo + per
		if hi > n {
			hi = n
		}
		var next uint32
		if b+1 < nblocks {
			next = uint32(blockStart + 6 + (hi-lo)*12)
		}
		util.MustWriteBE(&buf, uint16(hi-lo))
		util.MustWriteBE(&buf, next)
		for i := lo; i < hi; i++ {
			e := w.elems[i]
			util.MustWriteBE(&buf, e.tag)
			util.MustWriteBE(&buf, e.ref)
			util.MustWriteBE(&buf, offsets[i])
			util.MustWriteBE(&buf, uint32(len(e.data)))
		}
		blockStart += 6 + (hi-lo)*12
	}
	for _, e := range w.elems {
		util.MustWriteRaw(&buf, e.data)
	}
	return buf.Bytes()
}

// File returns the file as a closable reader.
func (w *Writer) File() api.ReadSeekerCloser {
	return &memFile{Reader: bytes.NewReader(w.Bytes())}
}

// NewMemFile wraps b as a closable reader.
func NewMemFile(b []byte) api.ReadSeekerCloser {
	return &memFile{Reader: bytes.NewReader(b)}
}

type memFile struct {
	*bytes.Reader
	closed bool
}

func (m *memFile) Close() error {
	m.closed = true
	return nil
}

// Encode encodes values of number type nt.  Strings encode as their bytes.
func Encode(nt int32, values any) []byte {
	if s, ok := values.(string); ok {
		return []byte(s)
	}
	var order binary.ByteOrder = binary.BigEndian
	if api.IsLittleEndian(nt) {
		order = binary.LittleEndian
	}
	var buf bytes.Buffer
	util.MustWrite(&buf, order, values)
	return buf.Bytes()
}

func writeString(buf *bytes.Buffer, s string) {
	util.MustWriteBE(buf, uint16(len(s)))
	util.MustWriteRaw(buf, []byte(s))
}

// Field describes one Vdata field.
type Field struct {
	Name  string
	Type  int32
	Order int
}

// Attr is an attribute reference of a Vdata: FieldIndex -1 is the Vdata
// itself.
type Attr struct {
	FieldIndex int32
	Ref        uint16
}

// Vdata describes a Vdata to write.  Data holds the encoded records in the
// given interlace (0 full, 1 none).
type Vdata struct {
	Name      string
	Class     string
	Interlace int16
	Fields    []Field
	Records   int
	Data      []byte
	Attrs     []Attr
	Storage   Storage
}

// AddVdata writes a Vdata header and its records.
func (w *Writer) AddVdata(vd Vdata) api.TagRef {
	ref := w.NextRef(TagVH)
	var buf bytes.Buffer
	util.MustWriteBE(&buf, vd.Interlace)
	util.MustWriteBE(&buf, int32(vd.Records))
	size := 0
	for _, f := range vd.Fields {
		size += api.TypeSize(f.Type) * f.Order
	}
	util.MustWriteBE(&buf, uint16(size))
	util.MustWriteBE(&buf, int16(len(vd.Fields)))
	for _, f := range vd.Fields {
		util.MustWriteBE(&buf, int16(f.Type))
	}
	for _, f := range vd.Fields {
		util.MustWriteBE(&buf, uint16(api.TypeSize(f.Type)*f.Order))
	}
	off := 0
	for _, f := range vd.Fields {
		util.MustWriteBE(&buf, uint16(off))
		off += api.TypeSize(f.Type) * f.Order
	}
	for _, f := range vd.Fields {
		util.MustWriteBE(&buf, uint16(f.Order))
	}
	for _, f := range vd.Fields {
		writeString(&buf, f.Name)
	}
	writeString(&buf, vd.Name)
	writeString(&buf, vd.Class)
	util.MustWriteBE(&buf, uint16(0)) // extension tag
	util.MustWriteBE(&buf, uint16(0)) // extension ref
	version := int16(3)
	if len(vd.Attrs) > 0 {
		version = 4
		util.MustWriteBE(&buf, uint32(1))
		util.MustWriteBE(&buf, int32(len(vd.Attrs)))
		for _, a := range vd.Attrs {
			util.MustWriteBE(&buf, a.FieldIndex)
			util.MustWriteBE(&buf, uint16(TagVH))
			util.MustWriteBE(&buf, a.Ref)
		}
	}
	util.MustWriteBE(&buf, version)
	util.MustWriteBE(&buf, int16(0)) // more
	w.Add(TagVH, ref, buf.Bytes())
	if vd.Data != nil {
		w.AddStored(TagVS, ref, vd.Data, vd.Storage)
	}
	return api.TagRef{Tag: api.TagVH, Ref: api.Ref(ref)}
}

// AddAttr writes an attribute Vdata holding values, a string or a slice
// of numbers.
func (w *Writer) AddAttr(name string, nt int32, values any) uint16 {
	n := 1
	if s, ok := values.(string); ok {
		n = len(s)
	} else if l := sliceLen(values); l >= 0 {
		n = l
	}
	tr := w.AddVdata(Vdata{
		Name:    name,
		Class:   "Attr0.0",
		Fields:  []Field{{Name: "VALUES", Type: nt, Order: n}},
		Records: 1,
		Data:    Encode(nt, values),
	})
	return uint16(tr.Ref)
}

func sliceLen(v any) int {
	switch s := v.(type) {
	case []int8:
		return len(s)
	case []uint8:
		return len(s)
	case []int16:
		return len(s)
	case []uint16:
		return len(s)
	case []int32:
		return len(s)
	case []uint32:
		return len(s)
	case []float32:
		return len(s)
	case []float64:
		return len(s)
	}
	return -1
}

// AddVgroup writes a Vgroup.  attrs are attribute Vdata refs for its
// attribute list.
func (w *Writer) AddVgroup(name, class string, members []api.TagRef, attrs ...uint16) api.TagRef {
	ref := w.NextRef(TagVG)
	w.Add(TagVG, ref, vgroupRecord(name, class, members, attrs))
	return api.TagRef{Tag: api.TagVG, Ref: api.Ref(ref)}
}

// ReplaceVgroup rewrites the members of a Vgroup already added, for
// building cycles.
func (w *Writer) ReplaceVgroup(tr api.TagRef, name, class string, members []api.TagRef) {
	for i, e := range w.elems {
		if e.tag == TagVG && e.ref == uint16(tr.Ref) {
			w.elems[i].data = vgroupRecord(name, class, members, nil)
		}
	}
}

func vgroupRecord(name, class string, members []api.TagRef, attrs []uint16) []byte {
	var buf bytes.Buffer
	util.MustWriteBE(&buf, uint16(len(members)))
	for _, m := range members {
		util.MustWriteBE(&buf, uint16(m.Tag))
	}
	for _, m := range members {
		util.MustWriteBE(&buf, uint16(m.Ref))
	}
	writeString(&buf, name)
	writeString(&buf, class)
	util.MustWriteBE(&buf, uint16(0)) // extension tag
	util.MustWriteBE(&buf, uint16(0)) // extension ref
	version := uint16(3)
	if len(attrs) > 0 {
		version = 4
		util.MustWriteBE(&buf, uint32(1))
		util.MustWriteBE(&buf, uint32(len(attrs)))
		for _, a := range attrs {
			util.MustWriteBE(&buf, uint16(TagVH))
			util.MustWriteBE(&buf, a)
		}
	}
	util.MustWriteBE(&buf, version)
	util.MustWriteBE(&buf, uint16(0)) // more
	return buf.Bytes()
}

// SDS describes a scientific data set to write.  Data nil writes no data
// element at all.
type SDS struct {
	NT      int32
	Dims    []int64
	Data    []byte
	Label   string
	Storage Storage
	Width   int // element size for number types without a known size
}

// AddSDS writes the number type, dimension record, data, label and the
// numeric data group tying them together.
func (w *Writer) AddSDS(s SDS) api.TagRef {
	ntRef := w.NextRef(TagNT)
	class := byte(1) // big-endian
	if api.IsLittleEndian(s.NT) {
		class = 4
	}
	width := api.TypeSize(s.NT)
	if width == 0 {
		width = s.Width
	}
	w.Add(TagNT, ntRef, []byte{1, byte(api.BaseType(s.NT)), byte(width * 8), class})

	ref := w.NextRef(TagNDG)
	var sdd bytes.Buffer
	util.MustWriteBE(&sdd, int16(len(s.Dims)))
	for _, d := range s.Dims {
		util.MustWriteBE(&sdd, int32(d))
	}
	util.MustWriteBE(&sdd, uint16(TagNT))
	util.MustWriteBE(&sdd, ntRef)
	for range s.Dims {
		util.MustWriteBE(&sdd, uint16(TagNT))
		util.MustWriteBE(&sdd, ntRef)
	}
	w.Add(TagSDD, ref, sdd.Bytes())

	var ndg bytes.Buffer
	util.MustWriteBE(&ndg, uint16(TagSDD))
	util.MustWriteBE(&ndg, ref)
	if s.Data != nil {
		w.AddStored(TagSD, ref, s.Data, s.Storage)
		util.MustWriteBE(&ndg, uint16(TagSD))
		util.MustWriteBE(&ndg, ref)
	}
	if s.Label != "" {
		w.Add(TagSDL, ref, append([]byte(s.Label), 0))
		util.MustWriteBE(&ndg, uint16(TagSDL))
		util.MustWriteBE(&ndg, ref)
	}
	w.Add(TagNDG, ref, ndg.Bytes())
	return api.TagRef{Tag: api.TagSDS, Ref: api.Ref(ref)}
}

// Variable is a data set written the way the SD interface does: a Var0.0
// Vgroup holding the data set, one Dim0.0 Vgroup per named dimension and
// one attribute Vdata per attribute.
type Variable struct {
	Name     string
	SDS      SDS
	DimNames []string
	Attrs    map[string]any // attribute values, written in key order
	AttrType map[string]int32
}

// AddVariable writes v and returns the data set and its Var0.0 Vgroup.
func (w *Writer) AddVariable(v Variable) (sds, vg api.TagRef) {
	sds = w.AddSDS(v.SDS)
	members := []api.TagRef{sds}
	for i, dn := range v.DimNames {
		if dn == "" {
			continue
		}
		size := int32(0)
		if i < len(v.SDS.Dims) {
			size = int32(v.SDS.Dims[i])
		}
		dimVal := w.AddVdata(Vdata{
			Name:    dn,
			Class:   "DimVal0.1",
			Fields:  []Field{{Name: "Values", Type: api.NTInt32, Order: 1}},
			Records: 1,
			Data:    Encode(api.NTInt32, []int32{size}),
		})
		members = append(members, w.AddVgroup(dn, "Dim0.0", []api.TagRef{dimVal}))
	}
	for _, name := range SortedKeys(v.Attrs) {
		nt, has := v.AttrType[name]
		if !has {
			nt = v.SDS.NT
		}
		ref := w.AddAttr(name, nt, v.Attrs[name])
		members = append(members, api.TagRef{Tag: api.TagVH, Ref: api.Ref(ref)})
	}
	vg = w.AddVgroup(v.Name, "Var0.0", members)
	return sds, vg
}

// AddCDF writes the CDF0.0 Vgroup listing the file's variables and its
// global attributes.
func (w *Writer) AddCDF(members []api.TagRef, attrs ...uint16) api.TagRef {
	all := append([]api.TagRef{}, members...)
	for _, a := range attrs {
		all = append(all, api.TagRef{Tag: api.TagVH, Ref: api.Ref(a)})
	}
	return w.AddVgroup("test.hdf", "CDF0.0", all)
}

// SortedKeys returns the keys of m in sorted order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
