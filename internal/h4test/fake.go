package h4test

import (
	"fmt"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/util"
)

// FakeVgroup is a Vgroup of a Fake.
type FakeVgroup struct {
	Name    string
	Class   string
	Members []api.TagRef
	Attrs   *util.OrderedMap
}

// FakeVdata is a Vdata of a Fake.  Values is the materialised table.
type FakeVdata struct {
	Name       string
	Class      string
	Fields     []string
	Types      []int32
	Orders     []int
	Records    int
	Values     any
	Attrs      *util.OrderedMap
	FieldAttrs []api.AttributeMap
}

// FakeSDS is a data set of a Fake.
type FakeSDS struct {
	Name     string
	Dims     []int64
	DimNames []string
	NT       int32
	Values   any
	Attrs    *util.OrderedMap
}

// Fake is an in-memory api.Handle.  Objects get refs from 1 per tag and are
// listed in the order they were added.
type Fake struct {
	Vgroups   map[api.Ref]*FakeVgroup
	VdataMap  map[api.Ref]*FakeVdata
	DataSets  map[api.Ref]*FakeSDS
	FileAttrs *util.OrderedMap

	// Errors makes every call about the given object fail.
	Errors map[api.TagRef]error
	// RootErr makes NextRoot fail, ListErr makes Vdatas and SDSs fail.
	RootErr error
	ListErr error

	Closed int

	order []api.TagRef
	refs  map[api.Tag]api.Ref
}

var _ api.Handle = (*Fake)(nil)

func NewFake() *Fake {
	return &Fake{
		Vgroups:   map[api.Ref]*FakeVgroup{},
		VdataMap:  map[api.Ref]*FakeVdata{},
		DataSets:  map[api.Ref]*FakeSDS{},
		FileAttrs: util.EmptyMap(),
		Errors:    map[api.TagRef]error{},
		refs:      map[api.Tag]api.Ref{},
	}
}

func (f *Fake) next(tag api.Tag) api.TagRef {
	f.refs[tag]++
	tr := api.TagRef{Tag: tag, Ref: f.refs[tag]}
	f.order = append(f.order, tr)
	return tr
}

// AddVgroup adds a Vgroup.  Members can be appended later through Vgroups.
func (f *Fake) AddVgroup(name, class string, members ...api.TagRef) api.TagRef {
	tr := f.next(api.TagVG)
	f.Vgroups[tr.Ref] = &FakeVgroup{Name: name, Class: class, Members: members, Attrs: util.EmptyMap()}
	return tr
}

// AddVdata adds a Vdata.
func (f *Fake) AddVdata(vd *FakeVdata) api.TagRef {
	tr := f.next(api.TagVH)
	if vd.Attrs == nil {
		vd.Attrs = util.EmptyMap()
	}
	f.VdataMap[tr.Ref] = vd
	return tr
}

// AddTable adds a single-field int32 Vdata with the given records.
func (f *Fake) AddTable(name, class string, values ...int32) api.TagRef {
	return f.AddVdata(&FakeVdata{
		Name:    name,
		Class:   class,
		Fields:  []string{"VALUES"},
		Types:   []int32{api.NTInt32},
		Orders:  []int{1},
		Records: len(values),
		Values:  values,
	})
}

// AddAttrVdata adds a Vdata of class Attr0.0.
func (f *Fake) AddAttrVdata(name string) api.TagRef {
	return f.AddTable(name, "Attr0.0", 0)
}

// AddSDS adds a data set.
func (f *Fake) AddSDS(s *FakeSDS) api.TagRef {
	tr := f.next(api.TagSDS)
	if s.Attrs == nil {
		s.Attrs = util.EmptyMap()
	}
	f.DataSets[tr.Ref] = s
	return tr
}

func (f *Fake) fail(tr api.TagRef) error {
	if f.Closed > 0 {
		return fmt.Errorf("%w: fake is closed", api.ErrNotFound)
	}
	return f.Errors[tr]
}

func (f *Fake) Vdatas(withAttrs bool) ([]api.Ref, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var ret []api.Ref
	for _, tr := range f.order {
		if tr.Tag != api.TagVH {
			continue
		}
		if !withAttrs && f.VdataMap[tr.Ref].Class == "Attr0.0" {
			continue
		}
		ret = append(ret, tr.Ref)
	}
	return ret, nil
}

func (f *Fake) SDSs() ([]api.Ref, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var ret []api.Ref
	for _, tr := range f.order {
		if tr.Tag == api.TagSDS {
			ret = append(ret, tr.Ref)
		}
	}
	return ret, nil
}

// roots are the Vgroups and Vdatas no Vgroup lists, with CDF0.0 Vgroups
// replaced by their members.
func (f *Fake) roots() []api.TagRef {
	member := map[api.TagRef]bool{}
	for _, vg := range f.Vgroups {
		for _, m := range vg.Members {
			member[m] = true
		}
	}
	seen := map[api.TagRef]bool{}
	var ret []api.TagRef
	add := func(tr api.TagRef) {
		if !seen[tr] {
			seen[tr] = true
			ret = append(ret, tr)
		}
	}
	for _, tr := range f.order {
		if tr.Tag == api.TagSDS || member[tr] {
			continue
		}
		if vg := f.Vgroups[tr.Ref]; tr.Tag == api.TagVG && vg.Class == "CDF0.0" {
			for _, m := range vg.Members {
				if m.Tag != api.TagSDS {
					add(m)
				}
			}
			continue
		}
		add(tr)
	}
	return ret
}

func (f *Fake) NextRoot(prev api.TagRef) (api.TagRef, bool, error) {
	if f.RootErr != nil {
		return api.TagRef{}, false, f.RootErr
	}
	roots := f.roots()
	i := 0
	if prev != (api.TagRef{}) {
		i = -1
		for j, tr := range roots {
			if tr == prev {
				i = j + 1
			}
		}
		if i < 0 {
			return api.TagRef{}, false, fmt.Errorf("%w: %v is not a root", api.ErrNotFound, prev)
		}
	}
	if i >= len(roots) {
		return api.TagRef{}, false, nil
	}
	return roots[i], true, nil
}

func (f *Fake) notFound(tr api.TagRef) error {
	return fmt.Errorf("%w: %v", api.ErrNotFound, tr)
}

func (f *Fake) Name(tr api.TagRef) (string, error) {
	if err := f.fail(tr); err != nil {
		return "", err
	}
	switch tr.Tag {
	case api.TagVG:
		if vg, has := f.Vgroups[tr.Ref]; has {
			return vg.Name, nil
		}
	case api.TagVH:
		if vd, has := f.VdataMap[tr.Ref]; has {
			return vd.Name, nil
		}
	case api.TagSDS:
		if s, has := f.DataSets[tr.Ref]; has {
			return s.Name, nil
		}
	default:
		return "", fmt.Errorf("%w: %v", api.ErrBadTag, tr)
	}
	return "", f.notFound(tr)
}

func (f *Fake) Class(tr api.TagRef) (string, error) {
	if err := f.fail(tr); err != nil {
		return "", err
	}
	switch tr.Tag {
	case api.TagVG:
		if vg, has := f.Vgroups[tr.Ref]; has {
			return vg.Class, nil
		}
	case api.TagVH:
		if vd, has := f.VdataMap[tr.Ref]; has {
			return vd.Class, nil
		}
	default:
		return "", fmt.Errorf("%w: %v", api.ErrBadTag, tr)
	}
	return "", f.notFound(tr)
}

func (f *Fake) TagRefs(ref api.Ref) ([]api.TagRef, error) {
	tr := api.TagRef{Tag: api.TagVG, Ref: ref}
	if err := f.fail(tr); err != nil {
		return nil, err
	}
	vg, has := f.Vgroups[ref]
	if !has {
		return nil, f.notFound(tr)
	}
	return append([]api.TagRef{}, vg.Members...), nil
}

func (f *Fake) SDSInfo(ref api.Ref) (*api.SDSInfo, error) {
	tr := api.TagRef{Tag: api.TagSDS, Ref: ref}
	if err := f.fail(tr); err != nil {
		return nil, err
	}
	s, has := f.DataSets[ref]
	if !has {
		return nil, f.notFound(tr)
	}
	return &api.SDSInfo{
		Name:       s.Name,
		Rank:       len(s.Dims),
		DimNames:   s.DimNames,
		DimSizes:   s.Dims,
		NumberType: s.NT,
		Attributes: s.Attrs,
	}, nil
}

func (f *Fake) VdataInfo(ref api.Ref) (*api.VdataInfo, error) {
	tr := api.TagRef{Tag: api.TagVH, Ref: ref}
	if err := f.fail(tr); err != nil {
		return nil, err
	}
	vd, has := f.VdataMap[ref]
	if !has {
		return nil, f.notFound(tr)
	}
	size := 0
	for i, nt := range vd.Types {
		size += api.TypeSize(nt) * vd.Orders[i]
	}
	return &api.VdataInfo{
		Name:            vd.Name,
		Class:           vd.Class,
		NRecords:        vd.Records,
		NFields:         len(vd.Fields),
		RecordSize:      size,
		FieldNames:      vd.Fields,
		FieldTypes:      vd.Types,
		FieldOrders:     vd.Orders,
		Attributes:      vd.Attrs,
		FieldAttributes: vd.FieldAttrs,
	}, nil
}

func (f *Fake) Attributes(tr api.TagRef) (api.AttributeMap, error) {
	if err := f.fail(tr); err != nil {
		return nil, err
	}
	switch tr.Tag {
	case api.TagVG:
		if vg, has := f.Vgroups[tr.Ref]; has {
			return vg.Attrs, nil
		}
	case api.TagVH:
		if vd, has := f.VdataMap[tr.Ref]; has {
			return vd.Attrs, nil
		}
	case api.TagSDS:
		if s, has := f.DataSets[tr.Ref]; has {
			return s.Attrs, nil
		}
	}
	return nil, f.notFound(tr)
}

func (f *Fake) FileAttributes() (api.AttributeMap, error) {
	return f.FileAttrs, nil
}

func (f *Fake) ReadSDS(ref api.Ref) (any, []int64, error) {
	tr := api.TagRef{Tag: api.TagSDS, Ref: ref}
	if err := f.fail(tr); err != nil {
		return nil, nil, err
	}
	s, has := f.DataSets[ref]
	if !has {
		return nil, nil, f.notFound(tr)
	}
	return s.Values, s.Dims, nil
}

func (f *Fake) ReadVdata(ref api.Ref) (any, []int64, error) {
	tr := api.TagRef{Tag: api.TagVH, Ref: ref}
	if err := f.fail(tr); err != nil {
		return nil, nil, err
	}
	info, err := f.VdataInfo(ref)
	if err != nil {
		return nil, nil, err
	}
	return f.VdataMap[ref].Values, info.TableShape(), nil
}

func (f *Fake) Close() error {
	f.Closed++
	return nil
}
