package tree

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/util"
	"github.com/mmf1982/QTnetCDF-sub000/internal/h4test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attrs(kv ...any) *util.OrderedMap {
	om := util.EmptyMap()
	for i := 0; i+1 < len(kv); i += 2 {
		om.Add(kv[i].(string), kv[i+1])
	}
	return om
}

func radiance() *h4test.FakeSDS {
	return &h4test.FakeSDS{
		Name:     "radiance",
		Dims:     []int64{3, 4},
		DimNames: []string{"fakeDim0", "fakeDim1"},
		NT:       api.NTFloat32,
		Values:   make([]float32, 12),
	}
}

func build(t *testing.T, h api.Handle) *Tree {
	t.Helper()
	tr, err := Build(h, DefaultOptions())
	require.NoError(t, err)
	return tr
}

// shape describes the tree as nested names, for comparisons.
func shape(g *Group) []string {
	var ret []string
	_ = g.Walk(func(p string, n Node) error {
		if v, ok := n.(*Variable); ok {
			ret = append(ret, fmt.Sprintf("%s=%s:%v", p, v.Name(), v.TagRef()))
			return nil
		}
		if p != "/" {
			p += "/"
		}
		ret = append(ret, p)
		return nil
	})
	return ret
}

func checkInvariants(t *testing.T, tr *Tree) {
	t.Helper()
	seenSDS := map[api.TagRef]string{}
	_ = tr.Root.Walk(func(p string, n Node) error {
		switch c := n.(type) {
		case *Group:
			if p != "/" {
				assert.NotZero(t, c.Len(), "empty group %s", p)
			}
		case *Variable:
			assert.False(t, strings.Contains(c.Name(), "fakeDim"), p)
			assert.False(t, strings.Contains(p, "fakeDim"), p)
			if c.TagRef().Tag == api.TagVH {
				assert.False(t, tr.Class.IsScaffolding(c.TagRef().Ref), "scaffolding at %s", p)
			}
			if c.TagRef().Tag == api.TagSDS {
				prev, has := seenSDS[c.TagRef()]
				assert.False(t, has, "data set at %s and %s", prev, p)
				seenSDS[c.TagRef()] = p
			}
		}
		return nil
	})
}

func TestMinimalSDS(t *testing.T) {
	h := h4test.NewFake()
	h.AddSDS(radiance())
	tr := build(t, h)
	checkInvariants(t, tr)

	assert.Equal(t, []string{"radiance"}, tr.Root.Children())
	v, err := tr.Root.GetVariable("radiance")
	require.NoError(t, err)
	s, err := v.Shape()
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, s)
	dt, err := v.DType()
	require.NoError(t, err)
	assert.Equal(t, "float32", dt)
	assert.Equal(t, "sd_dataset", v.Type())
	nd, err := v.NDim()
	require.NoError(t, err)
	assert.Equal(t, 2, nd)
}

func TestDimensionVdataHidden(t *testing.T) {
	h := h4test.NewFake()
	h.AddSDS(radiance())
	wl := h.AddTable("wavelength", "DimVal0.1", 400, 500, 600)
	tr := build(t, h)
	checkInvariants(t, tr)

	assert.Equal(t, []string{"radiance"}, tr.Root.Children())
	assert.True(t, tr.Class.IsDim(wl.Ref))
}

func TestWrappedSDS(t *testing.T) {
	h := h4test.NewFake()
	s := radiance()
	s.Attrs = attrs("units", "W", "valid_range", []float32{0, 1}, "long_name", "Radiance")
	sds := h.AddSDS(s)
	members := []api.TagRef{sds}
	for _, name := range []string{"units", "valid_range", "long_name"} {
		members = append(members, h.AddAttrVdata(name))
	}
	h.AddVgroup("product", "", members...)
	tr := build(t, h)
	checkInvariants(t, tr)

	assert.Equal(t, []string{"product"}, tr.Root.Children())
	n, _ := tr.Root.Child("product")
	v, ok := n.(*Variable)
	require.True(t, ok, "product should collapse to a variable")
	assert.Equal(t, "radiance", v.Name())
	assert.Equal(t, sds, v.TagRef())
	a, err := v.Attributes()
	require.NoError(t, err)
	assert.Equal(t, []string{"units", "valid_range", "long_name"}, a.Keys())
}

func TestWrappedSDSUserVdatasNotPromoted(t *testing.T) {
	h := h4test.NewFake()
	s := radiance()
	s.Attrs = attrs("units", "W")
	sds := h.AddSDS(s)
	units := h.AddTable("units", "", 1)
	h.AddVgroup("product", "", sds, units)
	tr := build(t, h)
	checkInvariants(t, tr)

	assert.Equal(t, []string{"product"}, tr.Root.Children())
}

func TestAttributeMismatchNoCollapse(t *testing.T) {
	h := h4test.NewFake()
	s := radiance()
	s.Attrs = attrs("units", "W")
	sds := h.AddSDS(s)
	notes := h.AddTable("notes", "", 1, 2)
	h.AddVgroup("product", "", sds, notes)
	tr := build(t, h)
	checkInvariants(t, tr)

	g, err := tr.Root.GetGroup("product")
	require.NoError(t, err)
	assert.Equal(t, []string{"radiance", "notes"}, g.Children())
}

func TestFakeDimInjection(t *testing.T) {
	h := h4test.NewFake()
	counts := h.AddSDS(&h4test.FakeSDS{
		Name:     "counts",
		Dims:     []int64{5},
		DimNames: []string{"fakeDim0"},
		NT:       api.NTInt32,
		Values:   make([]int32, 5),
	})
	dimVal := h.AddTable("fakeDim0", "DimVal0.1", 5)
	dim := h.AddVgroup("fakeDim0", "Dim0.0", dimVal)
	v := h.AddVgroup("counts", "Var0.0", counts, dim)
	stray := h.AddTable("fakeDim1", "", 1)
	h.AddVgroup("test.hdf", "CDF0.0", v, dim, stray)
	tr := build(t, h)
	checkInvariants(t, tr)

	assert.Equal(t, []string{"counts"}, tr.Root.Children())
	for p := range tr.Variables() {
		assert.NotContains(t, p, "fakeDim")
	}
}

func TestOrphanUserVdata(t *testing.T) {
	h := h4test.NewFake()
	h.AddTable("station_log", "", 1, 2, 3)
	h.AddTable("_internal_bookkeeping", "", 1)
	h.AddTable("", "", 1)
	tr := build(t, h)
	checkInvariants(t, tr)

	assert.Equal(t, []string{"station_log"}, tr.Root.Children())
	v, err := tr.Root.GetVariable("station_log")
	require.NoError(t, err)
	assert.Equal(t, "vdata", v.Type())
	header, err := v.Header()
	require.NoError(t, err)
	assert.Equal(t, []string{"VALUES"}, header)
	s, err := v.Shape()
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, s)
}

func TestNoVgroups(t *testing.T) {
	tr := build(t, h4test.NewFake())
	assert.Zero(t, tr.Root.Len())
	assert.Equal(t, "/", tr.Root.Name())
}

func TestSDSInTwoVgroups(t *testing.T) {
	h := h4test.NewFake()
	sds := h.AddSDS(radiance())
	notes := h.AddTable("notes", "", 1)
	h.AddVgroup("first", "", sds, notes)
	h.AddVgroup("second", "", sds)
	other := h.AddTable("other", "", 2)
	h.AddVgroup("third", "", sds, other)
	tr := build(t, h)
	checkInvariants(t, tr)

	assert.Equal(t, []string{"first", "third"}, tr.Root.Children())
	first, err := tr.Root.GetGroup("/first")
	require.NoError(t, err)
	assert.Equal(t, []string{"radiance", "notes"}, first.Children())
	third, err := tr.Root.GetGroup("third")
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, third.Children())
}

func TestNestedGroups(t *testing.T) {
	h := h4test.NewFake()
	a := h.AddTable("a", "", 1)
	b := h.AddTable("b", "", 2)
	inner := h.AddVgroup("inner", "", b)
	outer := h.AddVgroup("outer", "", a, inner)
	h.Vgroups[outer.Ref].Attrs = attrs("title", "outer group")
	tr := build(t, h)
	checkInvariants(t, tr)

	paths := tr.Variables()
	assert.Contains(t, paths, "/outer/a")
	assert.Contains(t, paths, "/outer/inner/b")
	g, err := tr.Root.GetGroup("outer")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, g.ListVariables())
	assert.Equal(t, []string{"inner"}, g.ListSubgroups())
	title, has := g.Attributes().Get("title")
	assert.True(t, has)
	assert.Equal(t, "outer group", title)
	_, err = tr.Root.GetGroup("outer/missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = g.GetVariable("inner")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNameCollisionFirstWins(t *testing.T) {
	h := h4test.NewFake()
	first := h.AddTable("data", "", 1)
	second := h.AddTable("data", "", 2)
	h.AddVgroup("g", "", first, second)
	tr := build(t, h)

	g, err := tr.Root.GetGroup("g")
	require.NoError(t, err)
	assert.Equal(t, []string{"data"}, g.Children())
	v, err := g.GetVariable("data")
	require.NoError(t, err)
	assert.Equal(t, first, v.TagRef())
	// the loser was never placed, so it is promoted to the root
	rv, err := tr.Root.GetVariable("data")
	require.NoError(t, err)
	assert.Equal(t, second, rv.TagRef())
}

func TestCycle(t *testing.T) {
	h := h4test.NewFake()
	leaf := h.AddTable("leaf", "", 1)
	a := h.AddVgroup("a", "", leaf)
	b := h.AddVgroup("b", "", a)
	h.Vgroups[a.Ref].Members = append(h.Vgroups[a.Ref].Members, b)
	h.AddVgroup("top", "", a)
	tr := build(t, h)
	checkInvariants(t, tr)

	assert.Contains(t, tr.Variables(), "/top/a/leaf")
}

func TestDepthLimit(t *testing.T) {
	h := h4test.NewFake()
	leaf := h.AddTable("leaf", "", 1)
	deep := h.AddVgroup("deep", "", leaf)
	mid := h.AddVgroup("mid", "", deep)
	h.AddVgroup("top", "", mid)
	tr, err := Build(h, Options{MaxDepth: 2})
	require.NoError(t, err)

	// deep is beyond the limit, so leaf is reached only by promotion
	assert.Equal(t, []string{"leaf"}, tr.Root.Children())
}

func TestDefaultDepthUnbounded(t *testing.T) {
	h := h4test.NewFake()
	member := h.AddTable("leaf", "", 1)
	path := "/leaf"
	for i := 99; i >= 0; i-- {
		name := fmt.Sprintf("g%d", i)
		member = h.AddVgroup(name, "", member)
		path = "/" + name + path
	}
	tr, err := Build(h, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"g0"}, tr.Root.Children())
	assert.Contains(t, tr.Variables(), path)
}

func TestMaxRootRefs(t *testing.T) {
	h := h4test.NewFake()
	a := h.AddTable("a", "", 1)
	h.AddVgroup("ga", "", a)
	b := h.AddTable("b", "", 1)
	h.AddVgroup("gb", "", b)
	tr, err := Build(h, Options{MaxRootRefs: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"ga", "b"}, tr.Root.Children())
}

func TestRootAttributes(t *testing.T) {
	h := h4test.NewFake()
	h.FileAttrs = attrs("title", "test file", "version", int32(3))
	h.AddSDS(radiance())
	tr := build(t, h)

	assert.Equal(t, h.FileAttrs, tr.Root.Attributes())
}

func TestStability(t *testing.T) {
	h := h4test.NewFake()
	s := radiance()
	s.Attrs = attrs("units", "W")
	sds := h.AddSDS(s)
	h.AddVgroup("product", "", sds, h.AddAttrVdata("units"))
	h.AddVgroup("logs", "", h.AddTable("a", "", 1), h.AddTable("b", "", 1))
	h.AddTable("orphan", "", 1)

	t1 := build(t, h)
	t2 := build(t, h)
	assert.Equal(t, shape(t1.Root), shape(t2.Root))
	assert.NotEmpty(t, shape(t1.Root))
}

func TestClassification(t *testing.T) {
	h := h4test.NewFake()
	dim := h.AddTable("lat", "DimVal0.0", 1)
	attr := h.AddAttrVdata("units")
	user := h.AddTable("log", "", 1)
	c1, err := Classify(h)
	require.NoError(t, err)
	c2, err := Classify(h)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)

	assert.Equal(t, []api.Ref{dim.Ref}, c1.Dims())
	assert.Equal(t, []api.Ref{attr.Ref}, c1.Attrs())
	assert.Equal(t, []api.Ref{user.Ref}, c1.Users())
	all, err := h.Vdatas(true)
	require.NoError(t, err)
	for _, ref := range all {
		n := 0
		for _, in := range []bool{c1.IsDim(ref), c1.IsAttr(ref), c1.IsUser(ref)} {
			if in {
				n++
			}
		}
		assert.Equal(t, 1, n, "vdata %d", ref)
	}
}

func TestFilterIdempotent(t *testing.T) {
	h := h4test.NewFake()
	h.AddVgroup("empty", "")
	h.AddVgroup("nested", "", h.AddVgroup("inner", ""))
	h.AddVgroup("keep", "", h.AddTable("x", "", 1), h.AddTable("fakeDim3", "", 1))
	tr := build(t, h)

	before := shape(tr.Root)
	assert.Equal(t, []string{"/", "/keep/", "/keep/x=x:1962/1"}, before)
	Filter(tr.Root)
	assert.Equal(t, before, shape(tr.Root))
}

func TestSkippableMemberErrors(t *testing.T) {
	h := h4test.NewFake()
	bad := h.AddTable("bad", "", 1)
	good := h.AddTable("good", "", 1)
	h.AddVgroup("g", "", bad, good, api.TagRef{Tag: 999, Ref: 1})
	h.Errors[bad] = fmt.Errorf("%w: header", api.ErrCorrupted)
	tr := build(t, h)

	g, err := tr.Root.GetGroup("g")
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, g.Children())
}

func TestFatalMemberError(t *testing.T) {
	h := h4test.NewFake()
	bad := h.AddTable("bad", "", 1)
	h.AddVgroup("g", "", bad)
	boom := errors.New("disk on fire")
	h.Errors[bad] = boom
	_, err := Build(h, DefaultOptions())
	assert.ErrorIs(t, err, ErrEnumerationFailed)
	assert.ErrorIs(t, err, boom)
}

func TestEnumerationErrors(t *testing.T) {
	h := h4test.NewFake()
	h.ListErr = errors.New("cannot list")
	_, err := Build(h, DefaultOptions())
	assert.ErrorIs(t, err, ErrEnumerationFailed)

	h = h4test.NewFake()
	h.RootErr = errors.New("cannot scan")
	_, err = Build(h, DefaultOptions())
	assert.ErrorIs(t, err, ErrEnumerationFailed)
}

func TestValuesMasked(t *testing.T) {
	h := h4test.NewFake()
	h.AddSDS(&h4test.FakeSDS{
		Name:   "temp",
		Dims:   []int64{2, 2},
		NT:     api.NTInt16,
		Values: []int16{1, -999, 3, -999},
		Attrs:  attrs("_FillValue", int16(-999)),
	})
	h.AddSDS(&h4test.FakeSDS{
		Name:   "plain",
		Dims:   []int64{2},
		NT:     api.NTInt16,
		Values: []int16{1, -999},
	})
	tr := build(t, h)

	v, err := tr.Root.GetVariable("temp")
	require.NoError(t, err)
	ma, err := v.Values()
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 2}, ma.Shape)
	assert.Equal(t, []bool{false, true, false, true}, ma.Mask)
	assert.Equal(t, 2, ma.Count())

	v, err = tr.Root.GetVariable("plain")
	require.NoError(t, err)
	ma, err = v.Values()
	require.NoError(t, err)
	assert.Nil(t, ma.Mask)
}

func TestVdataAttributesReservedFieldNames(t *testing.T) {
	h := h4test.NewFake()
	h.AddVdata(&h4test.FakeVdata{
		Name:    "obs",
		Fields:  []string{"general", "_FillValue", "value", "value"},
		Types:   []int32{api.NTInt32, api.NTInt32, api.NTInt32, api.NTInt32},
		Orders:  []int{1, 1, 1, 1},
		Records: 1,
		Values:  []int32{1, 2, 3, 4},
		Attrs:   attrs("source", "station"),
		FieldAttrs: []api.AttributeMap{
			attrs("units", "s"),
			attrs("units", "m"),
			attrs("units", "K", "_FillValue", int32(4)),
			attrs("units", "W"),
		},
	})
	tr := build(t, h)

	v, err := tr.Root.GetVariable("obs")
	require.NoError(t, err)
	a, err := v.Attributes()
	require.NoError(t, err)
	assert.Equal(t, []string{"general", "field:general", "field:_FillValue", "value", "field:value", "_FillValue"}, a.Keys())

	general, _ := a.Get("general")
	src, has := general.(api.AttributeMap).Get("source")
	assert.True(t, has)
	assert.Equal(t, "station", src)

	for key, want := range map[string]string{
		"field:general":    "s",
		"field:_FillValue": "m",
		"value":            "K",
		"field:value":      "W",
	} {
		fa, _ := a.Get(key)
		units, _ := fa.(api.AttributeMap).Get("units")
		assert.Equal(t, want, units, key)
	}
	fill, _ := a.Get("_FillValue")
	assert.Equal(t, int32(4), fill)
}

func TestVdataAttributes(t *testing.T) {
	h := h4test.NewFake()
	h.AddVdata(&h4test.FakeVdata{
		Name:       "obs",
		Fields:     []string{"time", "value"},
		Types:      []int32{api.NTFloat64, api.NTFloat64},
		Orders:     []int{1, 1},
		Records:    2,
		Values:     []float64{0, 1.5, 1, -1},
		Attrs:      attrs("source", "station"),
		FieldAttrs: []api.AttributeMap{nil, attrs("units", "K", "fill_value", float64(-1))},
	})
	h.AddTable("plain", "", 7)
	tr := build(t, h)

	v, err := tr.Root.GetVariable("obs")
	require.NoError(t, err)
	a, err := v.Attributes()
	require.NoError(t, err)
	assert.Equal(t, []string{"general", "time", "value", "_FillValue"}, a.Keys())
	fill, _ := a.Get("_FillValue")
	assert.Equal(t, float64(-1), fill)
	general, _ := a.Get("general")
	src, _ := general.(api.AttributeMap).Get("source")
	assert.Equal(t, "station", src)
	s, err := v.Shape()
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 2}, s)
	ma, err := v.Values()
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false, true}, ma.Mask)

	v, err = tr.Root.GetVariable("plain")
	require.NoError(t, err)
	a, err = v.Attributes()
	require.NoError(t, err)
	fill, has := a.Get("_FillValue")
	assert.True(t, has)
	assert.Nil(t, fill)
	ma, err = v.Values()
	require.NoError(t, err)
	assert.Nil(t, ma.Mask)
	assert.Equal(t, []int32{7}, ma.Values)
}

func TestUnknownDType(t *testing.T) {
	h := h4test.NewFake()
	h.AddSDS(&h4test.FakeSDS{
		Name:   "odd",
		Dims:   []int64{2},
		NT:     7,
		Values: [][]byte{{1}, {2}},
	})
	tr := build(t, h)

	v, err := tr.Root.GetVariable("odd")
	require.NoError(t, err)
	dt, err := v.DType()
	require.NoError(t, err)
	assert.Equal(t, "unknown", dt)
	ma, err := v.Values()
	require.NoError(t, err)
	assert.Equal(t, 2, ma.Len())
}

func TestMaterialisationFailed(t *testing.T) {
	h := h4test.NewFake()
	sds := h.AddSDS(radiance())
	h.AddSDS(&h4test.FakeSDS{Name: "ok", Dims: []int64{1}, NT: api.NTInt8, Values: []int8{1}})
	tr := build(t, h)
	h.Errors[sds] = fmt.Errorf("%w: bad data", api.ErrCorrupted)

	v, err := tr.Root.GetVariable("radiance")
	require.NoError(t, err)
	_, err = v.Values()
	assert.ErrorIs(t, err, ErrMaterialisationFailed)
	_, err = v.Shape()
	assert.ErrorIs(t, err, ErrMaterialisationFailed)

	v, err = tr.Root.GetVariable("ok")
	require.NoError(t, err)
	_, err = v.Values()
	assert.NoError(t, err)
}

func TestVgroupVariableHasNoValues(t *testing.T) {
	h := h4test.NewFake()
	vg := h.AddVgroup("g", "")
	v := newVariable(&session{h: h}, vg, "g")
	assert.Equal(t, "vgroup", v.Type())
	ma, err := v.Values()
	assert.NoError(t, err)
	assert.Nil(t, ma)
	header, err := v.Header()
	assert.NoError(t, err)
	assert.Nil(t, header)
}

func TestClose(t *testing.T) {
	h := h4test.NewFake()
	h.AddSDS(radiance())
	tr := build(t, h)
	v, err := tr.Root.GetVariable("radiance")
	require.NoError(t, err)

	assert.NoError(t, tr.Close())
	assert.NoError(t, tr.Close())
	assert.Equal(t, 1, h.Closed)
	_, err = v.Values()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = v.DType()
	assert.ErrorIs(t, err, ErrClosed)
}
