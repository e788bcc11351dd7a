package tree

import (
	"fmt"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/util"
	"github.com/mmf1982/QTnetCDF-sub000/internal"
)

const (
	// generalKey holds the Vdata-level attributes in a Vdata's attribute map.
	generalKey = "general"
	// fillValueKey holds the resolved fill value in a Vdata's attribute map.
	fillValueKey = "_FillValue"
)

// session is the file handle shared by a tree and all its variables.
type session struct {
	h      api.Handle
	closed bool
}

func (s *session) handle() (api.Handle, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return s.h, nil
}

// Variable is a lazy proxy for a leaf of the tree.  Nothing but the name is
// read until asked for, and nothing is cached.
type Variable struct {
	tr   api.TagRef
	name string
	s    *session
}

func newVariable(s *session, tr api.TagRef, name string) *Variable {
	return &Variable{tr: tr, name: name, s: s}
}

func (v *Variable) Name() string {
	return v.name
}

func (v *Variable) IsGroup() bool {
	return false
}

// TagRef is the tag/ref pair the variable reads from.
func (v *Variable) TagRef() api.TagRef {
	return v.tr
}

// Type is "vgroup", "vdata" or "sd_dataset".
func (v *Variable) Type() string {
	return v.tr.Kind()
}

func (v *Variable) failed(what string, err error) error {
	return fmt.Errorf("%w: %s of %s %q: %w", ErrMaterialisationFailed, what, v.Type(), v.name, err)
}

func (v *Variable) sdsInfo() (*api.SDSInfo, error) {
	h, err := v.s.handle()
	if err != nil {
		return nil, err
	}
	info, err := h.SDSInfo(v.tr.Ref)
	if err != nil {
		return nil, v.failed("info", err)
	}
	return info, nil
}

func (v *Variable) vdataInfo() (*api.VdataInfo, error) {
	h, err := v.s.handle()
	if err != nil {
		return nil, err
	}
	info, err := h.VdataInfo(v.tr.Ref)
	if err != nil {
		return nil, v.failed("info", err)
	}
	return info, nil
}

// Shape returns the size of each dimension.  A Vdata is a table of one row
// per record, with one column per field component; a single column makes it
// one-dimensional.  Vgroups have no shape.
func (v *Variable) Shape() ([]int64, error) {
	switch v.tr.Tag {
	case api.TagSDS:
		info, err := v.sdsInfo()
		if err != nil {
			return nil, err
		}
		return info.DimSizes, nil
	case api.TagVH:
		info, err := v.vdataInfo()
		if err != nil {
			return nil, err
		}
		return info.TableShape(), nil
	}
	return nil, nil
}

// NDim is the number of dimensions.
func (v *Variable) NDim() (int, error) {
	if v.tr.Tag == api.TagSDS {
		info, err := v.sdsInfo()
		if err != nil {
			return 0, err
		}
		return info.Rank, nil
	}
	shape, err := v.Shape()
	return len(shape), err
}

// DType returns the semantic type name, "unknown" for number types outside
// the table.  A Vdata reports the type of its first field.
func (v *Variable) DType() (string, error) {
	switch v.tr.Tag {
	case api.TagSDS:
		info, err := v.sdsInfo()
		if err != nil {
			return "", err
		}
		return api.DTypeName(info.NumberType), nil
	case api.TagVH:
		info, err := v.vdataInfo()
		if err != nil {
			return "", err
		}
		if len(info.FieldTypes) == 0 {
			return api.DTypeUnknown, nil
		}
		return api.DTypeName(info.FieldTypes[0]), nil
	}
	return api.DTypeUnknown, nil
}

// Header lists the field names of a Vdata, nil for anything else.
func (v *Variable) Header() ([]string, error) {
	if v.tr.Tag != api.TagVH {
		return nil, nil
	}
	info, err := v.vdataInfo()
	if err != nil {
		return nil, err
	}
	return info.FieldNames, nil
}

// Attributes returns the attribute map.  For a Vdata the map is unified:
// "general" holds the Vdata-level attributes, each field name holds that
// field's attributes, and "_FillValue" holds the first fill value found
// among them (nil if there is none).  A field named "general" or
// "_FillValue", or repeating an earlier field name, is stored under
// "field:<name>".
func (v *Variable) Attributes() (api.AttributeMap, error) {
	switch v.tr.Tag {
	case api.TagVH:
		info, err := v.vdataInfo()
		if err != nil {
			return nil, err
		}
		return unifiedVdataAttributes(info), nil
	case api.TagSDS:
		info, err := v.sdsInfo()
		if err != nil {
			return nil, err
		}
		if info.Attributes == nil {
			return util.EmptyMap(), nil
		}
		return info.Attributes, nil
	}
	h, err := v.s.handle()
	if err != nil {
		return nil, err
	}
	attrs, err := h.Attributes(v.tr)
	if err != nil {
		return nil, v.failed("attributes", err)
	}
	return attrs, nil
}

func unifiedVdataAttributes(info *api.VdataInfo) *util.OrderedMap {
	om := util.EmptyMap()
	general := info.Attributes
	if general == nil {
		general = util.EmptyMap()
	}
	om.Add(generalKey, general)
	maps := []api.AttributeMap{general}
	for i, name := range info.FieldNames {
		var fa api.AttributeMap = util.EmptyMap()
		if i < len(info.FieldAttributes) && info.FieldAttributes[i] != nil {
			fa = info.FieldAttributes[i]
		}
		maps = append(maps, fa)
		if !addFieldAttrs(om, name, fa) {
			logger.Warnf("vdata %q: attributes of field %q have no free key, left out", info.Name, name)
		}
	}
	fill, _ := findFillValue(maps...)
	om.Add(fillValueKey, fill)
	return om
}

// fieldKeyPrefix marks a field whose name is taken by a reserved key or an
// earlier field.
const fieldKeyPrefix = "field:"

// addFieldAttrs stores the attributes of field name, under "field:<name>"
// when the plain name is reserved or already used.
func addFieldAttrs(om *util.OrderedMap, name string, fa api.AttributeMap) bool {
	if name != fillValueKey && om.AddFirst(name, fa) {
		return true
	}
	key := fieldKeyPrefix + name
	if key == fillValueKey {
		return false
	}
	return om.AddFirst(key, fa)
}

// findFillValue returns the value of the first attribute named like a fill
// value, searching the maps in order.
func findFillValue(maps ...api.AttributeMap) (any, bool) {
	for _, m := range maps {
		if m == nil {
			continue
		}
		for _, key := range m.Keys() {
			if internal.IsFillValueName(key) {
				val, _ := m.Get(key)
				return val, true
			}
		}
	}
	return nil, false
}

// Values reads the data.  Elements equal to the fill value, when there is
// one, are masked.  Vgroups have no values and return nil.
func (v *Variable) Values() (*util.MaskedArray, error) {
	h, err := v.s.handle()
	if err != nil {
		return nil, err
	}
	var values any
	var shape []int64
	var fill any
	var hasFill bool
	switch v.tr.Tag {
	case api.TagSDS:
		info, err := v.sdsInfo()
		if err != nil {
			return nil, err
		}
		fill, hasFill = findFillValue(info.Attributes)
		values, shape, err = h.ReadSDS(v.tr.Ref)
		if err != nil {
			return nil, v.failed("values", err)
		}
	case api.TagVH:
		info, err := v.vdataInfo()
		if err != nil {
			return nil, err
		}
		attrs := unifiedVdataAttributes(info)
		fill, _ = attrs.Get(fillValueKey)
		hasFill = fill != nil
		values, shape, err = h.ReadVdata(v.tr.Ref)
		if err != nil {
			return nil, v.failed("values", err)
		}
	default:
		return nil, nil
	}
	ma, err := util.NewMaskedArray(values, shape)
	if err != nil {
		return nil, v.failed("values", err)
	}
	if hasFill && !ma.MaskEqual(fill) {
		logger.Warnf("%s: fill value %v is not a scalar, data left unmasked", v.name, fill)
	}
	return ma, nil
}
