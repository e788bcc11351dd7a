// Package api is common to the HDF4 container reader and the logical tree
// built on top of it.
package api

import (
	"errors"
	"fmt"
	"io"
)

type ReadSeekerCloser interface {
	io.ReadSeeker
	io.Closer
}

type AttributeMap interface {
	// Ordered list of keys
	Keys() []string
	// Indexed lookup
	Get(key string) (val any, has bool)
}

// Tag identifies the kind of an HDF4 object.
type Tag uint16

// Ref identifies an object within its tag.  Refs are only unique per tag.
type Ref uint16

const (
	TagSDS Tag = 720  // numeric data group, the handle of a scientific data set
	TagVH  Tag = 1962 // Vdata header
	TagVG  Tag = 1965 // Vgroup
)

// TagRef addresses one object in a file.
type TagRef struct {
	Tag Tag
	Ref Ref
}

func (tr TagRef) String() string {
	return fmt.Sprintf("%d/%d", tr.Tag, tr.Ref)
}

// Kind names the object kind the way the viewer shows it.
func (tr TagRef) Kind() string {
	switch tr.Tag {
	case TagVG:
		return "vgroup"
	case TagVH:
		return "vdata"
	case TagSDS:
		return "sd_dataset"
	}
	return "unknown"
}

// Facade error kinds.  Implementations wrap their own errors with these so
// that callers can tell which failures are tolerable.
var (
	// ErrNotFound is returned when a tag/ref pair does not exist in the file
	ErrNotFound = errors.New("object not found")

	// ErrBadTag is returned when an operation is asked of the wrong kind of object
	ErrBadTag = errors.New("wrong tag for operation")

	// ErrCorrupted is returned when an object cannot be decoded
	ErrCorrupted = errors.New("corrupted object")

	// ErrUnsupported is returned for valid HDF4 features this reader cannot decode
	ErrUnsupported = errors.New("unsupported HDF4 feature")
)

// SDSInfo describes a scientific data set.
type SDSInfo struct {
	Name       string
	Rank       int
	DimNames   []string
	DimSizes   []int64
	NumberType int32
	Attributes AttributeMap
}

// VdataInfo describes a Vdata table.
type VdataInfo struct {
	Name            string
	Class           string
	NRecords        int
	NFields         int
	RecordSize      int
	FieldNames      []string
	FieldTypes      []int32
	FieldOrders     []int
	Attributes      AttributeMap   // Vdata-level attributes
	FieldAttributes []AttributeMap // one per field
}

// Handle is a read-only view of an opened HDF4 file.
type Handle interface {
	// Vdatas lists Vdata refs in file order.  With withAttrs false the
	// Vdatas that only exist to hold attributes of other objects are left out.
	Vdatas(withAttrs bool) ([]Ref, error)

	// SDSs lists the refs of all scientific data sets in file order.
	SDSs() ([]Ref, error)

	// NextRoot returns the root-level object following prev.  Pass the zero
	// TagRef to start.  ok is false once the iteration is exhausted.
	NextRoot(prev TagRef) (next TagRef, ok bool, err error)

	// Name returns the declared name, which may be empty.
	Name(tr TagRef) (string, error)

	// Class returns the class string of a Vdata or Vgroup.
	Class(tr TagRef) (string, error)

	// TagRefs lists the members of a Vgroup in order.
	TagRefs(vg Ref) ([]TagRef, error)

	SDSInfo(ref Ref) (*SDSInfo, error)
	VdataInfo(ref Ref) (*VdataInfo, error)

	// Attributes returns the attributes of any object.
	Attributes(tr TagRef) (AttributeMap, error)

	// FileAttributes returns the global attributes of the file.
	FileAttributes() (AttributeMap, error)

	// ReadSDS reads the whole data set, unmasked, in row-major order.
	ReadSDS(ref Ref) (values any, shape []int64, err error)

	// ReadVdata reads all records as a table, one row per record and one
	// column per field component.
	ReadVdata(ref Ref) (values any, shape []int64, err error)

	Close() error
}

// TableColumns is the number of columns in the materialised table: one per
// field component, except that a char8 field becomes a single string column.
func (vi *VdataInfo) TableColumns() int {
	cols := 0
	for i, nt := range vi.FieldTypes {
		if BaseType(nt) == NTChar8 || i >= len(vi.FieldOrders) {
			cols++
			continue
		}
		cols += vi.FieldOrders[i]
	}
	return cols
}

// TableShape is the shape of the materialised table: [records] when there
// is a single column, [records, columns] otherwise.
func (vi *VdataInfo) TableShape() []int64 {
	cols := vi.TableColumns()
	if cols == 1 {
		return []int64{int64(vi.NRecords)}
	}
	return []int64{int64(vi.NRecords), int64(cols)}
}
