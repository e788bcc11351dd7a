package hdf

import (
	"fmt"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
)

// Each error wraps the api error kind it belongs to, so callers of the
// facade can test with errors.Is against the api kinds.
var (
	// ErrBadMagic is returned when the file is not an HDF4 file
	ErrBadMagic = fmt.Errorf("%w: bad magic number", api.ErrCorrupted)

	// ErrCorrupted is returned when file inconsistencies are found
	ErrCorrupted = fmt.Errorf("%w: hdf4 inconsistency", api.ErrCorrupted)

	// ErrTruncated is returned when an element extends past the end of the file
	ErrTruncated = fmt.Errorf("%w: file is too small, may be truncated", api.ErrCorrupted)

	// ErrNotFound is returned for tag/ref pairs that don't exist
	ErrNotFound = fmt.Errorf("%w: no such tag/ref", api.ErrNotFound)

	// ErrBadTag is returned when an object of the wrong kind is asked for
	ErrBadTag = fmt.Errorf("%w: unexpected tag", api.ErrBadTag)

	// ErrUnsupportedSpecial is returned for chunked, external and other special
	// elements this reader does not decode
	ErrUnsupportedSpecial = fmt.Errorf("%w: special element", api.ErrUnsupported)

	// ErrUnknownCompression is returned for compression schemes other than
	// none, RLE and deflate
	ErrUnknownCompression = fmt.Errorf("%w: compression", api.ErrUnsupported)

	// ErrUnknownType is returned when data of an unknown number type is read
	ErrUnknownType = fmt.Errorf("%w: number type", api.ErrUnsupported)

	// ErrClosed is returned when the file is used after Close
	ErrClosed = fmt.Errorf("%w: file is closed", api.ErrNotFound)
)
