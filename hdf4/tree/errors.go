package tree

import (
	"errors"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
)

var (
	// ErrOpenFailed is returned when the path is not a readable HDF4 file
	ErrOpenFailed = errors.New("open failed")

	// ErrEnumerationFailed is returned when Vdatas, Vgroups or data sets could not be listed
	ErrEnumerationFailed = errors.New("enumeration failed")

	// ErrMaterialisationFailed is returned when a variable's metadata or values could not be read
	ErrMaterialisationFailed = errors.New("materialisation failed")

	// ErrClosed is returned when a variable is read after its tree was closed
	ErrClosed = errors.New("tree is closed")

	// ErrNotFound is returned for groups or variables requested that don't exist
	ErrNotFound = errors.New("not found")
)

// skippable reports the member failures the walker tolerates: the member is
// dropped and the walk goes on.  Anything else aborts the build.
func skippable(err error) bool {
	return errors.Is(err, api.ErrNotFound) ||
		errors.Is(err, api.ErrBadTag) ||
		errors.Is(err, api.ErrCorrupted)
}
