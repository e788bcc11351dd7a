// Package hdf4 opens HDF4 files as logical trees of groups and variables.
//
// The tree hides the objects HDF4 uses for its own bookkeeping: dimension
// and attribute Vdatas, the Vgroups wrapping scientific data sets, and the
// synthetic fakeDim dimensions.  Everything else keeps the names and order
// it has in the file.
package hdf4

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/hdf"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/tree"
)

// ErrUnknown is returned for files that do not start with the HDF4 signature.
var ErrUnknown = fmt.Errorf("%w: not an HDF4 file", tree.ErrOpenFailed)

// Open opens an HDF4 file by name and builds its tree with the default
// options.
func Open(fname string) (*tree.Tree, error) {
	return OpenWith(fname, tree.DefaultOptions())
}

// OpenWith is like Open, with explicit build options.
func OpenWith(fname string, opts tree.Options) (*tree.Tree, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tree.ErrOpenFailed, err)
	}
	t, err := NewWith(file, opts)
	if err != nil {
		file.Close()
		return nil, err
	}
	return t, nil
}

// New is like Open, but takes an opened file instead of a filename.
// If New returns no error, it has taken ownership of the file.  Otherwise, it
// is up to the caller to close the file.
func New(file api.ReadSeekerCloser) (*tree.Tree, error) {
	return NewWith(file, tree.DefaultOptions())
}

// NewWith is like New, with explicit build options.
func NewWith(file api.ReadSeekerCloser, opts tree.Options) (*tree.Tree, error) {
	if !isHDF4(file) {
		return nil, ErrUnknown
	}
	h, err := hdf.New(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tree.ErrOpenFailed, err)
	}
	return tree.Build(h, opts)
}

// Close closes the file behind t.  Variables of t cannot be read afterwards.
func Close(t *tree.Tree) error {
	return t.Close()
}

// SetLogLevel sets the log level of the reader and the tree builder and
// returns the old level.  See tree.SetLogLevel for the levels.
func SetLogLevel(level int) int {
	hdf.SetLogLevel(level)
	return tree.SetLogLevel(level)
}

func isHDF4(file io.ReadSeeker) bool {
	var b [4]byte
	_, err := io.ReadFull(file, b[:])
	if err != nil {
		return false
	}
	_, err = file.Seek(0, io.SeekStart)
	return err == nil && bytes.Equal(b[:], hdf.Magic)
}
