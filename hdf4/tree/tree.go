// Package tree rebuilds the logical structure of an HDF4 file: a tree of
// named groups and variables in which the bookkeeping objects HDF4 uses to
// represent dimensions, attributes and data set wrappers are hidden.
package tree

import (
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
	"github.com/mmf1982/QTnetCDF-sub000/internal"
)

var (
	logger = internal.NewLogger("tree")
)

// Tree is the logical tree of one open file.
type Tree struct {
	Root  *Group
	Class *Classification
	s     *session
}

// Close closes the underlying file.  Variables of the tree return ErrClosed
// afterwards.  Closing twice is harmless.
func (t *Tree) Close() error {
	if t.s.closed {
		return nil
	}
	t.s.closed = true
	return t.s.h.Close()
}

// Handle returns the file handle the tree reads from.
func (t *Tree) Handle() api.Handle {
	return t.s.h
}

// Variables returns every variable below the root keyed by its path.
func (t *Tree) Variables() map[string]*Variable {
	ret := map[string]*Variable{}
	_ = t.Root.Walk(func(p string, n Node) error {
		if v, ok := n.(*Variable); ok {
			ret[p] = v
		}
		return nil
	})
	return ret
}

// SetLogLevel sets the logging level to the given level, and returns
// the old level. This is for internal debugging use. The log messages
// are not expected to make much sense to anyone but the developers.
// The lowest level is 0 (no error logs at all) and the highest level is
// 3 (errors, warnings and debug messages).
func SetLogLevel(level int) int {
	return int(logger.SetLogLevel(internal.LevelFromInt(level)))
}
