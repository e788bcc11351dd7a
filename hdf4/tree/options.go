package tree

// Options tune how a tree is built.
type Options struct {
	// MaxDepth bounds how deep Vgroups are descended.  Zero means no bound.
	MaxDepth int

	// MaxRootRefs bounds how many root-level objects are scanned.  Once it is
	// reached the scan stops and what was collected so far is kept.  Zero
	// means no bound.
	MaxRootRefs int
}

// DefaultOptions are used by Open.  They bound neither depth nor the number
// of root objects; cycles are still cut where a Vgroup repeats on its own
// path.
func DefaultOptions() Options {
	return Options{
		MaxDepth:    0,
		MaxRootRefs: 0,
	}
}
