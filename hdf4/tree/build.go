package tree

import (
	"errors"
	"fmt"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
	"github.com/mmf1982/QTnetCDF-sub000/internal"
)

// collapse is the verdict of the SDS-collapse detector on a Vgroup.
type collapse int

const (
	noCollapse     collapse = iota
	collapseToSDS           // replace the Vgroup by its single SDS
	collapseToSelf          // the SDS was already placed elsewhere, drop the Vgroup
)

// builder carries the state of one tree build.  visited holds every object
// already placed in the tree, keyed by tag and ref since refs are only unique
// per tag.  onPath holds the Vgroups of the current descent.
type builder struct {
	s       *session
	h       api.Handle
	opts    Options
	class   *Classification
	visited map[api.TagRef]bool
	onPath  map[api.Ref]bool
	depth   int
}

// Build reconstructs the logical tree of h.  The tree shares h with its
// variables; closing the tree closes h.
func Build(h api.Handle, opts Options) (*Tree, error) {
	class, err := Classify(h)
	if err != nil {
		return nil, err
	}
	s := &session{h: h}
	b := &builder{
		s:       s,
		h:       h,
		opts:    opts,
		class:   class,
		visited: map[api.TagRef]bool{},
		onPath:  map[api.Ref]bool{},
	}
	root := newGroup("/", nil)
	if err := b.scanRoot(root); err != nil {
		return nil, err
	}
	if err := b.promote(root); err != nil {
		return nil, err
	}
	Filter(root)
	attrs, err := h.FileAttributes()
	if err != nil {
		return nil, fmt.Errorf("%w: file attributes: %w", ErrEnumerationFailed, err)
	}
	root.attrs = attrs
	return &Tree{Root: root, Class: class, s: s}, nil
}

// scanRoot walks every root-level Vgroup not already placed.  Root-level
// Vdatas are left to promote.
func (b *builder) scanRoot(root *Group) error {
	var prev api.TagRef
	for n := 0; ; n++ {
		if b.opts.MaxRootRefs > 0 && n >= b.opts.MaxRootRefs {
			logger.Warnf("root scan stopped after %d objects", n)
			return nil
		}
		next, ok, err := b.h.NextRoot(prev)
		if err != nil {
			return fmt.Errorf("%w: root scan after %v: %w", ErrEnumerationFailed, prev, err)
		}
		if !ok {
			return nil
		}
		prev = next
		if next.Tag != api.TagVG || b.visited[next] {
			continue
		}
		if err := b.addMember(root, next); err != nil {
			return err
		}
	}
}

// walk builds the node for Vgroup vg, to be inserted under name.  It
// returns a nil node when the Vgroup collapses onto an SDS placed elsewhere.
func (b *builder) walk(vg api.Ref, name string) (Node, error) {
	tr := api.TagRef{Tag: api.TagVG, Ref: vg}
	members, err := b.h.TagRefs(vg)
	if err != nil {
		return nil, err
	}
	verdict, sds, err := b.detectCollapse(members)
	if err != nil {
		return nil, err
	}
	switch verdict {
	case collapseToSDS:
		sdsName, err := b.h.Name(sds)
		if err != nil {
			return nil, err
		}
		if sdsName == "" {
			sdsName = name
		}
		logger.Infof("vgroup %q collapses onto data set %q", name, sdsName)
		// the sibling Vdatas are the data set's attributes, so they are placed too
		for _, m := range members {
			if m.Tag == api.TagVH {
				b.visited[m] = true
			}
		}
		b.visited[sds] = true
		b.visited[tr] = true
		return newVariable(b.s, sds, sdsName), nil
	case collapseToSelf:
		logger.Infof("vgroup %q wraps a data set placed elsewhere, dropped", name)
		b.visited[tr] = true
		return nil, nil
	}

	attrs, err := b.h.Attributes(tr)
	if err != nil {
		if !skippable(err) {
			return nil, err
		}
		attrs = nil
	}
	g := newGroup(name, attrs)
	b.visited[tr] = true
	b.onPath[vg] = true
	b.depth++
	defer func() {
		delete(b.onPath, vg)
		b.depth--
	}()
	for _, m := range members {
		if err := b.addMember(g, m); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// addMember places member m of g.  Members that are scaffolding, already
// placed, unnamed, or shadowed by an earlier sibling of the same name are
// skipped, as are members the file cannot resolve.
func (b *builder) addMember(g *Group, m api.TagRef) error {
	switch m.Tag {
	case api.TagVH:
		if b.class.IsScaffolding(m.Ref) {
			return nil
		}
	case api.TagSDS:
		if b.visited[m] {
			return nil
		}
	case api.TagVG:
		if b.onPath[m.Ref] {
			logger.Warnf("vgroup %d contains itself, member skipped", m.Ref)
			return nil
		}
		if b.opts.MaxDepth > 0 && b.depth >= b.opts.MaxDepth {
			logger.Warnf("vgroup %d is deeper than %d, member skipped", m.Ref, b.opts.MaxDepth)
			return nil
		}
	default:
		logger.Info("skipping member with tag", m.Tag)
		return nil
	}
	name, err := b.h.Name(m)
	if err != nil {
		return b.skip(m, err)
	}
	if name == "" {
		logger.Info("skipping unnamed member", m)
		return nil
	}
	if _, has := g.Child(name); has {
		logger.Infof("%q already in %q, later %v dropped", name, g.name, m)
		return nil
	}
	var child Node
	if m.Tag == api.TagVG {
		child, err = b.walk(m.Ref, name)
		if err != nil {
			return b.skip(m, err)
		}
		if child == nil {
			return nil
		}
	} else {
		child = newVariable(b.s, m, name)
		b.visited[m] = true
	}
	g.add(name, child)
	return nil
}

func (b *builder) skip(m api.TagRef, err error) error {
	if skippable(err) {
		logger.Info("skipping member", m, err)
		return nil
	}
	if errors.Is(err, ErrEnumerationFailed) {
		return err
	}
	return fmt.Errorf("%w: member %v: %w", ErrEnumerationFailed, m, err)
}

// detectCollapse recognizes a Vgroup wrapping a single SDS whose attributes
// are also stored as sibling Vdatas named after them.
func (b *builder) detectCollapse(members []api.TagRef) (collapse, api.TagRef, error) {
	var sds api.TagRef
	seen := map[api.TagRef]bool{}
	for _, m := range members {
		if m.Tag != api.TagSDS || seen[m] {
			continue
		}
		sds = m
		seen[m] = true
	}
	if len(seen) != 1 {
		return noCollapse, sds, nil
	}
	info, err := b.h.SDSInfo(sds.Ref)
	if err != nil {
		if skippable(err) {
			return noCollapse, sds, nil
		}
		return noCollapse, sds, err
	}
	sdsAttrs := map[string]bool{}
	if info.Attributes != nil {
		for _, key := range info.Attributes.Keys() {
			sdsAttrs[key] = true
		}
	}
	vsNames := map[string]bool{}
	for _, m := range members {
		if m.Tag != api.TagVH {
			continue
		}
		name, err := b.h.Name(m)
		if err != nil {
			if skippable(err) {
				continue
			}
			return noCollapse, sds, err
		}
		if name != "" {
			vsNames[name] = true
		}
	}
	if !sameKeys(sdsAttrs, vsNames) {
		return noCollapse, sds, nil
	}
	if b.visited[sds] {
		return collapseToSelf, sds, nil
	}
	return collapseToSDS, sds, nil
}

func sameKeys(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// promote adds to the root every data set and user Vdata no Vgroup led to.
// Unnamed objects are skipped, and so are Vdatas whose name starts with an
// underscore.
func (b *builder) promote(root *Group) error {
	sdss, err := b.h.SDSs()
	if err != nil {
		return fmt.Errorf("%w: listing data sets: %w", ErrEnumerationFailed, err)
	}
	for _, ref := range sdss {
		if err := b.promoteOne(root, api.TagRef{Tag: api.TagSDS, Ref: ref}); err != nil {
			return err
		}
	}
	for _, ref := range b.class.Users() {
		if err := b.promoteOne(root, api.TagRef{Tag: api.TagVH, Ref: ref}); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) promoteOne(root *Group, tr api.TagRef) error {
	if b.visited[tr] {
		return nil
	}
	name, err := b.h.Name(tr)
	if err != nil {
		return b.skip(tr, err)
	}
	if name == "" {
		return nil
	}
	if tr.Tag == api.TagVH && internal.IsInternalName(name) {
		logger.Info("not promoting internal vdata", name)
		return nil
	}
	if !root.add(name, newVariable(b.s, tr, name)) {
		logger.Infof("%q already at root, %v not promoted", name, tr)
		return nil
	}
	b.visited[tr] = true
	return nil
}
