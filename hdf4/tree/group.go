package tree

import (
	"path"
	"strings"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/util"
)

// Node is either a *Group or a *Variable.
type Node interface {
	Name() string
	IsGroup() bool
}

// Group is an interior node: ordered, uniquely named children plus attributes.
type Group struct {
	name     string
	attrs    api.AttributeMap
	children *util.OrderedMap
}

func newGroup(name string, attrs api.AttributeMap) *Group {
	if attrs == nil {
		attrs = util.EmptyMap()
	}
	return &Group{name: name, attrs: attrs, children: util.EmptyMap()}
}

func (g *Group) Name() string {
	return g.name
}

func (g *Group) IsGroup() bool {
	return true
}

// Attributes returns the attributes of this group.  For the root these are
// the file's global attributes.
func (g *Group) Attributes() api.AttributeMap {
	return g.attrs
}

// Len is the number of children.
func (g *Group) Len() int {
	return g.children.Len()
}

// Children lists child names in insertion order.
func (g *Group) Children() []string {
	return append([]string{}, g.children.Keys()...)
}

// Child looks up a child by name.
func (g *Group) Child(name string) (Node, bool) {
	val, has := g.children.Get(name)
	if !has {
		return nil, false
	}
	return val.(Node), true
}

// ListVariables lists the names of the variables in this group.
func (g *Group) ListVariables() []string {
	var ret []string
	for _, name := range g.children.Keys() {
		if n, _ := g.Child(name); !n.IsGroup() {
			ret = append(ret, name)
		}
	}
	return ret
}

// ListSubgroups returns the names of the subgroups of this group.
func (g *Group) ListSubgroups() []string {
	var ret []string
	for _, name := range g.children.Keys() {
		if n, _ := g.Child(name); n.IsGroup() {
			ret = append(ret, name)
		}
	}
	return ret
}

// GetVariable returns the named variable of this group.
func (g *Group) GetVariable(name string) (*Variable, error) {
	n, has := g.Child(name)
	if !has || n.IsGroup() {
		return nil, ErrNotFound
	}
	return n.(*Variable), nil
}

// GetGroup gets the given group or returns an error if not found.
// The group is a slash-separated path relative to g; a leading "/" is
// accepted and means the same thing when g is the root.
func (g *Group) GetGroup(group string) (*Group, error) {
	group = strings.Trim(path.Clean("/"+group), "/")
	if group == "" {
		return g, nil
	}
	cur := g
	for _, part := range strings.Split(group, "/") {
		n, has := cur.Child(part)
		if !has || !n.IsGroup() {
			return nil, ErrNotFound
		}
		cur = n.(*Group)
	}
	return cur, nil
}

func (g *Group) add(name string, n Node) bool {
	return g.children.AddFirst(name, n)
}

func (g *Group) remove(name string) {
	g.children.Delete(name)
}

// WalkFunc is called for each node during Walk.  p is the slash-separated
// path of the node, starting with "/".  Return nil to continue walking, or
// an error to stop.
type WalkFunc func(p string, n Node) error

// Walk visits g and then every node below it, depth first, in child order.
func (g *Group) Walk(fn WalkFunc) error {
	return walkGroup("/", g, fn)
}

func walkGroup(p string, g *Group, fn WalkFunc) error {
	if err := fn(p, g); err != nil {
		return err
	}
	for _, name := range g.Children() {
		n, _ := g.Child(name)
		childPath := path.Join(p, name)
		if sub, ok := n.(*Group); ok {
			if err := walkGroup(childPath, sub, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(childPath, n); err != nil {
			return err
		}
	}
	return nil
}
