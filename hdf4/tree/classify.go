package tree

import (
	"fmt"
	"strings"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
)

// dimValMarker is the class string HDF4 gives to Vdatas holding dimension values.
const dimValMarker = "DimVal"

// Classification splits the Vdatas of a file into dimension carriers,
// attribute carriers and user data.  The three sets are disjoint and
// together hold every Vdata in the file.
type Classification struct {
	dim  []api.Ref
	attr []api.Ref
	user []api.Ref
	role map[api.Ref]vdataRole
}

type vdataRole int

const (
	roleUser vdataRole = iota
	roleDim
	roleAttr
)

// Classify enumerates the Vdatas of h twice, with and without the hidden
// attribute Vdatas, and sorts them into roles.  A Vdata whose class cannot
// be read is counted as user data.
func Classify(h api.Handle) (*Classification, error) {
	visible, err := h.Vdatas(false)
	if err != nil {
		return nil, fmt.Errorf("%w: listing vdatas: %w", ErrEnumerationFailed, err)
	}
	all, err := h.Vdatas(true)
	if err != nil {
		return nil, fmt.Errorf("%w: listing vdatas with attributes: %w", ErrEnumerationFailed, err)
	}
	c := &Classification{role: make(map[api.Ref]vdataRole, len(all))}
	inVisible := make(map[api.Ref]bool, len(visible))
	for _, ref := range visible {
		inVisible[ref] = true
	}
	for _, ref := range all {
		if inVisible[ref] {
			continue
		}
		if _, has := c.role[ref]; has {
			continue
		}
		c.role[ref] = roleAttr
		c.attr = append(c.attr, ref)
	}
	for _, ref := range visible {
		if _, has := c.role[ref]; has {
			continue
		}
		class, err := h.Class(api.TagRef{Tag: api.TagVH, Ref: ref})
		if err != nil {
			if !skippable(err) {
				return nil, fmt.Errorf("%w: class of vdata %d: %w", ErrEnumerationFailed, ref, err)
			}
			// unreadable, left to the walker to skip
			logger.Warn("vdata", ref, "has no readable class:", err)
		}
		if strings.Contains(class, dimValMarker) {
			c.role[ref] = roleDim
			c.dim = append(c.dim, ref)
			continue
		}
		c.role[ref] = roleUser
		c.user = append(c.user, ref)
	}
	logger.Infof("classified vdatas: %d dimension, %d attribute, %d user",
		len(c.dim), len(c.attr), len(c.user))
	return c, nil
}

// Dims lists the dimension-carrier Vdatas in enumeration order.
func (c *Classification) Dims() []api.Ref {
	return c.dim
}

// Attrs lists the attribute-carrier Vdatas in enumeration order.
func (c *Classification) Attrs() []api.Ref {
	return c.attr
}

// Users lists the user Vdatas in enumeration order.
func (c *Classification) Users() []api.Ref {
	return c.user
}

func (c *Classification) IsDim(ref api.Ref) bool {
	role, has := c.role[ref]
	return has && role == roleDim
}

func (c *Classification) IsAttr(ref api.Ref) bool {
	role, has := c.role[ref]
	return has && role == roleAttr
}

func (c *Classification) IsUser(ref api.Ref) bool {
	role, has := c.role[ref]
	return has && role == roleUser
}

// IsScaffolding returns true for Vdatas that never show up in the tree.
func (c *Classification) IsScaffolding(ref api.Ref) bool {
	return c.IsDim(ref) || c.IsAttr(ref)
}
