package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mmf1982/QTnetCDF-sub000/hdf4/api"
	"github.com/mmf1982/QTnetCDF-sub000/hdf4/tree"
)

type printer struct {
	w         io.Writer
	attrs     bool
	values    bool
	maxDepth  int
	maxValues int
}

func (p printer) group(g *tree.Group, indent string, depth int) error {
	if depth == 0 {
		fmt.Fprintln(p.w, "group /")
	}
	if p.attrs {
		p.attributes(g.Attributes(), indent+"  ")
	}
	for _, name := range g.Children() {
		n, _ := g.Child(name)
		if sub, ok := n.(*tree.Group); ok {
			fmt.Fprintf(p.w, "%s  group %s/\n", indent, name)
			if p.maxDepth > 0 && depth+1 >= p.maxDepth {
				fmt.Fprintf(p.w, "%s    [max depth reached]\n", indent)
				continue
			}
			if err := p.group(sub, indent+"  ", depth+1); err != nil {
				return err
			}
			continue
		}
		p.variable(n.(*tree.Variable), indent+"  ")
	}
	return nil
}

// variable prints one line per variable.  Errors reading a variable are
// printed in its place so that the rest of the tree still shows.
func (p printer) variable(v *tree.Variable, indent string) {
	shape, err := v.Shape()
	if err != nil {
		fmt.Fprintf(p.w, "%s%s: %v\n", indent, v.Name(), err)
		return
	}
	dtype, err := v.DType()
	if err != nil {
		fmt.Fprintf(p.w, "%s%s: %v\n", indent, v.Name(), err)
		return
	}
	fmt.Fprintf(p.w, "%s%s %s %s %v\n", indent, v.Type(), dtype, v.Name(), shape)
	if p.attrs {
		attrs, err := v.Attributes()
		if err != nil {
			fmt.Fprintf(p.w, "%s  attributes: %v\n", indent, err)
		} else {
			p.attributes(attrs, indent+"  ")
		}
	}
	if p.values {
		p.printValues(v, indent+"  ")
	}
}

func (p printer) attributes(attrs api.AttributeMap, indent string) {
	if attrs == nil {
		return
	}
	for _, key := range attrs.Keys() {
		val, _ := attrs.Get(key)
		fmt.Fprintf(p.w, "%s:%s = %v\n", indent, key, val)
	}
}

func (p printer) printValues(v *tree.Variable, indent string) {
	ma, err := v.Values()
	if err != nil {
		fmt.Fprintf(p.w, "%svalues: %v\n", indent, err)
		return
	}
	if ma == nil {
		return
	}
	n := ma.Len()
	if p.maxValues > 0 && n > p.maxValues {
		n = p.maxValues
	}
	cells := make([]string, 0, n+1)
	for i := 0; i < n; i++ {
		if ma.IsMasked(i) {
			cells = append(cells, "--")
			continue
		}
		cells = append(cells, fmt.Sprint(ma.At(i)))
	}
	if n < ma.Len() {
		cells = append(cells, "...")
	}
	fmt.Fprintf(p.w, "%svalues = [%s]\n", indent, strings.Join(cells, " "))
}
