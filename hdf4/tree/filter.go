package tree

import (
	"github.com/mmf1982/QTnetCDF-sub000/internal"
)

// Filter prunes g bottom-up: variables named like synthetic dimensions are
// dropped, then groups left without children.  g itself is never removed.
// Filtering a filtered tree changes nothing.
func Filter(g *Group) {
	for _, name := range g.Children() {
		n, _ := g.Child(name)
		switch c := n.(type) {
		case *Group:
			Filter(c)
			if c.Len() == 0 {
				logger.Info("dropping empty group", name)
				g.remove(name)
			}
		case *Variable:
			if internal.IsFakeDim(name) || internal.IsFakeDim(c.Name()) {
				logger.Info("dropping synthetic dimension", name)
				g.remove(name)
			}
		}
	}
}
