package indexset

import "github.com/notargets/gocfd/utils"

// MapMask records, for every non-cell sub-entity of the reference cell,
// which local dofs lie in its closure (or support).  Storage is a CSR-like
// triple over the sub-entity chart: Counts[p] dofs for chart point p,
// starting at Offsets[p] within Indices.  FacetPoints holds the chart
// positions of the facet-dimension sub-entities; for layered cells the
// last two positions are the bottom and top horizontal facets, giving the
// O(1) lookup the boundary-node extraction relies on.
type MapMask struct {
	Counts      utils.Index
	Offsets     utils.Index
	Indices     utils.Index
	FacetPoints utils.Index
}

// Section returns the dof indices recorded for chart point p.
func (m *MapMask) Section(p int) utils.Index {
	off := m.Offsets[p]
	return m.Indices[off : off+m.Counts[p]]
}

// BoundaryMasks pairs the topological and geometric masks.  Geometric is
// nil when support dofs are undefined for the cell dimension.
type BoundaryMasks struct {
	Topological *MapMask
	Geometric   *MapMask
}

// ByMethod returns the mask for a method name, nil for an absent mask.
func (b *BoundaryMasks) ByMethod(method string) *MapMask {
	if b == nil {
		return nil
	}
	switch method {
	case "topological":
		return b.Topological
	case "geometric":
		return b.Geometric
	}
	return nil
}
