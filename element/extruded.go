package element

import (
	"github.com/notargets/dofmap/layout"
	"gonum.org/v1/gonum/mat"
)

// ExtrudedQuadP1 is the bilinear layout on the quad cell of an extruded
// interval mesh.  Dofs are ordered column-major per base vertex:
//
//	0: (v0, bottom)  1: (v0, top)  2: (v1, bottom)  3: (v1, top)
//
// EntityDofs is expressed over base dimensions, each base vertex carrying
// its vertical dof pair; every dof advances by one node per layer.
func ExtrudedQuadP1() *Layout {
	ed := layout.EntityDofs{
		0: {0: []int{0, 1}, 1: []int{2, 3}},
		1: {0: []int{}},
	}
	coords := mat.NewDense(4, 2, []float64{
		-1, -1,
		-1, 1,
		1, -1,
		1, 1,
	})
	return &Layout{
		name:        "P1Q",
		Dim:         2,
		EntityDofs:  ed,
		SubEntities: []int{2, 1},
		NumDofs:     4,
		ValueSize:   1,
		RefCoords:   coords,
		// Vertical facets, one per base vertex.
		FacetClosure: [][]int{{0, 1}, {2, 3}},
		FacetSupport: [][]int{{0, 1}, {2, 3}},
		Layered:      true,
		// Mask iteration order: the 4 product vertices, then the two
		// vertical edges, then horizontal bottom and top last so the
		// facet-point positions -2/-1 address them directly.
		MaskEntities: []MaskEntity{
			{Dim: 0, Closure: []int{0}, Support: []int{0}},
			{Dim: 0, Closure: []int{1}, Support: []int{1}},
			{Dim: 0, Closure: []int{2}, Support: []int{2}},
			{Dim: 0, Closure: []int{3}, Support: []int{3}},
			{Dim: 1, Closure: []int{0, 1}, Support: []int{0, 1}, Facet: true},
			{Dim: 1, Closure: []int{2, 3}, Support: []int{2, 3}, Facet: true},
			{Dim: 1, Closure: []int{0, 2}, Support: []int{0, 2}, Facet: true},
			{Dim: 1, Closure: []int{1, 3}, Support: []int{1, 3}, Facet: true},
		},
		VerticalStride: []int{1, 1, 1, 1},
	}
}
