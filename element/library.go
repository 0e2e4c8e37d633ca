package element

import (
	"github.com/notargets/dofmap/layout"
	"gonum.org/v1/gonum/mat"
)

// Reference cell conventions: interval [-1, 1]; triangle with vertices
// (-1,-1), (1,-1), (-1,1) and edges e0=(v0,v1), e1=(v1,v2), e2=(v0,v2).

var intervalVertexCoords = mat.NewDense(2, 1, []float64{-1, 1})

var triangleVertexCoords = mat.NewDense(3, 2, []float64{
	-1, -1,
	1, -1,
	-1, 1,
})

var triangleEdges = [][]int{{0, 1}, {1, 2}, {0, 2}}

// IntervalP1 is the linear interval layout: one dof per vertex.
func IntervalP1() *Layout {
	ed := layout.EntityDofs{
		0: {0: []int{0}, 1: []int{1}},
		1: {0: []int{}},
	}
	coords := mat.NewDense(2, 1, []float64{-1, 1})
	return intervalLayout("P1I", ed, coords)
}

// IntervalP2 is the quadratic interval layout: vertex dofs plus one
// interior dof.
func IntervalP2() *Layout {
	ed := layout.EntityDofs{
		0: {0: []int{0}, 1: []int{1}},
		1: {0: []int{2}},
	}
	coords := mat.NewDense(3, 1, []float64{-1, 1, 0})
	return intervalLayout("P2I", ed, coords)
}

// IntervalDG1 places both dofs on the cell interior.  Its facets have an
// empty topological closure but non-empty geometric support, since the dof
// coordinates sit on the endpoints.
func IntervalDG1() *Layout {
	ed := layout.EntityDofs{
		0: {0: []int{}, 1: []int{}},
		1: {0: []int{0, 1}},
	}
	coords := mat.NewDense(2, 1, []float64{-1, 1})
	return intervalLayout("DG1I", ed, coords)
}

func intervalLayout(name string, ed layout.EntityDofs, coords *mat.Dense) *Layout {
	topo := map[int][][]int{
		0: {{0}, {1}},
		1: {{0, 1}},
	}
	ndof, _ := coords.Dims()
	facets := [][]int{{0}, {1}}
	return &Layout{
		name:         name,
		Dim:          1,
		EntityDofs:   ed,
		SubEntities:  []int{2, 1},
		NumDofs:      ndof,
		ValueSize:    1,
		RefCoords:    coords,
		FacetClosure: facetClosureTable(ed, topo, 0, len(facets)),
		FacetSupport: SupportDofsFromCoords(1, coords, facets, intervalVertexCoords),
	}
}

// TriangleP1 is the linear triangle layout: one dof per vertex.
func TriangleP1() *Layout {
	ed := layout.EntityDofs{
		0: {0: []int{0}, 1: []int{1}, 2: []int{2}},
		1: {0: []int{}, 1: []int{}, 2: []int{}},
		2: {0: []int{}},
	}
	coords := mat.NewDense(3, 2, []float64{
		-1, -1,
		1, -1,
		-1, 1,
	})
	return triangleLayout("P1T", ed, coords)
}

// TriangleP2 is the quadratic triangle layout: vertex dofs plus one dof
// per edge midpoint.
func TriangleP2() *Layout {
	ed := layout.EntityDofs{
		0: {0: []int{0}, 1: []int{1}, 2: []int{2}},
		1: {0: []int{3}, 1: []int{4}, 2: []int{5}},
		2: {0: []int{}},
	}
	coords := mat.NewDense(6, 2, []float64{
		-1, -1,
		1, -1,
		-1, 1,
		0, -1,
		0, 0,
		-1, 0,
	})
	return triangleLayout("P2T", ed, coords)
}

func triangleLayout(name string, ed layout.EntityDofs, coords *mat.Dense) *Layout {
	topo := map[int][][]int{
		0: {{0}, {1}, {2}},
		1: triangleEdges,
		2: {{0, 1, 2}},
	}
	ndof, _ := coords.Dims()
	return &Layout{
		name:         name,
		Dim:          2,
		EntityDofs:   ed,
		SubEntities:  []int{3, 3, 1},
		NumDofs:      ndof,
		ValueSize:    1,
		RefCoords:    coords,
		FacetClosure: facetClosureTable(ed, topo, 1, len(triangleEdges)),
		FacetSupport: SupportDofsFromCoords(2, coords, triangleEdges, triangleVertexCoords),
	}
}

func facetClosureTable(ed layout.EntityDofs, topo map[int][][]int, facetDim, nfacets int) [][]int {
	table := make([][]int, nfacets)
	for f := 0; f < nfacets; f++ {
		table[f] = closureDofs(ed, topo, facetDim, f)
	}
	return table
}
