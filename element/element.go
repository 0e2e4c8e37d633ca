// Package element describes how the dofs of a finite-element layout attach
// to the sub-entities of a reference cell.  A Layout carries the per-entity
// dof tables the dof-map machinery consumes: the raw entity dofs, the
// per-facet closure and support dofs, and the reference coordinates of the
// dofs used to classify support membership geometrically.
package element

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/dofmap/layout"
	"gonum.org/v1/gonum/mat"
)

// Layout is a dof layout on a reference cell.  Scalar and vector layouts
// built from the same node arrangement share the EntityDofs tables (and
// therefore the canonical key), differing only in ValueSize.
type Layout struct {
	name string

	// Dim is the topological dimension of the cell.
	Dim int

	// EntityDofs maps dimension -> sub-entity -> ordered dof indices.
	// For layered (extruded) layouts the dimensions are those of the base
	// cell, each base sub-entity carrying the dofs of its vertical column
	// within one cell layer.
	EntityDofs layout.EntityDofs

	// SubEntities counts the sub-entities of each dimension.
	SubEntities []int

	NumDofs   int
	ValueSize int

	// RefCoords holds the reference coordinate of each dof, NumDofs rows.
	RefCoords *mat.Dense

	// FacetClosure and FacetSupport list, per reference exterior facet,
	// the local dofs in the facet's topological closure and in its
	// support.  FacetSupport is nil when support dofs are undefined.
	FacetClosure [][]int
	FacetSupport [][]int

	// Layered layouts only.
	Layered        bool
	MaskEntities   []MaskEntity
	VerticalStride []int
}

// MaskEntity is one non-cell sub-entity of a layered reference cell, in
// mask iteration order: ascending topological dimension, then ascending
// sub-entity key, with the horizontal bottom and top facets as the final
// two facet-dimension entries.
type MaskEntity struct {
	Dim     int
	Closure []int
	Support []int // nil when undefined
	Facet   bool
}

func (l *Layout) Name() string { return l.name }

// Key returns the canonical layout key (exact dof ordering).
func (l *Layout) Key() layout.DofLayoutKey { return layout.Canonicalize(l.EntityDofs) }

// Vector returns a layout sharing base's node arrangement with width dofs
// per node.  The shared tables keep the canonical key identical, so vector
// and scalar spaces share numbering, node sets and entity node lists.
func Vector(base *Layout, width int) (*Layout, error) {
	if width < 1 {
		return nil, fmt.Errorf("element: vector width must be positive, got %d", width)
	}
	v := *base
	v.name = fmt.Sprintf("%s^%d", base.name, width)
	v.ValueSize = width
	return &v, nil
}

const coordTol = 1e-12

// SupportDofsFromCoords classifies each dof against each facet of a
// simplex reference cell: a dof supports a facet when its reference
// coordinate lies on the facet.  Returns nil for cells of dimension
// greater than 3, where this generic computation is undefined.
func SupportDofsFromCoords(dim int, coords *mat.Dense, facetVertices [][]int, vertexCoords *mat.Dense) [][]int {
	if dim > 3 {
		return nil
	}
	ndof, _ := coords.Dims()
	support := make([][]int, len(facetVertices))
	for f, verts := range facetVertices {
		dofs := []int{}
		for i := 0; i < ndof; i++ {
			if onFacet(dim, coords.RawRowView(i), verts, vertexCoords) {
				dofs = append(dofs, i)
			}
		}
		sort.Ints(dofs)
		support[f] = dofs
	}
	return support
}

// onFacet tests point p against the affine hull of the facet's vertices,
// restricted to the facet itself via the segment parameter in 2D.
func onFacet(dim int, p []float64, verts []int, vertexCoords *mat.Dense) bool {
	switch dim {
	case 1:
		v := vertexCoords.RawRowView(verts[0])
		return math.Abs(p[0]-v[0]) < coordTol
	case 2:
		a := vertexCoords.RawRowView(verts[0])
		b := vertexCoords.RawRowView(verts[1])
		cross := (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
		if math.Abs(cross) > coordTol {
			return false
		}
		t := segmentParam(a, b, p)
		return t > -coordTol && t < 1+coordTol
	case 3:
		a := vertexCoords.RawRowView(verts[0])
		b := vertexCoords.RawRowView(verts[1])
		c := vertexCoords.RawRowView(verts[2])
		n := [3]float64{
			(b[1]-a[1])*(c[2]-a[2]) - (b[2]-a[2])*(c[1]-a[1]),
			(b[2]-a[2])*(c[0]-a[0]) - (b[0]-a[0])*(c[2]-a[2]),
			(b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0]),
		}
		d := n[0]*(p[0]-a[0]) + n[1]*(p[1]-a[1]) + n[2]*(p[2]-a[2])
		return math.Abs(d) < coordTol
	}
	return false
}

func segmentParam(a, b, p []float64) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	den := dx*dx + dy*dy
	if den == 0 {
		return 0
	}
	return ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / den
}

// closureDofs collects the dofs of sub-entity (dim, sub) and of every
// lower-dimensional sub-entity contained in it, sorted ascending.
// topology lists, per dimension, the vertex ids of each sub-entity.
func closureDofs(ed layout.EntityDofs, topology map[int][][]int, dim, sub int) []int {
	target := topology[dim][sub]
	inTarget := func(vs []int) bool {
		for _, v := range vs {
			found := false
			for _, tv := range target {
				if v == tv {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}
	dofs := []int{}
	for d := 0; d <= dim; d++ {
		for s, vs := range topology[d] {
			if inTarget(vs) {
				dofs = append(dofs, ed[d][s]...)
			}
		}
	}
	sort.Ints(dofs)
	return dofs
}
