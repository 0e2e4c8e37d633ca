package spacedata

import (
	"fmt"

	"github.com/notargets/dofmap/element"
	"github.com/notargets/dofmap/indexset"
	"github.com/notargets/dofmap/mesh"
	"github.com/notargets/gocfd/utils"
)

// dofOffset memoizes the per-dof vertical stride; nil on flat meshes.
// Layouts that declare their own stride take precedence over the
// column-derived default.
func dofOffset(m mesh.Topology, el *element.Layout) (utils.Index, error) {
	v, err := m.Cache().GetOrCompute("dof_offset", el.Key().String(), func() (any, error) {
		if m.Extruded() && el.Layered && el.VerticalStride != nil {
			out := make(utils.Index, len(el.VerticalStride))
			copy(out, el.VerticalStride)
			return out, nil
		}
		return m.MakeDofOffset(el.EntityDofs, el.NumDofs), nil
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(utils.Index), nil
}

// boundaryMasks memoizes the facet-dof masks of an extruded layout: one
// CSR-style section over every non-cell sub-entity per method, plus the
// chart positions of the facet-dimension sub-entities.  Nil for flat
// meshes.  The geometric mask is absent when support dofs are undefined.
func boundaryMasks(m mesh.Topology, el *element.Layout) (*indexset.BoundaryMasks, error) {
	if !m.Extruded() {
		return nil, nil
	}
	v, err := m.Cache().GetOrCompute("boundary_masks", el.Key().String(), func() (any, error) {
		if !el.Layered {
			return nil, fmt.Errorf("%w: layout %s is not layered but mesh is extruded",
				ErrConfiguration, el.Name())
		}
		closure := newMaskAccumulator()
		support := newMaskAccumulator()
		haveSupport := true
		var facetPoints utils.Index
		for p, ent := range el.MaskEntities {
			closure.add(ent.Closure)
			if ent.Support == nil {
				haveSupport = false
			} else if haveSupport {
				support.add(ent.Support)
			}
			if ent.Facet {
				facetPoints = append(facetPoints, p)
			}
		}
		masks := &indexset.BoundaryMasks{Topological: closure.finish(facetPoints)}
		if haveSupport {
			masks.Geometric = support.finish(facetPoints)
		}
		return masks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*indexset.BoundaryMasks), nil
}

type maskAccumulator struct {
	counts  utils.Index
	offsets utils.Index
	indices utils.Index
}

func newMaskAccumulator() *maskAccumulator {
	return &maskAccumulator{counts: utils.Index{}, offsets: utils.Index{}, indices: utils.Index{}}
}

func (a *maskAccumulator) add(dofs []int) {
	a.offsets = append(a.offsets, len(a.indices))
	a.counts = append(a.counts, len(dofs))
	a.indices = append(a.indices, dofs...)
}

func (a *maskAccumulator) finish(facetPoints utils.Index) *indexset.MapMask {
	return &indexset.MapMask{
		Counts:      a.counts,
		Offsets:     a.offsets,
		Indices:     a.indices,
		FacetPoints: facetPoints,
	}
}
