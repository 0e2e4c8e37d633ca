// Package spacedata builds and memoizes the structures shared between
// function spaces on one mesh: the global dof numbering, the distributed
// node set, the entity-to-node arrays, extrusion offsets and boundary
// masks, and the constrained entity maps consumed by assembly.
//
// Sharing is keyed at two granularities.  Numbering and node sets are
// keyed by nodes-per-entity counts, so any two layouts agreeing on counts
// share them.  Entity node lists and map caches depend on the exact dof
// ordering and are keyed by the canonical layout key.  Every structure is
// cached on the mesh and lives exactly as long as the mesh does.
package spacedata

import (
	"fmt"
	"strconv"

	"github.com/notargets/dofmap/element"
	"github.com/notargets/dofmap/indexset"
	"github.com/notargets/dofmap/layout"
	"github.com/notargets/dofmap/mesh"
	"github.com/notargets/gocfd/utils"
)

// MapCacheTable holds the constrained-map caches of one layout: one
// sub-cache per entity set keyed by canonical constraint key, plus the
// method-keyed cache of exterior-facet boundary-node maps.  Append-only.
// Never shared across layout keys, since encoded node values depend on
// the dof ordering.
type MapCacheTable struct {
	byEntitySet  map[*indexset.Set]map[string]*indexset.Map
	boundaryNode map[string]*indexset.Map
}

func newMapCacheTable(m mesh.Topology) *MapCacheTable {
	return &MapCacheTable{
		byEntitySet: map[*indexset.Set]map[string]*indexset.Map{
			m.CellSet():                     {},
			m.FacetSet(mesh.InteriorFacets): {},
			m.FacetSet(mesh.ExteriorFacets): {},
		},
		boundaryNode: map[string]*indexset.Map{},
	}
}

// SharedData aggregates everything function spaces with one dof layout
// share on a mesh.  Build it through GetSharedData; two calls with
// layout-equal elements return the identical instance.
type SharedData struct {
	mesh     mesh.Topology
	elem     *element.Layout
	key      layout.DofLayoutKey
	extruded bool

	GlobalNumbering *mesh.Section
	NodeSet         indexset.AbstractSet
	EntityNodeLists EntityNodeLists
	// Offsets is the per-dof vertical stride; nil on flat meshes.
	Offsets utils.Index
	// Masks holds the extruded facet-dof masks; nil on flat meshes.
	Masks *indexset.BoundaryMasks

	mapCaches *MapCacheTable
}

// GetSharedData returns the shared data for (m, el), building and caching
// it on first demand.  The memoization is keyed by the element's layout
// identity: elements sharing a node arrangement (a scalar layout and its
// vector widening) share one instance.
func GetSharedData(m mesh.Topology, el *element.Layout) (*SharedData, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil mesh topology", ErrConfiguration)
	}
	if el == nil {
		return nil, fmt.Errorf("%w: nil element layout", ErrConfiguration)
	}
	key := el.Key()
	v, err := m.Cache().GetOrCompute("shared_data", key.String(), func() (any, error) {
		return buildSharedData(m, el, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*SharedData), nil
}

func buildSharedData(m mesh.Topology, el *element.Layout, key layout.DofLayoutKey) (*SharedData, error) {
	counts := m.DofsPerEntity(el.EntityDofs)
	numbering, err := globalNumbering(m, counts)
	if err != nil {
		return nil, err
	}
	nset, err := nodeSet(m, counts)
	if err != nil {
		return nil, err
	}
	offsets, err := dofOffset(m, el)
	if err != nil {
		return nil, err
	}
	lists, err := entityNodeLists(m, el, numbering, offsets)
	if err != nil {
		return nil, err
	}
	masks, err := boundaryMasks(m, el)
	if err != nil {
		return nil, err
	}
	caches, err := m.Cache().GetOrCompute("map_caches", key.String(), func() (any, error) {
		return newMapCacheTable(m), nil
	})
	if err != nil {
		return nil, err
	}
	return &SharedData{
		mesh:            m,
		elem:            el,
		key:             key,
		extruded:        m.Extruded(),
		GlobalNumbering: numbering,
		NodeSet:         nset,
		EntityNodeLists: lists,
		Offsets:         offsets,
		Masks:           masks,
		mapCaches:       caches.(*MapCacheTable),
	}, nil
}

func (d *SharedData) Mesh() mesh.Topology      { return d.mesh }
func (d *SharedData) Key() layout.DofLayoutKey { return d.key }
func (d *SharedData) Extruded() bool           { return d.extruded }

// CellNodeList returns the cell-to-node array.
func (d *SharedData) CellNodeList() *NodeList {
	return d.EntityNodeLists[d.mesh.CellSet()]
}

// Equal is pointwise identity across every aggregated field.  Two spaces
// whose shared data compare equal may safely share assembly structures.
func (d *SharedData) Equal(o *SharedData) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.mesh == o.mesh &&
		d.GlobalNumbering == o.GlobalNumbering &&
		d.NodeSet == o.NodeSet &&
		sameLists(d.EntityNodeLists, o.EntityNodeLists) &&
		sameIndex(d.Offsets, o.Offsets) &&
		d.Masks == o.Masks &&
		d.mapCaches == o.mapCaches
}

func sameLists(a, b EntityNodeLists) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func sameIndex(a, b utils.Index) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return len(a) == len(b) && &a[0] == &b[0]
}

const defaultMaxWorkBuffers = 25

// MaxWorkBuffers returns the work-buffer pool limit shared by all spaces
// with V's layout on V's mesh.  Defaults to 25.
func MaxWorkBuffers(V *Space) int {
	v, ok := V.Data().mesh.Cache().Peek("max_work_buffers", workBufferKey(V))
	if !ok {
		return defaultMaxWorkBuffers
	}
	return v.(int)
}

// SetMaxWorkBuffers sets the work-buffer pool limit for V's layout.
func SetMaxWorkBuffers(V *Space, n int) {
	V.Data().mesh.Cache().Put("max_work_buffers", workBufferKey(V), n)
}

func workBufferKey(V *Space) string {
	return V.Data().key.String() + "#" + strconv.Itoa(V.ValueSize())
}
