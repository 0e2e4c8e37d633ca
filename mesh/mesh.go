// Package mesh defines the topology collaborator consumed by the shared
// dof-layout machinery, together with an in-memory implementation used by
// tests and tooling.  A topology owns the per-mesh shared-data cache; all
// memoized dof structures live for exactly as long as their mesh.
package mesh

import (
	"log/slog"

	"github.com/notargets/dofmap/indexset"
	"github.com/notargets/dofmap/layout"
	"github.com/notargets/gocfd/utils"
)

// FacetKind selects one of the two facet classes of a topology.
type FacetKind string

const (
	InteriorFacets FacetKind = "interior_facets"
	ExteriorFacets FacetKind = "exterior_facets"
)

// Topology is the mesh surface the dof-map machinery builds on.  Entity
// ordering contract: every per-dimension entity list and every facet list
// is ordered owned-first, and the section numbering places all owned
// entities before all halo entities.
type Topology interface {
	Comm() indexset.Communicator
	Cache() *SharedCache

	Dim() int
	Extruded() bool
	VariableLayers() bool
	// Layers is the number of vertex layers; zero for flat meshes.
	Layers() int

	// DofsPerEntity maps a dof table to the per-dimension node counts the
	// numbering is keyed on.  On extruded meshes these are column totals.
	DofsPerEntity(ed layout.EntityDofs) layout.NodeCounts

	CreateSection(counts layout.NodeCounts) (*Section, error)
	NodeOwnershipClasses(counts layout.NodeCounts) (core, owned, total int)
	// NodeHalo derives the node-level exchange plan from the numbering.
	NodeHalo(sec *Section) *indexset.Halo

	CellSet() *indexset.Set
	FacetSet(kind FacetKind) *indexset.Set
	HasFacets(kind FacetKind) bool

	// MakeCellNodeList builds the cell-to-node array (row-major, ndof
	// entries per local cell, halo cells included).
	MakeCellNodeList(sec *Section, ed layout.EntityDofs, ndof int) (utils.Index, error)
	// MakeFacetNodeList derives facet rows from the cell rows: the
	// adjacent cell's nodes for exterior facets, both cells' nodes for
	// interior facets.
	MakeFacetNodeList(cellNodes utils.Index, cellArity int, kind FacetKind) (utils.Index, error)
	// MakeDofOffset returns the per-dof vertical stride, nil on flat
	// meshes.
	MakeDofOffset(ed layout.EntityDofs, ndof int) utils.Index

	// FacetSubset returns the facet rows carrying the given tag.
	FacetSubset(kind FacetKind, tag int) utils.Index
	// LocalFacetIndices returns, per exterior facet row, the reference
	// facet index within its adjacent cell.
	LocalFacetIndices() utils.Index

	// TopBottomBoundaryNodes is the variable-layer delegate for top and
	// bottom boundary extraction.
	TopBottomBoundaryNodes(cellNodes utils.Index, cellArity int, mask *indexset.MapMask, offsets utils.Index, subdomain string) (utils.Index, error)
}

// Section assigns each mesh entity's dofs a contiguous index range.  The
// total storage size equals the local node count including halo nodes.
type Section struct {
	dofs    [][]int
	offsets [][]int
	total   int
}

func (s *Section) Dof(dim, entity int) int    { return s.dofs[dim][entity] }
func (s *Section) Offset(dim, entity int) int { return s.offsets[dim][entity] }
func (s *Section) TotalSize() int             { return s.total }

// SharedCache is the per-mesh memoization store: one named sub-table per
// builder, get-or-compute semantics, no eviction.  It is not synchronized;
// population is append-only and redundant recomputation of the same key
// always produces a value-equal result.
type SharedCache struct {
	tables map[string]map[string]any
}

func NewSharedCache() *SharedCache {
	return &SharedCache{tables: make(map[string]map[string]any)}
}

// GetOrCompute returns the cached value for (table, key), invoking build
// and storing its result on a miss.
func (c *SharedCache) GetOrCompute(table, key string, build func() (any, error)) (any, error) {
	t, ok := c.tables[table]
	if !ok {
		t = make(map[string]any)
		c.tables[table] = t
	}
	if v, ok := t[key]; ok {
		return v, nil
	}
	slog.Debug("shared cache miss", "table", table, "key", key)
	v, err := build()
	if err != nil {
		return nil, err
	}
	t[key] = v
	return v, nil
}

// Put stores v at (table, key) unconditionally.
func (c *SharedCache) Put(table, key string, v any) {
	t, ok := c.tables[table]
	if !ok {
		t = make(map[string]any)
		c.tables[table] = t
	}
	t[key] = v
}

// Peek reports whether (table, key) is populated, without computing.
func (c *SharedCache) Peek(table, key string) (any, bool) {
	t, ok := c.tables[table]
	if !ok {
		return nil, false
	}
	v, ok := t[key]
	return v, ok
}
