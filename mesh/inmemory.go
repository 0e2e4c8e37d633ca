package mesh

import (
	"fmt"
	"sort"

	"github.com/notargets/dofmap/indexset"
	"github.com/notargets/dofmap/layout"
	"github.com/notargets/gocfd/utils"
)

// facet is one interior or exterior facet in local terms.  cells[1] is -1
// for exterior facets.  local holds the reference facet index within each
// adjacent cell.
type facet struct {
	global int
	cells  [2]int
	local  [2]int
	owner  int
	tag    int
}

// InMemory is a flat test topology.  Every rank holds the full entity
// tables with ownership sharded by contiguous cell blocks, so local entity
// indices enumerate owned entities first (ascending global id) followed by
// the remotely owned copies.  This keeps small meshes fully visible on all
// ranks while still exercising ownership classes and the halo exchange.
type InMemory struct {
	comm  indexset.Communicator
	cache *SharedCache
	dim   int

	nEntities     []int
	nOwned        []int
	localToGlobal [][]int
	globalToLocal []map[int]int
	ownerOf       [][]int

	// cellSubs[localCell][dim][k] is the local index of the cell's k-th
	// sub-entity of that dimension, in reference order.
	cellSubs [][][]int

	interior []facet
	exterior []facet

	cellSet *indexset.Set
	intSet  *indexset.Set
	extSet  *indexset.Set
}

func blockOwner(i, n, size int) int {
	owner := i * size / n
	if owner > size-1 {
		owner = size - 1
	}
	return owner
}

// NewInterval builds a 1-D mesh of ncells unit cells.  Cells are owned in
// contiguous blocks; a shared vertex belongs to the lower-ranked owner.
// The two endpoint vertices are the exterior facets, tagged 1 (left) and
// 2 (right); every internal vertex is an interior facet.
func NewInterval(comm indexset.Communicator, ncells int) (*InMemory, error) {
	if ncells < 1 {
		return nil, fmt.Errorf("mesh: interval needs at least one cell, got %d", ncells)
	}
	nv := ncells + 1
	size := comm.Size()

	cellOwner := make([]int, ncells)
	for c := range cellOwner {
		cellOwner[c] = blockOwner(c, ncells, size)
	}
	vertOwner := make([]int, nv)
	for v := range vertOwner {
		owner := size
		if v > 0 && cellOwner[v-1] < owner {
			owner = cellOwner[v-1]
		}
		if v < ncells && cellOwner[v] < owner {
			owner = cellOwner[v]
		}
		vertOwner[v] = owner
	}

	m := &InMemory{comm: comm, cache: NewSharedCache(), dim: 1}
	m.initEntities([][]int{vertOwner, cellOwner})

	m.cellSubs = make([][][]int, ncells)
	for lc := 0; lc < ncells; lc++ {
		g := m.localToGlobal[1][lc]
		m.cellSubs[lc] = [][]int{
			{m.globalToLocal[0][g], m.globalToLocal[0][g+1]},
			{lc},
		}
	}

	var interior, exterior []facet
	for v := 1; v < nv-1; v++ {
		interior = append(interior, facet{
			global: v,
			cells:  [2]int{m.globalToLocal[1][v-1], m.globalToLocal[1][v]},
			local:  [2]int{1, 0},
			owner:  cellOwner[v-1],
		})
	}
	exterior = append(exterior,
		facet{global: 0, cells: [2]int{m.globalToLocal[1][0], -1}, local: [2]int{0, -1}, owner: cellOwner[0], tag: 1},
		facet{global: nv - 1, cells: [2]int{m.globalToLocal[1][ncells-1], -1}, local: [2]int{1, -1}, owner: cellOwner[ncells-1], tag: 2},
	)
	if err := m.initFacets(interior, exterior); err != nil {
		return nil, err
	}
	return m, nil
}

// NewTriangleStrip builds a 2-D strip of ncells triangles, cell i with
// vertices (i, i+1, i+2).  Edges are derived from the reference edge
// order (v0,v1), (v1,v2), (v0,v2), matching the element facet tables.
// Exterior edges default to tag 1; use SetExteriorTags to override.
func NewTriangleStrip(comm indexset.Communicator, ncells int) (*InMemory, error) {
	if ncells < 1 {
		return nil, fmt.Errorf("mesh: triangle strip needs at least one cell, got %d", ncells)
	}
	nv := ncells + 2
	size := comm.Size()

	cellOwner := make([]int, ncells)
	for c := range cellOwner {
		cellOwner[c] = blockOwner(c, ncells, size)
	}

	refEdges := [][2]int{{0, 1}, {1, 2}, {0, 2}}
	type edgeInfo struct {
		cells [2]int
		local [2]int
		owner int
	}
	edgeID := make(map[[2]int]int)
	var edges []edgeInfo
	cellEdgeGlobals := make([][]int, ncells)
	for c := 0; c < ncells; c++ {
		verts := [3]int{c, c + 1, c + 2}
		cellEdgeGlobals[c] = make([]int, 3)
		for e, re := range refEdges {
			a, b := verts[re[0]], verts[re[1]]
			if a > b {
				a, b = b, a
			}
			key := [2]int{a, b}
			id, seen := edgeID[key]
			if !seen {
				id = len(edges)
				edgeID[key] = id
				edges = append(edges, edgeInfo{cells: [2]int{c, -1}, local: [2]int{e, -1}, owner: cellOwner[c]})
			} else {
				edges[id].cells[1] = c
				edges[id].local[1] = e
			}
			cellEdgeGlobals[c][e] = id
		}
	}

	vertOwner := make([]int, nv)
	for v := range vertOwner {
		vertOwner[v] = size
	}
	for c := 0; c < ncells; c++ {
		for _, v := range []int{c, c + 1, c + 2} {
			if cellOwner[c] < vertOwner[v] {
				vertOwner[v] = cellOwner[c]
			}
		}
	}
	edgeOwner := make([]int, len(edges))
	for e, info := range edges {
		edgeOwner[e] = info.owner
	}

	m := &InMemory{comm: comm, cache: NewSharedCache(), dim: 2}
	m.initEntities([][]int{vertOwner, edgeOwner, cellOwner})

	m.cellSubs = make([][][]int, ncells)
	for lc := 0; lc < ncells; lc++ {
		g := m.localToGlobal[2][lc]
		vs := []int{g, g + 1, g + 2}
		sub0 := make([]int, 3)
		for i, v := range vs {
			sub0[i] = m.globalToLocal[0][v]
		}
		sub1 := make([]int, 3)
		for e, id := range cellEdgeGlobals[g] {
			sub1[e] = m.globalToLocal[1][id]
		}
		m.cellSubs[lc] = [][]int{sub0, sub1, {lc}}
	}

	var interior, exterior []facet
	for id, info := range edges {
		f := facet{global: id, owner: info.owner}
		f.cells[0] = m.globalToLocal[2][info.cells[0]]
		f.local[0] = info.local[0]
		if info.cells[1] >= 0 {
			f.cells[1] = m.globalToLocal[2][info.cells[1]]
			f.local[1] = info.local[1]
			interior = append(interior, f)
		} else {
			f.cells[1] = -1
			f.local[1] = -1
			f.tag = 1
			exterior = append(exterior, f)
		}
	}
	if err := m.initFacets(interior, exterior); err != nil {
		return nil, err
	}
	return m, nil
}

// initEntities fills the per-dimension entity tables from global owner
// arrays, ordering each dimension owned-first.
func (m *InMemory) initEntities(owners [][]int) {
	rank := m.comm.Rank()
	ndim := len(owners)
	m.nEntities = make([]int, ndim)
	m.nOwned = make([]int, ndim)
	m.localToGlobal = make([][]int, ndim)
	m.globalToLocal = make([]map[int]int, ndim)
	m.ownerOf = owners
	for d := 0; d < ndim; d++ {
		n := len(owners[d])
		m.nEntities[d] = n
		ltg := make([]int, 0, n)
		for g := 0; g < n; g++ {
			if owners[d][g] == rank {
				ltg = append(ltg, g)
			}
		}
		m.nOwned[d] = len(ltg)
		for g := 0; g < n; g++ {
			if owners[d][g] != rank {
				ltg = append(ltg, g)
			}
		}
		gtl := make(map[int]int, n)
		for l, g := range ltg {
			gtl[g] = l
		}
		m.localToGlobal[d] = ltg
		m.globalToLocal[d] = gtl
	}
}

// initFacets orders facet lists owned-first (ascending global id within
// each class) and builds the entity sets.  Facet sets carry no halo.
func (m *InMemory) initFacets(interior, exterior []facet) error {
	rank := m.comm.Rank()
	order := func(fs []facet) ([]facet, int) {
		sorted := make([]facet, 0, len(fs))
		for _, f := range fs {
			if f.owner == rank {
				sorted = append(sorted, f)
			}
		}
		owned := len(sorted)
		for _, f := range fs {
			if f.owner != rank {
				sorted = append(sorted, f)
			}
		}
		return sorted, owned
	}
	var ownedInt, ownedExt int
	m.interior, ownedInt = order(interior)
	m.exterior, ownedExt = order(exterior)

	core := func(owned int) int {
		if m.comm.Size() == 1 {
			return owned
		}
		return 0
	}
	var err error
	ncells := m.nEntities[m.dim]
	if m.cellSet, err = indexset.NewSet(core(m.nOwned[m.dim]), m.nOwned[m.dim], ncells, m.comm, nil); err != nil {
		return err
	}
	if m.intSet, err = indexset.NewSet(core(ownedInt), ownedInt, len(m.interior), m.comm, nil); err != nil {
		return err
	}
	if m.extSet, err = indexset.NewSet(core(ownedExt), ownedExt, len(m.exterior), m.comm, nil); err != nil {
		return err
	}
	return nil
}

// SetExteriorTags assigns tags to exterior facets, indexed by ascending
// global facet id so the assignment is rank-independent.
func (m *InMemory) SetExteriorTags(tags []int) error {
	byGlobal := make([]*facet, 0, len(m.exterior))
	for i := range m.exterior {
		byGlobal = append(byGlobal, &m.exterior[i])
	}
	sort.Slice(byGlobal, func(i, j int) bool { return byGlobal[i].global < byGlobal[j].global })
	if len(tags) != len(byGlobal) {
		return fmt.Errorf("mesh: %d tags for %d exterior facets", len(tags), len(byGlobal))
	}
	for i, f := range byGlobal {
		f.tag = tags[i]
	}
	return nil
}

func (m *InMemory) Comm() indexset.Communicator { return m.comm }
func (m *InMemory) Cache() *SharedCache         { return m.cache }
func (m *InMemory) Dim() int                    { return m.dim }
func (m *InMemory) Extruded() bool              { return false }
func (m *InMemory) VariableLayers() bool        { return false }
func (m *InMemory) Layers() int                 { return 0 }

func (m *InMemory) DofsPerEntity(ed layout.EntityDofs) layout.NodeCounts {
	return layout.CountNodes(ed, m.dim)
}

func (m *InMemory) CreateSection(counts layout.NodeCounts) (*Section, error) {
	ndim := len(m.nEntities)
	if len(counts) != ndim {
		return nil, fmt.Errorf("mesh: %d node counts for %d dimensions", len(counts), ndim)
	}
	s := &Section{
		dofs:    make([][]int, ndim),
		offsets: make([][]int, ndim),
	}
	for d := 0; d < ndim; d++ {
		s.dofs[d] = make([]int, m.nEntities[d])
		s.offsets[d] = make([]int, m.nEntities[d])
		for e := range s.dofs[d] {
			s.dofs[d][e] = counts[d]
		}
	}
	// Owned entities first across all dimensions, then halo entities, so
	// node ownership classes are contiguous ranges of the numbering.
	off := 0
	for d := 0; d < ndim; d++ {
		for e := 0; e < m.nOwned[d]; e++ {
			s.offsets[d][e] = off
			off += counts[d]
		}
	}
	for d := 0; d < ndim; d++ {
		for e := m.nOwned[d]; e < m.nEntities[d]; e++ {
			s.offsets[d][e] = off
			off += counts[d]
		}
	}
	s.total = off
	return s, nil
}

func (m *InMemory) NodeOwnershipClasses(counts layout.NodeCounts) (core, owned, total int) {
	owned = counts.Total(m.nOwned)
	total = counts.Total(m.nEntities)
	if m.comm.Size() == 1 {
		core = owned
	}
	return core, owned, total
}

func (m *InMemory) NodeHalo(sec *Section) *indexset.Halo {
	size := m.comm.Size()
	if size == 1 {
		return nil
	}
	rank := m.comm.Rank()
	h := &indexset.Halo{
		Comm:        m.comm,
		SendIndices: make(map[int]utils.Index),
		RecvIndices: make(map[int]utils.Index),
	}
	// Canonical pair order: ascending (dimension, global id) of the
	// entities owned by the sending side.
	var send utils.Index
	for d := 0; d < len(m.nEntities); d++ {
		for l := 0; l < m.nOwned[d]; l++ {
			off := sec.Offset(d, l)
			for k := 0; k < sec.Dof(d, l); k++ {
				send = append(send, off+k)
			}
		}
	}
	for r := 0; r < size; r++ {
		if r == rank {
			continue
		}
		h.SendIndices[r] = send
		var recv utils.Index
		for d := 0; d < len(m.nEntities); d++ {
			for g := 0; g < m.nEntities[d]; g++ {
				if m.ownerOf[d][g] != r {
					continue
				}
				l := m.globalToLocal[d][g]
				off := sec.Offset(d, l)
				for k := 0; k < sec.Dof(d, l); k++ {
					recv = append(recv, off+k)
				}
			}
		}
		h.RecvIndices[r] = recv
	}
	return h
}

func (m *InMemory) CellSet() *indexset.Set { return m.cellSet }

func (m *InMemory) FacetSet(kind FacetKind) *indexset.Set {
	if kind == InteriorFacets {
		return m.intSet
	}
	return m.extSet
}

func (m *InMemory) HasFacets(kind FacetKind) bool {
	return m.FacetSet(kind).TotalSize() > 0
}

func (m *InMemory) MakeCellNodeList(sec *Section, ed layout.EntityDofs, ndof int) (utils.Index, error) {
	ncells := m.nEntities[m.dim]
	out := make(utils.Index, ncells*ndof)
	for i := range out {
		out[i] = -1
	}
	for lc := 0; lc < ncells; lc++ {
		row := out[lc*ndof : (lc+1)*ndof]
		for d := 0; d <= m.dim; d++ {
			subs, ok := ed[d]
			if !ok {
				continue
			}
			for k, le := range m.cellSubs[lc][d] {
				dofs := subs[k]
				off := sec.Offset(d, le)
				for i, dof := range dofs {
					row[dof] = off + i
				}
			}
		}
	}
	for i, v := range out {
		if v < 0 {
			return nil, fmt.Errorf("mesh: cell node list slot %d unassigned (dof table incomplete)", i)
		}
	}
	return out, nil
}

func (m *InMemory) MakeFacetNodeList(cellNodes utils.Index, cellArity int, kind FacetKind) (utils.Index, error) {
	facets := m.interior
	width := 2 * cellArity
	if kind == ExteriorFacets {
		facets = m.exterior
		width = cellArity
	}
	out := make(utils.Index, len(facets)*width)
	for i, f := range facets {
		row := out[i*width : (i+1)*width]
		copy(row, cellNodes[f.cells[0]*cellArity:(f.cells[0]+1)*cellArity])
		if kind == InteriorFacets {
			copy(row[cellArity:], cellNodes[f.cells[1]*cellArity:(f.cells[1]+1)*cellArity])
		}
	}
	return out, nil
}

func (m *InMemory) MakeDofOffset(ed layout.EntityDofs, ndof int) utils.Index {
	return nil
}

func (m *InMemory) FacetSubset(kind FacetKind, tag int) utils.Index {
	facets := m.interior
	if kind == ExteriorFacets {
		facets = m.exterior
	}
	var rows utils.Index
	for i, f := range facets {
		if f.tag == tag {
			rows = append(rows, i)
		}
	}
	return rows
}

func (m *InMemory) LocalFacetIndices() utils.Index {
	out := make(utils.Index, len(m.exterior))
	for i, f := range m.exterior {
		out[i] = f.local[0]
	}
	return out
}

func (m *InMemory) TopBottomBoundaryNodes(cellNodes utils.Index, cellArity int, mask *indexset.MapMask, offsets utils.Index, subdomain string) (utils.Index, error) {
	return nil, fmt.Errorf("mesh: top/bottom boundary nodes on a flat mesh")
}
