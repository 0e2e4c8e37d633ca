package mesh

import (
	"fmt"
	"sort"

	"github.com/notargets/dofmap/indexset"
	"github.com/notargets/dofmap/layout"
	"github.com/notargets/gocfd/utils"
)

// Extruded layers a base topology.  Columns are numbered per base entity:
// the section assigns each base entity its full column of nodes, cell-node
// rows address the bottom layer, and consumers advance through layers with
// the per-dof vertical stride.  Entity dof tables for extruded layouts
// carry each base sub-entity's bottom/top dof pair within one cell layer.
type Extruded struct {
	base *InMemory
	// layers counts vertex layers: layers-1 cell layers.
	layers    int
	varLayers []int // per base cell; nil for uniform meshes
	cache     *SharedCache
}

// NewExtruded builds a uniform-layer extrusion with the given number of
// vertex layers.
func NewExtruded(base *InMemory, layers int) (*Extruded, error) {
	if layers < 2 {
		return nil, fmt.Errorf("mesh: extrusion needs at least 2 vertex layers, got %d", layers)
	}
	return &Extruded{base: base, layers: layers, cache: NewSharedCache()}, nil
}

// NewExtrudedVariable builds a variable-layer extrusion with per-cell
// vertex layer counts (indexed by local cell).
func NewExtrudedVariable(base *InMemory, layers []int) (*Extruded, error) {
	ncells := base.CellSet().TotalSize()
	if len(layers) != ncells {
		return nil, fmt.Errorf("mesh: %d layer counts for %d cells", len(layers), ncells)
	}
	maxL := 0
	for c, l := range layers {
		if l < 2 {
			return nil, fmt.Errorf("mesh: cell %d has %d vertex layers, need at least 2", c, l)
		}
		if l > maxL {
			maxL = l
		}
	}
	v := make([]int, len(layers))
	copy(v, layers)
	return &Extruded{base: base, layers: maxL, varLayers: v, cache: NewSharedCache()}, nil
}

func (m *Extruded) Comm() indexset.Communicator { return m.base.comm }
func (m *Extruded) Cache() *SharedCache         { return m.cache }
func (m *Extruded) Dim() int                    { return m.base.dim + 1 }
func (m *Extruded) Extruded() bool              { return true }
func (m *Extruded) VariableLayers() bool        { return m.varLayers != nil }
func (m *Extruded) Layers() int                 { return m.layers }

// columnDofs converts one cell layer's dof pair count into the column
// total for L vertex layers: stride nodes per layer advance, plus the
// stride cap nodes of the final layer.
func columnDofs(perCell, layers int) int {
	stride := perCell / 2
	return stride*(layers-1) + (perCell - stride)
}

func (m *Extruded) DofsPerEntity(ed layout.EntityDofs) layout.NodeCounts {
	counts := make(layout.NodeCounts, m.base.dim+1)
	for d, subs := range ed {
		for _, dofs := range subs {
			counts[d] = columnDofs(len(dofs), m.layers)
			break
		}
	}
	return counts
}

func (m *Extruded) CreateSection(counts layout.NodeCounts) (*Section, error) {
	return m.base.CreateSection(counts)
}

func (m *Extruded) NodeOwnershipClasses(counts layout.NodeCounts) (core, owned, total int) {
	return m.base.NodeOwnershipClasses(counts)
}

func (m *Extruded) NodeHalo(sec *Section) *indexset.Halo {
	return m.base.NodeHalo(sec)
}

func (m *Extruded) CellSet() *indexset.Set                { return m.base.cellSet }
func (m *Extruded) FacetSet(kind FacetKind) *indexset.Set { return m.base.FacetSet(kind) }
func (m *Extruded) HasFacets(kind FacetKind) bool         { return m.base.HasFacets(kind) }

func (m *Extruded) MakeCellNodeList(sec *Section, ed layout.EntityDofs, ndof int) (utils.Index, error) {
	// The base routine already places each dof at its column offset: the
	// bottom/top pair of a base entity maps to the first two nodes of the
	// entity's column, which is exactly the bottom cell layer.
	return m.base.MakeCellNodeList(sec, ed, ndof)
}

func (m *Extruded) MakeFacetNodeList(cellNodes utils.Index, cellArity int, kind FacetKind) (utils.Index, error) {
	return m.base.MakeFacetNodeList(cellNodes, cellArity, kind)
}

func (m *Extruded) MakeDofOffset(ed layout.EntityDofs, ndof int) utils.Index {
	out := make(utils.Index, ndof)
	for _, subs := range ed {
		for _, dofs := range subs {
			stride := len(dofs) / 2
			for _, dof := range dofs {
				out[dof] = stride
			}
		}
	}
	return out
}

func (m *Extruded) FacetSubset(kind FacetKind, tag int) utils.Index {
	return m.base.FacetSubset(kind, tag)
}

func (m *Extruded) LocalFacetIndices() utils.Index {
	return m.base.LocalFacetIndices()
}

// TopBottomBoundaryNodes walks every local cell column and collects the
// masked dofs at the bottom layer, or at the top layer via the per-dof
// stride scaled by the column's cell-layer count minus one.
func (m *Extruded) TopBottomBoundaryNodes(cellNodes utils.Index, cellArity int, mask *indexset.MapMask, offsets utils.Index, subdomain string) (utils.Index, error) {
	if !m.VariableLayers() {
		return nil, fmt.Errorf("mesh: layer-aware boundary extraction is the variable-layer path")
	}
	pos := len(mask.FacetPoints) - 2
	if subdomain == "top" {
		pos = len(mask.FacetPoints) - 1
	}
	dofs := mask.Section(mask.FacetPoints[pos])

	seen := make(map[int]struct{})
	ncells := m.base.CellSet().TotalSize()
	for c := 0; c < ncells; c++ {
		row := cellNodes[c*cellArity : (c+1)*cellArity]
		for _, dof := range dofs {
			n := row[dof]
			if subdomain == "top" {
				n += offsets[dof] * (m.varLayers[c] - 2)
			}
			seen[n] = struct{}{}
		}
	}
	out := make(utils.Index, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}
