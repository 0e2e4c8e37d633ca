package spacedata

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/dofmap/element"
	"github.com/notargets/dofmap/indexset"
	"github.com/notargets/dofmap/mesh"
	"github.com/notargets/gocfd/utils"
)

func TestBoundaryNodesSerial(t *testing.T) {
	V, _ := intervalSpace(t, 3, "V")

	nodes, err := V.BoundaryNodes("on_boundary", "topological")
	require.NoError(t, err)
	assert.Equal(t, utils.Index{0, 3}, nodes)

	left, err := V.BoundaryNodes("1", "topological")
	require.NoError(t, err)
	assert.Equal(t, utils.Index{0}, left)

	right, err := V.BoundaryNodes("2", "topological")
	require.NoError(t, err)
	assert.Equal(t, utils.Index{3}, right)

	none, err := V.BoundaryNodes("7", "topological")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBoundaryNodesValidation(t *testing.T) {
	V, _ := intervalSpace(t, 3, "V")

	_, err := V.BoundaryNodes("on_boundary", "magic")
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = V.BoundaryNodes("top", "topological")
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = V.BoundaryNodes("left", "topological")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestBoundaryNodesGeometric(t *testing.T) {
	// DG dofs sit on the cell interior: the facet closure is empty, but
	// the dof coordinates lie on the endpoints, so the geometric method
	// still finds them.
	m, err := mesh.NewInterval(indexset.SelfComm{}, 3)
	require.NoError(t, err)
	V, err := NewSpace(m, element.IntervalDG1(), "V")
	require.NoError(t, err)

	topo, err := V.BoundaryNodes("on_boundary", "topological")
	require.NoError(t, err)
	assert.Empty(t, topo)

	geom, err := V.BoundaryNodes("on_boundary", "geometric")
	require.NoError(t, err)
	assert.Equal(t, utils.Index{0, 5}, geom)
}

// Three cells over two ranks: rank 0 owns cells 0 and 1, rank 1 owns
// cell 2.  Both ranks must agree on boundary membership after the
// exchange, each in its own local numbering.
func TestBoundaryNodesTwoRanks(t *testing.T) {
	comms := indexset.NewLocalGroup(2)

	var wg sync.WaitGroup
	results := make([]utils.Index, 2)
	errs := make([]error, 2)
	for r := 0; r < 2; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			m, err := mesh.NewInterval(comms[r], 3)
			if err != nil {
				errs[r] = err
				return
			}
			V, err := NewSpace(m, element.IntervalP1(), "V")
			if err != nil {
				errs[r] = err
				return
			}
			results[r], errs[r] = V.BoundaryNodes("on_boundary", "topological")
		}(r)
	}
	wg.Wait()
	for r, err := range errs {
		require.NoError(t, err, "rank %d", r)
	}

	// Rank 0 numbers its owned vertices 0..2 and the ghost endpoint 3;
	// rank 1 numbers its owned endpoint 0 and the ghosts 1..3.
	assert.Equal(t, utils.Index{0, 3}, results[0])
	assert.Equal(t, utils.Index{0, 1}, results[1])
}

func TestTopBottomBoundaryNodes(t *testing.T) {
	V, _ := extrudedSpace(t)

	bottom, err := V.BoundaryNodes("bottom", "topological")
	require.NoError(t, err)
	assert.Equal(t, utils.Index{0, 3, 6}, bottom)

	top, err := V.BoundaryNodes("top", "topological")
	require.NoError(t, err)
	assert.Equal(t, utils.Index{2, 5, 8}, top)
}

func TestTopBottomVariableLayers(t *testing.T) {
	base, err := mesh.NewInterval(indexset.SelfComm{}, 2)
	require.NoError(t, err)
	ext, err := mesh.NewExtrudedVariable(base, []int{3, 3})
	require.NoError(t, err)
	V, err := NewSpace(ext, element.ExtrudedQuadP1(), "W")
	require.NoError(t, err)

	bottom, err := V.BoundaryNodes("bottom", "topological")
	require.NoError(t, err)
	assert.Equal(t, utils.Index{0, 3, 6}, bottom)

	top, err := V.BoundaryNodes("top", "topological")
	require.NoError(t, err)
	assert.Equal(t, utils.Index{2, 5, 8}, top)

	_, err = V.BoundaryNodes("top", "geometric")
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestVerticalFacetBoundaryNodes(t *testing.T) {
	V, _ := extrudedSpace(t)

	// Tag 1 is the left vertical facet; its boundary spans the whole
	// column, nodes 0..2.
	nodes, err := V.BoundaryNodes("1", "topological")
	require.NoError(t, err)
	assert.Equal(t, utils.Index{0, 1, 2}, nodes)
}

func TestExteriorFacetBoundaryNodeMap(t *testing.T) {
	V, _ := intervalSpace(t, 3, "V")
	d := V.Data()

	m1, err := d.ExteriorFacetBoundaryNodeMap(V, "topological")
	require.NoError(t, err)
	assert.Equal(t, 1, m1.Arity())
	assert.Equal(t, utils.Index{0, 3}, m1.ValuesWithHalo())
	assert.Equal(t, "V_boundary_node", m1.Name())

	// Method-keyed cache.
	m2, err := d.ExteriorFacetBoundaryNodeMap(V, "topological")
	require.NoError(t, err)
	require.Same(t, m1, m2)

	m3, err := d.ExteriorFacetBoundaryNodeMap(V, "geometric")
	require.NoError(t, err)
	require.NotSame(t, m1, m3)
	assert.Equal(t, utils.Index{0, 3}, m3.ValuesWithHalo())
}
