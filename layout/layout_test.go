package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCanonicalizeOrderIndependence verifies that the key does not depend
// on the construction order of the input maps.
func TestCanonicalizeOrderIndependence(t *testing.T) {
	a := EntityDofs{
		0: {0: []int{0}, 1: []int{1}, 2: []int{2}},
		1: {0: []int{3}, 1: []int{4}, 2: []int{5}},
		2: {0: []int{}},
	}
	// Same content, inserted in a different order.
	b := make(EntityDofs)
	b[2] = map[int][]int{0: {}}
	b[0] = map[int][]int{2: {2}, 0: {0}, 1: {1}}
	b[1] = map[int][]int{1: {4}, 2: {5}, 0: {3}}

	require.Equal(t, Canonicalize(a), Canonicalize(b))
}

// TestCanonicalizePreservesDofOrder verifies that dof order within a
// sub-entity is part of the key: two layouts with the same dof sets but
// different ordering must not collide.
func TestCanonicalizePreservesDofOrder(t *testing.T) {
	a := EntityDofs{0: {0: []int{0, 1}}}
	b := EntityDofs{0: {0: []int{1, 0}}}
	if Canonicalize(a) == Canonicalize(b) {
		t.Fatalf("keys collide for differently ordered dofs: %q", Canonicalize(a))
	}
}

func TestCanonicalizeDistinguishesDimensions(t *testing.T) {
	a := EntityDofs{0: {0: []int{0}}, 1: {0: []int{1}}}
	b := EntityDofs{0: {0: []int{0}, 1: []int{1}}}
	if Canonicalize(a) == Canonicalize(b) {
		t.Fatal("keys collide across dimension structure")
	}
}

func TestCountNodes(t *testing.T) {
	// Triangle P2: one dof per vertex, one per edge, none interior.
	ed := EntityDofs{
		0: {0: []int{0}, 1: []int{1}, 2: []int{2}},
		1: {0: []int{3}, 1: []int{4}, 2: []int{5}},
		2: {0: []int{}},
	}
	counts := CountNodes(ed, 2)
	require.Equal(t, NodeCounts{1, 1, 0}, counts)
	require.Equal(t, "1,1,0", counts.Key())
	// 3 vertices, 3 edges, 1 cell.
	require.Equal(t, 6, counts.Total([]int{3, 3, 1}))
}

func TestNodeCountsKeyCoarserThanLayoutKey(t *testing.T) {
	// Two layouts with identical counts but different dof ordering share a
	// NodeCounts key while having distinct layout keys.
	a := EntityDofs{0: {0: []int{0, 1}, 1: []int{2, 3}}}
	b := EntityDofs{0: {0: []int{1, 0}, 1: []int{3, 2}}}
	require.Equal(t, CountNodes(a, 1).Key(), CountNodes(b, 1).Key())
	require.NotEqual(t, Canonicalize(a), Canonicalize(b))
}
