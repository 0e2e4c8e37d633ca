// Package layout canonicalizes per-entity dof descriptions into cache keys.
//
// Two key granularities exist.  DofLayoutKey captures the exact dof ordering
// on every sub-entity and keys structures that depend on node ordering
// (entity node lists, map caches).  NodeCounts captures only the number of
// dofs per topological dimension and keys structures shared across all
// layouts with the same counts (global numbering, node sets).
package layout

import (
	"sort"
	"strconv"
	"strings"
)

// EntityDofs describes which dof indices sit on each sub-entity of the
// reference cell: dimension -> sub-entity index -> ordered dof indices.
// The dof order within a sub-entity is significant and is never re-sorted.
type EntityDofs map[int]map[int][]int

// DofLayoutKey is the canonical, comparable form of an EntityDofs table.
// Maps with the same semantic content produce equal keys regardless of the
// iteration order of the input.
type DofLayoutKey string

// Canonicalize builds the canonical key for entityDofs.  Dimensions are
// sorted ascending, sub-entities within a dimension are sorted ascending,
// and the dof tuple of each sub-entity is kept in its original order.
func Canonicalize(entityDofs EntityDofs) DofLayoutKey {
	dims := make([]int, 0, len(entityDofs))
	for d := range entityDofs {
		dims = append(dims, d)
	}
	sort.Ints(dims)

	var b strings.Builder
	for i, d := range dims {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strconv.Itoa(d))
		b.WriteByte(':')
		subs := make([]int, 0, len(entityDofs[d]))
		for s := range entityDofs[d] {
			subs = append(subs, s)
		}
		sort.Ints(subs)
		for j, s := range subs {
			if j > 0 {
				b.WriteByte(';')
			}
			b.WriteString(strconv.Itoa(s))
			b.WriteByte('=')
			for k, dof := range entityDofs[d][s] {
				if k > 0 {
					b.WriteByte(',')
				}
				b.WriteString(strconv.Itoa(dof))
			}
		}
	}
	return DofLayoutKey(b.String())
}

func (k DofLayoutKey) String() string { return string(k) }

// NodeCounts is the number of dofs carried by a single sub-entity of each
// topological dimension, indexed by dimension.  All sub-entities of one
// dimension carry the same count.
type NodeCounts []int

// CountNodes derives NodeCounts from entityDofs for a cell of the given
// topological dimension.  Dimensions absent from the table count zero.
func CountNodes(entityDofs EntityDofs, cellDim int) NodeCounts {
	counts := make(NodeCounts, cellDim+1)
	for d, subs := range entityDofs {
		for _, dofs := range subs {
			counts[d] = len(dofs)
			break
		}
	}
	return counts
}

// Key returns the comparable cache-key form of the counts.
func (n NodeCounts) Key() string {
	parts := make([]string, len(n))
	for i, c := range n {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}

// Total returns the number of dofs on one cell implied by the counts and
// the per-dimension sub-entity multiplicities of the reference cell.
func (n NodeCounts) Total(subEntities []int) int {
	total := 0
	for d, c := range n {
		if d < len(subEntities) {
			total += c * subEntities[d]
		}
	}
	return total
}
