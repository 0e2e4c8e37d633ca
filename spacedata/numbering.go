package spacedata

import (
	"fmt"

	"github.com/notargets/dofmap/indexset"
	"github.com/notargets/dofmap/layout"
	"github.com/notargets/dofmap/mesh"
)

// IndexBits is the width of the integer type map values are encoded in.
// The constraint encoding of GetMap claims the sign bit plus up to three
// component bits, and the node-set size check reserves a fourth bit of
// headroom below them.
const IndexBits = 32

// globalNumbering memoizes the section mapping mesh entities to node
// ranges.  Keyed by per-dimension node counts only: every layout with the
// same counts shares one numbering instance.
func globalNumbering(m mesh.Topology, counts layout.NodeCounts) (*mesh.Section, error) {
	v, err := m.Cache().GetOrCompute("global_numbering", counts.Key(), func() (any, error) {
		return m.CreateSection(counts)
	})
	if err != nil {
		return nil, err
	}
	return v.(*mesh.Section), nil
}

// nodeSet memoizes the distributed node index set for the given counts.
// On extruded meshes the set is wrapped with the fixed two-layer shim.
func nodeSet(m mesh.Topology, counts layout.NodeCounts) (indexset.AbstractSet, error) {
	v, err := m.Cache().GetOrCompute("node_set", counts.Key(), func() (any, error) {
		numbering, err := globalNumbering(m, counts)
		if err != nil {
			return nil, err
		}
		core, owned, total := m.NodeOwnershipClasses(counts)
		if numbering.TotalSize() != total {
			return nil, fmt.Errorf("spacedata: numbering size %d != node set size %d",
				numbering.TotalSize(), total)
		}
		set, err := indexset.NewSet(core, owned, total, m.Comm(), m.NodeHalo(numbering))
		if err != nil {
			return nil, err
		}
		if m.Extruded() {
			return indexset.NewLayeredSet(set, 2)
		}
		if total >= 1<<(IndexBits-4) {
			return nil, fmt.Errorf("%w: %d local nodes, limit %d reserved for constraint encoding",
				ErrResourceLimit, total, 1<<(IndexBits-4))
		}
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(indexset.AbstractSet), nil
}
