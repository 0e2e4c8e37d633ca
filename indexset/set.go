package indexset

import (
	"fmt"
	"sort"

	"github.com/notargets/gocfd/utils"
)

// Halo records, per neighbor rank, which local slots are exported (locally
// owned, needed remotely) and which are imported (remotely owned copies).
// Send and receive index lists for a rank pair follow one canonical entity
// order on both sides, so the i-th exported value lands in the i-th
// imported slot of the peer.
type Halo struct {
	Comm        Communicator
	SendIndices map[int]utils.Index
	RecvIndices map[int]utils.Index
}

// Neighbors returns the peer ranks in ascending order.  Both directions of
// a pair use the same neighbor list, keeping the exchange symmetric.
func (h *Halo) Neighbors() []int {
	seen := make(map[int]struct{}, len(h.SendIndices)+len(h.RecvIndices))
	for r := range h.SendIndices {
		seen[r] = struct{}{}
	}
	for r := range h.RecvIndices {
		seen[r] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

// AbstractSet is the read surface common to plain and layered sets.
type AbstractSet interface {
	CoreSize() int
	OwnedSize() int
	TotalSize() int
	HaloInfo() *Halo
	Comm() Communicator
}

// Set is an index set partitioned into ownership classes.  Slots
// [0, core) are owned and not referenced remotely, [core, owned) are owned
// but shadowed on other ranks, and [owned, total) are halo copies of
// remotely owned slots.
type Set struct {
	core  int
	owned int
	total int
	halo  *Halo
	comm  Communicator
}

// NewSet builds a set with the given class sizes.  halo may be nil for
// sets that are never exchanged (facet sets).
func NewSet(core, owned, total int, comm Communicator, halo *Halo) (*Set, error) {
	if core < 0 || owned < core || total < owned {
		return nil, fmt.Errorf("indexset: invalid class sizes core=%d owned=%d total=%d", core, owned, total)
	}
	return &Set{core: core, owned: owned, total: total, comm: comm, halo: halo}, nil
}

func (s *Set) CoreSize() int      { return s.core }
func (s *Set) OwnedSize() int     { return s.owned }
func (s *Set) TotalSize() int     { return s.total }
func (s *Set) HaloInfo() *Halo    { return s.halo }
func (s *Set) Comm() Communicator { return s.comm }

// LayeredSet wraps a set with a fixed layer count.  The node sets of
// extruded meshes carry the fixed two-layer wrapping; the underlying slot
// numbering is unchanged.
type LayeredSet struct {
	*Set
	layers int
}

func NewLayeredSet(s *Set, layers int) (*LayeredSet, error) {
	if layers < 2 {
		return nil, fmt.Errorf("indexset: layered set needs at least 2 layers, got %d", layers)
	}
	return &LayeredSet{Set: s, layers: layers}, nil
}

func (s *LayeredSet) Layers() int { return s.layers }

// Base returns the wrapped plain set.
func (s *LayeredSet) Base() *Set { return s.Set }
