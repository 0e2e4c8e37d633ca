package indexset

import (
	"sync"
	"testing"

	"github.com/notargets/gocfd/utils"
	"github.com/stretchr/testify/require"
)

func TestNewSetValidatesClassSizes(t *testing.T) {
	if _, err := NewSet(2, 1, 3, SelfComm{}, nil); err == nil {
		t.Fatal("expected error for owned < core")
	}
	if _, err := NewSet(0, 2, 1, SelfComm{}, nil); err == nil {
		t.Fatal("expected error for total < owned")
	}
	s, err := NewSet(1, 2, 3, SelfComm{}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, s.CoreSize())
	require.Equal(t, 2, s.OwnedSize())
	require.Equal(t, 3, s.TotalSize())
}

func TestLayeredSetWrapsBase(t *testing.T) {
	s, err := NewSet(0, 4, 4, SelfComm{}, nil)
	require.NoError(t, err)
	ls, err := NewLayeredSet(s, 2)
	require.NoError(t, err)
	require.Equal(t, 2, ls.Layers())
	require.Same(t, s, ls.Base())
	require.Equal(t, s.TotalSize(), ls.TotalSize())

	if _, err := NewLayeredSet(s, 1); err == nil {
		t.Fatal("expected error for fewer than 2 layers")
	}
}

func TestMapValuesHaloSplit(t *testing.T) {
	from, err := NewSet(0, 2, 3, SelfComm{}, nil)
	require.NoError(t, err)
	to, err := NewSet(0, 6, 6, SelfComm{}, nil)
	require.NoError(t, err)

	values := utils.Index{0, 1, 2, 3, 4, 5}
	m, err := NewMap(from, to, 2, values, "cell_node")
	require.NoError(t, err)
	require.Equal(t, utils.Index{0, 1, 2, 3}, m.Values())
	require.Equal(t, values, m.ValuesWithHalo())
	require.Equal(t, utils.Index{4, 5}, m.Row(2))

	// Shape mismatch is rejected.
	if _, err := NewMap(from, to, 2, values[:4], "bad"); err == nil {
		t.Fatal("expected shape error")
	}
}

func TestAnnotatedMapSharesStorage(t *testing.T) {
	from, _ := NewSet(0, 1, 1, SelfComm{}, nil)
	to, _ := NewSet(0, 2, 2, SelfComm{}, nil)
	m, err := NewMap(from, to, 2, utils.Index{0, 1}, "m")
	require.NoError(t, err)

	w := WithImplicitConstraints(m, []ImplicitConstraint{{Subdomain: "top", Method: "topological"}})
	require.Same(t, m, w.Underlying())
	// Same backing array, not a copy.
	m.ValuesWithHalo()[0] = 7
	require.Equal(t, 7, w.ValuesWithHalo()[0])
}

// twoRankSets builds the local views of a 3-slot global vector split
// across 2 ranks: rank 0 owns globals {0,1}, rank 1 owns global {2}.
// Local order on each rank is owned-first, globals ascending.
func twoRankSets(t *testing.T, comms []Communicator) [2]*Set {
	t.Helper()
	h0 := &Halo{
		Comm:        comms[0],
		SendIndices: map[int]utils.Index{1: {0, 1}},
		RecvIndices: map[int]utils.Index{1: {2}},
	}
	s0, err := NewSet(0, 2, 3, comms[0], h0)
	require.NoError(t, err)
	h1 := &Halo{
		Comm:        comms[1],
		SendIndices: map[int]utils.Index{0: {0}},
		RecvIndices: map[int]utils.Index{0: {1, 2}},
	}
	s1, err := NewSet(0, 1, 3, comms[1], h1)
	require.NoError(t, err)
	return [2]*Set{s0, s1}
}

func TestIntVectorExchangeCombinesMax(t *testing.T) {
	comms := NewLocalGroup(2)
	sets := twoRankSets(t, comms)

	results := make([][]int, 2)
	var wg sync.WaitGroup
	for rank := 0; rank < 2; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			v := NewIntVector(sets[rank])
			if rank == 0 {
				v.Mark([]int{0}, 1) // global 0
			} else {
				v.Mark([]int{0}, 1) // global 2
			}
			v.ExchangeBegin()
			if err := v.ExchangeEnd(); err != nil {
				t.Errorf("rank %d: %v", rank, err)
				return
			}
			results[rank] = v.Where(1)
		}(rank)
	}
	wg.Wait()

	// Rank 0 locals: [g0, g1, g2] -> marked g0 plus received g2.
	require.Equal(t, []int{0, 2}, results[0])
	// Rank 1 locals: [g2, g0, g1] -> marked g2 plus received g0.
	require.Equal(t, []int{0, 1}, results[1])
}

func TestIntVectorExchangeEndWithoutBegin(t *testing.T) {
	s, _ := NewSet(0, 1, 1, SelfComm{}, nil)
	v := NewIntVector(s)
	if err := v.ExchangeEnd(); err == nil {
		t.Fatal("expected error for unmatched ExchangeEnd")
	}
}

func TestMapMaskSection(t *testing.T) {
	m := &MapMask{
		Counts:      utils.Index{2, 1, 2},
		Offsets:     utils.Index{0, 2, 3},
		Indices:     utils.Index{0, 1, 2, 0, 2},
		FacetPoints: utils.Index{1, 2},
	}
	require.Equal(t, utils.Index{0, 1}, m.Section(0))
	require.Equal(t, utils.Index{2}, m.Section(1))
	require.Equal(t, utils.Index{0, 2}, m.Section(2))

	b := &BoundaryMasks{Topological: m}
	require.Same(t, m, b.ByMethod("topological"))
	require.Nil(t, b.ByMethod("geometric"))
}
