// Package indexset provides the distributed index-set, map and record
// primitives used by the shared dof-layout machinery: sets with halo
// regions, entity-to-node maps, and integer records supporting a two-phase
// halo exchange.  Parallelism is across ranks, each owning a shard of
// entities; ranks are single-threaded and communicate only through the
// collective exchange.
package indexset

import "fmt"

// Communicator carries point-to-point transfers between the ranks sharing
// a mesh.  Send is non-blocking (the payload is buffered), Recv blocks
// until the matching Send from the peer has been posted.  Exchanges built
// on top of this pair are collective: every rank must participate in
// matching order or the program deadlocks.  There is no timeout.
type Communicator interface {
	Rank() int
	Size() int
	Send(to int, payload []int32)
	Recv(from int) []int32
}

// SelfComm is the single-rank communicator.  Send and Recv are never
// reached because a one-rank set has no neighbors.
type SelfComm struct{}

func (SelfComm) Rank() int { return 0 }
func (SelfComm) Size() int { return 1 }

func (SelfComm) Send(to int, payload []int32) {
	panic(fmt.Sprintf("indexset: SelfComm.Send to rank %d", to))
}

func (SelfComm) Recv(from int) []int32 {
	panic(fmt.Sprintf("indexset: SelfComm.Recv from rank %d", from))
}

// LocalGroup connects n in-process ranks, one goroutine per rank, over
// buffered channels.  Each directed pair has capacity one, so a full
// exchange round (every rank sends before any rank receives) cannot
// deadlock as long as all ranks participate.
type LocalGroup struct {
	size  int
	pipes [][]chan []int32
}

// NewLocalGroup returns one communicator handle per rank.
func NewLocalGroup(n int) []Communicator {
	g := &LocalGroup{size: n, pipes: make([][]chan []int32, n)}
	for i := range g.pipes {
		g.pipes[i] = make([]chan []int32, n)
		for j := range g.pipes[i] {
			g.pipes[i][j] = make(chan []int32, 1)
		}
	}
	comms := make([]Communicator, n)
	for r := 0; r < n; r++ {
		comms[r] = &groupRank{group: g, rank: r}
	}
	return comms
}

type groupRank struct {
	group *LocalGroup
	rank  int
}

func (c *groupRank) Rank() int { return c.rank }
func (c *groupRank) Size() int { return c.group.size }

func (c *groupRank) Send(to int, payload []int32) {
	buf := make([]int32, len(payload))
	copy(buf, payload)
	c.group.pipes[c.rank][to] <- buf
}

func (c *groupRank) Recv(from int) []int32 {
	return <-c.group.pipes[from][c.rank]
}
