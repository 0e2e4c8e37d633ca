package indexset

import (
	"fmt"
	"log/slog"
)

// IntVector is an integer record over a set, one value per slot including
// halo slots.  It supports indexed writes and the two-phase halo exchange
// used for collective consistency passes: ExchangeBegin posts the locally
// owned values to every neighbor, ExchangeEnd blocks until the matching
// values arrive and folds them into the halo slots with max-combining.
//
// The exchange is collective over the set's communicator: every rank must
// call the begin/end pair in lockstep.
type IntVector struct {
	set      AbstractSet
	Data     []int32
	inFlight bool
}

// NewIntVector allocates a zeroed record over s.
func NewIntVector(s AbstractSet) *IntVector {
	return &IntVector{set: s, Data: make([]int32, s.TotalSize())}
}

func (v *IntVector) Set() AbstractSet { return v.set }

// Mark writes val at every index in indices.
func (v *IntVector) Mark(indices []int, val int32) {
	for _, i := range indices {
		v.Data[i] = val
	}
}

// ExchangeBegin posts this rank's exported values to all neighbors.
func (v *IntVector) ExchangeBegin() {
	if v.inFlight {
		panic("indexset: ExchangeBegin while an exchange is in flight")
	}
	v.inFlight = true
	halo := v.set.HaloInfo()
	if halo == nil {
		return
	}
	for _, r := range halo.Neighbors() {
		send := halo.SendIndices[r]
		buf := make([]int32, len(send))
		for i, idx := range send {
			buf[i] = v.Data[idx]
		}
		slog.Debug("halo exchange send", "to", r, "count", len(buf))
		halo.Comm.Send(r, buf)
	}
}

// ExchangeEnd completes the exchange, combining received values into the
// halo slots with max.  A max combine is sufficient for the 0/1 membership
// indicators this record is used for; owner values always win over stale
// halo copies.
func (v *IntVector) ExchangeEnd() error {
	if !v.inFlight {
		return fmt.Errorf("indexset: ExchangeEnd without ExchangeBegin")
	}
	v.inFlight = false
	halo := v.set.HaloInfo()
	if halo == nil {
		return nil
	}
	for _, r := range halo.Neighbors() {
		recv := halo.RecvIndices[r]
		buf := halo.Comm.Recv(r)
		if len(buf) != len(recv) {
			return fmt.Errorf("indexset: halo exchange from rank %d delivered %d values, want %d",
				r, len(buf), len(recv))
		}
		slog.Debug("halo exchange recv", "from", r, "count", len(buf))
		for i, idx := range recv {
			if buf[i] > v.Data[idx] {
				v.Data[idx] = buf[i]
			}
		}
	}
	return nil
}

// Where returns the ascending indices whose value equals val.
func (v *IntVector) Where(val int32) []int {
	var out []int
	for i, x := range v.Data {
		if x == val {
			out = append(out, i)
		}
	}
	return out
}
