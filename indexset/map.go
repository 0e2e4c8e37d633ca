package indexset

import (
	"fmt"

	"github.com/notargets/gocfd/utils"
)

// MapLike is the read surface shared by plain maps and their annotation
// wrappers.  Underlying recovers the cached, unannotated map.
type MapLike interface {
	Arity() int
	Values() utils.Index
	ValuesWithHalo() utils.Index
	OffsetIndex() utils.Index
	Underlying() *Map
}

// Map takes entities of a from-set to slots of a to-set.  Values is
// row-major with Arity entries per from-entity, covering the full local
// from-set including its halo rows.  Offset, when present, is the vertical
// stride per arity slot for layered meshes.  VectorIndexed marks maps whose
// constrained entries carry component bits in their encoding.
type Map struct {
	from   AbstractSet
	to     AbstractSet
	arity  int
	values utils.Index
	name   string

	Offset        utils.Index
	Parent        *Map
	Masks         *BoundaryMasks
	VectorIndexed bool
}

// NewMap validates the shape of values against the from-set and arity.
func NewMap(from, to AbstractSet, arity int, values utils.Index, name string) (*Map, error) {
	if arity < 0 {
		return nil, fmt.Errorf("indexset: negative arity %d for map %q", arity, name)
	}
	if want := from.TotalSize() * arity; len(values) != want {
		return nil, fmt.Errorf("indexset: map %q has %d values, want %d (%d entities x %d)",
			name, len(values), want, from.TotalSize(), arity)
	}
	return &Map{from: from, to: to, arity: arity, values: values, name: name}, nil
}

func (m *Map) From() AbstractSet { return m.from }
func (m *Map) To() AbstractSet   { return m.to }
func (m *Map) Arity() int        { return m.arity }
func (m *Map) Name() string      { return m.name }

// Values returns the rows for owned from-entities only.
func (m *Map) Values() utils.Index {
	return m.values[:m.from.OwnedSize()*m.arity]
}

// ValuesWithHalo returns all local rows including halo entities.
func (m *Map) ValuesWithHalo() utils.Index { return m.values }

// Row returns the row for one from-entity, halo rows included.
func (m *Map) Row(entity int) utils.Index {
	return m.values[entity*m.arity : (entity+1)*m.arity]
}

func (m *Map) OffsetIndex() utils.Index { return m.Offset }
func (m *Map) Underlying() *Map         { return m }

// ImplicitConstraint names a top/bottom constraint that is realized by the
// consuming kernel generator rather than by node encoding.
type ImplicitConstraint struct {
	Subdomain string
	Method    string
}

// AnnotatedMap is the cheap wrapper attached when implicit constraints are
// requested.  It shares the underlying map's storage and is never cached.
type AnnotatedMap struct {
	*Map
	Implicit []ImplicitConstraint
}

// WithImplicitConstraints wraps m with the implicit constraint annotations.
func WithImplicitConstraints(m *Map, implicit []ImplicitConstraint) *AnnotatedMap {
	return &AnnotatedMap{Map: m, Implicit: implicit}
}
