package spacedata

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/notargets/dofmap/indexset"
	"github.com/notargets/gocfd/utils"
)

// extrudedSentinel replaces the per-node constraint encoding on extruded
// meshes: every constrained slot collapses to one coarse negative value
// instead of carrying component bits.  Known limitation, kept until the
// intended extruded per-component semantics are settled.
const extrudedSentinel = -10000000

// GetMap returns the map from entitySet to V's nodes with the given
// constraints encoded, building and caching it on first demand.
//
// Constraints are split into explicit ones, encoded as negative map
// values, and implicit top/bottom ones, which only annotate the returned
// map for the consuming kernel generator.  The cache key is the canonical
// order of the explicit constraints; implicit-only and unconstrained
// requests share the empty key, and a cache hit returns the identical map
// instance.  Encoding: a constrained node n with component bits c becomes
// -((n | c) + 1), with component i flagged at bit IndexBits-2-i.
func (d *SharedData) GetMap(V *Space, entitySet *indexset.Set, arity int, constraints []Constraint,
	name string, offset utils.Index, parent *indexset.Map) (indexset.MapLike, error) {

	list := d.EntityNodeLists[entitySet]
	if list == nil {
		return nil, fmt.Errorf("%w: entity set has no node list on this mesh", ErrConfiguration)
	}

	var explicit []Constraint
	var implicit []indexset.ImplicitConstraint
	for _, c := range constraints {
		if sub := c.Subdomain(); sub == "top" || sub == "bottom" {
			implicit = append(implicit, indexset.ImplicitConstraint{Subdomain: sub, Method: c.Method()})
		} else {
			explicit = append(explicit, c)
		}
	}
	key := canonicalConstraintKey(explicit)

	cache := d.mapCaches.byEntitySet[entitySet]
	if cache == nil {
		cache = map[string]*indexset.Map{}
		d.mapCaches.byEntitySet[entitySet] = cache
	}
	if cached, ok := cache[key]; ok {
		return annotate(cached, implicit), nil
	}

	for _, c := range explicit {
		if c.Space().Topological() != V.Topological() {
			return nil, fmt.Errorf("%w: constraint on space %q applied to space %q",
				ErrConfiguration, c.Space().Name(), V.Name())
		}
	}

	values := list.Values
	if len(explicit) > 0 {
		encoded, err := d.encodeConstraints(explicit)
		if err != nil {
			return nil, err
		}
		values = make(utils.Index, len(list.Values))
		for i, n := range list.Values {
			values[i] = encoded[n]
		}
	}

	m, err := indexset.NewMap(entitySet, d.NodeSet, arity, values, V.Name()+"_"+name)
	if err != nil {
		return nil, err
	}
	m.Offset = offset
	m.Parent = parent
	m.Masks = d.Masks
	m.VectorIndexed = anyComponent(explicit)

	cache[key] = m
	return annotate(m, implicit), nil
}

// encodeConstraints builds the identity lookup table with every
// constrained slot replaced by its negative encoding.
func (d *SharedData) encodeConstraints(explicit []Constraint) (utils.Index, error) {
	bcids := unionNodes(explicit)
	negids := make(utils.Index, len(bcids))
	copy(negids, bcids)

	decorate := anyComponent(explicit)
	const nbits = IndexBits - 2
	for _, c := range explicit {
		cmp, hasCmp := c.Space().Component()
		if !decorate {
			continue
		}
		width := c.Space().Topological().ValueSize()
		if width > 3 {
			return nil, fmt.Errorf("%w: component constraints limited to 3 components, space has %d",
				ErrConfiguration, width)
		}
		if hasCmp {
			// Component constraint: flag its single component.
			for _, n := range c.Nodes() {
				idx := sort.SearchInts(bcids, n)
				negids[idx] |= 1 << (nbits - cmp)
			}
		} else {
			// Whole-space constraint mixed with component constraints:
			// all component bits must be set so the slot masks fully.
			for _, n := range c.Nodes() {
				idx := sort.SearchInts(bcids, n)
				for i := 0; i < width; i++ {
					negids[idx] |= 1 << (nbits - i)
				}
			}
		}
	}

	lookup := make(utils.Index, d.NodeSet.TotalSize())
	for i := range lookup {
		lookup[i] = i
	}
	for i, n := range bcids {
		if d.extruded {
			lookup[n] = extrudedSentinel
		} else {
			lookup[n] = -(negids[i] + 1)
		}
	}
	return lookup, nil
}

// canonicalConstraintKey sorts explicit constraints by stable identity
// and de-duplicates, so set-equal inputs share one key.  No explicit
// constraints yields the empty key shared with unconstrained requests.
func canonicalConstraintKey(explicit []Constraint) string {
	if len(explicit) == 0 {
		return ""
	}
	ids := make([]uint64, 0, len(explicit))
	for _, c := range explicit {
		ids = append(ids, c.ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, 0, len(ids))
	var last uint64
	for i, id := range ids {
		if i > 0 && id == last {
			continue
		}
		parts = append(parts, strconv.FormatUint(id, 16))
		last = id
	}
	return strings.Join(parts, ",")
}

func unionNodes(explicit []Constraint) utils.Index {
	seen := map[int]struct{}{}
	for _, c := range explicit {
		for _, n := range c.Nodes() {
			seen[n] = struct{}{}
		}
	}
	out := make(utils.Index, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func anyComponent(explicit []Constraint) bool {
	for _, c := range explicit {
		if _, ok := c.Space().Component(); ok {
			return true
		}
	}
	return false
}

func annotate(m *indexset.Map, implicit []indexset.ImplicitConstraint) indexset.MapLike {
	if len(implicit) == 0 {
		return m
	}
	return indexset.WithImplicitConstraints(m, implicit)
}
