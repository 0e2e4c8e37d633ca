package spacedata

import (
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/notargets/dofmap/element"
	"github.com/notargets/dofmap/mesh"
	"github.com/notargets/gocfd/utils"
)

// Space is a function space bound to shared layout data.  A component
// proxy (from Sub) shares its parent's data and element, differing only
// in the selected vector component.
type Space struct {
	name      string
	mesh      mesh.Topology
	elem      *element.Layout
	data      *SharedData
	component int // -1 for whole-space
	parent    *Space
}

// NewSpace builds a space for the layout on the mesh, constructing or
// reusing the shared data.
func NewSpace(m mesh.Topology, el *element.Layout, name string) (*Space, error) {
	data, err := GetSharedData(m, el)
	if err != nil {
		return nil, err
	}
	return &Space{name: name, mesh: m, elem: el, data: data, component: -1}, nil
}

func (s *Space) Name() string             { return s.name }
func (s *Space) Mesh() mesh.Topology      { return s.mesh }
func (s *Space) Element() *element.Layout { return s.elem }
func (s *Space) Data() *SharedData        { return s.data }
func (s *Space) ValueSize() int           { return s.elem.ValueSize }
func (s *Space) Parent() *Space           { return s.parent }

// Component returns the selected vector component of a proxy space.
func (s *Space) Component() (int, bool) {
	if s.component < 0 {
		return 0, false
	}
	return s.component, true
}

// Sub returns the component proxy selecting one vector component.
func (s *Space) Sub(component int) (*Space, error) {
	if component < 0 || component >= s.ValueSize() {
		return nil, fmt.Errorf("%w: component %d of a %d-component space",
			ErrConfiguration, component, s.ValueSize())
	}
	sub := *s
	sub.name = fmt.Sprintf("%s[%d]", s.name, component)
	sub.component = component
	sub.parent = s
	return &sub, nil
}

// Topological unwraps component proxies to the underlying whole space.
func (s *Space) Topological() *Space {
	fs := s
	for fs.component >= 0 && fs.parent != nil {
		fs = fs.parent
	}
	return fs
}

// BoundaryNodes resolves the boundary node subset for a subdomain; see
// SharedData.BoundaryNodes.
func (s *Space) BoundaryNodes(subdomain, method string) (utils.Index, error) {
	return s.data.BoundaryNodes(s, subdomain, method)
}

// Constraint is the surface of a node-level (Dirichlet-type) boundary
// condition as seen by the map builder.  Subdomain is a facet tag in
// decimal form, "on_boundary", "top" or "bottom".  ID is a stable
// identity: set-equal constraint lists in any supply order canonicalize
// to the same cache key.
type Constraint interface {
	Space() *Space
	Subdomain() string
	Method() string
	Nodes() utils.Index
	ID() uint64
}

// NodeConstraint is a concrete Constraint with eagerly resolved nodes.
type NodeConstraint struct {
	space     *Space
	subdomain string
	method    string
	nodes     utils.Index
}

// NewNodeConstraint resolves the constrained node subset for (subdomain,
// method) on V.  Resolution is collective on distributed meshes: every
// rank must construct the equivalent constraint in lockstep.
func NewNodeConstraint(V *Space, subdomain, method string) (*NodeConstraint, error) {
	nodes, err := V.BoundaryNodes(subdomain, method)
	if err != nil {
		return nil, err
	}
	return &NodeConstraint{space: V, subdomain: subdomain, method: method, nodes: nodes}, nil
}

func (c *NodeConstraint) Space() *Space      { return c.space }
func (c *NodeConstraint) Subdomain() string  { return c.subdomain }
func (c *NodeConstraint) Method() string     { return c.method }
func (c *NodeConstraint) Nodes() utils.Index { return c.nodes }

// ID hashes the constraint's identity: target space, component,
// subdomain and method.  Equal-content constraints hash identically.
func (c *NodeConstraint) ID() uint64 {
	h := fnv.New64a()
	h.Write([]byte(c.space.Topological().Name()))
	if cmp, ok := c.space.Component(); ok {
		h.Write([]byte{'#'})
		h.Write([]byte(strconv.Itoa(cmp)))
	}
	h.Write([]byte{0})
	h.Write([]byte(c.subdomain))
	h.Write([]byte{0})
	h.Write([]byte(c.method))
	return h.Sum64()
}
