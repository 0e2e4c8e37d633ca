package spacedata

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/notargets/dofmap/indexset"
	"github.com/notargets/dofmap/mesh"
	"github.com/notargets/gocfd/utils"
)

// facetDofTable selects the per-reference-facet local dof lists for a
// boundary method.  Topological selects closure dofs, geometric support
// dofs; support dofs are undefined for high-dimensional cells and yield
// ErrNotImplemented rather than a silent empty answer.
func (d *SharedData) facetDofTable(method string) ([][]int, error) {
	switch method {
	case "topological":
		return d.elem.FacetClosure, nil
	case "geometric":
		if d.elem.FacetSupport == nil {
			return nil, fmt.Errorf("%w: support dofs undefined for %d-dimensional cells",
				ErrNotImplemented, d.elem.Dim)
		}
		return d.elem.FacetSupport, nil
	}
	return nil, fmt.Errorf("%w: unknown boundary method %q", ErrConfiguration, method)
}

// BoundaryNodes resolves the sorted, de-duplicated local node indices on
// a boundary subdomain.  subdomain is "on_boundary", a facet tag, or
// "top"/"bottom" on extruded meshes; method is "topological" or
// "geometric".
//
// For tagged and on_boundary subdomains this is collective: exterior
// facets visible locally can miss nodes that are boundary-relevant only
// from a neighbour's perspective, so a 0/1 indicator over the node set is
// exchanged with max combining before the answer is read.  Every rank on
// the mesh communicator must resolve equivalent inputs in lockstep.
func (d *SharedData) BoundaryNodes(V *Space, subdomain, method string) (utils.Index, error) {
	if method != "topological" && method != "geometric" {
		return nil, fmt.Errorf("%w: unknown boundary method %q", ErrConfiguration, method)
	}

	if subdomain == "top" || subdomain == "bottom" {
		key := string(d.key) + "#" + subdomain + "#" + method
		v, err := d.mesh.Cache().GetOrCompute("top_bottom_boundary_nodes", key, func() (any, error) {
			return d.topBottomBoundaryNodes(subdomain, method)
		})
		if err != nil {
			return nil, err
		}
		return v.(utils.Index), nil
	}

	key := string(d.key) + "#" + subdomain + "#" + method
	v, err := d.mesh.Cache().GetOrCompute("boundary_nodes", key, func() (any, error) {
		return d.facetBoundaryNodes(V, subdomain, method)
	})
	if err != nil {
		return nil, err
	}
	return v.(utils.Index), nil
}

func (d *SharedData) topBottomBoundaryNodes(subdomain, method string) (utils.Index, error) {
	if !d.mesh.Extruded() {
		return nil, fmt.Errorf("%w: %q boundary nodes require an extruded mesh",
			ErrConfiguration, subdomain)
	}
	cells := d.CellNodeList()

	if d.mesh.VariableLayers() {
		if method == "geometric" {
			return nil, fmt.Errorf("%w: geometric boundary nodes on variable-layer meshes",
				ErrNotImplemented)
		}
		mask := d.Masks.ByMethod(method)
		return d.mesh.TopBottomBoundaryNodes(cells.Values, cells.Arity, mask, d.Offsets, subdomain)
	}

	mask := d.Masks.ByMethod(method)
	if mask == nil {
		return nil, fmt.Errorf("%w: %s mask unavailable for this cell", ErrNotImplemented, method)
	}
	// The last two facet positions are the horizontal bottom and top
	// facets, in that order.
	pos := len(mask.FacetPoints) - 2
	if subdomain == "top" {
		pos = len(mask.FacetPoints) - 1
	}
	dofs := mask.Section(mask.FacetPoints[pos])

	shift := 0
	if subdomain == "top" {
		shift = d.mesh.Layers() - 2
	}
	nodes := make(utils.Index, 0, (len(cells.Values)/cells.Arity)*len(dofs))
	for row := 0; row < len(cells.Values)/cells.Arity; row++ {
		for _, dof := range dofs {
			n := cells.Values[row*cells.Arity+dof]
			if shift > 0 {
				n += d.Offsets[dof] * shift
			}
			nodes = append(nodes, n)
		}
	}
	return sortedUnique(nodes), nil
}

func (d *SharedData) facetBoundaryNodes(V *Space, subdomain, method string) (utils.Index, error) {
	bnMap, err := d.ExteriorFacetBoundaryNodeMap(V, method)
	if err != nil {
		return nil, err
	}

	var rows utils.Index
	switch {
	case subdomain == "on_boundary":
		facets := d.mesh.FacetSet(mesh.ExteriorFacets)
		rows = make(utils.Index, facets.TotalSize())
		for i := range rows {
			rows[i] = i
		}
	default:
		tag, convErr := strconv.Atoi(subdomain)
		if convErr != nil {
			return nil, fmt.Errorf("%w: unknown boundary subdomain %q", ErrConfiguration, subdomain)
		}
		rows = d.mesh.FacetSubset(mesh.ExteriorFacets, tag)
	}

	local := make(utils.Index, 0, len(rows)*bnMap.Arity())
	values := bnMap.ValuesWithHalo()
	localIdx := d.mesh.LocalFacetIndices()
	table, err := d.facetDofTable(method)
	if err != nil {
		return nil, err
	}
	layers := d.mesh.Layers()
	for _, f := range rows {
		dofs := table[localIdx[f]]
		for j := range dofs {
			n := values[f*bnMap.Arity()+j]
			local = append(local, n)
			if d.extruded {
				// A vertical facet column touches every layer; replicate
				// the bottom-layer node up the column.
				for l := 1; l <= layers-2; l++ {
					local = append(local, n+d.Offsets[dofs[j]]*l)
				}
			}
		}
	}

	// Consistency pass: agree on membership across ranks.
	vec := indexset.NewIntVector(d.NodeSet)
	vec.Mark(local, 1)
	vec.ExchangeBegin()
	if err := vec.ExchangeEnd(); err != nil {
		return nil, err
	}
	return utils.Index(vec.Where(1)), nil
}

// ExteriorFacetBoundaryNodeMap returns the cached map from exterior
// facets to the facet-local boundary nodes of the adjacent cell, one row
// per facet in facet order.  Rows hold the closure (topological) or
// support (geometric) dofs of the facet within its cell; on extruded
// meshes the entries address the bottom layer.
func (d *SharedData) ExteriorFacetBoundaryNodeMap(V *Space, method string) (*indexset.Map, error) {
	if m, ok := d.mapCaches.boundaryNode[method]; ok {
		return m, nil
	}
	table, err := d.facetDofTable(method)
	if err != nil {
		return nil, err
	}

	facets := d.mesh.FacetSet(mesh.ExteriorFacets)
	cells := d.CellNodeList()
	facetCells, err := d.mesh.MakeFacetNodeList(cells.Values, cells.Arity, mesh.ExteriorFacets)
	if err != nil {
		return nil, err
	}
	localIdx := d.mesh.LocalFacetIndices()

	arity := 0
	if len(table) > 0 {
		arity = len(table[0])
	}
	values := make(utils.Index, facets.TotalSize()*arity)
	for f := 0; f < facets.TotalSize(); f++ {
		dofs := table[localIdx[f]]
		if len(dofs) != arity {
			return nil, fmt.Errorf("%w: facet dof counts differ across reference facets",
				ErrConfiguration)
		}
		for j, dof := range dofs {
			values[f*arity+j] = facetCells[f*cells.Arity+dof]
		}
	}

	m, err := indexset.NewMap(facets, d.NodeSet, arity, values, V.Name()+"_boundary_node")
	if err != nil {
		return nil, err
	}
	m.Masks = d.Masks
	d.mapCaches.boundaryNode[method] = m
	return m, nil
}

func sortedUnique(in utils.Index) utils.Index {
	if len(in) == 0 {
		return utils.Index{}
	}
	sort.Ints(in)
	out := in[:1]
	for _, n := range in[1:] {
		if n != out[len(out)-1] {
			out = append(out, n)
		}
	}
	return out
}
