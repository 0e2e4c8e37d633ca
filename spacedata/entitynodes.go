package spacedata

import (
	"github.com/notargets/dofmap/element"
	"github.com/notargets/dofmap/indexset"
	"github.com/notargets/dofmap/mesh"
	"github.com/notargets/gocfd/utils"
)

// NodeList is one entity-to-node array: Arity node slots per entity,
// row-major over the entity set including its halo rows.
type NodeList struct {
	Values utils.Index
	Arity  int
}

// Row returns the node slots of one entity.
func (n *NodeList) Row(entity int) utils.Index {
	return n.Values[entity*n.Arity : (entity+1)*n.Arity]
}

// EntityNodeLists maps each entity set of the mesh to its node array.
type EntityNodeLists map[*indexset.Set]*NodeList

// entityNodeLists memoizes the cell and facet node arrays.  Keyed by the
// exact layout key: node ordering matters here, unlike the numbering.
func entityNodeLists(m mesh.Topology, el *element.Layout, numbering *mesh.Section, offsets utils.Index) (EntityNodeLists, error) {
	v, err := m.Cache().GetOrCompute("entity_node_lists", el.Key().String(), func() (any, error) {
		cellNodes, err := m.MakeCellNodeList(numbering, el.EntityDofs, el.NumDofs)
		if err != nil {
			return nil, err
		}
		lists := EntityNodeLists{
			m.CellSet(): {Values: cellNodes, Arity: el.NumDofs},
		}
		for _, kind := range []mesh.FacetKind{mesh.InteriorFacets, mesh.ExteriorFacets} {
			arity := el.NumDofs
			if kind == mesh.InteriorFacets {
				arity = 2 * el.NumDofs
			}
			if !m.HasFacets(kind) {
				lists[m.FacetSet(kind)] = &NodeList{Values: utils.Index{}, Arity: arity}
				continue
			}
			values, err := m.MakeFacetNodeList(cellNodes, el.NumDofs, kind)
			if err != nil {
				return nil, err
			}
			lists[m.FacetSet(kind)] = &NodeList{Values: values, Arity: arity}
		}
		return lists, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(EntityNodeLists), nil
}
