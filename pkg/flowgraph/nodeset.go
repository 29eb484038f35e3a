package flowgraph

import "golang.org/x/tools/container/intsets"

// NodeSet is a set of nodes keyed by block index. The zero value is an
// empty set ready to use.
type NodeSet struct {
	ids   intsets.Sparse
	nodes map[int]Node
}

// Add inserts n and reports whether it was not already present
func (s *NodeSet) Add(n Node) bool {
	idx := n.Block().Index
	if !s.ids.Insert(idx) {
		return false
	}
	if s.nodes == nil {
		s.nodes = make(map[int]Node)
	}
	s.nodes[idx] = n
	return true
}

// Has reports whether n is in the set
func (s *NodeSet) Has(n Node) bool {
	if n == nil {
		return false
	}
	return s.ids.Has(n.Block().Index)
}

// Len returns the number of nodes in the set
func (s *NodeSet) Len() int {
	return s.ids.Len()
}

// Max returns the member with the largest block index, or nil if the set
// is empty.
func (s *NodeSet) Max() Node {
	if s.ids.IsEmpty() {
		return nil
	}
	return s.nodes[s.ids.Max()]
}

// Nodes returns the members in block-index order
func (s *NodeSet) Nodes() []Node {
	ids := s.ids.AppendTo(nil)
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = s.nodes[id]
	}
	return out
}
