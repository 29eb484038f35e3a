// Package flowgraph defines the control-flow graph consumed by the
// structuring pass. Each node wraps one basic block whose statements and
// branch condition have already been translated; the graph only records
// how the blocks connect.
package flowgraph

import (
	"strconv"

	"github.com/raymyers/ralph-dc/pkg/cond"
)

// SentinelIndex is the block index of the synthetic return node used when
// a function has no explicit return.
const SentinelIndex = -1

// Item is one piece of translated output belonging to a block
type Item interface {
	ShouldWrite() bool
	String() string
}

// Line is a pre-rendered statement. Empty lines are not written.
type Line string

func (l Line) ShouldWrite() bool { return l != "" }
func (l Line) String() string    { return string(l) }

// BlockInfo is the translated content of a block
type BlockInfo struct {
	ToWrite         []Item         // statements, in order
	BranchCondition cond.Condition // set for conditional nodes
	ReturnValue     cond.Expr      // set for return nodes returning a value
}

// Block is a basic block of the original code. Index is unique and
// increases with the original instruction order.
type Block struct {
	Index int
	Info  BlockInfo
}

// Node is the interface for flow-graph nodes
type Node interface {
	Block() *Block
	Parents() []Node
	Name() string
	implFlowNode()
}

// base holds the fields every node variant shares
type base struct {
	block   *Block
	parents []Node
}

func (b *base) Block() *Block    { return b.block }
func (b *base) Parents() []Node  { return b.parents }
func (b *base) Name() string     { return strconv.Itoa(b.block.Index) }
func (b *base) addParent(p Node) { b.parents = append(b.parents, p) }

// BasicNode falls through (or jumps) to exactly one successor
type BasicNode struct {
	base
	Successor Node
}

// ConditionalNode ends in a two-way branch. Taken is followed when the
// block's branch condition holds, Fallthrough otherwise.
type ConditionalNode struct {
	base
	Fallthrough Node
	Taken       Node
}

// ReturnNode leaves the function
type ReturnNode struct {
	base
	// Real is false for duplicated copies of the return block and for the
	// sentinel.
	Real bool
}

func (*BasicNode) implFlowNode()       {}
func (*ConditionalNode) implFlowNode() {}
func (*ReturnNode) implFlowNode()      {}

// IsLoop reports whether the taken edge jumps backwards
func (n *ConditionalNode) IsLoop() bool {
	return n.Taken.Block().Index <= n.block.Index
}

// Condition returns the branch condition of the node's block
func (n *ConditionalNode) Condition() cond.Condition {
	return n.block.Info.BranchCondition
}

// IsSentinel reports whether n was created by NewSentinel
func (n *ReturnNode) IsSentinel() bool {
	return n.block.Index == SentinelIndex
}

// NewSentinel creates the fictive return node used as the structuring end
// point of functions without an explicit return.
func NewSentinel() *ReturnNode {
	return &ReturnNode{base: base{block: &Block{Index: SentinelIndex}}}
}

// Successors returns the outgoing edges of n, fallthrough first
func Successors(n Node) []Node {
	switch n := n.(type) {
	case *BasicNode:
		return []Node{n.Successor}
	case *ConditionalNode:
		return []Node{n.Fallthrough, n.Taken}
	case *ReturnNode:
		return nil
	}
	return nil
}

// Graph is the flow graph of one function
type Graph struct {
	Nodes []Node // sorted by block index
}

// EntryNode returns the first node in code order
func (g *Graph) EntryNode() Node {
	if len(g.Nodes) == 0 {
		return nil
	}
	return g.Nodes[0]
}

// ReturnNode returns the function's real return node, or nil if the
// function has none.
func (g *Graph) ReturnNode() *ReturnNode {
	for _, n := range g.Nodes {
		if r, ok := n.(*ReturnNode); ok && r.Real {
			return r
		}
	}
	return nil
}

// Lookup finds the node for a block index
func (g *Graph) Lookup(index int) (Node, bool) {
	lo, hi := 0, len(g.Nodes)
	for lo < hi {
		mid := (lo + hi) / 2
		switch idx := g.Nodes[mid].Block().Index; {
		case idx == index:
			return g.Nodes[mid], true
		case idx < index:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return nil, false
}
