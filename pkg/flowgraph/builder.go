package flowgraph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/raymyers/ralph-dc/pkg/cond"
)

// ErrEmptyGraph is returned when a graph has no nodes
var ErrEmptyGraph = errors.New("flow graph has no nodes")

// Builder assembles a Graph from blocks that refer to each other by index.
// Edges are resolved when Build is called, so blocks may be declared in
// any order.
type Builder struct {
	decls []decl
	err   error
}

type nodeKind int

const (
	kindBasic nodeKind = iota
	kindCond
	kindReturn
)

// decl records one declared block until its edges can be resolved
type decl struct {
	kind  nodeKind
	block *Block
	next  int // successor or fallthrough
	taken int
	real  bool
}

// NewBuilder creates an empty graph builder
func NewBuilder() *Builder {
	return &Builder{}
}

func lines(stmts []string) []Item {
	items := make([]Item, 0, len(stmts))
	for _, s := range stmts {
		items = append(items, Line(s))
	}
	return items
}

func (b *Builder) add(d decl) *Builder {
	if d.block.Index < 0 {
		b.setErr(fmt.Errorf("block index %d is negative", d.block.Index))
	}
	b.decls = append(b.decls, d)
	return b
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Basic declares a block that continues at next
func (b *Builder) Basic(index, next int, stmts ...string) *Builder {
	return b.add(decl{
		kind:  kindBasic,
		block: &Block{Index: index, Info: BlockInfo{ToWrite: lines(stmts)}},
		next:  next,
	})
}

// Cond declares a block ending in "if (c) goto taken", continuing at next
func (b *Builder) Cond(index int, c cond.Condition, taken, next int, stmts ...string) *Builder {
	if c == nil {
		b.setErr(fmt.Errorf("block %d: conditional block has no branch condition", index))
	}
	return b.add(decl{
		kind: kindCond,
		block: &Block{Index: index, Info: BlockInfo{
			ToWrite:         lines(stmts),
			BranchCondition: c,
		}},
		next:  next,
		taken: taken,
	})
}

// Return declares a return block. value may be nil.
func (b *Builder) Return(index int, value cond.Expr, real bool, stmts ...string) *Builder {
	return b.add(decl{
		kind: kindReturn,
		block: &Block{Index: index, Info: BlockInfo{
			ToWrite:     lines(stmts),
			ReturnValue: value,
		}},
		real: real,
	})
}

// Build resolves all edges and returns the graph
func (b *Builder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.decls) == 0 {
		return nil, ErrEmptyGraph
	}

	byIndex := make(map[int]Node, len(b.decls))
	for _, d := range b.decls {
		if _, dup := byIndex[d.block.Index]; dup {
			return nil, fmt.Errorf("duplicate block index %d", d.block.Index)
		}
		var n Node
		switch d.kind {
		case kindBasic:
			n = &BasicNode{base: base{block: d.block}}
		case kindCond:
			n = &ConditionalNode{base: base{block: d.block}}
		case kindReturn:
			n = &ReturnNode{base: base{block: d.block}, Real: d.real}
		}
		byIndex[d.block.Index] = n
	}

	resolve := func(from, to int) (Node, error) {
		n, ok := byIndex[to]
		if !ok {
			return nil, fmt.Errorf("block %d: edge to undefined block %d", from, to)
		}
		return n, nil
	}

	g := &Graph{Nodes: make([]Node, 0, len(byIndex))}
	for _, d := range b.decls {
		n := byIndex[d.block.Index]
		switch n := n.(type) {
		case *BasicNode:
			succ, err := resolve(d.block.Index, d.next)
			if err != nil {
				return nil, err
			}
			n.Successor = succ
		case *ConditionalNode:
			fall, err := resolve(d.block.Index, d.next)
			if err != nil {
				return nil, err
			}
			taken, err := resolve(d.block.Index, d.taken)
			if err != nil {
				return nil, err
			}
			if fall == taken {
				return nil, fmt.Errorf("block %d: both branch edges lead to block %d", d.block.Index, d.next)
			}
			n.Fallthrough = fall
			n.Taken = taken
		}
		g.Nodes = append(g.Nodes, n)
	}

	sort.Slice(g.Nodes, func(i, j int) bool {
		return g.Nodes[i].Block().Index < g.Nodes[j].Block().Index
	})

	// Parents are recorded in code order so parent iteration is deterministic.
	for _, n := range g.Nodes {
		for _, succ := range Successors(n) {
			parentOf(succ).addParent(n)
		}
	}
	return g, nil
}

func parentOf(n Node) *base {
	switch n := n.(type) {
	case *BasicNode:
		return &n.base
	case *ConditionalNode:
		return &n.base
	case *ReturnNode:
		return &n.base
	}
	panic(fmt.Sprintf("flowgraph: unknown node type %T", n))
}
