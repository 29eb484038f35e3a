package structure

import (
	"fmt"

	"github.com/raymyers/ralph-dc/pkg/flowgraph"
	"github.com/raymyers/ralph-dc/pkg/stmt"
)

// BuildNaive emits nodes in code order with gotos for every control
// transfer that is not a plain fall-through. It is used when structuring
// is disabled or has failed.
func (c *Context) BuildNaive(nodes []flowgraph.Node) (*stmt.Body, error) {
	n := &naiveEmitter{
		ctx:    c,
		nodes:  nodes,
		body:   c.newBody(),
		indent: c.IndentStep(),
	}
	for i, node := range nodes {
		if err := n.emit(node, i); err != nil {
			return nil, err
		}
	}
	return n.body, nil
}

// naiveEmitter holds state during naive emission
type naiveEmitter struct {
	ctx    *Context
	nodes  []flowgraph.Node
	body   *stmt.Body
	indent int
}

func (n *naiveEmitter) emit(node flowgraph.Node, i int) error {
	switch node := node.(type) {
	case *flowgraph.ReturnNode:
		// Return nodes are often duplicated and have no well-defined
		// position; they are emitted where they are jumped to instead.

	case *flowgraph.BasicNode:
		n.emitNode(node)
		n.emitSuccessor(node.Successor, i)

	case *flowgraph.ConditionalNode:
		branch := node.Condition()
		if branch == nil {
			return &InvariantError{Msg: fmt.Sprintf("block %s has no branch condition", node.Name())}
		}
		n.emitNode(node)
		ifBody := stmt.NewBody(false)
		if !n.maybeEmitReturn(node.Taken, ifBody, 2*n.indent) {
			n.ctx.emitGoto(node.Taken, ifBody, 2*n.indent)
		}
		n.body.AddIfElse(&stmt.IfElse{Cond: branch, Indent: n.indent, IfBody: ifBody})
		n.emitSuccessor(node.Fallthrough, i)

	default:
		return &InvariantError{Msg: fmt.Sprintf("unknown node type %T", node)}
	}
	return nil
}

func (n *naiveEmitter) emitNode(node flowgraph.Node) {
	n.body.AddStatement(n.ctx.label(node))
	n.body.AddNode(node, n.indent, true)
}

// maybeEmitReturn inlines a duplicated return node at the jump site
func (n *naiveEmitter) maybeEmitReturn(node flowgraph.Node, body *stmt.Body, indent int) bool {
	ret, ok := node.(*flowgraph.ReturnNode)
	if !ok || ret.Real {
		return false
	}
	n.ctx.WriteReturn(body, ret, indent, false)
	return true
}

// emitSuccessor transfers control from the node at position i to succ
func (n *naiveEmitter) emitSuccessor(succ flowgraph.Node, i int) {
	if n.maybeEmitReturn(succ, n.body, n.indent) {
		return
	}
	if i+1 < len(n.nodes) && n.nodes[i+1] == succ {
		// Fall through
		return
	}
	n.ctx.emitGoto(succ, n.body, n.indent)
}
