package structure

import (
	"fmt"

	"github.com/raymyers/ralph-dc/pkg/flowgraph"
	"github.com/raymyers/ralph-dc/pkg/stmt"
)

func (c *Context) newBody() *stmt.Body {
	return stmt.NewBody(c.Options.Debug)
}

func (c *Context) label(n flowgraph.Node) *stmt.Label {
	return &stmt.Label{Node: n, Targets: &c.gotoNodes}
}

// emitGoto appends "goto <label>;" and makes target's label visible
func (c *Context) emitGoto(target flowgraph.Node, body *stmt.Body, indent int) {
	c.gotoNodes.Add(target)
	body.AddStatement(&stmt.Simple{Indent: indent, Contents: fmt.Sprintf("goto %s;", stmt.LabelFor(target))})
}

// WriteReturn appends the content of a return node followed by its return
// statement. last is set for the function's trailing return, which gets a
// label and needs no bare "return;".
func (c *Context) WriteReturn(body *stmt.Body, n *flowgraph.ReturnNode, indent int, last bool) {
	if last {
		body.AddStatement(c.label(n))
	}
	body.AddNode(n, indent, n.Real)

	if v := n.Block().Info.ReturnValue; v != nil {
		body.AddStatement(&stmt.Simple{Indent: indent, Contents: fmt.Sprintf("return %s;", v)})
		c.IsVoid = false
	} else if !last {
		body.AddStatement(&stmt.Simple{Indent: indent, Contents: "return;"})
	}
}

// BuildFlowgraphBetween emits the nodes from start up to, but not
// including, end at the given indentation.
//
// The region is split into sub-regions whose entry and exit sit at the
// same nesting level. The loop walks these articulation nodes, handing
// each conditional and its immediate postdominator to
// buildConditionalSubgraph.
func (c *Context) BuildFlowgraphBetween(start, end flowgraph.Node, indent int) (*stmt.Body, error) {
	body := c.newBody()
	curr := start

	for curr != end {
		if _, isReturn := curr.(*flowgraph.ReturnNode); !isReturn {
			// A node met a second time becomes a goto to its first
			// occurrence. This happens when early returns, continues or
			// || are not detected, and reads better than duplicating it.
			if c.emittedNodes.Has(curr) {
				c.emitGoto(curr, body, indent)
				break
			}
			c.emittedNodes.Add(curr)

			// The label only prints if something jumps here.
			body.AddStatement(c.label(curr))
			body.AddNode(curr, indent, true)
		}

		switch n := curr.(type) {
		case *flowgraph.BasicNode:
			curr = n.Successor

		case *flowgraph.ConditionalNode:
			regionEnd, err := c.ImmediatePostdominator(n, end)
			if err != nil {
				return nil, err
			}
			ifElse, err := c.buildConditionalSubgraph(n, regionEnd, indent)
			if err != nil {
				return nil, err
			}
			body.AddIfElse(ifElse)
			curr = regionEnd

		case *flowgraph.ReturnNode:
			c.WriteReturn(body, n, indent, false)
			return body, nil

		default:
			return nil, &InvariantError{Msg: fmt.Sprintf("unknown node type %T", curr)}
		}
	}
	return body, nil
}

// buildConditionalSubgraph emits the region [start, end) where start is a
// conditional node and end its immediate postdominator.
func (c *Context) buildConditionalSubgraph(start *flowgraph.ConditionalNode, end flowgraph.Node, indent int) (*stmt.IfElse, error) {
	branch := start.Condition()
	if branch == nil {
		return nil, &InvariantError{Msg: fmt.Sprintf("block %s has no branch condition", start.Name())}
	}
	inner := indent + c.IndentStep()

	switch {
	case start.Taken == end:
		// The taken edge skips the body, so the if lives one level below
		// start with the condition negated.
		ifBody, err := c.BuildFlowgraphBetween(start.Fallthrough, end, inner)
		if err != nil {
			return nil, err
		}
		return &stmt.IfElse{Cond: branch.Negated(), Indent: indent, IfBody: ifBody}, nil

	case start.Fallthrough == end:
		if start.IsLoop() {
			// Following the backward edge would trap us; jump to the
			// loop start instead.
			ifBody := c.newBody()
			c.emitGoto(start.Taken, ifBody, inner)
			return &stmt.IfElse{Cond: branch, Indent: indent, IfBody: ifBody}, nil
		}
		// Only an if; the other side usually ended in an early return.
		ifBody, err := c.BuildFlowgraphBetween(start.Taken, end, inner)
		if err != nil {
			return nil, err
		}
		return &stmt.IfElse{Cond: branch, Indent: indent, IfBody: ifBody}, nil
	}

	conds, err := c.NumberOfIfConditions(start, end)
	if err != nil {
		return nil, err
	}
	if conds >= 2 {
		return c.buildCompoundIf(conds, start, end, indent)
	}

	// A plain if/else. The fallthrough side comes first in the machine
	// code, so it becomes the if-body.
	ifBody, err := c.BuildFlowgraphBetween(start.Fallthrough, end, inner)
	if err != nil {
		return nil, err
	}
	elseBody, err := c.BuildFlowgraphBetween(start.Taken, end, inner)
	if err != nil {
		return nil, err
	}
	return &stmt.IfElse{Cond: branch.Negated(), Indent: indent, IfBody: ifBody, ElseBody: elseBody}, nil
}
