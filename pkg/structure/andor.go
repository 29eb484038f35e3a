package structure

import (
	"fmt"

	"github.com/raymyers/ralph-dc/pkg/cond"
	"github.com/raymyers/ralph-dc/pkg/flowgraph"
	"github.com/raymyers/ralph-dc/pkg/stmt"
)

// CountNonPostdominatedParents returns the number of parents of child for
// which child is NOT the immediate postdominator. Those parents are what
// would print child more than once under naive nesting, which is how the
// predicates of an && / || chain show up.
func (c *Context) CountNonPostdominatedParents(child, end flowgraph.Node) (int, error) {
	count := 0
	parents := child.Parents()
	for _, parent := range parents {
		ipdom, err := c.ImmediatePostdominator(parent, end)
		if err != nil {
			return 0, err
		}
		if ipdom != child {
			count++
		}
	}

	// Either all parents should be immediately postdominated by child or
	// none of them. When that does not hold the && / || output may be
	// wrong.
	if count != 0 && count != len(parents) && !c.hasWarned {
		c.hasWarned = true
		fmt.Fprintf(c.Warnings, "ralph-dc: warning: confusing control flow, output may have incorrect && "+
			"and || detection. Run with --no-andor to disable detection and print gotos instead.\n")
	}
	return count, nil
}

// NumberOfIfConditions returns k when the branch at n starts the C
// condition "1 && 2 && ... && k" or "1 || 2 || ... || k". A result below
// 2 means n is an ordinary if.
func (c *Context) NumberOfIfConditions(n *flowgraph.ConditionalNode, end flowgraph.Node) (int, error) {
	if !c.Options.AndorDetection {
		return 1, nil
	}

	count1, err := c.CountNonPostdominatedParents(n.Taken, end)
	if err != nil {
		return 0, err
	}
	count2, err := c.CountNonPostdominatedParents(n.Fallthrough, end)
	if err != nil {
		return 0, err
	}

	// The predicates go through whichever path has a nonzero count; the
	// taken edge is checked first.
	if count1 != 0 {
		return count1, nil
	}
	return count2, nil
}

// JoinConditions folds conds into one condition with op. Every condition
// is negated, or only the last one when onlyNegateLast is set.
func JoinConditions(conds []cond.Condition, op cond.LogicalOp, onlyNegateLast bool) cond.Condition {
	if len(conds) == 0 {
		panic("structure: JoinConditions called with no conditions")
	}
	var final cond.Condition
	for i, c := range conds {
		if !onlyNegateLast || i == len(conds)-1 {
			c = c.Negated()
		}
		if final == nil {
			final = c
		} else {
			final = cond.Join(op, final, c)
		}
	}
	return final
}

// buildCompoundIf emits the if-statement whose condition spans count
// consecutive conditional nodes starting at start.
func (c *Context) buildCompoundIf(count int, start *flowgraph.ConditionalNode, end flowgraph.Node, indent int) (*stmt.IfElse, error) {
	var curr flowgraph.Node = start
	var prev *flowgraph.ConditionalNode
	var conds []cond.Condition

	for ; count > 0; count-- {
		node, ok := curr.(*flowgraph.ConditionalNode)
		if !ok {
			return nil, fmt.Errorf("%w (block %s)", ErrComplexControlFlow, curr.Name())
		}
		conds = append(conds, node.Condition())
		prev = node
		curr = node.Fallthrough
	}

	inner := indent + c.IndentStep()

	// Landing on start's taken edge means this was an ||: had the first
	// condition held we would have jumped straight into the body.
	if curr == start.Taken {
		ifBody, err := c.BuildFlowgraphBetween(start.Taken, end, inner)
		if err != nil {
			return nil, err
		}
		// The else-body is wherever the last test jumps instead of
		// falling through into the if-body.
		elseBody, err := c.BuildFlowgraphBetween(prev.Taken, end, inner)
		if err != nil {
			return nil, err
		}
		// The last condition falls through into the body instead of
		// jumping to it, so it is the only one negated.
		return &stmt.IfElse{
			Cond:     JoinConditions(conds, cond.OpOr, true),
			Indent:   indent,
			IfBody:   ifBody,
			ElseBody: elseBody,
		}, nil
	}

	// Otherwise an &&: every taken edge jumps over the body.
	ifBody, err := c.BuildFlowgraphBetween(curr, end, inner)
	if err != nil {
		return nil, err
	}
	elseBody, err := c.BuildFlowgraphBetween(start.Taken, end, inner)
	if err != nil {
		return nil, err
	}
	return &stmt.IfElse{
		Cond:     JoinConditions(conds, cond.OpAnd, false),
		Indent:   indent,
		IfBody:   ifBody,
		ElseBody: elseBody,
	}, nil
}
