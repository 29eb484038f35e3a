package structure

import (
	"fmt"

	"github.com/raymyers/ralph-dc/pkg/flowgraph"
)

type reachKey struct {
	start, end, without flowgraph.Node
}

// forwardSuccessors returns the edges followed by reachability queries.
// The taken edge of a loop head points backwards and can never help reach
// a later node, so it is skipped.
func forwardSuccessors(n flowgraph.Node) []flowgraph.Node {
	switch n := n.(type) {
	case *flowgraph.BasicNode:
		return []flowgraph.Node{n.Successor}
	case *flowgraph.ConditionalNode:
		if n.IsLoop() {
			return []flowgraph.Node{n.Fallthrough}
		}
		return []flowgraph.Node{n.Taken, n.Fallthrough}
	case *flowgraph.ReturnNode:
		return nil
	}
	panic(fmt.Sprintf("structure: unknown node type %T", n))
}

// EndReachableWithout reports whether end can be reached from start if
// without were removed from the graph. Results are cached for the
// lifetime of the context.
func (c *Context) EndReachableWithout(start, end, without flowgraph.Node) bool {
	if end == without || start == without {
		return false
	}
	if start == end {
		return true
	}

	key := reachKey{start, end, without}
	if ret, ok := c.reachableWithout[key]; ok {
		return ret
	}

	ret := false
	var visited flowgraph.NodeSet
	stack := []flowgraph.Node{start}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == without || !visited.Add(node) {
			continue
		}
		if node == end {
			ret = true
			break
		}
		stack = append(stack, forwardSuccessors(node)...)
	}

	c.reachableWithout[key] = ret
	return ret
}

// ReachableNodes returns every node reachable from start, including start
func ReachableNodes(start flowgraph.Node) *flowgraph.NodeSet {
	reachable := &flowgraph.NodeSet{}
	stack := []flowgraph.Node{start}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !reachable.Add(node) {
			continue
		}
		stack = append(stack, forwardSuccessors(node)...)
	}
	return reachable
}

// ImmediatePostdominator returns the earliest node other than start that
// every path from start to end passes through.
//
// When end cannot be reached at all, every path from start ends in an
// early return. end is then replaced by the last reachable node;
// otherwise every node would count as a postdominator and the earliest
// could lie inside a nested conditional, which leads to nodes being
// emitted twice.
func (c *Context) ImmediatePostdominator(start, end flowgraph.Node) (flowgraph.Node, error) {
	reachable := ReachableNodes(start)
	if !reachable.Has(end) {
		end = reachable.Max()
	}
	endIndex := end.Block().Index

	var best flowgraph.Node
	var visited flowgraph.NodeSet
	stack := []flowgraph.Node{start}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visited.Add(node) {
			continue
		}
		if node.Block().Index > endIndex {
			// Don't go beyond the end.
			continue
		}
		stack = append(stack, forwardSuccessors(node)...)

		if node != start && !c.EndReachableWithout(start, end, node) {
			if best == nil || node.Block().Index < best.Block().Index {
				best = node
			}
		}
	}

	if best == nil {
		return nil, &InvariantError{
			Msg: fmt.Sprintf("no postdominator of block %s towards block %s", start.Name(), end.Name()),
		}
	}
	return best, nil
}
