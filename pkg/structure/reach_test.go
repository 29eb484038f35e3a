package structure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raymyers/ralph-dc/pkg/flowgraph"
)

func TestEndReachableWithout(t *testing.T) {
	g := diamondGraph(t)
	ctx, _ := newContext(g)
	n0, n1, n2, n3, n4 := node(t, g, 0), node(t, g, 1), node(t, g, 2), node(t, g, 3), node(t, g, 4)

	tests := []struct {
		name                string
		start, end, without flowgraph.Node
		want                bool
	}{
		{"start excluded", n0, n4, n0, false},
		{"end excluded", n0, n4, n4, false},
		{"start is end", n3, n3, n1, true},
		{"around one side", n0, n4, n1, true},
		{"around other side", n0, n4, n2, true},
		{"through join", n0, n4, n3, false},
		{"backwards", n3, n0, n1, false},
		{"side branch only", n1, n2, n0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ctx.EndReachableWithout(tt.start, tt.end, tt.without))
			// Cached answer must agree.
			assert.Equal(t, tt.want, ctx.EndReachableWithout(tt.start, tt.end, tt.without))
		})
	}
}

func TestEndReachableSkipsLoopEdge(t *testing.T) {
	g := loopGraph(t)
	ctx, _ := newContext(g)

	// From the loop head, block 1 is only reachable via the backward edge.
	assert.False(t, ctx.EndReachableWithout(node(t, g, 2), node(t, g, 1), node(t, g, 0)))
	assert.True(t, ctx.EndReachableWithout(node(t, g, 1), node(t, g, 3), node(t, g, 0)))
}

func TestEndReachableTerminatesOnBasicCycle(t *testing.T) {
	g := spinGraph(t)
	ctx, _ := newContext(g)
	assert.False(t, ctx.EndReachableWithout(node(t, g, 0), flowgraph.NewSentinel(), node(t, g, 2)))
	assert.True(t, ctx.EndReachableWithout(node(t, g, 2), node(t, g, 1), node(t, g, 0)))
}

func TestReachableNodes(t *testing.T) {
	g := loopGraph(t)
	got := ReachableNodes(node(t, g, 2))
	assert.Equal(t, 2, got.Len())
	assert.True(t, got.Has(node(t, g, 2)))
	assert.True(t, got.Has(node(t, g, 3)))
	assert.False(t, got.Has(node(t, g, 1)), "loop edge must not be followed")

	all := ReachableNodes(node(t, g, 0))
	assert.Equal(t, 4, all.Len())
	assert.Equal(t, node(t, g, 3), all.Max())
}

func TestImmediatePostdominatorDiamond(t *testing.T) {
	g := diamondGraph(t)
	ctx, _ := newContext(g)

	got, err := ctx.ImmediatePostdominator(node(t, g, 0), node(t, g, 4))
	require.NoError(t, err)
	assert.Equal(t, node(t, g, 3), got)

	got, err = ctx.ImmediatePostdominator(node(t, g, 0), node(t, g, 3))
	require.NoError(t, err)
	assert.Equal(t, node(t, g, 3), got)

	got, err = ctx.ImmediatePostdominator(node(t, g, 1), node(t, g, 4))
	require.NoError(t, err)
	assert.Equal(t, node(t, g, 3), got)
}

func TestImmediatePostdominatorUnreachableEnd(t *testing.T) {
	g := bothReturnGraph(t)
	ctx, _ := newContext(g)

	// The real return is unreachable; the last reachable node stands in.
	got, err := ctx.ImmediatePostdominator(node(t, g, 0), node(t, g, 3))
	require.NoError(t, err)
	assert.Equal(t, node(t, g, 2), got)

	g = spinGraph(t)
	ctx, _ = newContext(g)
	got, err = ctx.ImmediatePostdominator(node(t, g, 0), flowgraph.NewSentinel())
	require.NoError(t, err)
	assert.Equal(t, node(t, g, 1), got)
}

func TestImmediatePostdominatorEarlyReturn(t *testing.T) {
	g := earlyReturnGraph(t)
	ctx, _ := newContext(g)

	got, err := ctx.ImmediatePostdominator(node(t, g, 0), node(t, g, 3))
	require.NoError(t, err)
	assert.Equal(t, node(t, g, 2), got)
}

func TestImmediatePostdominatorInvariant(t *testing.T) {
	g := spinGraph(t)
	ctx, _ := newContext(g)

	// Block 1 is only reached by jumping backwards from block 2, so no
	// candidate at or before block 1 exists.
	_, err := ctx.ImmediatePostdominator(node(t, g, 2), node(t, g, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvariant))
	assert.False(t, errors.Is(err, ErrStructuring))

	var inv *InvariantError
	require.True(t, errors.As(err, &inv))
	assert.Contains(t, inv.Msg, "block 2")
}

// allPaths enumerates the paths from s to e over forward edges. Only
// used on acyclic graphs.
func allPaths(s, e flowgraph.Node) [][]flowgraph.Node {
	if s == e {
		return [][]flowgraph.Node{{e}}
	}
	var out [][]flowgraph.Node
	for _, succ := range forwardSuccessors(s) {
		for _, p := range allPaths(succ, e) {
			out = append(out, append([]flowgraph.Node{s}, p...))
		}
	}
	return out
}

func onPath(p []flowgraph.Node, n flowgraph.Node) bool {
	for _, x := range p {
		if x == n {
			return true
		}
	}
	return false
}

func TestImmediatePostdominatorProperties(t *testing.T) {
	graphs := map[string]*flowgraph.Graph{
		"diamond":      diamondGraph(t),
		"and":          andGraph(t),
		"or":           orGraph(t),
		"early return": earlyReturnGraph(t),
		"ambiguous":    ambiguousGraph(t),
		"broken chain": brokenChainGraph(t),
	}
	for name, g := range graphs {
		t.Run(name, func(t *testing.T) {
			ctx, _ := newContext(g)
			for _, s := range g.Nodes {
				reachable := ReachableNodes(s)
				for _, e := range g.Nodes {
					if s == e || !reachable.Has(e) {
						continue
					}
					p, err := ctx.ImmediatePostdominator(s, e)
					require.NoError(t, err)
					require.NotEqual(t, s, p)

					paths := allPaths(s, e)
					require.NotEmpty(t, paths)
					for _, path := range paths {
						assert.True(t, onPath(path, p), "%s->%s: ipdom %s not on path", s.Name(), e.Name(), p.Name())
					}
					for _, q := range g.Nodes {
						if q == s || q.Block().Index >= p.Block().Index {
							continue
						}
						avoided := false
						for _, path := range paths {
							if !onPath(path, q) {
								avoided = true
								break
							}
						}
						assert.True(t, avoided, "%s->%s: earlier node %s also postdominates", s.Name(), e.Name(), q.Name())
					}
				}
			}
		})
	}
}
