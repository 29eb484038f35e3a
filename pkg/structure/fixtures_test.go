package structure

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raymyers/ralph-dc/pkg/cond"
	"github.com/raymyers/ralph-dc/pkg/config"
	"github.com/raymyers/ralph-dc/pkg/flowgraph"
)

func eq(l, r string) cond.Condition { return cond.Compare{Left: l, Op: "==", Right: r} }
func ne(l, r string) cond.Condition { return cond.Compare{Left: l, Op: "!=", Right: r} }
func raw(s string) cond.Expr        { return cond.Raw{Text: s} }

func build(t *testing.T, b *flowgraph.Builder) *flowgraph.Graph {
	t.Helper()
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func node(t *testing.T, g *flowgraph.Graph, index int) flowgraph.Node {
	t.Helper()
	n, ok := g.Lookup(index)
	require.True(t, ok, "no block %d", index)
	return n
}

func newContext(g *flowgraph.Graph, mutate ...func(*config.Options)) (*Context, *bytes.Buffer) {
	opts := *config.DefaultOptions()
	for _, m := range mutate {
		m(&opts)
	}
	var warnings bytes.Buffer
	return NewContext(g, opts, &warnings), &warnings
}

func noAndor(o *config.Options) { o.AndorDetection = false }

// if (a0 == 0) { y = 3 } else { y = 2 }, fallthrough side first
func diamondGraph(t *testing.T) *flowgraph.Graph {
	return build(t, flowgraph.NewBuilder().
		Cond(0, eq("a0", "0"), 2, 1, "x = 1;").
		Basic(1, 3, "y = 2;").
		Basic(2, 3, "y = 3;").
		Basic(3, 4, "z = y;").
		Return(4, raw("y"), true))
}

// if (a && b) { x(); } else { y(); } z();
func andGraph(t *testing.T) *flowgraph.Graph {
	return build(t, flowgraph.NewBuilder().
		Cond(0, eq("a", "0"), 3, 1).
		Cond(1, eq("b", "0"), 3, 2).
		Basic(2, 4, "x();").
		Basic(3, 4, "y();").
		Basic(4, 5, "z();").
		Return(5, nil, true))
}

// if (a || b) { x(); } else { y(); } z();
func orGraph(t *testing.T) *flowgraph.Graph {
	return build(t, flowgraph.NewBuilder().
		Cond(0, ne("a", "0"), 2, 1).
		Cond(1, eq("b", "0"), 3, 2).
		Basic(2, 4, "x();").
		Basic(3, 4, "y();").
		Basic(4, 5, "z();").
		Return(5, nil, true))
}

// i = 0; do { i++; } while (i < 10); return i;
func loopGraph(t *testing.T) *flowgraph.Graph {
	return build(t, flowgraph.NewBuilder().
		Basic(0, 1, "i = 0;").
		Basic(1, 2, "i++;").
		Cond(2, cond.Compare{Left: "i", Op: "<", Right: "10"}, 1, 3).
		Return(3, raw("i"), true))
}

// if (x != 0) return 1; foo(); return 0;
func earlyReturnGraph(t *testing.T) *flowgraph.Graph {
	return build(t, flowgraph.NewBuilder().
		Cond(0, eq("x", "0"), 2, 1).
		Return(1, raw("1"), false).
		Basic(2, 3, "foo();").
		Return(3, raw("0"), true))
}

// Both sides return early; the real return block is unreachable.
func bothReturnGraph(t *testing.T) *flowgraph.Graph {
	return build(t, flowgraph.NewBuilder().
		Cond(0, eq("x", "0"), 2, 1).
		Return(1, raw("1"), false).
		Return(2, raw("2"), false).
		Return(3, nil, true))
}

// Block 3 is reached from 0 directly and from 2 by falling through, so
// only one of its parents is postdominated by it.
func ambiguousGraph(t *testing.T) *flowgraph.Graph {
	return build(t, flowgraph.NewBuilder().
		Cond(0, cond.Raw{Text: "p"}, 3, 1).
		Cond(1, cond.Raw{Text: "q"}, 2, 4).
		Basic(2, 3, "b();").
		Basic(3, 5, "t();").
		Basic(4, 5, "u();").
		Basic(5, 6, "e();").
		Return(6, nil, true))
}

// Looks like a two-condition chain, but a basic block sits between the
// two tests.
func brokenChainGraph(t *testing.T) *flowgraph.Graph {
	return build(t, flowgraph.NewBuilder().
		Cond(0, cond.Raw{Text: "p"}, 3, 1).
		Basic(1, 2, "a();").
		Cond(2, cond.Raw{Text: "q"}, 3, 4).
		Basic(3, 5, "t();").
		Basic(4, 5, "u();").
		Basic(5, 6).
		Return(6, nil, true))
}

// An endless loop: no return block at all.
func spinGraph(t *testing.T) *flowgraph.Graph {
	return build(t, flowgraph.NewBuilder().
		Basic(0, 1, "init();").
		Basic(1, 2, "work();").
		Basic(2, 1, "more();"))
}
