// Package structure recovers if/else nesting, && / || conditions and early
// returns from a function's flow graph, producing a statement tree. When
// the graph cannot be structured, BuildNaive emits the same tree type
// using gotos only.
package structure

import (
	"io"

	"github.com/raymyers/ralph-dc/pkg/config"
	"github.com/raymyers/ralph-dc/pkg/flowgraph"
)

// Context is the state of structuring one function. It is created per
// function and discarded once the function has been rendered.
type Context struct {
	Graph   *flowgraph.Graph
	Options config.Options

	// ReturnType is the declared return type of the function
	ReturnType string
	// IsVoid stays true until some return node returns a value
	IsVoid bool

	// Warnings receives diagnostics; nil discards them
	Warnings io.Writer

	reachableWithout map[reachKey]bool
	gotoNodes        flowgraph.NodeSet
	emittedNodes     flowgraph.NodeSet
	hasWarned        bool
}

// NewContext creates a structuring context for g
func NewContext(g *flowgraph.Graph, opts config.Options, warnings io.Writer) *Context {
	if warnings == nil {
		warnings = io.Discard
	}
	return &Context{
		Graph:            g,
		Options:          opts,
		IsVoid:           true,
		Warnings:         warnings,
		reachableWithout: make(map[reachKey]bool),
	}
}

// GotoTargets returns the nodes that some goto jumps to. Labels of these
// nodes are printed.
func (c *Context) GotoTargets() *flowgraph.NodeSet {
	return &c.gotoNodes
}

// Emitted reports whether n's content has already been written
func (c *Context) Emitted(n flowgraph.Node) bool {
	return c.emittedNodes.Has(n)
}

// IndentStep returns the number of spaces per nesting level
func (c *Context) IndentStep() int {
	if c.Options.IndentWidth <= 0 {
		return 4
	}
	return c.Options.IndentWidth
}
