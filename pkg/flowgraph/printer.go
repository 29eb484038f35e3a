// Dump format for flow graphs: one line per node, then its statements.

package flowgraph

import (
	"fmt"
	"io"

	"github.com/raymyers/ralph-dc/pkg/cond"
)

// Printer outputs a flow graph in a readable format
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new flow graph printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintGraph prints every node of g in code order
func (p *Printer) PrintGraph(name string, g *Graph) {
	fmt.Fprintf(p.w, "%s() {\n", name)
	for _, n := range g.Nodes {
		p.printNode(n)
	}
	fmt.Fprintln(p.w, "}")
}

func (p *Printer) printNode(n Node) {
	switch n := n.(type) {
	case *BasicNode:
		fmt.Fprintf(p.w, "  %s: basic -> %s", n.Name(), n.Successor.Name())
	case *ConditionalNode:
		fmt.Fprintf(p.w, "  %s: cond if (%s) -> %s else -> %s",
			n.Name(), cond.Format(n.Condition()), n.Taken.Name(), n.Fallthrough.Name())
		if n.IsLoop() {
			fmt.Fprint(p.w, " [loop]")
		}
	case *ReturnNode:
		fmt.Fprintf(p.w, "  %s: return", n.Name())
		if v := n.Block().Info.ReturnValue; v != nil {
			fmt.Fprintf(p.w, " %s", v)
		}
		if !n.Real {
			fmt.Fprint(p.w, " [dup]")
		}
	default:
		fmt.Fprintf(p.w, "  ??? (%T)", n)
	}
	if parents := n.Parents(); len(parents) > 0 {
		fmt.Fprint(p.w, " ; preds")
		for _, par := range parents {
			fmt.Fprintf(p.w, " %s", par.Name())
		}
	}
	fmt.Fprintln(p.w)
	for _, item := range n.Block().Info.ToWrite {
		if item.ShouldWrite() {
			fmt.Fprintf(p.w, "      %s\n", item)
		}
	}
}
