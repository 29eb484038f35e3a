// Package stmt provides C-style printing for statement trees
package stmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/raymyers/ralph-dc/pkg/cond"
)

// Printer outputs statement trees as C source lines. Indentation comes
// from the statements themselves.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new statement printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintBody prints every visible statement of b, one per line
func (p *Printer) PrintBody(b *Body) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		if s.ShouldWrite() {
			p.printStatement(s)
		}
	}
}

func (p *Printer) printStatement(s Statement) {
	switch s := s.(type) {
	case *Simple:
		fmt.Fprintf(p.w, "%s%s\n", spaces(s.Indent), s.Contents)

	case *Label:
		// Labels are printed without indentation
		fmt.Fprintf(p.w, "%s:\n", LabelFor(s.Node))

	case *IfElse:
		space := spaces(s.Indent)
		fmt.Fprintf(p.w, "%sif (%s)\n", space, cond.Format(s.Cond))
		fmt.Fprintf(p.w, "%s{\n", space)
		p.PrintBody(s.IfBody)
		fmt.Fprintf(p.w, "%s}\n", space)
		if s.ElseBody != nil {
			fmt.Fprintf(p.w, "%selse\n", space)
			fmt.Fprintf(p.w, "%s{\n", space)
			p.PrintBody(s.ElseBody)
			fmt.Fprintf(p.w, "%s}\n", space)
		}

	default:
		fmt.Fprintf(p.w, "/* ??? (%T) */\n", s)
	}
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// String renders b the way PrintBody would
func (b *Body) String() string {
	var sb strings.Builder
	NewPrinter(&sb).PrintBody(b)
	return sb.String()
}
