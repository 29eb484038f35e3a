// Package stmt defines the statement tree produced by control-flow
// structuring: flat statements, if/else blocks and goto labels, each
// carrying its own indentation.
package stmt

import (
	"fmt"

	"github.com/raymyers/ralph-dc/pkg/cond"
	"github.com/raymyers/ralph-dc/pkg/flowgraph"
)

// Statement is the interface for statement-tree entries
type Statement interface {
	// ShouldWrite reports whether the statement appears in the output
	ShouldWrite() bool
	implStatement()
}

// TargetSet answers whether a node is the target of some goto
type TargetSet interface {
	Has(n flowgraph.Node) bool
}

// Simple is pre-rendered text at a fixed indentation
type Simple struct {
	Indent   int
	Contents string
}

// IfElse is "if (Cond) { IfBody } else { ElseBody }"; ElseBody may be nil
type IfElse struct {
	Cond     cond.Condition
	Indent   int
	IfBody   *Body
	ElseBody *Body
}

// Label marks the position of a node. It is always placed, but only
// printed once the node has become a goto target.
type Label struct {
	Node    flowgraph.Node
	Targets TargetSet
}

func (*Simple) implStatement() {}
func (*IfElse) implStatement() {}
func (*Label) implStatement()  {}

func (*Simple) ShouldWrite() bool { return true }
func (*IfElse) ShouldWrite() bool { return true }

func (l *Label) ShouldWrite() bool {
	return l.Targets != nil && l.Targets.Has(l.Node)
}

// LabelFor returns the label name used for n
func LabelFor(n flowgraph.Node) string {
	return fmt.Sprintf("block_%d", n.Block().Index)
}

// Body is an ordered list of statements
type Body struct {
	PrintNodeComment bool // emit "// Node N" before each node's content
	Statements       []Statement
}

// NewBody creates an empty body
func NewBody(printNodeComment bool) *Body {
	return &Body{PrintNodeComment: printNodeComment}
}

// AddNode appends the translated statements of n. With node comments
// enabled, a header comment is written if the node has content or if
// commentEmpty is set.
func (b *Body) AddNode(n flowgraph.Node, indent int, commentEmpty bool) {
	items := n.Block().Info.ToWrite
	anyToWrite := false
	for _, item := range items {
		if item.ShouldWrite() {
			anyToWrite = true
			break
		}
	}

	if b.PrintNodeComment && (anyToWrite || commentEmpty) {
		b.AddComment(indent, "Node "+n.Name())
	}
	for _, item := range items {
		if item.ShouldWrite() {
			b.Statements = append(b.Statements, &Simple{Indent: indent, Contents: item.String()})
		}
	}
}

// AddStatement appends s
func (b *Body) AddStatement(s Statement) {
	b.Statements = append(b.Statements, s)
}

// AddComment appends a "// contents" line
func (b *Body) AddComment(indent int, contents string) {
	b.AddStatement(&Simple{Indent: indent, Contents: "// " + contents})
}

// AddIfElse appends an if/else block
func (b *Body) AddIfElse(s *IfElse) {
	b.AddStatement(s)
}

// Len returns the number of statements, visible or not
func (b *Body) Len() int {
	return len(b.Statements)
}
