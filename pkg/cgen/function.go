// Package cgen writes structured functions as C source: signature,
// variable declarations and the statement tree of the body.
package cgen

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/raymyers/ralph-dc/pkg/config"
	"github.com/raymyers/ralph-dc/pkg/flowgraph"
	"github.com/raymyers/ralph-dc/pkg/stmt"
	"github.com/raymyers/ralph-dc/pkg/structure"
)

// ErrEmptyFunction is returned for a function without blocks
var ErrEmptyFunction = errors.New("function has no blocks")

// Var is a typed variable: an argument, a local or a temporary
type Var struct {
	Type string
	Name string
}

// Decl renders the variable as a C declarator, e.g. "int x" or "char *s"
func (v Var) Decl() string {
	if v.Type == "" {
		return "int " + v.Name
	}
	if strings.HasSuffix(v.Type, "*") {
		return v.Type + v.Name
	}
	return v.Type + " " + v.Name
}

// Function is everything needed to print one function
type Function struct {
	Name       string
	ReturnType string // used unless no return node yields a value
	Args       []Var
	Locals     []Var // in stack order; declared last to first
	Temps      []Var
	Phis       []Var
	Graph      *flowgraph.Graph
}

// WriteFunction structures fn and writes it to w. Warnings, including the
// fallback to goto-only output, go to warnings.
func WriteFunction(w io.Writer, fn *Function, opts config.Options, warnings io.Writer) error {
	if fn.Graph == nil || len(fn.Graph.Nodes) == 0 {
		return fmt.Errorf("function %s: %w", fn.Name, ErrEmptyFunction)
	}
	if warnings == nil {
		warnings = io.Discard
	}

	ctx, body, err := buildBody(fn, opts, warnings)
	if err != nil {
		return fmt.Errorf("function %s: %w", fn.Name, err)
	}

	fmt.Fprintf(w, "%s %s(%s)\n{\n", returnType(ctx), fn.Name, argList(fn.Args))
	writeDecls(w, fn, ctx.IndentStep())
	stmt.NewPrinter(w).PrintBody(body)
	fmt.Fprintln(w, "}")
	return nil
}

// buildBody produces the body of fn, structured if enabled. A
// structuring failure falls back to naive output in a fresh context.
func buildBody(fn *Function, opts config.Options, warnings io.Writer) (*structure.Context, *stmt.Body, error) {
	g := fn.Graph
	ret := g.ReturnNode()
	if ret == nil {
		ret = flowgraph.NewSentinel()
	}

	newContext := func() *structure.Context {
		ctx := structure.NewContext(g, opts, warnings)
		ctx.ReturnType = fn.ReturnType
		return ctx
	}

	ctx := newContext()
	var body *stmt.Body
	var err error
	if opts.StructureIfs {
		body, err = ctx.BuildFlowgraphBetween(g.EntryNode(), ret, ctx.IndentStep())
		if errors.Is(err, structure.ErrStructuring) {
			fmt.Fprintf(warnings, "ralph-dc: warning: %s: %v\n", fn.Name, err)
			fmt.Fprintf(warnings, "ralph-dc: warning: %s: falling back to goto-only output\n", fn.Name)
			ctx = newContext()
			body, err = ctx.BuildNaive(g.Nodes)
		}
	} else {
		body, err = ctx.BuildNaive(g.Nodes)
	}
	if err != nil {
		return nil, nil, err
	}

	if !ret.IsSentinel() {
		ctx.WriteReturn(body, ret, ctx.IndentStep(), true)
	}
	return ctx, body, nil
}

func returnType(ctx *structure.Context) string {
	if ctx.IsVoid {
		return "void"
	}
	if ctx.ReturnType == "" {
		return "int"
	}
	return ctx.ReturnType
}

func argList(args []Var) string {
	if len(args) == 0 {
		return "void"
	}
	decls := make([]string, len(args))
	for i, a := range args {
		decls[i] = a.Decl()
	}
	return strings.Join(decls, ", ")
}

func writeDecls(w io.Writer, fn *Function, indent int) {
	space := strings.Repeat(" ", indent)
	anyDecl := false

	for i := len(fn.Locals) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "%s%s;\n", space, fn.Locals[i].Decl())
		anyDecl = true
	}

	seen := make(map[string]bool)
	var temps []string
	for _, v := range fn.Temps {
		d := v.Decl() + ";"
		if !seen[d] {
			seen[d] = true
			temps = append(temps, d)
		}
	}
	sort.Strings(temps)
	for _, d := range temps {
		fmt.Fprintf(w, "%s%s\n", space, d)
		anyDecl = true
	}

	for _, v := range fn.Phis {
		fmt.Fprintf(w, "%s%s;\n", space, v.Decl())
		anyDecl = true
	}

	if anyDecl {
		fmt.Fprintln(w)
	}
}

// WriteProgram writes every function, separated by blank lines. It stops
// at the first error.
func WriteProgram(w io.Writer, fns []*Function, opts config.Options, warnings io.Writer) error {
	for i, fn := range fns {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := WriteFunction(w, fn, opts, warnings); err != nil {
			return err
		}
	}
	return nil
}
