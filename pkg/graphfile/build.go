package graphfile

import (
	"errors"
	"fmt"

	"github.com/raymyers/ralph-dc/pkg/cgen"
	"github.com/raymyers/ralph-dc/pkg/cond"
	"github.com/raymyers/ralph-dc/pkg/flowgraph"
)

// ErrMalformed is wrapped by every error about the content of a graph file
var ErrMalformed = errors.New("malformed graph file")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// BuildFunctions converts every function of f
func (f *File) BuildFunctions() ([]*cgen.Function, error) {
	fns := make([]*cgen.Function, 0, len(f.Functions))
	for i := range f.Functions {
		fn, err := f.Functions[i].Build()
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, nil
}

// Build converts the function description into a flow graph plus the
// information needed to print its signature and declarations.
func (s *FunctionSpec) Build() (*cgen.Function, error) {
	if s.Name == "" {
		return nil, malformed("function without a name")
	}

	b := flowgraph.NewBuilder()
	for i := range s.Blocks {
		if err := s.addBlock(b, i); err != nil {
			return nil, fmt.Errorf("function %s: %w", s.Name, err)
		}
	}
	g, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("function %s: %w: %w", s.Name, ErrMalformed, err)
	}

	return &cgen.Function{
		Name:       s.Name,
		ReturnType: s.ReturnType,
		Args:       vars(s.Args),
		Locals:     vars(s.Locals),
		Temps:      vars(s.Temps),
		Phis:       vars(s.Phis),
		Graph:      g,
	}, nil
}

func (s *FunctionSpec) addBlock(b *flowgraph.Builder, i int) error {
	blk := &s.Blocks[i]

	if blk.Return {
		if blk.Branch != nil || blk.Taken != nil || blk.Next != nil {
			return malformed("return block %d has outgoing edges", blk.Index)
		}
		var value cond.Expr
		if blk.Value != "" {
			value = cond.Raw{Text: blk.Value}
		}
		b.Return(blk.Index, value, !blk.Dup, blk.Stmts...)
		return nil
	}
	if blk.Dup || blk.Value != "" {
		return malformed("block %d is not a return block", blk.Index)
	}

	next, err := s.nextOf(i)
	if err != nil {
		return err
	}

	if blk.Branch == nil {
		if blk.Taken != nil {
			return malformed("block %d has a taken edge but no branch", blk.Index)
		}
		b.Basic(blk.Index, next, blk.Stmts...)
		return nil
	}

	if blk.Taken == nil {
		return malformed("conditional block %d has no taken edge", blk.Index)
	}
	c, err := blk.Branch.Condition()
	if err != nil {
		return fmt.Errorf("block %d: %w", blk.Index, err)
	}
	b.Cond(blk.Index, c, *blk.Taken, next, blk.Stmts...)
	return nil
}

// nextOf returns the explicit next edge of block i, or the index of the
// block listed after it.
func (s *FunctionSpec) nextOf(i int) (int, error) {
	if n := s.Blocks[i].Next; n != nil {
		return *n, nil
	}
	if i+1 < len(s.Blocks) {
		return s.Blocks[i+1].Index, nil
	}
	return 0, malformed("last block %d falls off the end of the function", s.Blocks[i].Index)
}

// Condition converts the branch description
func (c *BranchSpec) Condition() (cond.Condition, error) {
	if c.Raw != "" {
		if c.Left != "" || c.Op != "" || c.Right != "" {
			return nil, malformed("branch has both raw text and a comparison")
		}
		return cond.Raw{Text: c.Raw}, nil
	}
	if c.Left == "" || c.Right == "" {
		return nil, malformed("branch comparison needs both operands")
	}
	if !cond.ValidCompareOp(c.Op) {
		return nil, malformed("unknown comparison operator %q", c.Op)
	}
	return cond.Compare{Left: c.Left, Op: c.Op, Right: c.Right}, nil
}

func vars(specs []VarSpec) []cgen.Var {
	if len(specs) == 0 {
		return nil
	}
	vs := make([]cgen.Var, len(specs))
	for i, s := range specs {
		vs[i] = cgen.Var{Type: s.Type, Name: s.Name}
	}
	return vs
}
