package back

import (
	"context"
	"fmt"
	"math"

	"nikand.dev/go/heap"
	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/nenclang/nenc/bytecode"
	"github.com/nenclang/nenc/compiler/ir"
)

type (
	Compiler struct {
		// Templates maps built-in names to their encoded bodies.
		Templates map[string][]byte
	}

	// InvariantError means the namespace handed to the encoder
	// was not produced by a successful ir build.
	InvariantError struct {
		Name string
		Elem ir.Element
		From loc.PC
	}
)

func New() *Compiler {
	return &Compiler{
		Templates: Builtins,
	}
}

func Encode(ctx context.Context, ns ir.Namespace) ([]byte, error) {
	return New().CompilePackage(ctx, nil, ns)
}

// CompilePackage appends the NENC header and one record per namespace entry to b.
func (c *Compiler) CompilePackage(ctx context.Context, b []byte, ns ir.Namespace) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: compile package", "names", len(ns))
	defer tr.Finish("err", &err)

	names := heap.Heap[string]{Less: namesLess}

	for name := range ns {
		names.Push(name)
	}

	st := len(b)
	b = bytecode.AppendHeader(b, 0)

	for names.Len() != 0 {
		name := names.Pop()

		b, err = c.compileRecord(ctx, b, name, ns[name])
		if err != nil {
			return nil, errors.Wrap(err, "func %v", name)
		}
	}

	body := len(b) - st - bytecode.HeaderSize
	if uint64(body) > math.MaxUint32 {
		return nil, errors.New("program too big: %d bytes", body)
	}

	bytecode.PutUint32(b[st+bytecode.MagicSize:], body)

	tr.Printw("program", "body_len", body)

	return b, nil
}

func (c *Compiler) compileRecord(ctx context.Context, b []byte, name string, e ir.Element) (_ []byte, err error) {
	var code []byte

	switch e := e.(type) {
	case ir.Function:
		code, err = c.compileFunc(ctx, nil, e)
		if err != nil {
			return nil, err
		}
	case ir.BuiltIn:
		t, ok := c.Templates[name]
		if !ok {
			return nil, NewInvariant(name, e)
		}

		code = t
	default:
		return nil, NewInvariant(name, e)
	}

	b, err = bytecode.AppendString(b, name)
	if err != nil {
		return nil, errors.Wrap(err, "name")
	}

	b = bytecode.AppendUint32(b, len(code))
	b = append(b, code...)

	tlog.SpanFromContext(ctx).V("record").Printw("record", "name", name, "code_len", len(code))

	return b, nil
}

func (c *Compiler) compileFunc(ctx context.Context, b []byte, f ir.Function) (_ []byte, err error) {
	for i, x := range f.Body {
		b, err = bytecode.AppendInstr(b, x)
		if err != nil {
			return nil, errors.Wrap(err, "instr %d", i)
		}
	}

	return b, nil
}

func namesLess(d []string, i, j int) bool {
	return d[i] < d[j]
}

func NewInvariant(name string, e ir.Element) InvariantError {
	return InvariantError{
		Name: name,
		Elem: e,
		From: loc.Caller(1),
	}
}

func (e InvariantError) Error() string {
	switch e.Elem.(type) {
	case ir.BuiltIn:
		return fmt.Sprintf("internal error: built-in %v has no template (at %v)", e.Name, e.From)
	default:
		return fmt.Sprintf("internal error: unexpected %v for %v (at %v)", e.Elem, e.Name, e.From)
	}
}
