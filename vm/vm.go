package vm

import (
	"context"
	"fmt"
	"io"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nenclang/nenc/bytecode"
)

type (
	Value interface {
		value()
	}

	String string

	// Stack is the evaluation stack shared by all calls of one run.
	// Callees consume whatever their caller pushed.
	Stack []Value

	Machine struct {
		*Program

		Out io.Writer

		// MaxDepth limits nested calls. Zero means no limit.
		MaxDepth int
	}

	FuncNotFoundError struct {
		Name string
	}
)

var (
	ErrStackUnderflow = errors.New("stack underflow")
	ErrCallDepth      = errors.New("call depth limit exceeded")
)

func (String) value() {}

func New(p *Program, out io.Writer) *Machine {
	return &Machine{
		Program: p,
		Out:     out,
	}
}

// Run loads data and executes its main function writing to out.
func Run(ctx context.Context, data []byte, out io.Writer) error {
	p, err := Load(ctx, data)
	if err != nil {
		return errors.Wrap(err, "load")
	}

	return New(p, out).Run(ctx)
}

// Run executes main with a fresh stack.
func (m *Machine) Run(ctx context.Context) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "vm: run", "funcs", len(m.Funcs))
	defer tr.Finish("err", &err)

	var st Stack

	err = m.Call(ctx, &st, "main")
	if err != nil {
		return err
	}

	if len(st) != 0 {
		tr.V("vm_stack").Printw("values left on stack", "len", len(st))
	}

	return nil
}

// Call runs the named function to completion on st.
func (m *Machine) Call(ctx context.Context, st *Stack, name string) error {
	return m.call(ctx, st, name, 1)
}

func (m *Machine) call(ctx context.Context, st *Stack, name string, depth int) error {
	f, ok := m.Funcs[name]
	if !ok {
		return FuncNotFoundError{Name: name}
	}

	if m.MaxDepth != 0 && depth > m.MaxDepth {
		return errors.Wrap(ErrCallDepth, "%v: depth %d", name, depth)
	}

	tr := tlog.SpanFromContext(ctx)

	for i, x := range f.Code {
		if tr.If("vm_exec") {
			tr.Printw("exec", "func", name, "i", i, "instr", x, "stack", len(*st), "depth", depth)
		}

		err := m.exec(ctx, st, x, depth)
		if err != nil {
			return errors.Wrap(err, "%v+0x%x", name, f.Offsets[i])
		}
	}

	return nil
}

func (m *Machine) exec(ctx context.Context, st *Stack, x bytecode.Instr, depth int) error {
	switch x := x.(type) {
	case bytecode.PushString:
		st.Push(String(x))
	case bytecode.Write:
		v, ok := st.Pop()
		if !ok {
			return ErrStackUnderflow
		}

		return m.write(v)
	case bytecode.Call:
		return m.call(ctx, st, string(x), depth+1)
	default:
		return errors.New("unsupported instruction: %T", x)
	}

	return nil
}

func (m *Machine) write(v Value) error {
	switch v := v.(type) {
	case String:
		_, err := io.WriteString(m.Out, string(v))
		if err != nil {
			return errors.Wrap(err, "write")
		}

		return nil
	default:
		return errors.New("can't write %T", v)
	}
}

func (s *Stack) Push(v Value) {
	*s = append(*s, v)
}

func (s *Stack) Pop() (v Value, ok bool) {
	l := len(*s)
	if l == 0 {
		return nil, false
	}

	v = (*s)[l-1]
	*s = (*s)[:l-1]

	return v, true
}

func (e FuncNotFoundError) Error() string {
	return fmt.Sprintf("function not found: %v", e.Name)
}
