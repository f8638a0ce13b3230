package ir

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nenclang/nenc/bytecode"
	"github.com/nenclang/nenc/compiler/ast"
)

type (
	Builder struct {
		scope Scope
	}
)

// Builtins are seeded into the top namespace before any definition.
// Each one must have a template in the back end.
var Builtins = []string{"print", "println"}

func New() *Builder {
	return NewWithBuiltins(Builtins...)
}

func NewWithBuiltins(names ...string) *Builder {
	top := Namespace{}

	for _, name := range names {
		top[name] = BuiltIn{}
	}

	return &Builder{
		scope: Scope{top},
	}
}

func Build(ctx context.Context, f *ast.File) (Namespace, error) {
	return New().Build(ctx, f)
}

// Build lowers every function of f and returns the resolved top namespace.
// Names called but never defined are reported together in UndefinedError.
func (b *Builder) Build(ctx context.Context, f *ast.File) (ns Namespace, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "ir: build", "file", f.Name, "funcs", len(f.Funcs))
	defer tr.Finish("err", &err)

	for _, fn := range f.Funcs {
		err = b.defineFunc(ctx, fn)
		if err != nil {
			return nil, err
		}
	}

	if len(b.scope) != 1 {
		return nil, errors.New("unbalanced scope: %d namespaces", len(b.scope))
	}

	ns = b.scope.Top()

	if tr.If("dump_ir") {
		for _, name := range ns.Names() {
			tr.Printw("element", "name", name, "elem", ns[name])
		}
	}

	err = ns.Check()
	if err != nil {
		return nil, err
	}

	return ns, nil
}

func (b *Builder) defineFunc(ctx context.Context, fn *ast.Func) error {
	if e, _, ok := b.scope.Lookup(fn.Name); ok {
		switch e.(type) {
		case Function:
			return RedefinedError{Name: fn.Name}
		case BuiltIn:
			return BuiltinRedefinedError{Name: fn.Name}
		case Variable:
			return VariableError{Name: fn.Name, Op: "define function"}
		case Placeholder:
		}
	}

	if len(b.scope) != 1 {
		return errors.Wrap(ErrNotTopLevel, "func %v", fn.Name)
	}

	body := []Instr{}

	for _, st := range fn.Body {
		var err error

		body, err = b.lowerStmt(ctx, body, st)
		if err != nil {
			return errors.Wrap(err, "func %v", fn.Name)
		}
	}

	b.scope.Define(fn.Name, Function{Body: body})

	tlog.SpanFromContext(ctx).V("ir").Printw("define func", "name", fn.Name, "impure", fn.Impure, "instrs", len(body))

	return nil
}

func (b *Builder) lowerStmt(ctx context.Context, body []Instr, st ast.Stmt) ([]Instr, error) {
	switch st := st.(type) {
	case ast.ExprStmt:
		return b.lowerExpr(ctx, body, st.X)
	default:
		return body, errors.New("unsupported stmt: %T", st)
	}
}

func (b *Builder) lowerExpr(ctx context.Context, body []Instr, x ast.Expr) (_ []Instr, err error) {
	switch x := x.(type) {
	case ast.String:
		return append(body, bytecode.PushString(x.Value)), nil
	case ast.Call:
		for i, arg := range x.Args {
			body, err = b.lowerExpr(ctx, body, arg)
			if err != nil {
				return body, errors.Wrap(err, "%v arg %d", x.Name, i)
			}
		}

		e, _, ok := b.scope.Lookup(x.Name)
		switch e.(type) {
		case Variable:
			return body, VariableError{Name: x.Name, Op: "call"}
		case nil:
			if !ok {
				// functions live in the outermost namespace only
				b.scope[0][x.Name] = Placeholder{}
			}
		}

		return append(body, bytecode.Call(x.Name)), nil
	default:
		return body, errors.New("unsupported expr: %T", x)
	}
}
