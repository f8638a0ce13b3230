package ir

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/nenclang/nenc/bytecode"
	"github.com/nenclang/nenc/compiler/ast"
)

func fn(name string, body ...ast.Expr) *ast.Func {
	f := &ast.Func{Name: name}

	for _, x := range body {
		f.Body = append(f.Body, ast.ExprStmt{X: x})
	}

	return f
}

func call(name string, args ...ast.Expr) ast.Call {
	return ast.Call{Name: name, Args: args}
}

func str(s string) ast.String {
	return ast.String{Value: s}
}

func TestBuildForwardReference(t *testing.T) {
	f := &ast.File{Funcs: []*ast.Func{
		fn("main", call("helper", str("a"))),
		fn("helper", call("println")),
	}}

	ns, err := Build(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, Namespace{
		"print":   BuiltIn{},
		"println": BuiltIn{},
		"main": Function{Body: []Instr{
			bytecode.PushString("a"),
			bytecode.Call("helper"),
		}},
		"helper": Function{Body: []Instr{
			bytecode.Call("println"),
		}},
	}, ns)
}

func TestBuildArgumentOrder(t *testing.T) {
	f := &ast.File{Funcs: []*ast.Func{
		fn("main", call("a", call("b", str("1"), str("2")), str("3"))),
		fn("a"),
		fn("b"),
	}}

	ns, err := Build(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, Function{Body: []Instr{
		bytecode.PushString("1"),
		bytecode.PushString("2"),
		bytecode.Call("b"),
		bytecode.PushString("3"),
		bytecode.Call("a"),
	}}, ns["main"])
}

func TestBuildUndefined(t *testing.T) {
	f := &ast.File{Funcs: []*ast.Func{
		fn("main", call("zeta"), call("alpha"), call("print", str("x"))),
	}}

	ns, err := Build(context.Background(), f)
	assert.Nil(t, ns)

	var ue UndefinedError
	require.True(t, errors.As(err, &ue), "err: %v", err)

	assert.Equal(t, []string{"alpha", "zeta"}, ue.Names)
	assert.Equal(t, []string{
		"function alpha was called, but not defined",
		"function zeta was called, but not defined",
	}, ue.Messages())
}

func TestBuildRedefinition(t *testing.T) {
	f := &ast.File{Funcs: []*ast.Func{
		fn("main"),
		fn("main"),
	}}

	_, err := Build(context.Background(), f)
	assert.Equal(t, RedefinedError{Name: "main"}, err)
}

func TestBuildBuiltinRedefinition(t *testing.T) {
	f := &ast.File{Funcs: []*ast.Func{
		fn("print"),
		fn("main"),
	}}

	_, err := Build(context.Background(), f)
	assert.Equal(t, BuiltinRedefinedError{Name: "print"}, err)
}

func TestBuildVariable(t *testing.T) {
	b := New()
	b.scope.Define("v", Variable{})

	_, err := b.Build(context.Background(), &ast.File{Funcs: []*ast.Func{
		fn("main", call("v")),
	}})

	var ve VariableError
	require.True(t, errors.As(err, &ve), "err: %v", err)
	assert.Equal(t, VariableError{Name: "v", Op: "call"}, ve)

	b = New()
	b.scope.Define("v", Variable{})

	_, err = b.Build(context.Background(), &ast.File{Funcs: []*ast.Func{
		fn("v"),
	}})
	assert.Equal(t, VariableError{Name: "v", Op: "define function"}, err)
}

func TestBuildNoMain(t *testing.T) {
	_, err := Build(context.Background(), &ast.File{Funcs: []*ast.Func{
		fn("helper"),
	}})
	assert.True(t, errors.Is(err, ErrNoMain), "err: %v", err)
}

func TestScopeLookup(t *testing.T) {
	s := Scope{Namespace{"a": BuiltIn{}, "b": BuiltIn{}}}

	s.Push()
	s.Define("a", Variable{})

	e, depth, ok := s.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 1, depth)
	assert.Equal(t, Variable{}, e)

	e, depth, ok = s.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, 0, depth)
	assert.Equal(t, BuiltIn{}, e)

	_, _, ok = s.Lookup("c")
	assert.False(t, ok)

	ns := s.Pop()
	assert.Equal(t, Namespace{"a": Variable{}}, ns)
	assert.Len(t, s, 1)

	assert.Panics(t, func() { s.Pop() })
}

func TestBuildNotTopLevel(t *testing.T) {
	b := New()
	b.scope.Push()

	_, err := b.Build(context.Background(), &ast.File{Funcs: []*ast.Func{
		fn("main"),
	}})
	assert.True(t, errors.Is(err, ErrNotTopLevel), "err: %v", err)
}
