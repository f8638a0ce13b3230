package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nenclang/nenc/compiler/ast"
)

// parseFunc parses
//
//	[impure] fn name() { stmt; ... }
//
// On error i points at the offending token.
func (s *State) parseFunc(ctx context.Context, st, end int) (f *ast.Func, i int, err error) {
	f = &ast.Func{}

	tk, tst, i, err := s.next(ctx, st, end)
	if err != nil {
		return nil, tst, err
	}

	f.Pos = ast.Pos(tst)

	if tk == Keyword("impure") {
		f.Impure = true

		tk, tst, i, err = s.next(ctx, i, end)
		if err != nil {
			return nil, tst, err
		}
	}

	if tk != Keyword("fn") {
		return nil, tst, NewUnexpected(tk, Keyword("fn"))
	}

	tk, tst, i, err = s.next(ctx, i, end)
	if err != nil {
		return nil, tst, err
	}

	name, ok := tk.(Ident)
	if !ok {
		return nil, tst, NewUnexpected(tk, Ident(""))
	}

	f.Name = string(name)

	for _, want := range []Char{'(', ')'} {
		tk, tst, i, err = s.next(ctx, i, end)
		if err != nil {
			return nil, tst, err
		}

		if tk != want {
			return nil, tst, NewUnexpected(tk, want)
		}
	}

	f.Body, i, err = s.parseBlock(ctx, i, end)
	if err != nil {
		return nil, i, errors.Wrap(err, "func %v", f.Name)
	}

	tlog.SpanFromContext(ctx).V("parse_func").Printw("func", "name", f.Name, "impure", f.Impure, "stmts", len(f.Body))

	return f, i, nil
}

func (s *State) parseBlock(ctx context.Context, st, end int) (b []ast.Stmt, i int, err error) {
	tk, tst, i, err := s.next(ctx, st, end)
	if err != nil {
		return nil, tst, err
	}

	if tk != Char('{') {
		return nil, tst, NewUnexpected(tk, Char('{'))
	}

	b = []ast.Stmt{}

	for {
		tk, tst, e, err := s.next(ctx, i, end)
		if err != nil {
			return nil, tst, err
		}

		switch tk {
		case Char(';'):
			i = e
			continue
		case Char('}'):
			return b, e, nil
		case nil:
			return nil, tst, NewUnexpected(tk, Char('}'))
		}

		var stmt ast.Stmt

		stmt, i, err = s.parseStatement(ctx, i, end)
		if err != nil {
			return nil, i, err
		}

		b = append(b, stmt)
	}
}

func (s *State) parseStatement(ctx context.Context, st, end int) (x ast.Stmt, i int, err error) {
	e, i, err := s.parseExpr(ctx, st, end)
	if err != nil {
		return nil, i, err
	}

	tk, tst, i, err := s.next(ctx, i, end)
	if err != nil {
		return nil, tst, err
	}

	if tk != Char(';') {
		return nil, tst, NewUnexpected(tk, Char(';'))
	}

	return ast.ExprStmt{
		Pos: exprPos(e),
		X:   e,
	}, i, nil
}

func (s *State) parseExpr(ctx context.Context, st, end int) (x ast.Expr, i int, err error) {
	tk, tst, i, err := s.next(ctx, st, end)
	if err != nil {
		return nil, tst, err
	}

	switch tk := tk.(type) {
	case Literal:
		return ast.String{Pos: ast.Pos(tst), Value: string(tk)}, i, nil
	case Ident:
		return s.parseCall(ctx, tst, i, end, string(tk))
	default:
		return nil, tst, NewUnexpected(tk, Ident(""), Literal(""))
	}
}

func (s *State) parseCall(ctx context.Context, pos, st, end int, name string) (x ast.Expr, i int, err error) {
	tk, tst, i, err := s.next(ctx, st, end)
	if err != nil {
		return nil, tst, err
	}

	if tk != Char('(') {
		return nil, tst, NewUnexpected(tk, Char('('))
	}

	c := ast.Call{
		Pos:  ast.Pos(pos),
		Name: name,
	}

	tk, tst, e, err := s.next(ctx, i, end)
	if err != nil {
		return nil, tst, err
	}

	if tk == Char(')') {
		return c, e, nil
	}

	for {
		var arg ast.Expr

		arg, i, err = s.parseExpr(ctx, i, end)
		if err != nil {
			return nil, i, err
		}

		c.Args = append(c.Args, arg)

		tk, tst, i, err = s.next(ctx, i, end)
		if err != nil {
			return nil, tst, err
		}

		switch tk {
		case Char(','):
			continue
		case Char(')'):
			return c, i, nil
		default:
			return nil, tst, NewUnexpected(tk, Char(','), Char(')'))
		}
	}
}

func exprPos(e ast.Expr) ast.Pos {
	switch e := e.(type) {
	case ast.Call:
		return e.Pos
	case ast.String:
		return e.Pos
	default:
		return -1
	}
}
