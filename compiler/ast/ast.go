package ast

type (
	Node interface{}

	Expr interface{}
	Stmt interface{}

	// Pos is a byte offset into the parsed text.
	Pos int

	File struct {
		Name string

		Funcs []*Func
	}

	Func struct {
		Pos    Pos
		Name   string
		Impure bool

		Body []Stmt
	}

	ExprStmt struct {
		Pos Pos
		X   Expr
	}

	Call struct {
		Pos  Pos
		Name string
		Args []Expr
	}

	String struct {
		Pos   Pos
		Value string
	}
)
