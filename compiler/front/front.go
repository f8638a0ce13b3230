package front

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nenclang/nenc/compiler/ast"
)

type (
	State struct {
		b []byte // all files concatenated

		files []file
	}

	file struct {
		Name string
		Base int
		Size int
	}

	Position struct {
		File string
		Line int
		Col  int
	}

	SyntaxError struct {
		Pos Position
		Err error
	}
)

func New() *State {
	return &State{}
}

func ParseFile(ctx context.Context, name string) (*ast.File, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	return Parse(ctx, name, text)
}

func Parse(ctx context.Context, name string, text []byte) (*ast.File, error) {
	s := New()

	s.AddFile(ctx, name, text)

	return s.Parse(ctx)
}

func (s *State) AddFile(ctx context.Context, name string, text []byte) {
	f := file{
		Name: name,
		Base: len(s.b),
		Size: len(text),
	}

	s.b = append(s.b, text...)

	s.files = append(s.files, f)
}

// Parse parses all added files into one ast.File.
// Function order follows the order of files and definitions.
func (s *State) Parse(ctx context.Context) (x *ast.File, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "front: parse", "files", len(s.files), "size", len(s.b))
	defer tr.Finish("err", &err)

	x = &ast.File{}

	if len(s.files) != 0 {
		x.Name = s.files[0].Name
	}

	for _, f := range s.files {
		err = s.parseFile(ctx, x, f)
		if err != nil {
			return nil, err
		}
	}

	tr.Printw("parsed", "funcs", len(x.Funcs))

	return x, nil
}

func (s *State) parseFile(ctx context.Context, x *ast.File, f file) (err error) {
	end := f.Base + f.Size

	if p := invalidUTF8(s.b[f.Base:end]); p >= 0 {
		return s.syntaxError(f.Base+p, ErrBadUTF8)
	}

	var fn *ast.Func
	var tk Token
	var tst int

	for i := f.Base; ; {
		tk, tst, _, err = s.next(ctx, i, end)
		if err != nil {
			return s.syntaxError(tst, err)
		}

		if tk == nil {
			return nil
		}

		fn, i, err = s.parseFunc(ctx, i, end)
		if err != nil {
			return s.syntaxError(i, err)
		}

		x.Funcs = append(x.Funcs, fn)
	}
}

func invalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}

		i += size
	}

	return -1
}

// Position converts an ast.Pos into a file:line:col position.
func (s *State) Position(pos ast.Pos) (p Position) {
	i := int(pos)

	for _, f := range s.files {
		if i < f.Base || i > f.Base+f.Size {
			continue
		}

		text := s.b[f.Base:i]

		p.File = f.Name
		p.Line = 1 + bytes.Count(text, []byte{'\n'})
		p.Col = 1 + len(text) - (bytes.LastIndexByte(text, '\n') + 1)

		return p
	}

	return Position{Line: 1, Col: 1 + i}
}

func (s *State) syntaxError(pos int, err error) error {
	return SyntaxError{
		Pos: s.Position(ast.Pos(pos)),
		Err: err,
	}
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}

	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%v: %v", e.Pos, e.Err)
}

func (e SyntaxError) Unwrap() error { return e.Err }
