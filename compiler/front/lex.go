package front

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

type (
	Token interface{}

	Char    byte
	Keyword string
	Ident   string

	// Literal is a decoded string literal.
	Literal string

	UnexpectedError struct {
		Token Token
		Want  []Token
	}
)

var (
	ErrUnterminated = errors.New("unterminated string literal")
	ErrBadEscape    = errors.New("unknown escape sequence")
	ErrBadUTF8      = errors.New("invalid utf-8")
)

// next returns the token starting at or after st.
// tst is where the token starts, i is where it ends.
// nil token means end of input.
func (s *State) next(ctx context.Context, st, end int) (tk Token, tst, i int, err error) {
	if tr := tlog.SpanFromContext(ctx); tr.If("next_token") {
		defer func(st int) {
			tr.Printw("next token", "st", st, "tk", tk, "tst", tst, "i", i, "err", err, "from", loc.Callers(1, 3))
		}(st)
	}

	st = skipSpaces(s.b[:end], st)
	i = st

	if i == end {
		return nil, st, i, nil
	}

	c := s.b[i]

	switch c {
	case '(', ')', '{', '}', ',', ';':
		return Char(c), st, i + 1, nil
	case '"', '\'':
		tk, i, err = s.lexString(st, end)
		return tk, st, i, err
	}

	switch {
	case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		e := skipIdent(s.b[:end], i)

		switch string(s.b[i:e]) {
		case "fn", "impure":
			return Keyword(s.b[i:e]), st, e, nil
		}

		return Ident(s.b[i:e]), st, e, nil
	default:
		return nil, st, i, errors.New("unexpected character: %q", c)
	}
}

func (s *State) lexString(st, end int) (tk Token, i int, err error) {
	q := s.b[st]
	i = st + 1

	var b strings.Builder

	for i < end {
		c := s.b[i]

		switch {
		case c == q:
			return Literal(b.String()), i + 1, nil
		case c == '\\':
			if i+1 == end {
				return nil, st, ErrUnterminated
			}

			switch e := s.b[i+1]; e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\', '"', '\'':
				b.WriteByte(e)
			default:
				return nil, i, errors.Wrap(ErrBadEscape, "\\%c", e)
			}

			i += 2
		default:
			b.WriteByte(c)
			i++
		}
	}

	return nil, st, ErrUnterminated
}

func NewUnexpected(got Token, want ...Token) error {
	return UnexpectedError{
		Token: got,
		Want:  want,
	}
}

func (e UnexpectedError) Error() string {
	l := make([]string, len(e.Want))

	for i, w := range e.Want {
		l[i] = tokenName(w)
	}

	got := "EOF"
	if e.Token != nil {
		got = tokenText(e.Token)
	}

	return fmt.Sprintf("unexpected token: %s want: %v", got, strings.Join(l, ", "))
}

func tokenName(t Token) string {
	switch t := t.(type) {
	case Char, Keyword:
		return tokenText(t)
	case Ident:
		return "ident"
	case Literal:
		return "string"
	default:
		return fmt.Sprintf("%T", t)
	}
}

func tokenText(t Token) string {
	switch t := t.(type) {
	case Char:
		return strconv.Quote(string(t))
	case Keyword:
		return strconv.Quote(string(t))
	case Ident:
		return string(t)
	case Literal:
		return strconv.Quote(string(t))
	default:
		return fmt.Sprintf("%v", t)
	}
}

func skipIdent(b []byte, i int) int {
	for i < len(b) && (b[i] >= 'a' && b[i] <= 'z' || b[i] >= 'A' && b[i] <= 'Z' || b[i] >= '0' && b[i] <= '9' || b[i] == '_') {
		i++
	}

	return i
}

func skipSpaces(b []byte, i int) int {
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			i++
			continue
		case '/':
			if i+1 < len(b) && b[i+1] == '/' {
				i = skipLine(b, i)
				continue
			}
		}

		break
	}

	return i
}

func skipLine(b []byte, i int) int {
	for i < len(b) && b[i] != '\n' {
		i++
	}

	return i
}

func (c Char) String() string {
	return string(c)
}
