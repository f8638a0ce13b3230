package ir

import (
	"fmt"
	"sort"
	"strings"

	"tlog.app/go/errors"

	"github.com/nenclang/nenc/bytecode"
)

type (
	Instr = bytecode.Instr

	// Element is what a name is bound to in a Namespace.
	Element interface {
		element()
	}

	Function struct {
		Body []Instr
	}

	// Placeholder marks a name called before its definition.
	Placeholder struct{}

	// BuiltIn is compiled down to a fixed template by the back end.
	BuiltIn struct{}

	// Variable is reserved. Calling or redefining it is an error.
	Variable struct{}

	Namespace map[string]Element

	// Scope is a stack of namespaces, innermost last.
	Scope []Namespace

	RedefinedError struct {
		Name string
	}

	BuiltinRedefinedError struct {
		Name string
	}

	VariableError struct {
		Name string
		Op   string
	}

	UndefinedError struct {
		Names []string
	}
)

var (
	ErrNoMain      = errors.New("no main function defined")
	ErrNotTopLevel = errors.New("functions can only be defined at the top level")
)

func (Function) element()    {}
func (Placeholder) element() {}
func (BuiltIn) element()     {}
func (Variable) element()    {}

// Lookup walks the scope from innermost to outermost namespace.
func (s Scope) Lookup(name string) (e Element, depth int, ok bool) {
	for depth = len(s) - 1; depth >= 0; depth-- {
		e, ok = s[depth][name]
		if ok {
			return e, depth, true
		}
	}

	return nil, -1, false
}

func (s *Scope) Push() {
	*s = append(*s, Namespace{})
}

func (s *Scope) Pop() Namespace {
	l := len(*s)
	if l == 1 {
		panic("pop of the last namespace")
	}

	ns := (*s)[l-1]
	*s = (*s)[:l-1]

	return ns
}

func (s Scope) Top() Namespace {
	return s[len(s)-1]
}

func (s Scope) Define(name string, e Element) {
	s.Top()[name] = e
}

// Names returns namespace keys in ascending order.
func (ns Namespace) Names() []string {
	l := make([]string, 0, len(ns))

	for name := range ns {
		l = append(l, name)
	}

	sort.Strings(l)

	return l
}

// Check reports all placeholders left in the namespace
// and requires main to be defined.
func (ns Namespace) Check() error {
	var undef []string

	for _, name := range ns.Names() {
		if _, ok := ns[name].(Placeholder); ok {
			undef = append(undef, name)
		}
	}

	if len(undef) != 0 {
		return UndefinedError{Names: undef}
	}

	if _, ok := ns["main"].(Function); !ok {
		return ErrNoMain
	}

	return nil
}

func (f Function) String() string {
	var b strings.Builder

	b.WriteString("Function[")

	for i, x := range f.Body {
		if i != 0 {
			b.WriteString(", ")
		}

		fmt.Fprintf(&b, "%v", x)
	}

	b.WriteString("]")

	return b.String()
}

func (Placeholder) String() string { return "Placeholder" }
func (BuiltIn) String() string     { return "BuiltIn" }
func (Variable) String() string    { return "Variable" }

func (e RedefinedError) Error() string {
	return fmt.Sprintf("function %v already defined", e.Name)
}

func (e BuiltinRedefinedError) Error() string {
	return fmt.Sprintf("function %v is a built-in and can't be redefined", e.Name)
}

func (e VariableError) Error() string {
	return fmt.Sprintf("%v: %v is a variable", e.Op, e.Name)
}

func (e UndefinedError) Error() string {
	if len(e.Names) == 1 {
		return e.Messages()[0]
	}

	return fmt.Sprintf("%d functions called, but not defined: %v", len(e.Names), strings.Join(e.Names, ", "))
}

// Messages returns one diagnostic line per undefined name.
func (e UndefinedError) Messages() []string {
	l := make([]string, len(e.Names))

	for i, name := range e.Names {
		l[i] = fmt.Sprintf("function %v was called, but not defined", name)
	}

	return l
}
