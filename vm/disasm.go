package vm

import (
	"io"

	"github.com/nikandfor/hacked/hfmt"
	"nikand.dev/go/heap"
	"tlog.app/go/errors"

	"github.com/nenclang/nenc/bytecode"
)

// Disassemble writes a listing of every function in name order.
func Disassemble(w io.Writer, p *Program) error {
	names := heap.Heap[string]{Less: func(d []string, i, j int) bool { return d[i] < d[j] }}

	for name := range p.Funcs {
		names.Push(name)
	}

	var b []byte

	for i := 0; names.Len() != 0; i++ {
		if i != 0 {
			b = append(b, '\n')
		}

		b = AppendFunc(b, p.Funcs[names.Pop()])
	}

	_, err := w.Write(b)
	if err != nil {
		return errors.Wrap(err, "write")
	}

	return nil
}

func AppendFunc(b []byte, f *Func) []byte {
	b = hfmt.Appendf(b, "func %s (%d instrs, %d bytes)\n", f.Name, len(f.Code), f.Size)

	for i, x := range f.Code {
		b = hfmt.Appendf(b, "\t%04x  %02X  ", f.Offsets[i], byte(x.Op()))

		switch x := x.(type) {
		case bytecode.PushString:
			b = hfmt.Appendf(b, "%-6v %q\n", x.Op(), string(x))
		case bytecode.Call:
			b = hfmt.Appendf(b, "%-6v %s\n", x.Op(), string(x))
		default:
			b = hfmt.Appendf(b, "%v\n", x.Op())
		}
	}

	return b
}
