package vm

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nenclang/nenc/bytecode"
)

type (
	Program struct {
		// BodyLen is the header value. Loading relies on the input size instead.
		BodyLen int

		Funcs map[string]*Func
	}

	Func struct {
		Name string
		Code []bytecode.Instr

		// Offsets[i] is the position of Code[i] inside the encoded body.
		Offsets []int
		Size    int
	}

	reader struct {
		b []byte
		i int
	}

	UnknownOpcodeError struct {
		Op  byte
		Pos int
	}
)

var (
	ErrBadMagic  = errors.New("bad magic")
	ErrTruncated = errors.New("truncated input")
	ErrBadUTF8   = errors.New("invalid utf-8")
	ErrNoMain    = errors.New("no main function found")
)

// Load decodes a NENC blob into a function table.
// Records are read until the input is exhausted.
func Load(ctx context.Context, data []byte) (p *Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "vm: load", "size", len(data))
	defer tr.Finish("err", &err)

	if len(data) < bytecode.MagicSize || !bytes.Equal(data[:bytecode.MagicSize], bytecode.Magic[:]) {
		return nil, ErrBadMagic
	}

	r := &reader{b: data, i: bytecode.MagicSize}

	bodyLen, err := r.uint32()
	if err != nil {
		return nil, errors.Wrap(err, "body length")
	}

	p = &Program{
		BodyLen: bodyLen,
		Funcs:   map[string]*Func{},
	}

	for r.i < len(r.b) {
		st := r.i

		f, err := r.record()
		if err != nil {
			return nil, errors.Wrap(err, "record at 0x%x", st)
		}

		tr.V("load_func").Printw("func", "name", f.Name, "instrs", len(f.Code), "size", f.Size, "pos", st)

		p.Funcs[f.Name] = f
	}

	if _, ok := p.Funcs["main"]; !ok {
		return nil, ErrNoMain
	}

	tr.Printw("program loaded", "funcs", len(p.Funcs), "body_len", bodyLen)

	return p, nil
}

func (r *reader) record() (f *Func, err error) {
	name, err := r.string()
	if err != nil {
		return nil, errors.Wrap(err, "name")
	}

	size, err := r.uint32()
	if err != nil {
		return nil, errors.Wrap(err, "%v: code length", name)
	}

	code, err := r.bytes(size)
	if err != nil {
		return nil, errors.Wrap(err, "%v: code", name)
	}

	f = &Func{
		Name: name,
		Size: size,
	}

	f.Code, f.Offsets, err = decode(code)
	if err != nil {
		return nil, errors.Wrap(err, "%v", name)
	}

	return f, nil
}

// decode parses an opcode stream.
func decode(code []byte) (l []bytecode.Instr, offs []int, err error) {
	r := &reader{b: code}

	l = []bytecode.Instr{}

	for r.i < len(r.b) {
		st := r.i
		op := bytecode.Op(r.b[r.i])
		r.i++

		var x bytecode.Instr

		switch op {
		case bytecode.OpWrite:
			x = bytecode.Write{}
		case bytecode.OpCall:
			var s string
			s, err = r.string()
			x = bytecode.Call(s)
		case bytecode.OpPush:
			var s string
			s, err = r.string()
			x = bytecode.PushString(s)
		default:
			return nil, nil, UnknownOpcodeError{Op: byte(op), Pos: st}
		}

		if err != nil {
			return nil, nil, errors.Wrap(err, "%v at 0x%x", op, st)
		}

		l = append(l, x)
		offs = append(offs, st)
	}

	return l, offs, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || n > len(r.b)-r.i {
		return nil, errors.Wrap(ErrTruncated, "need %d bytes, have %d", n, len(r.b)-r.i)
	}

	b := r.b[r.i : r.i+n]
	r.i += n

	return b, nil
}

func (r *reader) uint16() (int, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}

	return int(bytecode.Uint16(b)), nil
}

func (r *reader) uint32() (int, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}

	return int(bytecode.Uint32(b)), nil
}

func (r *reader) string() (string, error) {
	n, err := r.uint16()
	if err != nil {
		return "", err
	}

	b, err := r.bytes(n)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(b) {
		return "", ErrBadUTF8
	}

	return string(b), nil
}

func (e UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unrecognized opcode %#02x at 0x%x", e.Op, e.Pos)
}
