package vm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/nenclang/nenc/bytecode"
)

func TestLoad(t *testing.T) {
	data := blob(
		record("main", cat(push("hi"), call("print"))...),
		record("print", write),
	)

	p, err := Load(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, len(data)-bytecode.HeaderSize, p.BodyLen)
	require.Len(t, p.Funcs, 2)

	assert.Equal(t, &Func{
		Name:    "main",
		Code:    []bytecode.Instr{bytecode.PushString("hi"), bytecode.Call("print")},
		Offsets: []int{0, 5},
		Size:    13,
	}, p.Funcs["main"])

	assert.Equal(t, []bytecode.Instr{bytecode.Write{}}, p.Funcs["print"].Code)
}

func TestLoadEmptyBody(t *testing.T) {
	p, err := Load(context.Background(), blob(record("main")))
	require.NoError(t, err)
	assert.Empty(t, p.Funcs["main"].Code)
}

func TestLoadDuplicateLastWins(t *testing.T) {
	p, err := Load(context.Background(), blob(
		record("main", write),
		record("main", push("x")...),
	))
	require.NoError(t, err)
	assert.Equal(t, []bytecode.Instr{bytecode.PushString("x")}, p.Funcs["main"].Code)
}

func TestLoadErrors(t *testing.T) {
	good := blob(record("main", cat(push("hi"), []byte{write})...))

	for _, tc := range []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, ErrBadMagic},
		{"short_magic", []byte("NEN"), ErrBadMagic},
		{"bad_magic", append([]byte("NENX"), good[4:]...), ErrBadMagic},
		{"no_body_len", []byte("NENC\x00\x00"), ErrTruncated},
		{"no_main", blob(record("other", write)), ErrNoMain},
		{"only_header", blob(), ErrNoMain},
		{"truncated_name_len", append(blob(record("main")), 0x00), ErrTruncated},
		{"truncated_name", append(blob(record("main")), 0x00, 0x05, 'a'), ErrTruncated},
		{"truncated_code_len", append(blob(record("main")), 0x00, 0x01, 'a', 0x00), ErrTruncated},
		{"truncated_code", good[:len(good)-1], ErrTruncated},
		{"truncated_operand", blob(record("main", 0xE1, 0x00, 0x09, 'a')), ErrTruncated},
		{"bad_utf8_name", blob(record("\xff", write), record("main")), ErrBadUTF8},
		{"bad_utf8_operand", blob(record("main", 0xE1, 0x00, 0x01, 0xff)), ErrBadUTF8},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(context.Background(), tc.data)
			assert.True(t, errors.Is(err, tc.err), "err: %v", err)
		})
	}
}

func TestLoadUnknownOpcode(t *testing.T) {
	_, err := Load(context.Background(), blob(record("main", write, 0x42)))

	var oe UnknownOpcodeError
	require.True(t, errors.As(err, &oe), "err: %v", err)
	assert.Equal(t, UnknownOpcodeError{Op: 0x42, Pos: 1}, oe)
}

func TestLoadMagicCheckedFirst(t *testing.T) {
	// garbage after a bad magic must not be parsed
	_, err := Load(context.Background(), []byte{0x4E, 0x45, 0x4E, 0x44, 0xff})
	assert.Equal(t, ErrBadMagic, err)
}
