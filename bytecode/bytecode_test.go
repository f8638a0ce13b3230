package bytecode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"
)

func TestAppendInstr(t *testing.T) {
	for _, tc := range []struct {
		x   Instr
		exp []byte
	}{
		{Write{}, []byte{0x12}},
		{Call("print"), []byte{0xA1, 0x00, 0x05, 'p', 'r', 'i', 'n', 't'}},
		{PushString("\n"), []byte{0xE1, 0x00, 0x01, 0x0A}},
		{PushString(""), []byte{0xE1, 0x00, 0x00}},
	} {
		b, err := AppendInstr(nil, tc.x)
		require.NoError(t, err, "%v", tc.x)
		assert.Equal(t, tc.exp, b, "%v", tc.x)
	}
}

func TestAppendStringTooLong(t *testing.T) {
	_, err := AppendString(nil, strings.Repeat("a", MaxOperand))
	require.NoError(t, err)

	_, err = AppendString(nil, strings.Repeat("a", MaxOperand+1))
	assert.True(t, errors.Is(err, ErrOperandTooLong), "err: %v", err)
}

func TestAppendHeader(t *testing.T) {
	b := AppendHeader(nil, 0x01020304)

	assert.Equal(t, []byte{0x4E, 0x45, 0x4E, 0x43, 1, 2, 3, 4}, b)
	assert.Equal(t, uint32(0x01020304), Uint32(b[MagicSize:]))
}

func TestPutUint32(t *testing.T) {
	b := AppendHeader([]byte{0xff}, 0)
	b = append(b, 0xee)

	PutUint32(b[1+MagicSize:], 0x0a0b0c0d)

	assert.Equal(t, []byte{0xff, 'N', 'E', 'N', 'C', 0x0a, 0x0b, 0x0c, 0x0d, 0xee}, b)
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "WRITE", OpWrite.String())
	assert.Equal(t, "CALL", OpCall.String())
	assert.Equal(t, "PUSH", OpPush.String())
	assert.Equal(t, "OP(0x7f)", Op(0x7f).String())
}
