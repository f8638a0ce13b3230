package bytecode

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog/tlwire"
)

type (
	Op byte

	// Instr is shared by the compiler IR and the vm.
	Instr interface {
		Op() Op
	}

	PushString string
	Call       string
	Write      struct{}
)

const (
	OpWrite Op = 0x12
	OpCall  Op = 0xA1
	OpPush  Op = 0xE1
)

const (
	MagicSize  = 4
	HeaderSize = MagicSize + 4

	MaxOperand = 1<<16 - 1
)

var Magic = [MagicSize]byte{'N', 'E', 'N', 'C'}

var ErrOperandTooLong = errors.New("operand too long")

var (
	Uint16 = binary.BigEndian.Uint16
	Uint32 = binary.BigEndian.Uint32
)

func (PushString) Op() Op { return OpPush }
func (Call) Op() Op       { return OpCall }
func (Write) Op() Op      { return OpWrite }

// AppendInstr encodes x as opcode byte followed by its operand.
func AppendInstr(b []byte, x Instr) ([]byte, error) {
	b = append(b, byte(x.Op()))

	switch x := x.(type) {
	case Write:
		return b, nil
	case Call:
		return AppendString(b, string(x))
	case PushString:
		return AppendString(b, string(x))
	default:
		return b, errors.New("unsupported instruction: %T", x)
	}
}

// AppendString appends u16 length prefixed s.
func AppendString(b []byte, s string) ([]byte, error) {
	if len(s) > MaxOperand {
		return b, errors.Wrap(ErrOperandTooLong, "%d bytes", len(s))
	}

	b = binary.BigEndian.AppendUint16(b, uint16(len(s)))
	b = append(b, s...)

	return b, nil
}

func AppendUint32(b []byte, v int) []byte {
	return binary.BigEndian.AppendUint32(b, uint32(v))
}

// PutUint32 overwrites the 4 bytes at b[0:4].
func PutUint32(b []byte, v int) {
	binary.BigEndian.PutUint32(b, uint32(v))
}

func AppendHeader(b []byte, bodyLen int) []byte {
	b = append(b, Magic[:]...)
	return AppendUint32(b, bodyLen)
}

func (op Op) String() string {
	switch op {
	case OpWrite:
		return "WRITE"
	case OpCall:
		return "CALL"
	case OpPush:
		return "PUSH"
	default:
		return fmt.Sprintf("OP(%#02x)", byte(op))
	}
}

func (x PushString) String() string { return "PushString(" + strconv.Quote(string(x)) + ")" }
func (x Call) String() string       { return "Call(" + string(x) + ")" }
func (x Write) String() string      { return "Write" }

func (x PushString) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 1)
	b = e.AppendString(b, "push")
	b = e.AppendString(b, string(x))

	return b
}

func (x Call) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 1)
	b = e.AppendString(b, "call")
	b = e.AppendString(b, string(x))

	return b
}

func (x Write) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, "write")
}
