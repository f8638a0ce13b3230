package back

import "github.com/nenclang/nenc/bytecode"

// Builtins holds the encoded body of every built-in function.
// Built-ins become ordinary records, the vm knows nothing about them.
var Builtins = map[string][]byte{
	"print":   template(bytecode.Write{}),
	"println": template(bytecode.Write{}, bytecode.PushString("\n"), bytecode.Write{}),
}

func template(body ...bytecode.Instr) []byte {
	var b []byte

	for _, x := range body {
		var err error

		b, err = bytecode.AppendInstr(b, x)
		if err != nil {
			panic(err)
		}
	}

	return b
}
