package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nenclang/nenc/compiler/back"
	"github.com/nenclang/nenc/compiler/front"
	"github.com/nenclang/nenc/compiler/ir"
)

func CompileFile(ctx context.Context, name string) (obj []byte, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text)
}

// Compile turns source text into a NENC program.
// No bytes are returned unless every stage succeeds.
func Compile(ctx context.Context, name string, text []byte) (obj []byte, err error) {
	st := front.New()

	st.AddFile(ctx, name, text)

	x, err := st.Parse(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}

	ns, err := ir.Build(ctx, x)
	if err != nil {
		return nil, errors.Wrap(err, "build ir")
	}

	obj, err = back.Encode(ctx, ns)
	if err != nil {
		return nil, errors.Wrap(err, "encode")
	}

	return obj, nil
}
