package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nenclang/nenc/compiler"
	"github.com/nenclang/nenc/compiler/format"
	"github.com/nenclang/nenc/compiler/front"
	"github.com/nenclang/nenc/config"
	"github.com/nenclang/nenc/vm"
)

var cfg = config.Default()

func main() {
	parseCmd := &cli.Command{
		Name:   "parse",
		Action: parseAct,
		Args:   cli.Args{},
	}

	fmtCmd := &cli.Command{
		Name:   "fmt",
		Action: fmtAct,
		Args:   cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("write,w", false, "write result to the source file instead of stdout"),
		},
	}

	compileCmd := &cli.Command{
		Name:   "compile",
		Action: compileAct,
		Args:   cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,o", "", "output file (default from config, then out.nenc)"),
		},
	}

	runCmd := &cli.Command{
		Name:   "run",
		Action: runAct,
		Args:   cli.Args{},
	}

	disCmd := &cli.Command{
		Name:   "dis",
		Action: disAct,
		Args:   cli.Args{},
	}

	app := &cli.Command{
		Name:        "nenc",
		Description: "nenc compiles nenc source to bytecode and runs it",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("config", config.FileName, "config file"),
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
			cli.NewFlag("color", "", "color diagnostics: auto, always or never"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			parseCmd,
			fmtCmd,
			compileCmd,
			runCmd,
			disCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) (err error) {
	path := c.String("config")

	cfg, err = config.Load(path, path == config.FileName)
	if err != nil {
		return err
	}

	if v := c.String("color"); v != "" {
		cfg.Color = v
	}

	if v := c.String("verbosity"); v != "" {
		cfg.Verbosity = v
	}

	err = cfg.Validate()
	if err != nil {
		return errors.Wrap(err, "flags")
	}

	if cfg.Verbosity != "" {
		tlog.SetVerbosity(cfg.Verbosity)
	}

	return nil
}

func rootContext() context.Context {
	ctx := context.Background()
	return tlog.ContextWithSpan(ctx, tlog.Root())
}

func parseAct(c *cli.Command) (err error) {
	defer exitOnError(&err)

	ctx := rootContext()

	for _, a := range c.Args {
		x, err := front.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		for _, f := range x.Funcs {
			fmt.Printf("func %s impure=%v\n", f.Name, f.Impure)

			for _, st := range f.Body {
				fmt.Printf("\t%+v\n", st)
			}
		}
	}

	return nil
}

func fmtAct(c *cli.Command) (err error) {
	defer exitOnError(&err)

	ctx := rootContext()

	for _, a := range c.Args {
		x, err := front.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		b, err := format.Format(ctx, nil, x)
		if err != nil {
			return errors.Wrap(err, "format %v", a)
		}

		if !c.Bool("write") {
			_, err = os.Stdout.Write(b)
			if err != nil {
				return errors.Wrap(err, "write")
			}

			continue
		}

		err = os.WriteFile(a, b, 0o644)
		if err != nil {
			return errors.Wrap(err, "write %v", a)
		}
	}

	return nil
}

func compileAct(c *cli.Command) (err error) {
	defer exitOnError(&err)

	ctx := rootContext()

	if len(c.Args) != 1 {
		return errors.New("expected one input file, got %d", len(c.Args))
	}

	a := c.Args[0]

	obj, err := compiler.CompileFile(ctx, a)
	if err != nil {
		return err
	}

	out := c.String("output")
	if out == "" {
		out = cfg.Output
	}

	err = os.WriteFile(out, obj, 0o644)
	if err != nil {
		return errors.Wrap(err, "write output")
	}

	tlog.Printw("compiled", "src", a, "out", out, "size", humanize.Bytes(uint64(len(obj))))

	return nil
}

func runAct(c *cli.Command) (err error) {
	defer exitOnError(&err)

	p, err := loadProgram(c)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(os.Stdout)

	m := vm.New(p, w)
	m.MaxDepth = cfg.VM.MaxDepth

	err = m.Run(rootContext())

	if ferr := w.Flush(); err == nil && ferr != nil {
		err = errors.Wrap(ferr, "flush output")
	}

	return err
}

func disAct(c *cli.Command) (err error) {
	defer exitOnError(&err)

	p, err := loadProgram(c)
	if err != nil {
		return err
	}

	return vm.Disassemble(os.Stdout, p)
}

func loadProgram(c *cli.Command) (*vm.Program, error) {
	if len(c.Args) != 1 {
		return nil, errors.New("expected one bytecode file, got %d", len(c.Args))
	}

	data, err := os.ReadFile(c.Args[0])
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	p, err := vm.Load(rootContext(), data)
	if err != nil {
		return nil, errors.Wrap(err, "load %v", c.Args[0])
	}

	return p, nil
}

func exitOnError(errp *error) {
	if *errp == nil {
		return
	}

	report(os.Stderr, *errp, colored(os.Stderr, cfg.Color))

	os.Exit(1)
}
