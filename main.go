package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/tinyc/compiler"
	"github.com/pontaoski/tinyc/config"
	"github.com/pontaoski/tinyc/printer"
	"github.com/pontaoski/tinyc/toolchain"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var buildFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "write output to `FILE`",
	},
	&cli.StringFlag{
		Name:  "emit",
		Usage: "output format, asm or llvm",
	},
	&cli.StringFlag{
		Name:  "config",
		Value: config.DefaultFile,
		Usage: "read settings from `FILE`",
	},
	&cli.BoolFlag{
		Name:  "dump-tokens",
		Usage: "print the token stream and stop",
	},
	&cli.BoolFlag{
		Name:  "dump-ast",
		Usage: "print the syntax tree and stop",
	},
	&cli.BoolFlag{
		Name:  "assemble",
		Usage: "run the configured assembler on the output",
	},
	&cli.BoolFlag{
		Name:  "trace",
		Usage: "print errors with a stack trace and source",
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "log every compilation stage",
	},
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"), c.IsSet("config"))
	if err != nil {
		return cfg, err
	}

	if c.IsSet("emit") {
		cfg.Emit = c.String("emit")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.Bool("verbose") {
		cfg.LogLevel = "debug"
	}

	return cfg, cfg.Validate()
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	if lvl == zapcore.DebugLevel {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func dump(c *cli.Context, comp *compiler.Compiler, src string) error {
	tokens, err := comp.Tokenize(src)
	if err != nil {
		return err
	}
	if c.Bool("dump-tokens") {
		repr.Println(tokens)
		return nil
	}

	fn, err := comp.Parse(tokens)
	if err != nil {
		return err
	}
	return printer.Fprint(os.Stdout, fn)
}

func build(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one source file", 1)
	}
	src := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	comp := compiler.New(
		compiler.WithLogger(logger),
		compiler.WithEmit(cfg.Emit),
		compiler.WithSymbolPrefix(cfg.Prefix(runtime.GOOS)),
	)

	if c.Bool("dump-tokens") || c.Bool("dump-ast") {
		return dump(c, comp, src)
	}

	out := cfg.Output
	if out == "" {
		out = compiler.OutputPath(src, cfg.Emit)
	}
	if err := comp.CompileFile(src, out); err != nil {
		return err
	}
	logger.Debug("compiled", zap.String("source", src), zap.String("output", out))

	if !c.Bool("assemble") {
		return nil
	}
	if cfg.Emit != config.EmitAsm {
		return cli.Exit("--assemble needs assembly output", 1)
	}

	exe := strings.TrimSuffix(out, filepath.Ext(out))
	if err := toolchain.Assemble(c.Context, cfg.Assembler, out, exe, os.Stdout, os.Stderr); err != nil {
		return tracerr.Wrap(err)
	}
	logger.Debug("assembled", zap.String("executable", exe))

	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "tinyc",
		Usage:     "compile a single C function to AArch64 assembly",
		ArgsUsage: "<source>",
		Flags:     buildFlags,
		Action:    build,
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}
			if c.Bool("trace") {
				tracerr.PrintSourceColor(err)
			} else {
				fmt.Fprintf(os.Stderr, "tinyc: %s\n", tracerr.Unwrap(err))
			}
			os.Exit(1)
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "write a default " + config.DefaultFile,
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						path = config.DefaultFile
					}
					if _, err := os.Stat(path); err == nil {
						return cli.Exit(fmt.Sprintf("%s already exists", path), 1)
					}
					return config.Write(path, config.Default())
				},
			},
			{
				Name:      "build",
				Usage:     "compile a source file",
				ArgsUsage: "<source>",
				Flags:     buildFlags,
				Action:    build,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "tinyc:", err)
		os.Exit(1)
	}
}
