// Package compiler drives one compilation: source file to tokens to AST to
// an output file. Any stage failing aborts the whole compilation and leaves
// no output behind.
package compiler

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pontaoski/tinyc/ast"
	"github.com/pontaoski/tinyc/codegen"
	"github.com/pontaoski/tinyc/config"
	"github.com/pontaoski/tinyc/lexer"
	"github.com/pontaoski/tinyc/llvmgen"
	"github.com/pontaoski/tinyc/parser"
	"github.com/pontaoski/tinyc/types"
	"github.com/ztrue/tracerr"
	"go.uber.org/zap"
)

type Compiler struct {
	logger       *zap.Logger
	emit         string
	symbolPrefix string
}

type Option func(*Compiler)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) { c.logger = logger }
}

func WithEmit(emit string) Option {
	return func(c *Compiler) { c.emit = emit }
}

func WithSymbolPrefix(prefix string) Option {
	return func(c *Compiler) { c.symbolPrefix = prefix }
}

func New(opts ...Option) *Compiler {
	c := &Compiler{
		logger: zap.NewNop(),
		emit:   config.EmitAsm,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OutputPath derives the output file name from the source path.
func OutputPath(src, emit string) string {
	ext := ".s"
	if emit == config.EmitLLVM {
		ext = ".ll"
	}
	return strings.TrimSuffix(src, filepath.Ext(src)) + ext
}

func (c *Compiler) Tokenize(path string) ([]types.Token, error) {
	tokens, err := lexer.TokenizeFile(path)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}

	c.logger.Debug("tokenized", zap.String("file", path), zap.Int("tokens", len(tokens)))
	return tokens, nil
}

func (c *Compiler) Parse(tokens []types.Token) (*ast.Function, error) {
	fn, err := parser.Parse(tokens)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}

	c.logger.Debug("parsed",
		zap.String("function", fn.Ident.Name),
		zap.Int("parameters", len(fn.Parameters)),
		zap.Int("statements", len(fn.Body)),
	)
	return fn, nil
}

// Generate writes fn to w in the configured output format.
func (c *Compiler) Generate(fn *ast.Function, w io.Writer) error {
	switch c.emit {
	case config.EmitAsm:
		if err := codegen.Generate(fn, w, codegen.Options{SymbolPrefix: c.symbolPrefix}); err != nil {
			return tracerr.Wrap(err)
		}
	case config.EmitLLVM:
		modu, err := llvmgen.Generate(fn)
		if err != nil {
			return tracerr.Wrap(err)
		}
		if _, err := io.WriteString(w, modu.String()); err != nil {
			return tracerr.Wrap(err)
		}
	default:
		return tracerr.Errorf("unknown emit target %q", c.emit)
	}

	return nil
}

// WriteFile generates into a temporary file next to out and renames it into
// place only once generation has succeeded.
func (c *Compiler) WriteFile(fn *ast.Function, out string) (err error) {
	tmp, err := ioutil.TempFile(filepath.Dir(out), ".tinyc-*")
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = c.Generate(fn, tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return tracerr.Wrap(err)
	}
	if err = os.Rename(tmp.Name(), out); err != nil {
		return tracerr.Wrap(err)
	}

	c.logger.Debug("generated", zap.String("output", out), zap.String("emit", c.emit))
	return nil
}

// CompileFile runs the whole pipeline from src to out.
func (c *Compiler) CompileFile(src, out string) error {
	if filepath.Clean(src) == filepath.Clean(out) {
		return tracerr.Wrap(fmt.Errorf("output %s would overwrite the source", out))
	}

	tokens, err := c.Tokenize(src)
	if err != nil {
		return err
	}
	fn, err := c.Parse(tokens)
	if err != nil {
		return err
	}
	return c.WriteFile(fn, out)
}
