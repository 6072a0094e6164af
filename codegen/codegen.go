// Package codegen lowers a parsed function to AArch64 GNU assembler text.
//
// Every expression leaves its value in x0. Eager binary operators spill the
// left operand to the stack, evaluate the right operand, and reload the left
// one into x1. Each parameter and local owns a 16-byte slot below the frame
// pointer x29, in declaration order.
package codegen

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/pontaoski/tinyc/ast"
	"github.com/pontaoski/tinyc/errors"
	"github.com/pontaoski/tinyc/types"
)

// slotSize is the AArch64 stack alignment. A slot holds one 8-byte word.
const slotSize = 16

// ldur only takes a signed 9-bit offset.
const minDirectOffset = -256

var argRegs = []string{"x0", "x1", "x2", "x3", "x4", "x5", "x6", "x7"}

type Options struct {
	// SymbolPrefix is prepended to the function's symbol: "_" for Mach-O,
	// empty for ELF.
	SymbolPrefix string
}

type generator struct {
	out    bytes.Buffer
	opts   Options
	slots  map[string]int
	offset int
	labels int
}

// Generate writes the assembly for fn to w. Nothing is written when
// generation fails.
func Generate(fn *ast.Function, w io.Writer, opts Options) error {
	g := &generator{
		opts:  opts,
		slots: map[string]int{},
	}

	if err := g.function(fn); err != nil {
		return err
	}

	_, err := g.out.WriteTo(w)
	return err
}

func (g *generator) emit(format string, args ...interface{}) {
	g.out.WriteByte('\t')
	fmt.Fprintf(&g.out, format, args...)
	g.out.WriteByte('\n')
}

func (g *generator) label(name string) {
	g.out.WriteString(name)
	g.out.WriteString(":\n")
}

func (g *generator) newLabel() string {
	l := "_label_" + strconv.Itoa(g.labels)
	g.labels++
	return l
}

func (g *generator) push(reg string) {
	g.emit("str\t%s, [sp, #-%d]!", reg, slotSize)
}

func (g *generator) pop(reg string) {
	g.emit("ldr\t%s, [sp], #%d", reg, slotSize)
}

// immediate materializes v in reg, using movz/movk when it does not fit a
// single 16-bit move.
func (g *generator) immediate(reg string, v int64) {
	u := uint64(v)
	if u <= 0xffff {
		g.emit("mov\t%s, #%d", reg, u)
		return
	}

	first := true
	for shift := 0; shift < 64; shift += 16 {
		chunk := (u >> uint(shift)) & 0xffff
		if chunk == 0 {
			continue
		}
		if first {
			g.emit("movz\t%s, #%d, lsl #%d", reg, chunk, shift)
			first = false
		} else {
			g.emit("movk\t%s, #%d, lsl #%d", reg, chunk, shift)
		}
	}
}

// declare reserves the next slot for name. The caller has already pushed the
// slot's initial contents or moved sp past it.
func (g *generator) declare(id ast.Identifier) {
	g.offset += slotSize
	g.slots[id.Name] = -g.offset
}

func (g *generator) checkUnique(id ast.Identifier) error {
	if _, ok := g.slots[id.Name]; ok {
		return errors.DuplicateDeclaration{Name: id.Name, Location: id.Pos}
	}
	return nil
}

func (g *generator) lookup(name string, pos types.Span) (int, error) {
	offset, ok := g.slots[name]
	if !ok {
		return 0, errors.UndefinedReference{Name: name, Location: pos}
	}
	return offset, nil
}

// slotRef returns the memory operand for a slot, going through x9 when the
// offset is out of ldur/stur range.
func (g *generator) slotRef(offset int) string {
	if offset >= minDirectOffset {
		return fmt.Sprintf("[x29, #%d]", offset)
	}

	g.immediate("x9", int64(-offset))
	g.emit("sub\tx9, x29, x9")
	return "[x9]"
}

func (g *generator) prologue(fn *ast.Function) {
	sym := g.opts.SymbolPrefix + fn.Ident.Name

	g.emit(".text")
	g.emit(".globl\t%s", sym)
	g.emit(".p2align\t2")
	g.label(sym)
	g.emit("stp\tx29, x30, [sp, #-16]!")
	g.emit("mov\tx29, sp")
}

func (g *generator) epilogue() {
	g.emit("mov\tsp, x29")
	g.emit("ldp\tx29, x30, [sp], #16")
	g.emit("ret")
}

func (g *generator) function(fn *ast.Function) error {
	if len(fn.Parameters) > len(argRegs) {
		return errors.Unsupported{
			What:     fmt.Sprintf("function %s takes %d parameters, at most %d are supported", fn.Ident.Name, len(fn.Parameters), len(argRegs)),
			Location: fn.Ident.Pos,
		}
	}

	g.prologue(fn)

	// parameters arrive in x0-x7 and are spilled to their own slots
	for i, param := range fn.Parameters {
		if err := g.checkUnique(param.Ident); err != nil {
			return err
		}
		g.push(argRegs[i])
		g.declare(param.Ident)
	}

	for _, stmt := range fn.Body {
		if err := g.statement(stmt); err != nil {
			return err
		}
	}

	if n := len(fn.Body); n == 0 {
		g.immediate("x0", 0)
		g.epilogue()
	} else if _, ok := fn.Body[n-1].(ast.Return); !ok {
		g.immediate("x0", 0)
		g.epilogue()
	}

	return nil
}

func (g *generator) statement(s ast.Statement) error {
	switch stmt := s.(type) {
	case ast.VariableDecl:
		if err := g.checkUnique(stmt.Ident); err != nil {
			return err
		}

		if stmt.Value == nil {
			g.emit("sub\tsp, sp, #%d", slotSize)
		} else {
			if err := g.expression(stmt.Value); err != nil {
				return err
			}
			g.push("x0")
		}
		g.declare(stmt.Ident)
	case ast.Return:
		if err := g.expression(stmt.Value); err != nil {
			return err
		}
		g.epilogue()
	case ast.ExpressionStatement:
		return g.expression(stmt.Value)
	default:
		return fmt.Errorf("codegen: unhandled statement %T", s)
	}

	return nil
}

var arith = map[ast.Operator]string{
	ast.Add:    "add",
	ast.Sub:    "sub",
	ast.Mul:    "mul",
	ast.Div:    "sdiv",
	ast.BitAnd: "and",
	ast.BitOr:  "orr",
	ast.BitXor: "eor",
	ast.Shl:    "lsl",
	ast.Shr:    "asr",
}

var conditions = map[ast.Operator]string{
	ast.Equal:        "eq",
	ast.NotEqual:     "ne",
	ast.Less:         "lt",
	ast.Greater:      "gt",
	ast.LessEqual:    "le",
	ast.GreaterEqual: "ge",
}

func (g *generator) expression(e ast.Expression) error {
	switch expr := e.(type) {
	case ast.IntLiteral:
		g.immediate("x0", expr.Value)
	case ast.Var:
		offset, err := g.lookup(expr.Name, expr.Pos)
		if err != nil {
			return err
		}
		g.emit("ldr\tx0, %s", g.slotRef(offset))
	case ast.Assignment:
		offset, err := g.lookup(expr.To.Name, expr.To.Pos)
		if err != nil {
			return err
		}
		if err := g.expression(expr.Value); err != nil {
			return err
		}
		g.emit("str\tx0, %s", g.slotRef(offset))
	case ast.UnaryOp:
		if err := g.expression(expr.Operand); err != nil {
			return err
		}
		switch expr.Op {
		case ast.Negate:
			g.emit("neg\tx0, x0")
		case ast.Complement:
			g.emit("mvn\tx0, x0")
		case ast.Not:
			g.emit("cmp\tx0, #0")
			g.emit("cset\tx0, eq")
		default:
			return fmt.Errorf("codegen: %s is not a unary operator", expr.Op)
		}
	case ast.BinaryOp:
		if expr.Op.ShortCircuit() {
			return g.shortCircuit(expr)
		}
		return g.binary(expr)
	default:
		return fmt.Errorf("codegen: unhandled expression %T", e)
	}

	return nil
}

func (g *generator) binary(expr ast.BinaryOp) error {
	if err := g.expression(expr.Left); err != nil {
		return err
	}
	g.push("x0")
	if err := g.expression(expr.Right); err != nil {
		return err
	}
	g.pop("x1")

	if op, ok := arith[expr.Op]; ok {
		g.emit("%s\tx0, x1, x0", op)
		return nil
	}
	if cond, ok := conditions[expr.Op]; ok {
		g.emit("cmp\tx1, x0")
		g.emit("cset\tx0, %s", cond)
		return nil
	}
	if expr.Op == ast.Mod {
		g.emit("sdiv\tx2, x1, x0")
		g.emit("msub\tx0, x2, x0, x1")
		return nil
	}

	return fmt.Errorf("codegen: %s is not a binary operator", expr.Op)
}

// shortCircuit lowers && and ||. The right operand's code is only reachable
// when the left operand does not already decide the result.
func (g *generator) shortCircuit(expr ast.BinaryOp) error {
	decided := g.newLabel()
	end := g.newLabel()

	branch, result := "b.eq", int64(0)
	if expr.Op == ast.LogicalOr {
		branch, result = "b.ne", 1
	}

	if err := g.expression(expr.Left); err != nil {
		return err
	}
	g.emit("cmp\tx0, #0")
	g.emit("%s\t%s", branch, decided)

	if err := g.expression(expr.Right); err != nil {
		return err
	}
	g.emit("cmp\tx0, #0")
	g.emit("cset\tx0, ne")
	g.emit("b\t%s", end)

	g.label(decided)
	g.immediate("x0", result)
	g.label(end)

	return nil
}
