// Package llvmgen lowers a parsed function to LLVM IR.
package llvmgen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pontaoski/tinyc/ast"
	"github.com/pontaoski/tinyc/errors"
)

// Word is the storage type of every variable, whatever its declared type.
var Word = &types.IntType{BitSize: 64}

var (
	zero = constant.NewInt(Word, 0)
	one  = constant.NewInt(Word, 1)
)

type ctx struct {
	names  map[string]value.Value
	fn     *ir.Func
	block  *ir.Block
	blocks int
}

func codegenType(t ast.Type) types.Type {
	if t == ast.Void {
		return types.Void
	}
	return Word
}

// newBlock creates a detached block. Names always contain a dot, so they
// can never collide with a source identifier.
func (c *ctx) newBlock(prefix string) *ir.Block {
	b := ir.NewBlock(fmt.Sprintf("%s.%d", prefix, c.blocks))
	c.blocks++
	return b
}

func (c *ctx) attach(b *ir.Block) {
	b.Parent = c.fn
	c.fn.Blocks = append(c.fn.Blocks, b)
	c.block = b
}

func (c *ctx) lookup(id ast.Identifier) (value.Value, error) {
	slot, ok := c.names[id.Name]
	if !ok {
		return nil, errors.UndefinedReference{Name: id.Name, Location: id.Pos}
	}
	return slot, nil
}

func (c *ctx) alloca(id ast.Identifier) (value.Value, error) {
	if _, ok := c.names[id.Name]; ok {
		return nil, errors.DuplicateDeclaration{Name: id.Name, Location: id.Pos}
	}

	slot := c.block.NewAlloca(Word)
	slot.SetName(id.Name + ".addr")
	c.names[id.Name] = slot
	return slot, nil
}

// Generate builds a module holding fn.
func Generate(fn *ast.Function) (*ir.Module, error) {
	modu := ir.NewModule()

	var params []*ir.Param
	for _, param := range fn.Parameters {
		params = append(params, ir.NewParam(param.Ident.Name, Word))
	}

	c := &ctx{
		names: map[string]value.Value{},
		fn:    modu.NewFunc(fn.Ident.Name, codegenType(fn.Returns), params...),
	}
	c.attach(c.newBlock("entry"))

	for i, param := range fn.Parameters {
		slot, err := c.alloca(param.Ident)
		if err != nil {
			return nil, err
		}
		c.block.NewStore(c.fn.Params[i], slot)
	}

	for _, stmt := range fn.Body {
		if err := c.statement(fn, stmt); err != nil {
			return nil, err
		}
	}

	if c.block.Term == nil {
		c.ret(fn, zero)
	}

	return modu, nil
}

func (c *ctx) ret(fn *ast.Function, v value.Value) {
	if fn.Returns == ast.Void {
		c.block.NewRet(nil)
	} else {
		c.block.NewRet(v)
	}
}

func (c *ctx) statement(fn *ast.Function, s ast.Statement) error {
	switch stmt := s.(type) {
	case ast.VariableDecl:
		// the initializer cannot see the variable it initializes
		var val value.Value
		if stmt.Value != nil {
			v, err := c.expression(stmt.Value)
			if err != nil {
				return err
			}
			val = v
		}
		slot, err := c.alloca(stmt.Ident)
		if err != nil {
			return err
		}
		if val != nil {
			c.block.NewStore(val, slot)
		}
	case ast.Return:
		val, err := c.expression(stmt.Value)
		if err != nil {
			return err
		}
		c.ret(fn, val)

		// anything after a return is unreachable but still needs a block
		c.attach(c.newBlock("dead"))
	case ast.ExpressionStatement:
		_, err := c.expression(stmt.Value)
		return err
	default:
		return fmt.Errorf("llvmgen: unhandled statement %T", s)
	}

	return nil
}

var predicates = map[ast.Operator]enum.IPred{
	ast.Equal:        enum.IPredEQ,
	ast.NotEqual:     enum.IPredNE,
	ast.Less:         enum.IPredSLT,
	ast.Greater:      enum.IPredSGT,
	ast.LessEqual:    enum.IPredSLE,
	ast.GreaterEqual: enum.IPredSGE,
}

func (c *ctx) truth(v value.Value) value.Value {
	return c.block.NewZExt(c.block.NewICmp(enum.IPredNE, v, zero), Word)
}

func (c *ctx) expression(e ast.Expression) (value.Value, error) {
	switch expr := e.(type) {
	case ast.IntLiteral:
		return constant.NewInt(Word, expr.Value), nil
	case ast.Var:
		slot, err := c.lookup(ast.Identifier(expr))
		if err != nil {
			return nil, err
		}
		return c.block.NewLoad(Word, slot), nil
	case ast.Assignment:
		slot, err := c.lookup(expr.To)
		if err != nil {
			return nil, err
		}
		val, err := c.expression(expr.Value)
		if err != nil {
			return nil, err
		}
		c.block.NewStore(val, slot)
		return val, nil
	case ast.UnaryOp:
		val, err := c.expression(expr.Operand)
		if err != nil {
			return nil, err
		}
		switch expr.Op {
		case ast.Negate:
			return c.block.NewSub(zero, val), nil
		case ast.Complement:
			return c.block.NewXor(val, constant.NewInt(Word, -1)), nil
		case ast.Not:
			return c.block.NewZExt(c.block.NewICmp(enum.IPredEQ, val, zero), Word), nil
		}
		return nil, fmt.Errorf("llvmgen: %s is not a unary operator", expr.Op)
	case ast.BinaryOp:
		if expr.Op.ShortCircuit() {
			return c.shortCircuit(expr)
		}
		return c.binary(expr)
	}

	return nil, fmt.Errorf("llvmgen: unhandled expression %T", e)
}

func (c *ctx) binary(expr ast.BinaryOp) (value.Value, error) {
	l, err := c.expression(expr.Left)
	if err != nil {
		return nil, err
	}
	r, err := c.expression(expr.Right)
	if err != nil {
		return nil, err
	}

	b := c.block
	switch expr.Op {
	case ast.Add:
		return b.NewAdd(l, r), nil
	case ast.Sub:
		return b.NewSub(l, r), nil
	case ast.Mul:
		return b.NewMul(l, r), nil
	case ast.Div:
		return b.NewSDiv(l, r), nil
	case ast.Mod:
		return b.NewSRem(l, r), nil
	case ast.BitAnd:
		return b.NewAnd(l, r), nil
	case ast.BitOr:
		return b.NewOr(l, r), nil
	case ast.BitXor:
		return b.NewXor(l, r), nil
	case ast.Shl:
		return b.NewShl(l, r), nil
	case ast.Shr:
		return b.NewAShr(l, r), nil
	}

	if pred, ok := predicates[expr.Op]; ok {
		return b.NewZExt(b.NewICmp(pred, l, r), Word), nil
	}

	return nil, fmt.Errorf("llvmgen: %s is not a binary operator", expr.Op)
}

// shortCircuit evaluates the right operand in its own block, reached only
// when the left operand leaves the result open, and merges with a phi.
func (c *ctx) shortCircuit(expr ast.BinaryOp) (value.Value, error) {
	l, err := c.expression(expr.Left)
	if err != nil {
		return nil, err
	}

	prefix, decided := "and", zero
	if expr.Op == ast.LogicalOr {
		prefix, decided = "or", one
	}

	leftEnd := c.block
	cond := leftEnd.NewICmp(enum.IPredNE, l, zero)
	rhs := c.newBlock(prefix + ".rhs")
	end := c.newBlock(prefix + ".end")

	if expr.Op == ast.LogicalAnd {
		leftEnd.NewCondBr(cond, rhs, end)
	} else {
		leftEnd.NewCondBr(cond, end, rhs)
	}

	c.attach(rhs)
	r, err := c.expression(expr.Right)
	if err != nil {
		return nil, err
	}
	rv := c.truth(r)
	c.block.NewBr(end)
	rhsEnd := c.block

	c.attach(end)
	return end.NewPhi(ir.NewIncoming(decided, leftEnd), ir.NewIncoming(rv, rhsEnd)), nil
}
