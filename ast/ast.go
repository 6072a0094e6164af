package ast

import "github.com/pontaoski/tinyc/types"

type Identifier struct {
	Name string
	Pos  types.Span
}

func NewID(name string, pos types.Span) Identifier {
	return Identifier{Name: name, Pos: pos}
}

type Type int

const (
	Int Type = iota
	Void
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Void:
		return "void"
	}
	return "invalid"
}

type Operator int

const (
	Add Operator = iota
	Sub
	Mul
	Div
	Mod

	BitAnd
	BitOr
	BitXor
	Shl
	Shr

	LogicalAnd
	LogicalOr

	Equal
	NotEqual
	Less
	Greater
	LessEqual
	GreaterEqual

	Negate
	Complement
	Not
)

func (o Operator) String() string {
	data := map[Operator]string{
		Add:          "+",
		Sub:          "-",
		Mul:          "*",
		Div:          "/",
		Mod:          "%",
		BitAnd:       "&",
		BitOr:        "|",
		BitXor:       "^",
		Shl:          "<<",
		Shr:          ">>",
		LogicalAnd:   "&&",
		LogicalOr:    "||",
		Equal:        "==",
		NotEqual:     "!=",
		Less:         "<",
		Greater:      ">",
		LessEqual:    "<=",
		GreaterEqual: ">=",
		Negate:       "-",
		Complement:   "~",
		Not:          "!",
	}
	return data[o]
}

// ShortCircuit reports whether the right operand is only conditionally
// evaluated.
func (o Operator) ShortCircuit() bool {
	return o == LogicalAnd || o == LogicalOr
}

type Node interface {
	is_Node()
}

type Expression interface {
	Node
	is_Expression()
}

type IntLiteral struct {
	Value int64
	Pos   types.Span
}

func (v IntLiteral) is_Node()       {}
func (v IntLiteral) is_Expression() {}

type Var Identifier

func (v Var) is_Node()       {}
func (v Var) is_Expression() {}

type UnaryOp struct {
	Op      Operator
	Operand Expression
	Pos     types.Span
}

func (v UnaryOp) is_Node()       {}
func (v UnaryOp) is_Expression() {}

type BinaryOp struct {
	Op    Operator
	Left  Expression
	Right Expression
	Pos   types.Span
}

func (v BinaryOp) is_Node()       {}
func (v BinaryOp) is_Expression() {}

type Assignment struct {
	To    Identifier
	Value Expression
	Pos   types.Span
}

func (v Assignment) is_Node()       {}
func (v Assignment) is_Expression() {}

type Statement interface {
	Node
	is_Statement()
}

// VariableDecl declares a local. Value is nil when there is no initializer.
type VariableDecl struct {
	Kind  Type
	Ident Identifier
	Value Expression
}

func (v VariableDecl) is_Node()      {}
func (v VariableDecl) is_Statement() {}

type Return struct {
	Value Expression
	Pos   types.Span
}

func (v Return) is_Node()      {}
func (v Return) is_Statement() {}

type ExpressionStatement struct {
	Value Expression
}

func (v ExpressionStatement) is_Node()      {}
func (v ExpressionStatement) is_Statement() {}

type Parameter struct {
	Ident Identifier
	Kind  Type
}

type Function struct {
	Ident      Identifier
	Returns    Type
	Parameters []Parameter
	Body       []Statement
}

func (v Function) is_Node() {}

// Walk visits n and its children in source order. Children are skipped when
// fn returns false.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	switch node := n.(type) {
	case *Function:
		for _, stmt := range node.Body {
			Walk(stmt, fn)
		}
	case Function:
		for _, stmt := range node.Body {
			Walk(stmt, fn)
		}
	case VariableDecl:
		if node.Value != nil {
			Walk(node.Value, fn)
		}
	case Return:
		Walk(node.Value, fn)
	case ExpressionStatement:
		Walk(node.Value, fn)
	case UnaryOp:
		Walk(node.Operand, fn)
	case BinaryOp:
		Walk(node.Left, fn)
		Walk(node.Right, fn)
	case Assignment:
		Walk(node.Value, fn)
	case IntLiteral, Var:
	}
}
