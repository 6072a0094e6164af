// Package printer renders a parsed function as an indented tree for
// debugging.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/pontaoski/tinyc/ast"
)

const indentWidth = 2

type printer struct {
	b      strings.Builder
	indent int
}

func (p *printer) line(format string, args ...interface{}) {
	p.b.WriteString(strings.Repeat(" ", p.indent*indentWidth))
	fmt.Fprintf(&p.b, format, args...)
	p.b.WriteByte('\n')
}

func (p *printer) nested(fn func()) {
	p.indent++
	fn()
	p.indent--
}

func Sprint(fn *ast.Function) string {
	p := &printer{}
	p.function(fn)
	return p.b.String()
}

func Fprint(w io.Writer, fn *ast.Function) error {
	_, err := io.WriteString(w, Sprint(fn))
	return err
}

func (p *printer) function(fn *ast.Function) {
	var params []string
	for _, param := range fn.Parameters {
		params = append(params, fmt.Sprintf("(%s %s)", param.Kind, param.Ident.Name))
	}

	p.line("FunctionDecl name=%s, return=%s, parameters=%s:", fn.Ident.Name, fn.Returns, strings.Join(params, ""))
	p.nested(func() {
		for _, stmt := range fn.Body {
			p.statement(stmt)
		}
	})
}

func (p *printer) statement(s ast.Statement) {
	switch stmt := s.(type) {
	case ast.VariableDecl:
		if stmt.Value == nil {
			p.line("VariableDecl %s %s = init", stmt.Kind, stmt.Ident.Name)
			return
		}
		p.line("VariableDecl %s %s =", stmt.Kind, stmt.Ident.Name)
		p.nested(func() { p.expression(stmt.Value) })
	case ast.Return:
		p.line("ReturnStmt")
		p.nested(func() { p.expression(stmt.Value) })
	case ast.ExpressionStatement:
		p.line("ExprStmt")
		p.nested(func() { p.expression(stmt.Value) })
	default:
		p.line("<unknown statement %T>", s)
	}
}

func (p *printer) expression(e ast.Expression) {
	switch expr := e.(type) {
	case ast.IntLiteral:
		p.line("IntLiteral %d", expr.Value)
	case ast.Var:
		p.line("Variable %s", expr.Name)
	case ast.UnaryOp:
		p.line("UnaryOp %s", expr.Op)
		p.nested(func() { p.expression(expr.Operand) })
	case ast.BinaryOp:
		p.line("BinaryOp %s", expr.Op)
		p.nested(func() {
			p.expression(expr.Left)
			p.expression(expr.Right)
		})
	case ast.Assignment:
		p.line("Assignment %s =", expr.To.Name)
		p.nested(func() { p.expression(expr.Value) })
	default:
		p.line("<unknown expression %T>", e)
	}
}
