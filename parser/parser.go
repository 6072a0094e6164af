package parser

import (
	"github.com/pontaoski/tinyc/ast"
	"github.com/pontaoski/tinyc/errors"
	"github.com/pontaoski/tinyc/types"
)

// binaryLevels lists the binary operator classes from lowest to highest
// precedence. Every level is left-associative.
var binaryLevels = []map[types.TokenKind]ast.Operator{
	{types.OROR: ast.LogicalOr},
	{types.ANDAND: ast.LogicalAnd},
	{types.PIPE: ast.BitOr},
	{types.CARET: ast.BitXor},
	{types.AMP: ast.BitAnd},
	{types.EQEQ: ast.Equal, types.NOTEQ: ast.NotEqual},
	{types.LT: ast.Less, types.GT: ast.Greater, types.LTEQ: ast.LessEqual, types.GTEQ: ast.GreaterEqual},
	{types.SHL: ast.Shl, types.SHR: ast.Shr},
	{types.PLUS: ast.Add, types.MINUS: ast.Sub},
	{types.STAR: ast.Mul, types.SLASH: ast.Div, types.PERCENT: ast.Mod},
}

var unaryOps = map[types.TokenKind]ast.Operator{
	types.MINUS: ast.Negate,
	types.TILDE: ast.Complement,
	types.BANG:  ast.Not,
}

var typeNames = map[types.TokenKind]ast.Type{
	types.INT_TYPE:  ast.Int,
	types.VOID_TYPE: ast.Void,
}

var expressionStart = []types.TokenKind{types.LPAREN, types.INT, types.IDENT, types.MINUS, types.TILDE, types.BANG}

type Parser struct {
	tokens []types.Token
	cur    int
}

func NewParser(tokens []types.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse reads exactly one function declaration. On failure no partial tree
// is returned.
func Parse(tokens []types.Token) (*ast.Function, error) {
	return NewParser(tokens).Parse()
}

func (p *Parser) Parse() (*ast.Function, error) {
	fn, err := p.parseFunction()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(0); tok.Kind != types.EOF {
		return nil, errors.SyntaxError{
			Message:  "unexpected token after function body",
			Got:      tok,
			Location: tok.Location,
		}
	}

	return fn, nil
}

// peek looks offset tokens ahead without consuming anything. Past the end it
// yields an EOF token positioned just after the last real token.
func (p *Parser) peek(offset int) types.Token {
	if i := p.cur + offset; i < len(p.tokens) {
		return p.tokens[i]
	}

	if len(p.tokens) == 0 {
		return types.Token{Kind: types.EOF, Location: types.SingleCharSpan(types.Position{Line: 1})}
	}
	end := p.tokens[len(p.tokens)-1].Location.To
	end.Column++
	return types.Token{Kind: types.EOF, Location: types.SingleCharSpan(end)}
}

func (p *Parser) PeekIs(k ...types.TokenKind) bool {
	tok := p.peek(0)
	for _, kind := range k {
		if tok.Kind == kind {
			return true
		}
	}

	return false
}

func (p *Parser) advance() types.Token {
	tok := p.peek(0)
	if p.cur < len(p.tokens) {
		p.cur++
	}
	return tok
}

// end is the position where the most recently consumed token ends.
func (p *Parser) end() types.Position {
	if p.cur == 0 {
		return p.peek(0).Location.From
	}
	return p.tokens[p.cur-1].Location.To
}

func (p *Parser) LexExpecting(msg string, k ...types.TokenKind) (types.Token, error) {
	if p.PeekIs(k...) {
		return p.advance(), nil
	}

	tok := p.peek(0)
	return tok, errors.SyntaxError{
		Expected: k,
		Got:      tok,
		Message:  msg,
		Location: tok.Location,
	}
}

func (p *Parser) parseType() (ast.Type, error) {
	tok, err := p.LexExpecting("expected a type name", types.INT_TYPE, types.VOID_TYPE)
	if err != nil {
		return 0, err
	}

	return typeNames[tok.Kind], nil
}

func (p *Parser) parseParameters() ([]ast.Parameter, error) {
	if _, err := p.LexExpecting("incorrect function definition, check parentheses", types.LPAREN); err != nil {
		return nil, err
	}

	var params []ast.Parameter
	if !p.PeekIs(types.RPAREN) {
		for {
			kind, err := p.parseType()
			if err != nil {
				return nil, err
			}
			name, err := p.LexExpecting("expected parameter name", types.IDENT)
			if err != nil {
				return nil, err
			}

			params = append(params, ast.Parameter{
				Ident: ast.NewID(name.Lit, name.Location),
				Kind:  kind,
			})

			if !p.PeekIs(types.COMMA) {
				break
			}
			p.advance()
		}
	}

	if _, err := p.LexExpecting("incorrect function definition, check parentheses", types.RPAREN); err != nil {
		return nil, err
	}

	return params, nil
}

func (p *Parser) parseFunction() (*ast.Function, error) {
	returns, err := p.parseType()
	if err != nil {
		return nil, err
	}

	name, err := p.LexExpecting("incorrect function definition, check function identifier", types.IDENT)
	if err != nil {
		return nil, err
	}

	params, err := p.parseParameters()
	if err != nil {
		return nil, err
	}

	if _, err := p.LexExpecting("incorrect function definition, check braces", types.LBRACKET); err != nil {
		return nil, err
	}

	var body []ast.Statement
	for !p.PeekIs(types.RBRACKET) {
		if p.PeekIs(types.EOF) {
			tok := p.peek(0)
			return nil, errors.SyntaxError{
				Expected: []types.TokenKind{types.RBRACKET},
				Got:      tok,
				Message:  "missing closing brace of function body",
				Location: tok.Location,
			}
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.advance()

	return &ast.Function{
		Ident:      ast.NewID(name.Lit, name.Location),
		Returns:    returns,
		Parameters: params,
		Body:       body,
	}, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch {
	case p.PeekIs(types.RETURN):
		from := p.advance().Location.From

		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.LexExpecting("expected ';' after return value", types.EOS); err != nil {
			return nil, err
		}

		return ast.Return{Value: expr, Pos: types.Span{From: from, To: p.end()}}, nil

	case p.PeekIs(types.INT_TYPE, types.VOID_TYPE):
		kind, err := p.parseType()
		if err != nil {
			return nil, err
		}
		name, err := p.LexExpecting("expected variable name", types.IDENT)
		if err != nil {
			return nil, err
		}

		decl := ast.VariableDecl{Kind: kind, Ident: ast.NewID(name.Lit, name.Location)}
		if p.PeekIs(types.EQUALS) {
			p.advance()
			if decl.Value, err = p.parseExpression(); err != nil {
				return nil, err
			}
		}

		if _, err := p.LexExpecting("expected ';' after variable declaration", types.EOS); err != nil {
			return nil, err
		}
		return decl, nil
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.LexExpecting("expected ';' after expression", types.EOS); err != nil {
		return nil, err
	}

	return ast.ExpressionStatement{Value: expr}, nil
}

// parseExpression is the entry point of the expression grammar. Assignment
// sits above the binary ladder and recurses into parseExpression for its
// value, which makes it right-associative.
func (p *Parser) parseExpression() (ast.Expression, error) {
	if p.PeekIs(types.IDENT) && p.peek(1).Kind == types.EQUALS {
		return p.parseAssignment()
	}

	return p.parseBinary(0)
}

func (p *Parser) parseAssignment() (ast.Expression, error) {
	name := p.advance()
	p.advance()

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return ast.Assignment{
		To:    ast.NewID(name.Lit, name.Location),
		Value: value,
		Pos:   types.Span{From: name.Location.From, To: p.end()},
	}, nil
}

func (p *Parser) parseBinary(level int) (ast.Expression, error) {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}

	from := p.peek(0).Location.From
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}

	for {
		op, ok := binaryLevels[level][p.peek(0).Kind]
		if !ok {
			return left, nil
		}
		p.advance()

		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}

		left = ast.BinaryOp{
			Op:    op,
			Left:  left,
			Right: right,
			Pos:   types.Span{From: from, To: p.end()},
		}
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	op, ok := unaryOps[p.peek(0).Kind]
	if !ok {
		return p.parsePrimary()
	}

	from := p.advance().Location.From
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return ast.UnaryOp{
		Op:      op,
		Operand: operand,
		Pos:     types.Span{From: from, To: p.end()},
	}, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.peek(0)

	switch tok.Kind {
	case types.LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.LexExpecting("parentheses mismatch on bounded expression", types.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case types.INT:
		p.advance()
		return ast.IntLiteral{Value: tok.Int, Pos: tok.Location}, nil
	case types.IDENT:
		if p.peek(1).Kind == types.EQUALS {
			return p.parseAssignment()
		}
		p.advance()
		return ast.Var(ast.NewID(tok.Lit, tok.Location)), nil
	}

	return nil, errors.SyntaxError{
		Expected: expressionStart,
		Got:      tok,
		Message:  "expected an expression",
		Location: tok.Location,
	}
}
