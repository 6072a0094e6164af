package types

import (
	"fmt"
)

type Position struct {
	Line     int
	Column   int
	Filename string
}

type Span struct {
	From Position
	To   Position
}

type TokenKind int

const (
	EOF TokenKind = iota

	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	COMMA
	EOS

	// operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	TILDE
	BANG
	AMP
	PIPE
	CARET
	SHL
	SHR
	ANDAND
	OROR
	EQUALS
	EQEQ
	NOTEQ
	LT
	GT
	LTEQ
	GTEQ

	INT
	IDENT

	// keywords
	RETURN
	INT_TYPE
	VOID_TYPE
)

func (t TokenKind) String() string {
	data := map[TokenKind]string{
		EOF:       "EOF",
		LPAREN:    "LPAREN",
		RPAREN:    "RPAREN",
		LBRACKET:  "LBRACKET",
		RBRACKET:  "RBRACKET",
		COMMA:     "COMMA",
		EOS:       "EOS",
		PLUS:      "PLUS",
		MINUS:     "MINUS",
		STAR:      "STAR",
		SLASH:     "SLASH",
		PERCENT:   "PERCENT",
		TILDE:     "TILDE",
		BANG:      "BANG",
		AMP:       "AMP",
		PIPE:      "PIPE",
		CARET:     "CARET",
		SHL:       "SHL",
		SHR:       "SHR",
		ANDAND:    "ANDAND",
		OROR:      "OROR",
		EQUALS:    "EQUALS",
		EQEQ:      "EQEQ",
		NOTEQ:     "NOTEQ",
		LT:        "LT",
		GT:        "GT",
		LTEQ:      "LTEQ",
		GTEQ:      "GTEQ",
		INT:       "INT",
		IDENT:     "IDENT",
		RETURN:    "RETURN",
		INT_TYPE:  "INT_TYPE",
		VOID_TYPE: "VOID_TYPE",
	}
	if s, ok := data[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenKind(%d)", int(t))
}

// Symbol is the source spelling of operator and punctuation kinds, used in
// diagnostics.
func (t TokenKind) Symbol() string {
	data := map[TokenKind]string{
		LPAREN:    "(",
		RPAREN:    ")",
		LBRACKET:  "{",
		RBRACKET:  "}",
		COMMA:     ",",
		EOS:       ";",
		PLUS:      "+",
		MINUS:     "-",
		STAR:      "*",
		SLASH:     "/",
		PERCENT:   "%",
		TILDE:     "~",
		BANG:      "!",
		AMP:       "&",
		PIPE:      "|",
		CARET:     "^",
		SHL:       "<<",
		SHR:       ">>",
		ANDAND:    "&&",
		OROR:      "||",
		EQUALS:    "=",
		EQEQ:      "==",
		NOTEQ:     "!=",
		LT:        "<",
		GT:        ">",
		LTEQ:      "<=",
		GTEQ:      ">=",
		RETURN:    "return",
		INT_TYPE:  "int",
		VOID_TYPE: "void",
	}
	if s, ok := data[t]; ok {
		return s
	}
	return t.String()
}

func (p Position) String() string {
	if p.Filename == "" {
		p.Filename = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.From, s.To.Line, s.To.Column)
}

func SingleCharSpan(p Position) Span {
	return Span{p, p}
}

// Token is immutable once the lexer hands it out. Lit holds an identifier's
// text and Int an integer literal's value; both are zero for other kinds.
type Token struct {
	Kind     TokenKind
	Location Span
	Lit      string
	Int      int64
}

func (t Token) String() string {
	switch t.Kind {
	case IDENT:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Lit)
	case INT:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Int)
	}
	return t.Kind.String()
}
