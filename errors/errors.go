package errors

import (
	"fmt"
	"strings"

	"github.com/pontaoski/tinyc/types"
)

// SourceError reports that the input could not be opened or read.
type SourceError struct {
	Path string
	Err  error
}

func (e SourceError) Error() string {
	return fmt.Sprintf("could not read source %s: %s", e.Path, e.Err)
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// NumericLiteral reports an integer literal that does not fit a machine word.
type NumericLiteral struct {
	Literal  string
	Location types.Span
	Err      error
}

func (e NumericLiteral) Error() string {
	return fmt.Sprintf("integer literal %s out of range. %s", e.Literal, e.Location)
}

func (e NumericLiteral) Unwrap() error {
	return e.Err
}

// SyntaxError is raised by the parser at the first token that does not fit
// the grammar.
type SyntaxError struct {
	Expected []types.TokenKind
	Got      types.Token
	Message  string
	Location types.Span
}

func (e SyntaxError) Error() string {
	var b strings.Builder
	b.WriteString("syntax error: ")
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString("unexpected token")
	}
	if len(e.Expected) > 0 {
		var want []string
		for _, k := range e.Expected {
			want = append(want, fmt.Sprintf("'%s'", k.Symbol()))
		}
		fmt.Fprintf(&b, ", expected one of %s", strings.Join(want, " "))
	}
	fmt.Fprintf(&b, ", got %s. %s", e.Got, e.Location)
	return b.String()
}

type DuplicateDeclaration struct {
	Name     string
	Location types.Span
}

func (e DuplicateDeclaration) Error() string {
	return fmt.Sprintf("variable %s declared more than once. %s", e.Name, e.Location)
}

type UndefinedReference struct {
	Name     string
	Location types.Span
}

func (e UndefinedReference) Error() string {
	return fmt.Sprintf("reference to undeclared variable %s. %s", e.Name, e.Location)
}

// Unsupported covers programs that parse but that a backend cannot lower.
type Unsupported struct {
	What     string
	Location types.Span
}

func (e Unsupported) Error() string {
	return fmt.Sprintf("unsupported: %s. %s", e.What, e.Location)
}
