package printer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pontaoski/tinyc/lexer"
	"github.com/pontaoski/tinyc/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	src := "int main(int a, int b){ int x; int y = -a; y = x = a % 2 || b; return y + 1; }"
	tokens, err := lexer.Tokenize(strings.NewReader(src), "test.c")
	require.NoError(t, err)
	fn, err := parser.Parse(tokens)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Fprint(&out, fn))

	want := `FunctionDecl name=main, return=int, parameters=(int a)(int b):
  VariableDecl int x = init
  VariableDecl int y =
    UnaryOp -
      Variable a
  ExprStmt
    Assignment y =
      Assignment x =
        BinaryOp ||
          BinaryOp %
            Variable a
            IntLiteral 2
          Variable b
  ReturnStmt
    BinaryOp +
      Variable y
      IntLiteral 1
`
	assert.Equal(t, want, out.String())
	assert.Equal(t, want, Sprint(fn))
}
