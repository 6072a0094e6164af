package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbol(t *testing.T) {
	cases := map[TokenKind]string{
		LBRACKET:  "{",
		SHL:       "<<",
		GTEQ:      ">=",
		RETURN:    "return",
		INT_TYPE:  "int",
		VOID_TYPE: "void",
		IDENT:     "IDENT",
	}

	for kind, want := range cases {
		assert.Equal(t, want, kind.Symbol(), kind.String())
	}
}
