package lexer

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pontaoski/tinyc/errors"
	"github.com/pontaoski/tinyc/types"
)

var keywords = map[string]types.TokenKind{
	"return": types.RETURN,
	"int":    types.INT_TYPE,
	"void":   types.VOID_TYPE,
}

var singles = map[byte]types.TokenKind{
	'(': types.LPAREN,
	')': types.RPAREN,
	'{': types.LBRACKET,
	'}': types.RBRACKET,
	',': types.COMMA,
	';': types.EOS,
	'+': types.PLUS,
	'-': types.MINUS,
	'*': types.STAR,
	'/': types.SLASH,
	'%': types.PERCENT,
	'~': types.TILDE,
	'^': types.CARET,
}

type extension struct {
	next byte
	kind types.TokenKind
}

// doubles maps the first byte of a two-character operator to its possible
// second bytes. single is the kind produced when no extension matches.
var doubles = map[byte]struct {
	single types.TokenKind
	ext    []extension
}{
	'=': {types.EQUALS, []extension{{'=', types.EQEQ}}},
	'!': {types.BANG, []extension{{'=', types.NOTEQ}}},
	'<': {types.LT, []extension{{'=', types.LTEQ}, {'<', types.SHL}}},
	'>': {types.GT, []extension{{'=', types.GTEQ}, {'>', types.SHR}}},
	'&': {types.AMP, []extension{{'&', types.ANDAND}}},
	'|': {types.PIPE, []extension{{'|', types.OROR}}},
}

type Lexer struct {
	pos    types.Position
	reader *bufio.Reader
	peeked *types.Token

	// a failed Peek has already consumed the offending bytes
	peekedErr error
}

func NewLexer(reader io.Reader, filename string) *Lexer {
	return &Lexer{
		pos:    types.Position{Line: 1, Column: 0, Filename: filename},
		reader: bufio.NewReader(reader),
	}
}

// Tokenize drains the source into a token slice. The trailing EOF is not
// included.
func Tokenize(reader io.Reader, filename string) ([]types.Token, error) {
	l := NewLexer(reader, filename)

	var ret []types.Token
	for {
		tok, err := l.Lex()
		if err != nil {
			return nil, err
		}
		if tok.Kind == types.EOF {
			return ret, nil
		}
		ret = append(ret, tok)
	}
}

func TokenizeFile(path string) ([]types.Token, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, errors.SourceError{Path: path, Err: err}
	}
	defer handle.Close()

	return Tokenize(handle, path)
}

func (l *Lexer) newline() {
	l.pos.Line++
	l.pos.Column = 0
}

func (l *Lexer) backup() {
	// only ever called directly after a successful ReadByte
	_ = l.reader.UnreadByte()
	l.pos.Column--
}

func (l *Lexer) kinded(t types.TokenKind) types.Token {
	return types.Token{
		Location: types.SingleCharSpan(l.pos),
		Kind:     t,
	}
}

func (l *Lexer) readErr(err error) error {
	return errors.SourceError{Path: l.pos.Filename, Err: err}
}

func isAlpha(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

// scan reads the maximal run of bytes matching pred, starting at the next
// byte, and returns it with its span.
func (l *Lexer) scan(pred func(byte) bool) (types.Span, string, error) {
	var lit strings.Builder
	var span types.Span

	for {
		b, err := l.reader.ReadByte()
		if err == io.EOF {
			return span, lit.String(), nil
		}
		if err != nil {
			return span, "", l.readErr(err)
		}
		l.pos.Column++

		if !pred(b) {
			l.backup()
			return span, lit.String(), nil
		}

		if lit.Len() == 0 {
			span.From = l.pos
		}
		span.To = l.pos
		lit.WriteByte(b)
	}
}

func (l *Lexer) lexWord() (types.Token, error) {
	span, lit, err := l.scan(isAlpha)
	if err != nil {
		return types.Token{}, err
	}

	if kind, ok := keywords[lit]; ok {
		return types.Token{Kind: kind, Location: span}, nil
	}

	return types.Token{Kind: types.IDENT, Location: span, Lit: lit}, nil
}

func (l *Lexer) lexInt() (types.Token, error) {
	span, lit, err := l.scan(isDigit)
	if err != nil {
		return types.Token{}, err
	}

	val, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return types.Token{}, errors.NumericLiteral{
			Literal:  lit,
			Location: span,
			Err:      err,
		}
	}

	return types.Token{Kind: types.INT, Location: span, Int: val}, nil
}

func (l *Lexer) Peek() (types.Token, error) {
	if l.peeked != nil {
		return *l.peeked, nil
	}
	if l.peekedErr != nil {
		return types.Token{}, l.peekedErr
	}

	tok, err := l.Lex()
	if err != nil {
		l.peekedErr = err
		return tok, err
	}
	l.peeked = &tok

	return tok, nil
}

func (l *Lexer) PeekIs(k ...types.TokenKind) bool {
	token, err := l.Peek()
	if err != nil {
		return false
	}
	for _, kind := range k {
		if token.Kind == kind {
			return true
		}
	}

	return false
}

// Lex returns the next token. Bytes that start no token, whitespace
// included, are consumed without producing anything.
func (l *Lexer) Lex() (types.Token, error) {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok, nil
	}
	if l.peekedErr != nil {
		return types.Token{}, l.peekedErr
	}

	for {
		b, err := l.reader.ReadByte()
		if err == io.EOF {
			return l.kinded(types.EOF), nil
		}
		if err != nil {
			return types.Token{}, l.readErr(err)
		}

		l.pos.Column++

		switch {
		case b == '\n':
			l.newline()
			continue
		case isAlpha(b):
			l.backup()
			return l.lexWord()
		case isDigit(b):
			l.backup()
			return l.lexInt()
		}

		if kind, ok := singles[b]; ok {
			return l.kinded(kind), nil
		}

		if d, ok := doubles[b]; ok {
			from := l.pos

			next, err := l.reader.Peek(1)
			if err != nil && err != io.EOF {
				return types.Token{}, l.readErr(err)
			}
			if len(next) == 1 {
				for _, ext := range d.ext {
					if next[0] != ext.next {
						continue
					}
					if _, err := l.reader.ReadByte(); err != nil {
						return types.Token{}, l.readErr(err)
					}
					l.pos.Column++
					return types.Token{Kind: ext.kind, Location: types.Span{From: from, To: l.pos}}, nil
				}
			}

			return l.kinded(d.single), nil
		}
	}
}
