package tablegen

import "strings"

var preprocessorDirectives = []string{"ifdef", "ifndef", "else", "endif", "define"}

// Lexer splits TableGen source into tokens.
type Lexer struct {
	file string
	src  []byte
	off  int
	line int
	col  int

	// lineStart is true while only whitespace has been seen on the current line.
	lineStart bool
}

// NewLexer creates a lexer over src; file is only used for positions.
func NewLexer(file string, src []byte) *Lexer {
	return &Lexer{file: file, src: src, line: 1, col: 1, lineStart: true}
}

// Tokenize lexes the whole input, ending with a TokenEOF token.
func Tokenize(file string, src []byte) ([]Token, error) {
	lx := NewLexer(file, src)
	var tokens []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
	}
}

func (lx *Lexer) pos() Pos {
	return Pos{File: lx.file, Line: lx.line, Column: lx.col}
}

func (lx *Lexer) peekByte(n int) byte {
	if lx.off+n < len(lx.src) {
		return lx.src[lx.off+n]
	}
	return 0
}

func (lx *Lexer) advance() byte {
	c := lx.src[lx.off]
	lx.off++
	if c == '\n' {
		lx.line++
		lx.col = 1
		lx.lineStart = true
	} else {
		lx.col++
	}
	return c
}

// Next returns the next token.
func (lx *Lexer) Next() (Token, error) {
	if err := lx.skipTrivia(); err != nil {
		return Token{}, err
	}
	start := lx.pos()
	if lx.off >= len(lx.src) {
		return Token{Kind: TokenEOF, Pos: start}, nil
	}
	lx.lineStart = false

	c := lx.peekByte(0)
	switch {
	case isIdentStart(c):
		return Token{Kind: TokenIdent, Text: lx.scanWord(), Pos: start}, nil
	case isDigit(c):
		return lx.scanNumber(start), nil
	case (c == '-' || c == '+') && isDigit(lx.peekByte(1)):
		lx.advance()
		tok := lx.scanNumber(start)
		tok.Text = string(c) + tok.Text
		return tok, nil
	case c == '"':
		return lx.scanString(start)
	case c == '[' && lx.peekByte(1) == '{':
		return lx.scanCode(start)
	case c == '!':
		lx.advance()
		if !isIdentStart(lx.peekByte(0)) {
			return Token{}, errorf(start, "expected operator name after '!'")
		}
		return Token{Kind: TokenBang, Text: lx.scanWord(), Pos: start}, nil
	case c == '.' && lx.peekByte(1) == '.' && lx.peekByte(2) == '.':
		lx.advance()
		lx.advance()
		lx.advance()
		return Token{Kind: TokenPunct, Text: "...", Pos: start}, nil
	case strings.IndexByte("<>[]{}(),;:=.#?-+$", c) >= 0:
		lx.advance()
		return Token{Kind: TokenPunct, Text: string(c), Pos: start}, nil
	}
	return Token{}, errorf(start, "unexpected character %q", c)
}

func (lx *Lexer) skipTrivia() error {
	for lx.off < len(lx.src) {
		c := lx.peekByte(0)
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			lx.advance()
		case c == '/' && lx.peekByte(1) == '/':
			lx.skipLine()
		case c == '/' && lx.peekByte(1) == '*':
			if err := lx.skipBlockComment(); err != nil {
				return err
			}
		case c == '#' && lx.lineStart && lx.atDirective():
			lx.skipLine()
		default:
			return nil
		}
	}
	return nil
}

func (lx *Lexer) atDirective() bool {
	rest := lx.src[lx.off+1:]
	for _, d := range preprocessorDirectives {
		if strings.HasPrefix(string(rest), d) {
			if len(rest) == len(d) || !isIdentChar(rest[len(d)]) {
				return true
			}
		}
	}
	return false
}

func (lx *Lexer) skipLine() {
	for lx.off < len(lx.src) && lx.peekByte(0) != '\n' {
		lx.advance()
	}
}

// Block comments nest.
func (lx *Lexer) skipBlockComment() error {
	start := lx.pos()
	depth := 0
	for lx.off < len(lx.src) {
		switch {
		case lx.peekByte(0) == '/' && lx.peekByte(1) == '*':
			lx.advance()
			lx.advance()
			depth++
		case lx.peekByte(0) == '*' && lx.peekByte(1) == '/':
			lx.advance()
			lx.advance()
			depth--
			if depth == 0 {
				return nil
			}
		default:
			lx.advance()
		}
	}
	return errorf(start, "unterminated comment")
}

func (lx *Lexer) scanWord() string {
	begin := lx.off
	for lx.off < len(lx.src) && isIdentChar(lx.peekByte(0)) {
		lx.advance()
	}
	return string(lx.src[begin:lx.off])
}

func (lx *Lexer) scanNumber(start Pos) Token {
	begin := lx.off
	digit := isDigit
	if lx.peekByte(0) == '0' && lx.peekByte(1) == 'x' && isHexDigit(lx.peekByte(2)) {
		lx.advance()
		lx.advance()
		digit = isHexDigit
	} else if lx.peekByte(0) == '0' && lx.peekByte(1) == 'b' && isBinaryDigit(lx.peekByte(2)) {
		lx.advance()
		lx.advance()
		digit = isBinaryDigit
	}
	for lx.off < len(lx.src) && digit(lx.peekByte(0)) {
		lx.advance()
	}
	// Names such as "2addr" are identifiers that start with digits.
	if lx.off < len(lx.src) && isIdentChar(lx.peekByte(0)) {
		for lx.off < len(lx.src) && isIdentChar(lx.peekByte(0)) {
			lx.advance()
		}
		return Token{Kind: TokenIdent, Text: string(lx.src[begin:lx.off]), Pos: start}
	}
	return Token{Kind: TokenInt, Text: string(lx.src[begin:lx.off]), Pos: start}
}

func (lx *Lexer) scanString(start Pos) (Token, error) {
	lx.advance() // opening quote
	var sb strings.Builder
	for {
		if lx.off >= len(lx.src) || lx.peekByte(0) == '\n' {
			return Token{}, errorf(start, "unterminated string literal")
		}
		c := lx.advance()
		if c == '"' {
			return Token{Kind: TokenString, Text: sb.String(), Pos: start}, nil
		}
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		if lx.off >= len(lx.src) {
			return Token{}, errorf(start, "unterminated string literal")
		}
		switch esc := lx.advance(); esc {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case '\\', '"', '\'':
			sb.WriteByte(esc)
		default:
			return Token{}, errorf(start, "invalid escape sequence \\%c", esc)
		}
	}
}

func (lx *Lexer) scanCode(start Pos) (Token, error) {
	lx.advance()
	lx.advance()
	begin := lx.off
	for lx.off < len(lx.src) {
		if lx.peekByte(0) == '}' && lx.peekByte(1) == ']' {
			text := string(lx.src[begin:lx.off])
			lx.advance()
			lx.advance()
			return Token{Kind: TokenCode, Text: text, Pos: start}, nil
		}
		lx.advance()
	}
	return Token{}, errorf(start, "unterminated code block")
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isBinaryDigit(c byte) bool {
	return c == '0' || c == '1'
}
