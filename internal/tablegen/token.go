package tablegen

import "fmt"

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenInt
	TokenString
	TokenCode
	TokenBang // !name operator, Text holds the name without "!"
	TokenPunct
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of file"
	case TokenIdent:
		return "identifier"
	case TokenInt:
		return "integer"
	case TokenString:
		return "string"
	case TokenCode:
		return "code block"
	case TokenBang:
		return "bang operator"
	case TokenPunct:
		return "punctuation"
	}
	return "unknown"
}

// Pos is a location inside a source file.
type Pos struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Token is a single lexeme. For strings and code blocks Text is the decoded
// contents without delimiters.
type Token struct {
	Kind TokenKind
	Text string
	Pos  Pos
}

func (t Token) is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}

func (t Token) describe() string {
	switch t.Kind {
	case TokenEOF:
		return "end of file"
	case TokenString:
		return fmt.Sprintf("string %q", t.Text)
	case TokenCode:
		return "code block"
	case TokenBang:
		return "!" + t.Text
	}
	return fmt.Sprintf("%q", t.Text)
}
