package tablegen

import (
	"fmt"
	"os"
)

// Parser builds a File from a token stream.
type Parser struct {
	tokens []Token
	cur    int
}

// ParseFile reads and parses a TableGen file from disk.
func ParseFile(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return Parse(path, src)
}

// Parse parses src; path is recorded in positions and the returned File.
func Parse(path string, src []byte) (*File, error) {
	tokens, err := Tokenize(path, src)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens}
	stmts, err := p.parseStatements(false)
	if err != nil {
		return nil, err
	}
	return &File{Path: path, Statements: stmts}, nil
}

func (p *Parser) peek() Token {
	return p.tokens[p.cur]
}

func (p *Parser) peekAt(n int) Token {
	if p.cur+n < len(p.tokens) {
		return p.tokens[p.cur+n]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) next() Token {
	tok := p.tokens[p.cur]
	if tok.Kind != TokenEOF {
		p.cur++
	}
	return tok
}

func (p *Parser) accept(text string) bool {
	if p.peek().is(TokenPunct, text) {
		p.cur++
		return true
	}
	return false
}

func (p *Parser) expect(text string) (Token, error) {
	tok := p.peek()
	if !tok.is(TokenPunct, text) {
		return tok, errorf(tok.Pos, "expected %q, found %s", text, tok.describe())
	}
	return p.next(), nil
}

func (p *Parser) expectIdent() (Token, error) {
	tok := p.peek()
	if tok.Kind != TokenIdent {
		return tok, errorf(tok.Pos, "expected identifier, found %s", tok.describe())
	}
	return p.next(), nil
}

// parseStatements reads statements until EOF, or until a closing brace when
// inBlock is set. The closing brace is consumed.
func (p *Parser) parseStatements(inBlock bool) ([]Statement, error) {
	var stmts []Statement
	for {
		tok := p.peek()
		switch {
		case tok.Kind == TokenEOF:
			if inBlock {
				return nil, errorf(tok.Pos, "expected '}', found end of file")
			}
			return stmts, nil
		case inBlock && tok.is(TokenPunct, "}"):
			p.next()
			return stmts, nil
		case tok.is(TokenPunct, ";"):
			p.next()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *Parser) parseStatement() (Statement, error) {
	tok := p.peek()
	if tok.Kind != TokenIdent {
		return nil, errorf(tok.Pos, "expected statement, found %s", tok.describe())
	}
	switch tok.Text {
	case "include":
		return p.parseInclude()
	case "def":
		return p.parseDef()
	case "let":
		return p.parseLet()
	case "defset":
		return p.parseDefset()
	case "class", "multiclass":
		return p.skipDeclaration()
	case "defm":
		return p.skipDefm()
	case "defvar", "assert", "dump":
		return p.skipToSemicolon()
	case "foreach":
		return p.skipNested("in")
	case "if":
		return p.skipNested("then")
	}
	return nil, errorf(tok.Pos, "unexpected %s at start of statement", tok.describe())
}

func (p *Parser) parseInclude() (Statement, error) {
	kw := p.next()
	tok := p.peek()
	if tok.Kind != TokenString {
		return nil, errorf(tok.Pos, "expected include path string, found %s", tok.describe())
	}
	p.next()
	return &Include{Path: tok.Text, At: kw.Pos}, nil
}

func (p *Parser) parseDef() (Statement, error) {
	kw := p.next()
	def := &Def{At: kw.Pos}

	if tok := p.peek(); !tok.is(TokenPunct, ":") && !tok.is(TokenPunct, "{") && !tok.is(TokenPunct, ";") {
		name, err := p.parseDefName()
		if err != nil {
			return nil, err
		}
		def.Name = name
	}

	if p.accept(":") {
		for {
			ref, err := p.parseClassRef()
			if err != nil {
				return nil, err
			}
			def.Parents = append(def.Parents, ref)
			if !p.accept(",") {
				break
			}
		}
	}

	if err := p.parseRecordBody(); err != nil {
		return nil, err
	}
	return def, nil
}

func (p *Parser) parseDefName() (string, error) {
	v, err := p.parseValue(false)
	if err != nil {
		return "", err
	}
	return Text(v), nil
}

func (p *Parser) parseClassRef() (ClassRef, error) {
	name, err := p.expectIdent()
	if err != nil {
		return ClassRef{}, err
	}
	ref := ClassRef{Name: name.Text, At: name.Pos}
	if p.accept("<") {
		args, err := p.parseValueList(">")
		if err != nil {
			return ClassRef{}, err
		}
		ref.Args = args
	}
	return ref, nil
}

// parseRecordBody consumes either ';' or a balanced { ... } body.
func (p *Parser) parseRecordBody() error {
	tok := p.peek()
	switch {
	case tok.is(TokenPunct, ";"):
		p.next()
		return nil
	case tok.is(TokenPunct, "{"):
		return p.skipBalanced()
	}
	return errorf(tok.Pos, "expected ';' or '{', found %s", tok.describe())
}

func (p *Parser) parseLet() (Statement, error) {
	kw := p.next()
	let := &Let{At: kw.Pos}
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if p.peek().is(TokenPunct, "{") || p.peek().is(TokenPunct, "[") {
			if err := p.skipBalanced(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect("="); err != nil {
			return nil, err
		}
		v, err := p.parseValue(true)
		if err != nil {
			return nil, err
		}
		let.Bindings = append(let.Bindings, LetBinding{Name: name.Text, Value: v})
		if !p.accept(",") {
			break
		}
	}
	if tok := p.next(); !tok.is(TokenIdent, "in") {
		return nil, errorf(tok.Pos, "expected 'in', found %s", tok.describe())
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	let.Body = body
	return let, nil
}

func (p *Parser) parseDefset() (Statement, error) {
	kw := p.next()
	if err := p.skipType(); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("="); err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	body, err := p.parseStatements(true)
	if err != nil {
		return nil, err
	}
	return &Defset{Name: name.Text, Body: body, At: kw.Pos}, nil
}

// parseBody reads a { ... } statement block or a single statement.
func (p *Parser) parseBody() ([]Statement, error) {
	if p.accept("{") {
		return p.parseStatements(true)
	}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return []Statement{stmt}, nil
}

// skipDeclaration skips a class or multiclass: header tokens up to a
// top-level ';' or body block.
func (p *Parser) skipDeclaration() (Statement, error) {
	kw := p.next()
	for {
		tok := p.peek()
		switch {
		case tok.Kind == TokenEOF:
			return nil, errorf(kw.Pos, "unterminated %s declaration", kw.Text)
		case tok.is(TokenPunct, ";"):
			p.next()
			return &Skipped{Keyword: kw.Text, At: kw.Pos}, nil
		case tok.is(TokenPunct, "{"):
			if err := p.skipBalanced(); err != nil {
				return nil, err
			}
			return &Skipped{Keyword: kw.Text, At: kw.Pos}, nil
		case isOpener(tok):
			if err := p.skipBalanced(); err != nil {
				return nil, err
			}
		default:
			p.next()
		}
	}
}

func (p *Parser) skipDefm() (Statement, error) {
	kw := p.next()
	for {
		tok := p.peek()
		switch {
		case tok.Kind == TokenEOF:
			return nil, errorf(kw.Pos, "unterminated defm")
		case tok.is(TokenPunct, ";"):
			p.next()
			return &Skipped{Keyword: kw.Text, At: kw.Pos}, nil
		case tok.is(TokenPunct, "{") && p.peekAt(1).Kind != TokenInt:
			if err := p.skipBalanced(); err != nil {
				return nil, err
			}
			return &Skipped{Keyword: kw.Text, At: kw.Pos}, nil
		case isOpener(tok):
			if err := p.skipBalanced(); err != nil {
				return nil, err
			}
		default:
			p.next()
		}
	}
}

func (p *Parser) skipToSemicolon() (Statement, error) {
	kw := p.next()
	for {
		tok := p.peek()
		switch {
		case tok.Kind == TokenEOF:
			return nil, errorf(kw.Pos, "unterminated %s statement", kw.Text)
		case tok.is(TokenPunct, ";"):
			p.next()
			return &Skipped{Keyword: kw.Text, At: kw.Pos}, nil
		case isOpener(tok):
			if err := p.skipBalanced(); err != nil {
				return nil, err
			}
		default:
			p.next()
		}
	}
}

// skipNested skips foreach/if headers up to the given keyword and parses the
// bodies so nested blocks stay balanced. The records inside are not visited.
func (p *Parser) skipNested(keyword string) (Statement, error) {
	kw := p.next()
	for {
		tok := p.peek()
		if tok.Kind == TokenEOF {
			return nil, errorf(kw.Pos, "expected %q in %s statement", keyword, kw.Text)
		}
		if tok.is(TokenIdent, keyword) {
			p.next()
			break
		}
		if isOpener(tok) {
			if err := p.skipBalanced(); err != nil {
				return nil, err
			}
			continue
		}
		p.next()
	}
	if _, err := p.parseBody(); err != nil {
		return nil, err
	}
	if keyword == "then" && p.peek().is(TokenIdent, "else") {
		p.next()
		if _, err := p.parseBody(); err != nil {
			return nil, err
		}
	}
	return &Skipped{Keyword: kw.Text, At: kw.Pos}, nil
}

func isOpener(tok Token) bool {
	if tok.Kind != TokenPunct {
		return false
	}
	switch tok.Text {
	case "{", "[", "(", "<":
		return true
	}
	return false
}

func closerFor(open string) string {
	switch open {
	case "{":
		return "}"
	case "[":
		return "]"
	case "(":
		return ")"
	}
	return ">"
}

// skipBalanced consumes an opener and everything up to its matching closer.
func (p *Parser) skipBalanced() error {
	open := p.next()
	stack := []string{closerFor(open.Text)}
	for len(stack) > 0 {
		tok := p.next()
		switch {
		case tok.Kind == TokenEOF:
			return errorf(open.Pos, "unbalanced %q", open.Text)
		case isOpener(tok):
			stack = append(stack, closerFor(tok.Text))
		case tok.Kind == TokenPunct && tok.Text == stack[len(stack)-1]:
			stack = stack[:len(stack)-1]
		case tok.Kind == TokenPunct && (tok.Text == "}" || tok.Text == "]" || tok.Text == ")"):
			return errorf(tok.Pos, "unexpected %q, expected %q", tok.Text, stack[len(stack)-1])
		}
	}
	return nil
}

// skipType consumes a type such as `int`, `list<DiagGroup>` or `bits<4>`.
func (p *Parser) skipType() error {
	if _, err := p.expectIdent(); err != nil {
		return err
	}
	if p.peek().is(TokenPunct, "<") {
		return p.skipBalanced()
	}
	return nil
}

// parseValueList parses comma separated values up to closer, which is consumed.
// Named arguments (`name = value`) are accepted and keep only the value.
func (p *Parser) parseValueList(closer string) ([]Value, error) {
	var values []Value
	if p.accept(closer) {
		return values, nil
	}
	for {
		if p.peek().Kind == TokenIdent && p.peekAt(1).is(TokenPunct, "=") {
			p.next()
			p.next()
		}
		v, err := p.parseValue(true)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		if p.accept(closer) {
			return values, nil
		}
		if _, err := p.expect(","); err != nil {
			return nil, err
		}
		// Trailing commas are allowed.
		if p.accept(closer) {
			return values, nil
		}
	}
}

// parseValue parses a value with its suffixes. allowBits permits a `{...}`
// bit-range suffix, which would otherwise be confused with a record body.
func (p *Parser) parseValue(allowBits bool) (Value, error) {
	v, err := p.parseSimpleValue()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		switch {
		case tok.is(TokenPunct, "{") && allowBits && p.peekAt(1).Kind == TokenInt:
			if err := p.skipBalanced(); err != nil {
				return nil, err
			}
			v = &SuffixValue{Base: v, Suffix: "{}", At: tok.Pos}
		case tok.is(TokenPunct, "["):
			if err := p.skipBalanced(); err != nil {
				return nil, err
			}
			v = &SuffixValue{Base: v, Suffix: "[]", At: tok.Pos}
		case tok.is(TokenPunct, "."):
			p.next()
			field, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			v = &SuffixValue{Base: v, Suffix: "." + field.Text, At: tok.Pos}
		case tok.is(TokenPunct, "#"):
			p.next()
			paste := &PasteValue{Left: v, At: tok.Pos}
			if startsValue(p.peek()) {
				right, err := p.parseSimpleValue()
				if err != nil {
					return nil, err
				}
				paste.Right = right
			}
			v = paste
		default:
			return v, nil
		}
	}
}

func startsValue(tok Token) bool {
	switch tok.Kind {
	case TokenIdent, TokenInt, TokenString, TokenCode, TokenBang:
		return true
	case TokenPunct:
		switch tok.Text {
		case "?", "[", "{", "(":
			return true
		}
	}
	return false
}

func (p *Parser) parseSimpleValue() (Value, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokenInt:
		p.next()
		return &IntValue{Text: tok.Text, At: tok.Pos}, nil
	case TokenString:
		p.next()
		text := tok.Text
		for p.peek().Kind == TokenString {
			text += p.next().Text
		}
		return &StringValue{Text: text, At: tok.Pos}, nil
	case TokenCode:
		p.next()
		return &CodeValue{Text: tok.Text, At: tok.Pos}, nil
	case TokenIdent:
		p.next()
		switch tok.Text {
		case "true":
			return &BoolValue{Value: true, At: tok.Pos}, nil
		case "false":
			return &BoolValue{Value: false, At: tok.Pos}, nil
		}
		if p.accept("<") {
			args, err := p.parseValueList(">")
			if err != nil {
				return nil, err
			}
			return &ClassValue{Class: tok.Text, Args: args, At: tok.Pos}, nil
		}
		return &Identifier{Name: tok.Text, At: tok.Pos}, nil
	case TokenBang:
		return p.parseBang()
	case TokenPunct:
		switch tok.Text {
		case "?":
			p.next()
			return &Uninitialized{At: tok.Pos}, nil
		case "[":
			p.next()
			elems, err := p.parseValueList("]")
			if err != nil {
				return nil, err
			}
			if p.peek().is(TokenPunct, "<") {
				if err := p.skipBalanced(); err != nil {
					return nil, err
				}
			}
			return &ListValue{Elements: elems, At: tok.Pos}, nil
		case "{":
			p.next()
			elems, err := p.parseValueList("}")
			if err != nil {
				return nil, err
			}
			return &BitsValue{Elements: elems, At: tok.Pos}, nil
		case "(":
			return p.parseDag()
		}
	}
	return nil, errorf(tok.Pos, "expected value, found %s", tok.describe())
}

func (p *Parser) parseBang() (Value, error) {
	op := p.next()
	if p.peek().is(TokenPunct, "<") {
		if err := p.skipBalanced(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	bang := &BangValue{Op: op.Text, At: op.Pos}
	if p.accept(")") {
		return bang, nil
	}
	for {
		v, err := p.parseValue(true)
		if err != nil {
			return nil, err
		}
		bang.Args = append(bang.Args, v)
		// !cond pairs are written `condition : value`.
		if p.accept(":") {
			v, err := p.parseValue(true)
			if err != nil {
				return nil, err
			}
			bang.Args = append(bang.Args, v)
		}
		if p.accept(")") {
			return bang, nil
		}
		if _, err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseDag() (Value, error) {
	open := p.next()
	dag := &DagValue{At: open.Pos}
	op, err := p.parseValue(true)
	if err != nil {
		return nil, err
	}
	dag.Operator = op
	if p.accept(":") {
		if err := p.skipVarName(); err != nil {
			return nil, err
		}
	}
	if p.accept(")") {
		return dag, nil
	}
	for {
		if p.peek().is(TokenPunct, "$") {
			if err := p.skipVarName(); err != nil {
				return nil, err
			}
		} else {
			v, err := p.parseValue(true)
			if err != nil {
				return nil, err
			}
			dag.Args = append(dag.Args, v)
			if p.accept(":") {
				if err := p.skipVarName(); err != nil {
					return nil, err
				}
			}
		}
		if p.accept(")") {
			return dag, nil
		}
		if _, err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

// skipVarName consumes an optional `$name`.
func (p *Parser) skipVarName() error {
	if !p.accept("$") {
		return nil
	}
	_, err := p.expectIdent()
	return err
}
