package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/sandrolain/jsonmap/pkg/types"
)

// bodyDialect records which separator style an object body committed to.
type bodyDialect uint8

const (
	dialectUnknown   bodyDialect = iota
	dialectStatement             // key = expr;
	dialectJSON                  // "key": expr,
)

// Parser implements a recursive descent parser for jsonmap programs.
type Parser struct {
	lexer   *Lexer
	current Token
	opts    CompileOptions
	depth   int
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...CompileOption) *Parser {
	options := CompileOptions{
		MaxDepth: 100,
	}
	for _, opt := range opts {
		opt(&options)
	}

	p := &Parser{
		lexer: NewLexer(input),
		opts:  options,
	}

	// Read the first token
	p.advance()

	return p
}

// Parse parses the entire program and returns the compiled Program.
//
// The top level of a program is an object body without braces: both the
// statement dialect and the JSON dialect are accepted, with the usual
// no-mixing rule.
func (p *Parser) Parse() (*types.Program, error) {
	if p.current.Type == TokenError {
		return nil, p.lexer.Error()
	}

	if p.current.Type == TokenEOF {
		return nil, p.errorf(types.ErrSyntax, "Empty program")
	}

	node := types.NewASTNode(types.NodeProgram, p.current.Line, p.current.Column)

	entries, err := p.parseObjectBody(TokenEOF)
	if err != nil {
		return nil, err
	}
	node.Entries = entries

	if p.current.Type != TokenEOF {
		return nil, p.errorf(types.ErrSyntax, "Unexpected token: %s", p.current.Type)
	}

	return types.NewProgram(node, p.lexer.input), nil
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.current = p.lexer.Next()
}

// expect checks that the current token matches the expected type and advances.
func (p *Parser) expect(tt TokenType) error {
	if p.current.Type == TokenError {
		return p.lexer.Error()
	}
	if p.current.Type != tt {
		return p.errorf(types.ErrExpectedToken, "Expected %s but got %s", tt, p.current.Type)
	}
	p.advance()
	return nil
}

// errorf creates a parser error at the current token.
func (p *Parser) errorf(code types.ErrorCode, format string, args ...any) error {
	return types.NewError(code, fmt.Sprintf(format, args...), p.current.Line, p.current.Column).
		WithToken(p.current.Value)
}

// errorAt creates a parser error at an explicit position.
func (p *Parser) errorAt(code types.ErrorCode, line, column int, format string, args ...any) error {
	return types.NewError(code, fmt.Sprintf(format, args...), line, column)
}

// parseObjectBody parses the bindings of an object body (or of the whole
// program, with closing == TokenEOF). The first separator after the first
// binding name commits the body to one dialect; the other dialect's
// separators are rejected from then on. Binding names must be unique within
// the body.
func (p *Parser) parseObjectBody(closing TokenType) ([]types.Entry, error) {
	var entries []types.Entry
	seen := make(map[string]struct{})
	dia := dialectUnknown

	for p.current.Type != closing {
		if p.current.Type == TokenError {
			return nil, p.lexer.Error()
		}

		// Binding name: identifier or quoted string
		var key string
		keyLine, keyColumn := p.current.Line, p.current.Column
		switch p.current.Type {
		case TokenIdent:
			key = p.current.Value
		case TokenString:
			s, err := p.unquote(p.current)
			if err != nil {
				return nil, err
			}
			key = s
		default:
			return nil, p.errorf(types.ErrExpectedToken, "Expected binding name but got %s", p.current.Type)
		}
		p.advance()

		// The separator decides, then enforces, the body dialect
		switch p.current.Type {
		case TokenAssign:
			if dia == dialectJSON {
				return nil, p.errorf(types.ErrMixedDialect, `Statement-style "=" in a JSON-style body`)
			}
			dia = dialectStatement
		case TokenColon:
			if dia == dialectStatement {
				return nil, p.errorf(types.ErrMixedDialect, `JSON-style ":" in a statement-style body`)
			}
			dia = dialectJSON
		default:
			return nil, p.errorf(types.ErrExpectedToken, `Expected "=" or ":" but got %s`, p.current.Type)
		}
		p.advance()

		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, dup := seen[key]; dup {
			return nil, p.errorAt(types.ErrDuplicateName, keyLine, keyColumn,
				"Duplicate name %q in the same scope", key)
		}
		seen[key] = struct{}{}
		entries = append(entries, types.Entry{Key: key, Line: keyLine, Column: keyColumn, Value: value})

		// Terminator: ";" in statement bodies, "," in JSON bodies.
		// Optional before the closing token.
		sep, wrong := TokenSemicolon, TokenComma
		if dia == dialectJSON {
			sep, wrong = TokenComma, TokenSemicolon
		}
		switch p.current.Type {
		case sep:
			p.advance()
		case wrong:
			return nil, p.errorf(types.ErrMixedDialect, "Expected %s but got %s", sep, wrong)
		case closing:
		case TokenError:
			return nil, p.lexer.Error()
		default:
			return nil, p.errorf(types.ErrExpectedToken, "Expected %s or %s but got %s", sep, closing, p.current.Type)
		}
	}

	return entries, nil
}

// parseExpr parses a single expression.
func (p *Parser) parseExpr() (*types.ASTNode, error) {
	if p.opts.MaxDepth > 0 && p.depth >= p.opts.MaxDepth {
		return nil, p.errorf(types.ErrTooDeep, "Expression nesting exceeds %d levels", p.opts.MaxDepth)
	}
	p.depth++
	defer func() { p.depth-- }()

	tok := p.current
	switch tok.Type {
	case TokenNull:
		p.advance()
		return types.NewASTNode(types.NodeNull, tok.Line, tok.Column), nil
	case TokenTrue, TokenFalse:
		p.advance()
		node := types.NewASTNode(types.NodeBoolean, tok.Line, tok.Column)
		node.BoolValue = tok.Type == TokenTrue
		return node, nil
	case TokenNumber:
		return p.parseNumber()
	case TokenString:
		return p.parseString()
	case TokenRef, TokenAnonRef, TokenGlobalRef:
		return p.parseRef()
	case TokenBracketOpen:
		return p.parseList()
	case TokenBraceOpen:
		return p.parseObject()
	case TokenMap:
		return p.parseMap()
	case TokenZip:
		return p.parseZip()
	case TokenBind:
		return p.parseBind()
	case TokenError:
		return nil, p.lexer.Error()
	default:
		return nil, p.errorf(types.ErrSyntax, "Expected expression but got %s", tok.Type)
	}
}

// parseNumber parses a number literal.
func (p *Parser) parseNumber() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeNumber, p.current.Line, p.current.Column)

	val, err := strconv.ParseFloat(p.current.Value, 64)
	if err != nil {
		return nil, p.errorf(types.ErrBadNumber, "Invalid number: %s", p.current.Value)
	}

	node.NumValue = val
	p.advance()
	return node, nil
}

// parseString parses a string literal.
func (p *Parser) parseString() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeString, p.current.Line, p.current.Column)

	unescaped, err := p.unquote(p.current)
	if err != nil {
		return nil, err
	}

	node.StrValue = unescaped
	p.advance()
	return node, nil
}

// parseList parses a list literal: '[' (expr (',' expr)*)? ','? ']'
func (p *Parser) parseList() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeList, p.current.Line, p.current.Column)
	p.advance() // consume [

	for p.current.Type != TokenBracketClose {
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node.Items = append(node.Items, elem)

		switch p.current.Type {
		case TokenComma:
			p.advance()
		case TokenBracketClose:
		case TokenError:
			return nil, p.lexer.Error()
		default:
			return nil, p.errorf(types.ErrExpectedToken, `Expected "," or "]" but got %s`, p.current.Type)
		}
	}
	p.advance() // consume ]

	return node, nil
}

// parseObject parses an object literal: '{' objectBody '}'
func (p *Parser) parseObject() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeObject, p.current.Line, p.current.Column)
	p.advance() // consume {

	entries, err := p.parseObjectBody(TokenBraceClose)
	if err != nil {
		return nil, err
	}
	node.Entries = entries

	if err := p.expect(TokenBraceClose); err != nil {
		return nil, err
	}

	return node, nil
}

// parseRef parses a reference expression. The first path step may follow
// the root token directly with no dot (&name, &!store, &?.0 and &?0 are all
// accepted); subsequent steps always require a dot.
func (p *Parser) parseRef() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeRef, p.current.Line, p.current.Column)
	switch p.current.Type {
	case TokenAnonRef:
		node.Root = types.RootAnonymous
	case TokenGlobalRef:
		node.Root = types.RootGlobal
	default:
		node.Root = types.RootCurrent
	}
	p.advance()

	if p.isPathStepToken() {
		step, err := p.parsePathStep()
		if err != nil {
			return nil, err
		}
		node.Steps = append(node.Steps, step)
	}

	for p.current.Type == TokenDot {
		p.advance()
		step, err := p.parsePathStep()
		if err != nil {
			return nil, err
		}
		node.Steps = append(node.Steps, step)
	}

	return node, nil
}

// isPathStepToken reports whether the current token can start a path step.
func (p *Parser) isPathStepToken() bool {
	switch p.current.Type {
	case TokenIdent, TokenString, TokenNumber,
		TokenMap, TokenZip, TokenBind, TokenTrue, TokenFalse, TokenNull:
		return true
	default:
		return false
	}
}

// parsePathStep parses one step of a reference path: a field name
// (identifier, keyword used as a name, or quoted string) or a non-negative
// integer list index.
func (p *Parser) parsePathStep() (types.PathStep, error) {
	var step types.PathStep

	switch p.current.Type {
	case TokenIdent, TokenMap, TokenZip, TokenBind, TokenTrue, TokenFalse, TokenNull:
		step = types.FieldStep(p.current.Value)
	case TokenString:
		s, err := p.unquote(p.current)
		if err != nil {
			return step, err
		}
		step = types.FieldStep(s)
	case TokenNumber:
		idx, err := strconv.Atoi(p.current.Value)
		if err != nil || idx < 0 {
			return step, p.errorf(types.ErrSyntax, "List index in a path must be a non-negative integer, got %q", p.current.Value)
		}
		step = types.IndexStep(idx)
	case TokenError:
		return step, p.lexer.Error()
	default:
		return step, p.errorf(types.ErrExpectedToken, "Expected field name or list index but got %s", p.current.Type)
	}

	p.advance()
	return step, nil
}

// parseMap parses: 'map' expr body
func (p *Parser) parseMap() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeMap, p.current.Line, p.current.Column)
	p.advance() // consume map

	source, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	node.Sources = []*types.ASTNode{source}

	body, err := p.parseBody("map")
	if err != nil {
		return nil, err
	}
	node.Body = body

	return node, nil
}

// parseBind parses: 'bind' expr body
func (p *Parser) parseBind() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeBind, p.current.Line, p.current.Column)
	p.advance() // consume bind

	source, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	node.Sources = []*types.ASTNode{source}

	body, err := p.parseBody("bind")
	if err != nil {
		return nil, err
	}
	node.Body = body

	return node, nil
}

// parseZip parses: 'zip' expr+ body
//
// Sources are parsed greedily until a token that cannot start an expression;
// the final {...} or [...] block is the body and everything before it is a
// source. A program where the body cannot be isolated is rejected.
func (p *Parser) parseZip() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeZip, p.current.Line, p.current.Column)
	p.advance() // consume zip

	var args []*types.ASTNode
	for !p.atZipEnd() {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	if len(args) == 0 {
		return nil, p.errorf(types.ErrMissingBody, "Expected zip sources and body")
	}

	body, err := p.bodyFromLiteral(args[len(args)-1])
	if err != nil {
		return nil, err
	}

	sources := args[:len(args)-1]
	if len(sources) == 0 {
		return nil, p.errorAt(types.ErrNoSources, node.Line, node.Column, "zip requires at least one source")
	}

	node.Sources = sources
	node.Body = body

	return node, nil
}

// atZipEnd reports whether the current token ends a zip argument sequence.
func (p *Parser) atZipEnd() bool {
	switch p.current.Type {
	case TokenSemicolon, TokenComma, TokenBraceClose, TokenBracketClose, TokenEOF:
		return true
	default:
		return false
	}
}

// bodyFromLiteral reinterprets the final zip argument as the body.
func (p *Parser) bodyFromLiteral(last *types.ASTNode) (*types.ASTNode, error) {
	switch last.Type {
	case types.NodeObject:
		body := types.NewASTNode(types.NodeBodyObject, last.Line, last.Column)
		body.Entries = last.Entries
		return body, nil
	case types.NodeList:
		if len(last.Items) == 0 {
			return nil, p.errorAt(types.ErrEmptyBody, last.Line, last.Column, "Empty list body for zip")
		}
		body := types.NewASTNode(types.NodeBodyList, last.Line, last.Column)
		body.Items = last.Items
		return body, nil
	default:
		return nil, p.errorAt(types.ErrMissingBody, last.Line, last.Column,
			"Cannot identify the zip body: the final argument must be a {...} or [...] block")
	}
}

// parseBody parses the body of a map/zip/bind: either a list body
// '[' expr (',' expr)* ','? ']' or an object body '{' objectBody '}'.
// An empty list body is a parse error.
func (p *Parser) parseBody(keyword string) (*types.ASTNode, error) {
	switch p.current.Type {
	case TokenBraceOpen:
		body := types.NewASTNode(types.NodeBodyObject, p.current.Line, p.current.Column)
		p.advance() // consume {

		entries, err := p.parseObjectBody(TokenBraceClose)
		if err != nil {
			return nil, err
		}
		body.Entries = entries

		if err := p.expect(TokenBraceClose); err != nil {
			return nil, err
		}
		return body, nil

	case TokenBracketOpen:
		body := types.NewASTNode(types.NodeBodyList, p.current.Line, p.current.Column)
		p.advance() // consume [

		if p.current.Type == TokenBracketClose {
			return nil, p.errorf(types.ErrEmptyBody, "Empty list body for %s", keyword)
		}

		for p.current.Type != TokenBracketClose {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			body.Items = append(body.Items, expr)

			switch p.current.Type {
			case TokenComma:
				p.advance()
			case TokenBracketClose:
			case TokenError:
				return nil, p.lexer.Error()
			default:
				return nil, p.errorf(types.ErrExpectedToken, `Expected "," or "]" but got %s`, p.current.Type)
			}
		}
		p.advance() // consume ]
		return body, nil

	default:
		return nil, p.errorf(types.ErrMissingBody, `Expected "{" or "[" body for %s but got %s`, keyword, p.current.Type)
	}
}

// unquote processes the escape sequences of a string token.
func (p *Parser) unquote(tok Token) (string, error) {
	s, err := unescapeString(tok.Value)
	if err != nil {
		return "", types.NewError(types.ErrBadEscape, err.Error(), tok.Line, tok.Column).WithToken(tok.Value)
	}
	return s, nil
}

// unescapeString processes escape sequences in a string literal.
// Handles the JSON escapes (\" \\ \/ \n \r \t \b \f) and Unicode escapes
// (\uXXXX), including UTF-16 surrogate pairs for characters outside the BMP.
func unescapeString(s string) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil // Fast path: no escapes
	}

	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			result.WriteByte(s[i])
			continue
		}

		i++ // Skip backslash
		if i >= len(s) {
			return "", fmt.Errorf("invalid escape sequence at end of string")
		}

		switch s[i] {
		case 'n':
			result.WriteByte('\n')
		case 't':
			result.WriteByte('\t')
		case 'r':
			result.WriteByte('\r')
		case 'b':
			result.WriteByte('\b')
		case 'f':
			result.WriteByte('\f')
		case '\\':
			result.WriteByte('\\')
		case '"':
			result.WriteByte('"')
		case '/':
			result.WriteByte('/')
		case 'u':
			// Unicode escape: \uXXXX
			if i+4 >= len(s) {
				return "", fmt.Errorf("invalid \\u escape: not enough characters")
			}
			hex := s[i+1 : i+5]
			codePoint, err := strconv.ParseUint(hex, 16, 16)
			if err != nil {
				return "", fmt.Errorf("invalid \\u escape: %s", hex)
			}
			i += 4

			r := rune(codePoint)

			// High surrogate: expect a low surrogate next and decode the pair
			if r >= 0xD800 && r <= 0xDBFF && i+6 < len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
				lowHex := s[i+3 : i+7]
				lowCodePoint, err := strconv.ParseUint(lowHex, 16, 16)
				if err == nil {
					low := rune(lowCodePoint)
					if low >= 0xDC00 && low <= 0xDFFF {
						decoded := utf16.Decode([]uint16{uint16(r), uint16(low)})
						if len(decoded) > 0 {
							result.WriteRune(decoded[0])
							i += 6 // Skip \uXXXX
							continue
						}
					}
				}
			}
			result.WriteRune(r)
		default:
			return "", fmt.Errorf("invalid escape sequence: \\%c", s[i])
		}
	}

	return result.String(), nil
}
