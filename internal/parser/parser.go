// Package parser builds an internal/ast tree from an internal/lexer token
// stream. The expression parser is a token-stream re-expression of a
// modified shunting-yard algorithm, and the statement/declaration parsers
// follow the same recursive-descent structure, reporting errors through
// internal/diag.
package parser

import (
	"fmt"

	"github.com/elasticc/hls/internal/ast"
	"github.com/elasticc/hls/internal/diag"
	"github.com/elasticc/hls/internal/lexer"
	"github.com/elasticc/hls/internal/operations"
	"github.com/elasticc/hls/internal/token"
)

// Parser consumes a token stream and produces an *ast.GlobalScope.
type Parser struct {
	lex *lexer.Lexer
	cur token.Token

	gs       *ast.GlobalScope
	typedefs map[string]ast.DataTypeSpecifier

	errors []*diag.ParseError
}

// New constructs a Parser over the given lexer.
func New(lex *lexer.Lexer) *Parser {
	p := &Parser{
		lex:      lex,
		gs:       ast.NewGlobalScope(),
		typedefs: map[string]ast.DataTypeSpecifier{},
	}
	p.advance()
	return p
}

// Errors returns every parse error accumulated while resynchronizing, in
// source order.
func (p *Parser) Errors() []*diag.ParseError { return p.errors }

func (p *Parser) advance() {
	p.cur = p.lex.NextToken()
}

func (p *Parser) pos() ast.Pos {
	return ast.Pos{File: p.cur.File, Line: p.cur.Line, Column: p.cur.Column}
}

func (p *Parser) errorf(code diag.Code, format string, args ...interface{}) {
	p.errors = append(p.errors, diag.NewParseError(code, p.cur.File, p.cur.Line, "%s", fmt.Sprintf(format, args...)))
}

// expect consumes cur if it matches t, else records a PAR001 error and
// leaves the stream positioned at the offending token (no panic/recovery:
// the caller decides how to resynchronize).
func (p *Parser) expect(t token.Type) bool {
	if p.cur.Type != t {
		p.errorf(diag.PAR001, "expected %s, found %s (%q)", t, p.cur.Type, p.cur.Literal)
		return false
	}
	p.advance()
	return true
}

// ParseProgram parses an entire translation unit: global declarations,
// struct/typedef/template definitions, functions, and hardware blocks.
func (p *Parser) ParseProgram() *ast.GlobalScope {
	for p.cur.Type != token.EOF {
		p.parseTopLevel()
	}
	return p.gs
}

func (p *Parser) parseTopLevel() {
	attrs := p.parseAttributes()

	switch {
	case p.cur.Type == token.HASH:
		p.parsePreprocessorDirective()
	case p.cur.Type == token.TEMPLATE:
		p.advance()
		params := p.parseTemplateDefinition(p.gs)
		p.parseTemplatedDecl(attrs, params)
	case p.cur.Type == token.STRUCT:
		p.parseStructureDefinition(attrs, nil)
	case p.cur.Type == token.TYPEDEF:
		p.parseTypedef()
	case p.cur.Type == token.BLOCK:
		p.parseHardwareBlock(attrs)
	case p.cur.Type == token.SEMICOLON:
		p.advance()
	case p.isDataTypeStart():
		p.parseFunctionOrGlobalDecl(attrs, nil)
	default:
		p.errorf(diag.PAR012, "unexpected token %s at top level", p.cur.Type)
		p.advance()
	}
}

func (p *Parser) parseTemplatedDecl(attrs ast.AttributeSet, params []*ast.TemplateParameter) {
	switch p.cur.Type {
	case token.STRUCT:
		p.parseStructureDefinition(attrs, params)
	default:
		p.parseFunctionOrGlobalDecl(attrs, params)
	}
}

func (p *Parser) parsePreprocessorDirective() {
	// #include / #pragma are consumed and otherwise ignored: an #include's
	// file name is skipped and no file is read, and a #pragma's name is
	// skipped (a NullStatement takes its place) without being recorded.
	p.advance()
	if p.cur.Type == token.IDENT && p.cur.Literal == "pragma" {
		p.advance()
		if p.cur.Type == token.IDENT {
			p.gs.Statements = append(p.gs.Statements, ast.NullStatement)
			_ = p.cur.Literal // the pragma name is not recorded
			p.advance()
		}
		return
	}
	if p.cur.Type == token.IDENT && p.cur.Literal == "include" {
		p.advance()
		if p.cur.Type == token.STRING {
			p.advance()
		} else if p.cur.Type == token.LT {
			for p.cur.Type != token.GT && p.cur.Type != token.EOF {
				p.advance()
			}
			if p.cur.Type == token.GT {
				p.advance()
			}
		}
		return
	}
	p.errorf(diag.PAR009, "unrecognized preprocessor directive")
}

// isDataTypeStart reports whether the current token could begin a type
// specifier: a built-in type keyword, a known typedef name, or a known
// struct name (the "known type-keyword" rule).
func (p *Parser) isDataTypeStart() bool {
	if p.cur.IsTypeKeyword() {
		return true
	}
	if p.cur.Type == token.CONST || p.cur.Type == token.STATIC || p.cur.Type == token.REGISTER {
		return true
	}
	if p.cur.Type == token.IDENT {
		if _, ok := p.typedefs[p.cur.Literal]; ok {
			return true
		}
		if _, ok := p.gs.FindStructure(p.cur.Literal); ok {
			return true
		}
	}
	return false
}

// unaryPrefixByToken and binaryOrPostfixByToken map a lexical operator token
// to its OperationType under the unary-prefix / unary-postfix-or-binary
// disambiguation tracked by lastWasOperation.
var unaryPrefixByToken = map[token.Type]operations.Type{
	token.BWNOT: operations.BWNOT,
	token.LNOT:  operations.LNOT,
	token.INC:   operations.PREINC,
	token.DEC:   operations.PREDEC,
	token.MINUS: operations.NEG,
}

var binaryOrPostfixByToken = map[token.Type]operations.Type{
	token.STAR:    operations.MUL,
	token.SLASH:   operations.DIV,
	token.PERCENT: operations.MOD,
	token.PLUS:    operations.ADD,
	token.MINUS:   operations.SUB,
	token.SHL:     operations.SHL,
	token.SHR:     operations.SHR,
	token.LT:      operations.LT,
	token.LTE:     operations.LTE,
	token.GT:      operations.GT,
	token.GTE:     operations.GTE,
	token.EQ:      operations.EQ,
	token.NEQ:     operations.NEQ,
	token.BWAND:   operations.BWAND,
	token.BWXOR:   operations.BWXOR,
	token.BWOR:    operations.BWOR,
	token.LAND:    operations.LAND,
	token.LOR:     operations.LOR,
	token.ASSIGN:  operations.ASSIGN,
	token.PLUSEQ:  operations.PLUSEQ,
	token.MINUSEQ: operations.MINUSEQ,
	token.MULEQ:   operations.MULEQ,
	token.DIVEQ:   operations.DIVEQ,
	token.MODEQ:   operations.MODEQ,
	token.SHLEQ:   operations.SHLEQ,
	token.SHREQ:   operations.SHREQ,
	token.ANDEQ:   operations.ANDEQ,
	token.XOREQ:   operations.XOREQ,
	token.OREQ:    operations.OREQ,
	token.INC:     operations.POSTINC,
	token.DEC:     operations.POSTDEC,
}

type opStackItemKind int

const (
	opLParen opStackItemKind = iota
	opOper
)

type opStackItem struct {
	kind opStackItemKind
	oper operations.Type
}

// ParseExpression parses until one of the given terminator token types is
// reached at nesting depth zero. The terminator itself is left unconsumed.
func (p *Parser) ParseExpression(terminators []token.Type, ctx ast.Context) ast.Expression {
	var opStack []opStackItem
	var parseStack []ast.Expression
	lastWasOperation := true // an expression starting position behaves like "after an operator"

	isTerminator := func(t token.Type) bool {
		for _, term := range terminators {
			if t == term {
				return true
			}
		}
		return false
	}

	apply := func() bool {
		if len(opStack) == 0 {
			p.errorf(diag.PAR014, "invalid expression (operator stack underflow)")
			return false
		}
		top := opStack[len(opStack)-1]
		opStack = opStack[:len(opStack)-1]
		if top.kind != opOper {
			return true
		}
		info, _ := operations.Lookup(top.oper)
		if len(parseStack) < info.Arity {
			p.errorf(diag.PAR014, "invalid expression (too few operands)")
			return false
		}
		operands := append([]ast.Expression(nil), parseStack[len(parseStack)-info.Arity:]...)
		parseStack = parseStack[:len(parseStack)-info.Arity]
		parseStack = append(parseStack, &ast.BasicOperation{Pos: p.pos(), Oper: top.oper, Operands: operands})
		return true
	}

	for {
		pos := p.pos()

		switch {
		case p.cur.Type == token.NUMBER || (lastWasOperation && p.cur.Type == token.MINUS):
			lit := ""
			if p.cur.Type == token.MINUS {
				lit = "-"
				p.advance()
			}
			if p.cur.Type != token.NUMBER {
				p.errorf(diag.PAR015, "expected numeric literal")
				return p.finishExpression(opStack, parseStack)
			}
			lit += p.cur.Literal
			p.advance()
			parseStack = append(parseStack, &ast.Literal{Pos: pos, Text: lit})
			lastWasOperation = false

		case p.cur.Type == token.LPAREN:
			p.advance()
			opStack = append(opStack, opStackItem{kind: opLParen})
			lastWasOperation = true

		case p.cur.Type == token.RPAREN:
			for len(opStack) > 0 && opStack[len(opStack)-1].kind != opLParen {
				if !apply() {
					return p.finishExpression(opStack, parseStack)
				}
			}
			if len(opStack) == 0 {
				if !isTerminator(token.RPAREN) {
					p.errorf(diag.PAR013, "mismatched parentheses")
				}
				return p.finishExpression(opStack, parseStack)
			}
			opStack = opStack[:len(opStack)-1]
			p.advance()
			lastWasOperation = false

		case p.cur.Type == token.IDENT:
			expr := p.parseIdentExpression(ctx)
			if expr != nil {
				parseStack = append(parseStack, expr)
			}
			lastWasOperation = false

		case isBuiltinToken(p.cur.Type):
			expr := p.parseBuiltinExpression(ctx)
			if expr != nil {
				parseStack = append(parseStack, expr)
			}
			lastWasOperation = false

		case isTerminator(p.cur.Type):
			return p.finishExpression(opStack, parseStack)

		case p.cur.Type == token.LBRACE:
			p.advance()
			items := p.parseExpressionList(ctx, token.RBRACE)
			p.expect(token.RBRACE)
			parseStack = append(parseStack, &ast.InitialiserList{Pos: pos, Values: items})
			lastWasOperation = false

		default:
			operType, isOperation, becomesOperation := p.lookupOperatorToken(lastWasOperation)
			if !isOperation {
				p.errorf(diag.PAR016, "unexpected token %s in expression", p.cur.Type)
				p.advance()
				return p.finishExpression(opStack, parseStack)
			}
			info, _ := operations.Lookup(operType)
			for len(opStack) > 0 && opStack[len(opStack)-1].kind == opOper {
				topInfo, _ := operations.Lookup(opStack[len(opStack)-1].oper)
				if info.RightAssociative && info.Precedence > topInfo.Precedence {
					if !apply() {
						return p.finishExpression(opStack, parseStack)
					}
				} else if !info.RightAssociative && info.Precedence >= topInfo.Precedence {
					if !apply() {
						return p.finishExpression(opStack, parseStack)
					}
				} else {
					break
				}
			}
			opStack = append(opStack, opStackItem{kind: opOper, oper: operType})
			p.advance()
			lastWasOperation = becomesOperation
		}
	}
}

// lookupOperatorToken resolves cur's operator type given whether the parser
// currently expects a prefix operator (lastWasOperation), and reports
// whether the following token should again be treated as "after an
// operator" (true for anything but a unary-postfix application).
func (p *Parser) lookupOperatorToken(lastWasOperation bool) (operations.Type, bool, bool) {
	if lastWasOperation {
		if t, ok := unaryPrefixByToken[p.cur.Type]; ok {
			return t, true, true
		}
		return 0, false, false
	}
	if t, ok := binaryOrPostfixByToken[p.cur.Type]; ok {
		info, _ := operations.Lookup(t)
		return t, true, info.Arity != 1
	}
	return 0, false, false
}

func (p *Parser) finishExpression(opStack []opStackItem, parseStack []ast.Expression) ast.Expression {
	for len(opStack) > 0 {
		if opStack[len(opStack)-1].kind != opOper {
			p.errorf(diag.PAR013, "mismatched parentheses")
			break
		}
		top := opStack[len(opStack)-1]
		opStack = opStack[:len(opStack)-1]
		info, _ := operations.Lookup(top.oper)
		if len(parseStack) < info.Arity {
			p.errorf(diag.PAR014, "invalid expression (too few operands)")
			break
		}
		operands := append([]ast.Expression(nil), parseStack[len(parseStack)-info.Arity:]...)
		parseStack = parseStack[:len(parseStack)-info.Arity]
		parseStack = append(parseStack, &ast.BasicOperation{Oper: top.oper, Operands: operands})
	}
	switch len(parseStack) {
	case 0:
		return ast.NullExpression
	case 1:
		return parseStack[0]
	default:
		p.errorf(diag.PAR008, "invalid expression (too many operands given?)")
		return parseStack[len(parseStack)-1]
	}
}

// parseExpressionList parses a comma-separated list terminated by term
// (not consumed).
func (p *Parser) parseExpressionList(ctx ast.Context, term token.Type) []ast.Expression {
	var list []ast.Expression
	if p.cur.Type == term {
		return list
	}
	for {
		list = append(list, p.ParseExpression([]token.Type{token.COMMA, term}, ctx))
		if p.cur.Type != token.COMMA {
			break
		}
		p.advance()
	}
	return list
}

// builtinByToken maps each compile-time query keyword's own lexical token
// (sizeof/__widthof/__length/__min/__max are reserved words, not plain
// identifiers, so they never reach parseIdentExpression's name lookup) to
// its ast.BuiltinKind.
var builtinByToken = map[token.Type]ast.BuiltinKind{
	token.SIZEOF:  ast.BuiltinSizeof,
	token.WIDTHOF: ast.BuiltinWidthof,
	token.LENGTH:  ast.BuiltinLength,
	token.MIN:     ast.BuiltinMin,
	token.MAX:     ast.BuiltinMax,
}

func isBuiltinToken(t token.Type) bool {
	_, ok := builtinByToken[t]
	return ok
}

// parseBuiltinExpression parses one of sizeof/__widthof/__length/__min/__max
// applied to a single parenthesized operand, which is either a type name
// (sizeof/__widthof accepting a bare type directly) or an ordinary
// expression.
func (p *Parser) parseBuiltinExpression(ctx ast.Context) ast.Expression {
	kind := builtinByToken[p.cur.Type]
	pos := p.pos()
	p.advance()
	if !p.expect(token.LPAREN) {
		return nil
	}
	if p.isDataTypeStart() {
		dt := p.parseDataType(ctx)
		p.expect(token.RPAREN)
		return &ast.Builtin{Pos: pos, Kind: kind, OperandType: dt}
	}
	operand := p.ParseExpression([]token.Type{token.RPAREN}, ctx)
	p.expect(token.RPAREN)
	return &ast.Builtin{Pos: pos, Kind: kind, Operand: operand}
}

// parseIdentExpression handles a bare identifier appearing in expression
// position: a function call, or a variable/template-param reference
// possibly followed by subscript/member chains. The compile-time query
// builtins (sizeof, __widthof, ...) are reserved words with their own token
// types and never reach here; see parseBuiltinExpression.
func (p *Parser) parseIdentExpression(ctx ast.Context) ast.Expression {
	name := p.cur.Literal
	pos := p.pos()

	if fn, ok := p.gs.FindFunction(name); ok {
		p.advance()
		var args []ast.TemplateArg
		if p.cur.Type == token.LT {
			args = p.parseTemplateArgs(ctx)
		}
		if !p.expect(token.LPAREN) {
			return nil
		}
		operands := p.parseExpressionList(ctx, token.RPAREN)
		p.expect(token.RPAREN)
		return &ast.FunctionCall{Pos: pos, Func: fn, Operands: operands, Args: args}
	}

	return p.parseVarExpression(ctx)
}

// parseVarExpression resolves name to a variable or template-parameter
// token, then applies any chain of []/.  accesses.
func (p *Parser) parseVarExpression(ctx ast.Context) ast.Expression {
	pos := p.pos()
	name := p.cur.Literal
	p.advance()

	var expr ast.Expression
	if tctx, idx, ok := ast.FindTemplateParameter(ctx, name); ok {
		expr = &ast.TemplateParamToken{Pos: pos, Context: tctx, Index: idx}
	} else if v, ok := ast.FindVariable(ctx, name); ok {
		expr = &ast.VariableToken{Pos: pos, Var: v}
	} else {
		p.errorf(diag.PAR010, "undeclared identifier %q", name)
		expr = ast.NullExpression
	}

	for p.cur.Type == token.LBRACKET || p.cur.Type == token.DOT {
		if p.cur.Type == token.LBRACKET {
			p.advance()
			index := p.parseExpressionList(ctx, token.RBRACKET)
			p.expect(token.RBRACKET)
			expr = &ast.ArraySubscript{Pos: pos, Base: expr, Index: index}
		} else {
			p.advance()
			if p.cur.Type != token.IDENT {
				p.errorf(diag.PAR011, "expected a structure member name")
				break
			}
			member := p.cur.Literal
			p.advance()
			expr = &ast.MemberAccess{Pos: pos, Base: expr, MemberName: member}
		}
	}
	return expr
}

// parseTemplateArgs parses "<arg, arg, ...>" at a use site (e.g.
// unsigned<8>, myFunc<N>(...)).
func (p *Parser) parseTemplateArgs(ctx ast.Context) []ast.TemplateArg {
	p.expect(token.LT)
	var args []ast.TemplateArg
	for p.cur.Type != token.GT && p.cur.Type != token.EOF {
		pos := p.pos()
		if p.isDataTypeStart() {
			args = append(args, ast.TemplateArg{Pos: pos, Type: p.parseDataType(ctx)})
		} else {
			expr := p.ParseExpression([]token.Type{token.COMMA, token.GT}, ctx)
			args = append(args, ast.TemplateArg{Pos: pos, Expr: expr})
		}
		if p.cur.Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.GT)
	return args
}
