package parser

import (
	"strconv"

	"github.com/elasticc/hls/internal/ast"
	"github.com/elasticc/hls/internal/diag"
	"github.com/elasticc/hls/internal/token"
)

// parseAttributes consumes zero or more "[[attr]]" / "[[attr(value)]]"
// groups, reading key/value pairs directly off the token stream
// (comma-separated within one bracket pair).
func (p *Parser) parseAttributes() ast.AttributeSet {
	as := ast.NewAttributeSet()
	for p.cur.Type == token.DOUBLE_LBRACKET {
		p.advance()
		for {
			if p.cur.Type != token.IDENT {
				p.errorf(diag.PAR007, "malformed attribute")
				break
			}
			key := p.cur.Literal
			p.advance()
			value := ""
			if p.cur.Type == token.LPAREN {
				p.advance()
				if p.cur.Type != token.RPAREN {
					value = p.cur.Literal
					p.advance()
				}
				p.expect(token.RPAREN)
			}
			as.Add(key, value)
			if p.cur.Type != token.COMMA {
				break
			}
			p.advance()
		}
		p.expect(token.DOUBLE_RBRACKET)
	}
	return as
}

// parseDataType parses a type specifier: auto, a basic family with its
// template arguments, a typedef name, a user structure (with its template
// arguments), or a template type parameter, then applies any trailing
// array-bracket chain.
func (p *Parser) parseDataType(ctx ast.Context) ast.DataTypeSpecifier {
	pos := p.pos()

	switch p.cur.Type {
	case token.AUTO:
		p.advance()
		return p.handleArraySpecifier(&ast.AutoTypeSpecifier{Pos: pos}, ctx)

	case token.UNSIGNED, token.SIGNED, token.STREAM, token.STREAM2D, token.RAM, token.ROM:
		kind, _ := ast.LookupBasicDataType(p.cur.Literal)
		p.advance()
		var args []ast.TemplateArg
		if p.cur.Type == token.LT {
			args = p.parseTemplateArgs(ctx)
		}
		return p.handleArraySpecifier(&ast.BasicTypeSpecifier{Pos: pos, Kind: kind, Args: args}, ctx)

	case token.IDENT:
		name := p.cur.Literal
		if td, ok := p.typedefs[name]; ok {
			p.advance()
			return p.handleArraySpecifier(td, ctx)
		}
		if strct, ok := p.gs.FindStructure(name); ok {
			p.advance()
			var args []ast.TemplateArg
			if p.cur.Type == token.LT {
				args = p.parseTemplateArgs(ctx)
			}
			return p.handleArraySpecifier(&ast.StructureTypeSpecifier{Pos: pos, Struct: strct, Args: args}, ctx)
		}
		if tctx, idx, ok := ast.FindTemplateParameter(ctx, name); ok {
			p.advance()
			return p.handleArraySpecifier(&ast.TemplateParamTypeSpecifier{Pos: pos, Context: tctx, Index: idx}, ctx)
		}
		p.errorf(diag.PAR005, "unknown type name %q", name)
		p.advance()
		return &ast.AutoTypeSpecifier{Pos: pos}

	default:
		p.errorf(diag.PAR005, "unknown type name %q", p.cur.Literal)
		p.advance()
		return &ast.AutoTypeSpecifier{Pos: pos}
	}
}

// handleArraySpecifier wraps base in ArrayTypeSpecifiers for every trailing
// "[len]" found, applied in reverse so that "unsigned<8> x[2][3]" yields an
// array of 2 arrays of 3.
func (p *Parser) handleArraySpecifier(base ast.DataTypeSpecifier, ctx ast.Context) ast.DataTypeSpecifier {
	var sizes []ast.Expression
	for p.cur.Type == token.LBRACKET {
		p.advance()
		sizes = append(sizes, p.ParseExpression([]token.Type{token.RBRACKET}, ctx))
		p.expect(token.RBRACKET)
	}
	result := base
	for i := len(sizes) - 1; i >= 0; i-- {
		result = &ast.ArrayTypeSpecifier{Pos: base.Position(), Base: result, Length: sizes[i]}
	}
	return result
}

// parseVariableDeclaration parses one or more comma-separated declarators
// sharing a qualifier list and base type (e.g. "const unsigned<8> a, b = 2;").
// oneOnly restricts the declaration to a single declarator, as used for
// function/block arguments.
func (p *Parser) parseVariableDeclaration(ctx ast.Context, attrs ast.AttributeSet, oneOnly bool) (*ast.VariableDeclaration, bool) {
	declPos := p.pos()
	var quals []ast.VariableQualifier
	for p.cur.Type == token.CONST || p.cur.Type == token.STATIC || p.cur.Type == token.REGISTER {
		q, _ := ast.LookupVariableQualifier(p.cur.Literal)
		quals = append(quals, q)
		p.advance()
	}

	baseType := p.parseDataType(ctx)

	isRef := false
	if p.cur.Type == token.BWAND {
		isRef = true
		p.advance()
	}

	var vars []*ast.Variable
	for {
		pos := p.pos()
		if p.cur.Type != token.IDENT {
			p.errorf(diag.PAR002, "bad variable name, found %s", p.cur.Type)
			break
		}
		name := p.cur.Literal
		p.advance()

		// A shadowing redeclaration is allowed here rather than rejected.
		varType := p.handleArraySpecifier(baseType, ctx)

		v := &ast.Variable{
			Pos:           pos,
			Attributes:    attrs,
			ParentContext: ctx,
			Type:          varType,
			Name:          name,
			IsReference:   isRef,
			Qualifiers:    append([]ast.VariableQualifier(nil), quals...),
		}
		if p.cur.Type == token.ASSIGN {
			p.advance()
			v.Initialiser = p.ParseExpression([]token.Type{token.SEMICOLON, token.COMMA}, ctx)
		} else {
			v.Initialiser = ast.NullExpression
		}
		vars = append(vars, v)

		if oneOnly || p.cur.Type != token.COMMA {
			break
		}
		p.advance()
	}

	if len(vars) == 0 {
		return &ast.VariableDeclaration{Pos: declPos, Attributes: attrs}, isRef
	}
	return &ast.VariableDeclaration{Pos: vars[0].Pos, Attributes: attrs, DeclaredVariables: vars}, isRef
}

// parseArgumentList parses a parenthesized, comma-separated argument list.
// specialNames, when non-nil, names identifiers (like "clock", "clken")
// that are recognized as special hardware-block I/O markers rather than
// typed declarations. "clock" additionally accepts an optional
// "<frequency>" template argument.
func (p *Parser) parseArgumentList(ctx ast.Context, specialNames map[string]bool) ([]ast.FunctionArg, map[string]bool, uint64) {
	var args []ast.FunctionArg
	found := map[string]bool{}
	var clockFreqHz uint64

	if !p.expect(token.LPAREN) {
		return args, found, clockFreqHz
	}

	if p.cur.Type != token.RPAREN {
		for {
			argAttrs := p.parseAttributes()

			if specialNames != nil && p.cur.Type == token.IDENT && specialNames[p.cur.Literal] {
				name := p.cur.Literal
				p.advance()
				found[name] = true
				if name == "clock" && p.cur.Type == token.LT {
					p.advance()
					if p.cur.Type == token.NUMBER {
						if v, err := strconv.ParseUint(p.cur.Literal, 0, 64); err == nil {
							clockFreqHz = v
						}
						p.advance()
					}
					p.expect(token.GT)
				}
			} else {
				decl, isRef := p.parseVariableDeclaration(ctx, argAttrs, true)
				if len(decl.DeclaredVariables) > 0 {
					args = append(args, ast.FunctionArg{Var: decl.DeclaredVariables[0], ByRef: isRef})
				}
			}

			if p.cur.Type != token.COMMA {
				break
			}
			p.advance()
		}
	}

	p.expect(token.RPAREN)
	return args, found, clockFreqHz
}

// parseStatement parses one statement, dispatching on the leading token.
func (p *Parser) parseStatement(ctx ast.Context) ast.Statement {
	attrs := p.parseAttributes()

	switch {
	case p.cur.Type == token.SEMICOLON:
		p.advance()
		return ast.NullStatement

	case p.cur.Type == token.LBRACE:
		p.advance()
		blk := p.parseBlockContent(ctx)
		p.expect(token.RBRACE)
		return blk

	case p.cur.Type == token.IF:
		pos := p.pos()
		p.advance()
		p.expect(token.LPAREN)
		cond := p.ParseExpression([]token.Type{token.RPAREN}, ctx)
		p.expect(token.RPAREN)
		trueStmt := p.parseStatement(ctx)
		var falseStmt ast.Statement = ast.NullStatement
		if p.cur.Type == token.ELSE {
			p.advance()
			falseStmt = p.parseStatement(ctx)
		}
		return &ast.IfStatement{Pos: pos, Attributes: attrs, Condition: cond, StatementTrue: trueStmt, StatementFalse: falseStmt}

	case p.cur.Type == token.FOR:
		pos := p.pos()
		p.advance()
		p.expect(token.LPAREN)
		forStmt := &ast.ForLoop{Pos: pos, Attributes: attrs, Parent_: ctx}
		forStmt.Init = p.parseStatement(forStmt)
		if decl, ok := forStmt.Init.(*ast.VariableDeclaration); ok {
			forStmt.Vars = decl.DeclaredVariables
		}
		forStmt.Condition = p.ParseExpression([]token.Type{token.SEMICOLON}, forStmt)
		p.expect(token.SEMICOLON)
		forStmt.Incrementer = p.ParseExpression([]token.Type{token.RPAREN}, forStmt)
		p.expect(token.RPAREN)
		forStmt.Body = p.parseStatement(forStmt)
		return forStmt

	case p.cur.Type == token.WHILE:
		pos := p.pos()
		p.advance()
		p.expect(token.LPAREN)
		cond := p.ParseExpression([]token.Type{token.RPAREN}, ctx)
		p.expect(token.RPAREN)
		body := p.parseStatement(ctx)
		return &ast.WhileLoop{Pos: pos, Attributes: attrs, Condition: cond, Body: body}

	case p.cur.Type == token.RETURN:
		pos := p.pos()
		p.advance()
		var retval ast.Expression = ast.NullExpression
		if p.cur.Type != token.SEMICOLON {
			retval = p.ParseExpression([]token.Type{token.SEMICOLON}, ctx)
		}
		p.expect(token.SEMICOLON)
		return &ast.ReturnStatement{Pos: pos, ReturnValue: retval}

	case p.isDataTypeStart():
		decl, _ := p.parseVariableDeclaration(ctx, attrs, false)
		p.expect(token.SEMICOLON)
		return decl

	default:
		expr := p.ParseExpression([]token.Type{token.SEMICOLON}, ctx)
		p.expect(token.SEMICOLON)
		return expr
	}
}

// parseBlockContent parses statements until the closing "}" (not consumed).
// Declared locals are recorded onto the Block directly as they are parsed,
// rather than recomputed on every lookup by rescanning Content.
func (p *Parser) parseBlockContent(ctx ast.Context) *ast.Block {
	blk := &ast.Block{Pos: p.pos(), Parent_: ctx}
	for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		stmt := p.parseStatement(blk)
		blk.Content = append(blk.Content, stmt)
		if decl, ok := stmt.(*ast.VariableDeclaration); ok {
			blk.Vars = append(blk.Vars, decl.DeclaredVariables...)
		}
	}
	return blk
}

// parseTemplateDefinition parses "<param, param, ...>" following an already
// consumed "template" keyword. A "class"/"typename" parameter introduces a
// TPDataType formal parameter, optionally defaulted with "= Type"; anything
// else is a typed value parameter (TPBitConstant), optionally defaulted
// with "= expr" evaluated in the instantiating scope when the parameter is
// left unspecified at the call site (the "named template parameter
// defaults" supplement).
func (p *Parser) parseTemplateDefinition(ctx ast.Context) []*ast.TemplateParameter {
	if !p.expect(token.LT) {
		return nil
	}
	var params []*ast.TemplateParameter
	for p.cur.Type != token.GT && p.cur.Type != token.EOF {
		pos := p.pos()
		if p.cur.Type == token.IDENT && (p.cur.Literal == "class" || p.cur.Literal == "typename") {
			p.advance()
			if p.cur.Type != token.IDENT {
				p.errorf(diag.PAR003, "invalid name for template parameter")
				break
			}
			name := p.cur.Literal
			p.advance()
			tp := &ast.TemplateParameter{Pos: pos, Name: name, Kind: ast.TPDataType}
			if p.cur.Type == token.ASSIGN {
				p.advance()
				tp.DefaultType = p.parseDataType(ctx)
			}
			params = append(params, tp)
		} else {
			p.parseDataType(ctx)
			if p.cur.Type != token.IDENT {
				p.errorf(diag.PAR003, "invalid name for template parameter")
				break
			}
			name := p.cur.Literal
			p.advance()
			tp := &ast.TemplateParameter{Pos: pos, Name: name, Kind: ast.TPBitConstant}
			if p.cur.Type == token.ASSIGN {
				p.advance()
				tp.DefaultExpr = p.ParseExpression([]token.Type{token.COMMA, token.GT}, ctx)
			}
			params = append(params, tp)
		}
		if p.cur.Type == token.COMMA {
			p.advance()
			continue
		}
		if p.cur.Type != token.GT {
			p.errorf(diag.PAR003, "invalid template parameter list syntax")
			break
		}
	}
	p.expect(token.GT)
	return params
}

// parseStructureDefinition parses "struct Name { members };".
func (p *Parser) parseStructureDefinition(attrs ast.AttributeSet, params []*ast.TemplateParameter) {
	pos := p.pos()
	p.advance() // consume 'struct'

	if p.cur.Type != token.IDENT {
		p.errorf(diag.PAR002, "invalid name for structure")
		return
	}
	name := p.cur.Literal
	p.advance()

	strct := &ast.UserStructure{Pos: pos, Attributes: attrs, Name: name, Params: params, ParentContext: p.gs}

	if !p.expect(token.LBRACE) {
		return
	}
	for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		decl, _ := p.parseVariableDeclaration(strct, ast.NewAttributeSet(), false)
		strct.Members = append(strct.Members, decl.DeclaredVariables...)
		if p.cur.Type == token.SEMICOLON {
			p.advance()
		}
	}
	p.expect(token.RBRACE)

	p.gs.Structures = append(p.gs.Structures, strct)
}

// parseTypedef parses "typedef <type> <name>;" with "typedef" already
// current.
func (p *Parser) parseTypedef() {
	p.advance() // consume 'typedef'
	baseType := p.parseDataType(p.gs)
	if p.cur.Type != token.IDENT {
		p.errorf(diag.PAR002, "invalid name for typedef")
		return
	}
	name := p.cur.Literal
	p.advance()
	p.typedefs[name] = baseType
	p.expect(token.SEMICOLON)
}

// parseFunctionOrGlobalDecl handles the two top-level forms that start with
// a qualifier-or-type-keyword: a qualifier-led declaration is a global
// constant; everything else is a function definition.
func (p *Parser) parseFunctionOrGlobalDecl(attrs ast.AttributeSet, params []*ast.TemplateParameter) {
	if p.cur.Type == token.CONST || p.cur.Type == token.STATIC || p.cur.Type == token.REGISTER {
		decl, _ := p.parseVariableDeclaration(p.gs, attrs, false)
		p.expect(token.SEMICOLON)
		p.gs.Statements = append(p.gs.Statements, decl)
		p.gs.Vars = append(p.gs.Vars, decl.DeclaredVariables...)
		return
	}

	pos := p.pos()
	fn := &ast.Function{Pos: pos, Attributes: attrs, Params: params, ParentContext: p.gs}

	if p.cur.Type == token.VOID {
		p.advance()
		fn.IsVoid = true
	} else {
		fn.ReturnType = p.parseDataType(fn)
		fn.IsVoid = false
	}

	if p.cur.Type != token.IDENT {
		p.errorf(diag.PAR002, "invalid function name")
		return
	}
	fn.Name = p.cur.Literal
	p.advance()

	args, _, _ := p.parseArgumentList(fn, nil)
	fn.Arguments = args

	fn.Body = p.parseStatement(fn)
	p.gs.Functions = append(p.gs.Functions, fn)
}

// parseHardwareBlock parses "block Name(inputs) => (outputs) { body }".
func (p *Parser) parseHardwareBlock(attrs ast.AttributeSet) {
	pos := p.pos()
	p.advance() // consume 'block'

	if p.cur.Type != token.IDENT {
		p.errorf(diag.PAR002, "invalid hardware block name")
		return
	}
	name := p.cur.Literal
	p.advance()

	hb := &ast.HardwareBlock{Pos: pos, Name: name, Attributes: attrs, Params: ast.DefaultHardwareBlockParams(), ParentContext: p.gs}

	inputArgs, inFound, clockFreqHz := p.parseArgumentList(hb, map[string]bool{
		"clock": true, "clken": true, "input_valid": true, "reset": true,
	})
	for _, a := range inputArgs {
		if a.ByRef {
			p.errorf(diag.PAR006, "reference type not allowed as block input %q (consider using an output instead?)", a.Var.Name)
		}
		hb.Inputs = append(hb.Inputs, a.Var)
	}
	hb.Params.HasClock = inFound["clock"]
	if clockFreqHz != 0 {
		hb.Params.ClockFreqHz = clockFreqHz
	}
	hb.Params.HasClockEn = inFound["clken"]
	hb.Params.HasDataEn = inFound["input_valid"]
	hb.Params.HasSyncReset = inFound["reset"]

	p.expect(token.FATARROW)

	outputArgs, outFound, _ := p.parseArgumentList(hb, map[string]bool{"output_valid": true})
	for _, a := range outputArgs {
		// a reference-typed output is silently accepted as a value rather
		// than rejected.
		hb.Outputs = append(hb.Outputs, a.Var)
	}
	hb.Params.HasDataEnOut = outFound["output_valid"]

	hb.Body = p.parseStatement(hb)
	p.gs.Blocks = append(p.gs.Blocks, hb)
}
