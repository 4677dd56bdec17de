package parser

import (
	"testing"

	"github.com/elasticc/hls/internal/ast"
	"github.com/elasticc/hls/internal/diag"
	"github.com/elasticc/hls/internal/lexer"
	"github.com/elasticc/hls/internal/operations"
	"github.com/elasticc/hls/internal/token"
)

func parse(t *testing.T, src string) (*ast.GlobalScope, *Parser) {
	t.Helper()
	p := New(lexer.New([]byte(src), "test.ech"))
	gs := p.ParseProgram()
	return gs, p
}

func parseExpr(t *testing.T, src string) ast.Expression {
	t.Helper()
	l := lexer.New([]byte(src), "test.ech")
	p := New(l)
	expr := p.ParseExpression([]token.Type{token.EOF}, p.gs)
	if len(p.errors) > 0 {
		t.Fatalf("unexpected parse errors: %v", p.errors)
	}
	return expr
}

func TestParseExpressionPrecedence(t *testing.T) {
	// 1 + 2 * 3 should group as 1 + (2 * 3): top node is ADD.
	expr := parseExpr(t, "1 + 2 * 3")
	op, ok := expr.(*ast.BasicOperation)
	if !ok {
		t.Fatalf("expected BasicOperation, got %T", expr)
	}
	if op.Oper != operations.ADD {
		t.Fatalf("expected top-level ADD, got %v", op.Oper)
	}
	rhs, ok := op.Operands[1].(*ast.BasicOperation)
	if !ok || rhs.Oper != operations.MUL {
		t.Fatalf("expected right operand to be MUL, got %#v", op.Operands[1])
	}
}

func TestParseExpressionParentheses(t *testing.T) {
	expr := parseExpr(t, "(1 + 2) * 3")
	op, ok := expr.(*ast.BasicOperation)
	if !ok || op.Oper != operations.MUL {
		t.Fatalf("expected top-level MUL, got %#v", expr)
	}
	lhs, ok := op.Operands[0].(*ast.BasicOperation)
	if !ok || lhs.Oper != operations.ADD {
		t.Fatalf("expected left operand to be ADD, got %#v", op.Operands[0])
	}
}

func TestParseExpressionUnaryMinus(t *testing.T) {
	expr := parseExpr(t, "-5")
	lit, ok := expr.(*ast.Literal)
	if !ok || lit.Text != "-5" {
		t.Fatalf("expected negative literal -5, got %#v", expr)
	}
}

func TestParseExpressionUnaryNot(t *testing.T) {
	expr := parseExpr(t, "!1")
	op, ok := expr.(*ast.BasicOperation)
	if !ok || op.Oper != operations.LNOT || len(op.Operands) != 1 {
		t.Fatalf("expected unary LNOT, got %#v", expr)
	}
}

func TestParseExpressionPostIncrement(t *testing.T) {
	l := lexer.New([]byte("x++"), "test.ech")
	p := New(l)
	p.gs.Vars = append(p.gs.Vars, &ast.Variable{Name: "x"})
	result := p.ParseExpression([]token.Type{token.EOF}, p.gs)
	op, ok := result.(*ast.BasicOperation)
	if !ok || op.Oper != operations.POSTINC {
		t.Fatalf("expected POSTINC, got %#v", result)
	}
}

func TestParseGlobalConstDeclaration(t *testing.T) {
	gs, p := parse(t, "const unsigned<8> LIMIT = 10;")
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	if len(gs.Vars) != 1 || gs.Vars[0].Name != "LIMIT" {
		t.Fatalf("expected global LIMIT, got %#v", gs.Vars)
	}
	if !gs.Vars[0].HasQualifier(ast.QualConst) {
		t.Fatalf("expected const qualifier")
	}
}

func TestParseStructureDefinition(t *testing.T) {
	gs, p := parse(t, "struct Pixel { unsigned<8> r; unsigned<8> g; unsigned<8> b; };")
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	strct, ok := gs.FindStructure("Pixel")
	if !ok {
		t.Fatalf("expected struct Pixel to be registered")
	}
	if len(strct.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(strct.Members))
	}
}

func TestParseFunctionDefinition(t *testing.T) {
	gs, p := parse(t, "unsigned<8> add(unsigned<8> a, unsigned<8> b) { return a + b; }")
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	fn, ok := gs.FindFunction("add")
	if !ok {
		t.Fatalf("expected function add to be registered")
	}
	if len(fn.Arguments) != 2 {
		t.Fatalf("expected 2 arguments, got %d", len(fn.Arguments))
	}
	if _, ok := fn.Body.(*ast.Block); !ok {
		t.Fatalf("expected block body, got %T", fn.Body)
	}
}

func TestParseHardwareBlockWithClock(t *testing.T) {
	gs, p := parse(t, "block mac(clock, unsigned<8> a, unsigned<8> b) => (unsigned<16> acc) { acc = a * b; }")
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	blk, ok := gs.FindBlock("mac")
	if !ok {
		t.Fatalf("expected block mac to be registered")
	}
	if !blk.Params.HasClock {
		t.Fatalf("expected HasClock to be set")
	}
	if len(blk.Inputs) != 2 {
		t.Fatalf("expected 2 inputs (clock excluded), got %d", len(blk.Inputs))
	}
	if len(blk.Outputs) != 1 || blk.Outputs[0].Name != "acc" {
		t.Fatalf("expected single output acc, got %#v", blk.Outputs)
	}
}

func TestParseHardwareBlockClockFrequency(t *testing.T) {
	gs, p := parse(t, "block b(clock<100000000>) => (unsigned<8> o) { o = 0; }")
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	blk, _ := gs.FindBlock("b")
	if blk.Params.ClockFreqHz != 100000000 {
		t.Fatalf("expected clock freq 100000000, got %d", blk.Params.ClockFreqHz)
	}
}

func TestParseHardwareBlockReferenceInputIsAnError(t *testing.T) {
	_, p := parse(t, "block b(unsigned<8> &a) => (unsigned<8> o) { o = a; }")
	found := false
	for _, e := range p.Errors() {
		if e.Code == diag.PAR006 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a PAR006 diagnostic for reference-typed input, got %v", p.Errors())
	}
}

func TestParseForLoopDeclaresLoopVariable(t *testing.T) {
	gs, p := parse(t, "unsigned<8> f() { unsigned<8> sum = 0; for (unsigned<8> i = 0; i < 10; i++) { sum = sum + i; } return sum; }")
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	fn, _ := gs.FindFunction("f")
	blk := fn.Body.(*ast.Block)
	var forLoop *ast.ForLoop
	for _, stmt := range blk.Content {
		if fl, ok := stmt.(*ast.ForLoop); ok {
			forLoop = fl
		}
	}
	if forLoop == nil {
		t.Fatalf("expected a for loop in function body")
	}
	if len(forLoop.Vars) != 1 || forLoop.Vars[0].Name != "i" {
		t.Fatalf("expected loop variable i, got %#v", forLoop.Vars)
	}
}

func TestParseArrayTypeDeclaration(t *testing.T) {
	gs, p := parse(t, "const unsigned<8> table[4] = {1,2,3,4};")
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	if len(gs.Vars) != 1 {
		t.Fatalf("expected one declared global, got %d", len(gs.Vars))
	}
	arr, ok := gs.Vars[0].Type.(*ast.ArrayTypeSpecifier)
	if !ok {
		t.Fatalf("expected ArrayTypeSpecifier, got %T", gs.Vars[0].Type)
	}
	if _, ok := arr.Base.(*ast.BasicTypeSpecifier); !ok {
		t.Fatalf("expected array base to be a basic type, got %T", arr.Base)
	}
}

func TestParseTemplatedStructure(t *testing.T) {
	gs, p := parse(t, "template<unsigned<4> N> struct Vec { unsigned<8> data[N]; };")
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	strct, ok := gs.FindStructure("Vec")
	if !ok {
		t.Fatalf("expected struct Vec")
	}
	if len(strct.Params) != 1 || strct.Params[0].Name != "N" {
		t.Fatalf("expected a single template parameter N, got %#v", strct.Params)
	}
}

func TestParseTemplateParameterDefault(t *testing.T) {
	gs, p := parse(t, "template<unsigned<4> N = 8> struct Vec { unsigned<8> data[N]; };")
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	strct, ok := gs.FindStructure("Vec")
	if !ok {
		t.Fatalf("expected struct Vec")
	}
	if len(strct.Params) != 1 || strct.Params[0].DefaultExpr == nil {
		t.Fatalf("expected N to carry a default expression, got %#v", strct.Params)
	}
}

func TestParseBuiltinSizeof(t *testing.T) {
	gs, p := parse(t, "unsigned<8> f() { return sizeof(f); }")
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	fn, _ := gs.FindFunction("f")
	blk := fn.Body.(*ast.Block)
	ret := blk.Content[0].(*ast.ReturnStatement)
	if _, ok := ret.ReturnValue.(*ast.Builtin); !ok {
		t.Fatalf("expected a Builtin return value, got %T", ret.ReturnValue)
	}
}

func TestParseBuiltinWidthofOnType(t *testing.T) {
	expr := parseExpr(t, "__widthof(unsigned<12>)")
	b, ok := expr.(*ast.Builtin)
	if !ok {
		t.Fatalf("expected a Builtin, got %T", expr)
	}
	if b.Kind != ast.BuiltinWidthof {
		t.Fatalf("expected BuiltinWidthof, got %v", b.Kind)
	}
	if b.OperandType == nil {
		t.Fatalf("expected OperandType to be set for a bare type operand")
	}
}

func TestParseBuiltinLengthOnExpression(t *testing.T) {
	gs, p := parse(t, "unsigned<8> a[4]; unsigned<8> f() { return __length(a); }")
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	fn, _ := gs.FindFunction("f")
	blk := fn.Body.(*ast.Block)
	ret := blk.Content[0].(*ast.ReturnStatement)
	b, ok := ret.ReturnValue.(*ast.Builtin)
	if !ok {
		t.Fatalf("expected a Builtin return value, got %T", ret.ReturnValue)
	}
	if b.Kind != ast.BuiltinLength || b.Operand == nil {
		t.Fatalf("expected BuiltinLength over an expression operand, got kind=%v operand=%v", b.Kind, b.Operand)
	}
}

func TestParseMalformedDeclarationReportsDiagnostic(t *testing.T) {
	_, p := parse(t, "unsigned<8> 9bad;")
	if len(p.Errors()) == 0 {
		t.Fatalf("expected a diagnostic for an invalid variable name")
	}
}
