package ast

import "testing"

func TestFindVariableWalksParents(t *testing.T) {
	gs := NewGlobalScope()
	outer := &Variable{Name: "outer"}
	gs.Vars = append(gs.Vars, outer)

	block := &Block{Parent_: gs, Vars: []*Variable{{Name: "inner"}}}

	if _, ok := FindVariable(block, "inner"); !ok {
		t.Fatalf("expected to find inner in block")
	}
	if _, ok := FindVariable(block, "outer"); !ok {
		t.Fatalf("expected to find outer through parent chain")
	}
	if _, ok := FindVariable(block, "missing"); ok {
		t.Fatalf("missing should not resolve")
	}
}

func TestFindTemplateParameterSearchesAncestors(t *testing.T) {
	fn := &Function{
		Name:   "f",
		Params: []*TemplateParameter{{Name: "N", Kind: TPInt}},
	}
	block := &Block{Parent_: fn}

	ctx, idx, ok := FindTemplateParameter(block, "N")
	if !ok {
		t.Fatalf("expected to find template parameter N")
	}
	if ctx != fn || idx != 0 {
		t.Errorf("FindTemplateParameter = (%v, %d), want (fn, 0)", ctx, idx)
	}
	if IsTemplateParameter(block, "M") {
		t.Errorf("M should not be a template parameter")
	}
}

func TestGlobalScopeOfWalksToRoot(t *testing.T) {
	gs := NewGlobalScope()
	fn := &Function{Name: "f"}
	_ = fn
	block := &Block{Parent_: gs}
	inner := &Block{Parent_: block}

	if GlobalScopeOf(inner) != gs {
		t.Errorf("GlobalScopeOf should walk up to the GlobalScope")
	}
}

func TestVariableHasQualifier(t *testing.T) {
	v := &Variable{Qualifiers: []VariableQualifier{QualStatic}}
	if !v.HasQualifier(QualStatic) {
		t.Errorf("expected static qualifier present")
	}
	if v.HasQualifier(QualConst) {
		t.Errorf("const qualifier should not be present")
	}
}
