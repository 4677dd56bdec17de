package evalobj_test

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/evalobj"
	"github.com/elasticc/hls/internal/operations"
	"github.com/elasticc/hls/internal/types"
)

// fakeVar is a minimal EvaluatorVariable stand-in, enough to exercise
// Variable without depending on internal/evalvar (which imports this
// package, so a real variable kind can't be used from an internal test
// without creating an import cycle).
type fakeVar struct {
	name string
	typ  types.DataType
	dir  evalobj.VariableDir
}

func (f *fakeVar) Name() string                                  { return f.name }
func (f *fakeVar) Type() types.DataType                          { return f.typ }
func (f *fakeVar) Dir() evalobj.VariableDir                      { return f.dir }
func (f *fakeVar) IsScalar() bool                                { return true }
func (f *fakeVar) GetArrayChildren() []evalobj.EvaluatorVariable { return nil }
func (f *fakeVar) GetAllChildren() []evalobj.EvaluatorVariable   { return nil }
func (f *fakeVar) GetChildByName(name string) (evalobj.EvaluatorVariable, error) {
	return nil, errNoChild
}
func (f *fakeVar) HasDefaultValue() bool                          { return false }
func (f *fakeVar) DefaultValue() bitconst.Const                   { return bitconst.Const{} }
func (f *fakeVar) IsNonTrivialArrayAccess() bool                  { return false }
func (f *fakeVar) HandleSubscriptedRead(ev evalobj.Evaluator, index []evalobj.EvalObject) (evalobj.EvalObject, error) {
	return nil, errNoChild
}
func (f *fakeVar) HandleSubscriptedWrite(ev evalobj.Evaluator, index []evalobj.EvalObject, value evalobj.EvalObject) error {
	return errNoChild
}
func (f *fakeVar) HandlePush(ev evalobj.Evaluator, value evalobj.EvalObject) error { return errNoChild }
func (f *fakeVar) HandlePop(ev evalobj.Evaluator) (evalobj.EvalObject, error)      { return nil, errNoChild }
func (f *fakeVar) BitOffset() int                                                 { return 0 }
func (f *fakeVar) SetBitOffset(offset int)                                        {}

func (f *fakeVar) HandleRead(ev evalobj.Evaluator) (evalobj.EvalObject, error) {
	return ev.GetVariableValue(f)
}
func (f *fakeVar) HandleWrite(ev evalobj.Evaluator, value evalobj.EvalObject) error {
	return ev.SetVariableValue(f, value)
}

var errNoChild = fakeErr("no such child")

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

// fakeEvaluator is the minimal in-memory Evaluator: a map from variable to
// its current EvalObject value, enough to drive Variable.ApplyToState/
// Value/AssignValue in tests without a full symbolic evaluator.
type fakeEvaluator struct {
	values map[evalobj.EvaluatorVariable]evalobj.EvalObject
}

func newFakeEvaluator() *fakeEvaluator {
	return &fakeEvaluator{values: map[evalobj.EvaluatorVariable]evalobj.EvalObject{}}
}

func (e *fakeEvaluator) GetVariableValue(v evalobj.EvaluatorVariable) (evalobj.EvalObject, error) {
	val, ok := e.values[v]
	if !ok {
		return nil, fakeErr("variable has no value")
	}
	return val, nil
}

func (e *fakeEvaluator) SetVariableValue(v evalobj.EvaluatorVariable, value evalobj.EvalObject) error {
	e.values[v] = value
	return nil
}

func u8(v int64) bitconst.Const { return bitconst.FromIntWidth(v, 8) }

func TestConstantRoundTrip(t *testing.T) {
	c := evalobj.NewConstant(u8(42))
	ev := newFakeEvaluator()
	if !c.HasConstantValue(ev) {
		t.Fatal("Constant.HasConstantValue() = false, want true")
	}
	sv, err := c.ScalarConstValue(ev)
	if err != nil {
		t.Fatalf("ScalarConstValue: %v", err)
	}
	if sv.IntVal() != 42 {
		t.Errorf("ScalarConstValue().IntVal() = %d, want 42", sv.IntVal())
	}
}

func TestVariableInputCannotBeConstant(t *testing.T) {
	v := evalobj.NewVariable(&fakeVar{name: "x", typ: types.NewIntegerType(8, false), dir: evalobj.VariableDir{IsInput: true}})
	ev := newFakeEvaluator()
	if v.HasConstantValue(ev) {
		t.Error("input variable reported HasConstantValue() = true, want false")
	}
	if _, err := v.ConstantValue(ev); err == nil {
		t.Error("ConstantValue() on an input variable should error")
	}
}

func TestVariableAssignAndReadBack(t *testing.T) {
	fv := &fakeVar{name: "y", typ: types.NewIntegerType(8, false)}
	v := evalobj.NewVariable(fv)
	ev := newFakeEvaluator()
	if err := v.AssignValue(ev, evalobj.NewConstant(u8(7))); err != nil {
		t.Fatalf("AssignValue: %v", err)
	}
	got, err := v.Value(ev)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	sv, err := got.ScalarConstValue(ev)
	if err != nil {
		t.Fatalf("ScalarConstValue: %v", err)
	}
	if sv.IntVal() != 7 {
		t.Errorf("read back %d, want 7", sv.IntVal())
	}
}

func TestBasicOperationConstantFold(t *testing.T) {
	ev := newFakeEvaluator()
	op := evalobj.NewBasicOperation(operations.ADD, []evalobj.EvalObject{
		evalobj.NewConstant(u8(3)),
		evalobj.NewConstant(u8(4)),
	})
	if !op.HasConstantValue(ev) {
		t.Fatal("BasicOperation.HasConstantValue() = false for two constants, want true")
	}
	cv, err := op.ConstantValue(ev)
	if err != nil {
		t.Fatalf("ConstantValue: %v", err)
	}
	sv, err := cv.ScalarConstValue(ev)
	if err != nil {
		t.Fatalf("ScalarConstValue: %v", err)
	}
	if sv.IntVal() != 7 {
		t.Errorf("3 + 4 = %d, want 7", sv.IntVal())
	}
}

func TestBasicOperationDivisionRejected(t *testing.T) {
	ev := newFakeEvaluator()
	op := evalobj.NewBasicOperation(operations.DIV, []evalobj.EvalObject{
		evalobj.NewConstant(u8(6)),
		evalobj.NewConstant(u8(2)),
	})
	if _, err := op.ApplyToState(ev); err == nil {
		t.Error("ApplyToState() on a division should error, not panic or fold")
	}
	if _, err := op.ConstantValue(ev); err == nil {
		t.Error("ConstantValue() on a division should error, not panic or fold")
	}
}

func TestBasicOperationModuloAssignRejected(t *testing.T) {
	fv := &fakeVar{name: "m", typ: types.NewIntegerType(8, false)}
	target := evalobj.NewVariable(fv)
	ev := newFakeEvaluator()
	if err := target.AssignValue(ev, evalobj.NewConstant(u8(7))); err != nil {
		t.Fatalf("AssignValue: %v", err)
	}
	op := evalobj.NewBasicOperation(operations.MODEQ, []evalobj.EvalObject{target, evalobj.NewConstant(u8(2))})
	if _, err := op.ApplyToState(ev); err == nil {
		t.Error("ApplyToState() on %= should error, not panic or fold")
	}
}

func TestBasicOperationAssignAppliesToVariable(t *testing.T) {
	fv := &fakeVar{name: "z", typ: types.NewIntegerType(8, false)}
	target := evalobj.NewVariable(fv)
	op := evalobj.NewBasicOperation(operations.ASSIGN, []evalobj.EvalObject{target, evalobj.NewConstant(u8(9))})
	ev := newFakeEvaluator()
	if _, err := op.ApplyToState(ev); err != nil {
		t.Fatalf("ApplyToState: %v", err)
	}
	got, err := target.Value(ev)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	sv, _ := got.ScalarConstValue(ev)
	if sv.IntVal() != 9 {
		t.Errorf("after assignment, value = %d, want 9", sv.IntVal())
	}
}

func TestArrayConstantFoldAndSubscript(t *testing.T) {
	ev := newFakeEvaluator()
	elemType := types.NewIntegerType(8, false)
	arr := evalobj.NewArray(types.NewArrayType(elemType, 3), []evalobj.EvalObject{
		evalobj.NewConstant(u8(1)),
		evalobj.NewConstant(u8(2)),
		evalobj.NewConstant(u8(3)),
	})
	if !arr.HasConstantValue(ev) {
		t.Fatal("Array.HasConstantValue() = false, want true")
	}
	item, err := arr.ApplyArraySubscriptRead(ev, []evalobj.EvalObject{evalobj.NewConstant(bitconst.FromInt(1))})
	if err != nil {
		t.Fatalf("ApplyArraySubscriptRead: %v", err)
	}
	sv, err := item.ScalarConstValue(ev)
	if err != nil {
		t.Fatalf("ScalarConstValue: %v", err)
	}
	if sv.IntVal() != 2 {
		t.Errorf("arr[1] = %d, want 2", sv.IntVal())
	}
	if _, err := arr.ApplyArraySubscriptRead(ev, []evalobj.EvalObject{evalobj.NewConstant(bitconst.FromInt(5))}); err == nil {
		t.Error("out of bounds subscript should error")
	}
}

func TestStructMemberAccess(t *testing.T) {
	ev := newFakeEvaluator()
	st := types.NewStructureType("pixel", []types.DataStructureItem{
		{Name: "r", Type: types.NewIntegerType(8, false)},
		{Name: "g", Type: types.NewIntegerType(8, false)},
	})
	s := evalobj.NewStruct(st, map[string]evalobj.EvalObject{
		"r": evalobj.NewConstant(u8(10)),
		"g": evalobj.NewConstant(u8(20)),
	})
	m, err := s.StructureMember(ev, "g")
	if err != nil {
		t.Fatalf("StructureMember: %v", err)
	}
	sv, _ := m.ScalarConstValue(ev)
	if sv.IntVal() != 20 {
		t.Errorf("pixel.g = %d, want 20", sv.IntVal())
	}
	if _, err := s.StructureMember(ev, "b"); err == nil {
		t.Error("StructureMember(b) should error, pixel has no b member")
	}
}

func TestCastWidensConstant(t *testing.T) {
	ev := newFakeEvaluator()
	c := evalobj.NewCast(types.NewIntegerType(16, false), evalobj.NewConstant(u8(5)))
	sv, err := c.ScalarConstValue(ev)
	if err != nil {
		t.Fatalf("ScalarConstValue: %v", err)
	}
	if sv.IntVal() != 5 || sv.Width() != 16 {
		t.Errorf("cast result = %d (width %d), want 5 (width 16)", sv.IntVal(), sv.Width())
	}
}

// TestEvalObjectGraphDump exercises spew.Sdump against a nested EvalObject
// tree, the way a failing test dumps the graph under investigation rather
// than a single top-level field.
func TestEvalObjectGraphDump(t *testing.T) {
	arr := evalobj.NewArray(types.NewArrayType(types.NewIntegerType(8, false), 2), []evalobj.EvalObject{
		evalobj.NewConstant(u8(1)),
		evalobj.NewConstant(u8(2)),
	})
	op := evalobj.NewBasicOperation(operations.ADD, []evalobj.EvalObject{arr, evalobj.NewConstant(u8(3))})
	dump := spew.Sdump(op)
	for _, want := range []string{"BasicOperation", "Array", "Constant"} {
		if !strings.Contains(dump, want) {
			t.Errorf("spew.Sdump(op) missing %q in:\n%s", want, dump)
		}
	}
}

func TestNullDataTypeErrorsAndHasConstantValuePanics(t *testing.T) {
	ev := newFakeEvaluator()
	if _, err := evalobj.Null.DataType(ev); err == nil {
		t.Error("Null.DataType() should error")
	}
	defer func() {
		if recover() == nil {
			t.Error("Null.HasConstantValue() should panic")
		}
	}()
	evalobj.Null.HasConstantValue(ev)
}
