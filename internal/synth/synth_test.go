package synth

import (
	"strings"
	"testing"

	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/evalobj"
	"github.com/elasticc/hls/internal/evalvar"
	"github.com/elasticc/hls/internal/hdl"
	"github.com/elasticc/hls/internal/operations"
	"github.com/elasticc/hls/internal/types"
)

// fakeEvaluator satisfies evalobj.Evaluator with an in-memory value map, so
// these tests can exercise Lower/registerVariable without spinning up a
// full internal/eval.Evaluator.
type fakeEvaluator struct {
	values map[evalobj.EvaluatorVariable]evalobj.EvalObject
}

func newFakeEvaluator() *fakeEvaluator {
	return &fakeEvaluator{values: map[evalobj.EvaluatorVariable]evalobj.EvalObject{}}
}

func (f *fakeEvaluator) GetVariableValue(v evalobj.EvaluatorVariable) (evalobj.EvalObject, error) {
	return f.values[v], nil
}

func (f *fakeEvaluator) SetVariableValue(v evalobj.EvaluatorVariable, value evalobj.EvalObject) error {
	f.values[v] = value
	return nil
}

func TestLowerConstantMemoizes(t *testing.T) {
	c := newContext("t", newFakeEvaluator())
	obj := evalobj.NewConstant(bitconst.FromIntWidth(3, 4))

	id1, err := c.Lower(obj)
	if err != nil {
		t.Fatalf("Lower() error: %v", err)
	}
	id2, err := c.Lower(obj)
	if err != nil {
		t.Fatalf("Lower() error: %v", err)
	}
	if id1 != id2 {
		t.Errorf("Lower() on the same object returned different signals: %v vs %v", id1, id2)
	}
	if len(c.Design.Devices) != 1 {
		t.Errorf("Lower() called twice on the same object emitted %d devices, want 1", len(c.Design.Devices))
	}
}

func TestLowerBasicOperationAddsOperationDevice(t *testing.T) {
	c := newContext("t", newFakeEvaluator())
	a := evalobj.NewConstant(bitconst.FromIntWidth(1, 4))
	b := evalobj.NewConstant(bitconst.FromIntWidth(2, 4))
	op := evalobj.NewBasicOperation(operations.ADD, []evalobj.EvalObject{a, b})

	id, err := c.Lower(op)
	if err != nil {
		t.Fatalf("Lower() error: %v", err)
	}
	if c.Design.Signal(id).Type.Width() == 0 {
		t.Errorf("lowered ADD produced a zero-width signal")
	}
	found := false
	for _, dev := range c.Design.Devices {
		if o, ok := dev.(*hdl.Operation); ok && o.Op == operations.ADD {
			found = true
		}
	}
	if !found {
		t.Errorf("Lower() of a BasicOperation(ADD) did not add an hdl.Operation device")
	}
}

func TestRegisterVariableRecursesIntoArrayChildren(t *testing.T) {
	c := newContext("t", newFakeEvaluator())
	elemType := types.NewIntegerType(8, false)
	arr, err := evalvar.NewArray(evalobj.VariableDir{}, "buf", types.NewArrayType(elemType, 4), false)
	if err != nil {
		t.Fatalf("NewArray() error: %v", err)
	}

	id := c.registerVariable(arr)
	if c.Design.Signal(id).Type.Width() != 32 {
		t.Errorf("registerVariable(array of 4x8) produced width %d, want 32", c.Design.Signal(id).Type.Width())
	}
	children := arr.GetAllChildren()
	if len(children) != 4 {
		t.Fatalf("expected 4 array children, got %d", len(children))
	}
	for _, ch := range children {
		if _, ok := c.varSignal[ch]; !ok {
			t.Errorf("registerVariable did not allocate a signal for child %s", ch.Name())
		}
	}
	combinerFound := false
	for _, dev := range c.Design.Devices {
		if _, ok := dev.(*hdl.Combiner); ok {
			combinerFound = true
		}
	}
	if !combinerFound {
		t.Errorf("registerVariable(array) did not add a Combiner device to pack the children")
	}
}

func TestAndEnableChainsOptionalGates(t *testing.T) {
	c := newContext("t", newFakeEvaluator())
	base := c.Design.AddSignal("wren", hdl.LogicSignal{})
	dataEn := c.Design.AddSignal("data_en", hdl.LogicSignal{})
	clkEn := c.Design.AddSignal("clk_en", hdl.LogicSignal{})

	got := c.andEnable(base, &dataEn, &clkEn)
	if got == base {
		t.Errorf("andEnable() with two gates should not return the base signal unchanged")
	}
	andCount := 0
	for _, dev := range c.Design.Devices {
		if o, ok := dev.(*hdl.Operation); ok && o.Op == operations.BWAND {
			andCount++
		}
	}
	if andCount != 2 {
		t.Errorf("andEnable() with two optional gates added %d AND devices, want 2", andCount)
	}
}

func TestAndEnableNoOptionalGatesReturnsBase(t *testing.T) {
	c := newContext("t", newFakeEvaluator())
	base := c.Design.AddSignal("wren", hdl.LogicSignal{})
	got := c.andEnable(base, nil, nil)
	if got != base {
		t.Errorf("andEnable() with no gates = %v, want base %v unchanged", got, base)
	}
}

func TestMaterializeStaticRegistersGatesWithDataAndClockEnable(t *testing.T) {
	ev := newFakeEvaluator()
	c := newContext("t", ev)
	id := c.Design.AddSignal("clk_en", hdl.LogicSignal{})
	c.clockEnable = &id
	did := c.Design.AddSignal("data_en", hdl.LogicSignal{})
	c.dataEnable = &did

	s := evalvar.NewScalar(evalobj.VariableDir{}, "counter", types.NewIntegerType(8, false), true)
	c.materializeStaticRegisters([]evalobj.EvaluatorVariable{s})

	var reg *hdl.Register
	for _, dev := range c.Design.Devices {
		if r, ok := dev.(*hdl.Register); ok {
			reg = r
		}
	}
	if reg == nil {
		t.Fatalf("materializeStaticRegisters did not add a Register for a static scalar")
	}
	if reg.Enable == nil {
		t.Fatalf("static register has no enable port")
	}
	// The enable signal should not be the raw write-enable signal directly,
	// since it must be ANDed with data_en and clk_en first.
	wrenID := c.varSignal[s.WriteEnable()]
	if reg.Enable.Signal == wrenID {
		t.Errorf("static register's enable was wired directly to write_enable, bypassing data_en/clk_en gating")
	}
}

func TestLowerTCondOperandOrder(t *testing.T) {
	c := newContext("t", newFakeEvaluator())
	cond := evalobj.NewConstant(bitconst.FromIntWidth(0, 1))
	trueVal := evalobj.NewConstant(bitconst.FromIntWidth(1, 8))
	falseVal := evalobj.NewConstant(bitconst.FromIntWidth(0, 8))
	sel := evalobj.NewSpecialOperation(evalobj.TCond, []evalobj.EvalObject{cond, trueVal, falseVal}, nil)

	if _, err := c.Lower(sel); err != nil {
		t.Fatalf("Lower() error: %v", err)
	}
	var mux *hdl.Multiplexer
	for _, dev := range c.Design.Devices {
		if m, ok := dev.(*hdl.Multiplexer); ok {
			mux = m
		}
	}
	if mux == nil {
		t.Fatalf("Lower(TCond) did not add a Multiplexer device")
	}
	// A 2:1 Multiplexer emits "out <= Inputs[1] when sel='1' else Inputs[0]",
	// so Inputs[1] must carry the true-branch value and Inputs[0] the
	// false-branch value to match special.go's documented operand order.
	trueSig, err := c.Lower(trueVal)
	if err != nil {
		t.Fatalf("Lower() error: %v", err)
	}
	falseSig, err := c.Lower(falseVal)
	if err != nil {
		t.Fatalf("Lower() error: %v", err)
	}
	if mux.Inputs[1].Signal != trueSig {
		t.Errorf("Multiplexer.Inputs[1] = %v, want the true-branch signal %v", mux.Inputs[1].Signal, trueSig)
	}
	if mux.Inputs[0].Signal != falseSig {
		t.Errorf("Multiplexer.Inputs[0] = %v, want the false-branch signal %v", mux.Inputs[0].Signal, falseSig)
	}
}

func TestWireDegradesToRenameOnMatchingTypes(t *testing.T) {
	c := newContext("t", newFakeEvaluator())
	src := c.Design.AddSignal("a", hdl.LogicSignal{})
	dst := c.Design.AddSignal("b", hdl.LogicSignal{})
	c.wire(src, dst, "x")
	if len(c.Design.Devices) != 1 {
		t.Fatalf("wire() added %d devices, want 1", len(c.Design.Devices))
	}
	body := c.Design.Devices[0].EmitBody(c.Design.SignalName)
	if !strings.Contains(body, "b <= a;") {
		t.Errorf("wire() body = %q, want a plain rename", body)
	}
}
