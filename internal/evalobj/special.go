package evalobj

import (
	"fmt"

	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/diag"
	"github.com/elasticc/hls/internal/types"
)

// SpecialOperationKind enumerates operations not directly written by the
// user but inferred by the evaluator from some other construct.
type SpecialOperationKind int

const (
	// TCond is the ternary conditional operator generated from an if
	// statement assigning to a variable on both branches. Operands:
	// [condition, trueValue, falseValue].
	TCond SpecialOperationKind = iota
	// ArraySel is an array subscript access with a non-constant index.
	// Operands: every array child, followed by the index.
	ArraySel
	// ArrayWrite is a conditional array-item write. Operands: the prior
	// value, the new value, and the write index. Parameters: the static
	// index of the item this node covers.
	ArrayWrite
)

// SpecialOperation represents a T_COND/ARRAY_SEL/ARRAY_WRITE node.
type SpecialOperation struct {
	base
	Kind       SpecialOperationKind
	Operands_  []EvalObject
	Parameters []bitconst.Const
}

func NewSpecialOperation(kind SpecialOperationKind, operands []EvalObject, parameters []bitconst.Const) *SpecialOperation {
	return &SpecialOperation{base: newBase(), Kind: kind, Operands_: operands, Parameters: parameters}
}

func (s *SpecialOperation) ID() string { return s.baseID("special") }

func (s *SpecialOperation) Operands() []EvalObject { return s.Operands_ }

func (s *SpecialOperation) DataType(ev Evaluator) (types.DataType, error) {
	switch s.Kind {
	case TCond:
		return s.Operands_[1].DataType(ev)
	case ArraySel:
		return s.Operands_[0].DataType(ev)
	case ArrayWrite:
		return s.Operands_[0].DataType(ev)
	default:
		return nil, fmt.Errorf("===%s=== unknown special operation kind", s.ID())
	}
}

func (s *SpecialOperation) HasConstantValue(ev Evaluator) bool {
	_, err := s.ConstantValue(ev)
	return err == nil
}

// ConstantValue folds a T_COND whose condition is constant to the selected
// branch; ARRAY_SEL/ARRAY_WRITE fold only when every operand does, since
// they exist specifically to defer a decision that could not be made at
// parse time.
func (s *SpecialOperation) ConstantValue(ev Evaluator) (EvalObject, error) {
	switch s.Kind {
	case TCond:
		cond := s.Operands_[0]
		if !cond.HasConstantValue(ev) {
			return nil, fmt.Errorf("===%s=== condition is not constant", s.ID())
		}
		cv, err := cond.ScalarConstValue(ev)
		if err != nil {
			return nil, err
		}
		if cv.IntVal() != 0 {
			return s.Operands_[1].ConstantValue(ev)
		}
		return s.Operands_[2].ConstantValue(ev)
	case ArraySel, ArrayWrite:
		for _, o := range s.Operands_ {
			if !o.HasConstantValue(ev) {
				return nil, fmt.Errorf("===%s=== is not constant", s.ID())
			}
		}
		return s, nil
	default:
		return nil, fmt.Errorf("===%s=== unknown special operation kind", s.ID())
	}
}

func (s *SpecialOperation) ScalarConstValue(ev Evaluator) (bitconst.Const, error) {
	return DefaultScalarConstValue(s, ev)
}

func (s *SpecialOperation) ApplyToState(ev Evaluator) (EvalObject, error) {
	return DefaultApplyToState(s, ev)
}

func (s *SpecialOperation) AssignValue(ev Evaluator, value EvalObject) error {
	return fmt.Errorf("===%s=== cannot be assigned to directly", s.ID())
}

func (s *SpecialOperation) Value(ev Evaluator) (EvalObject, error) { return DefaultValue(s, ev) }

// Register represents a pipeline register: the value one clock cycle
// behind Input. The register's concrete timing is assigned by
// internal/synth when it lowers the EvalObject graph, so HasConstantValue
// is always false here (even a constant input is registered, and the
// register's reset value is a synthesis concern, not an evaluation one).
type Register struct {
	base
	Input EvalObject
}

func NewRegister(input EvalObject) *Register {
	return &Register{base: newBase(), Input: input}
}

func (r *Register) ID() string { return r.baseID("reg") }

func (r *Register) DataType(ev Evaluator) (types.DataType, error) { return r.Input.DataType(ev) }

func (r *Register) ConstantValue(ev Evaluator) (EvalObject, error) {
	return nil, fmt.Errorf("===%s=== a register's value is never a compile-time constant", r.ID())
}

func (r *Register) ScalarConstValue(ev Evaluator) (bitconst.Const, error) {
	return bitconst.Const{}, fmt.Errorf("===%s=== a register's value is never a compile-time constant", r.ID())
}

func (r *Register) ApplyToState(ev Evaluator) (EvalObject, error) { return DefaultApplyToState(r, ev) }
func (r *Register) Value(ev Evaluator) (EvalObject, error)        { return DefaultValue(r, ev) }
func (r *Register) Operands() []EvalObject                        { return []EvalObject{r.Input} }

// DontCare represents a placeholder value that synthesis is free to tie to
// anything convenient (a don't-care VHDL "--" assignment). Writes through a
// DontCare are discarded rather than erroring, matching its don't-care
// semantics: assigning into it is as meaningless as reading from it, and
// silently swallowing the write keeps callers simple.
type DontCare struct {
	base
	Typ types.DataType
}

func NewDontCare(t types.DataType) *DontCare {
	return &DontCare{base: newBase(), Typ: t}
}

func (d *DontCare) ID() string { return d.baseID("dontcare") }

func (d *DontCare) DataType(ev Evaluator) (types.DataType, error) { return d.Typ, nil }

func (d *DontCare) ConstantValue(ev Evaluator) (EvalObject, error) {
	return nil, fmt.Errorf("===%s=== has no fixed constant value", d.ID())
}

func (d *DontCare) ScalarConstValue(ev Evaluator) (bitconst.Const, error) {
	return bitconst.Const{}, fmt.Errorf("===%s=== has no fixed constant value", d.ID())
}

func (d *DontCare) ApplyArraySubscriptRead(ev Evaluator, subscript []EvalObject) (EvalObject, error) {
	elemType, err := d.Typ.BaseType()
	if err != nil {
		return nil, err
	}
	return NewDontCare(elemType), nil
}

func (d *DontCare) ApplyArraySubscriptWrite(ev Evaluator, subscript []EvalObject, value EvalObject) error {
	return nil
}

func (d *DontCare) StructureMember(ev Evaluator, name string) (EvalObject, error) {
	mt, err := d.Typ.MemberType(name)
	if err != nil {
		return nil, err
	}
	return NewDontCare(mt), nil
}

func (d *DontCare) AssignStructureMember(ev Evaluator, name string, value EvalObject) error {
	return nil
}

func (d *DontCare) ApplyToState(ev Evaluator) (EvalObject, error) { return DefaultApplyToState(d, ev) }
func (d *DontCare) AssignValue(ev Evaluator, value EvalObject) error { return nil }
func (d *DontCare) Value(ev Evaluator) (EvalObject, error)        { return DefaultValue(d, ev) }

// nullObject is the sole implementation backing Null: every method reports
// diag.INT001, giving callers a safe stand-in wherever "no value exists
// yet" would otherwise risk a nil-pointer dereference.
type nullObject struct{ base }

// Null is the process-wide sentinel EvalObject.
var Null EvalObject = &nullObject{base: newBase()}

const nullMessage = "null in evaluation tree (probably an internal error, please report)"

func (n *nullObject) ID() string { return "eval_null" }

// HasConstantValue and Operands cannot report failure through their
// signatures, so reaching the Null sentinel through either one panics
// rather than silently answering false/nil.
func (n *nullObject) HasConstantValue(ev Evaluator) bool {
	panic(diag.NewInternalError(diag.INT001, nullMessage))
}

func (n *nullObject) Operands() []EvalObject {
	panic(diag.NewInternalError(diag.INT001, nullMessage))
}

func (n *nullObject) DataType(ev Evaluator) (types.DataType, error) {
	return nil, diag.NewInternalError(diag.INT001, nullMessage)
}

func (n *nullObject) ConstantValue(ev Evaluator) (EvalObject, error) {
	return nil, diag.NewInternalError(diag.INT001, nullMessage)
}

func (n *nullObject) ScalarConstValue(ev Evaluator) (bitconst.Const, error) {
	return bitconst.Const{}, diag.NewInternalError(diag.INT001, nullMessage)
}

func (n *nullObject) ApplyToState(ev Evaluator) (EvalObject, error) {
	return nil, diag.NewInternalError(diag.INT001, nullMessage)
}

func (n *nullObject) Value(ev Evaluator) (EvalObject, error) {
	return nil, diag.NewInternalError(diag.INT001, nullMessage)
}

func (n *nullObject) StructureMember(ev Evaluator, name string) (EvalObject, error) {
	return nil, diag.NewInternalError(diag.INT001, nullMessage)
}

func (n *nullObject) AssignStructureMember(ev Evaluator, name string, value EvalObject) error {
	return diag.NewInternalError(diag.INT001, nullMessage)
}

func (n *nullObject) AssignValue(ev Evaluator, value EvalObject) error {
	return diag.NewInternalError(diag.INT001, nullMessage)
}

func (n *nullObject) ApplyArraySubscriptRead(ev Evaluator, subscript []EvalObject) (EvalObject, error) {
	return nil, diag.NewInternalError(diag.INT001, nullMessage)
}

func (n *nullObject) ApplyArraySubscriptWrite(ev Evaluator, subscript []EvalObject, value EvalObject) error {
	return diag.NewInternalError(diag.INT001, nullMessage)
}

func (n *nullObject) ApplyPushInto(ev Evaluator, value EvalObject) (EvalObject, error) {
	return nil, diag.NewInternalError(diag.INT001, nullMessage)
}
