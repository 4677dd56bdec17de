package evalobj

import (
	"fmt"

	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/diag"
	"github.com/elasticc/hls/internal/types"
)

// Array represents a fixed-length aggregate of EvalObjects (constants or
// still-unresolved expressions).
type Array struct {
	base
	ArrType types.ArrayType
	Items   []EvalObject
}

func NewArray(arrType types.ArrayType, items []EvalObject) *Array {
	return &Array{base: newBase(), ArrType: arrType, Items: items}
}

func (a *Array) ID() string { return a.baseID("array") }

func (a *Array) DataType(ev Evaluator) (types.DataType, error) { return a.ArrType, nil }

func (a *Array) HasConstantValue(ev Evaluator) bool {
	for _, it := range a.Items {
		if !it.HasConstantValue(ev) {
			return false
		}
	}
	return true
}

func (a *Array) ConstantValue(ev Evaluator) (EvalObject, error) {
	folded := make([]EvalObject, len(a.Items))
	for i, it := range a.Items {
		cv, err := it.ConstantValue(ev)
		if err != nil {
			return nil, err
		}
		folded[i] = cv
	}
	return NewArray(a.ArrType, folded), nil
}

func (a *Array) ScalarConstValue(ev Evaluator) (bitconst.Const, error) {
	return DefaultScalarConstValue(a, ev)
}

func (a *Array) ApplyArraySubscriptRead(ev Evaluator, subscript []EvalObject) (EvalObject, error) {
	if len(subscript) != 1 {
		return nil, fmt.Errorf("===%s=== requires a single-dimension subscript", a.ID())
	}
	if !subscript[0].HasConstantValue(ev) {
		return nil, diag.NewEvalError(diag.EVA005, "", 0, "non-constant array indices are not yet implemented")
	}
	cv, err := subscript[0].ScalarConstValue(ev)
	if err != nil {
		return nil, err
	}
	idx := int(cv.IntVal())
	if idx < 0 || idx >= len(a.Items) {
		return nil, fmt.Errorf("===%s=== index %d out of bounds", a.ID(), idx)
	}
	return a.Items[idx], nil
}

func (a *Array) ApplyArraySubscriptWrite(ev Evaluator, subscript []EvalObject, value EvalObject) error {
	return fmt.Errorf("===%s=== is a temporary value and cannot be subscript-assigned", a.ID())
}

func (a *Array) ApplyToState(ev Evaluator) (EvalObject, error) { return DefaultApplyToState(a, ev) }
func (a *Array) Value(ev Evaluator) (EvalObject, error)        { return DefaultValue(a, ev) }
func (a *Array) Operands() []EvalObject                        { return a.Items }

// ArrayAccess represents an array subscript; the evaluator builds one for
// every subscript expression. It is resolved through Base's
// ApplyArraySubscriptRead (synthesis lowering does the same), which accepts
// only constant indices and reports EVA005 otherwise, so Value/ApplyToState
// fall through to the constant path and error if the index cannot be
// resolved.
type ArrayAccess struct {
	base
	Base  EvalObject
	Index []EvalObject
}

func NewArrayAccess(base_ EvalObject, index []EvalObject) *ArrayAccess {
	return &ArrayAccess{base: newBase(), Base: base_, Index: index}
}

func (a *ArrayAccess) ID() string { return a.baseID("arr_access") }

func (a *ArrayAccess) DataType(ev Evaluator) (types.DataType, error) {
	dt, err := a.Base.DataType(ev)
	if err != nil {
		return nil, err
	}
	return dt.BaseType()
}

func (a *ArrayAccess) HasConstantValue(ev Evaluator) bool {
	_, err := a.ConstantValue(ev)
	return err == nil
}

func (a *ArrayAccess) ConstantValue(ev Evaluator) (EvalObject, error) {
	resolved, err := a.resolve(ev)
	if err != nil {
		return nil, err
	}
	return resolved.ConstantValue(ev)
}

func (a *ArrayAccess) ScalarConstValue(ev Evaluator) (bitconst.Const, error) {
	return DefaultScalarConstValue(a, ev)
}

func (a *ArrayAccess) resolve(ev Evaluator) (EvalObject, error) {
	return a.Base.ApplyArraySubscriptRead(ev, a.Index)
}

func (a *ArrayAccess) ApplyArraySubscriptRead(ev Evaluator, subscript []EvalObject) (EvalObject, error) {
	resolved, err := a.resolve(ev)
	if err != nil {
		return nil, err
	}
	return resolved.ApplyArraySubscriptRead(ev, subscript)
}

func (a *ArrayAccess) ApplyArraySubscriptWrite(ev Evaluator, subscript []EvalObject, value EvalObject) error {
	resolved, err := a.resolve(ev)
	if err != nil {
		return err
	}
	return resolved.ApplyArraySubscriptWrite(ev, subscript, value)
}

func (a *ArrayAccess) StructureMember(ev Evaluator, name string) (EvalObject, error) {
	resolved, err := a.resolve(ev)
	if err != nil {
		return nil, err
	}
	return resolved.StructureMember(ev, name)
}

func (a *ArrayAccess) AssignStructureMember(ev Evaluator, name string, value EvalObject) error {
	resolved, err := a.resolve(ev)
	if err != nil {
		return err
	}
	return resolved.AssignStructureMember(ev, name, value)
}

func (a *ArrayAccess) ApplyToState(ev Evaluator) (EvalObject, error) {
	baseApplied, err := a.Base.ApplyToState(ev)
	if err != nil {
		return nil, err
	}
	return baseApplied.ApplyArraySubscriptRead(ev, a.Index)
}

func (a *ArrayAccess) AssignValue(ev Evaluator, value EvalObject) error {
	return a.Base.ApplyArraySubscriptWrite(ev, a.Index, value)
}

func (a *ArrayAccess) Value(ev Evaluator) (EvalObject, error) {
	resolved, err := a.resolve(ev)
	if err != nil {
		return nil, err
	}
	return resolved.Value(ev)
}

func (a *ArrayAccess) Operands() []EvalObject {
	return append([]EvalObject{a.Base}, a.Index...)
}
