package evalobj

import (
	"fmt"

	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/diag"
	"github.com/elasticc/hls/internal/types"
)

// Variable represents a reference to an EvaluatorVariable.
type Variable struct {
	base
	Var EvaluatorVariable
}

// NewVariable wraps var as an EvalObject reference.
func NewVariable(v EvaluatorVariable) *Variable {
	return &Variable{base: newBase(), Var: v}
}

func (v *Variable) ID() string { return fmt.Sprintf("eval_var_%s_%d", v.Var.Name(), v.rawID()) }

func (v *Variable) DataType(ev Evaluator) (types.DataType, error) { return v.Var.Type(), nil }

func (v *Variable) HasConstantValue(ev Evaluator) bool {
	if v.Var.Dir().IsInput {
		return false
	}
	_, err := v.ConstantValue(ev)
	return err == nil
}

func (v *Variable) ConstantValue(ev Evaluator) (EvalObject, error) {
	if v.Var.Dir().IsInput {
		return nil, fmt.Errorf("input (top-level or internal) variable ===%s=== cannot be used as a constant", v.Var.Name())
	}
	val, err := ev.GetVariableValue(v.Var)
	if err != nil {
		return nil, err
	}
	return val.ConstantValue(ev)
}

func (v *Variable) ScalarConstValue(ev Evaluator) (bitconst.Const, error) {
	return DefaultScalarConstValue(v, ev)
}

// ApplyArraySubscriptRead applies a (possibly multidimensional) constant
// subscript to the variable, dispatching to the variable's own nontrivial
// read handler (RAM/ROM) when it declares one, and otherwise resolving the
// flattened child index directly.
func (v *Variable) ApplyArraySubscriptRead(ev Evaluator, subscript []EvalObject) (EvalObject, error) {
	if v.Var.IsNonTrivialArrayAccess() {
		return v.Var.HandleSubscriptedRead(ev, subscript)
	}
	offset, err := flattenedIndex(ev, v.Var, subscript)
	if err != nil {
		return nil, err
	}
	return NewVariable(v.Var.GetArrayChildren()[offset]), nil
}

func (v *Variable) ApplyArraySubscriptWrite(ev Evaluator, subscript []EvalObject, value EvalObject) error {
	if v.Var.IsNonTrivialArrayAccess() {
		return v.Var.HandleSubscriptedWrite(ev, subscript, value)
	}
	offset, err := flattenedIndex(ev, v.Var, subscript)
	if err != nil {
		return err
	}
	return v.Var.GetArrayChildren()[offset].HandleWrite(ev, value)
}

// flattenedIndex checks subscript's dimensionality against the variable's
// type and, if every index is constant, returns the flattened child offset.
func flattenedIndex(ev Evaluator, v EvaluatorVariable, subscript []EvalObject) (int, error) {
	dims := v.Type().Dimensions()
	if len(subscript) != len(dims) {
		return 0, fmt.Errorf("dimensionality mismatch for variable ===%s===", v.Name())
	}
	offset := 0
	lastDim := 1
	for i, s := range subscript {
		if !s.HasConstantValue(ev) {
			return 0, diag.NewEvalError(diag.EVA005, "", 0, "non-constant array indices are not yet implemented")
		}
		offset *= lastDim
		cv, err := s.ScalarConstValue(ev)
		if err != nil {
			return 0, err
		}
		indval := int(cv.IntVal())
		lastDim = dims[i]
		if indval >= lastDim {
			return 0, fmt.Errorf("array index out of bounds for variable ===%s===", v.Name())
		}
		offset += indval
	}
	return offset, nil
}

func (v *Variable) StructureMember(ev Evaluator, name string) (EvalObject, error) {
	child, err := v.Var.GetChildByName(name)
	if err != nil {
		return nil, err
	}
	return NewVariable(child), nil
}

func (v *Variable) AssignStructureMember(ev Evaluator, name string, value EvalObject) error {
	child, err := v.Var.GetChildByName(name)
	if err != nil {
		return err
	}
	return child.HandleWrite(ev, value)
}

func (v *Variable) ApplyToState(ev Evaluator) (EvalObject, error) { return DefaultApplyToState(v, ev) }

func (v *Variable) AssignValue(ev Evaluator, value EvalObject) error {
	return v.Var.HandleWrite(ev, value)
}

func (v *Variable) Value(ev Evaluator) (EvalObject, error) {
	return ev.GetVariableValue(v.Var)
}

func (v *Variable) CanPushInto() bool { return true }

func (v *Variable) ApplyPushInto(ev Evaluator, value EvalObject) (EvalObject, error) {
	if err := v.Var.HandlePush(ev, value); err != nil {
		return nil, err
	}
	return value, nil
}
