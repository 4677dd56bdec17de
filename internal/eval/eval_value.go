package eval

import (
	"github.com/elasticc/hls/internal/evalobj"
	"github.com/elasticc/hls/internal/types"
)

// GetVariableValue returns v's current EvalObject expression, or a DontCare
// placeholder if nothing has ever written it. Implements evalobj.Evaluator.
func (e *Evaluator) GetVariableValue(v evalobj.EvaluatorVariable) (evalobj.EvalObject, error) {
	if val, ok := e.currentValues[v]; ok {
		return val, nil
	}
	return evalobj.NewDontCare(v.Type()), nil
}

// SetVariableValue records that value was just written to v. With an empty
// condition stack this simply replaces the current value; otherwise it
// threads the write through the live conditions via mergeConditions, so
// that distinct if/else branches never clobber each other and the final
// expression folds into one nested multiplexer. Implements evalobj.Evaluator.
func (e *Evaluator) SetVariableValue(v evalobj.EvaluatorVariable, value evalobj.EvalObject) error {
	value, err := e.coerceAssign(v.Type(), value)
	if err != nil {
		return err
	}
	if len(e.conditions) == 0 {
		e.currentValues[v] = value
		return nil
	}
	current, err := e.GetVariableValue(v)
	if err != nil {
		return err
	}
	e.currentValues[v] = e.mergeConditions(current, value, 0, v.Type())
	return nil
}

// coerceAssign inserts an implicit Cast when target is an integer type and
// value is an integer of a different width or signedness. Every other value
// is returned unchanged: a non-integer target, a non-integer value written
// to an integer target, and a value whose type cannot be determined are
// neither checked nor rejected.
func (e *Evaluator) coerceAssign(target types.DataType, value evalobj.EvalObject) (evalobj.EvalObject, error) {
	it, ok := target.(types.IntegerType)
	if !ok {
		return value, nil
	}
	vt, err := value.DataType(e)
	if err != nil {
		// A DontCare or other type-indeterminate object: let the write
		// through unchanged, synthesis will coerce at the signal boundary.
		return value, nil
	}
	vit, ok := vt.(types.IntegerType)
	if !ok || vit.Equals(it) {
		return value, nil
	}
	return evalobj.NewCast(it, value), nil
}

// mergeConditions is the condition-stack write-merge algorithm. It walks
// conds[idx:] against current, descending into a matching
// SpecialOperation(T_COND) chain (same predicate, same position in the
// stack) for as long as current already branches the same way; at the
// first mismatch (including hitting a leaf) it builds a fresh Select chain
// for the remaining conditions, wrapping value at the center and DontCare
// in every untaken branch.
func (e *Evaluator) mergeConditions(current evalobj.EvalObject, value evalobj.EvalObject, idx int, varType types.DataType) evalobj.EvalObject {
	if idx == len(e.conditions) {
		return value
	}
	cond := e.conditions[idx]
	if so, ok := current.(*evalobj.SpecialOperation); ok && so.Kind == evalobj.TCond && so.Operands_[0] == cond.Predicate {
		trueBranch, falseBranch := so.Operands_[1], so.Operands_[2]
		if cond.Branch {
			trueBranch = e.mergeConditions(trueBranch, value, idx+1, varType)
		} else {
			falseBranch = e.mergeConditions(falseBranch, value, idx+1, varType)
		}
		return evalobj.NewSpecialOperation(evalobj.TCond, []evalobj.EvalObject{cond.Predicate, trueBranch, falseBranch}, nil)
	}
	return e.buildSelectChain(idx, value, varType)
}

// buildSelectChain builds a fresh nested T_COND expression for
// conds[idx:], with value reached along the live branch at every level and
// a DontCare placeholder on every branch not taken.
func (e *Evaluator) buildSelectChain(idx int, value evalobj.EvalObject, varType types.DataType) evalobj.EvalObject {
	if idx == len(e.conditions) {
		return value
	}
	cond := e.conditions[idx]
	inner := e.buildSelectChain(idx+1, value, varType)
	dontCare := evalobj.NewDontCare(varType)
	if cond.Branch {
		return evalobj.NewSpecialOperation(evalobj.TCond, []evalobj.EvalObject{cond.Predicate, inner, dontCare}, nil)
	}
	return evalobj.NewSpecialOperation(evalobj.TCond, []evalobj.EvalObject{cond.Predicate, dontCare, inner}, nil)
}
