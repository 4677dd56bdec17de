package evalobj

import (
	"fmt"

	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/diag"
	"github.com/elasticc/hls/internal/operations"
	"github.com/elasticc/hls/internal/types"
)

// BasicOperation represents a unary or binary operator application as
// written by the user, including operators with side effects (assignment,
// increment/decrement, push) which ApplyToState eliminates by performing
// them against the evaluator state.
type BasicOperation struct {
	base
	Oper     operations.Type
	Operands_ []EvalObject
}

func NewBasicOperation(oper operations.Type, operands []EvalObject) *BasicOperation {
	return &BasicOperation{base: newBase(), Oper: oper, Operands_: operands}
}

func (o *BasicOperation) ID() string { return o.baseID("oper") }

func (o *BasicOperation) Operands() []EvalObject { return o.Operands_ }

// NonNumericAllowed reports whether the operation is a push or a plain
// assignment and therefore produces a non-numeric result equal to operand
// index 1. operator<<
// (SHL) is overloaded between bitwise left shift and stream push, resolved
// by whether the left operand accepts a push.
func (o *BasicOperation) NonNumericAllowed() bool {
	if o.Oper == operations.ASSIGN {
		return true
	}
	if o.Oper == operations.SHL && len(o.Operands_) > 0 && o.Operands_[0].CanPushInto() {
		return true
	}
	return false
}

func (o *BasicOperation) DataType(ev Evaluator) (types.DataType, error) {
	if o.NonNumericAllowed() {
		return o.Operands_[1].DataType(ev)
	}
	intTypes := make([]types.IntegerType, len(o.Operands_))
	widths := make([]int, len(o.Operands_))
	for i, opnd := range o.Operands_ {
		dt, err := opnd.DataType(ev)
		if err != nil {
			return nil, err
		}
		it, ok := dt.(types.IntegerType)
		if !ok {
			op, _ := operations.Lookup(o.Oper)
			return nil, fmt.Errorf("all operands of operator %s must be numeric and scalar", op.Token)
		}
		intTypes[i] = it
		widths[i] = it.Width_
	}
	constOperands := make([]operations.ConstOperand, len(o.Operands_))
	for i, opnd := range o.Operands_ {
		if opnd.HasConstantValue(ev) {
			cv, err := opnd.ScalarConstValue(ev)
			if err != nil {
				return nil, err
			}
			constOperands[i] = operations.ConstOperand{IsConst: true, Value: cv.IntVal()}
		}
	}
	resultSigned := false
	for _, it := range intTypes {
		if it.Signed {
			resultSigned = true
		}
	}
	width := operations.ResultWidth(widths, o.Oper, constOperands)
	return types.NewIntegerType(width, resultSigned), nil
}

func (o *BasicOperation) HasConstantValue(ev Evaluator) bool {
	_, err := o.ScalarConstValue(ev)
	return err == nil
}

func (o *BasicOperation) ConstantValue(ev Evaluator) (EvalObject, error) {
	if operations.IsDivOrMod(o.Oper) {
		return nil, diag.NewEvalError(diag.EVA015, "", 0, "division and modulo are not synthesizable")
	}
	op, _ := operations.Lookup(o.Oper)
	if op.IsAssignment {
		return nil, fmt.Errorf("assignment type operation does not have const value")
	}
	constOperands := make([]bitconst.Const, len(o.Operands_))
	for i, opnd := range o.Operands_ {
		cv, err := opnd.ScalarConstValue(ev)
		if err != nil {
			return nil, err
		}
		constOperands[i] = cv
	}
	return NewConstant(bitconst.PerformConstOperation(constOperands, o.Oper)), nil
}

func (o *BasicOperation) ScalarConstValue(ev Evaluator) (bitconst.Const, error) {
	return DefaultScalarConstValue(o, ev)
}

// ApplyToState performs ApplyToState on every operand (so nested side
// effects run in operand order), then either carries out this operation's
// own side effect (push or assignment) or folds it to its result,
// assigning the result back for any compound-assignment/increment form.
func (o *BasicOperation) ApplyToState(ev Evaluator) (EvalObject, error) {
	applied := make([]EvalObject, len(o.Operands_))
	for i, opnd := range o.Operands_ {
		a, err := opnd.ApplyToState(ev)
		if err != nil {
			return nil, err
		}
		applied[i] = a
	}

	if o.NonNumericAllowed() {
		value, err := applied[1].Value(ev)
		if err != nil {
			return nil, err
		}
		if o.Oper == operations.SHL {
			if _, err := applied[0].ApplyPushInto(ev, value); err != nil {
				return nil, err
			}
		} else if o.Oper == operations.ASSIGN {
			if err := applied[0].AssignValue(ev, value); err != nil {
				return nil, err
			}
		}
		return value, nil
	}

	result, err := o.resultFor(ev, applied, o.Oper)
	if err != nil {
		return nil, err
	}
	op, _ := operations.Lookup(o.Oper)
	if op.IsAssignment {
		switch o.Oper {
		case operations.POSTINC:
			pre, err := o.resultFor(ev, applied, operations.PREINC)
			if err != nil {
				return nil, err
			}
			if err := applied[0].AssignValue(ev, pre); err != nil {
				return nil, err
			}
		case operations.POSTDEC:
			pre, err := o.resultFor(ev, applied, operations.PREDEC)
			if err != nil {
				return nil, err
			}
			if err := applied[0].AssignValue(ev, pre); err != nil {
				return nil, err
			}
		default:
			if err := applied[0].AssignValue(ev, result); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

func (o *BasicOperation) Value(ev Evaluator) (EvalObject, error) {
	return o.resultFor(ev, o.Operands_, o.Oper)
}

// resultFor computes the result of applying oper to operands, ignoring
// side effects.
func (o *BasicOperation) resultFor(ev Evaluator, operands []EvalObject, oper operations.Type) (EvalObject, error) {
	if operations.IsDivOrMod(oper) {
		return nil, diag.NewEvalError(diag.EVA015, "", 0, "division and modulo are not synthesizable")
	}
	if o.NonNumericAllowed() && oper == o.Oper {
		return operands[1].Value(ev)
	}
	values := make([]EvalObject, len(operands))
	for i, opnd := range operands {
		v, err := opnd.Value(ev)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	op, _ := operations.Lookup(oper)
	if op.IsAssignment {
		switch oper {
		case operations.ASSIGN:
			return values[1], nil
		case operations.PLUSEQ:
			return o.resultFor(ev, values, operations.ADD)
		case operations.MINUSEQ:
			return o.resultFor(ev, values, operations.SUB)
		case operations.MULEQ:
			return o.resultFor(ev, values, operations.MUL)
		case operations.DIVEQ:
			return o.resultFor(ev, values, operations.DIV)
		case operations.MODEQ:
			return o.resultFor(ev, values, operations.MOD)
		case operations.OREQ:
			return o.resultFor(ev, values, operations.BWOR)
		case operations.ANDEQ:
			return o.resultFor(ev, values, operations.BWAND)
		case operations.XOREQ:
			return o.resultFor(ev, values, operations.BWXOR)
		case operations.SHLEQ:
			return o.resultFor(ev, values, operations.SHL)
		case operations.SHREQ:
			return o.resultFor(ev, values, operations.SHR)
		case operations.POSTINC, operations.POSTDEC:
			return values[0], nil
		case operations.PREINC:
			return NewBasicOperation(operations.ADD, []EvalObject{values[0], NewConstant(bitconst.FromInt(1))}), nil
		case operations.PREDEC:
			return NewBasicOperation(operations.SUB, []EvalObject{values[0], NewConstant(bitconst.FromInt(1))}), nil
		default:
			return nil, fmt.Errorf("unknown assignment type operation")
		}
	}
	return NewBasicOperation(oper, operands), nil
}
