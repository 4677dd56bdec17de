// Package evalvar provides the concrete EvaluatorVariable kinds: Scalar,
// Array, Struct, ExternalMemory (RAM/ROM), and Stream. Each wraps an
// evaluator-assigned storage location that the EvalObject graph in
// internal/evalobj reads from and writes to via the narrow Evaluator
// interface.
//
// Every concrete type here implements evalobj.EvaluatorVariable, imported
// one-directionally from internal/evalobj (never the reverse), following
// the forward-declaration-avoidance design documented in that package.
package evalvar

import (
	"fmt"

	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/diag"
	"github.com/elasticc/hls/internal/evalobj"
	"github.com/elasticc/hls/internal/types"
)

// base supplies the handful of EvaluatorVariable defaults that don't need
// a self-reference: no children, no default value, trivial array access,
// and "not supported" for every optional handler.
type base struct {
	NameVal string
	DirVal  evalobj.VariableDir
	offset  int
}

func newBase(name string, dir evalobj.VariableDir) base {
	return base{NameVal: name, DirVal: dir}
}

func (b base) Name() string             { return b.NameVal }
func (b base) Dir() evalobj.VariableDir { return b.DirVal }
func (b *base) BitOffset() int          { return b.offset }
func (b *base) SetBitOffset(offset int) { b.offset = offset }

func (base) GetArrayChildren() []evalobj.EvaluatorVariable { return nil }
func (base) GetAllChildren() []evalobj.EvaluatorVariable   { return nil }

func (b base) GetChildByName(name string) (evalobj.EvaluatorVariable, error) {
	return nil, fmt.Errorf("variable ===%s=== does not contain member ===%s===", b.NameVal, name)
}

func (base) HasDefaultValue() bool { return false }

// DefaultValue's signature carries no error return, so a call with no
// default configured is an evaluator-internal misuse, not a user-facing
// diagnostic - callers must check HasDefaultValue first.
func (base) DefaultValue() bitconst.Const {
	panic(diag.NewInternalError(diag.INT001, "variable has no default value"))
}

func (base) IsNonTrivialArrayAccess() bool { return false }

func (b base) HandleSubscriptedRead(ev evalobj.Evaluator, index []evalobj.EvalObject) (evalobj.EvalObject, error) {
	return nil, fmt.Errorf("subscripted read not supported for variable ===%s===", b.NameVal)
}

func (b base) HandleSubscriptedWrite(ev evalobj.Evaluator, index []evalobj.EvalObject, value evalobj.EvalObject) error {
	return fmt.Errorf("subscripted write not supported for variable ===%s===", b.NameVal)
}

func (b base) HandlePush(ev evalobj.Evaluator, value evalobj.EvalObject) error {
	return fmt.Errorf("push (operator<<) not supported for variable ===%s===", b.NameVal)
}

func (b base) HandlePop(ev evalobj.Evaluator) (evalobj.EvalObject, error) {
	return nil, fmt.Errorf("pop (operator>>) not supported for variable ===%s===", b.NameVal)
}

// writeAsserted is the shared EvalObject for "write enable asserted" /
// "slot just written", avoiding an evalobj.NewConstant(bitconst.FromInt(1))
// round trip at every call site that needs it.
func writeAsserted() evalobj.EvalObject {
	return evalobj.NewConstant(bitconst.FromInt(1))
}

// Create builds the right concrete EvaluatorVariable kind for a DataType.
// isStatic only affects Scalar and is propagated unchanged to array/struct
// children. StreamType is deliberately not handled here: streams are only
// ever bound directly as toplevel hardware block parameters (NewStream),
// never nested inside an array or structure, so Create never needs to
// produce one.
func Create(dir evalobj.VariableDir, name string, dt types.DataType, isStatic bool) (evalobj.EvaluatorVariable, error) {
	switch t := dt.(type) {
	case types.IntegerType:
		return NewScalar(dir, name, t, isStatic), nil
	case types.ArrayType:
		return NewArray(dir, name, t, isStatic)
	case types.RAMType:
		return NewExternalMemory(dir, name, t)
	case types.StructureType:
		return NewStruct(dir, name, t, isStatic)
	default:
		return nil, fmt.Errorf("unable to create variable ===%s===: unsupported type", name)
	}
}
