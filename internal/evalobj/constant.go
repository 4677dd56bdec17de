package evalobj

import (
	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/types"
)

// Constant represents a basic scalar constant value.
type Constant struct {
	base
	Val bitconst.Const
}

// NewConstant wraps a bitconst.Const as a constant EvalObject.
func NewConstant(val bitconst.Const) *Constant {
	return &Constant{base: newBase(), Val: val}
}

func (c *Constant) ID() string { return c.baseID("const") }

func (c *Constant) DataType(ev Evaluator) (types.DataType, error) {
	return types.NewIntegerType(c.Val.Width(), c.Val.Signed), nil
}

func (c *Constant) HasConstantValue(ev Evaluator) bool { return true }

func (c *Constant) ConstantValue(ev Evaluator) (EvalObject, error) { return c, nil }

func (c *Constant) ScalarConstValue(ev Evaluator) (bitconst.Const, error) { return c.Val, nil }

func (c *Constant) ApplyToState(ev Evaluator) (EvalObject, error) { return DefaultApplyToState(c, ev) }

func (c *Constant) Value(ev Evaluator) (EvalObject, error) { return DefaultValue(c, ev) }
