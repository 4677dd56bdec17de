package evalobj

import (
	"fmt"

	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/types"
)

// Cast represents an explicit or implicit width/signedness conversion.
// ScalarConstValue/ConstantValue apply bitconst.Const's own Cast, the same
// way BasicOperation widens operands before folding a constant result.
type Cast struct {
	base
	CastTo  types.IntegerType
	Operand EvalObject
}

func NewCast(castTo types.IntegerType, operand EvalObject) *Cast {
	return &Cast{base: newBase(), CastTo: castTo, Operand: operand}
}

func (c *Cast) ID() string { return c.baseID("cast") }

func (c *Cast) DataType(ev Evaluator) (types.DataType, error) { return c.CastTo, nil }

func (c *Cast) HasConstantValue(ev Evaluator) bool { return c.Operand.HasConstantValue(ev) }

func (c *Cast) ConstantValue(ev Evaluator) (EvalObject, error) {
	sv, err := c.ScalarConstValue(ev)
	if err != nil {
		return nil, err
	}
	return NewConstant(sv), nil
}

func (c *Cast) ScalarConstValue(ev Evaluator) (bitconst.Const, error) {
	ov, err := c.Operand.ScalarConstValue(ev)
	if err != nil {
		return bitconst.Const{}, err
	}
	return ov.Cast(c.CastTo.Width_, c.CastTo.Signed), nil
}

func (c *Cast) ApplyToState(ev Evaluator) (EvalObject, error) { return DefaultApplyToState(c, ev) }

func (c *Cast) Value(ev Evaluator) (EvalObject, error) {
	v, err := c.Operand.Value(ev)
	if err != nil {
		return nil, err
	}
	if v == c.Operand {
		return c, nil
	}
	return NewCast(c.CastTo, v), nil
}

func (c *Cast) Operands() []EvalObject { return []EvalObject{c.Operand} }

func (c *Cast) AssignValue(ev Evaluator, value EvalObject) error {
	return fmt.Errorf("===%s=== is a temporary cast and cannot be assigned to", c.ID())
}
