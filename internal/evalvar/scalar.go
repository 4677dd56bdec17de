package evalvar

import (
	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/evalobj"
	"github.com/elasticc/hls/internal/types"
)

// Scalar is a single integer-typed storage location: a plain variable, or
// (when isStatic) a C-style "static" local whose value persists across
// invocations via a hidden register fed by a write-enable/written-value
// pair.
type Scalar struct {
	base
	Typ types.IntegerType

	hasDefault   bool
	defaultValue bitconst.Const

	isStatic     bool
	writeEnable  *Scalar
	writtenValue *Scalar
}

// NewScalar constructs a scalar variable. A static variable is modeled as
// an input (its "current value" is driven by the register the synthesis
// stage builds from writeEnable/writtenValue) with two hidden non-static
// output children.
func NewScalar(dir evalobj.VariableDir, name string, typ types.IntegerType, isStatic bool) *Scalar {
	if isStatic {
		dir.IsInput = true
	}
	s := &Scalar{base: newBase(name, dir), Typ: typ, isStatic: isStatic}
	if isStatic {
		s.writeEnable = NewScalar(evalobj.VariableDir{IsOutput: true}, name+"___wren", types.NewIntegerType(1, false), false)
		s.writeEnable.SetDefaultValue(bitconst.FromInt(0))
		s.writtenValue = NewScalar(evalobj.VariableDir{IsOutput: true}, name+"___wrval", typ, false)
		// Arguably this should default to don't-care rather than zero, but
		// zero keeps the written-value signal always driven to a known
		// value even on cycles where the write enable is low.
		s.writtenValue.SetDefaultValue(bitconst.FromInt(0))
	}
	return s
}

func (s *Scalar) Type() types.DataType { return s.Typ }
func (s *Scalar) IsScalar() bool       { return true }

// IsStatic reports whether this scalar is backed by a hidden
// write-enable/written-value register pair, consulted by internal/synth
// when deciding whether a plain signal or a clocked Register materializes
// this variable.
func (s *Scalar) IsStatic() bool { return s.isStatic }

// WriteEnable and WrittenValue expose the hidden child variables a static
// scalar's register is built from (nil for a non-static scalar).
func (s *Scalar) WriteEnable() *Scalar  { return s.writeEnable }
func (s *Scalar) WrittenValue() *Scalar { return s.writtenValue }

func (s *Scalar) HasDefaultValue() bool          { return s.hasDefault }
func (s *Scalar) DefaultValue() bitconst.Const    { return s.defaultValue }

// SetDefaultValue records the reset/default value synthesis should drive
// this signal to, e.g. for a top-level input with a declared initializer.
func (s *Scalar) SetDefaultValue(v bitconst.Const) {
	s.hasDefault = true
	s.defaultValue = v
}

func (s *Scalar) GetChildByName(name string) (evalobj.EvaluatorVariable, error) {
	if s.isStatic {
		switch name {
		case "__wren":
			return s.writeEnable, nil
		case "__wrval":
			return s.writtenValue, nil
		}
	}
	return s.base.GetChildByName(name)
}

func (s *Scalar) GetAllChildren() []evalobj.EvaluatorVariable {
	if s.isStatic {
		return []evalobj.EvaluatorVariable{s.writeEnable, s.writtenValue}
	}
	return nil
}

func (s *Scalar) HandleRead(ev evalobj.Evaluator) (evalobj.EvalObject, error) {
	return ev.GetVariableValue(s)
}

// HandleWrite routes a plain assignment through the write-enable/
// written-value pair for a static variable (the register is pulsed high
// for exactly one cycle), or straight through to the evaluator's value map
// otherwise.
func (s *Scalar) HandleWrite(ev evalobj.Evaluator, value evalobj.EvalObject) error {
	if s.isStatic {
		if err := ev.SetVariableValue(s.writtenValue, value); err != nil {
			return err
		}
		return ev.SetVariableValue(s.writeEnable, writeAsserted())
	}
	return ev.SetVariableValue(s, value)
}
