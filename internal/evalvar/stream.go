package evalvar

import (
	"fmt"

	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/evalobj"
	"github.com/elasticc/hls/internal/types"
)

// Stream is a windowed, push-only sequential variable (stream/stream2d):
// reading it yields the current window as an array (via its array
// children), and the only way to advance it is operator<< (HandlePush),
// never a plain assignment.
type Stream struct {
	base
	Typ          types.StreamType
	Window       []evalobj.EvaluatorVariable
	writtenValue evalobj.EvaluatorVariable
	writeEnable  *Scalar
}

func NewStream(dir evalobj.VariableDir, name string, typ types.StreamType) (*Stream, error) {
	s := &Stream{base: newBase(name, dir)}
	s.Typ = typ

	total := typ.Length
	if typ.Is2D {
		total = typ.Length * typ.Height
	}
	window := make([]evalobj.EvaluatorVariable, total)
	for i := range window {
		child, err := Create(evalobj.VariableDir{IsInput: true}, itemName(name, i), typ.Base, false)
		if err != nil {
			return nil, err
		}
		window[i] = child
	}
	s.Window = window

	writtenValue, err := Create(evalobj.VariableDir{IsOutput: true}, name+"___wrval", typ.Base, false)
	if err != nil {
		return nil, err
	}
	s.writtenValue = writtenValue

	s.writeEnable = NewScalar(evalobj.VariableDir{IsOutput: true}, name+"___wren", types.NewIntegerType(1, false), false)
	s.writeEnable.SetDefaultValue(bitconst.FromInt(0))

	// A stream is never directly toplevel-exposed as a single port: its
	// window/write-enable/written-value children are what synthesis wires
	// up instead.
	s.DirVal.IsToplevel = false
	return s, nil
}

func (s *Stream) Type() types.DataType { return s.Typ }
func (s *Stream) IsScalar() bool       { return false }

func (s *Stream) GetArrayChildren() []evalobj.EvaluatorVariable { return s.Window }

func (s *Stream) GetAllChildren() []evalobj.EvaluatorVariable {
	children := make([]evalobj.EvaluatorVariable, 0, len(s.Window)+2)
	children = append(children, s.Window...)
	children = append(children, s.writeEnable, s.writtenValue)
	return children
}

func (s *Stream) GetChildByName(name string) (evalobj.EvaluatorVariable, error) {
	switch name {
	case "__wrval":
		return s.writtenValue, nil
	case "__wren":
		return s.writeEnable, nil
	default:
		return s.base.GetChildByName(name)
	}
}

func (s *Stream) HandleRead(ev evalobj.Evaluator) (evalobj.EvalObject, error) {
	return ev.GetVariableValue(s)
}

// HandlePush drives the write-enable/written-value pair for one cycle,
// letting synthesis shift the window forward.
func (s *Stream) HandlePush(ev evalobj.Evaluator, value evalobj.EvalObject) error {
	if err := ev.SetVariableValue(s.writeEnable, writeAsserted()); err != nil {
		return err
	}
	return ev.SetVariableValue(s.writtenValue, value)
}

func (s *Stream) HandleWrite(ev evalobj.Evaluator, value evalobj.EvalObject) error {
	return fmt.Errorf("cannot assign to stream ===%s===, use operator<< instead", s.NameVal)
}
