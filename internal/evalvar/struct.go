package evalvar

import (
	"github.com/elasticc/hls/internal/evalobj"
	"github.com/elasticc/hls/internal/types"
)

// Struct is a structure variable, exploded into one child EvaluatorVariable
// per member, named "<name>_<member>".
type Struct struct {
	base
	Typ   types.StructureType
	Items []evalobj.EvaluatorVariable
}

func NewStruct(dir evalobj.VariableDir, name string, typ types.StructureType, isStatic bool) (*Struct, error) {
	s := &Struct{base: newBase(name, dir), Typ: typ}
	items := make([]evalobj.EvaluatorVariable, len(typ.Content))
	for i, member := range typ.Content {
		memberDir := evalobj.VariableDir{IsInput: dir.IsInput, IsOutput: dir.IsOutput, IsToplevel: dir.IsToplevel}
		child, err := Create(memberDir, name+"_"+member.Name, member.Type, isStatic)
		if err != nil {
			return nil, err
		}
		items[i] = child
	}
	s.Items = items
	return s, nil
}

func (s *Struct) Type() types.DataType { return s.Typ }
func (s *Struct) IsScalar() bool       { return false }

func (s *Struct) GetAllChildren() []evalobj.EvaluatorVariable { return s.Items }

func (s *Struct) GetChildByName(name string) (evalobj.EvaluatorVariable, error) {
	for i, member := range s.Typ.Content {
		if member.Name == name {
			return s.Items[i], nil
		}
	}
	return s.base.GetChildByName(name)
}

// SetBitOffset lays each member out consecutively by its own width.
func (s *Struct) SetBitOffset(offset int) {
	pos := offset
	for _, item := range s.Items {
		item.SetBitOffset(pos)
		pos += item.Type().Width()
	}
	s.base.SetBitOffset(offset)
}

func (s *Struct) HandleRead(ev evalobj.Evaluator) (evalobj.EvalObject, error) {
	values := make(map[string]evalobj.EvalObject, len(s.Items))
	for i, item := range s.Items {
		v, err := item.HandleRead(ev)
		if err != nil {
			return nil, err
		}
		values[s.Typ.Content[i].Name] = v
	}
	return evalobj.NewStruct(s.Typ, values), nil
}

func (s *Struct) HandleWrite(ev evalobj.Evaluator, value evalobj.EvalObject) error {
	for i, item := range s.Items {
		memberValue, err := value.StructureMember(ev, s.Typ.Content[i].Name)
		if err != nil {
			return err
		}
		if err := item.HandleWrite(ev, memberValue); err != nil {
			return err
		}
	}
	return nil
}
