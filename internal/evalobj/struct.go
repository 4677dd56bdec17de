package evalobj

import (
	"fmt"

	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/types"
)

// Struct represents a temporary structure value (an initializer list or the
// result of reading a structure-typed variable).
type Struct struct {
	base
	StructType types.StructureType
	Items      map[string]EvalObject
}

func NewStruct(structType types.StructureType, items map[string]EvalObject) *Struct {
	return &Struct{base: newBase(), StructType: structType, Items: items}
}

func (s *Struct) ID() string { return s.baseID("temp_struct") }

func (s *Struct) DataType(ev Evaluator) (types.DataType, error) { return s.StructType, nil }

func (s *Struct) HasConstantValue(ev Evaluator) bool {
	for _, v := range s.Items {
		if !v.HasConstantValue(ev) {
			return false
		}
	}
	return true
}

func (s *Struct) ConstantValue(ev Evaluator) (EvalObject, error) {
	folded := make(map[string]EvalObject, len(s.Items))
	for name, v := range s.Items {
		cv, err := v.ConstantValue(ev)
		if err != nil {
			return nil, err
		}
		folded[name] = cv
	}
	return NewStruct(s.StructType, folded), nil
}

func (s *Struct) ScalarConstValue(ev Evaluator) (bitconst.Const, error) {
	return DefaultScalarConstValue(s, ev)
}

func (s *Struct) StructureMember(ev Evaluator, name string) (EvalObject, error) {
	v, ok := s.Items[name]
	if !ok {
		return nil, fmt.Errorf("structure type ===%s=== does not contain member ===%s===", s.StructType.Name(), name)
	}
	return v, nil
}

func (s *Struct) AssignStructureMember(ev Evaluator, name string, value EvalObject) error {
	return fmt.Errorf("cannot assign to temporary struct")
}

func (s *Struct) ApplyToState(ev Evaluator) (EvalObject, error) { return DefaultApplyToState(s, ev) }
func (s *Struct) Value(ev Evaluator) (EvalObject, error)        { return DefaultValue(s, ev) }

func (s *Struct) Operands() []EvalObject {
	ops := make([]EvalObject, 0, len(s.Items))
	for _, v := range s.Items {
		ops = append(ops, v)
	}
	return ops
}

// StructAccess represents structure member access on a base whose value is
// not yet resolved (mirrors ArrayAccess for the structure case).
type StructAccess struct {
	base
	Base   EvalObject
	Member string
}

func NewStructAccess(base_ EvalObject, member string) *StructAccess {
	return &StructAccess{base: newBase(), Base: base_, Member: member}
}

func (s *StructAccess) ID() string { return s.baseID("struct_access") }

func (s *StructAccess) DataType(ev Evaluator) (types.DataType, error) {
	dt, err := s.Base.DataType(ev)
	if err != nil {
		return nil, err
	}
	return dt.MemberType(s.Member)
}

func (s *StructAccess) resolve(ev Evaluator) (EvalObject, error) {
	return s.Base.StructureMember(ev, s.Member)
}

func (s *StructAccess) HasConstantValue(ev Evaluator) bool {
	_, err := s.ConstantValue(ev)
	return err == nil
}

func (s *StructAccess) ConstantValue(ev Evaluator) (EvalObject, error) {
	resolved, err := s.resolve(ev)
	if err != nil {
		return nil, err
	}
	return resolved.ConstantValue(ev)
}

func (s *StructAccess) ScalarConstValue(ev Evaluator) (bitconst.Const, error) {
	return DefaultScalarConstValue(s, ev)
}

func (s *StructAccess) ApplyArraySubscriptRead(ev Evaluator, subscript []EvalObject) (EvalObject, error) {
	resolved, err := s.resolve(ev)
	if err != nil {
		return nil, err
	}
	return resolved.ApplyArraySubscriptRead(ev, subscript)
}

func (s *StructAccess) ApplyArraySubscriptWrite(ev Evaluator, subscript []EvalObject, value EvalObject) error {
	resolved, err := s.resolve(ev)
	if err != nil {
		return err
	}
	return resolved.ApplyArraySubscriptWrite(ev, subscript, value)
}

func (s *StructAccess) StructureMember(ev Evaluator, name string) (EvalObject, error) {
	resolved, err := s.resolve(ev)
	if err != nil {
		return nil, err
	}
	return resolved.StructureMember(ev, name)
}

func (s *StructAccess) AssignStructureMember(ev Evaluator, name string, value EvalObject) error {
	resolved, err := s.resolve(ev)
	if err != nil {
		return err
	}
	return resolved.AssignStructureMember(ev, name, value)
}

func (s *StructAccess) ApplyToState(ev Evaluator) (EvalObject, error) {
	baseApplied, err := s.Base.ApplyToState(ev)
	if err != nil {
		return nil, err
	}
	return baseApplied.StructureMember(ev, s.Member)
}

func (s *StructAccess) AssignValue(ev Evaluator, value EvalObject) error {
	return s.Base.AssignStructureMember(ev, s.Member, value)
}

func (s *StructAccess) Value(ev Evaluator) (EvalObject, error) {
	resolved, err := s.resolve(ev)
	if err != nil {
		return nil, err
	}
	return resolved.Value(ev)
}

func (s *StructAccess) Operands() []EvalObject { return []EvalObject{s.Base} }
