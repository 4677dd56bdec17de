// Package evalobj models the EvalObject graph: the evaluator's intermediate
// representation for anything that has a value, whether a constant, a
// variable reference, or an in-progress expression. It is built by
// internal/eval while walking the parsed ast.Statement/ast.Expression tree,
// and consumed by internal/synth when lowering to hardware.
//
// EvalObject and EvaluatorVariable (internal/evalvar's concern) refer to
// each other, since a variable read returns an EvalObject and an
// EvalObject's AssignValue writes through to a variable. Go has no forward
// declaration, so the interfaces both sides need are declared here, in
// evalobj, and internal/evalvar imports this package to implement
// EvaluatorVariable — never the reverse.
package evalobj

import (
	"fmt"
	"sync/atomic"

	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/types"
)

// Evaluator is the slice of the symbolic evaluator's state (internal/eval)
// that EvalObject and EvaluatorVariable implementations need: reading and
// writing the evaluator's notion of "the current value of a variable".
type Evaluator interface {
	GetVariableValue(v EvaluatorVariable) (EvalObject, error)
	SetVariableValue(v EvaluatorVariable, value EvalObject) error
}

// VariableDir records which direction(s) of the surrounding hardware block
// a variable flows in.
type VariableDir struct {
	IsInput    bool
	IsOutput   bool
	IsToplevel bool
}

// EvaluatorVariable is implemented by internal/evalvar's concrete variable
// kinds (Scalar, Array, Structure, ExternalMemory, Stream). Declared here,
// rather than in evalvar, purely so EvalObject implementations can hold a
// reference without an import cycle.
type EvaluatorVariable interface {
	Name() string
	Type() types.DataType
	Dir() VariableDir
	IsScalar() bool

	GetArrayChildren() []EvaluatorVariable
	GetAllChildren() []EvaluatorVariable
	GetChildByName(name string) (EvaluatorVariable, error)

	HasDefaultValue() bool
	DefaultValue() bitconst.Const

	HandleRead(ev Evaluator) (EvalObject, error)
	HandleWrite(ev Evaluator, value EvalObject) error
	IsNonTrivialArrayAccess() bool
	HandleSubscriptedRead(ev Evaluator, index []EvalObject) (EvalObject, error)
	HandleSubscriptedWrite(ev Evaluator, index []EvalObject, value EvalObject) error
	HandlePush(ev Evaluator, value EvalObject) error
	HandlePop(ev Evaluator) (EvalObject, error)

	BitOffset() int
	SetBitOffset(offset int)
}

// EvalObject is anything with a value: a constant, a variable reference, an
// array/structure aggregate, or an in-progress operation. A method that
// cannot apply to a given node returns an error where its signature has
// one; the Null sentinel's HasConstantValue and Operands panic instead.
type EvalObject interface {
	// ID returns a human-readable identifier, used in diagnostics.
	ID() string
	// DataType returns the type of the value, if determinable.
	DataType(ev Evaluator) (types.DataType, error)
	// HasConstantValue reports whether the object is entirely constant,
	// cheaper than ConstantValue when only the fact matters.
	HasConstantValue(ev Evaluator) bool
	// ConstantValue folds the object to a constant, or errors if it isn't one.
	ConstantValue(ev Evaluator) (EvalObject, error)
	// ScalarConstValue is ConstantValue narrowed to a scalar bit vector.
	ScalarConstValue(ev Evaluator) (bitconst.Const, error)

	ApplyArraySubscriptRead(ev Evaluator, subscript []EvalObject) (EvalObject, error)
	ApplyArraySubscriptWrite(ev Evaluator, subscript []EvalObject, value EvalObject) error

	StructureMember(ev Evaluator, name string) (EvalObject, error)
	AssignStructureMember(ev Evaluator, name string, value EvalObject) error

	// ApplyToState applies any side effects (assignment, push) the object
	// carries, returning the result of doing so (itself, if none).
	ApplyToState(ev Evaluator) (EvalObject, error)
	// AssignValue applies the effect of "this = value" to the evaluator state.
	AssignValue(ev Evaluator, value EvalObject) error
	// Value resolves variable references/indexing to a concrete value,
	// without applying side effects.
	Value(ev Evaluator) (EvalObject, error)
	// Operands returns the object's child EvalObjects, if any.
	Operands() []EvalObject
	// CanPushInto reports whether operator<< (push) applies to this object.
	CanPushInto() bool
	ApplyPushInto(ev Evaluator, value EvalObject) (EvalObject, error)
}

var idCounter uint64

func nextID() uint64 { return atomic.AddUint64(&idCounter, 1) }

// base supplies the handful of defaults every concrete EvalObject shares:
// a unique diagnostic ID and "no children" for leaves. Embed it and
// override whichever methods the concrete node actually supports.
type base struct {
	id uint64
}

func newBase() base { return base{id: nextID()} }

func (b base) baseID(prefix string) string { return fmt.Sprintf("%s_%d", prefix, b.id) }

// rawID returns the bare numeric suffix used to build a unique diagnostic ID.
func (b base) rawID() uint64 { return b.id }

func (base) HasConstantValue(ev Evaluator) bool { return false }
func (base) Operands() []EvalObject             { return nil }
func (base) CanPushInto() bool                  { return false }

func notConstErr(id string) error {
	return fmt.Errorf("===%s=== not a constant", id)
}

func notArrayErr(id string) error {
	return fmt.Errorf("===%s=== not an array or array-like type", id)
}

func notStructErr(id string) error {
	return fmt.Errorf("===%s=== not of structure type", id)
}

func notAssignableErr(id string) error {
	return fmt.Errorf("===%s=== cannot be assigned to", id)
}

func cannotPushErr(id string) error {
	return fmt.Errorf("===%s=== cannot be pushed into", id)
}

func (base) ApplyArraySubscriptRead(ev Evaluator, subscript []EvalObject) (EvalObject, error) {
	return nil, notArrayErr("object")
}

func (base) ApplyArraySubscriptWrite(ev Evaluator, subscript []EvalObject, value EvalObject) error {
	return notArrayErr("object")
}

func (base) StructureMember(ev Evaluator, name string) (EvalObject, error) {
	return nil, notStructErr("object")
}

func (base) AssignStructureMember(ev Evaluator, name string, value EvalObject) error {
	return notStructErr("object")
}

func (base) AssignValue(ev Evaluator, value EvalObject) error {
	return notAssignableErr("object")
}

func (base) ApplyPushInto(ev Evaluator, value EvalObject) (EvalObject, error) {
	return nil, cannotPushErr("object")
}

// DefaultScalarConstValue folds self to a constant, then requires it to
// carry an IntegerType. Concrete types that don't need a different rule
// call this from their own ScalarConstValue.
func DefaultScalarConstValue(self EvalObject, ev Evaluator) (bitconst.Const, error) {
	dt, err := self.DataType(ev)
	if err != nil {
		return bitconst.Const{}, err
	}
	if _, ok := dt.(types.IntegerType); !ok {
		return bitconst.Const{}, fmt.Errorf("===%s=== not a valid scalar constant", self.ID())
	}
	cv, err := self.ConstantValue(ev)
	if err != nil {
		return bitconst.Const{}, err
	}
	return cv.ScalarConstValue(ev)
}

// DefaultApplyToState implements the base class's default ApplyToState,
// which has no side effects of its own and simply returns the receiver.
func DefaultApplyToState(self EvalObject, ev Evaluator) (EvalObject, error) {
	return self, nil
}

// DefaultValue implements the base class's default GetValue: resolve
// variable substitution by simply returning the receiver (only EvalVariable
// and the subscript/member-access nodes override this to do real work).
func DefaultValue(self EvalObject, ev Evaluator) (EvalObject, error) {
	return self, nil
}
