package evalvar

import (
	"strconv"

	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/evalobj"
	"github.com/elasticc/hls/internal/types"
)

// Array is a fixed-length array variable, exploded into one child
// EvaluatorVariable per element (so each element gets its own signal and,
// for a static array, its own write-enable/written-value pair).
// Multidimensional arrays are handled by nesting (an array of arrays), via
// ArrayType.BaseType's flat per-dimension expansion.
type Array struct {
	base
	Typ   types.ArrayType
	Items []evalobj.EvaluatorVariable
}

func NewArray(dir evalobj.VariableDir, name string, typ types.ArrayType, isStatic bool) (*Array, error) {
	a := &Array{base: newBase(name, dir), Typ: typ}
	items := make([]evalobj.EvaluatorVariable, typ.Length)
	for i := range items {
		itemDir := evalobj.VariableDir{IsInput: dir.IsInput, IsOutput: dir.IsOutput}
		child, err := Create(itemDir, itemName(name, i), typ.Base, isStatic)
		if err != nil {
			return nil, err
		}
		items[i] = child
	}
	a.Items = items
	a.recomputeBitOffset(0)
	return a, nil
}

func itemName(base string, i int) string {
	return base + "___itm" + strconv.Itoa(i)
}

func (a *Array) Type() types.DataType { return a.Typ }
func (a *Array) IsScalar() bool       { return false }

func (a *Array) GetArrayChildren() []evalobj.EvaluatorVariable { return a.Items }
func (a *Array) GetAllChildren() []evalobj.EvaluatorVariable   { return a.Items }

// SetBitOffset lays each element out consecutively.
func (a *Array) SetBitOffset(offset int) {
	a.recomputeBitOffset(offset)
	a.base.SetBitOffset(offset)
}

func (a *Array) recomputeBitOffset(start int) {
	offset := start
	elemWidth := a.Typ.Base.Width()
	for _, item := range a.Items {
		item.SetBitOffset(offset)
		offset += elemWidth
	}
}

// HandleRead reads every element and folds the result into a temporary
// evalobj.Array.
func (a *Array) HandleRead(ev evalobj.Evaluator) (evalobj.EvalObject, error) {
	values := make([]evalobj.EvalObject, len(a.Items))
	for i, item := range a.Items {
		v, err := item.HandleRead(ev)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return evalobj.NewArray(a.Typ, values), nil
}

// HandleWrite splits a whole-array assignment into one subscripted read of
// value per element. This works unchanged for nested array types since
// each element's own HandleWrite recurses the same way.
func (a *Array) HandleWrite(ev evalobj.Evaluator, value evalobj.EvalObject) error {
	for i, item := range a.Items {
		idx := evalobj.NewConstant(bitconst.FromInt(int64(i)))
		elemValue, err := value.ApplyArraySubscriptRead(ev, []evalobj.EvalObject{idx})
		if err != nil {
			return err
		}
		if err := item.HandleWrite(ev, elemValue); err != nil {
			return err
		}
	}
	return nil
}
