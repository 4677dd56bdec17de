package eval

import (
	"github.com/elasticc/hls/internal/ast"
	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/diag"
	"github.com/elasticc/hls/internal/evalobj"
	"github.com/elasticc/hls/internal/types"
)

// EvaluateExpression maps one ast.Expression node to an EvalObject.
func (e *Evaluator) EvaluateExpression(expr ast.Expression) (evalobj.EvalObject, error) {
	if expr == nil || expr == ast.NullExpression {
		return evalobj.Null, nil
	}
	switch x := expr.(type) {
	case *ast.Literal:
		val, err := bitconst.Parse(x.Text)
		if err != nil {
			return nil, diag.NewEvalError(diag.EVA002, x.Pos.File, x.Pos.Line, "malformed numeric literal ===%s===: %v", x.Text, err)
		}
		return evalobj.NewConstant(val), nil

	case *ast.VariableToken:
		return e.evaluateVariableToken(x)

	case *ast.BasicOperation:
		operands := make([]evalobj.EvalObject, len(x.Operands))
		for i, o := range x.Operands {
			v, err := e.EvaluateExpression(o)
			if err != nil {
				return nil, err
			}
			operands[i] = v
		}
		op := evalobj.NewBasicOperation(x.Oper, operands)
		applied, err := op.ApplyToState(e)
		if err != nil {
			return nil, err
		}
		return applied.Value(e)

	case *ast.ArraySubscript:
		base, err := e.EvaluateExpression(x.Base)
		if err != nil {
			return nil, err
		}
		indices := make([]evalobj.EvalObject, len(x.Index))
		for i, idx := range x.Index {
			v, err := e.EvaluateExpression(idx)
			if err != nil {
				return nil, err
			}
			indices[i] = v
		}
		return evalobj.NewArrayAccess(base, indices), nil

	case *ast.MemberAccess:
		base, err := e.EvaluateExpression(x.Base)
		if err != nil {
			return nil, err
		}
		return evalobj.NewStructAccess(base, x.MemberName), nil

	case *ast.FunctionCall:
		args := make([]evalobj.EvalObject, len(x.Operands))
		for i, o := range x.Operands {
			v, err := e.EvaluateExpression(o)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return e.ProcessFunctionCall(x.Func, args, x.Args)

	case *ast.InitialiserList:
		return nil, diag.NewEvalError(diag.EVA009, x.Pos.File, x.Pos.Line,
			"initialiser list is only valid as a declaration initialiser")

	case *ast.Builtin:
		return e.evaluateBuiltin(x)

	case *ast.TemplateParamToken:
		bound, err := e.tpContext.Lookup(x.Context, x.Index)
		if err != nil {
			return nil, err
		}
		if bound.Value == nil {
			return nil, diag.NewEvalError(diag.EVA013, x.Pos.File, x.Pos.Line, "template parameter is a type, not a value")
		}
		return bound.Value, nil

	default:
		return nil, diag.NewInternalError(diag.INT002, "unsupported Expression variant survived parse")
	}
}

// evaluateVariableToken resolves an identifier reference: a variable bound
// in the active call frame, or (failing that) a global constant, evaluated
// and cached on first use.
func (e *Evaluator) evaluateVariableToken(x *ast.VariableToken) (evalobj.EvalObject, error) {
	if v, ok := e.parserVariables[x.Var]; ok {
		return evalobj.NewVariable(v), nil
	}
	if isGlobalVariable(e.gs, x.Var) {
		if cached, ok := e.globalConstants[x.Var]; ok {
			return cached, nil
		}
		if !x.Var.HasQualifier(ast.QualConst) {
			return nil, diag.NewEvalError(diag.EVA006, x.Pos.File, x.Pos.Line,
				"global variable ===%s=== is not const and cannot be referenced outside its declaration", x.Var.Name)
		}
		val, err := e.EvaluateExpression(x.Var.Initialiser)
		if err != nil {
			return nil, err
		}
		folded, err := val.ConstantValue(e)
		if err != nil {
			return nil, diag.NewEvalError(diag.EVA006, x.Pos.File, x.Pos.Line,
				"global constant ===%s=== initialiser is not a compile-time constant: %v", x.Var.Name, err)
		}
		if e.globalConstants == nil {
			e.globalConstants = map[*ast.Variable]evalobj.EvalObject{}
		}
		e.globalConstants[x.Var] = folded
		return folded, nil
	}
	return nil, diag.NewEvalError(diag.EVA016, x.Pos.File, x.Pos.Line, "unbound identifier ===%s===", x.Var.Name)
}

func isGlobalVariable(gs *ast.GlobalScope, v *ast.Variable) bool {
	for _, gv := range gs.Vars {
		if gv == v {
			return true
		}
	}
	return false
}

// evaluateBuiltin folds sizeof/__widthof/__length/__min/__max to a constant.
// The operand may be a bare type specifier as well as an expression.
func (e *Evaluator) evaluateBuiltin(b *ast.Builtin) (evalobj.EvalObject, error) {
	var dt types.DataType
	if b.OperandType != nil {
		resolved, err := e.ResolveType(b.OperandType, nil)
		if err != nil {
			return nil, err
		}
		dt = resolved
	} else {
		val, err := e.EvaluateExpression(b.Operand)
		if err != nil {
			return nil, err
		}
		resolved, err := val.DataType(e)
		if err != nil {
			return nil, err
		}
		dt = resolved
	}

	switch b.Kind {
	case ast.BuiltinSizeof:
		bytes := (dt.Width() + 7) / 8
		return evalobj.NewConstant(bitconst.FromInt(int64(bytes))), nil
	case ast.BuiltinWidthof:
		return evalobj.NewConstant(bitconst.FromInt(int64(dt.Width()))), nil
	case ast.BuiltinLength:
		dims := dt.Dimensions()
		if len(dims) == 0 {
			return nil, diag.NewEvalError(diag.EVA008, b.Pos.File, b.Pos.Line, "__length requires an array, stream, or ram/rom type")
		}
		return evalobj.NewConstant(bitconst.FromInt(int64(dims[0]))), nil
	case ast.BuiltinMin, ast.BuiltinMax:
		it, ok := dt.(types.IntegerType)
		if !ok {
			return nil, diag.NewEvalError(diag.EVA002, b.Pos.File, b.Pos.Line, "__min/__max require an integer type")
		}
		return evalobj.NewConstant(integerExtreme(it, b.Kind == ast.BuiltinMax)), nil
	default:
		return nil, diag.NewInternalError(diag.INT002, "unsupported BuiltinKind survived parse")
	}
}

// integerExtreme computes the minimum or maximum representable value of an
// IntegerType, at its own width and signedness.
func integerExtreme(it types.IntegerType, wantMax bool) bitconst.Const {
	w := it.Width_
	if !it.Signed {
		if !wantMax {
			return bitconst.FromIntWidth(0, w)
		}
		maxVal := int64(1)<<uint(w) - 1
		c := bitconst.FromIntWidth(maxVal, w)
		c.Signed = false
		return c
	}
	if wantMax {
		maxVal := int64(1)<<uint(w-1) - 1
		c := bitconst.FromIntWidth(maxVal, w)
		c.Signed = true
		return c
	}
	minVal := -(int64(1) << uint(w-1))
	c := bitconst.FromIntWidth(minVal, w)
	c.Signed = true
	return c
}
