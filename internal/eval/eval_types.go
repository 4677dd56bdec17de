package eval

import (
	"github.com/elasticc/hls/internal/ast"
	"github.com/elasticc/hls/internal/diag"
	"github.com/elasticc/hls/internal/evalobj"
	"github.com/elasticc/hls/internal/types"
)

// boundArg is one resolved template argument: exactly one of Value/Type is
// set, matching the formal parameter's TPDataType-vs-everything-else kind.
type boundArg struct {
	Value evalobj.EvalObject
	Type  types.DataType
}

// TemplateParamContext is a linked list of template-parameter binding
// frames, one per active struct/function/type instantiation. Lookup walks
// from the current frame towards the root until it finds the frame whose
// PContext matches the context a TemplateParamToken/TemplateParamTypeSpecifier
// names.
type TemplateParamContext struct {
	Parent   *TemplateParamContext
	PContext ast.Context
	Args     []boundArg
}

// Lookup finds the bound argument at index in the frame owned by ctx,
// walking towards the root.
func (tp *TemplateParamContext) Lookup(ctx ast.Context, index int) (boundArg, error) {
	for frame := tp; frame != nil; frame = frame.Parent {
		if frame.PContext == ctx {
			if index < 0 || index >= len(frame.Args) {
				return boundArg{}, diag.NewEvalError(diag.EVA013, "", 0,
					"template parameter index %d out of range", index)
			}
			return frame.Args[index], nil
		}
	}
	return boundArg{}, diag.NewEvalError(diag.EVA013, "", 0, "unresolved template parameter lookup")
}

// bindTemplateArgs resolves actuals positionally against formals,
// evaluating each actual's expression/type in the *current* tpContext
// (the caller's scope) and falling back to the formal's declared default
// when an actual is missing.
func (e *Evaluator) bindTemplateArgs(formals []*ast.TemplateParameter, actuals []ast.TemplateArg) ([]boundArg, error) {
	bound := make([]boundArg, len(formals))
	for i, formal := range formals {
		var arg ast.TemplateArg
		hasActual := i < len(actuals)
		if hasActual {
			arg = actuals[i]
		}
		if formal.Kind == ast.TPDataType {
			spec := arg.Type
			if spec == nil {
				spec = formal.DefaultType
			}
			if spec == nil {
				return nil, diag.NewEvalError(diag.EVA013, formal.Pos.File, formal.Pos.Line,
					"template type parameter ===%s=== was not specified and has no default", formal.Name)
			}
			dt, err := e.ResolveType(spec, nil)
			if err != nil {
				return nil, err
			}
			bound[i] = boundArg{Type: dt}
			continue
		}
		expr := arg.Expr
		if expr == nil {
			expr = formal.DefaultExpr
		}
		if expr == nil {
			return nil, diag.NewEvalError(diag.EVA013, formal.Pos.File, formal.Pos.Line,
				"template parameter ===%s=== was not specified and has no default", formal.Name)
		}
		val, err := e.EvaluateExpression(expr)
		if err != nil {
			return nil, err
		}
		folded, err := val.ConstantValue(e)
		if err != nil {
			return nil, diag.NewEvalError(diag.EVA013, formal.Pos.File, formal.Pos.Line,
				"template parameter ===%s=== must be a compile-time constant: %v", formal.Name, err)
		}
		bound[i] = boundArg{Value: folded}
	}
	return bound, nil
}

// evalConstInt evaluates expr and folds it to a host int, used for array
// lengths, integer widths, and stream/RAM dimensions, all of which must be
// compile-time constants at resolve time.
func (e *Evaluator) evalConstInt(expr ast.Expression) (int, error) {
	val, err := e.EvaluateExpression(expr)
	if err != nil {
		return 0, err
	}
	cv, err := val.ScalarConstValue(e)
	if err != nil {
		return 0, err
	}
	return int(cv.IntVal()), nil
}

// ResolveType converts a parse-time DataTypeSpecifier into a concrete
// types.DataType against the evaluator's current template-parameter
// context, passing value through for `auto`.
func (e *Evaluator) ResolveType(spec ast.DataTypeSpecifier, value evalobj.EvalObject) (types.DataType, error) {
	switch s := spec.(type) {
	case *ast.BasicTypeSpecifier:
		return e.resolveBasicType(s)
	case *ast.StructureTypeSpecifier:
		return e.resolveStructureType(s)
	case *ast.ArrayTypeSpecifier:
		base, err := e.ResolveType(s.Base, nil)
		if err != nil {
			return nil, err
		}
		length, err := e.evalConstInt(s.Length)
		if err != nil {
			return nil, err
		}
		if length <= 0 {
			return nil, diag.NewEvalError(diag.TYP001, s.Pos.File, s.Pos.Line,
				"array length must be a positive compile-time constant, got %d", length)
		}
		return types.NewArrayType(base, length), nil
	case *ast.AutoTypeSpecifier:
		if value == nil || value == evalobj.Null {
			return nil, diag.NewEvalError(diag.TYP003, s.Pos.File, s.Pos.Line, "auto requires an initialiser")
		}
		return value.DataType(e)
	case *ast.TemplateParamTypeSpecifier:
		bound, err := e.tpContext.Lookup(s.Context, s.Index)
		if err != nil {
			return nil, err
		}
		if bound.Type == nil {
			return nil, diag.NewEvalError(diag.TYP004, s.Pos.File, s.Pos.Line, "template parameter is not a type")
		}
		return bound.Type, nil
	case *ast.DecltypeSpecifier:
		val, err := e.EvaluateExpression(s.Operand)
		if err != nil {
			return nil, err
		}
		return val.DataType(e)
	default:
		return nil, diag.NewInternalError(diag.INT002, "unsupported DataTypeSpecifier variant survived parse")
	}
}

func (e *Evaluator) resolveBasicType(s *ast.BasicTypeSpecifier) (types.DataType, error) {
	switch s.Kind {
	case ast.BasicUnsigned, ast.BasicSigned:
		width, err := e.evalConstInt(s.Args[0].Expr)
		if err != nil {
			return nil, err
		}
		if width <= 0 {
			return nil, diag.NewEvalError(diag.TYP001, s.Pos.File, s.Pos.Line, "integer width must be positive, got %d", width)
		}
		return types.NewIntegerType(width, s.Kind == ast.BasicSigned), nil
	case ast.BasicStream:
		base, err := e.ResolveType(s.Args[0].Type, nil)
		if err != nil {
			return nil, err
		}
		length, err := e.evalConstInt(s.Args[1].Expr)
		if err != nil {
			return nil, err
		}
		if length <= 0 {
			return nil, diag.NewEvalError(diag.TYP001, s.Pos.File, s.Pos.Line, "stream length must be positive, got %d", length)
		}
		return types.NewStreamType(base, false, length, 0, 0), nil
	case ast.BasicStream2D:
		base, err := e.ResolveType(s.Args[0].Type, nil)
		if err != nil {
			return nil, err
		}
		length, err := e.evalConstInt(s.Args[1].Expr)
		if err != nil {
			return nil, err
		}
		height, err := e.evalConstInt(s.Args[2].Expr)
		if err != nil {
			return nil, err
		}
		lineWidth, err := e.evalConstInt(s.Args[3].Expr)
		if err != nil {
			return nil, err
		}
		if length <= 0 || height <= 0 || lineWidth <= 0 {
			return nil, diag.NewEvalError(diag.TYP001, s.Pos.File, s.Pos.Line, "stream2d dimensions must be positive")
		}
		return types.NewStreamType(base, true, length, height, lineWidth), nil
	case ast.BasicRAM, ast.BasicROM:
		baseDT, err := e.ResolveType(s.Args[0].Type, nil)
		if err != nil {
			return nil, err
		}
		baseInt, ok := baseDT.(types.IntegerType)
		if !ok {
			return nil, diag.NewEvalError(diag.TYP002, s.Pos.File, s.Pos.Line, "ram/rom base type must be an integer type")
		}
		length, err := e.evalConstInt(s.Args[1].Expr)
		if err != nil {
			return nil, err
		}
		if length <= 0 {
			return nil, diag.NewEvalError(diag.TYP001, s.Pos.File, s.Pos.Line, "ram/rom length must be positive, got %d", length)
		}
		rt := types.NewRAMType(baseInt, length)
		rt.IsROM = s.Kind == ast.BasicROM
		return rt, nil
	default:
		return nil, diag.NewInternalError(diag.INT002, "unsupported BasicDataType survived parse")
	}
}

// resolveStructureType resolves every member's type in a context whose
// template-parameter frame is the struct's own bound arguments, so a
// member's type specifier can reference the struct's template parameters.
func (e *Evaluator) resolveStructureType(s *ast.StructureTypeSpecifier) (types.DataType, error) {
	bound, err := e.bindTemplateArgs(s.Struct.Params, s.Args)
	if err != nil {
		return nil, err
	}
	saved := e.tpContext
	e.tpContext = &TemplateParamContext{Parent: saved, PContext: s.Struct, Args: bound}
	defer func() { e.tpContext = saved }()

	members := make([]types.DataStructureItem, len(s.Struct.Members))
	for i, m := range s.Struct.Members {
		mt, err := e.ResolveType(m.Type, nil)
		if err != nil {
			return nil, err
		}
		members[i] = types.DataStructureItem{Name: m.Name, Type: mt}
	}
	return types.NewStructureType(s.Struct.Name, members), nil
}
