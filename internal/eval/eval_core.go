// Package eval implements the symbolic evaluator: it walks the parsed
// ast.Statement/ast.Expression tree for one hardware block, building for
// every evaluator variable an EvalObject expression describing every
// control-flow path that writes it.
//
// There is one concrete Evaluator type handling both full block evaluation
// and constant folding; a constant-only evaluation is just an Evaluator run
// with no block inputs bound to anything but already-folded values.
package eval

import (
	"fmt"
	"sync/atomic"

	"github.com/elasticc/hls/internal/ast"
	"github.com/elasticc/hls/internal/diag"
	"github.com/elasticc/hls/internal/evalobj"
	"github.com/elasticc/hls/internal/evalvar"
)

// condition is one entry of the write-under-conditions stack: the branch
// predicate and which side of it (true/false) is currently being
// evaluated.
type condition struct {
	Predicate evalobj.EvalObject
	Branch    bool
}

// CallFrame is pushed for the duration of one function call. It does not
// duplicate the called function's template parameters; TemplateParamContext
// already owns the bound arguments.
type CallFrame struct {
	CalledFunction       *ast.Function
	ReturnValue          evalobj.EvaluatorVariable // nil for a void function
	SavedParserVariables map[*ast.Variable]evalobj.EvaluatorVariable
	OldTPContext         *TemplateParamContext
}

// Evaluator is the symbolic evaluator's full state for one hardware block.
type Evaluator struct {
	gs              *ast.GlobalScope
	allVariables    []evalobj.EvaluatorVariable
	parserVariables map[*ast.Variable]evalobj.EvaluatorVariable
	callStack       []*CallFrame
	tpContext       *TemplateParamContext

	currentValues map[evalobj.EvaluatorVariable]evalobj.EvalObject
	conditions    []condition

	globalConstants map[*ast.Variable]evalobj.EvalObject
}

// NewEvaluator constructs an Evaluator rooted at gs, with an empty
// top-level template-parameter context bound to gs.
func NewEvaluator(gs *ast.GlobalScope) *Evaluator {
	return &Evaluator{
		gs:              gs,
		parserVariables: map[*ast.Variable]evalobj.EvaluatorVariable{},
		currentValues:   map[evalobj.EvaluatorVariable]evalobj.EvalObject{},
		tpContext:       &TemplateParamContext{PContext: gs},
	}
}

var varIDCounter uint64

// nextVarID hands out the process-unique suffix used to disambiguate local
// variables (e.g. "x_ecc_7").
func nextVarID() uint64 { return atomic.AddUint64(&varIDCounter, 1) }

// AddVariable registers v (and, recursively, every child evalobj.EvaluatorVariable
// it owns) with the evaluator, seeding its initial value: an EvalVariable
// reference for a block input (its value comes from outside), a DontCare
// placeholder otherwise (nothing has written it yet).
func (e *Evaluator) AddVariable(v evalobj.EvaluatorVariable) error {
	e.allVariables = append(e.allVariables, v)
	if v.Dir().IsInput {
		e.currentValues[v] = evalobj.NewVariable(v)
	} else {
		e.currentValues[v] = evalobj.NewDontCare(v.Type())
	}
	for _, child := range v.GetAllChildren() {
		if err := e.AddVariable(child); err != nil {
			return err
		}
	}
	return nil
}

// BindVariable registers v and records it as the evaluator-side variable
// standing in for the parser's orig declaration.
func (e *Evaluator) BindVariable(v evalobj.EvaluatorVariable, orig *ast.Variable) error {
	if err := e.AddVariable(v); err != nil {
		return err
	}
	e.parserVariables[orig] = v
	return nil
}

// DeclareVariable materializes orig as a concrete evalobj.EvaluatorVariable: it
// evaluates the initializer, resolves the declared type, picks a name
// (keeping the parser's name verbatim for block I/O, otherwise suffixing a
// unique counter), constructs the right evalvar kind, and binds any
// initializer value.
func (e *Evaluator) DeclareVariable(orig *ast.Variable, isBlockInput, isBlockOutput bool) (evalobj.EvaluatorVariable, error) {
	isConst := orig.HasQualifier(ast.QualConst)
	isStatic := orig.HasQualifier(ast.QualStatic)

	init, err := e.EvaluateExpression(orig.Initialiser)
	if err != nil {
		return nil, err
	}
	dt, err := e.ResolveType(orig.Type, init)
	if err != nil {
		return nil, err
	}

	uname := orig.Name
	if !isBlockInput && !isBlockOutput {
		uname = fmt.Sprintf("%s_ecc_%d", orig.Name, nextVarID())
	}

	dir := evalobj.VariableDir{
		IsInput:    isBlockInput,
		IsOutput:   isBlockOutput,
		IsToplevel: isBlockInput || isBlockOutput,
	}
	v, err := evalvar.Create(dir, uname, dt, isStatic)
	if err != nil {
		return nil, err
	}
	if err := e.BindVariable(v, orig); err != nil {
		return nil, err
	}

	if isConst {
		if init == evalobj.Null {
			return nil, diag.NewEvalError(diag.EVA007, orig.Pos.File, orig.Pos.Line, "const variable ===%s=== must have initialiser", orig.Name)
		}
		if !init.HasConstantValue(e) {
			return nil, diag.NewEvalError(diag.EVA007, orig.Pos.File, orig.Pos.Line, "initialiser for const variable ===%s=== is not const itself", orig.Name)
		}
		folded, err := init.ConstantValue(e)
		if err != nil {
			return nil, err
		}
		init = folded
	}
	if init != evalobj.Null {
		if err := e.SetVariableValue(v, init); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// GetAllVariables returns every evaluator variable created so far, in
// creation order.
func (e *Evaluator) GetAllVariables() []evalobj.EvaluatorVariable { return e.allVariables }

// GetVariableByParserVar returns the evaluator variable currently bound to
// a parser declaration in the active call frame.
func (e *Evaluator) GetVariableByParserVar(orig *ast.Variable) (evalobj.EvaluatorVariable, error) {
	v, ok := e.parserVariables[orig]
	if !ok {
		return nil, fmt.Errorf("no evaluator variable bound to declaration ===%s===", orig.Name)
	}
	return v, nil
}

// ProcessFunctionCall evaluates one call to func with already-evaluated
// argument values and (unevaluated) template arguments, returning the
// call's result (evalobj.Null for a void function).
func (e *Evaluator) ProcessFunctionCall(fn *ast.Function, arguments []evalobj.EvalObject, templateArgs []ast.TemplateArg) (evalobj.EvalObject, error) {
	if len(arguments) < len(fn.Arguments) {
		return nil, diag.NewEvalError(diag.EVA009, fn.Pos.File, fn.Pos.Line,
			"too few arguments passed to function ===%s=== (expected %d, got %d)", fn.Name, len(fn.Arguments), len(arguments))
	}

	// Numeric template arguments are bound to constants now, in the
	// caller's still-active scope, rather than lazily from the raw
	// expression later: by the time a TemplateParamToken inside the
	// callee's body asks for this argument, e.tpContext/parserVariables
	// have already moved on to the callee's own scope, so evaluating the
	// raw expression at that point would resolve identifiers against the
	// wrong frame.
	bound, err := e.bindTemplateArgs(fn.Params, templateArgs)
	if err != nil {
		return nil, err
	}

	saved := make(map[*ast.Variable]evalobj.EvaluatorVariable, len(e.parserVariables))
	for k, v := range e.parserVariables {
		saved[k] = v
	}
	frame := &CallFrame{
		CalledFunction:       fn,
		SavedParserVariables: saved,
		OldTPContext:         e.tpContext,
	}
	e.tpContext = &TemplateParamContext{Parent: frame.OldTPContext, PContext: fn, Args: bound}

	if !fn.IsVoid {
		retType, err := e.ResolveType(fn.ReturnType, nil)
		if err != nil {
			e.tpContext = frame.OldTPContext
			return nil, err
		}
		rv, err := evalvar.Create(evalobj.VariableDir{}, fmt.Sprintf("retval_%d", nextVarID()), retType, false)
		if err != nil {
			e.tpContext = frame.OldTPContext
			return nil, err
		}
		if err := e.AddVariable(rv); err != nil {
			e.tpContext = frame.OldTPContext
			return nil, err
		}
		frame.ReturnValue = rv
	}

	for i, arg := range fn.Arguments {
		v, err := e.DeclareVariable(arg.Var, false, false)
		if err != nil {
			e.tpContext = frame.OldTPContext
			return nil, err
		}
		if err := e.SetVariableValue(v, arguments[i]); err != nil {
			e.tpContext = frame.OldTPContext
			return nil, err
		}
	}

	e.callStack = append(e.callStack, frame)
	bodyErr := e.EvaluateStatement(fn.Body)
	e.callStack = e.callStack[:len(e.callStack)-1]
	if bodyErr != nil {
		e.parserVariables = frame.SavedParserVariables
		e.tpContext = frame.OldTPContext
		return nil, bodyErr
	}

	for i, arg := range fn.Arguments {
		if !arg.ByRef {
			continue
		}
		calleeVar, err := e.GetVariableByParserVar(arg.Var)
		if err != nil {
			return nil, err
		}
		val, err := e.GetVariableValue(calleeVar)
		if err != nil {
			return nil, err
		}
		if err := arguments[i].AssignValue(e, val); err != nil {
			return nil, err
		}
	}

	e.parserVariables = frame.SavedParserVariables
	e.tpContext = frame.OldTPContext

	if fn.IsVoid {
		return evalobj.Null, nil
	}
	return e.GetVariableValue(frame.ReturnValue)
}
