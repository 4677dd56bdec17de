package eval

import (
	"github.com/elasticc/hls/internal/ast"
	"github.com/elasticc/hls/internal/diag"
)

// EvaluateStatement interprets one ast.Statement against the current call
// frame and condition stack.
func (e *Evaluator) EvaluateStatement(stmt ast.Statement) error {
	if stmt == nil || stmt == ast.NullStatement {
		return nil
	}
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		for _, v := range s.DeclaredVariables {
			if _, err := e.DeclareVariable(v, false, false); err != nil {
				return err
			}
		}
		return nil

	case *ast.Block:
		for _, c := range s.Content {
			if err := e.EvaluateStatement(c); err != nil {
				return err
			}
		}
		return nil

	case *ast.IfStatement:
		return e.evaluateIf(s)

	case *ast.ForLoop:
		return e.evaluateForLoop(s)

	case *ast.WhileLoop:
		return e.evaluateWhileLoop(s)

	case *ast.ReturnStatement:
		return e.evaluateReturn(s)

	case ast.Expression:
		_, err := e.EvaluateExpression(s)
		return err

	default:
		return diag.NewInternalError(diag.INT002, "unsupported Statement variant survived parse")
	}
}

// evaluateIf evaluates the condition once, then walks both branches under
// the condition stack, restoring its length and contents exactly once both
// branches complete.
func (e *Evaluator) evaluateIf(s *ast.IfStatement) error {
	cond, err := e.EvaluateExpression(s.Condition)
	if err != nil {
		return err
	}
	e.conditions = append(e.conditions, condition{Predicate: cond, Branch: true})
	if err := e.EvaluateStatement(s.StatementTrue); err != nil {
		e.conditions = e.conditions[:len(e.conditions)-1]
		return err
	}
	e.conditions[len(e.conditions)-1].Branch = false
	if err := e.EvaluateStatement(s.StatementFalse); err != nil {
		e.conditions = e.conditions[:len(e.conditions)-1]
		return err
	}
	e.conditions = e.conditions[:len(e.conditions)-1]
	return nil
}

// evaluateForLoop fully unrolls the loop at compile time: the condition
// must fold to a constant on every iteration, or evaluation fails, since
// all control flow must be static for a single-cycle combinational design.
func (e *Evaluator) evaluateForLoop(s *ast.ForLoop) error {
	if err := e.EvaluateStatement(s.Init); err != nil {
		return err
	}
	for {
		stop, err := e.constLoopConditionIsZero(s.Condition, s.Pos)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
		if err := e.EvaluateStatement(s.Body); err != nil {
			return err
		}
		if _, err := e.EvaluateExpression(s.Incrementer); err != nil {
			return err
		}
	}
}

func (e *Evaluator) evaluateWhileLoop(s *ast.WhileLoop) error {
	for {
		stop, err := e.constLoopConditionIsZero(s.Condition, s.Pos)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
		if err := e.EvaluateStatement(s.Body); err != nil {
			return err
		}
	}
}

func (e *Evaluator) constLoopConditionIsZero(condExpr ast.Expression, pos ast.Pos) (bool, error) {
	cond, err := e.EvaluateExpression(condExpr)
	if err != nil {
		return false, err
	}
	if !cond.HasConstantValue(e) {
		return false, diag.NewEvalError(diag.EVA004, pos.File, pos.Line, "for/while loop must have compile-time-constant condition")
	}
	cv, err := cond.ScalarConstValue(e)
	if err != nil {
		return false, err
	}
	return cv.IntVal() == 0, nil
}

// evaluateReturn assigns the return expression's value into the active
// call frame's return-value variable. A return outside any function call
// (e.g. directly in a hardware block body) is reported to the user as
// EVA009.
func (e *Evaluator) evaluateReturn(s *ast.ReturnStatement) error {
	if len(e.callStack) == 0 {
		return diag.NewEvalError(diag.EVA009, s.Pos.File, s.Pos.Line, "return statement outside of a function body")
	}
	frame := e.callStack[len(e.callStack)-1]
	if s.ReturnValue == ast.NullExpression {
		if frame.ReturnValue != nil {
			return diag.NewEvalError(diag.EVA009, s.Pos.File, s.Pos.Line, "non-void function must return a value")
		}
		return nil
	}
	if frame.ReturnValue == nil {
		return diag.NewEvalError(diag.EVA009, s.Pos.File, s.Pos.Line, "void function cannot return a value")
	}
	val, err := e.EvaluateExpression(s.ReturnValue)
	if err != nil {
		return err
	}
	return e.SetVariableValue(frame.ReturnValue, val)
}
