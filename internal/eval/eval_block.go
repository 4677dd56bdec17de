package eval

import (
	"github.com/elasticc/hls/internal/ast"
	"github.com/elasticc/hls/internal/evalobj"
)

// EvaluatedBlock is the symbolic evaluator's output for one hardware block:
// the final per-variable EvalObject map, the parser-to-evaluator variable
// binding, and a back-reference to the evaluator for further traversal by
// internal/synth.
type EvaluatedBlock struct {
	Block           *ast.HardwareBlock
	Eval            *Evaluator
	Variables       map[*ast.Variable]evalobj.EvaluatorVariable
	FinalValues     map[evalobj.EvaluatorVariable]evalobj.EvalObject
	AllVariables    []evalobj.EvaluatorVariable
}

// EvaluateHardwareBlock declares a block's inputs and outputs, evaluates
// its body once (the single-cycle evaluator's whole job: unroll every loop,
// inline every call, fold every constant, and produce one EvalObject
// expression per written variable), and returns the resulting state.
func EvaluateHardwareBlock(block *ast.HardwareBlock) (*EvaluatedBlock, error) {
	e := NewEvaluator(ast.GlobalScopeOf(block))

	for _, in := range block.Inputs {
		if _, err := e.DeclareVariable(in, true, false); err != nil {
			return nil, err
		}
	}
	for _, out := range block.Outputs {
		if _, err := e.DeclareVariable(out, false, true); err != nil {
			return nil, err
		}
	}

	if err := e.EvaluateStatement(block.Body); err != nil {
		return nil, err
	}

	finalValues := make(map[evalobj.EvaluatorVariable]evalobj.EvalObject, len(e.allVariables))
	for _, v := range e.allVariables {
		val, err := e.GetVariableValue(v)
		if err != nil {
			return nil, err
		}
		finalValues[v] = val
	}

	return &EvaluatedBlock{
		Block:        block,
		Eval:         e,
		Variables:    e.parserVariables,
		FinalValues:  finalValues,
		AllVariables: e.allVariables,
	}, nil
}
