// Package repl implements the interactive `elasticc repl` subcommand: read a
// single hardware block definition, evaluate it once, and print each output
// variable's constant-folded value (or a short description of its
// expression tree when it can't fold). Intended for quick experimentation
// with template arguments and constant folding without writing a file to
// disk. Uses a liner prompt/history loop with fatih/color output, narrowed
// to this compiler's single-shot "parse one block, evaluate it, print"
// cycle instead of a persistent environment carried across inputs —
// ElasticC has no REPL-level variable bindings to persist between blocks.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/elasticc/hls/internal/ast"
	"github.com/elasticc/hls/internal/eval"
	"github.com/elasticc/hls/internal/lexer"
	"github.com/elasticc/hls/internal/parser"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	dim   = color.New(color.Faint).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

const historyFileName = ".elasticc_history"

// REPL holds nothing but a counter, since every evaluation starts from a
// fresh GlobalScope: a hardware block is never evaluated against a
// carried-over environment.
type REPL struct {
	evalCount int
}

// New creates an empty REPL.
func New() *REPL { return &REPL{} }

// Start runs the read-eval-print loop against in/out until EOF or :quit.
func (r *REPL) Start(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyPath := filepath.Join(os.TempDir(), historyFileName)
	if f, err := os.Open(historyPath); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintln(out, bold("elasticc repl"))
	fmt.Fprintln(out, dim("Type a complete hardware block, e.g.:"))
	fmt.Fprintln(out, dim(`  block t() => (unsigned<8> o) { o = 3 + 4; }`))
	fmt.Fprintln(out, dim("Type :quit to exit."))
	fmt.Fprintln(out)

	for {
		input, ok := r.readBlock(line, out)
		if !ok {
			break
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		r.evaluate(input, out)
	}

	if f, err := os.Create(historyPath); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
	fmt.Fprintln(out, green("Goodbye!"))
}

// readBlock prompts for one or more lines until braces balance, returning
// false once the user asks to quit or sends EOF.
func (r *REPL) readBlock(line *liner.State, out io.Writer) (string, bool) {
	first, err := line.Prompt("elasticc> ")
	if err == io.EOF {
		return "", false
	}
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("error"), err)
		return "", true
	}
	first = strings.TrimSpace(first)
	if first == ":quit" || first == ":q" || first == ":exit" {
		return "", false
	}
	if first == "" {
		return "", true
	}

	lines := []string{first}
	depth := braceDepth(first)
	for depth > 0 {
		cont, err := line.Prompt("...       ")
		if err != nil {
			break
		}
		lines = append(lines, cont)
		depth += braceDepth(cont)
	}
	return strings.Join(lines, "\n"), true
}

func braceDepth(s string) int {
	depth := 0
	for _, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth
}

// evaluate parses input as a one-off translation unit, evaluates its last
// hardware block, and prints each output's final value.
func (r *REPL) evaluate(input string, out io.Writer) {
	r.evalCount++
	lex := lexer.New([]byte(input), fmt.Sprintf("<repl:%d>", r.evalCount))
	p := parser.New(lex)
	gs := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(out, "%s: %v\n", red("parse error"), e)
		}
		return
	}
	if len(gs.Blocks) == 0 {
		fmt.Fprintf(out, "%s: input must declare at least one hardware block\n", red("error"))
		return
	}

	block := gs.Blocks[len(gs.Blocks)-1]
	evaluated, err := eval.EvaluateHardwareBlock(block)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("eval error"), err)
		return
	}
	r.printResults(block, evaluated, out)
}

func (r *REPL) printResults(block *ast.HardwareBlock, evaluated *eval.EvaluatedBlock, out io.Writer) {
	if len(block.Outputs) == 0 {
		fmt.Fprintln(out, dim("(no outputs declared)"))
		return
	}
	for _, outVar := range block.Outputs {
		v, err := evaluated.Eval.GetVariableByParserVar(outVar)
		if err != nil {
			fmt.Fprintf(out, "%s %s: %v\n", red("error"), outVar.Name, err)
			continue
		}
		val := evaluated.FinalValues[v]
		if val == nil {
			fmt.Fprintf(out, "%s = %s\n", cyan(outVar.Name), dim("(never driven)"))
			continue
		}
		if val.HasConstantValue(evaluated.Eval) {
			c, err := val.ScalarConstValue(evaluated.Eval)
			if err == nil {
				fmt.Fprintf(out, "%s = %d %s\n", cyan(outVar.Name), c.IntVal(), dim(c.String()))
				continue
			}
		}
		fmt.Fprintf(out, "%s = %s\n", cyan(outVar.Name), dim(val.ID()))
	}
}
