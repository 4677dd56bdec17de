package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/elasticc/hls/internal/ast"
	"github.com/elasticc/hls/internal/diag"
	"github.com/elasticc/hls/internal/eval"
	"github.com/elasticc/hls/internal/lexer"
	"github.com/elasticc/hls/internal/manifest"
	"github.com/elasticc/hls/internal/parser"
	"github.com/elasticc/hls/internal/repl"
	"github.com/elasticc/hls/internal/synth"
	"github.com/elasticc/hls/internal/vhdl"
)

var (
	Version = "dev"

	bold  = color.New(color.Bold).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

const manifestName = "elasticc.yml"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run implements the three subcommands (compile/repl/check) and
// returns the process exit code: 0 on success, 2 when the flags fail to
// parse or the command is unknown, 3 for --help, a missing input file
// argument, or a diagnosed compile error (the same code diag.Reporter.Errorf
// exits with).
func run(args []string) int {
	fs := flag.NewFlagSet("elasticc", flag.ContinueOnError)
	var (
		help    bool
		ver     = fs.Bool("version", false, "print version information")
		verbose bool
		quiet   bool
		output  string
		input   string
		top     = fs.String("top", "", "name of the hardware block to synthesize, when the source declares more than one")
	)
	fs.BoolVar(&help, "h", false, "show this help message")
	fs.BoolVar(&help, "help", false, "show this help message")
	fs.BoolVar(&verbose, "v", false, "verbose output (DEBUG diagnostics)")
	fs.BoolVar(&verbose, "verbose", false, "verbose output (DEBUG diagnostics)")
	fs.BoolVar(&quiet, "q", false, "quiet output (WARNING diagnostics and above)")
	fs.BoolVar(&quiet, "quiet", false, "quiet output (WARNING diagnostics and above)")
	fs.StringVar(&output, "o", "", "output file (defaults to <block>.vhd under the manifest's output_dir)")
	fs.StringVar(&output, "output", "", "output file (defaults to <block>.vhd under the manifest's output_dir)")
	fs.StringVar(&input, "i", "", "input source file (alternative to a positional argument)")
	fs.StringVar(&input, "input", "", "input source file (alternative to a positional argument)")
	fs.Usage = func() { printHelp(fs) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if help {
		printHelp(fs)
		return 3
	}
	if *ver {
		fmt.Printf("elasticc %s\n", bold(Version))
		return 0
	}

	rest := fs.Args()
	command := "compile"
	if len(rest) > 0 && isCommand(rest[0]) {
		command = rest[0]
		rest = rest[1:]
	}

	r := diag.NewReporter(os.Stdout)
	switch {
	case verbose:
		r.SetVerbosity(diag.DEBUG)
	case quiet:
		r.SetVerbosity(diag.WARNING)
	}

	switch command {
	case "repl":
		repl.New().Start(os.Stdout)
		return 0
	case "compile":
		return runCompile(r, rest, input, output, *top)
	case "check":
		return runCheck(r, rest, input, *top)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", color.RedString("error"), command)
		printHelp(fs)
		return 2
	}
}

func isCommand(s string) bool {
	switch s {
	case "compile", "repl", "check":
		return true
	}
	return false
}

func printHelp(fs *flag.FlagSet) {
	fmt.Println(bold("elasticc") + " - ElasticC to VHDL compiler")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  elasticc [compile] [-o out.vhd] [--top Name] <file.ec>")
	fmt.Println("  elasticc check <file.ec>")
	fmt.Println("  elasticc repl")
	fmt.Println()
	fmt.Println("Flags:")
	fs.PrintDefaults()
	fmt.Println()
	fmt.Printf("Examples:\n")
	fmt.Printf("  %s\n", cyan("elasticc fir_filter.ec"))
	fmt.Printf("  %s\n", cyan("elasticc compile --top fir_filter -o build/fir_filter.vhd src/fir.ec"))
	fmt.Printf("  %s\n", cyan("elasticc check src/fir.ec"))
	fmt.Printf("  %s\n", cyan("elasticc repl"))
}

// loadManifest reads ./elasticc.yml when present, falling back to the
// zero-config default; a malformed
// manifest is reported but does not itself stop compilation, since CLI
// flags can still supply everything the manifest would have.
func loadManifest(r *diag.Reporter) *manifest.Manifest {
	if _, err := os.Stat(manifestName); err != nil {
		return manifest.Default()
	}
	m, err := manifest.Load(manifestName)
	if err != nil {
		r.Warnf(0, "%s: %v", manifestName, err)
		return manifest.Default()
	}
	return m
}

// parseFile runs the lexer/parser front end over path, reporting every
// ParseError through r before returning ok=false. Resynchronizes and
// continues past each error, so all of a file's syntax errors are
// reported in one pass, not just the first.
func parseFile(r *diag.Reporter, path string) (*ast.GlobalScope, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		r.Report(diag.ERROR, 0, "%s: %v", path, err)
		return nil, false
	}
	lex := lexer.New(content, path)
	p := parser.New(lex)
	gs := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			r.ReportErr(e)
		}
		return nil, false
	}
	return gs, true
}

// selectBlock resolves --top: a lone block needs no
// flag, several blocks require one naming which to synthesize, and an
// unknown name is reported against SYN002.
func selectBlock(r *diag.Reporter, gs *ast.GlobalScope, top string) (*ast.HardwareBlock, bool) {
	if len(gs.Blocks) == 0 {
		r.Report(diag.ERROR, 0, "source declares no hardware blocks")
		return nil, false
	}
	if top == "" {
		if len(gs.Blocks) > 1 {
			names := make([]string, len(gs.Blocks))
			for i, b := range gs.Blocks {
				names[i] = b.Name
			}
			r.ReportErr(diag.NewEvalError(diag.SYN001, "", 0,
				"source declares %d hardware blocks (%s); pass --top to choose one",
				len(gs.Blocks), strings.Join(names, ", ")))
			return nil, false
		}
		return gs.Blocks[0], true
	}
	for _, b := range gs.Blocks {
		if b.Name == top {
			return b, true
		}
	}
	r.ReportErr(diag.NewEvalError(diag.SYN002, "", 0, "no hardware block named %q", top))
	return nil, false
}

func runCheck(r *diag.Reporter, args []string, inputFlag, top string) int {
	path, ok := resolveInputPath(r, args, inputFlag)
	if !ok {
		return 3
	}
	gs, ok := parseFile(r, path)
	if !ok {
		return 3
	}
	block, ok := selectBlock(r, gs, top)
	if !ok {
		return 3
	}
	if _, err := eval.EvaluateHardwareBlock(block); err != nil {
		r.ReportErr(err)
		return 3
	}
	r.Notef(0, "%s: no errors found in block ===%s===", path, block.Name)
	return 0
}

func runCompile(r *diag.Reporter, args []string, inputFlag, outputFlag, top string) int {
	path, ok := resolveInputPath(r, args, inputFlag)
	if !ok {
		return 3
	}
	m := loadManifest(r)

	gs, ok := parseFile(r, path)
	if !ok {
		return 3
	}
	block, ok := selectBlock(r, gs, top)
	if !ok {
		return 3
	}

	if depth := m.BlockOptions(block.Name).PipelineDepth; depth > 0 {
		r.Debugf(0, "manifest hints pipeline_depth=%d for ===%s=== (informational only)", depth, block.Name)
	}

	evaluated, err := eval.EvaluateHardwareBlock(block)
	if err != nil {
		r.ReportErr(err)
		return 3
	}

	design, err := synth.Synthesize(evaluated)
	if err != nil {
		r.ReportErr(err)
		return 3
	}

	var clockHz uint64
	if block.Params.HasClock {
		clockHz = block.Params.ClockFreqHz
	}
	src := vhdl.Emit(design, clockHz)

	outPath := outputFlag
	if outPath == "" {
		outPath = filepath.Join(m.OutputDir, block.Name+".vhd")
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			r.Report(diag.ERROR, 0, "%s: %v", outPath, err)
			return 3
		}
	}
	if err := os.WriteFile(outPath, []byte(src), 0o644); err != nil {
		r.Report(diag.ERROR, 0, "%s: %v", outPath, err)
		return 3
	}
	r.Notef(0, "%s %s -> %s", green("wrote"), bold(block.Name), outPath)
	return 0
}

// resolveInputPath picks the input file from -i or the first positional
// argument. A missing input is a usage error (spec 6.1: exit 3, same as
// --help), not a malformed-argument error (exit 2) - the flags themselves
// parsed fine, there is simply nothing to compile.
func resolveInputPath(r *diag.Reporter, args []string, inputFlag string) (string, bool) {
	if inputFlag != "" {
		return inputFlag, true
	}
	if len(args) > 0 {
		return args[0], true
	}
	fmt.Fprintln(os.Stderr, "no input file; pass a path or -i <file>")
	fmt.Fprintln(os.Stderr)
	fmt.Println("Usage:")
	fmt.Println("  elasticc [compile] [-o out.vhd] [--top Name] <file.ec>")
	fmt.Println("  elasticc check <file.ec>")
	fmt.Println("  elasticc repl")
	return "", false
}
