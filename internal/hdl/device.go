package hdl

import (
	"fmt"
	"strings"

	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/operations"
)

// Device is one concrete netlist element: an operator, a register, a
// literal source, a wiring adapter, a select tree, or an opaque
// instantiated component.
type Device interface {
	InstanceName() string
	Ports() []HDLDevicePort
	RequiredPackages() []string
	// EmitBody returns the VHDL concurrent statement(s) implementing this
	// device, given a function that spells a signal's VHDL name.
	EmitBody(signalName func(SignalID) string) string
	// Latency is how many registered pipeline stages this device itself
	// introduces (0 for everything but Register).
	Latency() int
}

func portsOf(ports ...HDLDevicePort) []HDLDevicePort { return ports }

// Operation computes Op over its operand ports combinationally, writing
// Output.
type Operation struct {
	Name     string
	Op       operations.Type
	Operands []HDLDevicePort
	Output   HDLDevicePort
	OutType  PortType
}

func (d *Operation) InstanceName() string { return d.Name }
func (d *Operation) Ports() []HDLDevicePort {
	ps := append([]HDLDevicePort{}, d.Operands...)
	return append(ps, d.Output)
}
func (d *Operation) RequiredPackages() []string {
	return []string{"ieee.numeric_std.all"}
}
func (d *Operation) Latency() int { return 0 }

func (d *Operation) EmitBody(signalName func(SignalID) string) string {
	op, _ := operations.Lookup(d.Op)
	args := make([]string, len(d.Operands))
	for i, p := range d.Operands {
		args[i] = signalName(p.Signal)
	}
	expr := vhdlOperatorExpr(op, d.OutType, args)
	return fmt.Sprintf("%s <= %s; -- %s", signalName(d.Output.Signal), expr, d.Name)
}

func vhdlOperatorExpr(op operations.Op, out PortType, args []string) string {
	switch op.Arity {
	case 1:
		sym := unarySymbol(op.Type)
		return sym + args[0]
	case 2:
		sym := binarySymbol(op.Type)
		if op.Type == operations.LOR || op.Type == operations.LAND {
			return fmt.Sprintf("to_%s(%s %s %s)", numericCastName(out.Signed()), boolExpr(args[0]), sym, boolExpr(args[1]))
		}
		if isComparison(op.Type) {
			return fmt.Sprintf("to_%s(%s %s %s)", numericCastName(out.Signed()), args[0], sym, args[1])
		}
		return fmt.Sprintf("%s %s %s", args[0], sym, args[1])
	default:
		return strings.Join(args, ", ")
	}
}

func boolExpr(arg string) string { return fmt.Sprintf("(%s /= 0)", arg) }

func isComparison(t operations.Type) bool {
	switch t {
	case operations.EQ, operations.NEQ, operations.GT, operations.GTE, operations.LT, operations.LTE:
		return true
	}
	return false
}

func unarySymbol(t operations.Type) string {
	switch t {
	case operations.NEG:
		return "-"
	case operations.BWNOT:
		return "not "
	case operations.LNOT:
		return "not "
	default:
		return ""
	}
}

// binarySymbol renders a binary OperationType as its VHDL infix operator.
// DIV/MOD never reach here: internal/evalobj rejects them with diag.EVA015
// the moment they're seen during expression evaluation, so no Operation
// device naming either ever gets built.
func binarySymbol(t operations.Type) string {
	switch t {
	case operations.ADD:
		return "+"
	case operations.SUB:
		return "-"
	case operations.MUL:
		return "*"
	case operations.SHL:
		return "sll"
	case operations.SHR:
		return "srl"
	case operations.BWOR, operations.LOR:
		return "or"
	case operations.BWAND, operations.LAND:
		return "and"
	case operations.BWXOR:
		return "xor"
	case operations.EQ:
		return "="
	case operations.NEQ:
		return "/="
	case operations.GT:
		return ">"
	case operations.GTE:
		return ">="
	case operations.LT:
		return "<"
	case operations.LTE:
		return "<="
	default:
		return "?"
	}
}

// Register is a clocked D flip-flop bank: Output holds Input delayed by one
// clock edge, gated by Enable when present.
type Register struct {
	Name    string
	Clock   HDLDevicePort
	Enable  *HDLDevicePort // nil means always-enabled
	Input   HDLDevicePort
	Output  HDLDevicePort
}

func (d *Register) InstanceName() string { return d.Name }
func (d *Register) Ports() []HDLDevicePort {
	ps := []HDLDevicePort{d.Clock, d.Input, d.Output}
	if d.Enable != nil {
		ps = append(ps, *d.Enable)
	}
	return ps
}
func (d *Register) RequiredPackages() []string { return nil }
func (d *Register) Latency() int               { return 1 }

func (d *Register) EmitBody(signalName func(SignalID) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "process(%s) -- %s\nbegin\n", signalName(d.Clock.Signal), d.Name)
	fmt.Fprintf(&b, "  if rising_edge(%s) then\n", signalName(d.Clock.Signal))
	if d.Enable != nil {
		fmt.Fprintf(&b, "    if %s = '1' then\n", signalName(d.Enable.Signal))
		fmt.Fprintf(&b, "      %s <= %s;\n", signalName(d.Output.Signal), signalName(d.Input.Signal))
		fmt.Fprintf(&b, "    end if;\n")
	} else {
		fmt.Fprintf(&b, "    %s <= %s;\n", signalName(d.Output.Signal), signalName(d.Input.Signal))
	}
	fmt.Fprintf(&b, "  end if;\nend process;")
	return b.String()
}

// Constant drives Output with a compile-time-known value.
type Constant struct {
	Name   string
	Value  bitconst.Const
	Output HDLDevicePort
}

func (d *Constant) InstanceName() string      { return d.Name }
func (d *Constant) Ports() []HDLDevicePort    { return portsOf(d.Output) }
func (d *Constant) RequiredPackages() []string { return []string{"ieee.numeric_std.all"} }
func (d *Constant) Latency() int              { return 0 }

func (d *Constant) EmitBody(signalName func(SignalID) string) string {
	return fmt.Sprintf("%s <= %s(%s); -- %s", signalName(d.Output.Signal), numericCastName(d.Value.Signed), d.Value.String(), d.Name)
}

// Buffer is a pure wiring adapter: a cast, a bit-range slice, or a rename
// with no logic, used whenever two ports disagree in type/width but carry
// the same value.
type Buffer struct {
	Name       string
	Input      HDLDevicePort
	InputType  PortType
	Output     HDLDevicePort
	OutputType PortType
	BitLo      int // -1 when this buffer is not a bit-slice
	BitHi      int
}

func (d *Buffer) InstanceName() string      { return d.Name }
func (d *Buffer) Ports() []HDLDevicePort    { return portsOf(d.Input, d.Output) }
func (d *Buffer) RequiredPackages() []string { return []string{"ieee.numeric_std.all"} }
func (d *Buffer) Latency() int              { return 0 }

func (d *Buffer) EmitBody(signalName func(SignalID) string) string {
	expr := signalName(d.Input.Signal)
	if d.BitLo >= 0 {
		if d.BitLo == d.BitHi {
			expr = fmt.Sprintf("%s(%d)", expr, d.BitLo)
		} else {
			expr = fmt.Sprintf("%s(%d downto %d)", expr, d.BitHi, d.BitLo)
		}
	}
	expr = d.OutputType.CastFrom(d.InputType, expr)
	return fmt.Sprintf("%s <= %s; -- %s", signalName(d.Output.Signal), expr, d.Name)
}

// Combiner concatenates several input ports, in order, into one wider
// output: how an array literal, a structure literal, or a stream sample is
// packed down to a flat logic_vector.
type Combiner struct {
	Name   string
	Inputs []HDLDevicePort // Inputs[0] is the most-significant slice
	Output HDLDevicePort
}

func (d *Combiner) InstanceName() string      { return d.Name }
func (d *Combiner) RequiredPackages() []string { return []string{"ieee.numeric_std.all"} }
func (d *Combiner) Latency() int              { return 0 }

func (d *Combiner) Ports() []HDLDevicePort {
	ps := append([]HDLDevicePort{}, d.Inputs...)
	return append(ps, d.Output)
}

func (d *Combiner) EmitBody(signalName func(SignalID) string) string {
	parts := make([]string, len(d.Inputs))
	for i, p := range d.Inputs {
		parts[i] = signalName(p.Signal)
	}
	return fmt.Sprintf("%s <= %s; -- %s", signalName(d.Output.Signal), strings.Join(parts, " & "), d.Name)
}

// Multiplexer selects one of Inputs by Select. In the two-input,
// single-select form Inputs[1] is chosen when the select is '1' and
// Inputs[0] otherwise (the "else" arm). A chain of conditional writes
// lowers to a chain of 2:1 (or wider) muxes.
type Multiplexer struct {
	Name   string
	Select []HDLDevicePort // one selector per decision level; empty means a plain array-select mux
	Inputs []HDLDevicePort
	Output HDLDevicePort
}

func (d *Multiplexer) InstanceName() string      { return d.Name }
func (d *Multiplexer) RequiredPackages() []string { return []string{"ieee.numeric_std.all"} }
func (d *Multiplexer) Latency() int              { return 0 }

func (d *Multiplexer) Ports() []HDLDevicePort {
	ps := append([]HDLDevicePort{}, d.Select...)
	ps = append(ps, d.Inputs...)
	return append(ps, d.Output)
}

func (d *Multiplexer) EmitBody(signalName func(SignalID) string) string {
	if len(d.Select) == 1 && len(d.Inputs) == 2 {
		return fmt.Sprintf("%s <= %s when %s = '1' else %s; -- %s",
			signalName(d.Output.Signal), signalName(d.Inputs[1].Signal),
			signalName(d.Select[0].Signal), signalName(d.Inputs[0].Signal), d.Name)
	}
	selNames := make([]string, len(d.Select))
	for i, s := range d.Select {
		selNames[i] = signalName(s.Signal)
	}
	inNames := make([]string, len(d.Inputs))
	for i, in := range d.Inputs {
		inNames[i] = signalName(in.Signal)
	}
	sensitivity := append(append([]string{}, selNames...), inNames...)

	var b strings.Builder
	fmt.Fprintf(&b, "process(%s) -- %s\nbegin\n", strings.Join(sensitivity, ", "), d.Name)
	fmt.Fprintf(&b, "  case to_integer(unsigned(%s)) is\n", strings.Join(selNames, " & "))
	for i, in := range d.Inputs {
		fmt.Fprintf(&b, "    when %d => %s <= %s;\n", i, signalName(d.Output.Signal), signalName(in.Signal))
	}
	fmt.Fprintf(&b, "    when others => %s <= %s;\n", signalName(d.Output.Signal), signalName(d.Inputs[len(d.Inputs)-1].Signal))
	fmt.Fprintf(&b, "  end case;\nend process;")
	return b.String()
}

// Generic instantiates an opaque VHDL component (an escape hatch for
// ExternalMemory/RAM primitives and any future device the core emitters
// don't special-case): a component name, a generic map, and a named port
// map, left exactly as the user or a later pass specified it.
type Generic struct {
	Name         string
	ComponentName string
	Generics     map[string]string
	PortMap      []HDLDevicePort
	Packages     []string
}

func (d *Generic) InstanceName() string       { return d.Name }
func (d *Generic) Ports() []HDLDevicePort     { return d.PortMap }
func (d *Generic) RequiredPackages() []string { return d.Packages }
func (d *Generic) Latency() int               { return 0 }

func (d *Generic) EmitBody(signalName func(SignalID) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", d.Name, d.ComponentName)
	if len(d.Generics) > 0 {
		keys := make([]string, 0, len(d.Generics))
		for k := range d.Generics {
			keys = append(keys, k)
		}
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s => %s", k, d.Generics[k])
		}
		fmt.Fprintf(&b, "  generic map(%s)\n", strings.Join(parts, ", "))
	}
	parts := make([]string, len(d.PortMap))
	for i, p := range d.PortMap {
		parts[i] = fmt.Sprintf("%s => %s", p.Name, signalName(p.Signal))
	}
	fmt.Fprintf(&b, "  port map(%s);", strings.Join(parts, ", "))
	return b.String()
}
