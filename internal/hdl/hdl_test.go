package hdl

import (
	"strings"
	"testing"

	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/operations"
	"github.com/elasticc/hls/internal/types"
)

func TestPortTypeCastLattice(t *testing.T) {
	tests := []struct {
		name string
		to   PortType
		from PortType
		expr string
		want string
	}{
		{"bit to vector", LogicVector{W: 4}, LogicSignal{}, "s", "(0 => s, others => '0')"},
		{"vector widen", LogicVector{W: 8}, LogicVector{W: 4}, "v", "(7 downto 4 => '0') & v"},
		{"vector narrow", LogicVector{W: 4}, LogicVector{W: 8}, "v", "v(3 downto 0)"},
		{"vector same width", LogicVector{W: 4}, LogicVector{W: 4}, "v", "v"},
		{"vector to numeric", Numeric{W: 8, Sgn: false}, LogicVector{W: 8}, "v", "unsigned(v)"},
		{"numeric resize", Numeric{W: 8, Sgn: true}, Numeric{W: 4, Sgn: true}, "n", "resize(n, 8)"},
		{"numeric to logic bit", LogicSignal{}, Numeric{W: 4, Sgn: false}, "n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.to.CastFrom(tt.from, tt.expr)
			if tt.want != "" && got != tt.want {
				t.Errorf("CastFrom() = %q, want %q", got, tt.want)
			}
			if got == "" {
				t.Errorf("CastFrom() returned empty string")
			}
		})
	}
}

func TestFromSpecCollapsesWidthOneToLogicSignal(t *testing.T) {
	pt := FromSpec(types.HDLPortSpec{Kind: "numeric", Width: 1})
	if _, ok := pt.(LogicSignal); !ok {
		t.Errorf("FromSpec(width 1 numeric) = %T, want LogicSignal", pt)
	}
	pt = FromSpec(types.HDLPortSpec{Kind: "logic_vector", Width: 1})
	if _, ok := pt.(LogicSignal); !ok {
		t.Errorf("FromSpec(width 1 logic_vector) = %T, want LogicSignal", pt)
	}
	pt = FromSpec(types.HDLPortSpec{Kind: "numeric", Width: 8, Signed: true})
	n, ok := pt.(Numeric)
	if !ok || !n.Sgn || n.W != 8 {
		t.Errorf("FromSpec(width 8 signed numeric) = %#v, want Numeric{8,true}", pt)
	}
}

func TestRegisterEmitBodyWithEnable(t *testing.T) {
	d := NewDesign("t")
	in := d.AddSignal("d_in", LogicSignal{})
	en := d.AddSignal("en", LogicSignal{})
	out := d.AddSignal("q", LogicSignal{})
	reg := &Register{
		Name:   "r1",
		Clock:  HDLDevicePort{Name: "clk", Dir: DirIn, Signal: d.Clock},
		Enable: &HDLDevicePort{Name: "en", Dir: DirIn, Signal: en},
		Input:  HDLDevicePort{Name: "d", Dir: DirIn, Signal: in},
		Output: HDLDevicePort{Name: "q", Dir: DirOut, Signal: out},
	}
	body := reg.EmitBody(d.SignalName)
	for _, want := range []string{"rising_edge(clk)", "if en = '1' then", "q <= d_in;"} {
		if !strings.Contains(body, want) {
			t.Errorf("Register.EmitBody() missing %q in:\n%s", want, body)
		}
	}
	if reg.Latency() != 1 {
		t.Errorf("Register.Latency() = %d, want 1", reg.Latency())
	}
}

func TestConstantEmitBody(t *testing.T) {
	d := NewDesign("t")
	out := d.AddSignal("k", Numeric{W: 4, Sgn: false})
	c := &Constant{Name: "k1", Value: bitconst.FromIntWidth(5, 4), Output: HDLDevicePort{Name: "out", Dir: DirOut, Signal: out}}
	body := c.EmitBody(d.SignalName)
	if !strings.Contains(body, "k <=") || !strings.Contains(body, "unsigned(") {
		t.Errorf("Constant.EmitBody() = %q", body)
	}
}

func TestMultiplexerTwoWay(t *testing.T) {
	d := NewDesign("t")
	sel := d.AddSignal("sel", LogicSignal{})
	d0 := d.AddSignal("d0", LogicSignal{})
	d1 := d.AddSignal("d1", LogicSignal{})
	out := d.AddSignal("out", LogicSignal{})
	mux := &Multiplexer{
		Select: []HDLDevicePort{{Name: "sel", Dir: DirIn, Signal: sel}},
		Inputs: []HDLDevicePort{{Name: "d0", Dir: DirIn, Signal: d0}, {Name: "d1", Dir: DirIn, Signal: d1}},
		Output: HDLDevicePort{Name: "out", Dir: DirOut, Signal: out},
	}
	body := mux.EmitBody(d.SignalName)
	want := "out <= d1 when sel = '1' else d0;"
	if !strings.Contains(body, want) {
		t.Errorf("Multiplexer.EmitBody() = %q, want substring %q", body, want)
	}
}

func TestMultiplexerNWay(t *testing.T) {
	d := NewDesign("t")
	idx := d.AddSignal("idx", LogicVector{W: 2})
	d0 := d.AddSignal("e0", LogicSignal{})
	d1 := d.AddSignal("e1", LogicSignal{})
	d2 := d.AddSignal("e2", LogicSignal{})
	out := d.AddSignal("out", LogicSignal{})
	mux := &Multiplexer{
		Select: []HDLDevicePort{{Name: "idx", Dir: DirIn, Signal: idx}},
		Inputs: []HDLDevicePort{
			{Name: "d0", Dir: DirIn, Signal: d0},
			{Name: "d1", Dir: DirIn, Signal: d1},
			{Name: "d2", Dir: DirIn, Signal: d2},
		},
		Output: HDLDevicePort{Name: "out", Dir: DirOut, Signal: out},
	}
	body := mux.EmitBody(d.SignalName)
	for _, want := range []string{"when 0 => out <= e0;", "when 1 => out <= e1;", "when 2 => out <= e2;", "when others => out <= e2;"} {
		if !strings.Contains(body, want) {
			t.Errorf("Multiplexer.EmitBody() missing %q in:\n%s", want, body)
		}
	}
}

func TestOperationEmitBodyComparison(t *testing.T) {
	d := NewDesign("t")
	a := d.AddSignal("a", Numeric{W: 4, Sgn: false})
	b := d.AddSignal("b", Numeric{W: 4, Sgn: false})
	out := d.AddSignal("out", LogicSignal{})
	op := &Operation{
		Op:       operations.EQ,
		Operands: []HDLDevicePort{{Name: "in0", Dir: DirIn, Signal: a}, {Name: "in1", Dir: DirIn, Signal: b}},
		Output:   HDLDevicePort{Name: "out", Dir: DirOut, Signal: out},
		OutType:  LogicSignal{},
	}
	body := op.EmitBody(d.SignalName)
	if !strings.Contains(body, "a = b") {
		t.Errorf("Operation.EmitBody() = %q, want an a = b comparison", body)
	}
}

func TestCombinerConcatenatesInOrder(t *testing.T) {
	d := NewDesign("t")
	a := d.AddSignal("a", LogicSignal{})
	b := d.AddSignal("b", LogicSignal{})
	out := d.AddSignal("out", LogicVector{W: 2})
	comb := &Combiner{
		Inputs: []HDLDevicePort{{Name: "in0", Dir: DirIn, Signal: a}, {Name: "in1", Dir: DirIn, Signal: b}},
		Output: HDLDevicePort{Name: "out", Dir: DirOut, Signal: out},
	}
	body := comb.EmitBody(d.SignalName)
	if !strings.Contains(body, "out <= a & b;") {
		t.Errorf("Combiner.EmitBody() = %q", body)
	}
}

func TestDesignAddDeviceRecordsBackReferences(t *testing.T) {
	d := NewDesign("t")
	a := d.AddSignal("a", LogicSignal{})
	out := d.AddSignal("out", LogicSignal{})
	d.AddDevice(&Buffer{Name: "b1", Input: HDLDevicePort{Name: "in", Dir: DirIn, Signal: a}, InputType: LogicSignal{}, Output: HDLDevicePort{Name: "out", Dir: DirOut, Signal: out}, OutputType: LogicSignal{}, BitLo: -1})
	if len(d.Signal(a).Connected) != 1 || d.Signal(a).Connected[0].Port != "in" {
		t.Errorf("AddDevice did not record a back-reference on the input signal: %#v", d.Signal(a).Connected)
	}
	if len(d.Signal(out).Connected) != 1 || d.Signal(out).Connected[0].Dir != DirOut {
		t.Errorf("AddDevice did not record a back-reference on the output signal: %#v", d.Signal(out).Connected)
	}
}

func TestMaxLatencyTracksOutputPorts(t *testing.T) {
	d := NewDesign("t")
	out := d.AddSignal("out", LogicSignal{})
	d.Signal(out).Latency = 3
	d.AddExternalPort(out, DirOut)
	if got := d.MaxLatency(); got != 3 {
		t.Errorf("MaxLatency() = %d, want 3", got)
	}
}
