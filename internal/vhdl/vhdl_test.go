package vhdl

import (
	"strings"
	"testing"

	"github.com/elasticc/hls/internal/hdl"
)

func TestEmitEntityPorts(t *testing.T) {
	d := hdl.NewDesign("adder")
	a := d.AddSignal("a", hdl.Numeric{W: 8, Sgn: false})
	sum := d.AddSignal("sum", hdl.Numeric{W: 8, Sgn: false})
	d.AddExternalPort(a, hdl.DirIn)
	d.AddExternalPort(d.Clock, hdl.DirIn)
	d.AddExternalPort(sum, hdl.DirOut)
	d.AddDevice(&hdl.Buffer{
		Name:       "pass",
		Input:      hdl.HDLDevicePort{Name: "in", Dir: hdl.DirIn, Signal: a},
		InputType:  hdl.Numeric{W: 8, Sgn: false},
		Output:     hdl.HDLDevicePort{Name: "out", Dir: hdl.DirOut, Signal: sum},
		OutputType: hdl.Numeric{W: 8, Sgn: false},
		BitLo:      -1,
	})

	out := Emit(d, 50_000_000)

	for _, want := range []string{
		"library ieee;",
		"use ieee.std_logic_1164.all;",
		"entity adder is",
		"a: in unsigned(7 downto 0);",
		"clk: in std_logic;",
		"sum: out unsigned(7 downto 0)",
		"architecture rtl of adder is",
		"sum <= a;",
		"end architecture rtl;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Emit() missing %q in:\n%s", want, out)
		}
	}
}

func TestEmitNoExternalPorts(t *testing.T) {
	d := hdl.NewDesign("empty")
	out := Emit(d, 0)
	if !strings.Contains(out, "end entity empty;") {
		t.Errorf("Emit() of a port-less design should still close the entity, got:\n%s", out)
	}
	if strings.Contains(out, "clock:") {
		t.Errorf("Emit() should not mention a clock frequency when none was declared")
	}
}

func TestDirKeyword(t *testing.T) {
	if got := dirKeyword(hdl.DirOut); got != "out" {
		t.Errorf("dirKeyword(DirOut) = %q, want out", got)
	}
	if got := dirKeyword(hdl.DirIn); got != "in" {
		t.Errorf("dirKeyword(DirIn) = %q, want in", got)
	}
}
