// Package vhdl renders a completed internal/hdl.Design as VHDL source text:
// one file per synthesized block, containing the library/use clauses its
// devices require, an entity matching the block's external ports, and an
// architecture body with one concurrent statement or process per device.
package vhdl

import (
	"fmt"
	"strings"

	"github.com/elasticc/hls/internal/hdl"
)

// Emit renders design as a complete VHDL source file: library clauses,
// entity, and architecture. clockFreqHz is 0 when the originating block
// declared no clock attribute (the default 50MHz only applies when a
// clock was declared at all).
func Emit(design *hdl.Design, clockFreqHz uint64) string {
	var b strings.Builder

	writeFileHeader(&b, design)
	writeEntity(&b, design, clockFreqHz)
	writeArchitecture(&b, design)

	return b.String()
}

func writeFileHeader(b *strings.Builder, design *hdl.Design) {
	fmt.Fprintf(b, "library ieee;\n")
	fmt.Fprintf(b, "use ieee.std_logic_1164.all;\n")
	for _, pkg := range design.RequiredPackages() {
		fmt.Fprintf(b, "use %s;\n", pkg)
	}
	fmt.Fprintf(b, "\n")
}

func writeEntity(b *strings.Builder, design *hdl.Design, clockFreqHz uint64) {
	if clockFreqHz > 0 {
		fmt.Fprintf(b, "-- clock: %d Hz, pipeline depth %d\n", clockFreqHz, design.MaxLatency())
	} else {
		fmt.Fprintf(b, "-- pipeline depth %d\n", design.MaxLatency())
	}
	fmt.Fprintf(b, "entity %s is\n", design.Name)
	if len(design.ExternalPorts) == 0 {
		fmt.Fprintf(b, "end entity %s;\n\n", design.Name)
		return
	}
	fmt.Fprintf(b, "  port(\n")
	for i, ext := range design.ExternalPorts {
		sig := design.Signal(ext.Signal)
		sep := ";"
		if i == len(design.ExternalPorts)-1 {
			sep = ""
		}
		fmt.Fprintf(b, "    %s: %s %s%s\n", sig.Name, dirKeyword(ext.Dir), sig.Type.VHDLType(), sep)
	}
	fmt.Fprintf(b, "  );\n")
	fmt.Fprintf(b, "end entity %s;\n\n", design.Name)
}

func dirKeyword(dir hdl.PortDir) string {
	if dir == hdl.DirOut {
		return "out"
	}
	return "in"
}

func writeArchitecture(b *strings.Builder, design *hdl.Design) {
	fmt.Fprintf(b, "architecture rtl of %s is\n\n", design.Name)
	writeSignalDecls(b, design)
	fmt.Fprintf(b, "begin\n\n")
	writeConstantDrivers(b, design)
	writeDeviceBodies(b, design)
	fmt.Fprintf(b, "end architecture rtl;\n")
}

// externalSignal reports whether id is already declared at the entity
// boundary (the clock rail and any port-promoted signal), so
// writeSignalDecls only emits the purely-internal ones, gnd/vcc included.
func externalSignal(design *hdl.Design, id hdl.SignalID) bool {
	if id == design.Clock {
		return true
	}
	for _, ext := range design.ExternalPorts {
		if ext.Signal == id {
			return true
		}
	}
	return false
}

func writeSignalDecls(b *strings.Builder, design *hdl.Design) {
	for id, sig := range design.Signals {
		if externalSignal(design, hdl.SignalID(id)) {
			continue
		}
		fmt.Fprintf(b, "  signal %s: %s;\n", sig.Name, sig.Type.VHDLType())
	}
	fmt.Fprintf(b, "\n")
}

// writeConstantDrivers ties off the gnd/vcc rails every design allocates,
// which otherwise have no Device driving them.
func writeConstantDrivers(b *strings.Builder, design *hdl.Design) {
	fmt.Fprintf(b, "  %s <= '0';\n", design.SignalName(design.GND))
	fmt.Fprintf(b, "  %s <= '1';\n\n", design.SignalName(design.VCC))
}

func writeDeviceBodies(b *strings.Builder, design *hdl.Design) {
	for _, dev := range design.Devices {
		body := dev.EmitBody(design.SignalName)
		for _, line := range strings.Split(body, "\n") {
			fmt.Fprintf(b, "  %s\n", line)
		}
		fmt.Fprintf(b, "\n")
	}
}
