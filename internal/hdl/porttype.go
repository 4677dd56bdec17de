// Package hdl models the intermediate netlist: HDLDesign, HDLSignal,
// HDLPortType, HDLDevice variants, and HDLDevicePort. Nodes are
// arena-indexed: a HDLDesign owns its signals and devices in flat slices
// addressed by SignalID/DeviceID, and a signal's connected-port list is a
// back-reference (device id + port name), never an owning pointer, so
// removing a signal or device is a local slice edit rather than a
// graph-wide pointer fixup.
package hdl

import (
	"fmt"

	"github.com/elasticc/hls/internal/types"
)

// PortType is the HDL-level shape of a signal or device port: a one-bit
// logic signal, a clock (a specialized logic signal), a flat logic
// vector, or a numeric (signed/unsigned) vector.
type PortType interface {
	VHDLType() string
	Width() int
	Signed() bool
	ZeroLiteral() string
	// CastFrom builds a VHDL expression that coerces a value of type
	// from, spelled exprText, into this port type, following the lattice
	// any aggregate -> logic_vector of the same width -> numeric of the
	// requested width via (un)signed(...)/resize(...).
	CastFrom(from PortType, exprText string) string
}

// LogicSignal is a single std_logic bit.
type LogicSignal struct{}

func (LogicSignal) VHDLType() string { return "std_logic" }
func (LogicSignal) Width() int       { return 1 }
func (LogicSignal) Signed() bool     { return false }
func (LogicSignal) ZeroLiteral() string { return "'0'" }

func (l LogicSignal) CastFrom(from PortType, exprText string) string {
	switch from.(type) {
	case LogicSignal, ClockSignal:
		return exprText
	case LogicVector:
		return exprText + "(0)"
	default:
		return fmt.Sprintf("%s(0)", LogicVector{W: from.Width()}.CastFrom(from, exprText))
	}
}

// ClockSignal specializes LogicSignal purely for VHDL readability (a
// distinct port-type tag lets synthesis and emission recognize "this
// signal is the clock" without a side table).
type ClockSignal struct{ LogicSignal }

// LogicVector is a flat std_logic_vector(W-1 downto 0): the representation
// every aggregate (array/structure/stream window) packs down to at a port
// boundary.
type LogicVector struct{ W int }

func (v LogicVector) VHDLType() string { return fmt.Sprintf("std_logic_vector(%d downto 0)", v.W-1) }
func (v LogicVector) Width() int       { return v.W }
func (v LogicVector) Signed() bool     { return false }
func (v LogicVector) ZeroLiteral() string {
	return fmt.Sprintf("(others => '0')")
}

func (v LogicVector) CastFrom(from PortType, exprText string) string {
	switch f := from.(type) {
	case LogicSignal, ClockSignal:
		return fmt.Sprintf("(0 => %s, others => '0')", exprText)
	case LogicVector:
		if f.W == v.W {
			return exprText
		}
		if f.W > v.W {
			return fmt.Sprintf("%s(%d downto 0)", exprText, v.W-1)
		}
		return fmt.Sprintf("(%d downto %d => '0') & %s", v.W-1, f.W, exprText)
	case Numeric:
		return fmt.Sprintf("std_logic_vector(%s)", Numeric{W: v.W, Sgn: f.Sgn}.CastFrom(from, exprText))
	default:
		return exprText
	}
}

// Numeric is a numeric::signed/unsigned vector of width W, used at the
// boundary of an arithmetic/comparison device's ports.
type Numeric struct {
	W   int
	Sgn bool
}

func (n Numeric) VHDLType() string {
	kind := "unsigned"
	if n.Sgn {
		kind = "signed"
	}
	return fmt.Sprintf("%s(%d downto 0)", kind, n.W-1)
}
func (n Numeric) Width() int   { return n.W }
func (n Numeric) Signed() bool { return n.Sgn }
func (n Numeric) ZeroLiteral() string {
	return fmt.Sprintf("to_%s(0, %d)", numericCastName(n.Sgn), n.W)
}

func numericCastName(signed bool) string {
	if signed {
		return "signed"
	}
	return "unsigned"
}

func (n Numeric) CastFrom(from PortType, exprText string) string {
	switch f := from.(type) {
	case LogicSignal, ClockSignal:
		return fmt.Sprintf("resize(%s(\"\" & %s), %d)", numericCastName(n.Sgn), exprText, n.W)
	case LogicVector:
		base := fmt.Sprintf("%s(%s)", numericCastName(n.Sgn), exprText)
		if f.W == n.W {
			return base
		}
		return fmt.Sprintf("resize(%s, %d)", base, n.W)
	case Numeric:
		expr := exprText
		if f.Sgn != n.Sgn {
			expr = fmt.Sprintf("%s(std_logic_vector(%s))", numericCastName(n.Sgn), expr)
		}
		if f.W != n.W {
			expr = fmt.Sprintf("resize(%s, %d)", expr, n.W)
		}
		return expr
	default:
		return exprText
	}
}

// FromSpec converts a types.HDLPortSpec (the type system's abstract view
// of a DataType's HDL shape) into a concrete PortType.
func FromSpec(spec types.HDLPortSpec) PortType {
	switch spec.Kind {
	case "numeric":
		if spec.Width == 1 {
			return LogicSignal{}
		}
		return Numeric{W: spec.Width, Sgn: spec.Signed}
	default:
		if spec.Width == 1 {
			return LogicSignal{}
		}
		return LogicVector{W: spec.Width}
	}
}
