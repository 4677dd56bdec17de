// Package types models ElasticC's data type system: the fixed set of
// concrete DataType kinds (integer, array, stream, RAM/ROM, structure) that
// every variable, expression, and hardware port ultimately resolves to.
package types

import (
	"fmt"
	"strconv"
)

// HDLPortSpec is a lightweight description of the hardware port shape a
// DataType maps onto (one of logic signal, logic vector, or numeric),
// consumed by internal/hdl when materializing signals. It is defined here
// rather than importing internal/hdl's own port-type lattice, avoiding a
// cycle between the type system and the netlist builder.
type HDLPortSpec struct {
	Kind   string // "logic_vector" or "numeric"
	Width  int
	Signed bool
}

// DataType is the common interface implemented by every concrete type.
// BaseType and MemberType return an error instead of panicking when they do
// not apply to a given type, since Go callers are expected to check
// applicability rather than catch exceptions.
type DataType interface {
	Name() string
	Width() int
	Dimensions() []int
	Equals(other DataType) bool
	BaseType() (DataType, error)
	MemberType(member string) (DataType, error)
	HDLType() HDLPortSpec
}

// noBaseType/noMemberType supply the default error-returning behavior for
// DataType.BaseType/MemberType: most concrete types have neither.
func noBaseType(name string) (DataType, error) {
	return nil, fmt.Errorf("%s has no base type", name)
}

func noMemberType(name, member string) (DataType, error) {
	return nil, fmt.Errorf("%s has no member named %s", name, member)
}

// IntegerType is a synthesizable fixed-width signed or unsigned integer.
type IntegerType struct {
	Width_   int
	Signed   bool
	IsAuto   bool // true when this is the unresolved "auto" placeholder
}

func NewIntegerType(width int, signed bool) IntegerType {
	return IntegerType{Width_: width, Signed: signed}
}

func (t IntegerType) Name() string {
	if t.IsAuto {
		return "auto"
	}
	if t.Signed {
		return "signed<" + strconv.Itoa(t.Width_) + ">"
	}
	return "unsigned<" + strconv.Itoa(t.Width_) + ">"
}

func (t IntegerType) Width() int          { return t.Width_ }
func (t IntegerType) Dimensions() []int   { return nil }
func (t IntegerType) BaseType() (DataType, error)        { return noBaseType(t.Name()) }
func (t IntegerType) MemberType(m string) (DataType, error) { return noMemberType(t.Name(), m) }

func (t IntegerType) Equals(other DataType) bool {
	o, ok := other.(IntegerType)
	return ok && o.Width_ == t.Width_ && o.Signed == t.Signed
}

func (t IntegerType) HDLType() HDLPortSpec {
	return HDLPortSpec{Kind: "numeric", Width: t.Width_, Signed: t.Signed}
}

// ArrayType is a fixed-length array of some other type.
type ArrayType struct {
	Base   DataType
	Length int
}

func NewArrayType(base DataType, length int) ArrayType {
	return ArrayType{Base: base, Length: length}
}

func (t ArrayType) Name() string {
	return t.Base.Name() + "[" + strconv.Itoa(t.Length) + "]"
}

func (t ArrayType) Width() int        { return t.Length * t.Base.Width() }
func (t ArrayType) Dimensions() []int { return []int{t.Length} }

func (t ArrayType) Equals(other DataType) bool {
	o, ok := other.(ArrayType)
	return ok && o.Length == t.Length && t.Base.Equals(o.Base)
}

func (t ArrayType) BaseType() (DataType, error) { return t.Base, nil }
func (t ArrayType) MemberType(m string) (DataType, error) {
	return noMemberType(t.Name(), m)
}

func (t ArrayType) HDLType() HDLPortSpec {
	return HDLPortSpec{Kind: "logic_vector", Width: t.Width()}
}

// StreamType is a stream or stream2d: a windowed sequential data source
// with no random-access HDL port equivalent.
type StreamType struct {
	Base       DataType
	Is2D       bool
	Length     int
	Height     int // only meaningful when Is2D
	LineWidth  int // line-buffer FIFO width, only meaningful when Is2D
}

func NewStreamType(base DataType, is2d bool, length, height, lineWidth int) StreamType {
	return StreamType{Base: base, Is2D: is2d, Length: length, Height: height, LineWidth: lineWidth}
}

func (t StreamType) Name() string {
	if t.Is2D {
		return fmt.Sprintf("stream2d<%s, %d, %d, %d>", t.Base.Name(), t.Length, t.Height, t.LineWidth)
	}
	return fmt.Sprintf("stream<%s, %d>", t.Base.Name(), t.Length)
}

// Width returns only the width of a single stream element: a stream's port
// is one element wide regardless of its length.
func (t StreamType) Width() int { return t.Base.Width() }

func (t StreamType) Dimensions() []int {
	if t.Is2D {
		return []int{t.Length, t.Height}
	}
	return []int{t.Length}
}

func (t StreamType) Equals(other DataType) bool {
	o, ok := other.(StreamType)
	if !ok || o.Is2D != t.Is2D || !t.Base.Equals(o.Base) {
		return false
	}
	if t.Is2D {
		return o.Length == t.Length && o.Height == t.Height && o.LineWidth == t.LineWidth
	}
	return o.Length == t.Length
}

func (t StreamType) BaseType() (DataType, error) { return t.Base, nil }
func (t StreamType) MemberType(m string) (DataType, error) {
	return noMemberType(t.Name(), m)
}

func (t StreamType) HDLType() HDLPortSpec {
	panic("stream type has no HDL port equivalent")
}

// DataStructureItem is one named member of a StructureType.
type DataStructureItem struct {
	Name string
	Type DataType
}

func (a DataStructureItem) Equals(b DataStructureItem) bool {
	return a.Name == b.Name && a.Type.Equals(b.Type)
}

// StructureType is a user-defined struct.
type StructureType struct {
	StructName string
	Content    []DataStructureItem
}

func NewStructureType(name string, content []DataStructureItem) StructureType {
	return StructureType{StructName: name, Content: content}
}

func (t StructureType) Name() string { return t.StructName }

func (t StructureType) Width() int {
	w := 0
	for _, c := range t.Content {
		w += c.Type.Width()
	}
	return w
}

func (t StructureType) Dimensions() []int { return nil }

func (t StructureType) Equals(other DataType) bool {
	o, ok := other.(StructureType)
	if !ok || len(o.Content) != len(t.Content) {
		return false
	}
	for i := range t.Content {
		if !t.Content[i].Equals(o.Content[i]) {
			return false
		}
	}
	return true
}

func (t StructureType) BaseType() (DataType, error) { return noBaseType(t.Name()) }

func (t StructureType) MemberType(member string) (DataType, error) {
	for _, c := range t.Content {
		if c.Name == member {
			return c.Type, nil
		}
	}
	return nil, fmt.Errorf("structure %s contains no member named %s", t.StructName, member)
}

func (t StructureType) HDLType() HDLPortSpec {
	return HDLPortSpec{Kind: "logic_vector", Width: t.Width()}
}

// RAMType is a RAM or ROM device; currently restricted to holding integers.
type RAMType struct {
	Base   IntegerType
	Length int
	IsROM  bool
}

func NewRAMType(base IntegerType, length int) RAMType {
	return RAMType{Base: base, Length: length}
}

func (t RAMType) Name() string {
	kind := "ram"
	if t.IsROM {
		kind = "rom"
	}
	return kind + "<" + t.Base.Name() + ", " + strconv.Itoa(t.Length) + ">"
}

func (t RAMType) Width() int        { return t.Base.Width() }
func (t RAMType) Dimensions() []int { return []int{t.Length} }

func (t RAMType) Equals(other DataType) bool {
	o, ok := other.(RAMType)
	return ok && t.Base.Equals(o.Base) && o.Length == t.Length && o.IsROM == t.IsROM
}

func (t RAMType) BaseType() (DataType, error) { return t.Base, nil }
func (t RAMType) MemberType(m string) (DataType, error) {
	return noMemberType(t.Name(), m)
}

func (t RAMType) HDLType() HDLPortSpec {
	panic("RAM/ROM type has no HDL port equivalent")
}
