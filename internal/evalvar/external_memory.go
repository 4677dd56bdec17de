package evalvar

import (
	"fmt"

	"github.com/elasticc/hls/internal/bitconst"
	"github.com/elasticc/hls/internal/evalobj"
	"github.com/elasticc/hls/internal/types"
)

// MemoryDeviceParameters describes the port shape internal/synth should
// generate for a RAM/ROM device.
type MemoryDeviceParameters struct {
	CanRead         bool
	CanWrite        bool
	ReadLatency     int
	HasWren         bool
	HasRden         bool
	SeperateRWPorts bool
}

// ExternalMemory is a RAM or ROM variable, addressed only through
// HandleSubscriptedRead/Write - it has no plain scalar read/write (any
// access must go through a subscript). Its hidden ports are exposed as
// children named "__address" (address), "__q" (read data), "__wren" (write
// enable) and "__data" (write data).
type ExternalMemory struct {
	base
	Typ   types.RAMType
	ports map[string]*Scalar
}

func NewExternalMemory(dir evalobj.VariableDir, name string, typ types.RAMType) (*ExternalMemory, error) {
	m := &ExternalMemory{base: newBase(name, dir), Typ: typ, ports: map[string]*Scalar{}}

	addrWidth := addressBusSize(typ.Length)
	address := NewScalar(evalobj.VariableDir{IsOutput: true, IsToplevel: dir.IsToplevel}, name+"_address", types.NewIntegerType(addrWidth, false), false)
	address.SetDefaultValue(bitconst.FromInt(0))
	m.ports["__address"] = address

	m.ports["__q"] = NewScalar(evalobj.VariableDir{IsInput: true, IsToplevel: dir.IsToplevel}, name+"_q", typ.Base, false)

	if !typ.IsROM {
		wren := NewScalar(evalobj.VariableDir{IsOutput: true, IsToplevel: dir.IsToplevel}, name+"_wren", types.NewIntegerType(1, false), false)
		wren.SetDefaultValue(bitconst.FromInt(0))
		m.ports["__wren"] = wren
		m.ports["__data"] = NewScalar(evalobj.VariableDir{IsOutput: true, IsToplevel: dir.IsToplevel}, name+"_data", typ.Base, false)
	}

	// The RAM/ROM variable itself is never directly toplevel-visible; only
	// the split ports above are.
	m.DirVal.IsToplevel = false
	return m, nil
}

// addressBusSize returns the number of address bits needed for length
// distinct locations.
func addressBusSize(length int) int {
	l := 2
	for i := 1; i < 32; i++ {
		if length <= l {
			return i
		}
		l *= 2
	}
	return 32
}

func (m *ExternalMemory) Type() types.DataType { return m.Typ }
func (m *ExternalMemory) IsScalar() bool       { return false }

func (m *ExternalMemory) GetAllChildren() []evalobj.EvaluatorVariable {
	children := make([]evalobj.EvaluatorVariable, 0, len(m.ports))
	for _, p := range m.ports {
		children = append(children, p)
	}
	return children
}

func (m *ExternalMemory) GetChildByName(name string) (evalobj.EvaluatorVariable, error) {
	if p, ok := m.ports[name]; ok {
		return p, nil
	}
	return m.base.GetChildByName(name)
}

// MemoryParams reports the synthesizable port shape for this device.
func (m *ExternalMemory) MemoryParams() MemoryDeviceParameters {
	return MemoryDeviceParameters{
		CanRead:         true,
		CanWrite:        !m.Typ.IsROM,
		ReadLatency:     1,
		HasWren:         !m.Typ.IsROM,
		HasRden:         false,
		SeperateRWPorts: false,
	}
}

func (m *ExternalMemory) IsNonTrivialArrayAccess() bool { return true }

// HandleSubscriptedRead drives the address port and returns a reference to
// the read-data port; the actual data only becomes valid after the
// device's configured read latency, a synthesis-time concern.
func (m *ExternalMemory) HandleSubscriptedRead(ev evalobj.Evaluator, index []evalobj.EvalObject) (evalobj.EvalObject, error) {
	if len(index) != 1 {
		return nil, fmt.Errorf("invalid dimensions for access to variable ===%s===", m.NameVal)
	}
	if err := ev.SetVariableValue(m.ports["__address"], index[0]); err != nil {
		return nil, err
	}
	return evalobj.NewVariable(m.ports["__q"]), nil
}

func (m *ExternalMemory) HandleSubscriptedWrite(ev evalobj.Evaluator, index []evalobj.EvalObject, value evalobj.EvalObject) error {
	if len(index) != 1 {
		return fmt.Errorf("invalid dimensions for access to variable ===%s===", m.NameVal)
	}
	if m.Typ.IsROM {
		return fmt.Errorf("cannot write to ROM type variable ===%s===", m.NameVal)
	}
	if err := ev.SetVariableValue(m.ports["__address"], index[0]); err != nil {
		return err
	}
	if err := ev.SetVariableValue(m.ports["__wren"], writeAsserted()); err != nil {
		return err
	}
	return ev.SetVariableValue(m.ports["__data"], value)
}

func (m *ExternalMemory) HandleRead(ev evalobj.Evaluator) (evalobj.EvalObject, error) {
	return nil, fmt.Errorf("RAM/ROM device ===%s=== must always be addressed", m.NameVal)
}

func (m *ExternalMemory) HandleWrite(ev evalobj.Evaluator, value evalobj.EvalObject) error {
	return fmt.Errorf("RAM/ROM device ===%s=== must always be addressed", m.NameVal)
}
