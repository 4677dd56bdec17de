package synth

import (
	"fmt"

	"github.com/elasticc/hls/internal/evalobj"
	"github.com/elasticc/hls/internal/evalvar"
	"github.com/elasticc/hls/internal/hdl"
)

// materializeMemories instantiates the opaque memory-array component
// backing every ram<T,L>/rom<T,L> variable: internal/evalvar's
// ExternalMemory only synthesizes its hidden __address/__q/__wren/__data
// scalar ports as ordinary combinational signals (registerVariable has no
// notion of "this signal is the output of a memory"), so without this pass
// nothing would ever drive __q from __address. A RAM/ROM has no
// standardized VHDL primitive shared across vendors, so it lowers to an
// hdl.Generic component instantiation (spec 3.5's escape hatch for vendor
// primitives), leaving the concrete array declaration/initial-content file
// to whatever downstream elaboration step binds the component - exactly
// the "vendor timing model"/"downstream HDL optimization" boundary spec 1
// calls out of scope.
func (c *Context) materializeMemories(allVariables []evalobj.EvaluatorVariable) error {
	for _, v := range allVariables {
		m, ok := v.(*evalvar.ExternalMemory)
		if !ok {
			continue
		}

		addrVar, err := m.GetChildByName("__address")
		if err != nil {
			return err
		}
		qVar, err := m.GetChildByName("__q")
		if err != nil {
			return err
		}
		addrSig := c.registerVariable(addrVar)
		qSig := c.registerVariable(qVar)

		params := m.MemoryParams()
		component := "elasticc_rom"
		portMap := []hdl.HDLDevicePort{
			{Name: "clk", Dir: hdl.DirIn, Signal: c.Design.Clock},
			{Name: "addr", Dir: hdl.DirIn, Signal: addrSig},
			{Name: "q", Dir: hdl.DirOut, Signal: qSig},
		}
		generics := map[string]string{
			"WIDTH": fmt.Sprintf("%d", m.Typ.Base.Width()),
			"DEPTH": fmt.Sprintf("%d", m.Typ.Length),
		}

		if params.CanWrite {
			component = "elasticc_ram"
			wrenVar, err := m.GetChildByName("__wren")
			if err != nil {
				return err
			}
			dataVar, err := m.GetChildByName("__data")
			if err != nil {
				return err
			}
			portMap = append(portMap,
				hdl.HDLDevicePort{Name: "wren", Dir: hdl.DirIn, Signal: c.registerVariable(wrenVar)},
				hdl.HDLDevicePort{Name: "data", Dir: hdl.DirIn, Signal: c.registerVariable(dataVar)},
			)
		}

		c.Design.AddDevice(&hdl.Generic{
			Name:          c.tempName(m.Name() + "_mem"),
			ComponentName: component,
			Generics:      generics,
			PortMap:       portMap,
			Packages:      []string{"ieee.numeric_std.all"},
		})
	}
	return nil
}
