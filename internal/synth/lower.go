package synth

import (
	"fmt"

	"github.com/elasticc/hls/internal/evalobj"
	"github.com/elasticc/hls/internal/hdl"
	"github.com/elasticc/hls/internal/operations"
)

// Lower maps one EvalObject to the signal carrying its value, building
// whatever device chain is needed and memoizing by pointer identity so a
// value shared by several writers (e.g. a hoisted sub-expression under a
// condition stack) synthesizes to hardware exactly once.
func (c *Context) Lower(obj evalobj.EvalObject) (hdl.SignalID, error) {
	if id, ok := c.objSignal[obj]; ok {
		return id, nil
	}
	id, err := c.lowerUncached(obj)
	if err != nil {
		return 0, err
	}
	c.objSignal[obj] = id
	return id, nil
}

func (c *Context) lowerUncached(obj evalobj.EvalObject) (hdl.SignalID, error) {
	switch o := obj.(type) {
	case *evalobj.Constant:
		dt, _ := o.DataType(c.ev)
		out := c.Design.AddSignal(c.tempName("k"), hdl.FromSpec(dt.HDLType()))
		c.Design.AddDevice(&hdl.Constant{Name: c.tempName("const"), Value: o.Val, Output: hdl.HDLDevicePort{Name: "out", Dir: hdl.DirOut, Signal: out}})
		return out, nil

	case *evalobj.Variable:
		return c.registerVariable(o.Var), nil

	case *evalobj.Cast:
		in, err := c.Lower(o.Operand)
		if err != nil {
			return 0, err
		}
		outType := hdl.FromSpec(o.CastTo.HDLType())
		out := c.Design.AddSignal(c.tempName("cast"), outType)
		c.Design.AddDevice(&hdl.Buffer{
			Name: c.tempName("cast_dev"), Input: hdl.HDLDevicePort{Name: "in", Dir: hdl.DirIn, Signal: in},
			InputType: c.Design.Signal(in).Type, Output: hdl.HDLDevicePort{Name: "out", Dir: hdl.DirOut, Signal: out},
			OutputType: outType, BitLo: -1,
		})
		return out, nil

	case *evalobj.BasicOperation:
		return c.lowerBasicOperation(o)

	case *evalobj.SpecialOperation:
		return c.lowerSpecialOperation(o)

	case *evalobj.Register:
		in, err := c.Lower(o.Input)
		if err != nil {
			return 0, err
		}
		out := c.Design.AddSignal(c.tempName("pipe"), c.Design.Signal(in).Type)
		c.Design.AddDevice(&hdl.Register{
			Name:   c.tempName("pipe_reg"),
			Clock:  hdl.HDLDevicePort{Name: "clk", Dir: hdl.DirIn, Signal: c.Design.Clock},
			Input:  hdl.HDLDevicePort{Name: "d", Dir: hdl.DirIn, Signal: in},
			Output: hdl.HDLDevicePort{Name: "q", Dir: hdl.DirOut, Signal: out},
		})
		return out, nil

	case *evalobj.DontCare:
		dt, _ := o.DataType(c.ev)
		pt := hdl.FromSpec(dt.HDLType())
		out := c.Design.AddSignal(c.tempName("dc"), pt)
		c.Design.AddDevice(&hdl.Buffer{
			Name: c.tempName("dontcare"), Input: hdl.HDLDevicePort{Name: "in", Dir: hdl.DirIn, Signal: c.Design.GND},
			InputType: hdl.LogicSignal{}, Output: hdl.HDLDevicePort{Name: "out", Dir: hdl.DirOut, Signal: out},
			OutputType: pt, BitLo: -1,
		})
		return out, nil

	case *evalobj.ArrayAccess:
		resolved, err := o.Base.ApplyArraySubscriptRead(c.ev, o.Index)
		if err != nil {
			return 0, err
		}
		if resolved == obj {
			return 0, fmt.Errorf("===%s=== could not be resolved to a concrete array element", o.ID())
		}
		return c.Lower(resolved)

	case *evalobj.StructAccess:
		resolved, err := o.Base.StructureMember(c.ev, o.Member)
		if err != nil {
			return 0, err
		}
		return c.Lower(resolved)

	case *evalobj.Array:
		return c.lowerAggregate(o.ID(), o.Items)

	case *evalobj.Struct:
		// Map iteration order is nondeterministic in Go; structure layout
		// must follow the declared member order, not whatever order Items
		// happens to range in, so lowerStruct resolves each member by name
		// against the struct's own type instead of ranging s.Items directly.
		return c.lowerStruct(o)

	default:
		return 0, fmt.Errorf("internal/synth: no lowering defined for EvalObject %s", obj.ID())
	}
}

func (c *Context) lowerAggregate(id string, items []evalobj.EvalObject) (hdl.SignalID, error) {
	inputs := make([]hdl.HDLDevicePort, len(items))
	width := 0
	for i, it := range items {
		sig, err := c.Lower(it)
		if err != nil {
			return 0, err
		}
		inputs[i] = hdl.HDLDevicePort{Name: fmt.Sprintf("in%d", i), Dir: hdl.DirIn, Signal: sig}
		width += c.Design.Signal(sig).Type.Width()
	}
	out := c.Design.AddSignal(c.tempName("agg"), hdl.LogicVector{W: width})
	c.Design.AddDevice(&hdl.Combiner{Name: c.tempName("combine"), Inputs: inputs, Output: hdl.HDLDevicePort{Name: "out", Dir: hdl.DirOut, Signal: out}})
	return out, nil
}

func (c *Context) lowerStruct(s *evalobj.Struct) (hdl.SignalID, error) {
	items := make([]evalobj.EvalObject, len(s.StructType.Content))
	for i, member := range s.StructType.Content {
		v, ok := s.Items[member.Name]
		if !ok {
			return 0, fmt.Errorf("structure literal missing member %s", member.Name)
		}
		items[i] = v
	}
	return c.lowerAggregate(s.ID(), items)
}

func (c *Context) lowerBasicOperation(o *evalobj.BasicOperation) (hdl.SignalID, error) {
	dt, err := o.DataType(c.ev)
	if err != nil {
		return 0, err
	}
	outType := hdl.FromSpec(dt.HDLType())
	operands := o.Operands()
	ports := make([]hdl.HDLDevicePort, len(operands))
	for i, opnd := range operands {
		sig, err := c.Lower(opnd)
		if err != nil {
			return 0, err
		}
		ports[i] = hdl.HDLDevicePort{Name: fmt.Sprintf("in%d", i), Dir: hdl.DirIn, Signal: sig}
	}
	out := c.Design.AddSignal(c.tempName("op"), outType)
	c.Design.AddDevice(&hdl.Operation{
		Name: c.tempName(opName(o.Oper)), Op: o.Oper, Operands: ports,
		Output: hdl.HDLDevicePort{Name: "out", Dir: hdl.DirOut, Signal: out}, OutType: outType,
	})
	return out, nil
}

func opName(t operations.Type) string {
	op, ok := operations.Lookup(t)
	if !ok {
		return "op"
	}
	return "op_" + op.Token
}

// lowerSpecialOperation builds a Multiplexer for a TCond (two-way select
// between the taken and not-taken branch), an ArraySel (width-N select over
// every array element, chosen by the non-constant index) and an ArrayWrite
// (a 2:1 select for one slot, keyed on the write index equalling that
// slot): the condition stack's nested TCond tree is exactly a chain of 2:1
// muxes once lowered.
func (c *Context) lowerSpecialOperation(o *evalobj.SpecialOperation) (hdl.SignalID, error) {
	switch o.Kind {
	case evalobj.TCond:
		// Operands: [condition, trueValue, falseValue] (special.go's
		// documented contract, confirmed by ConstantValue's own folding:
		// a nonzero condition picks Operands_[1]).
		condSig, err := c.Lower(o.Operands()[0])
		if err != nil {
			return 0, err
		}
		trueSig, err := c.Lower(o.Operands()[1])
		if err != nil {
			return 0, err
		}
		falseSig, err := c.Lower(o.Operands()[2])
		if err != nil {
			return 0, err
		}
		dt, err := o.DataType(c.ev)
		if err != nil {
			return 0, err
		}
		outType := hdl.FromSpec(dt.HDLType())
		out := c.Design.AddSignal(c.tempName("sel"), outType)
		c.Design.AddDevice(&hdl.Multiplexer{
			Name:   c.tempName("mux"),
			Select: []hdl.HDLDevicePort{{Name: "sel", Dir: hdl.DirIn, Signal: condSig}},
			Inputs: []hdl.HDLDevicePort{{Name: "d0", Dir: hdl.DirIn, Signal: falseSig}, {Name: "d1", Dir: hdl.DirIn, Signal: trueSig}},
			Output: hdl.HDLDevicePort{Name: "out", Dir: hdl.DirOut, Signal: out},
		})
		return out, nil

	case evalobj.ArraySel:
		operands := o.Operands()
		dataOperands := operands[:len(operands)-1]
		idxSig, err := c.Lower(operands[len(operands)-1])
		if err != nil {
			return 0, err
		}
		dt, err := o.DataType(c.ev)
		if err != nil {
			return 0, err
		}
		outType := hdl.FromSpec(dt.HDLType())
		inputs := make([]hdl.HDLDevicePort, len(dataOperands))
		for i, d := range dataOperands {
			sig, err := c.Lower(d)
			if err != nil {
				return 0, err
			}
			inputs[i] = hdl.HDLDevicePort{Name: fmt.Sprintf("d%d", i), Dir: hdl.DirIn, Signal: sig}
		}
		out := c.Design.AddSignal(c.tempName("arrsel"), outType)
		c.Design.AddDevice(&hdl.Multiplexer{
			Name:   c.tempName("arrsel_mux"),
			Select: []hdl.HDLDevicePort{{Name: "idx", Dir: hdl.DirIn, Signal: idxSig}},
			Inputs: inputs,
			Output: hdl.HDLDevicePort{Name: "out", Dir: hdl.DirOut, Signal: out},
		})
		return out, nil

	case evalobj.ArrayWrite:
		// Operands: [originalValue, newValue, writeIndex]; Parameters[0] is
		// the static slot this node covers. The slot keeps newValue exactly
		// when writeIndex equals that static slot, else it keeps originalValue.
		operands := o.Operands()
		origSig, err := c.Lower(operands[0])
		if err != nil {
			return 0, err
		}
		newSig, err := c.Lower(operands[1])
		if err != nil {
			return 0, err
		}
		idxSig, err := c.Lower(operands[2])
		if err != nil {
			return 0, err
		}
		dt, err := o.DataType(c.ev)
		if err != nil {
			return 0, err
		}
		outType := hdl.FromSpec(dt.HDLType())
		idxType := c.Design.Signal(idxSig).Type
		slotOut := c.Design.AddSignal(c.tempName("arrwr_slot"), idxType)
		c.Design.AddDevice(&hdl.Constant{Name: c.tempName("arrwr_slotidx"), Value: o.Parameters[0], Output: hdl.HDLDevicePort{Name: "out", Dir: hdl.DirOut, Signal: slotOut}})
		eqOut := c.Design.AddSignal(c.tempName("arrwr_eq"), hdl.LogicSignal{})
		c.Design.AddDevice(&hdl.Operation{
			Name: c.tempName("arrwr_cmp"), Op: operations.EQ,
			Operands: []hdl.HDLDevicePort{{Name: "in0", Dir: hdl.DirIn, Signal: idxSig}, {Name: "in1", Dir: hdl.DirIn, Signal: slotOut}},
			Output:   hdl.HDLDevicePort{Name: "out", Dir: hdl.DirOut, Signal: eqOut}, OutType: hdl.LogicSignal{},
		})
		out := c.Design.AddSignal(c.tempName("arrwr"), outType)
		c.Design.AddDevice(&hdl.Multiplexer{
			Name:   c.tempName("arrwr_mux"),
			Select: []hdl.HDLDevicePort{{Name: "sel", Dir: hdl.DirIn, Signal: eqOut}},
			Inputs: []hdl.HDLDevicePort{{Name: "d0", Dir: hdl.DirIn, Signal: origSig}, {Name: "d1", Dir: hdl.DirIn, Signal: newSig}},
			Output: hdl.HDLDevicePort{Name: "out", Dir: hdl.DirOut, Signal: out},
		})
		return out, nil

	default:
		return 0, fmt.Errorf("===%s=== unknown special operation kind", o.ID())
	}
}
