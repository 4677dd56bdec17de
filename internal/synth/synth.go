// Package synth lowers a symbolically evaluated hardware block (internal/eval's
// EvaluatedBlock) into a concrete netlist (internal/hdl's Design): every
// evaluator variable becomes one or more signals, every EvalObject becomes
// a chain of devices, and every block input/output is packed to or unpacked
// from the entity's flat port vector.
package synth

import (
	"fmt"

	"github.com/elasticc/hls/internal/eval"
	"github.com/elasticc/hls/internal/evalobj"
	"github.com/elasticc/hls/internal/evalvar"
	"github.com/elasticc/hls/internal/hdl"
	"github.com/elasticc/hls/internal/operations"
)

// Context carries the in-progress netlist plus the memo tables that let
// Lower avoid emitting the same device twice for a shared subexpression or
// variable.
type Context struct {
	Design *hdl.Design
	ev     evalobj.Evaluator

	varSignal map[evalobj.EvaluatorVariable]hdl.SignalID
	objSignal map[evalobj.EvalObject]hdl.SignalID

	clockEnable *hdl.SignalID
	dataEnable  *hdl.SignalID
	nextTemp    int
}

func newContext(name string, ev evalobj.Evaluator) *Context {
	return &Context{
		Design:    hdl.NewDesign(name),
		ev:        ev,
		varSignal: map[evalobj.EvaluatorVariable]hdl.SignalID{},
		objSignal: map[evalobj.EvalObject]hdl.SignalID{},
	}
}

func (c *Context) tempName(prefix string) string {
	c.nextTemp++
	return fmt.Sprintf("%s_%d", prefix, c.nextTemp)
}

// Synthesize is the package's entry point: given a fully evaluated hardware
// block, it builds the Design implementing it.
func Synthesize(block *eval.EvaluatedBlock) (*hdl.Design, error) {
	c := newContext(block.Block.Name, block.Eval)

	if block.Block.Params.HasClockEn {
		id := c.Design.AddSignal("clk_en", hdl.LogicSignal{})
		c.clockEnable = &id
		c.Design.AddExternalPort(id, hdl.DirIn)
	}
	c.Design.AddExternalPort(c.Design.Clock, hdl.DirIn)
	if block.Block.Params.HasSyncReset {
		c.Design.AddSignal("reset", hdl.LogicSignal{})
	}
	if block.Block.Params.HasDataEn {
		id := c.Design.AddSignal("data_en", hdl.LogicSignal{})
		c.dataEnable = &id
		c.Design.AddExternalPort(id, hdl.DirIn)
	}

	for _, in := range block.Block.Inputs {
		v, err := block.Eval.GetVariableByParserVar(in)
		if err != nil {
			return nil, err
		}
		if err := c.packInputVariable(v); err != nil {
			return nil, err
		}
	}
	for _, out := range block.Block.Outputs {
		v, err := block.Eval.GetVariableByParserVar(out)
		if err != nil {
			return nil, err
		}
		c.registerVariable(v)
		c.Design.AddExternalPort(c.varSignal[v], hdl.DirOut)
	}

	for _, v := range block.AllVariables {
		if _, ok := c.varSignal[v]; ok {
			continue
		}
		c.registerVariable(v)
	}

	for v, val := range block.FinalValues {
		if !v.IsScalar() || isStaticScalar(v) || v.Dir().IsInput {
			continue
		}
		target, ok := c.varSignal[v]
		if !ok {
			target = c.registerVariable(v)
		}
		src, err := c.Lower(val)
		if err != nil {
			return nil, fmt.Errorf("synthesizing %s: %w", v.Name(), err)
		}
		c.wire(src, target, v.Name())
	}

	c.materializeStaticRegisters(block.AllVariables)
	if err := c.materializeMemories(block.AllVariables); err != nil {
		return nil, err
	}

	return c.Design, nil
}

func isStaticScalar(v evalobj.EvaluatorVariable) bool {
	s, ok := v.(*evalvar.Scalar)
	return ok && s.IsStatic()
}

// materializeStaticRegisters instantiates the clocked Register backing
// every static local variable: its hidden write-enable/written-value
// children synthesize as ordinary combinational signals in the main loop
// above (they carry the write-under-conditions logic the evaluator already
// built), and this wires a Register whose D comes from written_value and
// whose enable is write_enable AND data_enable AND clock_enable, and whose
// Q is the static variable's own, already-allocated signal.
func (c *Context) materializeStaticRegisters(allVariables []evalobj.EvaluatorVariable) {
	for _, v := range allVariables {
		s, ok := v.(*evalvar.Scalar)
		if !ok || !s.IsStatic() {
			continue
		}
		target, ok := c.varSignal[s]
		if !ok {
			target = c.registerVariable(s)
		}
		d := c.registerVariable(s.WrittenValue())
		en := c.registerVariable(s.WriteEnable())
		en = c.andEnable(en, c.dataEnable, c.clockEnable)
		c.Design.AddDevice(&hdl.Register{
			Name:   c.tempName("static_" + s.Name()),
			Clock:  hdl.HDLDevicePort{Name: "clk", Dir: hdl.DirIn, Signal: c.Design.Clock},
			Enable: &hdl.HDLDevicePort{Name: "en", Dir: hdl.DirIn, Signal: en},
			Input:  hdl.HDLDevicePort{Name: "d", Dir: hdl.DirIn, Signal: d},
			Output: hdl.HDLDevicePort{Name: "q", Dir: hdl.DirOut, Signal: target},
		})
	}
}

// andEnable folds base together with every present optional gating signal
// (data_en, clock_en) via a chain of bitwise-AND Operation devices,
// returning base unchanged when none of the optional signals are declared
// on this block.
func (c *Context) andEnable(base hdl.SignalID, optional ...*hdl.SignalID) hdl.SignalID {
	acc := base
	for _, opt := range optional {
		if opt == nil {
			continue
		}
		out := c.Design.AddSignal(c.tempName("en"), hdl.LogicSignal{})
		c.Design.AddDevice(&hdl.Operation{
			Name: c.tempName("en_and"),
			Op:   operations.BWAND,
			Operands: []hdl.HDLDevicePort{
				{Name: "in0", Dir: hdl.DirIn, Signal: acc},
				{Name: "in1", Dir: hdl.DirIn, Signal: *opt},
			},
			Output:  hdl.HDLDevicePort{Name: "out", Dir: hdl.DirOut, Signal: out},
			OutType: hdl.LogicSignal{},
		})
		acc = out
	}
	return acc
}

// registerVariable allocates a signal per scalar leaf (recursing through
// array/structure children, each of which already carries its flattened
// BitOffset courtesy of internal/evalvar's constructors), and returns the
// id of the variable's own signal — its single scalar signal if it is a
// leaf, or a synthetic packed logic_vector otherwise.
func (c *Context) registerVariable(v evalobj.EvaluatorVariable) hdl.SignalID {
	if id, ok := c.varSignal[v]; ok {
		return id
	}
	if v.IsScalar() {
		id := c.Design.AddSignal(v.Name(), hdl.FromSpec(v.Type().HDLType()))
		c.varSignal[v] = id
		return id
	}

	children := v.GetAllChildren()
	for _, ch := range children {
		c.registerVariable(ch)
	}
	id := c.Design.AddSignal(v.Name()+"_packed", hdl.LogicVector{W: v.Type().Width()})
	c.varSignal[v] = id
	if len(children) > 0 {
		inputs := make([]hdl.HDLDevicePort, len(children))
		for i, ch := range children {
			inputs[i] = hdl.HDLDevicePort{Name: fmt.Sprintf("in%d", i), Dir: hdl.DirIn, Signal: c.varSignal[ch]}
		}
		c.Design.AddDevice(&hdl.Combiner{
			Name:   c.tempName("combine_" + v.Name()),
			Inputs: inputs,
			Output: hdl.HDLDevicePort{Name: "out", Dir: hdl.DirOut, Signal: id},
		})
	}
	return id
}

// packInputVariable registers v and, for each scalar leaf, splits the
// value read from the external boundary back down by bit offset: a scalar
// input needs no splitting, but an array or structure input arrives as one
// flat port and must fan out to its per-element signals via bit-slicing
// Buffers.
func (c *Context) packInputVariable(v evalobj.EvaluatorVariable) error {
	boundary := c.registerVariable(v)
	c.Design.AddExternalPort(boundary, hdl.DirIn)
	if v.IsScalar() {
		return nil
	}
	boundaryType := hdl.LogicVector{W: v.Type().Width()}
	for _, ch := range v.GetAllChildren() {
		childSig := c.varSignal[ch]
		lo := ch.BitOffset()
		hi := lo + ch.Type().Width() - 1
		c.Design.AddDevice(&hdl.Buffer{
			Name:       c.tempName("split_" + ch.Name()),
			Input:      hdl.HDLDevicePort{Name: "in", Dir: hdl.DirIn, Signal: boundary},
			InputType:  boundaryType,
			Output:     hdl.HDLDevicePort{Name: "out", Dir: hdl.DirOut, Signal: childSig},
			OutputType: c.Design.Signal(childSig).Type,
			BitLo:      lo,
			BitHi:      hi,
		})
	}
	return nil
}

// wire connects src to dst with a Buffer, which degrades to a plain rename
// when the two signals already share a type and casts otherwise.
func (c *Context) wire(src, dst hdl.SignalID, label string) {
	srcSig, dstSig := c.Design.Signal(src), c.Design.Signal(dst)
	c.Design.AddDevice(&hdl.Buffer{
		Name:       c.tempName("assign_" + label),
		Input:      hdl.HDLDevicePort{Name: "in", Dir: hdl.DirIn, Signal: src},
		InputType:  srcSig.Type,
		Output:     hdl.HDLDevicePort{Name: "out", Dir: hdl.DirOut, Signal: dst},
		OutputType: dstSig.Type,
		BitLo:      -1,
	})
}
