package ast

// Context is implemented by every AST node that can own declared variables
// and template parameters: Block, ForLoop, UserStructure, Function,
// HardwareBlock, and GlobalScope. The ancestor walk needed to resolve a
// name is implemented once, as the free functions below operating on the
// Parent()/DeclaredVariables() methods, rather than on each Context
// implementation.
type Context interface {
	Parent() Context // nil for GlobalScope
	DeclaredVariables() []*Variable
	TemplateParams() []*TemplateParameter
}

// FindVariable searches ctx and its ancestors for a variable named name.
func FindVariable(ctx Context, name string) (*Variable, bool) {
	for c := ctx; c != nil; c = c.Parent() {
		for _, v := range c.DeclaredVariables() {
			if v.Name == name {
				return v, true
			}
		}
	}
	return nil, false
}

// VariableExists reports whether a variable named name is visible from ctx.
func VariableExists(ctx Context, name string) bool {
	_, ok := FindVariable(ctx, name)
	return ok
}

// GlobalScopeOf walks ctx's ancestors to the root GlobalScope.
func GlobalScopeOf(ctx Context) *GlobalScope {
	c := ctx
	for {
		if gs, ok := c.(*GlobalScope); ok {
			return gs
		}
		parent := c.Parent()
		if parent == nil {
			return nil
		}
		c = parent
	}
}

// IsTemplateParameter reports whether name names a template parameter
// visible from ctx (declared in ctx or an ancestor).
func IsTemplateParameter(ctx Context, name string) bool {
	_, _, ok := FindTemplateParameter(ctx, name)
	return ok
}

// FindTemplateParameter locates the context that declares a template
// parameter named name, along with its index within that context's
// TemplateParams(), searching ctx and its ancestors.
func FindTemplateParameter(ctx Context, name string) (Context, int, bool) {
	for c := ctx; c != nil; c = c.Parent() {
		for i, p := range c.TemplateParams() {
			if p.Name == name {
				return c, i, true
			}
		}
	}
	return nil, 0, false
}

// VariableQualifier is one of the storage-class-like qualifiers a variable
// declaration may carry.
type VariableQualifier int

const (
	QualStatic VariableQualifier = iota
	QualConst
	QualRegister
)

var variableQualifierStrings = map[string]VariableQualifier{
	"static":   QualStatic,
	"const":    QualConst,
	"register": QualRegister,
}

// LookupVariableQualifier resolves a qualifier keyword.
func LookupVariableQualifier(keyword string) (VariableQualifier, bool) {
	q, ok := variableQualifierStrings[keyword]
	return q, ok
}

// Variable is a declared variable: a local, a function/block argument, or a
// structure member.
type Variable struct {
	Pos           Pos
	Attributes    AttributeSet
	ParentContext Context
	Type          DataTypeSpecifier
	Name          string
	IsReference   bool
	Qualifiers    []VariableQualifier
	Initialiser   Expression
}

func (v *Variable) String() string { return v.Name }
func (v *Variable) Position() Pos  { return v.Pos }

// HasQualifier reports whether q was specified on the declaration.
func (v *Variable) HasQualifier(q VariableQualifier) bool {
	for _, vq := range v.Qualifiers {
		if vq == q {
			return true
		}
	}
	return false
}

// UserStructure is a user-defined struct declaration and is itself a
// Context so its members can reference earlier members' types.
type UserStructure struct {
	Pos           Pos
	Attributes    AttributeSet
	Name          string
	Members       []*Variable
	Params        []*TemplateParameter
	ParentContext Context
}

func (s *UserStructure) String() string                     { return "struct " + s.Name }
func (s *UserStructure) Position() Pos                       { return s.Pos }
func (s *UserStructure) Parent() Context                     { return s.ParentContext }
func (s *UserStructure) DeclaredVariables() []*Variable       { return s.Members }
func (s *UserStructure) TemplateParams() []*TemplateParameter { return s.Params }

// Function is a user-defined function.
type Function struct {
	Pos           Pos
	Name          string
	Attributes    AttributeSet
	ReturnType    DataTypeSpecifier
	IsVoid        bool
	Arguments     []FunctionArg
	Params        []*TemplateParameter
	Body          Statement
	ParentContext Context
}

// FunctionArg pairs a formal argument with whether it is passed by
// reference.
type FunctionArg struct {
	Var     *Variable
	ByRef   bool
}

func (f *Function) String() string { return f.Name + "(...)" }
func (f *Function) Position() Pos  { return f.Pos }
func (f *Function) Parent() Context { return f.ParentContext }

func (f *Function) DeclaredVariables() []*Variable {
	vars := make([]*Variable, len(f.Arguments))
	for i, a := range f.Arguments {
		vars[i] = a.Var
	}
	return vars
}

func (f *Function) TemplateParams() []*TemplateParameter { return f.Params }

// HardwareBlockParams records the special clocking/handshake I/O a hardware
// block may declare.
type HardwareBlockParams struct {
	HasClock     bool
	ClockFreqHz  uint64
	HasClockEn   bool
	HasDataEn    bool
	HasDataEnOut bool
	HasSyncReset bool
}

// DefaultHardwareBlockParams returns the default clock frequency of 50MHz,
// used when a block declares a clock but no explicit frequency attribute.
func DefaultHardwareBlockParams() HardwareBlockParams {
	return HardwareBlockParams{ClockFreqHz: 50_000_000}
}

// HardwareBlock is a top-level synthesizable design block.
type HardwareBlock struct {
	Pos           Pos
	Name          string
	Attributes    AttributeSet
	Inputs        []*Variable
	Outputs       []*Variable
	Body          Statement
	Params        HardwareBlockParams
	ParentContext Context
}

func (h *HardwareBlock) String() string  { return "block " + h.Name }
func (h *HardwareBlock) Position() Pos   { return h.Pos }
func (h *HardwareBlock) Parent() Context { return h.ParentContext }

func (h *HardwareBlock) DeclaredVariables() []*Variable {
	vars := make([]*Variable, 0, len(h.Inputs)+len(h.Outputs))
	vars = append(vars, h.Inputs...)
	vars = append(vars, h.Outputs...)
	return vars
}

func (h *HardwareBlock) TemplateParams() []*TemplateParameter { return nil }

// GlobalScope is the root Context representing one fully parsed translation
// unit: global constant declarations, structure definitions, functions, and
// hardware blocks.
type GlobalScope struct {
	Statements []Statement // global variable/constant declarations
	Structures []*UserStructure
	Functions  []*Function
	Blocks     []*HardwareBlock
	Vars       []*Variable
}

func NewGlobalScope() *GlobalScope { return &GlobalScope{} }

func (g *GlobalScope) String() string                     { return "<global scope>" }
func (g *GlobalScope) Position() Pos                       { return Pos{} }
func (g *GlobalScope) Parent() Context                     { return nil }
func (g *GlobalScope) DeclaredVariables() []*Variable       { return g.Vars }
func (g *GlobalScope) TemplateParams() []*TemplateParameter { return nil }

// FindStructure looks up a user structure by name.
func (g *GlobalScope) FindStructure(name string) (*UserStructure, bool) {
	for _, s := range g.Structures {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// FindFunction looks up a user function by name.
func (g *GlobalScope) FindFunction(name string) (*Function, bool) {
	for _, f := range g.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// FindBlock looks up a hardware block by name.
func (g *GlobalScope) FindBlock(name string) (*HardwareBlock, bool) {
	for _, b := range g.Blocks {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}
