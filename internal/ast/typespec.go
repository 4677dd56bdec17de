package ast

// BasicDataType enumerates ElasticC's built-in named type families, each
// parameterized by template arguments (width, length, etc).
type BasicDataType int

const (
	BasicUnsigned BasicDataType = iota
	BasicSigned
	BasicStream
	BasicStream2D
	BasicRAM
	BasicROM
)

var basicTypeNames = map[string]BasicDataType{
	"unsigned": BasicUnsigned,
	"signed":   BasicSigned,
	"stream":   BasicStream,
	"stream2d": BasicStream2D,
	"ram":      BasicRAM,
	"rom":      BasicROM,
}

// LookupBasicDataType resolves a type keyword to its BasicDataType.
func LookupBasicDataType(keyword string) (BasicDataType, bool) {
	k, ok := basicTypeNames[keyword]
	return k, ok
}

// DataTypeSpecifier is the parse-time representation of a type, resolved to
// a concrete types.DataType during evaluation (internal/eval). Resolution
// logic lives there rather than on the specifier itself, to keep this
// package data-only.
type DataTypeSpecifier interface {
	Node
	isDataTypeSpecifier()
}

// BasicTypeSpecifier names one of the built-in families, with its template
// arguments as written at the use site (e.g. unsigned<8>, stream<Pixel,100>).
type BasicTypeSpecifier struct {
	Pos  Pos
	Kind BasicDataType
	Args []TemplateArg
}

func (s *BasicTypeSpecifier) String() string { return "<basic type>" }
func (s *BasicTypeSpecifier) Position() Pos  { return s.Pos }
func (*BasicTypeSpecifier) isDataTypeSpecifier() {}

// StructureTypeSpecifier names a user-defined structure.
type StructureTypeSpecifier struct {
	Pos    Pos
	Struct *UserStructure
	Args   []TemplateArg
}

func (s *StructureTypeSpecifier) String() string { return s.Struct.Name }
func (s *StructureTypeSpecifier) Position() Pos  { return s.Pos }
func (*StructureTypeSpecifier) isDataTypeSpecifier() {}

// ArrayTypeSpecifier is baseType[length], possibly with length itself an
// unresolved constant expression (template parameter, sizeof, etc).
type ArrayTypeSpecifier struct {
	Pos    Pos
	Base   DataTypeSpecifier
	Length Expression
}

func (s *ArrayTypeSpecifier) String() string { return s.Base.String() + "[]" }
func (s *ArrayTypeSpecifier) Position() Pos  { return s.Pos }
func (*ArrayTypeSpecifier) isDataTypeSpecifier() {}

// AutoTypeSpecifier stands for "auto", resolved at evaluation from the
// declaration's initializer.
type AutoTypeSpecifier struct {
	Pos Pos
}

func (s *AutoTypeSpecifier) String() string { return "auto" }
func (s *AutoTypeSpecifier) Position() Pos  { return s.Pos }
func (*AutoTypeSpecifier) isDataTypeSpecifier() {}

// TemplateParamTypeSpecifier refers to a TPDataType formal parameter by its
// position (Index) in Context's template parameter list, resolved against
// that context's bound template arguments.
type TemplateParamTypeSpecifier struct {
	Pos     Pos
	Context Context
	Index   int
}

func (s *TemplateParamTypeSpecifier) String() string { return "<template type param>" }
func (s *TemplateParamTypeSpecifier) Position() Pos  { return s.Pos }
func (*TemplateParamTypeSpecifier) isDataTypeSpecifier() {}

// DecltypeSpecifier resolves to the type of its operand expression.
type DecltypeSpecifier struct {
	Pos     Pos
	Operand Expression
}

func (s *DecltypeSpecifier) String() string { return "decltype(...)" }
func (s *DecltypeSpecifier) Position() Pos  { return s.Pos }
func (*DecltypeSpecifier) isDataTypeSpecifier() {}
