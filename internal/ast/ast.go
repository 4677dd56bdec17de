// Package ast defines the ElasticC abstract syntax tree produced by
// internal/parser: statements, expressions, declarations, and the lexical
// contexts (blocks, functions, hardware blocks, the global scope) that own
// variables and template parameters. Nodes are data only; resolution (type
// resolution, constant folding, symbolic evaluation) lives in internal/eval.
package ast

import "fmt"

// Node is the base interface implemented by every AST node: a String form
// for diagnostics and a source Position.
type Node interface {
	String() string
	Position() Pos
}

// Pos is a source position, carried on every node for diagnostics.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// AttributeSet models ElasticC's [[attr]] / [[attr(value)]] annotations,
// attached to statements, structures, functions, and hardware blocks.
type AttributeSet struct {
	attrs map[string]string
}

// NewAttributeSet returns an empty attribute set.
func NewAttributeSet() AttributeSet {
	return AttributeSet{attrs: map[string]string{}}
}

// Add records an attribute, optionally with a value (empty string if bare).
func (a *AttributeSet) Add(key, value string) {
	if a.attrs == nil {
		a.attrs = map[string]string{}
	}
	a.attrs[key] = value
}

// Has reports whether key was specified.
func (a AttributeSet) Has(key string) bool {
	_, ok := a.attrs[key]
	return ok
}

// Value returns the attribute's value, or def if the attribute was not
// specified or was specified bare.
func (a AttributeSet) Value(key, def string) string {
	if v, ok := a.attrs[key]; ok && v != "" {
		return v
	}
	return def
}
