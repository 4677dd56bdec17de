package diag

import "fmt"

// ParseError is raised by the lexer/parser front end. It is caught at
// top-level element boundaries; the parser resynchronizes and continues
// with the next element.
type ParseError struct {
	Code Code
	Line int
	File string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s:%d: %s", e.Code, e.File, e.Line, e.Msg)
}

// NewParseError constructs a ParseError.
func NewParseError(code Code, file string, line int, format string, args ...interface{}) *ParseError {
	return &ParseError{Code: code, Line: line, File: file, Msg: fmt.Sprintf(format, args...)}
}

// EvalError is raised by the evaluator or synthesis lowering. The first
// EvalError terminates compilation; there is no partial output.
type EvalError struct {
	Code Code
	Line int
	File string
	Msg  string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s:%d: %s", e.Code, e.File, e.Line, e.Msg)
}

// NewEvalError constructs an EvalError.
func NewEvalError(code Code, file string, line int, format string, args ...interface{}) *EvalError {
	return &EvalError{Code: code, Line: line, File: file, Msg: fmt.Sprintf(format, args...)}
}

// InternalError signals a condition that should never arise from valid
// input: hitting a process-wide Null sentinel, an unsupported construct
// that survived parsing, or an unimplemented runtime path.
type InternalError struct {
	Code Code
	Msg  string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: probably an internal error, please report: %s", e.Code, e.Msg)
}

// NewInternalError constructs an InternalError.
func NewInternalError(code Code, format string, args ...interface{}) *InternalError {
	return &InternalError{Code: code, Msg: fmt.Sprintf(format, args...)}
}
