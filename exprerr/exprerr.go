// Package exprerr defines the error taxonomy shared by the compiler and
// the evaluator. Every error the module returns is a *Error, so a host can
// recover the Kind programmatically instead of matching on message text.
package exprerr

import "fmt"

// Kind is a closed enumeration of the ways compilation or evaluation can
// fail.
type Kind int

const (
	// UnexpectedCharacter means the lexer saw a character matching no
	// token class.
	UnexpectedCharacter Kind = iota

	// UnknownIdentifier means the resolver found no host binding and no
	// built-in of that name.
	UnknownIdentifier

	// KindMismatch means a value was called, or a function/closure was
	// read without being called.
	KindMismatch

	// ArityMismatch means a call's argument count disagreed with the
	// binding's declared arity.
	ArityMismatch

	// UnbalancedParentheses means a stray ')', a missing ')', or a ','
	// outside any paren group.
	UnbalancedParentheses

	// EmptyExpression means compilation produced no value before Ret.
	EmptyExpression

	// StackOverflow means evaluation exceeded the operand stack's
	// capacity.
	StackOverflow

	// InternalMalformedBytecode means the evaluator hit an opcode, or a
	// stack state, that a correct compiler could never have produced.
	InternalMalformedBytecode
)

// String renders a Kind as the name used in spec and documentation.
func (k Kind) String() string {
	switch k {
	case UnexpectedCharacter:
		return "UnexpectedCharacter"
	case UnknownIdentifier:
		return "UnknownIdentifier"
	case KindMismatch:
		return "KindMismatch"
	case ArityMismatch:
		return "ArityMismatch"
	case UnbalancedParentheses:
		return "UnbalancedParentheses"
	case EmptyExpression:
		return "EmptyExpression"
	case StackOverflow:
		return "StackOverflow"
	case InternalMalformedBytecode:
		return "InternalMalformedBytecode"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by Compile and Eval.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Pos is the byte-offset into the source expression at which the
	// error was detected. It is -1 when the error has no meaningful
	// source position (e.g. a runtime StackOverflow).
	Pos int

	// Msg is a short human-readable description.
	Msg string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// New builds a compile-time error carrying a source position.
func New(kind Kind, pos int, msg string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(msg, args...)}
}

// Runtime builds an evaluation-time error with no source position.
func Runtime(kind Kind, msg string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: -1, Msg: fmt.Sprintf(msg, args...)}
}

// Is reports whether err is an *Error of the given Kind, so callers can
// write `errors.Is`-style checks: `exprerr.Is(err, exprerr.ArityMismatch)`.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == kind
}
