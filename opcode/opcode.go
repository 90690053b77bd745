// Package opcode defines the bytecode instruction set the compiler emits
// and the evaluator interprets.
//
// Unlike the teacher's InstructionType (a single-character tag plus one
// string Value field, destined for text substitution into assembly), Op is
// a genuine tagged union: each field is only meaningful for the Codes that
// use it, and evaluation never reinterprets a word of memory to recover an
// operand.
//
// Call-arity explosion (spec §9): the C reference this module's spec was
// distilled from unrolls Fun0..Fun7 and Clo0..Clo7 because C has no
// portable way to call a function pointer with a runtime-sized argument
// list. Go does, via a []float64, so Call and CallClosure each carry an
// Arity field instead of being duplicated per arity.
package opcode

import "github.com/skx/expr-machine/binding"

// Code tags the kind of one Op.
type Code byte

const (
	// Neg negates the top of the operand stack in place.
	Neg Code = iota

	// Add, Sub, Mul, Div pop two operands and push the result.
	Add
	Sub
	Mul
	Div

	// Var pushes the current value behind Cell.
	Var

	// Con pushes the inline literal Value.
	Con

	// Call pops Arity operands (deepest argument first) and invokes Fn,
	// pushing its result.
	Call

	// CallClosure is like Call, but invokes Closure with Ctx prepended
	// to the argument list.
	CallClosure

	// Ret ends the program; exactly one operand must remain.
	Ret
)

func (c Code) String() string {
	switch c {
	case Neg:
		return "neg"
	case Add:
		return "add"
	case Sub:
		return "sub"
	case Mul:
		return "mul"
	case Div:
		return "div"
	case Var:
		return "var"
	case Con:
		return "con"
	case Call:
		return "call"
	case CallClosure:
		return "callclosure"
	case Ret:
		return "ret"
	default:
		return "unknown"
	}
}

// Op is one bytecode instruction.
type Op struct {
	Code Code

	// Value is the inline literal carried by Con.
	Value float64

	// Cell is the read handle carried by Var.
	Cell binding.Cell

	// Name is carried by Var, Call and CallClosure purely for
	// disassembly and diagnostics; evaluation never consults it.
	Name string

	// Arity is the argument count carried by Call and CallClosure.
	Arity int

	// Fn is the callable carried by Call.
	Fn binding.Func

	// Closure and Ctx are carried by CallClosure.
	Closure binding.ClosureFunc
	Ctx     any
}

// Program is a compiled, immutable bytecode object. It owns Code; it does
// not own the referent of any Var Cell or any Call/CallClosure callable —
// those are host-owned and must outlive every Eval of this Program.
type Program struct {
	Code []Op

	// MaxDepth is the maximum operand-stack depth a correct evaluation
	// of Code can reach, computed once by the compiler's abstract
	// stack simulation (spec §9: "record this maximum in the bytecode").
	MaxDepth int
}
