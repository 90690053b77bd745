// Package vm interprets a compiled opcode.Program against a fixed-capacity
// operand stack of doubles. It is the other half of the teacher's
// compiler/generator.go split: where the teacher's per-instruction `gen*`
// methods emitted x86 assembly for each opcode.Code, Machine's dispatch
// loop below executes it directly, in-process.
package vm

import (
	"github.com/skx/expr-machine/exprerr"
	"github.com/skx/expr-machine/opcode"
)

// DefaultCapacity is the operand-stack capacity used when a Machine is not
// given one explicitly, matching spec §3/§6's default of 32.
const DefaultCapacity = 32

// Machine evaluates opcode.Programs. It carries no per-evaluation state of
// its own beyond its configured capacity: every Eval call allocates and
// releases its own operand-stack buffer (spec §5), so a single Machine
// value may be shared and reused, including concurrently, across
// evaluations of different Programs.
type Machine struct {
	capacity int
}

// New returns a Machine whose operand stack holds up to capacity doubles.
// Hosts compiling unusually deep expressions can widen this beyond
// DefaultCapacity; see opcode.Program.MaxDepth.
func New(capacity int) *Machine {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Machine{capacity: capacity}
}

// Default is the package-level Machine used by Eval, sized to
// DefaultCapacity.
var Default = New(DefaultCapacity)

// Eval runs the package-level default Machine over p.
func Eval(p *opcode.Program) (float64, error) {
	return Default.Eval(p)
}

// operandStack is the evaluator's scratch stack: a fixed-capacity
// contiguous buffer of doubles, allocated fresh for each evaluation and
// discarded at its end (spec §3). Bounds are checked on every push.
type operandStack struct {
	data []float64
	cap  int
}

func newOperandStack(capacity int) operandStack {
	return operandStack{data: make([]float64, 0, capacity), cap: capacity}
}

func (s *operandStack) push(v float64) error {
	if len(s.data) >= s.cap {
		return exprerr.Runtime(exprerr.StackOverflow,
			"operand stack exceeded capacity %d", s.cap)
	}
	s.data = append(s.data, v)
	return nil
}

func (s *operandStack) pop() (float64, error) {
	l := len(s.data)
	if l == 0 {
		return 0, exprerr.Runtime(exprerr.InternalMalformedBytecode,
			"operand stack underflow")
	}
	v := s.data[l-1]
	s.data = s.data[:l-1]
	return v, nil
}

func (s *operandStack) top() (*float64, error) {
	l := len(s.data)
	if l == 0 {
		return nil, exprerr.Runtime(exprerr.InternalMalformedBytecode,
			"operand stack underflow")
	}
	return &s.data[l-1], nil
}

// Eval runs p's opcodes to completion and returns the resulting double.
//
// Dispatch is a plain linear scan: no suspension points, no cancellation,
// no goroutines. Division by zero and other IEEE-754 edge cases propagate
// as infinity/NaN, not as errors, per spec §4.4/§7.
func (m *Machine) Eval(p *opcode.Program) (float64, error) {
	s := newOperandStack(m.capacity)

	for _, op := range p.Code {
		switch op.Code {

		case opcode.Neg:
			top, err := s.top()
			if err != nil {
				return 0, err
			}
			*top = -*top

		case opcode.Add:
			b, err := s.pop()
			if err != nil {
				return 0, err
			}
			a, err := s.pop()
			if err != nil {
				return 0, err
			}
			if err := s.push(a + b); err != nil {
				return 0, err
			}

		case opcode.Sub:
			b, err := s.pop()
			if err != nil {
				return 0, err
			}
			a, err := s.pop()
			if err != nil {
				return 0, err
			}
			if err := s.push(a - b); err != nil {
				return 0, err
			}

		case opcode.Mul:
			b, err := s.pop()
			if err != nil {
				return 0, err
			}
			a, err := s.pop()
			if err != nil {
				return 0, err
			}
			if err := s.push(a * b); err != nil {
				return 0, err
			}

		case opcode.Div:
			b, err := s.pop()
			if err != nil {
				return 0, err
			}
			a, err := s.pop()
			if err != nil {
				return 0, err
			}
			if err := s.push(a / b); err != nil {
				return 0, err
			}

		case opcode.Var:
			if err := s.push(op.Cell.Read()); err != nil {
				return 0, err
			}

		case opcode.Con:
			if err := s.push(op.Value); err != nil {
				return 0, err
			}

		case opcode.Call:
			args, err := popArgs(&s, op.Arity)
			if err != nil {
				return 0, err
			}
			if err := s.push(op.Fn(args)); err != nil {
				return 0, err
			}

		case opcode.CallClosure:
			args, err := popArgs(&s, op.Arity)
			if err != nil {
				return 0, err
			}
			if err := s.push(op.Closure(op.Ctx, args)); err != nil {
				return 0, err
			}

		case opcode.Ret:
			if len(s.data) != 1 {
				return 0, exprerr.Runtime(exprerr.InternalMalformedBytecode,
					"expected exactly one value on the operand stack at Ret, found %d", len(s.data))
			}
			return s.data[0], nil

		default:
			return 0, exprerr.Runtime(exprerr.InternalMalformedBytecode,
				"unknown opcode %v", op.Code)
		}
	}

	return 0, exprerr.Runtime(exprerr.InternalMalformedBytecode, "program did not end with Ret")
}

// popArgs pops arity values off s and returns them in left-to-right
// argument order (the argument compiled first is the deepest on the
// stack, and must end up at index 0).
func popArgs(s *operandStack, arity int) ([]float64, error) {
	args := make([]float64, arity)
	for i := arity - 1; i >= 0; i-- {
		v, err := s.pop()
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}
