// Package expr is the host-facing facade: compile an expression once
// against a table of host bindings, then evaluate the resulting Program as
// many times as needed.
//
// The teacher's "New/Compile, the rest is an implementation detail"
// public-API convention (see compiler.Compiler.Compile) is applied here
// to the whole module's public surface.
package expr

import (
	"fmt"
	"io"
	"math"

	"github.com/skx/expr-machine/binding"
	"github.com/skx/expr-machine/compiler"
	"github.com/skx/expr-machine/opcode"
	"github.com/skx/expr-machine/vm"
)

// Program is a compiled expression, ready to be evaluated any number of
// times. It owns its bytecode; it does not own the referents of any Var
// Cell or any Call/CallClosure callable supplied via the bindings passed
// to Compile — those remain host-owned and must outlive every Eval.
type Program struct {
	prog    *opcode.Program
	machine *vm.Machine
}

// Compile lexes and parses source, resolving identifiers against bindings
// first and the built-in table second, and returns a ready-to-evaluate
// Program.
func Compile(source string, bindings binding.Table) (*Program, error) {
	prog, err := compiler.New(source, bindings).Compile()
	if err != nil {
		return nil, err
	}

	capacity := prog.MaxDepth
	if capacity < vm.DefaultCapacity {
		capacity = vm.DefaultCapacity
	}

	return &Program{prog: prog, machine: vm.New(capacity)}, nil
}

// Eval runs the compiled program and returns its result.
func (p *Program) Eval() (float64, error) {
	return p.machine.Eval(p.prog)
}

// Free releases p's references. It exists for parity with spec.md's
// C-shaped lifecycle (explicit compile/eval/free); the Go garbage
// collector reclaims everything on its own once p is unreachable, so this
// is a no-op beyond dropping references.
func (p *Program) Free() {
	p.prog = nil
	p.machine = nil
}

// Interp compiles and evaluates source in one step against only the
// built-in table, collapsing any compile or evaluation error to NaN. It
// is a convenience for callers who want a quick one-shot answer and don't
// need to distinguish "malformed expression" from "not-a-number result".
func Interp(source string) float64 {
	p, err := Compile(source, nil)
	if err != nil {
		return math.NaN()
	}
	v, err := p.Eval()
	if err != nil {
		return math.NaN()
	}
	return v
}

// Disassemble writes a human-readable listing of p's bytecode to w, one
// instruction per line. This is an optional convenience per spec.md §6,
// intended for debugging and the cmd/exprc "disasm" subcommand.
func (p *Program) Disassemble(w io.Writer) error {
	for i, op := range p.prog.Code {
		line := fmt.Sprintf("%4d  %s", i, op.Code)

		switch op.Code {
		case opcode.Con:
			line += fmt.Sprintf(" %v", op.Value)
		case opcode.Var:
			line += fmt.Sprintf(" %s", op.Name)
		case opcode.Call, opcode.CallClosure:
			line += fmt.Sprintf(" %s/%d", op.Name, op.Arity)
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// MaxStackDepth reports the peak operand-stack depth the compiler computed
// for p, so a host embedding unusually deep expressions can size its own
// vm.Machine via vm.New instead of relying on Compile's default sizing.
func (p *Program) MaxStackDepth() int {
	return p.prog.MaxDepth
}
