package vm

import (
	"math"
	"testing"

	"github.com/skx/expr-machine/opcode"
)

func con(v float64) opcode.Op { return opcode.Op{Code: opcode.Con, Value: v} }

func TestArithmeticOpcodes(t *testing.T) {
	tests := []struct {
		name string
		prog []opcode.Op
		want float64
	}{
		{"add", []opcode.Op{con(1), con(2), {Code: opcode.Add}, {Code: opcode.Ret}}, 3},
		{"sub", []opcode.Op{con(5), con(2), {Code: opcode.Sub}, {Code: opcode.Ret}}, 3},
		{"mul", []opcode.Op{con(5), con(2), {Code: opcode.Mul}, {Code: opcode.Ret}}, 10},
		{"div", []opcode.Op{con(6), con(2), {Code: opcode.Div}, {Code: opcode.Ret}}, 3},
		{"neg", []opcode.Op{con(6), {Code: opcode.Neg}, {Code: opcode.Ret}}, -6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(&opcode.Program{Code: tt.prog})
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDivisionByZeroIsNotAnError(t *testing.T) {
	prog := &opcode.Program{Code: []opcode.Op{con(1), con(0), {Code: opcode.Div}, {Code: opcode.Ret}}}

	got, err := Eval(prog)
	if err != nil {
		t.Fatalf("division by zero must not be an error, got %s", err)
	}
	if !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf, got %v", got)
	}
}

func TestVarReadsCellAtEvalTime(t *testing.T) {
	v := 41.0
	cellRead := func() float64 { return v }

	prog := &opcode.Program{Code: []opcode.Op{
		{Code: opcode.Var, Cell: readerFunc(cellRead)},
		con(1),
		{Code: opcode.Add},
		{Code: opcode.Ret},
	}}

	got, err := Eval(prog)
	if err != nil || got != 42 {
		t.Fatalf("got %v, %v, want 42", got, err)
	}

	v = 99
	got, err = Eval(prog)
	if err != nil || got != 100 {
		t.Fatalf("expected second eval to reflect mutation: got %v, %v", got, err)
	}
}

type readerFunc func() float64

func (r readerFunc) Read() float64 { return r() }

func TestCallPopsArgsInLeftToRightOrder(t *testing.T) {
	var seen []float64
	fn := func(args []float64) float64 {
		seen = append([]float64{}, args...)
		return args[0] - args[1]
	}

	prog := &opcode.Program{Code: []opcode.Op{
		con(10), con(3),
		{Code: opcode.Call, Arity: 2, Fn: fn},
		{Code: opcode.Ret},
	}}

	got, err := Eval(prog)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got != 7 {
		t.Fatalf("got %v, want 7", got)
	}
	if len(seen) != 2 || seen[0] != 10 || seen[1] != 3 {
		t.Fatalf("expected args [10 3], got %v", seen)
	}
}

func TestCallClosurePrependsContext(t *testing.T) {
	ctx := 100.0
	fn := func(c any, args []float64) float64 {
		return *(c.(*float64)) + args[0]
	}

	prog := &opcode.Program{Code: []opcode.Op{
		con(1),
		{Code: opcode.CallClosure, Arity: 1, Closure: fn, Ctx: &ctx},
		{Code: opcode.Ret},
	}}

	got, err := Eval(prog)
	if err != nil || got != 101 {
		t.Fatalf("got %v, %v, want 101", got, err)
	}
}

func TestStackOverflow(t *testing.T) {
	m := New(2)

	prog := &opcode.Program{Code: []opcode.Op{con(1), con(2), con(3), {Code: opcode.Ret}}}

	_, err := m.Eval(prog)
	if err == nil {
		t.Fatalf("expected a stack-overflow error")
	}
}

func TestMalformedBytecodeMissingRet(t *testing.T) {
	prog := &opcode.Program{Code: []opcode.Op{con(1)}}

	_, err := Eval(prog)
	if err == nil {
		t.Fatalf("expected an error for a program that never returns")
	}
}

func TestMalformedBytecodeExtraValueAtRet(t *testing.T) {
	prog := &opcode.Program{Code: []opcode.Op{con(1), con(2), {Code: opcode.Ret}}}

	_, err := Eval(prog)
	if err == nil {
		t.Fatalf("expected an error when more than one value remains at Ret")
	}
}
