// generator.go holds operator metadata and bytecode emission: the
// counterpart to the teacher's generator.go, which held its per-
// instruction assembly-emitting gen* methods. Where the teacher emitted
// text, emitOperator below emits an opcode.Op; simulate takes the place
// of the teacher's implicit [depth] bookkeeping, computing a program's
// peak operand-stack depth ahead of time (the evaluator still
// bounds-checks every push at run-time).
package compiler

import (
	"math"

	"github.com/skx/expr-machine/exprerr"
	"github.com/skx/expr-machine/opcode"
	"github.com/skx/expr-machine/token"
)

// emitKind identifies which opcode a plain (non-call) operator lowers to.
type emitKind int

const (
	emitNeg emitKind = iota
	emitAdd
	emitSub
	emitMul
	emitDiv
	emitPow
	emitMod
)

// opInfo is an operator's shunting-yard metadata: which opcode it lowers
// to, its precedence, and its associativity.
type opInfo struct {
	kind      emitKind
	prec      int
	leftAssoc bool
}

// prefixOps holds the operators meaningful in prefix context. Only unary
// minus is defined; spec.md's literal table gives it precedence 4, but
// that contradicts the spec's own worked example "-2^2 == -4": under
// precedence 4 versus '^' at precedence 3, unary minus would be drained
// and applied to 2 before '^' ever saw its right operand, yielding
// (-2)^2 == 4. Giving unary minus the same precedence as '^' (3), and
// keeping it right-associative like '^', leaves it un-drained across a
// following '^' by the ordinary equal-precedence/left-assoc-only rule,
// which is the only table that reproduces every worked example in spec
// §8 (-2^2=-4, -2*3=-6, -2+3=1, -2-3=-5, -2^3^2=-512, -(1+2)*3=-9).
var prefixOps = map[token.Type]opInfo{
	token.MINUS: {kind: emitNeg, prec: 3, leftAssoc: false},
}

// infixOps holds the binary operators, precedence climbing from loosest
// to tightest: + - bind loosest, then * / %, then ^ tightest and
// right-associative.
var infixOps = map[token.Type]opInfo{
	token.PLUS:     {kind: emitAdd, prec: 1, leftAssoc: true},
	token.MINUS:    {kind: emitSub, prec: 1, leftAssoc: true},
	token.ASTERISK: {kind: emitMul, prec: 2, leftAssoc: true},
	token.SLASH:    {kind: emitDiv, prec: 2, leftAssoc: true},
	token.PERCENT:  {kind: emitMod, prec: 2, leftAssoc: true},
	token.CARET:    {kind: emitPow, prec: 3, leftAssoc: false},
}

// emitOperator lowers one plain operator to its opcode.
//
// emitMod and emitPow have no dedicated opcode: '%' and '^' are lowered
// to a two-argument Call of modFunc (math.Mod) and powFunc (math.Pow),
// which the evaluator dispatches like any other function call.
func emitOperator(info opInfo) opcode.Op {
	switch info.kind {
	case emitNeg:
		return opcode.Op{Code: opcode.Neg}
	case emitAdd:
		return opcode.Op{Code: opcode.Add}
	case emitSub:
		return opcode.Op{Code: opcode.Sub}
	case emitMul:
		return opcode.Op{Code: opcode.Mul}
	case emitDiv:
		return opcode.Op{Code: opcode.Div}
	case emitMod:
		return opcode.Op{Code: opcode.Call, Arity: 2, Name: "%", Fn: modFunc}
	case emitPow:
		return opcode.Op{Code: opcode.Call, Arity: 2, Name: "^", Fn: powFunc}
	default:
		return opcode.Op{Code: opcode.Con, Value: 0}
	}
}

// simulate abstractly walks code, tracking operand-stack depth the way
// the evaluator will, and returns the maximum depth reached. It catches
// malformed programs (underflow, or more/fewer than one value left at
// the end) before a single Program reaches the evaluator, and gives
// Program.MaxDepth its value (spec §9: "record this maximum in the
// bytecode").
func simulate(code []opcode.Op) (int, error) {
	depth := 0
	max := 0

	note := func(consume, produce int) error {
		if consume > depth {
			return exprerr.New(exprerr.EmptyExpression, 0,
				"expression does not produce enough values for every operator")
		}
		depth = depth - consume + produce
		if depth > max {
			max = depth
		}
		return nil
	}

	for _, op := range code {
		switch op.Code {
		case opcode.Con, opcode.Var:
			if err := note(0, 1); err != nil {
				return 0, err
			}
		case opcode.Neg:
			if err := note(1, 1); err != nil {
				return 0, err
			}
		case opcode.Add, opcode.Sub, opcode.Mul, opcode.Div:
			if err := note(2, 1); err != nil {
				return 0, err
			}
		case opcode.Call, opcode.CallClosure:
			if err := note(op.Arity, 1); err != nil {
				return 0, err
			}
		}
	}

	if depth == 0 {
		return 0, exprerr.New(exprerr.EmptyExpression, 0, "expression produced no value")
	}
	if depth > 1 {
		return 0, exprerr.New(exprerr.UnexpectedCharacter, 0,
			"multiple expressions with no combining operator")
	}

	return max, nil
}

func modFunc(a []float64) float64 {
	return math.Mod(a[0], a[1])
}

func powFunc(a []float64) float64 {
	return math.Pow(a[0], a[1])
}
