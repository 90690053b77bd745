// Package compiler turns an infix expression into a compact bytecode
// program, using precedence-climbing / shunting-yard with a prefix/infix
// mode flag (spec §4.3).
//
// This keeps the teacher's compiler.go/generator.go split and its
// "orchestration here, per-operator emission there" shape, and its
// public-API convention of exposing New and Compile with everything else
// an implementation detail. What changed: the teacher's engine only ever
// walked pre-formed RPN ("3 4 +") token-by-token with no operator stack,
// no precedence, and no parentheses; this one adds the operator stack, the
// prefix-context flag, and per-call argument-count tracking needed to
// compile real infix text with function and closure calls.
package compiler

import (
	"strconv"

	"github.com/skx/expr-machine/binding"
	"github.com/skx/expr-machine/exprerr"
	"github.com/skx/expr-machine/lexer"
	"github.com/skx/expr-machine/opcode"
	"github.com/skx/expr-machine/stack"
	"github.com/skx/expr-machine/token"
)

// Compiler holds our object-state for one compilation.
type Compiler struct {
	lex      *lexer.Lexer
	bindings binding.Table

	// cur is the token currently under consideration; step() consumes
	// it and advances before returning control to Compile's loop.
	cur token.Token

	// code is the bytecode emitted so far.
	code []opcode.Op

	// ops is the shunting-yard operator stack: pending operators, call
	// operators, and paren sentinels.
	ops *stack.Stack[*entry]

	// prefixContext is true wherever an expression (not a binary
	// operator) is expected next; it is what disambiguates a '-' token
	// as unary negation versus subtraction (spec glossary: "prefix
	// context").
	prefixContext bool
}

// New creates a compiler for the given expression and host bindings.
func New(input string, bindings binding.Table) *Compiler {
	return &Compiler{
		lex:           lexer.New(input),
		bindings:      bindings,
		ops:           stack.New[*entry](),
		prefixContext: true,
	}
}

// Compile lexes and parses the expression, returning the bytecode
// program. Our public API is New and Compile; the rest is an
// implementation detail.
func (c *Compiler) Compile() (*opcode.Program, error) {
	if err := c.advance(); err != nil {
		return nil, err
	}

	for c.cur.Type != token.EOF {
		if err := c.step(); err != nil {
			return nil, err
		}
	}

	if err := c.drainAll(); err != nil {
		return nil, err
	}

	maxDepth, err := simulate(c.code)
	if err != nil {
		return nil, err
	}

	c.code = append(c.code, opcode.Op{Code: opcode.Ret})
	return &opcode.Program{Code: c.code, MaxDepth: maxDepth}, nil
}

// advance pulls the next token from the lexer into c.cur.
func (c *Compiler) advance() error {
	tok, err := c.lex.Next()
	if err != nil {
		return err
	}
	c.cur = tok
	return nil
}

// step consumes exactly one logical token, per spec §4.3's per-token rules.
func (c *Compiler) step() error {
	switch c.cur.Type {

	case token.IDENT:
		return c.identifier()

	case token.LPAREN:
		c.ops.Push(&entry{isParen: true, args: &argCount{}})
		c.prefixContext = true
		return c.advance()

	case token.COMMA:
		if err := c.drainToParen(); err != nil {
			return err
		}
		top, _ := c.ops.Peek()
		if top.args.forCall {
			top.args.count++
		}
		c.prefixContext = true
		return c.advance()

	case token.RPAREN:
		return c.closeParen()

	case token.NUMBER:
		v, err := strconv.ParseFloat(c.cur.Literal, 64)
		if err != nil {
			return exprerr.New(exprerr.UnexpectedCharacter, c.cur.Pos,
				"malformed numeric literal %q", c.cur.Literal)
		}
		c.code = append(c.code, opcode.Op{Code: opcode.Con, Value: v})
		c.prefixContext = false
		return c.advance()

	default:
		return c.operatorToken()
	}
}

// identifier handles a bare name: either a value reference, or the start
// of a call if immediately followed by '(' (spec §4.3 rule 1).
func (c *Compiler) identifier() error {
	name := c.cur.Literal
	pos := c.cur.Pos

	b, ok := binding.Resolve(c.bindings, name)
	if !ok {
		return exprerr.New(exprerr.UnknownIdentifier, pos, "no binding named %q", name)
	}

	if c.lex.PeekNonSpace() == '(' {
		if b.Kind == binding.Value {
			return exprerr.New(exprerr.KindMismatch, pos, "%q is a value, not callable", name)
		}

		c.ops.Push(&entry{isCall: true, call: callInfo{name: name, pos: pos, binding: b}})

		if err := c.advance(); err != nil { // consume IDENT, land on '('
			return err
		}
		if err := c.advance(); err != nil { // consume '('
			return err
		}

		ac := &argCount{forCall: true}
		if c.cur.Type == token.RPAREN {
			ac.empty = true
		} else {
			ac.count = 1
		}
		c.ops.Push(&entry{isParen: true, args: ac})
		c.prefixContext = true
		return nil
	}

	if b.Kind != binding.Value {
		return exprerr.New(exprerr.KindMismatch, pos, "%q is a function/closure, not a value", name)
	}

	c.code = append(c.code, opcode.Op{Code: opcode.Var, Cell: b.Value, Name: name})
	c.prefixContext = false
	return c.advance()
}

// closeParen handles a ')': drain to the matching sentinel, discard it,
// and if it closed a call, diagnose arity and emit Call/CallClosure
// (spec §4.3 rule 4, §9 arity diagnosis).
func (c *Compiler) closeParen() error {
	if err := c.drainToParen(); err != nil {
		return err
	}

	sentinel, _ := c.ops.Pop()

	if top, ok := c.ops.Peek(); ok && top.isCall {
		call, _ := c.ops.Pop()

		arity := sentinel.args.count
		if sentinel.args.empty {
			arity = 0
		}
		if arity != call.call.binding.Arity {
			return exprerr.New(exprerr.ArityMismatch, call.call.pos,
				"%q expects %d argument(s), got %d", call.call.name, call.call.binding.Arity, arity)
		}

		b := call.call.binding
		if b.Kind == binding.Closure {
			c.code = append(c.code, opcode.Op{
				Code: opcode.CallClosure, Arity: arity, Closure: b.ClosureVal, Ctx: b.Context, Name: b.Name,
			})
		} else {
			c.code = append(c.code, opcode.Op{
				Code: opcode.Call, Arity: arity, Fn: b.FuncVal, Name: b.Name,
			})
		}
	}

	c.prefixContext = false
	return c.advance()
}

// drainToParen pops and emits operators until the nearest paren sentinel,
// which it leaves on the stack for the caller to deal with.
func (c *Compiler) drainToParen() error {
	for {
		top, ok := c.ops.Peek()
		if !ok {
			return exprerr.New(exprerr.UnbalancedParentheses, c.cur.Pos,
				"',' or ')' with no matching '('")
		}
		if top.isParen {
			return nil
		}
		c.ops.Pop()
		c.code = append(c.code, emitOperator(top.op))
	}
}

// operatorToken handles an operator symbol: resolve it against the
// prefix or infix table depending on mode, then apply the shunting-yard
// drain-then-push discipline (spec §4.3 rule 5).
func (c *Compiler) operatorToken() error {
	pos := c.cur.Pos

	var info opInfo
	var found bool

	if c.prefixContext {
		info, found = prefixOps[c.cur.Type]
	}
	if !found {
		info, found = infixOps[c.cur.Type]
	}
	if !found {
		return exprerr.New(exprerr.UnexpectedCharacter, pos, "unexpected operator %q", c.cur.Type)
	}

	for {
		top, ok := c.ops.Peek()
		if !ok || !shouldPop(top, info) {
			break
		}
		c.ops.Pop()
		c.code = append(c.code, emitOperator(top.op))
	}
	c.ops.Push(&entry{op: info})

	c.prefixContext = true
	return c.advance()
}

// shouldPop implements spec §4.3's drain discipline: the top of the
// operator stack is popped before a new operator is pushed iff it is not
// a paren sentinel, and either it is a call operator, or its precedence
// is strictly higher, or it ties and is left-associative.
func shouldPop(top *entry, new opInfo) bool {
	if top.isParen {
		return false
	}
	if top.isCall {
		return true
	}
	if top.op.prec > new.prec {
		return true
	}
	return top.op.prec == new.prec && top.op.leftAssoc
}

// drainAll empties the operator stack at end-of-input (spec §4.3
// "End-of-input"). Any remaining paren sentinel means an unmatched '('.
func (c *Compiler) drainAll() error {
	for {
		top, ok := c.ops.Pop()
		if !ok {
			return nil
		}
		if top.isParen {
			return exprerr.New(exprerr.UnbalancedParentheses, c.cur.Pos, "missing ')'")
		}
		c.code = append(c.code, emitOperator(top.op))
	}
}

// entry is one item on the operator stack: a pending operator, a call
// operator, or a paren sentinel (plain or call-opening).
type entry struct {
	isParen bool
	isCall  bool

	op   opInfo
	call callInfo
	args *argCount // non-nil only when isParen
}

type callInfo struct {
	name    string
	pos     int
	binding binding.Binding
}

// argCount tracks how many comma-separated arguments a call's parenthesis
// has seen, so arity can be diagnosed at compile time instead of
// surfacing as a runtime stack-depth violation (spec §9 Open Question,
// resolved: "implementers MUST diagnose arity").
type argCount struct {
	forCall bool
	empty   bool
	count   int
}
