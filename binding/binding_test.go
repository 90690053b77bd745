package binding

import "testing"

func TestResolveHostShadowsBuiltin(t *testing.T) {
	host := Table{Val("pi", 3.0)}

	b, ok := Resolve(host, "pi")
	if !ok {
		t.Fatalf("expected to resolve pi")
	}
	if b.Value.Read() != 3.0 {
		t.Fatalf("expected host pi=3.0 to shadow the built-in, got %v", b.Value.Read())
	}
}

func TestResolveBuiltinFallback(t *testing.T) {
	b, ok := Resolve(nil, "sqrt")
	if !ok {
		t.Fatalf("expected to resolve sqrt from built-ins")
	}
	if b.Kind != Function || b.Arity != 1 {
		t.Fatalf("expected sqrt to be a 1-ary function, got %+v", b)
	}
	if b.FuncVal([]float64{16}) != 4 {
		t.Fatalf("expected sqrt(16) == 4")
	}
}

func TestResolveMiss(t *testing.T) {
	_, ok := Resolve(nil, "nope")
	if ok {
		t.Fatalf("expected resolution of an unbound name to fail")
	}
}

func TestResolveFirstMatchOnDuplicateNames(t *testing.T) {
	host := Table{Val("a", 1), Val("a", 2)}

	b, _ := Resolve(host, "a")
	if b.Value.Read() != 1 {
		t.Fatalf("expected the first duplicate binding to win, got %v", b.Value.Read())
	}
}

func TestVarReflectsMutation(t *testing.T) {
	v := 41.0
	host := Table{Var("a", &v)}

	b, _ := Resolve(host, "a")
	if b.Value.Read() != 41 {
		t.Fatalf("expected 41, got %v", b.Value.Read())
	}

	v = 42
	if b.Value.Read() != 42 {
		t.Fatalf("expected Cell to reflect mutation, got %v", b.Value.Read())
	}
}

func TestClosureForwardsContext(t *testing.T) {
	ctx := 100.0
	b := Clo("g", 1, &ctx, func(c any, args []float64) float64 {
		return *(c.(*float64)) + args[0]
	})

	got := b.ClosureVal(b.Context, []float64{1})
	if got != 101 {
		t.Fatalf("expected 101, got %v", got)
	}
}
