package exprerr

import "testing"

func TestErrorMessageIncludesPosition(t *testing.T) {
	err := New(UnknownIdentifier, 3, "identifier %q is not bound", "x")

	if err.Kind != UnknownIdentifier {
		t.Fatalf("expected Kind UnknownIdentifier, got %s", err.Kind)
	}
	if err.Pos != 3 {
		t.Fatalf("expected Pos 3, got %d", err.Pos)
	}
	want := `UnknownIdentifier at offset 3: identifier "x" is not bound`
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestRuntimeErrorHasNoPosition(t *testing.T) {
	err := Runtime(StackOverflow, "capacity %d exceeded", 32)

	want := "StackOverflow: capacity 32 exceeded"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	err := New(ArityMismatch, 0, "boom")

	if !Is(err, ArityMismatch) {
		t.Fatalf("expected Is to match ArityMismatch")
	}
	if Is(err, KindMismatch) {
		t.Fatalf("did not expect Is to match KindMismatch")
	}
	if Is(nil, ArityMismatch) {
		t.Fatalf("Is on a non *Error error should be false")
	}
}

func TestKindStringCoversAllValues(t *testing.T) {
	kinds := []Kind{
		UnexpectedCharacter, UnknownIdentifier, KindMismatch, ArityMismatch,
		UnbalancedParentheses, EmptyExpression, StackOverflow,
		InternalMalformedBytecode,
	}
	for _, k := range kinds {
		if k.String() == "Unknown" {
			t.Errorf("Kind %d has no String() case", k)
		}
	}
}
