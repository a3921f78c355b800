package router

import "testing"

func TestFlagsSetIsSet(t *testing.T) {
	var f Flags
	f = f.Set(FlagExit)
	if !f.IsSet(FlagExit) {
		t.Fatal("expected Exit to be set")
	}
}

func TestFlagsClearUnsets(t *testing.T) {
	var f Flags
	f = f.Set(FlagExit)
	f = f.Clear(FlagExit)
	if f.IsSet(FlagExit) {
		t.Fatal("expected Exit to be cleared")
	}
}

func TestFlagsOrIsUnionOfIsSet(t *testing.T) {
	a := Flags(0).Set(FlagFast)
	b := Flags(0).Set(FlagGuard)
	u := a.Or(b)
	if !u.IsSet(FlagFast) || !u.IsSet(FlagGuard) {
		t.Fatalf("or() should be set for both bits: %s", u)
	}
	if u.IsSet(FlagExit) {
		t.Fatal("or() should not set unrelated bits")
	}
}

func TestFlagsAndIsIntersection(t *testing.T) {
	a := Flags(0).Set(FlagFast).Set(FlagGuard)
	b := Flags(0).Set(FlagGuard)
	i := a.And(b)
	if !i.IsSet(FlagGuard) || i.IsSet(FlagFast) {
		t.Fatalf("and() = %s, want only Guard", i)
	}
}

func TestParseFlagsUnknownTokenErrors(t *testing.T) {
	if _, err := ParseFlags("Running Bogus"); err == nil {
		t.Fatal("expected error for unknown flag token")
	}
}

func TestParseFlagsOrderIndependentOfInput(t *testing.T) {
	f, err := ParseFlags("Valid Running Fast")
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	want := "Fast|Running|Valid"
	if got := f.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
