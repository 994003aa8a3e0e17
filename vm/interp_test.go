package vm

import (
	"testing"

	"github.com/zenbakiak/skillet/compiler"
)

// evalSrc parses and evaluates an expression for tests.
func evalSrc(t *testing.T, src string, vars map[string]Value) (Value, error) {
	t.Helper()
	expr, err := compiler.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	in := New(nil)
	return in.Eval(expr, NewEnvironmentFrom(vars))
}

// mustEval evaluates and fails the test on error.
func mustEval(t *testing.T, src string, vars map[string]Value) Value {
	t.Helper()
	v, err := evalSrc(t, src, vars)
	if err != nil {
		t.Fatalf("Eval(%q): %v", src, err)
	}
	return v
}

// wantNumber asserts a numeric result.
func wantNumber(t *testing.T, src string, vars map[string]Value, want float64) {
	t.Helper()
	v := mustEval(t, src, vars)
	n, ok := v.AsNumber()
	if !ok {
		t.Fatalf("Eval(%q) = %s, want a number", src, v.Kind())
	}
	if n != want {
		t.Errorf("Eval(%q) = %v, want %v", src, n, want)
	}
}

// wantErrKind asserts that evaluation fails with the given error kind.
func wantErrKind(t *testing.T, src string, vars map[string]Value, kind ErrKind) {
	t.Helper()
	_, err := evalSrc(t, src, vars)
	if err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return
		}
	}
	t.Errorf("Eval(%q): error = %v, want %v", src, err, kind)
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 4", 2.5},
		{"10 % 3", 1},
		{"2 ^ 10", 1024},
		{"-2^2", -4},
		{"2^3^2", 512},
		{"TRUE + 1", 2},
		{"7 % 2.5", 2},
	}
	for _, tc := range tests {
		wantNumber(t, tc.src, nil, tc.want)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	wantErrKind(t, "1 / 0", nil, ErrDivisionByZero)
	wantErrKind(t, "1 % 0", nil, ErrDivisionByZero)
}

func TestEvalCurrencyPropagates(t *testing.T) {
	v := mustEval(t, "(5::Currency) + 3", nil)
	if v.Kind() != KindCurrency {
		t.Fatalf("kind = %s, want Currency", v.Kind())
	}
	if v.Num() != 8 {
		t.Errorf("value = %v, want 8", v.Num())
	}
}

func TestEvalStringConcatenation(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"'foo' + 'bar'", "foobar"},
		{"'n=' + 42", "n=42"},
		{"1 + 'x'", "1x"},
	}
	for _, tc := range tests {
		v := mustEval(t, tc.src, nil)
		if v.Kind() != KindString || v.Str() != tc.want {
			t.Errorf("Eval(%q) = %v (%s), want %q", tc.src, v.Str(), v.Kind(), tc.want)
		}
	}
	wantErrKind(t, "'x' + [1]", nil, ErrType)
}

func TestEvalComparisons(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"1 < 2", true},
		{"2 <= 2", true},
		{"3 > 4", false},
		{"'abc' < 'abd'", true},
		{"'a' == 'a'", true},
		{"1 == TRUE", true},
		{"FALSE < TRUE", true},
		{"1 != 'one'", true},
		{"1 == 'one'", false},
	}
	for _, tc := range tests {
		v := mustEval(t, tc.src, nil)
		if v.Kind() != KindBoolean || v.Bool() != tc.want {
			t.Errorf("Eval(%q) = %v, want %v", tc.src, v, tc.want)
		}
	}
	wantErrKind(t, "'a' < 1", nil, ErrType)
}

func TestEvalLogicalShortCircuit(t *testing.T) {
	// The right-hand side would raise; short-circuiting skips it.
	v := mustEval(t, "FALSE AND (1/0 > 0)", nil)
	if v.Bool() {
		t.Error("FALSE AND _ = true, want false")
	}
	v = mustEval(t, "TRUE OR (1/0 > 0)", nil)
	if !v.Bool() {
		t.Error("TRUE OR _ = false, want true")
	}
}

func TestEvalTernarySelectsBranch(t *testing.T) {
	wantNumber(t, "1 > 0 ? 10 : 1/0", nil, 10)
	wantNumber(t, "1 < 0 ? 1/0 : 20", nil, 20)
}

func TestEvalVariables(t *testing.T) {
	vars := map[string]Value{"sales": NewNumber(5000)}
	wantNumber(t, ":sales / 2", vars, 2500)
	wantErrKind(t, ":missing", nil, ErrMissingVariable)
}

func TestEvalAssignmentSequence(t *testing.T) {
	expr, err := compiler.Parse(":a := 10; :b := 20; :a * :b")
	if err != nil {
		t.Fatal(err)
	}
	in := New(nil)
	env := NewEnvironment()
	v, err := in.Eval(expr, env)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := v.AsNumber(); n != 200 {
		t.Errorf("result = %v, want 200", n)
	}
	if a, ok := env.Get("a"); !ok || a.Num() != 10 {
		t.Errorf("env a = %v, want 10", a)
	}
	if b, ok := env.Get("b"); !ok || b.Num() != 20 {
		t.Errorf("env b = %v, want 20", b)
	}
}

func TestEvalIndexing(t *testing.T) {
	vars := map[string]Value{"a": NewArray([]Value{
		NewNumber(1), NewNumber(2), NewNumber(3),
	})}
	wantNumber(t, ":a[0]", vars, 1)
	wantNumber(t, ":a[-1]", vars, 3)

	// Out-of-range indexing yields Null, not an error.
	if v := mustEval(t, ":a[10]", vars); !v.IsNull() {
		t.Errorf(":a[10] = %v, want Null", v)
	}
	if v := mustEval(t, ":a[-10]", vars); !v.IsNull() {
		t.Errorf(":a[-10] = %v, want Null", v)
	}

	empty := map[string]Value{"a": NewArray(nil)}
	if v := mustEval(t, ":a[-1]", empty); !v.IsNull() {
		t.Errorf("[-1] on empty = %v, want Null", v)
	}

	wantErrKind(t, "'abc'[0]", nil, ErrIndex)
}

func TestEvalSlicing(t *testing.T) {
	vars := map[string]Value{"a": NewArray([]Value{
		NewNumber(1), NewNumber(2), NewNumber(3),
	})}
	tests := []struct {
		src  string
		want []float64
	}{
		{":a[1:2]", []float64{2}},
		{":a[:2]", []float64{1, 2}},
		{":a[1:]", []float64{2, 3}},
		{":a[-10:2]", []float64{1, 2}},
		{":a[2:1]", nil},
	}
	for _, tc := range tests {
		v := mustEval(t, tc.src, vars)
		if v.Kind() != KindArray {
			t.Fatalf("Eval(%q) kind = %s, want Array", tc.src, v.Kind())
		}
		items := v.Items()
		if len(items) != len(tc.want) {
			t.Errorf("Eval(%q) len = %d, want %d", tc.src, len(items), len(tc.want))
			continue
		}
		for i, want := range tc.want {
			if items[i].Num() != want {
				t.Errorf("Eval(%q)[%d] = %v, want %v", tc.src, i, items[i].Num(), want)
			}
		}
	}
}

func TestEvalSpread(t *testing.T) {
	vars := map[string]Value{"xs": NewArray([]Value{NewNumber(1), NewNumber(2)})}
	wantNumber(t, "SUM(...:xs, 10)", vars, 13)

	v := mustEval(t, "[...:xs, 9]", vars)
	if len(v.Items()) != 3 {
		t.Fatalf("array len = %d, want 3", len(v.Items()))
	}
	wantErrKind(t, "SUM(...5)", nil, ErrType)
}

func TestEvalObjectLiteralAndProperty(t *testing.T) {
	v := mustEval(t, "{name: 'x', n: 3}", nil)
	if v.Kind() != KindJson {
		t.Fatalf("kind = %s, want Json", v.Kind())
	}
	wantNumber(t, "{n: 3}.n + 1", nil, 4)
	wantErrKind(t, "{n: 3}.missing", nil, ErrEval)
	if v := mustEval(t, "{n: 3}&.missing", nil); !v.IsNull() {
		t.Errorf("safe missing property = %v, want Null", v)
	}
}

func TestEvalSafeNavigation(t *testing.T) {
	if v := mustEval(t, "null&.anything", nil); !v.IsNull() {
		t.Errorf("null&.anything = %v, want Null", v)
	}
	if v := mustEval(t, "null&.length()", nil); !v.IsNull() {
		t.Errorf("null&.length() = %v, want Null", v)
	}
	wantErrKind(t, "null.length()", nil, ErrNullMethod)
}

func TestEvalUnaryOperators(t *testing.T) {
	wantNumber(t, "-(3)", nil, -3)
	wantNumber(t, "+(3)", nil, 3)
	v := mustEval(t, "!0", nil)
	if !v.Bool() {
		t.Error("!0 = false, want true")
	}
	v = mustEval(t, "NOT 'text'", nil)
	if v.Bool() {
		t.Error("NOT 'text' = true, want false")
	}
	wantErrKind(t, "-'x'", nil, ErrType)
}

func TestCopyOnWriteScopes(t *testing.T) {
	parent := NewEnvironment()
	parent.Set("x", NewNumber(1))

	child := parent.Child()
	if v, _ := child.Get("x"); v.Num() != 1 {
		t.Fatal("child does not see parent binding")
	}

	child.Set("x", NewNumber(2))
	if v, _ := child.Get("x"); v.Num() != 2 {
		t.Error("child write not visible in child")
	}
	if v, _ := parent.Get("x"); v.Num() != 1 {
		t.Error("child write leaked into parent")
	}
}
