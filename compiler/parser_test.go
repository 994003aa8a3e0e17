package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// astEqual compares trees ignoring the source positions baked into nodes.
func astEqual(t *testing.T, got, want Expr) {
	t.Helper()
	ignore := cmpopts.IgnoreFields(Assign{}, "Pos")
	opts := []cmp.Option{
		ignore,
		cmpopts.IgnoreFields(Unary{}, "Pos"),
		cmpopts.IgnoreFields(Binary{}, "Pos"),
		cmpopts.IgnoreFields(Call{}, "Pos"),
		cmpopts.IgnoreFields(MethodCall{}, "Pos"),
		cmpopts.IgnoreFields(PropertyAccess{}, "Pos"),
		cmpopts.IgnoreFields(Index{}, "Pos"),
		cmpopts.IgnoreFields(Slice{}, "Pos"),
		cmpopts.IgnoreFields(Spread{}, "Pos"),
		cmpopts.IgnoreFields(Cast{}, "Pos"),
	}
	if diff := cmp.Diff(want, got, opts...); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
}

func mustParse(t *testing.T, input string) Expr {
	t.Helper()
	expr, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return expr
}

func TestParsePrecedence(t *testing.T) {
	// 2 + 3 * 4 groups the multiplication first.
	astEqual(t, mustParse(t, "2 + 3 * 4"), &Binary{
		Op:  OpAdd,
		Lhs: &NumberLit{Value: 2},
		Rhs: &Binary{Op: OpMul, Lhs: &NumberLit{Value: 3}, Rhs: &NumberLit{Value: 4}},
	})
}

func TestParseUnaryBindsLooserThanPower(t *testing.T) {
	// -2^2 is -(2^2), the spreadsheet convention.
	astEqual(t, mustParse(t, "-2^2"), &Unary{
		Op: UnaryMinus,
		Operand: &Binary{
			Op:  OpPow,
			Lhs: &NumberLit{Value: 2},
			Rhs: &NumberLit{Value: 2},
		},
	})
}

func TestParsePowerRightAssociative(t *testing.T) {
	astEqual(t, mustParse(t, "2^3^2"), &Binary{
		Op:  OpPow,
		Lhs: &NumberLit{Value: 2},
		Rhs: &Binary{Op: OpPow, Lhs: &NumberLit{Value: 3}, Rhs: &NumberLit{Value: 2}},
	})
}

func TestParseTernaryRightAssociative(t *testing.T) {
	got := mustParse(t, "1 ? 2 : 3 ? 4 : 5")
	want := &Ternary{
		Cond: &NumberLit{Value: 1},
		Then: &NumberLit{Value: 2},
		Else: &Ternary{
			Cond: &NumberLit{Value: 3},
			Then: &NumberLit{Value: 4},
			Else: &NumberLit{Value: 5},
		},
	}
	astEqual(t, got, want)
}

func TestParseFunctionCallUppercasesName(t *testing.T) {
	astEqual(t, mustParse(t, "sum(1, 2)"), &Call{
		Name: "SUM",
		Args: []Expr{&NumberLit{Value: 1}, &NumberLit{Value: 2}},
	})
}

func TestParseVariableAndAssignment(t *testing.T) {
	astEqual(t, mustParse(t, ":a := 10; :a * 2"), &Sequence{Exprs: []Expr{
		&Assign{Name: "a", Value: &NumberLit{Value: 10}},
		&Binary{Op: OpMul, Lhs: &Variable{Name: "a"}, Rhs: &NumberLit{Value: 2}},
	}})
}

func TestParseMethodChain(t *testing.T) {
	got := mustParse(t, "[1,2].filter(:x > 1).sum()")
	want := &MethodCall{
		Target: &MethodCall{
			Target: &ArrayLit{Items: []Expr{&NumberLit{Value: 1}, &NumberLit{Value: 2}}},
			Name:   "filter",
			Args: []Expr{&Binary{
				Op:  OpGt,
				Lhs: &Variable{Name: "x"},
				Rhs: &NumberLit{Value: 1},
			}},
		},
		Name: "sum",
	}
	astEqual(t, got, want)
}

func TestParsePredicateMethod(t *testing.T) {
	astEqual(t, mustParse(t, "(5).even?"), &MethodCall{
		Target:    &NumberLit{Value: 5},
		Name:      "even",
		Predicate: true,
	})
}

func TestParseSafeNavigation(t *testing.T) {
	astEqual(t, mustParse(t, "null&.length()"), &MethodCall{
		Target: &NullLit{},
		Name:   "length",
		Safe:   true,
	})
	astEqual(t, mustParse(t, "null&.anything"), &PropertyAccess{
		Target: &NullLit{},
		Name:   "anything",
		Safe:   true,
	})
}

func TestParseIndexAndSlice(t *testing.T) {
	astEqual(t, mustParse(t, ":a[-1]"), &Index{
		Target: &Variable{Name: "a"},
		Idx:    &Unary{Op: UnaryMinus, Operand: &NumberLit{Value: 1}},
	})
	astEqual(t, mustParse(t, ":a[1:2]"), &Slice{
		Target: &Variable{Name: "a"},
		Start:  &NumberLit{Value: 1},
		End:    &NumberLit{Value: 2},
	})
	astEqual(t, mustParse(t, ":a[:2]"), &Slice{
		Target: &Variable{Name: "a"},
		End:    &NumberLit{Value: 2},
	})
	astEqual(t, mustParse(t, ":a[1:]"), &Slice{
		Target: &Variable{Name: "a"},
		Start:  &NumberLit{Value: 1},
	})
	// A ':' followed by an identifier inside brackets is a variable index,
	// not a slice.
	astEqual(t, mustParse(t, ":a[:i]"), &Index{
		Target: &Variable{Name: "a"},
		Idx:    &Variable{Name: "i"},
	})
}

func TestParseCast(t *testing.T) {
	astEqual(t, mustParse(t, "'42'::Integer"), &Cast{
		Target: &StringLit{Value: "42"},
		Type:   TypeInteger,
	})
	astEqual(t, mustParse(t, "1::currency"), &Cast{
		Target: &NumberLit{Value: 1},
		Type:   TypeCurrency,
	})
}

func TestParseSpread(t *testing.T) {
	astEqual(t, mustParse(t, "SUM(...:xs, 1)"), &Call{
		Name: "SUM",
		Args: []Expr{
			&Spread{Inner: &Variable{Name: "xs"}},
			&NumberLit{Value: 1},
		},
	})
	astEqual(t, mustParse(t, "[...:xs, 9]"), &ArrayLit{Items: []Expr{
		&Spread{Inner: &Variable{Name: "xs"}},
		&NumberLit{Value: 9},
	}})
}

func TestParseObjectLiteral(t *testing.T) {
	astEqual(t, mustParse(t, "{name: 'x', 'age': 3}"), &ObjectLit{Entries: []ObjectEntry{
		{Key: "name", Value: &StringLit{Value: "x"}},
		{Key: "age", Value: &NumberLit{Value: 3}},
	}})
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"2 +",
		"(1",
		"[1, 2",
		"{a 1}",
		"1 ? 2",
		"SUM(1,",
		"5 := 2",
		"foo",
		"1 2",
		":a[]",
		"'x'::Unknown",
	}

	for _, input := range tests {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q): expected error, got none", input)
		}
	}
}

func TestParseErrorCarriesOffset(t *testing.T) {
	_, err := Parse("1 + + ")
	if err == nil {
		t.Fatal("expected error")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if perr.Pos < 0 {
		t.Errorf("expected a byte offset, got %d", perr.Pos)
	}
}
