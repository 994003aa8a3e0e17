package vm

import (
	"math"

	"github.com/zenbakiak/skillet/compiler"
)

// ---------------------------------------------------------------------------
// Binary operator semantics
// ---------------------------------------------------------------------------

// stringifiable reports whether a value may ride along in '+' string
// concatenation.
func stringifiable(v Value) bool {
	switch v.Kind() {
	case KindString, KindNumber, KindCurrency, KindBoolean, KindDateTime:
		return true
	}
	return false
}

// evalArithmetic applies + - * / % ^ with the numeric coercion rules:
// Boolean widens to 0/1, Currency propagates, and '+' concatenates when a
// String is involved.
func evalArithmetic(op compiler.BinaryOp, a, b Value) (Value, error) {
	if op == compiler.OpAdd && (a.Kind() == KindString || b.Kind() == KindString) {
		if !stringifiable(a) || !stringifiable(b) {
			return Null, errf(ErrType, "'+' not supported between %s and %s", a.Kind(), b.Kind())
		}
		return NewString(a.Format() + b.Format()), nil
	}

	an, ok := a.Numeric()
	if !ok {
		return Null, errf(ErrType, "arithmetic on %s", a.Kind())
	}
	bn, ok := b.Numeric()
	if !ok {
		return Null, errf(ErrType, "arithmetic on %s", b.Kind())
	}

	var n float64
	switch op {
	case compiler.OpAdd:
		n = an + bn
	case compiler.OpSub:
		n = an - bn
	case compiler.OpMul:
		n = an * bn
	case compiler.OpDiv:
		if bn == 0 {
			return Null, newError(ErrDivisionByZero, "division by zero")
		}
		n = an / bn
	case compiler.OpMod:
		if bn == 0 {
			return Null, newError(ErrDivisionByZero, "modulo by zero")
		}
		n = math.Mod(an, bn)
	case compiler.OpPow:
		n = math.Pow(an, bn)
	}

	if a.Kind() == KindCurrency || b.Kind() == KindCurrency {
		return NewCurrency(n), nil
	}
	return NewNumber(n), nil
}

// evalComparison applies == != < <= > >=. Numeric kinds compare
// numerically, strings lexicographically, DateTimes by timestamp. Ordering
// across incompatible kinds is a type error; equality is simply false.
func evalComparison(op compiler.BinaryOp, a, b Value) (Value, error) {
	var cmp int
	comparable := false

	if an, ok := a.Numeric(); ok {
		if bn, ok := b.Numeric(); ok {
			comparable = true
			switch {
			case an < bn:
				cmp = -1
			case an > bn:
				cmp = 1
			}
		}
	} else if a.Kind() == KindString && b.Kind() == KindString {
		comparable = true
		switch {
		case a.Str() < b.Str():
			cmp = -1
		case a.Str() > b.Str():
			cmp = 1
		}
	} else if a.Kind() == KindDateTime && b.Kind() == KindDateTime {
		comparable = true
		switch {
		case a.Timestamp() < b.Timestamp():
			cmp = -1
		case a.Timestamp() > b.Timestamp():
			cmp = 1
		}
	}

	switch op {
	case compiler.OpEq:
		if comparable {
			return NewBool(cmp == 0), nil
		}
		return NewBool(ValuesEqual(a, b)), nil
	case compiler.OpNe:
		if comparable {
			return NewBool(cmp != 0), nil
		}
		return NewBool(!ValuesEqual(a, b)), nil
	}

	if !comparable {
		return Null, errf(ErrType, "cannot compare %s with %s", a.Kind(), b.Kind())
	}
	switch op {
	case compiler.OpLt:
		return NewBool(cmp < 0), nil
	case compiler.OpLe:
		return NewBool(cmp <= 0), nil
	case compiler.OpGt:
		return NewBool(cmp > 0), nil
	case compiler.OpGe:
		return NewBool(cmp >= 0), nil
	}
	return Null, newError(ErrEval, "unknown comparison operator")
}
