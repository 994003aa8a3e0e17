package vm

import "math"

// ---------------------------------------------------------------------------
// Financial builtins
// ---------------------------------------------------------------------------

// pmt computes the per-period payment for a loan with constant payments and
// rate. Sign follows the spreadsheet convention: the payment is negative
// for a positive present value.
func pmt(rate, nper, pv, fv float64, atBeginning bool) float64 {
	if rate == 0 {
		return -(pv + fv) / nper
	}
	pvif := math.Pow(1+rate, nper)
	annuity := (pvif - 1) / rate
	if atBeginning {
		annuity *= 1 + rate
	}
	return -(pv*pvif + fv) / annuity
}

func registerFinancialBuiltins() {
	registerBuiltin("PMT", 3, 5, func(args []Value) (Value, error) {
		rate, err := argNumber("PMT", args, 0)
		if err != nil {
			return Null, err
		}
		nper, err := argNumber("PMT", args, 1)
		if err != nil {
			return Null, err
		}
		pv, err := argNumber("PMT", args, 2)
		if err != nil {
			return Null, err
		}
		fv := 0.0
		if len(args) > 3 {
			if fv, err = argNumber("PMT", args, 3); err != nil {
				return Null, err
			}
		}
		typ := 0.0
		if len(args) > 4 {
			if typ, err = argNumber("PMT", args, 4); err != nil {
				return Null, err
			}
		}
		if nper <= 0 {
			return Null, newError(ErrEval, "PMT nper must be positive")
		}
		return NewNumber(pmt(rate, nper, pv, fv, typ != 0)), nil
	})

	// DB: fixed-declining-balance depreciation for one period.
	registerBuiltin("DB", 4, 5, func(args []Value) (Value, error) {
		cost, err := argNumber("DB", args, 0)
		if err != nil {
			return Null, err
		}
		salvage, err := argNumber("DB", args, 1)
		if err != nil {
			return Null, err
		}
		life, err := argNumber("DB", args, 2)
		if err != nil {
			return Null, err
		}
		period, err := argNumber("DB", args, 3)
		if err != nil {
			return Null, err
		}
		month := 12.0
		if len(args) > 4 {
			if month, err = argNumber("DB", args, 4); err != nil {
				return Null, err
			}
		}
		if cost < 0 || salvage < 0 || life <= 0 || period < 0 {
			return Null, newError(ErrEval, "DB arguments must be non-negative (life must be positive)")
		}
		if period > life {
			return NewNumber(0), nil
		}
		rate := 1 - math.Pow(salvage/cost, 1/life)
		if period == 1 {
			return NewNumber(cost * rate * month / 12), nil
		}
		bookValue := cost - cost*rate*month/12
		for p := 2; p <= int(period)-1; p++ {
			bookValue -= bookValue * rate
		}
		dep := bookValue * rate
		if int(period) == int(life) && month < 12 {
			dep = bookValue * rate * (12 - month) / 12
		}
		return NewNumber(math.Max(dep, 0)), nil
	})

	registerBuiltin("FV", 3, 5, func(args []Value) (Value, error) {
		rate, err := argNumber("FV", args, 0)
		if err != nil {
			return Null, err
		}
		nper, err := argNumber("FV", args, 1)
		if err != nil {
			return Null, err
		}
		payment, err := argNumber("FV", args, 2)
		if err != nil {
			return Null, err
		}
		pv := 0.0
		if len(args) > 3 {
			if pv, err = argNumber("FV", args, 3); err != nil {
				return Null, err
			}
		}
		typ := 0.0
		if len(args) > 4 {
			if typ, err = argNumber("FV", args, 4); err != nil {
				return Null, err
			}
		}
		if nper < 0 {
			return Null, newError(ErrEval, "FV nper must be non-negative")
		}
		if rate == 0 {
			return NewNumber(-pv - payment*nper), nil
		}
		compound := math.Pow(1+rate, nper)
		annuity := (compound - 1) / rate
		if typ != 0 {
			annuity *= 1 + rate
		}
		return NewNumber(-pv*compound - payment*annuity), nil
	})

	// IPMT: interest portion of the payment for a given period.
	registerBuiltin("IPMT", 4, 6, func(args []Value) (Value, error) {
		rate, err := argNumber("IPMT", args, 0)
		if err != nil {
			return Null, err
		}
		per, err := argNumber("IPMT", args, 1)
		if err != nil {
			return Null, err
		}
		nper, err := argNumber("IPMT", args, 2)
		if err != nil {
			return Null, err
		}
		pv, err := argNumber("IPMT", args, 3)
		if err != nil {
			return Null, err
		}
		fv := 0.0
		if len(args) > 4 {
			if fv, err = argNumber("IPMT", args, 4); err != nil {
				return Null, err
			}
		}
		typ := 0.0
		if len(args) > 5 {
			if typ, err = argNumber("IPMT", args, 5); err != nil {
				return Null, err
			}
		}
		if per < 1 || per > nper || nper <= 0 {
			return Null, newError(ErrEval, "IPMT period must be between 1 and nper")
		}
		if rate == 0 {
			return NewNumber(0), nil
		}
		atBeginning := typ != 0
		payment := pmt(rate, nper, pv, fv, atBeginning)
		balance := pv
		for p := 1; p < int(per); p++ {
			if atBeginning {
				balance = (balance + payment) * (1 + rate)
			} else {
				balance = balance*(1+rate) + payment
			}
		}
		if atBeginning {
			if per == 1 {
				return NewNumber(0), nil
			}
			return NewNumber(balance * rate / (1 + rate)), nil
		}
		return NewNumber(balance * rate), nil
	})
}
