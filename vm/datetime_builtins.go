package vm

import (
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Date/time builtins
// ---------------------------------------------------------------------------

func argDateTime(name string, args []Value, i int) (time.Time, error) {
	if args[i].Kind() != KindDateTime {
		return time.Time{}, errf(ErrType, "%s expects a datetime, got %s", name, args[i].Kind())
	}
	return time.Unix(args[i].Timestamp(), 0).UTC(), nil
}

// clampDay adjusts a day-of-month to the length of the target month; month
// arithmetic never rolls into the next month.
func clampDay(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

// shiftMonths moves a timestamp by whole months, clamping the day.
func shiftMonths(t time.Time, months int) time.Time {
	total := int(t.Month()) - 1 + months
	year := t.Year() + total/12
	m := total % 12
	if m < 0 {
		m += 12
		year--
	}
	month := time.Month(m + 1)
	day := clampDay(year, month, t.Day())
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func registerDateTimeBuiltins() {
	registerBuiltin("NOW", 0, 0, func(args []Value) (Value, error) {
		return NewDateTime(time.Now().Unix()), nil
	})

	// DATE() is today at midnight UTC; DATE(y, m, d) constructs a date.
	registerBuiltin("DATE", 0, 3, func(args []Value) (Value, error) {
		switch len(args) {
		case 0:
			now := time.Now().UTC()
			midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			return NewDateTime(midnight.Unix()), nil
		case 3:
			y, err := argNumber("DATE", args, 0)
			if err != nil {
				return Null, err
			}
			m, err := argNumber("DATE", args, 1)
			if err != nil {
				return Null, err
			}
			d, err := argNumber("DATE", args, 2)
			if err != nil {
				return Null, err
			}
			t := time.Date(int(y), time.Month(int(m)), int(d), 0, 0, 0, 0, time.UTC)
			return NewDateTime(t.Unix()), nil
		}
		return Null, newError(ErrArity, "DATE expects 0 or 3 arguments")
	})

	// TIME() is seconds since midnight now; TIME(h, m, s) constructs one.
	registerBuiltin("TIME", 0, 3, func(args []Value) (Value, error) {
		switch len(args) {
		case 0:
			now := time.Now().UTC()
			return NewNumber(float64(now.Hour()*3600 + now.Minute()*60 + now.Second())), nil
		case 3:
			h, err := argNumber("TIME", args, 0)
			if err != nil {
				return Null, err
			}
			m, err := argNumber("TIME", args, 1)
			if err != nil {
				return Null, err
			}
			s, err := argNumber("TIME", args, 2)
			if err != nil {
				return Null, err
			}
			return NewNumber(h*3600 + m*60 + s), nil
		}
		return Null, newError(ErrArity, "TIME expects 0 or 3 arguments")
	})

	registerBuiltin("YEAR", 1, 1, func(args []Value) (Value, error) {
		t, err := argDateTime("YEAR", args, 0)
		if err != nil {
			return Null, err
		}
		return NewNumber(float64(t.Year())), nil
	})

	registerBuiltin("MONTH", 1, 1, func(args []Value) (Value, error) {
		t, err := argDateTime("MONTH", args, 0)
		if err != nil {
			return Null, err
		}
		return NewNumber(float64(int(t.Month()))), nil
	})

	registerBuiltin("DAY", 1, 1, func(args []Value) (Value, error) {
		t, err := argDateTime("DAY", args, 0)
		if err != nil {
			return Null, err
		}
		return NewNumber(float64(t.Day())), nil
	})

	registerBuiltin("DATEADD", 3, 3, func(args []Value) (Value, error) {
		t, err := argDateTime("DATEADD", args, 0)
		if err != nil {
			return Null, err
		}
		amount, err := argNumber("DATEADD", args, 1)
		if err != nil {
			return Null, err
		}
		unit, err := argString("DATEADD", args, 2)
		if err != nil {
			return Null, err
		}
		n := int64(amount)
		var out time.Time
		switch strings.ToLower(unit) {
		case "seconds", "second", "s":
			out = t.Add(time.Duration(n) * time.Second)
		case "minutes", "minute", "m":
			out = t.Add(time.Duration(n) * time.Minute)
		case "hours", "hour", "h":
			out = t.Add(time.Duration(n) * time.Hour)
		case "days", "day", "d":
			out = t.Add(time.Duration(n) * 24 * time.Hour)
		case "weeks", "week", "w":
			out = t.Add(time.Duration(n) * 7 * 24 * time.Hour)
		case "months", "month":
			out = shiftMonths(t, int(n))
		case "years", "year", "y":
			year := t.Year() + int(n)
			day := clampDay(year, t.Month(), t.Day())
			out = time.Date(year, t.Month(), day, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
		default:
			return Null, errf(ErrEval, "DATEADD unit must be one of: seconds, minutes, hours, days, weeks, months, years")
		}
		return NewDateTime(out.Unix()), nil
	})

	registerBuiltin("DATEDIFF", 3, 3, func(args []Value) (Value, error) {
		a, err := argDateTime("DATEDIFF", args, 0)
		if err != nil {
			return Null, err
		}
		b, err := argDateTime("DATEDIFF", args, 1)
		if err != nil {
			return Null, err
		}
		unit, err := argString("DATEDIFF", args, 2)
		if err != nil {
			return Null, err
		}
		d := b.Sub(a)
		var diff float64
		switch strings.ToLower(unit) {
		case "seconds", "second", "s":
			diff = float64(int64(d.Seconds()))
		case "minutes", "minute", "m":
			diff = float64(int64(d.Minutes()))
		case "hours", "hour", "h":
			diff = float64(int64(d.Hours()))
		case "days", "day", "d":
			diff = float64(int64(d.Hours() / 24))
		case "weeks", "week", "w":
			diff = float64(int64(d.Hours() / (24 * 7)))
		case "months", "month":
			diff = float64((b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month()))
		case "years", "year", "y":
			diff = float64(b.Year() - a.Year())
		default:
			return Null, errf(ErrEval, "DATEDIFF unit must be one of: seconds, minutes, hours, days, weeks, months, years")
		}
		return NewNumber(diff), nil
	})
}
