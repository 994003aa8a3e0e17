package vm

import (
	"math"
	"sort"
)

// ---------------------------------------------------------------------------
// Statistical builtins
// ---------------------------------------------------------------------------

// statNumbers collects numeric leaves and fails on an empty range; the
// statistical functions have no meaningful result without observations.
func statNumbers(name string, args []Value) ([]float64, error) {
	nums := collectArgNumbers(args)
	if len(nums) == 0 {
		return nil, errf(ErrEval, "%s of empty range", name)
	}
	return nums, nil
}

// percentileInc is Excel's PERCENTILE.INC: linear interpolation between the
// two closest ranks of the sorted data.
func percentileInc(nums []float64, p float64) float64 {
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || hi >= len(sorted) {
		if lo > len(sorted)-1 {
			lo = len(sorted) - 1
		}
		return sorted[lo]
	}
	weight := rank - float64(lo)
	return sorted[lo]*(1-weight) + sorted[hi]*weight
}

func populationVariance(nums []float64) float64 {
	mean := 0.0
	for _, n := range nums {
		mean += n
	}
	mean /= float64(len(nums))
	acc := 0.0
	for _, n := range nums {
		d := n - mean
		acc += d * d
	}
	return acc / float64(len(nums))
}

func registerStatisticalBuiltins() {
	registerBuiltin("MEDIAN", 1, -1, func(args []Value) (Value, error) {
		nums, err := statNumbers("MEDIAN", args)
		if err != nil {
			return Null, err
		}
		sort.Float64s(nums)
		mid := len(nums) / 2
		if len(nums)%2 == 0 {
			return NewNumber((nums[mid-1] + nums[mid]) / 2), nil
		}
		return NewNumber(nums[mid]), nil
	})

	// MODE.SNGL returns the most frequent value; ties resolve to the value
	// seen first.
	registerBuiltin("MODE.SNGL", 1, -1, func(args []Value) (Value, error) {
		nums, err := statNumbers("MODE.SNGL", args)
		if err != nil {
			return Null, err
		}
		counts := make(map[float64]int, len(nums))
		firstSeen := make(map[float64]int, len(nums))
		for i, n := range nums {
			counts[n]++
			if _, ok := firstSeen[n]; !ok {
				firstSeen[n] = i
			}
		}
		best := nums[0]
		for n, c := range counts {
			bc := counts[best]
			if c > bc || (c == bc && firstSeen[n] < firstSeen[best]) {
				best = n
			}
		}
		return NewNumber(best), nil
	})

	registerBuiltin("STDEV.P", 1, -1, func(args []Value) (Value, error) {
		nums, err := statNumbers("STDEV.P", args)
		if err != nil {
			return Null, err
		}
		return NewNumber(math.Sqrt(populationVariance(nums))), nil
	})

	registerBuiltin("VAR.P", 1, -1, func(args []Value) (Value, error) {
		nums, err := statNumbers("VAR.P", args)
		if err != nil {
			return Null, err
		}
		return NewNumber(populationVariance(nums)), nil
	})

	// PERCENTILE.INC(values..., p): the percentile is the final argument.
	registerBuiltin("PERCENTILE.INC", 2, -1, func(args []Value) (Value, error) {
		p, ok := args[len(args)-1].AsNumber()
		if !ok {
			return Null, newError(ErrType, "PERCENTILE.INC percentile must be a number")
		}
		if p < 0 || p > 1 {
			return Null, newError(ErrEval, "percentile must be between 0 and 1")
		}
		nums, err := statNumbers("PERCENTILE.INC", args[:len(args)-1])
		if err != nil {
			return Null, err
		}
		return NewNumber(percentileInc(nums, p)), nil
	})

	// QUARTILE.INC(values..., q) with q in 0..4: 1=Q1, 2=median, 3=Q3.
	registerBuiltin("QUARTILE.INC", 2, -1, func(args []Value) (Value, error) {
		q, ok := args[len(args)-1].AsNumber()
		if !ok {
			return Null, newError(ErrType, "QUARTILE.INC quartile must be a number")
		}
		qi := int(q)
		if qi < 0 || qi > 4 {
			return Null, newError(ErrEval, "quartile must be 0-4")
		}
		nums, err := statNumbers("QUARTILE.INC", args[:len(args)-1])
		if err != nil {
			return Null, err
		}
		return NewNumber(percentileInc(nums, float64(qi)/4)), nil
	})
}
