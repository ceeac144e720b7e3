// Package calculator implements the pure money math for the FairShare ledger:
// rounding to whole currency units and the constant-product pool quotes.
//
// All arithmetic runs on exact rationals (math/big.Rat) so that a previewed
// figure and the later committed figure agree exactly. The rounding direction
// is a fairness rule used everywhere: amounts owed by a payer round up, and
// amounts credited to a payee round down.
package calculator

import "math/big"

// RoundUpToNearest returns the smallest multiple of 1/unit that is >= x.
// With unit=1 this is the standard ceiling (halves round up).
func RoundUpToNearest(x *big.Rat, unit int64) *big.Rat {
	scaled := new(big.Rat).Mul(x, big.NewRat(unit, 1))
	return new(big.Rat).SetFrac(big.NewInt(ceilRat(scaled)), big.NewInt(unit))
}

// RoundDownToNearest returns the largest multiple of 1/unit that is <= x.
// With unit=1 this is the standard floor (halves round down).
func RoundDownToNearest(x *big.Rat, unit int64) *big.Rat {
	scaled := new(big.Rat).Mul(x, big.NewRat(unit, 1))
	return new(big.Rat).SetFrac(big.NewInt(floorRat(scaled)), big.NewInt(unit))
}

// CeilUnit rounds x up to a whole currency unit.
func CeilUnit(x *big.Rat) int64 {
	return ceilRat(x)
}

// FloorUnit rounds x down to a whole currency unit.
func FloorUnit(x *big.Rat) int64 {
	return floorRat(x)
}

func floorRat(x *big.Rat) int64 {
	// big.Rat keeps the denominator positive, so floored integer division
	// of numerator by denominator is the mathematical floor.
	q := new(big.Int).Div(x.Num(), x.Denom())
	return q.Int64()
}

func ceilRat(x *big.Rat) int64 {
	q, m := new(big.Int).DivMod(x.Num(), x.Denom(), new(big.Int))
	if m.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q.Int64()
}

// Rat builds a rational from a whole currency amount.
func Rat(amount int64) *big.Rat {
	return big.NewRat(amount, 1)
}
