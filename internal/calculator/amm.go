package calculator

import "math/big"

// The pool pricing follows Uniswap V1: a trade must keep the product of the
// two reserves constant before the fee, and the fee stays in the reserves.
// SellQuote and BuyQuote are the two generic formulas; the Exchange builds
// its four named entry points (buy/sell x group-coin/reserve-currency) from
// them and is responsible for reserve checks and mutation.

// SellQuote answers how much of the output coin a seller receives for
// inputAmount of the input coin, fee included, rounded down (the pool never
// underpays itself).
//
//	out = floor(in * outReserve * (1-fee) / (inReserve + in*(1-fee)))
func SellQuote(inputAmount, inputReserve, outputReserve int64, fee *big.Rat) int64 {
	inverseFee := inverseFee(fee)
	in := Rat(inputAmount)
	numerator := new(big.Rat).Mul(new(big.Rat).Mul(in, Rat(outputReserve)), inverseFee)
	denominator := new(big.Rat).Add(Rat(inputReserve), new(big.Rat).Mul(in, inverseFee))
	return FloorUnit(new(big.Rat).Quo(numerator, denominator))
}

// BuyQuote answers how much of the input coin a buyer must pay to take
// outputAmount of the output coin out of the pool, fee included, rounded up
// (the payer never underpays the pool).
//
//	in = ceil(out * inReserve / ((outReserve - out) * (1-fee)))
//
// The caller must ensure outputAmount < outputReserve; the quote is undefined
// at or beyond the reserve.
func BuyQuote(outputAmount, inputReserve, outputReserve int64, fee *big.Rat) int64 {
	out := Rat(outputAmount)
	numerator := new(big.Rat).Mul(out, Rat(inputReserve))
	denominator := new(big.Rat).Mul(new(big.Rat).Sub(Rat(outputReserve), out), inverseFee(fee))
	return CeilUnit(new(big.Rat).Quo(numerator, denominator))
}

func inverseFee(fee *big.Rat) *big.Rat {
	return new(big.Rat).Sub(big.NewRat(1, 1), fee)
}
