package calculator

import (
	"math/big"
	"testing"
)

func TestSellQuote(t *testing.T) {
	noFee := new(big.Rat)
	tests := []struct {
		name                string
		in, inRes, outRes   int64
		fee                 *big.Rat
		want                int64
	}{
		{"balanced pool no fee", 1, 100, 100, noFee, 0},
		{"balanced pool larger trade", 10, 100, 100, noFee, 9},
		{"deep pool", 10, 10000, 10000, noFee, 9},
		{"fee reduces output", 11, 10000, 10000, big.NewRat(2, 100), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SellQuote(tt.in, tt.inRes, tt.outRes, tt.fee); got != tt.want {
				t.Errorf("SellQuote(%d, %d, %d) = %d, want %d", tt.in, tt.inRes, tt.outRes, got, tt.want)
			}
		})
	}
}

func TestBuyQuote(t *testing.T) {
	tests := []struct {
		name               string
		out, inRes, outRes int64
		fee                *big.Rat
		want               int64
	}{
		{"balanced pool no fee", 1, 100, 100, new(big.Rat), 2},
		{"deep pool with fee", 10, 10000, 10000, big.NewRat(2, 100), 11},
		{"source group certificate", 11, 10000, 10000, big.NewRat(1, 100), 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuyQuote(tt.out, tt.inRes, tt.outRes, tt.fee); got != tt.want {
				t.Errorf("BuyQuote(%d, %d, %d) = %d, want %d", tt.out, tt.inRes, tt.outRes, got, tt.want)
			}
		})
	}
}

// Buying back what a sale released recovers the original input within one
// rounding unit, up to the fee.
func TestBuySellInverse(t *testing.T) {
	fees := []*big.Rat{new(big.Rat), big.NewRat(3, 1000)}
	for _, fee := range fees {
		for _, x := range []int64{5, 17, 250} {
			inRes, outRes := int64(10000), int64(10000)
			out := SellQuote(x, inRes, outRes, fee)
			if out <= 0 {
				t.Fatalf("SellQuote(%d) = %d, want positive", x, out)
			}
			back := BuyQuote(out, inRes, outRes, fee)
			diff := back - x
			if diff < -1 {
				t.Errorf("fee %s: buy(sell(%d)) = %d, recovered too little", fee.RatString(), x, back)
			}
			// The fee is paid twice on the round trip; allow for it plus one
			// rounding unit in each direction.
			feeBound := CeilUnit(new(big.Rat).Mul(big.NewRat(2*x, 1), fee)) + 2
			if diff > feeBound {
				t.Errorf("fee %s: buy(sell(%d)) = %d, drift %d exceeds %d", fee.RatString(), x, back, diff, feeBound)
			}
		}
	}
}
