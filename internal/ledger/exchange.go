package ledger

import (
	"math/big"

	"github.com/mmynk/fairshare/internal/calculator"
)

// Mode selects whether an operation only computes its figures or also
// mutates ledger state. Preview and commit run the same validation and
// arithmetic; commit mutates exactly once, after every check has passed.
type Mode int

const (
	Preview Mode = iota
	Commit
)

func (m Mode) String() string {
	if m == Commit {
		return "commit"
	}
	return "preview"
}

// Exchange is a group's constant-product pool of (group coin, reserve
// currency). Trades keep the product of the reserves non-decreasing: the fee
// and every rounding remainder stay in the reserves. Portions track each
// investor's pro-rata fractional claim on the pool as exact rationals.
//
// The exchange does no locking of its own; the owning group's mutex covers
// every check-then-mutate sequence.
type Exchange struct {
	GroupCoinReserve       int64
	ReserveCurrencyReserve int64

	fee      *big.Rat // fraction, e.g. 2% is 1/50
	portions map[string]*big.Rat
}

// NewExchange creates a pool with the given whole-unit reserves and fee
// fraction. The founding members, if any, start with even portions.
func NewExchange(groupCoinReserve, reserveCurrencyReserve int64, fee *big.Rat, founders []string) *Exchange {
	portions := make(map[string]*big.Rat)
	if n := int64(len(founders)); n > 0 {
		for _, key := range founders {
			portions[key] = big.NewRat(1, n)
		}
	}
	return &Exchange{
		GroupCoinReserve:       groupCoinReserve,
		ReserveCurrencyReserve: reserveCurrencyReserve,
		fee:                    fee,
		portions:               portions,
	}
}

// checkReserves rejects any trade whose required output meets or exceeds the
// available counterpart reserve. Allowing output == reserve would zero a
// reserve and break the next quote's division.
func (e *Exchange) checkReserves(inputAmount, outputAmount, reserve int64, reserveCurrency bool) error {
	if outputAmount >= reserve {
		return &InsufficientReservesError{
			InputAmount:     inputAmount,
			OutputAmount:    outputAmount,
			Reserve:         reserve,
			ReserveCurrency: reserveCurrency,
		}
	}
	return nil
}

// QuoteSellGroupCoin answers the reserve currency released by selling amount
// of group coin, without mutating the pool.
func (e *Exchange) QuoteSellGroupCoin(amount int64) (int64, error) {
	out := calculator.SellQuote(amount, e.GroupCoinReserve, e.ReserveCurrencyReserve, e.fee)
	if err := e.checkReserves(amount, out, e.ReserveCurrencyReserve, true); err != nil {
		return 0, err
	}
	return out, nil
}

// SellGroupCoin commits a sale of amount group coin into the pool, answering
// the reserve currency released.
func (e *Exchange) SellGroupCoin(amount int64) (int64, error) {
	out, err := e.QuoteSellGroupCoin(amount)
	if err != nil {
		return 0, err
	}
	e.GroupCoinReserve += amount
	e.ReserveCurrencyReserve -= out
	return out, nil
}

// QuoteSellReserveCurrency answers the group coin released by selling amount
// of reserve currency, without mutating the pool.
func (e *Exchange) QuoteSellReserveCurrency(amount int64) (int64, error) {
	out := calculator.SellQuote(amount, e.ReserveCurrencyReserve, e.GroupCoinReserve, e.fee)
	if err := e.checkReserves(amount, out, e.GroupCoinReserve, false); err != nil {
		return 0, err
	}
	return out, nil
}

// SellReserveCurrency commits a sale of amount reserve currency into the
// pool, answering the group coin released.
func (e *Exchange) SellReserveCurrency(amount int64) (int64, error) {
	out, err := e.QuoteSellReserveCurrency(amount)
	if err != nil {
		return 0, err
	}
	e.ReserveCurrencyReserve += amount
	e.GroupCoinReserve -= out
	return out, nil
}

// QuoteBuyGroupCoin answers the reserve currency required to take amount of
// group coin out of the pool, without mutating it.
func (e *Exchange) QuoteBuyGroupCoin(amount int64) (int64, error) {
	if err := e.checkReserves(0, amount, e.GroupCoinReserve, false); err != nil {
		return 0, err
	}
	return calculator.BuyQuote(amount, e.ReserveCurrencyReserve, e.GroupCoinReserve, e.fee), nil
}

// BuyGroupCoin commits a purchase of amount group coin, answering the
// reserve currency paid in.
func (e *Exchange) BuyGroupCoin(amount int64) (int64, error) {
	in, err := e.QuoteBuyGroupCoin(amount)
	if err != nil {
		return 0, err
	}
	e.ReserveCurrencyReserve += in
	e.GroupCoinReserve -= amount
	return in, nil
}

// QuoteBuyReserveCurrency answers the group coin required to take amount of
// reserve currency out of the pool, without mutating it.
func (e *Exchange) QuoteBuyReserveCurrency(amount int64) (int64, error) {
	if err := e.checkReserves(0, amount, e.ReserveCurrencyReserve, true); err != nil {
		return 0, err
	}
	return calculator.BuyQuote(amount, e.GroupCoinReserve, e.ReserveCurrencyReserve, e.fee), nil
}

// BuyReserveCurrency commits a purchase of amount reserve currency, answering
// the group coin paid in.
func (e *Exchange) BuyReserveCurrency(amount int64) (int64, error) {
	in, err := e.QuoteBuyReserveCurrency(amount)
	if err != nil {
		return 0, err
	}
	e.ReserveCurrencyReserve -= amount
	e.GroupCoinReserve += in
	return in, nil
}

// GroupCoinAmount answers the group coin proportional to a reserve currency
// amount at the current pool ratio, before any fee or rounding.
func (e *Exchange) GroupCoinAmount(reserveCurrencyAmount int64) *big.Rat {
	return new(big.Rat).Mul(
		calculator.Rat(e.GroupCoinReserve),
		big.NewRat(reserveCurrencyAmount, e.ReserveCurrencyReserve),
	)
}

// Portion answers the user's fractional claim on the pool (zero if none).
func (e *Exchange) Portion(user string) *big.Rat {
	if p, ok := e.portions[user]; ok {
		return new(big.Rat).Set(p)
	}
	return new(big.Rat)
}

// PortionReserves answers the user's floored pro-rata share of each reserve.
func (e *Exchange) PortionReserves(user string) (groupCoin, reserveCurrency int64) {
	p := e.Portion(user)
	groupCoin = calculator.FloorUnit(new(big.Rat).Mul(p, calculator.Rat(e.GroupCoinReserve)))
	reserveCurrency = calculator.FloorUnit(new(big.Rat).Mul(p, calculator.Rat(e.ReserveCurrencyReserve)))
	return
}

// InvestResult carries the figures of an invest or withdraw, with the pool
// and portion reserves as they stood before the trade.
type InvestResult struct {
	Cost                          int64 `json:"cost"`
	TotalGroupCoinReserve         int64 `json:"totalGroupCoinReserve"`
	TotalReserveCurrencyReserve   int64 `json:"totalReserveCurrencyReserve"`
	PortionGroupCoinReserve       int64 `json:"portionGroupCoinReserve"`
	PortionReserveCurrencyReserve int64 `json:"portionReserveCurrencyReserve"`
}

// Invest adds (amount > 0) or removes (amount < 0) reserve currency together
// with the proportional group coin. The group-coin cost is
// ceil(groupCoinReserve * amount / reserveCurrencyReserve); a withdrawal
// additionally pays the pool fee on the group-coin side, which stays in the
// reserves. Investing is free.
//
// A withdrawal may not exceed the user's floored portion of either reserve,
// even when the pool as a whole could cover it. On commit every portion is
// rescaled to the new reserve-currency total, then the actor's portion is
// recomputed from their floored pre-trade share plus the signed amount.
func (e *Exchange) Invest(amount int64, user string, mode Mode) (InvestResult, error) {
	res := InvestResult{
		TotalGroupCoinReserve:       e.GroupCoinReserve,
		TotalReserveCurrencyReserve: e.ReserveCurrencyReserve,
	}
	res.PortionGroupCoinReserve, res.PortionReserveCurrencyReserve = e.PortionReserves(user)

	coinAmount := e.GroupCoinAmount(amount)
	cost := coinAmount
	if amount < 0 {
		// The fee trims the refunded coin; the difference stays pooled.
		cost = new(big.Rat).Mul(coinAmount, new(big.Rat).Sub(big.NewRat(1, 1), e.fee))
	}
	res.Cost = calculator.CeilUnit(cost)

	if amount < 0 {
		if err := e.checkReserves(amount, -amount, res.PortionReserveCurrencyReserve, true); err != nil {
			return res, err
		}
		if err := e.checkReserves(amount, -res.Cost, res.PortionGroupCoinReserve, false); err != nil {
			return res, err
		}
	}

	if mode == Commit {
		before := e.ReserveCurrencyReserve
		e.ReserveCurrencyReserve += amount
		e.GroupCoinReserve += res.Cost
		// Rescale every participant to the new reserve-currency total, then
		// recompute the actor from their pre-trade share plus the amount.
		newTotal := calculator.Rat(e.ReserveCurrencyReserve)
		for key, p := range e.portions {
			held := new(big.Rat).Mul(p, calculator.Rat(before))
			e.portions[key] = new(big.Rat).Quo(held, newTotal)
		}
		e.portions[user] = new(big.Rat).Quo(
			calculator.Rat(res.PortionReserveCurrencyReserve+amount), newTotal)
	}
	return res, nil
}
