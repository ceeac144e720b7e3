package ledger

import (
	"errors"
	"fmt"
	"math"
)

// Kind discriminates the structured errors a ledger operation can return.
// Callers match on kind rather than on concrete types; the payload structs
// carry the operands so a presentation layer can format or localize them.
type Kind int

const (
	KindUnknownUser Kind = iota + 1
	KindInsufficientFunds
	KindInsufficientReserves
	KindReusedCertificate
	KindNonPositive
	KindNonWhole
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindUnknownUser:
		return "unknown_user"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindInsufficientReserves:
		return "insufficient_reserves"
	case KindReusedCertificate:
		return "reused_certificate"
	case KindNonPositive:
		return "non_positive"
	case KindNonWhole:
		return "non_whole"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

type kinded interface {
	Kind() Kind
}

// KindOf answers the Kind of any error produced by this package, or 0.
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return 0
}

// IsInsufficientFunds reports whether err is an insufficient-funds condition.
// An insufficient-reserves error counts: it is the pool-side variant of the
// same failure.
func IsInsufficientFunds(err error) bool {
	k := KindOf(err)
	return k == KindInsufficientFunds || k == KindInsufficientReserves
}

// IsInvalidInput reports whether err is an input-validation failure.
func IsInvalidInput(err error) bool {
	k := KindOf(err)
	return k == KindNonPositive || k == KindNonWhole
}

// UnknownUserError reports a member absent from a group, or, with
// GroupName=="any", absent from the ledger entirely.
type UnknownUserError struct {
	User      string
	GroupName string
}

func (e *UnknownUserError) Kind() Kind { return KindUnknownUser }
func (e *UnknownUserError) Error() string {
	return fmt.Sprintf("unknown user %q in group %q", e.User, e.GroupName)
}

// InsufficientFundsError reports a balance that cannot cover a computed cost.
type InsufficientFundsError struct {
	Balance   int64
	Cost      int64
	GroupName string
}

func (e *InsufficientFundsError) Kind() Kind { return KindInsufficientFunds }
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in group %q: balance %d, cost %d", e.GroupName, e.Balance, e.Cost)
}

// InsufficientReservesError reports a trade whose required output meets or
// exceeds the counterpart reserve. InputAmount is zero when the required
// input is undefined (the requested output swallows the whole reserve).
type InsufficientReservesError struct {
	InputAmount     int64
	OutputAmount    int64
	Reserve         int64
	ReserveCurrency bool
}

func (e *InsufficientReservesError) Kind() Kind { return KindInsufficientReserves }
func (e *InsufficientReservesError) Error() string {
	side := "group coin"
	if e.ReserveCurrency {
		side = "reserve currency"
	}
	return fmt.Sprintf("insufficient %s reserves: output %d against reserve %d", side, e.OutputAmount, e.Reserve)
}

// ReusedCertificateError reports a certificate at or below the payee's
// redemption high-water mark.
type ReusedCertificateError struct {
	Certificate *Certificate
}

func (e *ReusedCertificateError) Kind() Kind { return KindReusedCertificate }
func (e *ReusedCertificateError) Error() string {
	return fmt.Sprintf("certificate %d for %q already redeemed", e.Certificate.Number, e.Certificate.Payee)
}

// NonPositiveError reports an amount that must be positive but is not.
type NonPositiveError struct {
	Amount float64
}

func (e *NonPositiveError) Kind() Kind { return KindNonPositive }
func (e *NonPositiveError) Error() string {
	return fmt.Sprintf("amount %v must be positive", e.Amount)
}

// NonWholeError reports an amount that must be a whole number of currency
// units but is not.
type NonWholeError struct {
	Amount float64
}

func (e *NonWholeError) Kind() Kind { return KindNonWhole }
func (e *NonWholeError) Error() string {
	return fmt.Sprintf("amount %v must be a whole number", e.Amount)
}

// InternalError reports a violated internal invariant, such as a committed
// trade realizing a different cost than its quote. It signals a defect, not
// a user mistake; callers should log it and never retry.
type InternalError struct {
	Label    string
	Actual   int64
	Expected int64
}

func (e *InternalError) Kind() Kind { return KindInternal }
func (e *InternalError) Error() string {
	return fmt.Sprintf("actual %s %d does not match computed %s %d; this should never happen",
		e.Label, e.Actual, e.Label, e.Expected)
}

// assertEqual guards dual-computed values. A mismatch means the preview and
// commit paths disagree, which correct code never allows.
func assertEqual(actual, expected int64, label string) error {
	if actual != expected {
		return &InternalError{Label: label, Actual: actual, Expected: expected}
	}
	return nil
}

// WholeAmount validates a caller-supplied amount and converts it to whole
// currency units. Validation happens here, at the boundary, so the arithmetic
// below only ever sees integral amounts.
func WholeAmount(v float64) (int64, error) {
	if v <= 0 {
		return 0, &NonPositiveError{Amount: v}
	}
	if v != math.Trunc(v) {
		return 0, &NonWholeError{Amount: v}
	}
	return int64(v), nil
}
