package models

// Transaction operation types, mirroring the ledger operations that can
// commit.
const (
	OpSend     = "send"
	OpIssue    = "issue"
	OpRedeem   = "redeem"
	OpInvest   = "invest"
	OpWithdraw = "withdraw"
)

// Transaction is one committed ledger operation, recorded after the fact.
// Previews are never recorded.
type Transaction struct {
	// ID is the unique identifier for the record (UUID format).
	ID string

	// Op is one of the Op* constants.
	Op string

	// GroupKey is the group the operation ran in.
	GroupKey string

	// Actor is the ledger user who paid or initiated.
	Actor string

	// Payee is the receiving ledger user, when the operation has one.
	Payee string

	// Amount is the operation's principal amount in whole currency units.
	Amount int64

	// Cost is the fee-inclusive amount the actor was charged, in the
	// group's own unit. Negative for withdrawals (a refund).
	Cost int64

	// CertificateNumber is the per-payee certificate number for issue,
	// redeem, invest, and withdraw operations; -1 otherwise.
	CertificateNumber int64

	// CreatedAt is the Unix timestamp when the record was written.
	CreatedAt int64
}
