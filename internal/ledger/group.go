package ledger

import (
	"math/big"
	"sync"

	"github.com/mmynk/fairshare/internal/calculator"
)

// FairShareName is the display name of the distinguished reserve-currency
// group. Membership of the role goes by name equality, not object identity:
// tests may construct several short-lived groups with this name.
const FairShareName = "FairShare"

// FairShareKey is the directory key of the reserve-currency group.
const FairShareKey = "fairshare"

// Member is one user's standing inside a group.
type Member struct {
	Balance     int64 `json:"balance"`
	IsCandidate bool  `json:"isCandidate,omitempty"`
}

// Group owns a currency: member balances, a fee, and the exchange pool that
// prices it against the reserve currency.
//
// Every money-movement operation runs under the group's mutex so the
// check-then-mutate sequence is atomic with respect to other operations on
// the same group. All validation happens before any mutation: on error an
// operation is a no-op, and a preview returns exactly the figures the commit
// would.
type Group struct {
	Key     string
	Name    string
	Img     string
	Fee     float64 // percent, e.g. 8 means 8%
	Stipend float64 // display only; core math never uses it

	mu       sync.Mutex
	people   map[string]*Member
	exchange *Exchange
	ledger   *Ledger // set when the group is registered; resolves payees
}

// GroupConfig carries the named properties for creating a group.
type GroupConfig struct {
	Name                   string
	Key                    string
	Img                    string
	Fee                    float64
	Stipend                float64
	People                 map[string]*Member
	GroupCoinReserve       int64
	ReserveCurrencyReserve int64
}

// In a real deployment new pools would start empty; the default mirrors the
// demo fixture.
const defaultReserve = 100_000

// NewGroup creates a group and its pool. The pool fee is the group fee as a
// fraction, and the founding members split the initial portions evenly.
func NewGroup(cfg GroupConfig) *Group {
	if cfg.Key == "" {
		cfg.Key = NameToKey(cfg.Name)
	}
	if cfg.People == nil {
		cfg.People = make(map[string]*Member)
	}
	if cfg.GroupCoinReserve == 0 {
		cfg.GroupCoinReserve = defaultReserve
	}
	if cfg.ReserveCurrencyReserve == 0 {
		cfg.ReserveCurrencyReserve = cfg.GroupCoinReserve
	}
	founders := make([]string, 0, len(cfg.People))
	for key := range cfg.People {
		founders = append(founders, key)
	}
	feeFraction := new(big.Rat).Quo(floatRat(cfg.Fee), big.NewRat(100, 1))
	return &Group{
		Key:      cfg.Key,
		Name:     cfg.Name,
		Img:      cfg.Img,
		Fee:      cfg.Fee,
		Stipend:  cfg.Stipend,
		people:   cfg.People,
		exchange: NewExchange(cfg.GroupCoinReserve, cfg.ReserveCurrencyReserve, feeFraction, founders),
	}
}

func floatRat(v float64) *big.Rat {
	r := new(big.Rat)
	if _, ok := r.SetString(big.NewFloat(v).Text('f', -1)); !ok {
		r.SetInt64(0)
	}
	return r
}

// IsFairShare reports whether this group is the reserve-currency group.
func (g *Group) IsFairShare() bool {
	return g.Name == FairShareName
}

// Exchange exposes the group's pool. Test use only; operations on the ledger
// go through the group so the mutex covers them.
func (g *Group) Exchange() *Exchange {
	return g.exchange
}

// Reserves answers a consistent snapshot of the pool's reserves. Display and
// metrics paths use this instead of reading the exchange directly, which
// would race against committing operations.
func (g *Group) Reserves() (groupCoin, reserveCurrency int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.exchange.GroupCoinReserve, g.exchange.ReserveCurrencyReserve
}

// Member answers the member record for key, or nil.
func (g *Group) Member(key string) *Member {
	g.mu.Lock()
	defer g.mu.Unlock()
	if m, ok := g.people[key]; ok {
		cp := *m
		return &cp
	}
	return nil
}

// MemberKeys answers the keys of all members.
func (g *Group) MemberKeys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	keys := make([]string, 0, len(g.people))
	for k := range g.people {
		keys = append(keys, k)
	}
	return keys
}

// UserData is the per-user view of a group: balance plus the user's floored
// share of each pool reserve.
type UserData struct {
	Balance                       int64 `json:"balance"`
	Member                        bool  `json:"member"`
	PortionGroupCoinReserve       int64 `json:"portionGroupCoinReserve"`
	PortionReserveCurrencyReserve int64 `json:"portionReserveCurrencyReserve"`
	TotalGroupCoinReserve         int64 `json:"totalGroupCoinReserve"`
	TotalReserveCurrencyReserve   int64 `json:"totalReserveCurrencyReserve"`
}

// UserData answers the user's standing in this group.
func (g *Group) UserData(user string) UserData {
	g.mu.Lock()
	defer g.mu.Unlock()
	coin, reserve := g.exchange.PortionReserves(user)
	data := UserData{
		PortionGroupCoinReserve:       coin,
		PortionReserveCurrencyReserve: reserve,
		TotalGroupCoinReserve:         g.exchange.GroupCoinReserve,
		TotalReserveCurrencyReserve:   g.exchange.ReserveCurrencyReserve,
	}
	if m, ok := g.people[user]; ok {
		data.Balance = m.Balance
		data.Member = true
	}
	return data
}

// TransferCost answers the fee-inclusive cost of moving amount to another
// member of this group: ceil(amount * (1 + fee/100)).
func (g *Group) TransferCost(amount int64) int64 {
	factor := new(big.Rat).Add(big.NewRat(1, 1), g.feeFraction())
	return calculator.CeilUnit(new(big.Rat).Mul(calculator.Rat(amount), factor))
}

// ReceiveCredit answers the credit received when amount of reserve currency
// is redeemed directly into this group: amount - ceil(amount * fee/100).
// Only the reserve group itself uses this.
func (g *Group) ReceiveCredit(amount int64) int64 {
	fee := calculator.CeilUnit(new(big.Rat).Mul(calculator.Rat(amount), g.feeFraction()))
	return amount - fee
}

func (g *Group) feeFraction() *big.Rat {
	return g.exchange.fee
}

// PurchaseCost answers the reserve currency needed to buy amount of this
// group's coin from its pool.
func (g *Group) PurchaseCost(amount int64) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.exchange.QuoteBuyGroupCoin(amount)
}

// CertificateCost answers the group coin needed to buy amount of reserve
// currency from this group's pool. A group that is not the reserve group
// pays this when it is the source of a cross-group payment.
func (g *Group) CertificateCost(amount int64) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.exchange.QuoteBuyReserveCurrency(amount)
}

// InvestmentCost answers the group coin that must accompany a reserve
// currency investment. There is no fee on the invest leg; the reserve group
// will charge for issuing the certificate.
func (g *Group) InvestmentCost(reserveCurrencyAmount int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return calculator.CeilUnit(g.exchange.GroupCoinAmount(reserveCurrencyAmount))
}

// SendResult carries the figures of a same-group transfer: the fee-inclusive
// cost and the sender's balance after paying it.
type SendResult struct {
	Cost    int64 `json:"cost"`
	Balance int64 `json:"balance"`
}

// Send moves amount from one member to another inside this group. The sender
// pays TransferCost(amount); the payee receives amount; the fee difference is
// burned, leaving circulation entirely rather than joining any reserve.
func (g *Group) Send(amount int64, from, to string, mode Mode) (SendResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if amount <= 0 {
		return SendResult{}, &NonPositiveError{Amount: float64(amount)}
	}
	cost := g.TransferCost(amount)

	receiver, ok := g.people[to]
	if !ok {
		return SendResult{}, g.unknownUser(to)
	}
	sender, balance, err := g.checkSenderBalance(cost, from)
	if err != nil {
		return SendResult{}, err
	}
	if mode == Commit {
		sender.Balance = balance
		receiver.Balance += amount
	}
	return SendResult{Cost: cost, Balance: balance}, nil
}

// IssueResult carries the figures of a certificate issuance.
type IssueResult struct {
	Cost        int64        `json:"cost"`
	Balance     int64        `json:"balance"`
	Certificate *Certificate `json:"certificate"`
}

// IssueCertificate charges from, in this group's unit, for a certificate of
// amount reserve currency made out to payee. The reserve group issues at
// plain transfer cost; any other group must buy the reserve currency from
// its own pool, and on commit the realized cost must equal the quote: a
// mismatch is an internal defect, never a user error.
//
// The payee need not be a member of this group; only a ledger-wide user
// record is required. On commit the numbered certificate lands in the
// payee's inbox. A preview returns an unnumbered, informational certificate.
func (g *Group) IssueCertificate(amount int64, from, payee, currency string, mode Mode) (IssueResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if amount <= 0 {
		return IssueResult{}, &NonPositiveError{Amount: float64(amount)}
	}

	var cost int64
	var err error
	if g.IsFairShare() {
		cost = g.TransferCost(amount)
	} else {
		cost, err = g.exchange.QuoteBuyReserveCurrency(amount)
		if err != nil {
			return IssueResult{}, err
		}
	}

	receiver := g.resolveUser(payee)
	if receiver == nil {
		return IssueResult{}, &UnknownUserError{User: payee, GroupName: "any"}
	}
	sender, balance, err := g.checkSenderBalance(cost, from)
	if err != nil {
		return IssueResult{}, err
	}

	if mode != Commit {
		// Conveys the figures, but carries no number and cannot be redeemed.
		return IssueResult{
			Cost:        cost,
			Balance:     balance,
			Certificate: &Certificate{Payee: payee, Amount: amount, Number: -1},
		}, nil
	}

	if !g.IsFairShare() {
		realized, err := g.exchange.BuyReserveCurrency(amount)
		if err != nil {
			return IssueResult{}, err
		}
		if err := assertEqual(realized, cost, "cost"); err != nil {
			return IssueResult{}, err
		}
	}
	cert := &Certificate{Payee: payee, Amount: amount, Currency: currency, Number: receiver.nextCertificateNumber()}
	receiver.receiveCertificate(cert)
	sender.Balance = balance
	return IssueResult{Cost: cost, Balance: balance, Certificate: cert}, nil
}

// RedeemResult carries the figures of a certificate redemption.
type RedeemResult struct {
	Credit  int64 `json:"credit"`
	Balance int64 `json:"balance"`
}

// RedeemCertificate converts the certificate's reserve currency into this
// group's coin and credits the payee's balance here. The reserve group
// credits ReceiveCredit(amount); any other group sells the reserve currency
// into its pool. A replayed certificate, one numbered at or below the payee's
// high-water mark, is rejected before anything moves.
func (g *Group) RedeemCertificate(cert *Certificate, mode Mode) (RedeemResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	payee := g.resolveUser(cert.Payee)
	member, ok := g.people[cert.Payee]
	if payee == nil || !ok {
		return RedeemResult{}, g.unknownUser(cert.Payee)
	}

	if err := payee.checkCertificate(cert); err != nil {
		return RedeemResult{}, err
	}
	var credit int64
	var err error
	if g.IsFairShare() {
		credit = g.ReceiveCredit(cert.Amount)
	} else {
		credit, err = g.exchange.QuoteSellReserveCurrency(cert.Amount)
		if err != nil {
			return RedeemResult{}, err
		}
	}

	if mode != Commit {
		return RedeemResult{Credit: credit, Balance: member.Balance + credit}, nil
	}

	amount, err := payee.consumeCertificate(cert)
	if err != nil {
		return RedeemResult{}, err
	}
	if !g.IsFairShare() {
		realized, err := g.exchange.SellReserveCurrency(amount)
		if err != nil {
			return RedeemResult{}, err
		}
		if err := assertEqual(realized, credit, "credit"); err != nil {
			return RedeemResult{}, err
		}
	}
	member.Balance += credit
	return RedeemResult{Credit: credit, Balance: member.Balance}, nil
}

// GroupInvestResult carries the figures of an investment into this group's
// pool.
type GroupInvestResult struct {
	Cost    int64 `json:"cost"`
	Balance int64 `json:"balance"`
	InvestResult
}

// Invest adds the certificate's reserve currency to this group's pool along
// with the proportional group coin, charged to the certificate's payee. The
// certificate must have been issued by the reserve group; on commit it is
// consumed through the payee's replay guard like any other redemption.
func (g *Group) Invest(cert *Certificate, mode Mode) (GroupInvestResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	user := cert.Payee
	member, ok := g.people[user]
	if !ok {
		return GroupInvestResult{}, g.unknownUser(user)
	}
	payee := g.resolveUser(user)
	if payee == nil {
		return GroupInvestResult{}, &UnknownUserError{User: user, GroupName: "any"}
	}
	if cert.Amount <= 0 {
		return GroupInvestResult{}, &NonPositiveError{Amount: float64(cert.Amount)}
	}
	if cert.Valid() || mode == Commit {
		if err := payee.checkCertificate(cert); err != nil {
			return GroupInvestResult{}, err
		}
	}

	// Quote first so that nothing is consumed or moved until every check has
	// passed; the commit below repeats the identical computation.
	res, err := g.exchange.Invest(cert.Amount, user, Preview)
	if err != nil {
		return GroupInvestResult{}, err
	}
	balance := member.Balance - res.Cost
	if balance < 0 {
		return GroupInvestResult{}, &InsufficientFundsError{Balance: member.Balance, Cost: res.Cost, GroupName: g.Name}
	}
	if mode == Commit {
		if _, err := payee.consumeCertificate(cert); err != nil {
			return GroupInvestResult{}, err
		}
		if _, err := g.exchange.Invest(cert.Amount, user, Commit); err != nil {
			return GroupInvestResult{}, err
		}
		member.Balance = balance
	}
	return GroupInvestResult{Cost: res.Cost, Balance: balance, InvestResult: res}, nil
}

// WithdrawResult carries the figures of a pool withdrawal: the coin credited
// back to the member's balance here, and the certificate for the withdrawn
// reserve currency, redeemable in the reserve group.
type WithdrawResult struct {
	CoinCredit  int64        `json:"coinCredit"`
	Balance     int64        `json:"balance"`
	Certificate *Certificate `json:"certificate"`
	InvestResult
}

// Withdraw removes amount of reserve currency and the proportional group
// coin from the pool, limited to the user's pro-rata share. The coin side
// (less the pool fee) returns to the user's balance in this group; the
// reserve currency side becomes a certificate that the reserve group settles
// through the normal redemption path.
func (g *Group) Withdraw(amount int64, user string, mode Mode) (WithdrawResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if amount <= 0 {
		return WithdrawResult{}, &NonPositiveError{Amount: float64(amount)}
	}
	member, ok := g.people[user]
	if !ok {
		return WithdrawResult{}, g.unknownUser(user)
	}
	payee := g.resolveUser(user)
	if payee == nil {
		return WithdrawResult{}, &UnknownUserError{User: user, GroupName: "any"}
	}

	res, err := g.exchange.Invest(-amount, user, mode)
	if err != nil {
		return WithdrawResult{}, err
	}
	coinCredit := -res.Cost // withdrawal cost is negative: a refund
	balance := member.Balance + coinCredit

	var cert *Certificate
	if mode == Commit {
		cert = &Certificate{Payee: user, Amount: amount, Currency: FairShareKey, Number: payee.nextCertificateNumber()}
		payee.receiveCertificate(cert)
		member.Balance = balance
	} else {
		cert = &Certificate{Payee: user, Amount: amount, Number: -1}
	}
	return WithdrawResult{CoinCredit: coinCredit, Balance: balance, Certificate: cert, InvestResult: res}, nil
}

// checkSenderBalance answers the member record and the balance that would
// remain after paying cost. It never mutates: callers assign the new balance
// only on commit, after every other check has passed. Caller holds g.mu.
func (g *Group) checkSenderBalance(cost int64, user string) (*Member, int64, error) {
	sender, ok := g.people[user]
	if !ok {
		return nil, 0, g.unknownUser(user)
	}
	if sender.Balance < cost {
		return nil, 0, &InsufficientFundsError{Balance: sender.Balance, Cost: cost, GroupName: g.Name}
	}
	return sender, sender.Balance - cost, nil
}

// CheckSenderBalance is the exported guard: the balance user would hold
// after paying cost, with no mutation.
func (g *Group) CheckSenderBalance(cost int64, user string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, balance, err := g.checkSenderBalance(cost, user)
	return balance, err
}

func (g *Group) unknownUser(user string) error {
	return &UnknownUserError{User: user, GroupName: g.Name}
}

// resolveUser looks a user up in the owning ledger's directory. Groups
// created outside a ledger (unit tests) have no directory and resolve nobody.
func (g *Group) resolveUser(key string) *User {
	if g.ledger == nil {
		return nil
	}
	u, _ := g.ledger.users.get(key)
	return u
}
