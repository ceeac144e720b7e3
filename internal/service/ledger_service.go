package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/fairshare/internal/ledger"
	"github.com/mmynk/fairshare/internal/metrics"
	"github.com/mmynk/fairshare/internal/models"
	"github.com/mmynk/fairshare/internal/storage"
)

var (
	ErrUnknownGroup          = errors.New("unknown group")
	ErrUnknownUser           = errors.New("unknown user")
	ErrNoPendingCertificates = errors.New("no pending certificates")
)

// LedgerService wraps the in-memory ledger with logging, metrics, and the
// append-only transaction history. Previews touch none of those; only
// committed operations are recorded.
type LedgerService struct {
	ledger  *ledger.Ledger
	store   storage.Store    // nil disables history
	metrics *metrics.Metrics // nil disables instrumentation
}

// NewLedgerService creates a service over the given ledger. store and m may
// be nil.
func NewLedgerService(l *ledger.Ledger, store storage.Store, m *metrics.Metrics) *LedgerService {
	return &LedgerService{ledger: l, store: store, metrics: m}
}

// Ledger exposes the underlying ledger for read-only views.
func (s *LedgerService) Ledger() *ledger.Ledger {
	return s.ledger
}

// Send moves amount between two members of the same group.
func (s *LedgerService) Send(ctx context.Context, groupKey string, amount float64, from, to string, mode ledger.Mode) (ledger.SendResult, error) {
	start := time.Now()
	slog.Info("Send request received",
		"group", groupKey, "amount", amount, "from", from, "to", to, "mode", mode.String(),
	)

	group, whole, err := s.groupAndAmount(groupKey, amount)
	if err != nil {
		s.finish(models.OpSend, start, err)
		return ledger.SendResult{}, err
	}

	res, err := group.Send(whole, from, to, mode)
	if err != nil {
		s.finish(models.OpSend, start, err)
		return ledger.SendResult{}, err
	}

	if mode == ledger.Commit {
		s.record(ctx, &models.Transaction{
			Op:                models.OpSend,
			GroupKey:          group.Key,
			Actor:             from,
			Payee:             to,
			Amount:            whole,
			Cost:              res.Cost,
			CertificateNumber: -1,
		})
	}
	s.finish(models.OpSend, start, nil)
	slog.Info("Send successful", "group", group.Key, "cost", res.Cost, "balance", res.Balance)
	return res, nil
}

// IssueCertificate charges from, in the group's unit, for a reserve-currency
// certificate made out to payee. currency names the group the certificate is
// meant to be redeemed in; the drain operation routes by it.
func (s *LedgerService) IssueCertificate(ctx context.Context, groupKey string, amount float64, from, payee, currency string, mode ledger.Mode) (ledger.IssueResult, error) {
	start := time.Now()
	slog.Info("IssueCertificate request received",
		"group", groupKey, "amount", amount, "from", from, "payee", payee, "currency", currency, "mode", mode.String(),
	)

	group, whole, err := s.groupAndAmount(groupKey, amount)
	if err != nil {
		s.finish(models.OpIssue, start, err)
		return ledger.IssueResult{}, err
	}
	if s.ledger.Group(currency) == nil {
		s.finish(models.OpIssue, start, ErrUnknownGroup)
		return ledger.IssueResult{}, ErrUnknownGroup
	}

	res, err := group.IssueCertificate(whole, from, payee, currency, mode)
	if err != nil {
		s.finish(models.OpIssue, start, err)
		return ledger.IssueResult{}, err
	}

	if mode == ledger.Commit {
		s.record(ctx, &models.Transaction{
			Op:                models.OpIssue,
			GroupKey:          group.Key,
			Actor:             from,
			Payee:             payee,
			Amount:            whole,
			Cost:              res.Cost,
			CertificateNumber: res.Certificate.Number,
		})
		s.reserves(group)
	}
	s.finish(models.OpIssue, start, nil)
	slog.Info("IssueCertificate successful", "group", group.Key, "cost", res.Cost, "number", res.Certificate.Number)
	return res, nil
}

// RedeemResult pairs a redemption's figures with the certificate it settled
// and the group it settled in.
type RedeemResult struct {
	ledger.RedeemResult
	Certificate *ledger.Certificate `json:"certificate"`
	GroupKey    string              `json:"groupKey"`
}

// Redeem settles the payee's most recent pending certificate. The target
// group comes from the certificate's currency, so each certificate arrives
// in the group it was made out for.
func (s *LedgerService) Redeem(ctx context.Context, payee string, mode ledger.Mode) (RedeemResult, error) {
	start := time.Now()
	slog.Info("Redeem request received", "payee", payee, "mode", mode.String())

	user := s.ledger.User(payee)
	if user == nil {
		s.finish(models.OpRedeem, start, ErrUnknownUser)
		return RedeemResult{}, ErrUnknownUser
	}
	cert := user.LatestPending()
	if cert == nil {
		s.finish(models.OpRedeem, start, ErrNoPendingCertificates)
		return RedeemResult{}, ErrNoPendingCertificates
	}
	group := s.ledger.Group(cert.Currency)
	if group == nil {
		s.finish(models.OpRedeem, start, ErrUnknownGroup)
		return RedeemResult{}, ErrUnknownGroup
	}

	res, err := group.RedeemCertificate(cert, mode)
	if err != nil {
		s.finish(models.OpRedeem, start, err)
		return RedeemResult{}, err
	}

	if mode == ledger.Commit {
		s.record(ctx, &models.Transaction{
			Op:                models.OpRedeem,
			GroupKey:          group.Key,
			Actor:             payee,
			Payee:             payee,
			Amount:            cert.Amount,
			Cost:              res.Credit,
			CertificateNumber: cert.Number,
		})
		s.reserves(group)
	}
	s.finish(models.OpRedeem, start, nil)
	slog.Info("Redeem successful", "group", group.Key, "credit", res.Credit, "number", cert.Number)
	return RedeemResult{RedeemResult: res, Certificate: cert, GroupKey: group.Key}, nil
}

// Withdraw removes amount of reserve currency and the matching group coin
// from the group's pool, limited to the user's share. The reserve-currency
// side becomes a pending certificate redeemable in the FairShare group.
func (s *LedgerService) Withdraw(ctx context.Context, groupKey string, amount float64, user string, mode ledger.Mode) (ledger.WithdrawResult, error) {
	start := time.Now()
	slog.Info("Withdraw request received",
		"group", groupKey, "amount", amount, "user", user, "mode", mode.String(),
	)

	group, whole, err := s.groupAndAmount(groupKey, amount)
	if err != nil {
		s.finish(models.OpWithdraw, start, err)
		return ledger.WithdrawResult{}, err
	}

	res, err := group.Withdraw(whole, user, mode)
	if err != nil {
		s.finish(models.OpWithdraw, start, err)
		return ledger.WithdrawResult{}, err
	}

	if mode == ledger.Commit {
		s.record(ctx, &models.Transaction{
			Op:                models.OpWithdraw,
			GroupKey:          group.Key,
			Actor:             user,
			Payee:             user,
			Amount:            whole,
			Cost:              -res.CoinCredit,
			CertificateNumber: res.Certificate.Number,
		})
		s.reserves(group)
	}
	s.finish(models.OpWithdraw, start, nil)
	slog.Info("Withdraw successful", "group", group.Key, "coin_credit", res.CoinCredit, "number", res.Certificate.Number)
	return res, nil
}

// groupAndAmount resolves a group and validates the amount is a positive
// whole number of units.
func (s *LedgerService) groupAndAmount(groupKey string, amount float64) (*ledger.Group, int64, error) {
	group := s.ledger.Group(groupKey)
	if group == nil {
		return nil, 0, ErrUnknownGroup
	}
	whole, err := ledger.WholeAmount(amount)
	if err != nil {
		return nil, 0, err
	}
	return group, whole, nil
}

// record appends one committed operation to the history. A history failure is
// logged but never fails the operation: the ledger has already moved.
func (s *LedgerService) record(ctx context.Context, tx *models.Transaction) {
	if s.store == nil {
		return
	}
	if err := s.store.RecordTransaction(ctx, tx); err != nil {
		slog.Warn("failed to record transaction", "op", tx.Op, "group", tx.GroupKey, "error", err)
	}
}

// finish observes the operation's outcome on the metrics collectors.
func (s *LedgerService) finish(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = ledger.KindOf(err).String()
	}
	s.metrics.ObserveOp(op, status, time.Since(start).Seconds())
}

// reserves refreshes the pool gauges for a group after a committed trade.
func (s *LedgerService) reserves(group *ledger.Group) {
	if s.metrics == nil {
		return
	}
	coin, reserve := group.Reserves()
	s.metrics.SetReserves(group.Key, coin, reserve)
}
