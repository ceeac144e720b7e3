package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/fairshare/internal/ledger"
	"github.com/mmynk/fairshare/internal/models"
)

// PayResult carries the figures of a payment. For a same-group payment only
// Cost and Balance are set. For a cross-group payment ReceivingCost is the
// reserve currency the certificate is made out for, and Certificate is the
// pending certificate the payee will redeem in their own group.
type PayResult struct {
	Cost          int64               `json:"cost"`
	Balance       int64               `json:"balance"`
	ReceivingCost int64               `json:"receivingCost,omitempty"`
	Certificate   *ledger.Certificate `json:"certificate,omitempty"`
}

// Pay moves amount to a payee, in the payee's group. Inside one group this is
// a plain send. Across groups it prices what the receiving group charges to
// deliver amount there, then issues a certificate for that reserve currency
// from the paying group; the payee redeems it later, usually via
// DrainCertificates.
func (s *LedgerService) Pay(ctx context.Context, fromGroupKey, toGroupKey string, amount float64, from, to string, mode ledger.Mode) (PayResult, error) {
	if fromGroupKey == toGroupKey {
		res, err := s.Send(ctx, fromGroupKey, amount, from, to, mode)
		if err != nil {
			return PayResult{}, err
		}
		return PayResult{Cost: res.Cost, Balance: res.Balance}, nil
	}

	slog.Info("Pay request received",
		"from_group", fromGroupKey, "to_group", toGroupKey,
		"amount", amount, "from", from, "to", to, "mode", mode.String(),
	)

	toGroup, whole, err := s.groupAndAmount(toGroupKey, amount)
	if err != nil {
		return PayResult{}, err
	}

	// What the receiving group charges to deliver the amount there.
	var receivingCost int64
	if toGroup.IsFairShare() {
		receivingCost = toGroup.TransferCost(whole)
	} else {
		receivingCost, err = toGroup.PurchaseCost(whole)
		if err != nil {
			return PayResult{}, err
		}
	}

	// The certificate is stamped with the receiving group so redemption
	// lands the payment there, not wherever the payee happens to drain.
	res, err := s.IssueCertificate(ctx, fromGroupKey, float64(receivingCost), from, to, toGroup.Key, mode)
	if err != nil {
		return PayResult{}, err
	}
	return PayResult{
		Cost:          res.Cost,
		Balance:       res.Balance,
		ReceivingCost: receivingCost,
		Certificate:   res.Certificate,
	}, nil
}

// InvestResult carries the figures of an investment: the FairShare paid for
// the certificate, the group coin charged alongside the reserve currency, and
// the resulting pool standing.
type InvestResult struct {
	FairShareCost int64 `json:"fairShareCost"`
	ledger.GroupInvestResult
}

// Invest adds amount of reserve currency to a group's pool on behalf of user.
// The user pays for a FairShare certificate of amount, plus the proportional
// group coin from their balance in the target group. Both legs are checked
// before either commits.
func (s *LedgerService) Invest(ctx context.Context, groupKey string, amount float64, user string, mode ledger.Mode) (InvestResult, error) {
	start := time.Now()
	slog.Info("Invest request received",
		"group", groupKey, "amount", amount, "user", user, "mode", mode.String(),
	)

	group, whole, err := s.groupAndAmount(groupKey, amount)
	if err != nil {
		s.finish(models.OpInvest, start, err)
		return InvestResult{}, err
	}

	// Check the coin leg before buying the certificate, so a user who cannot
	// cover it is rejected with nothing spent.
	coinCost := group.InvestmentCost(whole)
	if _, err := group.CheckSenderBalance(coinCost, user); err != nil {
		s.finish(models.OpInvest, start, err)
		return InvestResult{}, err
	}

	issue, err := s.IssueCertificate(ctx, ledger.FairShareKey, float64(whole), user, user, group.Key, mode)
	if err != nil {
		s.finish(models.OpInvest, start, err)
		return InvestResult{}, err
	}

	res, err := group.Invest(issue.Certificate, mode)
	if err != nil {
		s.finish(models.OpInvest, start, err)
		return InvestResult{}, err
	}
	if res.Cost != coinCost {
		err := &ledger.InternalError{Label: "investment cost", Actual: res.Cost, Expected: coinCost}
		slog.Error("Invest invariant violated", "group", group.Key, "error", err)
		s.finish(models.OpInvest, start, err)
		return InvestResult{}, err
	}

	if mode == ledger.Commit {
		s.record(ctx, &models.Transaction{
			Op:                models.OpInvest,
			GroupKey:          group.Key,
			Actor:             user,
			Payee:             user,
			Amount:            whole,
			Cost:              res.Cost,
			CertificateNumber: issue.Certificate.Number,
		})
		s.reserves(group)
	}
	s.finish(models.OpInvest, start, nil)
	slog.Info("Invest successful",
		"group", group.Key, "amount", whole, "coin_cost", res.Cost, "fairshare_cost", issue.Cost,
	)
	return InvestResult{FairShareCost: issue.Cost, GroupInvestResult: res}, nil
}

// DrainResult reports one settled certificate during a drain.
type DrainResult struct {
	Certificate *ledger.Certificate `json:"certificate"`
	GroupKey    string              `json:"groupKey"`
	Credit      int64               `json:"credit"`
	Balance     int64               `json:"balance"`
}

// DrainCertificates redeems the user's pending certificates latest first,
// each into the group its currency names, until none remain or one fails.
// Certificates settled before the failure stay settled; the error, if any,
// pertains to the first certificate that could not be redeemed.
func (s *LedgerService) DrainCertificates(ctx context.Context, user string) ([]DrainResult, error) {
	slog.Info("DrainCertificates request received", "user", user)

	u := s.ledger.User(user)
	if u == nil {
		return nil, ErrUnknownUser
	}

	var drained []DrainResult
	for u.LatestPending() != nil {
		res, err := s.Redeem(ctx, user, ledger.Commit)
		if err != nil {
			return drained, err
		}
		drained = append(drained, DrainResult{
			Certificate: res.Certificate,
			GroupKey:    res.GroupKey,
			Credit:      res.Credit,
			Balance:     res.Balance,
		})
	}
	slog.Info("DrainCertificates successful", "user", user, "count", len(drained))
	return drained, nil
}
