package ledger

import (
	"sync"
	"testing"
)

func newSendGroup() *Group {
	return NewGroup(GroupConfig{
		Name: "Group",
		Fee:  8,
		People: map[string]*Member{
			"a": {Balance: 100},
			"b": {Balance: 2},
		},
	})
}

func TestTransferCost(t *testing.T) {
	g := NewGroup(GroupConfig{Name: "Group", Fee: 8})
	if got := g.TransferCost(10); got != 11 {
		t.Errorf("TransferCost(10) = %d, want 11", got)
	}
	if got := g.TransferCost(100); got != 108 {
		t.Errorf("TransferCost(100) = %d, want 108", got)
	}
}

func TestReceiveCredit(t *testing.T) {
	g := NewGroup(GroupConfig{Name: FairShareName, Fee: 2})
	if got := g.ReceiveCredit(100); got != 98 {
		t.Errorf("ReceiveCredit(100) = %d, want 98", got)
	}
	// The fee rounds up, so the payee never over-collects.
	if got := g.ReceiveCredit(10); got != 9 {
		t.Errorf("ReceiveCredit(10) = %d, want 9", got)
	}
}

func TestSend(t *testing.T) {
	for _, mode := range []Mode{Preview, Commit} {
		t.Run(mode.String(), func(t *testing.T) {
			g := newSendGroup()
			res, err := g.Send(10, "a", "b", mode)
			if err != nil {
				t.Fatalf("Send: %v", err)
			}
			if res.Cost != 11 || res.Balance != 89 {
				t.Errorf("result = %+v, want cost 11 balance 89", res)
			}
			wantA, wantB := int64(100), int64(2)
			if mode == Commit {
				wantA, wantB = 89, 12
			}
			if got := g.Member("a").Balance; got != wantA {
				t.Errorf("sender balance = %d, want %d", got, wantA)
			}
			if got := g.Member("b").Balance; got != wantB {
				t.Errorf("receiver balance = %d, want %d", got, wantB)
			}
		})
	}
}

func TestSendPreviewThenCommitAgree(t *testing.T) {
	g := newSendGroup()
	preview, err := g.Send(10, "a", "b", Preview)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	committed, err := g.Send(10, "a", "b", Commit)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if preview != committed {
		t.Errorf("preview %+v != commit %+v", preview, committed)
	}
}

func TestSendErrors(t *testing.T) {
	for _, mode := range []Mode{Preview, Commit} {
		t.Run(mode.String(), func(t *testing.T) {
			tests := []struct {
				name   string
				amount int64
				from   string
				to     string
				check  func(t *testing.T, err error)
			}{
				{
					name: "sender not in group", amount: 10, from: "missing", to: "b",
					check: func(t *testing.T, err error) {
						var unknown *UnknownUserError
						if !asErr(err, &unknown) || unknown.User != "missing" || unknown.GroupName != "Group" {
							t.Errorf("error = %v, want UnknownUser{missing, Group}", err)
						}
					},
				},
				{
					name: "receiver not in group", amount: 10, from: "a", to: "missing",
					check: func(t *testing.T, err error) {
						var unknown *UnknownUserError
						if !asErr(err, &unknown) || unknown.User != "missing" {
							t.Errorf("error = %v, want UnknownUser{missing}", err)
						}
					},
				},
				{
					name: "insufficient balance", amount: 100, from: "a", to: "b",
					check: func(t *testing.T, err error) {
						var funds *InsufficientFundsError
						if !asErr(err, &funds) {
							t.Fatalf("error = %v, want InsufficientFundsError", err)
						}
						if funds.Balance != 100 || funds.Cost != 108 || funds.GroupName != "Group" {
							t.Errorf("payload = %+v, want balance 100 cost 108", funds)
						}
					},
				},
				{
					name: "non-positive amount", amount: 0, from: "a", to: "b",
					check: func(t *testing.T, err error) {
						if KindOf(err) != KindNonPositive {
							t.Errorf("error = %v, want non-positive", err)
						}
					},
				},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					g := newSendGroup()
					_, err := g.Send(tt.amount, tt.from, tt.to, mode)
					if err == nil {
						t.Fatal("expected error")
					}
					tt.check(t, err)
					if g.Member("a").Balance != 100 || g.Member("b").Balance != 2 {
						t.Error("failed operation must not touch balances")
					}
				})
			}
		})
	}
}

func TestWholeAmount(t *testing.T) {
	tests := []struct {
		value   float64
		want    int64
		wantErr Kind
	}{
		{10, 10, 0},
		{10.5, 0, KindNonWhole},
		{0, 0, KindNonPositive},
		{-3, 0, KindNonPositive},
	}
	for _, tt := range tests {
		got, err := WholeAmount(tt.value)
		if tt.wantErr == 0 {
			if err != nil || got != tt.want {
				t.Errorf("WholeAmount(%v) = (%d, %v), want (%d, nil)", tt.value, got, err, tt.want)
			}
			continue
		}
		if KindOf(err) != tt.wantErr {
			t.Errorf("WholeAmount(%v) error kind = %v, want %v", tt.value, KindOf(err), tt.wantErr)
		}
		if !IsInvalidInput(err) {
			t.Errorf("WholeAmount(%v) error should be invalid input", tt.value)
		}
	}
}

func TestUserData(t *testing.T) {
	l := New()
	l.CreateUser("Alice", "", "")
	g := l.CreateGroup(GroupConfig{
		Name:                   "Apples",
		Fee:                    1,
		People:                 map[string]*Member{"alice": {Balance: 100}},
		GroupCoinReserve:       10000,
		ReserveCurrencyReserve: 10000,
	})
	data := g.UserData("alice")
	if !data.Member || data.Balance != 100 {
		t.Errorf("data = %+v, want member with balance 100", data)
	}
	// Sole founder holds the whole pool.
	if data.PortionGroupCoinReserve != 10000 || data.PortionReserveCurrencyReserve != 10000 {
		t.Errorf("portions = (%d, %d), want full reserves", data.PortionGroupCoinReserve, data.PortionReserveCurrencyReserve)
	}
	if outsider := g.UserData("nobody"); outsider.Member || outsider.PortionGroupCoinReserve != 0 {
		t.Errorf("outsider data = %+v", outsider)
	}
}

// Reserves must be safe to call while operations commit; run with -race.
func TestReservesConcurrentWithCommits(t *testing.T) {
	l := New()
	l.CreateUser("Alice", "", "")
	l.CreateUser("Bob", "", "")
	g := l.CreateGroup(GroupConfig{
		Name:                   "Group1",
		Fee:                    1,
		People:                 map[string]*Member{"alice": {Balance: 10000}},
		GroupCoinReserve:       10000,
		ReserveCurrencyReserve: 10000,
	})

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			if _, err := g.IssueCertificate(10, "alice", "bob", "group1", Commit); err != nil {
				t.Errorf("IssueCertificate: %v", err)
				break
			}
		}
		close(done)
	}()

	for {
		coin, reserve := g.Reserves()
		if coin < 10000 || reserve > 10000 {
			t.Fatalf("reserves = (%d, %d), pool moved the wrong way", coin, reserve)
		}
		select {
		case <-done:
			wg.Wait()
			return
		default:
		}
	}
}
