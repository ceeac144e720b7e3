package ledger

import "sync"

// Certificate is a single-use bearer token for an amount of reserve currency
// owed to a specific payee. One group creates it, the payee's inbox holds it,
// and another group (or the same one) consumes it. A certificate produced by
// a preview carries no number (Number < 0) and is informational only.
type Certificate struct {
	Payee    string `json:"payee"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency,omitempty"`
	Number   int64  `json:"number"`
}

// Valid reports whether the certificate was issued by a committed operation
// and can be redeemed.
func (c *Certificate) Valid() bool {
	return c != nil && c.Currency != "" && c.Number >= 0
}

// User is a ledger-wide identity: certificates are numbered and replay-checked
// per user, across all groups.
type User struct {
	Key  string
	Name string
	Img  string

	mu           sync.Mutex
	pending      []*Certificate
	nextNumber   int64
	lastRedeemed int64 // high-water mark; -1 until the first redemption
}

// NewUser creates a user record. Key defaults from the name.
func NewUser(name, key, img string) *User {
	if key == "" {
		key = NameToKey(name)
	}
	return &User{Key: key, Name: name, Img: img, lastRedeemed: -1}
}

// nextCertificateNumber consumes the user's counter. Numbers are unique per
// payee, which is what makes the replay guard sound.
func (u *User) nextCertificateNumber() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := u.nextNumber
	u.nextNumber++
	return n
}

func (u *User) receiveCertificate(cert *Certificate) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pending = append(u.pending, cert)
}

// checkCertificate reports whether the certificate would be accepted, without
// advancing the high-water mark. Preview redemptions use this.
func (u *User) checkCertificate(cert *Certificate) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if cert.Number <= u.lastRedeemed {
		return &ReusedCertificateError{Certificate: cert}
	}
	return nil
}

// consumeCertificate redeems the certificate, advancing the high-water mark,
// and answers the certified amount. The guard is a high-water mark rather
// than a used-set: certificates are expected to be redeemed in issuance
// order, and an older unredeemed certificate presented after a newer one is
// rejected the same as a replay.
func (u *User) consumeCertificate(cert *Certificate) (int64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if cert.Number <= u.lastRedeemed {
		return 0, &ReusedCertificateError{Certificate: cert}
	}
	u.lastRedeemed = cert.Number
	u.dropPending(cert)
	return cert.Amount, nil
}

// dropPending removes cert from the inbox if present. Caller holds u.mu.
func (u *User) dropPending(cert *Certificate) {
	for i, p := range u.pending {
		if p == cert || (p.Number == cert.Number && p.Payee == cert.Payee) {
			u.pending = append(u.pending[:i], u.pending[i+1:]...)
			return
		}
	}
}

// PendingCertificates answers a snapshot of the unredeemed certificates in
// issuance order.
func (u *User) PendingCertificates() []*Certificate {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]*Certificate, len(u.pending))
	copy(out, u.pending)
	return out
}

// LatestPending answers the most recently received unredeemed certificate,
// or nil. The drain operation works latest-first.
func (u *User) LatestPending() *Certificate {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.pending) == 0 {
		return nil
	}
	return u.pending[len(u.pending)-1]
}
