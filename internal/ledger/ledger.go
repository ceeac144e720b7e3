// Package ledger implements the in-memory mutual-credit ledger: users,
// groups, per-group balances, the constant-product exchange pools, and the
// certificate protocol that moves value between group currencies.
//
// The ledger is the single owner of the user and group directories; nothing
// here is package-global, so tests can build isolated ledgers freely. State
// lives only in memory; persistence belongs to the layers above.
package ledger

// Ledger is the top-level directory of users and groups.
type Ledger struct {
	users  *directory[*User]
	groups *directory[*Group]
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		users:  newDirectory[*User](),
		groups: newDirectory[*Group](),
	}
}

// CreateUser registers a user. Key defaults from the name.
func (l *Ledger) CreateUser(name, key, img string) *User {
	u := NewUser(name, key, img)
	l.users.put(u.Key, u)
	return u
}

// User answers the user with the given key, or nil.
func (l *Ledger) User(key string) *User {
	u, _ := l.users.get(key)
	return u
}

// UserKeys answers all registered user keys, sorted.
func (l *Ledger) UserKeys() []string {
	return l.users.keys()
}

// CreateGroup registers a group and binds it to this ledger so it can
// resolve payees.
func (l *Ledger) CreateGroup(cfg GroupConfig) *Group {
	g := NewGroup(cfg)
	g.ledger = l
	l.groups.put(g.Key, g)
	return g
}

// Group answers the group with the given key, or nil.
func (l *Ledger) Group(key string) *Group {
	g, _ := l.groups.get(key)
	return g
}

// GroupKeys answers all registered group keys, sorted.
func (l *Ledger) GroupKeys() []string {
	return l.groups.keys()
}

// FairShare answers the reserve-currency group, or nil if not seeded.
func (l *Ledger) FairShare() *Group {
	return l.Group(FairShareKey)
}
