// Package models defines the persistence records for the FairShare server.
//
// The ledger itself (users, groups, balances, pools) lives in memory in the
// ledger package and is never persisted. These models cover what the serving
// layer keeps around it:
//   - Account: a login account bound to a ledger user key
//   - Transaction: an append-only record of a committed ledger operation
//
// The transaction history is an audit trail for display and reconciliation;
// it is never read back into ledger state.
package models
