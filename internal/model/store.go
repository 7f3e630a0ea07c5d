package model

import "context"

// Store groups the repositories sharing one connection or transaction.
type Store interface {
	Users() UserStore
	Sessions() SessionStore
	Verifications() VerificationStore
	Preferences() PreferenceStore
	// Lock takes a transaction-scoped advisory lock derived from table and keys.
	Lock(ctx context.Context, table string, keys map[string]string) error
}

// Database is a Store that can run units of work in a transaction.
// InTx commits when fn returns nil and rolls back otherwise.
type Database interface {
	Store
	InTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
