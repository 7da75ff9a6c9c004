package ledger

import (
	"context"
	"time"
)

// Store is the ledger's persistence port. WithTx runs fn inside one database
// transaction; any posting that touches balances goes through it so the
// customer row lock serializes concurrent writers.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error
	ListEntries(ctx context.Context, req ListEntriesRequest) ([]Entry, int, error)
	AccountSummary(ctx context.Context, customerID, ownerID int64) (*AccountSummary, error)
	OverdueCustomers(ctx context.Context, ownerID int64) ([]OverdueCustomer, error)
	MarkOverdueEntries(ctx context.Context, now time.Time) (int64, error)
}

// TxStore exposes the operations available inside a ledger transaction.
type TxStore interface {
	LockCustomer(ctx context.Context, customerID, ownerID int64) (*CustomerAccount, error)
	LatestBalance(ctx context.Context, customerID int64) (float64, error)
	InsertEntry(ctx context.Context, entry Entry, ownerID int64) (*Entry, error)
	SetCustomerBalance(ctx context.Context, customerID int64, balance float64) error
	OpenOrders(ctx context.Context, customerID, ownerID int64) ([]OpenOrder, error)
	OpenOrder(ctx context.Context, orderID, ownerID int64) (*OpenOrder, error)
	ApplyAllocation(ctx context.Context, alloc Allocation) error
}
