package orders

import (
	"context"

	"github.com/agromart/agromart/internal/catalog"
	"github.com/agromart/agromart/internal/customers"
	"github.com/agromart/agromart/internal/ledger"
)

// Store is the orders persistence port. Checkout, confirmation and
// cancellation run inside WithTx so the stock decrement, document numbering
// and ledger posting commit or roll back together.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error
	Get(ctx context.Context, id, ownerID int64) (*Order, error)
	List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error)
}

// TxStore exposes the operations available inside an orders transaction.
// The ledger primitives mirror the ledger module's transactional store so a
// credit checkout posts its credit_sale entry in the same transaction as the
// order write.
type TxStore interface {
	LockCustomer(ctx context.Context, customerID, ownerID int64) (*customers.Customer, error)
	LockProduct(ctx context.Context, productID, ownerID int64) (*catalog.Product, error)
	AdjustStock(ctx context.Context, productID int64, delta int) error
	NextDocNumber(ctx context.Context, ownerID int64, kind string) (string, error)
	InsertOrder(ctx context.Context, order Order) (*Order, error)
	GetForUpdate(ctx context.Context, id, ownerID int64) (*Order, error)
	SetStatus(ctx context.Context, id int64, status *Status, payStatus *PaymentStatus) error
	SetInvoiceNumber(ctx context.Context, id int64, invoiceNumber string) error
	BumpCustomerPurchases(ctx context.Context, customerID int64, amount float64) error

	LatestBalance(ctx context.Context, customerID int64) (float64, error)
	InsertLedgerEntry(ctx context.Context, entry ledger.Entry, ownerID int64) (*ledger.Entry, error)
	SetCustomerBalance(ctx context.Context, customerID int64, balance float64) error
}
