package ledger

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agromart/agromart/internal/platform/httpx"
	"github.com/agromart/agromart/internal/shared"
)

type fakeStore struct {
	accounts map[int64]*CustomerAccount
	balances map[int64]float64
	entries  []Entry
	orders   map[int64]*OpenOrder
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: map[int64]*CustomerAccount{},
		balances: map[int64]float64{},
		orders:   map[int64]*OpenOrder{},
		nextID:   1,
	}
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error {
	return fn(ctx, f)
}

func (f *fakeStore) LockCustomer(_ context.Context, customerID, _ int64) (*CustomerAccount, error) {
	account, ok := f.accounts[customerID]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return account, nil
}

func (f *fakeStore) LatestBalance(_ context.Context, customerID int64) (float64, error) {
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].CustomerID == customerID {
			return f.entries[i].Balance, nil
		}
	}
	return 0, nil
}

func (f *fakeStore) InsertEntry(_ context.Context, entry Entry, ownerID int64) (*Entry, error) {
	entry.ID = f.nextID
	entry.CreatedBy = ownerID
	f.nextID++
	f.entries = append(f.entries, entry)
	return &entry, nil
}

func (f *fakeStore) SetCustomerBalance(_ context.Context, customerID int64, balance float64) error {
	f.balances[customerID] = balance
	return nil
}

func (f *fakeStore) OpenOrders(_ context.Context, customerID, _ int64) ([]OpenOrder, error) {
	var open []OpenOrder
	for _, o := range f.orders {
		if o.PaidAmount < o.TotalAmount &&
			(o.PaymentStatus == "Pending" || o.PaymentStatus == "Partially Paid") {
			open = append(open, *o)
		}
	}
	for i := 0; i < len(open); i++ {
		for j := i + 1; j < len(open); j++ {
			if open[j].CreatedAt.Before(open[i].CreatedAt) {
				open[i], open[j] = open[j], open[i]
			}
		}
	}
	return open, nil
}

func (f *fakeStore) OpenOrder(_ context.Context, orderID, _ int64) (*OpenOrder, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) ApplyAllocation(_ context.Context, alloc Allocation) error {
	o := f.orders[alloc.OrderID]
	o.PaidAmount = alloc.NewPaidAmount
	o.RemainingAmount = alloc.NewRemaining
	o.PaymentStatus = alloc.NewStatus
	return nil
}

func (f *fakeStore) ListEntries(context.Context, ListEntriesRequest) ([]Entry, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) AccountSummary(context.Context, int64, int64) (*AccountSummary, error) {
	return nil, nil
}

func (f *fakeStore) OverdueCustomers(context.Context, int64) ([]OverdueCustomer, error) {
	return nil, nil
}

func (f *fakeStore) MarkOverdueEntries(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakeIdem struct {
	keys map[string]bool
}

func (f *fakeIdem) CheckAndInsert(_ context.Context, key, _ string) error {
	if f.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	f.keys[key] = true
	return nil
}

func (f *fakeIdem) Delete(_ context.Context, key string) error {
	delete(f.keys, key)
	return nil
}

func testService(store *fakeStore) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, nil, nil, logger)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func seedBalance(store *fakeStore, customerID int64, balance float64) {
	store.entries = append(store.entries, Entry{
		CustomerID: customerID,
		Type:       TypeCreditSale,
		Amount:     balance,
		Balance:    balance,
		CreatedAt:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	store.balances[customerID] = balance
}

func TestRecordPaymentAllocatesOldestFirst(t *testing.T) {
	store := newFakeStore()
	store.accounts[7] = &CustomerAccount{ID: 7, Name: "Ravi Traders", IsActive: true}
	seedBalance(store, 7, 150)
	store.orders[1] = &OpenOrder{
		ID: 1, OrderNumber: "ORD-000001", TotalAmount: 100, RemainingAmount: 100,
		PaymentStatus: "Pending", CreatedAt: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	}
	store.orders[2] = &OpenOrder{
		ID: 2, OrderNumber: "ORD-000002", TotalAmount: 50, RemainingAmount: 50,
		PaymentStatus: "Pending", CreatedAt: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
	}

	svc := testService(store)
	result, err := svc.RecordPayment(context.Background(), 1, PaymentRequest{
		CustomerID: 7, Amount: 120, PaymentMethod: "cash",
	}, "")
	require.NoError(t, err)

	require.Len(t, result.Allocations, 2)
	require.Equal(t, int64(1), result.Allocations[0].OrderID)
	require.Equal(t, 100.0, result.Allocations[0].Applied)
	require.Equal(t, "Paid", result.Allocations[0].NewStatus)
	require.Equal(t, int64(2), result.Allocations[1].OrderID)
	require.Equal(t, 20.0, result.Allocations[1].Applied)
	require.Equal(t, "Partially Paid", result.Allocations[1].NewStatus)

	require.Equal(t, 30.0, result.Balance)
	require.Equal(t, -120.0, result.Entry.Amount)
	require.NotNil(t, result.Entry.PaidDate)
	require.Equal(t, 30.0, store.balances[7])
}

func TestRecordPaymentSkipsRefundedOrders(t *testing.T) {
	store := newFakeStore()
	store.accounts[9] = &CustomerAccount{ID: 9, Name: "Patel Agro", IsActive: true}
	seedBalance(store, 9, 160)
	store.orders[1] = &OpenOrder{
		ID: 1, OrderNumber: "ORD-000001", TotalAmount: 100, RemainingAmount: 100,
		PaymentStatus: "Refunded", CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	store.orders[2] = &OpenOrder{
		ID: 2, OrderNumber: "ORD-000002", TotalAmount: 60, RemainingAmount: 60,
		PaymentStatus: "Pending", CreatedAt: time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
	}

	svc := testService(store)
	result, err := svc.RecordPayment(context.Background(), 1, PaymentRequest{
		CustomerID: 9, Amount: 100, PaymentMethod: "cash",
	}, "")
	require.NoError(t, err)

	require.Len(t, result.Allocations, 1)
	require.Equal(t, int64(2), result.Allocations[0].OrderID)
	require.Equal(t, 60.0, result.Allocations[0].Applied)
	require.Equal(t, 0.0, store.orders[1].PaidAmount, "refunded order absorbs nothing")
}

func TestRecordPaymentClampsBalanceAtZero(t *testing.T) {
	store := newFakeStore()
	store.accounts[3] = &CustomerAccount{ID: 3, Name: "Anita Agro", IsActive: true}
	seedBalance(store, 3, 80)

	svc := testService(store)
	result, err := svc.RecordPayment(context.Background(), 1, PaymentRequest{
		CustomerID: 3, Amount: 200, PaymentMethod: "upi",
	}, "")
	require.NoError(t, err)
	require.Equal(t, 0.0, result.Balance)
	require.Equal(t, -200.0, result.Entry.Amount)
}

func TestRecordPaymentExplicitOrderOnly(t *testing.T) {
	store := newFakeStore()
	store.accounts[5] = &CustomerAccount{ID: 5, Name: "Kumar Farms", IsActive: true}
	seedBalance(store, 5, 210)
	store.orders[10] = &OpenOrder{
		ID: 10, OrderNumber: "ORD-000010", TotalAmount: 90, RemainingAmount: 90,
		PaymentStatus: "Pending", CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	store.orders[11] = &OpenOrder{
		ID: 11, OrderNumber: "ORD-000011", TotalAmount: 120, RemainingAmount: 120,
		PaymentStatus: "Pending", CreatedAt: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
	}

	svc := testService(store)
	orderID := int64(11)
	result, err := svc.RecordPayment(context.Background(), 1, PaymentRequest{
		CustomerID: 5, Amount: 50, PaymentMethod: "cash", OrderID: &orderID,
	}, "")
	require.NoError(t, err)

	require.Len(t, result.Allocations, 1)
	require.Equal(t, int64(11), result.Allocations[0].OrderID)
	require.Equal(t, 50.0, result.Allocations[0].Applied)
	require.Equal(t, 90.0, store.orders[10].RemainingAmount, "older order untouched")
	require.Equal(t, 70.0, store.orders[11].RemainingAmount)
}

func TestRecordPaymentIdempotencyReplayRejected(t *testing.T) {
	store := newFakeStore()
	store.accounts[2] = &CustomerAccount{ID: 2, Name: "Green Valley", IsActive: true}
	seedBalance(store, 2, 500)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, nil, &fakeIdem{keys: map[string]bool{}}, logger)

	req := PaymentRequest{CustomerID: 2, Amount: 100, PaymentMethod: "cash"}
	_, err := svc.RecordPayment(context.Background(), 1, req, "key-1")
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), 1, req, "key-1")
	require.ErrorIs(t, err, httpx.ErrDuplicate)
	require.Equal(t, 400.0, store.balances[2], "balance unchanged by replay")
}

func TestRecordCreditSaleRejectsOverLimit(t *testing.T) {
	store := newFakeStore()
	store.accounts[4] = &CustomerAccount{ID: 4, Name: "Patel Agri", CreditLimit: 1000, IsActive: true}
	seedBalance(store, 4, 900)

	svc := testService(store)
	_, err := svc.RecordCreditSale(context.Background(), 1, CreditSaleRequest{
		CustomerID: 4, Amount: 200, Description: "Fertilizer on account",
	})
	require.ErrorIs(t, err, ErrCreditLimitExceeded)
	require.ErrorIs(t, err, httpx.ErrBusinessRule)
	require.Equal(t, 900.0, store.balances[4], "rejected sale leaves balance untouched")
	require.Len(t, store.entries, 1)
}

func TestRecordCreditSaleZeroLimitIsUnlimited(t *testing.T) {
	store := newFakeStore()
	store.accounts[6] = &CustomerAccount{ID: 6, Name: "Singh Seeds", CreditLimit: 0, PaymentTermsDays: 30, IsActive: true}

	svc := testService(store)
	result, err := svc.RecordCreditSale(context.Background(), 1, CreditSaleRequest{
		CustomerID: 6, Amount: 50000, Description: "Bulk seed order",
	})
	require.NoError(t, err)
	require.Equal(t, 50000.0, result.Balance)
	require.Equal(t, 50000.0, result.Entry.Balance)
	require.NotNil(t, result.Entry.DueDate)
	require.Equal(t, time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC), *result.Entry.DueDate,
		"due date comes from payment terms")
}

func TestRecordCreditSaleInactiveCustomer(t *testing.T) {
	store := newFakeStore()
	store.accounts[8] = &CustomerAccount{ID: 8, Name: "Closed Shop", IsActive: false}

	svc := testService(store)
	_, err := svc.RecordCreditSale(context.Background(), 1, CreditSaleRequest{
		CustomerID: 8, Amount: 100, Description: "Should fail",
	})
	require.ErrorIs(t, err, httpx.ErrBusinessRule)
}

func TestRecordAdjustmentFloorsAtZero(t *testing.T) {
	store := newFakeStore()
	store.accounts[9] = &CustomerAccount{ID: 9, Name: "Mehta Agro", IsActive: true}
	seedBalance(store, 9, 40)

	svc := testService(store)
	entry, err := svc.RecordAdjustment(context.Background(), 1, AdjustmentRequest{
		CustomerID: 9, Amount: -100, Type: "adjustment", Description: "Goodwill write-off",
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, entry.Balance)
	require.Equal(t, 0.0, store.balances[9])
}

func TestBalanceIsLatestEntryBalance(t *testing.T) {
	store := newFakeStore()
	store.accounts[12] = &CustomerAccount{ID: 12, Name: "Rao Brothers", IsActive: true}

	svc := testService(store)
	ctx := context.Background()
	_, err := svc.RecordCreditSale(ctx, 1, CreditSaleRequest{CustomerID: 12, Amount: 300, Description: "Pesticide"})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, 1, PaymentRequest{CustomerID: 12, Amount: 100, PaymentMethod: "cash"}, "")
	require.NoError(t, err)
	entry, err := svc.RecordAdjustment(ctx, 1, AdjustmentRequest{
		CustomerID: 12, Amount: 25, Type: "penalty", Description: "Late fee",
	})
	require.NoError(t, err)

	require.Equal(t, 225.0, entry.Balance)
	balance, err := store.LatestBalance(ctx, 12)
	require.NoError(t, err)
	require.Equal(t, 225.0, balance)
}

func TestAllocatePaymentSkipsSettledOrders(t *testing.T) {
	orders := []OpenOrder{
		{ID: 1, TotalAmount: 100, PaidAmount: 100, RemainingAmount: 0, PaymentStatus: "Paid",
			CreatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, TotalAmount: 60, PaidAmount: 0, RemainingAmount: 60, PaymentStatus: "Pending",
			CreatedAt: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)},
	}
	allocations := AllocatePayment(orders, 40)
	require.Len(t, allocations, 1)
	require.Equal(t, int64(2), allocations[0].OrderID)
	require.Equal(t, 40.0, allocations[0].Applied)
	require.Equal(t, "Partially Paid", allocations[0].NewStatus)
}

func TestNewCreditSaleEntryOverdueSnapshot(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -5)
	account := &CustomerAccount{ID: 1, IsActive: true}

	entry, _, err := NewCreditSaleEntry(account, 0, 100, nil, &past, "Backdated invoice", now)
	require.NoError(t, err)
	require.True(t, entry.IsOverdue)
}
