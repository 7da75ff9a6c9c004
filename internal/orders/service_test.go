package orders

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agromart/agromart/internal/catalog"
	"github.com/agromart/agromart/internal/customers"
	"github.com/agromart/agromart/internal/ledger"
	"github.com/agromart/agromart/internal/platform/httpx"
	"github.com/agromart/agromart/internal/promotions"
	"github.com/agromart/agromart/internal/shared"
)

type fakeState struct {
	customers map[int64]*customers.Customer
	products  map[int64]*catalog.Product
	orders    map[int64]*Order
	entries   []ledger.Entry
	sequences map[string]int64
	nextID    int64
}

func (s *fakeState) clone() *fakeState {
	cp := &fakeState{
		customers: map[int64]*customers.Customer{},
		products:  map[int64]*catalog.Product{},
		orders:    map[int64]*Order{},
		entries:   append([]ledger.Entry(nil), s.entries...),
		sequences: map[string]int64{},
		nextID:    s.nextID,
	}
	for id, c := range s.customers {
		c2 := *c
		cp.customers[id] = &c2
	}
	for id, p := range s.products {
		p2 := *p
		cp.products[id] = &p2
	}
	for id, o := range s.orders {
		o2 := *o
		o2.Items = append([]Item(nil), o.Items...)
		cp.orders[id] = &o2
	}
	for k, v := range s.sequences {
		cp.sequences[k] = v
	}
	return cp
}

// fakeStore keeps everything in memory and rolls state back when the
// transaction callback fails, mirroring the real store's atomicity.
type fakeStore struct {
	state *fakeState
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: &fakeState{
		customers: map[int64]*customers.Customer{},
		products:  map[int64]*catalog.Product{},
		orders:    map[int64]*Order{},
		sequences: map[string]int64{},
		nextID:    1,
	}}
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error {
	snapshot := f.state.clone()
	if err := fn(ctx, f); err != nil {
		f.state = snapshot
		return err
	}
	return nil
}

func (f *fakeStore) Get(_ context.Context, id, _ int64) (*Order, error) {
	o, ok := f.state.orders[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) List(context.Context, ListOrdersRequest) ([]Order, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) LockCustomer(_ context.Context, customerID, _ int64) (*customers.Customer, error) {
	c, ok := f.state.customers[customerID]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) LockProduct(_ context.Context, productID, _ int64) (*catalog.Product, error) {
	p, ok := f.state.products[productID]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) AdjustStock(_ context.Context, productID int64, delta int) error {
	p := f.state.products[productID]
	p.StockQuantity += delta
	if p.StockQuantity < 0 {
		p.StockQuantity = 0
	}
	return nil
}

func (f *fakeStore) NextDocNumber(_ context.Context, _ int64, kind string) (string, error) {
	f.state.sequences[kind]++
	prefix := "ORD"
	if kind == shared.SeqInvoice {
		prefix = "INV"
	}
	return shared.FormatDocumentNumber(prefix, f.state.sequences[kind]), nil
}

func (f *fakeStore) InsertOrder(_ context.Context, order Order) (*Order, error) {
	order.ID = f.state.nextID
	f.state.nextID++
	order.CreatedAt = time.Now()
	order.RemainingAmount = order.TotalAmount
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	cp := order
	f.state.orders[order.ID] = &cp
	return &order, nil
}

func (f *fakeStore) GetForUpdate(_ context.Context, id, _ int64) (*Order, error) {
	o, ok := f.state.orders[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	return &cp, nil
}

func (f *fakeStore) SetStatus(_ context.Context, id int64, status *Status, payStatus *PaymentStatus) error {
	o := f.state.orders[id]
	if status != nil {
		o.Status = *status
	}
	if payStatus != nil {
		o.PaymentStatus = *payStatus
	}
	return nil
}

func (f *fakeStore) SetInvoiceNumber(_ context.Context, id int64, invoiceNumber string) error {
	f.state.orders[id].InvoiceNumber = &invoiceNumber
	return nil
}

func (f *fakeStore) BumpCustomerPurchases(_ context.Context, customerID int64, amount float64) error {
	c := f.state.customers[customerID]
	c.TotalPurchases += amount
	now := time.Now()
	c.LastPurchaseDate = &now
	return nil
}

func (f *fakeStore) LatestBalance(_ context.Context, customerID int64) (float64, error) {
	for i := len(f.state.entries) - 1; i >= 0; i-- {
		if f.state.entries[i].CustomerID == customerID {
			return f.state.entries[i].Balance, nil
		}
	}
	return 0, nil
}

func (f *fakeStore) InsertLedgerEntry(_ context.Context, entry ledger.Entry, ownerID int64) (*ledger.Entry, error) {
	entry.CreatedBy = ownerID
	f.state.entries = append(f.state.entries, entry)
	return &entry, nil
}

func (f *fakeStore) SetCustomerBalance(_ context.Context, customerID int64, balance float64) error {
	f.state.customers[customerID].CurrentBalance = balance
	return nil
}

type fakePromos struct {
	discount   float64
	evalErr    error
	usageCodes []string
}

func (f *fakePromos) Evaluate(_ context.Context, _ int64, _ string, _ *customers.Customer, items []promotions.CartItem) (*promotions.Promotion, float64, float64, error) {
	if f.evalErr != nil {
		return nil, 0, 0, f.evalErr
	}
	var applicable float64
	for _, it := range items {
		applicable += it.TotalPrice
	}
	return &promotions.Promotion{Code: "TEST"}, f.discount, applicable, nil
}

func (f *fakePromos) RecordUsage(_ context.Context, _ int64, code string) error {
	f.usageCodes = append(f.usageCodes, code)
	return nil
}

func testService(store *fakeStore, promos *fakePromos) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, promos, nil, nil, logger)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func seedCustomer(store *fakeStore, id int64, limit float64) {
	store.state.customers[id] = &customers.Customer{
		ID: id, Name: fmt.Sprintf("Customer %d", id), CustomerGroup: customers.GroupRegular,
		CreditLimit: limit, PaymentTermsDays: 30, IsActive: true,
	}
}

func seedProduct(store *fakeStore, id int64, price float64, stock int) {
	store.state.products[id] = &catalog.Product{
		ID: id, Name: fmt.Sprintf("Product %d", id), Category: catalog.CategoryFertilizers,
		Price: price, StockQuantity: stock, MinimumStock: 5, IsActive: true,
	}
}

func TestCreateOrderTotalsAndStock(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 1, 0)
	seedProduct(store, 10, 50, 20)
	seedProduct(store, 11, 30, 8)

	svc := testService(store, &fakePromos{})
	order, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		CustomerID: 1,
		Items: []CreateItemRequest{
			{ProductID: 10, Quantity: 4},
			{ProductID: 11, Quantity: 2},
		},
		PaymentMethod: "cash",
		TaxAmount:     10,
	})
	require.NoError(t, err)

	require.Equal(t, "ORD-000001", order.OrderNumber)
	require.Equal(t, 260.0, order.Subtotal)
	require.Equal(t, 270.0, order.TotalAmount, "total = subtotal + tax - discount")
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, 16, store.state.products[10].StockQuantity)
	require.Equal(t, 6, store.state.products[11].StockQuantity)
	require.Equal(t, 270.0, store.state.customers[1].TotalPurchases)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 1, 0)
	seedProduct(store, 10, 50, 3)

	svc := testService(store, &fakePromos{})
	_, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		CustomerID:    1,
		Items:         []CreateItemRequest{{ProductID: 10, Quantity: 4}},
		PaymentMethod: "cash",
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 3, store.state.products[10].StockQuantity)
	require.Empty(t, store.state.orders)
}

func TestCreateOrderAppliesServerSideDiscount(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 1, 0)
	seedProduct(store, 10, 100, 50)

	code := "HARVEST10"
	svc := testService(store, &fakePromos{discount: 80})
	order, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		CustomerID:    1,
		Items:         []CreateItemRequest{{ProductID: 10, Quantity: 10}},
		PaymentMethod: "cash",
		PromotionCode: &code,
	})
	require.NoError(t, err)
	require.Equal(t, 80.0, order.DiscountAmount)
	require.Equal(t, 920.0, order.TotalAmount)
}

func TestCreateOrderStoresCanonicalPromotionCode(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 1, 0)
	seedProduct(store, 10, 100, 50)

	// Client sends the code in lowercase; the persisted order must carry the
	// promotion's own code or per-customer usage counts never match.
	code := "test"
	svc := testService(store, &fakePromos{discount: 10})
	order, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		CustomerID:    1,
		Items:         []CreateItemRequest{{ProductID: 10, Quantity: 1}},
		PaymentMethod: "cash",
		PromotionCode: &code,
	})
	require.NoError(t, err)
	require.NotNil(t, order.PromotionCode)
	require.Equal(t, "TEST", *order.PromotionCode)
}

func TestCreateOrderRejectedPromotionRollsBack(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 1, 0)
	seedProduct(store, 10, 100, 50)

	code := "EXPIRED"
	promoErr := fmt.Errorf("%w: promotion is not active or has expired", httpx.ErrBusinessRule)
	svc := testService(store, &fakePromos{evalErr: promoErr})
	_, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		CustomerID:    1,
		Items:         []CreateItemRequest{{ProductID: 10, Quantity: 2}},
		PaymentMethod: "cash",
		PromotionCode: &code,
	})
	require.ErrorIs(t, err, httpx.ErrBusinessRule)
	require.Equal(t, 50, store.state.products[10].StockQuantity)
	require.Empty(t, store.state.orders)
}

func TestCreditCheckoutPostsLedgerEntry(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 1, 5000)
	seedProduct(store, 10, 200, 30)

	svc := testService(store, &fakePromos{})
	order, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		CustomerID:    1,
		Items:         []CreateItemRequest{{ProductID: 10, Quantity: 5}},
		PaymentMethod: "credit",
	})
	require.NoError(t, err)

	require.Len(t, store.state.entries, 1)
	entry := store.state.entries[0]
	require.Equal(t, ledger.TypeCreditSale, entry.Type)
	require.Equal(t, 1000.0, entry.Amount)
	require.Equal(t, 1000.0, entry.Balance)
	require.Equal(t, &order.ID, entry.OrderID)
	require.NotNil(t, entry.DueDate, "due date from customer payment terms")
	require.Equal(t, 1000.0, store.state.customers[1].CurrentBalance)
}

func TestCreditCheckoutOverLimitRollsBackStock(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 1, 1000)
	store.state.customers[1].CurrentBalance = 900
	store.state.entries = append(store.state.entries, ledger.Entry{
		CustomerID: 1, Type: ledger.TypeCreditSale, Amount: 900, Balance: 900,
	})
	seedProduct(store, 10, 100, 10)

	svc := testService(store, &fakePromos{})
	_, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		CustomerID:    1,
		Items:         []CreateItemRequest{{ProductID: 10, Quantity: 2}},
		PaymentMethod: "credit",
	})
	require.ErrorIs(t, err, ledger.ErrCreditLimitExceeded)
	require.Equal(t, 10, store.state.products[10].StockQuantity, "stock restored on rollback")
	require.Empty(t, store.state.orders)
	require.Len(t, store.state.entries, 1)
	require.Equal(t, 900.0, store.state.customers[1].CurrentBalance)
}

func TestConfirmAssignsInvoiceAndRecordsUsage(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 1, 0)
	seedProduct(store, 10, 50, 20)

	code := "HARVEST10"
	promos := &fakePromos{discount: 10}
	svc := testService(store, promos)
	order, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		CustomerID:    1,
		Items:         []CreateItemRequest{{ProductID: 10, Quantity: 1}},
		PaymentMethod: "cash",
		PromotionCode: &code,
	})
	require.NoError(t, err)
	require.Nil(t, order.InvoiceNumber)

	confirmed, err := svc.Confirm(context.Background(), order.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, confirmed.InvoiceNumber)
	require.Equal(t, "INV-000001", *confirmed.InvoiceNumber)
	require.Equal(t, StatusConfirmed, confirmed.Status)
	require.Equal(t, []string{code}, promos.usageCodes, "usage counted at confirmation")

	_, err = svc.Confirm(context.Background(), order.ID, 1)
	require.ErrorIs(t, err, httpx.ErrBusinessRule, "confirm is pending-only")
}

func TestCancelRestoresStock(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 1, 0)
	seedProduct(store, 10, 50, 20)
	seedProduct(store, 11, 30, 8)

	svc := testService(store, &fakePromos{})
	order, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		CustomerID: 1,
		Items: []CreateItemRequest{
			{ProductID: 10, Quantity: 4},
			{ProductID: 11, Quantity: 3},
		},
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	require.Equal(t, 16, store.state.products[10].StockQuantity)

	cancelled, err := svc.Cancel(context.Background(), order.ID, 1)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.Equal(t, 20, store.state.products[10].StockQuantity)
	require.Equal(t, 8, store.state.products[11].StockQuantity)

	_, err = svc.Cancel(context.Background(), order.ID, 1)
	require.ErrorIs(t, err, httpx.ErrBusinessRule, "cancelled is terminal")
}

func TestUpdateStatusRejectsCancelledTarget(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 1, 0)
	seedProduct(store, 10, 50, 20)

	svc := testService(store, &fakePromos{})
	order, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		CustomerID:    1,
		Items:         []CreateItemRequest{{ProductID: 10, Quantity: 1}},
		PaymentMethod: "cash",
	})
	require.NoError(t, err)

	cancelled := string(StatusCancelled)
	_, err = svc.UpdateStatus(context.Background(), order.ID, 1, UpdateStatusRequest{Status: &cancelled})
	require.ErrorIs(t, err, httpx.ErrValidation, "cancellation only via the cancel endpoint")

	delivered := string(StatusDelivered)
	updated, err := svc.UpdateStatus(context.Background(), order.ID, 1, UpdateStatusRequest{Status: &delivered})
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, updated.Status)
}
