package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agromart/agromart/internal/platform/httpx"
	"github.com/agromart/agromart/internal/shared"
)

type fakeRepo struct {
	products map[int64]*Product
}

func (f *fakeRepo) Create(_ context.Context, p Product) (*Product, error) {
	p.ID = int64(len(f.products) + 1)
	cp := p
	f.products[p.ID] = &cp
	return &cp, nil
}

func (f *fakeRepo) Get(_ context.Context, id, _ int64) (*Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) List(context.Context, ListProductsRequest) ([]Product, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) Update(context.Context, int64, int64, UpdateProductRequest) (*Product, error) {
	return nil, httpx.ErrNotFound
}

func (f *fakeRepo) Deactivate(context.Context, int64, int64) error { return nil }

func (f *fakeRepo) SetStock(_ context.Context, id, _ int64, quantity int) (*Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	p.StockQuantity = quantity
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) LowStock(_ context.Context, _ int64) ([]Product, error) {
	var result []Product
	for _, p := range f.products {
		if p.IsActive && p.IsLowStock() {
			result = append(result, *p)
		}
	}
	return result, nil
}

type fakeAudit struct {
	logs []shared.AuditLog
}

func (f *fakeAudit) Record(_ context.Context, log shared.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func seedProduct(repo *fakeRepo, id int64, stock, minimum int) {
	repo.products[id] = &Product{
		ID: id, Name: "Urea 50kg", Category: CategoryFertilizers,
		Price: 400, StockQuantity: stock, MinimumStock: minimum, IsActive: true,
	}
}

func TestAdjustStockOperations(t *testing.T) {
	cases := []struct {
		name      string
		operation string
		quantity  int
		start     int
		want      int
	}{
		{"add", "add", 5, 10, 15},
		{"subtract", "subtract", 4, 10, 6},
		{"subtract floors at zero", "subtract", 25, 10, 0},
		{"set", "set", 5, 42, 5},
		{"set zero", "set", 0, 42, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{products: map[int64]*Product{}}
			seedProduct(repo, 1, tc.start, 5)
			svc := NewService(repo, nil)

			updated, err := svc.AdjustStock(context.Background(), 1, 1, AdjustStockRequest{
				Operation: tc.operation, Quantity: tc.quantity,
			})
			require.NoError(t, err)
			require.Equal(t, tc.want, updated.StockQuantity)
		})
	}
}

func TestAdjustStockRecordsAudit(t *testing.T) {
	repo := &fakeRepo{products: map[int64]*Product{}}
	seedProduct(repo, 1, 10, 5)
	audit := &fakeAudit{}
	svc := NewService(repo, audit)

	_, err := svc.AdjustStock(context.Background(), 1, 7, AdjustStockRequest{
		Operation: "subtract", Quantity: 3, Reason: "damaged bags",
	})
	require.NoError(t, err)

	require.Len(t, audit.logs, 1)
	log := audit.logs[0]
	require.Equal(t, "catalog:stock_subtract", log.Action)
	require.Equal(t, int64(7), log.ActorID)
	require.Equal(t, 10, log.Meta["old_stock"])
	require.Equal(t, 7, log.Meta["new_stock"])
}

func TestLowStockThresholdIsInclusive(t *testing.T) {
	repo := &fakeRepo{products: map[int64]*Product{}}
	seedProduct(repo, 1, 5, 5)
	seedProduct(repo, 2, 6, 5)
	svc := NewService(repo, nil)

	low, err := svc.LowStock(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, int64(1), low[0].ID)
}
