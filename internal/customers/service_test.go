package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agromart/agromart/internal/platform/httpx"
)

type fakeRepo struct {
	created []Customer
	byPhone map[string]bool
}

func (f *fakeRepo) Create(_ context.Context, c Customer) (*Customer, error) {
	if f.byPhone[c.Phone] {
		return nil, httpx.ErrDuplicate
	}
	if f.byPhone == nil {
		f.byPhone = map[string]bool{}
	}
	f.byPhone[c.Phone] = true
	c.ID = int64(len(f.created) + 1)
	c.IsActive = true
	f.created = append(f.created, c)
	return &c, nil
}

func (f *fakeRepo) Get(context.Context, int64, int64) (*Customer, error) {
	return nil, httpx.ErrNotFound
}

func (f *fakeRepo) List(context.Context, ListCustomersRequest) ([]Customer, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) Update(context.Context, int64, int64, UpdateCustomerRequest) (*Customer, error) {
	return nil, httpx.ErrNotFound
}

func (f *fakeRepo) Deactivate(context.Context, int64, int64) error { return nil }

func TestCreateDefaultsToNewGroup(t *testing.T) {
	svc := NewService(&fakeRepo{byPhone: map[string]bool{}})

	created, err := svc.Create(context.Background(), CreateCustomerRequest{
		Name:  "  Ravi Traders ",
		Phone: "9876543210",
	}, 1)
	require.NoError(t, err)
	require.Equal(t, GroupNew, created.CustomerGroup)
	require.Equal(t, "Ravi Traders", created.Name, "name is trimmed")
	require.Equal(t, int64(1), created.CreatedBy)
}

func TestCreateRejectsUnknownGroup(t *testing.T) {
	svc := NewService(&fakeRepo{byPhone: map[string]bool{}})

	_, err := svc.Create(context.Background(), CreateCustomerRequest{
		Name: "Ravi", Phone: "9876543210", CustomerGroup: "platinum",
	}, 1)
	require.Error(t, err)
}

func TestCreateDuplicatePhone(t *testing.T) {
	repo := &fakeRepo{byPhone: map[string]bool{}}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateCustomerRequest{
		Name: "Ravi", Phone: "9876543210",
	}, 1)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateCustomerRequest{
		Name: "Other Shop", Phone: "9876543210",
	}, 1)
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestValidGroup(t *testing.T) {
	for _, g := range []CustomerGroup{GroupNew, GroupRegular, GroupVIP, GroupWholesale} {
		require.True(t, ValidGroup(g))
	}
	require.False(t, ValidGroup("platinum"))
}
