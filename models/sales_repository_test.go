package models

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSale(method string, total int64, at time.Time) *Sale {
	productID := uuid.New()
	return &Sale{
		CreatedAt:     at,
		TotalAmount:   decimal.NewFromInt(total),
		PaymentMethod: method,
		Status:        SaleStatusCompleted,
		Items: []SaleItem{
			{
				ProductID:   &productID,
				ProductName: "Quentão",
				Quantity:    1,
				UnitPrice:   decimal.NewFromInt(total),
				TotalPrice:  decimal.NewFromInt(total),
			},
		},
	}
}

func TestSalesRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSalesRepository(db)

	sale := newSale("pix", 25, time.Date(2026, 6, 20, 15, 0, 0, 0, time.UTC))
	require.NoError(t, repo.CreateSale(ctx, sale))
	assert.NotEqual(t, uuid.Nil, sale.ID)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, sale.ID, sale.Items[0].SaleID)

	got, err := repo.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "pix", got.PaymentMethod)
	assert.True(t, decimal.NewFromInt(25).Equal(got.TotalAmount))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Quentão", got.Items[0].ProductName)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

func TestSalesRepository_IdempotencyKey(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSalesRepository(db)

	key := "terminal-1-0001"
	first := newSale("money", 10, time.Date(2026, 6, 20, 15, 0, 0, 0, time.UTC))
	first.IdempotencyKey = &key
	require.NoError(t, repo.CreateSale(ctx, first))

	second := newSale("money", 10, time.Date(2026, 6, 20, 15, 1, 0, 0, time.UTC))
	second.IdempotencyKey = &key
	assert.ErrorIs(t, repo.CreateSale(ctx, second), ErrDuplicateSale)

	got, err := repo.GetByIdempotencyKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = repo.GetByIdempotencyKey(ctx, "unknown")
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

func TestSalesRepository_ListSales(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSalesRepository(db)

	day := time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreateSale(ctx, newSale("pix", 10, day.Add(9*time.Hour))))
	require.NoError(t, repo.CreateSale(ctx, newSale("money", 30, day.Add(12*time.Hour))))
	require.NoError(t, repo.CreateSale(ctx, newSale("pix", 50, day.Add(18*time.Hour))))
	require.NoError(t, repo.CreateSale(ctx, newSale("credit", 70, day.Add(30*time.Hour))))

	start := day
	end := day.Add(24 * time.Hour)
	min := decimal.NewFromInt(20)

	testCases := []struct {
		name     string
		filters  SaleFilters
		expected []int64
	}{
		{name: "no filters newest first", filters: SaleFilters{}, expected: []int64{70, 50, 30, 10}},
		{name: "date range", filters: SaleFilters{Start: &start, End: &end}, expected: []int64{50, 30, 10}},
		{name: "payment method", filters: SaleFilters{PaymentMethod: "pix"}, expected: []int64{50, 10}},
		{name: "min amount in range", filters: SaleFilters{Start: &start, End: &end, MinAmount: &min}, expected: []int64{50, 30}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sales, err := repo.ListSales(ctx, tc.filters)
			require.NoError(t, err)
			require.Len(t, sales, len(tc.expected))
			for i, total := range tc.expected {
				assert.True(t, decimal.NewFromInt(total).Equal(sales[i].TotalAmount), "sale %d total", i)
			}
		})
	}

	recent, err := repo.GetRecentSales(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.True(t, decimal.NewFromInt(70).Equal(recent[0].TotalAmount))
}

func TestSalesRepository_DeleteSale(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSalesRepository(db)

	sale := newSale("debit", 15, time.Date(2026, 6, 20, 10, 0, 0, 0, time.UTC))
	require.NoError(t, repo.CreateSale(ctx, sale))

	require.NoError(t, repo.DeleteSale(ctx, sale.ID))
	_, err := repo.GetByID(ctx, sale.ID)
	assert.ErrorIs(t, err, ErrSaleNotFound)

	var items int64
	require.NoError(t, db.Model(&SaleItem{}).Where("sale_id = ?", sale.ID).Count(&items).Error)
	assert.Zero(t, items)

	assert.ErrorIs(t, repo.DeleteSale(ctx, sale.ID), ErrSaleNotFound)
}
