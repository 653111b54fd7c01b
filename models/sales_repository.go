package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrSaleNotFound is returned when a sale is not found.
	ErrSaleNotFound = errors.New("sale not found")
	// ErrDuplicateSale is returned when a sale reuses an idempotency key.
	ErrDuplicateSale = errors.New("sale already recorded for idempotency key")
)

// SaleFilters narrows ListSales. Start is inclusive, End exclusive.
type SaleFilters struct {
	Start         *time.Time
	End           *time.Time
	PaymentMethod string
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
}

type SalesRepository struct {
	db *gorm.DB
}

func NewSalesRepository(db *gorm.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

// CreateSale inserts the sale and its items in one transaction.
func (r *SalesRepository) CreateSale(ctx context.Context, sale *Sale) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := sale.Items
		sale.Items = nil
		defer func() { sale.Items = items }()

		if err := tx.Create(sale).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].SaleID = sale.ID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if isUniqueViolation(err) {
		return ErrDuplicateSale
	}
	return err
}

func (r *SalesRepository) GetByID(ctx context.Context, id uuid.UUID) (*Sale, error) {
	var sale Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return &sale, nil
}

func (r *SalesRepository) GetByIdempotencyKey(ctx context.Context, key string) (*Sale, error) {
	var sale Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("idempotency_key = ?", key).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// ListSales returns sales matching filters, newest first.
func (r *SalesRepository) ListSales(ctx context.Context, filters SaleFilters) ([]Sale, error) {
	var sales []Sale

	query := r.db.WithContext(ctx).Model(&Sale{})

	if filters.Start != nil {
		query = query.Where("created_at >= ?", *filters.Start)
	}
	if filters.End != nil {
		query = query.Where("created_at < ?", *filters.End)
	}
	if filters.PaymentMethod != "" {
		query = query.Where("payment_method = ?", filters.PaymentMethod)
	}
	if filters.MinAmount != nil {
		query = query.Where("total_amount >= ?", *filters.MinAmount)
	}
	if filters.MaxAmount != nil {
		query = query.Where("total_amount <= ?", *filters.MaxAmount)
	}

	if err := query.Order("created_at DESC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *SalesRepository) GetRecentSales(ctx context.Context, limit int) ([]Sale, error) {
	var sales []Sale
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *SalesRepository) DeleteSale(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", id).Delete(&SaleItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Sale{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSaleNotFound
		}
		return nil
	})
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
