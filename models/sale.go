package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const SaleStatusCompleted = "completed"

// Sale is one completed POS checkout. It is never updated after creation.
type Sale struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey"`
	CreatedAt      time.Time        `gorm:"index"`
	TotalAmount    decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	PaymentMethod  string           `gorm:"not null;index"`
	Status         string           `gorm:"not null"`
	AmountReceived *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Change         *decimal.Decimal `gorm:"type:decimal(10,2)"`
	IdempotencyKey *string          `gorm:"uniqueIndex"`
	Items          []SaleItem       `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

func (s *Sale) TableName() string {
	return "sales"
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SaleItem keeps a snapshot of the product name and price so history
// survives later product edits or deletions.
type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID      `gorm:"type:uuid"`
	ProductName string          `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (i *SaleItem) TableName() string {
	return "sale_items"
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
