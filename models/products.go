package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents an item sold at the event.
// Stock is only decremented by a completed checkout.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"not null;index"`
	Description *string
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ImageURL    *string
	Active      bool            `gorm:"not null"`
	Stock       int             `gorm:"not null"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index"`
	Category    *Category       `gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time
}

func (p *Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CategoryName returns the category name, or fallback for uncategorized products.
func (p *Product) CategoryName(fallback string) string {
	if p.Category == nil || p.Category.Name == "" {
		return fallback
	}
	return p.Category.Name
}
