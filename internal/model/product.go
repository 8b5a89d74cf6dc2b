package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Stock must never go negative after a committed
// sale; the sale engine enforces this with a row lock plus a guarded update.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Barcode     *string   `gorm:"uniqueIndex"`
	Name        string    `gorm:"index;not null"`
	Description *string
	Category    string          `gorm:"not null"`
	Cost        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// MarginPct is derived from (Price - Cost) / Cost * 100
	MarginPct decimal.Decimal `gorm:"type:decimal(5,2)"`
	Stock     int             `gorm:"not null;default:0"`
	// MinStock is the reorder threshold; stock at or below it triggers alerts.
	MinStock  int  `gorm:"not null;default:5"`
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
