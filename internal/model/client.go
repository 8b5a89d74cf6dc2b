package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientType: a record is either a customer or a supplier.
type ClientType string

const (
	TypeClient   ClientType = "client"
	TypeSupplier ClientType = "supplier"
)

// Client stores customer and supplier records. Balance is a running amount
// used for simple credit tracking; positive means the client owes the store.
type Client struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name    string    `gorm:"index;not null"`
	Company *string
	TaxID   *string `gorm:"column:tax_id"`
	Email   *string
	Phone   *string
	Address *string
	Type    ClientType      `gorm:"type:varchar(10);not null;default:'client'"`
	Balance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Active  bool            `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
