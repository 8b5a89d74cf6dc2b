package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale (or movement) was paid.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCard       PaymentMethod = "card"
	PaymentVirtualPay PaymentMethod = "virtualpay"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentVirtualPay:
		return true
	}
	return false
}

// SaleStatus state machine: sales are created directly as paid;
// paid → canceled is the only transition and it is one-way.
type SaleStatus string

const (
	SalePending  SaleStatus = "pending"
	SalePaid     SaleStatus = "paid"
	SaleCanceled SaleStatus = "canceled"
)

// Sale is a committed multi-item sale. Total and Profit are computed at
// creation time inside the sale transaction and never recomputed outside an
// explicit item correction.
type Sale struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TicketNumber int       `gorm:"uniqueIndex;not null"`
	OperatorID   uuid.UUID `gorm:"type:uuid;not null;index"`
	// ClientID is optional — walk-in sales carry no client reference.
	ClientID *uuid.UUID `gorm:"type:uuid;index"`
	// SessionID is set for cash sales only, tying the sale to the open till.
	SessionID     *uuid.UUID      `gorm:"type:uuid;index"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountTotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Profit        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(15);not null"`
	Status        SaleStatus      `gorm:"type:varchar(10);not null;default:'paid'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items    []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Operator *User      `gorm:"foreignKey:OperatorID"`
	Client   *Client    `gorm:"foreignKey:ClientID"`
}

// SaleItem is one sale line. UnitPrice and Cost are frozen at the time of
// sale, so later catalog price or cost edits never change recorded totals or
// profit; LineTotal = Quantity × UnitPrice. Items are deleted in cascade with
// their parent Sale.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Cost      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
