package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus is the register session lifecycle state.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "open"
	SessionClosed SessionStatus = "closed"
)

// RegisterSession represents the lifecycle of a cash register (till) session.
// At most one open session may exist per operator; closing is terminal.
type RegisterSession struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OperatorID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	OpeningAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// ClosingAmount stays nil while the session is open.
	ClosingAmount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status        SessionStatus    `gorm:"type:varchar(10);not null;default:'open'"`
	OpenedAt      time.Time
	ClosedAt      *time.Time

	Operator  *User          `gorm:"foreignKey:OperatorID"`
	Movements []CashMovement `gorm:"foreignKey:SessionID"`
}

// MovementType distinguishes cash inflows from outflows.
type MovementType string

const (
	MovementIngreso MovementType = "ingreso" // inflow
	MovementEgreso  MovementType = "egreso"  // outflow
)

func (t MovementType) Valid() bool {
	return t == MovementIngreso || t == MovementEgreso
}

// MovementCategory classifies the business reason behind a manual movement.
type MovementCategory string

const (
	CategoryExpense    MovementCategory = "expense"
	CategoryWithdrawal MovementCategory = "withdrawal"
	CategoryDeposit    MovementCategory = "deposit"
	CategoryAdjustment MovementCategory = "adjustment"
	CategoryRefund     MovementCategory = "refund"
	CategoryOther      MovementCategory = "other"
)

func (c MovementCategory) Valid() bool {
	switch c {
	case CategoryExpense, CategoryWithdrawal, CategoryDeposit,
		CategoryAdjustment, CategoryRefund, CategoryOther:
		return true
	}
	return false
}

// MovementStatus is the movement record state.
type MovementStatus string

const (
	MovementActive    MovementStatus = "active"
	MovementCancelled MovementStatus = "cancelled"
	MovementPending   MovementStatus = "pending"
)

// CashMovement is a manual cash event recorded against an open register
// session. Sales never create ledger rows; the ledger tracks manual
// ingress/egress only.
type CashMovement struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	OperatorID    uuid.UUID        `gorm:"type:uuid;not null"`
	Type          MovementType     `gorm:"type:varchar(10);not null"`
	Concept       string           `gorm:"not null"`
	Amount        decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Category      MovementCategory `gorm:"type:varchar(20);not null;default:'other'"`
	PaymentMethod PaymentMethod    `gorm:"type:varchar(15);not null;default:'cash'"`
	ReceiptNumber *string
	Notes         *string
	Status        MovementStatus `gorm:"type:varchar(10);not null;default:'active'"`
	CreatedAt     time.Time

	Operator *User            `gorm:"foreignKey:OperatorID"`
	Session  *RegisterSession `gorm:"foreignKey:SessionID"`
}
