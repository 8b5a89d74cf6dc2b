package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenRegisterRequest struct {
	OpeningAmount decimal.Decimal `json:"opening_amount" validate:"min=0"`
}

type CloseRegisterRequest struct {
	ClosingAmount decimal.Decimal `json:"closing_amount" validate:"min=0"`
}

type RecordMovementRequest struct {
	SessionID     string          `json:"session_id"     validate:"required,uuid"`
	Type          string          `json:"type"           validate:"required,oneof=ingreso egreso"`
	Concept       string          `json:"concept"        validate:"required,min=3"`
	Amount        decimal.Decimal `json:"amount"         validate:"required,gt=0"`
	Category      string          `json:"category"       validate:"omitempty,oneof=expense withdrawal deposit adjustment refund other"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,oneof=cash card virtualpay"`
	ReceiptNumber *string         `json:"receipt_number"`
	Notes         *string         `json:"notes"`
}

// UpdateMovementRequest corrects descriptive fields of a recorded movement.
type UpdateMovementRequest struct {
	Concept       *string `json:"concept"        validate:"omitempty,min=3"`
	Category      *string `json:"category"       validate:"omitempty,oneof=expense withdrawal deposit adjustment refund other"`
	ReceiptNumber *string `json:"receipt_number"`
	Notes         *string `json:"notes"`
	Status        *string `json:"status"         validate:"omitempty,oneof=active cancelled pending"`
}

// MovementFilter is bound from the query string of GET /v1/movements.
// All filters are optional and conjunctive.
type MovementFilter struct {
	SessionID string `form:"session_id" validate:"omitempty,uuid"`
	Type      string `form:"type"       validate:"omitempty,oneof=ingreso egreso"`
	Category  string `form:"category"`
	Date      string `form:"date"` // YYYY-MM-DD, inclusive local-day boundary
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SessionResponse struct {
	ID            string           `json:"id"`
	OperatorID    string           `json:"operator_id"`
	Operator      string           `json:"operator"`
	OpeningAmount decimal.Decimal  `json:"opening_amount"`
	ClosingAmount *decimal.Decimal `json:"closing_amount"`
	Status        string           `json:"status"`
	OpenedAt      string           `json:"opened_at"`
	ClosedAt      *string          `json:"closed_at"`
}

type MovementResponse struct {
	ID            string          `json:"id"`
	SessionID     string          `json:"session_id"`
	Type          string          `json:"type"`
	Concept       string          `json:"concept"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"payment_method"`
	ReceiptNumber *string         `json:"receipt_number"`
	Notes         *string         `json:"notes"`
	Status        string          `json:"status"`
	Operator      string          `json:"operator"`
	// SessionOpeningAmount is dereferenced for display on the movements list.
	SessionOpeningAmount decimal.Decimal `json:"session_opening_amount"`
	CreatedAt            string          `json:"created_at"`
}

// MovementTotals is the fixed-shape per-type aggregate used by the dashboard
// to compute expected cash-in-drawer. Both totals default to zero.
type MovementTotals struct {
	Inflows  decimal.Decimal `json:"ingresos"`
	Outflows decimal.Decimal `json:"egresos"`
}
