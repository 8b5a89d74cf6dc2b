package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required,gt=0"`
}

type CreateSaleRequest struct {
	Items         []SaleItemRequest `json:"items"          validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card virtualpay"`
	ClientID      *string           `json:"client_id"      validate:"omitempty,uuid"`
	DiscountTotal decimal.Decimal   `json:"discount_total" validate:"min=0"`
	TaxTotal      decimal.Decimal   `json:"tax_total"      validate:"min=0"`
	// ClientEmail: optional — when present, the receipt worker mails the PDF ticket.
	ClientEmail *string `json:"client_email" validate:"omitempty,email"`
}

type UpdateSaleItemRequest struct {
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required,gt=0"`
}

// DiscountItemRequest is input to the pure discount preview calculation.
type DiscountItemRequest struct {
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required,gt=0"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
}

type ApplyDiscountRequest struct {
	Items []DiscountItemRequest `json:"items" validate:"required,min=1,dive"`
	Rate  decimal.Decimal       `json:"rate"  validate:"min=0"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	Date   string `form:"date"`                 // YYYY-MM-DD; empty = today
	Status string `form:"status,default=paid"`  // paid | canceled | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ID        string          `json:"id"`
	Product   string          `json:"product"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	TicketNumber  int                `json:"ticket_number"`
	OperatorID    string             `json:"operator_id"`
	ClientID      *string            `json:"client_id"`
	SessionID     *string            `json:"session_id"`
	Items         []SaleItemResponse `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	TaxTotal      decimal.Decimal    `json:"tax_total"`
	DiscountTotal decimal.Decimal    `json:"discount_total"`
	Total         decimal.Decimal    `json:"total"`
	Profit        decimal.Decimal    `json:"profit"`
	PaymentMethod string             `json:"payment_method"`
	Status        string             `json:"status"`
	CreatedAt     string             `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Discount preview ───────────────────────────────────────────────────────

type DiscountedItem struct {
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
}

type DiscountResult struct {
	Items         []DiscountedItem `json:"items"`
	Total         decimal.Decimal  `json:"total"`
	TotalDiscount decimal.Decimal  `json:"total_discount"`
}
