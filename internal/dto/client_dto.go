package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateClientRequest struct {
	Name    string  `json:"name"    validate:"required,min=2,max=120"`
	Company *string `json:"company"`
	TaxID   *string `json:"tax_id"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Type    string  `json:"type"    validate:"required,oneof=client supplier"`
}

type UpdateClientRequest struct {
	Name    *string `json:"name"    validate:"omitempty,min=2,max=120"`
	Company *string `json:"company"`
	TaxID   *string `json:"tax_id"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Type    *string `json:"type"    validate:"omitempty,oneof=client supplier"`
}

// AdjustBalanceRequest moves the running balance by a signed delta.
type AdjustBalanceRequest struct {
	Delta  decimal.Decimal `json:"delta"  validate:"required"`
	Reason string          `json:"reason" validate:"required,min=3"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ClientFilter struct {
	Name  string `form:"name"`
	Type  string `form:"type" validate:"omitempty,oneof=client supplier"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClientResponse struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Company *string         `json:"company"`
	TaxID   *string         `json:"tax_id"`
	Email   *string         `json:"email"`
	Phone   *string         `json:"phone"`
	Address *string         `json:"address"`
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
	Active  bool            `json:"active"`
}

type ClientListResponse struct {
	Data  []ClientResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
