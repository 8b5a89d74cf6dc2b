package dto

import "github.com/shopspring/decimal"

// ─── Filters ─────────────────────────────────────────────────────────────────

type ReportRangeFilter struct {
	From string `form:"from" validate:"required,datetime=2006-01-02"`
	To   string `form:"to"   validate:"required,datetime=2006-01-02"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DailySummaryResponse struct {
	Date            string                     `json:"date"`
	SalesCount      int64                      `json:"sales_count"`
	GrossTotal      decimal.Decimal            `json:"gross_total"`
	Profit          decimal.Decimal            `json:"profit"`
	ByPaymentMethod map[string]decimal.Decimal `json:"by_payment_method"`
	CashInflows     decimal.Decimal            `json:"cash_inflows"`
	CashOutflows    decimal.Decimal            `json:"cash_outflows"`
}

type RangeSummaryResponse struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	SalesCount int64           `json:"sales_count"`
	GrossTotal decimal.Decimal `json:"gross_total"`
	Profit     decimal.Decimal `json:"profit"`
	Days       []DailyBucket   `json:"days"`
}

type DailyBucket struct {
	Date       string          `json:"date"`
	SalesCount int64           `json:"sales_count"`
	GrossTotal decimal.Decimal `json:"gross_total"`
	Profit     decimal.Decimal `json:"profit"`
}

type TopProductEntry struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	QuantitySold int64           `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type SessionReportResponse struct {
	SessionID      string           `json:"session_id"`
	OperatorID     string           `json:"operator_id"`
	OpenedAt       string           `json:"opened_at"`
	ClosedAt       *string          `json:"closed_at"`
	OpeningAmount  decimal.Decimal  `json:"opening_amount"`
	ClosingAmount  *decimal.Decimal `json:"closing_amount"`
	ManualInflows  decimal.Decimal  `json:"manual_inflows"`
	ManualOutflows decimal.Decimal  `json:"manual_outflows"`
	CashSalesTotal decimal.Decimal  `json:"cash_sales_total"`
	ExpectedCash   decimal.Decimal  `json:"expected_cash"`
	Difference     *decimal.Decimal `json:"difference"`
}
