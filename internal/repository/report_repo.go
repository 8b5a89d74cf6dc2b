package repository

import (
	"context"

	"retailpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesAggregate is a single aggregation row over paid sales.
type SalesAggregate struct {
	SalesCount int64
	GrossTotal decimal.Decimal
	Profit     decimal.Decimal
}

// PaymentMethodTotal is a GROUP BY payment_method row.
type PaymentMethodTotal struct {
	PaymentMethod string
	Total         decimal.Decimal
}

// DailyAggregate is a per-day bucket inside a date range.
type DailyAggregate struct {
	Day        string
	SalesCount int64
	GrossTotal decimal.Decimal
	Profit     decimal.Decimal
}

// TopProduct is a GROUP BY product row ranked by quantity sold.
type TopProduct struct {
	ProductID    uuid.UUID
	Name         string
	QuantitySold int64
	Revenue      decimal.Decimal
}

// ReportRepository runs the raw aggregation queries behind the dashboard.
// Reports read committed data only; they never join in-flight transactions.
type ReportRepository interface {
	AggregateDay(ctx context.Context, date string) (SalesAggregate, error)
	AggregateRange(ctx context.Context, from, to string) (SalesAggregate, []DailyAggregate, error)
	TotalsByPaymentMethod(ctx context.Context, date string) ([]PaymentMethodTotal, error)
	TopProducts(ctx context.Context, from, to string, limit int) ([]TopProduct, error)
	CashSalesTotalBySession(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) AggregateDay(ctx context.Context, date string) (SalesAggregate, error) {
	var agg SalesAggregate
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("COUNT(*) AS sales_count, COALESCE(SUM(total), 0) AS gross_total, COALESCE(SUM(profit), 0) AS profit").
		Where("status = 'paid' AND DATE(created_at) = ?", date).
		Scan(&agg).Error
	return agg, err
}

func (r *reportRepo) AggregateRange(ctx context.Context, from, to string) (SalesAggregate, []DailyAggregate, error) {
	var agg SalesAggregate
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("COUNT(*) AS sales_count, COALESCE(SUM(total), 0) AS gross_total, COALESCE(SUM(profit), 0) AS profit").
		Where("status = 'paid' AND DATE(created_at) BETWEEN ? AND ?", from, to).
		Scan(&agg).Error
	if err != nil {
		return agg, nil, err
	}

	var days []DailyAggregate
	err = r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("DATE(created_at)::text AS day, COUNT(*) AS sales_count, COALESCE(SUM(total), 0) AS gross_total, COALESCE(SUM(profit), 0) AS profit").
		Where("status = 'paid' AND DATE(created_at) BETWEEN ? AND ?", from, to).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&days).Error
	return agg, days, err
}

func (r *reportRepo) TotalsByPaymentMethod(ctx context.Context, date string) ([]PaymentMethodTotal, error) {
	var rows []PaymentMethodTotal
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("payment_method, COALESCE(SUM(total), 0) AS total").
		Where("status = 'paid' AND DATE(created_at) = ?", date).
		Group("payment_method").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) TopProducts(ctx context.Context, from, to string, limit int) ([]TopProduct, error) {
	var rows []TopProduct
	err := r.db.WithContext(ctx).
		Table("sale_items").
		Select("sale_items.product_id, products.name, SUM(sale_items.quantity) AS quantity_sold, COALESCE(SUM(sale_items.line_total), 0) AS revenue").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Joins("JOIN products ON products.id = sale_items.product_id").
		Where("sales.status = 'paid' AND DATE(sales.created_at) BETWEEN ? AND ?", from, to).
		Group("sale_items.product_id, products.name").
		Order("quantity_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) CashSalesTotalBySession(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("COALESCE(SUM(total), 0)").
		Where("status = 'paid' AND session_id = ? AND payment_method = 'cash'", sessionID).
		Scan(&total).Error
	return total, err
}
