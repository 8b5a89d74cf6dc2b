package service

import (
	"context"
	"testing"
	"time"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReportRepo returns canned aggregates keyed by session.
type stubReportRepo struct {
	dayAgg        repository.SalesAggregate
	rangeAgg      repository.SalesAggregate
	rangeDays     []repository.DailyAggregate
	methodTotals  []repository.PaymentMethodTotal
	topProducts   []repository.TopProduct
	cashBySession map[uuid.UUID]decimal.Decimal
}

func (r *stubReportRepo) AggregateDay(_ context.Context, _ string) (repository.SalesAggregate, error) {
	return r.dayAgg, nil
}

func (r *stubReportRepo) AggregateRange(_ context.Context, _, _ string) (repository.SalesAggregate, []repository.DailyAggregate, error) {
	return r.rangeAgg, r.rangeDays, nil
}

func (r *stubReportRepo) TotalsByPaymentMethod(_ context.Context, _ string) ([]repository.PaymentMethodTotal, error) {
	return r.methodTotals, nil
}

func (r *stubReportRepo) TopProducts(_ context.Context, _, _ string, limit int) ([]repository.TopProduct, error) {
	if limit < len(r.topProducts) {
		return r.topProducts[:limit], nil
	}
	return r.topProducts, nil
}

func (r *stubReportRepo) CashSalesTotalBySession(_ context.Context, sessionID uuid.UUID) (decimal.Decimal, error) {
	if total, ok := r.cashBySession[sessionID]; ok {
		return total, nil
	}
	return decimal.Zero, nil
}

var _ repository.ReportRepository = (*stubReportRepo)(nil)

func TestDailySummary(t *testing.T) {
	reportRepo := &stubReportRepo{
		dayAgg: repository.SalesAggregate{
			SalesCount: 12,
			GrossTotal: decimal.NewFromInt(34500),
			Profit:     decimal.NewFromInt(9800),
		},
		methodTotals: []repository.PaymentMethodTotal{
			{PaymentMethod: "cash", Total: decimal.NewFromInt(20000)},
			{PaymentMethod: "card", Total: decimal.NewFromInt(14500)},
		},
	}
	svc := NewReportService(reportRepo, newStubRegisterRepo())

	resp, err := svc.DailySummary(context.Background(), "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30", resp.Date)
	assert.Equal(t, int64(12), resp.SalesCount)
	assert.Equal(t, "34500", resp.GrossTotal.String())
	assert.Equal(t, "9800", resp.Profit.String())
	assert.Equal(t, "20000", resp.ByPaymentMethod["cash"].String())
	assert.Equal(t, "14500", resp.ByPaymentMethod["card"].String())
}

func TestDailySummary_BadDate(t *testing.T) {
	svc := NewReportService(&stubReportRepo{}, newStubRegisterRepo())

	_, err := svc.DailySummary(context.Background(), "30/08/2026")
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestRangeSummary(t *testing.T) {
	reportRepo := &stubReportRepo{
		rangeAgg: repository.SalesAggregate{
			SalesCount: 40,
			GrossTotal: decimal.NewFromInt(120000),
			Profit:     decimal.NewFromInt(30000),
		},
		rangeDays: []repository.DailyAggregate{
			{Day: "2026-08-01", SalesCount: 25, GrossTotal: decimal.NewFromInt(70000), Profit: decimal.NewFromInt(18000)},
			{Day: "2026-08-02", SalesCount: 15, GrossTotal: decimal.NewFromInt(50000), Profit: decimal.NewFromInt(12000)},
		},
	}
	svc := NewReportService(reportRepo, newStubRegisterRepo())

	resp, err := svc.RangeSummary(context.Background(), dto.ReportRangeFilter{From: "2026-08-01", To: "2026-08-02"})
	require.NoError(t, err)
	assert.Equal(t, int64(40), resp.SalesCount)
	require.Len(t, resp.Days, 2)
	assert.Equal(t, "2026-08-01", resp.Days[0].Date)
}

func TestRangeSummary_InvertedRange(t *testing.T) {
	svc := NewReportService(&stubReportRepo{}, newStubRegisterRepo())

	_, err := svc.RangeSummary(context.Background(), dto.ReportRangeFilter{From: "2026-08-10", To: "2026-08-01"})
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestSessionReport_ExpectedCash(t *testing.T) {
	registerRepo := newStubRegisterRepo()
	session := seedOpenSession(registerRepo, uuid.New(), 1000)

	// manual inflows 500, outflows 300
	registerRepo.movements[uuid.New()] = &model.CashMovement{
		ID: uuid.New(), SessionID: session.ID, Type: model.MovementIngreso,
		Amount: decimal.NewFromInt(500), Status: model.MovementActive,
	}
	registerRepo.movements[uuid.New()] = &model.CashMovement{
		ID: uuid.New(), SessionID: session.ID, Type: model.MovementEgreso,
		Amount: decimal.NewFromInt(300), Status: model.MovementActive,
	}

	reportRepo := &stubReportRepo{
		cashBySession: map[uuid.UUID]decimal.Decimal{session.ID: decimal.NewFromInt(2400)},
	}
	svc := NewReportService(reportRepo, registerRepo)

	resp, err := svc.SessionReport(context.Background(), session.ID)
	require.NoError(t, err)
	// 1000 + 500 − 300 + 2400 = 3600
	assert.Equal(t, "3600", resp.ExpectedCash.String())
	assert.Nil(t, resp.Difference) // still open
}

func TestSessionReport_DifferenceOnClose(t *testing.T) {
	registerRepo := newStubRegisterRepo()
	session := seedOpenSession(registerRepo, uuid.New(), 1000)
	closing := decimal.NewFromInt(950)
	closedAt := time.Now()
	session.Status = model.SessionClosed
	session.ClosingAmount = &closing
	session.ClosedAt = &closedAt

	svc := NewReportService(&stubReportRepo{}, registerRepo)

	resp, err := svc.SessionReport(context.Background(), session.ID)
	require.NoError(t, err)
	// expected = 1000, declared 950 → short by 50
	require.NotNil(t, resp.Difference)
	assert.Equal(t, "-50", resp.Difference.String())
}

func TestSessionReport_NotFound(t *testing.T) {
	svc := NewReportService(&stubReportRepo{}, newStubRegisterRepo())

	_, err := svc.SessionReport(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}
