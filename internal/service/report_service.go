package service

import (
	"context"
	"time"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportService aggregates committed sales and ledger data for the back
// office. All queries read committed rows only; in-flight sale transactions
// never show up in a report.
type ReportService interface {
	DailySummary(ctx context.Context, date string) (*dto.DailySummaryResponse, error)
	RangeSummary(ctx context.Context, filter dto.ReportRangeFilter) (*dto.RangeSummaryResponse, error)
	TopProducts(ctx context.Context, filter dto.ReportRangeFilter, limit int) ([]dto.TopProductEntry, error)
	SessionReport(ctx context.Context, sessionID uuid.UUID) (*dto.SessionReportResponse, error)
}

type reportService struct {
	repo         repository.ReportRepository
	registerRepo repository.RegisterRepository
}

func NewReportService(repo repository.ReportRepository, registerRepo repository.RegisterRepository) ReportService {
	return &reportService{repo: repo, registerRepo: registerRepo}
}

// ── DailySummary ──────────────────────────────────────────────────────────────

func (s *reportService) DailySummary(ctx context.Context, date string) (*dto.DailySummaryResponse, error) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apierror.Validation("date must be YYYY-MM-DD")
	}

	agg, err := s.repo.AggregateDay(ctx, date)
	if err != nil {
		return nil, err
	}

	byMethod, err := s.repo.TotalsByPaymentMethod(ctx, date)
	if err != nil {
		return nil, err
	}
	methodMap := make(map[string]decimal.Decimal, len(byMethod))
	for _, row := range byMethod {
		methodMap[row.PaymentMethod] = row.Total
	}

	// Manual ledger movements for the same day, across all sessions.
	movs, err := s.registerRepo.ListMovements(ctx, dto.MovementFilter{Date: date})
	if err != nil {
		return nil, err
	}
	inflows, outflows := decimal.Zero, decimal.Zero
	for _, m := range movs {
		if m.Status != model.MovementActive {
			continue
		}
		switch m.Type {
		case model.MovementIngreso:
			inflows = inflows.Add(m.Amount)
		case model.MovementEgreso:
			outflows = outflows.Add(m.Amount)
		}
	}

	return &dto.DailySummaryResponse{
		Date:            date,
		SalesCount:      agg.SalesCount,
		GrossTotal:      agg.GrossTotal,
		Profit:          agg.Profit,
		ByPaymentMethod: methodMap,
		CashInflows:     inflows,
		CashOutflows:    outflows,
	}, nil
}

// ── RangeSummary ──────────────────────────────────────────────────────────────

func (s *reportService) RangeSummary(ctx context.Context, filter dto.ReportRangeFilter) (*dto.RangeSummaryResponse, error) {
	from, to, err := parseRange(filter)
	if err != nil {
		return nil, err
	}

	agg, days, err := s.repo.AggregateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	buckets := make([]dto.DailyBucket, 0, len(days))
	for _, d := range days {
		buckets = append(buckets, dto.DailyBucket{
			Date:       d.Day,
			SalesCount: d.SalesCount,
			GrossTotal: d.GrossTotal,
			Profit:     d.Profit,
		})
	}

	return &dto.RangeSummaryResponse{
		From:       from,
		To:         to,
		SalesCount: agg.SalesCount,
		GrossTotal: agg.GrossTotal,
		Profit:     agg.Profit,
		Days:       buckets,
	}, nil
}

// ── TopProducts ───────────────────────────────────────────────────────────────

func (s *reportService) TopProducts(ctx context.Context, filter dto.ReportRangeFilter, limit int) ([]dto.TopProductEntry, error) {
	from, to, err := parseRange(filter)
	if err != nil {
		return nil, err
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	rows, err := s.repo.TopProducts(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]dto.TopProductEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, dto.TopProductEntry{
			ProductID:    r.ProductID.String(),
			Name:         r.Name,
			QuantitySold: r.QuantitySold,
			Revenue:      r.Revenue,
		})
	}
	return entries, nil
}

// ── SessionReport ─────────────────────────────────────────────────────────────
// Expected cash = opening + manual inflows − manual outflows + cash sales.
// Difference is only available once the session is closed.

func (s *reportService) SessionReport(ctx context.Context, sessionID uuid.UUID) (*dto.SessionReportResponse, error) {
	session, err := s.registerRepo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, apierror.NotFound("register session %s not found", sessionID)
	}

	inflows, outflows, err := s.registerRepo.SumMovements(ctx, sessionID, "")
	if err != nil {
		return nil, err
	}

	cashSales, err := s.repo.CashSalesTotalBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	expected := session.OpeningAmount.Add(inflows).Sub(outflows).Add(cashSales)

	resp := &dto.SessionReportResponse{
		SessionID:      session.ID.String(),
		OperatorID:     session.OperatorID.String(),
		OpenedAt:       session.OpenedAt.Format("2006-01-02T15:04:05Z"),
		OpeningAmount:  session.OpeningAmount,
		ClosingAmount:  session.ClosingAmount,
		ManualInflows:  inflows,
		ManualOutflows: outflows,
		CashSalesTotal: cashSales,
		ExpectedCash:   expected,
	}
	if session.ClosedAt != nil {
		t := session.ClosedAt.Format("2006-01-02T15:04:05Z")
		resp.ClosedAt = &t
	}
	if session.ClosingAmount != nil {
		diff := session.ClosingAmount.Sub(expected)
		resp.Difference = &diff
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func parseRange(filter dto.ReportRangeFilter) (string, string, error) {
	from, err := time.Parse("2006-01-02", filter.From)
	if err != nil {
		return "", "", apierror.Validation("from must be YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", filter.To)
	if err != nil {
		return "", "", apierror.Validation("to must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return "", "", apierror.Validation("to must not be before from")
	}
	return filter.From, filter.To, nil
}
