package repository

import (
	"context"
	"time"

	"retailpos/internal/dto"
	"retailpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegisterRepository covers both register sessions and the cash movement
// ledger; the two live together because every movement is scoped to a session.
type RegisterRepository interface {
	CreateSession(ctx context.Context, s *model.RegisterSession) error
	FindSessionByID(ctx context.Context, id uuid.UUID) (*model.RegisterSession, error)
	FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.RegisterSession, error)
	// CloseSession is guarded on status='open'; it reports whether the guard
	// matched a row so the caller can distinguish lost races from success.
	CloseSession(ctx context.Context, id uuid.UUID, closingAmount decimal.Decimal, closedAt time.Time) (bool, error)
	ListSessions(ctx context.Context, operatorID *uuid.UUID, limit int) ([]model.RegisterSession, error)

	// Used inside transactions — callers must pass the tx instance.
	FindSessionForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.RegisterSession, error)
	CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error

	FindMovementByID(ctx context.Context, id uuid.UUID) (*model.CashMovement, error)
	UpdateMovement(ctx context.Context, m *model.CashMovement) error
	DeleteMovement(ctx context.Context, id uuid.UUID) error
	ListMovements(ctx context.Context, filter dto.MovementFilter) ([]model.CashMovement, error)

	// SumMovements aggregates active movement amounts per type for a session,
	// optionally restricted to one calendar date ("YYYY-MM-DD"; empty = all).
	SumMovements(ctx context.Context, sessionID uuid.UUID, date string) (inflows, outflows decimal.Decimal, err error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) DB() *gorm.DB { return r.db }

func (r *registerRepo) CreateSession(ctx context.Context, s *model.RegisterSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *registerRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.RegisterSession, error) {
	var s model.RegisterSession
	err := r.db.WithContext(ctx).Preload("Operator").First(&s, id).Error
	return &s, err
}

func (r *registerRepo) FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.RegisterSession, error) {
	var s model.RegisterSession
	err := r.db.WithContext(ctx).
		Where("operator_id = ? AND status = 'open'", operatorID).
		Order("opened_at DESC").
		First(&s).Error
	return &s, err
}

func (r *registerRepo) CloseSession(ctx context.Context, id uuid.UUID, closingAmount decimal.Decimal, closedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.RegisterSession{}).
		Where("id = ? AND status = 'open'", id).
		Updates(map[string]interface{}{
			"status":         model.SessionClosed,
			"closing_amount": closingAmount,
			"closed_at":      closedAt,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *registerRepo) ListSessions(ctx context.Context, operatorID *uuid.UUID, limit int) ([]model.RegisterSession, error) {
	var sessions []model.RegisterSession
	q := r.db.WithContext(ctx).Preload("Operator").Order("opened_at DESC").Limit(limit)
	if operatorID != nil {
		q = q.Where("operator_id = ?", *operatorID)
	}
	err := q.Find(&sessions).Error
	return sessions, err
}

func (r *registerRepo) FindSessionForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.RegisterSession, error) {
	var s model.RegisterSession
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error
	return &s, err
}

func (r *registerRepo) CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error {
	return tx.Create(m).Error
}

func (r *registerRepo) FindMovementByID(ctx context.Context, id uuid.UUID) (*model.CashMovement, error) {
	var m model.CashMovement
	err := r.db.WithContext(ctx).Preload("Operator").Preload("Session").First(&m, id).Error
	return &m, err
}

func (r *registerRepo) UpdateMovement(ctx context.Context, m *model.CashMovement) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *registerRepo) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CashMovement{}, id).Error
}

func (r *registerRepo) ListMovements(ctx context.Context, filter dto.MovementFilter) ([]model.CashMovement, error) {
	var movs []model.CashMovement

	q := r.db.WithContext(ctx).Preload("Operator").Preload("Session")

	if filter.SessionID != "" {
		q = q.Where("session_id = ?", filter.SessionID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	}

	err := q.Order("created_at DESC").Find(&movs).Error
	return movs, err
}

func (r *registerRepo) SumMovements(ctx context.Context, sessionID uuid.UUID, date string) (decimal.Decimal, decimal.Decimal, error) {
	type row struct {
		Type  string
		Total decimal.Decimal
	}
	var rows []row
	q := r.db.WithContext(ctx).Model(&model.CashMovement{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("session_id = ? AND status = 'active'", sessionID)
	if date != "" {
		q = q.Where("DATE(created_at) = ?", date)
	}
	err := q.Group("type").Scan(&rows).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	inflows, outflows := decimal.Zero, decimal.Zero
	for _, r := range rows {
		switch model.MovementType(r.Type) {
		case model.MovementIngreso:
			inflows = r.Total
		case model.MovementEgreso:
			outflows = r.Total
		}
	}
	return inflows, outflows, nil
}
