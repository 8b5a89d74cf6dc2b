package service

import (
	"context"
	"time"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerService records and queries manual cash movements against open
// register sessions. Sales never write ledger rows; the ledger is the
// manual ingress/egress book only.
type LedgerService interface {
	Record(ctx context.Context, operatorID uuid.UUID, req dto.RecordMovementRequest) (*dto.MovementResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateMovementRequest) (*dto.MovementResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.MovementResponse, error)
	List(ctx context.Context, filter dto.MovementFilter) ([]dto.MovementResponse, error)
	Totals(ctx context.Context, sessionID uuid.UUID, date string) (*dto.MovementTotals, error)
}

type ledgerService struct {
	repo repository.RegisterRepository
}

func NewLedgerService(repo repository.RegisterRepository) LedgerService {
	return &ledgerService{repo: repo}
}

// ── Record ────────────────────────────────────────────────────────────────────
// The session's open status is re-checked under a row lock inside the same
// transaction that inserts the movement, so a close landing between the
// pre-flight check and the write cannot orphan a movement onto a closed till.

func (s *ledgerService) Record(ctx context.Context, operatorID uuid.UUID, req dto.RecordMovementRequest) (*dto.MovementResponse, error) {
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, apierror.Validation("invalid session_id")
	}

	movType := model.MovementType(req.Type)
	if !movType.Valid() {
		return nil, apierror.Validation("movement type must be ingreso or egreso")
	}
	if !req.Amount.IsPositive() {
		return nil, apierror.Validation("amount must be positive")
	}

	category := model.MovementCategory(req.Category)
	if req.Category == "" {
		category = model.CategoryOther
	} else if !category.Valid() {
		return nil, apierror.Validation("unknown movement category %q", req.Category)
	}

	paymentMethod := model.PaymentMethod(req.PaymentMethod)
	if req.PaymentMethod == "" {
		paymentMethod = model.PaymentCash
	} else if !paymentMethod.Valid() {
		return nil, apierror.Validation("unknown payment method %q", req.PaymentMethod)
	}

	mov := &model.CashMovement{
		SessionID:     sessionID,
		OperatorID:    operatorID,
		Type:          movType,
		Concept:       req.Concept,
		Amount:        req.Amount,
		Category:      category,
		PaymentMethod: paymentMethod,
		ReceiptNumber: req.ReceiptNumber,
		Notes:         req.Notes,
		Status:        model.MovementActive,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		session, err := s.repo.FindSessionForUpdateTx(tx, sessionID)
		if err != nil {
			return apierror.NotFound("register session %s not found", sessionID)
		}
		if session.Status != model.SessionOpen {
			return apierror.Conflict("register session is closed")
		}
		return s.repo.CreateMovementTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	return movementToResponse(mov), nil
}

// ── Update ────────────────────────────────────────────────────────────────────
// Only descriptive fields may change; type, amount and session are immutable
// once recorded. Corrections happen via a cancelling status plus a new row.

func (s *ledgerService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateMovementRequest) (*dto.MovementResponse, error) {
	mov, err := s.repo.FindMovementByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("movement %s not found", id)
	}

	if req.Concept != nil {
		mov.Concept = *req.Concept
	}
	if req.Category != nil {
		category := model.MovementCategory(*req.Category)
		if !category.Valid() {
			return nil, apierror.Validation("unknown movement category %q", *req.Category)
		}
		mov.Category = category
	}
	if req.ReceiptNumber != nil {
		mov.ReceiptNumber = req.ReceiptNumber
	}
	if req.Notes != nil {
		mov.Notes = req.Notes
	}
	if req.Status != nil {
		mov.Status = model.MovementStatus(*req.Status)
	}

	if err := s.repo.UpdateMovement(ctx, mov); err != nil {
		return nil, err
	}
	return movementToResponse(mov), nil
}

func (s *ledgerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindMovementByID(ctx, id); err != nil {
		return apierror.NotFound("movement %s not found", id)
	}
	return s.repo.DeleteMovement(ctx, id)
}

func (s *ledgerService) Get(ctx context.Context, id uuid.UUID) (*dto.MovementResponse, error) {
	mov, err := s.repo.FindMovementByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("movement %s not found", id)
	}
	return movementToResponse(mov), nil
}

func (s *ledgerService) List(ctx context.Context, filter dto.MovementFilter) ([]dto.MovementResponse, error) {
	movs, err := s.repo.ListMovements(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MovementResponse, len(movs))
	for i := range movs {
		resp[i] = *movementToResponse(&movs[i])
	}
	return resp, nil
}

// Totals returns the fixed-shape per-type aggregate, optionally restricted
// to one calendar date. Sessions with no movements report zero for both types.
func (s *ledgerService) Totals(ctx context.Context, sessionID uuid.UUID, date string) (*dto.MovementTotals, error) {
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, apierror.Validation("date must be YYYY-MM-DD")
		}
	}
	if _, err := s.repo.FindSessionByID(ctx, sessionID); err != nil {
		return nil, apierror.NotFound("register session %s not found", sessionID)
	}
	inflows, outflows, err := s.repo.SumMovements(ctx, sessionID, date)
	if err != nil {
		return nil, err
	}
	return &dto.MovementTotals{Inflows: inflows, Outflows: outflows}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func movementToResponse(m *model.CashMovement) *dto.MovementResponse {
	operator := ""
	if m.Operator != nil {
		operator = m.Operator.Name
	}
	resp := &dto.MovementResponse{
		ID:            m.ID.String(),
		SessionID:     m.SessionID.String(),
		Type:          string(m.Type),
		Concept:       m.Concept,
		Amount:        m.Amount,
		Category:      string(m.Category),
		PaymentMethod: string(m.PaymentMethod),
		ReceiptNumber: m.ReceiptNumber,
		Notes:         m.Notes,
		Status:        string(m.Status),
		Operator:      operator,
		CreatedAt:     m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if m.Session != nil {
		resp.SessionOpeningAmount = m.Session.OpeningAmount
	}
	return resp
}
