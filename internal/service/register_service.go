package service

import (
	"context"
	"time"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/repository"

	"github.com/google/uuid"
)

// RegisterService manages the open/close lifecycle of register sessions.
// At most one session may be open per operator at any time; closing is
// terminal and races on close resolve to exactly one winner.
type RegisterService interface {
	Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenRegisterRequest) (*dto.SessionResponse, error)
	Close(ctx context.Context, sessionID uuid.UUID, req dto.CloseRegisterRequest) (*dto.SessionResponse, error)
	Current(ctx context.Context, operatorID uuid.UUID) (*dto.SessionResponse, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*dto.SessionResponse, error)
	List(ctx context.Context, operatorID *uuid.UUID, limit int) ([]dto.SessionResponse, error)
}

type registerService struct {
	repo repository.RegisterRepository
}

func NewRegisterService(repo repository.RegisterRepository) RegisterService {
	return &registerService{repo: repo}
}

// ── Open ──────────────────────────────────────────────────────────────────────

func (s *registerService) Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenRegisterRequest) (*dto.SessionResponse, error) {
	if req.OpeningAmount.IsNegative() {
		return nil, apierror.Validation("opening amount must not be negative")
	}

	// Guard: no duplicate open session per operator. The partial unique index
	// on (operator_id) WHERE status='open' backs this against races.
	if existing, err := s.repo.FindOpenByOperator(ctx, operatorID); err == nil && existing != nil {
		return nil, apierror.Conflict("operator already has an open register session")
	}

	session := &model.RegisterSession{
		OperatorID:    operatorID,
		OpeningAmount: req.OpeningAmount,
		Status:        model.SessionOpen,
		OpenedAt:      time.Now(),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return sessionToResponse(session), nil
}

// ── Close ─────────────────────────────────────────────────────────────────────
// The UPDATE is conditioned on status='open' so two concurrent closes resolve
// to one winner; the loser observes zero rows affected and gets a conflict.

func (s *registerService) Close(ctx context.Context, sessionID uuid.UUID, req dto.CloseRegisterRequest) (*dto.SessionResponse, error) {
	if req.ClosingAmount.IsNegative() {
		return nil, apierror.Validation("closing amount must not be negative")
	}

	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, apierror.NotFound("register session %s not found", sessionID)
	}
	if session.Status != model.SessionOpen {
		return nil, apierror.Conflict("register session is already closed")
	}

	closedAt := time.Now()
	ok, err := s.repo.CloseSession(ctx, sessionID, req.ClosingAmount, closedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race against a concurrent close.
		return nil, apierror.Conflict("register session is already closed")
	}

	session.Status = model.SessionClosed
	session.ClosingAmount = &req.ClosingAmount
	session.ClosedAt = &closedAt
	return sessionToResponse(session), nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *registerService) Current(ctx context.Context, operatorID uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.repo.FindOpenByOperator(ctx, operatorID)
	if err != nil || session == nil {
		return nil, apierror.NotFound("no open register session for operator")
	}
	return sessionToResponse(session), nil
}

func (s *registerService) Get(ctx context.Context, sessionID uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, apierror.NotFound("register session %s not found", sessionID)
	}
	return sessionToResponse(session), nil
}

func (s *registerService) List(ctx context.Context, operatorID *uuid.UUID, limit int) ([]dto.SessionResponse, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	sessions, err := s.repo.ListSessions(ctx, operatorID, limit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SessionResponse, len(sessions))
	for i := range sessions {
		resp[i] = *sessionToResponse(&sessions[i])
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func sessionToResponse(s *model.RegisterSession) *dto.SessionResponse {
	operator := ""
	if s.Operator != nil {
		operator = s.Operator.Name
	}
	resp := &dto.SessionResponse{
		ID:            s.ID.String(),
		OperatorID:    s.OperatorID.String(),
		Operator:      operator,
		OpeningAmount: s.OpeningAmount,
		ClosingAmount: s.ClosingAmount,
		Status:        string(s.Status),
		OpenedAt:      s.OpenedAt.Format("2006-01-02T15:04:05Z"),
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format("2006-01-02T15:04:05Z")
		resp.ClosedAt = &t
	}
	return resp
}
