package service

import (
	"context"
	"errors"
	"time"

	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errNotFound = errors.New("record not found")

// ── Product stub ──────────────────────────────────────────────────────────────

// stubProductRepo is an in-memory ProductRepository. Tx methods accept a nil
// *gorm.DB because services run with a nil DB in unit tests.
type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errNotFound
	}
	// Return a snapshot, matching the real repo: GORM scans into a fresh
	// struct, so callers never alias the stored row.
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Barcode != nil && *p.Barcode == barcode && p.Active {
			return p, nil
		}
	}
	return nil, errNotFound
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return errNotFound
	}
	p.Active = false
	return nil
}

func (r *stubProductRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return errNotFound
	}
	p.Active = true
	return nil
}

func (r *stubProductRepo) ListLowStock(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Active && p.Stock <= p.MinStock {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}

func (r *stubProductRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	p, ok := r.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (r *stubProductRepo) IncrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) error {
	p, ok := r.products[id]
	if !ok {
		return errNotFound
	}
	p.Stock += qty
	return nil
}

func (r *stubProductRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int) (bool, error) {
	p, ok := r.products[id]
	if !ok || p.Stock+delta < 0 {
		return false, nil
	}
	p.Stock += delta
	return true, nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func seedProduct(r *stubProductRepo, name, barcode string, cost, price float64, stock, minStock int) *model.Product {
	p := &model.Product{
		ID:       uuid.New(),
		Barcode:  &barcode,
		Name:     name,
		Category: "general",
		Cost:     decimal.NewFromFloat(cost),
		Price:    decimal.NewFromFloat(price),
		Stock:    stock,
		MinStock: minStock,
		Active:   true,
	}
	r.products[p.ID] = p
	return p
}

// ── Register stub ─────────────────────────────────────────────────────────────

type stubRegisterRepo struct {
	sessions  map[uuid.UUID]*model.RegisterSession
	movements map[uuid.UUID]*model.CashMovement
}

func newStubRegisterRepo() *stubRegisterRepo {
	return &stubRegisterRepo{
		sessions:  make(map[uuid.UUID]*model.RegisterSession),
		movements: make(map[uuid.UUID]*model.CashMovement),
	}
}

func (r *stubRegisterRepo) CreateSession(_ context.Context, s *model.RegisterSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *stubRegisterRepo) FindSessionByID(_ context.Context, id uuid.UUID) (*model.RegisterSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, errNotFound
	}
	return s, nil
}

func (r *stubRegisterRepo) FindOpenByOperator(_ context.Context, operatorID uuid.UUID) (*model.RegisterSession, error) {
	for _, s := range r.sessions {
		if s.OperatorID == operatorID && s.Status == model.SessionOpen {
			return s, nil
		}
	}
	return nil, errNotFound
}

func (r *stubRegisterRepo) CloseSession(_ context.Context, id uuid.UUID, closingAmount decimal.Decimal, closedAt time.Time) (bool, error) {
	s, ok := r.sessions[id]
	if !ok || s.Status != model.SessionOpen {
		return false, nil
	}
	s.Status = model.SessionClosed
	s.ClosingAmount = &closingAmount
	s.ClosedAt = &closedAt
	return true, nil
}

func (r *stubRegisterRepo) ListSessions(_ context.Context, operatorID *uuid.UUID, _ int) ([]model.RegisterSession, error) {
	var out []model.RegisterSession
	for _, s := range r.sessions {
		if operatorID == nil || s.OperatorID == *operatorID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubRegisterRepo) FindSessionForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.RegisterSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, errNotFound
	}
	return s, nil
}

func (r *stubRegisterRepo) CreateMovementTx(_ *gorm.DB, m *model.CashMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.movements[m.ID] = m
	return nil
}

func (r *stubRegisterRepo) FindMovementByID(_ context.Context, id uuid.UUID) (*model.CashMovement, error) {
	m, ok := r.movements[id]
	if !ok {
		return nil, errNotFound
	}
	return m, nil
}

func (r *stubRegisterRepo) UpdateMovement(_ context.Context, m *model.CashMovement) error {
	r.movements[m.ID] = m
	return nil
}

func (r *stubRegisterRepo) DeleteMovement(_ context.Context, id uuid.UUID) error {
	delete(r.movements, id)
	return nil
}

func (r *stubRegisterRepo) ListMovements(_ context.Context, filter dto.MovementFilter) ([]model.CashMovement, error) {
	var out []model.CashMovement
	for _, m := range r.movements {
		if filter.SessionID != "" && m.SessionID.String() != filter.SessionID {
			continue
		}
		if filter.Type != "" && string(m.Type) != filter.Type {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (r *stubRegisterRepo) SumMovements(_ context.Context, sessionID uuid.UUID, date string) (decimal.Decimal, decimal.Decimal, error) {
	inflows, outflows := decimal.Zero, decimal.Zero
	for _, m := range r.movements {
		if m.SessionID != sessionID || m.Status != model.MovementActive {
			continue
		}
		if date != "" && m.CreatedAt.Format("2006-01-02") != date {
			continue
		}
		switch m.Type {
		case model.MovementIngreso:
			inflows = inflows.Add(m.Amount)
		case model.MovementEgreso:
			outflows = outflows.Add(m.Amount)
		}
	}
	return inflows, outflows, nil
}

func (r *stubRegisterRepo) DB() *gorm.DB { return nil }

var _ repository.RegisterRepository = (*stubRegisterRepo)(nil)

func seedOpenSession(r *stubRegisterRepo, operatorID uuid.UUID, opening float64) *model.RegisterSession {
	s := &model.RegisterSession{
		ID:            uuid.New(),
		OperatorID:    operatorID,
		OpeningAmount: decimal.NewFromFloat(opening),
		Status:        model.SessionOpen,
		OpenedAt:      time.Now(),
	}
	r.sessions[s.ID] = s
	return s
}

// ── Sale stub ─────────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales     map[uuid.UUID]*model.Sale
	ticketSeq int
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Items {
		if s.Items[i].ID == uuid.Nil {
			s.Items[i].ID = uuid.New()
		}
		s.Items[i].SaleID = s.ID
	}
	r.sales[s.ID] = s
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, errNotFound
	}
	return s, nil
}

func (r *stubSaleRepo) FindItem(_ context.Context, saleID, itemID uuid.UUID) (*model.SaleItem, error) {
	s, ok := r.sales[saleID]
	if !ok {
		return nil, errNotFound
	}
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			item := s.Items[i]
			return &item, nil
		}
	}
	return nil, errNotFound
}

func (r *stubSaleRepo) UpdateItemTx(_ *gorm.DB, item *model.SaleItem) error {
	s, ok := r.sales[item.SaleID]
	if !ok {
		return errNotFound
	}
	for i := range s.Items {
		if s.Items[i].ID == item.ID {
			s.Items[i] = *item
			return nil
		}
	}
	return errNotFound
}

func (r *stubSaleRepo) UpdateTotalsTx(_ *gorm.DB, id uuid.UUID, subtotal, total, profit decimal.Decimal) error {
	s, ok := r.sales[id]
	if !ok {
		return errNotFound
	}
	s.Subtotal = subtotal
	s.Total = total
	s.Profit = profit
	return nil
}

func (r *stubSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, from, to model.SaleStatus) (bool, error) {
	s, ok := r.sales[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	return true, nil
}

func (r *stubSaleRepo) NextTicketNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.ticketSeq++
	return r.ticketSeq, nil
}

func (r *stubSaleRepo) List(_ context.Context, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	out := make([]model.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── Stock movement stub ───────────────────────────────────────────────────────

// stubStockMovementRepo captures audit rows for assertion.
type stubStockMovementRepo struct {
	movements []model.StockMovement
}

func (r *stubStockMovementRepo) Create(_ context.Context, m *model.StockMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubStockMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubStockMovementRepo) List(_ context.Context, _ repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	return r.movements, int64(len(r.movements)), nil
}

var _ repository.StockMovementRepository = (*stubStockMovementRepo)(nil)

// ── Client stub ───────────────────────────────────────────────────────────────

type stubClientRepo struct {
	clients map[uuid.UUID]*model.Client
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: make(map[uuid.UUID]*model.Client)}
}

func (r *stubClientRepo) Create(_ context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clients[c.ID] = c
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, errNotFound
	}
	// Snapshot semantics, same as the GORM-backed repo.
	cp := *c
	return &cp, nil
}

func (r *stubClientRepo) List(_ context.Context, _ dto.ClientFilter) ([]model.Client, int64, error) {
	out := make([]model.Client, 0, len(r.clients))
	for _, c := range r.clients {
		if c.Active {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubClientRepo) Update(_ context.Context, c *model.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *stubClientRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	c, ok := r.clients[id]
	if !ok {
		return errNotFound
	}
	c.Active = false
	return nil
}

func (r *stubClientRepo) AdjustBalance(_ context.Context, id uuid.UUID, delta interface{}) error {
	c, ok := r.clients[id]
	if !ok {
		return errNotFound
	}
	if d, ok := delta.(decimal.Decimal); ok {
		c.Balance = c.Balance.Add(d)
	}
	return nil
}

var _ repository.ClientRepository = (*stubClientRepo)(nil)
