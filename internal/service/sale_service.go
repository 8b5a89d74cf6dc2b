package service

import (
	"context"
	"fmt"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/repository"
	"retailpos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	CreateSale(ctx context.Context, operatorID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	CancelSale(ctx context.Context, id uuid.UUID, reason string) (*dto.SaleResponse, error)
	UpdateSaleItem(ctx context.Context, saleID, itemID uuid.UUID, req dto.UpdateSaleItemRequest) (*dto.SaleResponse, error)
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	// ApplyDiscount is a pure calculation with no side effects; the register
	// UI calls it to preview a uniform percentage discount.
	ApplyDiscount(req dto.ApplyDiscountRequest) (*dto.DiscountResult, error)
}

type saleService struct {
	repo         repository.SaleRepository
	productRepo  repository.ProductRepository
	registerRepo repository.RegisterRepository
	stockRepo    repository.StockMovementRepository
	dispatcher   *worker.Dispatcher
}

func NewSaleService(
	repo repository.SaleRepository,
	productRepo repository.ProductRepository,
	registerRepo repository.RegisterRepository,
	stockRepo repository.StockMovementRepository,
	dispatcher *worker.Dispatcher,
) SaleService {
	return &saleService{
		repo:         repo,
		productRepo:  productRepo,
		registerRepo: registerRepo,
		stockRepo:    stockRepo,
		dispatcher:   dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── CreateSale ────────────────────────────────────────────────────────────────
// Full ACID transaction:
//   1. Cash sales require an open register session for the operator
//   2. BEGIN TX: lock every product row, validate active + stock for ALL items
//   3. nextval ticket, create sale+items
//   4. Guarded stock decrement per item, stock movement audit rows
//   5. COMMIT
//   6. (async) dispatch receipt / low-stock jobs
//
// All items are validated under lock before anything is written, so a failure
// on the Nth item leaves no partial state behind.

func (s *saleService) CreateSale(ctx context.Context, operatorID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	paymentMethod := model.PaymentMethod(req.PaymentMethod)
	if !paymentMethod.Valid() {
		return nil, apierror.Validation("unknown payment method %q", req.PaymentMethod)
	}
	if req.DiscountTotal.IsNegative() || req.TaxTotal.IsNegative() {
		return nil, apierror.Validation("discount and tax must not be negative")
	}

	var clientID *uuid.UUID
	if req.ClientID != nil {
		cid, err := uuid.Parse(*req.ClientID)
		if err != nil {
			return nil, apierror.Validation("invalid client_id")
		}
		clientID = &cid
	}

	// Cash goes into the drawer, so cash sales are tied to the open till.
	var sessionID *uuid.UUID
	if paymentMethod == model.PaymentCash {
		session, err := s.registerRepo.FindOpenByOperator(ctx, operatorID)
		if err != nil || session == nil {
			return nil, apierror.Conflict("no open register session: open the register before selling for cash")
		}
		sessionID = &session.ID
	}

	// Input is re-validated here so the invariants hold for every caller,
	// not just requests that passed the HTTP binding tags.
	if len(req.Items) == 0 {
		return nil, apierror.Validation("sale must contain at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, apierror.Validation("quantity for product %s must be at least 1", item.ProductID)
		}
		if item.UnitPrice.IsNegative() {
			return nil, apierror.Validation("unit price for product %s must not be negative", item.ProductID)
		}
	}

	type resolvedItem struct {
		productID  uuid.UUID
		name       string
		cost       decimal.Decimal
		quantity   int
		unitPrice  decimal.Decimal
		lineTotal  decimal.Decimal
		stockAfter int
		minStock   int
	}

	var sale model.Sale
	var resolved []resolvedItem

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		resolved = resolved[:0]
		subtotal := decimal.Zero
		profit := decimal.Zero

		// Pass 1: lock and validate every product before writing anything.
		for _, item := range req.Items {
			pid, err := uuid.Parse(item.ProductID)
			if err != nil {
				return apierror.Validation("invalid product_id %q", item.ProductID)
			}
			p, err := s.productRepo.FindByIDForUpdateTx(tx, pid)
			if err != nil {
				return apierror.NotFound("product %s not found", item.ProductID)
			}
			if !p.Active {
				return apierror.Validation("product %s is inactive and cannot be sold", p.Name)
			}
			if p.Stock < item.Quantity {
				return apierror.InsufficientStock(p.Name, p.Stock, item.Quantity)
			}

			qty := decimal.NewFromInt(int64(item.Quantity))
			lineTotal := item.UnitPrice.Mul(qty)
			subtotal = subtotal.Add(lineTotal)
			profit = profit.Add(item.UnitPrice.Sub(p.Cost).Mul(qty))

			resolved = append(resolved, resolvedItem{
				productID:  pid,
				name:       p.Name,
				cost:       p.Cost,
				quantity:   item.Quantity,
				unitPrice:  item.UnitPrice,
				lineTotal:  lineTotal,
				stockAfter: p.Stock - item.Quantity,
				minStock:   p.MinStock,
			})
		}

		total := subtotal.Add(req.TaxTotal).Sub(req.DiscountTotal)
		if total.IsNegative() {
			return apierror.Validation("discount exceeds sale total")
		}

		ticketNum, err := s.repo.NextTicketNumber(ctx, tx)
		if err != nil {
			return err
		}

		sale = model.Sale{
			TicketNumber:  ticketNum,
			OperatorID:    operatorID,
			ClientID:      clientID,
			SessionID:     sessionID,
			Subtotal:      subtotal,
			TaxTotal:      req.TaxTotal,
			DiscountTotal: req.DiscountTotal,
			Total:         total,
			Profit:        profit,
			PaymentMethod: paymentMethod,
			Status:        model.SalePaid,
		}
		for _, r := range resolved {
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID: r.productID,
				Quantity:  r.quantity,
				UnitPrice: r.unitPrice,
				Cost:      r.cost,
				LineTotal: r.lineTotal,
			})
		}

		if err := s.repo.CreateTx(tx, &sale); err != nil {
			return err
		}

		// Pass 2: decrement stock. The guard can still miss if something
		// slipped past the row lock; treat that as insufficient stock.
		for _, r := range resolved {
			ok, err := s.productRepo.DecrementStockTx(tx, r.productID, r.quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apierror.InsufficientStock(r.name, r.stockAfter+r.quantity, r.quantity)
			}

			saleRef := sale.ID
			mov := &model.StockMovement{
				ProductID:   r.productID,
				Type:        "sale",
				Quantity:    -r.quantity,
				StockBefore: r.stockAfter + r.quantity,
				StockAfter:  r.stockAfter,
				Reason:      fmt.Sprintf("Sale #%d", ticketNum),
				ReferenceID: &saleRef,
			}
			if err := s.stockRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Async jobs — best-effort, fire & forget after commit.
	if s.dispatcher != nil {
		if req.ClientEmail != nil && *req.ClientEmail != "" {
			_ = s.dispatcher.EnqueueReceipt(ctx, map[string]interface{}{
				"sale_id":      sale.ID.String(),
				"client_email": *req.ClientEmail,
			})
		}
		for _, r := range resolved {
			if r.stockAfter <= r.minStock {
				_ = s.dispatcher.EnqueueAlert(ctx, map[string]interface{}{
					"product_id": r.productID.String(),
					"product":    r.name,
					"stock":      r.stockAfter,
					"min_stock":  r.minStock,
				})
			}
		}
	}

	resp := saleToResponse(&sale)
	for i, r := range resolved {
		resp.Items[i].Product = r.name
	}
	return resp, nil
}

// ── CancelSale ────────────────────────────────────────────────────────────────
// paid → canceled is one-way; the guarded status flip picks exactly one winner
// under concurrent cancellation, and only the winner restocks.

func (s *saleService) CancelSale(ctx context.Context, id uuid.UUID, reason string) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("sale %s not found", id)
	}
	if sale.Status != model.SalePaid {
		return nil, apierror.Conflict("sale is already canceled")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ok, err := s.repo.UpdateStatusTx(tx, id, model.SalePaid, model.SaleCanceled)
		if err != nil {
			return err
		}
		if !ok {
			return apierror.Conflict("sale is already canceled")
		}

		for _, item := range sale.Items {
			p, err := s.productRepo.FindByIDForUpdateTx(tx, item.ProductID)
			if err != nil {
				return err
			}
			if err := s.productRepo.IncrementStockTx(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}

			saleRef := sale.ID
			mov := &model.StockMovement{
				ProductID:   item.ProductID,
				Type:        "cancel_restock",
				Quantity:    item.Quantity,
				StockBefore: p.Stock,
				StockAfter:  p.Stock + item.Quantity,
				Reason:      fmt.Sprintf("Cancellation of sale #%d — %s", sale.TicketNumber, reason),
				ReferenceID: &saleRef,
			}
			if err := s.stockRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	sale.Status = model.SaleCanceled
	return saleToResponse(sale), nil
}

// ── UpdateSaleItem ────────────────────────────────────────────────────────────
// Corrects quantity or unit price on a line of a paid sale. The stock delta is
// reconciled against the product (increases re-check availability) and the
// sale totals plus profit are recomputed from the change.

func (s *saleService) UpdateSaleItem(ctx context.Context, saleID, itemID uuid.UUID, req dto.UpdateSaleItemRequest) (*dto.SaleResponse, error) {
	if req.Quantity < 1 {
		return nil, apierror.Validation("quantity must be at least 1")
	}
	if req.UnitPrice.IsNegative() {
		return nil, apierror.Validation("unit price must not be negative")
	}

	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, apierror.NotFound("sale %s not found", saleID)
	}
	if sale.Status != model.SalePaid {
		return nil, apierror.Conflict("only paid sales can be corrected")
	}

	item, err := s.repo.FindItem(ctx, saleID, itemID)
	if err != nil {
		return nil, apierror.NotFound("sale item %s not found", itemID)
	}

	stockDelta := req.Quantity - item.Quantity

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.productRepo.FindByIDForUpdateTx(tx, item.ProductID)
		if err != nil {
			return apierror.NotFound("product %s not found", item.ProductID)
		}

		switch {
		case stockDelta > 0:
			if p.Stock < stockDelta {
				return apierror.InsufficientStock(p.Name, p.Stock, stockDelta)
			}
			ok, err := s.productRepo.DecrementStockTx(tx, item.ProductID, stockDelta)
			if err != nil {
				return err
			}
			if !ok {
				return apierror.InsufficientStock(p.Name, p.Stock, stockDelta)
			}
		case stockDelta < 0:
			if err := s.productRepo.IncrementStockTx(tx, item.ProductID, -stockDelta); err != nil {
				return err
			}
		}

		if stockDelta != 0 {
			saleRef := sale.ID
			mov := &model.StockMovement{
				ProductID:   item.ProductID,
				Type:        "correction",
				Quantity:    -stockDelta,
				StockBefore: p.Stock,
				StockAfter:  p.Stock - stockDelta,
				Reason:      fmt.Sprintf("Item correction on sale #%d", sale.TicketNumber),
				ReferenceID: &saleRef,
			}
			if err := s.stockRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}

		// Profit is corrected on the cost frozen at sale time, so a catalog
		// cost edit between sale and correction does not skew the result.
		oldLine := item.LineTotal
		oldProfit := item.UnitPrice.Sub(item.Cost).Mul(decimal.NewFromInt(int64(item.Quantity)))
		newProfit := req.UnitPrice.Sub(item.Cost).Mul(decimal.NewFromInt(int64(req.Quantity)))

		item.Quantity = req.Quantity
		item.UnitPrice = req.UnitPrice
		item.LineTotal = req.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))
		if err := s.repo.UpdateItemTx(tx, item); err != nil {
			return err
		}

		sale.Subtotal = sale.Subtotal.Sub(oldLine).Add(item.LineTotal)
		sale.Total = sale.Subtotal.Add(sale.TaxTotal).Sub(sale.DiscountTotal)
		sale.Profit = sale.Profit.Sub(oldProfit).Add(newProfit)
		return s.repo.UpdateTotalsTx(tx, saleID, sale.Subtotal, sale.Total, sale.Profit)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Reflect the corrected line in the preloaded items for the response.
	for i := range sale.Items {
		if sale.Items[i].ID == itemID {
			sale.Items[i].Quantity = item.Quantity
			sale.Items[i].UnitPrice = item.UnitPrice
			sale.Items[i].LineTotal = item.LineTotal
		}
	}
	return saleToResponse(sale), nil
}

// ── ApplyDiscount ─────────────────────────────────────────────────────────────

func (s *saleService) ApplyDiscount(req dto.ApplyDiscountRequest) (*dto.DiscountResult, error) {
	one := decimal.NewFromInt(1)
	if req.Rate.IsNegative() || req.Rate.GreaterThan(one) {
		return nil, apierror.Validation("discount rate must be between 0 and 1")
	}

	result := &dto.DiscountResult{
		Items:         make([]dto.DiscountedItem, 0, len(req.Items)),
		Total:         decimal.Zero,
		TotalDiscount: decimal.Zero,
	}
	for _, item := range req.Items {
		if item.Quantity < 1 || !item.UnitPrice.IsPositive() {
			return nil, apierror.Validation("discount items need positive price and quantity")
		}
		sub := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		disc := sub.Mul(req.Rate).Round(2)
		total := sub.Sub(disc)

		result.Items = append(result.Items, dto.DiscountedItem{
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  sub,
			Discount:  disc,
			Total:     total,
		})
		result.Total = result.Total.Add(total)
		result.TotalDiscount = result.TotalDiscount.Add(disc)
	}
	return result, nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("sale %s not found", id)
	}
	return saleToResponse(sale), nil
}

// ListSales returns a paginated list, filtered by date and status.
// Default filter: today's paid sales.
func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Status == "" {
		filter.Status = string(model.SalePaid)
	}
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func saleToResponse(v *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(v.Items))
	for _, item := range v.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, dto.SaleItemResponse{
			ID:        item.ID.String(),
			Product:   name,
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}

	var clientID *string
	if v.ClientID != nil {
		s := v.ClientID.String()
		clientID = &s
	}
	var sessionID *string
	if v.SessionID != nil {
		s := v.SessionID.String()
		sessionID = &s
	}

	return &dto.SaleResponse{
		ID:            v.ID.String(),
		TicketNumber:  v.TicketNumber,
		OperatorID:    v.OperatorID.String(),
		ClientID:      clientID,
		SessionID:     sessionID,
		Items:         items,
		Subtotal:      v.Subtotal,
		TaxTotal:      v.TaxTotal,
		DiscountTotal: v.DiscountTotal,
		Total:         v.Total,
		Profit:        v.Profit,
		PaymentMethod: string(v.PaymentMethod),
		Status:        string(v.Status),
		CreatedAt:     v.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
