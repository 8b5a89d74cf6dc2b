package service

import (
	"context"
	"encoding/json"
	"time"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// priceCacheTTL bounds staleness of the public price-check endpoint; stock
// shown there may lag committed sales by up to this much.
const priceCacheTTL = 60 * time.Second

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	PriceCheck(ctx context.Context, barcode string) (*dto.PriceCheckResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error)
	ListStockMovements(ctx context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error)
	ListLowStock(ctx context.Context) ([]dto.ProductResponse, error)
}

type productService struct {
	repo      repository.ProductRepository
	stockRepo repository.StockMovementRepository
	rdb       *redis.Client
}

func NewProductService(repo repository.ProductRepository, stockRepo repository.StockMovementRepository, rdb *redis.Client) ProductService {
	return &productService{repo: repo, stockRepo: stockRepo, rdb: rdb}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.Price.LessThan(req.Cost) {
		return nil, apierror.Validation("price must not be below cost")
	}

	p := &model.Product{
		Barcode:     req.Barcode,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Cost:        req.Cost,
		Price:       req.Price,
		MarginPct:   marginPct(req.Cost, req.Price),
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		Active:      true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("product %s not found", id)
	}
	return productToResponse(p), nil
}

// PriceCheck serves the public barcode lookup through a short-lived Redis
// cache; registers poll it on every scan.
func (s *productService) PriceCheck(ctx context.Context, barcode string) (*dto.PriceCheckResponse, error) {
	key := priceCacheKey(barcode)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var resp dto.PriceCheckResponse
			if json.Unmarshal(cached, &resp) == nil {
				return &resp, nil
			}
		}
	}

	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, apierror.NotFound("no active product with barcode %s", barcode)
	}

	resp := &dto.PriceCheckResponse{
		Name:     p.Name,
		Price:    p.Price,
		Stock:    p.Stock,
		Category: p.Category,
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(resp); err == nil {
			s.rdb.Set(ctx, key, raw, priceCacheTTL)
		}
	}
	return resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("product %s not found", id)
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Cost != nil {
		p.Cost = *req.Cost
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}
	if p.Price.LessThan(p.Cost) {
		return nil, apierror.Validation("price must not be below cost")
	}
	p.MarginPct = marginPct(p.Cost, p.Price)

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidatePriceCache(ctx, p)
	return productToResponse(p), nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apierror.NotFound("product %s not found", id)
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidatePriceCache(ctx, p)
	return nil
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apierror.NotFound("product %s not found", id)
	}
	return s.repo.Reactivate(ctx, id)
}

// AdjustStock applies a signed manual delta. The guarded update keeps stock
// from going negative even under concurrent adjustments.
func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	if req.Delta == 0 {
		return nil, apierror.Validation("delta must not be zero")
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("product %s not found", id)
	}

	ok, err := s.repo.AdjustStock(ctx, id, req.Delta)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierror.InsufficientStock(p.Name, p.Stock, -req.Delta)
	}

	mov := &model.StockMovement{
		ProductID:   id,
		Type:        "manual_adjust",
		Quantity:    req.Delta,
		StockBefore: p.Stock,
		StockAfter:  p.Stock + req.Delta,
		Reason:      req.Reason,
	}
	if err := s.stockRepo.Create(ctx, mov); err != nil {
		return nil, err
	}

	s.invalidatePriceCache(ctx, p)
	p.Stock += req.Delta
	return productToResponse(p), nil
}

func (s *productService) ListStockMovements(ctx context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	return s.stockRepo.List(ctx, filter)
}

// ListLowStock returns active products at or below their reorder threshold.
func (s *productService) ListLowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productToResponse(&products[i]))
	}
	return out, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func priceCacheKey(barcode string) string { return "price:" + barcode }

func (s *productService) invalidatePriceCache(ctx context.Context, p *model.Product) {
	if s.rdb == nil || p.Barcode == nil {
		return
	}
	s.rdb.Del(ctx, priceCacheKey(*p.Barcode))
}

func marginPct(cost, price decimal.Decimal) decimal.Decimal {
	if cost.IsZero() {
		return decimal.Zero
	}
	return price.Sub(cost).Div(cost).Mul(decimal.NewFromInt(100)).Round(2)
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID.String(),
		Barcode:     p.Barcode,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Cost:        p.Cost,
		Price:       p.Price,
		MarginPct:   p.MarginPct,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		Active:      p.Active,
	}
}
