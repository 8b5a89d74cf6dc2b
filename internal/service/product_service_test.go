package service

import (
	"context"
	"testing"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildProductSvc() (ProductService, *stubProductRepo, *stubStockMovementRepo) {
	repo := newStubProductRepo()
	stockRepo := &stubStockMovementRepo{}
	return NewProductService(repo, stockRepo, nil), repo, stockRepo
}

func TestCreateProduct_MarginComputed(t *testing.T) {
	svc, _, _ := buildProductSvc()

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:     "Yerba Mate 1kg",
		Category: "grocery",
		Cost:     decimal.NewFromInt(800),
		Price:    decimal.NewFromInt(1200),
		Stock:    30,
		MinStock: 5,
	})
	require.NoError(t, err)
	// (1200 − 800) / 800 × 100 = 50
	assert.Equal(t, "50", resp.MarginPct.String())
	assert.True(t, resp.Active)
}

func TestCreateProduct_PriceBelowCost(t *testing.T) {
	svc, _, _ := buildProductSvc()

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:     "Broken Margin",
		Category: "grocery",
		Cost:     decimal.NewFromInt(100),
		Price:    decimal.NewFromInt(80),
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestCreateProduct_ZeroCost(t *testing.T) {
	svc, _, _ := buildProductSvc()

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:     "Promo Sample",
		Category: "promo",
		Cost:     decimal.Zero,
		Price:    decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.True(t, resp.MarginPct.IsZero())
}

func TestPriceCheck_NoRedis(t *testing.T) {
	// Cache is optional: a nil Redis client falls through to the DB.
	svc, repo, _ := buildProductSvc()
	seedProduct(repo, "Sparkling Water 2L", "7790001112223", 90, 150, 12, 3)

	resp, err := svc.PriceCheck(context.Background(), "7790001112223")
	require.NoError(t, err)
	assert.Equal(t, "Sparkling Water 2L", resp.Name)
	assert.Equal(t, "150", resp.Price.String())
}

func TestPriceCheck_UnknownBarcode(t *testing.T) {
	svc, _, _ := buildProductSvc()

	_, err := svc.PriceCheck(context.Background(), "0000000000000")
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestPriceCheck_InactiveProductHidden(t *testing.T) {
	svc, repo, _ := buildProductSvc()
	p := seedProduct(repo, "Old Label Soda", "7790001112299", 50, 90, 8, 2)
	p.Active = false

	_, err := svc.PriceCheck(context.Background(), "7790001112299")
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestAdjustStock(t *testing.T) {
	svc, repo, stockRepo := buildProductSvc()
	p := seedProduct(repo, "Flour 1kg", "7790001112230", 100, 160, 10, 4)

	resp, err := svc.AdjustStock(context.Background(), p.ID, dto.AdjustStockRequest{
		Delta:  -3,
		Reason: "breakage on shelf",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Stock)
	assert.Equal(t, 7, repo.products[p.ID].Stock)

	require.Len(t, stockRepo.movements, 1)
	assert.Equal(t, "manual_adjust", stockRepo.movements[0].Type)
	assert.Equal(t, -3, stockRepo.movements[0].Quantity)
	assert.Equal(t, 10, stockRepo.movements[0].StockBefore)
	assert.Equal(t, 7, stockRepo.movements[0].StockAfter)
}

func TestAdjustStock_GuardAgainstNegative(t *testing.T) {
	svc, repo, stockRepo := buildProductSvc()
	p := seedProduct(repo, "Sugar 1kg", "7790001112231", 80, 130, 2, 1)

	_, err := svc.AdjustStock(context.Background(), p.ID, dto.AdjustStockRequest{
		Delta:  -5,
		Reason: "inventory recount",
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindInsufficientStock, apierror.KindOf(err))
	assert.Equal(t, 2, repo.products[p.ID].Stock)
	assert.Empty(t, stockRepo.movements)
}

func TestAdjustStock_ZeroDelta(t *testing.T) {
	svc, repo, _ := buildProductSvc()
	p := seedProduct(repo, "Rice 1kg", "7790001112232", 70, 120, 5, 2)

	_, err := svc.AdjustStock(context.Background(), p.ID, dto.AdjustStockRequest{
		Delta:  0,
		Reason: "noop",
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestUpdateProduct_RecomputesMargin(t *testing.T) {
	svc, repo, _ := buildProductSvc()
	p := seedProduct(repo, "Coffee 500g", "7790001112233", 1000, 1500, 15, 3)

	newPrice := decimal.NewFromInt(2000)
	resp, err := svc.Update(context.Background(), p.ID, dto.UpdateProductRequest{
		Price: &newPrice,
	})
	require.NoError(t, err)
	// (2000 − 1000) / 1000 × 100 = 100
	assert.Equal(t, "100", resp.MarginPct.String())
}

func TestDeactivateReactivate(t *testing.T) {
	svc, repo, _ := buildProductSvc()
	p := seedProduct(repo, "Tea Box", "7790001112234", 300, 500, 20, 5)

	require.NoError(t, svc.Deactivate(context.Background(), p.ID))
	assert.False(t, repo.products[p.ID].Active)

	require.NoError(t, svc.Reactivate(context.Background(), p.ID))
	assert.True(t, repo.products[p.ID].Active)
}
