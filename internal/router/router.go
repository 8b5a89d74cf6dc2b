package router

import (
	"time"

	"retailpos/internal/config"
	"retailpos/internal/handler"
	"retailpos/internal/middleware"
	"retailpos/internal/repository"
	"retailpos/internal/service"
	"retailpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(200, time.Minute)) // 200 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	registerRepo := repository.NewRegisterRepository(db)
	clientRepo := repository.NewClientRepository(db)
	stockMovementRepo := repository.NewStockMovementRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, stockMovementRepo, rdb)
	registerSvc := service.NewRegisterService(registerRepo)
	ledgerSvc := service.NewLedgerService(registerRepo)
	clientSvc := service.NewClientService(clientRepo)
	reportSvc := service.NewReportService(reportRepo, registerRepo)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	saleSvc := service.NewSaleService(saleRepo, productRepo, registerRepo, stockMovementRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUserHandler(authSvc)
	productsH := handler.NewProductHandler(productSvc)
	priceCheckH := handler.NewPriceCheckHandler(productSvc)
	salesH := handler.NewSaleHandler(saleSvc)
	registerH := handler.NewRegisterHandler(registerSvc)
	movementsH := handler.NewMovementHandler(ledgerSvc)
	clientsH := handler.NewClientHandler(clientSvc)
	reportsH := handler.NewReportHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — no auth required, used by the aisle price-check kiosk
	r.GET("/v1/price/:barcode", priceCheckH.GetByBarcode)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cashier, supervisor, admin — declared per-endpoint
		allRoles := middleware.RequireRole("cashier", "supervisor", "admin")
		backOffice := middleware.RequireRole("supervisor", "admin")
		adminOnly := middleware.RequireRole("admin")

		sales := v1.Group("/sales")
		{
			sales.POST("", allRoles, salesH.Create)
			sales.GET("", allRoles, salesH.List)
			sales.GET("/:id", allRoles, salesH.Get)
			sales.POST("/discount-preview", allRoles, salesH.PreviewDiscount)
			sales.POST("/:id/cancel", backOffice, salesH.Cancel)
			sales.PATCH("/:id/items/:itemId", backOffice, salesH.UpdateItem)
		}

		register := v1.Group("/register")
		{
			register.POST("/open", allRoles, registerH.Open)
			register.POST("/:id/close", allRoles, registerH.Close)
			register.GET("/current", allRoles, registerH.Current)
			register.GET("/sessions", backOffice, registerH.List)
			register.GET("/sessions/:id", allRoles, registerH.Get)
		}

		movements := v1.Group("/movements")
		{
			movements.POST("", allRoles, movementsH.Record)
			movements.GET("", allRoles, movementsH.List)
			movements.GET("/:id", allRoles, movementsH.Get)
			movements.PUT("/:id", backOffice, movementsH.Update)
			movements.DELETE("/:id", backOffice, movementsH.Delete)
			movements.GET("/session/:id/totals", allRoles, movementsH.Totals)
		}

		// Catalog reads are open to every authenticated role (POS sync)
		v1.GET("/products", allRoles, productsH.List)
		v1.GET("/products/:id", allRoles, productsH.Get)
		v1.PATCH("/products/:id/stock", backOffice, productsH.AdjustStock)
		v1.GET("/products/stock-movements", backOffice, productsH.StockMovements)
		v1.GET("/products/low-stock", backOffice, productsH.LowStock)
		// Write operations — admin only
		products := v1.Group("/products", adminOnly)
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Deactivate)
			products.PATCH("/:id/reactivate", productsH.Reactivate)
		}

		clients := v1.Group("/clients")
		{
			clients.POST("", allRoles, clientsH.Create)
			clients.GET("", allRoles, clientsH.List)
			clients.GET("/:id", allRoles, clientsH.Get)
			clients.PUT("/:id", backOffice, clientsH.Update)
			clients.DELETE("/:id", backOffice, clientsH.Deactivate)
			clients.PATCH("/:id/balance", backOffice, clientsH.AdjustBalance)
		}

		reports := v1.Group("/reports", backOffice)
		{
			reports.GET("/daily", reportsH.DailySummary)
			reports.GET("/range", reportsH.RangeSummary)
			reports.GET("/top-products", reportsH.TopProducts)
			reports.GET("/session/:id", reportsH.SessionReport)
		}

		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
