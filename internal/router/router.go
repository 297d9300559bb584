package router

import (
	"time"

	"craftledger/internal/config"
	"craftledger/internal/handler"
	"craftledger/internal/infra"
	"craftledger/internal/middleware"
	"craftledger/internal/repository"
	"craftledger/internal/service"
	"craftledger/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker) *gin.Engine {
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
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	adjustmentRepo := repository.NewAdjustmentRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	salesRepo := repository.NewSalesRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)
	invoicePDF := infra.NewInvoicePDF(cfg.BusinessName, cfg.PDFStoragePath)
	excel := infra.NewExcelExporter()

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	itemSvc := service.NewItemService(itemRepo)
	inventorySvc := service.NewInventoryService(itemRepo, adjustmentRepo, dispatcher)
	supplierSvc := service.NewSupplierService(supplierRepo)
	customerSvc := service.NewCustomerService(customerRepo)
	purchaseSvc := service.NewPurchaseService(purchaseRepo, supplierRepo, itemRepo, transactionRepo, inventorySvc)
	salesSvc := service.NewSalesService(salesRepo, customerRepo, itemRepo, invoiceRepo, transactionRepo, inventorySvc, dispatcher, invoicePDF)
	financeSvc := service.NewFinanceService(transactionRepo)
	reportSvc := service.NewReportService(transactionRepo, purchaseRepo, salesRepo, adjustmentRepo, excel)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	itemsH := handler.NewItemsHandler(itemSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	suppliersH := handler.NewSuppliersHandler(supplierSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	purchasesH := handler.NewPurchasesHandler(purchaseSvc)
	salesH := handler.NewSalesHandler(salesSvc)
	transactionsH := handler.NewTransactionsHandler(financeSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: staff, manager, admin — declared per-endpoint
		anyRole := middleware.RequireRole("staff", "manager", "admin")
		managers := middleware.RequireRole("manager", "admin")
		admins := middleware.RequireRole("admin")

		// Items: everyone reads, managers write
		v1.GET("/items", anyRole, itemsH.List)
		v1.GET("/items/:id", anyRole, itemsH.GetByID)
		v1.GET("/items/:id/variants", anyRole, itemsH.ListVariants)
		items := v1.Group("/items", managers)
		{
			items.POST("", itemsH.Create)
			items.PATCH("/:id", itemsH.Update)
			items.DELETE("/:id", itemsH.Delete)
		}

		inv := v1.Group("/inventory", managers)
		{
			inv.POST("/adjust", inventoryH.AdjustStock)
			inv.GET("/adjustments", inventoryH.ListAdjustments)
			inv.POST("/links", inventoryH.CreateLink)
			inv.GET("/links", inventoryH.ListLinks)
			inv.DELETE("/links/:id", inventoryH.DeleteLink)
			inv.GET("/alerts", inventoryH.Alerts)
		}

		purchases := v1.Group("/purchase-orders", managers)
		{
			purchases.POST("", purchasesH.Create)
			purchases.GET("", purchasesH.List)
			purchases.GET("/:id", purchasesH.GetByID)
			purchases.PUT("/:id", purchasesH.Update)
			purchases.PATCH("/:id/status", purchasesH.UpdateStatus)
			purchases.DELETE("/:id", purchasesH.Cancel)
		}

		// Sales: staff can sell (POS), status changes need a manager
		v1.POST("/sales-orders", anyRole, salesH.Create)
		v1.GET("/sales-orders", anyRole, salesH.List)
		v1.GET("/sales-orders/:id", anyRole, salesH.GetByID)
		v1.PATCH("/sales-orders/:id/status", managers, salesH.UpdateStatus)
		v1.GET("/sales-orders/:id/invoice", anyRole, salesH.GetInvoice)
		v1.PATCH("/invoices/:invoice_id/paid", managers, salesH.MarkInvoicePaid)

		suppliers := v1.Group("/suppliers", managers)
		{
			suppliers.POST("", suppliersH.Create)
			suppliers.GET("", suppliersH.List)
			suppliers.GET("/:id", suppliersH.GetByID)
			suppliers.PUT("/:id", suppliersH.Update)
			suppliers.DELETE("/:id", suppliersH.Delete)
		}

		// Customers: staff creates during checkout, managers maintain
		v1.POST("/customers", anyRole, customersH.Create)
		v1.GET("/customers", anyRole, customersH.List)
		v1.GET("/customers/:id", anyRole, customersH.GetByID)
		v1.PUT("/customers/:id", managers, customersH.Update)
		v1.DELETE("/customers/:id", managers, customersH.Delete)

		transactions := v1.Group("/transactions", managers)
		{
			transactions.POST("", transactionsH.Create)
			transactions.GET("", transactionsH.List)
			transactions.GET("/:id", transactionsH.GetByID)
			transactions.PUT("/:id", transactionsH.Update)
			transactions.DELETE("/:id", transactionsH.Delete)
		}

		reports := v1.Group("/reports", managers)
		{
			reports.GET("/feed", reportsH.TransactionFeed)
			reports.GET("/sales", reportsH.SalesReport)
			reports.GET("/sales/export", reportsH.SalesReportExcel)
		}

		users := v1.Group("/users", admins)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
