package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/solterito-inventario/internal/application/auth"
	"github.com/jhoicas/solterito-inventario/internal/application/catalog"
	"github.com/jhoicas/solterito-inventario/internal/application/ledger"
	"github.com/jhoicas/solterito-inventario/internal/application/reports"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	CategoryUC   *catalog.CategoryUseCase
	ProductUC    *catalog.ProductUseCase
	Ledger       *ledger.Service
	ReportsUC    *reports.SummaryUseCase
	LoginLimiter *IPRateLimiter // opcional
	Metrics      http.Handler   // opcional, se expone en /metrics
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")
	adminOnly := RequireRole(entity.RoleAdmin)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	login := []fiber.Handler{}
	if deps.LoginLimiter != nil {
		login = append(login, deps.LoginLimiter.Handler())
	}
	api.Post("/auth/login", append(login, authHandler.Login)...)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Post("/auth/register", adminOnly, authHandler.Register)

	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", categoryHandler.List)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", categoryHandler.Update)
	categories.Delete("/:id", adminOnly, categoryHandler.Delete)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Ledger)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)
	products.Post("/:id/deactivate", productHandler.Deactivate)
	products.Post("/:id/activate", productHandler.Activate)
	products.Get("/:id/stock", productHandler.Stock)
	products.Get("/:id/can-delete", productHandler.CanDelete)
	products.Get("/:id/reconcile", adminOnly, productHandler.Reconcile)

	movements := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.Ledger)
	movements.Get("/", movementHandler.List)
	movements.Post("/", movementHandler.Register)
	movements.Get("/export.csv", movementHandler.Export)

	reportsGroup := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportsUC)
	reportsGroup.Get("/summary", reportHandler.Summary)
	reportsGroup.Get("/summary.pdf", reportHandler.SummaryPDF)
}
