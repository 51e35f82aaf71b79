package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Catalogo-api/internal/application/stock"
	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
	"github.com/jhoicas/Catalogo-api/pkg/validator"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC  *usecase.ProductUseCase
	CategoryUC *usecase.CategoryUseCase
	StockUC    *stock.AdjustStockUseCase
	Validator  *validator.Validator
	JWTSecret  string
}

// Router registra las rutas de la API. Las lecturas del catálogo son públicas;
// toda mutación exige Bearer Token con rol admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	auth := AuthMiddleware(deps.JWTSecret)
	admin := RequireRole(RoleAdmin)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Validator)
	products.Get("/", productHandler.List)
	products.Get("/search", productHandler.Search)
	products.Post("/", auth, admin, productHandler.Create)

	// Stock (el registro antes de /:sku evita que "search" capture el wildcard)
	stockHandler := NewStockHandler(deps.StockUC, deps.Validator)
	products.Get("/:sku/stock", stockHandler.GetBalance)
	products.Patch("/:sku/stock", auth, admin, stockHandler.Adjust)
	products.Get("/:sku/movements", auth, admin, stockHandler.ListMovements)

	products.Get("/:sku", productHandler.GetBySKU)
	products.Patch("/:sku", auth, admin, productHandler.Update)
	products.Delete("/:sku", auth, admin, productHandler.Delete)

	// Categories
	categories := api.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC, deps.Validator)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Post("/", auth, admin, categoryHandler.Create)
	categories.Patch("/:id", auth, admin, categoryHandler.Update)
	categories.Delete("/:id", auth, admin, categoryHandler.Delete)
}
