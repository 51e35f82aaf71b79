package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/application/stock"
	"github.com/jhoicas/Catalogo-api/pkg/validator"
)

// StockHandler maneja las peticiones HTTP del libro de stock y sus ajustes.
type StockHandler struct {
	uc *stock.AdjustStockUseCase
	v  *validator.Validator
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.AdjustStockUseCase, v *validator.Validator) *StockHandler {
	return &StockHandler{uc: uc, v: v}
}

// Adjust godoc
// @Summary      Ajustar stock (delta firmado, atómico por producto)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        sku   path  string  true  "SKU del producto"
// @Param        body  body  dto.AdjustStockRequest  true  "quantity (delta distinto de cero) y reason"
// @Success      200   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK: el ajuste dejaría el saldo negativo"
// @Router       /api/products/{sku}/stock [patch]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	// Un quantity no entero (ej. 2.5) falla aquí mismo al decodificar el JSON.
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity debe ser un entero distinto de cero"})
	}
	if err := h.v.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validator.Message(err)})
	}
	out, err := h.uc.Adjust(c.Context(), stock.AdjustInput{
		SKU:      c.Params("sku"),
		Quantity: in.Quantity,
		Reason:   in.Reason,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.AdjustStockResponse{SKU: out.SKU, Previous: out.Previous, New: out.New, Reason: out.Reason})
}

// GetBalance godoc
// @Summary      Saldo actual del producto (SUM del libro de movimientos)
// @Tags         stock
// @Produce      json
// @Param        sku  path  string  true  "SKU del producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{sku}/stock [get]
func (h *StockHandler) GetBalance(c *fiber.Ctx) error {
	sku := c.Params("sku")
	balance, err := h.uc.GetBalance(c.Context(), sku)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.StockResponse{SKU: sku, Stock: balance})
}

// ListMovements godoc
// @Summary      Historial de movimientos del producto (auditoría, más recientes primero)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        sku    path   string  true   "SKU del producto"
// @Param        page   query  int     false  "Página"  default(1)
// @Param        limit  query  int     false  "Ítems por página"  default(20)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{sku}/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros inválidos"})
	}
	page.Normalize()

	sku := c.Params("sku")
	movements, total, err := h.uc.ListMovements(c.Context(), sku, page.Limit, page.Offset())
	if err != nil {
		return respondDomainError(c, err)
	}

	items := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		items = append(items, dto.MovementResponse{
			ID:        m.ID,
			Quantity:  m.Quantity,
			Reason:    m.Reason,
			CreatedAt: m.CreatedAt,
		})
	}
	return c.JSON(dto.MovementListResponse{
		SKU:   sku,
		Items: items,
		Page:  dto.PageResponse{Page: page.Page, Limit: page.Limit, Total: total},
	})
}
