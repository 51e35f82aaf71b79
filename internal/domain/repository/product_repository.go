package repository

import (
	"context"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// Campos de ordenamiento aceptados por el listado de productos.
const (
	SortName      = "name"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// ProductFilter filtros del motor de consultas; se componen con AND.
// Los precios se comparan en unidades menores (centavos), inclusivos.
type ProductFilter struct {
	Query         string // búsqueda de texto sobre name/description
	CategoryCode  string
	MinPriceCents *int64
	MaxPriceCents *int64
	InStock       bool // excluye productos con saldo <= 0
	Sort          string
	Limit         int
	Offset        int
}

// ProductWithStock producto junto con su saldo derivado del libro.
type ProductWithStock struct {
	Product entity.Product
	Stock   int64
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetBySKUForUpdate bloquea la fila del producto (SELECT FOR UPDATE);
	// solo tiene sentido dentro de una transacción.
	GetBySKUForUpdate(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	LinkCategory(ctx context.Context, productID, categoryID string) error
	List(ctx context.Context, filter ProductFilter) ([]ProductWithStock, int, error)
	// Search lista por relevancia de texto completo, rank descendente.
	Search(ctx context.Context, query string, limit, offset int) ([]ProductWithStock, int, error)
}
