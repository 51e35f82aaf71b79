package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// El precio puede venir como decimal en unidades mayores (price) o como entero
// de centavos (price_cents); se almacena siempre en centavos.
type CreateProductRequest struct {
	SKU           string           `json:"sku" validate:"required,min=3,max=50"`
	Name          string           `json:"name" validate:"required,min=2,max=120"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	PriceCents    *int64           `json:"price_cents" validate:"omitempty,gte=0"`
	Currency      string           `json:"currency" validate:"omitempty,len=3,alpha"`
	Attributes    json.RawMessage  `json:"attributes"`
	CategoryCodes []string         `json:"category_codes" validate:"omitempty,dive,min=1"`
	InitialStock  *int64           `json:"initial_stock" validate:"omitempty,gte=0"`
}

// UpdateProductRequest patch de un producto; el SKU es inmutable.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=2,max=120"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	PriceCents  *int64           `json:"price_cents" validate:"omitempty,gte=0"`
	Currency    *string          `json:"currency" validate:"omitempty,len=3,alpha"`
	Active      *bool            `json:"active"`
	Attributes  json.RawMessage  `json:"attributes"`
}

// ProductResponse salida de un producto con su saldo derivado del libro.
type ProductResponse struct {
	ID          string            `json:"id"`
	SKU         string            `json:"sku"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Price       decimal.Decimal   `json:"price"`
	PriceCents  int64             `json:"price_cents"`
	Currency    string            `json:"currency"`
	Active      bool              `json:"active"`
	Attributes  json.RawMessage   `json:"attributes,omitempty"`
	Categories  []CategorySummary `json:"categories,omitempty"`
	Stock       int64             `json:"stock"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// CategorySummary referencia corta de categoría dentro de un producto.
type CategorySummary struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// ListProductsQuery parámetros del listado filtrado de productos.
// Los precios se comparan en centavos, inclusivos.
type ListProductsQuery struct {
	PageRequest
	Q        string `json:"q" query:"q"`
	Category string `json:"category" query:"category"`
	MinPrice *int64 `json:"min_price" query:"min_price"`
	MaxPrice *int64 `json:"max_price" query:"max_price"`
	InStock  bool   `json:"in_stock" query:"in_stock"`
	Sort     string `json:"sort" query:"sort"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
