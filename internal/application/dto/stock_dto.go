package dto

import "time"

// AdjustStockRequest entrada para ajustar el stock de un producto.
// Quantity es el delta firmado; cero se rechaza.
type AdjustStockRequest struct {
	Quantity int64  `json:"quantity"`
	Reason   string `json:"reason" validate:"required,min=1,max=64"`
}

// AdjustStockResponse resultado del ajuste aplicado.
type AdjustStockResponse struct {
	SKU      string `json:"sku"`
	Previous int64  `json:"previous"`
	New      int64  `json:"new"`
	Reason   string `json:"reason"`
}

// StockResponse saldo actual de un producto.
type StockResponse struct {
	SKU   string `json:"sku"`
	Stock int64  `json:"stock"`
}

// MovementResponse una entrada del libro de movimientos.
type MovementResponse struct {
	ID        string    `json:"id"`
	Quantity  int64     `json:"quantity"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// MovementListResponse historial paginado de movimientos de un producto.
type MovementListResponse struct {
	SKU   string             `json:"sku"`
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
