package entity

import (
	"encoding/json"
	"time"
)

// Product representa un producto del catálogo identificado por su SKU.
// PriceCents guarda el precio en unidades menores (centavos) con su código
// de moneda; el stock NO vive aquí: se deriva del libro de movimientos.
type Product struct {
	ID          string
	SKU         string // código de negocio único e inmutable
	Name        string
	Description string
	PriceCents  int64
	Currency    string // ISO 4217, ej. "USD", "COP"
	Active      bool
	Attributes  json.RawMessage
	Categories  []Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
