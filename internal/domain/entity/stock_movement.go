package entity

import "time"

// Razón usada por la creación de producto con stock inicial.
const ReasonInitialLoad = "initial load"

// StockMovement es una entrada inmutable del libro de stock: un delta firmado
// sobre el saldo de un producto. Nunca se actualiza ni se borra de forma
// individual; solo cae en cascada al eliminar el producto.
// El saldo actual de un producto es SUM(quantity) de sus movimientos.
type StockMovement struct {
	ID        string
	ProductID string
	Quantity  int64 // positivo = entrada, negativo = salida
	Reason    string
	CreatedAt time.Time
}
