package entity

import "time"

// Category representa una categoría de productos.
// Code es único; cuando un producto referencia un código inexistente la
// categoría se auto-provisiona (una sola fila por código aun bajo concurrencia).
type Category struct {
	ID          string
	Code        string
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
