package repository

import (
	"context"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del libro de stock (DIP).
// El libro es append-only: no hay Update ni Delete individual.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// SumByProduct devuelve SUM(quantity) de los movimientos del producto
	// (0 si no hay movimientos). Es el saldo autoritativo.
	SumByProduct(ctx context.Context, productID string) (int64, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
	// CountByProduct devuelve el total de movimientos del producto (para la
	// paginación del historial).
	CountByProduct(ctx context.Context, productID string) (int, error)
	// DeleteByProduct elimina en cascada los movimientos de un producto.
	// Solo lo usa el borrado de producto; el libro nunca se poda por sí solo.
	DeleteByProduct(ctx context.Context, productID string) error
}
