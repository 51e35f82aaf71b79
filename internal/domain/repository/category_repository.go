package repository

import (
	"context"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	// EnsureByCode crea la categoría si el código no existe y devuelve la fila
	// resultante. Idempotente bajo concurrencia: gana el primer escritor y el
	// resto relee la misma fila (constraint único sobre code).
	EnsureByCode(ctx context.Context, code string) (*entity.Category, error)
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetByCode(ctx context.Context, code string) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	// ListActive devuelve las categorías activas ordenadas por nombre.
	ListActive(ctx context.Context) ([]*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id string) error
	ListByProduct(ctx context.Context, productID string) ([]entity.Category, error)
}
