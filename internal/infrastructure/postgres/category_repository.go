package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación del puerto CategoryRepository sobre PostgreSQL (usable con pool o tx).
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador de persistencia para categorías. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

const categoryColumns = `id, code, name, description, active, created_at, updated_at`

// Create persiste una categoría. Retorna ErrDuplicate si code o name ya existen.
func (r *CategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	query := `
		INSERT INTO categories (id, code, name, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		category.ID, category.Code, category.Name, category.Description,
		category.Active, category.CreatedAt, category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// EnsureByCode auto-provisiona la categoría con ese código si aún no existe.
// ON CONFLICT DO NOTHING + relectura: bajo concurrencia gana el primer escritor
// y nunca hay más de una fila por código (constraint único sobre code).
func (r *CategoryRepo) EnsureByCode(ctx context.Context, code string) (*entity.Category, error) {
	now := time.Now()
	query := `
		INSERT INTO categories (id, code, name, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, '', true, $4, $4)
		ON CONFLICT (code) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, uuid.New().String(), code, code, now); err != nil {
		return nil, fmt.Errorf("ensure category: %w", err)
	}
	cat, err := r.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, fmt.Errorf("ensure category: fila no visible tras insert de %q", code)
	}
	return cat, nil
}

// GetByID obtiene una categoría por ID. Retorna nil si no existe.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	return r.getBy(ctx, `id = $1`, id)
}

// GetByCode obtiene una categoría por código. Retorna nil si no existe.
func (r *CategoryRepo) GetByCode(ctx context.Context, code string) (*entity.Category, error) {
	return r.getBy(ctx, `code = $1`, code)
}

// GetByName obtiene una categoría por nombre. Retorna nil si no existe.
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	return r.getBy(ctx, `name = $1`, name)
}

func (r *CategoryRepo) getBy(ctx context.Context, cond string, arg any) (*entity.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE ` + cond
	var c entity.Category
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.Code, &c.Name, &c.Description, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// ListActive lista las categorías activas ordenadas por nombre.
func (r *CategoryRepo) ListActive(ctx context.Context) ([]*entity.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE active = true ORDER BY name ASC`
	return r.list(ctx, query)
}

// ListByProduct lista las categorías vinculadas a un producto, ordenadas por nombre.
func (r *CategoryRepo) ListByProduct(ctx context.Context, productID string) ([]entity.Category, error) {
	query := `
		SELECT c.id, c.code, c.name, c.description, c.active, c.created_at, c.updated_at
		FROM categories c
		JOIN product_categories pc ON pc.category_id = c.id
		WHERE pc.product_id = $1
		ORDER BY c.name ASC`
	ptrs, err := r.list(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Category, 0, len(ptrs))
	for _, c := range ptrs {
		out = append(out, *c)
	}
	return out, nil
}

func (r *CategoryRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Category, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Update actualiza una categoría. Retorna ErrDuplicate si el nuevo nombre o código chocan.
func (r *CategoryRepo) Update(ctx context.Context, category *entity.Category) error {
	query := `
		UPDATE categories SET code = $2, name = $3, description = $4, active = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		category.ID, category.Code, category.Name, category.Description,
		category.Active, category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete elimina una categoría por ID, quitando antes sus vínculos con productos.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM product_categories WHERE category_id = $1`, id); err != nil {
		return fmt.Errorf("unlink category: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
