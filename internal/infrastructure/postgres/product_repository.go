package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, sku, name, description, price_cents, currency, active, attributes, created_at, updated_at`

// Subconsulta correlacionada del saldo: suma del libro de movimientos.
const stockExpr = `COALESCE((SELECT SUM(m.quantity) FROM stock_movements m WHERE m.product_id = p.id), 0)`

// Vector de texto para búsqueda sobre nombre y descripción.
const searchVector = `to_tsvector('simple', p.name || ' ' || COALESCE(p.description, ''))`

// Create persiste un nuevo producto. Retorna ErrDuplicate si el SKU ya existe.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, description, price_cents, currency, active, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Name, product.Description,
		product.PriceCents, product.Currency, product.Active, product.Attributes,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetBySKU obtiene un producto por SKU. Retorna nil si no existe.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getBySKU(ctx, sku, false)
}

// GetBySKUForUpdate obtiene el producto bloqueando su fila (SELECT FOR UPDATE).
// Es el punto de serialización por SKU del motor de ajustes: dos ajustadores
// concurrentes del mismo producto se ordenan sobre este lock.
func (r *ProductRepo) GetBySKUForUpdate(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getBySKU(ctx, sku, true)
}

func (r *ProductRepo) getBySKU(ctx context.Context, sku string, forUpdate bool) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var p entity.Product
	err := r.q.QueryRow(ctx, query, sku).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.PriceCents, &p.Currency,
		&p.Active, &p.Attributes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return &p, nil
}

// Update actualiza los campos mutables del producto. El SKU es inmutable.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, price_cents = $4, currency = $5, active = $6, attributes = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.PriceCents,
		product.Currency, product.Active, product.Attributes, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete elimina el producto por ID junto con sus vínculos de categoría.
// Los movimientos se eliminan aparte (movementRepo.DeleteByProduct) dentro de
// la misma transacción; no se asume cascada a nivel de esquema.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM product_categories WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("unlink product categories: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// LinkCategory vincula producto y categoría. Idempotente (ON CONFLICT DO NOTHING).
func (r *ProductRepo) LinkCategory(ctx context.Context, productID, categoryID string) error {
	query := `
		INSERT INTO product_categories (product_id, category_id)
		VALUES ($1, $2)
		ON CONFLICT (product_id, category_id) DO NOTHING`
	_, err := r.q.Exec(ctx, query, productID, categoryID)
	if err != nil {
		return fmt.Errorf("link category: %w", err)
	}
	return nil
}

// buildProductWhere arma la cláusula WHERE y los argumentos a partir del filtro.
// Todos los filtros se componen con AND.
func buildProductWhere(filter repository.ProductFilter) (string, []any) {
	conds := []string{"1=1"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Query != "" {
		conds = append(conds, searchVector+` @@ plainto_tsquery('simple', `+arg(filter.Query)+`)`)
	}
	if filter.CategoryCode != "" {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM product_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.product_id = p.id AND c.code = `+arg(filter.CategoryCode)+`)`)
	}
	if filter.MinPriceCents != nil {
		conds = append(conds, `p.price_cents >= `+arg(*filter.MinPriceCents))
	}
	if filter.MaxPriceCents != nil {
		conds = append(conds, `p.price_cents <= `+arg(*filter.MaxPriceCents))
	}
	if filter.InStock {
		conds = append(conds, stockExpr+` > 0`)
	}
	return strings.Join(conds, " AND "), args
}

func orderClause(sort string) string {
	switch sort {
	case repository.SortPriceAsc:
		return "p.price_cents ASC, p.name ASC"
	case repository.SortPriceDesc:
		return "p.price_cents DESC, p.name ASC"
	default: // name
		return "p.name ASC"
	}
}

// List devuelve productos filtrados/ordenados/paginados junto con su saldo y
// el total de filas del conjunto filtrado.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]repository.ProductWithStock, int, error) {
	where, args := buildProductWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM products p WHERE ` + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `
		SELECT p.id, p.sku, p.name, p.description, p.price_cents, p.currency, p.active, p.attributes, p.created_at, p.updated_at,
		       ` + stockExpr + ` AS stock
		FROM products p
		WHERE ` + where + `
		ORDER BY ` + orderClause(filter.Sort) + `
		LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	list, err := r.queryProductsWithStock(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Search lista por relevancia de texto completo, rank descendente y nombre como desempate.
func (r *ProductRepo) Search(ctx context.Context, q string, limit, offset int) ([]repository.ProductWithStock, int, error) {
	match := searchVector + ` @@ plainto_tsquery('simple', $1)`

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products p WHERE `+match, q).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count search: %w", err)
	}

	query := `
		SELECT p.id, p.sku, p.name, p.description, p.price_cents, p.currency, p.active, p.attributes, p.created_at, p.updated_at,
		       ` + stockExpr + ` AS stock
		FROM products p
		WHERE ` + match + `
		ORDER BY ts_rank(` + searchVector + `, plainto_tsquery('simple', $1)) DESC, p.name ASC
		LIMIT $2 OFFSET $3`

	list, err := r.queryProductsWithStock(ctx, query, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *ProductRepo) queryProductsWithStock(ctx context.Context, query string, args ...any) ([]repository.ProductWithStock, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var list []repository.ProductWithStock
	for rows.Next() {
		var p entity.Product
		var stock decimal.Decimal // SUM(bigint) llega como NUMERIC
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.PriceCents, &p.Currency,
			&p.Active, &p.Attributes, &p.CreatedAt, &p.UpdatedAt, &stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, repository.ProductWithStock{Product: p, Stock: stock.IntPart()})
	}
	return list, rows.Err()
}
