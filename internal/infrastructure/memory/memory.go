// Package memory provee adaptadores en memoria de los puertos de persistencia.
// Se usan en tests de casos de uso y handlers; el TxRunner serializa las
// transacciones con un lock de escritura global y revierte sobre snapshot,
// reproduciendo la atomicidad y el orden por producto del adaptador PostgreSQL.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jhoicas/Catalogo-api/internal/application/stock"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

// Store estado compartido de los adaptadores en memoria.
// Las escrituras reemplazan punteros completos; las lecturas devuelven copias.
type Store struct {
	mu         sync.RWMutex
	products   map[string]*entity.Product  // por ID
	categories map[string]*entity.Category // por ID
	movements  []*entity.StockMovement
}

// NewStore construye un estado vacío.
func NewStore() *Store {
	return &Store{
		products:   make(map[string]*entity.Product),
		categories: make(map[string]*entity.Category),
	}
}

type snapshot struct {
	products   map[string]*entity.Product
	categories map[string]*entity.Category
	movements  []*entity.StockMovement
}

func (s *Store) snapshot() snapshot {
	products := make(map[string]*entity.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	categories := make(map[string]*entity.Category, len(s.categories))
	for k, v := range s.categories {
		categories[k] = v
	}
	return snapshot{products: products, categories: categories, movements: s.movements}
}

func (s *Store) restore(snap snapshot) {
	s.products = snap.products
	s.categories = snap.categories
	s.movements = snap.movements
}

func (s *Store) rlock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// NewProductRepo, NewCategoryRepo, NewMovementRepo: adaptadores sobre el pool
// (fuera de transacción, con su propio locking).
func NewProductRepo(s *Store) *ProductRepo   { return &ProductRepo{s: s} }
func NewCategoryRepo(s *Store) *CategoryRepo { return &CategoryRepo{s: s} }
func NewMovementRepo(s *Store) *MovementRepo { return &MovementRepo{s: s} }

// TxRunner serializa transacciones con el lock de escritura del Store y
// revierte el estado si fn falla o el contexto ya está cancelado al commit.
type TxRunner struct {
	s *Store
}

var _ stock.TxRunner = (*TxRunner)(nil)

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner { return &TxRunner{s: s} }

// Run ejecuta fn con repos atados a la "transacción" (sin re-locking).
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	movementRepo repository.StockMovementRepository,
) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snap := r.s.snapshot()
	err := fn(
		&ProductRepo{s: r.s, inTx: true},
		&CategoryRepo{s: r.s, inTx: true},
		&MovementRepo{s: r.s, inTx: true},
	)
	if err == nil {
		err = ctx.Err() // cancelado antes del commit: revertir
	}
	if err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// ProductRepo
// ──────────────────────────────────────────────────────────────────────────────

type ProductRepo struct {
	s    *Store
	inTx bool
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	defer r.s.lock(r.inTx)()
	for _, p := range r.s.products {
		if p.SKU == product.SKU {
			return domain.ErrDuplicate
		}
	}
	cp := *product
	r.s.products[cp.ID] = &cp
	return nil
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	defer r.s.rlock(r.inTx)()
	for _, p := range r.s.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// GetBySKUForUpdate: dentro del TxRunner el lock global ya serializa.
func (r *ProductRepo) GetBySKUForUpdate(ctx context.Context, sku string) (*entity.Product, error) {
	return r.GetBySKU(ctx, sku)
}

func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.products[product.ID]; !ok {
		return nil
	}
	cp := *product
	r.s.products[cp.ID] = &cp
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock(r.inTx)()
	delete(r.s.products, id)
	return nil
}

func (r *ProductRepo) LinkCategory(ctx context.Context, productID, categoryID string) error {
	defer r.s.lock(r.inTx)()
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	cat, ok := r.s.categories[categoryID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, c := range p.Categories {
		if c.ID == categoryID {
			return nil
		}
	}
	cp := *p
	cp.Categories = append(append([]entity.Category{}, p.Categories...), *cat)
	r.s.products[cp.ID] = &cp
	return nil
}

func (r *ProductRepo) balance(productID string) int64 {
	var sum int64
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			sum += m.Quantity
		}
	}
	return sum
}

func (r *ProductRepo) matches(p *entity.Product, filter repository.ProductFilter) bool {
	if filter.Query != "" {
		q := strings.ToLower(filter.Query)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if filter.CategoryCode != "" {
		found := false
		for _, c := range p.Categories {
			if c.Code == filter.CategoryCode {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.MinPriceCents != nil && p.PriceCents < *filter.MinPriceCents {
		return false
	}
	if filter.MaxPriceCents != nil && p.PriceCents > *filter.MaxPriceCents {
		return false
	}
	if filter.InStock && r.balance(p.ID) <= 0 {
		return false
	}
	return true
}

func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]repository.ProductWithStock, int, error) {
	defer r.s.rlock(r.inTx)()

	var all []repository.ProductWithStock
	for _, p := range r.s.products {
		if !r.matches(p, filter) {
			continue
		}
		cp := *p
		all = append(all, repository.ProductWithStock{Product: cp, Stock: r.balance(p.ID)})
	}

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i].Product, all[j].Product
		switch filter.Sort {
		case repository.SortPriceAsc:
			if a.PriceCents != b.PriceCents {
				return a.PriceCents < b.PriceCents
			}
		case repository.SortPriceDesc:
			if a.PriceCents != b.PriceCents {
				return a.PriceCents > b.PriceCents
			}
		}
		return a.Name < b.Name
	})

	total := len(all)
	// Paginación después de filtrar y ordenar
	if filter.Offset >= total {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return all[filter.Offset:end], total, nil
}

func (r *ProductRepo) Search(ctx context.Context, query string, limit, offset int) ([]repository.ProductWithStock, int, error) {
	defer r.s.rlock(r.inTx)()

	q := strings.ToLower(query)
	var ranked []repository.ProductWithStock
	rank := map[string]int{}
	for _, p := range r.s.products {
		score := 0
		if strings.Contains(strings.ToLower(p.Name), q) {
			score += 2
		}
		if strings.Contains(strings.ToLower(p.Description), q) {
			score++
		}
		if score == 0 {
			continue
		}
		cp := *p
		rank[p.ID] = score
		ranked = append(ranked, repository.ProductWithStock{Product: cp, Stock: r.balance(p.ID)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		ri, rj := rank[ranked[i].Product.ID], rank[ranked[j].Product.ID]
		if ri != rj {
			return ri > rj
		}
		return ranked[i].Product.Name < ranked[j].Product.Name
	})

	total := len(ranked)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return ranked[offset:end], total, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// CategoryRepo
// ──────────────────────────────────────────────────────────────────────────────

type CategoryRepo struct {
	s    *Store
	inTx bool
}

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

func (r *CategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	defer r.s.lock(r.inTx)()
	for _, c := range r.s.categories {
		if c.Code == category.Code || c.Name == category.Name {
			return domain.ErrDuplicate
		}
	}
	cp := *category
	r.s.categories[cp.ID] = &cp
	return nil
}

func (r *CategoryRepo) EnsureByCode(ctx context.Context, code string) (*entity.Category, error) {
	defer r.s.lock(r.inTx)()
	for _, c := range r.s.categories {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	cat := &entity.Category{ID: uuid.New().String(), Code: code, Name: code, Active: true}
	r.s.categories[cat.ID] = cat
	cp := *cat
	return &cp, nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	defer r.s.rlock(r.inTx)()
	if c, ok := r.s.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *CategoryRepo) GetByCode(ctx context.Context, code string) (*entity.Category, error) {
	defer r.s.rlock(r.inTx)()
	for _, c := range r.s.categories {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	defer r.s.rlock(r.inTx)()
	for _, c := range r.s.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *CategoryRepo) ListActive(ctx context.Context) ([]*entity.Category, error) {
	defer r.s.rlock(r.inTx)()
	var out []*entity.Category
	for _, c := range r.s.categories {
		if c.Active {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepo) ListByProduct(ctx context.Context, productID string) ([]entity.Category, error) {
	defer r.s.rlock(r.inTx)()
	p, ok := r.s.products[productID]
	if !ok {
		return nil, nil
	}
	out := append([]entity.Category{}, p.Categories...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepo) Update(ctx context.Context, category *entity.Category) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.categories[category.ID]; !ok {
		return nil
	}
	cp := *category
	r.s.categories[cp.ID] = &cp
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock(r.inTx)()
	delete(r.s.categories, id)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// MovementRepo
// ──────────────────────────────────────────────────────────────────────────────

type MovementRepo struct {
	s    *Store
	inTx bool
}

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

func (r *MovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	defer r.s.lock(r.inTx)()
	cp := *movement
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *MovementRepo) SumByProduct(ctx context.Context, productID string) (int64, error) {
	defer r.s.rlock(r.inTx)()
	var sum int64
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			sum += m.Quantity
		}
	}
	return sum, nil
}

func (r *MovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	defer r.s.rlock(r.inTx)()
	var all []*entity.StockMovement
	// Recorrido inverso: más recientes primero (orden de inserción)
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		if r.s.movements[i].ProductID == productID {
			cp := *r.s.movements[i]
			all = append(all, &cp)
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *MovementRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	defer r.s.rlock(r.inTx)()
	total := 0
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			total++
		}
	}
	return total, nil
}

func (r *MovementRepo) DeleteByProduct(ctx context.Context, productID string) error {
	defer r.s.lock(r.inTx)()
	kept := r.s.movements[:0:0]
	for _, m := range r.s.movements {
		if m.ProductID != productID {
			kept = append(kept, m)
		}
	}
	r.s.movements = kept
	return nil
}
