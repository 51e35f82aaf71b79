package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/application/stock"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
	"github.com/jhoicas/Catalogo-api/pkg/money"
	"github.com/jhoicas/Catalogo-api/pkg/slug"
)

// Moneda por defecto cuando el request no la trae.
const defaultCurrency = "USD"

// ProductUseCase reglas de negocio del catálogo de productos: alta con
// categorías auto-provisionadas y carga inicial de stock, consulta, listado
// filtrado y borrado en cascada.
type ProductUseCase struct {
	txRunner     stock.TxRunner
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	movementRepo repository.StockMovementRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner stock.TxRunner,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	movementRepo repository.StockMovementRepository,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		movementRepo: movementRepo,
	}
}

// resolvePriceCents obtiene el precio en centavos desde el request: price_cents
// tiene prioridad; si solo viene price (unidades mayores) se convierte.
func resolvePriceCents(price *dto.CreateProductRequest) (int64, error) {
	if price.PriceCents != nil {
		if *price.PriceCents < 0 {
			return 0, domain.ErrInvalidInput
		}
		return *price.PriceCents, nil
	}
	if price.Price != nil {
		return money.DecimalToCents(*price.Price)
	}
	return 0, nil
}

// Create crea el producto de forma transaccional: auto-provisiona las
// categorías referenciadas (una sola fila por código bajo concurrencia),
// inserta el producto (ErrDuplicate si el SKU existe) y, si hay stock inicial,
// agrega el primer movimiento con razón "initial load" antes de retornar, de
// modo que el saldo del objeto resultante ya lo refleja.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	priceCents, err := resolvePriceCents(&in)
	if err != nil {
		return nil, err
	}
	currency := in.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	if in.InitialStock != nil && *in.InitialStock < 0 {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  priceCents,
		Currency:    currency,
		Active:      true,
		Attributes:  in.Attributes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var categories []entity.Category
	err = uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		categoryRepo repository.CategoryRepository,
		movementRepo repository.StockMovementRepository,
	) error {
		for _, code := range in.CategoryCodes {
			code = slug.Make(code)
			if code == "" {
				return domain.ErrInvalidInput
			}
			cat, err := categoryRepo.EnsureByCode(ctx, code)
			if err != nil {
				return err
			}
			categories = append(categories, *cat)
		}

		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		for _, cat := range categories {
			if err := productRepo.LinkCategory(ctx, product.ID, cat.ID); err != nil {
				return err
			}
		}

		if in.InitialStock != nil && *in.InitialStock > 0 {
			mov := &entity.StockMovement{
				ID:        uuid.New().String(),
				ProductID: product.ID,
				Quantity:  *in.InitialStock,
				Reason:    entity.ReasonInitialLoad,
				CreatedAt: now,
			}
			if err := movementRepo.Create(ctx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	product.Categories = categories
	var initial int64
	if in.InitialStock != nil {
		initial = *in.InitialStock
	}
	resp := toProductResponse(product, initial)
	return &resp, nil
}

// GetBySKU devuelve el producto con sus categorías y saldo. ErrNotFound si no existe.
func (uc *ProductUseCase) GetBySKU(ctx context.Context, sku string) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	cats, err := uc.categoryRepo.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	product.Categories = cats
	balance, err := uc.movementRepo.SumByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(product, balance)
	return &resp, nil
}

// Update aplica el patch sobre los campos mutables; el SKU es inmutable.
func (uc *ProductUseCase) Update(ctx context.Context, sku string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.PriceCents != nil {
		if *in.PriceCents < 0 {
			return nil, domain.ErrInvalidInput
		}
		product.PriceCents = *in.PriceCents
	} else if in.Price != nil {
		cents, err := money.DecimalToCents(*in.Price)
		if err != nil {
			return nil, err
		}
		product.PriceCents = cents
	}
	if in.Currency != nil {
		product.Currency = *in.Currency
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	if in.Attributes != nil {
		product.Attributes = in.Attributes
	}
	product.UpdatedAt = time.Now()

	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return uc.GetBySKU(ctx, sku)
}

// Delete elimina el producto y, en cascada y en la misma transacción, sus
// movimientos y vínculos de categoría. ErrNotFound si el SKU no existe.
func (uc *ProductUseCase) Delete(ctx context.Context, sku string) error {
	return uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		_ repository.CategoryRepository,
		movementRepo repository.StockMovementRepository,
	) error {
		product, err := productRepo.GetBySKUForUpdate(ctx, sku)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if err := movementRepo.DeleteByProduct(ctx, product.ID); err != nil {
			return err
		}
		return productRepo.Delete(ctx, product.ID)
	})
}

// List es el motor de consultas: filtros AND-compuestos, orden y paginación
// después de filtrar. Un sort desconocido es ErrInvalidInput; el limit por
// encima del tope se recorta, no se rechaza.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ListProductsQuery) (*dto.ProductListResponse, error) {
	q.Normalize()
	sort := q.Sort
	if sort == "" {
		sort = repository.SortName
	}
	switch sort {
	case repository.SortName, repository.SortPriceAsc, repository.SortPriceDesc:
	default:
		return nil, domain.ErrInvalidInput
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, domain.ErrInvalidInput
	}

	filter := repository.ProductFilter{
		Query:         q.Q,
		CategoryCode:  q.Category,
		MinPriceCents: q.MinPrice,
		MaxPriceCents: q.MaxPrice,
		InStock:       q.InStock,
		Sort:          sort,
		Limit:         q.Limit,
		Offset:        q.Offset(),
	}
	items, total, err := uc.productRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return uc.toListResponse(ctx, items, q.PageRequest, total)
}

// Search búsqueda de texto completo ordenada por relevancia descendente.
func (uc *ProductUseCase) Search(ctx context.Context, query string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	if query == "" {
		return nil, domain.ErrInvalidInput
	}
	page.Normalize()
	items, total, err := uc.productRepo.Search(ctx, query, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	return uc.toListResponse(ctx, items, page, total)
}

func (uc *ProductUseCase) toListResponse(ctx context.Context, items []repository.ProductWithStock, page dto.PageRequest, total int) (*dto.ProductListResponse, error) {
	out := make([]dto.ProductResponse, 0, len(items))
	for _, it := range items {
		p := it.Product
		cats, err := uc.categoryRepo.ListByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Categories = cats
		out = append(out, toProductResponse(&p, it.Stock))
	}
	return &dto.ProductListResponse{
		Items: out,
		Page:  dto.PageResponse{Page: page.Page, Limit: page.Limit, Total: total},
	}, nil
}

func toProductResponse(p *entity.Product, stockBalance int64) dto.ProductResponse {
	cats := make([]dto.CategorySummary, 0, len(p.Categories))
	for _, c := range p.Categories {
		cats = append(cats, dto.CategorySummary{ID: c.ID, Code: c.Code, Name: c.Name})
	}
	return dto.ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       money.CentsToDecimal(p.PriceCents),
		PriceCents:  p.PriceCents,
		Currency:    p.Currency,
		Active:      p.Active,
		Attributes:  p.Attributes,
		Categories:  cats,
		Stock:       stockBalance,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
