package stock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

// AdjustStockUseCase es el motor de ajustes: valida el delta y agrega el
// movimiento al libro dentro de una transacción que serializa a los
// ajustadores concurrentes del mismo producto.
//
// El saldo es derivado (SUM de movimientos), así que leer-decidir-escribir no
// puede partirse en dos commits: la secuencia completa corre con la fila del
// producto bloqueada (SELECT FOR UPDATE), de modo que dos transacciones nunca
// computan el mismo `previous`.
type AdjustStockUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
}

// NewAdjustStockUseCase construye el caso de uso.
func NewAdjustStockUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
) *AdjustStockUseCase {
	return &AdjustStockUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		movementRepo: movementRepo,
	}
}

// AdjustInput entrada para un ajuste de stock.
type AdjustInput struct {
	SKU      string
	Quantity int64 // delta firmado, distinto de cero
	Reason   string
}

// AdjustResult resultado de un ajuste aplicado.
type AdjustResult struct {
	SKU      string
	Previous int64
	New      int64
	Reason   string
}

// Adjust aplica un ajuste de stock de forma atómica:
//  1. delta cero -> ErrInvalidInput.
//  2. En una transacción: bloquea la fila del producto (ErrNotFound si el SKU
//     no existe), computa previous = SUM(movimientos) y next = previous+delta.
//  3. next < 0 -> rollback y ErrInsufficientStock; el saldo queda intacto.
//  4. Si no, agrega el movimiento y hace commit.
//
// La cancelación del contexto antes del commit revierte la transacción;
// ningún movimiento parcial queda visible.
func (uc *AdjustStockUseCase) Adjust(ctx context.Context, input AdjustInput) (*AdjustResult, error) {
	if input.Quantity == 0 || input.SKU == "" {
		return nil, domain.ErrInvalidInput
	}

	var result *AdjustResult
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		_ repository.CategoryRepository,
		movementRepo repository.StockMovementRepository,
	) error {
		// Bloquea la fila del producto: serializa ajustadores del mismo SKU
		product, err := productRepo.GetBySKUForUpdate(ctx, input.SKU)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		previous, err := movementRepo.SumByProduct(ctx, product.ID)
		if err != nil {
			return err
		}
		next := previous + input.Quantity
		if next < 0 {
			return domain.ErrInsufficientStock
		}

		mov := &entity.StockMovement{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Quantity:  input.Quantity,
			Reason:    input.Reason,
			CreatedAt: time.Now(),
		}
		if err := movementRepo.Create(ctx, mov); err != nil {
			return err
		}

		result = &AdjustResult{SKU: input.SKU, Previous: previous, New: next, Reason: input.Reason}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetBalance devuelve el saldo actual del producto: SUM de su libro de
// movimientos. ErrNotFound si el SKU no existe.
func (uc *AdjustStockUseCase) GetBalance(ctx context.Context, sku string) (int64, error) {
	product, err := uc.productRepo.GetBySKU(ctx, sku)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, domain.ErrNotFound
	}
	return uc.movementRepo.SumByProduct(ctx, product.ID)
}

// ListMovements devuelve el historial de movimientos del producto (auditoría),
// más recientes primero, junto con el total de entradas del libro para la
// paginación. ErrNotFound si el SKU no existe.
func (uc *AdjustStockUseCase) ListMovements(ctx context.Context, sku string, limit, offset int) ([]*entity.StockMovement, int, error) {
	product, err := uc.productRepo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, 0, err
	}
	if product == nil {
		return nil, 0, domain.ErrNotFound
	}
	movements, err := uc.movementRepo.ListByProduct(ctx, product.ID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.movementRepo.CountByProduct(ctx, product.ID)
	if err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}
