package stock_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Catalogo-api/internal/application/stock"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testSKU = "ABC123"

// buildUseCase construye el motor de ajustes sobre adaptadores en memoria,
// con un producto ya creado (saldo inicial 0: sin movimientos).
func buildUseCase(t *testing.T) *stock.AdjustStockUseCase {
	t.Helper()

	store := memory.NewStore()
	productRepo := memory.NewProductRepo(store)
	movementRepo := memory.NewMovementRepo(store)

	product := &entity.Product{
		ID:         uuid.New().String(),
		SKU:        testSKU,
		Name:       "Teclado mecánico",
		PriceCents: 999,
		Currency:   "USD",
		Active:     true,
	}
	require.NoError(t, productRepo.Create(context.Background(), product),
		"debe poder crearse el producto de prueba")

	return stock.NewAdjustStockUseCase(memory.NewTxRunner(store), productRepo, movementRepo)
}

func adjust(t *testing.T, uc *stock.AdjustStockUseCase, qty int64, reason string) *stock.AdjustResult {
	t.Helper()
	res, err := uc.Adjust(context.Background(), stock.AdjustInput{SKU: testSKU, Quantity: qty, Reason: reason})
	require.NoError(t, err)
	return res
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Adjust — camino feliz
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: primer ajuste positivo sobre saldo 0 → {previous: 0, new: delta}.
func TestAdjust_CargaInicial(t *testing.T) {
	uc := buildUseCase(t)

	res := adjust(t, uc, 10, entity.ReasonInitialLoad)

	assert.Equal(t, testSKU, res.SKU)
	assert.Equal(t, int64(0), res.Previous, "el saldo previo de un producto nuevo es 0")
	assert.Equal(t, int64(10), res.New)
	assert.Equal(t, entity.ReasonInitialLoad, res.Reason)
}

// Caso 2: ajustes encadenados acumulan sobre el saldo derivado.
func TestAdjust_DeltasEncadenados(t *testing.T) {
	uc := buildUseCase(t)

	adjust(t, uc, 10, entity.ReasonInitialLoad)
	res := adjust(t, uc, -3, "venta pedido #1042")

	assert.Equal(t, int64(10), res.Previous)
	assert.Equal(t, int64(7), res.New)

	balance, err := uc.GetBalance(context.Background(), testSKU)
	require.NoError(t, err)
	assert.Equal(t, int64(7), balance, "el saldo debe ser la suma de los movimientos")
}

// Caso 3: un retiro que deja el saldo exactamente en 0 es válido.
func TestAdjust_SaldoExactoCero(t *testing.T) {
	uc := buildUseCase(t)

	adjust(t, uc, 5, entity.ReasonInitialLoad)
	res := adjust(t, uc, -5, "venta total")

	assert.Equal(t, int64(0), res.New, "llegar a 0 no es faltante de stock")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Adjust — rechazos
// ──────────────────────────────────────────────────────────────────────────────

// Delta cero no registra movimiento: es entrada inválida.
func TestAdjust_DeltaCero_EntradaInvalida(t *testing.T) {
	uc := buildUseCase(t)

	_, err := uc.Adjust(context.Background(), stock.AdjustInput{SKU: testSKU, Quantity: 0, Reason: "nada"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	movs, total, err := uc.ListMovements(context.Background(), testSKU, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, movs, "un ajuste rechazado no debe dejar movimientos")
	assert.Zero(t, total)
}

// SKU desconocido → ErrNotFound.
func TestAdjust_SKUDesconocido(t *testing.T) {
	uc := buildUseCase(t)

	_, err := uc.Adjust(context.Background(), stock.AdjustInput{SKU: "NO-EXISTE", Quantity: 5, Reason: "compra"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Faltante de stock: next < 0 revierte la transacción y el saldo queda intacto.
func TestAdjust_Faltante_RevierteYConservaSaldo(t *testing.T) {
	uc := buildUseCase(t)

	adjust(t, uc, 7, entity.ReasonInitialLoad)

	_, err := uc.Adjust(context.Background(), stock.AdjustInput{SKU: testSKU, Quantity: -20, Reason: "venta imposible"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	balance, err := uc.GetBalance(context.Background(), testSKU)
	require.NoError(t, err)
	assert.Equal(t, int64(7), balance, "el saldo no debe cambiar tras un ajuste rechazado")

	movs, _, err := uc.ListMovements(context.Background(), testSKU, 10, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 1, "el movimiento rechazado no debe quedar en el libro")
}

// Contexto cancelado antes del commit → la transacción se revierte.
func TestAdjust_ContextoCancelado_Revierte(t *testing.T) {
	uc := buildUseCase(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Adjust(ctx, stock.AdjustInput{SKU: testSKU, Quantity: 10, Reason: "compra"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	balance, err := uc.GetBalance(context.Background(), testSKU)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests concurrencia — el saldo nunca baja de 0 bajo ajustadores concurrentes
// ──────────────────────────────────────────────────────────────────────────────

// N goroutines ajustando el mismo SKU: cada una lee un previous distinto y el
// saldo final es la carga inicial más la suma de los deltas aceptados.
func TestAdjust_ConcurrentesSumanSinPerderDeltas(t *testing.T) {
	uc := buildUseCase(t)
	adjust(t, uc, 100, entity.ReasonInitialLoad)

	const n = 50
	deltas := make([]int64, n)
	for i := range deltas {
		if i%2 == 0 {
			deltas[i] = 3
		} else {
			deltas[i] = -2
		}
	}

	var wg sync.WaitGroup
	for _, d := range deltas {
		wg.Add(1)
		go func(d int64) {
			defer wg.Done()
			_, err := uc.Adjust(context.Background(), stock.AdjustInput{SKU: testSKU, Quantity: d, Reason: "ajuste concurrente"})
			assert.NoError(t, err)
		}(d)
	}
	wg.Wait()

	var want int64 = 100
	for _, d := range deltas {
		want += d
	}
	balance, err := uc.GetBalance(context.Background(), testSKU)
	require.NoError(t, err)
	assert.Equal(t, want, balance, "ningún delta concurrente debe perderse")
}

// Retiros concurrentes compitiendo por stock escaso: se aceptan exactamente
// los que caben y ningún commit deja el saldo negativo.
func TestAdjust_RetirosConcurrentes_NuncaNegativo(t *testing.T) {
	uc := buildUseCase(t)
	adjust(t, uc, 10, entity.ReasonInitialLoad)

	const n = 20 // solo 10 retiros de -1 caben
	var wg sync.WaitGroup
	var accepted, rejected int64
	var mu sync.Mutex

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Adjust(context.Background(), stock.AdjustInput{SKU: testSKU, Quantity: -1, Reason: "venta"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), accepted, "deben aceptarse exactamente los retiros que caben")
	assert.Equal(t, int64(10), rejected)

	balance, err := uc.GetBalance(context.Background(), testSKU)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance, "el saldo final nunca debe ser negativo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests GetBalance / ListMovements
// ──────────────────────────────────────────────────────────────────────────────

func TestGetBalance_SKUDesconocido(t *testing.T) {
	uc := buildUseCase(t)

	_, err := uc.GetBalance(context.Background(), "NO-EXISTE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMovements_MasRecientesPrimero(t *testing.T) {
	uc := buildUseCase(t)

	adjust(t, uc, 10, entity.ReasonInitialLoad)
	adjust(t, uc, -3, "venta")
	adjust(t, uc, 5, "reposición")

	movs, total, err := uc.ListMovements(context.Background(), testSKU, 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 3)
	assert.Equal(t, 3, total)

	assert.Equal(t, int64(5), movs[0].Quantity, "el movimiento más reciente va primero")
	assert.Equal(t, int64(-3), movs[1].Quantity)
	assert.Equal(t, entity.ReasonInitialLoad, movs[2].Reason)
}

// El total reporta el libro completo aunque la página sea más chica.
func TestListMovements_TotalCubreTodoElLibro(t *testing.T) {
	uc := buildUseCase(t)

	adjust(t, uc, 10, entity.ReasonInitialLoad)
	adjust(t, uc, -1, "venta")
	adjust(t, uc, -2, "venta")
	adjust(t, uc, 4, "reposición")

	movs, total, err := uc.ListMovements(context.Background(), testSKU, 2, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 2, "la página respeta el limit")
	assert.Equal(t, 4, total, "total cuenta todos los movimientos, no la página")
}
