package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Catalogo-api/internal/application/stock"
	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/memory"
	apihttp "github.com/jhoicas/Catalogo-api/internal/interfaces/http"
	"github.com/jhoicas/Catalogo-api/pkg/validator"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildAPIApp monta la API completa sobre adaptadores en memoria: los mismos
// casos de uso y rutas de producción, sin PostgreSQL.
func buildAPIApp(t *testing.T) *fiber.App {
	t.Helper()

	store := memory.NewStore()
	productRepo := memory.NewProductRepo(store)
	categoryRepo := memory.NewCategoryRepo(store)
	movementRepo := memory.NewMovementRepo(store)
	txRunner := memory.NewTxRunner(store)

	app := fiber.New()
	apihttp.Router(app, apihttp.RouterDeps{
		ProductUC:  usecase.NewProductUseCase(txRunner, productRepo, categoryRepo, movementRepo),
		CategoryUC: usecase.NewCategoryUseCase(categoryRepo),
		StockUC:    stock.NewAdjustStockUseCase(txRunner, productRepo, movementRepo),
		Validator:  validator.New(),
		JWTSecret:  testJWTSecret,
	})
	return app
}

// doJSON lanza una petición con cuerpo JSON opcional y decodifica la respuesta.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, authHeader string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	resp.Body.Close()
	return resp, decoded
}

// createProduct crea un producto como admin y exige 201.
func createProduct(t *testing.T, app *fiber.App, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	resp, out := doJSON(t, app, http.MethodPost, "/api/products", body, tokenForRoles(t, "admin"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "la creación del producto debe retornar 201: %v", out)
	return out
}

func adjustStock(t *testing.T, app *fiber.App, sku string, qty int64, reason string) (*http.Response, map[string]interface{}) {
	t.Helper()
	return doJSON(t, app, http.MethodPatch, "/api/products/"+sku+"/stock",
		map[string]interface{}{"quantity": qty, "reason": reason},
		tokenForRoles(t, "admin"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario de extremo a extremo: alta, ajustes y faltante
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_EscenarioCompletoDeStock(t *testing.T) {
	app := buildAPIApp(t)

	// Alta con precio decimal: 9.99 se almacena como 999 centavos.
	created := createProduct(t, app, map[string]interface{}{
		"sku":   "ABC123",
		"name":  "Teclado mecánico",
		"price": 9.99,
	})
	assert.Equal(t, "ABC123", created["sku"])
	assert.Equal(t, float64(999), created["price_cents"])
	assert.Equal(t, float64(0), created["stock"], "sin movimientos el saldo es 0")

	// Carga inicial: previous 0 → new 10.
	resp, out := adjustStock(t, app, "ABC123", 10, "initial load")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), out["previous"])
	assert.Equal(t, float64(10), out["new"])
	assert.Equal(t, "initial load", out["reason"])

	// Venta: previous 10 → new 7.
	resp, out = adjustStock(t, app, "ABC123", -3, "venta pedido #1042")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(10), out["previous"])
	assert.Equal(t, float64(7), out["new"])

	// Retiro imposible: el libro queda intacto.
	resp, out = adjustStock(t, app, "ABC123", -20, "venta imposible")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", out["code"])

	// El saldo sigue siendo 7.
	resp, out = doJSON(t, app, http.MethodGet, "/api/products/ABC123/stock", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(7), out["stock"])

	// El historial registra solo los ajustes aceptados, más recientes primero,
	// y el total cuenta el libro completo aunque la página sea más chica.
	resp, out = doJSON(t, app, http.MethodGet, "/api/products/ABC123/movements?limit=1", nil, tokenForRoles(t, "admin"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := out["items"].([]interface{})
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, float64(-3), first["quantity"])
	movPage := out["page"].(map[string]interface{})
	assert.Equal(t, float64(2), movPage["total"])
}

func TestAPI_CrearConStockInicial(t *testing.T) {
	app := buildAPIApp(t)

	created := createProduct(t, app, map[string]interface{}{
		"sku":           "DEF456",
		"name":          "Mouse inalámbrico",
		"price_cents":   2500,
		"initial_stock": 15,
	})
	assert.Equal(t, float64(15), created["stock"],
		"el saldo del producto recién creado debe reflejar la carga inicial")

	// La carga inicial queda en el libro con su razón canónica.
	resp, out := doJSON(t, app, http.MethodGet, "/api/products/DEF456/movements", nil, tokenForRoles(t, "admin"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := out["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "initial load", items[0].(map[string]interface{})["reason"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Validaciones y errores
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_SKUDuplicado_Retorna409(t *testing.T) {
	app := buildAPIApp(t)

	createProduct(t, app, map[string]interface{}{"sku": "ABC123", "name": "Producto uno", "price_cents": 100})

	resp, out := doJSON(t, app, http.MethodPost, "/api/products",
		map[string]interface{}{"sku": "ABC123", "name": "Producto dos", "price_cents": 200},
		tokenForRoles(t, "admin"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", out["code"])
}

func TestAPI_ProductoInexistente_Retorna404(t *testing.T) {
	app := buildAPIApp(t)

	resp, out := doJSON(t, app, http.MethodGet, "/api/products/NO-EXISTE", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", out["code"])

	resp, _ = adjustStock(t, app, "NO-EXISTE", 5, "compra")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_AjusteDeltaCero_Retorna400(t *testing.T) {
	app := buildAPIApp(t)
	createProduct(t, app, map[string]interface{}{"sku": "ABC123", "name": "Producto", "price_cents": 100})

	resp, out := adjustStock(t, app, "ABC123", 0, "nada")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", out["code"])
}

func TestAPI_AjusteSinReason_Retorna400(t *testing.T) {
	app := buildAPIApp(t)
	createProduct(t, app, map[string]interface{}{"sku": "ABC123", "name": "Producto", "price_cents": 100})

	resp, out := doJSON(t, app, http.MethodPatch, "/api/products/ABC123/stock",
		map[string]interface{}{"quantity": 5}, tokenForRoles(t, "admin"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", out["code"])
}

func TestAPI_SortDesconocido_Retorna400(t *testing.T) {
	app := buildAPIApp(t)

	resp, out := doJSON(t, app, http.MethodGet, "/api/products?sort=rating", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", out["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Autorización: lecturas públicas, mutaciones solo admin
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_MutacionSinToken_Retorna401(t *testing.T) {
	app := buildAPIApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/products",
		map[string]interface{}{"sku": "ABC123", "name": "Producto", "price_cents": 100}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_MutacionSinRolAdmin_Retorna403(t *testing.T) {
	app := buildAPIApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/products",
		map[string]interface{}{"sku": "ABC123", "name": "Producto", "price_cents": 100},
		tokenForRoles(t, "editor"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_LecturasSonPublicas(t *testing.T) {
	app := buildAPIApp(t)
	createProduct(t, app, map[string]interface{}{"sku": "ABC123", "name": "Producto", "price_cents": 100})

	for _, path := range []string{"/api/products", "/api/products/ABC123", "/api/products/ABC123/stock", "/api/categories"} {
		resp, _ := doJSON(t, app, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode, "GET %s debe ser público", path)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Categorías: auto-provisión idempotente
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_CategoriasSeAutoProvisionanUnaSolaVez(t *testing.T) {
	app := buildAPIApp(t)

	// Dos productos referencian la misma categoría; el código se normaliza sin tildes.
	createProduct(t, app, map[string]interface{}{
		"sku": "AAA111", "name": "Producto uno", "price_cents": 100,
		"category_codes": []string{"Electrónica"},
	})
	createProduct(t, app, map[string]interface{}{
		"sku": "BBB222", "name": "Producto dos", "price_cents": 200,
		"category_codes": []string{"electronica"},
	})

	// La lista de categorías viene como arreglo plano.
	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	raw, err := app.Test(req, -1)
	require.NoError(t, err)
	defer raw.Body.Close()
	require.Equal(t, http.StatusOK, raw.StatusCode)
	var cats []map[string]interface{}
	require.NoError(t, json.NewDecoder(raw.Body).Decode(&cats))
	require.Len(t, cats, 1, "la misma categoría no debe provisionarse dos veces")
	assert.Equal(t, "electronica", cats[0]["code"])
}

func TestAPI_FiltroPorCategoria(t *testing.T) {
	app := buildAPIApp(t)

	createProduct(t, app, map[string]interface{}{
		"sku": "AAA111", "name": "Teclado", "price_cents": 100,
		"category_codes": []string{"perifericos"},
	})
	createProduct(t, app, map[string]interface{}{
		"sku": "BBB222", "name": "Monitor", "price_cents": 200,
		"category_codes": []string{"pantallas"},
	})

	resp, out := doJSON(t, app, http.MethodGet, "/api/products?category=perifericos", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := out["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "AAA111", items[0].(map[string]interface{})["sku"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Motor de consultas: filtros, orden y paginación
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_PaginacionDespuesDeFiltrar(t *testing.T) {
	app := buildAPIApp(t)

	// 25 productos con nombres ordenables (Producto 01..25).
	for i := 1; i <= 25; i++ {
		createProduct(t, app, map[string]interface{}{
			"sku":         fmt.Sprintf("SKU%03d", i),
			"name":        fmt.Sprintf("Producto %02d", i),
			"price_cents": i * 100,
		})
	}

	resp, out := doJSON(t, app, http.MethodGet, "/api/products?page=2&limit=10&sort=name", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := out["page"].(map[string]interface{})
	assert.Equal(t, float64(2), page["page"])
	assert.Equal(t, float64(10), page["limit"])
	assert.Equal(t, float64(25), page["total"], "total cuenta todos los que pasan el filtro")

	items := out["items"].([]interface{})
	require.Len(t, items, 10)
	assert.Equal(t, "Producto 11", items[0].(map[string]interface{})["name"],
		"la página 2 arranca en el ítem 11 del orden por nombre")
}

func TestAPI_LimitSeRecortaAlTope(t *testing.T) {
	app := buildAPIApp(t)
	createProduct(t, app, map[string]interface{}{"sku": "ABC123", "name": "Producto", "price_cents": 100})

	resp, out := doJSON(t, app, http.MethodGet, "/api/products?limit=500", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := out["page"].(map[string]interface{})
	assert.Equal(t, float64(100), page["limit"], "limit por encima del tope se recorta, no se rechaza")
}

func TestAPI_FiltroInStock(t *testing.T) {
	app := buildAPIApp(t)

	createProduct(t, app, map[string]interface{}{
		"sku": "CON111", "name": "Con stock", "price_cents": 100, "initial_stock": 5,
	})
	createProduct(t, app, map[string]interface{}{
		"sku": "SIN222", "name": "Sin stock", "price_cents": 100,
	})

	resp, out := doJSON(t, app, http.MethodGet, "/api/products?in_stock=true", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := out["items"].([]interface{})
	require.Len(t, items, 1, "in_stock debe excluir productos con saldo 0")
	assert.Equal(t, "CON111", items[0].(map[string]interface{})["sku"])
}

func TestAPI_FiltroRangoDePrecio(t *testing.T) {
	app := buildAPIApp(t)

	createProduct(t, app, map[string]interface{}{"sku": "BAR111", "name": "Barato", "price_cents": 500})
	createProduct(t, app, map[string]interface{}{"sku": "MED222", "name": "Medio", "price_cents": 1500})
	createProduct(t, app, map[string]interface{}{"sku": "CAR333", "name": "Caro", "price_cents": 5000})

	// Rango inclusivo en centavos.
	resp, out := doJSON(t, app, http.MethodGet, "/api/products?min_price=500&max_price=1500&sort=price_asc", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := out["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "BAR111", items[0].(map[string]interface{})["sku"])
	assert.Equal(t, "MED222", items[1].(map[string]interface{})["sku"])
}

func TestAPI_BusquedaDeTexto(t *testing.T) {
	app := buildAPIApp(t)

	createProduct(t, app, map[string]interface{}{
		"sku": "TEC111", "name": "Teclado mecánico", "price_cents": 100,
	})
	createProduct(t, app, map[string]interface{}{
		"sku": "MOU222", "name": "Mouse", "description": "combo con teclado", "price_cents": 200,
	})
	createProduct(t, app, map[string]interface{}{
		"sku": "MON333", "name": "Monitor", "price_cents": 300,
	})

	resp, out := doJSON(t, app, http.MethodGet, "/api/products/search?q=teclado", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := out["items"].([]interface{})
	require.Len(t, items, 2, "la búsqueda cubre nombre y descripción")
	assert.Equal(t, "TEC111", items[0].(map[string]interface{})["sku"],
		"el match en el nombre pesa más que el match en la descripción")
}

func TestAPI_BusquedaSinTermino_Retorna400(t *testing.T) {
	app := buildAPIApp(t)

	resp, out := doJSON(t, app, http.MethodGet, "/api/products/search", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", out["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrado en cascada
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_BorrarProductoEliminaSuLibro(t *testing.T) {
	app := buildAPIApp(t)

	createProduct(t, app, map[string]interface{}{
		"sku": "ABC123", "name": "Producto", "price_cents": 100, "initial_stock": 10,
	})

	resp, out := doJSON(t, app, http.MethodDelete, "/api/products/ABC123", nil, tokenForRoles(t, "admin"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ABC123", out["sku"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/products/ABC123", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/products/ABC123/stock", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode,
		"tras borrar el producto su libro de movimientos desaparece con él")
}
