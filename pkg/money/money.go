package money

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Catalogo-api/internal/domain"
)

// El precio se almacena como entero de unidades menores (centavos); la
// representación decimal en unidades mayores es solo de frontera. Conversión
// pura, sin estado dual.

var centsPerUnit = decimal.NewFromInt(100)

// CentsToDecimal convierte centavos a unidades mayores: 999 -> 9.99.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centsPerUnit)
}

// DecimalToCents convierte unidades mayores a centavos: 9.99 -> 999.
// Falla con ErrInvalidInput si el valor tiene más de dos decimales o es negativo.
func DecimalToCents(d decimal.Decimal) (int64, error) {
	if d.IsNegative() {
		return 0, domain.ErrInvalidInput
	}
	cents := d.Mul(centsPerUnit)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, domain.ErrInvalidInput
	}
	return cents.IntPart(), nil
}
