package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/pkg/money"
)

func TestCentsToDecimal(t *testing.T) {
	assert.True(t, decimal.RequireFromString("9.99").Equal(money.CentsToDecimal(999)))
	assert.True(t, decimal.Zero.Equal(money.CentsToDecimal(0)))
	assert.True(t, decimal.RequireFromString("10").Equal(money.CentsToDecimal(1000)))
}

func TestDecimalToCents(t *testing.T) {
	cents, err := money.DecimalToCents(decimal.RequireFromString("9.99"))
	require.NoError(t, err)
	assert.Equal(t, int64(999), cents)

	cents, err = money.DecimalToCents(decimal.RequireFromString("10"))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cents)
}

// Más de dos decimales no es representable en centavos: debe rechazarse.
func TestDecimalToCents_TresDecimales_Rechazado(t *testing.T) {
	_, err := money.DecimalToCents(decimal.RequireFromString("9.999"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDecimalToCents_Negativo_Rechazado(t *testing.T) {
	_, err := money.DecimalToCents(decimal.RequireFromString("-0.01"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Ida y vuelta sin pérdida para valores en centavos.
func TestMoney_RoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 999, 123456789} {
		back, err := money.DecimalToCents(money.CentsToDecimal(cents))
		require.NoError(t, err)
		assert.Equal(t, cents, back)
	}
}
