package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/memory"
)

func buildCategoryUC() *usecase.CategoryUseCase {
	return usecase.NewCategoryUseCase(memory.NewCategoryRepo(memory.NewStore()))
}

// El código se deriva del nombre: minúsculas, sin tildes, separadores a guión.
func TestCategoryCreate_DerivaCodigoDelNombre(t *testing.T) {
	uc := buildCategoryUC()

	out, err := uc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Electrónica de Hogar"})
	require.NoError(t, err)

	assert.Equal(t, "electronica-de-hogar", out.Code)
	assert.Equal(t, "Electrónica de Hogar", out.Name)
	assert.True(t, out.Active, "las categorías nacen activas")
}

func TestCategoryCreate_NombreDuplicado(t *testing.T) {
	uc := buildCategoryUC()

	_, err := uc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Periféricos"})
	require.NoError(t, err)

	_, err = uc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Periféricos"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCategoryList_ActivasOrdenadasPorNombre(t *testing.T) {
	uc := buildCategoryUC()
	ctx := context.Background()

	for _, name := range []string{"Zapatos", "Audio", "Monitores"} {
		_, err := uc.Create(ctx, dto.CreateCategoryRequest{Name: name})
		require.NoError(t, err)
	}

	// Desactivar una: no debe aparecer en el listado.
	descontinuadas, err := uc.Create(ctx, dto.CreateCategoryRequest{Name: "Descontinuadas"})
	require.NoError(t, err)
	inactive := false
	_, err = uc.Update(ctx, descontinuadas.ID, dto.UpdateCategoryRequest{Active: &inactive})
	require.NoError(t, err)

	out, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "Audio", out[0].Name)
	assert.Equal(t, "Monitores", out[1].Name)
	assert.Equal(t, "Zapatos", out[2].Name)
}

func TestCategoryUpdate_CambioDeNombreVerificaUnicidad(t *testing.T) {
	uc := buildCategoryUC()
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateCategoryRequest{Name: "Audio"})
	require.NoError(t, err)
	cat, err := uc.Create(ctx, dto.CreateCategoryRequest{Name: "Video"})
	require.NoError(t, err)

	name := "Audio"
	_, err = uc.Update(ctx, cat.ID, dto.UpdateCategoryRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCategoryDelete_Inexistente(t *testing.T) {
	uc := buildCategoryUC()

	err := uc.Delete(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
