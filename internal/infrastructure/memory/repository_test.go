package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/solterito-inventario/internal/domain"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
	"github.com/jhoicas/solterito-inventario/internal/infrastructure/memory"
)

func newProduct(id, name, desc string, stock int, categoryID *string) *entity.Product {
	now := time.Now()
	return &entity.Product{
		ID:               id,
		Name:             name,
		Description:      desc,
		CategoryID:       categoryID,
		Price:            decimal.NewFromInt(1000),
		Stock:            stock,
		ReorderThreshold: entity.DefaultReorderThreshold,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestCategoryRepo_NameIgnoresCaseAndAccents(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCategoryRepository(memory.NewStore())

	require.NoError(t, repo.Create(ctx, &entity.Category{ID: "c1", Name: "Café", CreatedAt: time.Now()}))
	err := repo.Create(ctx, &entity.Category{ID: "c2", Name: "  cafe ", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	require.NoError(t, repo.Create(ctx, &entity.Category{ID: "c3", Name: "Aseo", CreatedAt: time.Now()}))
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Aseo", list[0].Name)
}

func TestProductRepo_ListFilters(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	cats := memory.NewCategoryRepository(s)
	products := memory.NewProductRepository(s)

	require.NoError(t, cats.Create(ctx, &entity.Category{ID: "granos", Name: "Granos", CreatedAt: time.Now()}))
	cat := "granos"
	require.NoError(t, products.Create(ctx, newProduct("p1", "Arroz", "bolsa de 500g", 20, &cat)))
	require.NoError(t, products.Create(ctx, newProduct("p2", "Lentejas", "grano seco", 2, &cat)))
	require.NoError(t, products.Create(ctx, newProduct("p3", "Jabón", "barra", 1, nil)))
	require.NoError(t, products.SetActive(ctx, "p3", false, time.Now()))

	all, total, err := products.List(ctx, repository.ProductFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "Arroz", all[0].Name)

	_, total, err = products.List(ctx, repository.ProductFilter{IncludeInactive: true}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	low, _, err := products.List(ctx, repository.ProductFilter{LowStock: true}, 10, 0)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "p2", low[0].ID)

	found, _, err := products.List(ctx, repository.ProductFilter{Query: "GRANO", IncludeInactive: true}, 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p2", found[0].ID)

	found, _, err = products.List(ctx, repository.ProductFilter{Query: "jabon", IncludeInactive: true}, 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1, "la búsqueda ignora tildes")

	page, total, err := products.List(ctx, repository.ProductFilter{CategoryID: "granos"}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "p2", page[0].ID)
}

func TestProductRepo_UnknownCategory(t *testing.T) {
	ctx := context.Background()
	products := memory.NewProductRepository(memory.NewStore())

	missing := "no-existe"
	err := products.Create(ctx, newProduct("p1", "Arroz", "", 1, &missing))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepo_ClearCategory(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	cats := memory.NewCategoryRepository(s)
	products := memory.NewProductRepository(s)

	require.NoError(t, cats.Create(ctx, &entity.Category{ID: "c1", Name: "Bebidas", CreatedAt: time.Now()}))
	cat := "c1"
	require.NoError(t, products.Create(ctx, newProduct("p1", "Agua", "", 3, &cat)))

	require.NoError(t, products.ClearCategory(ctx, "c1"))
	require.NoError(t, cats.Delete(ctx, "c1"))

	p, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Nil(t, p.CategoryID)
}
