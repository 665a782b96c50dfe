package catalog_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/solterito-inventario/internal/application/catalog"
	"github.com/jhoicas/solterito-inventario/internal/application/dto"
	"github.com/jhoicas/solterito-inventario/internal/application/ledger"
	"github.com/jhoicas/solterito-inventario/internal/domain"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/infrastructure/memory"
)

type fixture struct {
	categories *catalog.CategoryUseCase
	products   *catalog.ProductUseCase
	ledger     *ledger.Service
	changes    *atomic.Int32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(memory.WithLockTimeout(time.Second))
	runner := memory.NewTxRunner(store)
	productRepo := memory.NewProductRepository(store)
	categoryRepo := memory.NewCategoryRepository(store)
	svc := ledger.NewService(runner, productRepo, memory.NewMovementRepository(store))

	changes := new(atomic.Int32)
	hook := func(context.Context) { changes.Add(1) }
	return &fixture{
		categories: catalog.NewCategoryUseCase(runner, categoryRepo, hook),
		products:   catalog.NewProductUseCase(productRepo, categoryRepo, svc, hook),
		ledger:     svc,
		changes:    changes,
	}
}

func ptr[T any](v T) *T { return &v }

func TestCategory_CreateDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.categories.Create(ctx, dto.CategoryRequest{Name: "Lácteos"})
	require.NoError(t, err)

	_, err = f.categories.Create(ctx, dto.CategoryRequest{Name: " lacteos "})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.categories.Create(ctx, dto.CategoryRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCategory_DeleteKeepsProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat, err := f.categories.Create(ctx, dto.CategoryRequest{Name: "Granos"})
	require.NoError(t, err)
	p, err := f.products.Create(ctx, "", dto.CreateProductRequest{
		Name: "Lentejas", CategoryID: &cat.ID, Price: decimal.RequireFromString("3200.50"), InitialStock: 4,
	})
	require.NoError(t, err)

	require.NoError(t, f.categories.Delete(ctx, cat.ID))

	got, err := f.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Equal(t, 4, got.Stock)

	_, err = f.categories.Get(ctx, cat.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.categories.Delete(ctx, cat.ID), domain.ErrNotFound)
}

func TestProduct_CreateWithInitialStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.products.Create(ctx, "u-1", dto.CreateProductRequest{
		Name: "Frijol", Price: decimal.NewFromInt(5000), InitialStock: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, p.Stock)
	assert.Equal(t, entity.DefaultReorderThreshold, p.ReorderThreshold)
	assert.True(t, p.Active)
	assert.EqualValues(t, 1, f.changes.Load())

	detail, err := f.products.Detail(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, detail.RecentMovements, 1)
	assert.Equal(t, "receipt", detail.RecentMovements[0].Type)
	assert.Equal(t, 20, detail.RecentMovements[0].EffectiveDelta)
}

func TestProduct_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]dto.CreateProductRequest{
		"sin nombre":         {Price: decimal.NewFromInt(1)},
		"precio negativo":    {Name: "X", Price: decimal.NewFromInt(-1)},
		"tres decimales":     {Name: "X", Price: decimal.RequireFromString("1.005")},
		"umbral negativo":    {Name: "X", ReorderThreshold: ptr(-1)},
		"categoría inválida": {Name: "X", CategoryID: ptr("no-existe")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.products.Create(ctx, "", in)
			assert.Error(t, err)
		})
	}

	_, err := f.products.Create(ctx, "", dto.CreateProductRequest{Name: "X", InitialStock: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestProduct_DuplicateBarcode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.products.Create(ctx, "", dto.CreateProductRequest{Name: "Uno", Barcode: ptr("770123")})
	require.NoError(t, err)
	_, err = f.products.Create(ctx, "", dto.CreateProductRequest{Name: "Dos", Barcode: ptr("770123")})
	assert.ErrorIs(t, err, domain.ErrDuplicateBarcode)

	// código vacío equivale a sin código
	_, err = f.products.Create(ctx, "", dto.CreateProductRequest{Name: "Tres", Barcode: ptr(" ")})
	require.NoError(t, err)
	_, err = f.products.Create(ctx, "", dto.CreateProductRequest{Name: "Cuatro", Barcode: ptr("")})
	require.NoError(t, err)
}

func TestProduct_UpdateNeverTouchesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.products.Create(ctx, "", dto.CreateProductRequest{Name: "Pasta", Price: decimal.NewFromInt(2000), InitialStock: 7})
	require.NoError(t, err)

	updated, err := f.products.Update(ctx, p.ID, dto.UpdateProductRequest{
		Name:             ptr("Pasta larga"),
		Price:            ptr(decimal.NewFromInt(2100)),
		ReorderThreshold: ptr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "Pasta larga", updated.Name)
	assert.Equal(t, 7, updated.Stock)
	assert.True(t, updated.NeedsRestock)

	stock, err := f.ledger.CurrentStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stock)

	_, err = f.products.Update(ctx, "no-existe", dto.UpdateProductRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProduct_SoftAndHardDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	withStock, err := f.products.Create(ctx, "", dto.CreateProductRequest{Name: "Con historial", InitialStock: 1})
	require.NoError(t, err)
	empty, err := f.products.Create(ctx, "", dto.CreateProductRequest{Name: "Sin historial"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.products.Delete(ctx, withStock.ID), domain.ErrReferentialBlock)

	off, err := f.products.Deactivate(ctx, withStock.ID)
	require.NoError(t, err)
	assert.False(t, off.Active)

	list, err := f.products.List(ctx, dto.ProductListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total, "los inactivos no se listan por defecto")

	list, err = f.products.List(ctx, dto.ProductListRequest{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page.Total)

	require.NoError(t, f.products.Delete(ctx, empty.ID))
	_, err = f.products.Get(ctx, empty.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	on, err := f.products.Activate(ctx, withStock.ID)
	require.NoError(t, err)
	assert.True(t, on.Active)
}

func TestProduct_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bebidas, err := f.categories.Create(ctx, dto.CategoryRequest{Name: "Bebidas"})
	require.NoError(t, err)
	mk := func(name, desc string, cat *string, stock int) {
		_, err := f.products.Create(ctx, "", dto.CreateProductRequest{
			Name: name, Description: desc, CategoryID: cat, InitialStock: stock,
		})
		require.NoError(t, err)
	}
	mk("Café molido", "tostión media", nil, 30)
	mk("Té verde", "caja x 20", &bebidas.ID, 2)
	mk("Jugo de mora", "bebida de cafe frío", &bebidas.ID, 50)
	mk("Agua", "", &bebidas.ID, 5)

	list, err := f.products.List(ctx, dto.ProductListRequest{Query: "cafe"})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page.Total, "busca en nombre y descripción sin tildes")

	list, err = f.products.List(ctx, dto.ProductListRequest{CategoryID: bebidas.ID, LowStock: true})
	require.NoError(t, err)
	require.Equal(t, 2, list.Page.Total)
	assert.Equal(t, "Agua", list.Items[0].Name, "ordenado por nombre")

	list, err = f.products.List(ctx, dto.ProductListRequest{PageRequest: dto.PageRequest{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	assert.Equal(t, 4, list.Page.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Café molido", list.Items[0].Name)

	list, err = f.products.List(ctx, dto.ProductListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 12, list.Page.Limit)
}
