package repository

import (
	"context"
	"time"

	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
)

// ProductFilter criterios de búsqueda del listado de productos.
type ProductFilter struct {
	Query           string // busca en nombre y descripción
	CategoryID      string
	LowStock        bool // solo stock <= umbral
	IncludeInactive bool
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate lee el producto bloqueando su fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// Update modifica los datos de catálogo. Nunca toca Stock.
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, id string, stock int, at time.Time) error
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProductFilter, limit, offset int) ([]*entity.Product, int, error)
	// ClearCategory deja sin categoría a los productos que referencian categoryID.
	ClearCategory(ctx context.Context, categoryID string) error
}
