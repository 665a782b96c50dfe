package repository

import (
	"context"

	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category.
// GetByID devuelve (nil, nil) si no existe.
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id string) error
}
