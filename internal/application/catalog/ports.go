package catalog

import (
	"context"

	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
)

// TxRunner transacción con repos de catálogo (borrado de categorías).
type TxRunner interface {
	RunCatalog(ctx context.Context, fn func(
		categories repository.CategoryRepository,
		products repository.ProductRepository,
	) error) error
}

// ProductLedger operaciones del ledger que usa el catálogo. Lo implementa ledger.Service.
type ProductLedger interface {
	RegisterProduct(ctx context.Context, product *entity.Product, initialStock int, actorID string) (*entity.Movement, error)
	DeleteProduct(ctx context.Context, productID string) error
	ListMovements(ctx context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.Movement, int, error)
}

// ChangeHook se invoca después de cada cambio confirmado en el catálogo.
type ChangeHook func(ctx context.Context)
