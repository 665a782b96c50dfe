package repository

import (
	"context"
	"iter"
	"time"

	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
)

// MovementFilter criterios del historial de movimientos. Campos vacíos no filtran.
type MovementFilter struct {
	ProductID string
	Type      entity.MovementType
	From      *time.Time
	To        *time.Time
}

// MovementRepository puerto del ledger. Solo permite añadir: no hay Update ni Delete.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	CountByProduct(ctx context.Context, productID string) (int, error)
	// SumDeltas suma effective_delta de todos los movimientos del producto.
	SumDeltas(ctx context.Context, productID string) (int, error)
	// List devuelve una página ordenada por fecha descendente y el total sin paginar.
	List(ctx context.Context, filter MovementFilter, limit, offset int) ([]*entity.Movement, int, error)
	// Stream recorre los movimientos en orden descendente sin materializarlos todos.
	Stream(ctx context.Context, filter MovementFilter) iter.Seq2[*entity.Movement, error]
}
