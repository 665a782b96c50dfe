package memory

import (
	"context"
	"iter"
	"slices"

	"github.com/jhoicas/solterito-inventario/internal/domain"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo ledger en memoria. Solo añade.
type MovementRepo struct {
	s  *Store
	tx *tx
}

// NewMovementRepository construye el repo fuera de transacción.
func NewMovementRepository(s *Store) *MovementRepo {
	return &MovementRepo{s: s}
}

func (r *MovementRepo) Create(_ context.Context, movement *entity.Movement) error {
	m := cloneMovement(movement)
	o := func() (func(), error) {
		if _, ok := r.s.products[m.ProductID]; !ok {
			return nil, domain.ErrNotFound
		}
		r.s.movements = append(r.s.movements, cloneMovement(m))
		n := len(r.s.movements) - 1
		return func() { r.s.movements = r.s.movements[:n] }, nil
	}
	var stage func()
	if r.tx != nil {
		stage = func() { r.tx.movements = append(r.tx.movements, m) }
	}
	return write(r.s, r.tx, o, stage)
}

// pending movimientos escritos en la tx para el producto.
func (r *MovementRepo) pending(productID string) []*entity.Movement {
	if r.tx == nil {
		return nil
	}
	var out []*entity.Movement
	for _, m := range r.tx.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

func (r *MovementRepo) CountByProduct(_ context.Context, productID string) (int, error) {
	r.s.mu.RLock()
	n := 0
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			n++
		}
	}
	r.s.mu.RUnlock()
	return n + len(r.pending(productID)), nil
}

func (r *MovementRepo) SumDeltas(_ context.Context, productID string) (int, error) {
	r.s.mu.RLock()
	sum := 0
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			sum += m.EffectiveDelta
		}
	}
	r.s.mu.RUnlock()
	for _, m := range r.pending(productID) {
		sum += m.EffectiveDelta
	}
	return sum, nil
}

func (r *MovementRepo) List(_ context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.Movement, int, error) {
	matched := r.matching(filter)
	page := paginate(matched, limit, offset)
	out := make([]*entity.Movement, len(page))
	for i, m := range page {
		out[i] = cloneMovement(m)
	}
	return out, len(matched), nil
}

// Stream toma la foto de los movimientos confirmados al empezar a iterar y los entrega uno a uno.
func (r *MovementRepo) Stream(ctx context.Context, filter repository.MovementFilter) iter.Seq2[*entity.Movement, error] {
	return func(yield func(*entity.Movement, error) bool) {
		for _, m := range r.matching(filter) {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(cloneMovement(m), nil) {
				return
			}
		}
	}
}

// matching devuelve los movimientos confirmados que cumplen el filtro, más reciente primero.
func (r *MovementRepo) matching(f repository.MovementFilter) []*entity.Movement {
	r.s.mu.RLock()
	out := make([]*entity.Movement, 0)
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		out = append(out, m)
	}
	r.s.mu.RUnlock()

	// orden de confirmación inverso como desempate
	slices.SortStableFunc(out, func(a, b *entity.Movement) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}
